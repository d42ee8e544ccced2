package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mmdatafocus/studio_backend/models"
	"github.com/mmdatafocus/studio_backend/utils"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockStore(t *testing.T) (*GormStore, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB, PreferSimpleProtocol: true}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)
	return NewGormStore(db), mock
}

func TestGormStore_GetUser(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).AddRow("u-1", "demo@example.com"))

	user, err := s.GetUser(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "demo@example.com", user.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_GetUserNotFound(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}))

	_, err := s.GetUser(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrorRecordNotFound))
	assert.False(t, utils.IsPersistence(err))
}

func TestGormStore_ListGoods(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "goods" WHERE user_id = $1 ORDER BY id`)).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name"}).
			AddRow("g-1", "u-1", "Candle").
			AddRow("g-2", "u-1", "Soap"))

	goods, err := s.ListGoods(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, goods, 2)
	assert.Equal(t, "g-2", goods[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_ListReferenceProductTypes(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "product_types" WHERE user_id IS NULL ORDER BY id`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	rows, err := s.ListReferenceProductTypes(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestGormStore_ListMaterialOutputRatios(t *testing.T) {
	t.Run("user scope follows goods", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta(
			`SELECT * FROM "material_output_ratios" WHERE id IN (SELECT "material_output_ratio_id" FROM "goods_material_output_ratios" WHERE good_id IN ($1,$2)) ORDER BY id`)).
			WithArgs("g-1", "g-2").
			WillReturnRows(sqlmock.NewRows([]string{"id", "material_id"}).AddRow("r-1", "m-1"))

		rows, err := s.ListMaterialOutputRatios(context.Background(), []string{"g-1", "g-2"}, RatioScopeUser)
		require.NoError(t, err)
		assert.Len(t, rows, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
	t.Run("all scope reads the table", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "material_output_ratios" ORDER BY id`)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("r-1").AddRow("r-2"))

		rows, err := s.ListMaterialOutputRatios(context.Background(), nil, RatioScopeAll)
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})
	t.Run("no goods", func(t *testing.T) {
		s, mock := newMockStore(t)
		rows, err := s.ListMaterialOutputRatios(context.Background(), nil, RatioScopeUser)
		require.NoError(t, err)
		assert.Empty(t, rows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStore_ChildListsSkipEmptyParents(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	batches, err := s.ListProductionBatches(ctx, nil)
	require.NoError(t, err)
	assert.NotNil(t, batches)
	details, err := s.ListSaleDetails(ctx, []string{})
	require.NoError(t, err)
	assert.NotNil(t, details)
	txs, err := s.ListMaterialInventoryTransactions(ctx, nil)
	require.NoError(t, err)
	assert.NotNil(t, txs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_UpdateDates(t *testing.T) {
	s, mock := newMockStore(t)
	shifted := time.Date(2025, time.June, 15, 14, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "sales" SET "created_at"=$1,"date"=$2 WHERE id = $3`)).
		WithArgs(shifted, shifted, "s-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.UpdateDates(context.Background(), models.TableSales, "s-1", Fields{
		models.ColumnDate:      shifted,
		models.ColumnCreatedAt: shifted,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_UpdateDatesNoRow(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(`UPDATE "goods" SET`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.UpdateDates(context.Background(), models.TableGoods, "g-404", Fields{models.ColumnCreatedAt: time.Now()})
	require.Error(t, err)
	assert.True(t, utils.IsPersistence(err))
	assert.Contains(t, err.Error(), "g-404")
}

func TestGormStore_UpdateDatesDriverError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(`UPDATE "goods" SET`).WillReturnError(&pgconn.PgError{Code: "40P01", Message: "deadlock detected"})

	err := s.UpdateDates(context.Background(), models.TableGoods, "g-1", Fields{models.ColumnCreatedAt: time.Now()})
	require.Error(t, err)
	var pe *utils.PersistenceError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "40P01", pe.Code)
	assert.Equal(t, models.TableGoods, pe.Table)
	assert.Contains(t, err.Error(), "sqlstate 40P01")
}

func TestGormStore_TransactionRollsBack(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "goods" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "sales" SET`).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := s.Transaction(context.Background(), func(tx Store) error {
		now := time.Now()
		if err := tx.UpdateDates(context.Background(), models.TableGoods, "g-1", Fields{models.ColumnCreatedAt: now}); err != nil {
			return err
		}
		return tx.UpdateDates(context.Background(), models.TableSales, "s-1", Fields{models.ColumnDate: now})
	})
	require.Error(t, err)
	assert.True(t, utils.IsPersistence(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
