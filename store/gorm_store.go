package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mmdatafocus/studio_backend/models"
	"github.com/mmdatafocus/studio_backend/utils"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// GormStore reads and updates the application tables through gorm.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func persistenceError(op string, table string, err error) error {
	pe := &utils.PersistenceError{Op: op, Table: table, Err: err}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		pe.Code = pgErr.Code
	}
	return errors.WithStack(pe)
}

func find[T any](ctx context.Context, db *gorm.DB, table string, query any, args ...any) ([]T, error) {
	rows := make([]T, 0)
	q := db.WithContext(ctx)
	if query != nil {
		q = q.Where(query, args...)
	}
	if err := q.Order("id").Find(&rows).Error; err != nil {
		return nil, persistenceError("select", table, err)
	}
	return rows, nil
}

func (s *GormStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrap(utils.ErrorRecordNotFound, models.TableUsers)
		}
		return nil, persistenceError("select", models.TableUsers, err)
	}
	return &user, nil
}

func (s *GormStore) ListReferenceProductTypes(ctx context.Context) ([]models.ProductType, error) {
	return find[models.ProductType](ctx, s.db, models.TableProductTypes, "user_id IS NULL")
}

func (s *GormStore) ListReferenceMaterialTypes(ctx context.Context) ([]models.MaterialType, error) {
	return find[models.MaterialType](ctx, s.db, models.TableMaterialTypes, "user_id IS NULL")
}

func (s *GormStore) ListProductTypes(ctx context.Context, userID string) ([]models.ProductType, error) {
	return find[models.ProductType](ctx, s.db, models.TableProductTypes, "user_id = ?", userID)
}

func (s *GormStore) ListMaterialTypes(ctx context.Context, userID string) ([]models.MaterialType, error) {
	return find[models.MaterialType](ctx, s.db, models.TableMaterialTypes, "user_id = ?", userID)
}

func (s *GormStore) ListUserPreferences(ctx context.Context, userID string) ([]models.UserPreference, error) {
	return find[models.UserPreference](ctx, s.db, models.TableUserPreferences, "user_id = ?", userID)
}

func (s *GormStore) ListMaterials(ctx context.Context, userID string) ([]models.MaterialAndSupply, error) {
	return find[models.MaterialAndSupply](ctx, s.db, models.TableMaterialsAndSupplies, "user_id = ?", userID)
}

func (s *GormStore) ListGoods(ctx context.Context, userID string) ([]models.Good, error) {
	return find[models.Good](ctx, s.db, models.TableGoods, "user_id = ?", userID)
}

func (s *GormStore) ListMaterialOutputRatios(ctx context.Context, goodIDs []string, scope RatioScope) ([]models.MaterialOutputRatio, error) {
	if scope == RatioScopeAll {
		return find[models.MaterialOutputRatio](ctx, s.db, models.TableMaterialOutputRatios, nil)
	}
	if len(goodIDs) == 0 {
		return []models.MaterialOutputRatio{}, nil
	}
	linked := s.db.WithContext(ctx).
		Model(&models.GoodMaterialOutputRatio{}).
		Select("material_output_ratio_id").
		Where("good_id IN ?", goodIDs)
	return find[models.MaterialOutputRatio](ctx, s.db, models.TableMaterialOutputRatios, "id IN (?)", linked)
}

func (s *GormStore) ListProductionBatches(ctx context.Context, goodIDs []string) ([]models.ProductionBatch, error) {
	if len(goodIDs) == 0 {
		return []models.ProductionBatch{}, nil
	}
	return find[models.ProductionBatch](ctx, s.db, models.TableProductionBatches, "good_id IN ?", goodIDs)
}

func (s *GormStore) ListSales(ctx context.Context, userID string) ([]models.Sale, error) {
	return find[models.Sale](ctx, s.db, models.TableSales, "user_id = ?", userID)
}

func (s *GormStore) ListSaleDetails(ctx context.Context, saleIDs []string) ([]models.SaleDetail, error) {
	if len(saleIDs) == 0 {
		return []models.SaleDetail{}, nil
	}
	return find[models.SaleDetail](ctx, s.db, models.TableSaleDetails, "sale_id IN ?", saleIDs)
}

func (s *GormStore) ListStudioOverheadExpenses(ctx context.Context, userID string) ([]models.StudioOverheadExpense, error) {
	return find[models.StudioOverheadExpense](ctx, s.db, models.TableStudioOverheadExpenses, "user_id = ?", userID)
}

func (s *GormStore) ListOperationalExpenses(ctx context.Context, userID string) ([]models.OperationalExpense, error) {
	return find[models.OperationalExpense](ctx, s.db, models.TableOperationalExpenses, "user_id = ?", userID)
}

func (s *GormStore) ListMaterialInventoryTransactions(ctx context.Context, materialIDs []string) ([]models.MaterialInventoryTransaction, error) {
	if len(materialIDs) == 0 {
		return []models.MaterialInventoryTransaction{}, nil
	}
	return find[models.MaterialInventoryTransaction](ctx, s.db, models.TableMaterialInventoryTransactions, "material_id IN ?", materialIDs)
}

// UpdateDates uses UpdateColumns so gorm does not stamp updated_at on tables where it is not shifted.
func (s *GormStore) UpdateDates(ctx context.Context, table string, id string, fields Fields) error {
	if len(fields) == 0 {
		return nil
	}
	res := s.db.WithContext(ctx).Table(table).Where("id = ?", id).UpdateColumns(map[string]any(fields))
	if res.Error != nil {
		return persistenceError("update", table, res.Error)
	}
	if res.RowsAffected == 0 {
		return persistenceError("update", table, errors.Wrapf(utils.ErrorRecordNotFound, "id %s", id))
	}
	return nil
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
