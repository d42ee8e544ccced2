package store

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/mmdatafocus/studio_backend/models"
	"github.com/mmdatafocus/studio_backend/utils"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
)

// MemoryData is the full content of a MemoryStore.
type MemoryData struct {
	Users                         []models.User
	ProductTypes                  []models.ProductType
	MaterialTypes                 []models.MaterialType
	UserPreferences               []models.UserPreference
	Materials                     []models.MaterialAndSupply
	Goods                         []models.Good
	GoodMaterialOutputRatios      []models.GoodMaterialOutputRatio
	MaterialOutputRatios          []models.MaterialOutputRatio
	ProductionBatches             []models.ProductionBatch
	Sales                         []models.Sale
	SaleDetails                   []models.SaleDetail
	StudioOverheadExpenses        []models.StudioOverheadExpense
	OperationalExpenses           []models.OperationalExpense
	MaterialInventoryTransactions []models.MaterialInventoryTransaction
}

func (d MemoryData) clone() MemoryData {
	return MemoryData{
		Users:                         slices.Clone(d.Users),
		ProductTypes:                  slices.Clone(d.ProductTypes),
		MaterialTypes:                 slices.Clone(d.MaterialTypes),
		UserPreferences:               slices.Clone(d.UserPreferences),
		Materials:                     slices.Clone(d.Materials),
		Goods:                         slices.Clone(d.Goods),
		GoodMaterialOutputRatios:      slices.Clone(d.GoodMaterialOutputRatios),
		MaterialOutputRatios:          slices.Clone(d.MaterialOutputRatios),
		ProductionBatches:             slices.Clone(d.ProductionBatches),
		Sales:                         slices.Clone(d.Sales),
		SaleDetails:                   slices.Clone(d.SaleDetails),
		StudioOverheadExpenses:        slices.Clone(d.StudioOverheadExpenses),
		OperationalExpenses:           slices.Clone(d.OperationalExpenses),
		MaterialInventoryTransactions: slices.Clone(d.MaterialInventoryTransactions),
	}
}

// UpdateCall records one UpdateDates call.
type UpdateCall struct {
	Table  string
	ID     string
	Fields Fields
}

// MemoryStore keeps rows in memory. Time values are shared with callers by value,
// nullable ones by pointer, so treat rows returned from List* as read-only.
type MemoryStore struct {
	mu      sync.Mutex
	data    MemoryData
	updates []UpdateCall

	// FailUpdate, when set, runs before each update; a non-nil error aborts it.
	FailUpdate func(table string, id string) error
}

func NewMemoryStore(seed MemoryData) *MemoryStore {
	return &MemoryStore{data: seed.clone()}
}

// Data returns a copy of the current rows.
func (s *MemoryStore) Data() MemoryData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.clone()
}

// Updates returns the updates applied so far (rolled back ones included).
func (s *MemoryStore) Updates() []UpdateCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.updates)
}

func filter[T any](rows []T, keep func(T) bool, id func(T) string) []T {
	out := make([]T, 0)
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return id(out[i]) < id(out[j]) })
	return out
}

func ownedBy(userID string, owner *string) bool {
	return owner != nil && *owner == userID
}

func (s *MemoryStore) GetUser(_ context.Context, userID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.data.Users {
		if u.ID == userID {
			user := u
			return &user, nil
		}
	}
	return nil, errors.Wrap(utils.ErrorRecordNotFound, models.TableUsers)
}

func (s *MemoryStore) ListReferenceProductTypes(_ context.Context) ([]models.ProductType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter(s.data.ProductTypes,
		func(r models.ProductType) bool { return r.UserId == nil },
		func(r models.ProductType) string { return r.ID }), nil
}

func (s *MemoryStore) ListReferenceMaterialTypes(_ context.Context) ([]models.MaterialType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter(s.data.MaterialTypes,
		func(r models.MaterialType) bool { return r.UserId == nil },
		func(r models.MaterialType) string { return r.ID }), nil
}

func (s *MemoryStore) ListProductTypes(_ context.Context, userID string) ([]models.ProductType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter(s.data.ProductTypes,
		func(r models.ProductType) bool { return ownedBy(userID, r.UserId) },
		func(r models.ProductType) string { return r.ID }), nil
}

func (s *MemoryStore) ListMaterialTypes(_ context.Context, userID string) ([]models.MaterialType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter(s.data.MaterialTypes,
		func(r models.MaterialType) bool { return ownedBy(userID, r.UserId) },
		func(r models.MaterialType) string { return r.ID }), nil
}

func (s *MemoryStore) ListUserPreferences(_ context.Context, userID string) ([]models.UserPreference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter(s.data.UserPreferences,
		func(r models.UserPreference) bool { return r.UserId == userID },
		func(r models.UserPreference) string { return r.ID }), nil
}

func (s *MemoryStore) ListMaterials(_ context.Context, userID string) ([]models.MaterialAndSupply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter(s.data.Materials,
		func(r models.MaterialAndSupply) bool { return r.UserId == userID },
		func(r models.MaterialAndSupply) string { return r.ID }), nil
}

func (s *MemoryStore) ListGoods(_ context.Context, userID string) ([]models.Good, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter(s.data.Goods,
		func(r models.Good) bool { return r.UserId == userID },
		func(r models.Good) string { return r.ID }), nil
}

func (s *MemoryStore) ListMaterialOutputRatios(_ context.Context, goodIDs []string, scope RatioScope) ([]models.MaterialOutputRatio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	linked := map[string]bool{}
	for _, link := range s.data.GoodMaterialOutputRatios {
		if slices.Contains(goodIDs, link.GoodId) {
			linked[link.MaterialOutputRatioId] = true
		}
	}
	return filter(s.data.MaterialOutputRatios,
		func(r models.MaterialOutputRatio) bool { return scope == RatioScopeAll || linked[r.ID] },
		func(r models.MaterialOutputRatio) string { return r.ID }), nil
}

func (s *MemoryStore) ListProductionBatches(_ context.Context, goodIDs []string) ([]models.ProductionBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter(s.data.ProductionBatches,
		func(r models.ProductionBatch) bool { return slices.Contains(goodIDs, r.GoodId) },
		func(r models.ProductionBatch) string { return r.ID }), nil
}

func (s *MemoryStore) ListSales(_ context.Context, userID string) ([]models.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter(s.data.Sales,
		func(r models.Sale) bool { return r.UserId == userID },
		func(r models.Sale) string { return r.ID }), nil
}

func (s *MemoryStore) ListSaleDetails(_ context.Context, saleIDs []string) ([]models.SaleDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter(s.data.SaleDetails,
		func(r models.SaleDetail) bool { return slices.Contains(saleIDs, r.SaleId) },
		func(r models.SaleDetail) string { return r.ID }), nil
}

func (s *MemoryStore) ListStudioOverheadExpenses(_ context.Context, userID string) ([]models.StudioOverheadExpense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter(s.data.StudioOverheadExpenses,
		func(r models.StudioOverheadExpense) bool { return r.UserId == userID },
		func(r models.StudioOverheadExpense) string { return r.ID }), nil
}

func (s *MemoryStore) ListOperationalExpenses(_ context.Context, userID string) ([]models.OperationalExpense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter(s.data.OperationalExpenses,
		func(r models.OperationalExpense) bool { return r.UserId == userID },
		func(r models.OperationalExpense) string { return r.ID }), nil
}

func (s *MemoryStore) ListMaterialInventoryTransactions(_ context.Context, materialIDs []string) ([]models.MaterialInventoryTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter(s.data.MaterialInventoryTransactions,
		func(r models.MaterialInventoryTransaction) bool { return slices.Contains(materialIDs, r.MaterialId) },
		func(r models.MaterialInventoryTransaction) string { return r.ID }), nil
}

func (s *MemoryStore) UpdateDates(_ context.Context, table string, id string, fields Fields) error {
	if s.FailUpdate != nil {
		if err := s.FailUpdate(table, id); err != nil {
			return persistenceError("update", table, err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	targets, err := s.dateTargets(table, id)
	if err != nil {
		return err
	}
	for column, value := range fields {
		target, ok := targets[column]
		if !ok {
			return persistenceError("update", table, errors.Errorf("column %s is not a date column", column))
		}
		if err := assignDate(target, value); err != nil {
			return persistenceError("update", table, errors.Wrap(err, column))
		}
	}
	s.updates = append(s.updates, UpdateCall{Table: table, ID: id, Fields: fields})
	return nil
}

// Transaction restores the rows captured before fn when fn fails.
func (s *MemoryStore) Transaction(_ context.Context, fn func(tx Store) error) error {
	backup := s.Data()
	if err := fn(s); err != nil {
		s.mu.Lock()
		s.data = backup
		s.mu.Unlock()
		return err
	}
	return nil
}

func indexOf[T any](rows []T, id string, key func(T) string) int {
	return slices.IndexFunc(rows, func(r T) bool { return key(r) == id })
}

// dateTargets returns pointers to the writable date columns of one row.
func (s *MemoryStore) dateTargets(table string, id string) (map[string]any, error) {
	notFound := func() error {
		return persistenceError("update", table, errors.Wrapf(utils.ErrorRecordNotFound, "id %s", id))
	}
	d := &s.data
	switch table {
	case models.TableProductTypes:
		i := indexOf(d.ProductTypes, id, func(r models.ProductType) string { return r.ID })
		if i < 0 {
			return nil, notFound()
		}
		r := &d.ProductTypes[i]
		return map[string]any{models.ColumnCreatedAt: &r.CreatedAt, models.ColumnUpdatedAt: &r.UpdatedAt}, nil
	case models.TableMaterialTypes:
		i := indexOf(d.MaterialTypes, id, func(r models.MaterialType) string { return r.ID })
		if i < 0 {
			return nil, notFound()
		}
		r := &d.MaterialTypes[i]
		return map[string]any{models.ColumnCreatedAt: &r.CreatedAt, models.ColumnUpdatedAt: &r.UpdatedAt}, nil
	case models.TableUserPreferences:
		i := indexOf(d.UserPreferences, id, func(r models.UserPreference) string { return r.ID })
		if i < 0 {
			return nil, notFound()
		}
		r := &d.UserPreferences[i]
		return map[string]any{models.ColumnCreatedAt: &r.CreatedAt, models.ColumnUpdatedAt: &r.UpdatedAt}, nil
	case models.TableMaterialsAndSupplies:
		i := indexOf(d.Materials, id, func(r models.MaterialAndSupply) string { return r.ID })
		if i < 0 {
			return nil, notFound()
		}
		r := &d.Materials[i]
		return map[string]any{models.ColumnCreatedAt: &r.CreatedAt, models.ColumnUpdatedAt: &r.UpdatedAt}, nil
	case models.TableGoods:
		i := indexOf(d.Goods, id, func(r models.Good) string { return r.ID })
		if i < 0 {
			return nil, notFound()
		}
		r := &d.Goods[i]
		return map[string]any{models.ColumnCreatedAt: &r.CreatedAt, models.ColumnUpdatedAt: &r.UpdatedAt}, nil
	case models.TableMaterialOutputRatios:
		i := indexOf(d.MaterialOutputRatios, id, func(r models.MaterialOutputRatio) string { return r.ID })
		if i < 0 {
			return nil, notFound()
		}
		r := &d.MaterialOutputRatios[i]
		return map[string]any{models.ColumnCreatedAt: &r.CreatedAt, models.ColumnUpdatedAt: &r.UpdatedAt}, nil
	case models.TableProductionBatches:
		i := indexOf(d.ProductionBatches, id, func(r models.ProductionBatch) string { return r.ID })
		if i < 0 {
			return nil, notFound()
		}
		r := &d.ProductionBatches[i]
		return map[string]any{
			models.ColumnProductionDate: &r.ProductionDate,
			models.ColumnCreatedAt:      &r.CreatedAt,
			models.ColumnUpdatedAt:      &r.UpdatedAt,
		}, nil
	case models.TableSales:
		i := indexOf(d.Sales, id, func(r models.Sale) string { return r.ID })
		if i < 0 {
			return nil, notFound()
		}
		r := &d.Sales[i]
		return map[string]any{
			models.ColumnDate:      &r.Date,
			models.ColumnCreatedAt: &r.CreatedAt,
			models.ColumnUpdatedAt: &r.UpdatedAt,
		}, nil
	case models.TableSaleDetails:
		i := indexOf(d.SaleDetails, id, func(r models.SaleDetail) string { return r.ID })
		if i < 0 {
			return nil, notFound()
		}
		r := &d.SaleDetails[i]
		return map[string]any{models.ColumnCreatedAt: &r.CreatedAt, models.ColumnUpdatedAt: &r.UpdatedAt}, nil
	case models.TableStudioOverheadExpenses:
		i := indexOf(d.StudioOverheadExpenses, id, func(r models.StudioOverheadExpense) string { return r.ID })
		if i < 0 {
			return nil, notFound()
		}
		r := &d.StudioOverheadExpenses[i]
		return map[string]any{
			models.ColumnCreatedAt: &r.CreatedAt,
			models.ColumnStartDate: &r.StartDate,
			models.ColumnDueDate:   &r.DueDate,
		}, nil
	case models.TableOperationalExpenses:
		i := indexOf(d.OperationalExpenses, id, func(r models.OperationalExpense) string { return r.ID })
		if i < 0 {
			return nil, notFound()
		}
		r := &d.OperationalExpenses[i]
		return map[string]any{
			models.ColumnCreatedAt: &r.CreatedAt,
			models.ColumnStartDate: &r.StartDate,
			models.ColumnDueDate:   &r.DueDate,
		}, nil
	case models.TableMaterialInventoryTransactions:
		i := indexOf(d.MaterialInventoryTransactions, id, func(r models.MaterialInventoryTransaction) string { return r.ID })
		if i < 0 {
			return nil, notFound()
		}
		r := &d.MaterialInventoryTransactions[i]
		return map[string]any{models.ColumnCreatedAt: &r.CreatedAt}, nil
	}
	return nil, persistenceError("update", table, errors.New("unknown table"))
}

func assignDate(target any, value any) error {
	switch dst := target.(type) {
	case *time.Time:
		switch v := value.(type) {
		case time.Time:
			*dst = v
			return nil
		case *time.Time:
			if v == nil {
				return errors.New("null value for not-null column")
			}
			*dst = *v
			return nil
		}
	case **time.Time:
		switch v := value.(type) {
		case time.Time:
			*dst = &v
			return nil
		case *time.Time:
			if v == nil {
				*dst = nil
				return nil
			}
			c := *v
			*dst = &c
			return nil
		case nil:
			*dst = nil
			return nil
		}
	case *datatypes.Date:
		switch v := value.(type) {
		case datatypes.Date:
			*dst = v
			return nil
		case time.Time:
			*dst = datatypes.Date(v)
			return nil
		}
	}
	return errors.Errorf("cannot assign %T to %T", value, target)
}
