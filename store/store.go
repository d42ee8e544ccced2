// Package store is the data access layer the maintenance tools run against.
// GormStore talks to the application database; MemoryStore backs tests and dry runs.
package store

import (
	"context"

	"github.com/mmdatafocus/studio_backend/models"
)

// Fields maps column names to the values an update writes.
type Fields map[string]any

// RatioScope picks which material output ratios belong to a user.
type RatioScope int

const (
	// RatioScopeUser follows goods -> goods_material_output_ratios -> material_output_ratios.
	RatioScopeUser RatioScope = iota
	// RatioScopeAll returns every ratio in the table.
	RatioScopeAll
)

func (s RatioScope) String() string {
	if s == RatioScopeAll {
		return "all"
	}
	return "user"
}

type Reader interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)

	// Reference rows have no owner and are shared by every user.
	ListReferenceProductTypes(ctx context.Context) ([]models.ProductType, error)
	ListReferenceMaterialTypes(ctx context.Context) ([]models.MaterialType, error)

	ListProductTypes(ctx context.Context, userID string) ([]models.ProductType, error)
	ListMaterialTypes(ctx context.Context, userID string) ([]models.MaterialType, error)
	ListUserPreferences(ctx context.Context, userID string) ([]models.UserPreference, error)
	ListMaterials(ctx context.Context, userID string) ([]models.MaterialAndSupply, error)
	ListGoods(ctx context.Context, userID string) ([]models.Good, error)
	ListMaterialOutputRatios(ctx context.Context, goodIDs []string, scope RatioScope) ([]models.MaterialOutputRatio, error)
	ListProductionBatches(ctx context.Context, goodIDs []string) ([]models.ProductionBatch, error)
	ListSales(ctx context.Context, userID string) ([]models.Sale, error)
	ListSaleDetails(ctx context.Context, saleIDs []string) ([]models.SaleDetail, error)
	ListStudioOverheadExpenses(ctx context.Context, userID string) ([]models.StudioOverheadExpense, error)
	ListOperationalExpenses(ctx context.Context, userID string) ([]models.OperationalExpense, error)
	ListMaterialInventoryTransactions(ctx context.Context, materialIDs []string) ([]models.MaterialInventoryTransaction, error)
}

type Writer interface {
	// UpdateDates writes fields to one row of table without touching any other column.
	UpdateDates(ctx context.Context, table string, id string, fields Fields) error
}

type Store interface {
	Reader
	Writer
	// Transaction runs fn against a Store bound to one transaction; an error rolls back.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
