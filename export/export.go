// Package export builds a read-only snapshot of everything one user owns.
package export

import (
	"context"
	"time"

	"github.com/mmdatafocus/studio_backend/models"
	"github.com/mmdatafocus/studio_backend/store"
	"github.com/mmdatafocus/studio_backend/utils"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	Version  = "1.0"
	MonthAll = "ALL"

	tracerName = "github.com/mmdatafocus/studio_backend/export"
)

// Metadata describes a snapshot. RecordCount is the number of rows across the
// userData arrays; referenceData rows are not counted.
type Metadata struct {
	ExportedAt   string `json:"exportedAt"`
	SourceUserID string `json:"sourceUserId"`
	Month        string `json:"month"`
	RecordCount  int    `json:"recordCount"`
	Version      string `json:"version"`
}

// ReferenceData holds the system rows (user_id NULL) shared by every user.
type ReferenceData struct {
	ProductTypes  []models.ProductType  `json:"productTypes"`
	MaterialTypes []models.MaterialType `json:"materialTypes"`
}

type UserData struct {
	ProductTypes                  []models.ProductType                  `json:"productTypes"`
	MaterialTypes                 []models.MaterialType                 `json:"materialTypes"`
	UserPreferences               []models.UserPreference               `json:"userPreferences"`
	MaterialsAndSupplies          []models.MaterialAndSupply            `json:"materialsAndSupplies"`
	Goods                         []models.Good                         `json:"goods"`
	MaterialOutputRatios          []models.MaterialOutputRatio          `json:"materialOutputRatios"`
	ProductionBatches             []models.ProductionBatch              `json:"productionBatches"`
	Sales                         []models.Sale                         `json:"sales"`
	SaleDetails                   []models.SaleDetail                   `json:"saleDetails"`
	StudioOverheadExpenses        []models.StudioOverheadExpense        `json:"studioOverheadExpenses"`
	OperationalExpenses           []models.OperationalExpense           `json:"operationalExpenses"`
	MaterialInventoryTransactions []models.MaterialInventoryTransaction `json:"materialInventoryTransactions"`
}

// Count is the number of rows across every table.
func (u UserData) Count() int {
	return len(u.ProductTypes) + len(u.MaterialTypes) + len(u.UserPreferences) +
		len(u.MaterialsAndSupplies) + len(u.Goods) + len(u.MaterialOutputRatios) +
		len(u.ProductionBatches) + len(u.Sales) + len(u.SaleDetails) +
		len(u.StudioOverheadExpenses) + len(u.OperationalExpenses) + len(u.MaterialInventoryTransactions)
}

type Snapshot struct {
	Metadata      Metadata      `json:"metadata"`
	ReferenceData ReferenceData `json:"referenceData"`
	UserData      UserData      `json:"userData"`
}

type Exporter struct {
	store      store.Reader
	logger     *logrus.Logger
	ratioScope store.RatioScope
	now        func() time.Time
	tracer     trace.Tracer
}

type Option func(*Exporter)

func WithRatioScope(scope store.RatioScope) Option {
	return func(e *Exporter) { e.ratioScope = scope }
}

func WithClock(now func() time.Time) Option {
	return func(e *Exporter) {
		if now != nil {
			e.now = now
		}
	}
}

func New(s store.Reader, logger *logrus.Logger, opts ...Option) *Exporter {
	if logger == nil {
		logger = logrus.New()
	}
	e := &Exporter{
		store:      s,
		logger:     logger,
		ratioScope: store.RatioScopeUser,
		now:        time.Now,
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export reads the reference tables and every table owned by userID.
func (e *Exporter) Export(ctx context.Context, userID string) (*Snapshot, error) {
	ctx, span := e.tracer.Start(ctx, "export.Export", trace.WithAttributes(attribute.String("user_id", userID)))
	defer span.End()

	snapshot, err := e.export(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("record_count", snapshot.Metadata.RecordCount))
	return snapshot, nil
}

func (e *Exporter) export(ctx context.Context, userID string) (*Snapshot, error) {
	if err := utils.ValidateUserID(userID); err != nil {
		return nil, err
	}
	if _, err := utils.ValidateUserExists(ctx, e.store, e.logger, userID); err != nil {
		return nil, err
	}

	reference, err := e.referenceData(ctx)
	if err != nil {
		return nil, err
	}
	data, err := e.userData(ctx, userID)
	if err != nil {
		return nil, err
	}

	snapshot := &Snapshot{
		Metadata: Metadata{
			ExportedAt:   e.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
			SourceUserID: userID,
			Month:        MonthAll,
			RecordCount:  data.Count(),
			Version:      Version,
		},
		ReferenceData: *reference,
		UserData:      *data,
	}
	e.logger.WithFields(logrus.Fields{
		"user_id":        userID,
		"record_count":   snapshot.Metadata.RecordCount,
		"product_types":  len(reference.ProductTypes),
		"material_types": len(reference.MaterialTypes),
	}).Info("export collected")
	return snapshot, nil
}

func (e *Exporter) referenceData(ctx context.Context) (*ReferenceData, error) {
	out := &ReferenceData{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := e.store.ListReferenceProductTypes(gctx)
		out.ProductTypes = rows
		return err
	})
	g.Go(func() error {
		rows, err := e.store.ListReferenceMaterialTypes(gctx)
		out.MaterialTypes = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errors.WithMessage(err, "reference data")
	}
	out.ProductTypes = nonNil(out.ProductTypes)
	out.MaterialTypes = nonNil(out.MaterialTypes)
	return out, nil
}

// userData reads the owned tables one after another. Child tables are scoped by
// the parent ids collected on the way.
func (e *Exporter) userData(ctx context.Context, userID string) (*UserData, error) {
	s := e.store
	d := &UserData{}
	var err error

	if d.ProductTypes, err = s.ListProductTypes(ctx, userID); err != nil {
		return nil, err
	}
	if d.MaterialTypes, err = s.ListMaterialTypes(ctx, userID); err != nil {
		return nil, err
	}
	if d.UserPreferences, err = s.ListUserPreferences(ctx, userID); err != nil {
		return nil, err
	}
	if d.MaterialsAndSupplies, err = s.ListMaterials(ctx, userID); err != nil {
		return nil, err
	}
	if d.Goods, err = s.ListGoods(ctx, userID); err != nil {
		return nil, err
	}

	goodIDs := make([]string, 0, len(d.Goods))
	for _, g := range d.Goods {
		goodIDs = append(goodIDs, g.ID)
	}
	if len(goodIDs) > 0 {
		if d.MaterialOutputRatios, err = s.ListMaterialOutputRatios(ctx, goodIDs, e.ratioScope); err != nil {
			return nil, err
		}
		if d.ProductionBatches, err = s.ListProductionBatches(ctx, goodIDs); err != nil {
			return nil, err
		}
	}

	if d.Sales, err = s.ListSales(ctx, userID); err != nil {
		return nil, err
	}
	saleIDs := make([]string, 0, len(d.Sales))
	for _, sale := range d.Sales {
		saleIDs = append(saleIDs, sale.ID)
	}
	if len(saleIDs) > 0 {
		if d.SaleDetails, err = s.ListSaleDetails(ctx, saleIDs); err != nil {
			return nil, err
		}
	}

	if d.StudioOverheadExpenses, err = s.ListStudioOverheadExpenses(ctx, userID); err != nil {
		return nil, err
	}
	if d.OperationalExpenses, err = s.ListOperationalExpenses(ctx, userID); err != nil {
		return nil, err
	}

	materialIDs := make([]string, 0, len(d.MaterialsAndSupplies))
	for _, m := range d.MaterialsAndSupplies {
		materialIDs = append(materialIDs, m.ID)
	}
	if len(materialIDs) > 0 {
		if d.MaterialInventoryTransactions, err = s.ListMaterialInventoryTransactions(ctx, materialIDs); err != nil {
			return nil, err
		}
	}

	d.fillEmpty()
	return d, nil
}

// fillEmpty replaces nil slices so every table serializes as [].
func (u *UserData) fillEmpty() {
	u.ProductTypes = nonNil(u.ProductTypes)
	u.MaterialTypes = nonNil(u.MaterialTypes)
	u.UserPreferences = nonNil(u.UserPreferences)
	u.MaterialsAndSupplies = nonNil(u.MaterialsAndSupplies)
	u.Goods = nonNil(u.Goods)
	u.MaterialOutputRatios = nonNil(u.MaterialOutputRatios)
	u.ProductionBatches = nonNil(u.ProductionBatches)
	u.Sales = nonNil(u.Sales)
	u.SaleDetails = nonNil(u.SaleDetails)
	u.StudioOverheadExpenses = nonNil(u.StudioOverheadExpenses)
	u.OperationalExpenses = nonNil(u.OperationalExpenses)
	u.MaterialInventoryTransactions = nonNil(u.MaterialInventoryTransactions)
}

func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
