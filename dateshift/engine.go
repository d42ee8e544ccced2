// Package dateshift moves a user's demo data from one month to another.
//
// Every date-bearing row the user owns (directly or through goods, sales and
// materials) is checked against the source month; values inside it get the
// same day and clock time in the target month. Expense start/due dates follow
// their created_at instead of being checked on their own.
package dateshift

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
)

const tracerName = "github.com/mmdatafocus/studio_backend/dateshift"

type Engine struct {
	store      store.Store
	logger     *logrus.Logger
	loc        *time.Location
	ratioScope store.RatioScope
	atomic     bool
	dryRun     bool
	now        func() time.Time
	tracer     trace.Tracer
}

type Option func(*Engine)

// WithLocation sets the wall-clock zone month membership is evaluated in.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

func WithRatioScope(scope store.RatioScope) Option {
	return func(e *Engine) { e.ratioScope = scope }
}

// WithAtomic runs the whole shift in one transaction. Without it each update
// commits on its own and a failure leaves earlier tables shifted.
func WithAtomic(atomic bool) Option {
	return func(e *Engine) { e.atomic = atomic }
}

// WithDryRun counts the rows that would change without writing them.
func WithDryRun(dryRun bool) Option {
	return func(e *Engine) { e.dryRun = dryRun }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func New(s store.Store, logger *logrus.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = logrus.New()
	}
	e := &Engine{
		store:      s,
		logger:     logger,
		loc:        time.Local,
		ratioScope: store.RatioScopeUser,
		atomic:     true,
		now:        time.Now,
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type TableResult struct {
	Table   string `json:"table"`
	Scanned int    `json:"scanned"`
	Updated int    `json:"updated"`
	// Skipped is set when the owning parent set was empty and the table was not read.
	Skipped bool `json:"skipped,omitempty"`
}

type Summary struct {
	UserID      string        `json:"userId"`
	SourceMonth string        `json:"sourceMonth"`
	TargetMonth string        `json:"targetMonth"`
	Tables      []TableResult `json:"tables"`
	Total       int           `json:"total"`
	Elapsed     time.Duration `json:"-"`
	DryRun      bool          `json:"dryRun"`
	Atomic      bool          `json:"atomic"`
}

// ShiftUserDates moves every date of userID that falls in sourceMonth into targetMonth.
// Either month may be in the future; the shift works in both directions.
func (e *Engine) ShiftUserDates(ctx context.Context, userID string, sourceMonth string, targetMonth string) (*Summary, error) {
	ctx, span := e.tracer.Start(ctx, "dateshift.ShiftUserDates", trace.WithAttributes(
		attribute.String("user_id", userID),
		attribute.String("source_month", sourceMonth),
		attribute.String("target_month", targetMonth),
		attribute.Bool("dry_run", e.dryRun),
	))
	defer span.End()

	summary, err := e.shiftUserDates(ctx, userID, sourceMonth, targetMonth)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("total", summary.Total))
	return summary, nil
}

func (e *Engine) shiftUserDates(ctx context.Context, userID string, sourceMonth string, targetMonth string) (*Summary, error) {
	started := e.now()

	if err := utils.ValidateUserID(userID); err != nil {
		return nil, err
	}
	source, err := parseMonthArg("sourceMonth", sourceMonth, started)
	if err != nil {
		return nil, err
	}
	target, err := parseMonthArg("targetMonth", targetMonth, started)
	if err != nil {
		return nil, err
	}
	if _, err := utils.ValidateUserExists(ctx, e.store, e.logger, userID); err != nil {
		return nil, err
	}

	atomic := e.atomic && !e.dryRun
	summary := &Summary{
		UserID:      userID,
		SourceMonth: source.String(),
		TargetMonth: target.String(),
		DryRun:      e.dryRun,
		Atomic:      atomic,
	}
	log := e.logger.WithFields(logrus.Fields{
		"user_id":      userID,
		"source_month": summary.SourceMonth,
		"target_month": summary.TargetMonth,
		"dry_run":      e.dryRun,
		"atomic":       atomic,
	})
	log.Info("shifting dates")

	run := func(s store.Store) error {
		tables, err := e.shiftAll(ctx, s, userID, source, target)
		summary.Tables = tables
		return err
	}
	if atomic {
		err = e.store.Transaction(ctx, run)
	} else {
		err = run(e.store)
	}
	if err != nil {
		log.WithError(err).WithField("error_kind", utils.ErrorKind(err)).Error("date shift aborted")
		return nil, err
	}

	for _, t := range summary.Tables {
		summary.Total += t.Updated
	}
	summary.Elapsed = e.now().Sub(started)
	log.WithFields(logrus.Fields{"total": summary.Total, "elapsed": summary.Elapsed.String()}).Info("date shift completed")
	return summary, nil
}

func parseMonthArg(field string, month string, now time.Time) (utils.Month, error) {
	if err := utils.ValidateMonth(month, false, now); err != nil {
		return utils.Month{}, errors.WithMessage(err, field)
	}
	return utils.ParseMonth(month)
}

// owned holds the parent id sets later steps are scoped by.
type owned struct {
	goodIDs     []string
	saleIDs     []string
	materialIDs []string
}

type step struct {
	table string
	// skip reports that the parent set is empty and the table must not be read.
	skip func(o *owned) bool
	load func(ctx context.Context, s store.Reader, o *owned) ([]candidate, error)
}

func (e *Engine) steps(userID string) []step {
	loc := e.loc
	return []step{
		{
			table: models.TableProductTypes,
			load: func(ctx context.Context, s store.Reader, _ *owned) ([]candidate, error) {
				rows, err := s.ListProductTypes(ctx, userID)
				out := make([]candidate, 0, len(rows))
				for _, r := range rows {
					out = append(out, timestampsCandidate(r.ID, r.CreatedAt, r.UpdatedAt, loc))
				}
				return out, err
			},
		},
		{
			table: models.TableMaterialTypes,
			load: func(ctx context.Context, s store.Reader, _ *owned) ([]candidate, error) {
				rows, err := s.ListMaterialTypes(ctx, userID)
				out := make([]candidate, 0, len(rows))
				for _, r := range rows {
					out = append(out, timestampsCandidate(r.ID, r.CreatedAt, r.UpdatedAt, loc))
				}
				return out, err
			},
		},
		{
			table: models.TableUserPreferences,
			load: func(ctx context.Context, s store.Reader, _ *owned) ([]candidate, error) {
				rows, err := s.ListUserPreferences(ctx, userID)
				out := make([]candidate, 0, len(rows))
				for _, r := range rows {
					out = append(out, timestampsCandidate(r.ID, r.CreatedAt, r.UpdatedAt, loc))
				}
				return out, err
			},
		},
		{
			// last_purchase_date is a real purchase event and is never shifted.
			table: models.TableMaterialsAndSupplies,
			load: func(ctx context.Context, s store.Reader, o *owned) ([]candidate, error) {
				rows, err := s.ListMaterials(ctx, userID)
				out := make([]candidate, 0, len(rows))
				for _, r := range rows {
					o.materialIDs = append(o.materialIDs, r.ID)
					out = append(out, timestampsCandidate(r.ID, r.CreatedAt, r.UpdatedAt, loc))
				}
				return out, err
			},
		},
		{
			table: models.TableGoods,
			load: func(ctx context.Context, s store.Reader, o *owned) ([]candidate, error) {
				rows, err := s.ListGoods(ctx, userID)
				out := make([]candidate, 0, len(rows))
				for _, r := range rows {
					o.goodIDs = append(o.goodIDs, r.ID)
					out = append(out, timestampsCandidate(r.ID, r.CreatedAt, r.UpdatedAt, loc))
				}
				return out, err
			},
		},
		{
			table: models.TableMaterialOutputRatios,
			skip:  func(o *owned) bool { return len(o.goodIDs) == 0 },
			load: func(ctx context.Context, s store.Reader, o *owned) ([]candidate, error) {
				rows, err := s.ListMaterialOutputRatios(ctx, o.goodIDs, e.ratioScope)
				out := make([]candidate, 0, len(rows))
				for _, r := range rows {
					out = append(out, timestampsCandidate(r.ID, r.CreatedAt, r.UpdatedAt, loc))
				}
				return out, err
			},
		},
		{
			table: models.TableProductionBatches,
			skip:  func(o *owned) bool { return len(o.goodIDs) == 0 },
			load: func(ctx context.Context, s store.Reader, o *owned) ([]candidate, error) {
				rows, err := s.ListProductionBatches(ctx, o.goodIDs)
				out := make([]candidate, 0, len(rows))
				for _, r := range rows {
					out = append(out, rowCandidate(r.ID,
						calendarDate(models.ColumnProductionDate, r.ProductionDate, loc),
						timestamp(models.ColumnCreatedAt, r.CreatedAt, loc),
						timestamp(models.ColumnUpdatedAt, r.UpdatedAt, loc),
					))
				}
				return out, err
			},
		},
		{
			table: models.TableSales,
			load: func(ctx context.Context, s store.Reader, o *owned) ([]candidate, error) {
				rows, err := s.ListSales(ctx, userID)
				out := make([]candidate, 0, len(rows))
				for _, r := range rows {
					o.saleIDs = append(o.saleIDs, r.ID)
					out = append(out, rowCandidate(r.ID,
						timestamp(models.ColumnDate, r.Date, loc),
						timestamp(models.ColumnCreatedAt, r.CreatedAt, loc),
						timestamp(models.ColumnUpdatedAt, r.UpdatedAt, loc),
					))
				}
				return out, err
			},
		},
		{
			table: models.TableSaleDetails,
			skip:  func(o *owned) bool { return len(o.saleIDs) == 0 },
			load: func(ctx context.Context, s store.Reader, o *owned) ([]candidate, error) {
				rows, err := s.ListSaleDetails(ctx, o.saleIDs)
				out := make([]candidate, 0, len(rows))
				for _, r := range rows {
					out = append(out, timestampsCandidate(r.ID, r.CreatedAt, r.UpdatedAt, loc))
				}
				return out, err
			},
		},
		{
			table: models.TableStudioOverheadExpenses,
			load: func(ctx context.Context, s store.Reader, _ *owned) ([]candidate, error) {
				rows, err := s.ListStudioOverheadExpenses(ctx, userID)
				out := make([]candidate, 0, len(rows))
				for _, r := range rows {
					out = append(out, expenseCandidate(r.ID, ExpenseDates{CreatedAt: r.CreatedAt, StartDate: r.StartDate, DueDate: r.DueDate}, loc))
				}
				return out, err
			},
		},
		{
			table: models.TableOperationalExpenses,
			load: func(ctx context.Context, s store.Reader, _ *owned) ([]candidate, error) {
				rows, err := s.ListOperationalExpenses(ctx, userID)
				out := make([]candidate, 0, len(rows))
				for _, r := range rows {
					out = append(out, expenseCandidate(r.ID, ExpenseDates{CreatedAt: r.CreatedAt, StartDate: r.StartDate, DueDate: r.DueDate}, loc))
				}
				return out, err
			},
		},
		{
			table: models.TableMaterialInventoryTransactions,
			skip:  func(o *owned) bool { return len(o.materialIDs) == 0 },
			load: func(ctx context.Context, s store.Reader, o *owned) ([]candidate, error) {
				rows, err := s.ListMaterialInventoryTransactions(ctx, o.materialIDs)
				out := make([]candidate, 0, len(rows))
				for _, r := range rows {
					out = append(out, rowCandidate(r.ID, timestamp(models.ColumnCreatedAt, r.CreatedAt, loc)))
				}
				return out, err
			},
		},
	}
}

// shiftAll runs the steps in order. Rows are updated one at a time; the first
// error stops the run.
func (e *Engine) shiftAll(ctx context.Context, s store.Store, userID string, source utils.Month, target utils.Month) ([]TableResult, error) {
	o := &owned{}
	results := make([]TableResult, 0, len(models.UserOwnedTables))
	for _, st := range e.steps(userID) {
		res, err := e.runStep(ctx, s, st, o, source, target)
		results = append(results, res)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

func (e *Engine) runStep(ctx context.Context, s store.Store, st step, o *owned, source utils.Month, target utils.Month) (TableResult, error) {
	res := TableResult{Table: st.table}
	log := e.logger.WithFields(logrus.Fields{"table": st.table})
	if st.skip != nil && st.skip(o) {
		res.Skipped = true
		log.Debug("no parent rows; table skipped")
		return res, nil
	}

	ctx, span := e.tracer.Start(ctx, "dateshift.table", trace.WithAttributes(attribute.String("table", st.table)))
	defer span.End()

	candidates, err := st.load(ctx, s, o)
	if err != nil {
		span.RecordError(err)
		return res, err
	}
	res.Scanned = len(candidates)
	for _, c := range candidates {
		fields, changed := c.shift(source, target)
		if !changed {
			continue
		}
		if !e.dryRun {
			if err := s.UpdateDates(ctx, st.table, c.id, fields); err != nil {
				span.RecordError(err)
				return res, errors.WithMessagef(err, "shift %s %s", st.table, c.id)
			}
		}
		res.Updated++
	}
	span.SetAttributes(attribute.Int("scanned", res.Scanned), attribute.Int("updated", res.Updated))
	log.WithFields(logrus.Fields{"scanned": res.Scanned, "updated": res.Updated}).Info("table processed")
	return res, nil
}
