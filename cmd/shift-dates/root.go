package main

import (
	"context"
	"io"
	"os"

	"github.com/mmdatafocus/studio_backend/config"
	"github.com/mmdatafocus/studio_backend/dateshift"
	"github.com/mmdatafocus/studio_backend/notify"
	"github.com/mmdatafocus/studio_backend/store"
	"github.com/mmdatafocus/studio_backend/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const toolName = "shift-dates"

type options struct {
	UserID      string `flag:"userId" validate:"required,uuid"`
	SourceMonth string `flag:"sourceMonth" validate:"required,month"`
	TargetMonth string `flag:"targetMonth" validate:"required,month"`
	RatioScope  string `flag:"ratio-scope" validate:"oneof=user all"`
	Timezone    string `flag:"timezone"`
	DryRun      bool   `flag:"dry-run"`
	Atomic      bool   `flag:"atomic"`
}

// runtime holds the outside collaborators so tests can swap them.
type runtime struct {
	logger    *logrus.Logger
	openStore func(ctx context.Context) (store.Store, func(), error)
	lockUser  func(ctx context.Context, userID string) (func(), error)
	publisher func(ctx context.Context, logger *logrus.Logger) notify.Publisher
}

func defaultRuntime() runtime {
	logger := config.GetLogger()
	logger.SetOutput(os.Stderr)
	return runtime{
		logger:    logger,
		openStore: openDatabase,
		lockUser:  lockUser,
		publisher: publisher,
	}
}

func openDatabase(ctx context.Context) (store.Store, func(), error) {
	opts, err := config.LoadDatabaseOptions()
	if err != nil {
		return nil, nil, err
	}
	db, err := config.Connect(opts)
	if err != nil {
		return nil, nil, err
	}
	return store.NewGormStore(db), func() { _ = config.Close() }, nil
}

func lockUser(ctx context.Context, userID string) (func(), error) {
	locker, err := config.ConnectRedis(ctx)
	if err != nil {
		return nil, err
	}
	release, err := utils.UserLock(ctx, locker, toolName, userID, utils.UserLockTTL)
	if err != nil {
		_ = config.CloseRedis()
		return nil, err
	}
	return func() {
		release()
		_ = config.CloseRedis()
	}, nil
}

func publisher(ctx context.Context, logger *logrus.Logger) notify.Publisher {
	p, err := notify.NewPublisher(ctx, logger)
	if err != nil {
		logger.WithError(err).Warn("maintenance events disabled")
		return notify.NopPublisher{}
	}
	return p
}

type output struct {
	Command       string             `json:"command"`
	CorrelationID string             `json:"correlationId"`
	DurationMS    int64              `json:"durationMs"`
	Result        *dateshift.Summary `json:"result"`
}

func newRootCmd(rt runtime) *cobra.Command {
	opts := options{}

	cmd := &cobra.Command{
		Use:   toolName,
		Short: "Move a user's dates from one month into another",
		Long: "Every date of the user that falls in --sourceMonth is moved to the same day and time in --targetMonth.\n" +
			"Expense start and due dates keep their day offset from the shifted created_at.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), rt, opts, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.UserID, "userId", "", "User UUID (required)")
	f.StringVar(&opts.SourceMonth, "sourceMonth", "", "Month to move dates out of, YYYY-MM (required)")
	f.StringVar(&opts.TargetMonth, "targetMonth", "", "Month to move dates into, YYYY-MM (required)")
	f.BoolVar(&opts.DryRun, "dry-run", false, "Count the rows that would change without writing")
	f.BoolVar(&opts.Atomic, "atomic", config.ShiftAtomic(), "Run the whole shift in one transaction (env SHIFT_ATOMIC)")
	f.StringVar(&opts.RatioScope, "ratio-scope", config.RatioScope(), "Material output ratios to shift: user|all (env SHIFT_RATIO_SCOPE)")
	f.StringVar(&opts.Timezone, "timezone", "", "IANA zone months are evaluated in (env SHIFT_TIMEZONE, default local)")
	return cmd
}

func run(ctx context.Context, rt runtime, opts options, stdout io.Writer) error {
	if err := utils.ValidateFlags(opts); err != nil {
		return err
	}
	loc, err := config.ShiftLocation(opts.Timezone)
	if err != nil {
		return utils.NewValidationError("timezone", opts.Timezone, err.Error())
	}
	scope := store.RatioScopeUser
	if opts.RatioScope == config.RatioScopeAll {
		scope = store.RatioScopeAll
	}

	ctx = utils.SetToolInContext(ctx, toolName)
	correlationID := utils.CorrelationIdFromContextOrNew(ctx)
	ctx = utils.SetCorrelationIdInContext(ctx, correlationID)
	ctx = utils.SetUserIdInContext(ctx, opts.UserID)
	rt.logger.WithFields(logrus.Fields{
		"tool":           toolName,
		"correlation_id": correlationID,
		"timezone":       loc.String(),
		"ratio_scope":    scope.String(),
	}).Info("starting")

	s, closeStore, err := rt.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	if !opts.DryRun {
		release, err := rt.lockUser(ctx, opts.UserID)
		if err != nil {
			return err
		}
		defer release()
	}

	engine := dateshift.New(s, rt.logger,
		dateshift.WithLocation(loc),
		dateshift.WithRatioScope(scope),
		dateshift.WithAtomic(opts.Atomic),
		dateshift.WithDryRun(opts.DryRun),
	)
	summary, err := engine.ShiftUserDates(ctx, opts.UserID, opts.SourceMonth, opts.TargetMonth)
	if err != nil {
		return err
	}

	b, err := utils.MarshalIndentJSON(output{
		Command:       toolName,
		CorrelationID: correlationID,
		DurationMS:    summary.Elapsed.Milliseconds(),
		Result:        summary,
	})
	if err != nil {
		return err
	}
	if _, err := stdout.Write(b); err != nil {
		return err
	}

	notify.PublishQuietly(ctx, rt.publisher(ctx, rt.logger), rt.logger, notify.Event{
		Type:          notify.EventDatesShifted,
		UserID:        opts.UserID,
		SourceMonth:   summary.SourceMonth,
		TargetMonth:   summary.TargetMonth,
		Total:         summary.Total,
		DryRun:        summary.DryRun,
		CorrelationID: correlationID,
	})
	return nil
}
