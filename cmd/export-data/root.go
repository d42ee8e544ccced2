package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mmdatafocus/studio_backend/config"
	"github.com/mmdatafocus/studio_backend/export"
	"github.com/mmdatafocus/studio_backend/notify"
	"github.com/mmdatafocus/studio_backend/store"
	"github.com/mmdatafocus/studio_backend/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const toolName = "export-data"

type options struct {
	UserID     string `flag:"userId" validate:"required,uuid"`
	Output     string `flag:"output" validate:"required"`
	RatioScope string `flag:"ratio-scope" validate:"oneof=user all"`
}

type runtime struct {
	logger    *logrus.Logger
	openStore func(ctx context.Context) (store.Store, func(), error)
	publisher func(ctx context.Context, logger *logrus.Logger) notify.Publisher
}

func defaultRuntime() runtime {
	logger := config.GetLogger()
	logger.SetOutput(os.Stderr)
	return runtime{
		logger: logger,
		openStore: func(ctx context.Context) (store.Store, func(), error) {
			opts, err := config.LoadDatabaseOptions()
			if err != nil {
				return nil, nil, err
			}
			db, err := config.Connect(opts)
			if err != nil {
				return nil, nil, err
			}
			return store.NewGormStore(db), func() { _ = config.Close() }, nil
		},
		publisher: func(ctx context.Context, logger *logrus.Logger) notify.Publisher {
			p, err := notify.NewPublisher(ctx, logger)
			if err != nil {
				logger.WithError(err).Warn("maintenance events disabled")
				return notify.NopPublisher{}
			}
			return p
		},
	}
}

func newRootCmd(rt runtime) *cobra.Command {
	opts := options{}

	cmd := &cobra.Command{
		Use:   toolName,
		Short: "Export a user's reference and owned data to a snapshot file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), rt, opts, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.UserID, "userId", "", "User UUID (required)")
	f.StringVar(&opts.Output, "output", "", "Output file: .json, .xlsx or gs://bucket/object (required)")
	f.StringVar(&opts.RatioScope, "ratio-scope", config.RatioScope(), "Material output ratios to include: user|all (env SHIFT_RATIO_SCOPE)")
	return cmd
}

func run(ctx context.Context, rt runtime, opts options, stdout io.Writer) error {
	if err := utils.ValidateFlags(opts); err != nil {
		return err
	}
	scope := store.RatioScopeUser
	if opts.RatioScope == config.RatioScopeAll {
		scope = store.RatioScopeAll
	}

	ctx = utils.SetToolInContext(ctx, toolName)
	correlationID := utils.CorrelationIdFromContextOrNew(ctx)
	ctx = utils.SetCorrelationIdInContext(ctx, correlationID)
	ctx = utils.SetUserIdInContext(ctx, opts.UserID)

	s, closeStore, err := rt.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	snapshot, err := export.New(s, rt.logger, export.WithRatioScope(scope)).Export(ctx, opts.UserID)
	if err != nil {
		return err
	}
	written, err := export.Write(ctx, snapshot, opts.Output)
	if err != nil {
		return err
	}

	rt.logger.WithFields(logrus.Fields{
		"tool":           toolName,
		"correlation_id": correlationID,
		"output":         written,
		"record_count":   snapshot.Metadata.RecordCount,
	}).Info("export written")
	fmt.Fprintf(stdout, "exported %d records for user %s to %s\n", snapshot.Metadata.RecordCount, opts.UserID, written)

	notify.PublishQuietly(ctx, rt.publisher(ctx, rt.logger), rt.logger, notify.Event{
		Type:          notify.EventDataExported,
		UserID:        opts.UserID,
		Output:        written,
		Total:         snapshot.Metadata.RecordCount,
		CorrelationID: correlationID,
	})
	return nil
}
