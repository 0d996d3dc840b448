package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"task-analyzer-backend/internal/ai"
	"task-analyzer-backend/internal/analytics"
	"task-analyzer-backend/internal/config"
	"task-analyzer-backend/internal/db"
	"task-analyzer-backend/internal/logging"
	"task-analyzer-backend/internal/metrics"
	"task-analyzer-backend/internal/server"
	"task-analyzer-backend/internal/tasks"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "api",
		Short:         "Task analysis and suggestion API backed by Gemini",
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "analyze <task text>",
			Short: "Analyze one task and print the TaskAnalysis JSON",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return oneShot(cmd.Context(), cmd.OutOrStdout(), func(ctx context.Context, h *tasks.TaskHandler) (any, error) {
					return h.AnalyzeTask(ctx, strings.Join(args, " "))
				})
			},
		},
		&cobra.Command{
			Use:   "suggest <partial text>",
			Short: "Print five completions for a partial task",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return oneShot(cmd.Context(), cmd.OutOrStdout(), func(ctx context.Context, h *tasks.TaskHandler) (any, error) {
					return h.SuggestTasks(ctx, strings.Join(args, " "))
				})
			},
		},
	)
	return root
}

// newProvider builds the bounded Gemini provider. Config is loaded first so a
// missing credential fails before anything else is set up.
func newProvider(ctx context.Context, cfg *config.Config) (ai.Provider, error) {
	gemini, err := ai.NewGemini(ctx, ai.GeminiOptions{
		APIKey: cfg.GeminiKey,
		Model:  cfg.GeminiModel,
	})
	if err != nil {
		return nil, err
	}
	return ai.WithTimeout(gemini, cfg.ProviderTimeout), nil
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	provider, err := newProvider(ctx, cfg)
	if err != nil {
		log.Error("failed to create provider", zap.Error(err))
		return err
	}

	var events analytics.Recorder = analytics.NopRecorder{}
	if cfg.AnalyticsEnabled() {
		database, err := db.Connect(ctx, cfg.ConnString())
		if err != nil {
			log.Error("failed to connect DB", zap.Error(err))
			return err
		}
		defer database.Close()

		if err := analytics.EnsureSchema(ctx, database); err != nil {
			log.Error("failed to prepare analytics table", zap.Error(err))
			return err
		}
		events = analytics.NewSQLRecorder(database)
		log.Info("connected to PostgreSQL, request analytics enabled")
	}

	m := metrics.NewCollector()
	handler := server.NewHandler(server.Options{
		Tasks:       tasks.New(provider, log, m, events),
		Log:         log,
		Metrics:     m.Handler(),
		StaticDir:   cfg.StaticDir,
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := server.New(cfg.Addr(), handler, cfg.ProviderTimeout+15*time.Second, log)
	return srv.ListenAndRun(ctx)
}

func oneShot(ctx context.Context, out io.Writer, run func(context.Context, *tasks.TaskHandler) (any, error)) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	provider, err := newProvider(ctx, cfg)
	if err != nil {
		return err
	}

	result, err := run(ctx, tasks.New(provider, nil, nil, nil))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
