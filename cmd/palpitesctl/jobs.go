package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/palpitesia/palpites-backend/internal/app"
	"github.com/palpitesia/palpites-backend/internal/config"
	"github.com/palpitesia/palpites-backend/internal/database"
	"github.com/palpitesia/palpites-backend/internal/logging"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var dryRun bool

// errJobFailed marks a job that ran but reported success=false.
var errJobFailed = errors.New("job reported failure")

type jobEnv struct {
	db        *gorm.DB
	container *app.Container
	pg        *logging.PGHandler
}

func setup(ctx context.Context) (*jobEnv, error) {
	logging.Setup(os.Getenv("APP_ENV"))

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if dryRun {
		cfg.DryRun = true
	}
	if !cfg.DatabaseConfigured() {
		return nil, errors.New("DATABASE_URL or DB_PASSWORD environment variable is required")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	pg := logging.NewPGHandler(db)
	logging.Setup(cfg.AppEnv, pg)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN, Environment: cfg.AppEnv}); err != nil {
			slog.Error("sentry init failed", "error", err)
		}
	}

	return &jobEnv{
		db:        db,
		container: app.New(ctx, cfg, db, app.Options{}),
		pg:        pg,
	}, nil
}

func (r *jobEnv) close() {
	r.container.Close()
	r.pg.Stop()
	sentry.Flush(2 * time.Second)
	if err := database.Close(r.db); err != nil {
		slog.Error("database close error", "error", err)
	}
}

// runJob runs fn with signal cancellation and prints its result as JSON.
func runJob(cmd *cobra.Command, job string, fn func(ctx context.Context, c *app.Container) (any, bool, error)) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := setup(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	result, ok, err := fn(ctx, rt.container)
	if err != nil {
		slog.Error("job failed", "job", job, "error", err)
		sentry.CaptureException(err)
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: %w", job, errJobFailed)
	}
	return nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()

			if err := database.Migrate(rt.db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func picksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "picks",
		Short: "Pick generation",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "generate",
		Short: "Build and store today's picks from the fixture list",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(cmd, "picks", func(ctx context.Context, c *app.Container) (any, bool, error) {
				res, err := c.Picks.Generate(ctx, time.Now())
				if err != nil {
					return nil, false, err
				}
				return res, res.Success, nil
			})
		},
	})
	return cmd
}

func contentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Daily narrative content",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "generate",
		Short: "Draft today's content from priority-league fixtures",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(cmd, "content", func(ctx context.Context, c *app.Container) (any, bool, error) {
				res, err := c.Content.Generate(ctx, time.Now())
				if err != nil {
					return nil, false, err
				}
				return res, res.Success, nil
			})
		},
	})
	return cmd
}

func broadcastCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "broadcast",
		Short: "WhatsApp delivery to active subscribers",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "send",
		Short: "Send the latest content",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(cmd, "broadcast", func(ctx context.Context, c *app.Container) (any, bool, error) {
				res, err := c.Broadcast.Send(ctx, time.Now())
				if err != nil {
					return nil, false, err
				}
				return res, res.Success, nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "daily-report",
		Short: "Send yesterday's results report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(cmd, "daily_report", func(ctx context.Context, c *app.Container) (any, bool, error) {
				res, err := c.Reports.Daily(ctx, time.Now())
				if err != nil {
					return nil, false, err
				}
				return res, res.Success, nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "monthly-report",
		Short: "Send the month-to-date results report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(cmd, "monthly_report", func(ctx context.Context, c *app.Container) (any, bool, error) {
				res, err := c.Reports.Monthly(ctx, time.Now())
				if err != nil {
					return nil, false, err
				}
				return res, res.Success, nil
			})
		},
	})
	return cmd
}
