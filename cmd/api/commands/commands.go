package commands

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskflow/core/internal/adapters/repository"
	"github.com/taskflow/core/internal/adapters/repository/cached"
	"github.com/taskflow/core/internal/adapters/repository/fixtures"
	"github.com/taskflow/core/internal/application/services"
	"github.com/taskflow/core/internal/infrastructure/cache"
	"github.com/taskflow/core/internal/infrastructure/config"
	"github.com/taskflow/core/internal/infrastructure/database"
	"github.com/taskflow/core/internal/infrastructure/logger"
	"github.com/taskflow/core/internal/infrastructure/metrics"
	"github.com/taskflow/core/internal/infrastructure/server"
	"github.com/taskflow/core/internal/ports"
)

// Build information, set with -ldflags "-X ...".
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// Options are the flags shared by every command
type Options struct {
	ConfigFile string
}

// NewRootCommand assembles the CLI
func NewRootCommand() *cobra.Command {
	opts := &Options{}

	rootCmd := &cobra.Command{
		Use:           "taskflow",
		Short:         "Taskflow API server and shell",
		Long:          `Taskflow keeps a to-do list, a team directory and a catalogue of partner discounts, served over HTTP or driven from the command line.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "config file (yaml, toml or json)")

	rootCmd.AddCommand(NewServeCommand(opts))
	rootCmd.AddCommand(NewMigrateCommand(opts))
	rootCmd.AddCommand(NewSeedCommand(opts))
	rootCmd.AddCommand(NewTokenCommand(opts))
	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewTaskCommand(opts))
	rootCmd.AddCommand(NewContactCommand(opts))
	rootCmd.AddCommand(NewDiscountCommand(opts))

	return rootCmd
}

// cliLogger sends logs to stderr so command output stays clean, and drops
// chatter below warn unless debug was asked for.
func cliLogger(cfg *config.Config) (*logger.Logger, error) {
	lc := cfg.Logger
	lc.Output = "stderr"
	if lc.Level != "debug" {
		lc.Level = "warn"
	}
	return logger.New(lc)
}

func loadConfig(opts *Options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// openDatabase connects to the configured SQL database regardless of the
// store backend, for the migrate and seed commands.
func openDatabase(opts *Options) (*database.DB, *config.Config, *logger.Logger, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, nil, nil, err
	}
	log, err := cliLogger(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	db, err := database.New(cfg.Database)
	if err != nil {
		return nil, nil, nil, err
	}
	return db, cfg, log, nil
}

// NewServeCommand creates the serve command
func NewServeCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the Taskflow API server",
		Long:  "Start the Taskflow API server with all configured routes and middleware",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), opts)
		},
	}
}

func runServer(ctx context.Context, opts *Options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Sync()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		m        *metrics.Metrics
		observer ports.OperationObserver
		degraded ports.DegradedReadObserver
	)
	if cfg.Metrics.Enabled {
		m = metrics.New()
		observer, degraded = m, m
	}

	rt, err := Bootstrap(ctx, cfg, appLogger, degraded)
	if err != nil {
		return err
	}
	defer rt.Close()

	tasks, contacts, discounts := rt.Services(observer)
	srv := server.New(cfg, server.Dependencies{
		Tasks:     tasks,
		Contacts:  contacts,
		Discounts: discounts,
		Identity:  services.NewIdentityService(cfg.JWT, appLogger),
		Metrics:   m,
		Checks:    rt.Checks,
	}, appLogger)

	appLogger.Infow("Starting Taskflow API server",
		"addr", cfg.Server.GetAddr(),
		"environment", cfg.App.Environment,
		"store", cfg.Store.Backend,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(cfg.Server.GetAddr())
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return <-errCh
}

// NewMigrateCommand creates the migrate command with subcommands
func NewMigrateCommand(opts *Options) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  "Manage database migrations (up, down, version)",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Run all up migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, _, err := openDatabase(opts)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.MigrateUp(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migration up completed successfully")
			return nil
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Run all down migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, _, err := openDatabase(opts)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.MigrateDown(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migration down completed successfully")
			return nil
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, _, err := openDatabase(opts)
			if err != nil {
				return err
			}
			defer db.Close()

			version, dirty, err := database.MigrationVersion(db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Current migration version: %d\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "Dirty: %t\n", dirty)
			return nil
		},
	})

	return migrateCmd
}

// NewSeedCommand creates the seed command
func NewSeedCommand(opts *Options) *cobra.Command {
	var file string

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace the database contents with fixtures",
		Long:  "Load the embedded fixtures, or a JSON/YAML fixture file, into the SQL store. Existing rows are removed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, cfg, log, err := openDatabase(opts)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.MigrateUp(db); err != nil {
				return err
			}

			if file == "" {
				file = cfg.Store.Fixtures
			}
			set, err := fixtures.Load(file)
			if err != nil {
				return err
			}

			if err := repository.NewSeeder(db, log).Seed(cmd.Context(), set); err != nil {
				return err
			}

			if cfg.Redis.Enabled {
				rc, err := cache.Connect(cmd.Context(), cfg.Redis, cache.ConnectOptions{MaxRetries: 1}, log)
				if err != nil {
					log.Warnw("Discount cache not flushed", "error", err)
				} else {
					defer rc.Close()
					if err := cached.FlushDiscounts(cmd.Context(), rc); err != nil {
						log.Warnw("Discount cache not flushed", "error", err)
					}
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d tasks, %d contacts and %d discounts\n", len(set.Tasks), len(set.Contacts), len(set.Discounts))
			return nil
		},
	}
	seedCmd.Flags().StringVarP(&file, "file", "f", "", "fixture file (.json, .yaml or .yml)")

	return seedCmd
}

// NewTokenCommand creates the token command
func NewTokenCommand(opts *Options) *cobra.Command {
	var identity ports.Identity

	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development identity token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			log, err := cliLogger(cfg)
			if err != nil {
				return err
			}

			token, err := services.NewIdentityService(cfg.JWT, log).IssueToken(identity)
			if errors.Is(err, services.ErrIdentityDisabled) {
				return fmt.Errorf("%w: set JWT_SECRET", err)
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	tokenCmd.Flags().StringVar(&identity.UserID, "user-id", "", "user identifier (random when empty)")
	tokenCmd.Flags().StringVar(&identity.Email, "email", "", "user email")
	tokenCmd.Flags().StringVar(&identity.Name, "name", "", "display name")

	return tokenCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print Taskflow version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Taskflow %s\n", Version)
			fmt.Fprintf(cmd.OutOrStdout(), "Build Date: %s\n", BuildDate)
			fmt.Fprintf(cmd.OutOrStdout(), "Git Commit: %s\n", Commit)
		},
	}
}
