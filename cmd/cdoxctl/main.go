package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"cdox/internal/app"
	"cdox/internal/config"
	"cdox/internal/database"
	"cdox/internal/database/migration"
	"cdox/internal/logger"
)

var (
	// Version is injected at build time
	Version = "dev"
)

// openDeps and runMigrations are replaced in tests.
var (
	openDeps = func(ctx context.Context, cfg *config.AppConfig, log *slog.Logger) (*app.Deps, error) {
		return app.Bootstrap(ctx, cfg, log, nil)
	}
	runMigrations = func(ctx context.Context, cfg *config.AppConfig, log *slog.Logger) error {
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		return migration.EnsureMigrated(ctx, db, log, cfg.Database.Host)
	}
)

func main() {
	if err := Execute(Version, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// cli carries what every subcommand needs once the root command has run.
type cli struct {
	cfg      *config.AppConfig
	log      *slog.Logger
	logLevel string
	out      io.Writer
}

// Execute is the entry point for the CLI, extracted for testing
func Execute(version string, args []string, out, errOut io.Writer) error {
	c := &cli{out: out}

	rootCmd := &cobra.Command{
		Use:           "cdoxctl",
		Short:         "Operate the corporate documents catalog",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			c.cfg = config.Load()
			level := c.cfg.LogLevel
			if cmd.Flags().Changed("log-level") {
				level = c.logLevel
			}
			c.log = logger.New(errOut, c.cfg.Location(), logger.ParseLevel(level))
			return c.cfg.Validate()
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		c.migrateCommand(),
		c.listCommand(),
		c.yearsCommand(),
		c.typesCommand(),
		c.cacheCommand(),
	)
	rootCmd.SetArgs(args)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return err
	}
	return nil
}

// withService opens the catalog, runs fn and closes everything again.
func (c *cli) withService(ctx context.Context, fn func(*app.Deps) error) error {
	deps, err := openDeps(ctx, c.cfg, c.log)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := deps.Close(); cerr != nil {
			c.log.Warn("closing dependencies", "error", cerr.Error())
		}
	}()
	return fn(deps)
}
