// Package main implements the taskboard CLI and server.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"taskboard/internal/config"
	"taskboard/internal/handler"
	"taskboard/internal/repository"
	"taskboard/internal/repository/postgres"
	"taskboard/internal/repository/sqlite"
)

func main() {
	os.Exit(run())
}

// run executes the root command and returns the process exit code
func run() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

var rootCmd = &cobra.Command{
	Use:           "taskboard",
	Short:         "Per-owner task tracking with a manual display order",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	configPath string
	dbPath     string
	dbDriver   string
	dbDSN      string
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (default: search standard locations)")
	flags.StringVar(&dbPath, "db", "", "SQLite database path")
	flags.StringVar(&dbDriver, "driver", "", "database driver: sqlite or postgres")
	flags.StringVar(&dbDSN, "dsn", "", "PostgreSQL connection string")
}

// loadConfig reads the config file and applies command line overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, _, err = config.LoadFromPath(configPath)
	} else {
		cfg, _, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	applyFlagOverrides(cfg, cmd.Flags())

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlagOverrides copies flags set on the command line over cfg.
// A bare --dsn implies the postgres driver.
func applyFlagOverrides(cfg *config.Config, flags *pflag.FlagSet) {
	if flags.Changed("driver") {
		cfg.Database.Driver = strings.ToLower(dbDriver)
	}
	if flags.Changed("db") {
		cfg.Database.Path = dbPath
	}
	if flags.Changed("dsn") {
		cfg.Database.DSN = dbDSN
		if !flags.Changed("driver") {
			cfg.Database.Driver = config.DriverPostgres
		}
	}
	if flags.Changed("addr") {
		cfg.Server.Addr, _ = flags.GetString("addr")
	}
}

// store is a repository.Store that can report its health
type store interface {
	repository.Store
	handler.Pinger
}

// openStore connects to the configured database
func openStore(ctx context.Context, cfg *config.Config) (store, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		return postgres.New(ctx, cfg.Database.DSN)
	default:
		return sqlite.New(cfg.Database.Path)
	}
}

// withStore loads config, opens the store and runs fn against it
func withStore(cmd *cobra.Command, fn func(ctx context.Context, s store) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	s, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	return fn(ctx, s)
}
