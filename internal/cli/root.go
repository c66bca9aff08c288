// Package cli wires the datacycle commands.
package cli

import (
	"fmt"
	"io"

	"github.com/maloquacious/datacycle/internal/config"
	"github.com/maloquacious/datacycle/internal/logger"
	"github.com/maloquacious/datacycle/internal/store"
	"github.com/maloquacious/datacycle/internal/store/sqlstore"
	"github.com/maloquacious/semver"
	"github.com/spf13/cobra"
)

var (
	version   = semver.Version{Minor: 1, PreRelease: "alpha", Build: semver.Commit()}
	buildDate = ""
)

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "datacycle",
		Short:        "Serve tbl_test rows and cycle through them",
		Version:      version.String(),
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().String("driver", config.DefaultDriver, "database driver (mysql|sqlite)")
	cmd.PersistentFlags().String("sqlite-path", store.DefaultSQLitePath, "sqlite database file")
	cmd.PersistentFlags().Int("pool-size", sqlstore.DefaultPoolSize, "maximum open database connections")
	cmd.PersistentFlags().String("log-level", "info", "log level (debug|info|warn|error)")

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newDBCommand())
	cmd.AddCommand(newRecordsCommand())
	cmd.AddCommand(newClientCommand())

	return cmd
}

// loadConfig reads configuration for cmd and builds a logger on stderr.
func loadConfig(cmd *cobra.Command) (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.New(cmd.ErrOrStderr(), level), nil
}

// openStore opens the configured store without contacting the backend.
func openStore(cfg *config.Config) (*sqlstore.Store, error) {
	opts, err := cfg.StoreOptions()
	if err != nil {
		return nil, err
	}
	st := sqlstore.New(opts)
	if err := st.Open(); err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

func outln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}
