package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/salaryrace/salaryrace-go/internal/client"
	"github.com/salaryrace/salaryrace-go/internal/compare"
	"github.com/salaryrace/salaryrace-go/internal/config"
	"github.com/salaryrace/salaryrace-go/internal/observability"
	"github.com/salaryrace/salaryrace-go/internal/store"
)

type rootOptions struct {
	apiURL   string
	dbPath   string
	logLevel string

	cfg    config.Config
	logger *slog.Logger
	closer func() error
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "salaryrace",
		Short: "Race two salaries, second by second",
		Long: `salaryrace creates salary comparisons and shows how much each side
earns per second since the comparison was created.

Commands use the local SQLite database by default. Pass --api to talk to a
running salaryrace server instead.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts.cfg = cfg
			if opts.logLevel == "" {
				opts.logLevel = cfg.LogLevel
			}
			opts.logger = observability.InitStderrLogger(opts.logLevel)
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if opts.closer != nil {
				return opts.closer()
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.apiURL, "api", os.Getenv("SALARYRACE_API_URL"), "salaryrace server URL (default: use the local database)")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite database path (default: SALARYRACE_DATABASE_PATH)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newCreateCmd(opts),
		newShowCmd(opts),
		newWatchCmd(opts),
		newOGCmd(opts),
		newMigrateCmd(opts),
		newAnalyticsCmd(opts),
	)
	return root
}

// openStore opens the local database, migrating it when auto-migrate is on.
func (o *rootOptions) openStore(ctx context.Context) (*store.Store, error) {
	path := o.dbPath
	if path == "" {
		path = o.cfg.DatabasePath
	}
	st, err := store.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	o.closer = st.Close
	if o.cfg.AutoMigrate {
		if _, err := st.Migrate(ctx); err != nil {
			return nil, err
		}
	}
	return st, nil
}

// backend picks the HTTP API when --api is set, else the local store.
func (o *rootOptions) backend(ctx context.Context) (backend, error) {
	if o.apiURL != "" {
		return remoteBackend{c: client.New(o.apiURL)}, nil
	}
	st, err := o.openStore(ctx)
	if err != nil {
		return nil, err
	}
	svc := compare.NewService(st,
		compare.WithDefaultCurrency(o.cfg.DefaultCurrency),
		compare.WithLogger(o.logger),
	)
	return localBackend{svc: svc, baseURL: o.cfg.BaseURL}, nil
}

func (o *rootOptions) requireAPI(cmd *cobra.Command) error {
	if o.apiURL == "" {
		return fmt.Errorf("%s needs --api or SALARYRACE_API_URL", cmd.Name())
	}
	return nil
}
