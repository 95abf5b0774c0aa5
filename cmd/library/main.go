package main

import (
	"context"
	"encoding/json"
	"fmt"
	stdLog "log"
	"os"
	"time"

	"github.com/Astemirdum/library-lending/library/app"
	"github.com/Astemirdum/library-lending/library/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		stdLog.Fatal("load envs from .env ", err)
	}
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		debug  bool
		memory bool
	)
	loadConfig := func() *config.Config {
		opts := []config.Option{config.WithWriteTimeout(time.Minute)}
		if debug {
			opts = append(opts, config.WithLogLevel(zapcore.DebugLevel))
		}
		if memory {
			opts = append(opts, config.WithStorage(config.StorageMemory))
		}
		return config.NewConfig(opts...)
	}

	root := &cobra.Command{
		Use:           "library",
		Short:         "Library lending ledger: reservations, loans and copy counters",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "debug log level unless LOG_LEVEL is set")
	root.PersistentFlags().BoolVar(&memory, "memory", false, "keep state in memory instead of postgres")

	var sweepInterval time.Duration
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the maintenance sweeper and the catalog consumer",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if sweepInterval > 0 {
				config.WithSweepInterval(sweepInterval)(cfg)
			}
			return app.Run(cfg)
		},
	}
	serve.Flags().DurationVar(&sweepInterval, "sweep-interval", 0, "maintenance sweep interval unless SWEEP_INTERVAL is set")

	sweep := &cobra.Command{
		Use:   "sweep",
		Short: "Run one maintenance sweep and print the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := app.New(ctx, loadConfig())
			if err != nil {
				return err
			}
			defer a.Close() //nolint:errcheck
			report, err := a.Sweep(ctx)
			out, _ := json.MarshalIndent(report, "", "  ") //nolint:errcheck
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Migrate(cmd.Context(), loadConfig())
		},
	}

	root.AddCommand(serve, sweep, migrate)
	root.SetContext(context.Background())
	return root
}
