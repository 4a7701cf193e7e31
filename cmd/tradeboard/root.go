package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/HerbHall/tradeboard/internal/client"
	"github.com/HerbHall/tradeboard/internal/config"
	"github.com/HerbHall/tradeboard/internal/services"
	"github.com/HerbHall/tradeboard/internal/store"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	debug      bool
	server     string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "tradeboard",
		Short: "Marketplace list API and list-view client",
		Long: "tradeboard serves paginated, searchable product and order lists\n" +
			"and drives them from the terminal the way the storefront does.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to configuration file (default ./tradeboard.yaml)")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")
	root.PersistentFlags().StringVar(&a.server, "server", "", "API base URL for browse/export (overrides client.base_url)")

	root.AddCommand(
		newServeCmd(a),
		newSeedCmd(a),
		newBrowseCmd(a),
		newExportCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) setup() error {
	var err error
	a.cfg, err = config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.logger, err = newLogger(a.cfg, a.debug)
	return err
}

// newLogger builds the process logger. --debug or log.development selects
// the development encoder; log.level, when set, overrides the level.
func newLogger(cfg *config.Config, debug bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if debug || cfg.GetBool("log.development") {
		zc = zap.NewDevelopmentConfig()
	}
	if cfg.IsSet("log.level") {
		lvl, err := zapcore.ParseLevel(cfg.GetString("log.level"))
		if err != nil {
			return nil, fmt.Errorf("log.level: %w", err)
		}
		zc.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

// openRepos opens the configured database and migrates both repositories.
func (a *app) openRepos(ctx context.Context) (*services.SQLiteProductRepository, *services.SQLiteOrderRepository, func(), error) {
	path := a.cfg.GetString("database.path")
	st, err := store.New(path)
	if err != nil {
		return nil, nil, nil, err
	}
	closeFn := func() {
		if err := st.Close(); err != nil {
			a.logger.Warn("close store", zap.Error(err))
		}
	}

	products, err := services.NewSQLiteProductRepository(ctx, st)
	if err != nil {
		closeFn()
		return nil, nil, nil, err
	}
	orders, err := services.NewSQLiteOrderRepository(ctx, st)
	if err != nil {
		closeFn()
		return nil, nil, nil, err
	}
	a.logger.Debug("store ready", zap.String("path", path))
	return products, orders, closeFn, nil
}

func (a *app) client() *client.Client {
	base := a.server
	if base == "" {
		base = a.cfg.GetString("client.base_url")
	}
	opts := []client.Option{
		client.WithLogger(a.logger.Named("client")),
		client.WithRateLimit(a.cfg.GetFloat64("client.rps"), 1),
	}
	if d := a.cfg.GetDuration("client.timeout"); d > 0 {
		opts = append(opts, client.WithHTTPClient(&http.Client{Timeout: d}))
	}
	return client.New(base, opts...)
}
