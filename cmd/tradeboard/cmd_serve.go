package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/HerbHall/tradeboard/internal/seed"
	"github.com/HerbHall/tradeboard/internal/server"
	"github.com/HerbHall/tradeboard/internal/version"
)

func newServeCmd(a *app) *cobra.Command {
	var withSeed bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the list API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context(), withSeed)
		},
	}
	cmd.Flags().BoolVar(&withSeed, "seed", false, "load the sample catalog before serving (also server.seed_on_start)")
	return cmd
}

func (a *app) serve(ctx context.Context, withSeed bool) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Info("tradeboard server starting", zap.String("version", version.Short()))

	settings, err := a.cfg.Serve()
	if err != nil {
		return err
	}

	products, orders, closeStore, err := a.openRepos(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	if withSeed || settings.Server.SeedOnStart {
		c, err := seed.Sample()
		if err != nil {
			return err
		}
		l := &seed.Loader{Products: products, Orders: orders, Logger: a.logger.Named("seed")}
		if _, err := l.Load(ctx, c); err != nil {
			return err
		}
	}

	srv := server.New(settings.Server.Addr(), server.Deps{Products: products, Orders: orders}, a.logger.Named("server"),
		server.WithRateLimit(settings.Server.RateLimit.RPS, settings.Server.RateLimit.Burst),
		server.WithPageSizes(settings.List.DefaultPageSize, settings.List.MaxPageSize),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	a.logger.Info("tradeboard server stopped")
	return err
}
