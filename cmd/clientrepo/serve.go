package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"clientrepo/internal/handler"
	"clientrepo/internal/hub"
	"clientrepo/internal/metrics"
	"clientrepo/internal/repository/observable"
	"clientrepo/internal/watcher"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(c *cli) *cobra.Command {
	var (
		addr  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the client API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				c.cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("watch") {
				c.cfg.Watch = watch
			}
			return c.serve(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides config)")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload file backends when the file changes on disk")
	return cmd
}

func (c *cli) serve(ctx context.Context) error {
	c.logger.Info("starting clientrepo server", zap.String("config", c.cfg.Summary()))

	backend, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer backend.Close()

	m := metrics.New()
	sse := hub.New(c.logger)

	// Fan repository events out to metrics and SSE clients
	backend.Repo.Subscribe(m)
	backend.Repo.Subscribe(observable.ObserverFunc(func(_ context.Context, ev observable.Event) {
		sse.Broadcast(handler.EventView(ev))
	}))

	h := handler.NewClientHandler(backend.Repo, c.logger)
	router := h.Routes(handler.NewMiddleware(c.logger, m), handler.RouterOptions{
		CORSOrigins:  c.cfg.Server.CORSOrigins,
		RateLimitRPM: c.cfg.Server.RateLimitRPM,
		Events:       sse,
		Metrics:      m.Handler(),
	})

	srv := &http.Server{
		Addr:              c.cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sse.Run(gctx)
		return nil
	})

	if c.cfg.Watch && backend.FilePath != "" {
		w := watcher.ForReloader(backend.FilePath, backend.Repo, c.logger)
		g.Go(func() error {
			if err := w.Watch(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		c.logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		c.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), c.cfg.Server.ShutdownTimeout.Duration())
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		c.logger.Error("server stopped with error", zap.Error(err))
		return err
	}
	c.logger.Info("server stopped")
	return nil
}
