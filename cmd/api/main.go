package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"caseflow/cases"
	"caseflow/config"
	"caseflow/db"
	"caseflow/httpapi"
	"caseflow/logging"
)

func main() {
	os.Exit(start())
}

// start returns the process exit code once every deferred cleanup has run.
func start() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}

	zapLogger, err := logging.NewZap(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		return 1
	}
	return serve(ctx, cfg, logging.New(zapLogger))
}

// serve runs the API and flushes the logger before reporting the exit code.
func serve(ctx context.Context, cfg *config.Config, logger *logging.Logger) int {
	defer logger.Sync()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error(ctx, "caseflow api stopped", zap.Error(err))
		return 1
	}
	return 0
}

// app owns everything built at process start. The repository is constructed
// exactly once here and injected downward.
type app struct {
	repo    cases.Repository
	handler http.Handler
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newApp(ctx context.Context, cfg *config.Config, logger *logging.Logger, reg *prometheus.Registry) (*app, error) {
	a := &app{}

	repo, err := a.openRepository(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.repo = repo

	if cfg.SeedDemoData {
		if err := repo.Seed(ctx, cases.DemoCases(time.Now())); err != nil {
			a.Close()
			return nil, fmt.Errorf("seed demo cases: %w", err)
		}
		logger.Info(ctx, "demo cases seeded", zap.String("backend", cfg.StoreBackend))
	}

	metrics, err := httpapi.NewMetrics(reg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	svc := cases.NewService(repo)
	a.handler = httpapi.NewServer(httpapi.Options{
		AppName:   cfg.AppName,
		APIPrefix: cfg.APIPrefix,
		Gatherer:  reg,
	}, svc, logger, metrics).Routes()

	return a, nil
}

func (a *app) openRepository(ctx context.Context, cfg *config.Config) (cases.Repository, error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			return nil, err
		}
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		return cases.NewPGRepository(pool), nil
	case config.BackendRedis:
		client, err := db.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		return cases.NewRedisRepository(client, cfg.RedisKeyPrefix), nil
	default:
		return cases.NewMemoryRepository(), nil
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logging.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := newApp(ctx, cfg, logger, reg)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           a.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info(gctx, "starting server",
			zap.String("app", cfg.AppName),
			zap.String("addr", srv.Addr),
			zap.String("backend", cfg.StoreBackend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info(context.Background(), "shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info(context.Background(), "server stopped")
	return nil
}
