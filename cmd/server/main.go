package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"shipment-allocation-service/internal/adapters/cache"
	"shipment-allocation-service/internal/adapters/repositories"
	"shipment-allocation-service/internal/api"
	"shipment-allocation-service/internal/config"
	"shipment-allocation-service/internal/platform/db"
	"shipment-allocation-service/internal/platform/obs"
	"shipment-allocation-service/internal/ports"
	"shipment-allocation-service/internal/services"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// main is the application composition root.
// It wires concrete adapters (SQL store, plan cache) behind ports and starts the HTTP server.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, found, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := obs.NewLogger(cfg.Logging(""))
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if !found {
		logger.Info("No .env file found (using environment variables)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, dialect, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Initialize schema and seed demo data on startup for local runs.
	if err := initAndSeed(ctx, conn, dialect, cfg.SeedPath); err != nil {
		return err
	}

	planCache, closeCache, err := newPlanCache(ctx, cfg, conn, dialect)
	if err != nil {
		return err
	}
	defer closeCache()

	metrics := obs.NewMetrics()
	repo := repositories.NewSQLWarehouseRepository(conn, dialect)
	planner := &services.ShipmentPlanner{
		Repo:             repo,
		Cache:            planCache,
		Recorder:         metrics,
		MaxWarehouses:    cfg.MaxWarehouses,
		BatchConcurrency: cfg.BatchConcurrency,
	}
	router := api.NewRouter(repo, planner, metrics)

	// Write timeout leaves room for exhaustive searches near the warehouse limit.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("Shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openStore(cfg config.Config) (*sql.DB, db.Dialect, error) {
	dialect, err := db.DialectFor(cfg.DBDriver)
	if err != nil {
		return nil, "", err
	}

	var conn *sql.DB
	if dialect == db.Postgres {
		conn, err = db.Open(cfg.DatabaseURL)
	} else {
		conn, err = db.OpenSQLite(cfg.DBPath)
	}
	if err != nil {
		return nil, "", err
	}

	return conn, dialect, nil
}

func initAndSeed(ctx context.Context, conn *sql.DB, dialect db.Dialect, seedPath string) error {
	if err := repositories.InitSchema(ctx, conn); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if _, err := os.Stat(seedPath); errors.Is(err, os.ErrNotExist) {
		zap.L().Info("No seed file, keeping stored warehouses", zap.String("path", seedPath))
		return nil
	}

	if err := repositories.SeedFromJSON(ctx, conn, dialect, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}

// newPlanCache prefers Redis when configured and falls back to the SQL store.
func newPlanCache(ctx context.Context, cfg config.Config, conn *sql.DB, dialect db.Dialect) (ports.PlanCache, func(), error) {
	if cfg.RedisAddr == "" {
		return cache.NewSQLPlanCache(conn, dialect, cfg.CacheTTL), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connect redis %q: %w", cfg.RedisAddr, err)
	}

	return cache.NewRedisPlanCache(client, cfg.CacheTTL), func() { _ = client.Close() }, nil
}
