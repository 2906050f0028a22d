package main

import (
	"context"
	"database/sql"
	"shipment-allocation-service/internal/adapters/repositories"
	"shipment-allocation-service/internal/config"
	"shipment-allocation-service/internal/platform/db"
	"shipment-allocation-service/internal/platform/obs"

	"go.uber.org/zap"
)

func main() {
	cfg, found, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := obs.NewLogger(cfg.Logging("console"))
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if !found {
		logger.Info("No .env file found (using environment variables)")
	}

	dialect, err := db.DialectFor(cfg.DBDriver)
	if err != nil {
		logger.Fatal("invalid DB_DRIVER", zap.Error(err))
	}

	var conn *sql.DB
	if dialect == db.Postgres {
		conn, err = db.Open(cfg.DatabaseURL)
	} else {
		conn, err = db.OpenSQLite(cfg.DBPath)
	}
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer conn.Close()

	if err := initAndSeed(context.Background(), logger, conn, dialect, cfg.SeedPath); err != nil {
		logger.Fatal("init and seed", zap.Error(err))
	}
}

func initAndSeed(ctx context.Context, logger *zap.Logger, conn *sql.DB, dialect db.Dialect, seedPath string) error {
	logger.Info("Initializing database schema...")
	if err := repositories.InitSchema(ctx, conn); err != nil {
		return err
	}
	logger.Info("Schema ready.")

	logger.Info("Seeding warehouses...", zap.String("path", seedPath))
	if err := repositories.SeedFromJSON(ctx, conn, dialect, seedPath); err != nil {
		return err
	}
	logger.Info("Seeding complete.")

	return nil
}
