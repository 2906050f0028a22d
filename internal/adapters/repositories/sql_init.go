package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"shipment-allocation-service/internal/domain"
	"shipment-allocation-service/internal/platform/db"
	"strings"
)

// Initialize the database schema. The DDL is valid for both SQLite and Postgres.
func InitSchema(ctx context.Context, conn *sql.DB) error {
	if conn == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createWarehousesQuery := `
	CREATE TABLE IF NOT EXISTS warehouses (
		name TEXT PRIMARY KEY,
		rank INTEGER NOT NULL UNIQUE
	);
	`

	createInventoryQuery := `
	CREATE TABLE IF NOT EXISTS warehouse_inventory (
        warehouse_name TEXT NOT NULL REFERENCES warehouses(name) ON DELETE CASCADE,
        item TEXT NOT NULL,
        quantity INTEGER NOT NULL CHECK (quantity >= 0),
        PRIMARY KEY (warehouse_name, item)
    );
	`

	createPlanCacheQuery := `
	CREATE TABLE IF NOT EXISTS plan_cache (
        cache_key TEXT PRIMARY KEY,
        plan TEXT NOT NULL,
        created_at BIGINT NOT NULL
    );
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_warehouse_inventory_item
    ON warehouse_inventory(item);
	`

	statements := []string{
		createWarehousesQuery,
		createInventoryQuery,
		createPlanCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// Warehouse seed entry. Its position in the seed array becomes its rank.
type WarehouseSeed struct {
	Name      string         `json:"name"`
	Inventory map[string]int `json:"inventory"`
}

// Read and validate a warehouse seed file.
func LoadSeedFile(jsonPath string) ([]domain.Warehouse, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("seed warehouses: read %q: %w", jsonPath, err)
	}

	var data []WarehouseSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return nil, fmt.Errorf("seed warehouses: parse json: %w", err)
	}

	warehouses := make([]domain.Warehouse, 0, len(data))
	for i, item := range data {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			return nil, fmt.Errorf("seed warehouses: warehouse at index %d: name cannot be empty", i+1)
		}

		inv := make(map[string]int, len(item.Inventory))
		for sku, qty := range item.Inventory {
			trimmed := strings.TrimSpace(sku)
			if _, dup := inv[trimmed]; dup {
				return nil, fmt.Errorf("seed warehouses: warehouse %q: item %q listed more than once", name, trimmed)
			}
			inv[trimmed] = qty
		}
		warehouses = append(warehouses, domain.Warehouse{Name: name, Inventory: inv})
	}

	if err := domain.ValidateWarehouses(nil, warehouses, false); err != nil {
		return nil, fmt.Errorf("seed warehouses: %w", err)
	}

	return warehouses, nil
}

// Populate the database with warehouse data from a JSON file.
// Existing warehouses are replaced so ranks always match the seed order.
func SeedFromJSON(ctx context.Context, conn *sql.DB, dialect db.Dialect, jsonPath string) error {
	warehouses, err := LoadSeedFile(jsonPath)
	if err != nil {
		return err
	}

	return ReplaceWarehouses(ctx, conn, dialect, warehouses)
}

// Replace all stored warehouses with the given sequence, ranked by position.
func ReplaceWarehouses(ctx context.Context, conn *sql.DB, dialect db.Dialect, warehouses []domain.Warehouse) error {
	if conn == nil {
		return errors.New("replace warehouses: DB is nil")
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace warehouses: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, q := range []string{"DELETE FROM warehouse_inventory;", "DELETE FROM warehouses;"} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("replace warehouses: clear: %w", err)
		}
	}

	warehouseStmt, err := tx.PrepareContext(ctx, dialect.Rebind(`
	INSERT INTO warehouses (
		name,
		rank
	)
	VALUES (?, ?);
	`))
	if err != nil {
		return fmt.Errorf("replace warehouses: prepare warehouse insert: %w", err)
	}
	defer warehouseStmt.Close()

	inventoryStmt, err := tx.PrepareContext(ctx, dialect.Rebind(`
	INSERT INTO warehouse_inventory (
		warehouse_name,
		item,
		quantity
	)
	VALUES (?, ?, ?);
	`))
	if err != nil {
		return fmt.Errorf("replace warehouses: prepare inventory insert: %w", err)
	}
	defer inventoryStmt.Close()

	for rank, w := range warehouses {
		if _, err := warehouseStmt.ExecContext(ctx, w.Name, rank); err != nil {
			return fmt.Errorf("replace warehouses: insert warehouse=%q: %w", w.Name, err)
		}

		for item, qty := range w.Inventory {
			if _, err := inventoryStmt.ExecContext(ctx, w.Name, item, qty); err != nil {
				return fmt.Errorf("replace warehouses: insert warehouse=%q item=%q: %w", w.Name, item, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace warehouses: commit tx: %w", err)
	}

	return nil
}
