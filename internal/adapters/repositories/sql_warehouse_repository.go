package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"shipment-allocation-service/internal/domain"
	"shipment-allocation-service/internal/platform/db"
	"shipment-allocation-service/internal/platform/obs"
)

// SQL-backed implementation of the WarehouseRepository port.
type SQLWarehouseRepository struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewSQLWarehouseRepository(conn *sql.DB, dialect db.Dialect) *SQLWarehouseRepository {
	return &SQLWarehouseRepository{DB: conn, Dialect: dialect}
}

// Return all stored warehouses ordered by rank, cheapest first.
func (s *SQLWarehouseRepository) ListWarehouses(ctx context.Context) (_ []domain.Warehouse, err error) {
	defer obs.Time(ctx, "warehouses.ListWarehouses")(&err)

	if s.DB == nil {
		return nil, errors.New("sql warehouse repository: DB is nil")
	}

	// LEFT JOIN keeps warehouses without inventory rows; they still hold a rank.
	query := `
	SELECT
		w.name,
		i.item,
		i.quantity
	FROM warehouses w
	LEFT JOIN warehouse_inventory i ON i.warehouse_name = w.name
	ORDER BY w.rank, i.item;
	`
	rows, err := s.DB.QueryContext(ctx, s.Dialect.Rebind(query))
	if err != nil {
		return nil, fmt.Errorf("list warehouses: query warehouses table: %w", err)
	}
	defer rows.Close()

	warehouses := make([]domain.Warehouse, 0, 16)
	for rows.Next() {
		var name string
		var item sql.NullString
		var qty sql.NullInt64
		if err := rows.Scan(&name, &item, &qty); err != nil {
			return nil, fmt.Errorf("list warehouses: scan row: %w", err)
		}

		if n := len(warehouses); n == 0 || warehouses[n-1].Name != name {
			warehouses = append(warehouses, domain.Warehouse{Name: name, Inventory: map[string]int{}})
		}

		if item.Valid {
			warehouses[len(warehouses)-1].Inventory[item.String] = int(qty.Int64)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list warehouses: row iteration: %w", err)
	}

	return warehouses, nil
}
