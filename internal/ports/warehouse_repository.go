package ports

import (
	"context"
	"shipment-allocation-service/internal/domain"
)

// Port: a boundary for retrieving the cost-ranked warehouse sequence.
type WarehouseRepository interface {
	// Return all warehouses, cheapest first.
	ListWarehouses(ctx context.Context) ([]domain.Warehouse, error)
}
