package repositories

import (
	"context"
	"maps"
	"shipment-allocation-service/internal/domain"
	"sync"
)

// In-memory WarehouseRepository used by service and API tests.
type MemoryWarehouseRepository struct {
	mu         sync.RWMutex
	warehouses []domain.Warehouse
}

func NewMemoryWarehouseRepository(warehouses []domain.Warehouse) *MemoryWarehouseRepository {
	r := &MemoryWarehouseRepository{}
	r.Replace(warehouses)
	return r
}

// Replace swaps the stored sequence for a copy of warehouses.
func (r *MemoryWarehouseRepository) Replace(warehouses []domain.Warehouse) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warehouses = cloneWarehouses(warehouses)
}

func (r *MemoryWarehouseRepository) ListWarehouses(ctx context.Context) ([]domain.Warehouse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneWarehouses(r.warehouses), nil
}

func cloneWarehouses(in []domain.Warehouse) []domain.Warehouse {
	out := make([]domain.Warehouse, 0, len(in))
	for _, w := range in {
		out = append(out, domain.Warehouse{Name: w.Name, Inventory: maps.Clone(w.Inventory)})
	}
	return out
}
