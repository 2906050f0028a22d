package ports

import (
	"context"
	"shipment-allocation-service/internal/domain"
)

// Contract for memoizing computed shipment plans.
// Keys are opaque and derived by the caller from the full allocation input.
type PlanCache interface {
	// Return the cached plan and whether it was present.
	Get(ctx context.Context, key string) (domain.ShipmentPlan, bool, error)
	// Store a plan under key.
	Put(ctx context.Context, key string, plan domain.ShipmentPlan) error
}
