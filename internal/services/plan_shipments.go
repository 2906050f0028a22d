package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"shipment-allocation-service/internal/domain"
	"shipment-allocation-service/internal/platform/obs"
	"shipment-allocation-service/internal/ports"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const planKeyPrefix = "shipment:plan:"

type PlanShipmentRequest struct {
	Order domain.Order
	// Optional inline warehouse sequence. When nil the stored warehouses are used.
	Warehouses []domain.Warehouse
}

type PlanShipmentResult struct {
	Plan      domain.ShipmentPlan
	Fulfilled bool
	Cached    bool
}

// ShipmentPlanner coordinates warehouse retrieval, plan caching and the
// allocation search. Cache and Recorder are optional.
type ShipmentPlanner struct {
	Repo     ports.WarehouseRepository
	Cache    ports.PlanCache
	Recorder ports.AllocationRecorder

	MaxWarehouses    int
	BatchConcurrency int
}

// PlanShipment computes the cheapest plan for one order.
func (p *ShipmentPlanner) PlanShipment(ctx context.Context, req PlanShipmentRequest) (_ PlanShipmentResult, err error) {
	defer obs.Time(ctx, "shipment.PlanShipment")(&err)

	warehouses := req.Warehouses
	if warehouses == nil {
		stored, err := p.storedWarehouses(ctx)
		if err != nil {
			return PlanShipmentResult{}, fmt.Errorf("plan shipment: %w", err)
		}
		warehouses = restrictAll(stored, req.Order)
	}

	res, err := p.plan(ctx, req.Order, warehouses)
	if err != nil {
		return PlanShipmentResult{}, fmt.Errorf("plan shipment: %w", err)
	}

	return res, nil
}

// PlanBatch plans independent orders concurrently against the stored warehouses.
// Results are returned in the order of the input. The first failure cancels
// the remaining orders.
func (p *ShipmentPlanner) PlanBatch(ctx context.Context, orders []domain.Order) (_ []PlanShipmentResult, err error) {
	defer obs.Time(ctx, "shipment.PlanBatch")(&err)

	if len(orders) == 0 {
		return []PlanShipmentResult{}, nil
	}

	stored, err := p.storedWarehouses(ctx)
	if err != nil {
		return nil, fmt.Errorf("plan batch: %w", err)
	}

	limit := p.BatchConcurrency
	if limit <= 0 {
		limit = 4
	}

	results := make([]PlanShipmentResult, len(orders))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, order := range orders {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res, err := p.plan(gctx, order, restrictAll(stored, order))
			if err != nil {
				return fmt.Errorf("plan batch: order #%d: %w", i+1, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func (p *ShipmentPlanner) storedWarehouses(ctx context.Context) ([]domain.Warehouse, error) {
	if p.Repo == nil {
		return nil, errors.New("warehouse repository is nil")
	}

	ws, err := p.Repo.ListWarehouses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	return ws, nil
}

func (p *ShipmentPlanner) plan(ctx context.Context, order domain.Order, warehouses []domain.Warehouse) (PlanShipmentResult, error) {
	key, keyErr := planKey(order, warehouses)
	if keyErr != nil {
		zap.L().Warn("plan key failed", zap.Error(keyErr))
	}

	// Consult the cache before running the exponential search.
	if p.Cache != nil && keyErr == nil {
		plan, ok, err := p.Cache.Get(ctx, key)
		switch {
		case err != nil:
			p.observeCache(ports.CacheError)
			zap.L().Warn("plan cache read failed", zap.String("req_id", obs.RequestID(ctx)), zap.Error(err))
		case ok:
			p.observeCache(ports.CacheHit)
			return PlanShipmentResult{Plan: plan, Fulfilled: isFulfilled(order, plan), Cached: true}, nil
		default:
			p.observeCache(ports.CacheMiss)
		}
	}

	start := time.Now()
	plan, err := Shipment(order, warehouses, WithMaxWarehouses(p.MaxWarehouses))
	dur := time.Since(start)
	if err != nil {
		p.observeAllocation(ports.OutcomeInvalid, 0, dur)
		return PlanShipmentResult{}, err
	}

	fulfilled := isFulfilled(order, plan)
	switch {
	case !order.HasDemand():
		p.observeAllocation(ports.OutcomeEmpty, 0, dur)
	case fulfilled:
		p.observeAllocation(ports.OutcomeFulfilled, len(plan), dur)
	default:
		p.observeAllocation(ports.OutcomeInfeasible, 0, dur)
	}

	if p.Cache != nil && keyErr == nil {
		if err := p.Cache.Put(ctx, key, plan); err != nil {
			zap.L().Warn("plan cache write failed", zap.String("req_id", obs.RequestID(ctx)), zap.Error(err))
		}
	}

	return PlanShipmentResult{Plan: plan, Fulfilled: fulfilled}, nil
}

func (p *ShipmentPlanner) observeAllocation(outcome string, n int, dur time.Duration) {
	if p.Recorder != nil {
		p.Recorder.ObserveAllocation(outcome, n, dur)
	}
}

func (p *ShipmentPlanner) observeCache(result string) {
	if p.Recorder != nil {
		p.Recorder.ObserveCache(result)
	}
}

// An order without demand is fulfilled by the empty plan.
func isFulfilled(order domain.Order, plan domain.ShipmentPlan) bool {
	if !order.HasDemand() {
		return true
	}
	return len(plan) > 0
}

func restrictAll(warehouses []domain.Warehouse, order domain.Order) []domain.Warehouse {
	out := make([]domain.Warehouse, 0, len(warehouses))
	for _, w := range warehouses {
		out = append(out, w.Restrict(order))
	}
	return out
}

// planKey derives a cache key from the full allocation input. encoding/json
// writes map keys sorted, so equal inputs always hash equally.
func planKey(order domain.Order, warehouses []domain.Warehouse) (string, error) {
	payload, err := json.Marshal(struct {
		Order      domain.Order       `json:"order"`
		Warehouses []domain.Warehouse `json:"warehouses"`
	}{order, warehouses})
	if err != nil {
		return "", fmt.Errorf("plan key: marshal input: %w", err)
	}

	sum := sha256.Sum256(payload)
	return planKeyPrefix + hex.EncodeToString(sum[:]), nil
}
