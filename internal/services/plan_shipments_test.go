package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"shipment-allocation-service/internal/adapters/repositories"
	"shipment-allocation-service/internal/domain"
	"shipment-allocation-service/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlanCache struct {
	mu     sync.Mutex
	plans  map[string]domain.ShipmentPlan
	getErr error
	puts   int
}

func newFakePlanCache() *fakePlanCache {
	return &fakePlanCache{plans: map[string]domain.ShipmentPlan{}}
}

func (c *fakePlanCache) Get(_ context.Context, key string) (domain.ShipmentPlan, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	plan, ok := c.plans[key]
	return plan, ok, nil
}

func (c *fakePlanCache) Put(_ context.Context, key string, plan domain.ShipmentPlan) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plans[key] = plan
	c.puts++
	return nil
}

type fakeRecorder struct {
	mu          sync.Mutex
	allocations map[string]int
	cache       map[string]int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{allocations: map[string]int{}, cache: map[string]int{}}
}

func (r *fakeRecorder) ObserveAllocation(outcome string, _ int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.allocations[outcome]++
}

func (r *fakeRecorder) ObserveCache(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[result]++
}

type failingRepo struct{}

func (failingRepo) ListWarehouses(context.Context) ([]domain.Warehouse, error) {
	return nil, errors.New("connection refused")
}

func storedWarehouses() []domain.Warehouse {
	return []domain.Warehouse{
		{Name: "north", Inventory: map[string]int{"apple": 5, "banana": 2}},
		{Name: "south", Inventory: map[string]int{"apple": 5, "orange": 4}},
		{Name: "east", Inventory: map[string]int{"apple": 9, "banana": 9, "orange": 9}},
	}
}

func newTestPlanner() (*ShipmentPlanner, *fakePlanCache, *fakeRecorder) {
	cache := newFakePlanCache()
	rec := newFakeRecorder()
	return &ShipmentPlanner{
		Repo:     repositories.NewMemoryWarehouseRepository(storedWarehouses()),
		Cache:    cache,
		Recorder: rec,
	}, cache, rec
}

func TestPlanShipmentStoredWarehouses(t *testing.T) {
	p, _, rec := newTestPlanner()

	// Stored warehouses carry items the order does not mention; they are
	// restricted to the order before the search.
	res, err := p.PlanShipment(context.Background(), PlanShipmentRequest{
		Order: domain.Order{"apple": 10},
	})
	require.NoError(t, err)

	assert.True(t, res.Fulfilled)
	assert.False(t, res.Cached)
	assert.Equal(t, []map[string]map[string]int{
		{"south": {"apple": 5}},
		{"north": {"apple": 5}},
	}, res.Plan.Contract())
	assert.Equal(t, 1, rec.allocations[ports.OutcomeFulfilled])
	assert.Equal(t, 1, rec.cache[ports.CacheMiss])
}

func TestPlanShipmentInlineWarehouses(t *testing.T) {
	p, _, _ := newTestPlanner()

	res, err := p.PlanShipment(context.Background(), PlanShipmentRequest{
		Order: domain.Order{"apple": 1},
		Warehouses: []domain.Warehouse{
			{Name: "A", Inventory: map[string]int{"apple": 1}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, res.Plan.Warehouses())
}

func TestPlanShipmentInlineWarehousesAreStrict(t *testing.T) {
	p, _, rec := newTestPlanner()

	_, err := p.PlanShipment(context.Background(), PlanShipmentRequest{
		Order: domain.Order{"apple": 1},
		Warehouses: []domain.Warehouse{
			{Name: "A", Inventory: map[string]int{"apple": 1, "pear": 2}},
		},
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 1, rec.allocations[ports.OutcomeInvalid])
}

func TestPlanShipmentInfeasibleAndEmpty(t *testing.T) {
	p, _, rec := newTestPlanner()
	ctx := context.Background()

	res, err := p.PlanShipment(ctx, PlanShipmentRequest{Order: domain.Order{"apple": 100}})
	require.NoError(t, err)
	assert.False(t, res.Fulfilled)
	assert.Empty(t, res.Plan)

	res, err = p.PlanShipment(ctx, PlanShipmentRequest{Order: domain.Order{}})
	require.NoError(t, err)
	assert.True(t, res.Fulfilled)
	assert.Empty(t, res.Plan)

	assert.Equal(t, 1, rec.allocations[ports.OutcomeInfeasible])
	assert.Equal(t, 1, rec.allocations[ports.OutcomeEmpty])
}

func TestPlanShipmentUsesCache(t *testing.T) {
	p, cache, rec := newTestPlanner()
	ctx := context.Background()
	req := PlanShipmentRequest{Order: domain.Order{"banana": 3}}

	first, err := p.PlanShipment(ctx, req)
	require.NoError(t, err)
	require.False(t, first.Cached)
	require.Equal(t, 1, cache.puts)

	second, err := p.PlanShipment(ctx, req)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.True(t, second.Fulfilled)
	assert.Equal(t, first.Plan, second.Plan)

	assert.Equal(t, 1, rec.cache[ports.CacheHit])
	assert.Equal(t, 1, rec.cache[ports.CacheMiss])
	assert.Equal(t, 1, rec.allocations[ports.OutcomeFulfilled])
}

func TestPlanShipmentCacheErrorFallsBackToSearch(t *testing.T) {
	p, cache, rec := newTestPlanner()
	cache.getErr = errors.New("cache down")

	res, err := p.PlanShipment(context.Background(), PlanShipmentRequest{Order: domain.Order{"orange": 4}})
	require.NoError(t, err)
	assert.Equal(t, []string{"south"}, res.Plan.Warehouses())
	assert.Equal(t, 1, rec.cache[ports.CacheError])
}

func TestPlanShipmentSearchLimit(t *testing.T) {
	p, _, _ := newTestPlanner()
	p.MaxWarehouses = 2

	_, err := p.PlanShipment(context.Background(), PlanShipmentRequest{Order: domain.Order{"apple": 1}})
	require.ErrorIs(t, err, ErrSearchTooLarge)
}

func TestPlanShipmentRepositoryFailure(t *testing.T) {
	p := &ShipmentPlanner{Repo: failingRepo{}}

	_, err := p.PlanShipment(context.Background(), PlanShipmentRequest{Order: domain.Order{"apple": 1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	p = &ShipmentPlanner{}
	_, err = p.PlanShipment(context.Background(), PlanShipmentRequest{Order: domain.Order{"apple": 1}})
	require.Error(t, err)
}

func TestPlanBatchKeepsInputOrder(t *testing.T) {
	p, _, _ := newTestPlanner()
	p.BatchConcurrency = 2

	orders := []domain.Order{
		{"apple": 10},
		{"orange": 4},
		{"banana": 50},
		{"apple": 1, "banana": 1},
		{},
	}

	results, err := p.PlanBatch(context.Background(), orders)
	require.NoError(t, err)
	require.Len(t, results, len(orders))

	assert.Equal(t, []string{"south", "north"}, results[0].Plan.Warehouses())
	assert.Equal(t, []string{"south"}, results[1].Plan.Warehouses())
	assert.False(t, results[2].Fulfilled)
	assert.Equal(t, []string{"north"}, results[3].Plan.Warehouses())
	assert.True(t, results[4].Fulfilled)
}

func TestPlanBatchStopsOnInvalidOrder(t *testing.T) {
	p, _, _ := newTestPlanner()

	_, err := p.PlanBatch(context.Background(), []domain.Order{
		{"apple": 1},
		{"apple": -1},
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "order #2")
}

func TestPlanBatchEmpty(t *testing.T) {
	p, _, _ := newTestPlanner()

	results, err := p.PlanBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestPlanKeyIsStable(t *testing.T) {
	ws := storedWarehouses()

	k1, err := planKey(domain.Order{"apple": 1, "banana": 2}, ws)
	require.NoError(t, err)
	k2, err := planKey(domain.Order{"banana": 2, "apple": 1}, ws)
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
	assert.True(t, len(k1) > len(planKeyPrefix))

	k3, err := planKey(domain.Order{"apple": 2, "banana": 2}, ws)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k3)
}
