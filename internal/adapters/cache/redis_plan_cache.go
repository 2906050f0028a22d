package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"shipment-allocation-service/internal/domain"
	"shipment-allocation-service/internal/platform/obs"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// cachedRecord is the stored form of a fulfillment record. Unlike the external
// contract form it keeps the rank, so cached plans compare like fresh ones.
type cachedRecord struct {
	Warehouse string         `json:"warehouse"`
	Rank      int            `json:"rank"`
	Items     map[string]int `json:"items"`
}

// RedisPlanCache is a Redis-backed cache for computed shipment plans.
// Keys are expected to be derived from the full allocation input by the caller.
type RedisPlanCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisPlanCache(client *redis.Client, ttl time.Duration) *RedisPlanCache {
	return &RedisPlanCache{Client: client, TTL: ttl}
}

// Fetch a cached plan. A missing key is reported as ok=false, not as an error.
func (c *RedisPlanCache) Get(ctx context.Context, key string) (_ domain.ShipmentPlan, _ bool, err error) {
	defer obs.Time(ctx, "plan.cache.Get")(&err)

	if c.Client == nil {
		return nil, false, errors.New("plan cache: redis client is nil")
	}

	if strings.TrimSpace(key) == "" {
		return nil, false, errors.New("get plan cache: key must not be empty")
	}

	raw, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get plan cache key=%q: %w", key, err)
	}

	var records []cachedRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, false, fmt.Errorf("get plan cache key=%q: decode: %w", key, err)
	}

	plan := make(domain.ShipmentPlan, 0, len(records))
	for _, r := range records {
		plan = append(plan, domain.FulfillmentRecord{
			Warehouse: r.Warehouse,
			Rank:      r.Rank,
			Items:     r.Items,
		})
	}

	return plan, true, nil
}

// Store a plan under key with the configured TTL. Zero TTL keeps it until evicted.
func (c *RedisPlanCache) Put(ctx context.Context, key string, plan domain.ShipmentPlan) (err error) {
	defer obs.Time(ctx, "plan.cache.Put")(&err)

	if c.Client == nil {
		return errors.New("plan cache: redis client is nil")
	}

	if strings.TrimSpace(key) == "" {
		return errors.New("insert plan cache: key must not be empty")
	}

	records := make([]cachedRecord, 0, len(plan))
	for _, r := range plan {
		records = append(records, cachedRecord{
			Warehouse: r.Warehouse,
			Rank:      r.Rank,
			Items:     r.Items,
		})
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("insert plan cache key=%q: encode: %w", key, err)
	}

	if err := c.Client.Set(ctx, key, payload, c.TTL).Err(); err != nil {
		return fmt.Errorf("insert plan cache key=%q: %w", key, err)
	}

	return nil
}
