package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"shipment-allocation-service/internal/domain"
	"shipment-allocation-service/internal/platform/db"
	"shipment-allocation-service/internal/platform/obs"
	"strings"
	"time"
)

// SQLPlanCache is a SQL-backed cache for computed shipment plans, used when no
// Redis is configured. Entries older than TTL are treated as misses.
type SQLPlanCache struct {
	DB      *sql.DB
	Dialect db.Dialect
	TTL     time.Duration

	now func() time.Time
}

func NewSQLPlanCache(conn *sql.DB, dialect db.Dialect, ttl time.Duration) *SQLPlanCache {
	return &SQLPlanCache{DB: conn, Dialect: dialect, TTL: ttl, now: time.Now}
}

// Fetch a cached plan stored under key.
func (s *SQLPlanCache) Get(ctx context.Context, key string) (_ domain.ShipmentPlan, _ bool, err error) {
	defer obs.Time(ctx, "plan.cache.sql.Get")(&err)

	if s.DB == nil {
		return nil, false, errors.New("plan cache: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return nil, false, errors.New("get plan cache: key must not be empty")
	}

	q := s.Dialect.Rebind(`
	SELECT plan, created_at
    FROM plan_cache
    WHERE cache_key = ?;
	`)

	var raw string
	var createdAt int64
	err = s.DB.QueryRowContext(ctx, q, key).Scan(&raw, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get plan cache: query plan_cache table: %w", err)
	}

	if s.TTL > 0 && s.clock().Sub(time.Unix(createdAt, 0)) > s.TTL {
		return nil, false, nil
	}

	var records []cachedRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, false, fmt.Errorf("get plan cache key=%q: decode: %w", key, err)
	}

	plan := make(domain.ShipmentPlan, 0, len(records))
	for _, r := range records {
		plan = append(plan, domain.FulfillmentRecord{Warehouse: r.Warehouse, Rank: r.Rank, Items: r.Items})
	}

	return plan, true, nil
}

// Store a plan, replacing any previous entry for key.
func (s *SQLPlanCache) Put(ctx context.Context, key string, plan domain.ShipmentPlan) (err error) {
	defer obs.Time(ctx, "plan.cache.sql.Put")(&err)

	if s.DB == nil {
		return errors.New("plan cache: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return errors.New("insert plan cache: key must not be empty")
	}

	records := make([]cachedRecord, 0, len(plan))
	for _, r := range plan {
		records = append(records, cachedRecord{Warehouse: r.Warehouse, Rank: r.Rank, Items: r.Items})
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("insert plan cache key=%q: encode: %w", key, err)
	}

	q := s.Dialect.Rebind(`
	INSERT INTO plan_cache (cache_key, plan, created_at)
    VALUES (?, ?, ?)
	ON CONFLICT (cache_key) DO UPDATE
	SET plan = EXCLUDED.plan,
		created_at = EXCLUDED.created_at;
	`)

	if _, err := s.DB.ExecContext(ctx, q, key, string(payload), s.clock().Unix()); err != nil {
		return fmt.Errorf("insert plan cache key=%q: %w", key, err)
	}

	return nil
}

func (s *SQLPlanCache) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}
