package obs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLoggerRejectsUnknownFormat(t *testing.T) {
	_, err := NewLogger(LogConfig{Format: "xml"})
	require.Error(t, err)

	_, err = NewLogger(LogConfig{Level: "loud"})
	require.Error(t, err)
}

func TestNewLoggerWritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.log")

	logger, err := NewLogger(LogConfig{Level: "info", Format: "json", File: path, MaxSizeMB: 1})
	require.NoError(t, err)

	logger.Info("warehouses seeded", zap.Int("count", 3))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"warehouses seeded"`)
	assert.Contains(t, string(data), `"count":3`)
}

func TestTimeLogsFailures(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Empty(t, RequestID(context.Background()))

	func() (err error) {
		defer Time(ctx, "op.ok")(&err)
		return nil
	}()
	func() (err error) {
		defer Time(ctx, "op.fail")(&err)
		return errors.New("boom")
	}()

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zap.DebugLevel, entries[0].Level)
	assert.Equal(t, "op.ok", entries[0].ContextMap()["op"])
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, "req-1", entries[1].ContextMap()["req_id"])
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
}

func TestMetricsRecordAllocations(t *testing.T) {
	m := NewMetrics()

	m.ObserveAllocation("fulfilled", 2, 3*time.Millisecond)
	m.ObserveAllocation("fulfilled", 1, time.Millisecond)
	m.ObserveAllocation("infeasible", 0, time.Millisecond)
	m.ObserveCache("hit")
	m.ObserveHTTP(http.MethodPost, "/shipments", http.StatusOK, 5*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.allocations.WithLabelValues("fulfilled")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.allocations.WithLabelValues("infeasible")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheRequests.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "/shipments", "200")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.allocations))

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rr.Body.String(), "shipment_allocation_duration_seconds_count 3")
	assert.Contains(t, rr.Body.String(), "shipment_plan_warehouses_count 2")
}

func TestMetricsHandlerExposesRegistry(t *testing.T) {
	m := NewMetrics()
	m.ObserveCache("miss")

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `plan_cache_requests_total{result="miss"} 1`)
	assert.Contains(t, rr.Body.String(), "go_goroutines")
}
