package middleware

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"blogeditor/internal/logger"
	"blogeditor/internal/metrics"
)

func TestRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())

	app.Get("/test", func(c *fiber.Ctx) error {
		rid := c.Locals(RequestIDLocalKey).(string)
		assert.Equal(t, rid, logger.RequestID(c.UserContext()))
		return c.SendString(rid)
	})

	t.Run("should generate new request id if not present", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		ridHeader := resp.Header.Get(RequestIDHeader)
		assert.NotEmpty(t, ridHeader)

		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		assert.Equal(t, ridHeader, buf.String())
	})

	t.Run("should preserve existing request id", func(t *testing.T) {
		existingID := "test-id-123"
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, existingID)

		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, existingID, resp.Header.Get(RequestIDHeader))

		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		assert.Equal(t, existingID, buf.String())
	})

	t.Run("should replace oversized request id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, strings.Repeat("a", maxRequestIDLen+1))

		resp, _ := app.Test(req)

		assert.Len(t, resp.Header.Get(RequestIDHeader), 36)
	})
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	app := fiber.New()

	app.Use(RequestID())
	app.Use(Logger(zap.New(core)))

	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusAccepted)
	})
	app.Get("/fail", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusServiceUnavailable, "down")
	})

	resp, _ := app.Test(httptest.NewRequest("GET", "/test", nil))
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "http_request", entry.Message)
	assert.Equal(t, zapcore.InfoLevel, entry.Level)

	fields := entry.ContextMap()
	assert.Equal(t, resp.Header.Get(RequestIDHeader), fields["request_id"])
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/test", fields["path"])
	assert.Equal(t, int64(fiber.StatusAccepted), fields["status"])
	assert.Contains(t, fields, "latency_ms")
	assert.Equal(t, "http", fields["component"])

	app.Test(httptest.NewRequest("GET", "/fail", nil))
	require.Equal(t, 2, logs.Len())
	entry = logs.All()[1]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Equal(t, int64(fiber.StatusServiceUnavailable), entry.ContextMap()["status"])
}

func TestRateLimiter(t *testing.T) {
	lim := NewRateLimiter(0.001, 2, "test_writes")
	app := fiber.New()
	app.Post("/w", lim.Handler(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})

	rejected := metrics.RateLimitRejected.WithLabelValues("test_writes")
	before := testutil.ToFloat64(rejected)

	for i := 0; i < 2; i++ {
		resp, _ := app.Test(httptest.NewRequest("POST", "/w", nil))
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	}

	resp, _ := app.Test(httptest.NewRequest("POST", "/w", nil))
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get(fiber.HeaderRetryAfter))
	assert.Equal(t, before+1, testutil.ToFloat64(rejected))
}

func TestRateLimiter_PerClient(t *testing.T) {
	lim := NewRateLimiter(0.001, 1, "test_clients")
	assert.True(t, lim.allow("10.0.0.1"))
	assert.False(t, lim.allow("10.0.0.1"))
	assert.True(t, lim.allow("10.0.0.2"))
}

func TestRateLimiter_EvictsIdleClients(t *testing.T) {
	clock := clockwork.NewFakeClock()
	lim := NewRateLimiter(1, 1, "test_evict")
	lim.clock = clock
	lim.lastSweep = clock.Now()

	require.True(t, lim.allow("10.0.0.1"))
	require.False(t, lim.allow("10.0.0.1"))

	clock.Advance(limiterIdleTTL)
	require.True(t, lim.allow("10.0.0.2"))

	lim.mu.Lock()
	_, kept := lim.limiters["10.0.0.1"]
	size := len(lim.limiters)
	lim.mu.Unlock()
	assert.False(t, kept, "refilled idle bucket should be dropped")
	assert.Equal(t, 1, size)
}

func TestRateLimiter_KeepsBucketsStillRefilling(t *testing.T) {
	clock := clockwork.NewFakeClock()
	lim := NewRateLimiter(0.001, 1, "test_evict_slow")
	lim.clock = clock
	lim.lastSweep = clock.Now()

	require.True(t, lim.allow("10.0.0.1"))

	clock.Advance(limiterIdleTTL)
	require.True(t, lim.allow("10.0.0.2"))
	assert.False(t, lim.allow("10.0.0.1"), "eviction must not hand back tokens early")
}
