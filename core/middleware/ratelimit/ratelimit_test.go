package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Burst(t *testing.T) {
	app := fiber.New()
	app.Use(New(Config{Rate: 0.001, Burst: 2}))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{fiber.StatusOK, fiber.StatusOK, fiber.StatusTooManyRequests}, codes)
}

func TestNew_KeyedByIP(t *testing.T) {
	app := fiber.New()
	app.Use(New(Config{Rate: 0.001, Burst: 1}))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	codes := make([]int, 0, 2)
	for _, key := range []string{"key-a", "key-b"} {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-API-Key", key)
		resp, err := app.Test(req)
		require.NoError(t, err)
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{fiber.StatusOK, fiber.StatusTooManyRequests}, codes)
}

func TestNew_Disabled(t *testing.T) {
	app := fiber.New()
	app.Use(New(Config{}))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for i := 0; i < 50; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
}

func TestLimiter_Sweep(t *testing.T) {
	now := time.Now()
	l := &limiter{
		cfg:     Config{Rate: 1, Burst: 1, IdleTTL: time.Minute},
		clients: make(map[string]*client),
		now:     func() time.Time { return now },
	}

	assert.True(t, l.allow("a"))
	assert.False(t, l.allow("a"))
	assert.True(t, l.allow("b"))
	assert.Len(t, l.clients, 2)

	now = now.Add(2 * time.Minute)
	assert.True(t, l.allow("b"))
	assert.Len(t, l.clients, 1)
}
