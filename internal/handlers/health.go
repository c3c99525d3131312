package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

// Counters snapshots named in-process counters.
type Counters func() map[string]int64

type HealthHandler struct {
	checks   map[string]Check
	counters map[string]Counters
	version  string
}

func NewHealthHandler(version string, checks map[string]Check) *HealthHandler {
	return &HealthHandler{checks: checks, counters: map[string]Counters{}, version: version}
}

// WithCounters publishes a counter set under name on /health/stats.
func (h *HealthHandler) WithCounters(name string, counters Counters) *HealthHandler {
	h.counters[name] = counters
	return h
}

func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := "ok"
	code := fiber.StatusOK
	services := fiber.Map{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			services[name] = "unavailable"
			status = "degraded"
			code = fiber.StatusServiceUnavailable
			continue
		}
		services[name] = "connected"
	}

	return c.Status(code).JSON(fiber.Map{
		"status":   status,
		"version":  h.version,
		"services": services,
	})
}

func (h *HealthHandler) Stats(c *fiber.Ctx) error {
	stats := fiber.Map{}
	for name, counters := range h.counters {
		stats[name] = counters()
	}
	return c.JSON(fiber.Map{
		"version": h.version,
		"stats":   stats,
	})
}
