package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

const probeTimeout = 2 * time.Second

// Pinger is a dependency checked by readiness probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	deps        map[string]Pinger
}

// NewHealthHandler returns a handler probing deps. Only configured
// dependencies belong in deps; the message bus is never probed.
func NewHealthHandler(serviceName, version string, deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, deps: deps}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

type probeResult struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

// Ready pings every dependency in parallel.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), probeTimeout)
	defer cancel()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]probeResult, len(h.deps))
		ready   = true
	)
	for name, dep := range h.deps {
		name, dep := name, dep
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			err := dep.Ping(ctx)
			res := probeResult{Status: "ok", LatencyMS: time.Since(start).Milliseconds()}
			if err != nil {
				res.Status, res.Error = "down", err.Error()
			}

			mu.Lock()
			defer mu.Unlock()
			results[name] = res
			ready = ready && err == nil
		}()
	}
	wg.Wait()

	if !ready {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "DEPENDENCY_UNAVAILABLE",
				"message": "one or more dependencies unavailable",
				"details": results,
			},
		})
	}
	return c.JSON(fiber.Map{"status": "ready", "dependencies": results})
}
