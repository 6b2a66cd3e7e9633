package handler

import (
	"context"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/tempo-go-api/internal/config"
	"github.com/noah-isme/tempo-go-api/internal/utils"
)

const healthCheckTimeout = 2 * time.Second

// HealthChecker probes one backing dependency.
type HealthChecker func(ctx context.Context) error

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status       string            `json:"status"`
	Timestamp    time.Time         `json:"timestamp"`
	Service      string            `json:"service"`
	Environment  string            `json:"environment"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// HealthCheck reports "ok" when every dependency answers, otherwise "degraded" with status 503.
func HealthCheck(cfg config.Config, checks map[string]HealthChecker) fiber.Handler {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(withRequestContext(c), healthCheckTimeout)
		defer cancel()

		response := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
		}
		if len(names) > 0 {
			response.Dependencies = make(map[string]string, len(names))
		}
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				response.Dependencies[name] = "unavailable"
				response.Status = "degraded"
				continue
			}
			response.Dependencies[name] = "ok"
		}

		if response.Status != "ok" {
			return utils.SendSuccessWithStatus(c, fiber.StatusServiceUnavailable, "service degraded", response)
		}
		return utils.SendSuccess(c, "service healthy", response)
	}
}
