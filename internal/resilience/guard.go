package resilience

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/helpdesk-core/pkg/errorutil"
)

// Guard short-circuits requests to a circuit-broken endpoint with 503
// before they reach business logic, and feeds handler failures back into
// the monitor.
func Guard(monitor *HealthMonitor, endpoint string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if monitor.Disabled(endpoint) {
			return apperrors.NewDomainError(
				"ENDPOINT_DISABLED",
				"endpoint temporarily disabled due to repeated failures",
				http.StatusServiceUnavailable,
				map[string]any{"endpoint": endpoint},
			)
		}
		err := c.Next()
		if err != nil {
			monitor.RecordError(endpoint)
		}
		return err
	}
}
