// handlers/internal_routes.go
package handlers

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"coinquest/middleware"
	"coinquest/services"

	"github.com/gofiber/fiber/v2"
)

// SetupInternalRoutes exposes operator tooling behind the service token.
func SetupInternalRoutes(app *fiber.App, api *API) {
	internal := app.Group("/internal", middleware.ServiceTokenMiddleware(api.ServiceToken))

	internal.Get("/users/:id/ledger", api.UserLedger)
	internal.Post("/reconcile", api.Reconcile)
	internal.Post("/export", api.Export)
}

func (a *API) UserLedger(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return respondError(c, fmt.Errorf("%w: bad user id", services.ErrInvalidInput))
	}

	entries, err := a.Ledger.LedgerHistory(c.UserContext(), uint(id), c.QueryInt("limit", 50))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"user_id": id,
		"entries": entries,
	})
}

func (a *API) Reconcile(c *fiber.Ctx) error {
	drifts, err := a.Reconciler.Reconcile(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	if drifts == nil {
		drifts = []services.BalanceDrift{}
	}
	return c.JSON(fiber.Map{
		"count":  len(drifts),
		"drifts": drifts,
	})
}

func (a *API) Export(c *fiber.Ctx) error {
	if a.Exporter == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "ledger export is not configured",
		})
	}

	day := time.Now().UTC().AddDate(0, 0, -1)
	if raw := c.Query("day"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return respondError(c, fmt.Errorf("%w: day must be YYYY-MM-DD", services.ErrInvalidInput))
		}
		day = parsed
	}

	key, n, err := a.Exporter.Export(c.UserContext(), day)
	if err != nil {
		log.Printf("❌ [AUDIT] manual export for %s failed: %v", day.Format("2006-01-02"), err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "ledger export failed",
		})
	}
	return c.JSON(fiber.Map{
		"key":     key,
		"entries": n,
	})
}
