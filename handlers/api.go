// handlers/api.go
package handlers

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"coinquest/middleware"
	"coinquest/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// API bundles the services the HTTP layer talks to.
type API struct {
	Users      *services.UserService
	Tokens     *services.TokenIssuer
	Ledger     *services.LedgerService
	Catalog    *services.CatalogService
	Reconciler *services.Reconciler
	Exporter   *services.LedgerExporter // nil when no bucket is configured

	ServiceToken string
}

var validate = validator.New()

// bind decodes the JSON body into dst and validates its struct tags.
func bind(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return fmt.Errorf("%w: malformed request body", services.ErrInvalidInput)
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag()))
			}
			return fmt.Errorf("%w: invalid %s", services.ErrInvalidInput, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", services.ErrInvalidInput, err)
	}
	return nil
}

// respondError maps service errors onto status codes. Storage failures get a
// generic body; the detail stays in the log.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	msg := "internal server error"

	switch {
	case errors.Is(err, services.ErrInvalidInput):
		status, msg = fiber.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrInvalidToken):
		status, msg = fiber.StatusUnauthorized, err.Error()
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrQuestNotFound),
		errors.Is(err, services.ErrRewardNotFound):
		status, msg = fiber.StatusNotFound, err.Error()
	case errors.Is(err, services.ErrUsernameTaken):
		status, msg = fiber.StatusConflict, err.Error()
	default:
		log.Printf("❌ [API] %s %s: %v", c.Method(), c.Path(), err)
	}

	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// identity is only reached behind an auth middleware; a miss means the route
// was wired without one.
func identity(c *fiber.Ctx) (services.Identity, error) {
	who, ok := middleware.CurrentIdentity(c)
	if !ok {
		return services.Identity{}, services.ErrInvalidToken
	}
	return who, nil
}

// Setup registers every route on app.
func Setup(app *fiber.App, api *API) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	SetupAuthRoutes(app, api)
	SetupLedgerRoutes(app, api)
	SetupGameRoutes(app, api)
	SetupInternalRoutes(app, api)
}
