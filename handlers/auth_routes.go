// handlers/auth_routes.go
package handlers

import (
	"log"
	"time"

	"coinquest/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type credentialsRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=72"`
}

func SetupAuthRoutes(app *fiber.App, api *API) {
	// 🔓 Public, rate limited per IP
	auth := app.Group("/api/auth", limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "too many attempts, try again later",
			})
		},
	}))
	auth.Post("/register", api.Register)
	auth.Post("/login", api.Login)

	// 🔐
	app.Get("/api/me", middleware.UserContextMiddleware(api.Tokens), api.Me)
}

func (a *API) Register(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	user, err := a.Users.Register(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	log.Printf("[AUTH] 👤 registered user %d (%s)", user.ID, user.Username)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":       user.ID,
		"username": user.Username,
	})
}

func (a *API) Login(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	user, err := a.Users.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	token, expires, err := a.Tokens.Issue(user)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"token":      token,
		"expires_at": expires.UTC(),
		"user":       user,
	})
}

func (a *API) Me(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return respondError(c, err)
	}

	user, err := a.Users.Get(c.UserContext(), who.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"id":         user.ID,
		"username":   user.Username,
		"coins":      user.Coins,
		"created_at": user.CreatedAt,
	})
}
