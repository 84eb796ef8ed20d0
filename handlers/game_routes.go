// handlers/game_routes.go
package handlers

import (
	"time"

	"coinquest/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"
)

// gameScoreRequest carries no timestamp; HTTP scores are stamped with server time.
type gameScoreRequest struct {
	GameName string `json:"game_name" validate:"required,max=64"`
	Score    *int64 `json:"score" validate:"required"`
}

func SetupGameRoutes(app *fiber.App, api *API) {
	auth := middleware.UserContextMiddleware(api.Tokens)
	secured := app.Group("/api")

	secured.Get("/games", auth, api.Games)
	secured.Post("/game_score", auth, api.GameScore)
	secured.Get("/scores", auth, api.RecentScores)
	secured.Get("/games/:slug/leaderboard", auth, api.Leaderboard)
}

func (a *API) Games(c *fiber.Ctx) error {
	games, err := a.Catalog.ListGames(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(games)
}

func (a *API) GameScore(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return respondError(c, err)
	}
	var req gameScoreRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	if _, err := a.Ledger.RecordGameScore(c.UserContext(), who, req.GameName, *req.Score, time.Time{}); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "success"})
}

func (a *API) RecentScores(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return respondError(c, err)
	}
	scores, err := a.Ledger.RecentScores(c.UserContext(), who, c.QueryInt("limit", 10))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(scores)
}

func (a *API) Leaderboard(c *fiber.Ctx) error {
	game := slug.Make(c.Params("slug"))
	limit := c.QueryInt("limit", 10)
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	entries, err := a.Ledger.Board.Top(c.UserContext(), game, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"game":    game,
		"entries": entries,
	})
}
