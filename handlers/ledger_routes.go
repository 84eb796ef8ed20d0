// handlers/ledger_routes.go
package handlers

import (
	"coinquest/middleware"
	"coinquest/services"

	"github.com/gofiber/fiber/v2"
)

type completeQuestRequest struct {
	QuestID uint `json:"quest_id" validate:"required"`
}

type buyRewardRequest struct {
	RewardID uint `json:"reward_id" validate:"required"`
}

func SetupLedgerRoutes(app *fiber.App, api *API) {
	// 🔐 Bearer token on every route; attached per route so /api/auth stays open
	auth := middleware.UserContextMiddleware(api.Tokens)
	secured := app.Group("/api")

	secured.Get("/user_coins", auth, api.UserCoins)
	secured.Get("/dashboard", auth, api.Dashboard)
	secured.Get("/quests", auth, api.Quests)
	secured.Post("/complete_quest", auth, api.CompleteQuest)
	secured.Get("/rewards", auth, api.Rewards)
	secured.Get("/rewards/:ref", auth, api.Reward)
	secured.Post("/buy_reward", auth, api.BuyReward)

	// EventSource cannot send headers, so the stream authenticates by query.
	app.Get("/api/stream/coins", middleware.SSEAuthMiddleware(api.Tokens), api.StreamCoins)
}

func (a *API) UserCoins(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return respondError(c, err)
	}
	coins, err := a.Ledger.GetBalance(c.UserContext(), who)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"coins": coins})
}

func (a *API) Dashboard(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return respondError(c, err)
	}
	d, err := a.Ledger.Dashboard(c.UserContext(), who)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(d)
}

func (a *API) Quests(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return respondError(c, err)
	}
	board, err := a.Catalog.QuestBoard(c.UserContext(), who)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(board)
}

func (a *API) CompleteQuest(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return respondError(c, err)
	}
	var req completeQuestRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	res, err := a.Ledger.CompleteQuest(c.UserContext(), who, req.QuestID)
	if err != nil {
		return respondError(c, err)
	}
	if res.Outcome == services.QuestAlreadyCompleted {
		return c.JSON(fiber.Map{"status": res.Outcome})
	}
	return c.JSON(fiber.Map{
		"status":    res.Outcome,
		"reward":    res.Reward,
		"new_coins": res.NewBalance,
	})
}

func (a *API) Rewards(c *fiber.Ctx) error {
	rewards, err := a.Catalog.ListRewards(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rewards)
}

func (a *API) Reward(c *fiber.Ctx) error {
	reward, err := a.Catalog.FindReward(c.UserContext(), c.Params("ref"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(reward)
}

func (a *API) BuyReward(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return respondError(c, err)
	}
	var req buyRewardRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	res, err := a.Ledger.PurchaseReward(c.UserContext(), who, req.RewardID)
	if err != nil {
		return respondError(c, err)
	}
	if res.Outcome == services.PurchaseInsufficientFunds {
		return c.JSON(fiber.Map{
			"status": res.Outcome,
			"price":  res.Price,
			"coins":  res.Balance,
		})
	}
	return c.JSON(fiber.Map{
		"status":    res.Outcome,
		"price":     res.Price,
		"new_coins": res.Balance,
	})
}

func (a *API) StreamCoins(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return respondError(c, err)
	}
	return a.Ledger.StreamBalance(c, who)
}
