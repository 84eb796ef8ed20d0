package database

import (
	"fmt"
	"log"

	"coinquest/models"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var seedQuests = []models.Quest{
	{ID: 1, Name: "Quick Click", Description: "Click 50 times in 10 seconds", Reward: 100},
	{ID: 2, Name: "Guess the Number", Description: "Guess the hidden number", Reward: 80},
	{ID: 3, Name: "Memory Game", Description: "Memorise 5 cards", Reward: 150},
	{ID: 4, Name: "Daily Login", Description: "Log in today", Reward: 30},
	{ID: 5, Name: "Collect 1000 Coins", Description: "Reach 1000 coins", Reward: 500},
	{ID: 6, Name: "Play 10 Times", Description: "Play every game at least 10 times", Reward: 300},
	{ID: 7, Name: "Invite a Friend", Description: "Invite one friend", Reward: 400},
	{ID: 8, Name: "First Purchase", Description: "Buy something in the shop", Reward: 200},
}

var seedRewards = []models.Reward{
	{ID: 1, Name: "Gift Card (10k Toman)", Price: 600},
	{ID: 2, Name: "Irancell Top-up (5k)", Price: 350},
	{ID: 3, Name: "VIP Role (1 month)", Price: 1200},
	{ID: 4, Name: "Coin Boost x2 (24h)", Price: 800},
	{ID: 5, Name: "Custom Avatar", Price: 400},
}

var seedGames = []models.Game{
	{ID: 1, Name: "Quick Click", Description: "Click as fast as you can"},
	{ID: 2, Name: "Guess Number", Description: "Find the secret number"},
	{ID: 3, Name: "Memory Match", Description: "Remember the cards"},
}

// Seed inserts the catalog rows that are missing. Existing rows are left alone,
// so restarting never rewrites a quest an operator has edited.
func Seed(db *gorm.DB) error {
	quests := append([]models.Quest(nil), seedQuests...)
	rewards := append([]models.Reward(nil), seedRewards...)
	for i := range rewards {
		rewards[i].Slug = slug.Make(rewards[i].Name)
		rewards[i].Active = true
	}
	games := append([]models.Game(nil), seedGames...)
	for i := range games {
		games[i].Slug = slug.Make(games[i].Name)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		ignore := clause.OnConflict{DoNothing: true}
		if err := tx.Clauses(ignore).Create(&quests).Error; err != nil {
			return fmt.Errorf("seed quests: %w", err)
		}
		if err := tx.Clauses(ignore).Create(&rewards).Error; err != nil {
			return fmt.Errorf("seed rewards: %w", err)
		}
		if err := tx.Clauses(ignore).Create(&games).Error; err != nil {
			return fmt.Errorf("seed games: %w", err)
		}

		// Explicit ids leave postgres sequences behind; move them past the seed.
		if tx.Dialector.Name() == "postgres" {
			for _, table := range seededTables {
				if err := tx.Exec(resyncSequenceSQL(table)).Error; err != nil {
					return fmt.Errorf("resync %s id sequence: %w", table, err)
				}
			}
		}

		log.Printf("✅ Catalog seeded: %d quests, %d rewards, %d games", len(quests), len(rewards), len(games))
		return nil
	})
}

var seededTables = []string{"quests", "rewards", "games"}

func resyncSequenceSQL(table string) string {
	return fmt.Sprintf(
		"SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE((SELECT MAX(id) FROM %[1]s), 0) + 1, false)",
		table,
	)
}
