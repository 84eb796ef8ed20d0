package database_test

import (
	"testing"

	"coinquest/config"
	"coinquest/database"
	"coinquest/database/dbtest"
	"coinquest/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedIsIdempotent(t *testing.T) {
	db := dbtest.Open(t)

	require.NoError(t, database.Seed(db))
	require.NoError(t, db.Model(&models.Quest{}).Where("id = ?", 1).Update("reward", 999).Error)
	require.NoError(t, database.Seed(db))

	var quests, rewards, games int64
	db.Model(&models.Quest{}).Count(&quests)
	db.Model(&models.Reward{}).Count(&rewards)
	db.Model(&models.Game{}).Count(&games)
	assert.EqualValues(t, 8, quests)
	assert.EqualValues(t, 5, rewards)
	assert.EqualValues(t, 3, games)

	var edited models.Quest
	require.NoError(t, db.First(&edited, 1).Error)
	assert.EqualValues(t, 999, edited.Reward, "seeding must not overwrite existing rows")
}

func TestSeedThenInsertWithoutID(t *testing.T) {
	db := dbtest.OpenSeeded(t)

	quest := models.Quest{Name: "Weekend Streak", Reward: 250}
	require.NoError(t, db.Create(&quest).Error)
	assert.EqualValues(t, 9, quest.ID)

	reward := models.Reward{Slug: "sticker-pack", Name: "Sticker Pack", Price: 90, Active: true}
	require.NoError(t, db.Create(&reward).Error)
	assert.EqualValues(t, 6, reward.ID)

	game := models.Game{Slug: "snake", Name: "Snake"}
	require.NoError(t, db.Create(&game).Error)
	assert.EqualValues(t, 4, game.ID)
}

func TestSeedSlugs(t *testing.T) {
	db := dbtest.OpenSeeded(t)

	var game models.Game
	require.NoError(t, db.Where("slug = ?", "guess-number").First(&game).Error)
	assert.Equal(t, "Guess Number", game.Name)

	var reward models.Reward
	require.NoError(t, db.First(&reward, 5).Error)
	assert.Equal(t, "custom-avatar", reward.Slug)
	assert.EqualValues(t, 400, reward.Price)
	assert.True(t, reward.Active)
}

func TestCoinsCheckConstraint(t *testing.T) {
	db := dbtest.Open(t)

	user := models.User{Username: "neg", UsernameKey: "neg", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)

	err := db.Model(&user).Update("coins", -1).Error
	assert.Error(t, err, "negative balance must be rejected by the store")
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := database.Open(&config.Config{DBDriver: "mysql"})
	assert.ErrorContains(t, err, "unsupported database driver")
}
