package models

import "time"

// Quest pays Reward coins once per user.
type Quest struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Reward      int64  `gorm:"not null;check:chk_quests_reward,reward > 0" json:"reward"`

	Completions []QuestCompletion `gorm:"foreignKey:QuestID" json:"-"`

	Timestamps
}

// QuestCompletion is one member of a quest's completion set.
// The composite unique index is the store-level guard against double claims.
type QuestCompletion struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	QuestID     uint      `gorm:"not null;uniqueIndex:idx_quest_completion_user" json:"quest_id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_quest_completion_user;index" json:"user_id"`
	CompletedAt time.Time `gorm:"not null" json:"completed_at"`
}
