package models

import "time"

type LedgerKind string

const (
	LedgerQuestReward    LedgerKind = "quest_reward"
	LedgerRewardPurchase LedgerKind = "reward_purchase"
)

// LedgerEntry records one balance mutation, written in the same transaction
// as the balance update. For every user: coins == SUM(amount).
type LedgerEntry struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Ref           string     `gorm:"type:varchar(36);uniqueIndex;not null" json:"ref"`
	UserID        uint       `gorm:"not null;index" json:"user_id"`
	Kind          LedgerKind `gorm:"type:varchar(32);not null" json:"kind"`
	Amount        int64      `gorm:"not null" json:"amount"` // signed
	BalanceBefore int64      `gorm:"not null" json:"balance_before"`
	BalanceAfter  int64      `gorm:"not null" json:"balance_after"`
	QuestID       *uint      `gorm:"index" json:"quest_id,omitempty"`
	RewardID      *uint      `gorm:"index" json:"reward_id,omitempty"`
	CreatedAt     time.Time  `gorm:"not null;index" json:"created_at"`
}
