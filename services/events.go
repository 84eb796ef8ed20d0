package services

import (
	"context"
	"time"
)

const (
	EventQuestCompleted = "quest.completed"
	EventRewardPurchase = "reward.purchased"
)

// LedgerEvent is emitted after a balance mutation commits.
type LedgerEvent struct {
	Type       string    `json:"type"`
	Ref        string    `json:"ref"`
	UserID     uint      `json:"user_id"`
	Amount     int64     `json:"amount"`
	NewBalance int64     `json:"new_balance"`
	QuestID    *uint     `json:"quest_id,omitempty"`
	RewardID   *uint     `json:"reward_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher delivers ledger events downstream. A failed publish is
// logged by the caller; it never rolls back the mutation.
type EventPublisher interface {
	Publish(ctx context.Context, event LedgerEvent) error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, LedgerEvent) error { return nil }
