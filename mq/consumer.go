package mq

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"coinquest/models"
	"coinquest/services"

	"github.com/streadway/amqp"
)

// ScoreMessage is what game servers publish after a round.
type ScoreMessage struct {
	UserID    uint   `json:"user_id"`
	GameName  string `json:"game_name"`
	Score     int64  `json:"score"`
	Timestamp int64  `json:"timestamp"` // unix seconds, zero means now
}

type UserLookup interface {
	Get(ctx context.Context, id uint) (*models.User, error)
}

type ScoreRecorder interface {
	RecordGameScore(ctx context.Context, who services.Identity, gameName string, score int64, at time.Time) (*models.GameScore, error)
}

// ScoreConsumer records scores arriving over AMQP.
type ScoreConsumer struct {
	Users  UserLookup
	Scores ScoreRecorder
}

func NewScoreConsumer(users UserLookup, scores ScoreRecorder) *ScoreConsumer {
	return &ScoreConsumer{Users: users, Scores: scores}
}

// Handle processes one delivery and acks it. Bad input is dropped, storage
// failures are requeued. Requeueing is safe since a score never moves coins.
func (c *ScoreConsumer) Handle(ctx context.Context, msg amqp.Delivery) {
	var in ScoreMessage
	if err := json.Unmarshal(msg.Body, &in); err != nil {
		log.Printf("[MQ] Failed to unmarshal score message: %v", err)
		msg.Nack(false, false)
		return
	}

	user, err := c.Users.Get(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			log.Printf("[MQ] dropping score for unknown user %d", in.UserID)
			msg.Nack(false, false)
			return
		}
		log.Printf("[MQ] user lookup failed: %v", err)
		msg.Nack(false, true)
		return
	}

	var at time.Time
	if in.Timestamp > 0 {
		at = time.Unix(in.Timestamp, 0)
	}
	if _, err := c.Scores.RecordGameScore(ctx, services.IdentityOf(user), in.GameName, in.Score, at); err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			log.Printf("[MQ] dropping invalid score from user %d: %v", in.UserID, err)
			msg.Nack(false, false)
			return
		}
		log.Printf("[MQ] Failed to save game score: %v", err)
		msg.Nack(false, true)
		return
	}

	msg.Ack(false)
}

// Run handles deliveries until ctx is cancelled or the channel closes.
func (c *ScoreConsumer) Run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	log.Println("[MQ] score consumer started")
	for {
		select {
		case <-ctx.Done():
			log.Println("[MQ] score consumer stopped")
			return
		case msg, ok := <-deliveries:
			if !ok {
				log.Println("[MQ] delivery channel closed")
				return
			}
			c.Handle(ctx, msg)
		}
	}
}
