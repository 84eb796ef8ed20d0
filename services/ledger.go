// services/ledger.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"coinquest/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuestOutcome string

const (
	QuestSuccess          QuestOutcome = "success"
	QuestAlreadyCompleted QuestOutcome = "already_completed"
)

type QuestResult struct {
	Outcome    QuestOutcome
	QuestID    uint
	Reward     int64 // zero unless Outcome == QuestSuccess
	NewBalance int64 // zero unless Outcome == QuestSuccess
}

type PurchaseOutcome string

const (
	PurchaseSuccess           PurchaseOutcome = "success"
	PurchaseInsufficientFunds PurchaseOutcome = "insufficient_funds"
)

type PurchaseResult struct {
	Outcome  PurchaseOutcome
	RewardID uint
	Price    int64
	Balance  int64 // after the purchase, or the unchanged balance on insufficient funds
}

// Both are internal rollback signals, surfaced to callers as outcomes.
var (
	errQuestClaimed      = errors.New("quest already claimed")
	errInsufficientFunds = errors.New("insufficient funds")
)

// LedgerService is the only code path that writes users.coins or
// quest_completions. Mutations for one user are serialised in-process and
// run in a single transaction that re-checks the precondition.
type LedgerService struct {
	DB     *gorm.DB
	Events EventPublisher
	Board  Leaderboard

	locks *KeyedMutex
	now   func() time.Time
}

func NewLedgerService(db *gorm.DB, events EventPublisher, board Leaderboard) *LedgerService {
	if events == nil {
		events = NopPublisher{}
	}
	return &LedgerService{
		DB:     db,
		Events: events,
		Board:  board,
		locks:  NewKeyedMutex(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// CompleteQuest pays the quest reward once per user. A repeat claim is an
// ordinary QuestAlreadyCompleted result.
func (s *LedgerService) CompleteQuest(ctx context.Context, who Identity, questID uint) (*QuestResult, error) {
	if questID == 0 {
		return nil, fmt.Errorf("%w: quest_id is required", ErrInvalidInput)
	}
	if who.UserID == 0 {
		return nil, ErrUserNotFound
	}

	unlock := s.locks.Lock(who.UserID)
	defer unlock()

	var (
		quest models.Quest
		entry *models.LedgerEntry
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&quest, questID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrQuestNotFound
			}
			return err
		}

		user, err := lockUser(tx, who.UserID)
		if err != nil {
			return err
		}

		var claimed int64
		if err := tx.Model(&models.QuestCompletion{}).
			Where("quest_id = ? AND user_id = ?", quest.ID, user.ID).
			Count(&claimed).Error; err != nil {
			return err
		}
		if claimed > 0 {
			return errQuestClaimed
		}

		completion := models.QuestCompletion{QuestID: quest.ID, UserID: user.ID, CompletedAt: s.now()}
		if err := tx.Create(&completion).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errQuestClaimed
			}
			return err
		}

		entry, err = s.applyDelta(tx, user, quest.Reward, models.LedgerQuestReward, &quest.ID, nil)
		return err
	})

	switch {
	case errors.Is(err, errQuestClaimed):
		return &QuestResult{Outcome: QuestAlreadyCompleted, QuestID: questID}, nil
	case err != nil:
		err = classify("complete quest", err)
		if IsStorageError(err) {
			log.Printf("[LEDGER] ❌ complete quest %d for user %d: %v", questID, who.UserID, err)
		}
		return nil, err
	}

	log.Printf("[LEDGER] 🏆 user %d completed quest %d: +%d → %d", who.UserID, quest.ID, quest.Reward, entry.BalanceAfter)
	s.publish(ctx, EventQuestCompleted, entry)

	return &QuestResult{
		Outcome:    QuestSuccess,
		QuestID:    quest.ID,
		Reward:     quest.Reward,
		NewBalance: entry.BalanceAfter,
	}, nil
}

// PurchaseReward spends the catalog price of rewardID. The price is never
// taken from the caller.
func (s *LedgerService) PurchaseReward(ctx context.Context, who Identity, rewardID uint) (*PurchaseResult, error) {
	if rewardID == 0 {
		return nil, fmt.Errorf("%w: reward_id is required", ErrInvalidInput)
	}
	if who.UserID == 0 {
		return nil, ErrUserNotFound
	}

	unlock := s.locks.Lock(who.UserID)
	defer unlock()

	var (
		reward  models.Reward
		balance int64
		entry   *models.LedgerEntry
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&reward, "id = ? AND active = ?", rewardID, true).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRewardNotFound
			}
			return err
		}

		user, err := lockUser(tx, who.UserID)
		if err != nil {
			return err
		}
		balance = user.Coins
		if user.Coins < reward.Price {
			return errInsufficientFunds
		}

		entry, err = s.applyDelta(tx, user, -reward.Price, models.LedgerRewardPurchase, nil, &reward.ID)
		return err
	})

	switch {
	case errors.Is(err, errInsufficientFunds):
		return &PurchaseResult{
			Outcome:  PurchaseInsufficientFunds,
			RewardID: rewardID,
			Price:    reward.Price,
			Balance:  balance,
		}, nil
	case err != nil:
		err = classify("purchase reward", err)
		if IsStorageError(err) {
			log.Printf("[LEDGER] ❌ purchase reward %d for user %d: %v", rewardID, who.UserID, err)
		}
		return nil, err
	}

	log.Printf("[LEDGER] 🛒 user %d bought reward %d: -%d → %d", who.UserID, reward.ID, reward.Price, entry.BalanceAfter)
	s.publish(ctx, EventRewardPurchase, entry)

	return &PurchaseResult{
		Outcome:  PurchaseSuccess,
		RewardID: reward.ID,
		Price:    reward.Price,
		Balance:  entry.BalanceAfter,
	}, nil
}

// RecordGameScore appends a score. It has no effect on the balance.
func (s *LedgerService) RecordGameScore(ctx context.Context, who Identity, gameName string, score int64, at time.Time) (*models.GameScore, error) {
	game := slug.Make(gameName)
	if game == "" {
		return nil, fmt.Errorf("%w: game_name is required", ErrInvalidInput)
	}
	if who.UserID == 0 {
		return nil, ErrUserNotFound
	}
	if at.IsZero() {
		at = s.now()
	}

	row := models.GameScore{
		UserID:    who.UserID,
		GameName:  game,
		Score:     score,
		Timestamp: at.UTC(),
	}
	if err := s.DB.WithContext(ctx).Create(&row).Error; err != nil {
		log.Printf("[LEDGER] ❌ record score for user %d (%s): %v", who.UserID, game, err)
		return nil, &StorageError{Op: "record game score", Err: err}
	}

	if s.Board != nil {
		if err := s.Board.Submit(ctx, game, who.UserID, score); err != nil {
			log.Printf("[LEDGER] ⚠️ leaderboard update failed for %s/%d: %v", game, who.UserID, err)
		}
	}
	return &row, nil
}

func (s *LedgerService) GetBalance(ctx context.Context, who Identity) (int64, error) {
	if who.UserID == 0 {
		return 0, ErrUserNotFound
	}
	var user models.User
	err := s.DB.WithContext(ctx).Select("id", "coins").First(&user, who.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, classify("get balance", err)
	}
	return user.Coins, nil
}

// RecentScores returns the caller's newest scores first.
func (s *LedgerService) RecentScores(ctx context.Context, who Identity, limit int) ([]models.GameScore, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	var scores []models.GameScore
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", who.UserID).
		Order("timestamp DESC").Order("id DESC").
		Limit(limit).
		Find(&scores).Error
	if err != nil {
		return nil, classify("recent scores", err)
	}
	return scores, nil
}

// LedgerHistory returns a user's entries, newest first.
func (s *LedgerService) LedgerHistory(ctx context.Context, userID uint, limit int) ([]models.LedgerEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var entries []models.LedgerEntry
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, classify("ledger history", err)
	}
	return entries, nil
}

// applyDelta moves the balance by delta and writes the matching ledger entry.
// The guarded UPDATE refuses to take the balance below zero even if the
// caller's read is stale.
func (s *LedgerService) applyDelta(tx *gorm.DB, user *models.User, delta int64, kind models.LedgerKind, questID, rewardID *uint) (*models.LedgerEntry, error) {
	res := tx.Model(&models.User{}).
		Where("id = ? AND coins + ? >= 0", user.ID, delta).
		Update("coins", gorm.Expr("coins + ?", delta))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, errInsufficientFunds
	}

	entry := &models.LedgerEntry{
		Ref:           uuid.NewString(),
		UserID:        user.ID,
		Kind:          kind,
		Amount:        delta,
		BalanceBefore: user.Coins,
		BalanceAfter:  user.Coins + delta,
		QuestID:       questID,
		RewardID:      rewardID,
		CreatedAt:     s.now(),
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, err
	}
	user.Coins = entry.BalanceAfter
	return entry, nil
}

func (s *LedgerService) publish(ctx context.Context, eventType string, entry *models.LedgerEntry) {
	event := LedgerEvent{
		Type:       eventType,
		Ref:        entry.Ref,
		UserID:     entry.UserID,
		Amount:     entry.Amount,
		NewBalance: entry.BalanceAfter,
		QuestID:    entry.QuestID,
		RewardID:   entry.RewardID,
		OccurredAt: entry.CreatedAt,
	}
	if err := s.Events.Publish(ctx, event); err != nil {
		log.Printf("[LEDGER] ⚠️ failed to publish %s (%s): %v", eventType, entry.Ref, err)
	}
}

// lockUser reads the user row for update. SQLite has no row locks; there the
// single connection already serialises writers.
func lockUser(tx *gorm.DB, userID uint) (*models.User, error) {
	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var user models.User
	if err := q.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
