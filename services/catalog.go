// services/catalog.go
package services

import (
	"context"
	"errors"

	"coinquest/models"

	"gorm.io/gorm"
)

type CatalogService struct {
	DB *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{DB: db}
}

// QuestStatus is a quest as seen by one user.
type QuestStatus struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Reward      int64  `json:"reward"`
	Completed   bool   `json:"completed"`
}

func (s *CatalogService) ListQuests(ctx context.Context) ([]models.Quest, error) {
	var quests []models.Quest
	if err := s.DB.WithContext(ctx).Order("id ASC").Find(&quests).Error; err != nil {
		return nil, classify("list quests", err)
	}
	return quests, nil
}

// QuestBoard lists every quest with the caller's completion flag.
func (s *CatalogService) QuestBoard(ctx context.Context, who Identity) ([]QuestStatus, error) {
	quests, err := s.ListQuests(ctx)
	if err != nil {
		return nil, err
	}

	var done []uint
	if err := s.DB.WithContext(ctx).Model(&models.QuestCompletion{}).
		Where("user_id = ?", who.UserID).
		Pluck("quest_id", &done).Error; err != nil {
		return nil, classify("quest board", err)
	}
	completed := make(map[uint]bool, len(done))
	for _, id := range done {
		completed[id] = true
	}

	board := make([]QuestStatus, 0, len(quests))
	for _, q := range quests {
		board = append(board, QuestStatus{
			ID:          q.ID,
			Name:        q.Name,
			Description: q.Description,
			Reward:      q.Reward,
			Completed:   completed[q.ID],
		})
	}
	return board, nil
}

// ListRewards returns the active shop catalog, cheapest first.
func (s *CatalogService) ListRewards(ctx context.Context) ([]models.Reward, error) {
	var rewards []models.Reward
	err := s.DB.WithContext(ctx).
		Where("active = ?", true).
		Order("price ASC").Order("id ASC").
		Find(&rewards).Error
	if err != nil {
		return nil, classify("list rewards", err)
	}
	return rewards, nil
}

// FindReward returns an active reward by id or by slug.
func (s *CatalogService) FindReward(ctx context.Context, idOrSlug string) (*models.Reward, error) {
	var reward models.Reward
	err := s.DB.WithContext(ctx).
		Where("active = ? AND (CAST(id AS TEXT) = ? OR slug = ?)", true, idOrSlug, idOrSlug).
		First(&reward).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRewardNotFound
	}
	if err != nil {
		return nil, classify("find reward", err)
	}
	return &reward, nil
}

func (s *CatalogService) ListGames(ctx context.Context) ([]models.Game, error) {
	var games []models.Game
	if err := s.DB.WithContext(ctx).Order("id ASC").Find(&games).Error; err != nil {
		return nil, classify("list games", err)
	}
	return games, nil
}
