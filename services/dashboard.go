package services

import (
	"context"
	"errors"

	"coinquest/models"

	"gorm.io/gorm"
)

type Dashboard struct {
	User            models.User        `json:"user"`
	RecentScores    []models.GameScore `json:"recent_scores"`
	CompletedQuests int64              `json:"completed_quests"`
}

// Dashboard gathers the caller's stats and last ten scores.
func (s *LedgerService) Dashboard(ctx context.Context, who Identity) (*Dashboard, error) {
	var d Dashboard
	if err := s.DB.WithContext(ctx).First(&d.User, who.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, classify("dashboard", err)
	}

	scores, err := s.RecentScores(ctx, who, 10)
	if err != nil {
		return nil, err
	}
	d.RecentScores = scores

	if err := s.DB.WithContext(ctx).Model(&models.QuestCompletion{}).
		Where("user_id = ?", who.UserID).
		Count(&d.CompletedQuests).Error; err != nil {
		return nil, classify("dashboard", err)
	}
	return &d, nil
}
