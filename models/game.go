// models/game.go
package models

import "time"

type Game struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Slug        string `json:"slug" gorm:"size:64;uniqueIndex;not null"`
	Name        string `json:"name" gorm:"not null"`
	Description string `json:"description"`

	Timestamps
}

// GameScore is append-only. It never touches a balance.
type GameScore struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	GameName  string    `json:"game_name" gorm:"size:64;not null;index"` // slug
	Score     int64     `json:"score"`
	Timestamp time.Time `json:"timestamp" gorm:"not null;index"`
}
