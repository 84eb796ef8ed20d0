package models

import (
	"time"
)

// User is a registered player. Coins is owned by the ledger engine and is
// never written from request input.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:64;not null" json:"username"`
	UsernameKey  string    `gorm:"size:64;uniqueIndex;not null" json:"-"` // case-folded, NFC
	PasswordHash string    `gorm:"not null" json:"-"`
	Coins        int64     `gorm:"not null;default:0;check:chk_users_coins,coins >= 0" json:"coins"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
