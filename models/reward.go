package models

// Reward is a shop item. Price is authoritative server-side; clients only
// ever send the reward ID.
type Reward struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Slug        string `gorm:"size:64;uniqueIndex;not null" json:"slug"`
	Name        string `gorm:"not null" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	Price       int64  `gorm:"not null;check:chk_rewards_price,price > 0" json:"price"`
	Active      bool   `gorm:"not null;default:true" json:"active"`

	Timestamps
}
