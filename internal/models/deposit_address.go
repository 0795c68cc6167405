package models

import "time"

// DepositAddress is generated once per (user, currency) and is immutable
// thereafter. The composite unique index makes concurrent first-access a
// create-if-absent race that exactly one caller wins.
type DepositAddress struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_user_currency;not null" json:"user_id"`
	Currency  string    `gorm:"uniqueIndex:idx_user_currency;not null" json:"currency"`
	Address   string    `gorm:"not null" json:"address"`
	CreatedAt time.Time `json:"created_at"`
}
