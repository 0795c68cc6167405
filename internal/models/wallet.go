package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet holds one virtual USD balance per user. BalanceUSD is never
// written from an application-side read; every mutation is a conditional
// delta applied at the store (see repositories.LedgerRepository).
type Wallet struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	UserID      uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	BalanceUSD  decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"balance_usd"`
	LastBonusAt *time.Time      `json:"last_bonus_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
