package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Trade types.
const (
	TradeTypeBuy  = "buy"
	TradeTypeSell = "sell"
)

// Trade is an append-only ledger entry. Rows are never updated or
// deleted; holdings are always derived by replaying them.
type Trade struct {
	ID         string          `gorm:"type:uuid;primarykey" json:"id"`
	UserID     uint            `gorm:"index;not null" json:"user_id"`
	CoinID     string          `gorm:"index;not null" json:"coin_id"`
	CoinSymbol string          `gorm:"not null" json:"coin_symbol"`
	CoinName   string          `gorm:"not null" json:"coin_name"`
	TradeType  string          `gorm:"not null" json:"trade_type"`
	Quantity   decimal.Decimal `gorm:"type:numeric(28,8);not null" json:"quantity"`
	PriceUSD   decimal.Decimal `gorm:"type:numeric(20,8);not null" json:"price_usd"`
	TotalUSD   decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"total_usd"`
	CreatedAt  time.Time       `json:"created_at"`
}

func (t *Trade) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// Holding is the derived position for one coin. It is computed from the
// trades table and never persisted.
type Holding struct {
	CoinID     string          `json:"coin_id"`
	CoinSymbol string          `json:"coin_symbol"`
	CoinName   string          `json:"coin_name"`
	Quantity   decimal.Decimal `json:"quantity"`
}
