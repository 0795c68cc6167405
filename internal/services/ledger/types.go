package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Config holds the ledger's monetary knobs.
type Config struct {
	StartingBalance decimal.Decimal
	BonusAmount     decimal.Decimal
	BonusCooldown   time.Duration
	CacheTTL        time.Duration
}

// BonusGrant reports the outcome of a daily-bonus claim. On rejection,
// Granted is false and HoursUntilNext / NextEligibleAt describe when the
// user may claim again.
type BonusGrant struct {
	Granted        bool            `json:"granted"`
	Amount         decimal.Decimal `json:"amount"`
	NewBalance     decimal.Decimal `json:"new_balance"`
	NextEligibleAt time.Time       `json:"next_eligible_at"`
	HoursUntilNext int             `json:"hours_until_next,omitempty"`
}
