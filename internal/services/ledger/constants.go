package ledger

import "time"

// Default configuration values.
const (
	DefaultStartingBalance = 10000
	DefaultBonusAmount     = 1000
	DefaultBonusCooldown   = 24 * time.Hour
)

// Cache keys and durations. Display reads tolerate this much staleness;
// mutations always invalidate.
const (
	WalletCachePrefix = "wallet"
	DefaultCacheTTL   = 30 * time.Second
)
