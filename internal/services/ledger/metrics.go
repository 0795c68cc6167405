package ledger

import "github.com/shopspring/decimal"

// MetricsCollector defines the interface for collecting ledger metrics.
type MetricsCollector interface {
	RecordTransaction(operation string, amount decimal.Decimal)
	RecordError(operation, errType string)
	RecordCacheHit(key string)
	RecordCacheMiss(key string)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (n *NoopMetricsCollector) RecordTransaction(string, decimal.Decimal) {}
func (n *NoopMetricsCollector) RecordError(string, string)                {}
func (n *NoopMetricsCollector) RecordCacheHit(string)                     {}
func (n *NoopMetricsCollector) RecordCacheMiss(string)                    {}
