package wallet

import (
	"context"
	"sync"

	"freelink/internal/models"

	"go.uber.org/zap"
)

// NoopMetricsCollector is a no-op implementation of MetricsCollector
type NoopMetricsCollector struct{}

func (n *NoopMetricsCollector) RecordOperationResult(string, string) {}
func (n *NoopMetricsCollector) RecordCacheHit(string)                {}
func (n *NoopMetricsCollector) RecordCacheMiss(string)               {}
func (n *NoopMetricsCollector) RecordError(string, string)           {}

// CounterMetrics keeps in-process counters of wallet activity and logs
// every event at debug level. Counter names are dotted, for example
// "op.deposit.success", "cache.hit" or "error.fund.charge_failed".
type CounterMetrics struct {
	logger *zap.Logger

	mu     sync.Mutex
	counts map[string]int64
}

func NewCounterMetrics(logger *zap.Logger) *CounterMetrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CounterMetrics{
		logger: logger.Named("wallet.metrics"),
		counts: make(map[string]int64),
	}
}

func (m *CounterMetrics) RecordOperationResult(operation, result string) {
	m.inc("op."+operation+"."+result, zap.String("op", operation), zap.String("result", result))
}

func (m *CounterMetrics) RecordCacheHit(key string) {
	m.inc("cache.hit", zap.String("key", key))
}

func (m *CounterMetrics) RecordCacheMiss(key string) {
	m.inc("cache.miss", zap.String("key", key))
}

func (m *CounterMetrics) RecordError(operation, errType string) {
	m.inc("error."+operation+"."+errType, zap.String("op", operation), zap.String("error_type", errType))
}

// Count returns the current value of one counter.
func (m *CounterMetrics) Count(name string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[name]
}

// Snapshot copies every counter.
func (m *CounterMetrics) Snapshot() map[string]int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int64, len(m.counts))
	for k, v := range m.counts {
		out[k] = v
	}
	return out
}

func (m *CounterMetrics) inc(name string, fields ...zap.Field) {
	m.mu.Lock()
	m.counts[name]++
	n := m.counts[name]
	m.mu.Unlock()

	m.logger.Debug(name, append(fields, zap.Int64("count", n))...)
}

// NoopCache never hits. Used when redis is not configured.
type NoopCache struct{}

func (NoopCache) GetWallet(context.Context, uint) (*models.Wallet, error)  { return nil, nil }
func (NoopCache) WalletVersion(context.Context, uint) (int64, error)       { return 0, nil }
func (NoopCache) CacheWallet(context.Context, *models.Wallet, int64) error { return nil }
func (NoopCache) InvalidateWallets(context.Context, ...uint) error         { return nil }
