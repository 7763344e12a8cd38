// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics collector for build sessions.
// Exposes counters in a thread-safe map with dynamic registration.

package control

import (
	"sort"
	"sync"
	"time"
)

// MetricsRegistry holds named metrics of splitter sessions and pools.
type MetricsRegistry struct {
	mu      sync.RWMutex
	metrics map[string]any
	updated time.Time
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		metrics: make(map[string]any),
	}
}

// Set sets or updates a metric key.
func (mr *MetricsRegistry) Set(key string, value any) {
	mr.mu.Lock()
	mr.metrics[key] = value
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// Add increments the int64 counter at key by delta and returns the new value.
// A key holding a non-int64 value is overwritten.
func (mr *MetricsRegistry) Add(key string, delta int64) int64 {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	v, _ := mr.metrics[key].(int64)
	v += delta
	mr.metrics[key] = v
	mr.updated = time.Now()
	return v
}

// Get returns the value stored at key.
func (mr *MetricsRegistry) Get(key string) (any, bool) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	v, ok := mr.metrics[key]
	return v, ok
}

// RecordSession stores the outcome of one splitter session under prefix:
// capacity, slots consumed, utilization in [0,1] and wall time.
func (mr *MetricsRegistry) RecordSession(prefix string, capacity, consumed int, elapsed time.Duration) {
	util := 0.0
	if capacity > 0 {
		util = float64(consumed) / float64(capacity)
	}
	mr.mu.Lock()
	mr.metrics[prefix+".capacity"] = int64(capacity)
	mr.metrics[prefix+".consumed"] = int64(consumed)
	mr.metrics[prefix+".utilization"] = util
	mr.metrics[prefix+".elapsed"] = elapsed
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// Merge copies a stats map, such as a pool's, under prefix.
func (mr *MetricsRegistry) Merge(prefix string, stats map[string]int64) {
	mr.mu.Lock()
	for k, v := range stats {
		mr.metrics[prefix+"."+k] = v
	}
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// GetSnapshot returns the latest metrics.
func (mr *MetricsRegistry) GetSnapshot() map[string]any {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	out := make(map[string]any, len(mr.metrics))
	for k, v := range mr.metrics {
		out[k] = v
	}
	return out
}

// Keys returns all metric names in sorted order.
func (mr *MetricsRegistry) Keys() []string {
	mr.mu.RLock()
	keys := make([]string, 0, len(mr.metrics))
	for k := range mr.metrics {
		keys = append(keys, k)
	}
	mr.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Updated returns the time of the last modification.
func (mr *MetricsRegistry) Updated() time.Time {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.updated
}
