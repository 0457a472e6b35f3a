package middleware

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gossip-lsp/lspeasy/jsonrpc"
)

// Metrics counts dispatched messages and their latency per method.
type Metrics struct {
	mu      sync.RWMutex
	methods map[string]*methodMetrics
}

type methodMetrics struct {
	count   atomic.Int64
	errors  atomic.Int64
	totalNs atomic.Int64
	maxNs   atomic.Int64
}

// NewMetrics creates an empty collector.
func NewMetrics() *Metrics {
	return &Metrics{methods: make(map[string]*methodMetrics)}
}

func (m *Metrics) get(method string) *methodMetrics {
	m.mu.RLock()
	mm, ok := m.methods[method]
	m.mu.RUnlock()
	if ok {
		return mm
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if mm, ok := m.methods[method]; ok {
		return mm
	}
	mm = &methodMetrics{}
	m.methods[method] = mm
	return mm
}

func (mm *methodMetrics) observe(elapsed time.Duration, failed bool) {
	mm.count.Add(1)
	mm.totalNs.Add(int64(elapsed))
	if failed {
		mm.errors.Add(1)
	}
	for {
		cur := mm.maxNs.Load()
		if int64(elapsed) <= cur || mm.maxNs.CompareAndSwap(cur, int64(elapsed)) {
			return
		}
	}
}

// MethodSnapshot is a point-in-time copy of the metrics of one method.
type MethodSnapshot struct {
	Method    string
	Count     int64
	Errors    int64
	TotalTime time.Duration
	MaxTime   time.Duration
}

// Mean returns the average time per message.
func (s MethodSnapshot) Mean() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.TotalTime / time.Duration(s.Count)
}

// Snapshot returns the metrics of every method seen so far, sorted by
// method name.
func (m *Metrics) Snapshot() []MethodSnapshot {
	m.mu.RLock()
	snap := make([]MethodSnapshot, 0, len(m.methods))
	for name, mm := range m.methods {
		snap = append(snap, MethodSnapshot{
			Method:    name,
			Count:     mm.count.Load(),
			Errors:    mm.errors.Load(),
			TotalTime: time.Duration(mm.totalNs.Load()),
			MaxTime:   time.Duration(mm.maxNs.Load()),
		})
	}
	m.mu.RUnlock()
	sort.Slice(snap, func(i, j int) bool { return snap[i].Method < snap[j].Method })
	return snap
}

// Telemetry returns middleware that records every message in metrics.
// Responses are recorded under the name "$/response".
func Telemetry(metrics *Metrics) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, msg jsonrpc.Message) error {
			method := jsonrpc.Method(msg)
			if method == "" {
				method = "$/response"
			}
			start := time.Now()
			err := next(ctx, msg)
			metrics.get(method).observe(time.Since(start), err != nil)
			return err
		}
	}
}
