// Package obs holds lightweight in-process counters for a run.
package obs

import (
	"sync/atomic"
	"time"

	"main/internal/schema"
)

const (
	maxEventType  = int(schema.EventPlaybackEnd)
	maxActionKind = int(schema.ActionCancelAll)
)

// Metrics collects run counters and latency stats.
type Metrics struct {
	eventCounts  [maxEventType + 1]uint64
	actionCounts [maxActionKind + 1]uint64
	fillCount    uint64
	fillShares   uint64
	queueDrops   uint64

	eventLatency LatencyStats
}

// LatencyStats aggregates duration samples in nanoseconds.
type LatencyStats struct {
	count uint64
	sum   uint64
	min   uint64
	max   uint64
}

// LatencySnapshot is a point-in-time view of latency stats.
type LatencySnapshot struct {
	Count uint64
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
}

// Snapshot captures the current metrics values.
type Snapshot struct {
	EventCounts  map[schema.EventType]uint64
	ActionCounts map[schema.ActionKind]uint64
	FillCount    uint64
	FillShares   uint64
	QueueDrops   uint64
	EventLatency LatencySnapshot
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// ObserveEvent counts one dispatched event and tracks its feed-to-receive
// latency when both timestamps are present.
func (m *Metrics) ObserveEvent(ev schema.Event) {
	if m == nil {
		return
	}
	idx := int(ev.Header.Type)
	if idx >= 0 && idx < len(m.eventCounts) {
		atomic.AddUint64(&m.eventCounts[idx], 1)
	}
	if ev.Header.Type == schema.EventFill {
		atomic.AddUint64(&m.fillCount, 1)
		qty := int64(ev.Fill.Qty)
		if qty < 0 {
			qty = -qty
		}
		atomic.AddUint64(&m.fillShares, uint64(qty))
	}
	if ev.Header.TsEvent > 0 && ev.Header.TsRecv > 0 {
		if delta := ev.Header.TsRecv - ev.Header.TsEvent; delta >= 0 {
			m.eventLatency.Observe(time.Duration(delta) * time.Millisecond)
		}
	}
}

// ObserveAction counts one outbound action.
func (m *Metrics) ObserveAction(action schema.Action) {
	if m == nil {
		return
	}
	idx := int(action.Kind)
	if idx >= 0 && idx < len(m.actionCounts) {
		atomic.AddUint64(&m.actionCounts[idx], 1)
	}
}

// IncQueueDrop records an event the feedback queue could not hold.
func (m *Metrics) IncQueueDrop() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.queueDrops, 1)
}

// Snapshot returns a copy of the current metrics values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	eventCounts := make(map[schema.EventType]uint64)
	for i := range m.eventCounts {
		if v := atomic.LoadUint64(&m.eventCounts[i]); v > 0 {
			eventCounts[schema.EventType(i)] = v
		}
	}
	actionCounts := make(map[schema.ActionKind]uint64)
	for i := range m.actionCounts {
		if v := atomic.LoadUint64(&m.actionCounts[i]); v > 0 {
			actionCounts[schema.ActionKind(i)] = v
		}
	}
	return Snapshot{
		EventCounts:  eventCounts,
		ActionCounts: actionCounts,
		FillCount:    atomic.LoadUint64(&m.fillCount),
		FillShares:   atomic.LoadUint64(&m.fillShares),
		QueueDrops:   atomic.LoadUint64(&m.queueDrops),
		EventLatency: m.eventLatency.Snapshot(),
	}
}

// Observe records a duration sample.
func (l *LatencyStats) Observe(d time.Duration) {
	if d < 0 {
		return
	}
	nanos := uint64(d)
	atomic.AddUint64(&l.count, 1)
	atomic.AddUint64(&l.sum, nanos)

	for {
		min := atomic.LoadUint64(&l.min)
		if min != 0 && nanos >= min {
			break
		}
		if atomic.CompareAndSwapUint64(&l.min, min, nanos) {
			break
		}
	}

	for {
		max := atomic.LoadUint64(&l.max)
		if nanos <= max {
			break
		}
		if atomic.CompareAndSwapUint64(&l.max, max, nanos) {
			break
		}
	}
}

// Snapshot returns the aggregated latency stats.
func (l *LatencyStats) Snapshot() LatencySnapshot {
	count := atomic.LoadUint64(&l.count)
	if count == 0 {
		return LatencySnapshot{}
	}
	sum := atomic.LoadUint64(&l.sum)
	min := atomic.LoadUint64(&l.min)
	max := atomic.LoadUint64(&l.max)
	return LatencySnapshot{
		Count: count,
		Min:   time.Duration(min),
		Max:   time.Duration(max),
		Avg:   time.Duration(sum / count),
	}
}
