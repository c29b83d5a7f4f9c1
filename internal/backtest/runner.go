// Package backtest drives one run: journaled events flow through the
// strategy runtime, drained actions feed the simulated exchange, and the
// exchange's acknowledgments and fills are dispatched back before the
// next recorded event is admitted.
package backtest

import (
	"context"

	"github.com/yanun0323/logs"

	"main/internal/bus"
	"main/internal/obs"
	"main/internal/pnl"
	"main/internal/recorder"
	"main/internal/schema"
	"main/internal/sim"
	"main/internal/strategy"
)

const defaultQueueSize = 1024

// Runner executes one backtest over a recorded journal.
type Runner struct {
	rt       *strategy.Runtime
	exchange *sim.Exchange
	playback *recorder.Playback
	queue    *bus.Queue
	metrics  *obs.Metrics
}

// NewRunner wires a runtime, an exchange, and a playback source together.
// A nil metrics container disables counting.
func NewRunner(rt *strategy.Runtime, exchange *sim.Exchange, playback *recorder.Playback, metrics *obs.Metrics, queueSize int) *Runner {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Runner{
		rt:       rt,
		exchange: exchange,
		playback: playback,
		queue:    bus.NewQueue(queueSize),
		metrics:  metrics,
	}
}

// Run replays the journal to completion and returns the final report.
func (r *Runner) Run(ctx context.Context) (pnl.Report, error) {
	if err := r.playback.Run(ctx, r.handleSourceEvent); err != nil {
		return pnl.Report{}, err
	}

	end := schema.Event{Header: schema.NewHeader(schema.EventPlaybackEnd, schema.SourcePlayback, 0, 0, 0)}
	r.metrics.ObserveEvent(end)
	if _, err := r.rt.Dispatch(end); err != nil {
		return pnl.Report{}, err
	}

	report := r.rt.Report()
	if r.rt.MetricsEnabled() {
		logs.Info(report.String())
	}
	return report, nil
}

// handleSourceEvent processes one recorded event and everything it causes.
// The exchange crosses resting orders on the updated book first; the
// resulting fills queue behind the source event so the strategy always
// hears the quote before its own fill.
func (r *Runner) handleSourceEvent(ev schema.Event) error {
	for _, fill := range r.exchange.OnMarketEvent(ev) {
		if err := r.publish(fill); err != nil {
			return err
		}
	}
	if err := r.dispatch(ev); err != nil {
		return err
	}
	return r.drainQueue()
}

func (r *Runner) drainQueue() error {
	for {
		ev, ok := r.queue.TryNext()
		if !ok {
			return nil
		}
		if err := r.dispatch(ev); err != nil {
			return err
		}
	}
}

func (r *Runner) dispatch(ev schema.Event) error {
	r.metrics.ObserveEvent(ev)
	actions, err := r.rt.Dispatch(ev)
	if err != nil {
		return err
	}
	if len(actions) == 0 {
		return nil
	}

	for _, action := range actions {
		r.metrics.ObserveAction(action)
	}
	events, err := r.exchange.HandleActions(actions, ev.Timestamp())
	if err != nil {
		return err
	}
	for _, out := range events {
		if err := r.publish(out); err != nil {
			return err
		}
	}
	return nil
}

// publish enqueues an exchange event. A full queue is fatal: dropping an
// acknowledgment or a fill would desynchronize the ledger.
func (r *Runner) publish(ev schema.Event) error {
	if err := r.queue.TryPublish(ev); err != nil {
		r.metrics.IncQueueDrop()
		logs.Errorf("feedback queue rejected event type %d: %+v", ev.Header.Type, err)
		return err
	}
	return nil
}
