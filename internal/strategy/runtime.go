package strategy

import (
	"errors"
	"fmt"

	"github.com/yanun0323/logs"

	"main/internal/book"
	"main/internal/fixed"
	"main/internal/ledger"
	"main/internal/pnl"
	"main/internal/schema"
	"main/internal/signal"
)

// Config controls runtime-level behavior; strategy-specific options travel
// separately through each strategy's own option set.
type Config struct {
	LogSignals     bool
	SignalLogPath  string
	MetricsEnabled bool
	Session        book.Session
}

const defaultSignalLogPath = "signals_log.csv"

func (c Config) withDefaults() Config {
	if c.SignalLogPath == "" {
		c.SignalLogPath = defaultSignalLogPath
	}
	return c
}

// Runtime is the event dispatcher for one strategy instance. It owns the
// order ledger, the accounting engine, the action queue, and the signal
// log. One inbound event is fully processed before the next is accepted;
// nothing here is safe for concurrent use, and nothing needs to be.
type Runtime struct {
	cfg    Config
	strat  Strategy
	ledger *ledger.Ledger
	engine *pnl.Engine
	book   *book.TopOfBook
	log    *signal.Log

	actions       []schema.Action
	clientOrderID uint64

	lastBid  book.Quote
	hasBid   bool
	lastAsk  book.Quote
	hasAsk   bool
	lastTime int64
}

// New creates a runtime around a strategy and acquires the signal log.
func New(strat Strategy, cfg Config) (*Runtime, error) {
	cfg = cfg.withDefaults()
	r := &Runtime{
		cfg:    cfg,
		strat:  strat,
		ledger: ledger.New(),
		engine: pnl.NewEngine(cfg.MetricsEnabled),
		book:   book.NewTopOfBook(cfg.Session),
	}
	if cfg.LogSignals {
		log, err := signal.Open(cfg.SignalLogPath)
		if err != nil {
			return nil, err
		}
		r.log = log
	}
	return r, nil
}

// Dispatch applies one inbound event: ledger and accounting updates first,
// then the matching strategy hook, then the drained action batch. The
// returned batch is the only channel by which strategy decisions reach the
// exchange. A non-nil error means the event stream and the ledger have
// desynchronized and the run must abort.
func (r *Runtime) Dispatch(ev schema.Event) ([]schema.Action, error) {
	switch ev.Header.Type {
	case schema.EventBid:
		r.lastBid = r.book.ApplyBid(ev.Quote)
		r.hasBid = true
		r.lastTime = ev.Quote.Timestamp
		r.strat.OnBid(r)

	case schema.EventAsk:
		r.lastAsk = r.book.ApplyAsk(ev.Quote)
		r.hasAsk = true
		r.lastTime = ev.Quote.Timestamp
		r.strat.OnAsk(r)

	case schema.EventTrade:
		r.book.ApplyTrade(ev.Trade)
		r.lastTime = ev.Trade.Timestamp
		r.strat.OnTrade(r)

	case schema.EventFill:
		r.lastTime = ev.Fill.Timestamp
		if _, err := r.ledger.ApplyFill(ev.Fill.ClientOrderID, ev.Fill.Qty, ev.Fill.RemainingQty); err != nil {
			return nil, fmt.Errorf("fill for order %d: %w", ev.Fill.ClientOrderID, err)
		}
		r.engine.ApplyFill(ev.Fill, r.book.MidpointPrice())
		r.strat.OnFill(r)

	case schema.EventNewOrderAccepted:
		r.lastTime = ev.Order.Timestamp
		if _, err := r.ledger.AcceptNew(ev.Order.ClientOrderID); err != nil {
			return nil, fmt.Errorf("accept for order %d: %w", ev.Order.ClientOrderID, err)
		}
		r.engine.OrderPlaced()
		r.strat.OnNewOrderAccepted(r, ev.Order.ClientOrderID)

	case schema.EventNewOrderRejected:
		r.lastTime = ev.Order.Timestamp
		r.ledger.RejectNew(ev.Order.ClientOrderID)
		r.strat.OnNewOrderRejected(r, ev.Order.ClientOrderID)

	case schema.EventCancelAccepted:
		r.lastTime = ev.Order.Timestamp
		r.ledger.AcceptCancel(ev.Order.OrigClientOrderID)
		r.strat.OnCancelAccepted(r)

	case schema.EventCancelRejected:
		r.lastTime = ev.Order.Timestamp
		r.strat.OnCancelRejected(r)

	case schema.EventReplaceAccepted:
		r.lastTime = ev.Order.Timestamp
		if _, err := r.ledger.AcceptReplace(ev.Order.ClientOrderID, ev.Order.OrigClientOrderID); err != nil {
			if !errors.Is(err, ledger.ErrReplaceOutOfSync) {
				return nil, err
			}
			// Known race between replace rejection and acceptance; the
			// run continues with best-effort ledger state.
			logs.Warnf("replace accepted without pending entry, clientOrderId: %d, origClientOrderId: %d",
				ev.Order.ClientOrderID, ev.Order.OrigClientOrderID)
		}
		r.strat.OnCancelReplaceAccepted(r)

	case schema.EventReplaceRejected:
		r.lastTime = ev.Order.Timestamp
		r.ledger.RejectReplace(ev.Order.ClientOrderID)
		r.strat.OnCancelReplaceRejected(r, ev.Order.ClientOrderID)

	case schema.EventPlaybackEnd:
		// End of tape. The runner reads the report; nothing to dispatch.

	default:
		return nil, fmt.Errorf("unhandled event type %d", ev.Header.Type)
	}

	return r.drain(), nil
}

func (r *Runtime) drain() []schema.Action {
	actions := r.actions
	r.actions = nil
	return actions
}

func (r *Runtime) nextClientOrderID() uint64 {
	r.clientOrderID++
	return r.clientOrderID
}

// NewOrder queues a new limit order and registers it as Pending. Returns
// the allocated client order id.
func (r *Runtime) NewOrder(price schema.Price, qty schema.Quantity, orderType schema.OrderType) uint64 {
	id := r.nextClientOrderID()
	r.actions = append(r.actions, schema.Action{
		Kind:          schema.ActionNewOrder,
		ClientOrderID: id,
		PriceText:     fixed.FormatPrice(price),
		Qty:           qty,
		Type:          orderType,
	})
	// Ids are allocated monotonically, so registration cannot collide.
	if err := r.ledger.SubmitPending(&ledger.Order{
		ClientOrderID: id,
		Price:         price,
		OriginalQty:   qty,
		RemainingQty:  qty,
		Type:          orderType,
		PlacedTime:    r.lastTime,
	}); err != nil {
		logs.Errorf("register pending order %d, err: %+v", id, err)
	}
	return id
}

// NewMarketOrder queues a market order, represented as a limit order with
// price zero routed through the same path.
func (r *Runtime) NewMarketOrder(qty schema.Quantity, orderType schema.OrderType) uint64 {
	return r.NewOrder(0, qty, orderType)
}

// Cancel queues a cancel request for an open order.
func (r *Runtime) Cancel(origClientOrderID uint64) uint64 {
	id := r.nextClientOrderID()
	r.actions = append(r.actions, schema.Action{
		Kind:              schema.ActionCancel,
		ClientOrderID:     id,
		OrigClientOrderID: origClientOrderID,
	})
	return id
}

// CancelReplace queues an atomic cancel-and-replace and registers the
// replacement as PendingReplace under the new id.
func (r *Runtime) CancelReplace(origClientOrderID uint64, price schema.Price, qty schema.Quantity, orderType schema.OrderType) uint64 {
	id := r.nextClientOrderID()
	r.actions = append(r.actions, schema.Action{
		Kind:              schema.ActionCancelReplace,
		ClientOrderID:     id,
		OrigClientOrderID: origClientOrderID,
		PriceText:         fixed.FormatPrice(price),
		Qty:               qty,
		Type:              orderType,
	})
	if err := r.ledger.SubmitReplace(&ledger.Order{
		ClientOrderID: id,
		Price:         price,
		OriginalQty:   qty,
		RemainingQty:  qty,
		Type:          orderType,
		PlacedTime:    r.lastTime,
	}); err != nil {
		logs.Errorf("register pending replace %d, err: %+v", id, err)
	}
	return id
}

// CancelAll queues a cancel-all request.
func (r *Runtime) CancelAll() uint64 {
	id := r.nextClientOrderID()
	r.actions = append(r.actions, schema.Action{
		Kind:          schema.ActionCancelAll,
		ClientOrderID: id,
	})
	return id
}

// LogSignal appends a signal line stamped with the last event time.
func (r *Runtime) LogSignal(text string) {
	if r.log == nil {
		return
	}
	if err := r.log.Write(r.lastTime, text); err != nil {
		logs.Errorf("write signal, err: %+v", err)
	}
}

// Book exposes the market snapshot for strategy hooks.
func (r *Runtime) Book() book.View {
	return r.book
}

// LastBid returns the most recent bid-side update.
func (r *Runtime) LastBid() (book.Quote, bool) {
	return r.lastBid, r.hasBid
}

// LastAsk returns the most recent ask-side update.
func (r *Runtime) LastAsk() (book.Quote, bool) {
	return r.lastAsk, r.hasAsk
}

// LastTrade returns the most recent trade print.
func (r *Runtime) LastTrade() (book.Trade, bool) {
	return r.book.LastTrade()
}

// LastFill returns the most recent recorded fill.
func (r *Runtime) LastFill() (pnl.Fill, bool) {
	return r.engine.LastFill()
}

// LastTime returns the timestamp of the last dispatched event.
func (r *Runtime) LastTime() int64 {
	return r.lastTime
}

// SharesHeld returns the net position.
func (r *Runtime) SharesHeld() int64 {
	return r.engine.SharesHeld()
}

// UnrealizedPnL returns the mark-to-market PnL in price units.
func (r *Runtime) UnrealizedPnL() int64 {
	return r.engine.UnrealizedPnL()
}

// OpenOrders exposes the ledger's Open collection for hook iteration.
func (r *Runtime) OpenOrders() map[uint64]*ledger.Order {
	return r.ledger.Open()
}

// SearchUnfilledOrders looks an id up across Pending, Open, and
// PendingReplace, in that order.
func (r *Runtime) SearchUnfilledOrders(clientOrderID uint64) (*ledger.Order, bool) {
	return r.ledger.Lookup(clientOrderID)
}

// Report summarizes the run's fill history.
func (r *Runtime) Report() pnl.Report {
	return r.engine.Report(r.ledger.OpenCount())
}

// MetricsEnabled reports whether realized metrics are tracked.
func (r *Runtime) MetricsEnabled() bool {
	return r.engine.MetricsEnabled()
}

// Reset prepares the runtime for an independent run in the same process:
// ledger, fills, accounting, book, and signal log all restart, the
// strategy's own state is reset through its hook, and the client order id
// counter deliberately survives so ids stay unique for the process
// lifetime.
func (r *Runtime) Reset() error {
	r.ledger.Reset()
	r.engine.Reset()
	r.book.Reset()
	r.actions = nil
	r.lastBid = book.Quote{}
	r.hasBid = false
	r.lastAsk = book.Quote{}
	r.hasAsk = false
	r.lastTime = 0
	if r.log != nil {
		if err := r.log.Reopen(); err != nil {
			return err
		}
	}
	r.strat.Reset()
	return nil
}

// Close releases the signal log handle.
func (r *Runtime) Close() error {
	if r.log == nil {
		return nil
	}
	return r.log.Close()
}
