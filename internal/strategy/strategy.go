// Package strategy implements the strategy base runtime: the event
// dispatcher, the outbound action queue, and the hook interface concrete
// strategies implement.
package strategy

// Strategy is the set of decision hooks invoked by the runtime after it has
// applied ledger and accounting updates for an event. Hooks have no return
// value with lifecycle meaning; decisions reach the exchange only through
// the runtime's action methods.
type Strategy interface {
	OnBid(rt *Runtime)
	OnAsk(rt *Runtime)
	OnTrade(rt *Runtime)
	OnFill(rt *Runtime)
	OnNewOrderAccepted(rt *Runtime, clientOrderID uint64)
	OnNewOrderRejected(rt *Runtime, clientOrderID uint64)
	OnCancelAccepted(rt *Runtime)
	OnCancelRejected(rt *Runtime)
	OnCancelReplaceAccepted(rt *Runtime)
	OnCancelReplaceRejected(rt *Runtime, clientOrderID uint64)

	// Reset clears strategy-local state between independent runs.
	Reset()
}

// NopStrategy implements every hook as a no-op. Concrete strategies embed
// it and override the hooks they care about.
type NopStrategy struct{}

func (NopStrategy) OnBid(*Runtime)                           {}
func (NopStrategy) OnAsk(*Runtime)                           {}
func (NopStrategy) OnTrade(*Runtime)                         {}
func (NopStrategy) OnFill(*Runtime)                          {}
func (NopStrategy) OnNewOrderAccepted(*Runtime, uint64)      {}
func (NopStrategy) OnNewOrderRejected(*Runtime, uint64)      {}
func (NopStrategy) OnCancelAccepted(*Runtime)                {}
func (NopStrategy) OnCancelRejected(*Runtime)                {}
func (NopStrategy) OnCancelReplaceAccepted(*Runtime)         {}
func (NopStrategy) OnCancelReplaceRejected(*Runtime, uint64) {}
func (NopStrategy) Reset()                                   {}
