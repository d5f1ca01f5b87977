package state

import (
	"math"

	"github.com/R3E-Network/service_layer/internal/aggregator/event"
	"github.com/R3E-Network/service_layer/internal/aggregator/pubsub"
)

// PricesComponent tracks the latest external SOL/USD quote, supplied by
// the Pricer worker's synthetic SolPriceEvent. Grounded on
// original_source/state/components/prices.rs.
type PricesComponent struct {
	sol *pubsub.Latest[float32]
}

// NewPricesComponent builds a Prices component seeded at zero.
func NewPricesComponent() *PricesComponent {
	return &PricesComponent{sol: pubsub.NewLatest[float32]()}
}

// OnEvent applies a SolPriceEvent, rejecting non-finite or non-positive
// quotes. Returns true if consumed.
func (p *PricesComponent) OnEvent(evt event.Event) bool {
	data, ok := evt.Data.(event.SolPriceEvent)
	if !ok {
		return false
	}
	price := float32(data.Price)
	if data.Price > 0 && !math.IsInf(data.Price, 0) && !math.IsNaN(data.Price) {
		p.sol.Set(price)
	}
	return true
}

// SOL returns the latest SOL/USD price.
func (p *PricesComponent) SOL() float32 { return p.sol.Get() }

// SubscribeSOL returns a stream of SOL/USD price updates, seeded with the
// current value.
func (p *PricesComponent) SubscribeSOL() (<-chan float32, func()) {
	return p.sol.Subscribe()
}
