package state

import (
	"math"
	"testing"

	"github.com/R3E-Network/service_layer/internal/aggregator/event"
)

func TestPricesComponentAcceptsPositiveFinitePrice(t *testing.T) {
	p := NewPricesComponent()
	if !p.OnEvent(event.Event{Data: event.SolPriceEvent{Price: 150.25}}) {
		t.Fatal("expected SolPriceEvent to be consumed")
	}
	if got, want := p.SOL(), float32(150.25); got != want {
		t.Fatalf("SOL() = %v, want %v", got, want)
	}
}

func TestPricesComponentRejectsNonPositiveOrNonFinite(t *testing.T) {
	cases := []float64{0, -1, math.Inf(1), math.Inf(-1), math.NaN()}
	for _, price := range cases {
		p := NewPricesComponent()
		p.OnEvent(event.Event{Data: event.SolPriceEvent{Price: price}})
		if got := p.SOL(); got != 0 {
			t.Fatalf("price %v: SOL() = %v, want 0 (rejected)", price, got)
		}
	}
}

func TestPricesComponentIgnoresUnrelatedEvent(t *testing.T) {
	p := NewPricesComponent()
	if p.OnEvent(event.Event{Data: event.CommentEvent{}}) {
		t.Fatal("expected CommentEvent to be ignored")
	}
}

func TestPricesComponentSubscribeSeesUpdates(t *testing.T) {
	p := NewPricesComponent()
	ch, cancel := p.SubscribeSOL()
	defer cancel()

	p.OnEvent(event.Event{Data: event.SolPriceEvent{Price: 99}})

	select {
	case got := <-ch:
		if got != 99 {
			t.Fatalf("got %v, want 99", got)
		}
	default:
		t.Fatal("expected a price update to be published")
	}
}
