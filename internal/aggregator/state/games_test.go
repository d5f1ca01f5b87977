package state

import (
	"testing"

	"github.com/R3E-Network/service_layer/internal/aggregator/event"
)

func TestGameSwapUpdatesMarketCap(t *testing.T) {
	g := NewGamesComponent()
	addr := event.Public{7}

	g.OnEvent(event.Event{Data: event.GameCreateEvent{
		Game:        addr,
		IvyBalance:  1_000_000_000,
		GameBalance: 1_000_000_000,
	}, Timestamp: 1}, 2.0, nil)

	g.OnEvent(event.Event{Data: event.GameSwapEvent{
		Game:        addr,
		IvyBalance:  2_000_000_000,
		GameBalance: 500_000_000,
		IvyAmount:   1_000_000_000,
	}, Timestamp: 2}, 2.0, nil)

	game := g.Get(addr)
	if game == nil {
		t.Fatal("expected game to exist")
	}
	if got, want := game.LastPriceUSD, float32(8.0); !almostEqual(got, want) {
		t.Errorf("price_usd = %v, want %v", got, want)
	}
	if got, want := game.MktCapUSD, float32(8.0); !almostEqual(got, want) {
		t.Errorf("mkt_cap_usd = %v, want %v", got, want)
	}
}

func TestGameSwapRejectsUnknownGame(t *testing.T) {
	g := NewGamesComponent()
	consumed := g.OnEvent(event.Event{Data: event.GameSwapEvent{Game: event.Public{9}}}, 1.0, nil)
	if !consumed {
		t.Fatal("GameSwapEvent should report consumed even when the game is unknown")
	}
	if g.Get(event.Public{9}) != nil {
		t.Fatal("a swap for an unknown game must not create one")
	}
}

func TestGamesTVLTracksLockedIvy(t *testing.T) {
	g := NewGamesComponent()
	addr := event.Public{3}

	g.OnEvent(event.Event{Data: event.GameCreateEvent{
		Game:        addr,
		IvyBalance:  1_000_000_000,
		GameBalance: 1_000_000_000,
	}}, 1.0, nil)

	g.OnEvent(event.Event{Data: event.GameSwapEvent{
		Game:        addr,
		IvyBalance:  3_000_000_000,
		GameBalance: 500_000_000,
	}}, 1.0, nil)

	if got, want := g.TVL(1.0), float32(2.0); !almostEqual(got, want) {
		t.Errorf("TVL = %v, want %v", got, want)
	}

	// A swap that drains ivy back below the starting balance contributes
	// zero, never a negative amount.
	g.OnEvent(event.Event{Data: event.GameSwapEvent{
		Game:        addr,
		IvyBalance:  200_000_000,
		GameBalance: 800_000_000,
	}}, 1.0, nil)

	if got, want := g.TVL(1.0), float32(0.0); !almostEqual(got, want) {
		t.Errorf("TVL = %v, want %v", got, want)
	}
}

func almostEqual(a, b float32) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < 1e-4
}
