package state

import (
	"testing"

	"github.com/R3E-Network/service_layer/internal/aggregator/event"
)

func TestPnlComponentTracksCostBasisAndPosition(t *testing.T) {
	p := NewPnlComponent()
	asset := event.Public{1}
	user := event.Public{2}

	// Buy 0.5 tokens for 1 IVY at an ivy price of $2.
	buy := event.Event{Data: event.GameSwapEvent{
		Game: asset, User: user,
		IvyAmount: 1_000_000_000, GameAmount: 500_000_000, IsBuy: true,
	}}
	if !p.OnEvent(buy, 2.0, 0) {
		t.Fatal("expected buy swap to be consumed")
	}

	resp := p.GetPnl(asset, user, 3.0)
	if resp.InUSD == 0 || resp.Position == 0 {
		t.Fatalf("expected non-zero in/position after a buy: %+v", resp)
	}
	if resp.OutUSD != 0 {
		t.Fatalf("expected zero out before any sell: %+v", resp)
	}

	// Sell half the position.
	sell := event.Event{Data: event.GameSwapEvent{
		Game: asset, User: user,
		IvyAmount: 600_000_000, GameAmount: 250_000_000, IsBuy: false,
	}}
	if !p.OnEvent(sell, 2.0, 0) {
		t.Fatal("expected sell swap to be consumed")
	}

	resp = p.GetPnl(asset, user, 3.0)
	if resp.OutUSD == 0 {
		t.Fatalf("expected non-zero out after a sell: %+v", resp)
	}
	if resp.Position <= 0 {
		t.Fatalf("expected a remaining open position after selling half: %+v", resp)
	}
}

func TestPnlComponentIgnoresZeroUser(t *testing.T) {
	p := NewPnlComponent()
	asset := event.Public{1}

	consumed := p.OnEvent(event.Event{Data: event.GameSwapEvent{Game: asset, IsBuy: true}}, 1.0, 0)
	if !consumed {
		t.Fatal("expected the event to report consumed even for the zero user")
	}
	resp := p.GetPnl(asset, event.Public{}, 1.0)
	if resp.InUSD != 0 || resp.Position != 0 {
		t.Fatalf("expected no PnL entry created for the zero-address user: %+v", resp)
	}
}

func TestPnlLeaderboardRanksByReturnRatio(t *testing.T) {
	p := NewPnlComponent()
	asset := event.Public{9}
	winner := event.Public{1}
	loser := event.Public{2}

	p.OnEvent(event.Event{Data: event.GameSwapEvent{Game: asset, User: winner, IvyAmount: 100_000_000, GameAmount: 100_000_000, IsBuy: true}}, 1.0, 0)
	p.OnEvent(event.Event{Data: event.GameSwapEvent{Game: asset, User: winner, IvyAmount: 300_000_000, GameAmount: 100_000_000, IsBuy: false}}, 1.0, 0)

	p.OnEvent(event.Event{Data: event.GameSwapEvent{Game: asset, User: loser, IvyAmount: 100_000_000, GameAmount: 100_000_000, IsBuy: true}}, 1.0, 0)
	p.OnEvent(event.Event{Data: event.GameSwapEvent{Game: asset, User: loser, IvyAmount: 10_000_000, GameAmount: 100_000_000, IsBuy: false}}, 1.0, 0)

	ranked := p.QueryPnlLeaderboard(asset, 1.0, 10, 0, true)
	if len(ranked) != 2 {
		t.Fatalf("expected 2 ranked entries, got %d", len(ranked))
	}
	if ranked[0].User != winner {
		t.Fatalf("expected %v ranked first, got %+v", winner, ranked)
	}
}
