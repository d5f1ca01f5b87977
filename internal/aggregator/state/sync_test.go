package state

import (
	"testing"

	"github.com/R3E-Network/service_layer/internal/aggregator/event"
)

func TestSyncsComponentCreateThenPfTradeDerivesSyncSwap(t *testing.T) {
	s := NewSyncsComponent()
	assets := NewAssetsComponent()
	mint := event.Public{1}
	addr := event.Public{2}

	consumed, derived := s.OnEvent(event.Event{Data: event.SyncCreateEvent{
		Sync: addr, Mint: mint, Name: "Test", Symbol: "TST",
	}, Timestamp: 1}, 0, assets)
	if !consumed || derived != nil {
		t.Fatalf("create should be consumed with no derived event, got derived=%+v", derived)
	}

	trade := event.PfTradeEvent{
		Mint: mint, User: event.Public{9},
		SolAmount: 1_000_000_000, TokenAmount: 500_000,
		IsBuy: true,
		VirtualSolReserves: InitialVirtualSolReserves + 1_000_000_000,
		VirtualTokenReserves: InitialVirtualTokenReserves - 500_000,
	}
	consumed, derived = s.OnEvent(event.Event{Data: trade, Timestamp: 2}, 150.0, assets)
	if !consumed {
		t.Fatal("expected trade to be consumed")
	}
	if derived == nil {
		t.Fatal("expected a derived SyncSwapEvent")
	}
	if derived.Sync != addr || derived.User != trade.User || !derived.IsBuy {
		t.Fatalf("derived event mismatch: %+v", derived)
	}

	sync := s.Get(addr)
	if sync == nil {
		t.Fatal("expected sync to exist")
	}
	if sync.LastPriceUSD <= 0 {
		t.Fatalf("expected a positive price after a trade, got %v", sync.LastPriceUSD)
	}
}

func TestSyncsComponentMigrationStopsBondingCurveUpdates(t *testing.T) {
	s := NewSyncsComponent()
	assets := NewAssetsComponent()
	mint := event.Public{1}
	addr := event.Public{2}
	pool := event.Public{3}

	s.OnEvent(event.Event{Data: event.SyncCreateEvent{Sync: addr, Mint: mint}}, 0, assets)
	s.OnEvent(event.Event{Data: event.PfMigrationEvent{Mint: mint, Pool: pool}}, 0, assets)

	sync := s.Get(addr)
	if !sync.Migrated || sync.Pool != pool {
		t.Fatalf("expected sync to be migrated to pool %v, got %+v", pool, sync)
	}

	// A Pf trade after migration must be ignored: the sync now trades on
	// the external AMM pool, not the bonding curve.
	consumed, derived := s.OnEvent(event.Event{Data: event.PfTradeEvent{Mint: mint, SolAmount: 1}}, 150.0, assets)
	if !consumed || derived != nil {
		t.Fatalf("expected post-migration Pf trade to be dropped, got derived=%+v", derived)
	}

	// A Pa trade against the migrated pool is now the one that moves it.
	consumed, derived = s.OnEvent(event.Event{Data: event.PaBuyEvent{
		Pool: pool, User: event.Public{5},
		SolAmount: 1_000_000_000, TokenAmount: 10_000_000,
		QuoteReserves: 2_000_000_000, BaseReserves: 900_000_000,
	}}, 150.0, assets)
	if !consumed || derived == nil {
		t.Fatal("expected the Pa buy against the migrated pool to derive a SyncSwapEvent")
	}
	if !derived.IsBuy {
		t.Fatal("expected IsBuy to be true for PaBuyEvent")
	}
}

func TestSyncsComponentIgnoresHiddenSync(t *testing.T) {
	s := NewSyncsComponent()
	addr := event.Public{0xCD}
	HiddenSyncs[addr] = struct{}{}
	defer delete(HiddenSyncs, addr)

	s.OnEvent(event.Event{Data: event.SyncCreateEvent{Sync: addr, Mint: event.Public{1}}}, 0, nil)
	if s.Get(addr) != nil {
		t.Fatal("expected a hidden sync not to be created")
	}
}
