package state

import (
	"testing"

	"github.com/R3E-Network/service_layer/internal/aggregator/event"
)

func TestVolumeRingExpiry(t *testing.T) {
	v := NewVolumeComponentWithWindow(3)

	v.addToRing(0, 10)
	v.addToRing(60, 20)
	v.addToRing(120, 30)
	v.addToRing(180, 40)

	if got := v.totalMil(180); got != 90 {
		t.Fatalf("totalMil(180) = %d, want 90 (the ts=0 bucket of 10 should have aged out)", got)
	}
}

func TestVolumeRingLazyEviction(t *testing.T) {
	v := NewVolumeComponentWithWindow(3)

	v.addToRing(0, 10)
	v.addToRing(60, 20)

	// No new trade lands in minute 0's slot again, but querying far enough
	// in the future must still evict it lazily.
	if got := v.totalMil(600); got != 0 {
		t.Fatalf("totalMil(600) = %d, want 0 (everything should have aged out)", got)
	}
}

func TestVolumeLeaderboardSkipsZeroUser(t *testing.T) {
	v := NewVolumeComponent()
	asset := event.Public{1}
	v.apply(0, asset, event.Public{}, 500)
	v.apply(0, asset, event.Public{2}, 500)

	rows := v.QueryVolumeLeaderboard(asset, 10, 0)
	if len(rows) != 1 {
		t.Fatalf("expected only the non-zero user to be ranked, got %d rows", len(rows))
	}
}
