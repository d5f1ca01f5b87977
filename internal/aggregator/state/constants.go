package state

import "github.com/R3E-Network/service_layer/internal/aggregator/event"

// MaxCandles bounds every chart's retained candle count.
const MaxCandles = 2000

// MinHotAssetCount is the minimum number of assets the hot-list refresh
// keeps scanning for even once every candidate found so far is older
// than 24h.
const MinHotAssetCount = 50

// MaxHotAssets caps the installed hot list length.
const MaxHotAssets = 1024

// VolumeRingMinutes sizes the rolling 24h volume ring (one slot/minute).
const VolumeRingMinutes = 1440

// Pump-style bonding curve constants, fixed by the upstream protocol's
// initial reserve configuration.
const (
	InitialVirtualSolReserves   uint64  = 30_000_000_000
	InitialVirtualTokenReserves uint64  = 1_073_000_000_000_000
	SyncMaxSupplyTokens         float64 = 1_000_000.0
)

// HiddenGames and HiddenSyncs are the static denylists every component
// consults before admitting an event for a given asset address. Kept as
// compiled-in constants per the Open Question decision recorded in
// SPEC_FULL.md: not config-driven, matching the original's hard-coded
// HIDDEN_GAMES/HIDDEN_SYNCS sets.
var (
	HiddenGames = map[event.Public]struct{}{}
	HiddenSyncs = map[event.Public]struct{}{}
)

func isHidden(set map[event.Public]struct{}, addr event.Public) bool {
	_, ok := set[addr]
	return ok
}
