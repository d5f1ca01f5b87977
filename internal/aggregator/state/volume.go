package state

import (
	"github.com/R3E-Network/service_layer/internal/aggregator/event"
	"github.com/R3E-Network/service_layer/internal/aggregator/leaderboard"
	"github.com/R3E-Network/service_layer/internal/aggregator/money"
)

// VolumeComponent tracks per-user trading volume, both globally and per
// asset, plus a rolling 24h USD total across every asset. Grounded on
// original_source/state/components/volume.rs.
type VolumeComponent struct {
	volumeMil map[event.Public]uint64
	lb        map[event.Public]*leaderboard.Leaderboard[string, uint64]

	windowMinutes uint64
	ring          []uint64
	ringMinute    []uint64
	ringTotal     uint64
}

// NewVolumeComponent builds an empty volume ledger with the production
// 24h ring window.
func NewVolumeComponent() *VolumeComponent {
	return NewVolumeComponentWithWindow(VolumeRingMinutes)
}

// NewVolumeComponentWithWindow builds an empty volume ledger with a
// custom ring window size, used by tests to exercise expiry without a
// 1440-slot ring.
func NewVolumeComponentWithWindow(windowMinutes uint64) *VolumeComponent {
	return &VolumeComponent{
		volumeMil:     make(map[event.Public]uint64),
		lb:            make(map[event.Public]*leaderboard.Leaderboard[string, uint64]),
		windowMinutes: windowMinutes,
		ring:          make([]uint64, windowMinutes),
		ringMinute:    make([]uint64, windowMinutes),
	}
}

// OnEvent applies a GameSwapEvent or a derived SyncSwapEvent. ivyPriceUSD
// and solPriceUSD are the World/Prices components' latest quotes. Returns
// true if consumed.
func (v *VolumeComponent) OnEvent(evt event.Event, ivyPriceUSD, solPriceUSD float32) bool {
	switch data := evt.Data.(type) {
	case event.GameSwapEvent:
		usdMil := money.USDToMil(money.FromIvyAmount(data.IvyAmount) * ivyPriceUSD)
		v.apply(evt.Timestamp, data.Game, data.User, usdMil)
		return true
	case event.SyncSwapEvent:
		usdMil := money.USDToMil(money.FromSolAmount(data.SolAmount) * solPriceUSD)
		v.apply(evt.Timestamp, data.Sync, data.User, usdMil)
		return true
	default:
		return false
	}
}

func (v *VolumeComponent) apply(ts uint64, asset, user event.Public, usdMil uint64) {
	v.addToRing(ts, usdMil)

	if user.Zero() {
		return
	}

	v.volumeMil[user] += usdMil

	lb := v.lb[asset]
	if lb == nil {
		lb = leaderboard.New[string, uint64]()
		v.lb[asset] = lb
	}
	lb.Increment(publicKey(user), usdMil)
}

func (v *VolumeComponent) addToRing(ts, usdMil uint64) {
	minute := ts / 60
	idx := minute % v.windowMinutes
	if v.ringMinute[idx] != minute {
		v.ringTotal -= v.ring[idx]
		v.ring[idx] = 0
		v.ringMinute[idx] = minute
	}
	v.ring[idx] += usdMil
	v.ringTotal += usdMil
}

// Volume24hUSD reports the trailing-window USD volume across every asset
// as of nowUnix, lazily evicting any ring bucket that has aged out of the
// window without a fresh trade to overwrite it.
func (v *VolumeComponent) Volume24hUSD(nowUnix uint64) float32 {
	return money.MilToUSD(v.totalMil(nowUnix))
}

func (v *VolumeComponent) totalMil(nowUnix uint64) uint64 {
	nowMinute := nowUnix / 60
	var cutoff uint64
	if nowMinute >= v.windowMinutes {
		cutoff = nowMinute - v.windowMinutes
	}

	for idx := range v.ring {
		if v.ring[idx] == 0 {
			continue
		}
		if v.ringMinute[idx] < cutoff {
			v.ringTotal -= v.ring[idx]
			v.ring[idx] = 0
		}
	}
	return v.ringTotal
}

// GetVolume reports a single user's all-time total volume in USD.
func (v *VolumeComponent) GetVolume(user event.Public) float32 {
	return money.MilToUSD(v.volumeMil[user])
}

// GetVolumeMultiple reports all-time total volume in USD for each user
// given, in the same order.
func (v *VolumeComponent) GetVolumeMultiple(users []event.Public) []float32 {
	out := make([]float32, len(users))
	for i, u := range users {
		out[i] = v.GetVolume(u)
	}
	return out
}

// QueryVolumeLeaderboard ranks traders against a single asset by total
// volume.
func (v *VolumeComponent) QueryVolumeLeaderboard(asset event.Public, count, skip int) []VlbEntry {
	lb := v.lb[asset]
	if lb == nil {
		return nil
	}
	rows := lb.Range(skip, count)
	out := make([]VlbEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, VlbEntry{User: publicFromKey(r.Key), Volume: money.MilToUSD(r.Value)})
	}
	return out
}

func publicKey(p event.Public) string { return string(p[:]) }

func publicFromKey(s string) event.Public {
	var p event.Public
	copy(p[:], s)
	return p
}
