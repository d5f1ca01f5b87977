package state

import (
	"sort"

	"github.com/R3E-Network/service_layer/internal/aggregator/event"
	"github.com/R3E-Network/service_layer/internal/aggregator/money"
)

// pnl is one user's running cost basis and position against a single
// asset, in "mil" (1/1000 USD) units plus a raw token position. Grounded
// on original_source/state/components/pnl.rs's Pnl struct.
type pnl struct {
	inMil       uint64
	outMil      uint64
	positionRaw uint64
}

// PnlComponent tracks realized and unrealized profit-and-loss per
// (asset, user) pair.
type PnlComponent struct {
	byAsset map[event.Public]map[event.Public]*pnl
}

// NewPnlComponent builds an empty PnL ledger.
func NewPnlComponent() *PnlComponent {
	return &PnlComponent{byAsset: make(map[event.Public]map[event.Public]*pnl)}
}

// OnEvent applies a GameSwapEvent or a derived SyncSwapEvent, updating the
// trading user's cost basis and position. ivyPriceUSD/solPriceUSD are the
// World/Prices components' latest quotes, needed to value the swap in
// USD. Returns true if consumed.
func (p *PnlComponent) OnEvent(evt event.Event, ivyPriceUSD, solPriceUSD float32) bool {
	switch data := evt.Data.(type) {
	case event.GameSwapEvent:
		if data.User.Zero() {
			return true
		}
		usdMil := money.USDToMil(money.FromIvyAmount(data.IvyAmount) * ivyPriceUSD)
		p.apply(data.Game, data.User, usdMil, data.GameAmount, data.IsBuy)
		return true
	case event.SyncSwapEvent:
		if data.User.Zero() {
			return true
		}
		usdMil := money.USDToMil(money.FromSolAmount(data.SolAmount) * solPriceUSD)
		p.apply(data.Sync, data.User, usdMil, data.TokenAmount, data.IsBuy)
		return true
	default:
		return false
	}
}

func (p *PnlComponent) apply(asset, user event.Public, usdMil, tokenAmount uint64, isBuy bool) {
	users := p.byAsset[asset]
	if users == nil {
		users = make(map[event.Public]*pnl)
		p.byAsset[asset] = users
	}
	entry := users[user]
	if entry == nil {
		entry = &pnl{}
		users[user] = entry
	}

	if isBuy {
		entry.inMil += usdMil
		entry.positionRaw = saturatingAdd(entry.positionRaw, tokenAmount)
	} else {
		entry.outMil += usdMil
		entry.positionRaw = saturatingSub(entry.positionRaw, tokenAmount)
	}
}

func saturatingAdd(a, b uint64) uint64 {
	sum := a + b
	if sum < a {
		return ^uint64(0)
	}
	return sum
}

func saturatingSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

// GetPnl answers a single-user PnL query, valuing the user's remaining
// position at the given current price.
func (p *PnlComponent) GetPnl(asset, user event.Public, price float32) PnlResponse {
	users := p.byAsset[asset]
	if users == nil {
		return PnlResponse{Price: price}
	}
	entry := users[user]
	if entry == nil {
		return PnlResponse{Price: price}
	}
	return PnlResponse{
		InUSD:    money.MilToUSD(entry.inMil),
		OutUSD:   money.MilToUSD(entry.outMil),
		Position: money.FromTokenAmount(entry.positionRaw),
		Price:    price,
	}
}

// QueryPnlLeaderboard ranks every trader against a given asset by return
// ratio: realized (out/in, ignoring the open position) when realized is
// true, or total value (out plus the open position marked at price,
// divided by in) otherwise.
func (p *PnlComponent) QueryPnlLeaderboard(asset event.Public, price float32, count, skip int, realized bool) []PnlEntry {
	users := p.byAsset[asset]
	if users == nil {
		return nil
	}

	type ranked struct {
		entry PnlEntry
		ratio float64
		has   bool
	}

	ranked_ := make([]ranked, 0, len(users))
	for user, e := range users {
		inUSD := money.MilToUSD(e.inMil)
		outUSD := money.MilToUSD(e.outMil)
		position := money.FromTokenAmount(e.positionRaw)

		entry := PnlEntry{User: user, InUSD: inUSD, OutUSD: outUSD, Position: position}

		var ratio float64
		has := inUSD > 0
		if has {
			value := float64(outUSD)
			if !realized {
				value += float64(position) * float64(price)
			}
			ratio = value / float64(inUSD)
		}
		ranked_ = append(ranked_, ranked{entry: entry, ratio: ratio, has: has})
	}

	sort.Slice(ranked_, func(i, j int) bool {
		if ranked_[i].has != ranked_[j].has {
			return ranked_[i].has
		}
		return ranked_[i].ratio > ranked_[j].ratio
	})

	if skip >= len(ranked_) || count <= 0 {
		return nil
	}
	end := skip + count
	if end > len(ranked_) {
		end = len(ranked_)
	}

	out := make([]PnlEntry, 0, end-skip)
	for _, r := range ranked_[skip:end] {
		out = append(out, r.entry)
	}
	return out
}
