package state

import (
	"github.com/R3E-Network/service_layer/internal/aggregator/chart"
	"github.com/R3E-Network/service_layer/internal/aggregator/curve"
	"github.com/R3E-Network/service_layer/internal/aggregator/event"
	"github.com/R3E-Network/service_layer/internal/aggregator/money"
	"github.com/R3E-Network/service_layer/internal/aggregator/pubsub"
)

// WorldBalanceUpdate is broadcast to subscribers every time the World's
// ivy_sold balance changes.
type WorldBalanceUpdate struct {
	IvySold uint64 `json:"ivy_sold"`
}

// WorldData is the World component's plain-data snapshot, safe to copy
// out from behind the state lock for a query response.
type WorldData struct {
	UsdcBalance          uint64
	IvySold              uint64
	IvyVested            uint64
	CreateTimestamp      uint64
	IvyCurveMax          uint64
	CurveInputScaleNum   uint32
	CurveInputScaleDen   uint32
	IvyInitialLiquidity  uint64
	GameInitialLiquidity uint64
	IvyFeeBps            uint8
	GameFeeBps           uint8
}

// WorldComponent tracks the global Ivy/USDC bonding-curve market.
// Grounded on original_source/state/components/world.rs.
type WorldComponent struct {
	data      WorldData
	ivyCharts *chart.Charts
	ivyPrice  float32
	updates   *pubsub.Topic[WorldBalanceUpdate]
}

const worldUpdateBufferSize = 512

// NewWorldComponent builds an empty World seeded with a neutral curve.
func NewWorldComponent(maxCandles int) *WorldComponent {
	return &WorldComponent{
		data: WorldData{
			IvyCurveMax:        1,
			CurveInputScaleNum: 1,
			CurveInputScaleDen: 1,
		},
		ivyCharts: chart.NewCharts(maxCandles),
		updates:   pubsub.NewTopic[WorldBalanceUpdate](worldUpdateBufferSize),
	}
}

// Subscribe returns a channel of real-time balance updates.
func (w *WorldComponent) Subscribe() (<-chan WorldBalanceUpdate, func()) {
	return w.updates.Subscribe()
}

// OnEvent applies a World-relevant event. Returns true if consumed.
func (w *WorldComponent) OnEvent(evt event.Event) bool {
	switch data := evt.Data.(type) {
	case event.WorldCreateEvent:
		w.processCreate(evt.Timestamp, data)
		return true
	case event.WorldUpdateEvent:
		w.processUpdate(data)
		return true
	case event.WorldSwapEvent:
		w.processSwap(evt.Timestamp, data)
		return true
	case event.WorldVestingEvent:
		w.processVesting(data)
		return true
	default:
		return false
	}
}

func (w *WorldComponent) processCreate(ts uint64, create event.WorldCreateEvent) {
	w.data.CreateTimestamp = ts
	w.data.IvyCurveMax = create.IvyCurveMax
	w.data.CurveInputScaleNum = create.CurveInputScaleNum
	w.data.CurveInputScaleDen = create.CurveInputScaleDen
}

func (w *WorldComponent) processUpdate(update event.WorldUpdateEvent) {
	w.data.IvyInitialLiquidity = update.IvyInitialLiquidity
	w.data.GameInitialLiquidity = update.GameInitialLiquidity
	w.data.IvyFeeBps = update.IvyFeeBps
	w.data.GameFeeBps = update.GameFeeBps
}

func (w *WorldComponent) processSwap(ts uint64, swap event.WorldSwapEvent) {
	usdcAmount := money.FromUsdcAmount(swap.UsdcAmount)

	inputScale := float64(w.data.CurveInputScaleNum) / float64(w.data.CurveInputScaleDen)
	ivyPrice := float32(curve.SqrtCurrentPrice(float64(money.FromIvyAmount(swap.IvySold)), inputScale))

	if !money.IsNormal(ivyPrice) {
		return
	}

	w.ivyPrice = ivyPrice
	w.data.UsdcBalance = swap.UsdcBalance
	w.data.IvySold = swap.IvySold

	w.updates.Publish(WorldBalanceUpdate{IvySold: swap.IvySold})

	_ = w.ivyCharts.Append(ts, w.ivyPrice, usdcAmount)
}

func (w *WorldComponent) processVesting(vest event.WorldVestingEvent) {
	w.data.IvyVested = vest.IvyVested
}

// Price returns the last computed Ivy/USD price.
func (w *WorldComponent) Price() float32 { return w.ivyPrice }

// Data returns a copy of the World's plain-data fields.
func (w *WorldComponent) Data() WorldData { return w.data }

// QueryIvyChart answers a candle query against the Ivy chart bundle.
func (w *WorldComponent) QueryIvyChart(kind chart.Kind, count int, afterInclusive uint64) []chart.Candle {
	return w.ivyCharts.Query(kind, count, afterInclusive)
}

// IvyChange24h returns the Ivy price's 24h percent change, or 0 if none.
func (w *WorldComponent) IvyChange24h() float32 {
	pct, ok := w.ivyCharts.GetChangePct24h()
	if !ok {
		return 0
	}
	return pct
}

// Info summarizes World state for the /ivy endpoint.
func (w *WorldComponent) Info() IvyInfo {
	return IvyInfo{
		CreateTimestamp:      w.data.CreateTimestamp,
		IvyInitialLiquidity:  money.FromIvyAmount(w.data.IvyInitialLiquidity),
		GameInitialLiquidity: money.FromGameAmount(w.data.GameInitialLiquidity),
		IvyPrice:             w.ivyPrice,
		IvyMktCap:            money.FromIvyAmount(w.data.IvySold) * w.ivyPrice,
		IvyChange24h:         w.IvyChange24h(),
	}
}
