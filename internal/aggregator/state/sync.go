package state

import (
	"github.com/R3E-Network/service_layer/internal/aggregator/chart"
	"github.com/R3E-Network/service_layer/internal/aggregator/event"
	"github.com/R3E-Network/service_layer/internal/aggregator/money"
	"github.com/R3E-Network/service_layer/internal/aggregator/pubsub"
)

// Sync is one externally-launched pump-style token tracked by the native
// wrapper program. Grounded on original_source/state/components/syncs.rs
// (via the Sync*/Pf*/Pa* event family): before migration its price is read
// off the bonding curve's virtual reserves, after migration off the AMM
// pool's real reserves.
type Sync struct {
	Address event.Public
	Mint    event.Public
	Pool    event.Public

	Name        string
	Symbol      string
	MetadataURL string

	Migrated bool

	VirtualSolReserves   uint64
	VirtualTokenReserves uint64
	QuoteReserves        uint64
	BaseReserves         uint64

	CreateTimestamp uint64
	LastPriceUSD    float32
	MktCapUSD       float32

	Charts  *chart.Charts
	updates *pubsub.Topic[GameBalanceUpdate]
}

const syncUpdateBufferSize = 256

// SyncsComponent indexes every wrapped pump-style token by its native
// address, its external mint, and (after migration) its AMM pool.
type SyncsComponent struct {
	syncs      []*Sync
	addrIndex  map[event.Public]int
	mintIndex  map[event.Public]int
	poolIndex  map[event.Public]int
}

// NewSyncsComponent builds an empty Syncs index.
func NewSyncsComponent() *SyncsComponent {
	return &SyncsComponent{
		addrIndex: make(map[event.Public]int),
		mintIndex: make(map[event.Public]int),
		poolIndex: make(map[event.Public]int),
	}
}

// OnEvent applies a Syncs-relevant event and, for trade events, derives a
// protocol-agnostic SyncSwapEvent for the PnL and Volume components (the
// one documented fan-out-order exception: Syncs must run before PnL and
// Volume). solPriceUSD is the Prices component's latest SOL/USD quote.
func (s *SyncsComponent) OnEvent(evt event.Event, solPriceUSD float32, assets *AssetsComponent) (consumed bool, derived *event.SyncSwapEvent) {
	switch data := evt.Data.(type) {
	case event.SyncCreateEvent:
		s.processCreate(evt.Timestamp, data, assets)
		return true, nil
	case event.PfTradeEvent:
		return true, s.processPfTrade(evt.Timestamp, data, solPriceUSD, assets)
	case event.PfMigrationEvent:
		s.processMigration(data)
		return true, nil
	case event.PaBuyEvent:
		return true, s.processPaBuy(evt.Timestamp, data, solPriceUSD, assets)
	case event.PaSellEvent:
		return true, s.processPaSell(evt.Timestamp, data, solPriceUSD, assets)
	default:
		return false, nil
	}
}

func (s *SyncsComponent) processCreate(ts uint64, create event.SyncCreateEvent, assets *AssetsComponent) {
	if isHidden(HiddenSyncs, create.Sync) {
		return
	}
	if _, exists := s.addrIndex[create.Sync]; exists {
		return
	}

	sync := &Sync{
		Address:         create.Sync,
		Mint:            create.Mint,
		Name:            create.Name,
		Symbol:          create.Symbol,
		MetadataURL:     create.MetadataURL,
		CreateTimestamp: ts,

		VirtualSolReserves:   InitialVirtualSolReserves,
		VirtualTokenReserves: InitialVirtualTokenReserves,

		Charts:  chart.NewCharts(MaxCandles),
		updates: pubsub.NewTopic[GameBalanceUpdate](syncUpdateBufferSize),
	}
	s.addrIndex[create.Sync] = len(s.syncs)
	s.mintIndex[create.Mint] = len(s.syncs)
	s.syncs = append(s.syncs, sync)

	if assets != nil {
		assets.NotifyCreated(Asset{
			Address:         sync.Address,
			IsSync:          true,
			Name:            sync.Name,
			Symbol:          sync.Symbol,
			CreateTimestamp: sync.CreateTimestamp,
		})
	}
}

func (s *SyncsComponent) byMint(mint event.Public) *Sync {
	idx, ok := s.mintIndex[mint]
	if !ok {
		return nil
	}
	return s.syncs[idx]
}

func (s *SyncsComponent) byPool(pool event.Public) *Sync {
	idx, ok := s.poolIndex[pool]
	if !ok {
		return nil
	}
	return s.syncs[idx]
}

func (s *SyncsComponent) processPfTrade(ts uint64, trade event.PfTradeEvent, solPriceUSD float32, assets *AssetsComponent) *event.SyncSwapEvent {
	sync := s.byMint(trade.Mint)
	if sync == nil || sync.Migrated {
		return nil
	}

	sync.VirtualSolReserves = trade.VirtualSolReserves
	sync.VirtualTokenReserves = trade.VirtualTokenReserves

	s.updatePriceAndChart(sync, ts,
		money.FromSolAmount(trade.VirtualSolReserves),
		money.FromTokenAmount(trade.VirtualTokenReserves),
		money.FromSolAmount(trade.SolAmount),
		solPriceUSD, assets)

	sync.updates.Publish(GameBalanceUpdate{IvyBalance: trade.VirtualSolReserves, GameBalance: trade.VirtualTokenReserves})

	return &event.SyncSwapEvent{
		Sync:        sync.Address,
		User:        trade.User,
		SolAmount:   trade.SolAmount,
		TokenAmount: trade.TokenAmount,
		IsBuy:       trade.IsBuy,
	}
}

func (s *SyncsComponent) processMigration(migration event.PfMigrationEvent) {
	sync := s.byMint(migration.Mint)
	if sync == nil {
		return
	}
	sync.Migrated = true
	sync.Pool = migration.Pool
	s.poolIndex[migration.Pool] = s.addrIndex[sync.Address]
}

func (s *SyncsComponent) processPaBuy(ts uint64, buy event.PaBuyEvent, solPriceUSD float32, assets *AssetsComponent) *event.SyncSwapEvent {
	sync := s.byPool(buy.Pool)
	if sync == nil {
		return nil
	}

	sync.QuoteReserves = buy.QuoteReserves
	sync.BaseReserves = buy.BaseReserves

	s.updatePriceAndChart(sync, ts,
		money.FromSolAmount(buy.QuoteReserves),
		money.FromTokenAmount(buy.BaseReserves),
		money.FromSolAmount(buy.SolAmount),
		solPriceUSD, assets)

	return &event.SyncSwapEvent{
		Sync:        sync.Address,
		User:        buy.User,
		SolAmount:   buy.SolAmount,
		TokenAmount: buy.TokenAmount,
		IsBuy:       true,
	}
}

func (s *SyncsComponent) processPaSell(ts uint64, sell event.PaSellEvent, solPriceUSD float32, assets *AssetsComponent) *event.SyncSwapEvent {
	sync := s.byPool(sell.Pool)
	if sync == nil {
		return nil
	}

	sync.QuoteReserves = sell.QuoteReserves
	sync.BaseReserves = sell.BaseReserves

	s.updatePriceAndChart(sync, ts,
		money.FromSolAmount(sell.QuoteReserves),
		money.FromTokenAmount(sell.BaseReserves),
		money.FromSolAmount(sell.SolAmount),
		solPriceUSD, assets)

	return &event.SyncSwapEvent{
		Sync:        sync.Address,
		User:        sell.User,
		SolAmount:   sell.SolAmount,
		TokenAmount: sell.TokenAmount,
		IsBuy:       false,
	}
}

func (s *SyncsComponent) updatePriceAndChart(sync *Sync, ts uint64, solReserve, tokenReserve, solVolume float32, solPriceUSD float32, assets *AssetsComponent) {
	if tokenReserve <= 0 {
		return
	}
	priceSOL := solReserve / tokenReserve
	priceUSD := priceSOL * solPriceUSD
	if !money.IsNormal(priceUSD) {
		return
	}

	sync.LastPriceUSD = priceUSD
	sync.MktCapUSD = float32(SyncMaxSupplyTokens) * priceUSD

	_ = sync.Charts.Append(ts, priceUSD, solVolume)

	if assets != nil {
		pct, ok := sync.Charts.GetChangePct24h()
		if !ok {
			pct = 0
		}
		assets.UpdateAsset(Asset{
			Address:         sync.Address,
			IsSync:          true,
			Name:            sync.Name,
			Symbol:          sync.Symbol,
			CreateTimestamp: sync.CreateTimestamp,
			LastPriceUSD:    sync.LastPriceUSD,
			MktCapUSD:       sync.MktCapUSD,
			Change24h:       pct,
		})
	}
}

// Listed reports the number of syncs created so far.
func (s *SyncsComponent) Listed() uint64 { return uint64(len(s.syncs)) }

// Get returns a sync record by its native address, or nil if unknown.
func (s *SyncsComponent) Get(addr event.Public) *Sync {
	idx, ok := s.addrIndex[addr]
	if !ok {
		return nil
	}
	return s.syncs[idx]
}

// Subscribe returns a stream of balance updates for a single sync.
func (s *SyncsComponent) Subscribe(addr event.Public) (<-chan GameBalanceUpdate, func(), bool) {
	sync := s.Get(addr)
	if sync == nil {
		return nil, nil, false
	}
	ch, cancel := sync.updates.Subscribe()
	return ch, cancel, true
}

// QueryChart answers a candle query against a single sync's chart bundle.
func (s *SyncsComponent) QueryChart(addr event.Public, kind chart.Kind, count int, afterInclusive uint64) ([]chart.Candle, bool) {
	sync := s.Get(addr)
	if sync == nil {
		return nil, false
	}
	return sync.Charts.Query(kind, count, afterInclusive), true
}
