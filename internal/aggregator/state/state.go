// Package state is the in-memory materialized-view engine: one shared,
// lock-protected container composing the independent per-concern
// components that each know how to apply one slice of the event schema.
package state

import (
	"sync"

	"github.com/R3E-Network/service_layer/internal/aggregator/chart"
	"github.com/R3E-Network/service_layer/internal/aggregator/event"
	"github.com/R3E-Network/service_layer/internal/aggregator/money"
	"github.com/R3E-Network/service_layer/internal/aggregator/quote"
)

// State is the engine's single shared materialized view. Every mutation
// and every query goes through one sync.RWMutex; ApplyEvent is the only
// writer, called by the Applier worker.
type State struct {
	mu sync.RWMutex

	comments  *CommentsComponent
	games     *GamesComponent
	hydrator  *HydratorComponent
	pnl       *PnlComponent
	prices    *PricesComponent
	receipts  *ReceiptsComponent
	syncs     *SyncsComponent
	volume    *VolumeComponent
	world     *WorldComponent
	assets    *AssetsComponent
}

// New builds an empty State with all ten components wired together.
func New() *State {
	return &State{
		comments: NewCommentsComponent(),
		games:    NewGamesComponent(),
		hydrator: NewHydratorComponent(),
		pnl:      NewPnlComponent(),
		prices:   NewPricesComponent(),
		receipts: NewReceiptsComponent(),
		syncs:    NewSyncsComponent(),
		volume:   NewVolumeComponent(),
		world:    NewWorldComponent(MaxCandles),
		assets:   NewAssetsComponent(),
	}
}

// ApplyEvent fans evt out to every component in the fixed order:
// comments, games, hydrator-tracker, pnl, prices, receipts, syncs,
// volume, world. Syncs is the one documented exception to "any order is
// fine": when it derives a SyncSwapEvent from an underlying Pf/Pa trade,
// that derived event is routed into PnL and Volume immediately, since
// neither component otherwise knows which protocol produced the trade.
//
// The returned bool reports whether any component consumed evt, so the
// Applier can skip persisting events nothing recognized (e.g.
// UnknownEvent). Events for hidden assets are still reported as consumed.
func (s *State) ApplyEvent(evt event.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ivyPrice := s.world.Price()
	solPrice := s.prices.SOL()

	consumed := false
	consumed = s.comments.OnEvent(evt) || consumed
	consumed = s.games.OnEvent(evt, ivyPrice, s.assets) || consumed
	consumed = s.hydrator.OnEvent(evt) || consumed
	consumed = s.pnl.OnEvent(evt, ivyPrice, solPrice) || consumed
	consumed = s.prices.OnEvent(evt) || consumed
	consumed = s.receipts.OnEvent(evt) || consumed

	syncsConsumed, derived := s.syncs.OnEvent(evt, solPrice, s.assets)
	consumed = syncsConsumed || consumed
	if derived != nil {
		synthetic := event.Event{Data: *derived, Signature: evt.Signature, Timestamp: evt.Timestamp}
		s.pnl.OnEvent(synthetic, ivyPrice, solPrice)
		s.volume.OnEvent(synthetic, ivyPrice, solPrice)
		s.assets.NotifyTrade(Trade{
			Asset:     derived.Sync,
			IsSync:    true,
			User:      derived.User,
			IsBuy:     derived.IsBuy,
			USDValue:  money.FromSolAmount(derived.SolAmount) * solPrice,
			Timestamp: evt.Timestamp,
		})
	}

	consumed = s.volume.OnEvent(evt, ivyPrice, solPrice) || consumed
	consumed = s.world.OnEvent(evt) || consumed

	if swap, ok := evt.Data.(event.GameSwapEvent); ok && !swap.User.Zero() {
		s.assets.NotifyTrade(Trade{
			Asset:     swap.Game,
			IsSync:    false,
			User:      swap.User,
			IsBuy:     swap.IsBuy,
			USDValue:  money.FromIvyAmount(swap.IvyAmount) * ivyPrice,
			Timestamp: evt.Timestamp,
		})
	}
	return consumed
}

// HydrationRequests exposes the hydrator-tracker's output channel for the
// Hydrator worker to drain.
func (s *State) HydrationRequests() <-chan HydrationRequest {
	return s.hydrator.Requests()
}

// --- Read-side queries. Each acquires a read lock for the duration of a
// single snapshot copy, then returns plain data safe to use lock-free. ---

// GlobalInfo summarizes engine-wide totals for the landing page.
func (s *State) GlobalInfo(nowUnix uint64) GlobalInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return GlobalInfo{
		GamesListed:    s.games.Listed() + s.syncs.Listed(),
		TVL:            s.games.TVL(s.world.Price()),
		Volume24h:      s.volume.Volume24hUSD(nowUnix),
		FeaturedAssets: s.assets.FeaturedAssets(8),
	}
}

// IvyInfo summarizes the World (Ivy/USDC) market.
func (s *State) IvyInfo() IvyInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.world.Info()
}

// QueryIvyChart answers a candle query against the Ivy chart bundle.
func (s *State) QueryIvyChart(kind chart.Kind, count int, afterInclusive uint64) []chart.Candle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.world.QueryIvyChart(kind, count, afterInclusive)
}

// SubscribeIvy returns a stream of World balance updates.
func (s *State) SubscribeIvy() (<-chan WorldBalanceUpdate, func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.world.Subscribe()
}

// Game returns a copy of a single game's record, if known.
func (s *State) Game(addr event.Public) (Game, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g := s.games.Get(addr)
	if g == nil {
		return Game{}, false
	}
	return *g, true
}

// QueryGameChart answers a candle query against a single game's chart.
func (s *State) QueryGameChart(addr event.Public, kind chart.Kind, count int, afterInclusive uint64) ([]chart.Candle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.games.QueryChart(addr, kind, count, afterInclusive)
}

// GameQuote simulates a proposed IVY<->GAME swap against a game's
// current reserves without applying it, using the World's current
// native-swap fee schedule.
func (s *State) GameQuote(addr event.Public, amountIn uint64, isBuy bool) (quote.Quote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g := s.games.Get(addr)
	if g == nil {
		return quote.Quote{}, false
	}
	feeBps := uint16(s.world.Data().IvyFeeBps)
	if !isBuy {
		feeBps = uint16(s.world.Data().GameFeeBps)
	}
	return quote.IvyGameSwap(g.IvyBalance, g.GameBalance, amountIn, isBuy, feeBps), true
}

// SubscribeGame returns a stream of a single game's balance updates.
func (s *State) SubscribeGame(addr event.Public) (<-chan GameBalanceUpdate, func(), bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.games.Subscribe(addr)
}

// Sync returns a copy of a single sync's record, if known.
func (s *State) Sync(addr event.Public) (Sync, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sy := s.syncs.Get(addr)
	if sy == nil {
		return Sync{}, false
	}
	return *sy, true
}

// QuerySyncChart answers a candle query against a single sync's chart.
func (s *State) QuerySyncChart(addr event.Public, kind chart.Kind, count int, afterInclusive uint64) ([]chart.Candle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.syncs.QueryChart(addr, kind, count, afterInclusive)
}

// SubscribeSync returns a stream of a single sync's balance updates.
func (s *State) SubscribeSync(addr event.Public) (<-chan GameBalanceUpdate, func(), bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.syncs.Subscribe(addr)
}

// TopAssets ranks every game and sync by market cap.
func (s *State) TopAssets(count, skip int) []Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.assets.TopByMarketCap(count, skip)
}

// RecentAssets lists the newest games and syncs.
func (s *State) RecentAssets(count, skip int) []Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.assets.Recent(count, skip)
}

// SearchAssets filters games and syncs by a name/symbol substring.
func (s *State) SearchAssets(query string, count, skip int) []Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.assets.Search(query, count, skip)
}

// HotAssets returns the cached hot-list snapshot.
func (s *State) HotAssets(count, skip int) []Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.assets.Hot(count, skip)
}

// RefreshHotList recomputes and installs a new hot-list snapshot. Called
// periodically by a dedicated goroutine, not from ApplyEvent, since the
// score depends on wall-clock age rather than any single event.
func (s *State) RefreshHotList(nowUnix uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.assets.CalculateHotList(nowUnix)
	s.assets.InstallHotList(list)
}

// SubscribeNewAssets returns a stream of newly created games and syncs.
func (s *State) SubscribeNewAssets() (<-chan Asset, func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.assets.Subscribe()
}

// SubscribeTrades returns the global latest-trade watch channel backing
// /trades/stream.
func (s *State) SubscribeTrades() (<-chan Trade, func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.assets.SubscribeTrades()
}

// Comments pages an asset's comment history.
func (s *State) Comments(asset event.Public, count, skip int, reverse bool) CommentInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.comments.GetCommentInfo(asset, count, skip, reverse)
}

// SubscribeComments returns a stream of new comments on an asset.
func (s *State) SubscribeComments(asset event.Public) (<-chan Comment, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.comments.Subscribe(asset)
}

// Deposit, Withdraw, and Burn look up idempotent action receipts.
func (s *State) Deposit(id [32]byte) (DepositInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.receipts.GetDeposit(id)
}

func (s *State) Withdraw(id [32]byte) (WithdrawInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.receipts.GetWithdraw(id)
}

func (s *State) Burn(id [32]byte) (BurnInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.receipts.GetBurn(id)
}

// Pnl answers a single-user PnL query against an asset.
func (s *State) Pnl(asset, user event.Public) PnlResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	price := s.assetPrice(asset)
	return s.pnl.GetPnl(asset, user, price)
}

// PnlLeaderboard ranks traders against an asset by return ratio.
func (s *State) PnlLeaderboard(asset event.Public, count, skip int, realized bool) []PnlEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	price := s.assetPrice(asset)
	return s.pnl.QueryPnlLeaderboard(asset, price, count, skip, realized)
}

func (s *State) assetPrice(asset event.Public) float32 {
	if g := s.games.Get(asset); g != nil {
		return g.LastPriceUSD
	}
	if sy := s.syncs.Get(asset); sy != nil {
		return sy.LastPriceUSD
	}
	return 0
}

// Volume answers a single-user all-time volume query.
func (s *State) Volume(user event.Public) float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.volume.GetVolume(user)
}

// VolumeMultiple answers an all-time volume query for several users.
func (s *State) VolumeMultiple(users []event.Public) []float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.volume.GetVolumeMultiple(users)
}

// VolumeLeaderboard ranks traders against an asset by total volume.
func (s *State) VolumeLeaderboard(asset event.Public, count, skip int) []VlbEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.volume.QueryVolumeLeaderboard(asset, count, skip)
}

// SOLPrice returns the latest external SOL/USD quote.
func (s *State) SOLPrice() float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prices.SOL()
}

// SubscribeSOLPrice returns a stream of SOL/USD price updates.
func (s *State) SubscribeSOLPrice() (<-chan float32, func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prices.SubscribeSOL()
}
