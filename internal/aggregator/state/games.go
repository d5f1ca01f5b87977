package state

import (
	"github.com/R3E-Network/service_layer/internal/aggregator/chart"
	"github.com/R3E-Network/service_layer/internal/aggregator/event"
	"github.com/R3E-Network/service_layer/internal/aggregator/money"
	"github.com/R3E-Network/service_layer/internal/aggregator/pubsub"
)

// GameBalanceUpdate is broadcast to a single game's subscribers whenever its
// reserves change.
type GameBalanceUpdate struct {
	IvyBalance  uint64 `json:"ivy_balance"`
	GameBalance uint64 `json:"game_balance"`
}

// Game is one listed game's full materialized record. Grounded on
// original_source/state/components/games.rs's Game struct, minus the
// embedded comment ring (comments now live in the standalone
// CommentsComponent per SPEC_FULL.md's decision to follow the authoritative
// comments.rs rather than games.rs's inline copy).
type Game struct {
	Address           event.Public
	Mint              event.Public
	SwapAlt           event.Public
	Owner             event.Public
	WithdrawAuthority event.Public

	Name   string
	Symbol string

	GameURL     string
	CoverURL    string
	MetadataURL string
	ShortDesc   string

	IvyBalance         uint64
	GameBalance        uint64
	StartingIvyBalance uint64
	StartingGameBalance uint64

	CreateTimestamp uint64
	LastPriceUSD    float32
	MktCapUSD       float32

	Charts  *chart.Charts
	updates *pubsub.Topic[GameBalanceUpdate]
}

const gameUpdateBufferSize = 256

// GamesComponent indexes every listed game by address and maintains the
// aggregate TVL contribution of the native game market.
type GamesComponent struct {
	games     []*Game
	addrIndex map[event.Public]int

	// lockedRaw is the sum, across all games, of max(0, ivy_balance -
	// starting_ivy_balance) in raw Ivy units, updated incrementally so
	// TVL() never re-scans every game.
	lockedRaw uint64
}

// NewGamesComponent builds an empty Games index.
func NewGamesComponent() *GamesComponent {
	return &GamesComponent{addrIndex: make(map[event.Public]int)}
}

// OnEvent applies a Games-relevant event. ivyPriceUSD is the World
// component's latest Ivy/USD price, needed to convert a game's
// ivy-denominated reserves into a USD market cap and TVL contribution.
// assets receives create/update notifications for the cross-type browse
// index. Returns true if consumed.
func (g *GamesComponent) OnEvent(evt event.Event, ivyPriceUSD float32, assets *AssetsComponent) bool {
	switch data := evt.Data.(type) {
	case event.GameCreateEvent:
		g.processCreate(evt.Timestamp, data, assets)
		return true
	case event.GameEditEvent:
		g.processEdit(data)
		return true
	case event.GameSwapEvent:
		g.processSwap(evt.Timestamp, data, ivyPriceUSD, assets)
		return true
	case event.GameUpgradeEvent:
		g.processUpgrade(data)
		return true
	default:
		return false
	}
}

func (g *GamesComponent) processCreate(ts uint64, create event.GameCreateEvent, assets *AssetsComponent) {
	if isHidden(HiddenGames, create.Game) {
		return
	}
	if _, exists := g.addrIndex[create.Game]; exists {
		return
	}

	game := &Game{
		Address:             create.Game,
		Mint:                create.Mint,
		SwapAlt:             create.SwapAlt,
		Name:                create.Name,
		Symbol:              create.Symbol,
		IvyBalance:          create.IvyBalance,
		GameBalance:         create.GameBalance,
		StartingIvyBalance:  create.IvyBalance,
		StartingGameBalance: create.GameBalance,
		CreateTimestamp:     ts,
		Charts:              chart.NewCharts(MaxCandles),
		updates:             pubsub.NewTopic[GameBalanceUpdate](gameUpdateBufferSize),
	}
	g.addrIndex[create.Game] = len(g.games)
	g.games = append(g.games, game)

	if assets != nil {
		assets.NotifyCreated(Asset{
			Address:         game.Address,
			Name:            game.Name,
			Symbol:          game.Symbol,
			CreateTimestamp: game.CreateTimestamp,
		})
	}
}

func (g *GamesComponent) processEdit(edit event.GameEditEvent) {
	game := g.get(edit.Game)
	if game == nil {
		return
	}
	game.Owner = edit.Owner
	game.WithdrawAuthority = edit.WithdrawAuthority
	game.GameURL = edit.GameURL
	game.CoverURL = edit.CoverURL
	game.MetadataURL = edit.MetadataURL
	game.ShortDesc = edit.ShortDesc
}

func (g *GamesComponent) processUpgrade(upgrade event.GameUpgradeEvent) {
	game := g.get(upgrade.Game)
	if game == nil {
		return
	}
	game.SwapAlt = upgrade.SwapAlt
}

func (g *GamesComponent) processSwap(ts uint64, swap event.GameSwapEvent, ivyPriceUSD float32, assets *AssetsComponent) {
	game := g.get(swap.Game)
	if game == nil {
		return
	}

	g.removeLockedContribution(game)

	game.IvyBalance = swap.IvyBalance
	game.GameBalance = swap.GameBalance

	g.addLockedContribution(game)

	if game.GameBalance > 0 {
		ratio := money.FromIvyAmount(game.IvyBalance) / money.FromGameAmount(game.GameBalance)
		priceUSD := ratio * ivyPriceUSD
		if money.IsNormal(priceUSD) {
			game.LastPriceUSD = priceUSD
			game.MktCapUSD = money.FromGameAmount(game.StartingGameBalance) * priceUSD
		}
	}

	game.updates.Publish(GameBalanceUpdate{IvyBalance: game.IvyBalance, GameBalance: game.GameBalance})

	ivyAmount := money.FromIvyAmount(swap.IvyAmount)
	_ = game.Charts.Append(ts, game.LastPriceUSD, ivyAmount)

	if assets != nil {
		assets.UpdateAsset(Asset{
			Address:         game.Address,
			Name:            game.Name,
			Symbol:          game.Symbol,
			CreateTimestamp: game.CreateTimestamp,
			LastPriceUSD:    game.LastPriceUSD,
			MktCapUSD:       game.MktCapUSD,
			Change24h:       g.changePct24h(game),
		})
	}
}

func (g *GamesComponent) changePct24h(game *Game) float32 {
	pct, ok := game.Charts.GetChangePct24h()
	if !ok {
		return 0
	}
	return pct
}

// removeLockedContribution/addLockedContribution maintain the running TVL
// sum incrementally: each call adjusts lockedRaw by this game's current
// max(0, ivy_balance - starting_ivy_balance) contribution.
func (g *GamesComponent) removeLockedContribution(game *Game) {
	g.lockedRaw -= lockedContribution(game.IvyBalance, game.StartingIvyBalance)
}

func (g *GamesComponent) addLockedContribution(game *Game) {
	g.lockedRaw += lockedContribution(game.IvyBalance, game.StartingIvyBalance)
}

func lockedContribution(ivyBalance, startingIvyBalance uint64) uint64 {
	if ivyBalance <= startingIvyBalance {
		return 0
	}
	return ivyBalance - startingIvyBalance
}

// TVL returns the USD value locked in the native game market: the sum
// across all games of max(0, ivy_balance - starting_ivy_balance),
// converted at the current Ivy/USD price.
func (g *GamesComponent) TVL(ivyPriceUSD float32) float32 {
	return money.FromIvyAmount(g.lockedRaw) * ivyPriceUSD
}

// Listed reports the number of games created so far.
func (g *GamesComponent) Listed() uint64 { return uint64(len(g.games)) }

func (g *GamesComponent) get(addr event.Public) *Game {
	idx, ok := g.addrIndex[addr]
	if !ok {
		return nil
	}
	return g.games[idx]
}

// Get returns a copy-safe pointer to the game record, or nil if unknown.
func (g *GamesComponent) Get(addr event.Public) *Game { return g.get(addr) }

// Subscribe returns a stream of balance updates for a single game.
func (g *GamesComponent) Subscribe(addr event.Public) (<-chan GameBalanceUpdate, func(), bool) {
	game := g.get(addr)
	if game == nil {
		return nil, nil, false
	}
	ch, cancel := game.updates.Subscribe()
	return ch, cancel, true
}

// QueryChart answers a candle query against a single game's chart bundle.
func (g *GamesComponent) QueryChart(addr event.Public, kind chart.Kind, count int, afterInclusive uint64) ([]chart.Candle, bool) {
	game := g.get(addr)
	if game == nil {
		return nil, false
	}
	return game.Charts.Query(kind, count, afterInclusive), true
}
