package state

import (
	"sort"
	"sync"

	"github.com/R3E-Network/service_layer/internal/aggregator/event"
	"github.com/R3E-Network/service_layer/internal/aggregator/pubsub"
)

// Asset is the unified cross-type view of a Game or a Sync, used by the
// assets index, the global new-asset stream, and featured-asset lists.
type Asset struct {
	Address         event.Public `json:"address"`
	IsSync          bool         `json:"is_sync"`
	Name            string       `json:"name"`
	Symbol          string       `json:"symbol"`
	CreateTimestamp uint64       `json:"create_timestamp"`
	LastPriceUSD    float32      `json:"last_price_usd"`
	MktCapUSD       float32      `json:"mkt_cap_usd"`
	Change24h       float32      `json:"change_24h"`
}

// Trade is the global cross-asset trade notice published on every swap,
// consumed by the "latest value" /trades/stream endpoint.
type Trade struct {
	Asset     event.Public `json:"asset"`
	IsSync    bool         `json:"is_sync"`
	User      event.Public `json:"user"`
	IsBuy     bool         `json:"is_buy"`
	USDValue  float32      `json:"usd_value"`
	Timestamp uint64       `json:"timestamp"`
}

// topEntry is a BTreeSet-equivalent sort key: (mkt_cap_cents, create_ts,
// index, is_sync) avoids ordering by float market cap directly, matching
// original_source/state/components/assets.rs's TopAssetEntry.
type topEntry struct {
	mktCapCents int64
	createTs    uint64
	index       int
	isSync      bool
}

func topEntryLess(a, b topEntry) bool {
	if a.mktCapCents != b.mktCapCents {
		return a.mktCapCents > b.mktCapCents // descending market cap
	}
	if a.createTs != b.createTs {
		return a.createTs < b.createTs
	}
	if a.index != b.index {
		return a.index < b.index
	}
	return !a.isSync && b.isSync
}

type hotEntry struct {
	score float64
	asset Asset
}

// AssetsComponent is the cross-type browse index: top-by-market-cap,
// recency, search, and a periodically refreshed "hot" list.
type AssetsComponent struct {
	mu sync.RWMutex

	games []Asset
	syncs []Asset

	hotList []Asset

	created *pubsub.Topic[Asset]
	trades  *pubsub.Latest[Trade]
}

const assetCreatedBufferSize = 64

// NewAssetsComponent builds an empty assets index.
func NewAssetsComponent() *AssetsComponent {
	return &AssetsComponent{
		created: pubsub.NewTopic[Asset](assetCreatedBufferSize),
		trades:  pubsub.NewLatest[Trade](),
	}
}

// Subscribe returns a stream of newly created assets.
func (a *AssetsComponent) Subscribe() (<-chan Asset, func()) {
	return a.created.Subscribe()
}

// SubscribeTrades returns the global latest-trade watch channel backing
// /trades/stream.
func (a *AssetsComponent) SubscribeTrades() (<-chan Trade, func()) {
	return a.trades.Subscribe()
}

// NotifyTrade publishes a cross-asset trade notice.
func (a *AssetsComponent) NotifyTrade(t Trade) {
	a.trades.Set(t)
}

// NotifyCreated is called by Games/Syncs when a new asset is created,
// publishing it on the global new-asset stream and inserting it into the
// browse index. Metadata edits (GameEditEvent) never call it, so a game's
// first non-empty edit publishes no new-asset notice.
func (a *AssetsComponent) NotifyCreated(asset Asset) {
	a.mu.Lock()
	if asset.IsSync {
		a.syncs = append(a.syncs, asset)
	} else {
		a.games = append(a.games, asset)
	}
	a.mu.Unlock()

	a.created.Publish(asset)
}

// UpdateAsset replaces the cached snapshot for an existing asset,
// keyed by address, used after every swap so the index's market-cap
// ordering reflects the latest price.
func (a *AssetsComponent) UpdateAsset(asset Asset) {
	a.mu.Lock()
	defer a.mu.Unlock()
	list := a.games
	if asset.IsSync {
		list = a.syncs
	}
	for i := range list {
		if list[i].Address == asset.Address {
			list[i] = asset
			return
		}
	}
}

// TopByMarketCap returns up to count assets across both types ordered by
// descending market cap (in whole-cent integer terms to avoid float
// comparison ties), skipping the first skip entries.
func (a *AssetsComponent) TopByMarketCap(count, skip int) []Asset {
	a.mu.RLock()
	defer a.mu.RUnlock()

	entries := make([]topEntry, 0, len(a.games)+len(a.syncs))
	lookup := make(map[topEntry]Asset, len(entries))
	for i, g := range a.games {
		e := topEntry{mktCapCents: int64(g.MktCapUSD * 100), createTs: g.CreateTimestamp, index: i, isSync: false}
		entries = append(entries, e)
		lookup[e] = g
	}
	for i, s := range a.syncs {
		e := topEntry{mktCapCents: int64(s.MktCapUSD * 100), createTs: s.CreateTimestamp, index: i, isSync: true}
		entries = append(entries, e)
		lookup[e] = s
	}
	sort.Slice(entries, func(i, j int) bool { return topEntryLess(entries[i], entries[j]) })

	return pageAssets(entries, lookup, count, skip)
}

// Recent merges the two chronologically sorted type lists with a
// two-pointer merge on create_timestamp, newest first.
func (a *AssetsComponent) Recent(count, skip int) []Asset {
	a.mu.RLock()
	defer a.mu.RUnlock()
	merged := mergeByTimestampDesc(a.games, a.syncs)
	return pageSlice(merged, count, skip)
}

// Search filters the recent merge by a case-insensitive substring match
// on name or symbol (both sides are lower-cased by containsFold).
func (a *AssetsComponent) Search(query string, count, skip int) []Asset {
	a.mu.RLock()
	merged := mergeByTimestampDesc(a.games, a.syncs)
	a.mu.RUnlock()

	filtered := make([]Asset, 0, len(merged))
	for _, asset := range merged {
		if containsFold(asset.Name, query) || containsFold(asset.Symbol, query) {
			filtered = append(filtered, asset)
		}
	}
	return pageSlice(filtered, count, skip)
}

// Hot returns the cached hot-list snapshot.
func (a *AssetsComponent) Hot(count, skip int) []Asset {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return pageSlice(a.hotList, count, skip)
}

// FeaturedAssets returns the first few entries of the hot list for the
// global landing-page summary.
func (a *AssetsComponent) FeaturedAssets(count int) []Asset {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if count > len(a.hotList) {
		count = len(a.hotList)
	}
	return append([]Asset(nil), a.hotList[:count]...)
}

// CalculateHotList scans assets newest-first computing a time-decayed
// hot score, stopping once age exceeds 24h and at least MinHotAssetCount
// candidates have been gathered. This is the read-side half of the
// copy-on-write refresh: call InstallHotList with the result under a
// write lock.
func (a *AssetsComponent) CalculateHotList(nowUnix uint64) []Asset {
	a.mu.RLock()
	merged := mergeByTimestampDesc(a.games, a.syncs)
	a.mu.RUnlock()

	scored := make([]hotEntry, 0, len(merged))
	for _, asset := range merged {
		ageHours := 0.0
		if nowUnix > asset.CreateTimestamp {
			ageHours = float64(nowUnix-asset.CreateTimestamp) / 3600.0
		}
		if ageHours > 24 && len(scored) >= MinHotAssetCount {
			break
		}
		score := float64(asset.MktCapUSD) / pow(ageHours+2, 1.8)
		scored = append(scored, hotEntry{score: score, asset: asset})
	}

	sort.Slice(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	if len(scored) > MaxHotAssets {
		scored = scored[:MaxHotAssets]
	}

	out := make([]Asset, len(scored))
	for i, e := range scored {
		out[i] = e.asset
	}
	return out
}

// InstallHotList atomically swaps in a freshly computed hot list.
func (a *AssetsComponent) InstallHotList(list []Asset) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hotList = list
}

func pow(base, exp float64) float64 {
	// Avoid importing math twice across files; kept local and trivial.
	return mathPow(base, exp)
}

func pageAssets(entries []topEntry, lookup map[topEntry]Asset, count, skip int) []Asset {
	if skip >= len(entries) || count <= 0 {
		return nil
	}
	end := skip + count
	if end > len(entries) {
		end = len(entries)
	}
	out := make([]Asset, 0, end-skip)
	for _, e := range entries[skip:end] {
		out = append(out, lookup[e])
	}
	return out
}

func pageSlice(assets []Asset, count, skip int) []Asset {
	if skip >= len(assets) || count <= 0 {
		return nil
	}
	end := skip + count
	if end > len(assets) {
		end = len(assets)
	}
	return append([]Asset(nil), assets[skip:end]...)
}

func mergeByTimestampDesc(a, b []Asset) []Asset {
	out := make([]Asset, 0, len(a)+len(b))
	i, j := len(a)-1, len(b)-1
	for i >= 0 && j >= 0 {
		if a[i].CreateTimestamp >= b[j].CreateTimestamp {
			out = append(out, a[i])
			i--
		} else {
			out = append(out, b[j])
			j--
		}
	}
	for ; i >= 0; i-- {
		out = append(out, a[i])
	}
	for ; j >= 0; j-- {
		out = append(out, b[j])
	}
	return out
}

func containsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return indexFold(haystack, needle) >= 0
}
