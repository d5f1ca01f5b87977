// Package event defines the closed set of on-chain and synthetic event
// payloads this service ingests, and the binary codec that decodes them
// off an inner-instruction data blob.
package event

// Public is a 32-byte on-chain address, base58-encoded at every wire
// boundary (JSON, RPC params).
type Public [32]byte

// Zero reports whether the address is the all-zero sentinel used to mark
// "no user" on synthetic or system-originated swaps.
func (p Public) Zero() bool { return p == Public{} }

// Signature is a 64-byte transaction identifier, base58-encoded at every
// wire boundary.
type Signature [64]byte

// Zero reports whether the signature is the all-zero sentinel used for
// synthetic events (SolPrice, Hydrate) that were never submitted on-chain.
func (s Signature) Zero() bool { return s == Signature{} }

// Source identifies which program family an event belongs to, used by the
// Applier to route per-source signature cursors.
type Source int

const (
	SourceNone Source = iota
	SourceIvy
	SourcePf
	SourcePa
)

// Data is implemented by every concrete event payload. Name returns the
// wire tag used in the persisted JSON envelope ("gameCreateEvent", etc).
type Data interface {
	Name() string
}

// Event is one decoded, timestamped record, either read off the chain or
// synthesized by the Pricer/Hydrator/Applier.
type Event struct {
	Data      Data
	Signature Signature
	Timestamp uint64
}

// Source reports which cursor family, if any, this event's data belongs
// to. Synthetic events (SolPrice, Hydrate, Initialize) and Unknown return
// SourceNone and are not tracked by a per-source cursor.
func (e Event) Source() Source {
	switch e.Data.(type) {
	case GameCreateEvent, GameEditEvent, GameSwapEvent, GameUpgradeEvent,
		GameDepositEvent, GameWithdrawEvent, GameBurnEvent, CommentEvent,
		WorldCreateEvent, WorldSwapEvent, WorldUpdateEvent, WorldVestingEvent:
		return SourceIvy
	case PfTradeEvent, PfMigrationEvent, SyncCreateEvent:
		return SourcePf
	case PaBuyEvent, PaSellEvent:
		return SourcePa
	default:
		return SourceNone
	}
}

// --- Native Ivy protocol events ---

type GameCreateEvent struct {
	Game       Public
	Mint       Public
	SwapAlt    Public
	Name       string
	Symbol     string
	IvyBalance uint64
	GameBalance uint64
}

func (GameCreateEvent) Name() string { return "gameCreateEvent" }

type GameEditEvent struct {
	Game              Public
	Owner             Public
	WithdrawAuthority Public
	GameURL           string
	CoverURL          string
	MetadataURL       string
	ShortDesc         string
}

func (GameEditEvent) Name() string { return "gameEditEvent" }

type GameSwapEvent struct {
	Game       Public
	User       Public
	IvyBalance uint64
	GameBalance uint64
	IvyAmount  uint64
	GameAmount uint64
	IsBuy      bool
}

func (GameSwapEvent) Name() string { return "gameSwapEvent" }

// GameUpgradeEvent marks a rotation of a game's swap-authority PDA. It has
// no further effect on materialized state beyond recording the new value,
// reconstructed from the Games component's SwapAlt field usage since the
// upstream struct definition was not present in the retrieval pack.
type GameUpgradeEvent struct {
	Game    Public
	SwapAlt Public
}

func (GameUpgradeEvent) Name() string { return "gameUpgradeEvent" }

type GameDepositEvent struct {
	Game Public
	ID   [32]byte
}

func (GameDepositEvent) Name() string { return "gameDepositEvent" }

type GameWithdrawEvent struct {
	Game              Public
	ID                [32]byte
	WithdrawAuthority Public
}

func (GameWithdrawEvent) Name() string { return "gameWithdrawEvent" }

// GameBurnEvent records a burn receipt; mirrors GameDepositEvent's shape
// per the receipt table in spec.md §3.
type GameBurnEvent struct {
	Game Public
	ID   [32]byte
}

func (GameBurnEvent) Name() string { return "gameBurnEvent" }

type CommentEvent struct {
	Game         Public
	CommentIndex uint64
	User         Public
	Timestamp    uint64
	Text         string
}

func (CommentEvent) Name() string { return "commentEvent" }

type WorldCreateEvent struct {
	IvyCurveMax        uint64
	CurveInputScaleNum uint32
	CurveInputScaleDen uint32
}

func (WorldCreateEvent) Name() string { return "worldCreateEvent" }

type WorldSwapEvent struct {
	UsdcBalance uint64
	IvySold     uint64
	UsdcAmount  uint64
	IvyAmount   uint64
	IsBuy       bool
}

func (WorldSwapEvent) Name() string { return "worldSwapEvent" }

type WorldUpdateEvent struct {
	IvyInitialLiquidity  uint64
	GameInitialLiquidity uint64
	IvyFeeBps            uint8
	GameFeeBps           uint8
}

func (WorldUpdateEvent) Name() string { return "worldUpdateEvent" }

type WorldVestingEvent struct {
	Discriminator uint8
	IvyAmount     uint64
	IvyVested     uint64
}

func (WorldVestingEvent) Name() string { return "worldVestingEvent" }

// --- Sync (native wrapper around the external pump-style protocol) ---

type SyncCreateEvent struct {
	Sync        Public
	Mint        Public
	Name        string
	Symbol      string
	MetadataURL string
}

func (SyncCreateEvent) Name() string { return "syncCreateEvent" }

// --- External AMM / pump-style protocol events ---

type PfTradeEvent struct {
	Mint                 Public
	User                 Public
	SolAmount            uint64
	TokenAmount          uint64
	IsBuy                bool
	VirtualSolReserves   uint64
	VirtualTokenReserves uint64
}

func (PfTradeEvent) Name() string { return "pfTradeEvent" }

type PfMigrationEvent struct {
	Mint Public
	Pool Public
}

func (PfMigrationEvent) Name() string { return "pfMigrationEvent" }

type PaBuyEvent struct {
	Pool          Public
	User          Public
	SolAmount     uint64
	TokenAmount   uint64
	QuoteReserves uint64
	BaseReserves  uint64
}

func (PaBuyEvent) Name() string { return "paBuyEvent" }

type PaSellEvent struct {
	Pool          Public
	User          Public
	SolAmount     uint64
	TokenAmount   uint64
	QuoteReserves uint64
	BaseReserves  uint64
}

func (PaSellEvent) Name() string { return "paSellEvent" }

// SyncSwapEvent is not a wire variant: the Syncs component derives it from
// PfTradeEvent/PaBuyEvent/PaSellEvent (normalizing sync address, user, sol
// amount, token amount and buy/sell direction) before handing it to the
// PnL and Volume components, which don't need to know which underlying
// protocol produced the trade.
type SyncSwapEvent struct {
	Sync        Public
	User        Public
	SolAmount   uint64
	TokenAmount uint64
	IsBuy       bool
}

func (SyncSwapEvent) Name() string { return "syncSwapEvent" }

// --- Synthetic events, never persisted from chain data ---

type SolPriceEvent struct {
	Price float64
}

func (SolPriceEvent) Name() string { return "solPriceEvent" }

type HydrateEvent struct {
	Asset       Public
	MetadataURL string
	Description string
	ImageURL    string
}

func (HydrateEvent) Name() string { return "hydrateEvent" }

// InitializeEvent marks the end of event-log replay at startup; it drives
// the hydrator-tracker's switch from buffering pending hydration requests
// to forwarding them straight to the worker.
type InitializeEvent struct{}

func (InitializeEvent) Name() string { return "initializeEvent" }

// UnknownEvent is produced for any discriminator tag not in the codec's
// table. It is never consumed by a state component; it exists purely so
// the Retriever and Applier have something to log and count.
type UnknownEvent struct {
	Tag uint64
}

func (UnknownEvent) Name() string { return "unknownEvent" }
