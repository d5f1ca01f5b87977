package event

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// IxTag is the 8-byte marker every event-carrying inner instruction
// begins with, ahead of the 8-byte discriminator.
var IxTag = [8]byte{0xe4, 0x45, 0xa5, 0x2e, 0x51, 0xcb, 0x9a, 0x1d}

// Discriminator tags for the external pump-style AMM, fixed by the
// upstream program's IDL.
const (
	TagPfTrade     uint64 = 0xee61e64ed37fdbbd
	TagPfMigration uint64 = 0x94ea945cb95de9bd
	TagPaBuy       uint64 = 0x7777f52c1f52f467
	TagPaSell      uint64 = 0x2adc03a50a372f3e
)

// Native-protocol discriminators. These are assigned by this service's own
// IDL (not reverse-engineered from a third party), so unlike the pump tags
// above they are arbitrary but stable identifiers chosen in discriminator
// order of first appearance in the original source.
const (
	TagGameCreate   uint64 = 0x01
	TagGameEdit     uint64 = 0x02
	TagGameSwap     uint64 = 0x03
	TagGameUpgrade  uint64 = 0x04
	TagGameDeposit  uint64 = 0x05
	TagGameWithdraw uint64 = 0x06
	TagGameBurn     uint64 = 0x07
	TagComment      uint64 = 0x08
	TagWorldCreate  uint64 = 0x09
	TagWorldSwap    uint64 = 0x0a
	TagWorldUpdate  uint64 = 0x0b
	TagWorldVesting uint64 = 0x0c
	TagSyncCreate   uint64 = 0x0d
)

// decodeFn decodes the bytes following the 8-byte discriminator into a
// concrete Data payload.
type decodeFn func(r *reader) (Data, error)

var decoders = map[uint64]decodeFn{
	TagGameCreate:   decodeGameCreate,
	TagGameEdit:     decodeGameEdit,
	TagGameSwap:     decodeGameSwap,
	TagGameUpgrade:  decodeGameUpgrade,
	TagGameDeposit:  decodeGameDeposit,
	TagGameWithdraw: decodeGameWithdraw,
	TagGameBurn:     decodeGameBurn,
	TagComment:      decodeComment,
	TagWorldCreate:  decodeWorldCreate,
	TagWorldSwap:    decodeWorldSwap,
	TagWorldUpdate:  decodeWorldUpdate,
	TagWorldVesting: decodeWorldVesting,
	TagSyncCreate:   decodeSyncCreate,
	TagPfTrade:      decodePfTrade,
	TagPfMigration:  decodePfMigration,
	TagPaBuy:        decodePaBuy,
	TagPaSell:       decodePaSell,
}

// DecodeInstruction takes the full base58-decoded inner-instruction data
// (including the leading IxTag) and returns the decoded event payload.
// It returns (UnknownEvent, nil) for a well-formed but unrecognized
// discriminator, and a non-nil error when data is shorter than 16 bytes or
// lacks the leading IxTag, or is truncated/malformed under a *known*
// discriminator.
func DecodeInstruction(data []byte) (Data, error) {
	if len(data) < 16 || !bytes.Equal(data[:8], IxTag[:]) {
		return nil, fmt.Errorf("event: missing instruction tag")
	}
	tag := binary.LittleEndian.Uint64(data[8:16])
	dec, ok := decoders[tag]
	if !ok {
		return UnknownEvent{Tag: tag}, nil
	}
	r := &reader{buf: data[16:]}
	payload, err := dec(r)
	if err != nil {
		return nil, fmt.Errorf("event: decode tag 0x%x: %w", tag, err)
	}
	return payload, nil
}

// reader is a small length-prefixed little-endian cursor over a byte
// slice, matching the wire format the Solana Anchor-style programs that
// produced these events use for their event payloads.
type reader struct {
	buf []byte
	pos int
}

func (r *reader) remaining() int { return len(r.buf) - r.pos }

func (r *reader) need(n int) error {
	if r.remaining() < n {
		return fmt.Errorf("event: truncated record, need %d have %d", n, r.remaining())
	}
	return nil
}

func (r *reader) u8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

func (r *reader) bool() (bool, error) {
	v, err := r.u8()
	return v != 0, err
}

func (r *reader) u32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *reader) u64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v, nil
}

func (r *reader) pubkey() (Public, error) {
	if err := r.need(32); err != nil {
		return Public{}, err
	}
	var p Public
	copy(p[:], r.buf[r.pos:r.pos+32])
	r.pos += 32
	return p, nil
}

func (r *reader) bytes32() ([32]byte, error) {
	if err := r.need(32); err != nil {
		return [32]byte{}, err
	}
	var b [32]byte
	copy(b[:], r.buf[r.pos:r.pos+32])
	r.pos += 32
	return b, nil
}

func (r *reader) str() (string, error) {
	n, err := r.u32()
	if err != nil {
		return "", err
	}
	if err := r.need(int(n)); err != nil {
		return "", err
	}
	s := string(r.buf[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return s, nil
}

func decodeGameCreate(r *reader) (Data, error) {
	var e GameCreateEvent
	var err error
	if e.Game, err = r.pubkey(); err != nil {
		return nil, err
	}
	if e.Mint, err = r.pubkey(); err != nil {
		return nil, err
	}
	if e.SwapAlt, err = r.pubkey(); err != nil {
		return nil, err
	}
	if e.Name, err = r.str(); err != nil {
		return nil, err
	}
	if e.Symbol, err = r.str(); err != nil {
		return nil, err
	}
	if e.IvyBalance, err = r.u64(); err != nil {
		return nil, err
	}
	if e.GameBalance, err = r.u64(); err != nil {
		return nil, err
	}
	return e, nil
}

func decodeGameEdit(r *reader) (Data, error) {
	var e GameEditEvent
	var err error
	if e.Game, err = r.pubkey(); err != nil {
		return nil, err
	}
	if e.Owner, err = r.pubkey(); err != nil {
		return nil, err
	}
	if e.WithdrawAuthority, err = r.pubkey(); err != nil {
		return nil, err
	}
	if e.GameURL, err = r.str(); err != nil {
		return nil, err
	}
	if e.CoverURL, err = r.str(); err != nil {
		return nil, err
	}
	if e.MetadataURL, err = r.str(); err != nil {
		return nil, err
	}
	if e.ShortDesc, err = r.str(); err != nil {
		return nil, err
	}
	return e, nil
}

func decodeGameSwap(r *reader) (Data, error) {
	var e GameSwapEvent
	var err error
	if e.Game, err = r.pubkey(); err != nil {
		return nil, err
	}
	if e.User, err = r.pubkey(); err != nil {
		return nil, err
	}
	if e.IvyBalance, err = r.u64(); err != nil {
		return nil, err
	}
	if e.GameBalance, err = r.u64(); err != nil {
		return nil, err
	}
	if e.IvyAmount, err = r.u64(); err != nil {
		return nil, err
	}
	if e.GameAmount, err = r.u64(); err != nil {
		return nil, err
	}
	if e.IsBuy, err = r.bool(); err != nil {
		return nil, err
	}
	return e, nil
}

func decodeGameUpgrade(r *reader) (Data, error) {
	var e GameUpgradeEvent
	var err error
	if e.Game, err = r.pubkey(); err != nil {
		return nil, err
	}
	if e.SwapAlt, err = r.pubkey(); err != nil {
		return nil, err
	}
	return e, nil
}

func decodeGameDeposit(r *reader) (Data, error) {
	var e GameDepositEvent
	var err error
	if e.Game, err = r.pubkey(); err != nil {
		return nil, err
	}
	if e.ID, err = r.bytes32(); err != nil {
		return nil, err
	}
	return e, nil
}

func decodeGameWithdraw(r *reader) (Data, error) {
	var e GameWithdrawEvent
	var err error
	if e.Game, err = r.pubkey(); err != nil {
		return nil, err
	}
	if e.ID, err = r.bytes32(); err != nil {
		return nil, err
	}
	if e.WithdrawAuthority, err = r.pubkey(); err != nil {
		return nil, err
	}
	return e, nil
}

func decodeGameBurn(r *reader) (Data, error) {
	var e GameBurnEvent
	var err error
	if e.Game, err = r.pubkey(); err != nil {
		return nil, err
	}
	if e.ID, err = r.bytes32(); err != nil {
		return nil, err
	}
	return e, nil
}

func decodeComment(r *reader) (Data, error) {
	var e CommentEvent
	var err error
	if e.Game, err = r.pubkey(); err != nil {
		return nil, err
	}
	if e.CommentIndex, err = r.u64(); err != nil {
		return nil, err
	}
	if e.User, err = r.pubkey(); err != nil {
		return nil, err
	}
	if e.Timestamp, err = r.u64(); err != nil {
		return nil, err
	}
	if e.Text, err = r.str(); err != nil {
		return nil, err
	}
	return e, nil
}

func decodeWorldCreate(r *reader) (Data, error) {
	var e WorldCreateEvent
	var err error
	if e.IvyCurveMax, err = r.u64(); err != nil {
		return nil, err
	}
	if e.CurveInputScaleNum, err = r.u32(); err != nil {
		return nil, err
	}
	if e.CurveInputScaleDen, err = r.u32(); err != nil {
		return nil, err
	}
	return e, nil
}

func decodeWorldSwap(r *reader) (Data, error) {
	var e WorldSwapEvent
	var err error
	if e.UsdcBalance, err = r.u64(); err != nil {
		return nil, err
	}
	if e.IvySold, err = r.u64(); err != nil {
		return nil, err
	}
	if e.UsdcAmount, err = r.u64(); err != nil {
		return nil, err
	}
	if e.IvyAmount, err = r.u64(); err != nil {
		return nil, err
	}
	if e.IsBuy, err = r.bool(); err != nil {
		return nil, err
	}
	return e, nil
}

func decodeWorldUpdate(r *reader) (Data, error) {
	var e WorldUpdateEvent
	var err error
	if e.IvyInitialLiquidity, err = r.u64(); err != nil {
		return nil, err
	}
	if e.GameInitialLiquidity, err = r.u64(); err != nil {
		return nil, err
	}
	if e.IvyFeeBps, err = r.u8(); err != nil {
		return nil, err
	}
	if e.GameFeeBps, err = r.u8(); err != nil {
		return nil, err
	}
	return e, nil
}

func decodeWorldVesting(r *reader) (Data, error) {
	var e WorldVestingEvent
	var err error
	if e.Discriminator, err = r.u8(); err != nil {
		return nil, err
	}
	if e.IvyAmount, err = r.u64(); err != nil {
		return nil, err
	}
	if e.IvyVested, err = r.u64(); err != nil {
		return nil, err
	}
	return e, nil
}

func decodeSyncCreate(r *reader) (Data, error) {
	var e SyncCreateEvent
	var err error
	if e.Sync, err = r.pubkey(); err != nil {
		return nil, err
	}
	if e.Mint, err = r.pubkey(); err != nil {
		return nil, err
	}
	if e.Name, err = r.str(); err != nil {
		return nil, err
	}
	if e.Symbol, err = r.str(); err != nil {
		return nil, err
	}
	if e.MetadataURL, err = r.str(); err != nil {
		return nil, err
	}
	return e, nil
}

func decodePfTrade(r *reader) (Data, error) {
	var e PfTradeEvent
	var err error
	if e.Mint, err = r.pubkey(); err != nil {
		return nil, err
	}
	if e.User, err = r.pubkey(); err != nil {
		return nil, err
	}
	if e.SolAmount, err = r.u64(); err != nil {
		return nil, err
	}
	if e.TokenAmount, err = r.u64(); err != nil {
		return nil, err
	}
	if e.IsBuy, err = r.bool(); err != nil {
		return nil, err
	}
	if e.VirtualSolReserves, err = r.u64(); err != nil {
		return nil, err
	}
	if e.VirtualTokenReserves, err = r.u64(); err != nil {
		return nil, err
	}
	return e, nil
}

func decodePfMigration(r *reader) (Data, error) {
	var e PfMigrationEvent
	var err error
	if e.Mint, err = r.pubkey(); err != nil {
		return nil, err
	}
	if e.Pool, err = r.pubkey(); err != nil {
		return nil, err
	}
	return e, nil
}

func decodePaBuy(r *reader) (Data, error) {
	var e PaBuyEvent
	var err error
	if e.Pool, err = r.pubkey(); err != nil {
		return nil, err
	}
	if e.User, err = r.pubkey(); err != nil {
		return nil, err
	}
	if e.SolAmount, err = r.u64(); err != nil {
		return nil, err
	}
	if e.TokenAmount, err = r.u64(); err != nil {
		return nil, err
	}
	if e.QuoteReserves, err = r.u64(); err != nil {
		return nil, err
	}
	if e.BaseReserves, err = r.u64(); err != nil {
		return nil, err
	}
	return e, nil
}

func decodePaSell(r *reader) (Data, error) {
	var e PaSellEvent
	var err error
	if e.Pool, err = r.pubkey(); err != nil {
		return nil, err
	}
	if e.User, err = r.pubkey(); err != nil {
		return nil, err
	}
	if e.SolAmount, err = r.u64(); err != nil {
		return nil, err
	}
	if e.TokenAmount, err = r.u64(); err != nil {
		return nil, err
	}
	if e.QuoteReserves, err = r.u64(); err != nil {
		return nil, err
	}
	if e.BaseReserves, err = r.u64(); err != nil {
		return nil, err
	}
	return e, nil
}
