package event

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func appendU64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendStr(buf []byte, s string) []byte {
	var length [4]byte
	binary.LittleEndian.PutUint32(length[:], uint32(len(s)))
	buf = append(buf, length[:]...)
	return append(buf, s...)
}

func TestDecodeInstructionWorldSwap(t *testing.T) {
	buf := append([]byte{}, IxTag[:]...)
	buf = appendU64(buf, TagWorldSwap)
	buf = appendU64(buf, 100)
	buf = appendU64(buf, 200)
	buf = appendU64(buf, 10)
	buf = appendU64(buf, 5)
	buf = append(buf, 1) // is_buy

	data, err := DecodeInstruction(buf)
	require.NoError(t, err)
	swap, ok := data.(WorldSwapEvent)
	require.True(t, ok)
	require.Equal(t, uint64(100), swap.UsdcBalance)
	require.Equal(t, uint64(200), swap.IvySold)
	require.True(t, swap.IsBuy)
}

func TestDecodeInstructionUnknownTag(t *testing.T) {
	buf := append([]byte{}, IxTag[:]...)
	buf = appendU64(buf, 0xdeadbeef)
	buf = append(buf, 1, 2, 3)

	data, err := DecodeInstruction(buf)
	require.NoError(t, err)
	unk, ok := data.(UnknownEvent)
	require.True(t, ok)
	require.Equal(t, uint64(0xdeadbeef), unk.Tag)
}

func TestDecodeInstructionTruncated(t *testing.T) {
	buf := append([]byte{}, IxTag[:]...)
	buf = appendU64(buf, TagGameCreate)
	buf = append(buf, 1, 2, 3) // far too short for a GameCreateEvent

	_, err := DecodeInstruction(buf)
	require.Error(t, err)
}

func TestDecodeInstructionMissingTag(t *testing.T) {
	_, err := DecodeInstruction([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestEventJSONRoundTrip(t *testing.T) {
	original := Event{
		Data: GameSwapEvent{
			Game:        Public{1, 2, 3},
			User:        Public{4, 5, 6},
			IvyBalance:  1_000_000_000,
			GameBalance: 500_000_000,
			IvyAmount:   10,
			GameAmount:  20,
			IsBuy:       true,
		},
		Signature: Signature{9, 9, 9},
		Timestamp: 1_700_000_000,
	}

	encoded, err := original.MarshalJSON()
	require.NoError(t, err)

	var decoded Event
	require.NoError(t, decoded.UnmarshalJSON(encoded))
	require.Equal(t, original.Signature, decoded.Signature)
	require.Equal(t, original.Timestamp, decoded.Timestamp)
	require.Equal(t, original.Data, decoded.Data)
}

func TestEventJSONTimestampAsNumber(t *testing.T) {
	zeroSig := Signature{}
	raw := []byte(`{"name":"solPriceEvent","data":{"Price":12.5},"signature":"` + zeroSig.String() + `","timestamp":1700000000}`)
	var decoded Event
	require.NoError(t, decoded.UnmarshalJSON(raw))
	require.Equal(t, uint64(1700000000), decoded.Timestamp)
	price, ok := decoded.Data.(SolPriceEvent)
	require.True(t, ok)
	require.InDelta(t, 12.5, price.Price, 1e-9)
}
