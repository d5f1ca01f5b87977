package event

import (
	"encoding/json"
	"fmt"

	"github.com/mr-tron/base58"
)

// envelope is the canonical persisted JSON shape for one event:
// {"name": "<eventName>", "data": {...}, "signature": "<base58>", "timestamp": "<u64-as-string>"}
type envelope struct {
	Name      string          `json:"name"`
	Data      json.RawMessage `json:"data"`
	Signature string          `json:"signature"`
	Timestamp string          `json:"timestamp"`
}

// MarshalJSON implements the canonical tagged-envelope encoding.
func (e Event) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(e.Data)
	if err != nil {
		return nil, fmt.Errorf("event: marshal data: %w", err)
	}
	env := envelope{
		Name:      e.Data.Name(),
		Data:      data,
		Signature: base58.Encode(e.Signature[:]),
		Timestamp: fmt.Sprintf("%d", e.Timestamp),
	}
	return json.Marshal(env)
}

// UnmarshalJSON implements the canonical tagged-envelope decoding,
// dispatching on the "name" field to the right concrete struct. The
// timestamp field tolerates both a JSON string and a JSON number, since
// earlier log files may have been written before the string encoding was
// adopted upstream.
func (e *Event) UnmarshalJSON(b []byte) error {
	var env struct {
		Name      string          `json:"name"`
		Data      json.RawMessage `json:"data"`
		Signature string          `json:"signature"`
		Timestamp json.RawMessage `json:"timestamp"`
	}
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}

	sigBytes, err := base58.Decode(env.Signature)
	if err != nil {
		return fmt.Errorf("event: decode signature: %w", err)
	}
	var sig Signature
	if len(sigBytes) == len(sig) {
		copy(sig[:], sigBytes)
	}

	ts, err := decodeFlexibleUint64(env.Timestamp)
	if err != nil {
		return fmt.Errorf("event: decode timestamp: %w", err)
	}

	data, err := unmarshalData(env.Name, env.Data)
	if err != nil {
		return err
	}

	e.Data = data
	e.Signature = sig
	e.Timestamp = ts
	return nil
}

func decodeFlexibleUint64(raw json.RawMessage) (uint64, error) {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		var v uint64
		_, err := fmt.Sscanf(asString, "%d", &v)
		return v, err
	}
	var asNumber uint64
	if err := json.Unmarshal(raw, &asNumber); err != nil {
		return 0, err
	}
	return asNumber, nil
}

func unmarshalData(name string, raw json.RawMessage) (Data, error) {
	newValue, ok := nameToType[name]
	if !ok {
		return UnknownEvent{}, nil
	}
	return newValue(raw)
}

var nameToType = map[string]func(json.RawMessage) (Data, error){
	"gameCreateEvent":   unmarshalAs[GameCreateEvent],
	"gameEditEvent":     unmarshalAs[GameEditEvent],
	"gameSwapEvent":     unmarshalAs[GameSwapEvent],
	"gameUpgradeEvent":  unmarshalAs[GameUpgradeEvent],
	"gameDepositEvent":  unmarshalAs[GameDepositEvent],
	"gameWithdrawEvent": unmarshalAs[GameWithdrawEvent],
	"gameBurnEvent":     unmarshalAs[GameBurnEvent],
	"commentEvent":      unmarshalAs[CommentEvent],
	"worldCreateEvent":  unmarshalAs[WorldCreateEvent],
	"worldSwapEvent":    unmarshalAs[WorldSwapEvent],
	"worldUpdateEvent":  unmarshalAs[WorldUpdateEvent],
	"worldVestingEvent": unmarshalAs[WorldVestingEvent],
	"syncCreateEvent":   unmarshalAs[SyncCreateEvent],
	"pfTradeEvent":      unmarshalAs[PfTradeEvent],
	"pfMigrationEvent":  unmarshalAs[PfMigrationEvent],
	"paBuyEvent":        unmarshalAs[PaBuyEvent],
	"paSellEvent":       unmarshalAs[PaSellEvent],
	"syncSwapEvent":     unmarshalAs[SyncSwapEvent],
	"solPriceEvent":     unmarshalAs[SolPriceEvent],
	"hydrateEvent":      unmarshalAs[HydrateEvent],
	"initializeEvent":   unmarshalAs[InitializeEvent],
}

func unmarshalAs[T Data](raw json.RawMessage) (Data, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}
