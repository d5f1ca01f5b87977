package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/R3E-Network/service_layer/internal/aggregator/event"
)

// retrieverBatchSize chunks signature batches before issuing batched
// getTransaction calls, matching the original's BATCH_SIZE.
const retrieverBatchSize = 1000

// maxBatchProbeAttempts bounds how many times the Retriever retries a
// batched call that came back looking like a single-object response
// before concluding the node doesn't support batching and falling back
// to sequential calls.
const maxBatchProbeAttempts = 10

// rawTransaction is the subset of getTransaction's JSON-encoded response
// the Retriever needs to walk inner instructions.
type rawTransaction struct {
	Meta struct {
		InnerInstructions []struct {
			Index        int `json:"index"`
			Instructions []struct {
				ProgramIDIndex int    `json:"programIdIndex"`
				Data           string `json:"data"`
			} `json:"instructions"`
		} `json:"innerInstructions"`
		LoadedAddresses struct {
			Writable []string `json:"writable"`
			Readonly []string `json:"readonly"`
		} `json:"loadedAddresses"`
	} `json:"meta"`
	Transaction struct {
		Message struct {
			AccountKeys []string `json:"accountKeys"`
		} `json:"message"`
	} `json:"transaction"`
	BlockTime *int64 `json:"blockTime"`
}

// decodedEvent pairs a signature with the events extracted from its
// transaction, preserving arrival order for the Applier.
type decodedEvent struct {
	signature event.Signature
	timestamp uint64
	data      event.Data
}

// Retriever fetches full transactions for signatures the Scanner finds
// and decodes their inner instructions into events. Grounded on
// original_source/retriever.rs.
type Retriever struct {
	rpc           *RPCClient
	programID     string
	in            <-chan []string
	out           chan<- decodedEvent
	retryInterval time.Duration
	log           *logrus.Entry
}

// NewRetriever builds a Retriever reading signature batches from in and
// writing decoded events to out.
func NewRetriever(rpc *RPCClient, programID string, in <-chan []string, out chan<- decodedEvent, retryInterval time.Duration) *Retriever {
	return &Retriever{
		rpc:           rpc,
		programID:     programID,
		in:            in,
		out:           out,
		retryInterval: retryInterval,
		log:           logrus.WithField("component", "aggregator-retriever"),
	}
}

// Run drains the Scanner's signature batches, opportunistically merging
// everything immediately available into one unified fetch before issuing
// any RPC calls, until ctx is canceled.
func (r *Retriever) Run(ctx context.Context) {
	for {
		var batch []string
		select {
		case <-ctx.Done():
			return
		case b, ok := <-r.in:
			if !ok {
				return
			}
			batch = b
		}

	drain:
		for {
			select {
			case b, ok := <-r.in:
				if !ok {
					break drain
				}
				batch = append(batch, b...)
			default:
				break drain
			}
		}

		r.processBatch(ctx, batch)
	}
}

func (r *Retriever) processBatch(ctx context.Context, signatures []string) {
	for start := 0; start < len(signatures); start += retrieverBatchSize {
		end := start + retrieverBatchSize
		if end > len(signatures) {
			end = len(signatures)
		}
		chunk := signatures[start:end]

		txs, err := r.fetchChunkWithRetry(ctx, chunk)
		if err != nil {
			// Only a canceled context breaks out of the infinite retry.
			return
		}

		for i, tx := range txs {
			if tx == nil {
				continue
			}
			sig, sigErr := decodeSignature(chunk[i])
			if sigErr != nil {
				r.log.WithError(sigErr).Warn("skip signature: invalid base58")
				continue
			}
			events, err := r.extractEvents(tx)
			if err != nil {
				r.log.WithError(err).WithField("signature", chunk[i]).Warn("skip transaction: extract events")
				continue
			}
			ts := uint64(0)
			if tx.BlockTime != nil {
				ts = uint64(*tx.BlockTime)
			}
			for _, data := range events {
				select {
				case r.out <- decodedEvent{signature: sig, timestamp: ts, data: data}:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// fetchChunkWithRetry retries an unbounded number of times on error,
// sleeping retryInterval between attempts, matching the original's
// "never give up, the chain isn't going anywhere" retrieval policy.
func (r *Retriever) fetchChunkWithRetry(ctx context.Context, chunk []string) ([]*rawTransaction, error) {
	for {
		txs, err := r.fetchTransactionChunk(ctx, chunk)
		if err == nil {
			return txs, nil
		}
		r.log.WithError(err).Warn("fetch transaction chunk failed, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.retryInterval):
		}
	}
}

func (r *Retriever) fetchTransactionChunk(ctx context.Context, chunk []string) ([]*rawTransaction, error) {
	reqs := make([]RPCRequest, len(chunk))
	for i, sig := range chunk {
		reqs[i] = RPCRequest{
			JSONRPC: "2.0",
			ID:      i + 1,
			Method:  "getTransaction",
			Params: []interface{}{sig, map[string]interface{}{
				"encoding":                       "json",
				"maxSupportedTransactionVersion": 0,
			}},
		}
	}

	if len(chunk) == 1 {
		return r.fetchSequential(ctx, chunk)
	}

	for attempt := 0; attempt < maxBatchProbeAttempts; attempt++ {
		responses, err := r.rpc.CallBatch(ctx, reqs)
		if err != nil {
			return nil, err
		}
		if len(responses) == len(chunk) {
			return parseRawTransactions(responses)
		}
		// The node ignored batching and answered as if for a single
		// request; retry the batch, and after maxBatchProbeAttempts such
		// answers fall back to one call per signature.
		if len(responses) == 1 {
			continue
		}
		return nil, fmt.Errorf("unexpected batch response length %d for %d requests", len(responses), len(chunk))
	}
	return r.fetchSequential(ctx, chunk)
}

func (r *Retriever) fetchSequential(ctx context.Context, chunk []string) ([]*rawTransaction, error) {
	out := make([]*rawTransaction, len(chunk))
	for i, sig := range chunk {
		raw, err := r.rpc.Call(ctx, "getTransaction", []interface{}{sig, map[string]interface{}{
			"encoding":                       "json",
			"maxSupportedTransactionVersion": 0,
		}})
		if err != nil {
			return nil, err
		}
		tx, err := parseRawTransaction(raw)
		if err != nil {
			return nil, err
		}
		out[i] = tx
	}
	return out, nil
}

func parseRawTransactions(responses []RPCResponse) ([]*rawTransaction, error) {
	out := make([]*rawTransaction, len(responses))
	for i, resp := range responses {
		if resp.Error != nil {
			continue
		}
		tx, err := parseRawTransaction(resp.Result)
		if err != nil {
			return nil, err
		}
		out[i] = tx
	}
	return out, nil
}

func parseRawTransaction(raw json.RawMessage) (*rawTransaction, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var tx rawTransaction
	if err := json.Unmarshal(raw, &tx); err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}
	return &tx, nil
}

// extractEvents builds the transaction's full account-key list
// (static keys, then writable and readonly loaded addresses, in that
// order), finds the program's index in it, and decodes every inner
// instruction addressed to the program whose data begins with the
// event instruction tag.
func (r *Retriever) extractEvents(tx *rawTransaction) ([]event.Data, error) {
	accountKeys := append(append([]string{}, tx.Transaction.Message.AccountKeys...),
		append(tx.Meta.LoadedAddresses.Writable, tx.Meta.LoadedAddresses.Readonly...)...)

	programIndex := -1
	for i, key := range accountKeys {
		if key == r.programID {
			programIndex = i
			break
		}
	}
	if programIndex == -1 {
		return nil, nil
	}

	var events []event.Data
	for _, inner := range tx.Meta.InnerInstructions {
		for _, ix := range inner.Instructions {
			if ix.ProgramIDIndex != programIndex {
				continue
			}
			data, err := base58.Decode(ix.Data)
			if err != nil {
				continue
			}
			if len(data) < 8 || !hasIxTag(data) {
				continue
			}
			decoded, err := event.DecodeInstruction(data)
			if err != nil {
				r.log.WithError(err).Debug("skip instruction: decode failed")
				continue
			}
			events = append(events, decoded)
		}
	}
	return events, nil
}

func hasIxTag(data []byte) bool {
	for i, b := range event.IxTag {
		if data[i] != b {
			return false
		}
	}
	return true
}

func decodeSignature(s string) (event.Signature, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return event.Signature{}, err
	}
	if len(raw) != 64 {
		return event.Signature{}, fmt.Errorf("signature %q decodes to %d bytes, want 64", s, len(raw))
	}
	var sig event.Signature
	copy(sig[:], raw)
	return sig, nil
}
