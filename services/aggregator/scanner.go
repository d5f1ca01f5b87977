package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// scannerBatchSize mirrors the original's BATCH_SIZE constant for
// getSignaturesForAddress pagination.
const scannerBatchSize = 1000

// signatureInfo is one entry of a getSignaturesForAddress response.
type signatureInfo struct {
	Signature string `json:"signature"`
	Err       json.RawMessage `json:"err"`
	BlockTime *int64 `json:"blockTime"`
}

// scannerCursorState is the durable position the Scanner resumes from.
type scannerCursorState struct {
	LastSignature string `json:"last_signature"`
}

// Scanner polls getSignaturesForAddress for new transaction signatures
// touching the program and forwards them to the Retriever. Grounded on
// original_source/scanner.rs.
type Scanner struct {
	rpc       *RPCClient
	programID string
	out       chan<- []string
	cursor    *Cursor[scannerCursorState]
	interval  time.Duration
	log       *logrus.Entry

	lastSignature  string
	requiresHistory bool
}

// NewScanner builds a Scanner. If no cursor file exists yet, the Scanner
// starts from the program's full history (requiresHistory=true); on
// resume it starts just after the last persisted signature.
func NewScanner(rpc *RPCClient, programID, dataDir string, out chan<- []string, interval time.Duration) *Scanner {
	s := &Scanner{
		rpc:       rpc,
		programID: programID,
		out:       out,
		cursor:    NewCursor[scannerCursorState](filepath.Join(dataDir, "cursors", "scanner.json")),
		interval:  interval,
		log:       logrus.WithField("component", "aggregator-scanner"),
	}

	if state, ok, err := s.cursor.Load(); err == nil && ok {
		s.lastSignature = state.LastSignature
	} else {
		s.requiresHistory = true
	}
	return s
}

// Run polls on a fixed interval until ctx is canceled, logging
// consecutive-failure streaks at the 20th failure and every 100th
// thereafter so a stuck RPC endpoint is noisy without flooding logs.
func (s *Scanner) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	var consecutiveFailures int
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.pollOnce(ctx); err != nil {
				consecutiveFailures++
				if consecutiveFailures == 20 || consecutiveFailures%100 == 0 {
					s.log.WithError(err).WithField("consecutive_failures", consecutiveFailures).Warn("scanner poll failing")
				}
				continue
			}
			consecutiveFailures = 0
		}
	}
}

func (s *Scanner) pollOnce(ctx context.Context) error {
	infos, err := s.getSignatureInfos(ctx)
	if err != nil {
		return fmt.Errorf("get signature infos: %w", err)
	}
	if len(infos) == 0 {
		return nil
	}

	signatures := make([]string, len(infos))
	for i, info := range infos {
		signatures[i] = info.Signature
	}

	select {
	case s.out <- signatures:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.lastSignature = infos[len(infos)-1].Signature
	return s.cursor.Save(scannerCursorState{LastSignature: s.lastSignature})
}

// getSignatureInfos pages through getSignaturesForAddress with
// until/before cursors, filtering to valid (non-error, has-blockTime)
// signatures, and reverses the newest-first RPC order into chronological
// order before returning.
func (s *Scanner) getSignatureInfos(ctx context.Context) ([]signatureInfo, error) {
	var collected []signatureInfo
	before := ""

	for {
		params := map[string]interface{}{"limit": scannerBatchSize}
		if before != "" {
			params["before"] = before
		}
		if !s.requiresHistory && s.lastSignature != "" {
			params["until"] = s.lastSignature
		}

		raw, err := s.rpc.Call(ctx, "getSignaturesForAddress", []interface{}{s.programID, params})
		if err != nil {
			return nil, err
		}

		var page []signatureInfo
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, fmt.Errorf("decode signature page: %w", err)
		}
		if len(page) == 0 {
			break
		}

		for _, info := range page {
			if len(info.Err) > 0 && string(info.Err) != "null" {
				continue
			}
			if info.BlockTime == nil {
				continue
			}
			collected = append(collected, info)
		}

		before = page[len(page)-1].Signature
		if len(page) < scannerBatchSize {
			break
		}
	}

	s.requiresHistory = false

	// collected is newest-first; reverse to chronological order.
	for i, j := 0, len(collected)-1; i < j; i, j = i+1, j-1 {
		collected[i], collected[j] = collected[j], collected[i]
	}
	return collected, nil
}
