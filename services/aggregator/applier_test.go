package aggregator

import (
	"path/filepath"
	"testing"

	"github.com/R3E-Network/service_layer/internal/aggregator/event"
	"github.com/R3E-Network/service_layer/internal/aggregator/state"
)

// newTestApplier builds an Applier against a fresh, empty event log and
// state in a temp directory, returning the pieces tests need to drive
// and inspect it.
func newTestApplier(t *testing.T) (a *Applier, st *state.State, eventsPath string) {
	t.Helper()
	dir := t.TempDir()
	eventsPath = filepath.Join(dir, "events.jsonl")

	eventLog, err := OpenEventLog(eventsPath)
	if err != nil {
		t.Fatalf("OpenEventLog: %v", err)
	}
	t.Cleanup(func() { eventLog.Close() })

	st = state.New()
	decoded := make(chan decodedEvent, 16)
	a, err = NewApplier(st, eventLog, eventsPath, dir, decoded)
	if err != nil {
		t.Fatalf("NewApplier: %v", err)
	}
	return a, st, eventsPath
}

// TestApplierDefersSolPriceUntilNextRealEvent covers the core rule
// ported from original_source/applier.rs's process_batch: a SolPriceEvent
// is never applied on its own. It is buffered, then synthesized with a
// zero signature and applied/persisted immediately before the next real
// event in the same batch.
func TestApplierDefersSolPriceUntilNextRealEvent(t *testing.T) {
	a, st, eventsPath := newTestApplier(t)
	game := event.Public{1}

	a.processBatch([]decodedEvent{
		{data: event.SolPriceEvent{Price: 150}, timestamp: 10},
		{data: event.GameCreateEvent{Game: game, IvyBalance: 1, GameBalance: 1}, signature: event.Signature{1}, timestamp: 11},
	})

	if got := st.SOLPrice(); got != 150 {
		t.Fatalf("SOLPrice() = %v, want 150", got)
	}
	if _, ok := st.Game(game); !ok {
		t.Fatal("expected the game to exist after the batch")
	}

	logged, err := ReadEventLog(eventsPath)
	if err != nil {
		t.Fatalf("ReadEventLog: %v", err)
	}
	if len(logged) != 2 {
		t.Fatalf("expected 2 persisted events (synthesized price + real event), got %d", len(logged))
	}
	price, ok := logged[0].Data.(event.SolPriceEvent)
	if !ok {
		t.Fatalf("expected the first persisted event to be the synthesized SolPriceEvent, got %#v", logged[0].Data)
	}
	if price.Price != 150 {
		t.Fatalf("synthesized price = %v, want 150", price.Price)
	}
	if !logged[0].Signature.Zero() {
		t.Fatalf("synthesized SolPriceEvent must carry a zero signature, got %v", logged[0].Signature)
	}
	if logged[0].Timestamp != 10 {
		t.Fatalf("synthesized event timestamp = %d, want 10 (the price event's own timestamp)", logged[0].Timestamp)
	}
	if _, ok := logged[1].Data.(event.GameCreateEvent); !ok {
		t.Fatalf("expected the second persisted event to be the real event, got %#v", logged[1].Data)
	}
}

// TestApplierPersistsPendingSolPriceCursorWithNoFollowingEvent covers the
// other half of the rule: if a batch ends with a price still pending
// (nothing applied it yet), the fx cursor is saved anyway so a restart
// doesn't momentarily report a stale zero price, and the next batch's
// first real event still triggers the deferred apply.
func TestApplierPersistsPendingSolPriceCursorWithNoFollowingEvent(t *testing.T) {
	a, st, eventsPath := newTestApplier(t)

	a.processBatch([]decodedEvent{
		{data: event.SolPriceEvent{Price: 200}, timestamp: 20},
	})

	// Not applied yet: the price is withheld until a real event follows.
	if got := st.SOLPrice(); got != 0 {
		t.Fatalf("SOLPrice() = %v, want 0 (price not yet applied)", got)
	}
	logged, err := ReadEventLog(eventsPath)
	if err != nil {
		t.Fatalf("ReadEventLog: %v", err)
	}
	if len(logged) != 0 {
		t.Fatalf("expected nothing persisted yet, got %d events", len(logged))
	}
	if !a.havePending {
		t.Fatal("expected the price to remain pending across the batch boundary")
	}

	game := event.Public{2}
	a.processBatch([]decodedEvent{
		{data: event.GameCreateEvent{Game: game, IvyBalance: 1, GameBalance: 1}, signature: event.Signature{2}, timestamp: 21},
	})

	if got := st.SOLPrice(); got != 200 {
		t.Fatalf("SOLPrice() = %v, want 200 after the deferred price is finally applied", got)
	}
	logged, err = ReadEventLog(eventsPath)
	if err != nil {
		t.Fatalf("ReadEventLog: %v", err)
	}
	if len(logged) != 2 {
		t.Fatalf("expected the synthesized price plus the real event, got %d", len(logged))
	}
}

// TestApplierAdvancesPerSourceCursorOnlyForItsOwnSource confirms the
// Applier only advances the signature cursor matching an event's own
// protocol family, leaving the others untouched.
func TestApplierAdvancesPerSourceCursorOnlyForItsOwnSource(t *testing.T) {
	a, _, _ := newTestApplier(t)

	sig := event.Signature{7}
	a.processBatch([]decodedEvent{
		{data: event.GameCreateEvent{Game: event.Public{1}, IvyBalance: 1, GameBalance: 1}, signature: sig, timestamp: 1},
	})

	got, ok := a.LastSignature(event.SourceIvy)
	if !ok || got != sig {
		t.Fatalf("LastSignature(SourceIvy) = %v, %v; want %v, true", got, ok, sig)
	}
	if _, ok := a.LastSignature(event.SourcePf); ok {
		t.Fatal("expected SourcePf cursor to remain unset")
	}
	if _, ok := a.LastSignature(event.SourcePa); ok {
		t.Fatal("expected SourcePa cursor to remain unset")
	}
}
