package state

import (
	"testing"

	"github.com/R3E-Network/service_layer/internal/aggregator/event"
)

func TestHydratorComponentBuffersUntilInitialize(t *testing.T) {
	h := NewHydratorComponent()
	asset := event.Public{1}

	if h.OnEvent(event.Event{Data: event.GameEditEvent{Game: asset, MetadataURL: "https://example/meta.json"}}) {
		t.Fatal("HydratorComponent does not own a GameEditEvent for persistence purposes")
	}

	select {
	case <-h.Requests():
		t.Fatal("expected no request forwarded before InitializeEvent")
	default:
	}

	h.OnEvent(event.Event{Data: event.InitializeEvent{}})

	select {
	case req := <-h.Requests():
		if req.Asset != asset || req.MetadataURL != "https://example/meta.json" {
			t.Fatalf("unexpected request: %+v", req)
		}
	default:
		t.Fatal("expected the buffered request to be forwarded after InitializeEvent")
	}
}

func TestHydratorComponentForwardsImmediatelyAfterInitialize(t *testing.T) {
	h := NewHydratorComponent()
	h.OnEvent(event.Event{Data: event.InitializeEvent{}})

	asset := event.Public{2}
	h.OnEvent(event.Event{Data: event.SyncCreateEvent{Sync: asset, MetadataURL: "https://example/sync.json"}})

	select {
	case req := <-h.Requests():
		if req.Asset != asset {
			t.Fatalf("unexpected asset: %+v", req)
		}
	default:
		t.Fatal("expected an immediate request once initialized")
	}
}

func TestHydratorComponentReplayedHydrateEventCancelsPending(t *testing.T) {
	h := NewHydratorComponent()
	asset := event.Public{3}
	url := "https://example/cancel.json"

	h.OnEvent(event.Event{Data: event.GameEditEvent{Game: asset, MetadataURL: url}})
	h.OnEvent(event.Event{Data: event.HydrateEvent{Asset: asset, MetadataURL: url}})
	h.OnEvent(event.Event{Data: event.InitializeEvent{}})

	select {
	case req := <-h.Requests():
		t.Fatalf("expected the already-hydrated request to be dropped, got %+v", req)
	default:
	}
}

func TestHydratorComponentIgnoresEmptyMetadataURL(t *testing.T) {
	h := NewHydratorComponent()
	h.OnEvent(event.Event{Data: event.GameEditEvent{Game: event.Public{4}, MetadataURL: ""}})
	h.OnEvent(event.Event{Data: event.InitializeEvent{}})

	select {
	case req := <-h.Requests():
		t.Fatalf("expected no request for an empty metadata URL, got %+v", req)
	default:
	}
}
