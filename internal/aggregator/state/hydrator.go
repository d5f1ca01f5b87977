package state

import "github.com/R3E-Network/service_layer/internal/aggregator/event"

// HydrationRequest asks the Hydrator worker to fetch and parse an asset's
// off-chain metadata JSON.
type HydrationRequest struct {
	Asset       event.Public
	MetadataURL string
}

const hydrationQueueSize = 4096

// HydratorComponent is the hydrator-tracker side-channel: it buffers
// metadata-fetch requests observed during startup replay until the
// InitializeEvent marks the log caught up, then forwards every pending
// request (and all subsequent ones) straight to the worker. Grounded on
// original_source/state/components/hydrate.rs. It claims only
// HydrateEvent, so the Applier persists those and a replay can cancel
// their pending requests.
type HydratorComponent struct {
	initialized bool
	pending     map[event.Public]string
	out         chan HydrationRequest
	dropped     uint64
}

// NewHydratorComponent builds a hydrator-tracker whose output channel the
// caller should drain from a dedicated goroutine (the Hydrator worker).
func NewHydratorComponent() *HydratorComponent {
	return &HydratorComponent{
		pending: make(map[event.Public]string),
		out:     make(chan HydrationRequest, hydrationQueueSize),
	}
}

// Requests returns the channel the Hydrator worker reads from.
func (h *HydratorComponent) Requests() <-chan HydrationRequest { return h.out }

// Dropped reports how many requests were discarded because the output
// channel was full (a side-channel backpressure signal, not a correctness
// concern: a dropped hydration is simply retried on the asset's next
// metadata edit).
func (h *HydratorComponent) Dropped() uint64 { return h.dropped }

// OnEvent observes GameEditEvent/SyncCreateEvent metadata URLs,
// HydrateEvent replay markers, and the InitializeEvent startup boundary.
// Returns true only for HydrateEvent, which no other component owns.
func (h *HydratorComponent) OnEvent(evt event.Event) bool {
	switch data := evt.Data.(type) {
	case event.GameEditEvent:
		h.observe(data.Game, data.MetadataURL)
	case event.SyncCreateEvent:
		h.observe(data.Sync, data.MetadataURL)
	case event.HydrateEvent:
		if !h.initialized {
			if url, ok := h.pending[data.Asset]; ok && url == data.MetadataURL {
				delete(h.pending, data.Asset)
			}
		}
		return true
	case event.InitializeEvent:
		h.initialized = true
		for asset, url := range h.pending {
			h.send(asset, url)
		}
		h.pending = make(map[event.Public]string)
	}
	return false
}

func (h *HydratorComponent) observe(asset event.Public, metadataURL string) {
	if metadataURL == "" {
		return
	}
	if !h.initialized {
		h.pending[asset] = metadataURL
		return
	}
	h.send(asset, metadataURL)
}

func (h *HydratorComponent) send(asset event.Public, metadataURL string) {
	select {
	case h.out <- HydrationRequest{Asset: asset, MetadataURL: metadataURL}:
	default:
		h.dropped++
	}
}
