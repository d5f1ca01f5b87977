package aggregator

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/R3E-Network/service_layer/internal/aggregator/event"
	"github.com/R3E-Network/service_layer/internal/aggregator/state"
)

// Hydrator drains hydration requests the state's hydrator-tracker
// component buffers (see internal/aggregator/state/hydrator.go), fetches
// each asset's off-chain metadata document, and emits a HydrateEvent back
// into the ingestion pipeline so the Applier persists the enriched
// description/image alongside the rest of the event log.
type Hydrator struct {
	requests <-chan state.HydrationRequest
	metadata *MetadataClient
	out      chan<- decodedEvent
	log      *logrus.Entry
}

// NewHydrator builds a Hydrator worker.
func NewHydrator(requests <-chan state.HydrationRequest, metadata *MetadataClient, out chan<- decodedEvent) *Hydrator {
	return &Hydrator{
		requests: requests,
		metadata: metadata,
		out:      out,
		log:      logrus.WithField("component", "aggregator-hydrator"),
	}
}

// Run drains requests and fetches metadata until ctx is canceled or the
// request channel closes.
func (h *Hydrator) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-h.requests:
			if !ok {
				return
			}
			h.hydrate(ctx, req)
		}
	}
}

func (h *Hydrator) hydrate(ctx context.Context, req state.HydrationRequest) {
	meta, err := h.metadata.Fetch(ctx, req.MetadataURL)
	if err != nil {
		h.log.WithError(err).WithField("asset", req.Asset.String()).Warn("fetch metadata failed")
		return
	}

	evt := decodedEvent{
		signature: event.Signature{},
		timestamp: uint64(time.Now().Unix()),
		data: event.HydrateEvent{
			Asset:       req.Asset,
			MetadataURL: req.MetadataURL,
			Description: meta.Description,
			ImageURL:    meta.Image,
		},
	}
	select {
	case h.out <- evt:
	case <-ctx.Done():
	}
}
