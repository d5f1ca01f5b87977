package aggregator

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/R3E-Network/service_layer/internal/aggregator/state"
)

// handleTradesStream answers GET /trades/stream: latest-value semantics,
// one current trade at a time, per spec.md.
func (s *Server) handleTradesStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := beginSSE(w)
	if !ok {
		writeErr(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	ch, unsubscribe := s.state.SubscribeTrades()
	defer unsubscribe()

	ticker := newHeartbeatTicker()
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if err := writeSSEHeartbeat(w); err != nil {
				return
			}
			flusher.Flush()
		case trade, ok := <-ch:
			if !ok {
				return
			}
			if err := writeSSEEvent(w, "trade", trade); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

var dashboardUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// dashboardMessage is the envelope pushed over /ws/dashboard, merging
// the trades and new-assets feeds into one connection for the admin
// dashboard, additional to (not a replacement for) the spec's SSE
// streams.
type dashboardMessage struct {
	Kind  string       `json:"kind"`
	Trade *state.Trade `json:"trade,omitempty"`
	Asset *state.Asset `json:"asset,omitempty"`
}

// handleDashboardWS answers GET /ws/dashboard, broadcasting a merged
// feed of new trades and new assets over a websocket connection.
func (s *Server) handleDashboardWS(w http.ResponseWriter, r *http.Request) {
	conn, err := dashboardUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("dashboard websocket upgrade failed")
		return
	}
	defer conn.Close()

	tradeCh, unsubTrades := s.state.SubscribeTrades()
	defer unsubTrades()
	assetCh, unsubAssets := s.state.SubscribeNewAssets()
	defer unsubAssets()

	ctx := r.Context()
	ticker := time.NewTicker(sseHeartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case trade, ok := <-tradeCh:
			if !ok {
				return
			}
			if err := conn.WriteJSON(dashboardMessage{Kind: "trade", Trade: &trade}); err != nil {
				return
			}
		case asset, ok := <-assetCh:
			if !ok {
				return
			}
			if err := conn.WriteJSON(dashboardMessage{Kind: "asset", Asset: &asset}); err != nil {
				return
			}
		}
	}
}
