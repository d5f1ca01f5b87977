package aggregator

import (
	"net/http"

	"github.com/R3E-Network/service_layer/internal/aggregator/chart"
	"github.com/R3E-Network/service_layer/internal/aggregator/state"
	"github.com/R3E-Network/service_layer/infrastructure/httputil"
)

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	addr, err := parseAddrParam(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid address")
		return
	}
	sy, ok := s.state.Sync(addr)
	if !ok {
		writeErr(w, http.StatusNotFound, "sync not found")
		return
	}
	writeOK(w, sy)
}

// syncContext mirrors gameContext, substituting the SOL/USD price for
// the world snapshot since syncs are priced against SOL, not IVY.
type syncContext struct {
	Sync     state.Sync        `json:"sync"`
	Candles  []chart.Candle    `json:"candles"`
	Comments state.CommentInfo `json:"comments"`
	SOLPrice float32           `json:"sol_price"`
}

// handleSyncStream answers GET /syncs/{addr}/stream?chart=&chart_count=&comment_count=.
func (s *Server) handleSyncStream(w http.ResponseWriter, r *http.Request) {
	addr, err := parseAddrParam(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid address")
		return
	}
	sy, ok := s.state.Sync(addr)
	if !ok {
		writeErr(w, http.StatusNotFound, "sync not found")
		return
	}

	kind := parseChartKind(httputil.QueryString(r, "chart", "1h"))
	chartCount := httputil.QueryInt(r, "chart_count", 200)
	commentCount := httputil.QueryInt(r, "comment_count", 50)

	candles, _ := s.state.QuerySyncChart(addr, kind, chartCount, 0)
	comments := s.state.Comments(addr, commentCount, 0, true)

	flusher, ok := beginSSE(w)
	if !ok {
		writeErr(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	if err := writeSSEEvent(w, "context", syncContext{
		Sync:     sy,
		Candles:  candles,
		Comments: comments,
		SOLPrice: s.state.SOLPrice(),
	}); err != nil {
		return
	}
	flusher.Flush()

	balanceCh, unsubscribeBalance, ok := s.state.SubscribeSync(addr)
	if !ok {
		return
	}
	defer unsubscribeBalance()

	commentCh, unsubscribeComments := s.state.SubscribeComments(addr)
	defer unsubscribeComments()

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
		case update, ok := <-balanceCh:
			if !ok {
				return
			}
			if err := writeSSEEvent(w, "update", update); err != nil {
				return
			}
			flusher.Flush()
		case comment, ok := <-commentCh:
			if !ok {
				return
			}
			if err := writeSSEEvent(w, "comment", comment); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
