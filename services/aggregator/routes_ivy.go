package aggregator

import (
	"net/http"

	"github.com/R3E-Network/service_layer/internal/aggregator/chart"
	"github.com/R3E-Network/service_layer/infrastructure/httputil"
)

func (s *Server) handleIvyInfo(w http.ResponseWriter, r *http.Request) {
	writeOK(w, s.state.IvyInfo())
}

// handleIvyStream answers GET /ivy/stream: a context snapshot followed by
// world balance updates.
func (s *Server) handleIvyStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := beginSSE(w)
	if !ok {
		writeErr(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	count := httputil.QueryInt(r, "chart_count", 200)
	candles := s.state.QueryIvyChart(chart.Kind1h, count, 0)

	if err := writeSSEEvent(w, "context", map[string]interface{}{
		"info":    s.state.IvyInfo(),
		"candles": candles,
	}); err != nil {
		return
	}
	flusher.Flush()

	ch, unsubscribe := s.state.SubscribeIvy()
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
		case update, ok := <-ch:
			if !ok {
				return
			}
			if err := writeSSEEvent(w, "update", update); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// handleGameQuote answers GET /games/{addr}/quote?amount_in=&is_buy=.
func (s *Server) handleGameQuote(w http.ResponseWriter, r *http.Request) {
	addr, err := parseAddrParam(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid address")
		return
	}
	amountIn := httputil.QueryInt64(r, "amount_in", 0)
	if amountIn <= 0 {
		writeErr(w, http.StatusBadRequest, "amount_in must be positive")
		return
	}
	isBuy := httputil.QueryBool(r, "is_buy", true)

	q, found := s.state.GameQuote(addr, uint64(amountIn), isBuy)
	if !found {
		writeErr(w, http.StatusNotFound, "game not found")
		return
	}
	writeOK(w, q)
}
