package aggregator

import (
	"net/http"

	"github.com/R3E-Network/service_layer/internal/aggregator/chart"
	"github.com/R3E-Network/service_layer/internal/aggregator/state"
	"github.com/R3E-Network/service_layer/infrastructure/httputil"
)

func (s *Server) handleGame(w http.ResponseWriter, r *http.Request) {
	addr, err := parseAddrParam(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid address")
		return
	}
	g, ok := s.state.Game(addr)
	if !ok {
		writeErr(w, http.StatusNotFound, "game not found")
		return
	}
	writeOK(w, g)
}

// gameContext is the initial snapshot a /games/{addr}/stream subscriber
// receives before live updates, matching spec.md's "context event
// contains candles, comments, balances, world snapshot, curve params,
// market cap, 24h change, fee bps" requirement.
type gameContext struct {
	Game     state.Game        `json:"game"`
	Candles  []chart.Candle    `json:"candles"`
	Comments state.CommentInfo `json:"comments"`
	World    state.IvyInfo     `json:"world"`
}

// handleGameStream answers GET /games/{addr}/stream?chart=&chart_count=&comment_count=.
func (s *Server) handleGameStream(w http.ResponseWriter, r *http.Request) {
	addr, err := parseAddrParam(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid address")
		return
	}
	g, ok := s.state.Game(addr)
	if !ok {
		writeErr(w, http.StatusNotFound, "game not found")
		return
	}

	kind := parseChartKind(httputil.QueryString(r, "chart", "1h"))
	chartCount := httputil.QueryInt(r, "chart_count", 200)
	commentCount := httputil.QueryInt(r, "comment_count", 50)

	candles, _ := s.state.QueryGameChart(addr, kind, chartCount, 0)
	comments := s.state.Comments(addr, commentCount, 0, true)

	flusher, ok := beginSSE(w)
	if !ok {
		writeErr(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	if err := writeSSEEvent(w, "context", gameContext{
		Game:     g,
		Candles:  candles,
		Comments: comments,
		World:    s.state.IvyInfo(),
	}); err != nil {
		return
	}
	flusher.Flush()

	balanceCh, unsubscribeBalance, ok := s.state.SubscribeGame(addr)
	if !ok {
		return
	}
	defer unsubscribeBalance()

	commentCh, unsubscribeComments := s.state.SubscribeComments(addr)
	defer unsubscribeComments()

	worldCh, unsubscribeWorld := s.state.SubscribeIvy()
	defer unsubscribeWorld()

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
		case world, ok := <-worldCh:
			if !ok {
				return
			}
			if err := writeSSEEvent(w, "world", world); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func parseChartKind(s string) chart.Kind {
	switch s {
	case "1m":
		return chart.Kind1m
	case "5m":
		return chart.Kind5m
	case "15m":
		return chart.Kind15m
	case "1d":
		return chart.Kind1d
	case "1w":
		return chart.Kind1w
	default:
		return chart.Kind1h
	}
}
