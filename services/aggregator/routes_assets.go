package aggregator

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/R3E-Network/service_layer/infrastructure/httputil"
)

// handleAssetsList answers GET /assets?sort=new|top|hot&q=&count=&skip=.
// hot forbids q, matching spec.md's "hot forbids q" rule.
func (s *Server) handleAssetsList(w http.ResponseWriter, r *http.Request) {
	sort := httputil.QueryString(r, "sort", "new")
	q := httputil.QueryString(r, "q", "")
	count := httputil.QueryInt(r, "count", 20)
	skip := httputil.QueryInt(r, "skip", 0)

	switch sort {
	case "top":
		writeOK(w, s.state.TopAssets(count, skip))
	case "hot":
		if q != "" {
			writeErr(w, http.StatusBadRequest, "hot sort does not accept q")
			return
		}
		writeOK(w, s.state.HotAssets(count, skip))
	case "new":
		if q != "" {
			writeOK(w, s.state.SearchAssets(q, count, skip))
			return
		}
		writeOK(w, s.state.RecentAssets(count, skip))
	default:
		writeErr(w, http.StatusBadRequest, "unknown sort: "+sort)
	}
}

// handleAssetByAddr answers GET /assets/{addr}, discriminating between a
// Game and a Sync record by trying Game first.
func (s *Server) handleAssetByAddr(w http.ResponseWriter, r *http.Request) {
	addr, err := parsePublic(chi.URLParam(r, "addr"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid address")
		return
	}
	if g, ok := s.state.Game(addr); ok {
		writeOK(w, map[string]interface{}{"kind": "game", "game": g})
		return
	}
	if sy, ok := s.state.Sync(addr); ok {
		writeOK(w, map[string]interface{}{"kind": "sync", "sync": sy})
		return
	}
	writeErr(w, http.StatusNotFound, "asset not found")
}

// handleAssetsStream answers GET /assets/stream: a broadcast ring of
// new-asset notices.
func (s *Server) handleAssetsStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := beginSSE(w)
	if !ok {
		writeErr(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	ch, unsubscribe := s.state.SubscribeNewAssets()
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
		case asset, ok := <-ch:
			if !ok {
				return
			}
			if err := writeSSEEvent(w, "asset", asset); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
