package aggregator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/R3E-Network/service_layer/internal/aggregator/event"
	"github.com/R3E-Network/service_layer/internal/aggregator/state"
)

// sseHeartbeat is how often every SSE stream emits a keep-alive comment,
// matching the "30s keep-alive" contract.
const sseHeartbeat = 30 * time.Second

// Server is the thin HTTP adapter over State: plain JSON query endpoints
// plus SSE/websocket streams. Grounded on the teacher's
// infrastructure/httputil response-envelope helpers and go-chi routing.
type Server struct {
	state *state.State
	addr  string
	http  *http.Server
	log   *logrus.Entry
}

// NewServer builds a Server bound to addr, not yet listening.
func NewServer(st *state.State, addr string) *Server {
	s := &Server{
		state: st,
		addr:  addr,
		log:   logrus.WithField("component", "aggregator-server"),
	}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(corsMiddleware)
	r.Use(stripTrailingSlash)

	r.Get("/assets", s.handleAssetsList)
	r.Get("/assets/stream", s.handleAssetsStream)
	r.Get("/assets/{addr}", s.handleAssetByAddr)

	r.Get("/ivy", s.handleIvyInfo)
	r.Get("/ivy/stream", s.handleIvyStream)

	r.Get("/games/{addr}", s.handleGame)
	r.Get("/games/{addr}/stream", s.handleGameStream)
	r.Get("/games/{addr}/quote", s.handleGameQuote)

	r.Get("/syncs/{addr}", s.handleSync)
	r.Get("/syncs/{addr}/stream", s.handleSyncStream)

	r.Get("/trades/stream", s.handleTradesStream)

	r.Get("/comments/{addr}", s.handleComments)
	r.Get("/pnl/{addr}/{user}", s.handlePnl)
	r.Get("/pnl/{addr}/leaderboard", s.handlePnlLeaderboard)
	r.Get("/volume/{user}", s.handleVolume)
	r.Get("/volume/{addr}/leaderboard", s.handleVolumeLeaderboard)

	r.Get("/deposits/{id}", s.handleDeposit)
	r.Get("/withdrawals/{id}", s.handleWithdraw)
	r.Get("/burns/{id}", s.handleBurn)

	r.Get("/ws/dashboard", s.handleDashboardWS)

	return r
}

// Run starts the HTTP server and blocks until ctx is canceled, at which
// point it shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.addr).Info("http server listening")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// corsMiddleware applies a permissive CORS policy, matching the spec's
// "permissive CORS" requirement — hand-rolled in the teacher's
// middleware-chaining style since the teacher has no CORS middleware of
// its own to adapt.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// stripTrailingSlash normalizes "/assets/" to "/assets" before routing,
// matching the spec's "trailing-slash normalization" requirement.
func stripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(r.URL.Path) > 1 && r.URL.Path[len(r.URL.Path)-1] == '/' {
			r.URL.Path = r.URL.Path[:len(r.URL.Path)-1]
		}
		next.ServeHTTP(w, r)
	})
}

// --- response envelope: {status:"ok",data:...} / {status:"err",msg:...} ---

func writeOK(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{"status": "ok", "data": data})
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{"status": "err", "msg": msg})
}

// beginSSE sets the streaming headers and returns a flusher, or false if
// the response writer doesn't support flushing.
func beginSSE(w http.ResponseWriter) (http.Flusher, bool) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher, ok := w.(http.Flusher)
	if ok {
		w.WriteHeader(http.StatusOK)
		flusher.Flush()
	}
	return flusher, ok
}

// writeSSEEvent writes one named SSE event with a JSON-encoded payload.
func writeSSEEvent(w http.ResponseWriter, name string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte("event: " + name + "\ndata: ")); err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}
	_, err = w.Write([]byte("\n\n"))
	return err
}

func writeSSEHeartbeat(w http.ResponseWriter) error {
	_, err := w.Write([]byte(": heartbeat\n\n"))
	return err
}

func newHeartbeatTicker() *time.Ticker {
	return time.NewTicker(sseHeartbeat)
}

func parsePublic(addr string) (event.Public, error) {
	raw, err := base58.Decode(addr)
	if err != nil {
		return event.Public{}, err
	}
	var p event.Public
	if len(raw) != len(p) {
		return event.Public{}, errors.New("address wrong length")
	}
	copy(p[:], raw)
	return p, nil
}

// parseAddrParam decodes the chi "addr" path parameter.
func parseAddrParam(r *http.Request) (event.Public, error) {
	return parsePublic(chi.URLParam(r, "addr"))
}
