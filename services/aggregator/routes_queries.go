package aggregator

import (
	"encoding/hex"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/R3E-Network/service_layer/infrastructure/httputil"
)

func (s *Server) handleComments(w http.ResponseWriter, r *http.Request) {
	addr, err := parseAddrParam(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid address")
		return
	}
	count := httputil.QueryInt(r, "count", 50)
	skip := httputil.QueryInt(r, "skip", 0)
	reverse := httputil.QueryBool(r, "reverse", true)
	writeOK(w, s.state.Comments(addr, count, skip, reverse))
}

func (s *Server) handlePnl(w http.ResponseWriter, r *http.Request) {
	addr, err := parseAddrParam(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid address")
		return
	}
	user, err := parsePublic(chi.URLParam(r, "user"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid user address")
		return
	}
	writeOK(w, s.state.Pnl(addr, user))
}

func (s *Server) handlePnlLeaderboard(w http.ResponseWriter, r *http.Request) {
	addr, err := parseAddrParam(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid address")
		return
	}
	count := httputil.QueryInt(r, "count", 20)
	skip := httputil.QueryInt(r, "skip", 0)
	realized := httputil.QueryBool(r, "realized", false)
	writeOK(w, s.state.PnlLeaderboard(addr, count, skip, realized))
}

func (s *Server) handleVolume(w http.ResponseWriter, r *http.Request) {
	user, err := parsePublic(chi.URLParam(r, "user"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid user address")
		return
	}
	writeOK(w, s.state.Volume(user))
}

func (s *Server) handleVolumeLeaderboard(w http.ResponseWriter, r *http.Request) {
	addr, err := parseAddrParam(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid address")
		return
	}
	count := httputil.QueryInt(r, "count", 20)
	skip := httputil.QueryInt(r, "skip", 0)
	writeOK(w, s.state.VolumeLeaderboard(addr, count, skip))
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	id, err := parseID32(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid id")
		return
	}
	info, ok := s.state.Deposit(id)
	if !ok {
		writeErr(w, http.StatusNotFound, "deposit not found")
		return
	}
	writeOK(w, info)
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	id, err := parseID32(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid id")
		return
	}
	info, ok := s.state.Withdraw(id)
	if !ok {
		writeErr(w, http.StatusNotFound, "withdrawal not found")
		return
	}
	writeOK(w, info)
}

func (s *Server) handleBurn(w http.ResponseWriter, r *http.Request) {
	id, err := parseID32(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid id")
		return
	}
	info, ok := s.state.Burn(id)
	if !ok {
		writeErr(w, http.StatusNotFound, "burn not found")
		return
	}
	writeOK(w, info)
}

// parseID32 decodes a hex-encoded 32-byte receipt id.
func parseID32(s string) ([32]byte, error) {
	var id [32]byte
	raw, err := hex.DecodeString(s)
	if err != nil {
		return id, err
	}
	if len(raw) != len(id) {
		return id, errors.New("id wrong length, want 32 bytes")
	}
	copy(id[:], raw)
	return id, nil
}
