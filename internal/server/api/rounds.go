package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ayusman/handrps/internal/store"
)

// defaultListLimit caps /api/rounds when no limit is given.
const defaultListLimit = 50

// RoundHandler serves the session round history.
type RoundHandler struct {
	store *store.Store
}

// NewRoundHandler creates a new RoundHandler with the given store.
func NewRoundHandler(s *store.Store) *RoundHandler {
	return &RoundHandler{store: s}
}

type listRoundsResponse struct {
	Rounds []*store.Round `json:"rounds"`
	Counts map[string]int `json:"counts"`
}

// ServeHTTP routes /api/rounds and /api/rounds/{id}.
func (h *RoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/rounds")
	id = strings.TrimPrefix(id, "/")
	if id == "" {
		h.list(w, r)
		return
	}
	h.get(w, id)
}

// list handles GET /api/rounds?limit=N, newest first.
func (h *RoundHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	rounds, err := h.store.Rounds().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list rounds")
		return
	}
	counts, err := h.store.Rounds().Count()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count rounds")
		return
	}

	if rounds == nil {
		rounds = []*store.Round{}
	}
	writeJSON(w, http.StatusOK, listRoundsResponse{Rounds: rounds, Counts: counts})
}

// get handles GET /api/rounds/{id}.
func (h *RoundHandler) get(w http.ResponseWriter, id string) {
	round, err := h.store.Rounds().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Round not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get round")
		return
	}
	writeJSON(w, http.StatusOK, round)
}
