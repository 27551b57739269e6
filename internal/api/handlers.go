package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"tank-arena/internal/lobby"
	"tank-arena/internal/protocol"
	"tank-arena/internal/render"
)

// controlHandlers holds the handler methods of the control plane.
type controlHandlers struct {
	dir *lobby.Directory
}

func (h *controlHandlers) handleListLobbies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, protocol.LobbyListOut{Lobbies: h.dir.List()})
}

func (h *controlHandlers) handleCreateLobby(w http.ResponseWriter, r *http.Request) {
	// The request body is deliberately ignored; lobbies have no creation
	// parameters.
	l := h.dir.Create()
	writeJSON(w, protocol.LobbyCreateOut{ID: l.ID})
}

func (h *controlHandlers) handlePatchLobby(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "lobbyID"))
	if err != nil {
		http.Error(w, "lobby not found", http.StatusNotFound)
		return
	}

	var body protocol.LobbyPatchIn
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || !body.Status.Valid() {
		http.Error(w, "invalid status", http.StatusUnprocessableEntity)
		return
	}

	switch err := h.dir.SetStatus(id, body.Status); {
	case errors.Is(err, lobby.ErrLobbyNotFound):
		http.Error(w, "lobby not found", http.StatusNotFound)
	case errors.Is(err, lobby.ErrInvalidTransition):
		http.Error(w, "lobby status can no longer be changed", http.StatusUnprocessableEntity)
	case err != nil:
		http.Error(w, "internal error", http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusOK)
	}
}

func (h *controlHandlers) handleLobbyFrame(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "lobbyID"))
	if err != nil {
		http.Error(w, "lobby not found", http.StatusNotFound)
		return
	}
	l, ok := h.dir.Get(id)
	if !ok {
		http.Error(w, "lobby not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if err := render.EncodePNG(w, l.Snapshot()); err != nil {
		log.Printf("🖼️ Frame render for lobby %s failed: %v", id, err)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
