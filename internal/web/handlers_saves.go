package web

import (
	"net/http"
)

type saveResponse struct {
	Slot string `json:"slot"`
}

type slotsResponse struct {
	Slots []string `json:"slots"`
}

// GET /saves
func (s *Server) handleSlots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ids, err := s.Saves.List(r.Context())
	if err != nil {
		s.Logger.Error().Err(err).Msg("list saves failed")
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, slotsResponse{Slots: ids})
}

// POST /save [slot=<id>]; a new slot id is issued when none is given.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	slot := r.FormValue("slot")
	if slot == "" {
		slot = s.Saves.NewID()
	}

	s.mu.Lock()
	data := s.Play.Snapshot()
	s.mu.Unlock()

	if err := s.Saves.Put(r.Context(), slot, data); err != nil {
		s.Logger.Error().Err(err).Str("slot", slot).Msg("save failed")
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, saveResponse{Slot: slot})
}

// POST /load slot=<id>
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	slot := r.FormValue("slot")
	if slot == "" {
		http.Error(w, "slot required", http.StatusBadRequest)
		return
	}
	data, ok, err := s.Saves.Get(r.Context(), slot)
	if err != nil {
		s.Logger.Error().Err(err).Str("slot", slot).Msg("load failed")
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.Play.Restore(data); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Play.View())
}
