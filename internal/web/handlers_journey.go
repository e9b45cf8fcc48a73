package web

import (
	"net/http"

	"xianxia/internal/mapgen"
)

// handleJourney exports the chapters visited so far as a PDF scroll.
func (s *Server) handleJourney(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mu.Lock()
	st := s.Play.Story()
	state := s.Play.State()
	s.mu.Unlock()

	pdf, err := mapgen.Generate(st, state.Visited, state.NodeID, st.Title)
	if err != nil {
		s.Logger.Error().Err(err).Msg("journey export failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="journey.pdf"`)
	_, _ = w.Write(pdf)
}
