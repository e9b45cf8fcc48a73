// Package web serves the playthrough as a JSON API, plus the remote sync
// socket and the asset and export endpoints around it.
package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"xianxia/internal/combat"
	"xianxia/internal/play"
	"xianxia/internal/session"
)

// Server wraps the single active playthrough. Every request that touches it
// holds mu, so transports never interleave steps.
type Server struct {
	Play      *play.Playthrough
	Saves     session.Store[play.SaveData]
	AssetsDir string
	Metrics   http.Handler
	Logger    zerolog.Logger

	mu sync.Mutex
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)

	mux.HandleFunc("/state", s.handleState)
	mux.HandleFunc("/choose", s.handleChoose)
	mux.HandleFunc("/reset", s.handleReset)
	mux.HandleFunc("/combat/attack", s.handleCombat(actionAttack))
	mux.HandleFunc("/combat/defend", s.handleCombat(actionDefend))
	mux.HandleFunc("/combat/skill", s.handleCombat(actionSkill))

	mux.HandleFunc("/saves", s.handleSlots)
	mux.HandleFunc("/save", s.handleSave)
	mux.HandleFunc("/load", s.handleLoad)
	mux.HandleFunc("/journey.pdf", s.handleJourney)
	mux.HandleFunc("/ws", s.handleWS)

	mux.HandleFunc("/audio/", s.handleAudio)
	mux.HandleFunc("/scenery/", s.handleScenery)
	if s.Metrics != nil {
		mux.Handle("/metrics", s.Metrics)
	}
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/state", http.StatusFound)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mu.Lock()
	v := s.Play.View()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, v)
}

// POST /choose option=<index>
func (s *Server) handleChoose(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	idx, err := strconv.Atoi(r.FormValue("option"))
	if err != nil {
		http.Error(w, "option must be an index", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.Play.Choose(idx); err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Play.View())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.Play.Reset(); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Play.View())
}

type combatAction int

const (
	actionAttack combatAction = iota
	actionDefend
	actionSkill
)

// handleCombat runs the player's action and, since HTTP has no pacing of its
// own, the enemy's reply in the same request.
func (s *Server) handleCombat(action combatAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		var err error
		switch action {
		case actionAttack:
			err = s.Play.Attack()
		case actionDefend:
			err = s.Play.Defend()
		case actionSkill:
			err = s.Play.UseSkill(r.FormValue("skill"))
		}
		switch {
		case err == nil:
		case isRejection(err):
			// Shown in the battle log; the turn was not spent.
			writeJSON(w, http.StatusOK, s.Play.View())
			return
		case errors.Is(err, play.ErrNotInCombat):
			writeError(w, http.StatusConflict, err)
			return
		default:
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if s.Play.AwaitingEnemy() {
			if err := s.Play.EnemyTurn(); err != nil {
				writeError(w, http.StatusInternalServerError, err)
				return
			}
		}
		writeJSON(w, http.StatusOK, s.Play.View())
	}
}

func isRejection(err error) bool {
	return errors.Is(err, combat.ErrInsufficientResource) ||
		errors.Is(err, combat.ErrSkillLocked) ||
		errors.Is(err, combat.ErrUnknownSkill)
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
