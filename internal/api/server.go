package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"cabin_boarding/internal/game"
	"cabin_boarding/internal/models"
	"cabin_boarding/internal/notify"

	"github.com/go-chi/chi/v5"
)

type Server struct {
	engine *game.Engine
	hub    *notify.Hub
}

// New constructs the HTTP router wired to the boarding engine. hub may be
// nil, in which case /events is not served.
func New(engine *game.Engine, hub *notify.Hub) http.Handler {
	s := &Server{engine: engine, hub: hub}
	r := chi.NewRouter()
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/state", s.handleState)
	r.Get("/stats", s.handleStats)
	r.Get("/level", s.handleLevel)
	r.Get("/passengers/{id}", s.handlePassenger)
	r.Post("/tick", s.handleTick)
	r.Post("/sim/start", s.handleSimStart)
	r.Post("/sim/pause", s.handleSimPause)
	r.Post("/sim/speed", s.handleSimSpeed)
	r.Post("/sim/reset", s.handleSimReset)
	r.Post("/queue/order", s.handleQueueOrder)
	if hub != nil {
		r.Get("/events", hub.ServeWS)
	}

	return r
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.engine.State())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st := s.engine.State()
	writeJSON(w, map[string]any{
		"run_id":   st.RunID,
		"complete": st.Complete,
		"stats":    st.Stats,
	})
}

func (s *Server) handleLevel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.engine.Level())
}

func (s *Server) handlePassenger(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "bad passenger id")
		return
	}
	for _, p := range s.engine.State().Passengers {
		if p.ID == models.PassengerID(id) {
			writeJSON(w, p)
			return
		}
	}
	writeJSONError(w, http.StatusNotFound, "passenger not found")
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.AdvanceTick(); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, s.engine.State())
}

func (s *Server) handleSimStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Speed int `json:"speed"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	s.engine.StartSim(req.Speed)
	writeJSON(w, s.engine.State())
}

func (s *Server) handleSimPause(w http.ResponseWriter, r *http.Request) {
	s.engine.PauseSim()
	writeJSON(w, s.engine.State())
}

func (s *Server) handleSimSpeed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Speed int `json:"speed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Speed <= 0 {
		writeJSONError(w, http.StatusBadRequest, "bad request")
		return
	}
	s.engine.SetSpeed(req.Speed)
	writeJSON(w, s.engine.State())
}

func (s *Server) handleSimReset(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Reset(); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, s.engine.State())
}

func (s *Server) handleQueueOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Order string `json:"order"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Order == "" {
		writeJSONError(w, http.StatusBadRequest, "order is required")
		return
	}
	if err := s.engine.ReorderQueue(req.Order); err != nil {
		switch {
		case errors.Is(err, game.ErrBoardingStarted):
			writeJSONError(w, http.StatusConflict, err.Error())
		case errors.Is(err, game.ErrUnknownOrdering):
			writeJSONError(w, http.StatusBadRequest, err.Error())
		default:
			writeJSONError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, s.engine.State())
}

// ===== helpers =====

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
