// Package api provides the HTTP interface for observing and steering
// the city. GET endpoints are public read-only views; citizen actions
// authenticate with per-citizen capability tokens; admin endpoints
// require a bearer token.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/soratane/aicity/internal/engine"
	"github.com/soratane/aicity/internal/persistence"
)

// Server serves the city over HTTP.
type Server struct {
	Sim        *engine.Simulation
	Runner     *engine.Runner
	DB         *persistence.DB
	Archive    *persistence.Archive
	Addr       string
	AdminToken string   // bearer token for admin endpoints; empty = disabled
	Origins    []string // allowed CORS origins

	PushInterval time.Duration // websocket snapshot cadence

	// One registration per client IP per minute, burst of 3.
	regMu       sync.Mutex
	regLimiters map[string]*rate.Limiter

	hub *hub
}

// Start begins serving in a goroutine. The broadcast loop stops when
// ctx is canceled.
func (s *Server) Start(ctx context.Context) {
	s.regLimiters = make(map[string]*rate.Limiter)
	s.hub = newHub(s.Sim, s.PushInterval)
	go s.hub.run(ctx)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/snapshot", s.handleSnapshot)
	mux.HandleFunc("GET /api/citizens", s.handleCitizens)
	mux.HandleFunc("GET /api/citizens/{id}", s.handleCitizenDetail)
	mux.HandleFunc("GET /api/government", s.handleGovernment)
	mux.HandleFunc("GET /api/economy", s.handleEconomy)
	mux.HandleFunc("GET /api/crimes", s.handleCrimes)
	mux.HandleFunc("GET /api/ledger", s.handleLedger)
	mux.HandleFunc("GET /api/news", s.handleNews)

	mux.HandleFunc("POST /api/citizens/register", s.handleRegister)
	mux.HandleFunc("POST /api/citizens/{id}/action", s.handleAction)

	mux.HandleFunc("POST /api/admin/save", s.adminOnly(s.handleSave))
	mux.HandleFunc("POST /api/admin/stop", s.adminOnly(s.handleStop))

	mux.HandleFunc("GET /ws", s.hub.handleWS)

	c := cors.New(cors.Options{
		AllowedOrigins: s.Origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})

	slog.Info("HTTP API starting", "addr", s.Addr, "admin_auth", s.AdminToken != "")
	go func() {
		if err := http.ListenAndServe(s.Addr, c.Handler(mux)); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// adminOnly requires a matching bearer token.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminToken == "" {
			writeError(w, "admin endpoints disabled", http.StatusForbidden)
			return
		}
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != s.AdminToken {
			writeError(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.Sim.CurrentStatus()
	writeJSON(w, map[string]any{
		"tick":       st.Tick,
		"time":       st.Time,
		"population": st.Population,
		"uptime_s":   st.UptimeSecs,
		"running":    s.Runner != nil && s.Runner.Running(),
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Snapshot())
}

func (s *Server) handleCitizens(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Snapshot().Citizens)
}

func (s *Server) handleCitizenDetail(w http.ResponseWriter, r *http.Request) {
	view, rels, ok := s.Sim.CitizenByID(r.PathValue("id"))
	if !ok {
		writeError(w, "citizen not found", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{"citizen": view, "relationships": rels})
}

func (s *Server) handleGovernment(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Snapshot().Government)
}

func (s *Server) handleEconomy(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Snapshot().Economy)
}

func (s *Server) handleCrimes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Snapshot().Crimes)
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Snapshot().Ledger)
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 50 {
			limit = n
		}
	}
	news := s.Sim.News()
	if len(news) > limit {
		news = news[:limit]
	}
	writeJSON(w, news)
}

func (s *Server) regLimiter(ip string) *rate.Limiter {
	s.regMu.Lock()
	defer s.regMu.Unlock()
	lim, ok := s.regLimiters[ip]
	if !ok {
		lim = rate.NewLimiter(rate.Every(time.Minute), 3)
		s.regLimiters[ip] = lim
	}
	return lim
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !s.regLimiter(clientIP(r)).Allow() {
		writeError(w, "rate limit exceeded", http.StatusTooManyRequests)
		return
	}

	var doc any
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := validate(registerSchema, doc); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	body := doc.(map[string]any)
	name, _ := body["name"].(string)
	role, _ := body["role"].(string)

	view, token, err := s.Sim.RegisterExternal(name, role)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{"citizen": view, "token": token})
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var doc any
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := validate(actionSchema, doc); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	body := doc.(map[string]any)
	token, _ := body["token"].(string)
	actionMap, _ := body["action"].(map[string]any)

	var req engine.ActionRequest
	req.Type, _ = actionMap["type"].(string)
	req.Target, _ = actionMap["target"].(string)
	req.Message, _ = actionMap["message"].(string)

	ack, err := s.Sim.ApplyExternalAction(r.PathValue("id"), token, req)
	switch {
	case err == nil:
		writeJSON(w, ack)
	case errors.Is(err, engine.ErrNotFound):
		writeError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, engine.ErrUnauthorized):
		writeError(w, err.Error(), http.StatusUnauthorized)
	default:
		writeError(w, err.Error(), http.StatusBadRequest)
	}
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	snap := s.Sim.Snapshot()
	if s.DB != nil {
		if err := s.DB.SaveWorldState(snap); err != nil {
			writeError(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	var archived string
	if s.Archive != nil {
		path, err := s.Archive.Write(snap)
		if err != nil {
			writeError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		archived = path
	}
	writeJSON(w, map[string]any{"status": "saved", "tick": snap.World.Tick, "archive": archived})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if s.Runner != nil {
		s.Runner.Stop()
	}
	writeJSON(w, map[string]string{"status": "stopping"})
}
