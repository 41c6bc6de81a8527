// internal/httpserver/server.go
//
// HTTP server wiring for the Hanoi backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs,
//     per-IP rate limiting).
//   - Public endpoints: "/", "/health".
//   - Score endpoints: GET /scores, POST /scores.
//   - Admin endpoints: POST /admin/login, DELETE /scores (token-gated).
//   - Game session endpoints: mounted under /game.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled.
//   - The service holds no per-request state beyond the score table and the
//     in-memory session store; every request is handled independently.
//   - Store failures are logged in full but reported to clients as a generic
//     internal error.

package httpserver

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/hanoitower/go-server/internal/config"
	"github.com/hanoitower/go-server/internal/game"
	"github.com/hanoitower/go-server/internal/scores"
	"github.com/hanoitower/go-server/internal/store"
)

// Server bundles router, in-memory session store, score store, and config.
// It also owns the per-session heartbeat tickers and the request limiter,
// both released by Close.
type Server struct {
	r        *chi.Mux
	sessions store.Store
	scores   *scores.Store
	cfg      *config.Config
	limiter  *ipLimiter

	mu      sync.Mutex
	tickers map[string]*game.Ticker // keyed by session ID
}

// New constructs a Server, installs middleware, and registers routes.
func New(sessions store.Store, sc *scores.Store, cfg *config.Config) *Server {
	s := &Server{
		r:        chi.NewRouter(),
		sessions: sessions,
		scores:   sc,
		cfg:      cfg,
		tickers:  make(map[string]*game.Ticker),
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                                // add X-Request-ID
	s.r.Use(chimw.RealIP)                                   // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                                // recover from panics
	s.r.Use(chimw.Timeout(cfg.Server.RequestTimeout.Std())) // bound handler time
	s.r.Use(jsonContentType)                                // default JSON responses
	s.r.Use(corsFromConfig(cfg.Server.ClientOrigin))
	if cfg.RateLimit.Enabled {
		s.limiter = newIPLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window.Std())
		s.r.Use(s.limiter.middleware)
	}

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"hanoi-go","endpoints":["/health","GET /scores","POST /scores","POST /game/new"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	// Score endpoints
	s.r.Get("/scores", s.handleTopScores)
	s.r.Post("/scores", s.handleSubmitScore)
	s.mountAdmin()

	// Game session endpoints
	s.mountGame()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// Close stops the request limiter's sweep and every live session ticker.
// Safe to call more than once.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.stop()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.tickers {
		t.Stop()
		delete(s.tickers, id)
	}
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromConfig enables credentialed CORS for a single origin.
func corsFromConfig(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ------------------------------ SCORES -------------------------------------

// submitReq is the request payload for POST /scores.
type submitReq struct {
	Name  string  `json:"name"`
	Time  float64 `json:"time"`
	Moves int     `json:"moves"`
	Date  string  `json:"date"`
}

// handleTopScores returns up to the configured top-N records, best first.
// Read-only; the ip_address column never leaves the store.
func (s *Server) handleTopScores(w http.ResponseWriter, r *http.Request) {
	top, err := s.scores.Top(r.Context(), s.cfg.Store.TopLimit)
	if err != nil {
		log.Error().Err(err).Msg("fetch leaderboard")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(top)
}

// handleSubmitScore validates and persists a submission, returning the new id.
// Validation and abuse rejections are 400s; store failures are 500s with a
// generic message.
func (s *Server) handleSubmitScore(w http.ResponseWriter, r *http.Request) {
	var req submitReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	id, err := s.scores.Insert(r.Context(), scores.Submission{
		Name:  req.Name,
		Time:  req.Time,
		Moves: req.Moves,
		Date:  req.Date,
		IP:    clientIP(r),
	})
	if err != nil {
		if scores.IsValidationError(err) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		log.Error().Err(err).Str("name", req.Name).Msg("insert score")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]int64{"id": id})
}

// ------------------------------- helpers -----------------------------------

// writeError encodes an error as a JSON {error} body.
func writeError(w http.ResponseWriter, status int, err error) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

// clientIP extracts the submitter address; RealIP middleware has already
// folded X-Forwarded-For into RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// notFound reports whether err means a missing session.
func notFound(err error) bool { return errors.Is(err, store.ErrNotFound) }
