// internal/httpserver/routes_game.go
//
// HTTP routes for server-held puzzle sessions:
//   - POST /game/new    → create and start a session
//   - POST /game/click  → one click on a peg (select, then move-or-clear)
//   - POST /game/reset  → re-rack the session
//   - GET  /game/{id}   → current snapshot
//
// Sessions are explicit objects in the session store, keyed by ID; there is
// no process-wide current game. A won session is deactivated so its clock
// stops with the winning click. Each live session carries a heartbeat ticker
// that is cancelled on win and restarted on reset.

package httpserver

import (
	"encoding/json"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/hanoitower/go-server/internal/game"
)

// snapshot is the wire representation of a session.
type snapshot struct {
	SessionID string  `json:"sessionId"`
	Pegs      [][]int `json:"pegs"` // disk sizes, bottom to top
	Moves     int     `json:"moves"`
	Active    bool    `json:"active"`
	Selected  int     `json:"selected"` // -1 when nothing is selected
	Won       bool    `json:"won"`
	MinMoves  int     `json:"minMoves"`
	Elapsed   float64 `json:"elapsed"` // seconds since start
}

func snapshotOf(s *game.Session) snapshot {
	pegs := make([][]int, game.NumPegs)
	for i, peg := range s.Pegs {
		pegs[i] = lo.Map(peg, func(d game.Disk, _ int) int { return d.Size })
	}
	return snapshot{
		SessionID: s.ID,
		Pegs:      pegs,
		Moves:     s.Moves,
		Active:    s.Active,
		Selected:  s.Selected,
		Won:       s.CheckWin(),
		MinMoves:  game.MinMoves(s.NumDisks),
		Elapsed:   math.Round(s.Elapsed().Seconds()*1000) / 1000,
	}
}

// mountGame registers all /game routes.
func (s *Server) mountGame() {
	s.r.Route("/game", func(r chi.Router) {
		r.Post("/new", s.handleNewGame)
		r.Post("/click", s.handleClick)
		r.Post("/reset", s.handleResetGame)
		r.Get("/{id}", s.handleGetGame)
	})
}

// tickInterval paces the per-session heartbeat.
const tickInterval = time.Second

// startTicker attaches a heartbeat ticker to the session, replacing any
// previous one. The ticker lives until the session wins, resets, or the
// server closes.
func (s *Server) startTicker(sess *game.Session) {
	id := sess.ID
	t := game.NewTicker(tickInterval, func(elapsed time.Duration) {
		log.Debug().Str("session", id).Dur("elapsed", elapsed).Msg("session tick")
	})
	s.mu.Lock()
	if old, ok := s.tickers[id]; ok {
		old.Stop()
	}
	s.tickers[id] = t
	s.mu.Unlock()
}

// stopTicker cancels and forgets the session's heartbeat ticker, if any.
func (s *Server) stopTicker(id string) {
	s.mu.Lock()
	if t, ok := s.tickers[id]; ok {
		t.Stop()
		delete(s.tickers, id)
	}
	s.mu.Unlock()
}

// hasTicker reports whether a heartbeat ticker is live for the session.
func (s *Server) hasTicker(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tickers[id]
	return ok
}

// newGameReq is the request payload for POST /game/new.
type newGameReq struct {
	Disks int `json:"disks"` // optional; defaults to the configured count
}

// handleNewGame creates a started session and returns its snapshot.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	_ = json.NewDecoder(r.Body).Decode(&req)

	disks := req.Disks
	if disks <= 0 {
		disks = s.cfg.Game.Disks
	}
	sess := game.New(disks)
	sess.Start()
	if err := s.sessions.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Msg("save session")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	s.startTicker(sess)
	_ = json.NewEncoder(w).Encode(snapshotOf(sess))
}

// clickReq is the request payload for POST /game/click.
type clickReq struct {
	SessionID string `json:"sessionId"`
	Peg       int    `json:"peg"`
}

// clickRes is the snapshot plus whether this click actually moved a disk.
type clickRes struct {
	snapshot
	Moved bool `json:"moved"`
}

// handleClick applies one click. Illegal moves are not errors: the selection
// clears and the snapshot comes back unchanged.
func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	var req clickReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	sess, err := s.sessions.Get(r.Context(), req.SessionID)
	if err != nil {
		if notFound(err) {
			http.Error(w, `{"error":"session not found"}`, http.StatusNotFound)
			return
		}
		log.Error().Err(err).Msg("load session")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	moved := sess.Click(req.Peg)
	if sess.CheckWin() {
		sess.Finish()
		s.stopTicker(sess.ID)
	}
	if err := s.sessions.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Msg("save session")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(clickRes{snapshot: snapshotOf(sess), Moved: moved})
}

// resetReq is the request payload for POST /game/reset.
type resetReq struct {
	SessionID string `json:"sessionId"`
}

// handleResetGame re-racks the session and restarts it.
func (s *Server) handleResetGame(w http.ResponseWriter, r *http.Request) {
	var req resetReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	sess, err := s.sessions.Get(r.Context(), req.SessionID)
	if err != nil {
		if notFound(err) {
			http.Error(w, `{"error":"session not found"}`, http.StatusNotFound)
			return
		}
		log.Error().Err(err).Msg("load session")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	sess.Reset()
	s.stopTicker(sess.ID)
	sess.Start()
	if err := s.sessions.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Msg("save session")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	s.startTicker(sess)
	_ = json.NewEncoder(w).Encode(snapshotOf(sess))
}

// handleGetGame returns the current snapshot for a session.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		if notFound(err) {
			http.Error(w, `{"error":"session not found"}`, http.StatusNotFound)
			return
		}
		log.Error().Err(err).Msg("load session")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(snapshotOf(sess))
}
