// internal/httpserver/admin.go
//
// Admin surface for the score service. A single operator password (stored as
// a bcrypt hash in config) is exchanged for a short-lived HS256 token, which
// gates the bulk-delete endpoint. With no hash configured the admin routes
// are not mounted at all, leaving only the rate-limited public surface.

package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// mountAdmin registers /admin/login and the gated DELETE /scores.
func (s *Server) mountAdmin() {
	if s.cfg.Admin.PasswordHash == "" {
		log.Info().Msg("admin surface disabled (no password hash configured)")
		return
	}
	s.r.Post("/admin/login", s.handleAdminLogin)
	s.r.With(s.requireAdmin()).Delete("/scores", s.handleClearScores)
}

// loginReq is the request payload for POST /admin/login.
type loginReq struct {
	Password string `json:"password"`
}

// handleAdminLogin verifies the operator password and issues a token.
func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var body loginReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":"invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(s.cfg.Admin.PasswordHash), []byte(body.Password)) != nil {
		http.Error(w, `{"error":"invalid password"}`, http.StatusUnauthorized)
		return
	}
	tok, err := s.signAdminToken()
	if err != nil {
		log.Error().Err(err).Msg("sign admin token")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"token": tok})
}

// handleClearScores wipes the score table. Token-gated.
func (s *Server) handleClearScores(w http.ResponseWriter, r *http.Request) {
	n, err := s.scores.Clear(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("clear scores")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	log.Info().Int64("removed", n).Msg("score table cleared")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"message": fmt.Sprintf("cleared %d scores", n),
	})
}

// signAdminToken creates an HS256 token with the configured TTL.
func (s *Server) signAdminToken() (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": "admin",
		"exp":  time.Now().Add(s.cfg.Admin.TokenTTL.Std()).Unix(),
		"iat":  time.Now().Unix(),
	})
	return t.SignedString([]byte(s.cfg.Admin.JWTSecret))
}

// requireAdmin enforces a valid admin bearer token.
func (s *Server) requireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := bearerToken(r)
			if tokenStr == "" {
				http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
				return
			}
			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				return []byte(s.cfg.Admin.JWTSecret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, `{"error":"Invalid token"}`, http.StatusUnauthorized)
				return
			}
			if role, _ := claims["role"].(string); role != "admin" {
				http.Error(w, `{"error":"Invalid token"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts a bearer token from the Authorization header.
func bearerToken(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return ""
}
