// internal/scoreclient/client.go
//
// Client for the score API. Packages a completed game and posts it, then
// fetches the refreshed top-10 list. The minimum-moves gate is applied
// client-side before any network call, duplicating the server's check.
// Any non-2xx response is returned as an error with the server's message;
// there are no retries.

package scoreclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hanoitower/go-server/internal/game"
)

// Score is a completed game ready for submission.
type Score struct {
	Name  string  `json:"name"`
	Time  float64 `json:"time"` // seconds
	Moves int     `json:"moves"`
	Date  string  `json:"date"` // ISO-8601
}

// Entry is one leaderboard row as served by the API.
type Entry struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Time  float64 `json:"time"`
	Moves int     `json:"moves"`
	Date  string  `json:"date"`
}

// Client talks to a score service instance.
type Client struct {
	BaseURL  string
	NumDisks int // for the client-side minimum-moves gate
	HTTP     *http.Client
}

// New constructs a client for baseURL with a sane default timeout.
func New(baseURL string, numDisks int) *Client {
	return &Client{
		BaseURL:  baseURL,
		NumDisks: numDisks,
		HTTP:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Submit posts a score and returns the new record id.
// Scores below the theoretical minimum are rejected locally.
func (c *Client) Submit(ctx context.Context, s Score) (int64, error) {
	if s.Moves < game.MinMoves(c.NumDisks) {
		return 0, fmt.Errorf("score of %d moves is below the %d-move minimum", s.Moves, game.MinMoves(c.NumDisks))
	}
	if s.Date == "" {
		s.Date = time.Now().UTC().Format(time.RFC3339)
	}

	body, err := json.Marshal(s)
	if err != nil {
		return 0, fmt.Errorf("encode score: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/scores", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return 0, fmt.Errorf("submit score: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return 0, fmt.Errorf("submit score: %s", serverError(res))
	}
	var out struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	return out.ID, nil
}

// Top fetches the current leaderboard.
func (c *Client) Top(ctx context.Context) ([]Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/scores", nil)
	if err != nil {
		return nil, err
	}
	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch leaderboard: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch leaderboard: %s", serverError(res))
	}
	var out []Entry
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode leaderboard: %w", err)
	}
	return out, nil
}

// serverError pulls the {error} message out of a failed response, falling
// back to the HTTP status when the body is not the expected shape.
func serverError(res *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return res.Status
}
