// internal/scores/scores.go
//
// SQLite-backed high-score store.
// Responsibilities:
//   - Validated inserts with inline capacity eviction (worst row dropped
//     when the table is full), executed in a single transaction.
//   - Per-origin submission throttling over the trailing hour.
//   - Ranked reads: fewest moves first, ties broken by time.
//   - Bulk clear for the admin surface.
//
// Ranking and eviction are mirror images: Top orders by (moves ASC, time ASC),
// eviction picks the single row ordered by (moves DESC, time DESC).

package scores

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/hanoitower/go-server/internal/game"
)

// DefaultTopLimit caps GET /scores responses.
const DefaultTopLimit = 10

// Submission is an incoming score before validation. IP is the submitter
// origin recorded for abuse tracking; it is never served back out.
type Submission struct {
	Name  string
	Time  float64 // seconds
	Moves int
	Date  string
	IP    string
}

// Record is a persisted score row as exposed by the API.
type Record struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Time  float64 `json:"time"`
	Moves int     `json:"moves"`
	Date  string  `json:"date"`
}

// Store persists scores in a single flat SQLite table.
type Store struct {
	db *sql.DB

	// NumDisks fixes the minimum-moves gate (2^N − 1).
	NumDisks int
	// MaxRows bounds the table; the worst row is evicted inline on insert.
	MaxRows int
	// MaxPerOriginHour bounds inserts per origin over the trailing hour.
	// Zero disables the gate.
	MaxPerOriginHour int

	now func() time.Time // test seam
}

// NewStore wires a Store over db with the given disk count and caps.
func NewStore(db *sql.DB, numDisks, maxRows, maxPerOriginHour int) *Store {
	if maxRows <= 0 {
		maxRows = 100
	}
	return &Store{
		db:               db,
		NumDisks:         numDisks,
		MaxRows:          maxRows,
		MaxPerOriginHour: maxPerOriginHour,
		now:              time.Now,
	}
}

// Insert validates sub and persists it, returning the new row id.
//
// The origin gate, capacity eviction, and insert all run inside one
// transaction so concurrent submissions cannot push the table past MaxRows.
func (s *Store) Insert(ctx context.Context, sub Submission) (int64, error) {
	if err := Validate(sub, game.MinMoves(s.NumDisks), s.now()); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Origin throttle over the trailing hour.
	if s.MaxPerOriginHour > 0 && sub.IP != "" {
		since := s.now().Add(-time.Hour).UTC().Format(time.RFC3339)
		var n int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(1) FROM scores WHERE ip_address=? AND created_at>=?`,
			sub.IP, since,
		).Scan(&n); err != nil {
			return 0, fmt.Errorf("count origin: %w", err)
		}
		if n >= s.MaxPerOriginHour {
			return 0, ErrRateLimited
		}
	}

	// Capacity eviction: drop the single worst row before inserting.
	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM scores`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	if count >= s.MaxRows {
		if _, err := tx.ExecContext(ctx, `
            DELETE FROM scores WHERE id IN (
                SELECT id FROM scores ORDER BY moves DESC, time DESC LIMIT 1
            )`); err != nil {
			return 0, fmt.Errorf("evict: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx, `
        INSERT INTO scores (name, time, moves, date, ip_address, created_at)
        VALUES (?,?,?,?,?,?)`,
		strings.TrimSpace(sub.Name), sub.Time, sub.Moves, sub.Date, nullable(sub.IP),
		s.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// Top returns up to limit records ordered best-first: fewest moves wins,
// ties broken by speed. The ip_address column is never selected.
func (s *Store) Top(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 || limit > DefaultTopLimit {
		limit = DefaultTopLimit
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, name, time, moves, date
        FROM scores
        ORDER BY moves ASC, time ASC
        LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Record, 0, limit)
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Name, &r.Time, &r.Moves, &r.Date); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Count returns the current number of rows.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM scores`).Scan(&n)
	return n, err
}

// Clear wipes the table and returns the number of rows removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scores`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// MinMoves reports the submission floor for this store's disk count.
func (s *Store) MinMoves() int { return game.MinMoves(s.NumDisks) }

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
