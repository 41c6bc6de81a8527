package scores

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/hanoitower/go-server/internal/db"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	d, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	if err := db.Migrate(d); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewStore(d, 6, 100, 5)
}

func validSub(name string) Submission {
	return Submission{
		Name:  name,
		Time:  120.5,
		Moves: 80,
		Date:  time.Now().UTC().Format(time.RFC3339),
		IP:    "203.0.113.9",
	}
}

func TestInsertAndTop(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	id, err := s.Insert(ctx, validSub("alice"))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if id == 0 {
		t.Error("expected non-zero id")
	}

	top, err := s.Top(ctx, 10)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 1 || top[0].Name != "alice" || top[0].Moves != 80 {
		t.Fatalf("unexpected top: %+v", top)
	}
}

func TestRankingOrder(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	s.MaxPerOriginHour = 0

	inserts := []struct {
		name  string
		moves int
		time  float64
	}{
		{"slow-few", 63, 300},
		{"fast-many", 120, 20},
		{"fast-few", 63, 100},
	}
	for _, in := range inserts {
		sub := validSub(in.name)
		sub.Moves = in.moves
		sub.Time = in.time
		if _, err := s.Insert(ctx, sub); err != nil {
			t.Fatalf("insert %s: %v", in.name, err)
		}
	}

	top, err := s.Top(ctx, 10)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	want := []string{"fast-few", "slow-few", "fast-many"}
	if len(top) != len(want) {
		t.Fatalf("got %d rows, want %d", len(top), len(want))
	}
	for i, name := range want {
		if top[i].Name != name {
			t.Errorf("rank %d: got %s, want %s", i, top[i].Name, name)
		}
	}
}

func TestTopLimitClamped(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	s.MaxPerOriginHour = 0

	for i := 0; i < 15; i++ {
		sub := validSub(fmt.Sprintf("p%02d", i))
		sub.Moves = 63 + i
		if _, err := s.Insert(ctx, sub); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	top, err := s.Top(ctx, 50)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != DefaultTopLimit {
		t.Errorf("got %d rows, want %d", len(top), DefaultTopLimit)
	}
}

func TestValidationOrder(t *testing.T) {
	now := time.Now()
	future := now.Add(2 * time.Hour).Format(time.RFC3339)

	tests := []struct {
		name string
		sub  Submission
		want error
	}{
		{"empty name", Submission{Name: "   ", Time: -5, Moves: -1}, ErrNameRequired},
		{"long name wins over bad time", Submission{Name: "x123456789x123456789x123456789x123456789x123456789x", Time: -5}, ErrNameTooLong},
		{"multi-byte name within bound", Submission{Name: strings.Repeat("Ж", 40), Time: 10, Moves: 63, Date: now.UTC().Format(time.RFC3339)}, nil},
		{"multi-byte name over bound", Submission{Name: strings.Repeat("Ж", 51), Time: 10, Moves: 63, Date: now.UTC().Format(time.RFC3339)}, ErrNameTooLong},
		{"negative time", Submission{Name: "a", Time: -1, Moves: -1}, ErrTimeRange},
		{"time too large", Submission{Name: "a", Time: 3601, Moves: 63}, ErrTimeRange},
		{"negative moves", Submission{Name: "a", Time: 10, Moves: -1}, ErrMovesNegative},
		{"moves below minimum", Submission{Name: "a", Time: 10, Moves: 62, Date: "bogus"}, ErrMovesTooFew},
		{"bad date", Submission{Name: "a", Time: 10, Moves: 63, Date: "bogus"}, ErrDateInvalid},
		{"future date", Submission{Name: "a", Time: 10, Moves: 63, Date: future}, ErrDateInFuture},
		{"valid", Submission{Name: "a", Time: 10, Moves: 63, Date: now.UTC().Format(time.RFC3339)}, nil},
		{"valid date only", Submission{Name: "a", Time: 0, Moves: 100, Date: "2024-03-01"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.sub, 63, now)
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCapacityEviction(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	s.MaxRows = 100
	s.MaxPerOriginHour = 0

	// Fill to capacity with a clearly-worst row in the middle.
	for i := 0; i < 100; i++ {
		sub := validSub(fmt.Sprintf("p%03d", i))
		sub.Moves = 70 + i%20
		sub.Time = float64(50 + i)
		if i == 42 {
			sub.Name = "worst"
			sub.Moves = 200
			sub.Time = 500
		}
		if _, err := s.Insert(ctx, sub); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}
	if n, _ := s.Count(ctx); n != 100 {
		t.Fatalf("expected 100 rows before eviction test, got %d", n)
	}

	// The 101st insert evicts exactly the worst row.
	sub := validSub("newcomer")
	sub.Moves = 63
	sub.Time = 12
	if _, err := s.Insert(ctx, sub); err != nil {
		t.Fatalf("101st insert: %v", err)
	}
	if n, _ := s.Count(ctx); n != 100 {
		t.Errorf("expected table to stay at 100 rows, got %d", n)
	}

	// "worst" must be gone and "newcomer" must rank first.
	top, err := s.Top(ctx, 10)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if top[0].Name != "newcomer" {
		t.Errorf("expected newcomer first, got %s", top[0].Name)
	}
	var worst int
	if err := s.db.QueryRow(`SELECT COUNT(1) FROM scores WHERE name='worst'`).Scan(&worst); err != nil {
		t.Fatalf("count worst: %v", err)
	}
	if worst != 0 {
		t.Error("worst row should have been evicted")
	}
}

func TestOriginThrottle(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	s.MaxPerOriginHour = 5

	for i := 0; i < 5; i++ {
		if _, err := s.Insert(ctx, validSub(fmt.Sprintf("p%d", i))); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}
	if _, err := s.Insert(ctx, validSub("sixth")); !errors.Is(err, ErrRateLimited) {
		t.Errorf("6th insert from one origin: err = %v, want ErrRateLimited", err)
	}

	// A different origin is unaffected.
	other := validSub("other")
	other.IP = "198.51.100.7"
	if _, err := s.Insert(ctx, other); err != nil {
		t.Errorf("other origin insert: %v", err)
	}

	// Submissions older than an hour no longer count.
	s.now = func() time.Time { return time.Now().Add(90 * time.Minute) }
	late := validSub("late")
	late.Date = time.Now().Add(90 * time.Minute).UTC().Format(time.RFC3339)
	if _, err := s.Insert(ctx, late); err != nil {
		t.Errorf("insert after window: %v", err)
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	s.MaxPerOriginHour = 0

	for i := 0; i < 3; i++ {
		if _, err := s.Insert(ctx, validSub(fmt.Sprintf("p%d", i))); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	n, err := s.Clear(ctx)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if n != 3 {
		t.Errorf("cleared %d rows, want 3", n)
	}
	if c, _ := s.Count(ctx); c != 0 {
		t.Errorf("expected empty table, got %d rows", c)
	}
}
