package game

import (
	"testing"
	"time"
)

// checkInvariant fails the test if any peg is not strictly decreasing in size
// from bottom to top, or if the disk multiset is not exactly 1..NumDisks.
func checkInvariant(t *testing.T, s *Session) {
	t.Helper()
	seen := make(map[int]int)
	for p, peg := range s.Pegs {
		for i, d := range peg {
			seen[d.Size]++
			if i > 0 && peg[i-1].Size <= d.Size {
				t.Fatalf("peg %d not strictly decreasing at index %d: %v", p, i, peg)
			}
		}
	}
	if len(seen) != s.NumDisks {
		t.Fatalf("expected %d distinct disks, got %d", s.NumDisks, len(seen))
	}
	for size := 1; size <= s.NumDisks; size++ {
		if seen[size] != 1 {
			t.Fatalf("disk of size %d present %d times", size, seen[size])
		}
	}
}

func TestNewRacksDescendingStack(t *testing.T) {
	s := New(6)
	if len(s.Pegs[StartPeg]) != 6 {
		t.Fatalf("expected 6 disks on start peg, got %d", len(s.Pegs[StartPeg]))
	}
	for i, d := range s.Pegs[StartPeg] {
		if d.Size != 6-i {
			t.Errorf("position %d: expected size %d, got %d", i, 6-i, d.Size)
		}
	}
	if s.Active || s.Moves != 0 || s.Selected != NoSelection {
		t.Error("new session should be idle with no moves or selection")
	}
	checkInvariant(t, s)
}

func TestAttemptMoveLegality(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*Session)
		from  int
		to    int
		want  bool
	}{
		{"to empty peg", nil, 0, 1, true},
		{"same peg", nil, 0, 0, false},
		{"from empty peg", nil, 1, 2, false},
		{"larger onto smaller", func(s *Session) { s.AttemptMove(0, 1) }, 0, 1, false},
		{"smaller onto larger", func(s *Session) { s.AttemptMove(0, 1) }, 1, 0, true},
		{"out of range from", nil, -1, 1, false},
		{"out of range to", nil, 0, 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(3)
			s.Start()
			if tt.setup != nil {
				tt.setup(s)
			}
			before := s.Moves
			got := s.AttemptMove(tt.from, tt.to)
			if got != tt.want {
				t.Errorf("AttemptMove(%d,%d) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
			if got && s.Moves != before+1 {
				t.Error("successful move did not increment counter")
			}
			if !got && s.Moves != before {
				t.Error("failed move changed the counter")
			}
			checkInvariant(t, s)
		})
	}
}

func TestMoveInactiveSessionIsNoop(t *testing.T) {
	s := New(3)
	if s.AttemptMove(0, 1) {
		t.Error("move on inactive session should fail")
	}
	s.SelectPeg(0)
	if s.Selected != NoSelection {
		t.Error("selection on inactive session should be a no-op")
	}
}

func TestSelectionSingleShot(t *testing.T) {
	s := New(3)
	s.Start()

	// First click selects, second click moves.
	if moved := s.Click(0); moved {
		t.Error("selection click should not move")
	}
	if s.Selected != 0 {
		t.Fatalf("expected peg 0 selected, got %d", s.Selected)
	}
	if moved := s.Click(1); !moved {
		t.Error("expected move from selected peg to succeed")
	}
	if s.Selected != NoSelection {
		t.Error("selection should clear after a successful move")
	}

	// Selection clears even when the move is illegal.
	s.Click(0) // select peg 0 (top is now size 2)
	s.Click(1) // illegal: 2 onto 1
	if s.Selected != NoSelection {
		t.Error("selection should clear after a failed move")
	}

	// Selecting an empty peg is a no-op.
	s.Click(2)
	if s.Selected != NoSelection {
		t.Error("empty peg should not be selectable")
	}
	checkInvariant(t, s)
}

// solve plays the textbook recursive solution.
func solve(s *Session, n, from, to, via int) {
	if n == 0 {
		return
	}
	solve(s, n-1, from, via, to)
	s.AttemptMove(from, to)
	solve(s, n-1, via, to, from)
}

func TestOptimalSolveWins(t *testing.T) {
	for _, n := range []int{1, 3, 6} {
		s := New(n)
		s.Start()
		solve(s, n, StartPeg, GoalPeg, 1)
		if !s.CheckWin() {
			t.Errorf("n=%d: optimal solve did not win", n)
		}
		if s.Moves != MinMoves(n) {
			t.Errorf("n=%d: optimal solve took %d moves, want %d", n, s.Moves, MinMoves(n))
		}
		checkInvariant(t, s)
	}
}

func TestCheckWinOnlyOnGoalPeg(t *testing.T) {
	s := New(2)
	s.Start()
	if s.CheckWin() {
		t.Error("fresh session should not be won")
	}
	// Move the full stack to peg 1: not the goal peg.
	s.AttemptMove(0, 2)
	s.AttemptMove(0, 1)
	s.AttemptMove(2, 1)
	if s.CheckWin() {
		t.Error("stack on peg 1 should not count as a win")
	}
	s.AttemptMove(1, 0)
	s.AttemptMove(1, 2)
	if len(s.Pegs[GoalPeg]) != 1 {
		t.Fatalf("unexpected goal peg: %v", s.Pegs[GoalPeg])
	}
	s.AttemptMove(0, 2)
	if !s.CheckWin() {
		t.Error("all disks on goal peg should win")
	}
}

func TestInvariantHoldsUnderArbitraryClicks(t *testing.T) {
	s := New(4)
	s.Start()
	// A fixed pseudo-random click sequence with plenty of illegal attempts.
	seq := []int{0, 1, 0, 2, 1, 2, 0, 0, 2, 1, 1, 0, 2, 2, 1, 0, 1, 2, 0, 1,
		2, 0, 1, 1, 2, 0, 0, 1, 2, 2, 1, 0}
	for _, p := range seq {
		s.Click(p)
		checkInvariant(t, s)
	}
}

func TestResetRestoresStartState(t *testing.T) {
	s := New(5)
	s.Start()
	s.AttemptMove(0, 2)
	s.AttemptMove(0, 1)
	s.Click(2)
	s.Reset()

	if s.Moves != 0 {
		t.Errorf("moves after reset = %d, want 0", s.Moves)
	}
	if s.Active || s.Selected != NoSelection {
		t.Error("reset session should be idle with no selection")
	}
	if len(s.Pegs[StartPeg]) != 5 || len(s.Pegs[1]) != 0 || len(s.Pegs[GoalPeg]) != 0 {
		t.Fatalf("reset pegs wrong: %v", s.Pegs)
	}
	for i, d := range s.Pegs[StartPeg] {
		if d.Size != 5-i {
			t.Errorf("position %d: expected size %d, got %d", i, 5-i, d.Size)
		}
	}
	if s.Elapsed() != 0 {
		t.Error("reset session should report zero elapsed time")
	}
	checkInvariant(t, s)
}

func TestMinMoves(t *testing.T) {
	tests := []struct{ n, want int }{
		{0, 0}, {1, 1}, {2, 3}, {3, 7}, {6, 63}, {10, 1023}, {-1, 0},
	}
	for _, tt := range tests {
		if got := MinMoves(tt.n); got != tt.want {
			t.Errorf("MinMoves(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestElapsedDerivedFromStart(t *testing.T) {
	s := New(3)
	if s.Elapsed() != 0 {
		t.Error("unstarted session should report zero elapsed")
	}
	s.Start()
	s.Started = time.Now().Add(-2 * time.Second)
	if e := s.Elapsed(); e < 2*time.Second || e > 3*time.Second {
		t.Errorf("elapsed = %v, want ~2s", e)
	}

	// Finish freezes the clock.
	s.Finish()
	frozen := s.Elapsed()
	time.Sleep(20 * time.Millisecond)
	if s.Elapsed() != frozen {
		t.Error("elapsed should not advance after Finish")
	}
}
