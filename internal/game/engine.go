// internal/game/engine.go
//
// Core engine for a single Tower of Hanoi session.
// Responsibilities:
//   - Create sessions with the full descending stack on the start peg.
//   - Validate and apply moves against the classic legality rule.
//   - Single-shot peg selection (select, then move-or-clear on next click).
//   - Track state transitions: idle → active → idle-after-win-or-reset.
//
// Notes:
//   - Illegal moves are silent no-ops: selection is cleared, nothing else
//     changes. There is no error path out of the engine.
//   - Elapsed time is derived from the start instant on every call, never
//     accumulated, so there is no pause state.
package game

import (
	"time"

	"github.com/google/uuid"
)

const defaultDisks = 6

// New constructs an idle session with numDisks stacked descending on the
// start peg. Non-positive numDisks falls back to the default of 6.
func New(numDisks int) *Session {
	if numDisks <= 0 {
		numDisks = defaultDisks
	}
	s := &Session{
		ID:       uuid.NewString(),
		NumDisks: numDisks,
		Selected: NoSelection,
	}
	s.rack()
	return s
}

// rack places the full disk stack on the start peg, largest at the bottom.
func (s *Session) rack() {
	for i := range s.Pegs {
		s.Pegs[i] = nil
	}
	for size := s.NumDisks; size >= 1; size-- {
		s.Pegs[StartPeg] = append(s.Pegs[StartPeg], Disk{Size: size})
	}
}

// Start activates the session and captures the timer origin.
// Starting an already-active session is a no-op.
func (s *Session) Start() {
	if s.Active {
		return
	}
	s.Active = true
	s.Started = time.Now()
}

// SelectPeg marks the top disk of peg i as selected. It is a no-op when the
// session is inactive, a peg is already selected, the index is out of range,
// or the peg is empty.
func (s *Session) SelectPeg(i int) {
	if !s.Active || s.Selected != NoSelection {
		return
	}
	if i < 0 || i >= NumPegs || len(s.Pegs[i]) == 0 {
		return
	}
	s.Selected = i
}

// Click models one click on peg i: with no current selection it selects,
// otherwise it attempts the move from the selected peg. Returns true if a
// disk actually moved.
func (s *Session) Click(i int) bool {
	if s.Selected == NoSelection {
		s.SelectPeg(i)
		return false
	}
	return s.AttemptMove(s.Selected, i)
}

// AttemptMove moves the top disk of from onto to if legal, incrementing the
// move counter. The selection is cleared regardless of success or failure.
//
// A move is legal iff:
//   - from != to,
//   - from is non-empty,
//   - to is empty or its top disk is larger than the moving disk.
func (s *Session) AttemptMove(from, to int) bool {
	s.Selected = NoSelection
	if !s.Active || from == to {
		return false
	}
	if from < 0 || from >= NumPegs || to < 0 || to >= NumPegs {
		return false
	}
	if len(s.Pegs[from]) == 0 {
		return false
	}
	d := s.Pegs[from][len(s.Pegs[from])-1]
	if n := len(s.Pegs[to]); n > 0 && s.Pegs[to][n-1].Size < d.Size {
		return false
	}
	s.Pegs[from] = s.Pegs[from][:len(s.Pegs[from])-1]
	s.Pegs[to] = append(s.Pegs[to], d)
	s.Moves++
	return true
}

// CheckWin reports whether the goal peg holds exactly all N disks.
func (s *Session) CheckWin() bool {
	return len(s.Pegs[GoalPeg]) == s.NumDisks
}

// Finish deactivates a won session and freezes its clock.
func (s *Session) Finish() {
	if s.Active {
		s.Stopped = time.Now()
	}
	s.Active = false
}

// Reset restores the full descending stack on the start peg, zeroes the move
// counter, and returns the session to the idle state.
func (s *Session) Reset() {
	s.rack()
	s.Moves = 0
	s.Active = false
	s.Selected = NoSelection
	s.Started = time.Time{}
	s.Stopped = time.Time{}
}

// Elapsed returns the time since Start, frozen at Finish for won sessions.
// Zero for sessions never started.
func (s *Session) Elapsed() time.Duration {
	if s.Started.IsZero() {
		return 0
	}
	if !s.Stopped.IsZero() {
		return s.Stopped.Sub(s.Started)
	}
	return time.Since(s.Started)
}

// MinMoves returns the optimal solution length for n disks: 2^n − 1.
// It is both the win-feasibility lower bound and the anti-cheat gate for
// submitted scores.
func MinMoves(n int) int {
	if n < 0 {
		return 0
	}
	return (1 << uint(n)) - 1
}
