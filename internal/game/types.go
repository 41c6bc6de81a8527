// internal/game/types.go
//
// Core type definitions for the Hanoi puzzle engine.
// Defines:
//   - Disk: a single ranked disk (size 1..N).
//   - Session: state for one in-progress or finished puzzle.

package game

import "time"

// Disk is one ranked unit of game state. Size is its rank (1 = smallest);
// a smaller size must always sit above a larger one on the same peg.
// Disks are immutable once created.
type Disk struct {
	Size int `json:"size"`
}

// Peg indices for the three pegs. Sessions start with the full stack
// on StartPeg and are won when it sits entirely on GoalPeg.
const (
	StartPeg = 0
	GoalPeg  = 2
	NumPegs  = 3
)

// NoSelection is the Selected value when no peg is selected.
const NoSelection = -1

// Session holds the state of a single puzzle session. Pegs are ordered
// bottom-to-top; each peg is strictly decreasing in size from bottom to top.
type Session struct {
	ID       string          // Unique session identifier.
	NumDisks int             // Disk count for this session (typically 6).
	Pegs     [NumPegs][]Disk // Bottom-to-top disk stacks.
	Moves    int             // Successful moves so far.
	Active   bool            // True between Start() and win/reset.
	Selected int             // Currently selected peg, or NoSelection.
	Started  time.Time       // Start instant captured by Start().
	Stopped  time.Time       // Set by Finish; freezes the elapsed clock.
}
