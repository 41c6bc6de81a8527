// internal/scores/validate.go
//
// Submission validation. Rules are applied in a fixed order and the first
// failure wins; later fields are not inspected once one rule fails. The
// minimum-moves rule mirrors the client-side gate (defense in depth).

package scores

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxNameLen  = 50
	maxTimeSecs = 3600

	// clockSkew tolerates small client/server clock differences when
	// rejecting future-dated submissions.
	clockSkew = time.Minute
)

// dateLayouts accepted for the submission timestamp, tried in order.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
}

// Validate checks a submission against the ordered rule set:
// name, time, moves, date. The origin/rate rule lives in Store.Insert
// because it needs the table.
func Validate(sub Submission, minMoves int, now time.Time) error {
	name := strings.TrimSpace(sub.Name)
	if name == "" {
		return ErrNameRequired
	}
	// The bound is characters, not bytes: multi-byte names count per rune.
	if utf8.RuneCountInString(name) > maxNameLen {
		return ErrNameTooLong
	}
	if sub.Time < 0 || sub.Time > maxTimeSecs {
		return ErrTimeRange
	}
	if sub.Moves < 0 {
		return ErrMovesNegative
	}
	if sub.Moves < minMoves {
		return ErrMovesTooFew
	}
	when, err := ParseDate(sub.Date)
	if err != nil {
		return ErrDateInvalid
	}
	if when.After(now.Add(clockSkew)) {
		return ErrDateInFuture
	}
	return nil
}

// ParseDate parses a submission timestamp in any accepted layout.
func ParseDate(s string) (time.Time, error) {
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}
