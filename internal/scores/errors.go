package scores

import "errors"

// Validation and abuse errors, surfaced as 400s at the HTTP boundary.
// Anything else out of this package is an internal error (500).
var (
	ErrNameRequired  = errors.New("name is required")
	ErrNameTooLong   = errors.New("name must be at most 50 characters")
	ErrTimeRange     = errors.New("time must be between 0 and 3600 seconds")
	ErrMovesNegative = errors.New("moves must be non-negative")
	ErrMovesTooFew   = errors.New("moves below the minimum possible for this puzzle")
	ErrDateInvalid   = errors.New("date is not a valid timestamp")
	ErrDateInFuture  = errors.New("date must not be in the future")
	ErrRateLimited   = errors.New("submission rejected")
)

// IsValidationError reports whether err is a client-caused rejection
// (bad input or the abuse gate) rather than a store failure.
func IsValidationError(err error) bool {
	for _, e := range []error{
		ErrNameRequired, ErrNameTooLong, ErrTimeRange, ErrMovesNegative,
		ErrMovesTooFew, ErrDateInvalid, ErrDateInFuture, ErrRateLimited,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
