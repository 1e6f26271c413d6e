package rating

import "github.com/cockroachdb/errors"

// Calculator input violations. These are local validation failures and are
// never retried; callers surface them directly.
var (
	ErrInvalidRating      = errors.New("rating must not be negative")
	ErrInvalidProbability = errors.New("probability must be within [0, 1]")
	ErrInvalidResult      = errors.New("result must be 0 or 1")
	ErrEmptyRoster        = errors.New("roster must have at least one participant")
	ErrInvalidPolicy      = errors.New("invalid rating policy")
)
