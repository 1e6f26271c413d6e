package rating

import "github.com/cockroachdb/errors"

// Policy holds the K-factor tier table. Breakpoints are the exclusive upper
// bounds of each tier, Factors the K applied within it: a rating below
// Breakpoints[0] uses Factors[0], one at or above Breakpoints[len-1] uses the
// last factor. The table is configuration, never a constant baked into the
// calculator.
type Policy struct {
	Breakpoints []int
	Factors     []int
}

// DefaultPolicy is the canonical tier table: new players move fast, the top
// of the ladder moves slowly.
func DefaultPolicy() Policy {
	return Policy{
		Breakpoints: []int{1200, 1800},
		Factors:     []int{70, 50, 30},
	}
}

func (p Policy) Validate() error {
	if len(p.Breakpoints) == 0 {
		return errors.Wrap(ErrInvalidPolicy, "at least one breakpoint is required")
	}
	if len(p.Factors) != len(p.Breakpoints)+1 {
		return errors.Wrapf(ErrInvalidPolicy,
			"expected %d factors for %d breakpoints, got %d",
			len(p.Breakpoints)+1, len(p.Breakpoints), len(p.Factors))
	}

	for i, breakpoint := range p.Breakpoints {
		if breakpoint <= 0 {
			return errors.Wrapf(ErrInvalidPolicy, "breakpoint %d must be positive", i)
		}
		if i > 0 && breakpoint <= p.Breakpoints[i-1] {
			return errors.Wrap(ErrInvalidPolicy, "breakpoints must be strictly ascending")
		}
	}

	for i, factor := range p.Factors {
		if factor <= 0 {
			return errors.Wrapf(ErrInvalidPolicy, "factor %d must be positive", i)
		}
		if i > 0 && factor >= p.Factors[i-1] {
			return errors.Wrap(ErrInvalidPolicy, "factors must be strictly decreasing")
		}
	}

	return nil
}

// factorFor returns the K factor for a non-negative rating.
func (p Policy) factorFor(rating int) int {
	for i, breakpoint := range p.Breakpoints {
		if rating < breakpoint {
			return p.Factors[i]
		}
	}
	return p.Factors[len(p.Factors)-1]
}
