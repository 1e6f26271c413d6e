package rating

import (
	"math"

	"github.com/cockroachdb/errors"
)

// Elo logistic curve scale: a 400 point gap means 10:1 expected odds.
const probabilityScale = 400

// Calculator implements the rating arithmetic. It is pure and stateless; the
// only knob is the injected K-factor policy.
type Calculator struct {
	policy Policy
}

func NewCalculator(policy Policy) (Calculator, error) {
	if err := policy.Validate(); err != nil {
		return Calculator{}, err
	}
	return Calculator{policy: policy}, nil
}

func (c Calculator) Policy() Policy {
	return c.policy
}

// TeamRating is the truncated mean of the two members' ratings. Symmetric in
// its arguments.
func (c Calculator) TeamRating(a, b int) (int, error) {
	if a < 0 || b < 0 {
		return 0, errors.Wrapf(ErrInvalidRating, "team rating inputs %d, %d", a, b)
	}
	return (a + b) / 2, nil
}

// WinProbability is the expected chance that a rating of a beats a rating of
// b. WinProbability(a,b) + WinProbability(b,a) == 1.
func (c Calculator) WinProbability(a, b int) (float64, error) {
	if a < 0 || b < 0 {
		return 0, errors.Wrapf(ErrInvalidRating, "win probability inputs %d, %d", a, b)
	}
	return 1 / (1 + math.Pow(10, float64(b-a)/probabilityScale)), nil
}

// KFactor selects the policy tier for a rating.
func (c Calculator) KFactor(rating int) (int, error) {
	if rating < 0 {
		return 0, errors.Wrapf(ErrInvalidRating, "k-factor input %d", rating)
	}
	return c.policy.factorFor(rating), nil
}

// RatingDelta is floor(k * (result - probability)) with result 1 for a win
// and 0 for a loss.
func (c Calculator) RatingDelta(rating int, probability float64, result int) (int, error) {
	if rating < 0 {
		return 0, errors.Wrapf(ErrInvalidRating, "rating delta input %d", rating)
	}
	if probability < 0 || probability > 1 || math.IsNaN(probability) {
		return 0, errors.Wrapf(ErrInvalidProbability, "got %f", probability)
	}
	if result != 0 && result != 1 {
		return 0, errors.Wrapf(ErrInvalidResult, "got %d", result)
	}

	k, err := c.KFactor(rating)
	if err != nil {
		return 0, err
	}

	return int(math.Floor(float64(k) * (float64(result) - probability))), nil
}
