package rating

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCalculator(t *testing.T) Calculator {
	t.Helper()
	calc, err := NewCalculator(DefaultPolicy())
	require.NoError(t, err)
	return calc
}

func TestNewCalculatorRejectsBadPolicy(t *testing.T) {
	t.Parallel()

	cases := map[string]Policy{
		"no breakpoints":          {Factors: []int{50}},
		"factor count mismatch":   {Breakpoints: []int{1200}, Factors: []int{50}},
		"descending breakpoints":  {Breakpoints: []int{1800, 1200}, Factors: []int{70, 50, 30}},
		"non-decreasing factors":  {Breakpoints: []int{1200, 1800}, Factors: []int{30, 50, 70}},
		"zero factor":             {Breakpoints: []int{1200}, Factors: []int{50, 0}},
		"non-positive breakpoint": {Breakpoints: []int{0, 1800}, Factors: []int{70, 50, 30}},
	}

	for name, policy := range cases {
		policy := policy
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := NewCalculator(policy)
			assert.ErrorIs(t, err, ErrInvalidPolicy)
		})
	}
}

func TestTeamRating(t *testing.T) {
	t.Parallel()
	calc := mustCalculator(t)

	t.Run("truncated mean", func(t *testing.T) {
		got, err := calc.TeamRating(1500, 1501)
		require.NoError(t, err)
		assert.Equal(t, 1500, got)
	})

	t.Run("symmetric", func(t *testing.T) {
		pairs := [][2]int{{0, 0}, {100, 3000}, {1499, 1500}, {1200, 1800}}
		for _, pair := range pairs {
			ab, err := calc.TeamRating(pair[0], pair[1])
			require.NoError(t, err)
			ba, err := calc.TeamRating(pair[1], pair[0])
			require.NoError(t, err)
			assert.Equal(t, ab, ba, "teamRating(%d,%d)", pair[0], pair[1])
		}
	})

	t.Run("negative input", func(t *testing.T) {
		_, err := calc.TeamRating(-1, 1500)
		assert.ErrorIs(t, err, ErrInvalidRating)
		_, err = calc.TeamRating(1500, -1)
		assert.ErrorIs(t, err, ErrInvalidRating)
	})
}

func TestWinProbability(t *testing.T) {
	t.Parallel()
	calc := mustCalculator(t)

	t.Run("even match is a coin flip", func(t *testing.T) {
		for _, r := range []int{0, 800, 1500, 2400} {
			got, err := calc.WinProbability(r, r)
			require.NoError(t, err)
			assert.InDelta(t, 0.5, got, 1e-12, "winProbability(%d,%d)", r, r)
		}
	})

	t.Run("complement law", func(t *testing.T) {
		pairs := [][2]int{{1500, 1500}, {1200, 1800}, {0, 2400}, {1650, 1507}}
		for _, pair := range pairs {
			ab, err := calc.WinProbability(pair[0], pair[1])
			require.NoError(t, err)
			ba, err := calc.WinProbability(pair[1], pair[0])
			require.NoError(t, err)
			assert.InDelta(t, 1.0, ab+ba, 1e-9)
			assert.Greater(t, ab, 0.0)
			assert.Less(t, ab, 1.0)
		}
	})

	t.Run("400 point gap means 10 to 1 odds", func(t *testing.T) {
		got, err := calc.WinProbability(1900, 1500)
		require.NoError(t, err)
		assert.InDelta(t, 10.0/11.0, got, 1e-9)
	})

	t.Run("negative input", func(t *testing.T) {
		_, err := calc.WinProbability(-10, 1500)
		assert.ErrorIs(t, err, ErrInvalidRating)
	})
}

func TestKFactorIsNonIncreasingStepFunction(t *testing.T) {
	t.Parallel()
	calc := mustCalculator(t)

	previous := math.MaxInt
	for rating := 0; rating <= 2400; rating += 50 {
		k, err := calc.KFactor(rating)
		require.NoError(t, err)
		assert.LessOrEqual(t, k, previous, "kFactor must not increase at rating %d", rating)
		previous = k
	}

	// Tier boundaries are exclusive upper bounds.
	for rating, want := range map[int]int{
		0:    70,
		1199: 70,
		1200: 50,
		1500: 50,
		1799: 50,
		1800: 30,
		2400: 30,
	} {
		k, err := calc.KFactor(rating)
		require.NoError(t, err)
		assert.Equal(t, want, k, "kFactor(%d)", rating)
	}

	_, err := calc.KFactor(-1)
	assert.ErrorIs(t, err, ErrInvalidRating)
}

func TestRatingDelta(t *testing.T) {
	t.Parallel()
	calc := mustCalculator(t)

	t.Run("even win moves half a K", func(t *testing.T) {
		got, err := calc.RatingDelta(1500, 0.5, 1)
		require.NoError(t, err)
		assert.Equal(t, 25, got)
	})

	t.Run("even loss mirrors the win", func(t *testing.T) {
		got, err := calc.RatingDelta(1500, 0.5, 0)
		require.NoError(t, err)
		assert.Equal(t, -25, got)
	})

	t.Run("floors toward negative infinity", func(t *testing.T) {
		// K=50, 50 * (1 - 0.55) = 22.5 -> 22; 50 * (0 - 0.45) = -22.5 -> -23.
		win, err := calc.RatingDelta(1500, 0.55, 1)
		require.NoError(t, err)
		assert.Equal(t, 22, win)

		loss, err := calc.RatingDelta(1500, 0.45, 0)
		require.NoError(t, err)
		assert.Equal(t, -23, loss)
	})

	t.Run("domain violations", func(t *testing.T) {
		_, err := calc.RatingDelta(-1, 0.5, 1)
		assert.ErrorIs(t, err, ErrInvalidRating)

		_, err = calc.RatingDelta(1500, -0.01, 1)
		assert.ErrorIs(t, err, ErrInvalidProbability)

		_, err = calc.RatingDelta(1500, 1.01, 1)
		assert.ErrorIs(t, err, ErrInvalidProbability)

		_, err = calc.RatingDelta(1500, math.NaN(), 1)
		assert.ErrorIs(t, err, ErrInvalidProbability)

		_, err = calc.RatingDelta(1500, 0.5, 2)
		assert.ErrorIs(t, err, ErrInvalidResult)

		_, err = calc.RatingDelta(1500, 0.5, -1)
		assert.ErrorIs(t, err, ErrInvalidResult)
	})
}
