package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessOutcomeEvenMatch(t *testing.T) {
	t.Parallel()
	calc := mustCalculator(t)

	winners := []Participant{{ID: "w1", Rating: 1500}, {ID: "w2", Rating: 1500}}
	losers := []Participant{{ID: "l1", Rating: 1500}, {ID: "l2", Rating: 1500}}

	outcome, err := calc.ProcessOutcome(winners, losers)
	require.NoError(t, err)

	assert.Equal(t, 1500, outcome.WinnerTeamRating)
	assert.Equal(t, 1500, outcome.LoserTeamRating)
	assert.InDelta(t, 0.5, outcome.WinnerProbability, 1e-12)
	require.Len(t, outcome.Deltas, 4)

	for _, id := range []string{"w1", "w2"} {
		d := outcome.Deltas[id]
		assert.Equal(t, Delta{Before: 1500, After: 1525, Delta: 25}, d, "winner %s", id)
	}
	for _, id := range []string{"l1", "l2"} {
		d := outcome.Deltas[id]
		assert.Equal(t, Delta{Before: 1500, After: 1475, Delta: -25}, d, "loser %s", id)
	}
}

func TestProcessOutcomeTeammatesWithDifferentRatingsMoveDifferently(t *testing.T) {
	t.Parallel()
	calc := mustCalculator(t)

	// Same shared probability, but w1 sits in the K=70 tier and w2 in the
	// K=30 tier, so the veteran moves less than the rookie.
	winners := []Participant{{ID: "w1", Rating: 1100}, {ID: "w2", Rating: 1900}}
	losers := []Participant{{ID: "l1", Rating: 1500}, {ID: "l2", Rating: 1500}}

	outcome, err := calc.ProcessOutcome(winners, losers)
	require.NoError(t, err)

	// Both teams average to 1500, so the shared probability is 0.5.
	assert.InDelta(t, 0.5, outcome.WinnerProbability, 1e-12)
	assert.Equal(t, 35, outcome.Deltas["w1"].Delta)
	assert.Equal(t, 15, outcome.Deltas["w2"].Delta)
	assert.Greater(t, outcome.Deltas["w1"].Delta, outcome.Deltas["w2"].Delta)
}

func TestProcessOutcomeNeverMutatesInputs(t *testing.T) {
	t.Parallel()
	calc := mustCalculator(t)

	winners := []Participant{{ID: "w1", Rating: 1600}, {ID: "w2", Rating: 1400}}
	losers := []Participant{{ID: "l1", Rating: 1300}, {ID: "l2", Rating: 1700}}
	winnersCopy := append([]Participant(nil), winners...)
	losersCopy := append([]Participant(nil), losers...)

	_, err := calc.ProcessOutcome(winners, losers)
	require.NoError(t, err)

	assert.Equal(t, winnersCopy, winners)
	assert.Equal(t, losersCopy, losers)
}

func TestProcessOutcomeInvariants(t *testing.T) {
	t.Parallel()
	calc := mustCalculator(t)

	winners := []Participant{{ID: "w1", Rating: 1623}, {ID: "w2", Rating: 1288}}
	losers := []Participant{{ID: "l1", Rating: 1105}, {ID: "l2", Rating: 1994}}

	outcome, err := calc.ProcessOutcome(winners, losers)
	require.NoError(t, err)
	require.Len(t, outcome.Deltas, 4)

	for id, d := range outcome.Deltas {
		assert.Equal(t, d.Delta, d.After-d.Before, "participant %s", id)
		assert.GreaterOrEqual(t, d.After, 0, "participant %s", id)
	}
	for _, id := range []string{"w1", "w2"} {
		assert.GreaterOrEqual(t, outcome.Deltas[id].Delta, 0, "winners never lose points")
	}
	for _, id := range []string{"l1", "l2"} {
		assert.LessOrEqual(t, outcome.Deltas[id].Delta, 0, "losers never gain points")
	}
}

func TestProcessOutcomeClampsRatingsAtZero(t *testing.T) {
	t.Parallel()
	calc := mustCalculator(t)

	winners := []Participant{{ID: "w1", Rating: 300}, {ID: "w2", Rating: 300}}
	losers := []Participant{{ID: "l1", Rating: 5}, {ID: "l2", Rating: 10}}

	outcome, err := calc.ProcessOutcome(winners, losers)
	require.NoError(t, err)

	for _, id := range []string{"l1", "l2"} {
		d := outcome.Deltas[id]
		assert.Equal(t, 0, d.After, "loser %s bottoms out at zero", id)
		assert.Equal(t, d.After-d.Before, d.Delta, "loser %s keeps the delta invariant", id)
	}
}

func TestProcessOutcomeFailures(t *testing.T) {
	t.Parallel()
	calc := mustCalculator(t)

	t.Run("empty winner roster", func(t *testing.T) {
		_, err := calc.ProcessOutcome(nil, []Participant{{ID: "l1", Rating: 1500}})
		assert.ErrorIs(t, err, ErrEmptyRoster)
	})

	t.Run("empty loser roster", func(t *testing.T) {
		_, err := calc.ProcessOutcome([]Participant{{ID: "w1", Rating: 1500}}, nil)
		assert.ErrorIs(t, err, ErrEmptyRoster)
	})

	t.Run("negative rating propagates", func(t *testing.T) {
		winners := []Participant{{ID: "w1", Rating: 1500}, {ID: "w2", Rating: -3}}
		losers := []Participant{{ID: "l1", Rating: 1500}, {ID: "l2", Rating: 1500}}
		_, err := calc.ProcessOutcome(winners, losers)
		assert.ErrorIs(t, err, ErrInvalidRating)
	})
}
