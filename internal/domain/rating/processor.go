package rating

import "github.com/cockroachdb/errors"

const (
	resultLoss = 0
	resultWin  = 1
)

// Participant is a roster member with their rating at match time.
type Participant struct {
	ID     string
	Rating int
}

// Delta is the rating movement of one participant for one match.
type Delta struct {
	Before int
	After  int
	Delta  int
}

// Outcome is the full result of processing one match: one delta per
// participant plus the team-level numbers the deltas were derived from.
type Outcome struct {
	Deltas            map[string]Delta
	WinnerTeamRating  int
	LoserTeamRating   int
	WinnerProbability float64
}

// ProcessOutcome turns a decided match between two rosters into per-player
// rating deltas. The win probability is computed once at team level and
// shared by teammates, while the K factor is selected per player from their
// own rating, so two teammates with different ratings move by different
// amounts. Inputs are never mutated.
func (c Calculator) ProcessOutcome(winners, losers []Participant) (Outcome, error) {
	if len(winners) == 0 || len(losers) == 0 {
		return Outcome{}, errors.Wrap(ErrEmptyRoster, "both rosters must be populated")
	}

	winnerTeam, err := rosterRating(c, winners)
	if err != nil {
		return Outcome{}, err
	}
	loserTeam, err := rosterRating(c, losers)
	if err != nil {
		return Outcome{}, err
	}

	winnerProbability, err := c.WinProbability(winnerTeam, loserTeam)
	if err != nil {
		return Outcome{}, err
	}
	loserProbability := 1 - winnerProbability

	deltas := make(map[string]Delta, len(winners)+len(losers))
	for _, p := range winners {
		delta, err := c.RatingDelta(p.Rating, winnerProbability, resultWin)
		if err != nil {
			return Outcome{}, err
		}
		deltas[p.ID] = Delta{Before: p.Rating, After: p.Rating + delta, Delta: delta}
	}
	for _, p := range losers {
		delta, err := c.RatingDelta(p.Rating, loserProbability, resultLoss)
		if err != nil {
			return Outcome{}, err
		}
		// Ratings never go below zero; the recorded delta reflects the
		// clamped movement so after-before always equals delta.
		after := p.Rating + delta
		if after < 0 {
			after = 0
		}
		deltas[p.ID] = Delta{Before: p.Rating, After: after, Delta: after - p.Rating}
	}

	return Outcome{
		Deltas:            deltas,
		WinnerTeamRating:  winnerTeam,
		LoserTeamRating:   loserTeam,
		WinnerProbability: winnerProbability,
	}, nil
}

// rosterRating folds a roster into its team rating. Rosters are pairs in
// this domain, but the fold keeps the math defined for any non-empty size.
func rosterRating(c Calculator, roster []Participant) (int, error) {
	team := roster[0].Rating
	if team < 0 {
		return 0, errors.Wrapf(ErrInvalidRating, "participant %s", roster[0].ID)
	}
	for _, p := range roster[1:] {
		var err error
		team, err = c.TeamRating(team, p.Rating)
		if err != nil {
			return 0, errors.Wrapf(err, "participant %s", p.ID)
		}
	}
	return team, nil
}
