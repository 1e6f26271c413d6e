package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/foostrack/foostrack/internal/domain/match"
	"github.com/foostrack/foostrack/internal/domain/player"
	"github.com/foostrack/foostrack/internal/domain/rating"
	"github.com/foostrack/foostrack/internal/domain/team"
	"github.com/foostrack/foostrack/internal/platform/logging"
	"github.com/foostrack/foostrack/internal/platform/resilience"
)

const recalculateFlightKey = "ratings-recalculate"

// RecalculationService rebuilds every rating from the chronological match
// log. The stored ratings are never an input to the replay; they are only
// compared against its output to measure drift.
type RecalculationService struct {
	players  player.Repository
	teams    team.Repository
	matches  match.Repository
	applier  match.RatingsApplier
	calc     rating.Calculator
	baseline int
	flight   *resilience.SingleFlight
	logger   *logging.Logger
}

func NewRecalculationService(
	players player.Repository,
	teams team.Repository,
	matches match.Repository,
	applier match.RatingsApplier,
	calc rating.Calculator,
	baseline int,
	logger *logging.Logger,
) *RecalculationService {
	if logger == nil {
		logger = logging.Default()
	}

	return &RecalculationService{
		players:  players,
		teams:    teams,
		matches:  matches,
		applier:  applier,
		calc:     calc,
		baseline: baseline,
		flight:   &resilience.SingleFlight{},
		logger:   logger,
	}
}

// EvolutionStep is one player's movement in one replayed match.
type EvolutionStep struct {
	MatchID         string
	PlayerID        string
	Won             bool
	Before          int
	Delta           int
	After           int
	ProbabilityUsed float64
}

// RatingDrift is a player whose stored rating disagrees with the replay.
type RatingDrift struct {
	PlayerID string
	Stored   int
	Replayed int
}

type RecalculationReport struct {
	Baseline        int
	FinalRatings    map[string]int
	StoredRatings   map[string]int
	TeamRatings     map[string]int
	Drift           []RatingDrift
	Evolution       []EvolutionStep
	MatchesReplayed int
	Applied         bool
}

// Recalculate replays the full match history from the baseline and reports
// the result. With apply set, the replayed ratings are persisted in one
// atomic unit. Concurrent calls share a single replay via singleflight.
func (s *RecalculationService) Recalculate(ctx context.Context, apply bool) (RecalculationReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecalculationService.Recalculate")
	defer span.End()

	key := recalculateFlightKey
	if apply {
		key += "-apply"
	}

	result, err, shared := s.flight.Do(key, func() (any, error) {
		return s.recalculate(ctx, apply)
	})
	if err != nil {
		return RecalculationReport{}, err
	}
	if shared {
		s.logger.DebugContext(ctx, "recalculation shared with in-flight run")
	}

	return result.(RecalculationReport), nil
}

func (s *RecalculationService) recalculate(ctx context.Context, apply bool) (RecalculationReport, error) {
	started := time.Now()

	var (
		allPlayers []player.Player
		allTeams   []team.Team
		log        []match.WithParticipants

		playersErr, teamsErr, matchesErr error
	)

	var wg conc.WaitGroup
	wg.Go(func() {
		allPlayers, playersErr = s.players.List(ctx)
	})
	wg.Go(func() {
		allTeams, teamsErr = s.teams.List(ctx)
	})
	wg.Go(func() {
		log, matchesErr = s.matches.ListChronological(ctx)
	})
	wg.Wait()

	if playersErr != nil {
		return RecalculationReport{}, fmt.Errorf("list players: %w", playersErr)
	}
	if teamsErr != nil {
		return RecalculationReport{}, fmt.Errorf("list teams: %w", teamsErr)
	}
	if matchesErr != nil {
		return RecalculationReport{}, fmt.Errorf("list match log: %w", matchesErr)
	}

	stored := make(map[string]int, len(allPlayers))
	for _, p := range allPlayers {
		stored[p.ID] = p.Rating
	}

	tracked := make(map[string]int, len(allPlayers))
	evolution := make([]EvolutionStep, 0, len(log)*4)

	ratingOf := func(playerID string) int {
		if r, ok := tracked[playerID]; ok {
			return r
		}
		// First appearance in the log, or a player with no matches at all.
		return s.baseline
	}

	for _, m := range log {
		if err := ctx.Err(); err != nil {
			return RecalculationReport{}, err
		}

		winners := make([]rating.Participant, 0, len(m.WinnerPlayerIDs))
		for _, id := range m.WinnerPlayerIDs {
			winners = append(winners, rating.Participant{ID: id, Rating: ratingOf(id)})
		}
		losers := make([]rating.Participant, 0, len(m.LoserPlayerIDs))
		for _, id := range m.LoserPlayerIDs {
			losers = append(losers, rating.Participant{ID: id, Rating: ratingOf(id)})
		}

		outcome, err := s.calc.ProcessOutcome(winners, losers)
		if err != nil {
			return RecalculationReport{}, fmt.Errorf("replay match %s: %w", m.ID, err)
		}

		for _, side := range []struct {
			ids         []string
			won         bool
			probability float64
		}{
			{m.WinnerPlayerIDs, true, outcome.WinnerProbability},
			{m.LoserPlayerIDs, false, 1 - outcome.WinnerProbability},
		} {
			for _, id := range side.ids {
				d := outcome.Deltas[id]
				tracked[id] = d.After
				evolution = append(evolution, EvolutionStep{
					MatchID:         m.ID,
					PlayerID:        id,
					Won:             side.won,
					Before:          d.Before,
					Delta:           d.Delta,
					After:           d.After,
					ProbabilityUsed: side.probability,
				})
			}
		}
	}

	final := make(map[string]int, len(allPlayers))
	for _, p := range allPlayers {
		final[p.ID] = ratingOf(p.ID)
	}
	// The log can reference players the roster query no longer returns;
	// their replayed ratings are kept so team math stays defined.
	for id, r := range tracked {
		if _, ok := final[id]; !ok {
			final[id] = r
		}
	}

	teamRatings := make(map[string]int, len(allTeams))
	for _, t := range allTeams {
		one, okOne := final[t.PlayerOneID]
		two, okTwo := final[t.PlayerTwoID]
		if !okOne {
			one = s.baseline
		}
		if !okTwo {
			two = s.baseline
		}
		tr, err := s.calc.TeamRating(one, two)
		if err != nil {
			return RecalculationReport{}, fmt.Errorf("team %s rating: %w", t.ID, err)
		}
		teamRatings[t.ID] = tr
	}

	drift := make([]RatingDrift, 0)
	for _, p := range allPlayers {
		if replayed := final[p.ID]; replayed != p.Rating {
			drift = append(drift, RatingDrift{PlayerID: p.ID, Stored: p.Rating, Replayed: replayed})
		}
	}
	sort.Slice(drift, func(i, j int) bool { return drift[i].PlayerID < drift[j].PlayerID })

	report := RecalculationReport{
		Baseline:        s.baseline,
		FinalRatings:    final,
		StoredRatings:   stored,
		TeamRatings:     teamRatings,
		Drift:           drift,
		Evolution:       evolution,
		MatchesReplayed: len(log),
	}

	if apply {
		if err := s.applier.ApplyRatings(ctx, final, teamRatings); err != nil {
			return RecalculationReport{}, fmt.Errorf("apply replayed ratings: %w", err)
		}
		report.Applied = true
	}

	s.logger.InfoContext(ctx, "history replay finished",
		"matches_replayed", report.MatchesReplayed,
		"players", len(final),
		"drifted", len(drift),
		"applied", report.Applied,
		"took", time.Since(started).String(),
	)

	return report, nil
}
