package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/foostrack/foostrack/internal/domain/history"
	"github.com/foostrack/foostrack/internal/domain/match"
	"github.com/foostrack/foostrack/internal/domain/player"
	"github.com/foostrack/foostrack/internal/domain/rating"
	"github.com/foostrack/foostrack/internal/domain/team"
	idgen "github.com/foostrack/foostrack/internal/platform/id"
	"github.com/foostrack/foostrack/internal/platform/logging"
	"github.com/foostrack/foostrack/internal/platform/resilience"
)

// staleRecomputeAttempts bounds how often a recording is recomputed from
// fresh reads when the optimistic rating check fails. The atomic write block
// itself is never replayed; each attempt is a new read-compute-write cycle.
const staleRecomputeAttempts = 3

// MatchRecordedEvent is handed to the notifier after a successful recording.
type MatchRecordedEvent struct {
	MatchID      string
	WinnerTeamID string
	LoserTeamID  string
	IsShutout    bool
	PlayedAt     time.Time
	PlayerDeltas map[string]int
}

// MatchNotifier publishes recorded matches to an external sink. Failures are
// logged, never surfaced; notification is strictly fire-and-forget.
type MatchNotifier interface {
	MatchRecorded(ctx context.Context, event MatchRecordedEvent) error
}

// MatchService is the only place where rating state changes.
type MatchService struct {
	players   player.Repository
	teams     team.Repository
	matches   match.Repository
	histories history.Repository
	recorder  match.Recorder
	calc      rating.Calculator
	ids       idgen.Generator
	notifier  MatchNotifier
	readRetry resilience.Retry
	logger    *logging.Logger
	now       func() time.Time
}

func NewMatchService(
	players player.Repository,
	teams team.Repository,
	matches match.Repository,
	histories history.Repository,
	recorder match.Recorder,
	calc rating.Calculator,
	ids idgen.Generator,
	notifier MatchNotifier,
	readRetry resilience.Retry,
	logger *logging.Logger,
) *MatchService {
	if logger == nil {
		logger = logging.Default()
	}

	return &MatchService{
		players:   players,
		teams:     teams,
		matches:   matches,
		histories: histories,
		recorder:  recorder,
		calc:      calc,
		ids:       ids,
		notifier:  notifier,
		readRetry: readRetry,
		logger:    logger,
		now:       time.Now,
	}
}

type RecordMatchInput struct {
	WinnerTeamID string
	LoserTeamID  string
	PlayedAt     time.Time
	IsShutout    bool
	Notes        string
}

// RecordedMatch is the created match together with each player's movement.
type RecordedMatch struct {
	Match        match.Match
	Deltas       map[string]rating.Delta
	TeamRatings  map[string]int
	WinnerWinPct float64
}

// RecordMatch validates the request, turns the outcome into per-player
// deltas and persists everything as one atomic unit. When the recorder
// reports that the ratings it was computed from are stale, the whole
// read-compute-write cycle is redone from scratch; a failure inside the
// write itself is surfaced without replaying it.
func (s *MatchService) RecordMatch(ctx context.Context, input RecordMatchInput) (RecordedMatch, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.RecordMatch")
	defer span.End()

	winnerID := strings.TrimSpace(input.WinnerTeamID)
	loserID := strings.TrimSpace(input.LoserTeamID)
	if winnerID == "" || loserID == "" {
		return RecordedMatch{}, fmt.Errorf("%w: winner and loser team ids are required", ErrInvalidInput)
	}
	if winnerID == loserID {
		return RecordedMatch{}, fmt.Errorf("%w: winner and loser team must be different", ErrInvalidInput)
	}

	playedAt := input.PlayedAt
	if playedAt.IsZero() {
		playedAt = s.now().UTC()
	}

	var lastErr error
	for attempt := 0; attempt < staleRecomputeAttempts; attempt++ {
		recording, result, err := s.prepareRecording(ctx, winnerID, loserID, playedAt, input)
		if err != nil {
			return RecordedMatch{}, err
		}

		if err := s.recorder.Record(ctx, recording); err != nil {
			if errors.Is(err, match.ErrStaleRatings) {
				s.logger.WarnContext(ctx, "ratings changed mid-recording, recomputing",
					"match_id", recording.Match.ID, "attempt", attempt+1)
				lastErr = err
				continue
			}
			return RecordedMatch{}, fmt.Errorf("%w: %v", ErrRecordingFailed, err)
		}

		s.logger.InfoContext(ctx, "match recorded",
			"match_id", recording.Match.ID,
			"winner_team_id", winnerID,
			"loser_team_id", loserID,
			"is_shutout", input.IsShutout,
		)
		s.notifyRecorded(ctx, recording, result)

		return result, nil
	}

	return RecordedMatch{}, fmt.Errorf("%w: %v", ErrRecordingFailed, lastErr)
}

func (s *MatchService) prepareRecording(
	ctx context.Context,
	winnerID, loserID string,
	playedAt time.Time,
	input RecordMatchInput,
) (match.Recording, RecordedMatch, error) {
	winner, err := s.loadTeam(ctx, winnerID)
	if err != nil {
		return match.Recording{}, RecordedMatch{}, err
	}
	loser, err := s.loadTeam(ctx, loserID)
	if err != nil {
		return match.Recording{}, RecordedMatch{}, err
	}

	winners, losers, err := s.loadRosters(ctx, winner, loser)
	if err != nil {
		return match.Recording{}, RecordedMatch{}, err
	}

	outcome, err := s.calc.ProcessOutcome(winners, losers)
	if err != nil {
		return match.Recording{}, RecordedMatch{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	matchID, err := s.ids.NewID()
	if err != nil {
		return match.Recording{}, RecordedMatch{}, fmt.Errorf("generate match id: %w", err)
	}

	now := s.now().UTC()
	created := match.Match{
		ID:           matchID,
		WinnerTeamID: winner.ID,
		LoserTeamID:  loser.ID,
		IsShutout:    input.IsShutout,
		Notes:        strings.TrimSpace(input.Notes),
		PlayedAt:     playedAt,
		CreatedAt:    now,
	}

	playerRatings := make(map[string]int, len(outcome.Deltas))
	entries := make([]history.Entry, 0, len(outcome.Deltas))
	for _, roster := range [][]rating.Participant{winners, losers} {
		for _, participant := range roster {
			delta := outcome.Deltas[participant.ID]
			entryID, err := s.ids.NewID()
			if err != nil {
				return match.Recording{}, RecordedMatch{}, fmt.Errorf("generate history id: %w", err)
			}
			entries = append(entries, history.Entry{
				ID:           entryID,
				PlayerID:     participant.ID,
				MatchID:      matchID,
				RatingBefore: delta.Before,
				RatingAfter:  delta.After,
				Difference:   delta.Delta,
				CreatedAt:    now,
			})
			playerRatings[participant.ID] = delta.After
		}
	}

	teamRatings := make(map[string]int, 2)
	for _, t := range []team.Team{winner, loser} {
		updated, err := s.calc.TeamRating(playerRatings[t.PlayerOneID], playerRatings[t.PlayerTwoID])
		if err != nil {
			return match.Recording{}, RecordedMatch{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		teamRatings[t.ID] = updated
	}

	recording := match.Recording{
		Match:          created,
		HistoryEntries: entries,
		PlayerRatings:  playerRatings,
		TeamRatings:    teamRatings,
		RecordedAt:     now,
	}
	result := RecordedMatch{
		Match:        created,
		Deltas:       outcome.Deltas,
		TeamRatings:  teamRatings,
		WinnerWinPct: outcome.WinnerProbability,
	}

	return recording, result, nil
}

// loadTeam is an idempotent read and therefore the one place retry applies.
func (s *MatchService) loadTeam(ctx context.Context, teamID string) (team.Team, error) {
	var loaded team.Team
	err := s.readRetry.Do(ctx, func(ctx context.Context) error {
		t, found, err := s.teams.GetByID(ctx, teamID)
		if err != nil {
			return fmt.Errorf("load team %s: %w", teamID, err)
		}
		if !found {
			return fmt.Errorf("%w: team %s", ErrNotFound, teamID)
		}
		loaded = t
		return nil
	})
	if err != nil {
		return team.Team{}, err
	}

	return loaded, nil
}

func (s *MatchService) loadRosters(
	ctx context.Context,
	winner, loser team.Team,
) (winners, losers []rating.Participant, err error) {
	for _, id := range winner.PlayerIDs() {
		for _, other := range loser.PlayerIDs() {
			if id == other {
				return nil, nil, fmt.Errorf("%w: player %s is on both teams", ErrInvalidInput, id)
			}
		}
	}

	ids := append(append([]string(nil), winner.PlayerIDs()...), loser.PlayerIDs()...)

	var loaded []player.Player
	if err := s.readRetry.Do(ctx, func(ctx context.Context) error {
		players, err := s.players.GetByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("load players: %w", err)
		}
		loaded = players
		return nil
	}); err != nil {
		return nil, nil, err
	}

	byID := make(map[string]player.Player, len(loaded))
	for _, p := range loaded {
		byID[p.ID] = p
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, nil, fmt.Errorf("%w: player %s", ErrNotFound, id)
		}
	}

	toParticipants := func(t team.Team) []rating.Participant {
		out := make([]rating.Participant, 0, 2)
		for _, id := range t.PlayerIDs() {
			out = append(out, rating.Participant{ID: id, Rating: byID[id].Rating})
		}
		return out
	}

	return toParticipants(winner), toParticipants(loser), nil
}

func (s *MatchService) notifyRecorded(ctx context.Context, recording match.Recording, result RecordedMatch) {
	if s.notifier == nil {
		return
	}

	deltas := make(map[string]int, len(result.Deltas))
	for id, d := range result.Deltas {
		deltas[id] = d.Delta
	}
	event := MatchRecordedEvent{
		MatchID:      recording.Match.ID,
		WinnerTeamID: recording.Match.WinnerTeamID,
		LoserTeamID:  recording.Match.LoserTeamID,
		IsShutout:    recording.Match.IsShutout,
		PlayedAt:     recording.Match.PlayedAt,
		PlayerDeltas: deltas,
	}

	notifyCtx := context.WithoutCancel(ctx)
	go func() {
		if err := s.notifier.MatchRecorded(notifyCtx, event); err != nil {
			s.logger.WarnContext(notifyCtx, "match notification failed",
				"match_id", event.MatchID, "error", err)
		}
	}()
}

type MatchDetails struct {
	Match   match.Match
	History []history.Entry
}

func (s *MatchService) GetMatch(ctx context.Context, matchID string) (MatchDetails, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.GetMatch")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return MatchDetails{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	m, found, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return MatchDetails{}, fmt.Errorf("load match %s: %w", matchID, err)
	}
	if !found {
		return MatchDetails{}, fmt.Errorf("%w: match %s", ErrNotFound, matchID)
	}

	entries, err := s.histories.ListByMatch(ctx, matchID)
	if err != nil {
		return MatchDetails{}, fmt.Errorf("load match history: %w", err)
	}

	return MatchDetails{Match: m, History: entries}, nil
}

func (s *MatchService) ListMatches(ctx context.Context, limit int) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.ListMatches")
	defer span.End()

	matches, err := s.matches.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	return matches, nil
}

// DeleteMatchResult reports the deletion and the fact that stored ratings no
// longer follow from the remaining history.
type DeleteMatchResult struct {
	MatchID      string
	RatingsStale bool
}

// DeleteMatch removes the match record only. It deliberately does not
// reverse the rating deltas or drop history entries: teammates may have
// played intervening matches, so the only safe repair is an explicit full
// recalculation, which the result flags for the caller.
func (s *MatchService) DeleteMatch(ctx context.Context, matchID string) (DeleteMatchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.DeleteMatch")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return DeleteMatchResult{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	_, found, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return DeleteMatchResult{}, fmt.Errorf("load match %s: %w", matchID, err)
	}
	if !found {
		return DeleteMatchResult{}, fmt.Errorf("%w: match %s", ErrNotFound, matchID)
	}

	if err := s.matches.Delete(ctx, matchID); err != nil {
		return DeleteMatchResult{}, fmt.Errorf("delete match %s: %w", matchID, err)
	}

	s.logger.WarnContext(ctx, "match deleted, stored ratings now diverge from history",
		"match_id", matchID)

	return DeleteMatchResult{MatchID: matchID, RatingsStale: true}, nil
}
