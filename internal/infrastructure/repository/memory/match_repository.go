package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/foostrack/foostrack/internal/domain/match"
)

// MatchRepository holds matches and implements the atomic recording against
// the sibling in-memory repositories. One mutex guards the whole recording
// so it has the same all-or-nothing, serialized behavior as the database
// transaction.
type MatchRepository struct {
	mu      sync.RWMutex
	matches map[string]match.WithParticipants
	order   []string
	deleted map[string]bool

	players   *PlayerRepository
	teams     *TeamRepository
	histories *HistoryRepository
}

func NewMatchRepository(players *PlayerRepository, teams *TeamRepository, histories *HistoryRepository) *MatchRepository {
	return &MatchRepository{
		matches:   make(map[string]match.WithParticipants),
		deleted:   make(map[string]bool),
		players:   players,
		teams:     teams,
		histories: histories,
	}
}

func (r *MatchRepository) GetByID(_ context.Context, matchID string) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.matches[matchID]
	if !ok || r.deleted[matchID] {
		return match.Match{}, false, nil
	}

	return m.Match, true, nil
}

func (r *MatchRepository) List(_ context.Context, limit int) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		id := r.order[i]
		if r.deleted[id] {
			continue
		}
		out = append(out, r.matches[id].Match)
		if limit > 0 && len(out) == limit {
			break
		}
	}

	return out, nil
}

func (r *MatchRepository) ListChronological(_ context.Context) ([]match.WithParticipants, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.WithParticipants, 0, len(r.order))
	for _, id := range r.order {
		if r.deleted[id] {
			continue
		}
		out = append(out, r.matches[id])
	}

	return out, nil
}

func (r *MatchRepository) Delete(_ context.Context, matchID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.matches[matchID]; !ok || r.deleted[matchID] {
		return fmt.Errorf("match %s not found", matchID)
	}
	r.deleted[matchID] = true

	return nil
}

func (r *MatchRepository) Record(ctx context.Context, rec match.Recording) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.players.mu.Lock()
	defer r.players.mu.Unlock()

	for _, e := range rec.HistoryEntries {
		stored, ok := r.players.players[e.PlayerID]
		if !ok {
			return fmt.Errorf("player %s not found", e.PlayerID)
		}
		if stored.Rating != e.RatingBefore {
			return fmt.Errorf("player %s: rating %d was computed from %d: %w",
				e.PlayerID, stored.Rating, e.RatingBefore, match.ErrStaleRatings)
		}
	}

	winner, winnerOK, _ := r.teams.GetByID(ctx, rec.Match.WinnerTeamID)
	loser, loserOK, _ := r.teams.GetByID(ctx, rec.Match.LoserTeamID)
	if !winnerOK || !loserOK {
		return fmt.Errorf("recording references unknown team")
	}

	r.matches[rec.Match.ID] = match.WithParticipants{
		Match:           rec.Match,
		WinnerPlayerIDs: winner.PlayerIDs(),
		LoserPlayerIDs:  loser.PlayerIDs(),
	}
	r.order = append(r.order, rec.Match.ID)
	r.histories.append(rec.HistoryEntries)

	for playerID, playerRating := range rec.PlayerRatings {
		r.players.setRating(playerID, playerRating)
	}

	recordedAt := rec.RecordedAt
	r.teams.mu.Lock()
	for teamID, teamRating := range rec.TeamRatings {
		r.teams.setRating(teamID, teamRating, &recordedAt)
	}
	r.teams.mu.Unlock()

	return nil
}

func (r *MatchRepository) ApplyRatings(_ context.Context, playerRatings map[string]int, teamRatings map[string]int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.players.mu.Lock()
	for playerID, playerRating := range playerRatings {
		r.players.setRating(playerID, playerRating)
	}
	r.players.mu.Unlock()

	r.teams.mu.Lock()
	for teamID, teamRating := range teamRatings {
		r.teams.setRating(teamID, teamRating, nil)
	}
	r.teams.mu.Unlock()

	return nil
}
