package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/foostrack/foostrack/internal/domain/team"
)

type TeamRepository struct {
	mu    sync.RWMutex
	teams map[string]team.Team
}

func NewTeamRepository(teams []team.Team) *TeamRepository {
	index := make(map[string]team.Team, len(teams))
	for _, t := range teams {
		index[t.ID] = t
	}

	return &TeamRepository{teams: index}
}

func (r *TeamRepository) Create(_ context.Context, t team.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.teams[t.ID]; ok {
		return fmt.Errorf("team %s already exists", t.ID)
	}
	r.teams[t.ID] = t

	return nil
}

func (r *TeamRepository) GetByID(_ context.Context, teamID string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.teams[teamID]
	return t, ok, nil
}

func (r *TeamRepository) List(_ context.Context) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0, len(r.teams))
	for _, t := range r.teams {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].ID < out[j].ID
	})

	return out, nil
}

func (r *TeamRepository) setRating(teamID string, rating int, lastMatchAt *time.Time) {
	t, ok := r.teams[teamID]
	if !ok {
		return
	}
	t.Rating = rating
	if lastMatchAt != nil {
		t.LastMatchAt = lastMatchAt
	}
	r.teams[teamID] = t
}
