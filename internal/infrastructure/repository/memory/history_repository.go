package memory

import (
	"context"
	"sync"

	"github.com/foostrack/foostrack/internal/domain/history"
)

type HistoryRepository struct {
	mu      sync.RWMutex
	entries []history.Entry
}

func NewHistoryRepository(entries []history.Entry) *HistoryRepository {
	return &HistoryRepository{entries: append([]history.Entry(nil), entries...)}
}

func (r *HistoryRepository) ListByPlayer(_ context.Context, playerID string) ([]history.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []history.Entry
	for _, e := range r.entries {
		if e.PlayerID == playerID {
			out = append(out, e)
		}
	}

	return out, nil
}

func (r *HistoryRepository) ListByMatch(_ context.Context, matchID string) ([]history.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []history.Entry
	for _, e := range r.entries {
		if e.MatchID == matchID {
			out = append(out, e)
		}
	}

	return out, nil
}

func (r *HistoryRepository) append(entries []history.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, entries...)
}
