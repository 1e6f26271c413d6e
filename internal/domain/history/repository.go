package history

import "context"

// Repository reads the append-only rating history. Writes happen only inside
// the atomic match recording, so there is no standalone insert here.
type Repository interface {
	ListByPlayer(ctx context.Context, playerID string) ([]Entry, error)
	ListByMatch(ctx context.Context, matchID string) ([]Entry, error)
}
