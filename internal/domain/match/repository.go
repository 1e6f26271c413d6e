package match

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/foostrack/foostrack/internal/domain/history"
)

// ErrStaleRatings is returned by Record when a player's stored rating no
// longer matches the rating the deltas were computed from. The caller is
// expected to re-read and recompute, never to replay the same write.
var ErrStaleRatings = errors.New("player ratings changed since they were read")

// Recording is everything one recorded match changes, applied as a single
// atomic unit: the match row, the four history entries, the new player
// ratings and the derived team ratings.
type Recording struct {
	Match          Match
	HistoryEntries []history.Entry
	PlayerRatings  map[string]int
	TeamRatings    map[string]int
	RecordedAt     time.Time
}

// Recorder is the atomic write primitive of the persistence boundary. An
// implementation must apply the whole Recording or none of it, and must
// serialize concurrent recordings that share a player (row locks or an
// equivalent) so read-modify-write cycles cannot lose updates.
type Recorder interface {
	Record(ctx context.Context, rec Recording) error
}

// RatingsApplier persists a full set of recomputed ratings in one atomic
// unit. Used by history replay when asked to repair drift.
type RatingsApplier interface {
	ApplyRatings(ctx context.Context, playerRatings map[string]int, teamRatings map[string]int) error
}

// Repository describes match persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, matchID string) (Match, bool, error)
	List(ctx context.Context, limit int) ([]Match, error)
	ListChronological(ctx context.Context) ([]WithParticipants, error)
	Delete(ctx context.Context, matchID string) error
}
