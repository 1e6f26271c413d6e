package history

import (
	"fmt"
	"time"
)

// Entry is the immutable record of one player's rating movement caused by
// one match. Entries are append-only; current ratings are a cache of folding
// these entries to date.
type Entry struct {
	ID           string
	PlayerID     string
	MatchID      string
	RatingBefore int
	RatingAfter  int
	Difference   int
	CreatedAt    time.Time
}

func (e Entry) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("history entry id is required")
	}
	if e.PlayerID == "" {
		return fmt.Errorf("history entry player id is required")
	}
	if e.MatchID == "" {
		return fmt.Errorf("history entry match id is required")
	}
	if e.RatingBefore < 0 || e.RatingAfter < 0 {
		return fmt.Errorf("history entry ratings must not be negative")
	}
	if e.Difference != e.RatingAfter-e.RatingBefore {
		return fmt.Errorf("history entry difference %d does not match after-before %d",
			e.Difference, e.RatingAfter-e.RatingBefore)
	}

	return nil
}
