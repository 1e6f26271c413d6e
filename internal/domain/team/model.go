package team

import (
	"fmt"
	"time"
)

// Team is a fixed pair of players competing together. Its rating is derived
// from its members' ratings and recomputed whenever either member's rating
// changes.
type Team struct {
	ID          string
	Name        string
	PlayerOneID string
	PlayerTwoID string
	Rating      int
	LastMatchAt *time.Time
	CreatedAt   time.Time
}

func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}
	if t.PlayerOneID == "" || t.PlayerTwoID == "" {
		return fmt.Errorf("team requires two players")
	}
	if t.PlayerOneID == t.PlayerTwoID {
		return fmt.Errorf("team players must be distinct")
	}
	if t.Rating < 0 {
		return fmt.Errorf("team rating must not be negative")
	}

	return nil
}

// PlayerIDs returns the roster in stored order.
func (t Team) PlayerIDs() []string {
	return []string{t.PlayerOneID, t.PlayerTwoID}
}
