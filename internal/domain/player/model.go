package player

import (
	"fmt"
	"time"
)

// Player is a foosball player on the office ladder.
type Player struct {
	ID        string
	Name      string
	Rating    int
	CreatedAt time.Time
}

func (p Player) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("player id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("player name is required")
	}
	if p.Rating < 0 {
		return fmt.Errorf("player rating must not be negative")
	}

	return nil
}
