package match

import (
	"fmt"
	"time"
)

// Match is one decided 2v2 game. Immutable once recorded; deletion is a
// separate, rare operation that leaves rating history in place.
type Match struct {
	ID           string
	WinnerTeamID string
	LoserTeamID  string
	IsShutout    bool
	Notes        string
	PlayedAt     time.Time
	CreatedAt    time.Time
}

func (m Match) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("match id is required")
	}
	if m.WinnerTeamID == "" || m.LoserTeamID == "" {
		return fmt.Errorf("match requires both team ids")
	}
	if m.WinnerTeamID == m.LoserTeamID {
		return fmt.Errorf("winner and loser team must be different")
	}
	if m.PlayedAt.IsZero() {
		return fmt.Errorf("match played_at is required")
	}

	return nil
}

// WithParticipants is a match joined with the four player ids that took
// part, used to replay history without consulting live rosters.
type WithParticipants struct {
	Match
	WinnerPlayerIDs []string
	LoserPlayerIDs  []string
}
