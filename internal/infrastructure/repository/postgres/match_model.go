package postgres

import "time"

type matchTableModel struct {
	ID                 int64      `db:"id"`
	PublicID           string     `db:"public_id"`
	WinnerTeamPublicID string     `db:"winner_team_public_id"`
	LoserTeamPublicID  string     `db:"loser_team_public_id"`
	IsShutout          bool       `db:"is_shutout"`
	Notes              string     `db:"notes"`
	PlayedAt           time.Time  `db:"played_at"`
	CreatedAt          time.Time  `db:"created_at"`
	DeletedAt          *time.Time `db:"deleted_at"`
}
