package postgres

import "time"

type teamTableModel struct {
	ID                int64      `db:"id"`
	PublicID          string     `db:"public_id"`
	Name              string     `db:"name"`
	PlayerOnePublicID string     `db:"player_one_public_id"`
	PlayerTwoPublicID string     `db:"player_two_public_id"`
	Rating            int        `db:"rating"`
	LastMatchAt       *time.Time `db:"last_match_at"`
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
	DeletedAt         *time.Time `db:"deleted_at"`
}
