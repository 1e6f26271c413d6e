package postgres

import "time"

type historyTableModel struct {
	ID             int64     `db:"id"`
	PublicID       string    `db:"public_id"`
	PlayerPublicID string    `db:"player_public_id"`
	MatchPublicID  string    `db:"match_public_id"`
	RatingBefore   int       `db:"rating_before"`
	RatingAfter    int       `db:"rating_after"`
	Difference     int       `db:"difference"`
	CreatedAt      time.Time `db:"created_at"`
}
