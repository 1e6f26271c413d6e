package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/foostrack/foostrack/internal/domain/match"
	qb "github.com/foostrack/foostrack/internal/platform/querybuilder"
)

// MatchRepository persists matches and owns the atomic recording
// transaction.
type MatchRepository struct {
	db *sqlx.DB
}

var matchSelectColumns = []string{
	"id",
	"public_id",
	"winner_team_public_id",
	"loser_team_public_id",
	"is_shutout",
	"notes",
	"played_at",
	"created_at",
	"deleted_at",
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (match.Match, bool, error) {
	query, args, err := qb.Select(matchSelectColumns...).From("matches").
		Where(
			qb.Eq("public_id", matchID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build select match query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("select match: %w", err)
	}

	return toDomainMatch(row), true, nil
}

func (r *MatchRepository) List(ctx context.Context, limit int) ([]match.Match, error) {
	builder := qb.Select(matchSelectColumns...).From("matches").
		Where(qb.IsNull("deleted_at")).
		OrderBy("played_at DESC", "id DESC")
	if limit > 0 {
		builder = builder.Limit(limit)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list matches query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainMatch(row))
	}

	return out, nil
}

// ListChronological resolves participants through the team rows so the
// replay does not depend on current rosters living anywhere else.
func (r *MatchRepository) ListChronological(ctx context.Context) ([]match.WithParticipants, error) {
	const query = `
SELECT m.public_id,
       m.winner_team_public_id,
       m.loser_team_public_id,
       m.is_shutout,
       m.notes,
       m.played_at,
       m.created_at,
       wt.player_one_public_id AS winner_player_one,
       wt.player_two_public_id AS winner_player_two,
       lt.player_one_public_id AS loser_player_one,
       lt.player_two_public_id AS loser_player_two
FROM matches m
JOIN teams wt ON wt.public_id = m.winner_team_public_id
JOIN teams lt ON lt.public_id = m.loser_team_public_id
WHERE m.deleted_at IS NULL
ORDER BY m.played_at, m.id`

	var rows []struct {
		PublicID           string    `db:"public_id"`
		WinnerTeamPublicID string    `db:"winner_team_public_id"`
		LoserTeamPublicID  string    `db:"loser_team_public_id"`
		IsShutout          bool      `db:"is_shutout"`
		Notes              string    `db:"notes"`
		PlayedAt           time.Time `db:"played_at"`
		CreatedAt          time.Time `db:"created_at"`
		WinnerPlayerOne    string    `db:"winner_player_one"`
		WinnerPlayerTwo    string    `db:"winner_player_two"`
		LoserPlayerOne     string    `db:"loser_player_one"`
		LoserPlayerTwo     string    `db:"loser_player_two"`
	}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list matches chronologically: %w", err)
	}

	out := make([]match.WithParticipants, 0, len(rows))
	for _, row := range rows {
		out = append(out, match.WithParticipants{
			Match: match.Match{
				ID:           row.PublicID,
				WinnerTeamID: row.WinnerTeamPublicID,
				LoserTeamID:  row.LoserTeamPublicID,
				IsShutout:    row.IsShutout,
				Notes:        row.Notes,
				PlayedAt:     row.PlayedAt,
				CreatedAt:    row.CreatedAt,
			},
			WinnerPlayerIDs: []string{row.WinnerPlayerOne, row.WinnerPlayerTwo},
			LoserPlayerIDs:  []string{row.LoserPlayerOne, row.LoserPlayerTwo},
		})
	}

	return out, nil
}

// Delete soft-deletes the match row. Rating history rows referencing the
// match are left untouched.
func (r *MatchRepository) Delete(ctx context.Context, matchID string) error {
	query, args, err := qb.Update("matches").
		SetExpr("deleted_at", "NOW()").
		Where(
			qb.Eq("public_id", matchID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete match query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("soft delete match: %w", err)
	}

	return nil
}

// Record applies one match recording as a single transaction. Player rows
// are locked first and their stored ratings compared to the ratings the
// deltas were computed from; any mismatch aborts with ErrStaleRatings so
// the caller recomputes from fresh reads.
func (r *MatchRepository) Record(ctx context.Context, rec match.Recording) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for match recording: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	playerIDs := make([]string, 0, len(rec.HistoryEntries))
	expected := make(map[string]int, len(rec.HistoryEntries))
	for _, e := range rec.HistoryEntries {
		playerIDs = append(playerIDs, e.PlayerID)
		expected[e.PlayerID] = e.RatingBefore
	}

	lockQuery, lockArgs, err := qb.Select("public_id", "rating").From("players").
		Where(
			qb.In("public_id", stringSliceToAny(playerIDs)),
			qb.IsNull("deleted_at"),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build lock players query: %w", err)
	}
	lockQuery += " FOR UPDATE"

	var lockedRows []struct {
		PublicID string `db:"public_id"`
		Rating   int    `db:"rating"`
	}
	if err := tx.SelectContext(ctx, &lockedRows, lockQuery, lockArgs...); err != nil {
		return fmt.Errorf("lock player rows: %w", err)
	}
	if len(lockedRows) != len(expected) {
		return fmt.Errorf("lock player rows: expected %d players, locked %d", len(expected), len(lockedRows))
	}
	for _, row := range lockedRows {
		if row.Rating != expected[row.PublicID] {
			return fmt.Errorf("player %s: rating %d was computed from %d: %w",
				row.PublicID, row.Rating, expected[row.PublicID], match.ErrStaleRatings)
		}
	}

	matchQuery, matchArgs, err := qb.InsertInto("matches").
		Columns("public_id", "winner_team_public_id", "loser_team_public_id", "is_shutout", "notes", "played_at").
		Values(rec.Match.ID, rec.Match.WinnerTeamID, rec.Match.LoserTeamID, rec.Match.IsShutout, rec.Match.Notes, rec.Match.PlayedAt).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert match query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, matchQuery, matchArgs...); err != nil {
		return fmt.Errorf("insert match: %w", err)
	}

	historyInsert := qb.InsertInto("rating_history").
		Columns("public_id", "player_public_id", "match_public_id", "rating_before", "rating_after", "difference")
	for _, e := range rec.HistoryEntries {
		historyInsert = historyInsert.Values(e.ID, e.PlayerID, e.MatchID, e.RatingBefore, e.RatingAfter, e.Difference)
	}
	historyQuery, historyArgs, err := historyInsert.ToSQL()
	if err != nil {
		return fmt.Errorf("build insert rating history query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, historyQuery, historyArgs...); err != nil {
		return fmt.Errorf("insert rating history: %w", err)
	}

	if err := updatePlayerRatings(ctx, tx, rec.PlayerRatings); err != nil {
		return err
	}

	for teamID, teamRating := range rec.TeamRatings {
		query, args, err := qb.Update("teams").
			Set("rating", teamRating).
			Set("last_match_at", rec.RecordedAt).
			SetExpr("updated_at", "NOW()").
			Where(
				qb.Eq("public_id", teamID),
				qb.IsNull("deleted_at"),
			).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build update team rating query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("update team %s rating: %w", teamID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit match recording tx: %w", err)
	}

	return nil
}

// ApplyRatings overwrites the rating cache in one transaction. Used by
// history replay to repair drift.
func (r *MatchRepository) ApplyRatings(ctx context.Context, playerRatings map[string]int, teamRatings map[string]int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for ratings apply: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := updatePlayerRatings(ctx, tx, playerRatings); err != nil {
		return err
	}

	for teamID, teamRating := range teamRatings {
		query, args, err := qb.Update("teams").
			Set("rating", teamRating).
			SetExpr("updated_at", "NOW()").
			Where(
				qb.Eq("public_id", teamID),
				qb.IsNull("deleted_at"),
			).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build apply team rating query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("apply team %s rating: %w", teamID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ratings apply tx: %w", err)
	}

	return nil
}

func updatePlayerRatings(ctx context.Context, tx *sqlx.Tx, ratings map[string]int) error {
	for playerID, playerRating := range ratings {
		query, args, err := qb.Update("players").
			Set("rating", playerRating).
			SetExpr("updated_at", "NOW()").
			Where(
				qb.Eq("public_id", playerID),
				qb.IsNull("deleted_at"),
			).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build update player rating query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("update player %s rating: %w", playerID, err)
		}
	}

	return nil
}

func toDomainMatch(row matchTableModel) match.Match {
	return match.Match{
		ID:           row.PublicID,
		WinnerTeamID: row.WinnerTeamPublicID,
		LoserTeamID:  row.LoserTeamPublicID,
		IsShutout:    row.IsShutout,
		Notes:        row.Notes,
		PlayedAt:     row.PlayedAt,
		CreatedAt:    row.CreatedAt,
	}
}
