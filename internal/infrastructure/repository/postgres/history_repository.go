package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/foostrack/foostrack/internal/domain/history"
	qb "github.com/foostrack/foostrack/internal/platform/querybuilder"
)

// HistoryRepository reads rating history rows. Inserts happen inside the
// match recording transaction, so there is no standalone write path here.
type HistoryRepository struct {
	db *sqlx.DB
}

var historySelectColumns = []string{
	"id",
	"public_id",
	"player_public_id",
	"match_public_id",
	"rating_before",
	"rating_after",
	"difference",
	"created_at",
}

func NewHistoryRepository(db *sqlx.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) ListByPlayer(ctx context.Context, playerID string) ([]history.Entry, error) {
	query, args, err := qb.Select(historySelectColumns...).From("rating_history").
		Where(qb.Eq("player_public_id", playerID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select history by player query: %w", err)
	}

	var rows []historyTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select history by player: %w", err)
	}

	return toDomainEntries(rows), nil
}

func (r *HistoryRepository) ListByMatch(ctx context.Context, matchID string) ([]history.Entry, error) {
	query, args, err := qb.Select(historySelectColumns...).From("rating_history").
		Where(qb.Eq("match_public_id", matchID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select history by match query: %w", err)
	}

	var rows []historyTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select history by match: %w", err)
	}

	return toDomainEntries(rows), nil
}

func toDomainEntries(rows []historyTableModel) []history.Entry {
	out := make([]history.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, history.Entry{
			ID:           row.PublicID,
			PlayerID:     row.PlayerPublicID,
			MatchID:      row.MatchPublicID,
			RatingBefore: row.RatingBefore,
			RatingAfter:  row.RatingAfter,
			Difference:   row.Difference,
			CreatedAt:    row.CreatedAt,
		})
	}

	return out
}
