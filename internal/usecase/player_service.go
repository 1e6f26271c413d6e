package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/foostrack/foostrack/internal/domain/history"
	"github.com/foostrack/foostrack/internal/domain/player"
	idgen "github.com/foostrack/foostrack/internal/platform/id"
	"github.com/foostrack/foostrack/internal/platform/logging"
)

// PlayerService covers the player CRUD surface. Player ratings are never set
// through it; they start at the baseline and change only via match recording
// or history replay.
type PlayerService struct {
	players   player.Repository
	histories history.Repository
	ids       idgen.Generator
	baseline  int
	logger    *logging.Logger
	now       func() time.Time
}

func NewPlayerService(
	players player.Repository,
	histories history.Repository,
	ids idgen.Generator,
	baseline int,
	logger *logging.Logger,
) *PlayerService {
	if logger == nil {
		logger = logging.Default()
	}

	return &PlayerService{
		players:   players,
		histories: histories,
		ids:       ids,
		baseline:  baseline,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *PlayerService) CreatePlayer(ctx context.Context, name string) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.CreatePlayer")
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" {
		return player.Player{}, fmt.Errorf("%w: player name is required", ErrInvalidInput)
	}

	id, err := s.ids.NewID()
	if err != nil {
		return player.Player{}, fmt.Errorf("generate player id: %w", err)
	}

	p := player.Player{
		ID:        id,
		Name:      name,
		Rating:    s.baseline,
		CreatedAt: s.now().UTC(),
	}
	if err := p.Validate(); err != nil {
		return player.Player{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.players.Create(ctx, p); err != nil {
		return player.Player{}, fmt.Errorf("create player: %w", err)
	}

	s.logger.InfoContext(ctx, "player created", "player_id", p.ID, "rating", p.Rating)

	return p, nil
}

func (s *PlayerService) GetPlayer(ctx context.Context, playerID string) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.GetPlayer")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return player.Player{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}

	p, found, err := s.players.GetByID(ctx, playerID)
	if err != nil {
		return player.Player{}, fmt.Errorf("load player %s: %w", playerID, err)
	}
	if !found {
		return player.Player{}, fmt.Errorf("%w: player %s", ErrNotFound, playerID)
	}

	return p, nil
}

func (s *PlayerService) ListPlayers(ctx context.Context) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.ListPlayers")
	defer span.End()

	players, err := s.players.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}

	return players, nil
}

// ListHistory returns a player's rating trail, oldest first.
func (s *PlayerService) ListHistory(ctx context.Context, playerID string) ([]history.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.ListHistory")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return nil, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}

	if _, err := s.GetPlayer(ctx, playerID); err != nil {
		return nil, err
	}

	entries, err := s.histories.ListByPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("load player history: %w", err)
	}

	return entries, nil
}
