package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/foostrack/foostrack/internal/domain/history"
	"github.com/foostrack/foostrack/internal/domain/player"
	"github.com/foostrack/foostrack/internal/domain/rating"
	"github.com/foostrack/foostrack/internal/domain/team"
	idgen "github.com/foostrack/foostrack/internal/platform/id"
	"github.com/foostrack/foostrack/internal/platform/logging"
)

// TeamService covers the team CRUD surface.
type TeamService struct {
	teams     team.Repository
	players   player.Repository
	histories history.Repository
	calc      rating.Calculator
	ids       idgen.Generator
	logger    *logging.Logger
	now       func() time.Time
}

func NewTeamService(
	teams team.Repository,
	players player.Repository,
	histories history.Repository,
	calc rating.Calculator,
	ids idgen.Generator,
	logger *logging.Logger,
) *TeamService {
	if logger == nil {
		logger = logging.Default()
	}

	return &TeamService{
		teams:     teams,
		players:   players,
		histories: histories,
		calc:      calc,
		ids:       ids,
		logger:    logger,
		now:       time.Now,
	}
}

type CreateTeamInput struct {
	Name        string
	PlayerOneID string
	PlayerTwoID string
}

// CreateTeam registers a new pair. Both members must already exist; the
// initial team rating is derived from their current ratings.
func (s *TeamService) CreateTeam(ctx context.Context, input CreateTeamInput) (team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.CreateTeam")
	defer span.End()

	name := strings.TrimSpace(input.Name)
	oneID := strings.TrimSpace(input.PlayerOneID)
	twoID := strings.TrimSpace(input.PlayerTwoID)
	if name == "" {
		return team.Team{}, fmt.Errorf("%w: team name is required", ErrInvalidInput)
	}
	if oneID == "" || twoID == "" {
		return team.Team{}, fmt.Errorf("%w: team requires two player ids", ErrInvalidInput)
	}
	if oneID == twoID {
		return team.Team{}, fmt.Errorf("%w: team players must be distinct", ErrInvalidInput)
	}

	members, err := s.players.GetByIDs(ctx, []string{oneID, twoID})
	if err != nil {
		return team.Team{}, fmt.Errorf("load team members: %w", err)
	}
	byID := make(map[string]player.Player, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}
	for _, id := range []string{oneID, twoID} {
		if _, ok := byID[id]; !ok {
			return team.Team{}, fmt.Errorf("%w: player %s", ErrNotFound, id)
		}
	}

	teamRating, err := s.calc.TeamRating(byID[oneID].Rating, byID[twoID].Rating)
	if err != nil {
		return team.Team{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	id, err := s.ids.NewID()
	if err != nil {
		return team.Team{}, fmt.Errorf("generate team id: %w", err)
	}

	t := team.Team{
		ID:          id,
		Name:        name,
		PlayerOneID: oneID,
		PlayerTwoID: twoID,
		Rating:      teamRating,
		CreatedAt:   s.now().UTC(),
	}
	if err := t.Validate(); err != nil {
		return team.Team{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.teams.Create(ctx, t); err != nil {
		return team.Team{}, fmt.Errorf("create team: %w", err)
	}

	s.logger.InfoContext(ctx, "team created",
		"team_id", t.ID, "player_one_id", oneID, "player_two_id", twoID, "rating", t.Rating)

	return t, nil
}

// TeamDetails is a team with its resolved members.
type TeamDetails struct {
	Team    team.Team
	Members []player.Player
}

func (s *TeamService) GetTeam(ctx context.Context, teamID string) (TeamDetails, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.GetTeam")
	defer span.End()

	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return TeamDetails{}, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}

	t, found, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return TeamDetails{}, fmt.Errorf("load team %s: %w", teamID, err)
	}
	if !found {
		return TeamDetails{}, fmt.Errorf("%w: team %s", ErrNotFound, teamID)
	}

	members, err := s.players.GetByIDs(ctx, t.PlayerIDs())
	if err != nil {
		return TeamDetails{}, fmt.Errorf("load team members: %w", err)
	}

	return TeamDetails{Team: t, Members: members}, nil
}

// ListHistory merges both members' rating movements into one chronological
// view of the team's matches.
func (s *TeamService) ListHistory(ctx context.Context, teamID string) ([]history.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.ListHistory")
	defer span.End()

	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return nil, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}

	t, found, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("load team %s: %w", teamID, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: team %s", ErrNotFound, teamID)
	}

	merged := make([]history.Entry, 0)
	for _, playerID := range t.PlayerIDs() {
		entries, err := s.histories.ListByPlayer(ctx, playerID)
		if err != nil {
			return nil, fmt.Errorf("load history for player %s: %w", playerID, err)
		}
		merged = append(merged, entries...)
	}

	sort.Slice(merged, func(i, j int) bool {
		if !merged[i].CreatedAt.Equal(merged[j].CreatedAt) {
			return merged[i].CreatedAt.Before(merged[j].CreatedAt)
		}
		return merged[i].ID < merged[j].ID
	})

	return merged, nil
}

func (s *TeamService) ListTeams(ctx context.Context) ([]team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.ListTeams")
	defer span.End()

	teams, err := s.teams.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}

	return teams, nil
}
