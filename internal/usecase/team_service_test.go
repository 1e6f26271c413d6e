package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foostrack/foostrack/internal/domain/history"
	"github.com/foostrack/foostrack/internal/domain/player"
	"github.com/foostrack/foostrack/internal/domain/rating"
	"github.com/foostrack/foostrack/internal/platform/logging"
)

func newTeamFixture(t *testing.T) (*TeamService, *stubTeamRepo, *stubHistoryRepo) {
	t.Helper()

	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	playerRepo := newStubPlayerRepo(
		player.Player{ID: "p1", Name: "Ada", Rating: 1600, CreatedAt: now},
		player.Player{ID: "p2", Name: "Ben", Rating: 1401, CreatedAt: now},
	)
	teamRepo := newStubTeamRepo()
	historyRepo := &stubHistoryRepo{}

	calc, err := rating.NewCalculator(rating.DefaultPolicy())
	require.NoError(t, err)

	service := NewTeamService(teamRepo, playerRepo, historyRepo, calc, &sequenceIDs{}, logging.NewNop())

	return service, teamRepo, historyRepo
}

func TestCreateTeamDerivesRatingFromMembers(t *testing.T) {
	service, teamRepo, _ := newTeamFixture(t)

	created, err := service.CreateTeam(context.Background(), CreateTeamInput{
		Name:        "Alphas",
		PlayerOneID: "p1",
		PlayerTwoID: "p2",
	})
	require.NoError(t, err)

	// Truncated mean of 1600 and 1401.
	assert.Equal(t, 1500, created.Rating)
	assert.Nil(t, created.LastMatchAt)

	stored, found, err := teamRepo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, created, stored)
}

func TestCreateTeamRejectsDuplicateMember(t *testing.T) {
	service, _, _ := newTeamFixture(t)

	_, err := service.CreateTeam(context.Background(), CreateTeamInput{
		Name:        "Solo",
		PlayerOneID: "p1",
		PlayerTwoID: "p1",
	})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateTeamRejectsUnknownMember(t *testing.T) {
	service, _, _ := newTeamFixture(t)

	_, err := service.CreateTeam(context.Background(), CreateTeamInput{
		Name:        "Ghosts",
		PlayerOneID: "p1",
		PlayerTwoID: "p9",
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetTeamResolvesMembers(t *testing.T) {
	service, _, _ := newTeamFixture(t)

	created, err := service.CreateTeam(context.Background(), CreateTeamInput{
		Name:        "Alphas",
		PlayerOneID: "p1",
		PlayerTwoID: "p2",
	})
	require.NoError(t, err)

	details, err := service.GetTeam(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, details.Team.ID)
	require.Len(t, details.Members, 2)
}

func TestGetTeamNotFound(t *testing.T) {
	service, _, _ := newTeamFixture(t)

	_, err := service.GetTeam(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListTeamHistoryMergesMembersChronologically(t *testing.T) {
	service, _, historyRepo := newTeamFixture(t)

	created, err := service.CreateTeam(context.Background(), CreateTeamInput{
		Name:        "Alphas",
		PlayerOneID: "p1",
		PlayerTwoID: "p2",
	})
	require.NoError(t, err)

	base := time.Date(2026, 2, 2, 12, 0, 0, 0, time.UTC)
	historyRepo.add(
		history.Entry{ID: "h3", PlayerID: "p2", MatchID: "m2", RatingBefore: 1426, RatingAfter: 1461, Difference: 35, CreatedAt: base.Add(time.Hour)},
		history.Entry{ID: "h1", PlayerID: "p1", MatchID: "m1", RatingBefore: 1600, RatingAfter: 1615, Difference: 15, CreatedAt: base},
		history.Entry{ID: "h2", PlayerID: "p2", MatchID: "m1", RatingBefore: 1401, RatingAfter: 1426, Difference: 25, CreatedAt: base},
		history.Entry{ID: "h9", PlayerID: "p9", MatchID: "m1", RatingBefore: 1500, RatingAfter: 1475, Difference: -25, CreatedAt: base},
	)

	entries, err := service.ListHistory(context.Background(), created.ID)
	require.NoError(t, err)

	require.Len(t, entries, 3)
	assert.Equal(t, "h1", entries[0].ID)
	assert.Equal(t, "h2", entries[1].ID)
	assert.Equal(t, "h3", entries[2].ID)
}

func TestListTeamHistoryUnknownTeam(t *testing.T) {
	service, _, _ := newTeamFixture(t)

	_, err := service.ListHistory(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}
