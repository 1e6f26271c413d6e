package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foostrack/foostrack/internal/domain/history"
	"github.com/foostrack/foostrack/internal/domain/match"
	"github.com/foostrack/foostrack/internal/domain/player"
	"github.com/foostrack/foostrack/internal/domain/team"
	"github.com/foostrack/foostrack/internal/platform/logging"
)

func newStatsFixture(t *testing.T) (*StatsService, *stubPlayerRepo, *stubMatchRepo, *stubHistoryRepo) {
	t.Helper()

	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	playerRepo := newStubPlayerRepo(
		player.Player{ID: "p1", Name: "Ada", Rating: 1560, CreatedAt: now},
		player.Player{ID: "p2", Name: "Ben", Rating: 1440, CreatedAt: now},
		player.Player{ID: "p3", Name: "Cam", Rating: 1500, CreatedAt: now},
	)
	teamRepo := newStubTeamRepo(
		team.Team{ID: "team-a", Name: "Alphas", PlayerOneID: "p1", PlayerTwoID: "p2", Rating: 1500, CreatedAt: now},
		team.Team{ID: "team-b", Name: "Bravos", PlayerOneID: "p2", PlayerTwoID: "p3", Rating: 1470, CreatedAt: now},
	)
	matchRepo := newStubMatchRepo()
	historyRepo := &stubHistoryRepo{}

	service := NewStatsService(playerRepo, teamRepo, matchRepo, historyRepo, 4, logging.NewNop())

	return service, playerRepo, matchRepo, historyRepo
}

func TestRankingsTalliesAndOrder(t *testing.T) {
	service, _, matchRepo, historyRepo := newStatsFixture(t)

	day := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
	matchRepo.add(match.WithParticipants{
		Match:           match.Match{ID: "m1", WinnerTeamID: "team-a", LoserTeamID: "team-b", IsShutout: true, PlayedAt: day},
		WinnerPlayerIDs: []string{"p1", "p2"},
		LoserPlayerIDs:  []string{"p3"},
	})
	matchRepo.add(match.WithParticipants{
		Match:           match.Match{ID: "m2", WinnerTeamID: "team-b", LoserTeamID: "team-a", PlayedAt: day.Add(time.Hour)},
		WinnerPlayerIDs: []string{"p3"},
		LoserPlayerIDs:  []string{"p1", "p2"},
	})
	historyRepo.add(
		history.Entry{ID: "h1", PlayerID: "p1", MatchID: "m1", RatingBefore: 1500, RatingAfter: 1585, Difference: 85},
		history.Entry{ID: "h2", PlayerID: "p1", MatchID: "m2", RatingBefore: 1585, RatingAfter: 1560, Difference: -25},
	)

	standings, err := service.Rankings(context.Background())
	require.NoError(t, err)
	require.Len(t, standings, 3)

	// Sorted by rating descending, rank assigned in order.
	assert.Equal(t, []string{"p1", "p3", "p2"}, []string{standings[0].PlayerID, standings[1].PlayerID, standings[2].PlayerID})
	assert.Equal(t, 1, standings[0].Rank)
	assert.Equal(t, 3, standings[2].Rank)

	top := standings[0]
	assert.Equal(t, 1, top.Wins)
	assert.Equal(t, 1, top.Losses)
	assert.Equal(t, 1, top.ShutoutWins)
	assert.Equal(t, 1585, top.PeakRating, "peak comes from history, not the current rating")
	require.NotNil(t, top.LastPlayedAt)
	assert.Equal(t, day.Add(time.Hour), *top.LastPlayedAt)

	cam := standings[1]
	assert.Equal(t, 1, cam.Wins)
	assert.Equal(t, 0, cam.ShutoutWins)
	assert.Equal(t, 1500, cam.PeakRating, "no history falls back to the current rating")
}

func TestRankingsNoMatches(t *testing.T) {
	service, _, _, _ := newStatsFixture(t)

	standings, err := service.Rankings(context.Background())
	require.NoError(t, err)
	require.Len(t, standings, 3)
	for _, row := range standings {
		assert.Zero(t, row.Wins)
		assert.Zero(t, row.Losses)
		assert.Nil(t, row.LastPlayedAt)
	}
}

func TestRankingsHistoryFailurePropagates(t *testing.T) {
	service, _, _, historyRepo := newStatsFixture(t)
	historyRepo.listErr = errors.New("history query timeout")

	_, err := service.Rankings(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history query timeout")
}

func TestTeamRankings(t *testing.T) {
	service, _, matchRepo, _ := newStatsFixture(t)

	day := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
	matchRepo.add(match.WithParticipants{
		Match:           match.Match{ID: "m1", WinnerTeamID: "team-a", LoserTeamID: "team-b", PlayedAt: day},
		WinnerPlayerIDs: []string{"p1", "p2"},
		LoserPlayerIDs:  []string{"p2", "p3"},
	})

	standings, err := service.TeamRankings(context.Background())
	require.NoError(t, err)
	require.Len(t, standings, 2)

	assert.Equal(t, "team-a", standings[0].TeamID)
	assert.Equal(t, 1, standings[0].Wins)
	assert.Equal(t, 0, standings[0].Losses)
	assert.Equal(t, 1, standings[1].Losses)
}
