package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/foostrack/foostrack/internal/domain/history"
	"github.com/foostrack/foostrack/internal/domain/match"
	"github.com/foostrack/foostrack/internal/domain/player"
	"github.com/foostrack/foostrack/internal/domain/team"
	"github.com/foostrack/foostrack/internal/platform/logging"
)

const defaultStatsWorkers = 8

// StatsService derives leaderboard and per-player figures from the match log
// and rating history. Everything here is read-only.
type StatsService struct {
	players   player.Repository
	teams     team.Repository
	matches   match.Repository
	histories history.Repository
	workers   int
	logger    *logging.Logger
}

func NewStatsService(
	players player.Repository,
	teams team.Repository,
	matches match.Repository,
	histories history.Repository,
	workers int,
	logger *logging.Logger,
) *StatsService {
	if workers < 1 {
		workers = defaultStatsWorkers
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &StatsService{
		players:   players,
		teams:     teams,
		matches:   matches,
		histories: histories,
		workers:   workers,
		logger:    logger,
	}
}

// PlayerStanding is one leaderboard row.
type PlayerStanding struct {
	Rank         int
	PlayerID     string
	Name         string
	Rating       int
	PeakRating   int
	Wins         int
	Losses       int
	ShutoutWins  int
	LastPlayedAt *time.Time
}

// Rankings builds the full leaderboard. Win-loss tallies come from a single
// pass over the match log; each player's peak rating needs their own history
// query, so those are fanned out over a worker pool.
func (s *StatsService) Rankings(ctx context.Context) ([]PlayerStanding, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.Rankings")
	defer span.End()

	allPlayers, err := s.players.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	log, err := s.matches.ListChronological(ctx)
	if err != nil {
		return nil, fmt.Errorf("list match log: %w", err)
	}

	type tally struct {
		wins        int
		losses      int
		shutoutWins int
		lastPlayed  time.Time
	}
	tallies := make(map[string]*tally, len(allPlayers))
	for _, p := range allPlayers {
		tallies[p.ID] = &tally{}
	}
	for _, m := range log {
		for _, id := range m.WinnerPlayerIDs {
			t, ok := tallies[id]
			if !ok {
				continue
			}
			t.wins++
			if m.IsShutout {
				t.shutoutWins++
			}
			if m.PlayedAt.After(t.lastPlayed) {
				t.lastPlayed = m.PlayedAt
			}
		}
		for _, id := range m.LoserPlayerIDs {
			t, ok := tallies[id]
			if !ok {
				continue
			}
			t.losses++
			if m.PlayedAt.After(t.lastPlayed) {
				t.lastPlayed = m.PlayedAt
			}
		}
	}

	peaks, err := s.peakRatings(ctx, allPlayers)
	if err != nil {
		return nil, err
	}

	standings := make([]PlayerStanding, 0, len(allPlayers))
	for _, p := range allPlayers {
		t := tallies[p.ID]
		peak := peaks[p.ID]
		if p.Rating > peak {
			peak = p.Rating
		}

		row := PlayerStanding{
			PlayerID:    p.ID,
			Name:        p.Name,
			Rating:      p.Rating,
			PeakRating:  peak,
			Wins:        t.wins,
			Losses:      t.losses,
			ShutoutWins: t.shutoutWins,
		}
		if !t.lastPlayed.IsZero() {
			last := t.lastPlayed
			row.LastPlayedAt = &last
		}
		standings = append(standings, row)
	}

	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].Rating != standings[j].Rating {
			return standings[i].Rating > standings[j].Rating
		}
		return standings[i].Name < standings[j].Name
	})
	for i := range standings {
		standings[i].Rank = i + 1
	}

	return standings, nil
}

func (s *StatsService) peakRatings(ctx context.Context, players []player.Player) (map[string]int, error) {
	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return nil, fmt.Errorf("stats worker pool: %w", err)
	}
	defer pool.Release()

	type peak struct {
		playerID string
		rating   int
		err      error
	}

	var wg sync.WaitGroup
	results := make(chan peak, len(players))
	for _, p := range players {
		p := p
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()

			entries, err := s.histories.ListByPlayer(ctx, p.ID)
			if err != nil {
				results <- peak{playerID: p.ID, err: fmt.Errorf("history for player %s: %w", p.ID, err)}
				return
			}
			highest := 0
			for _, e := range entries {
				if e.RatingAfter > highest {
					highest = e.RatingAfter
				}
			}
			results <- peak{playerID: p.ID, rating: highest}
		})
		if submitErr != nil {
			wg.Done()
			return nil, fmt.Errorf("submit stats task: %w", submitErr)
		}
	}

	wg.Wait()
	close(results)

	peaks := make(map[string]int, len(players))
	for r := range results {
		if r.err != nil {
			return nil, r.err
		}
		peaks[r.playerID] = r.rating
	}

	return peaks, nil
}

// TeamStanding is one row of the team leaderboard.
type TeamStanding struct {
	Rank        int
	TeamID      string
	Name        string
	Rating      int
	Wins        int
	Losses      int
	LastMatchAt *time.Time
}

func (s *StatsService) TeamRankings(ctx context.Context) ([]TeamStanding, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.TeamRankings")
	defer span.End()

	allTeams, err := s.teams.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	log, err := s.matches.ListChronological(ctx)
	if err != nil {
		return nil, fmt.Errorf("list match log: %w", err)
	}

	wins := make(map[string]int, len(allTeams))
	losses := make(map[string]int, len(allTeams))
	for _, m := range log {
		wins[m.WinnerTeamID]++
		losses[m.LoserTeamID]++
	}

	standings := make([]TeamStanding, 0, len(allTeams))
	for _, t := range allTeams {
		standings = append(standings, TeamStanding{
			TeamID:      t.ID,
			Name:        t.Name,
			Rating:      t.Rating,
			Wins:        wins[t.ID],
			Losses:      losses[t.ID],
			LastMatchAt: t.LastMatchAt,
		})
	}

	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].Rating != standings[j].Rating {
			return standings[i].Rating > standings[j].Rating
		}
		return standings[i].Name < standings[j].Name
	})
	for i := range standings {
		standings[i].Rank = i + 1
	}

	return standings, nil
}
