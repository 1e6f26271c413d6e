package memory

import (
	"time"

	"github.com/foostrack/foostrack/internal/domain/player"
	"github.com/foostrack/foostrack/internal/domain/team"
)

// Dev seed: an office ladder where everyone starts at the baseline.

var seedCreatedAt = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

func SeedPlayers(baseline int) []player.Player {
	names := []struct {
		id   string
		name string
	}{
		{"pl-ada", "Ada Kusuma"},
		{"pl-ben", "Ben Ortiz"},
		{"pl-cam", "Camille Roux"},
		{"pl-dee", "Dee Nakamura"},
		{"pl-eli", "Eli Brandt"},
		{"pl-fay", "Fay Lindgren"},
	}

	out := make([]player.Player, 0, len(names))
	for _, n := range names {
		out = append(out, player.Player{
			ID:        n.id,
			Name:      n.name,
			Rating:    baseline,
			CreatedAt: seedCreatedAt,
		})
	}

	return out
}

func SeedTeams(baseline int) []team.Team {
	pairs := []struct {
		id   string
		name string
		one  string
		two  string
	}{
		{"tm-alphas", "The Alphas", "pl-ada", "pl-ben"},
		{"tm-bravos", "Bravo Six", "pl-cam", "pl-dee"},
		{"tm-charlie", "Charlie Foxtrot", "pl-eli", "pl-fay"},
	}

	out := make([]team.Team, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, team.Team{
			ID:          p.id,
			Name:        p.name,
			PlayerOneID: p.one,
			PlayerTwoID: p.two,
			Rating:      baseline,
			CreatedAt:   seedCreatedAt,
		})
	}

	return out
}
