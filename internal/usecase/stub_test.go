package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/foostrack/foostrack/internal/domain/history"
	"github.com/foostrack/foostrack/internal/domain/match"
	"github.com/foostrack/foostrack/internal/domain/player"
	"github.com/foostrack/foostrack/internal/domain/team"
)

// In-memory stubs shared by the service tests. Each keeps state behind a
// mutex and exposes error hooks so failure paths can be forced per test.

type stubPlayerRepo struct {
	mu      sync.Mutex
	players map[string]player.Player
	listErr error
}

func newStubPlayerRepo(players ...player.Player) *stubPlayerRepo {
	r := &stubPlayerRepo{players: make(map[string]player.Player)}
	for _, p := range players {
		r.players[p.ID] = p
	}
	return r
}

func (r *stubPlayerRepo) Create(_ context.Context, p player.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.players[p.ID]; ok {
		return fmt.Errorf("player %s already exists", p.ID)
	}
	r.players[p.ID] = p
	return nil
}

func (r *stubPlayerRepo) GetByID(_ context.Context, id string) (player.Player, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	return p, ok, nil
}

func (r *stubPlayerRepo) GetByIDs(_ context.Context, ids []string) ([]player.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]player.Player, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.players[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *stubPlayerRepo) List(_ context.Context) ([]player.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]player.Player, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubPlayerRepo) rating(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.players[id].Rating
}

func (r *stubPlayerRepo) setRating(id string, rating int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.players[id]
	p.Rating = rating
	r.players[id] = p
}

type stubTeamRepo struct {
	mu    sync.Mutex
	teams map[string]team.Team
}

func newStubTeamRepo(teams ...team.Team) *stubTeamRepo {
	r := &stubTeamRepo{teams: make(map[string]team.Team)}
	for _, t := range teams {
		r.teams[t.ID] = t
	}
	return r
}

func (r *stubTeamRepo) Create(_ context.Context, t team.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.teams[t.ID]; ok {
		return fmt.Errorf("team %s already exists", t.ID)
	}
	r.teams[t.ID] = t
	return nil
}

func (r *stubTeamRepo) GetByID(_ context.Context, id string) (team.Team, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[id]
	return t, ok, nil
}

func (r *stubTeamRepo) List(_ context.Context) ([]team.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]team.Team, 0, len(r.teams))
	for _, t := range r.teams {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type stubMatchRepo struct {
	mu      sync.Mutex
	matches map[string]match.WithParticipants
	order   []string
	deleted map[string]bool
}

func newStubMatchRepo() *stubMatchRepo {
	return &stubMatchRepo{
		matches: make(map[string]match.WithParticipants),
		deleted: make(map[string]bool),
	}
}

func (r *stubMatchRepo) add(m match.WithParticipants) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matches[m.ID] = m
	r.order = append(r.order, m.ID)
}

func (r *stubMatchRepo) GetByID(_ context.Context, id string) (match.Match, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok || r.deleted[id] {
		return match.Match{}, false, nil
	}
	return m.Match, true, nil
}

func (r *stubMatchRepo) List(_ context.Context, limit int) ([]match.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]match.Match, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		id := r.order[i]
		if r.deleted[id] {
			continue
		}
		out = append(out, r.matches[id].Match)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *stubMatchRepo) ListChronological(_ context.Context) ([]match.WithParticipants, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]match.WithParticipants, 0, len(r.order))
	for _, id := range r.order {
		if r.deleted[id] {
			continue
		}
		out = append(out, r.matches[id])
	}
	return out, nil
}

func (r *stubMatchRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.matches[id]; !ok {
		return fmt.Errorf("match %s not found", id)
	}
	r.deleted[id] = true
	return nil
}

type stubHistoryRepo struct {
	mu      sync.Mutex
	entries []history.Entry
	listErr error
}

func (r *stubHistoryRepo) add(entries ...history.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entries...)
}

func (r *stubHistoryRepo) ListByPlayer(_ context.Context, playerID string) ([]history.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []history.Entry
	for _, e := range r.entries {
		if e.PlayerID == playerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *stubHistoryRepo) ListByMatch(_ context.Context, matchID string) ([]history.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []history.Entry
	for _, e := range r.entries {
		if e.MatchID == matchID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *stubHistoryRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// stubRecorder applies recordings against the other stubs the way the real
// transaction does, with hooks to fail outright or report stale ratings a
// fixed number of times.
type stubRecorder struct {
	mu         sync.Mutex
	players    *stubPlayerRepo
	teams      *stubTeamRepo
	matches    *stubMatchRepo
	histories  *stubHistoryRepo
	failWith   error
	staleTimes int
	recorded   []match.Recording
	applied    []map[string]int
	rosters    map[string][]string
}

func newStubRecorder(players *stubPlayerRepo, teams *stubTeamRepo, matches *stubMatchRepo, histories *stubHistoryRepo) *stubRecorder {
	return &stubRecorder{
		players:   players,
		teams:     teams,
		matches:   matches,
		histories: histories,
	}
}

func (r *stubRecorder) Record(_ context.Context, rec match.Recording) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failWith != nil {
		return r.failWith
	}
	if r.staleTimes > 0 {
		r.staleTimes--
		return match.ErrStaleRatings
	}

	for _, e := range rec.HistoryEntries {
		if stored := r.players.rating(e.PlayerID); stored != e.RatingBefore {
			return match.ErrStaleRatings
		}
	}

	winnerTeam, _, _ := r.teams.GetByID(context.Background(), rec.Match.WinnerTeamID)
	loserTeam, _, _ := r.teams.GetByID(context.Background(), rec.Match.LoserTeamID)
	r.matches.add(match.WithParticipants{
		Match:           rec.Match,
		WinnerPlayerIDs: winnerTeam.PlayerIDs(),
		LoserPlayerIDs:  loserTeam.PlayerIDs(),
	})
	r.histories.add(rec.HistoryEntries...)
	for id, rating := range rec.PlayerRatings {
		r.players.setRating(id, rating)
	}
	r.teams.mu.Lock()
	for id, rating := range rec.TeamRatings {
		t := r.teams.teams[id]
		t.Rating = rating
		at := rec.RecordedAt
		t.LastMatchAt = &at
		r.teams.teams[id] = t
	}
	r.teams.mu.Unlock()

	r.recorded = append(r.recorded, rec)
	return nil
}

func (r *stubRecorder) ApplyRatings(_ context.Context, playerRatings map[string]int, teamRatings map[string]int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, rating := range playerRatings {
		r.players.setRating(id, rating)
	}
	r.teams.mu.Lock()
	for id, rating := range teamRatings {
		t := r.teams.teams[id]
		t.Rating = rating
		r.teams.teams[id] = t
	}
	r.teams.mu.Unlock()

	r.applied = append(r.applied, playerRatings)
	return nil
}

type sequenceIDs struct {
	mu   sync.Mutex
	next int
}

func (g *sequenceIDs) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("id-%04d", g.next), nil
}

type capturedNotifier struct {
	mu     sync.Mutex
	events []MatchRecordedEvent
	done   chan struct{}
}

func newCapturedNotifier() *capturedNotifier {
	return &capturedNotifier{done: make(chan struct{}, 16)}
}

func (n *capturedNotifier) MatchRecorded(_ context.Context, event MatchRecordedEvent) error {
	n.mu.Lock()
	n.events = append(n.events, event)
	n.mu.Unlock()
	n.done <- struct{}{}
	return nil
}
