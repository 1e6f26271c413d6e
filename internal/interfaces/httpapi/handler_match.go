package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/foostrack/foostrack/internal/domain/match"
	"github.com/foostrack/foostrack/internal/domain/rating"
	"github.com/foostrack/foostrack/internal/usecase"
)

type recordMatchRequest struct {
	WinnerTeamID string `json:"winnerTeamId" validate:"required"`
	LoserTeamID  string `json:"loserTeamId" validate:"required,nefield=WinnerTeamID"`
	PlayedAt     string `json:"playedAt" validate:"omitempty"`
	IsShutout    bool   `json:"isShutout"`
	Notes        string `json:"notes" validate:"max=500"`
}

type matchDTO struct {
	ID           string `json:"id"`
	WinnerTeamID string `json:"winnerTeamId"`
	LoserTeamID  string `json:"loserTeamId"`
	IsShutout    bool   `json:"isShutout"`
	Notes        string `json:"notes,omitempty"`
	PlayedAt     string `json:"playedAt"`
	CreatedAt    string `json:"createdAt"`
}

type ratingDeltaDTO struct {
	Before int `json:"before"`
	After  int `json:"after"`
	Delta  int `json:"delta"`
}

type recordedMatchDTO struct {
	Match        matchDTO                  `json:"match"`
	Deltas       map[string]ratingDeltaDTO `json:"deltas"`
	TeamRatings  map[string]int            `json:"teamRatings"`
	WinnerWinPct float64                   `json:"winnerWinProbability"`
}

type matchDetailsDTO struct {
	Match   matchDTO          `json:"match"`
	History []historyEntryDTO `json:"history"`
}

type deleteMatchDTO struct {
	MatchID      string `json:"matchId"`
	RatingsStale bool   `json:"ratingsStale"`
}

func toMatchDTO(m match.Match) matchDTO {
	return matchDTO{
		ID:           m.ID,
		WinnerTeamID: m.WinnerTeamID,
		LoserTeamID:  m.LoserTeamID,
		IsShutout:    m.IsShutout,
		Notes:        m.Notes,
		PlayedAt:     formatTime(m.PlayedAt),
		CreatedAt:    formatTime(m.CreatedAt),
	}
}

func toMatchDTOs(matches []match.Match) []matchDTO {
	dtos := make([]matchDTO, 0, len(matches))
	for _, m := range matches {
		dtos = append(dtos, toMatchDTO(m))
	}
	return dtos
}

func toRatingDeltaDTOs(deltas map[string]rating.Delta) map[string]ratingDeltaDTO {
	dtos := make(map[string]ratingDeltaDTO, len(deltas))
	for playerID, d := range deltas {
		dtos[playerID] = ratingDeltaDTO{Before: d.Before, After: d.After, Delta: d.Delta}
	}
	return dtos
}

func (h *Handler) RecordMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordMatch")
	defer span.End()

	var req recordMatchRequest
	if err := h.decodeRequest(ctx, r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	var playedAt time.Time
	if strings.TrimSpace(req.PlayedAt) != "" {
		parsed, err := time.Parse(time.RFC3339, req.PlayedAt)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: playedAt must be RFC 3339: %v", usecase.ErrInvalidInput, err))
			return
		}
		playedAt = parsed
	}

	recorded, err := h.matches.RecordMatch(ctx, usecase.RecordMatchInput{
		WinnerTeamID: req.WinnerTeamID,
		LoserTeamID:  req.LoserTeamID,
		PlayedAt:     playedAt,
		IsShutout:    req.IsShutout,
		Notes:        req.Notes,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "record match failed",
			"winner_team_id", req.WinnerTeamID, "loser_team_id", req.LoserTeamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, recordedMatchDTO{
		Match:        toMatchDTO(recorded.Match),
		Deltas:       toRatingDeltaDTOs(recorded.Deltas),
		TeamRatings:  recorded.TeamRatings,
		WinnerWinPct: recorded.WinnerWinPct,
	})
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	details, err := h.matches.GetMatch(ctx, r.PathValue("matchID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchDetailsDTO{
		Match:   toMatchDTO(details.Match),
		History: toHistoryEntryDTOs(details.History),
	})
}

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(ctx, w, fmt.Errorf("%w: limit must be a non-negative integer", usecase.ErrInvalidInput))
			return
		}
		limit = parsed
	}

	matches, err := h.matches.ListMatches(ctx, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "list matches failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toMatchDTOs(matches))
}

func (h *Handler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteMatch")
	defer span.End()

	result, err := h.matches.DeleteMatch(ctx, r.PathValue("matchID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, deleteMatchDTO{
		MatchID:      result.MatchID,
		RatingsStale: result.RatingsStale,
	})
}
