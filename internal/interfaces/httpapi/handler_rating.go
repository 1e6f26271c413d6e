package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/foostrack/foostrack/internal/usecase"
)

type playerStandingDTO struct {
	Rank         int     `json:"rank"`
	PlayerID     string  `json:"playerId"`
	Name         string  `json:"name"`
	Rating       int     `json:"rating"`
	PeakRating   int     `json:"peakRating"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	ShutoutWins  int     `json:"shutoutWins"`
	LastPlayedAt *string `json:"lastPlayedAt,omitempty"`
}

type teamStandingDTO struct {
	Rank        int     `json:"rank"`
	TeamID      string  `json:"teamId"`
	Name        string  `json:"name"`
	Rating      int     `json:"rating"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	LastMatchAt *string `json:"lastMatchAt,omitempty"`
}

type ratingDriftDTO struct {
	PlayerID string `json:"playerId"`
	Stored   int    `json:"stored"`
	Replayed int    `json:"replayed"`
}

type evolutionStepDTO struct {
	MatchID         string  `json:"matchId"`
	PlayerID        string  `json:"playerId"`
	Won             bool    `json:"won"`
	Before          int     `json:"before"`
	Delta           int     `json:"delta"`
	After           int     `json:"after"`
	ProbabilityUsed float64 `json:"probabilityUsed"`
}

type recalculationReportDTO struct {
	Baseline        int                `json:"baseline"`
	FinalRatings    map[string]int     `json:"finalRatings"`
	StoredRatings   map[string]int     `json:"storedRatings"`
	TeamRatings     map[string]int     `json:"teamRatings"`
	Drift           []ratingDriftDTO   `json:"drift"`
	Evolution       []evolutionStepDTO `json:"evolution,omitempty"`
	MatchesReplayed int                `json:"matchesReplayed"`
	Applied         bool               `json:"applied"`
}

func toRecalculationReportDTO(report usecase.RecalculationReport, includeEvolution bool) recalculationReportDTO {
	drift := make([]ratingDriftDTO, 0, len(report.Drift))
	for _, d := range report.Drift {
		drift = append(drift, ratingDriftDTO{PlayerID: d.PlayerID, Stored: d.Stored, Replayed: d.Replayed})
	}

	dto := recalculationReportDTO{
		Baseline:        report.Baseline,
		FinalRatings:    report.FinalRatings,
		StoredRatings:   report.StoredRatings,
		TeamRatings:     report.TeamRatings,
		Drift:           drift,
		MatchesReplayed: report.MatchesReplayed,
		Applied:         report.Applied,
	}
	if includeEvolution {
		steps := make([]evolutionStepDTO, 0, len(report.Evolution))
		for _, s := range report.Evolution {
			steps = append(steps, evolutionStepDTO{
				MatchID:         s.MatchID,
				PlayerID:        s.PlayerID,
				Won:             s.Won,
				Before:          s.Before,
				Delta:           s.Delta,
				After:           s.After,
				ProbabilityUsed: s.ProbabilityUsed,
			})
		}
		dto.Evolution = steps
	}
	return dto
}

func (h *Handler) ListRankings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRankings")
	defer span.End()

	standings, err := h.stats.Rankings(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "rankings failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	dtos := make([]playerStandingDTO, 0, len(standings))
	for _, s := range standings {
		dtos = append(dtos, playerStandingDTO{
			Rank:         s.Rank,
			PlayerID:     s.PlayerID,
			Name:         s.Name,
			Rating:       s.Rating,
			PeakRating:   s.PeakRating,
			Wins:         s.Wins,
			Losses:       s.Losses,
			ShutoutWins:  s.ShutoutWins,
			LastPlayedAt: formatTimePtr(s.LastPlayedAt),
		})
	}

	writeSuccess(ctx, w, http.StatusOK, dtos)
}

func (h *Handler) ListTeamRankings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeamRankings")
	defer span.End()

	standings, err := h.stats.TeamRankings(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "team rankings failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	dtos := make([]teamStandingDTO, 0, len(standings))
	for _, s := range standings {
		dtos = append(dtos, teamStandingDTO{
			Rank:        s.Rank,
			TeamID:      s.TeamID,
			Name:        s.Name,
			Rating:      s.Rating,
			Wins:        s.Wins,
			Losses:      s.Losses,
			LastMatchAt: formatTimePtr(s.LastMatchAt),
		})
	}

	writeSuccess(ctx, w, http.StatusOK, dtos)
}

// RecalculateRatings replays the full match log. With apply=true the replayed
// ratings are written back; otherwise the report only describes the drift.
func (h *Handler) RecalculateRatings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecalculateRatings")
	defer span.End()

	apply := parseBoolQuery(r.URL.Query().Get("apply"))
	includeEvolution := parseBoolQuery(r.URL.Query().Get("includeEvolution"))

	report, err := h.recalc.Recalculate(ctx, apply)
	if err != nil {
		h.logger.WarnContext(ctx, "rating recalculation failed", "apply", apply, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "rating recalculation finished",
		"apply", apply,
		"matches_replayed", report.MatchesReplayed,
		"drifted_players", len(report.Drift),
	)

	writeSuccess(ctx, w, http.StatusOK, toRecalculationReportDTO(report, includeEvolution))
}

func parseBoolQuery(raw string) bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && parsed
}
