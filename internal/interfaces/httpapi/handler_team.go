package httpapi

import (
	"net/http"

	"github.com/foostrack/foostrack/internal/domain/team"
	"github.com/foostrack/foostrack/internal/usecase"
)

type createTeamRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=120"`
	PlayerOneID string `json:"playerOneId" validate:"required"`
	PlayerTwoID string `json:"playerTwoId" validate:"required,nefield=PlayerOneID"`
}

type teamDTO struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	PlayerOneID string  `json:"playerOneId"`
	PlayerTwoID string  `json:"playerTwoId"`
	Rating      int     `json:"rating"`
	LastMatchAt *string `json:"lastMatchAt,omitempty"`
	CreatedAt   string  `json:"createdAt"`
}

type teamDetailsDTO struct {
	teamDTO
	Members []playerDTO `json:"members"`
}

func toTeamDTO(t team.Team) teamDTO {
	return teamDTO{
		ID:          t.ID,
		Name:        t.Name,
		PlayerOneID: t.PlayerOneID,
		PlayerTwoID: t.PlayerTwoID,
		Rating:      t.Rating,
		LastMatchAt: formatTimePtr(t.LastMatchAt),
		CreatedAt:   formatTime(t.CreatedAt),
	}
}

func toTeamDTOs(teams []team.Team) []teamDTO {
	dtos := make([]teamDTO, 0, len(teams))
	for _, t := range teams {
		dtos = append(dtos, toTeamDTO(t))
	}
	return dtos
}

func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateTeam")
	defer span.End()

	var req createTeamRequest
	if err := h.decodeRequest(ctx, r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.teams.CreateTeam(ctx, usecase.CreateTeamInput{
		Name:        req.Name,
		PlayerOneID: req.PlayerOneID,
		PlayerTwoID: req.PlayerTwoID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create team failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, toTeamDTO(created))
}

func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeam")
	defer span.End()

	details, err := h.teams.GetTeam(ctx, r.PathValue("teamID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamDetailsDTO{
		teamDTO: toTeamDTO(details.Team),
		Members: toPlayerDTOs(details.Members),
	})
}

func (h *Handler) GetTeamHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeamHistory")
	defer span.End()

	entries, err := h.teams.ListHistory(ctx, r.PathValue("teamID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toHistoryEntryDTOs(entries))
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	teams, err := h.teams.ListTeams(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list teams failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toTeamDTOs(teams))
}
