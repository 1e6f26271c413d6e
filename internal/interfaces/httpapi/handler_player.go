package httpapi

import (
	"net/http"

	"github.com/foostrack/foostrack/internal/domain/history"
	"github.com/foostrack/foostrack/internal/domain/player"
)

type createPlayerRequest struct {
	Name string `json:"name" validate:"required,min=1,max=120"`
}

type playerDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Rating    int    `json:"rating"`
	CreatedAt string `json:"createdAt"`
}

func toPlayerDTO(p player.Player) playerDTO {
	return playerDTO{
		ID:        p.ID,
		Name:      p.Name,
		Rating:    p.Rating,
		CreatedAt: formatTime(p.CreatedAt),
	}
}

func toPlayerDTOs(players []player.Player) []playerDTO {
	dtos := make([]playerDTO, 0, len(players))
	for _, p := range players {
		dtos = append(dtos, toPlayerDTO(p))
	}
	return dtos
}

type historyEntryDTO struct {
	ID           string `json:"id"`
	PlayerID     string `json:"playerId"`
	MatchID      string `json:"matchId"`
	RatingBefore int    `json:"ratingBefore"`
	RatingAfter  int    `json:"ratingAfter"`
	Difference   int    `json:"difference"`
	CreatedAt    string `json:"createdAt"`
}

func toHistoryEntryDTOs(entries []history.Entry) []historyEntryDTO {
	dtos := make([]historyEntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, historyEntryDTO{
			ID:           e.ID,
			PlayerID:     e.PlayerID,
			MatchID:      e.MatchID,
			RatingBefore: e.RatingBefore,
			RatingAfter:  e.RatingAfter,
			Difference:   e.Difference,
			CreatedAt:    formatTime(e.CreatedAt),
		})
	}
	return dtos
}

func (h *Handler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreatePlayer")
	defer span.End()

	var req createPlayerRequest
	if err := h.decodeRequest(ctx, r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.players.CreatePlayer(ctx, req.Name)
	if err != nil {
		h.logger.WarnContext(ctx, "create player failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, toPlayerDTO(created))
}

func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayer")
	defer span.End()

	p, err := h.players.GetPlayer(ctx, r.PathValue("playerID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toPlayerDTO(p))
}

func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayers")
	defer span.End()

	players, err := h.players.ListPlayers(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list players failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toPlayerDTOs(players))
}

func (h *Handler) GetPlayerHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerHistory")
	defer span.End()

	entries, err := h.players.ListHistory(ctx, r.PathValue("playerID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toHistoryEntryDTOs(entries))
}
