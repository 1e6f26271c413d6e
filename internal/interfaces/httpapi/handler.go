package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/foostrack/foostrack/internal/platform/logging"
	"github.com/foostrack/foostrack/internal/usecase"
)

// Handler exposes the application services over HTTP.
type Handler struct {
	players  *usecase.PlayerService
	teams    *usecase.TeamService
	matches  *usecase.MatchService
	stats    *usecase.StatsService
	recalc   *usecase.RecalculationService
	logger   *logging.Logger
	validate *validator.Validate
}

func NewHandler(
	players *usecase.PlayerService,
	teams *usecase.TeamService,
	matches *usecase.MatchService,
	stats *usecase.StatsService,
	recalc *usecase.RecalculationService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		players:  players,
		teams:    teams,
		matches:  matches,
		stats:    stats,
		recalc:   recalc,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeSuccess(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeRequest parses the JSON body into dst and runs struct validation.
// Any failure maps to an invalid-input error for the caller.
func (h *Handler) decodeRequest(ctx context.Context, body io.Reader, dst any) error {
	decoder := sonic.ConfigDefault.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", usecase.ErrInvalidInput, err)
	}
	if err := h.validate.StructCtx(ctx, dst); err != nil {
		return fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := formatTime(*t)
	return &formatted
}
