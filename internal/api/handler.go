// Package api is the HTTP surface of the teamstats service: enqueue a team
// request, poll for its result and run the all-teams fetch.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/teamstats/pkg/pipeline"
	"github.com/Sternrassler/teamstats/pkg/stats"
	"github.com/Sternrassler/teamstats/pkg/teams"
)

// TeamService is the set of operations the handlers pass through to.
type TeamService interface {
	Enqueue(ctx context.Context, teamNumber int) (string, error)
	Poll(ctx context.Context, token string) (*pipeline.Result, error)
	Summary(ctx context.Context, token string) ([]stats.SeasonSummary, error)
	AllTeams(ctx context.Context) ([]stats.StatRecord, error)
	AllTeamsSummary(ctx context.Context) ([]stats.SeasonSummary, error)
}

// EnqueueRequest is the validated input of the enqueue endpoint.
type EnqueueRequest struct {
	Team int `validate:"required,gt=0"`
}

// EnqueueResponse carries the token to poll with.
type EnqueueResponse struct {
	CorrelationID string `json:"correlation_id"`
}

// PendingResponse is returned while a request is still being processed.
type PendingResponse struct {
	CorrelationID string `json:"correlation_id"`
	Status        string `json:"status"`
}

// Handler serves the team endpoints.
type Handler struct {
	service  TeamService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewHandler creates a handler over service.
func NewHandler(service TeamService, logger zerolog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

// EnqueueTeam handles POST /teams/{team}/requests.
func (h *Handler) EnqueueTeam(w http.ResponseWriter, r *http.Request) {
	team, err := strconv.Atoi(chi.URLParam(r, "team"))
	if err != nil {
		respondWithError(w, r, h.logger, http.StatusBadRequest, "team must be an integer")
		return
	}

	req := EnqueueRequest{Team: team}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, r, h.logger, http.StatusBadRequest, "team must be a positive integer")
		return
	}

	token, err := h.service.Enqueue(r.Context(), req.Team)
	if err != nil {
		if errors.Is(err, teams.ErrInvalidTeam) {
			respondWithError(w, r, h.logger, http.StatusBadRequest, err.Error())
			return
		}
		respondWithError(w, r, h.logger, http.StatusServiceUnavailable, "request could not be queued")
		return
	}

	respondWithJSON(w, h.logger, http.StatusAccepted, EnqueueResponse{CorrelationID: token})
}

// GetResult handles GET /teams/results/{correlationID}.
func (h *Handler) GetResult(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "correlationID")

	res, err := h.service.Poll(r.Context(), token)
	if err != nil {
		h.respondPollError(w, r, token, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, res)
}

// GetResultSummary handles GET /teams/results/{correlationID}/summary.
func (h *Handler) GetResultSummary(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "correlationID")

	summary, err := h.service.Summary(r.Context(), token)
	if err != nil {
		h.respondPollError(w, r, token, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, summary)
}

// GetAllTeams handles GET /teams/all.
func (h *Handler) GetAllTeams(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.AllTeams(r.Context())
	if err != nil {
		respondWithError(w, r, h.logger, http.StatusInternalServerError, fmt.Sprintf("Internal server error: %v", err))
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, records)
}

// GetAllTeamsSummary handles GET /teams/all/summary.
func (h *Handler) GetAllTeamsSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.AllTeamsSummary(r.Context())
	if err != nil {
		respondWithError(w, r, h.logger, http.StatusInternalServerError, fmt.Sprintf("Internal server error: %v", err))
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, summary)
}

func (h *Handler) respondPollError(w http.ResponseWriter, r *http.Request, token string, err error) {
	switch {
	case errors.Is(err, teams.ErrPending):
		respondWithJSON(w, h.logger, http.StatusAccepted, PendingResponse{CorrelationID: token, Status: "pending"})
	case errors.Is(err, teams.ErrNotFound):
		respondWithError(w, r, h.logger, http.StatusNotFound, "result not found")
	default:
		respondWithError(w, r, h.logger, http.StatusInternalServerError, "result could not be read")
	}
}
