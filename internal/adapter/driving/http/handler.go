// Package httphandler is the driving adapter the booth UI talks to: a
// kiosk-local JSON facade over the voting session services.
package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/votebooth/internal/application"
	"github.com/ericfisherdev/votebooth/internal/domain/model"
	"github.com/ericfisherdev/votebooth/internal/domain/port/driven"
)

// Handler is the HTTP driving adapter that serves the booth-facing API.
type Handler struct {
	auth      *application.AuthService
	selection *application.SelectionService
	navigator *application.Navigator
	submit    *application.SubmitService
	api       driven.VotingAPI
	logger    *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	auth *application.AuthService,
	selection *application.SelectionService,
	navigator *application.Navigator,
	submit *application.SubmitService,
	api driven.VotingAPI,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		auth:      auth,
		selection: selection,
		navigator: navigator,
		submit:    submit,
		api:       api,
		logger:    logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware. Selection and submission routes sit
// behind the fail-closed session guard; PIN entry, session status, results,
// and health do not.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/session", h.GetSession)
	mux.HandleFunc("POST /api/v1/session/pin", h.VerifyPIN)
	mux.Handle("GET /api/v1/session/categories/{category}", h.requireSession(http.HandlerFunc(h.GetCategoryPage)))
	mux.Handle("POST /api/v1/session/categories/{category}/selection", h.requireSession(http.HandlerFunc(h.PostSelection)))
	mux.Handle("POST /api/v1/session/submit", h.requireSession(http.HandlerFunc(h.Submit)))
	mux.HandleFunc("POST /api/v1/session/reset", h.Reset)
	mux.HandleFunc("GET /api/v1/results", h.GetResults)
	mux.HandleFunc("GET /api/v1/health", h.Health)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// requireSession is the fail-closed guard in front of protected routes: no
// persisted credential means the protected content is never served, only a
// 401 pointing the booth back to PIN entry.
func (h *Handler) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, err := h.auth.Authenticated(r.Context())
		if err != nil {
			h.logger.Error("session guard failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if !ok {
			writeJSON(w, http.StatusUnauthorized, SessionResponse{State: string(model.PhaseUnauthenticated)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetSession returns the navigator's view of the current session.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	state, err := h.navigator.State(r.Context())
	if err != nil {
		h.logger.Error("failed to derive session state", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(state))
}

// VerifyPIN drives the authentication gate.
func (h *Handler) VerifyPIN(w http.ResponseWriter, r *http.Request) {
	var req VerifyPinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := h.auth.Verify(r.Context(), req.PIN)
	if err != nil {
		if errors.Is(err, application.ErrMalformedPIN) {
			writeError(w, http.StatusBadRequest, "PIN must be numeric and of the required length")
			return
		}
		h.logger.Error("pin verification failed", "error", err)
		writeError(w, http.StatusBadGateway, "could not reach the voting server, please try again")
		return
	}

	resp := VerifyPinResponse{Valid: result.Valid, AlreadyVoted: result.AlreadyVoted}
	switch {
	case !result.Valid:
		resp.State = string(model.PhaseUnauthenticated)
	case result.AlreadyVoted:
		resp.State = string(model.PhaseVoted)
	default:
		resp.State = string(model.PhaseCategory)
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetCategoryPage loads one selection page: roster, restored choice, featured
// candidate, and the can-advance flag.
func (h *Handler) GetCategoryPage(w http.ResponseWriter, r *http.Request) {
	page, err := h.selection.LoadPage(r.Context(), r.PathValue("category"))
	if err != nil {
		if errors.Is(err, application.ErrUnknownCategory) {
			writeError(w, http.StatusNotFound, "unknown category")
			return
		}
		h.logger.Error("failed to load category page", "category", r.PathValue("category"), "error", err)
		writeError(w, http.StatusBadGateway, "failed to load candidates, please try again")
		return
	}

	writeJSON(w, http.StatusOK, toCategoryPageResponse(*page))
}

// PostSelection records the voter's choice for a category.
func (h *Handler) PostSelection(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sel, err := h.selection.Select(r.Context(), r.PathValue("category"), req.CandidateNumber)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrUnknownCategory):
			writeError(w, http.StatusNotFound, "unknown category")
		case errors.Is(err, application.ErrNoRoster):
			writeError(w, http.StatusConflict, "load the category before selecting")
		case errors.Is(err, application.ErrUnknownCandidate):
			writeError(w, http.StatusUnprocessableEntity, "candidate is not on the current list")
		default:
			h.logger.Error("failed to record selection", "category", r.PathValue("category"), "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, toSelectionResponse(*sel))
}

// Submit performs the one-shot bulk submission.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.submit.Submit(r.Context())
	if err != nil {
		var rejected *driven.RejectedError
		switch {
		case errors.Is(err, application.ErrSubmitInFlight):
			writeError(w, http.StatusConflict, "a submission is already in progress")
		case errors.Is(err, application.ErrIncompleteBallot):
			writeError(w, http.StatusConflict, "every category needs a selection before submitting")
		case errors.Is(err, application.ErrAlreadyVoted):
			writeError(w, http.StatusConflict, "this session has already voted")
		case errors.Is(err, model.ErrNotAuthenticated):
			writeJSON(w, http.StatusUnauthorized, SessionResponse{State: string(model.PhaseUnauthenticated)})
		case errors.As(err, &rejected):
			// Selections stay intact; the voter retries explicitly.
			writeError(w, http.StatusUnprocessableEntity, rejected.Message)
		default:
			h.logger.Error("submission failed", "error", err)
			writeError(w, http.StatusBadGateway, "could not reach the voting server, your choices are saved")
		}
		return
	}

	writeJSON(w, http.StatusOK, SubmitResponse{
		Message:     receipt.Message,
		SubmittedAt: receipt.SubmittedAt.UTC().Format(time.RFC3339),
		State:       string(model.PhaseVoted),
	})
}

// Reset wipes the session so the booth can hand the device to the next voter.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.submit.Reset(r.Context()); err != nil {
		h.logger.Error("session reset failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetResults proxies the backend's aggregated tallies.
func (h *Handler) GetResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.api.FetchResults(r.Context())
	if err != nil {
		h.logger.Error("failed to fetch results", "error", err)
		writeError(w, http.StatusBadGateway, "failed to load results, please try again")
		return
	}

	resp := make([]CategoryResultResponse, 0, len(results))
	for _, cr := range results {
		resp = append(resp, toCategoryResultResponse(cr))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}
