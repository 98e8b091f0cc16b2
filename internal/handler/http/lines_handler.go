package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/sharp-lines-service/internal/service"
)

// LinesHandler handles HTTP requests for annotated lines and sharp alerts
type LinesHandler struct {
	service *service.QueryService
	logger  zerolog.Logger
}

// NewLinesHandler creates a new lines HTTP handler
func NewLinesHandler(service *service.QueryService, logger zerolog.Logger) *LinesHandler {
	return &LinesHandler{
		service: service,
		logger:  logger.With().Str("component", "lines_handler").Logger(),
	}
}

// RegisterRoutes registers HTTP routes with the provided router
func (h *LinesHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		// GET /api/v1/lines?sport=nba&date=2024-01-15&snapshot=12pm
		r.Get("/lines", h.handleGetLines)

		// GET /api/v1/alerts?sport=all&date=2024-01-15&snapshot=latest
		r.Get("/alerts", h.handleGetAlerts)

		// GET /api/v1/sports
		r.Get("/sports", h.handleGetSports)
	})
}

// handleGetLines handles GET /api/v1/lines
func (h *LinesHandler) handleGetLines(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.GetLines(r.Context(), queryFromRequest(r))
	if err != nil {
		h.queryError(w, err)
		return
	}

	h.jsonResponse(w, http.StatusOK, res)
}

// handleGetAlerts handles GET /api/v1/alerts
func (h *LinesHandler) handleGetAlerts(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.GetAlerts(r.Context(), queryFromRequest(r))
	if err != nil {
		h.queryError(w, err)
		return
	}

	h.jsonResponse(w, http.StatusOK, res)
}

// handleGetSports handles GET /api/v1/sports
func (h *LinesHandler) handleGetSports(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"sports": h.service.Categories(),
	})
}

func queryFromRequest(r *http.Request) service.Query {
	q := r.URL.Query()
	return service.Query{
		Category: q.Get("sport"),
		Date:     q.Get("date"),
		Label:    q.Get("snapshot"),
	}
}

func (h *LinesHandler) queryError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrInvalidQuery) {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	h.logger.Error().Err(err).Msg("failed to serve query")
	h.errorResponse(w, http.StatusInternalServerError, "failed to retrieve lines")
}

// jsonResponse writes a JSON response
func (h *LinesHandler) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// errorResponse writes a JSON error response
func (h *LinesHandler) errorResponse(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{
		"error": message,
	})
}
