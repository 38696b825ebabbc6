// Package http exposes overlay administration and page delivery over HTTP
package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/wrale/wrale-proof/api/types/v1alpha1"
	"github.com/wrale/wrale-proof/internal/wproofd/delivery"
	"github.com/wrale/wrale-proof/internal/wproofd/ratelimit"
	"github.com/wrale/wrale-proof/internal/wproofd/settings"
)

// PageGroups reads and assigns the audience group of pages
type PageGroups interface {
	Get(ctx context.Context, page string) (string, error)
	Set(ctx context.Context, page, group string) error
}

// Planner resolves a page to what it rotates through
type Planner interface {
	Plan(ctx context.Context, page string) (*delivery.Plan, error)
}

// Streamer runs the overlay stream of a planned page
type Streamer interface {
	Serve(w http.ResponseWriter, r *http.Request, plan *delivery.Plan)
}

// Handler encapsulates the HTTP API
type Handler struct {
	settings  settings.Service
	pages     PageGroups
	planner   Planner
	stream    Streamer
	ratelimit ratelimit.Service
	logger    zerolog.Logger
}

// NewHandler creates a new HTTP handler. ratelimit may be nil to leave the
// stream endpoint unlimited.
func NewHandler(
	settings settings.Service,
	pages PageGroups,
	planner Planner,
	stream Streamer,
	ratelimit ratelimit.Service,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		settings:  settings,
		pages:     pages,
		planner:   planner,
		stream:    stream,
		ratelimit: ratelimit,
		logger:    logger.With().Str("component", "overlay-http").Logger(),
	}
}

func (h *Handler) decode(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return ErrInvalidRequest("invalid request body")
	}
	return nil
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			h.logger.Error().Err(err).Msg("failed to encode response")
		}
	}
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	he := toHTTPError(err)
	if he.StatusCode() >= http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	h.respondJSON(w, he.StatusCode(), v1alpha1.Error{
		Code:    he.ErrorCode(),
		Message: he.Error(),
	})
}
