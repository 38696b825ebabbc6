package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wrale/wrale-proof/api/types/v1alpha1"
	"github.com/wrale/wrale-proof/internal/wproofd/overlay"
	"github.com/wrale/wrale-proof/internal/wproofd/settings"
)

// GetSettings returns the whole overlay configuration
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Get(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, settings.ToAPI(s))
}

// PutSettings replaces the whole overlay configuration
func (h *Handler) PutSettings(w http.ResponseWriter, r *http.Request) {
	var req v1alpha1.Settings
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	saved, err := h.settings.Save(r.Context(), settings.FromAPI(req))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.logger.Info().
		Bool("enabled", saved.Enabled).
		Int("items", len(saved.Items)).
		Int("groups", len(saved.Groups)).
		Msg("settings replaced")
	h.respondJSON(w, http.StatusOK, settings.ToAPI(saved))
}

// AddItem appends a content item
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req v1alpha1.ContentItem
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	item, err := h.settings.AddItem(r.Context(), overlay.ItemFromAPI(req))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, overlay.ItemToAPI(item))
}

// RemoveItem deletes a content item
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.settings.RemoveItem(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddGroup appends a display group
func (h *Handler) AddGroup(w http.ResponseWriter, r *http.Request) {
	var req v1alpha1.DisplayGroup
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	group, err := h.settings.AddGroup(r.Context(), overlay.GroupFromAPI(req))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, overlay.GroupToAPI(group))
}

// RemoveGroup deletes a display group and strips it from every item
func (h *Handler) RemoveGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.settings.RemoveGroup(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 0 {
		return 0, ErrInvalidRequest("id must be a non-negative integer")
	}
	return id, nil
}
