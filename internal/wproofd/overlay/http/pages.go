package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wrale/wrale-proof/api/types/v1alpha1"
)

// GetPageGroup returns the audience group assigned to a page
func (h *Handler) GetPageGroup(w http.ResponseWriter, r *http.Request) {
	page := chi.URLParam(r, "page")

	group, err := h.pages.Get(r.Context(), page)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, v1alpha1.PageGroup{
		TypeMeta: v1alpha1.NewTypeMeta("PageGroup"),
		Page:     page,
		Group:    group,
	})
}

// PutPageGroup assigns a page to an audience group. An empty group clears
// the assignment.
func (h *Handler) PutPageGroup(w http.ResponseWriter, r *http.Request) {
	page := chi.URLParam(r, "page")

	var req v1alpha1.PageGroup
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.pages.Set(r.Context(), page, req.Group); err != nil {
		h.respondError(w, r, err)
		return
	}

	group, err := h.pages.Get(r.Context(), page)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, v1alpha1.PageGroup{
		TypeMeta: v1alpha1.NewTypeMeta("PageGroup"),
		Page:     page,
		Group:    group,
	})
}

// GetOverlays previews the items a page rotates through
func (h *Handler) GetOverlays(w http.ResponseWriter, r *http.Request) {
	plan, err := h.planner.Plan(r.Context(), chi.URLParam(r, "page"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, plan.Eligible())
}

// ServeStream upgrades to the page overlay stream. The page is planned
// before the upgrade so lookup failures still get a proper status.
func (h *Handler) ServeStream(w http.ResponseWriter, r *http.Request) {
	plan, err := h.planner.Plan(r.Context(), chi.URLParam(r, "page"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.stream.Serve(w, r, plan)
}
