package handler

import (
	"net/http"

	"recipe-share-go/internal/transport/httpserver/middleware"
)

// DashboardRecipes lists the caller's own recipes. ?drafts=true narrows to
// drafts, ?drafts=false to published, absent returns both.
func (h *Handlers) DashboardRecipes(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	drafts, err := parseBoolParam(r.URL.Query().Get("drafts"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid drafts")
		return
	}

	recipes, err := h.Recipes.ListByOwner(r.Context(), user.ID, drafts)
	if err != nil {
		h.log.InternalError("dashboard.recipes: failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	items := make([]recipeResponse, 0, len(recipes))
	for _, rec := range recipes {
		items = append(items, toRecipeResponse(rec))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (h *Handlers) DashboardStats(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	stats, err := h.Recipes.Stats(r.Context(), user.ID)
	if err != nil {
		h.log.InternalError("dashboard.stats: failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
