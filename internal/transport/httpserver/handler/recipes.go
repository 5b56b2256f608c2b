package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	collabdomain "recipe-share-go/internal/domain/collab"
	cookingdomain "recipe-share-go/internal/domain/cooking"
	recipedomain "recipe-share-go/internal/domain/recipe"
	"recipe-share-go/internal/transport/httpserver/middleware"
)

type ingredientRequest struct {
	Name     string   `json:"name"`
	Quantity *float64 `json:"quantity"`
	Unit     string   `json:"unit"`
	Notes    *string  `json:"notes"`
}

type stepRequest struct {
	Instruction  string  `json:"instruction"`
	TimerMinutes *int    `json:"timer_minutes"`
	ImageURL     *string `json:"image_url"`
	VideoURL     *string `json:"video_url"`
}

type recipeRequest struct {
	Title            string                   `json:"title"`
	Description      *string                  `json:"description"`
	Servings         *int                     `json:"servings"`
	PrepTime         *int                     `json:"prep_time"`
	CookTime         *int                     `json:"cook_time"`
	Difficulty       *recipedomain.Difficulty `json:"difficulty"`
	Tags             []string                 `json:"tags"`
	FeaturedImageURL *string                  `json:"featured_image_url"`
	IsPublic         bool                     `json:"is_public"`
	IsDraft          bool                     `json:"is_draft"`
	Ingredients      []ingredientRequest      `json:"ingredients"`
	Steps            []stepRequest            `json:"steps"`
}

func (req recipeRequest) toInput() recipedomain.CreateInput {
	servings := 4
	if req.Servings != nil {
		servings = *req.Servings
	}

	ingredients := make([]recipedomain.IngredientInput, 0, len(req.Ingredients))
	for _, in := range req.Ingredients {
		ingredients = append(ingredients, recipedomain.IngredientInput{
			Name:     in.Name,
			Quantity: in.Quantity,
			Unit:     in.Unit,
			Notes:    in.Notes,
		})
	}
	steps := make([]recipedomain.StepInput, 0, len(req.Steps))
	for _, in := range req.Steps {
		steps = append(steps, recipedomain.StepInput{
			Instruction:  in.Instruction,
			TimerMinutes: in.TimerMinutes,
			ImageURL:     in.ImageURL,
			VideoURL:     in.VideoURL,
		})
	}

	return recipedomain.CreateInput{
		Title:            req.Title,
		Description:      req.Description,
		Servings:         servings,
		PrepTime:         req.PrepTime,
		CookTime:         req.CookTime,
		Difficulty:       req.Difficulty,
		Tags:             req.Tags,
		FeaturedImageURL: req.FeaturedImageURL,
		Public:           req.IsPublic,
		Draft:            req.IsDraft,
		Ingredients:      ingredients,
		Steps:            steps,
	}
}

type recipeResponse struct {
	ID               string                   `json:"id"`
	UserID           string                   `json:"user_id"`
	Title            string                   `json:"title"`
	Description      *string                  `json:"description"`
	Servings         int                      `json:"servings"`
	PrepTime         *int                     `json:"prep_time"`
	CookTime         *int                     `json:"cook_time"`
	Difficulty       *recipedomain.Difficulty `json:"difficulty"`
	Tags             []string                 `json:"tags"`
	FeaturedImageURL *string                  `json:"featured_image_url"`
	IsPublic         bool                     `json:"is_public"`
	CreatedAt        time.Time                `json:"created_at"`
	UpdatedAt        time.Time                `json:"updated_at"`
}

type accessResponse struct {
	Permission string `json:"permission"`
	Status     string `json:"status,omitempty"`
	CanEdit    bool   `json:"can_edit"`
}

type ingredientResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit"`
	Notes      *string `json:"notes"`
	OrderIndex int     `json:"order_index"`
}

type stepResponse struct {
	ID           string  `json:"id"`
	StepNumber   int     `json:"step_number"`
	Instruction  string  `json:"instruction"`
	TimerMinutes *int    `json:"timer_minutes"`
	ImageURL     *string `json:"image_url"`
	VideoURL     *string `json:"video_url"`
}

type recipeDetailResponse struct {
	recipeResponse
	Ingredients []ingredientResponse `json:"ingredients"`
	Steps       []stepResponse       `json:"steps"`
	Access      accessResponse       `json:"access"`
}

func toRecipeResponse(rec recipedomain.Recipe) recipeResponse {
	return recipeResponse{
		ID:               rec.ID,
		UserID:           rec.UserID,
		Title:            rec.Title,
		Description:      rec.Description,
		Servings:         rec.Servings,
		PrepTime:         rec.PrepTime,
		CookTime:         rec.CookTime,
		Difficulty:       rec.Difficulty,
		Tags:             rec.Tags,
		FeaturedImageURL: rec.FeaturedImageURL,
		IsPublic:         rec.IsPublic,
		CreatedAt:        rec.CreatedAt,
		UpdatedAt:        rec.UpdatedAt,
	}
}

func toDetailResponse(d *recipedomain.Detail) recipeDetailResponse {
	resp := recipeDetailResponse{
		recipeResponse: toRecipeResponse(d.Recipe),
		Ingredients:    make([]ingredientResponse, 0, len(d.Ingredients)),
		Steps:          make([]stepResponse, 0, len(d.Steps)),
		Access: accessResponse{
			Permission: string(d.Access.Permission),
			Status:     string(d.Access.Status),
			CanEdit:    d.Access.CanEdit(),
		},
	}
	for _, ing := range d.Ingredients {
		resp.Ingredients = append(resp.Ingredients, ingredientResponse{
			ID:         ing.ID,
			Name:       ing.Name,
			Quantity:   ing.Quantity,
			Unit:       ing.Unit,
			Notes:      ing.Notes,
			OrderIndex: ing.OrderIndex,
		})
	}
	for _, st := range d.Steps {
		resp.Steps = append(resp.Steps, stepResponse{
			ID:           st.ID,
			StepNumber:   st.StepNumber,
			Instruction:  st.Instruction,
			TimerMinutes: st.TimerMinutes,
			ImageURL:     st.ImageURL,
			VideoURL:     st.VideoURL,
		})
	}
	return resp
}

// writeRecipeError maps domain failures onto the error envelope. Edit
// denials keep distinct codes so the client can explain why, not just that,
// the action was blocked.
func (h *Handlers) writeRecipeError(w http.ResponseWriter, op string, err error, args ...any) {
	switch {
	case errors.Is(err, recipedomain.ErrRecipeNotFound):
		h.log.BusinessError(op+": recipe not found", err, args...)
		writeError(w, http.StatusNotFound, "recipe_not_found", "recipe not found")
	case errors.Is(err, recipedomain.ErrTitleRequired),
		errors.Is(err, recipedomain.ErrInvalidDifficulty),
		errors.Is(err, cookingdomain.ErrInvalidServings):
		h.log.BusinessError(op+": invalid input", err, args...)
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, recipedomain.ErrOnlyOwnerCanDelete):
		h.log.BusinessError(op+": owner only", err, args...)
		writeError(w, http.StatusForbidden, "owner_only", err.Error())
	case errors.Is(err, collabdomain.ErrPendingInvite):
		h.log.BusinessError(op+": invite pending", err, args...)
		writeError(w, http.StatusForbidden, "invite_pending", err.Error())
	case errors.Is(err, collabdomain.ErrViewerOnly):
		h.log.BusinessError(op+": viewer only", err, args...)
		writeError(w, http.StatusForbidden, "viewer_only", err.Error())
	case errors.Is(err, collabdomain.ErrNoAccess):
		h.log.BusinessError(op+": no access", err, args...)
		writeError(w, http.StatusForbidden, "no_access", err.Error())
	default:
		h.log.InternalError(op+": failed", err, args...)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func (h *Handlers) ListRecipes(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	query := r.URL.Query()
	limit, err := parseIntParam(query.Get("limit"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid limit")
		return
	}
	offset, err := parseIntParam(query.Get("offset"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid offset")
		return
	}

	recipes, err := h.Recipes.List(r.Context(), recipedomain.ListQuery{
		ViewerID:   user.ID,
		Search:     query.Get("q"),
		Tag:        query.Get("tag"),
		Difficulty: recipedomain.Difficulty(query.Get("difficulty")),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		h.writeRecipeError(w, "recipes.list", err, "user_id", user.ID)
		return
	}

	items := make([]recipeResponse, 0, len(recipes))
	for _, rec := range recipes {
		items = append(items, toRecipeResponse(rec))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (h *Handlers) ListRecipesByCategory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	q.Set("tag", chi.URLParam(r, "category"))
	r.URL.RawQuery = q.Encode()
	h.ListRecipes(w, r)
}

func (h *Handlers) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var req recipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid json body")
		return
	}

	detail, err := h.Recipes.Create(r.Context(), user.ID, req.toInput())
	if err != nil {
		h.writeRecipeError(w, "recipes.create", err, "user_id", user.ID)
		return
	}
	writeJSON(w, http.StatusCreated, toDetailResponse(detail))
}

func (h *Handlers) GetRecipe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}
	recipeID := chi.URLParam(r, "id")

	detail, err := h.Recipes.Get(r.Context(), recipeID, user.ID, user.Email)
	if err != nil {
		h.writeRecipeError(w, "recipes.get", err, "user_id", user.ID, "recipe_id", recipeID)
		return
	}
	writeJSON(w, http.StatusOK, toDetailResponse(detail))
}

func (h *Handlers) UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}
	recipeID := chi.URLParam(r, "id")

	var req recipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid json body")
		return
	}

	detail, err := h.Recipes.Update(r.Context(), user.ID, user.Email, recipedomain.UpdateInput{
		RecipeID:    recipeID,
		CreateInput: req.toInput(),
	})
	if err != nil {
		h.writeRecipeError(w, "recipes.update", err, "user_id", user.ID, "recipe_id", recipeID)
		return
	}
	writeJSON(w, http.StatusOK, toDetailResponse(detail))
}

func (h *Handlers) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}
	recipeID := chi.URLParam(r, "id")

	if err := h.Recipes.Delete(r.Context(), recipeID, user.ID); err != nil {
		h.writeRecipeError(w, "recipes.delete", err, "user_id", user.ID, "recipe_id", recipeID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type scaledIngredientsResponse struct {
	RecipeID       string                     `json:"recipe_id"`
	Servings       int                        `json:"servings"`
	TargetServings int                        `json:"target_servings"`
	Ingredients    []scaledIngredientResponse `json:"ingredients"`
}

type scaledIngredientResponse struct {
	ingredientResponse
	ScaledQuantity float64 `json:"scaled_quantity"`
	Display        string  `json:"display"`
}

// RecipeIngredients serves the ingredient list scaled to ?servings=T,
// defaulting to the recipe's own serving count.
func (h *Handlers) RecipeIngredients(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}
	recipeID := chi.URLParam(r, "id")

	rec, rows, err := h.Recipes.Ingredients(r.Context(), recipeID, user.ID, user.Email)
	if err != nil {
		h.writeRecipeError(w, "recipes.ingredients", err, "user_id", user.ID, "recipe_id", recipeID)
		return
	}

	target, err := parseIntParam(r.URL.Query().Get("servings"), rec.Servings)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid servings")
		return
	}

	scaled, err := cookingdomain.ScaleIngredients(rows, rec.Servings, target)
	if err != nil {
		h.writeRecipeError(w, "recipes.ingredients", err, "recipe_id", recipeID)
		return
	}

	resp := scaledIngredientsResponse{
		RecipeID:       rec.ID,
		Servings:       rec.Servings,
		TargetServings: target,
		Ingredients:    make([]scaledIngredientResponse, 0, len(scaled)),
	}
	for _, row := range scaled {
		resp.Ingredients = append(resp.Ingredients, scaledIngredientResponse{
			ingredientResponse: ingredientResponse{
				ID:         row.ID,
				Name:       row.Name,
				Quantity:   row.Quantity,
				Unit:       row.Unit,
				Notes:      row.Notes,
				OrderIndex: row.OrderIndex,
			},
			ScaledQuantity: row.ScaledQuantity,
			Display:        row.Display,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
