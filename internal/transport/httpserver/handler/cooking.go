package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	cookingdomain "recipe-share-go/internal/domain/cooking"
	"recipe-share-go/internal/transport/httpserver/middleware"
)

type timerResponse struct {
	SessionID        string `json:"session_id"`
	Step             int    `json:"step"`
	State            string `json:"state"`
	DurationSeconds  int    `json:"duration_seconds"`
	RemainingSeconds int    `json:"remaining_seconds"`
}

func toTimerResponse(snap cookingdomain.TimerSnapshot) timerResponse {
	return timerResponse{
		SessionID:        snap.SessionID,
		Step:             snap.Step,
		State:            string(snap.State),
		DurationSeconds:  int(snap.Duration / time.Second),
		RemainingSeconds: int(snap.Remaining / time.Second),
	}
}

func (h *Handlers) writeCookingError(w http.ResponseWriter, op string, err error, args ...any) {
	switch {
	case errors.Is(err, cookingdomain.ErrSessionNotFound):
		h.log.BusinessError(op+": session not found", err, args...)
		writeError(w, http.StatusNotFound, "session_not_found", "cook session not found")
	case errors.Is(err, cookingdomain.ErrNotSessionOwner):
		h.log.BusinessError(op+": not session owner", err, args...)
		writeError(w, http.StatusForbidden, "not_session_owner", err.Error())
	case errors.Is(err, cookingdomain.ErrStepOutOfRange):
		h.log.BusinessError(op+": step out of range", err, args...)
		writeError(w, http.StatusBadRequest, "invalid_step", err.Error())
	case errors.Is(err, cookingdomain.ErrTimerNotFound):
		h.log.BusinessError(op+": timer not found", err, args...)
		writeError(w, http.StatusNotFound, "timer_not_found", err.Error())
	case errors.Is(err, cookingdomain.ErrTimerNotRunning),
		errors.Is(err, cookingdomain.ErrTimerNotPaused):
		h.log.BusinessError(op+": bad timer transition", err, args...)
		writeError(w, http.StatusConflict, "invalid_timer_state", err.Error())
	default:
		h.log.InternalError(op+": failed", err, args...)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

// StartCookSession opens (or resumes) the caller's session for a recipe. The
// step count is pinned at session start; a concurrent recipe edit does not
// resize a session already in the kitchen.
func (h *Handlers) StartCookSession(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}
	recipeID := chi.URLParam(r, "id")

	detail, err := h.Recipes.Get(r.Context(), recipeID, user.ID, user.Email)
	if err != nil {
		h.writeRecipeError(w, "cook.start", err, "user_id", user.ID, "recipe_id", recipeID)
		return
	}

	progress := h.Cooking.Start(user.ID, recipeID, len(detail.Steps))
	writeJSON(w, http.StatusCreated, progress)
}

func (h *Handlers) GetCookSession(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}
	sessionID := chi.URLParam(r, "session")

	progress, err := h.Cooking.Get(sessionID, user.ID)
	if err != nil {
		h.writeCookingError(w, "cook.get", err, "user_id", user.ID, "session_id", sessionID)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (h *Handlers) EndCookSession(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}
	sessionID := chi.URLParam(r, "session")

	if err := h.Cooking.End(sessionID, user.ID); err != nil {
		h.writeCookingError(w, "cook.end", err, "user_id", user.ID, "session_id", sessionID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) ToggleStep(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}
	sessionID := chi.URLParam(r, "session")

	step, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid step number")
		return
	}

	progress, err := h.Cooking.Toggle(sessionID, user.ID, step)
	if err != nil {
		h.writeCookingError(w, "cook.toggle", err, "user_id", user.ID, "session_id", sessionID, "step", step)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

type startTimerRequest struct {
	Minutes *int `json:"minutes"`
}

// StepTimer dispatches the timer actions. Starting reads the duration from
// the step's timer_minutes, with an optional body override.
func (h *Handlers) StepTimer(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}
	sessionID := chi.URLParam(r, "session")
	action := chi.URLParam(r, "action")

	step, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid step number")
		return
	}

	var snap cookingdomain.TimerSnapshot
	switch action {
	case "start":
		minutes, ok := h.timerMinutes(w, r, sessionID, user, step)
		if !ok {
			return
		}
		snap, err = h.Cooking.StartTimer(sessionID, user.ID, step, time.Duration(minutes)*time.Minute)
	case "pause":
		snap, err = h.Cooking.PauseTimer(sessionID, user.ID, step)
	case "resume":
		snap, err = h.Cooking.ResumeTimer(sessionID, user.ID, step)
	case "stop":
		snap, err = h.Cooking.StopTimer(sessionID, user.ID, step)
	case "state":
		snap, err = h.Cooking.TimerState(sessionID, user.ID, step)
	default:
		writeError(w, http.StatusBadRequest, "invalid_request", "unknown timer action")
		return
	}
	if err != nil {
		h.writeCookingError(w, "cook.timer."+action, err, "user_id", user.ID, "session_id", sessionID, "step", step)
		return
	}
	writeJSON(w, http.StatusOK, toTimerResponse(snap))
}

// timerMinutes resolves the start duration: body override first, then the
// step's own timer_minutes. Writes the error response itself on failure.
func (h *Handlers) timerMinutes(w http.ResponseWriter, r *http.Request, sessionID string, user middleware.User, step int) (int, bool) {
	var req startTimerRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid json body")
			return 0, false
		}
	}
	if req.Minutes != nil {
		if *req.Minutes < 1 {
			writeError(w, http.StatusBadRequest, "invalid_request", "minutes must be at least 1")
			return 0, false
		}
		return *req.Minutes, true
	}

	progress, err := h.Cooking.Get(sessionID, user.ID)
	if err != nil {
		h.writeCookingError(w, "cook.timer.start", err, "user_id", user.ID, "session_id", sessionID)
		return 0, false
	}
	detail, err := h.Recipes.Get(r.Context(), progress.RecipeID, user.ID, user.Email)
	if err != nil {
		h.writeRecipeError(w, "cook.timer.start", err, "user_id", user.ID, "recipe_id", progress.RecipeID)
		return 0, false
	}
	for _, st := range detail.Steps {
		if st.StepNumber == step && st.TimerMinutes != nil && *st.TimerMinutes > 0 {
			return *st.TimerMinutes, true
		}
	}

	writeError(w, http.StatusBadRequest, "no_timer", "this step has no timer")
	return 0, false
}
