package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	collabdomain "recipe-share-go/internal/domain/collab"
	"recipe-share-go/internal/transport/httpserver/middleware"
)

type inviteRequest struct {
	Email string            `json:"email"`
	Role  collabdomain.Role `json:"role"`
}

type respondRequest struct {
	Accept bool `json:"accept"`
}

type changeRoleRequest struct {
	Role collabdomain.Role `json:"role"`
}

type collaboratorProfileResponse struct {
	UserID    string  `json:"user_id"`
	Email     *string `json:"email"`
	FullName  *string `json:"full_name"`
	AvatarURL *string `json:"avatar_url"`
}

type collaboratorResponse struct {
	ID           string                       `json:"id"`
	RecipeID     string                       `json:"recipe_id"`
	UserID       *string                      `json:"user_id"`
	InvitedEmail *string                      `json:"invited_email"`
	Role         collabdomain.Role            `json:"role"`
	Status       collabdomain.Status          `json:"status"`
	InvitedAt    time.Time                    `json:"invited_at"`
	Profile      *collaboratorProfileResponse `json:"profile,omitempty"`
}

type collaborationResponse struct {
	collaboratorResponse
	RecipeTitle string                       `json:"recipe_title"`
	Owner       *collaboratorProfileResponse `json:"owner,omitempty"`
}

func toCollaboratorResponse(c collabdomain.Collaborator) collaboratorResponse {
	return collaboratorResponse{
		ID:           c.ID,
		RecipeID:     c.RecipeID,
		UserID:       c.UserID,
		InvitedEmail: c.InvitedEmail,
		Role:         c.Role,
		Status:       c.Status,
		InvitedAt:    c.InvitedAt,
	}
}

func toProfileRefResponse(ref collabdomain.ProfileRef) *collaboratorProfileResponse {
	if !ref.Found {
		return nil
	}
	return &collaboratorProfileResponse{
		UserID:    ref.UserID,
		Email:     ref.Email,
		FullName:  ref.FullName,
		AvatarURL: ref.AvatarURL,
	}
}

func (h *Handlers) writeCollabError(w http.ResponseWriter, op string, err error, args ...any) {
	switch {
	case errors.Is(err, collabdomain.ErrRecipeNotFound):
		h.log.BusinessError(op+": recipe not found", err, args...)
		writeError(w, http.StatusNotFound, "recipe_not_found", "recipe not found")
	case errors.Is(err, collabdomain.ErrCollaboratorNotFound):
		h.log.BusinessError(op+": collaborator not found", err, args...)
		writeError(w, http.StatusNotFound, "collaborator_not_found", "collaborator not found")
	case errors.Is(err, collabdomain.ErrEmailRequired),
		errors.Is(err, collabdomain.ErrInvalidRole):
		h.log.BusinessError(op+": invalid input", err, args...)
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, collabdomain.ErrAlreadyInvited),
		errors.Is(err, collabdomain.ErrCannotInviteOwner):
		h.log.BusinessError(op+": duplicate invite", err, args...)
		writeError(w, http.StatusConflict, "already_collaborator", err.Error())
	case errors.Is(err, collabdomain.ErrInviteResolved):
		h.log.BusinessError(op+": invite resolved", err, args...)
		writeError(w, http.StatusConflict, "invite_resolved", err.Error())
	case errors.Is(err, collabdomain.ErrNotOwner):
		h.log.BusinessError(op+": not owner", err, args...)
		writeError(w, http.StatusForbidden, "owner_only", err.Error())
	case errors.Is(err, collabdomain.ErrNotInvitee):
		h.log.BusinessError(op+": not invitee", err, args...)
		writeError(w, http.StatusForbidden, "not_invitee", err.Error())
	case errors.Is(err, collabdomain.ErrNoAccess):
		h.log.BusinessError(op+": no access", err, args...)
		writeError(w, http.StatusForbidden, "no_access", err.Error())
	default:
		h.log.InternalError(op+": failed", err, args...)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func (h *Handlers) ListCollaborators(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}
	recipeID := chi.URLParam(r, "id")

	views, err := h.Collabs.ListForRecipe(r.Context(), recipeID, user.ID, user.Email)
	if err != nil {
		h.writeCollabError(w, "collaborators.list", err, "user_id", user.ID, "recipe_id", recipeID)
		return
	}

	items := make([]collaboratorResponse, 0, len(views))
	for _, view := range views {
		resp := toCollaboratorResponse(view.Collaborator)
		resp.Profile = toProfileRefResponse(view.Profile)
		items = append(items, resp)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (h *Handlers) InviteCollaborator(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}
	recipeID := chi.URLParam(r, "id")

	var req inviteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid json body")
		return
	}

	c, err := h.Collabs.Invite(r.Context(), collabdomain.InviteInput{
		RecipeID: recipeID,
		ActorID:  user.ID,
		Email:    req.Email,
		Role:     req.Role,
	})
	if err != nil {
		h.writeCollabError(w, "collaborators.invite", err, "user_id", user.ID, "recipe_id", recipeID)
		return
	}
	writeJSON(w, http.StatusCreated, toCollaboratorResponse(*c))
}

func (h *Handlers) RespondToInvite(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}
	collaboratorID := chi.URLParam(r, "id")

	var req respondRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid json body")
		return
	}

	c, err := h.Collabs.Respond(r.Context(), collaboratorID, user.ID, user.Email, req.Accept)
	if err != nil {
		h.writeCollabError(w, "collaborators.respond", err, "user_id", user.ID, "collaborator_id", collaboratorID)
		return
	}
	writeJSON(w, http.StatusOK, toCollaboratorResponse(*c))
}

func (h *Handlers) ChangeCollaboratorRole(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}
	collaboratorID := chi.URLParam(r, "id")

	var req changeRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid json body")
		return
	}

	c, err := h.Collabs.ChangeRole(r.Context(), collaboratorID, user.ID, req.Role)
	if err != nil {
		h.writeCollabError(w, "collaborators.change_role", err, "user_id", user.ID, "collaborator_id", collaboratorID)
		return
	}
	writeJSON(w, http.StatusOK, toCollaboratorResponse(*c))
}

func (h *Handlers) RemoveCollaborator(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}
	collaboratorID := chi.URLParam(r, "id")

	if err := h.Collabs.Remove(r.Context(), collaboratorID, user.ID); err != nil {
		h.writeCollabError(w, "collaborators.remove", err, "user_id", user.ID, "collaborator_id", collaboratorID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) ListCollaborations(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	rows, err := h.Collabs.ListForUser(r.Context(), user.ID, user.Email)
	if err != nil {
		h.writeCollabError(w, "collaborations.list", err, "user_id", user.ID)
		return
	}

	items := make([]collaborationResponse, 0, len(rows))
	for _, row := range rows {
		items = append(items, collaborationResponse{
			collaboratorResponse: toCollaboratorResponse(row.Collaborator),
			RecipeTitle:          row.Recipe.Title,
			Owner:                toProfileRefResponse(row.Owner),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}
