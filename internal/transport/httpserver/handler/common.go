package handler

import (
	"errors"
	"net/http"

	userdomain "recipe-share-go/internal/domain/user"
	"recipe-share-go/internal/transport/httpserver/middleware"
)

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type authMeResponse struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Name      string  `json:"name"`
	AvatarURL *string `json:"avatar_url"`
	Bio       *string `json:"bio"`
}

func (h *Handlers) AuthMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	resp := authMeResponse{ID: user.ID, Email: user.Email, Name: user.Name}
	profile, err := h.Profiles.GetProfile(r.Context(), user.ID)
	if err != nil && !errors.Is(err, userdomain.ErrProfileNotFound) {
		h.log.InternalError("auth.me: get profile failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}
	if profile != nil {
		if profile.FullName != nil {
			resp.Name = *profile.FullName
		}
		resp.AvatarURL = profile.AvatarURL
		resp.Bio = profile.Bio
	}

	writeJSON(w, http.StatusOK, resp)
}
