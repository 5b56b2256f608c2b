package handler

import (
	"errors"
	"net/http"
	"time"

	userdomain "recipe-share-go/internal/domain/user"
	"recipe-share-go/internal/transport/httpserver/middleware"
)

type updateProfileRequest struct {
	FullName *string `json:"full_name"`
	Bio      *string `json:"bio"`
}

type profileResponse struct {
	UserID    string    `json:"user_id"`
	Email     *string   `json:"email"`
	FullName  *string   `json:"full_name"`
	Bio       *string   `json:"bio"`
	AvatarURL *string   `json:"avatar_url"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toProfileResponse(p *userdomain.Profile) profileResponse {
	return profileResponse{
		UserID:    p.UserID,
		Email:     p.Email,
		FullName:  p.FullName,
		Bio:       p.Bio,
		AvatarURL: p.AvatarURL,
		UpdatedAt: p.UpdatedAt,
	}
}

func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid json body")
		return
	}

	profile, err := h.Profiles.UpdateProfile(r.Context(), userdomain.UpdateProfileInput{
		UserID:   user.ID,
		FullName: req.FullName,
		Bio:      req.Bio,
	})
	if err != nil {
		if errors.Is(err, userdomain.ErrProfileNotFound) {
			h.log.BusinessError("profile.update: not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "profile_not_found", "profile not found")
			return
		}
		h.log.BusinessError("profile.update: rejected", err, "user_id", user.ID)
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(profile))
}
