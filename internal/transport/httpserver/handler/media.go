package handler

import (
	"errors"
	"net/http"
	"path"

	"github.com/google/uuid"

	"recipe-share-go/internal/storage"
	"recipe-share-go/internal/transport/httpserver/middleware"
)

// Media uploads accept images everywhere and video for step clips. The map
// doubles as the extension chooser so stored names never trust the client's
// filename.
var errUnsupportedMedia = errors.New("unsupported media type")

var mediaExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
	"video/mp4":  ".mp4",
	"video/webm": ".webm",
}

// UploadAvatar stores the caller's avatar at a fixed per-user path,
// overwriting the previous one, and records the URL on the profile.
func (h *Handlers) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "multipart field 'file' is required")
		return
	}
	defer file.Close()

	normalized, err := storage.NormalizeAvatar(file)
	if err != nil {
		h.log.BusinessError("media.avatar: decode failed", err, "user_id", user.ID)
		writeError(w, http.StatusBadRequest, "invalid_image", "could not decode image")
		return
	}

	url, err := h.media.Save(r.Context(), storage.BucketAvatars, user.ID+".jpg", normalized, true)
	if err != nil {
		h.log.InternalError("media.avatar: save failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	if err := h.Profiles.SetAvatar(r.Context(), user.ID, url); err != nil {
		h.log.InternalError("media.avatar: profile update failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// UploadMedia stores recipe and step media under a random name; uploads
// never collide and never overwrite.
func (h *Handlers) UploadMedia(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "multipart field 'file' is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	ext, ok := mediaExtensions[contentType]
	if !ok {
		h.log.BusinessError("media.upload: unsupported type", errUnsupportedMedia, "user_id", user.ID, "content_type", contentType)
		writeError(w, http.StatusBadRequest, "unsupported_media", "unsupported media type")
		return
	}

	name := path.Join(user.ID, uuid.NewString()+ext)
	url, err := h.media.Save(r.Context(), storage.BucketRecipeMedia, name, file, false)
	if err != nil {
		h.log.InternalError("media.upload: save failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}
