package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/robolearn/robolearn/internal/profile"
)

// ProfileStore is the persistence seam for learner profiles.
type ProfileStore interface {
	Get(ctx context.Context, userID string) (profile.Profile, error)
	Upsert(ctx context.Context, p profile.Profile) error
	Delete(ctx context.Context, userID string) error
}

// profileHandler serves the profile CRUD endpoints.
type profileHandler struct {
	store  ProfileStore
	logger *slog.Logger
}

func (h *profileHandler) get(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	if userID == "" {
		WriteError(w, http.StatusBadRequest, "missing_user_id", "user id is required", h.logger)
		return
	}

	prof, err := h.store.Get(r.Context(), userID)
	if err != nil {
		h.logger.Error("loading profile", "user_id", userID, "error", err)
		WriteError(w, http.StatusInternalServerError, "storage_error", "could not load profile", h.logger)
		return
	}
	// A missing row comes back as the zero profile; the default
	// strategy applies, so this is a 200, not a 404.
	WriteJSON(w, http.StatusOK, prof)
}

func (h *profileHandler) put(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	if userID == "" {
		WriteError(w, http.StatusBadRequest, "missing_user_id", "user id is required", h.logger)
		return
	}

	var prof profile.Profile
	if !decodeJSON(w, r, &prof, h.logger) {
		return
	}
	prof.UserID = userID

	if err := prof.Validate(); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_profile", err.Error(), h.logger)
		return
	}

	if err := h.store.Upsert(r.Context(), prof); err != nil {
		h.logger.Error("saving profile", "user_id", userID, "error", err)
		WriteError(w, http.StatusInternalServerError, "storage_error", "could not save profile", h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, prof)
}

func (h *profileHandler) delete(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	if userID == "" {
		WriteError(w, http.StatusBadRequest, "missing_user_id", "user id is required", h.logger)
		return
	}

	if err := h.store.Delete(r.Context(), userID); err != nil {
		h.logger.Error("deleting profile", "user_id", userID, "error", err)
		WriteError(w, http.StatusInternalServerError, "storage_error", "could not delete profile", h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
