package http

import (
	"log/slog"
	"net/http"
	"time"

	"paisa/internal/core"
)

type settingsResponse struct {
	SMSPermissionGranted bool       `json:"sms_permission_granted"`
	DarkMode             bool       `json:"dark_mode"`
	LastSyncAt           *time.Time `json:"last_sync_at,omitempty"`
}

func toSettingsResponse(s core.Settings) settingsResponse {
	out := settingsResponse{
		SMSPermissionGranted: s.SMSPermissionGranted,
		DarkMode:             s.DarkMode,
	}
	if !s.LastSyncAt.IsZero() {
		t := s.LastSyncAt
		out.LastSyncAt = &t
	}
	return out
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.Settings(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Get settings failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	respondJSON(w, http.StatusOK, toSettingsResponse(settings))
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}

	// LastSyncAt is owned by the ingest path, not the client.
	current, err := s.store.Settings(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Get settings failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}

	updated, err := s.store.UpdateSettings(r.Context(), core.Settings{
		SMSPermissionGranted: req.SMSPermissionGranted,
		DarkMode:             req.DarkMode,
		LastSyncAt:           current.LastSyncAt,
	})
	if err != nil {
		slog.ErrorContext(r.Context(), "Update settings failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to update settings")
		return
	}
	respondJSON(w, http.StatusOK, toSettingsResponse(updated))
}
