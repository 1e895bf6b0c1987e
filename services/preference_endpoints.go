package services

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/talentgrid/backend/models"
	"github.com/talentgrid/backend/repository"
)

// PreferenceEndpoints serves notification self-service: email preference
// toggles and push subscription records. Actual delivery is external.
type PreferenceEndpoints struct {
	repo *repository.GORMRepository
}

type EmailPreferenceRequest struct {
	StageUpdates       *bool `json:"stage_updates"`
	InterviewReminders *bool `json:"interview_reminders"`
	WeeklyDigest       *bool `json:"weekly_digest"`
}

type PushSubscribeRequest struct {
	Endpoint string `json:"endpoint"`
	P256dh   string `json:"p256dh"`
	Auth     string `json:"auth"`
}

func NewPreferenceEndpoints(repo *repository.GORMRepository) *PreferenceEndpoints {
	return &PreferenceEndpoints{repo: repo}
}

func (e *PreferenceEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/email-preference", func(r chi.Router) {
		r.Get("/", e.GetEmailPreferenceHandler)
		r.Post("/", e.SaveEmailPreferenceHandler)
		r.Patch("/", e.SaveEmailPreferenceHandler)
	})
	r.Route("/push", func(r chi.Router) {
		r.Post("/subscribe", e.SubscribeHandler)
		r.Delete("/subscribe", e.UnsubscribeHandler)
	})
}

func (e *PreferenceEndpoints) GetEmailPreferenceHandler(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r)

	pref, err := e.repo.GetEmailPreference(r.Context(), user.ID)
	if err != nil {
		slog.Error("Failed to get email preference", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "Failed to get email preference")
		return
	}
	if pref == nil {
		// Defaults until the user saves a preference
		pref = &models.EmailPreference{
			UserID:             user.ID,
			StageUpdates:       true,
			InterviewReminders: true,
			WeeklyDigest:       false,
		}
	}

	writeData(w, http.StatusOK, pref)
}

// SaveEmailPreferenceHandler applies a partial preference update; POST and
// PATCH share the same semantics.
func (e *PreferenceEndpoints) SaveEmailPreferenceHandler(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r)

	var req EmailPreferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	pref, err := e.repo.GetEmailPreference(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get email preference")
		return
	}
	if pref == nil {
		pref = &models.EmailPreference{
			UserID:             user.ID,
			StageUpdates:       true,
			InterviewReminders: true,
			WeeklyDigest:       false,
		}
	}

	if req.StageUpdates != nil {
		pref.StageUpdates = *req.StageUpdates
	}
	if req.InterviewReminders != nil {
		pref.InterviewReminders = *req.InterviewReminders
	}
	if req.WeeklyDigest != nil {
		pref.WeeklyDigest = *req.WeeklyDigest
	}

	if err := e.repo.SaveEmailPreference(r.Context(), pref); err != nil {
		slog.Error("Failed to save email preference", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "Failed to save email preference")
		return
	}

	writeData(w, http.StatusOK, pref)
}

func (e *PreferenceEndpoints) SubscribeHandler(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r)

	var req PushSubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Endpoint == "" {
		writeError(w, http.StatusBadRequest, "Subscription endpoint is required")
		return
	}

	sub := &models.PushSubscription{
		UserID:   user.ID,
		Endpoint: req.Endpoint,
		P256dh:   req.P256dh,
		Auth:     req.Auth,
	}
	if err := e.repo.CreatePushSubscription(r.Context(), sub); err != nil {
		slog.Error("Failed to create push subscription", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "Failed to create push subscription")
		return
	}

	writeData(w, http.StatusCreated, sub)
}

func (e *PreferenceEndpoints) UnsubscribeHandler(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r)

	var req PushSubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Endpoint == "" {
		writeError(w, http.StatusBadRequest, "Subscription endpoint is required")
		return
	}

	if err := e.repo.DeletePushSubscription(r.Context(), user.ID, req.Endpoint); err != nil {
		slog.Error("Failed to delete push subscription", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "Failed to delete push subscription")
		return
	}

	writeMessage(w, http.StatusOK, "Push subscription removed")
}
