package services

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SessionEndpoints serves review-session continuity: where a reviewer left
// off on a candidate's review screen, keyed by (reviewer, candidate).
type SessionEndpoints struct {
	store ReviewSessionStore
}

func NewSessionEndpoints(store ReviewSessionStore) *SessionEndpoints {
	return &SessionEndpoints{store: store}
}

func (e *SessionEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/review-sessions", func(r chi.Router) {
		r.Get("/{candidateId}", e.GetHandler)
		r.Put("/{candidateId}", e.PutHandler)
		r.Delete("/{candidateId}", e.DeleteHandler)
	})
}

func (e *SessionEndpoints) GetHandler(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r)
	candidateID := chi.URLParam(r, "candidateId")

	session, err := e.store.Get(r.Context(), user.ID, candidateID)
	if err != nil {
		slog.Error("Failed to get review session", "error", err, "user_id", user.ID, "candidate_id", candidateID)
		writeError(w, http.StatusInternalServerError, "Failed to get review session")
		return
	}
	if session == nil {
		writeError(w, http.StatusNotFound, "No review session saved")
		return
	}

	writeData(w, http.StatusOK, session)
}

func (e *SessionEndpoints) PutHandler(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r)
	candidateID := chi.URLParam(r, "candidateId")

	var session ReviewSession
	if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if session.ScrollOffset < 0 {
		writeError(w, http.StatusBadRequest, "Scroll offset cannot be negative")
		return
	}

	if err := e.store.Save(r.Context(), user.ID, candidateID, &session); err != nil {
		slog.Error("Failed to save review session", "error", err, "user_id", user.ID, "candidate_id", candidateID)
		writeError(w, http.StatusInternalServerError, "Failed to save review session")
		return
	}

	writeData(w, http.StatusOK, session)
}

func (e *SessionEndpoints) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r)
	candidateID := chi.URLParam(r, "candidateId")

	if err := e.store.Delete(r.Context(), user.ID, candidateID); err != nil {
		slog.Error("Failed to clear review session", "error", err, "user_id", user.ID, "candidate_id", candidateID)
		writeError(w, http.StatusInternalServerError, "Failed to clear review session")
		return
	}

	writeMessage(w, http.StatusOK, "Review session cleared")
}
