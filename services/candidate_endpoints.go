package services

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/talentgrid/backend/models"
	"github.com/talentgrid/backend/pipeline"
	"github.com/talentgrid/backend/repository"
)

// CandidateEndpoints serves the candidate pipeline surface: listing,
// registration, stage transitions, status operations, the history ledger,
// glory grading, feedback notes and documents.
type CandidateEndpoints struct {
	repo         *repository.GORMRepository
	stageService *StageService
	gloryService *GloryService
}

func NewCandidateEndpoints(repo *repository.GORMRepository, stageService *StageService, gloryService *GloryService) *CandidateEndpoints {
	return &CandidateEndpoints{
		repo:         repo,
		stageService: stageService,
		gloryService: gloryService,
	}
}

func (e *CandidateEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/candidates", func(r chi.Router) {
		r.Get("/", e.ListHandler)
		r.Post("/", e.CreateHandler)
		r.Get("/{id}", e.GetHandler)
		r.Patch("/{id}/stage", e.StageHandler)
		r.Patch("/{id}/reject", e.statusHandler(pipeline.OpReject))
		r.Patch("/{id}/hold", e.statusHandler(pipeline.OpHold))
		r.Patch("/{id}/hire", e.statusHandler(pipeline.OpHire))
		r.Post("/{id}/feedback", e.FeedbackHandler)
		r.Get("/{id}/history", e.HistoryHandler)
		r.Get("/{id}/glory", e.GloryGetHandler)
		r.Post("/{id}/glory", e.GlorySubmitHandler)
		r.Get("/{id}/documents", e.DocumentsHandler)
	})
	r.Get("/jobs", e.JobsHandler)
	r.Get("/stats", e.StatsHandler)
}

// RegisterAdminRoutes mounts the admin-only candidate routes.
func (e *CandidateEndpoints) RegisterAdminRoutes(r chi.Router) {
	r.Delete("/admin/delete-candidate/{id}", e.DeleteHandler)
}

type CreateCandidateRequest struct {
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	DateOfBirth  *time.Time `json:"date_of_birth"`
	Gender       string     `json:"gender"`
	Address      string     `json:"address"`
	AppliedJobID *string    `json:"applied_job_id"`
}

type StageRequest struct {
	Stage            string `json:"stage"`
	Remarks          string `json:"remarks"`
	InternalFeedback string `json:"internal_feedback"`
}

type StatusRequest struct {
	Reason string `json:"reason"`
}

type FeedbackRequest struct {
	Feedback string `json:"feedback"`
}

type GloryRequest struct {
	Grades map[string]string `json:"grades"`
}

func (e *CandidateEndpoints) ListHandler(w http.ResponseWriter, r *http.Request) {
	filter := repository.CandidateFilter{
		Stage:  r.URL.Query().Get("stage"),
		Status: r.URL.Query().Get("status"),
		Search: r.URL.Query().Get("search"),
	}
	if shortlisted := r.URL.Query().Get("shortlisted"); shortlisted != "" {
		value := shortlisted == "true"
		filter.Shortlisted = &value
	}

	if filter.Stage != "" && !models.IsStage(filter.Stage) {
		writeError(w, http.StatusBadRequest, "Unknown stage filter")
		return
	}

	candidates, err := e.repo.GetCandidates(r.Context(), filter)
	if err != nil {
		slog.Error("Failed to list candidates", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list candidates")
		return
	}

	writeData(w, http.StatusOK, map[string]interface{}{
		"candidates": candidates,
		"count":      len(candidates),
	})
}

// CreateHandler registers a new candidate in the registered stage and writes
// the first ledger entry.
func (e *CandidateEndpoints) CreateHandler(w http.ResponseWriter, r *http.Request) {
	actor := UserFromContext(r)

	var req CreateCandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "Name and email are required")
		return
	}

	if req.AppliedJobID != nil {
		job, err := e.repo.GetJobByID(r.Context(), *req.AppliedJobID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to verify applied job")
			return
		}
		if job == nil {
			writeError(w, http.StatusNotFound, "Applied job not found")
			return
		}
	}

	candidate := &models.Candidate{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		DateOfBirth:  req.DateOfBirth,
		Gender:       req.Gender,
		Address:      req.Address,
		AppliedJobID: req.AppliedJobID,
		CurrentStage: models.StageRegistered,
		Status:       models.StatusActive,
	}

	if err := e.repo.CreateCandidate(r.Context(), candidate); err != nil {
		slog.Error("Failed to create candidate", "error", err, "email", req.Email)
		writeError(w, http.StatusInternalServerError, "Failed to create candidate")
		return
	}

	entry := &models.StageHistoryEntry{
		CandidateID:   candidate.ID,
		FromStage:     nil,
		ToStage:       models.StageRegistered,
		ChangedBy:     actor.ID,
		ChangedByName: actor.FullName,
		Action:        models.ActionRegistered,
		ChangedAt:     time.Now(),
	}
	if err := e.repo.CreateStageHistoryEntry(r.Context(), entry); err != nil {
		slog.Error("Failed to write registration ledger entry", "error", err, "candidate_id", candidate.ID)
	}

	writeData(w, http.StatusCreated, candidate)
}

func (e *CandidateEndpoints) GetHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	candidate, err := e.repo.GetCandidateByID(r.Context(), id)
	if err != nil {
		slog.Error("Failed to get candidate", "error", err, "candidate_id", id)
		writeError(w, http.StatusInternalServerError, "Failed to get candidate")
		return
	}
	if candidate == nil {
		writeError(w, http.StatusNotFound, "Candidate not found")
		return
	}

	writeData(w, http.StatusOK, candidate)
}

func (e *CandidateEndpoints) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	candidate, err := e.repo.GetCandidate(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get candidate")
		return
	}
	if candidate == nil {
		writeError(w, http.StatusNotFound, "Candidate not found")
		return
	}

	if err := e.repo.HardDeleteCandidate(r.Context(), id); err != nil {
		slog.Error("Failed to delete candidate", "error", err, "candidate_id", id)
		writeError(w, http.StatusInternalServerError, "Failed to delete candidate")
		return
	}

	writeMessage(w, http.StatusOK, "Candidate deleted permanently")
}

func (e *CandidateEndpoints) StageHandler(w http.ResponseWriter, r *http.Request) {
	actor := UserFromContext(r)
	id := chi.URLParam(r, "id")

	var req StageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	candidate, err := e.stageService.ApplyTransition(r.Context(), id, req.Stage, actor, req.Remarks, req.InternalFeedback)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeData(w, http.StatusOK, candidate)
}

func (e *CandidateEndpoints) statusHandler(op string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := UserFromContext(r)
		id := chi.URLParam(r, "id")

		// Status requests may arrive without a body; io.EOF means no body,
		// anything else is malformed JSON
		var req StatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		candidate, err := e.stageService.SetStatus(r.Context(), id, op, actor, req.Reason)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeData(w, http.StatusOK, candidate)
	}
}

// FeedbackHandler records a standalone internal feedback note.
func (e *CandidateEndpoints) FeedbackHandler(w http.ResponseWriter, r *http.Request) {
	actor := UserFromContext(r)
	id := chi.URLParam(r, "id")

	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Feedback == "" {
		writeError(w, http.StatusBadRequest, "Feedback text is required")
		return
	}

	candidate, err := e.repo.GetCandidate(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get candidate")
		return
	}
	if candidate == nil {
		writeError(w, http.StatusNotFound, "Candidate not found")
		return
	}

	entry := &models.InternalFeedbackEntry{
		CandidateID:    candidate.ID,
		FeedbackByID:   actor.ID,
		FeedbackByName: actor.FullName,
		FeedbackByRole: actor.Role,
		Feedback:       req.Feedback,
		FeedbackAt:     time.Now(),
	}
	if err := e.repo.CreateInternalFeedback(r.Context(), entry); err != nil {
		slog.Error("Failed to create feedback", "error", err, "candidate_id", id)
		writeError(w, http.StatusInternalServerError, "Failed to create feedback")
		return
	}

	writeData(w, http.StatusCreated, entry)
}

func (e *CandidateEndpoints) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	candidate, err := e.repo.GetCandidate(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get candidate")
		return
	}
	if candidate == nil {
		writeError(w, http.StatusNotFound, "Candidate not found")
		return
	}

	history, err := e.repo.GetStageHistory(r.Context(), id)
	if err != nil {
		slog.Error("Failed to get stage history", "error", err, "candidate_id", id)
		writeError(w, http.StatusInternalServerError, "Failed to get stage history")
		return
	}

	writeData(w, http.StatusOK, map[string]interface{}{
		"candidate_id": id,
		"history":      history,
	})
}

func (e *CandidateEndpoints) GloryGetHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	display, err := e.gloryService.Display(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeData(w, http.StatusOK, display)
}

func (e *CandidateEndpoints) GlorySubmitHandler(w http.ResponseWriter, r *http.Request) {
	actor := UserFromContext(r)
	id := chi.URLParam(r, "id")

	var req GloryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	grade, err := e.gloryService.SubmitGrades(r.Context(), id, actor, req.Grades)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeData(w, http.StatusOK, grade)
}

func (e *CandidateEndpoints) DocumentsHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	candidate, err := e.repo.GetCandidate(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get candidate")
		return
	}
	if candidate == nil {
		writeError(w, http.StatusNotFound, "Candidate not found")
		return
	}

	documents, err := e.repo.GetDocuments(r.Context(), id)
	if err != nil {
		slog.Error("Failed to get documents", "error", err, "candidate_id", id)
		writeError(w, http.StatusInternalServerError, "Failed to get documents")
		return
	}

	writeData(w, http.StatusOK, map[string]interface{}{
		"candidate_id": id,
		"documents":    documents,
	})
}

// JobsHandler lists job postings for registration forms and list filters.
func (e *CandidateEndpoints) JobsHandler(w http.ResponseWriter, r *http.Request) {
	jobs, err := e.repo.GetJobs(r.Context())
	if err != nil {
		slog.Error("Failed to list jobs", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	writeData(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

// StatsHandler returns dashboard pipeline counts. Stats are supplementary:
// failures log and return an empty breakdown instead of an error page.
func (e *CandidateEndpoints) StatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := e.repo.GetPipelineStats(r.Context())
	if err != nil {
		slog.Error("Failed to get pipeline stats", "error", err)
		writeData(w, http.StatusOK, &repository.PipelineStats{
			ByStage:  map[string]int64{},
			ByStatus: map[string]int64{},
		})
		return
	}

	writeData(w, http.StatusOK, stats)
}
