package services

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"gorm.io/datatypes"

	"github.com/talentgrid/backend/models"
	"github.com/talentgrid/backend/repository"
)

// ResponseEndpoints serves one submission family. The same struct backs both
// /hr-responses and /assessment-responses; kind selects the family and the
// score bounds applied during review.
type ResponseEndpoints struct {
	kind          string
	repo          *repository.GORMRepository
	reviewService *ReviewService
}

func NewResponseEndpoints(kind string, repo *repository.GORMRepository, reviewService *ReviewService) *ResponseEndpoints {
	return &ResponseEndpoints{
		kind:          kind,
		repo:          repo,
		reviewService: reviewService,
	}
}

func (e *ResponseEndpoints) RegisterRoutes(r chi.Router) {
	prefix := "/hr-responses"
	if e.kind == models.SubmissionKindAssessment {
		prefix = "/assessment-responses"
	}

	r.Route(prefix, func(r chi.Router) {
		r.Get("/", e.ListHandler)
		r.Post("/", e.CreateHandler)
		r.Get("/{id}", e.GetHandler)
		r.Patch("/{id}/review", e.ReviewHandler)
		r.Post("/{id}/evaluate", e.EvaluateHandler)
	})
}

type CreateSubmissionRequest struct {
	CandidateID string                  `json:"candidate_id"`
	Title       string                  `json:"title"`
	SubmittedAt *time.Time              `json:"submitted_at"`
	Responses   []CreateResponseRequest `json:"responses"`
}

type CreateResponseRequest struct {
	Question  string          `json:"question"`
	InputType string          `json:"input_type"`
	Answer    json.RawMessage `json:"answer"`
	MaxScore  *float64        `json:"max_score"`
}

type ReviewRequest struct {
	QuestionID string `json:"question_id"`
	ReviewPatch
}

func (e *ResponseEndpoints) ListHandler(w http.ResponseWriter, r *http.Request) {
	candidateID := r.URL.Query().Get("candidate_id")

	submissions, err := e.repo.GetSubmissions(r.Context(), e.kind, candidateID)
	if err != nil {
		slog.Error("Failed to list submissions", "error", err, "kind", e.kind)
		writeError(w, http.StatusInternalServerError, "Failed to list submissions")
		return
	}

	writeData(w, http.StatusOK, map[string]interface{}{
		"submissions": submissions,
		"count":       len(submissions),
	})
}

func (e *ResponseEndpoints) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CandidateID == "" || len(req.Responses) == 0 {
		writeError(w, http.StatusBadRequest, "Candidate and at least one response are required")
		return
	}

	candidate, err := e.repo.GetCandidate(r.Context(), req.CandidateID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get candidate")
		return
	}
	if candidate == nil {
		writeError(w, http.StatusNotFound, "Candidate not found")
		return
	}

	submittedAt := time.Now()
	if req.SubmittedAt != nil {
		submittedAt = *req.SubmittedAt
	}

	submission := &models.Submission{
		CandidateID: candidate.ID,
		Kind:        e.kind,
		Title:       req.Title,
		SubmittedAt: submittedAt,
	}
	for _, response := range req.Responses {
		if response.Question == "" {
			writeError(w, http.StatusBadRequest, "Every response needs a question")
			return
		}
		if !models.IsInputType(response.InputType) {
			writeError(w, http.StatusBadRequest, "Unknown input type: "+response.InputType)
			return
		}
		submission.Responses = append(submission.Responses, models.QuestionResponse{
			Question:  response.Question,
			InputType: response.InputType,
			Answer:    datatypes.JSON(response.Answer),
			MaxScore:  response.MaxScore,
		})
	}

	if err := e.repo.CreateSubmission(r.Context(), submission); err != nil {
		slog.Error("Failed to create submission", "error", err, "kind", e.kind)
		writeError(w, http.StatusInternalServerError, "Failed to create submission")
		return
	}

	writeData(w, http.StatusCreated, submission)
}

func (e *ResponseEndpoints) GetHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	submission, err := e.repo.GetSubmissionByID(r.Context(), id, e.kind)
	if err != nil {
		slog.Error("Failed to get submission", "error", err, "submission_id", id)
		writeError(w, http.StatusInternalServerError, "Failed to get submission")
		return
	}
	if submission == nil {
		writeError(w, http.StatusNotFound, "Submission not found")
		return
	}

	writeData(w, http.StatusOK, submission)
}

// ReviewHandler applies a partial manual-review patch to one question within
// the submission. Fields absent from the body stay untouched.
func (e *ResponseEndpoints) ReviewHandler(w http.ResponseWriter, r *http.Request) {
	actor := UserFromContext(r)
	id := chi.URLParam(r, "id")

	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.QuestionID == "" {
		writeError(w, http.StatusBadRequest, "question_id is required")
		return
	}

	response, err := e.reviewService.ApplyReview(r.Context(), id, req.QuestionID, e.kind, actor, req.ReviewPatch)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeData(w, http.StatusOK, response)
}

func (e *ResponseEndpoints) EvaluateHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	submission, err := e.reviewService.Evaluate(r.Context(), id, e.kind)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeData(w, http.StatusAccepted, map[string]interface{}{
		"submission_id": submission.ID,
		"message":       "Evaluation started",
	})
}
