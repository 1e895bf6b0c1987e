package services

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/talentgrid/backend/repository"
)

type InterviewEndpoints struct {
	repo             *repository.GORMRepository
	interviewService *InterviewService
}

type RemarkRequest struct {
	Remark string `json:"remark"`
	Grade  string `json:"grade"`
}

func NewInterviewEndpoints(repo *repository.GORMRepository, interviewService *InterviewService) *InterviewEndpoints {
	return &InterviewEndpoints{
		repo:             repo,
		interviewService: interviewService,
	}
}

func (e *InterviewEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/interviews", func(r chi.Router) {
		r.Get("/", e.ListHandler)
		r.Post("/", e.ScheduleHandler)
		r.Get("/{id}", e.GetHandler)
		r.Get("/{id}/join", e.JoinHandler)
		r.Post("/{id}/remarks", e.RemarkHandler)
	})
}

func (e *InterviewEndpoints) ListHandler(w http.ResponseWriter, r *http.Request) {
	candidateID := r.URL.Query().Get("candidate_id")

	interviews, err := e.repo.GetInterviews(r.Context(), candidateID)
	if err != nil {
		slog.Error("Failed to list interviews", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list interviews")
		return
	}

	writeData(w, http.StatusOK, map[string]interface{}{
		"interviews": interviews,
		"count":      len(interviews),
	})
}

func (e *InterviewEndpoints) ScheduleHandler(w http.ResponseWriter, r *http.Request) {
	var req ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	interview, err := e.interviewService.Schedule(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeData(w, http.StatusCreated, interview)
}

func (e *InterviewEndpoints) GetHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	interview, err := e.repo.GetInterviewByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get interview")
		return
	}
	if interview == nil {
		writeError(w, http.StatusNotFound, "Interview not found")
		return
	}

	writeData(w, http.StatusOK, interview)
}

func (e *InterviewEndpoints) JoinHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	info, err := e.interviewService.JoinInfo(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeData(w, http.StatusOK, info)
}

func (e *InterviewEndpoints) RemarkHandler(w http.ResponseWriter, r *http.Request) {
	actor := UserFromContext(r)
	id := chi.URLParam(r, "id")

	var req RemarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	remark, err := e.interviewService.AddRemark(r.Context(), id, actor, req.Remark, req.Grade)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeData(w, http.StatusCreated, remark)
}
