package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"

	"github.com/talentgrid/backend/events"
	"github.com/talentgrid/backend/models"
	"github.com/talentgrid/backend/repository"
)

// GloryService manages the per-role qualitative grade sheets. Submitting for
// a (candidate, role) pair replaces the previous sheet wholesale; the grade
// history is not preserved.
type GloryService struct {
	repo *repository.GORMRepository
	hub  *events.Hub
}

func NewGloryService(repo *repository.GORMRepository, hub *events.Hub) *GloryService {
	return &GloryService{repo: repo, hub: hub}
}

// GloryDisplay is the aggregated grade view for a candidate: one block per
// role that has submitted, in fixed role display order. Roles with no grades
// are omitted entirely rather than rendered empty.
type GloryDisplay struct {
	CandidateID string            `json:"candidate_id"`
	Roles       []GloryRoleGrades `json:"roles"`
}

type GloryRoleGrades struct {
	Role       string            `json:"role"`
	GraderID   string            `json:"grader_id"`
	GraderName string            `json:"grader_name,omitempty"`
	Grades     map[string]string `json:"grades"`
	GradedAt   time.Time         `json:"graded_at"`
}

// SubmitGrades validates and stores a role's grade sheet for a candidate.
// Every parameter must belong to the applied job's grading parameters (or
// the default parameter when the job defines none) and every value must be
// a known grade letter.
func (s *GloryService) SubmitGrades(ctx context.Context, candidateID string, actor *models.User, grades map[string]string) (*models.GloryGrade, error) {
	if len(grades) == 0 {
		return nil, validationErrorf("at least one graded parameter is required")
	}

	candidate, err := s.repo.GetCandidate(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate: %w", err)
	}
	if candidate == nil {
		return nil, fmt.Errorf("%w: candidate %s", ErrNotFound, candidateID)
	}

	allowed, err := s.gradingParameters(ctx, candidate)
	if err != nil {
		return nil, err
	}

	stored := make(datatypes.JSONMap, len(grades))
	for param, letter := range grades {
		if !allowed[param] {
			return nil, validationErrorf("unknown grading parameter: %s", param)
		}
		if !models.IsGrade(letter) {
			return nil, validationErrorf("unknown grade letter: %s", letter)
		}
		stored[param] = letter
	}

	grade := &models.GloryGrade{
		CandidateID: candidate.ID,
		Role:        actor.Role,
		GraderID:    actor.ID,
		GraderName:  actor.FullName,
		GraderRole:  actor.Role,
		Grades:      stored,
		GradedAt:    time.Now(),
	}

	if err := s.repo.UpsertGloryGrade(ctx, grade); err != nil {
		return nil, fmt.Errorf("failed to store glory grades: %w", err)
	}

	s.hub.Broadcast(events.Event{
		Type:        events.EventGlorySubmitted,
		CandidateID: candidate.ID,
		Role:        actor.Role,
		ActorID:     actor.ID,
		ActorName:   actor.FullName,
	})

	slog.Info("Glory grades submitted", "candidate_id", candidate.ID, "role", actor.Role, "parameters", len(stored))
	return grade, nil
}

// Display aggregates a candidate's grade sheets across roles in display
// order, skipping roles that have not graded.
func (s *GloryService) Display(ctx context.Context, candidateID string) (*GloryDisplay, error) {
	candidate, err := s.repo.GetCandidate(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate: %w", err)
	}
	if candidate == nil {
		return nil, fmt.Errorf("%w: candidate %s", ErrNotFound, candidateID)
	}

	grades, err := s.repo.GetGloryGrades(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load glory grades: %w", err)
	}

	byRole := make(map[string]*models.GloryGrade, len(grades))
	for i := range grades {
		byRole[grades[i].Role] = &grades[i]
	}

	display := &GloryDisplay{CandidateID: candidateID, Roles: []GloryRoleGrades{}}
	for _, role := range models.StaffRoles {
		g, ok := byRole[role]
		if !ok || !g.HasGrades() {
			continue
		}
		display.Roles = append(display.Roles, GloryRoleGrades{
			Role:       g.Role,
			GraderID:   g.GraderID,
			GraderName: g.GraderName,
			Grades:     g.GradeMap(),
			GradedAt:   g.GradedAt,
		})
	}
	return display, nil
}

// gradingParameters resolves the allowed parameter set for a candidate from
// the applied job, falling back to the single default parameter.
func (s *GloryService) gradingParameters(ctx context.Context, candidate *models.Candidate) (map[string]bool, error) {
	allowed := map[string]bool{models.DefaultGradingParameter: true}

	if candidate.AppliedJobID == nil {
		return allowed, nil
	}

	job, err := s.repo.GetJobByID(ctx, *candidate.AppliedJobID)
	if err != nil {
		return nil, fmt.Errorf("failed to load applied job: %w", err)
	}
	if job == nil || len(job.GradingParameters) == 0 {
		return allowed, nil
	}

	allowed = make(map[string]bool, len(job.GradingParameters))
	for _, param := range job.GradingParameters {
		allowed[param] = true
	}
	return allowed, nil
}
