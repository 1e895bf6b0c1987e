package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/talentgrid/backend/events"
	"github.com/talentgrid/backend/models"
	"github.com/talentgrid/backend/pipeline"
	"github.com/talentgrid/backend/repository"
)

// StageService applies stage transitions and status operations. All rule
// checks are delegated to the pipeline package; this service owns the side
// effects: ledger entry, internal feedback, candidate update, event fanout.
type StageService struct {
	repo *repository.GORMRepository
	hub  *events.Hub
}

func NewStageService(repo *repository.GORMRepository, hub *events.Hub) *StageService {
	return &StageService{repo: repo, hub: hub}
}

// ApplyTransition moves a candidate to the target stage. The actor's role
// must pass the Glory gate and the feedback note is mandatory; remarks are
// optional and land on the history entry, not the feedback entry. On success
// exactly one stage-history entry and one internal-feedback entry are
// written atomically with the stage update.
func (s *StageService) ApplyTransition(ctx context.Context, candidateID, target string, actor *models.User, remarks, feedback string) (*models.Candidate, error) {
	candidate, err := s.repo.GetCandidate(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate: %w", err)
	}
	if candidate == nil {
		return nil, fmt.Errorf("%w: candidate %s", ErrNotFound, candidateID)
	}

	if err := pipeline.CanTransition(candidate, target, actor.Role, feedback); err != nil {
		return nil, err
	}

	fromStage := candidate.CurrentStage
	now := time.Now()

	entry := &models.StageHistoryEntry{
		CandidateID:   candidate.ID,
		FromStage:     &fromStage,
		ToStage:       target,
		ChangedBy:     actor.ID,
		ChangedByName: actor.FullName,
		Action:        models.ActionStageChange,
		Remarks:       remarks,
		ChangedAt:     now,
	}
	note := &models.InternalFeedbackEntry{
		CandidateID:    candidate.ID,
		FeedbackByID:   actor.ID,
		FeedbackByName: actor.FullName,
		FeedbackByRole: actor.Role,
		Feedback:       feedback,
		FeedbackAt:     now,
	}

	if err := s.repo.ApplyStageTransition(ctx, candidate, entry, note); err != nil {
		return nil, fmt.Errorf("failed to apply stage transition: %w", err)
	}

	s.hub.Broadcast(events.Event{
		Type:        events.EventStageChanged,
		CandidateID: candidate.ID,
		Stage:       target,
		Role:        actor.Role,
		ActorID:     actor.ID,
		ActorName:   actor.FullName,
	})

	slog.Info("Stage transition applied", "candidate_id", candidate.ID, "from", fromStage, "to", target, "by", actor.ID)
	return candidate, nil
}

// SetStatus performs a reject/hold/hire operation. The current stage is left
// untouched and no stage-history entry is written; the reason lands in the
// candidate's status_reason and, when present, an internal feedback note.
func (s *StageService) SetStatus(ctx context.Context, candidateID, op string, actor *models.User, reason string) (*models.Candidate, error) {
	candidate, err := s.repo.GetCandidate(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate: %w", err)
	}
	if candidate == nil {
		return nil, fmt.Errorf("%w: candidate %s", ErrNotFound, candidateID)
	}

	if err := pipeline.CanChangeStatus(candidate, op, reason); err != nil {
		return nil, err
	}

	status, err := pipeline.StatusFor(op)
	if err != nil {
		return nil, err
	}

	var note *models.InternalFeedbackEntry
	if reason != "" {
		note = &models.InternalFeedbackEntry{
			CandidateID:    candidate.ID,
			FeedbackByID:   actor.ID,
			FeedbackByName: actor.FullName,
			FeedbackByRole: actor.Role,
			Feedback:       fmt.Sprintf("Status changed to %s: %s", status, reason),
			FeedbackAt:     time.Now(),
		}
	}

	if err := s.repo.ApplyStatusChange(ctx, candidate, status, reason, note); err != nil {
		return nil, fmt.Errorf("failed to apply status change: %w", err)
	}

	s.hub.Broadcast(events.Event{
		Type:        events.EventStatusChanged,
		CandidateID: candidate.ID,
		Status:      status,
		Role:        actor.Role,
		ActorID:     actor.ID,
		ActorName:   actor.FullName,
	})

	slog.Info("Candidate status changed", "candidate_id", candidate.ID, "status", status, "by", actor.ID)
	return candidate, nil
}
