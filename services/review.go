package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/talentgrid/backend/events"
	"github.com/talentgrid/backend/models"
	"github.com/talentgrid/backend/repository"
)

// MaxRemarksLength caps per-question reviewer remarks.
const MaxRemarksLength = 500

// ReviewService handles manual review of submission question responses:
// partial patches of score, flag and remarks, plus on-demand AI evaluation.
type ReviewService struct {
	repo      *repository.GORMRepository
	evaluator *EvaluatorService
	hub       *events.Hub
}

func NewReviewService(repo *repository.GORMRepository, evaluator *EvaluatorService, hub *events.Hub) *ReviewService {
	return &ReviewService{repo: repo, evaluator: evaluator, hub: hub}
}

// ReviewPatch carries the reviewer's changes. Nil fields are left untouched;
// only present fields are written.
type ReviewPatch struct {
	AIScore *float64 `json:"ai_score"`
	Flagged *bool    `json:"flagged"`
	Remarks *string  `json:"remarks"`
}

// ApplyReview applies a partial review patch to one question response within
// a submission. Scores are bounds-checked against the submission kind's
// ceiling and remarks against the length cap before anything is written.
func (s *ReviewService) ApplyReview(ctx context.Context, submissionID, questionID, kind string, actor *models.User, patch ReviewPatch) (*models.QuestionResponse, error) {
	submission, err := s.repo.GetSubmissionByID(ctx, submissionID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to load submission: %w", err)
	}
	if submission == nil {
		return nil, fmt.Errorf("%w: submission %s", ErrNotFound, submissionID)
	}

	response, err := s.repo.GetQuestionResponse(ctx, submissionID, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load question response: %w", err)
	}
	if response == nil {
		return nil, fmt.Errorf("%w: question %s", ErrNotFound, questionID)
	}

	updates := make(map[string]interface{})

	if patch.AIScore != nil {
		ceiling := response.ScoreCeiling(submission.Kind)
		if *patch.AIScore < 0 || *patch.AIScore > ceiling {
			return nil, validationErrorf("score must be between 0 and %.1f", ceiling)
		}
		updates["ai_score"] = *patch.AIScore
	}
	if patch.Flagged != nil {
		updates["flagged"] = *patch.Flagged
	}
	if patch.Remarks != nil {
		if len(*patch.Remarks) > MaxRemarksLength {
			return nil, validationErrorf("remarks must be at most %d characters", MaxRemarksLength)
		}
		updates["remarks"] = *patch.Remarks
	}

	if len(updates) == 0 {
		return nil, validationErrorf("no review fields provided")
	}

	updated, err := s.repo.UpdateQuestionReview(ctx, questionID, updates)
	if err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	s.hub.Broadcast(events.Event{
		Type:        events.EventReviewSaved,
		CandidateID: submission.CandidateID,
		Role:        actor.Role,
		ActorID:     actor.ID,
		ActorName:   actor.FullName,
	})

	slog.Info("Review applied", "submission_id", submissionID, "question_id", questionID, "by", actor.ID)
	return updated, nil
}

// Evaluate runs AI scoring over a submission's unscored free-form responses
// in the background. Failures on individual questions are logged and
// skipped; already-scored responses are never overwritten.
func (s *ReviewService) Evaluate(ctx context.Context, submissionID, kind string) (*models.Submission, error) {
	if s.evaluator == nil {
		return nil, validationErrorf("AI evaluation is not configured")
	}

	submission, err := s.repo.GetSubmissionByID(ctx, submissionID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to load submission: %w", err)
	}
	if submission == nil {
		return nil, fmt.Errorf("%w: submission %s", ErrNotFound, submissionID)
	}

	go s.evaluateResponses(submission)

	return submission, nil
}

func (s *ReviewService) evaluateResponses(submission *models.Submission) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	scored := 0
	for i := range submission.Responses {
		response := &submission.Responses[i]
		if response.AIScore != nil || !s.evaluator.CanScore(response.InputType) {
			continue
		}

		answer := answerText(json.RawMessage(response.Answer))
		if answer == "" {
			continue
		}

		score, err := s.evaluator.ScoreAnswer(ctx, response.Question, answer, response.ScoreCeiling(submission.Kind))
		if err != nil {
			slog.Error("Failed to evaluate response", "error", err, "question_id", response.ID)
			continue
		}

		if err := s.repo.SetAIScore(ctx, response.ID, score); err != nil {
			slog.Error("Failed to store AI score", "error", err, "question_id", response.ID)
			continue
		}
		scored++
	}

	slog.Info("Submission evaluation finished", "submission_id", submission.ID, "scored", scored)
}

// answerText flattens a stored answer into plain text for the evaluator.
// String answers unwrap; anything else is passed through as raw JSON.
func answerText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
