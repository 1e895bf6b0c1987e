package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/talentgrid/backend/models"
)

func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }
func strPtr(v string) *string     { return &v }

func TestApplyReviewScoreBounds(t *testing.T) {
	repo := newTestRepo(t)
	service := NewReviewService(repo, nil, nil)
	ctx := context.Background()

	hr := newTestUser(t, repo, "hr@test.dev", models.RoleHR)
	candidate := newTestCandidate(t, repo, "bounds@example.com")

	hrSub := newTestSubmission(t, repo, candidate.ID, models.SubmissionKindHR)
	assessSub := newTestSubmission(t, repo, candidate.ID, models.SubmissionKindAssessment)

	tests := []struct {
		name       string
		submission *models.Submission
		kind       string
		score      float64
		wantErr    bool
	}{
		{"hr at ceiling", hrSub, models.SubmissionKindHR, 5, false},
		{"hr above ceiling", hrSub, models.SubmissionKindHR, 5.5, true},
		{"negative", hrSub, models.SubmissionKindHR, -1, true},
		{"assessment default ceiling", assessSub, models.SubmissionKindAssessment, 10, false},
		{"assessment above default", assessSub, models.SubmissionKindAssessment, 11, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			questionID := tt.submission.Responses[0].ID
			_, err := service.ApplyReview(ctx, tt.submission.ID, questionID, tt.kind, hr, ReviewPatch{AIScore: floatPtr(tt.score)})
			if tt.wantErr {
				var ve *ValidationError
				if !errors.As(err, &ve) {
					t.Errorf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("expected score accepted, got %v", err)
			}
		})
	}
}

func TestApplyReviewPartialPatch(t *testing.T) {
	repo := newTestRepo(t)
	service := NewReviewService(repo, nil, nil)
	ctx := context.Background()

	hr := newTestUser(t, repo, "hr@test.dev", models.RoleHR)
	candidate := newTestCandidate(t, repo, "partial@example.com")
	submission := newTestSubmission(t, repo, candidate.ID, models.SubmissionKindHR)
	questionID := submission.Responses[0].ID

	if _, err := service.ApplyReview(ctx, submission.ID, questionID, models.SubmissionKindHR, hr, ReviewPatch{
		AIScore: floatPtr(4),
		Remarks: strPtr("solid answer"),
	}); err != nil {
		t.Fatalf("initial review failed: %v", err)
	}

	// Flag only: score and remarks survive
	updated, err := service.ApplyReview(ctx, submission.ID, questionID, models.SubmissionKindHR, hr, ReviewPatch{
		Flagged: boolPtr(true),
	})
	if err != nil {
		t.Fatalf("flag-only review failed: %v", err)
	}
	if updated.AIScore == nil || *updated.AIScore != 4 {
		t.Errorf("expected score preserved at 4, got %v", updated.AIScore)
	}
	if updated.Remarks != "solid answer" {
		t.Errorf("expected remarks preserved, got %q", updated.Remarks)
	}
	if !updated.Flagged {
		t.Error("expected response flagged")
	}
}

func TestApplyReviewRejectsEmptyPatch(t *testing.T) {
	repo := newTestRepo(t)
	service := NewReviewService(repo, nil, nil)

	hr := newTestUser(t, repo, "hr@test.dev", models.RoleHR)
	candidate := newTestCandidate(t, repo, "empty@example.com")
	submission := newTestSubmission(t, repo, candidate.ID, models.SubmissionKindHR)

	_, err := service.ApplyReview(context.Background(), submission.ID, submission.Responses[0].ID, models.SubmissionKindHR, hr, ReviewPatch{})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error for empty patch, got %v", err)
	}
}

func TestApplyReviewRemarksCap(t *testing.T) {
	repo := newTestRepo(t)
	service := NewReviewService(repo, nil, nil)
	ctx := context.Background()

	hr := newTestUser(t, repo, "hr@test.dev", models.RoleHR)
	candidate := newTestCandidate(t, repo, "remarks@example.com")
	submission := newTestSubmission(t, repo, candidate.ID, models.SubmissionKindHR)
	questionID := submission.Responses[0].ID

	atCap := strings.Repeat("a", MaxRemarksLength)
	if _, err := service.ApplyReview(ctx, submission.ID, questionID, models.SubmissionKindHR, hr, ReviewPatch{Remarks: &atCap}); err != nil {
		t.Fatalf("expected remarks at cap accepted, got %v", err)
	}

	overCap := strings.Repeat("a", MaxRemarksLength+1)
	_, err := service.ApplyReview(ctx, submission.ID, questionID, models.SubmissionKindHR, hr, ReviewPatch{Remarks: &overCap})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error over cap, got %v", err)
	}
}

func TestApplyReviewNotFound(t *testing.T) {
	repo := newTestRepo(t)
	service := NewReviewService(repo, nil, nil)
	ctx := context.Background()

	hr := newTestUser(t, repo, "hr@test.dev", models.RoleHR)
	candidate := newTestCandidate(t, repo, "missing@example.com")
	submission := newTestSubmission(t, repo, candidate.ID, models.SubmissionKindHR)

	patch := ReviewPatch{Flagged: boolPtr(true)}

	if _, err := service.ApplyReview(ctx, "no-such-submission", "q", models.SubmissionKindHR, hr, patch); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not-found for unknown submission, got %v", err)
	}
	// Kind mismatch is also a miss
	if _, err := service.ApplyReview(ctx, submission.ID, submission.Responses[0].ID, models.SubmissionKindAssessment, hr, patch); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not-found for kind mismatch, got %v", err)
	}
	if _, err := service.ApplyReview(ctx, submission.ID, "no-such-question", models.SubmissionKindHR, hr, patch); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not-found for unknown question, got %v", err)
	}
}

func TestEvaluateWithoutEvaluator(t *testing.T) {
	repo := newTestRepo(t)
	service := NewReviewService(repo, nil, nil)

	candidate := newTestCandidate(t, repo, "noai@example.com")
	submission := newTestSubmission(t, repo, candidate.ID, models.SubmissionKindAssessment)

	_, err := service.Evaluate(context.Background(), submission.ID, models.SubmissionKindAssessment)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error when evaluator is not configured, got %v", err)
	}
}

func TestAnswerText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"string unwraps", `"hello world"`, "hello world"},
		{"empty", ``, ""},
		{"object passes through", `{"lang":"go"}`, `{"lang":"go"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := answerText([]byte(tt.raw)); got != tt.want {
				t.Errorf("answerText(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
