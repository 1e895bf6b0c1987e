package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/talentgrid/backend/models"
)

func scheduleRequest(candidateID string) ScheduleRequest {
	return ScheduleRequest{
		CandidateID: candidateID,
		Title:       "Tech Round 1",
		Type:        models.InterviewTypeOnline,
		ScheduledAt: time.Now().Add(24 * time.Hour),
		MeetingLink: "https://meet.example.com/abc",
		Platform:    "meet",
	}
}

func TestScheduleValidation(t *testing.T) {
	repo := newTestRepo(t)
	service := NewInterviewService(repo)
	ctx := context.Background()

	candidate := newTestCandidate(t, repo, "sched@example.com")

	tests := []struct {
		name   string
		mutate func(*ScheduleRequest)
	}{
		{"missing title", func(r *ScheduleRequest) { r.Title = "" }},
		{"bad type", func(r *ScheduleRequest) { r.Type = "hybrid" }},
		{"zero time", func(r *ScheduleRequest) { r.ScheduledAt = time.Time{} }},
		{"online without link", func(r *ScheduleRequest) { r.MeetingLink = "" }},
		{"offline without address", func(r *ScheduleRequest) {
			r.Type = models.InterviewTypeOffline
			r.Address = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := scheduleRequest(candidate.ID)
			tt.mutate(&req)
			_, err := service.Schedule(ctx, req)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}

	if _, err := service.Schedule(ctx, scheduleRequest("no-such-candidate")); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not-found for unknown candidate, got %v", err)
	}
}

func TestScheduleAttachesInterviewers(t *testing.T) {
	repo := newTestRepo(t)
	service := NewInterviewService(repo)
	ctx := context.Background()

	candidate := newTestCandidate(t, repo, "panel@example.com")
	interviewer := newTestUser(t, repo, "panelist@test.dev", models.RoleManager)

	req := scheduleRequest(candidate.ID)
	req.InterviewerIDs = []string{interviewer.ID}

	interview, err := service.Schedule(ctx, req)
	if err != nil {
		t.Fatalf("schedule failed: %v", err)
	}
	if interview.Status != models.InterviewStatusScheduled {
		t.Errorf("expected scheduled status, got %q", interview.Status)
	}
	if len(interview.Interviewers) != 1 || interview.Interviewers[0].ID != interviewer.ID {
		t.Errorf("expected one attached interviewer, got %+v", interview.Interviewers)
	}

	req.InterviewerIDs = []string{"no-such-user"}
	if _, err := service.Schedule(ctx, req); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not-found for unknown interviewer, got %v", err)
	}
}

func TestAddRemarkBeforeStartRejected(t *testing.T) {
	repo := newTestRepo(t)
	service := NewInterviewService(repo)
	ctx := context.Background()

	candidate := newTestCandidate(t, repo, "early@example.com")
	manager := newTestUser(t, repo, "manager@test.dev", models.RoleManager)

	interview, err := service.Schedule(ctx, scheduleRequest(candidate.ID))
	if err != nil {
		t.Fatalf("schedule failed: %v", err)
	}

	_, err = service.AddRemark(ctx, interview.ID, manager, "went well", "")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error before the interview starts, got %v", err)
	}
}

func TestAddRemarkOnePerInterviewer(t *testing.T) {
	repo := newTestRepo(t)
	service := NewInterviewService(repo)
	ctx := context.Background()

	candidate := newTestCandidate(t, repo, "remarks@example.com")
	manager := newTestUser(t, repo, "manager@test.dev", models.RoleManager)
	hr := newTestUser(t, repo, "hr@test.dev", models.RoleHR)

	req := scheduleRequest(candidate.ID)
	req.ScheduledAt = time.Now().Add(-time.Hour)
	interview, err := service.Schedule(ctx, req)
	if err != nil {
		t.Fatalf("schedule failed: %v", err)
	}

	remark, err := service.AddRemark(ctx, interview.ID, manager, "solid fundamentals", "B")
	if err != nil {
		t.Fatalf("first remark failed: %v", err)
	}
	if remark.ProviderID != manager.ID || remark.Grade != "B" {
		t.Errorf("unexpected remark %+v", remark)
	}

	var ve *ValidationError
	if _, err := service.AddRemark(ctx, interview.ID, manager, "second thoughts", ""); !errors.As(err, &ve) {
		t.Errorf("expected second remark from the same interviewer rejected, got %v", err)
	}

	// A different interviewer still gets their one remark
	if _, err := service.AddRemark(ctx, interview.ID, hr, "good communication", "A"); err != nil {
		t.Errorf("expected remark from another interviewer accepted, got %v", err)
	}
}

func TestAddRemarkValidation(t *testing.T) {
	repo := newTestRepo(t)
	service := NewInterviewService(repo)
	ctx := context.Background()

	candidate := newTestCandidate(t, repo, "rv@example.com")
	manager := newTestUser(t, repo, "manager@test.dev", models.RoleManager)

	req := scheduleRequest(candidate.ID)
	req.ScheduledAt = time.Now().Add(-time.Hour)
	interview, err := service.Schedule(ctx, req)
	if err != nil {
		t.Fatalf("schedule failed: %v", err)
	}

	var ve *ValidationError
	if _, err := service.AddRemark(ctx, interview.ID, manager, "", ""); !errors.As(err, &ve) {
		t.Errorf("expected empty remark rejected, got %v", err)
	}
	if _, err := service.AddRemark(ctx, interview.ID, manager, "fine", "Z"); !errors.As(err, &ve) {
		t.Errorf("expected unknown grade letter rejected, got %v", err)
	}
}

func TestCancelledInterviewBlocksRemarksAndJoin(t *testing.T) {
	repo := newTestRepo(t)
	service := NewInterviewService(repo)
	ctx := context.Background()

	candidate := newTestCandidate(t, repo, "cancel@example.com")
	manager := newTestUser(t, repo, "manager@test.dev", models.RoleManager)

	req := scheduleRequest(candidate.ID)
	req.ScheduledAt = time.Now().Add(-time.Hour)
	interview, err := service.Schedule(ctx, req)
	if err != nil {
		t.Fatalf("schedule failed: %v", err)
	}

	interview.Status = models.InterviewStatusCancelled
	if err := repo.UpdateInterview(ctx, interview); err != nil {
		t.Fatalf("failed to cancel interview: %v", err)
	}

	var ve *ValidationError
	if _, err := service.AddRemark(ctx, interview.ID, manager, "note", ""); !errors.As(err, &ve) {
		t.Errorf("expected remark on cancelled interview rejected, got %v", err)
	}
	if _, err := service.JoinInfo(ctx, interview.ID); !errors.As(err, &ve) {
		t.Errorf("expected join on cancelled interview rejected, got %v", err)
	}
}

func TestJoinInfoWindowAndFields(t *testing.T) {
	repo := newTestRepo(t)
	service := NewInterviewService(repo)
	ctx := context.Background()

	candidate := newTestCandidate(t, repo, "join@example.com")

	// Too early: more than 15 minutes out
	early, err := service.Schedule(ctx, scheduleRequest(candidate.ID))
	if err != nil {
		t.Fatalf("schedule failed: %v", err)
	}
	var ve *ValidationError
	if _, err := service.JoinInfo(ctx, early.ID); !errors.As(err, &ve) {
		t.Errorf("expected join blocked before the window opens, got %v", err)
	}

	// Inside the window
	req := scheduleRequest(candidate.ID)
	req.ScheduledAt = time.Now().Add(10 * time.Minute)
	online, err := service.Schedule(ctx, req)
	if err != nil {
		t.Fatalf("schedule failed: %v", err)
	}
	info, err := service.JoinInfo(ctx, online.ID)
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if info["meeting_link"] != "https://meet.example.com/abc" || info["platform"] != "meet" {
		t.Errorf("expected online join info to carry link and platform, got %+v", info)
	}
	if _, ok := info["address"]; ok {
		t.Error("expected no address for an online interview")
	}

	// Offline interviews expose the address instead
	offlineReq := scheduleRequest(candidate.ID)
	offlineReq.Type = models.InterviewTypeOffline
	offlineReq.MeetingLink = ""
	offlineReq.Address = "14 MG Road, Bengaluru"
	offlineReq.ScheduledAt = time.Now().Add(-time.Hour)
	offline, err := service.Schedule(ctx, offlineReq)
	if err != nil {
		t.Fatalf("schedule failed: %v", err)
	}
	info, err = service.JoinInfo(ctx, offline.ID)
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if info["address"] != "14 MG Road, Bengaluru" {
		t.Errorf("expected offline join info to carry the address, got %+v", info)
	}
	if _, ok := info["meeting_link"]; ok {
		t.Error("expected no meeting link for an offline interview")
	}
}
