package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/talentgrid/backend/models"
	"github.com/talentgrid/backend/repository"
)

// InterviewService schedules interviews and collects interviewer remarks.
type InterviewService struct {
	repo *repository.GORMRepository
}

func NewInterviewService(repo *repository.GORMRepository) *InterviewService {
	return &InterviewService{repo: repo}
}

// ScheduleRequest carries the fields for a new interview.
type ScheduleRequest struct {
	CandidateID    string     `json:"candidate_id"`
	Title          string     `json:"title"`
	Type           string     `json:"type"`
	ScheduledAt    time.Time  `json:"scheduled_at"`
	EndTime        *time.Time `json:"end_time"`
	MeetingLink    string     `json:"meeting_link"`
	Platform       string     `json:"platform"`
	Address        string     `json:"address"`
	InterviewerIDs []string   `json:"interviewer_ids"`
}

// Schedule validates and creates an interview for an active candidate.
func (s *InterviewService) Schedule(ctx context.Context, req ScheduleRequest) (*models.Interview, error) {
	if req.Title == "" {
		return nil, validationErrorf("interview title is required")
	}
	if req.Type != models.InterviewTypeOnline && req.Type != models.InterviewTypeOffline {
		return nil, validationErrorf("interview type must be online or offline")
	}
	if req.ScheduledAt.IsZero() {
		return nil, validationErrorf("scheduled time is required")
	}
	if req.Type == models.InterviewTypeOnline && req.MeetingLink == "" {
		return nil, validationErrorf("meeting link is required for online interviews")
	}
	if req.Type == models.InterviewTypeOffline && req.Address == "" {
		return nil, validationErrorf("address is required for offline interviews")
	}

	candidate, err := s.repo.GetCandidate(ctx, req.CandidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate: %w", err)
	}
	if candidate == nil {
		return nil, fmt.Errorf("%w: candidate %s", ErrNotFound, req.CandidateID)
	}

	interview := &models.Interview{
		CandidateID: candidate.ID,
		Title:       req.Title,
		Type:        req.Type,
		ScheduledAt: req.ScheduledAt,
		EndTime:     req.EndTime,
		MeetingLink: req.MeetingLink,
		Platform:    req.Platform,
		Address:     req.Address,
		Status:      models.InterviewStatusScheduled,
	}

	for _, interviewerID := range req.InterviewerIDs {
		interviewer, err := s.repo.GetUserByID(ctx, interviewerID)
		if err != nil {
			return nil, fmt.Errorf("failed to load interviewer: %w", err)
		}
		if interviewer == nil {
			return nil, fmt.Errorf("%w: interviewer %s", ErrNotFound, interviewerID)
		}
		interview.Interviewers = append(interview.Interviewers, *interviewer)
	}

	if err := s.repo.CreateInterview(ctx, interview); err != nil {
		return nil, fmt.Errorf("failed to create interview: %w", err)
	}
	return interview, nil
}

// AddRemark records an interviewer's remark. Remarks open only after the
// scheduled time has passed, and each interviewer gets exactly one.
func (s *InterviewService) AddRemark(ctx context.Context, interviewID string, actor *models.User, remark, grade string) (*models.InterviewRemark, error) {
	if remark == "" {
		return nil, validationErrorf("remark text is required")
	}
	if grade != "" && !models.IsGrade(grade) {
		return nil, validationErrorf("unknown grade letter: %s", grade)
	}

	interview, err := s.repo.GetInterviewByID(ctx, interviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to load interview: %w", err)
	}
	if interview == nil {
		return nil, fmt.Errorf("%w: interview %s", ErrNotFound, interviewID)
	}

	if time.Now().Before(interview.ScheduledAt) {
		return nil, validationErrorf("remarks open after the interview has started")
	}
	if interview.Status == models.InterviewStatusCancelled {
		return nil, validationErrorf("cannot add remarks to a cancelled interview")
	}

	existing, err := s.repo.GetInterviewRemark(ctx, interviewID, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing remark: %w", err)
	}
	if existing != nil {
		return nil, validationErrorf("a remark has already been submitted for this interview")
	}

	record := &models.InterviewRemark{
		InterviewID:  interview.ID,
		ProviderID:   actor.ID,
		ProviderName: actor.FullName,
		Remark:       remark,
		Grade:        grade,
	}
	if err := s.repo.CreateInterviewRemark(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create remark: %w", err)
	}

	slog.Info("Interview remark added", "interview_id", interview.ID, "provider_id", actor.ID)
	return record, nil
}

// JoinInfo returns what a staff member needs to join an interview: the link
// for online interviews, the address for offline ones. Joining is only
// allowed from shortly before the scheduled time.
func (s *InterviewService) JoinInfo(ctx context.Context, interviewID string) (map[string]interface{}, error) {
	interview, err := s.repo.GetInterviewByID(ctx, interviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to load interview: %w", err)
	}
	if interview == nil {
		return nil, fmt.Errorf("%w: interview %s", ErrNotFound, interviewID)
	}

	if interview.Status == models.InterviewStatusCancelled {
		return nil, validationErrorf("interview has been cancelled")
	}
	if time.Now().Before(interview.ScheduledAt.Add(-15 * time.Minute)) {
		return nil, validationErrorf("interview can be joined 15 minutes before the scheduled time")
	}

	info := map[string]interface{}{
		"interview_id": interview.ID,
		"type":         interview.Type,
		"scheduled_at": interview.ScheduledAt,
	}
	if interview.Type == models.InterviewTypeOnline {
		info["meeting_link"] = interview.MeetingLink
		info["platform"] = interview.Platform
	} else {
		info["address"] = interview.Address
	}
	return info, nil
}
