package repository

import (
	"context"
	"log/slog"

	"github.com/talentgrid/backend/models"
	"gorm.io/gorm"
)

func (r *GORMRepository) CreateInterview(ctx context.Context, interview *models.Interview) error {
	if err := r.db.WithContext(ctx).Create(interview).Error; err != nil {
		slog.Error("Failed to create interview", "error", err, "candidate_id", interview.CandidateID)
		return err
	}
	slog.Info("Interview created", "interview_id", interview.ID, "candidate_id", interview.CandidateID, "scheduled_at", interview.ScheduledAt)
	return nil
}

func (r *GORMRepository) GetInterviews(ctx context.Context, candidateID string) ([]models.Interview, error) {
	var interviews []models.Interview
	query := r.db.WithContext(ctx).Preload("Interviewers").Preload("Remarks").Preload("Candidate")
	if candidateID != "" {
		query = query.Where("candidate_id = ?", candidateID)
	}
	if err := query.Order("scheduled_at DESC").Find(&interviews).Error; err != nil {
		slog.Error("Failed to get interviews", "error", err)
		return nil, err
	}
	return interviews, nil
}

func (r *GORMRepository) GetInterviewByID(ctx context.Context, id string) (*models.Interview, error) {
	var interview models.Interview
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Preload("Interviewers").
		Preload("Remarks").
		Preload("Candidate").
		First(&interview).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get interview", "error", err, "interview_id", id)
		return nil, err
	}
	return &interview, nil
}

func (r *GORMRepository) UpdateInterview(ctx context.Context, interview *models.Interview) error {
	if err := r.db.WithContext(ctx).Save(interview).Error; err != nil {
		slog.Error("Failed to update interview", "error", err, "interview_id", interview.ID)
		return err
	}
	return nil
}

func (r *GORMRepository) CreateInterviewRemark(ctx context.Context, remark *models.InterviewRemark) error {
	if err := r.db.WithContext(ctx).Create(remark).Error; err != nil {
		slog.Error("Failed to create interview remark", "error", err, "interview_id", remark.InterviewID, "provider_id", remark.ProviderID)
		return err
	}
	slog.Info("Interview remark created", "interview_id", remark.InterviewID, "provider_id", remark.ProviderID)
	return nil
}

// GetInterviewRemark returns a provider's remark for an interview, or nil
// when none exists yet.
func (r *GORMRepository) GetInterviewRemark(ctx context.Context, interviewID, providerID string) (*models.InterviewRemark, error) {
	var remark models.InterviewRemark
	err := r.db.WithContext(ctx).
		Where("interview_id = ? AND provider_id = ?", interviewID, providerID).
		First(&remark).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get interview remark", "error", err, "interview_id", interviewID, "provider_id", providerID)
		return nil, err
	}
	return &remark, nil
}
