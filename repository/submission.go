package repository

import (
	"context"
	"log/slog"

	"github.com/talentgrid/backend/models"
	"gorm.io/gorm"
)

func (r *GORMRepository) CreateSubmission(ctx context.Context, submission *models.Submission) error {
	if err := r.db.WithContext(ctx).Create(submission).Error; err != nil {
		slog.Error("Failed to create submission", "error", err, "candidate_id", submission.CandidateID, "kind", submission.Kind)
		return err
	}
	slog.Info("Submission created", "submission_id", submission.ID, "candidate_id", submission.CandidateID, "kind", submission.Kind)
	return nil
}

func (r *GORMRepository) GetSubmissions(ctx context.Context, kind, candidateID string) ([]models.Submission, error) {
	var submissions []models.Submission
	query := r.db.WithContext(ctx).Where("kind = ?", kind).Preload("Candidate")
	if candidateID != "" {
		query = query.Where("candidate_id = ?", candidateID)
	}
	if err := query.Order("submitted_at DESC").Find(&submissions).Error; err != nil {
		slog.Error("Failed to get submissions", "error", err, "kind", kind)
		return nil, err
	}
	return submissions, nil
}

// GetSubmissionByID loads a submission with its responses. Kind may be empty
// to match any submission family.
func (r *GORMRepository) GetSubmissionByID(ctx context.Context, id, kind string) (*models.Submission, error) {
	var submission models.Submission
	query := r.db.WithContext(ctx).Where("id = ?", id).Preload("Candidate").Preload("Responses")
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if err := query.First(&submission).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get submission", "error", err, "submission_id", id)
		return nil, err
	}
	return &submission, nil
}

func (r *GORMRepository) GetQuestionResponse(ctx context.Context, submissionID, questionID string) (*models.QuestionResponse, error) {
	var response models.QuestionResponse
	err := r.db.WithContext(ctx).
		Where("id = ? AND submission_id = ?", questionID, submissionID).
		First(&response).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get question response", "error", err, "submission_id", submissionID, "question_id", questionID)
		return nil, err
	}
	return &response, nil
}

// UpdateQuestionReview applies a partial review patch. Only the columns
// present in updates change; omitted review fields keep their stored values.
func (r *GORMRepository) UpdateQuestionReview(ctx context.Context, questionID string, updates map[string]interface{}) (*models.QuestionResponse, error) {
	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).Model(&models.QuestionResponse{}).
			Where("id = ?", questionID).
			Updates(updates).Error; err != nil {
			slog.Error("Failed to update question review", "error", err, "question_id", questionID)
			return nil, err
		}
	}

	var response models.QuestionResponse
	if err := r.db.WithContext(ctx).Where("id = ?", questionID).First(&response).Error; err != nil {
		slog.Error("Failed to reload question response", "error", err, "question_id", questionID)
		return nil, err
	}
	slog.Info("Question review updated", "question_id", questionID, "fields", len(updates))
	return &response, nil
}

// SetAIScore fills the AI evaluation result for a response. Evaluate never
// overwrites an already-present score and never touches flagged/remarks.
func (r *GORMRepository) SetAIScore(ctx context.Context, questionID string, score float64) error {
	result := r.db.WithContext(ctx).Model(&models.QuestionResponse{}).
		Where("id = ? AND ai_score IS NULL", questionID).
		Update("ai_score", score)
	if result.Error != nil {
		slog.Error("Failed to set AI score", "error", result.Error, "question_id", questionID)
		return result.Error
	}
	if result.RowsAffected == 0 {
		slog.Info("AI score skipped, response already scored", "question_id", questionID)
	}
	return nil
}
