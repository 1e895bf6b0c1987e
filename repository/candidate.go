package repository

import (
	"context"
	"log/slog"

	"github.com/talentgrid/backend/models"
	"gorm.io/gorm"
)

// CandidateFilter narrows candidate list queries.
type CandidateFilter struct {
	Stage       string
	Status      string
	Search      string // matches name or email
	Shortlisted *bool
}

func (r *GORMRepository) CreateCandidate(ctx context.Context, candidate *models.Candidate) error {
	if err := r.db.WithContext(ctx).Create(candidate).Error; err != nil {
		slog.Error("Failed to create candidate", "error", err)
		return err
	}
	slog.Info("Candidate created", "candidate_id", candidate.ID, "email", candidate.Email)
	return nil
}

func (r *GORMRepository) GetCandidates(ctx context.Context, filter CandidateFilter) ([]models.Candidate, error) {
	var candidates []models.Candidate
	query := r.db.WithContext(ctx).Preload("AppliedJob").Preload("GloryGrades")

	if filter.Stage != "" {
		query = query.Where("current_stage = ?", filter.Stage)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("(name LIKE ? OR email LIKE ?)", like, like)
	}
	if filter.Shortlisted != nil {
		query = query.Where("shortlisted = ?", *filter.Shortlisted)
	}

	if err := query.Order("created_at DESC").Find(&candidates).Error; err != nil {
		slog.Error("Failed to get candidates", "error", err)
		return nil, err
	}
	return candidates, nil
}

// GetCandidateByID loads a candidate with all owned collections preloaded.
func (r *GORMRepository) GetCandidateByID(ctx context.Context, id string) (*models.Candidate, error) {
	var candidate models.Candidate
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Preload("AppliedJob").
		Preload("Documents").
		Preload("GloryGrades").
		Preload("InternalFeedback", func(db *gorm.DB) *gorm.DB {
			return db.Order("feedback_at DESC")
		}).
		Preload("StageHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("changed_at DESC")
		}).
		Preload("Interviews").
		Preload("Interviews.Remarks").
		First(&candidate).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get candidate", "error", err, "candidate_id", id)
		return nil, err
	}
	return &candidate, nil
}

// GetCandidate loads a candidate with only its glory grades, enough for
// pipeline rule checks.
func (r *GORMRepository) GetCandidate(ctx context.Context, id string) (*models.Candidate, error) {
	var candidate models.Candidate
	err := r.db.WithContext(ctx).Where("id = ?", id).Preload("GloryGrades").First(&candidate).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get candidate", "error", err, "candidate_id", id)
		return nil, err
	}
	return &candidate, nil
}

func (r *GORMRepository) UpdateCandidate(ctx context.Context, candidate *models.Candidate) error {
	if err := r.db.WithContext(ctx).Save(candidate).Error; err != nil {
		slog.Error("Failed to update candidate", "error", err, "candidate_id", candidate.ID)
		return err
	}
	return nil
}

// HardDeleteCandidate permanently removes a candidate and every owned
// record. Admin-only and irreversible; soft deletion goes through
// flagged_for_deletion instead.
func (r *GORMRepository) HardDeleteCandidate(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{
			&models.Document{},
			&models.StageHistoryEntry{},
			&models.InternalFeedbackEntry{},
			&models.GloryGrade{},
		} {
			if err := tx.Unscoped().Where("candidate_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		// Remarks hang off interviews, not the candidate directly.
		var interviewIDs []string
		if err := tx.Model(&models.Interview{}).Unscoped().Where("candidate_id = ?", id).Pluck("id", &interviewIDs).Error; err != nil {
			return err
		}
		if len(interviewIDs) > 0 {
			if err := tx.Unscoped().Where("interview_id IN ?", interviewIDs).Delete(&models.InterviewRemark{}).Error; err != nil {
				return err
			}
			// many2many rows have no model; clear the join table directly
			if err := tx.Exec("DELETE FROM interview_interviewers WHERE interview_id IN ?", interviewIDs).Error; err != nil {
				return err
			}
		}
		if err := tx.Unscoped().Where("candidate_id = ?", id).Delete(&models.Interview{}).Error; err != nil {
			return err
		}

		var submissionIDs []string
		if err := tx.Model(&models.Submission{}).Unscoped().Where("candidate_id = ?", id).Pluck("id", &submissionIDs).Error; err != nil {
			return err
		}
		if len(submissionIDs) > 0 {
			if err := tx.Unscoped().Where("submission_id IN ?", submissionIDs).Delete(&models.QuestionResponse{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Unscoped().Where("candidate_id = ?", id).Delete(&models.Submission{}).Error; err != nil {
			return err
		}

		return tx.Unscoped().Where("id = ?", id).Delete(&models.Candidate{}).Error
	})
	if err != nil {
		slog.Error("Failed to hard delete candidate", "error", err, "candidate_id", id)
		return err
	}
	slog.Info("Candidate hard deleted", "candidate_id", id)
	return nil
}

// ApplyStageTransition moves a candidate to a new stage and appends exactly
// one stage history entry and one internal feedback entry, all in a single
// transaction. The history entry is write-once; nothing in this repository
// updates or deletes ledger rows.
func (r *GORMRepository) ApplyStageTransition(ctx context.Context, candidate *models.Candidate, entry *models.StageHistoryEntry, feedback *models.InternalFeedbackEntry) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Candidate{}).Where("id = ?", candidate.ID).
			Update("current_stage", entry.ToStage).Error; err != nil {
			return err
		}
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		if feedback != nil {
			return tx.Create(feedback).Error
		}
		return nil
	})
	if err != nil {
		slog.Error("Failed to apply stage transition", "error", err, "candidate_id", candidate.ID, "to_stage", entry.ToStage)
		return err
	}
	candidate.CurrentStage = entry.ToStage
	slog.Info("Stage transition applied", "candidate_id", candidate.ID, "from_stage", entry.FromStage, "to_stage", entry.ToStage, "changed_by", entry.ChangedBy)
	return nil
}

// ApplyStatusChange updates a candidate's status and records the reason as
// an internal feedback entry in the same transaction. Stage is untouched.
func (r *GORMRepository) ApplyStatusChange(ctx context.Context, candidate *models.Candidate, status, reason string, feedback *models.InternalFeedbackEntry) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": status, "status_reason": reason}
		if err := tx.Model(&models.Candidate{}).Where("id = ?", candidate.ID).Updates(updates).Error; err != nil {
			return err
		}
		if feedback != nil {
			return tx.Create(feedback).Error
		}
		return nil
	})
	if err != nil {
		slog.Error("Failed to apply status change", "error", err, "candidate_id", candidate.ID, "status", status)
		return err
	}
	candidate.Status = status
	candidate.StatusReason = reason
	slog.Info("Candidate status changed", "candidate_id", candidate.ID, "status", status)
	return nil
}

// GetStageHistory returns the ledger for a candidate, newest first. Input
// order from the database is not assumed; ordering is explicit.
func (r *GORMRepository) GetStageHistory(ctx context.Context, candidateID string) ([]models.StageHistoryEntry, error) {
	var entries []models.StageHistoryEntry
	err := r.db.WithContext(ctx).
		Where("candidate_id = ?", candidateID).
		Order("changed_at DESC").
		Find(&entries).Error
	if err != nil {
		slog.Error("Failed to get stage history", "error", err, "candidate_id", candidateID)
		return nil, err
	}
	return entries, nil
}

// CreateStageHistoryEntry appends one ledger row outside of a transition,
// e.g. the registration entry. Transition entries go through
// ApplyStageTransition instead.
func (r *GORMRepository) CreateStageHistoryEntry(ctx context.Context, entry *models.StageHistoryEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		slog.Error("Failed to create stage history entry", "error", err, "candidate_id", entry.CandidateID)
		return err
	}
	return nil
}

func (r *GORMRepository) CreateInternalFeedback(ctx context.Context, entry *models.InternalFeedbackEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		slog.Error("Failed to create internal feedback", "error", err, "candidate_id", entry.CandidateID)
		return err
	}
	slog.Info("Internal feedback created", "candidate_id", entry.CandidateID, "feedback_by", entry.FeedbackByID)
	return nil
}

// UpsertGloryGrade replaces the grading record for (candidate, role)
// wholesale. Re-grading overwrites; it never appends a second row.
func (r *GORMRepository) UpsertGloryGrade(ctx context.Context, grade *models.GloryGrade) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.GloryGrade
		err := tx.Where("candidate_id = ? AND role = ?", grade.CandidateID, grade.Role).First(&existing).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return tx.Create(grade).Error
			}
			return err
		}
		grade.ID = existing.ID
		grade.CreatedAt = existing.CreatedAt
		return tx.Save(grade).Error
	})
	if err != nil {
		slog.Error("Failed to upsert glory grade", "error", err, "candidate_id", grade.CandidateID, "role", grade.Role)
		return err
	}
	slog.Info("Glory grade saved", "candidate_id", grade.CandidateID, "role", grade.Role, "grader_id", grade.GraderID)
	return nil
}

func (r *GORMRepository) GetGloryGrades(ctx context.Context, candidateID string) ([]models.GloryGrade, error) {
	var grades []models.GloryGrade
	if err := r.db.WithContext(ctx).Where("candidate_id = ?", candidateID).Find(&grades).Error; err != nil {
		slog.Error("Failed to get glory grades", "error", err, "candidate_id", candidateID)
		return nil, err
	}
	return grades, nil
}

func (r *GORMRepository) CreateDocument(ctx context.Context, doc *models.Document) error {
	if err := r.db.WithContext(ctx).Create(doc).Error; err != nil {
		slog.Error("Failed to create document", "error", err, "candidate_id", doc.CandidateID)
		return err
	}
	return nil
}

func (r *GORMRepository) GetDocuments(ctx context.Context, candidateID string) ([]models.Document, error) {
	var docs []models.Document
	err := r.db.WithContext(ctx).
		Where("candidate_id = ?", candidateID).
		Order("uploaded_at DESC").
		Find(&docs).Error
	if err != nil {
		slog.Error("Failed to get documents", "error", err, "candidate_id", candidateID)
		return nil, err
	}
	return docs, nil
}

// PipelineStats holds dashboard counts per stage and status.
type PipelineStats struct {
	Total    int64            `json:"total"`
	ByStage  map[string]int64 `json:"by_stage"`
	ByStatus map[string]int64 `json:"by_status"`
}

// GetPipelineStats aggregates candidate counts for the dashboard. Failures
// here are supplementary; callers log and continue.
func (r *GORMRepository) GetPipelineStats(ctx context.Context) (*PipelineStats, error) {
	stats := &PipelineStats{
		ByStage:  make(map[string]int64),
		ByStatus: make(map[string]int64),
	}

	if err := r.db.WithContext(ctx).Model(&models.Candidate{}).Count(&stats.Total).Error; err != nil {
		slog.Error("Failed to count candidates", "error", err)
		return nil, err
	}

	type bucket struct {
		Key   string
		Count int64
	}
	var stageBuckets []bucket
	if err := r.db.WithContext(ctx).Model(&models.Candidate{}).
		Select("current_stage AS key, COUNT(*) AS count").
		Group("current_stage").
		Scan(&stageBuckets).Error; err != nil {
		slog.Error("Failed to count candidates by stage", "error", err)
		return nil, err
	}
	for _, b := range stageBuckets {
		stats.ByStage[b.Key] = b.Count
	}

	var statusBuckets []bucket
	if err := r.db.WithContext(ctx).Model(&models.Candidate{}).
		Select("status AS key, COUNT(*) AS count").
		Group("status").
		Scan(&statusBuckets).Error; err != nil {
		slog.Error("Failed to count candidates by status", "error", err)
		return nil, err
	}
	for _, b := range statusBuckets {
		stats.ByStatus[b.Key] = b.Count
	}

	return stats, nil
}
