package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/talentgrid/backend/models"
	"gorm.io/gorm"
)

type GORMRepository struct {
	db *gorm.DB
}

func NewGORMRepository(db *gorm.DB) *GORMRepository {
	return &GORMRepository{db: db}
}

// DB exposes the underlying handle for health checks.
func (r *GORMRepository) DB() *gorm.DB {
	return r.db
}

// AutoMigrate runs database migrations
func (r *GORMRepository) AutoMigrate() error {
	return r.db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.EmailPreference{},
		&models.PushSubscription{},
		&models.Job{},
		&models.Candidate{},
		&models.Document{},
		&models.StageHistoryEntry{},
		&models.InternalFeedbackEntry{},
		&models.GloryGrade{},
		&models.Submission{},
		&models.QuestionResponse{},
		&models.Interview{},
		&models.InterviewRemark{},
	)
}

// User operations
func (r *GORMRepository) CreateUser(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		slog.Error("Failed to create user", "error", err)
		return err
	}
	slog.Info("User created", "user_id", user.ID, "email", user.Email, "role", user.Role)
	return nil
}

func (r *GORMRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get user by email", "error", err, "email", email)
		return nil, err
	}
	return &user, nil
}

func (r *GORMRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get user by ID", "error", err, "user_id", id)
		return nil, err
	}
	return &user, nil
}

func (r *GORMRepository) UpdateUser(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		slog.Error("Failed to update user", "error", err, "user_id", user.ID)
		return err
	}
	return nil
}

func (r *GORMRepository) GetUsersByRole(ctx context.Context, role string) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Where("role = ?", role).Find(&users).Error; err != nil {
		slog.Error("Failed to get users by role", "error", err, "role", role)
		return nil, err
	}
	return users, nil
}

// Token operations
func (r *GORMRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		slog.Error("Failed to create refresh token", "error", err)
		return err
	}
	return nil
}

func (r *GORMRepository) GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var refreshToken models.RefreshToken
	if err := r.db.WithContext(ctx).Where("token = ? AND expires_at > ?", token, time.Now()).First(&refreshToken).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get refresh token", "error", err)
		return nil, err
	}
	return &refreshToken, nil
}

func (r *GORMRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	if err := r.db.WithContext(ctx).Where("token = ?", token).Delete(&models.RefreshToken{}).Error; err != nil {
		slog.Error("Failed to delete refresh token", "error", err)
		return err
	}
	return nil
}

func (r *GORMRepository) DeleteAllUserTokens(ctx context.Context, userID string) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error; err != nil {
		slog.Error("Failed to delete user refresh tokens", "error", err, "user_id", userID)
		return err
	}
	return nil
}

// Notification preference operations
func (r *GORMRepository) GetEmailPreference(ctx context.Context, userID string) (*models.EmailPreference, error) {
	var pref models.EmailPreference
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&pref).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get email preference", "error", err, "user_id", userID)
		return nil, err
	}
	return &pref, nil
}

func (r *GORMRepository) SaveEmailPreference(ctx context.Context, pref *models.EmailPreference) error {
	if err := r.db.WithContext(ctx).Save(pref).Error; err != nil {
		slog.Error("Failed to save email preference", "error", err, "user_id", pref.UserID)
		return err
	}
	return nil
}

func (r *GORMRepository) CreatePushSubscription(ctx context.Context, sub *models.PushSubscription) error {
	if err := r.db.WithContext(ctx).Create(sub).Error; err != nil {
		slog.Error("Failed to create push subscription", "error", err, "user_id", sub.UserID)
		return err
	}
	return nil
}

func (r *GORMRepository) DeletePushSubscription(ctx context.Context, userID, endpoint string) error {
	if err := r.db.WithContext(ctx).Where("user_id = ? AND endpoint = ?", userID, endpoint).Delete(&models.PushSubscription{}).Error; err != nil {
		slog.Error("Failed to delete push subscription", "error", err, "user_id", userID)
		return err
	}
	return nil
}

// Job operations
func (r *GORMRepository) CreateJob(ctx context.Context, job *models.Job) error {
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		slog.Error("Failed to create job", "error", err)
		return err
	}
	slog.Info("Job created", "job_id", job.ID, "title", job.Title)
	return nil
}

func (r *GORMRepository) GetJobByID(ctx context.Context, id string) (*models.Job, error) {
	var job models.Job
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get job", "error", err, "job_id", id)
		return nil, err
	}
	return &job, nil
}

func (r *GORMRepository) GetJobs(ctx context.Context) ([]models.Job, error) {
	var jobs []models.Job
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Find(&jobs).Error; err != nil {
		slog.Error("Failed to get jobs", "error", err)
		return nil, err
	}
	return jobs, nil
}
