package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"

	"github.com/talentgrid/backend/models"
	"github.com/talentgrid/backend/repository"
	"golang.org/x/crypto/bcrypt"
)

// DatabaseSeeder handles database seeding operations
type DatabaseSeeder struct {
	repo *repository.GORMRepository
}

// NewDatabaseSeeder creates a new database seeder
func NewDatabaseSeeder(repo *repository.GORMRepository) *DatabaseSeeder {
	return &DatabaseSeeder{repo: repo}
}

// SeedDatabase seeds the database with initial data (idempotent)
func (s *DatabaseSeeder) SeedDatabase() error {
	ctx := context.Background()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	// One staff account per dashboard role
	users := []models.User{
		{
			Email:    "admin@talentgrid.dev",
			Password: string(hashedPassword),
			FullName: "Asha Pillai",
			Role:     models.RoleAdmin,
		},
		{
			Email:    "hr@talentgrid.dev",
			Password: string(hashedPassword),
			FullName: "Rahul Menon",
			Role:     models.RoleHR,
		},
		{
			Email:    "invigilator@talentgrid.dev",
			Password: string(hashedPassword),
			FullName: "Sneha Iyer",
			Role:     models.RoleInvigilator,
		},
		{
			Email:    "manager@talentgrid.dev",
			Password: string(hashedPassword),
			FullName: "Vikram Nair",
			Role:     models.RoleManager,
		},
	}

	for _, user := range users {
		if err := s.seedUser(ctx, user); err != nil {
			slog.Error("Failed to seed user", "email", user.Email, "error", err)
		}
	}

	jobs := []models.Job{
		{
			Title:          "Backend Engineer",
			Location:       "Kochi",
			Compensation:   "18-28 LPA",
			ExperienceBand: "3-6 years",
			GradingParameters: datatypes.NewJSONSlice([]string{
				"Technical Depth", "Problem Solving", "Communication", "Culture Fit",
			}),
			IsActive: true,
		},
		{
			Title:          "Frontend Engineer",
			Location:       "Remote",
			Compensation:   "14-22 LPA",
			ExperienceBand: "2-5 years",
			GradingParameters: datatypes.NewJSONSlice([]string{
				"Technical Depth", "UI Craft", "Communication",
			}),
			IsActive: true,
		},
		{
			Title:          "HR Executive",
			Location:       "Bengaluru",
			Compensation:   "8-12 LPA",
			ExperienceBand: "1-3 years",
			IsActive:       true,
		},
	}

	seededJobs := make(map[string]string, len(jobs))
	for _, job := range jobs {
		id, err := s.seedJob(ctx, job)
		if err != nil {
			slog.Error("Failed to seed job", "title", job.Title, "error", err)
			continue
		}
		seededJobs[job.Title] = id
	}

	backendJobID := seededJobs["Backend Engineer"]
	candidates := []models.Candidate{
		{
			Name:         "Anita Desai",
			Email:        "anita.desai@example.com",
			Phone:        "+91-9800000001",
			CurrentStage: models.StageRegistered,
			Status:       models.StatusActive,
		},
		{
			Name:         "Farhan Khan",
			Email:        "farhan.khan@example.com",
			Phone:        "+91-9800000002",
			CurrentStage: models.StageHR,
			Status:       models.StatusActive,
			Shortlisted:  true,
		},
	}
	if backendJobID != "" {
		for i := range candidates {
			candidates[i].AppliedJobID = &backendJobID
		}
	}

	for _, candidate := range candidates {
		if err := s.seedCandidate(ctx, candidate); err != nil {
			slog.Error("Failed to seed candidate", "email", candidate.Email, "error", err)
		}
	}

	slog.Info("Database seeding completed successfully")
	return nil
}

// seedUser seeds a single user (idempotent)
func (s *DatabaseSeeder) seedUser(ctx context.Context, user models.User) error {
	existingUser, err := s.repo.GetUserByEmail(ctx, user.Email)
	if err != nil {
		return fmt.Errorf("error checking user %s: %w", user.Email, err)
	}
	if existingUser != nil {
		slog.Info("User already exists, skipping", "email", user.Email)
		return nil
	}

	if err := s.repo.CreateUser(ctx, &user); err != nil {
		return fmt.Errorf("failed to create user %s: %w", user.Email, err)
	}

	slog.Info("Created user", "email", user.Email, "role", user.Role)
	return nil
}

// seedJob seeds a single job by title (idempotent), returning its id.
func (s *DatabaseSeeder) seedJob(ctx context.Context, job models.Job) (string, error) {
	existing, err := s.repo.GetJobs(ctx)
	if err != nil {
		return "", fmt.Errorf("error checking jobs: %w", err)
	}
	for _, existingJob := range existing {
		if existingJob.Title == job.Title {
			slog.Info("Job already exists, skipping", "title", job.Title)
			return existingJob.ID, nil
		}
	}

	if err := s.repo.CreateJob(ctx, &job); err != nil {
		return "", fmt.Errorf("failed to create job %s: %w", job.Title, err)
	}

	slog.Info("Created job", "title", job.Title)
	return job.ID, nil
}

// seedCandidate seeds a single candidate with its registration ledger entry
// (idempotent by email).
func (s *DatabaseSeeder) seedCandidate(ctx context.Context, candidate models.Candidate) error {
	existing, err := s.repo.GetCandidates(ctx, repository.CandidateFilter{Search: candidate.Email})
	if err != nil {
		return fmt.Errorf("error checking candidate %s: %w", candidate.Email, err)
	}
	for _, existingCandidate := range existing {
		if existingCandidate.Email == candidate.Email {
			slog.Info("Candidate already exists, skipping", "email", candidate.Email)
			return nil
		}
	}

	if err := s.repo.CreateCandidate(ctx, &candidate); err != nil {
		return fmt.Errorf("failed to create candidate %s: %w", candidate.Email, err)
	}

	entry := &models.StageHistoryEntry{
		CandidateID: candidate.ID,
		ToStage:     models.StageRegistered,
		ChangedBy:   candidate.ID,
		Action:      models.ActionRegistered,
		ChangedAt:   time.Now(),
	}
	if err := s.repo.CreateStageHistoryEntry(ctx, entry); err != nil {
		return fmt.Errorf("failed to write registration entry for %s: %w", candidate.Email, err)
	}

	slog.Info("Created candidate", "email", candidate.Email, "stage", candidate.CurrentStage)
	return nil
}
