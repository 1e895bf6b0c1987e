package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/talentgrid/backend/models"
	"github.com/talentgrid/backend/repository"
)

func newTestRepo(t *testing.T) *repository.GORMRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	repo := repository.NewGORMRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return repo
}

func newTestUser(t *testing.T, repo *repository.GORMRepository, email, role string) *models.User {
	t.Helper()

	user := &models.User{
		Email:    email,
		Password: "irrelevant",
		FullName: "Test Staff",
		Role:     role,
	}
	if err := repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func newTestCandidate(t *testing.T, repo *repository.GORMRepository, email string) *models.Candidate {
	t.Helper()

	candidate := &models.Candidate{
		Name:         "Test Candidate",
		Email:        email,
		CurrentStage: models.StageRegistered,
		Status:       models.StatusActive,
	}
	if err := repo.CreateCandidate(context.Background(), candidate); err != nil {
		t.Fatalf("failed to create candidate: %v", err)
	}
	return candidate
}

func grantGlory(t *testing.T, repo *repository.GORMRepository, candidateID, role string) {
	t.Helper()

	grade := &models.GloryGrade{
		CandidateID: candidateID,
		Role:        role,
		GraderID:    "grader-" + role,
		Grades:      datatypes.JSONMap{models.DefaultGradingParameter: "B"},
		GradedAt:    time.Now(),
	}
	if err := repo.UpsertGloryGrade(context.Background(), grade); err != nil {
		t.Fatalf("failed to grant glory: %v", err)
	}
}

func newTestSubmission(t *testing.T, repo *repository.GORMRepository, candidateID, kind string) *models.Submission {
	t.Helper()

	submission := &models.Submission{
		CandidateID: candidateID,
		Kind:        kind,
		SubmittedAt: time.Now(),
		Responses: []models.QuestionResponse{
			{
				Question:  "Describe a system you designed",
				InputType: models.InputTypeText,
				Answer:    datatypes.JSON(`"A queue-backed ingestion pipeline."`),
			},
		},
	}
	if err := repo.CreateSubmission(context.Background(), submission); err != nil {
		t.Fatalf("failed to create submission: %v", err)
	}
	return submission
}
