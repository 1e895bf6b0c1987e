package services

import (
	"context"
	"testing"

	"gorm.io/datatypes"

	"github.com/talentgrid/backend/models"
)

func TestSubmitGradesOverwrites(t *testing.T) {
	repo := newTestRepo(t)
	service := NewGloryService(repo, nil)
	ctx := context.Background()

	hr := newTestUser(t, repo, "hr@test.dev", models.RoleHR)
	candidate := newTestCandidate(t, repo, "glory@example.com")

	if _, err := service.SubmitGrades(ctx, candidate.ID, hr, map[string]string{"Overall": "C"}); err != nil {
		t.Fatalf("first submission failed: %v", err)
	}
	if _, err := service.SubmitGrades(ctx, candidate.ID, hr, map[string]string{"Overall": "A+"}); err != nil {
		t.Fatalf("second submission failed: %v", err)
	}

	grades, err := repo.GetGloryGrades(ctx, candidate.ID)
	if err != nil {
		t.Fatalf("failed to load grades: %v", err)
	}
	if len(grades) != 1 {
		t.Fatalf("expected one record per role, got %d", len(grades))
	}
	if got := grades[0].GradeMap()["Overall"]; got != "A+" {
		t.Errorf("expected second submission to win, got %q", got)
	}
}

func TestSubmitGradesValidation(t *testing.T) {
	repo := newTestRepo(t)
	service := NewGloryService(repo, nil)
	ctx := context.Background()

	hr := newTestUser(t, repo, "hr@test.dev", models.RoleHR)
	candidate := newTestCandidate(t, repo, "validation@example.com")

	tests := []struct {
		name   string
		grades map[string]string
	}{
		{"empty map", map[string]string{}},
		{"unknown letter", map[string]string{"Overall": "F"}},
		{"unknown parameter", map[string]string{"Charisma": "A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := service.SubmitGrades(ctx, candidate.ID, hr, tt.grades); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestSubmitGradesUsesJobParameters(t *testing.T) {
	repo := newTestRepo(t)
	service := NewGloryService(repo, nil)
	ctx := context.Background()

	hr := newTestUser(t, repo, "hr@test.dev", models.RoleHR)

	job := &models.Job{
		Title:             "Backend Engineer",
		GradingParameters: datatypes.NewJSONSlice([]string{"Technical Depth", "Communication"}),
		IsActive:          true,
	}
	if err := repo.CreateJob(ctx, job); err != nil {
		t.Fatalf("failed to create job: %v", err)
	}

	candidate := newTestCandidate(t, repo, "jobparams@example.com")
	candidate.AppliedJobID = &job.ID
	if err := repo.UpdateCandidate(ctx, candidate); err != nil {
		t.Fatalf("failed to attach job: %v", err)
	}

	// Job parameters are accepted, partial sets included
	if _, err := service.SubmitGrades(ctx, candidate.ID, hr, map[string]string{"Technical Depth": "B"}); err != nil {
		t.Fatalf("expected job parameter accepted, got %v", err)
	}

	// The default parameter no longer applies once the job defines its own
	if _, err := service.SubmitGrades(ctx, candidate.ID, hr, map[string]string{"Overall": "B"}); err == nil {
		t.Error("expected default parameter rejected when the job defines parameters")
	}
}

func TestDisplayOmitsEmptyRoles(t *testing.T) {
	repo := newTestRepo(t)
	service := NewGloryService(repo, nil)
	ctx := context.Background()

	hr := newTestUser(t, repo, "hr@test.dev", models.RoleHR)
	manager := newTestUser(t, repo, "manager@test.dev", models.RoleManager)
	candidate := newTestCandidate(t, repo, "display@example.com")

	if _, err := service.SubmitGrades(ctx, candidate.ID, hr, map[string]string{"Overall": "A"}); err != nil {
		t.Fatalf("hr submission failed: %v", err)
	}
	if _, err := service.SubmitGrades(ctx, candidate.ID, manager, map[string]string{"Overall": "B"}); err != nil {
		t.Fatalf("manager submission failed: %v", err)
	}

	display, err := service.Display(ctx, candidate.ID)
	if err != nil {
		t.Fatalf("display failed: %v", err)
	}

	if len(display.Roles) != 2 {
		t.Fatalf("expected 2 graded roles, got %d", len(display.Roles))
	}
	// Fixed display order: hr before manager, ungraded roles absent
	if display.Roles[0].Role != models.RoleHR || display.Roles[1].Role != models.RoleManager {
		t.Errorf("unexpected role order: %s, %s", display.Roles[0].Role, display.Roles[1].Role)
	}
	for _, roleGrades := range display.Roles {
		if roleGrades.Role == models.RoleInvigilator || roleGrades.Role == models.RoleAdmin {
			t.Errorf("expected ungraded role %s omitted", roleGrades.Role)
		}
	}
}
