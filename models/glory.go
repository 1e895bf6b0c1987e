package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Glory grade letters, ordered best to worst.
const (
	GradeAPlus = "A+"
	GradeA     = "A"
	GradeB     = "B"
	GradeC     = "C"
	GradeD     = "D"
	GradeE     = "E"
)

// gradeRank orders grade letters for display. The ordinal mapping is
// presentation-only and carries no numeric meaning in business rules.
var gradeRank = map[string]int{
	GradeAPlus: 0,
	GradeA:     1,
	GradeB:     2,
	GradeC:     3,
	GradeD:     4,
	GradeE:     5,
}

// IsGrade reports whether g is a known grade letter.
func IsGrade(g string) bool {
	_, ok := gradeRank[g]
	return ok
}

// GradeRank returns the display rank of a grade letter (lower is better).
// Unknown grades sort last.
func GradeRank(g string) int {
	if r, ok := gradeRank[g]; ok {
		return r
	}
	return len(gradeRank)
}

// DefaultGradingParameter is used when the applied job defines no grading
// parameters of its own.
const DefaultGradingParameter = "Overall"

// GloryGrade holds one grading role's qualitative grades for a candidate.
// At most one row exists per (candidate, role); re-grading replaces the row
// wholesale rather than appending.
type GloryGrade struct {
	ID          string            `gorm:"type:uuid;primaryKey" json:"id"`
	CandidateID string            `gorm:"type:uuid;not null;uniqueIndex:idx_glory_candidate_role" json:"candidate_id"`
	Role        string            `gorm:"not null;uniqueIndex:idx_glory_candidate_role;check:role IN ('admin', 'hr', 'invigilator', 'manager')" json:"role"`
	GraderID    string            `gorm:"type:uuid;not null" json:"grader_id"`
	GraderName  string            `gorm:"size:255" json:"grader_name,omitempty"`
	GraderRole  string            `gorm:"size:32" json:"grader_role"`
	Grades      datatypes.JSONMap `json:"grades"` // parameter -> grade letter
	GradedAt    time.Time         `gorm:"not null" json:"graded_at"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func (g *GloryGrade) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	return nil
}

// GradeMap returns the stored parameter->grade map with string values.
func (g *GloryGrade) GradeMap() map[string]string {
	out := make(map[string]string, len(g.Grades))
	for param, v := range g.Grades {
		if s, ok := v.(string); ok {
			out[param] = s
		}
	}
	return out
}

// HasGrades reports whether this record carries at least one graded parameter.
func (g *GloryGrade) HasGrades() bool {
	return g != nil && len(g.Grades) > 0
}
