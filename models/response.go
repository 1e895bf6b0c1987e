package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Submission kinds. HR questionnaires and assessments share one shape; the
// kind selects score bounds and which /org endpoint family serves them.
const (
	SubmissionKindHR         = "hr"
	SubmissionKindAssessment = "assessment"
)

// Question input types.
const (
	InputTypeText     = "text"
	InputTypeAudio    = "audio"
	InputTypeMCQ      = "mcq"
	InputTypeCheckbox = "checkbox"
	InputTypeCoding   = "coding"
	InputTypeEssay    = "essay"
)

// IsInputType reports whether t names a known question input type.
func IsInputType(t string) bool {
	switch t {
	case InputTypeText, InputTypeAudio, InputTypeMCQ, InputTypeCheckbox, InputTypeCoding, InputTypeEssay:
		return true
	}
	return false
}

// Default manual score ceiling for assessment responses without an explicit
// max_score, and the fixed ceiling for HR questionnaire responses.
const (
	HRScoreMax                = 5.0
	AssessmentScoreMaxDefault = 10.0
)

// Submission is one candidate's questionnaire or assessment response set.
type Submission struct {
	ID          string         `gorm:"type:uuid;primaryKey" json:"id"`
	CandidateID string         `gorm:"type:uuid;not null;index" json:"candidate_id"`
	Kind        string         `gorm:"not null;index;check:kind IN ('hr', 'assessment')" json:"kind"`
	Title       string         `gorm:"size:255" json:"title,omitempty"`
	SubmittedAt time.Time      `gorm:"not null" json:"submitted_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Candidate *Candidate         `gorm:"foreignKey:CandidateID" json:"candidate,omitempty"`
	Responses []QuestionResponse `gorm:"foreignKey:SubmissionID" json:"responses,omitempty"`
}

func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// QuestionResponse is one answered question within a submission. AIScore,
// Flagged and Remarks are the manual-review fields: they are mutated only
// through the review endpoint and are independent of whether AI evaluation
// has run. Answer shape depends on InputType (plain string for text/essay,
// option list for checkbox, source text for coding, object URL for audio).
type QuestionResponse struct {
	ID           string         `gorm:"type:uuid;primaryKey" json:"id"`
	SubmissionID string         `gorm:"type:uuid;not null;index" json:"submission_id"`
	Question     string         `gorm:"type:text;not null" json:"question"`
	InputType    string         `gorm:"not null;check:input_type IN ('text', 'audio', 'mcq', 'checkbox', 'coding', 'essay')" json:"input_type"`
	Answer       datatypes.JSON `json:"answer,omitempty"`
	AIScore      *float64       `json:"ai_score,omitempty"`
	Flagged      bool           `gorm:"default:false" json:"flagged"`
	Remarks      string         `gorm:"size:500" json:"remarks,omitempty"`
	MaxScore     *float64       `json:"max_score,omitempty"` // assessment only
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (r *QuestionResponse) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// ScoreCeiling returns the manual score upper bound for this response given
// the submission kind it belongs to.
func (r *QuestionResponse) ScoreCeiling(kind string) float64 {
	if kind == SubmissionKindHR {
		return HRScoreMax
	}
	if r.MaxScore != nil && *r.MaxScore > 0 {
		return *r.MaxScore
	}
	return AssessmentScoreMaxDefault
}
