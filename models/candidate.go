package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Pipeline stages. A candidate is in exactly one stage at a time.
const (
	StageRegistered = "registered"
	StageHR         = "hr"
	StageAssessment = "assessment"
	StageTech       = "tech"
	StageManager    = "manager"
	StageFeedback   = "feedback"
)

// Stages lists all pipeline stages in nominal order. The pipeline itself is
// a graph of allowed edges, not a strict sequence; this order is for display
// and seeding only.
var Stages = []string{StageRegistered, StageHR, StageAssessment, StageTech, StageManager, StageFeedback}

// IsStage reports whether s names a known pipeline stage.
func IsStage(s string) bool {
	for _, stage := range Stages {
		if stage == s {
			return true
		}
	}
	return false
}

// Candidate statuses, orthogonal to stage.
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusWithdrawn = "withdrawn"
	StatusRejected  = "rejected"
	StatusHired     = "hired"
	StatusDeleted   = "deleted"
	StatusHold      = "hold"
)

// Ledger actions recorded on stage history entries.
const (
	ActionStageChange = "stage_change"
	ActionRegistered  = "registered"
)

// Job represents a posting candidates apply against. GradingParameters is the
// job-specific list of Glory evaluation axes; when empty, grading falls back
// to a single "Overall" parameter.
type Job struct {
	ID                string                       `gorm:"type:uuid;primaryKey" json:"id"`
	Title             string                       `gorm:"not null" json:"title"`
	Location          string                       `gorm:"size:255" json:"location,omitempty"`
	Compensation      string                       `gorm:"size:100" json:"compensation,omitempty"`
	ExperienceBand    string                       `gorm:"size:100" json:"experience_band,omitempty"`
	GradingParameters datatypes.JSONSlice[string]  `json:"grading_parameters"`
	IsActive          bool                         `gorm:"default:true" json:"is_active"`
	CreatedAt         time.Time                    `json:"created_at"`
	UpdatedAt         time.Time                    `json:"updated_at"`
	DeletedAt         gorm.DeletedAt               `gorm:"index" json:"-"`

	// Relationships
	Candidates []Candidate `gorm:"foreignKey:AppliedJobID" json:"candidates,omitempty"`
}

func (j *Job) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.New().String()
	}
	return nil
}

type Candidate struct {
	ID          string     `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string     `gorm:"not null" json:"name"`
	Email       string     `gorm:"uniqueIndex;not null" json:"email"`
	Phone       string     `gorm:"size:32" json:"phone,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Gender      string     `gorm:"size:32" json:"gender,omitempty"`
	Address     string     `gorm:"type:text" json:"address,omitempty"`

	CurrentStage string `gorm:"not null;default:'registered';check:current_stage IN ('registered', 'hr', 'assessment', 'tech', 'manager', 'feedback')" json:"current_stage"`
	Status       string `gorm:"not null;default:'active';check:status IN ('active', 'inactive', 'withdrawn', 'rejected', 'hired', 'deleted', 'hold')" json:"status"`
	StatusReason string `gorm:"type:text" json:"status_reason,omitempty"`

	Shortlisted        bool `gorm:"default:false" json:"shortlisted"`
	FlaggedForDeletion bool `gorm:"default:false" json:"flagged_for_deletion"`
	EmailVerified      bool `gorm:"default:false" json:"email_verified"`

	AppliedJobID *string `gorm:"type:uuid;index" json:"applied_job_id,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	AppliedJob       *Job                    `gorm:"foreignKey:AppliedJobID" json:"applied_job,omitempty"`
	Documents        []Document              `gorm:"foreignKey:CandidateID" json:"documents,omitempty"`
	StageHistory     []StageHistoryEntry     `gorm:"foreignKey:CandidateID" json:"stage_history,omitempty"`
	InternalFeedback []InternalFeedbackEntry `gorm:"foreignKey:CandidateID" json:"internal_feedback,omitempty"`
	GloryGrades      []GloryGrade            `gorm:"foreignKey:CandidateID" json:"glory_grades,omitempty"`
	Submissions      []Submission            `gorm:"foreignKey:CandidateID" json:"submissions,omitempty"`
	Interviews       []Interview             `gorm:"foreignKey:CandidateID" json:"interviews,omitempty"`
}

func (c *Candidate) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// Document kinds.
const (
	DocumentKindGeneral = "document"
	DocumentKindHired   = "hired-document"
)

// Document is a candidate document record. The file itself lives with an
// external storage provider; URL points at it.
type Document struct {
	ID          string         `gorm:"type:uuid;primaryKey" json:"id"`
	CandidateID string         `gorm:"type:uuid;not null;index" json:"candidate_id"`
	Name        string         `gorm:"not null" json:"name"`
	Kind        string         `gorm:"not null;default:'document';check:kind IN ('document', 'hired-document')" json:"kind"`
	URL         string         `gorm:"size:1000;not null" json:"url"`
	MimeType    string         `gorm:"size:100" json:"mime_type,omitempty"`
	UploadedAt  time.Time      `gorm:"not null" json:"uploaded_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}

// StageHistoryEntry is one row of the append-only transition ledger.
// Entries are never updated or deleted once written.
type StageHistoryEntry struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	CandidateID   string    `gorm:"type:uuid;not null;index" json:"candidate_id"`
	FromStage     *string   `json:"from_stage,omitempty"` // nil for the first entry
	ToStage       string    `gorm:"not null" json:"to_stage"`
	ChangedBy     string    `gorm:"type:uuid;not null" json:"changed_by"`
	ChangedByName string    `gorm:"size:255" json:"changed_by_name,omitempty"`
	Action        string    `gorm:"not null;default:'stage_change'" json:"action"`
	Remarks       string    `gorm:"type:text" json:"remarks,omitempty"`
	ChangedAt     time.Time `gorm:"not null;index" json:"changed_at"`
	CreatedAt     time.Time `json:"created_at"`
}

func (e *StageHistoryEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}

// InternalFeedbackEntry is a staff-only note attached to a candidate, either
// alongside a stage transition or as a standalone action. Never exposed to
// the candidate.
type InternalFeedbackEntry struct {
	ID             string    `gorm:"type:uuid;primaryKey" json:"id"`
	CandidateID    string    `gorm:"type:uuid;not null;index" json:"candidate_id"`
	FeedbackByID   string    `gorm:"type:uuid;not null" json:"feedback_by_id"`
	FeedbackByName string    `gorm:"size:255" json:"feedback_by_name,omitempty"`
	FeedbackByRole string    `gorm:"size:32" json:"feedback_by_role"`
	Feedback       string    `gorm:"type:text;not null" json:"feedback"`
	FeedbackAt     time.Time `gorm:"not null" json:"feedback_at"`
	CreatedAt      time.Time `json:"created_at"`
}

func (e *InternalFeedbackEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}
