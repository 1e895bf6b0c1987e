package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Interview types and statuses.
const (
	InterviewTypeOnline  = "online"
	InterviewTypeOffline = "offline"

	InterviewStatusScheduled = "scheduled"
	InterviewStatusCompleted = "completed"
	InterviewStatusCancelled = "cancelled"
)

// Interview is a scheduled interview for a candidate. Online interviews
// carry a meeting link and platform; offline ones carry an address.
type Interview struct {
	ID          string         `gorm:"type:uuid;primaryKey" json:"id"`
	CandidateID string         `gorm:"type:uuid;not null;index" json:"candidate_id"`
	Title       string         `gorm:"not null" json:"title"`
	Type        string         `gorm:"not null;default:'online';check:type IN ('online', 'offline')" json:"type"`
	ScheduledAt time.Time      `gorm:"not null" json:"scheduled_at"`
	EndTime     *time.Time     `json:"end_time,omitempty"`
	MeetingLink string         `gorm:"size:1000" json:"meeting_link,omitempty"`
	Platform    string         `gorm:"size:100" json:"platform,omitempty"`
	Address     string         `gorm:"type:text" json:"address,omitempty"`
	Status      string         `gorm:"not null;default:'scheduled';check:status IN ('scheduled', 'completed', 'cancelled')" json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Candidate    *Candidate        `gorm:"foreignKey:CandidateID" json:"candidate,omitempty"`
	Interviewers []User            `gorm:"many2many:interview_interviewers" json:"interviewers,omitempty"`
	Remarks      []InterviewRemark `gorm:"foreignKey:InterviewID" json:"remarks,omitempty"`
}

func (i *Interview) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}

// InterviewRemark is one interviewer's post-interview remark. A given
// interviewer contributes at most one remark per interview, and only after
// the interview's scheduled time has passed.
type InterviewRemark struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	InterviewID  string    `gorm:"type:uuid;not null;uniqueIndex:idx_remark_interview_provider" json:"interview_id"`
	ProviderID   string    `gorm:"type:uuid;not null;uniqueIndex:idx_remark_interview_provider" json:"provider_id"`
	ProviderName string    `gorm:"size:255" json:"provider_name,omitempty"`
	Remark       string    `gorm:"type:text;not null" json:"remark"`
	Grade        string    `gorm:"size:4" json:"grade,omitempty"` // optional A+..E letter
	CreatedAt    time.Time `json:"created_at"`
}

func (r *InterviewRemark) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}
