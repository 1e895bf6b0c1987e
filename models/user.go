package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Staff roles. Every authenticated user holds exactly one.
const (
	RoleAdmin       = "admin"
	RoleHR          = "hr"
	RoleInvigilator = "invigilator"
	RoleManager     = "manager"
)

// StaffRoles lists the roles that may hold Glory grades, in display order.
var StaffRoles = []string{RoleHR, RoleManager, RoleInvigilator, RoleAdmin}

// IsStaffRole reports whether role names one of the four dashboard roles.
func IsStaffRole(role string) bool {
	switch role {
	case RoleAdmin, RoleHR, RoleInvigilator, RoleManager:
		return true
	}
	return false
}

type User struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	Password  string         `gorm:"size:255" json:"-"` // Hashed password (excluded from JSON)
	FullName  string         `gorm:"size:255" json:"full_name,omitempty"`
	Phone     string         `gorm:"size:32" json:"phone,omitempty"`
	AvatarURL string         `gorm:"size:500" json:"avatar_url,omitempty"`
	Role      string         `gorm:"not null;check:role IN ('admin', 'hr', 'invigilator', 'manager')" json:"role"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	RefreshTokens     []RefreshToken     `gorm:"foreignKey:UserID" json:"-"`
	EmailPreference   *EmailPreference   `gorm:"foreignKey:UserID" json:"email_preference,omitempty"`
	PushSubscriptions []PushSubscription `gorm:"foreignKey:UserID" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

type RefreshToken struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string         `gorm:"type:uuid;not null;index" json:"user_id"`
	Token     string         `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time      `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (t *RefreshToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

// EmailPreference controls which notification emails a staff user receives.
// Delivery itself is handled by an external collaborator.
type EmailPreference struct {
	ID                 string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             string    `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	StageUpdates       bool      `gorm:"default:true" json:"stage_updates"`
	InterviewReminders bool      `gorm:"default:true" json:"interview_reminders"`
	WeeklyDigest       bool      `gorm:"default:false" json:"weekly_digest"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (p *EmailPreference) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// PushSubscription stores a browser push endpoint registered by a staff user.
// The push transport is external; this is only the subscription record.
type PushSubscription struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Endpoint  string    `gorm:"size:1000;uniqueIndex;not null" json:"endpoint"`
	P256dh    string    `gorm:"size:255" json:"p256dh,omitempty"`
	Auth      string    `gorm:"size:255" json:"auth,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *PushSubscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}
