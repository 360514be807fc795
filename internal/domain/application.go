package domain

import (
	"time"

	"github.com/google/uuid"
)

// ApplicationStatus is the lifecycle stage of an application, ordered from
// not_started to decided.
type ApplicationStatus string

const (
	StatusNotStarted  ApplicationStatus = "not_started"
	StatusInProgress  ApplicationStatus = "in_progress"
	StatusSubmitted   ApplicationStatus = "submitted"
	StatusUnderReview ApplicationStatus = "under_review"
	StatusDecided     ApplicationStatus = "decided"
)

// AllApplicationStatuses contains every status in lifecycle order
var AllApplicationStatuses = []ApplicationStatus{
	StatusNotStarted,
	StatusInProgress,
	StatusSubmitted,
	StatusUnderReview,
	StatusDecided,
}

func (s ApplicationStatus) IsValid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusSubmitted, StatusUnderReview, StatusDecided:
		return true
	}
	return false
}

// IsSubmitted reports whether the application has left the student's hands.
func (s ApplicationStatus) IsSubmitted() bool {
	switch s {
	case StatusSubmitted, StatusUnderReview, StatusDecided:
		return true
	}
	return false
}

type ApplicationType string

const (
	ApplicationTypeEarlyDecision   ApplicationType = "early_decision"
	ApplicationTypeEarlyAction     ApplicationType = "early_action"
	ApplicationTypeRegularDecision ApplicationType = "regular_decision"
	ApplicationTypeRolling         ApplicationType = "rolling_admission"
)

func (t ApplicationType) IsValid() bool {
	switch t {
	case ApplicationTypeEarlyDecision, ApplicationTypeEarlyAction, ApplicationTypeRegularDecision, ApplicationTypeRolling:
		return true
	}
	return false
}

type DecisionType string

const (
	DecisionAccepted   DecisionType = "accepted"
	DecisionRejected   DecisionType = "rejected"
	DecisionWaitlisted DecisionType = "waitlisted"
)

func (d DecisionType) IsValid() bool {
	switch d {
	case DecisionAccepted, DecisionRejected, DecisionWaitlisted:
		return true
	}
	return false
}

type RequirementStatus string

const (
	RequirementNotStarted RequirementStatus = "not_started"
	RequirementInProgress RequirementStatus = "in_progress"
	RequirementCompleted  RequirementStatus = "completed"
)

func (s RequirementStatus) IsValid() bool {
	switch s {
	case RequirementNotStarted, RequirementInProgress, RequirementCompleted:
		return true
	}
	return false
}

type Application struct {
	ID              uuid.UUID         `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID          uuid.UUID         `json:"userId" gorm:"type:uuid;not null;index"`
	UniversityID    uuid.UUID         `json:"universityId" gorm:"type:uuid;not null"`
	Program         string            `json:"program" gorm:"not null"`
	ApplicationType ApplicationType   `json:"applicationType" gorm:"not null;default:'regular_decision'"`
	Status          ApplicationStatus `json:"status" gorm:"not null;default:'not_started'"`
	Deadline        time.Time         `json:"deadline" gorm:"not null;index"`
	DecisionDate    *time.Time        `json:"decisionDate,omitempty"`
	DecisionType    *DecisionType     `json:"decisionType,omitempty"`
	Notes           *string           `json:"notes,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`

	// Relations
	User         *User          `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	University   *University    `json:"university,omitempty" gorm:"foreignKey:UniversityID"`
	Requirements []*Requirement `json:"requirements" gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE"`
}

// UniversityName returns the display name of the referenced university, or
// an empty string when the relation was not loaded.
func (a *Application) UniversityName() string {
	if a.University == nil {
		return ""
	}
	return a.University.Name
}

// Validate checks enum values and that decision fields are populated only
// when the application is decided.
func (a *Application) Validate() error {
	if !a.Status.IsValid() {
		return ErrInvalidStatus
	}
	if !a.ApplicationType.IsValid() {
		return ErrInvalidApplicationType
	}

	hasDecision := a.DecisionType != nil || a.DecisionDate != nil
	if a.Status == StatusDecided {
		if a.DecisionType == nil || !a.DecisionType.IsValid() {
			return ErrDecisionRequired
		}
	} else if hasDecision {
		return ErrDecisionNotAllowed
	}
	return nil
}

type Requirement struct {
	ID              uuid.UUID         `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ApplicationID   uuid.UUID         `json:"applicationId" gorm:"type:uuid;not null;index"`
	RequirementType string            `json:"requirementType" gorm:"not null"`
	Status          RequirementStatus `json:"status" gorm:"not null;default:'not_started'"`
	Deadline        *time.Time        `json:"deadline,omitempty"`
	Notes           *string           `json:"notes,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

func (r *Requirement) Validate() error {
	if r.RequirementType == "" {
		return ErrInvalidRequirement
	}
	if !r.Status.IsValid() {
		return ErrInvalidRequirementStatus
	}
	return nil
}
