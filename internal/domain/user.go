package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserRole is the kind of account a user holds.
type UserRole string

const (
	UserRoleStudent UserRole = "student"
	UserRoleParent  UserRole = "parent"
	UserRoleTeacher UserRole = "teacher"
	UserRoleAdmin   UserRole = "admin"
)

// IsValid checks if a user role is one of the known roles
func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleStudent, UserRoleParent, UserRoleTeacher, UserRoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email           string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash    string    `json:"-" gorm:"not null"`
	FirstName       string    `json:"firstName" gorm:"not null"`
	LastName        string    `json:"lastName" gorm:"not null"`
	Role            UserRole  `json:"role" gorm:"not null;default:'student'"`
	ProfileImageURL *string   `json:"profileImageUrl,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Identity is the subset of a user that is safe to hand to callers and embed in tokens.
type Identity struct {
	ID              uuid.UUID
	Email           string
	FirstName       string
	LastName        string
	Role            UserRole
	ProfileImageURL *string
}

func (u *User) Identity() Identity {
	return Identity{
		ID:              u.ID,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Role:            u.Role,
		ProfileImageURL: u.ProfileImageURL,
	}
}
