package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dom/college-tracker/internal/domain"
	"github.com/dom/college-tracker/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProfileService struct {
	userRepo repository.UserRepository
}

func NewProfileService(userRepo repository.UserRepository) *ProfileService {
	return &ProfileService{userRepo: userRepo}
}

// UpdateProfileInput holds the editable profile fields. Nil leaves a field
// unchanged; an empty ProfileImageURL removes the picture.
type UpdateProfileInput struct {
	FirstName       *string
	LastName        *string
	ProfileImageURL *string
}

// UpdateProfile edits the caller's own name and picture. Email and role are
// not editable here.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: load user: %w", ErrInternal, err)
	}

	if input.FirstName != nil {
		name := strings.TrimSpace(*input.FirstName)
		if name == "" {
			return nil, fmt.Errorf("%w: first name cannot be empty", ErrInvalidInput)
		}
		user.FirstName = name
	}
	if input.LastName != nil {
		name := strings.TrimSpace(*input.LastName)
		if name == "" {
			return nil, fmt.Errorf("%w: last name cannot be empty", ErrInvalidInput)
		}
		user.LastName = name
	}
	if input.ProfileImageURL != nil {
		raw := strings.TrimSpace(*input.ProfileImageURL)
		if raw == "" {
			user.ProfileImageURL = nil
		} else {
			u, err := url.Parse(raw)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return nil, fmt.Errorf("%w: profile image must be an http(s) URL", ErrInvalidInput)
			}
			user.ProfileImageURL = &raw
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("%w: update user: %w", ErrInternal, err)
	}
	return user, nil
}
