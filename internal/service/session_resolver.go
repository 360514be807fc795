package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dom/college-tracker/internal/auth"
	"github.com/dom/college-tracker/internal/domain"
	"github.com/dom/college-tracker/internal/repository"
	"gorm.io/gorm"
)

// Transport identifies how a token reached the server.
type Transport string

const (
	TransportBearer  Transport = "bearer"
	TransportSession Transport = "session"
)

// Credential is a token together with the transport it arrived on.
type Credential struct {
	Transport Transport
	Token     string
}

// TokenValidator is satisfied by *auth.TokenIssuer.
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// SessionResolver turns a credential into the current user, re-reading the
// user so role and profile reflect the stored state rather than the claims.
type SessionResolver struct {
	userRepo   repository.UserRepository
	validators map[Transport]TokenValidator
}

func NewSessionResolver(userRepo repository.UserRepository, validators map[Transport]TokenValidator) *SessionResolver {
	return &SessionResolver{
		userRepo:   userRepo,
		validators: validators,
	}
}

// Resolve returns ErrUnauthenticated for missing or unusable tokens,
// ErrUserNotFound when the subject no longer exists, and ErrInternal for
// repository failures.
func (r *SessionResolver) Resolve(ctx context.Context, cred Credential) (*domain.User, error) {
	if cred.Token == "" {
		return nil, ErrUnauthenticated
	}

	validator, ok := r.validators[cred.Transport]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported transport %q", ErrUnauthenticated, cred.Transport)
	}

	claims, err := validator.Validate(cred.Token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	user, err := r.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: load user: %w", ErrInternal, err)
	}

	return user, nil
}
