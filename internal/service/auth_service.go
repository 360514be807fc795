package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dom/college-tracker/internal/auth"
	"github.com/dom/college-tracker/internal/domain"
	"github.com/dom/college-tracker/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	userRepo      repository.UserRepository
	bearerTokens  *auth.TokenIssuer
	sessionTokens *auth.TokenIssuer
}

func NewAuthService(userRepo repository.UserRepository, bearerTokens, sessionTokens *auth.TokenIssuer) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		bearerTokens:  bearerTokens,
		sessionTokens: sessionTokens,
	}
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      domain.UserRole
}

type LoginInput struct {
	Email    string
	Password string
}

// AuthResult carries the authenticated user plus one token per transport.
type AuthResult struct {
	User         *domain.User
	Token        string
	SessionToken string
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// compareAgainstDummy spends the same bcrypt work as a real comparison so an
// unknown email costs as much as a wrong password.
func compareAgainstDummy(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("college-tracker-dummy"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if input.Role == "" {
		input.Role = domain.UserRoleStudent
	}
	if !input.Role.IsValid() {
		return nil, domain.ErrInvalidUserRole
	}

	// Check if email exists
	existing, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err == nil && existing != nil {
		return nil, ErrEmailExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: lookup email: %w", ErrInternal, err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%w: hash password: %w", ErrInternal, err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         input.Role,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("%w: create user: %w", ErrInternal, err)
	}

	return s.issueTokens(user)
}

// VerifyCredentials checks an email/password pair. Unknown email and wrong
// password both yield ErrInvalidCredentials.
func (s *AuthService) VerifyCredentials(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			compareAgainstDummy(password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: lookup user: %w", ErrInternal, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.VerifyCredentials(ctx, input.Email, input.Password)
	if err != nil {
		return nil, err
	}
	return s.issueTokens(user)
}

func (s *AuthService) issueTokens(user *domain.User) (*AuthResult, error) {
	identity := user.Identity()

	token, err := s.bearerTokens.Issue(identity)
	if err != nil {
		return nil, fmt.Errorf("%w: issue bearer token: %w", ErrInternal, err)
	}

	sessionToken, err := s.sessionTokens.IssueWithProfile(identity)
	if err != nil {
		return nil, fmt.Errorf("%w: issue session token: %w", ErrInternal, err)
	}

	return &AuthResult{
		User:         user,
		Token:        token,
		SessionToken: sessionToken,
	}, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: get user: %w", ErrInternal, err)
	}
	return user, nil
}
