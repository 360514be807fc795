package repository

import (
	"context"

	"github.com/dom/college-tracker/internal/domain"
	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type UniversityRepository interface {
	UpsertMany(ctx context.Context, universities []*domain.University) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.University, error)
	Search(ctx context.Context, filter domain.UniversityFilter) ([]*domain.University, error)
	FilterOptions(ctx context.Context) (*domain.UniversityFilterOptions, error)
}

type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.Application) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Application, error)
	// ListByUser returns the user's applications ordered by deadline ascending,
	// with University and Requirements loaded.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Application, error)
	Update(ctx context.Context, app *domain.Application) error
}

type RequirementRepository interface {
	Create(ctx context.Context, req *domain.Requirement) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Requirement, error)
	Update(ctx context.Context, req *domain.Requirement) error
}

type Repositories struct {
	User        UserRepository
	University  UniversityRepository
	Application ApplicationRepository
	Requirement RequirementRepository
}
