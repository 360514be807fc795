package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dom/college-tracker/internal/domain"
	"github.com/dom/college-tracker/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UniversityService struct {
	universityRepo repository.UniversityRepository
}

func NewUniversityService(universityRepo repository.UniversityRepository) *UniversityService {
	return &UniversityService{universityRepo: universityRepo}
}

func (s *UniversityService) Search(ctx context.Context, filter domain.UniversityFilter) ([]*domain.University, error) {
	filter.Query = strings.TrimSpace(filter.Query)
	universities, err := s.universityRepo.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: search universities: %w", ErrInternal, err)
	}
	return universities, nil
}

func (s *UniversityService) FilterOptions(ctx context.Context) (*domain.UniversityFilterOptions, error) {
	opts, err := s.universityRepo.FilterOptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: filter options: %w", ErrInternal, err)
	}
	return opts, nil
}

func (s *UniversityService) Get(ctx context.Context, id uuid.UUID) (*domain.University, error) {
	university, err := s.universityRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUniversityNotFound
		}
		return nil, fmt.Errorf("%w: get university: %w", ErrInternal, err)
	}
	return university, nil
}

// Import upserts universities by name and returns how many were written.
func (s *UniversityService) Import(ctx context.Context, universities []*domain.University) (int, error) {
	for _, u := range universities {
		if strings.TrimSpace(u.Name) == "" {
			return 0, fmt.Errorf("%w: university name is required", ErrInvalidInput)
		}
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		if u.MajorsOffered == nil {
			u.SetMajors(nil)
		}
	}

	if err := s.universityRepo.UpsertMany(ctx, universities); err != nil {
		return 0, fmt.Errorf("%w: upsert universities: %w", ErrInternal, err)
	}
	return len(universities), nil
}
