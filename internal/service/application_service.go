package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dom/college-tracker/internal/domain"
	"github.com/dom/college-tracker/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Change kinds published when a student's applications are mutated.
const (
	ChangeApplicationCreated = "application_created"
	ChangeStatusUpdated      = "status_updated"
	ChangeRequirementAdded   = "requirement_added"
	ChangeRequirementUpdated = "requirement_updated"
)

// ChangePublisher pushes change notifications to a user's open connections.
type ChangePublisher interface {
	PublishApplicationChanged(userID, applicationID uuid.UUID, change string)
}

type noopPublisher struct{}

func (noopPublisher) PublishApplicationChanged(uuid.UUID, uuid.UUID, string) {}

type ApplicationService struct {
	appRepo        repository.ApplicationRepository
	universityRepo repository.UniversityRepository
	reqRepo        repository.RequirementRepository
	publisher      ChangePublisher
}

func NewApplicationService(appRepo repository.ApplicationRepository, universityRepo repository.UniversityRepository, reqRepo repository.RequirementRepository, publisher ChangePublisher) *ApplicationService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &ApplicationService{
		appRepo:        appRepo,
		universityRepo: universityRepo,
		reqRepo:        reqRepo,
		publisher:      publisher,
	}
}

type CreateApplicationInput struct {
	UniversityID    uuid.UUID
	Program         string
	ApplicationType domain.ApplicationType
	Status          domain.ApplicationStatus
	Deadline        time.Time
	Notes           *string
}

// creatableStatuses are the statuses a new application may start in.
var creatableStatuses = map[domain.ApplicationStatus]bool{
	domain.StatusNotStarted: true,
	domain.StatusInProgress: true,
	domain.StatusSubmitted:  true,
}

func (s *ApplicationService) Create(ctx context.Context, userID uuid.UUID, input CreateApplicationInput) (*domain.Application, error) {
	if input.ApplicationType == "" {
		input.ApplicationType = domain.ApplicationTypeRegularDecision
	}
	if input.Status == "" {
		input.Status = domain.StatusNotStarted
	}
	if !creatableStatuses[input.Status] {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, domain.ErrInvalidStatus)
	}
	if strings.TrimSpace(input.Program) == "" {
		return nil, fmt.Errorf("%w: program is required", ErrInvalidInput)
	}

	university, err := s.universityRepo.GetByID(ctx, input.UniversityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUniversityNotFound
		}
		return nil, fmt.Errorf("%w: load university: %w", ErrInternal, err)
	}

	now := time.Now()
	app := &domain.Application{
		ID:              uuid.New(),
		UserID:          userID,
		UniversityID:    university.ID,
		Program:         strings.TrimSpace(input.Program),
		ApplicationType: input.ApplicationType,
		Status:          input.Status,
		Deadline:        input.Deadline,
		Notes:           input.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := app.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if err := s.appRepo.Create(ctx, app); err != nil {
		return nil, fmt.Errorf("%w: create application: %w", ErrInternal, err)
	}

	app.University = university
	app.Requirements = []*domain.Requirement{}

	s.publisher.PublishApplicationChanged(userID, app.ID, ChangeApplicationCreated)
	return app, nil
}

// List returns the user's applications ordered by deadline. An empty status
// or "all" returns everything.
func (s *ApplicationService) List(ctx context.Context, userID uuid.UUID, status string) ([]*domain.Application, error) {
	if status != "" && status != "all" && !domain.ApplicationStatus(status).IsValid() {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, domain.ErrInvalidStatus)
	}

	apps, err := s.appRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list applications: %w", ErrInternal, err)
	}

	if status == "" || status == "all" {
		return apps, nil
	}

	filtered := make([]*domain.Application, 0, len(apps))
	for _, app := range apps {
		if string(app.Status) == status {
			filtered = append(filtered, app)
		}
	}
	return filtered, nil
}

// Get returns the application if it belongs to userID. Applications owned by
// other users are reported as not found.
func (s *ApplicationService) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Application, error) {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("%w: get application: %w", ErrInternal, err)
	}
	if app.UserID != userID {
		return nil, ErrApplicationNotFound
	}
	return app, nil
}

type UpdateStatusInput struct {
	Status       domain.ApplicationStatus
	DecisionType *domain.DecisionType
	DecisionDate *time.Time
}

func (s *ApplicationService) UpdateStatus(ctx context.Context, userID, id uuid.UUID, input UpdateStatusInput) (*domain.Application, error) {
	app, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	app.Status = input.Status
	app.DecisionType = input.DecisionType
	app.DecisionDate = input.DecisionDate
	if app.Status == domain.StatusDecided && app.DecisionType != nil && app.DecisionDate == nil {
		decidedAt := time.Now()
		app.DecisionDate = &decidedAt
	}
	if err := app.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	app.UpdatedAt = time.Now()
	if err := s.appRepo.Update(ctx, app); err != nil {
		return nil, fmt.Errorf("%w: update application: %w", ErrInternal, err)
	}

	s.publisher.PublishApplicationChanged(userID, app.ID, ChangeStatusUpdated)
	return app, nil
}

type AddRequirementInput struct {
	RequirementType string
	Status          domain.RequirementStatus
	Deadline        *time.Time
	Notes           *string
}

func (s *ApplicationService) AddRequirement(ctx context.Context, userID, applicationID uuid.UUID, input AddRequirementInput) (*domain.Requirement, error) {
	app, err := s.Get(ctx, userID, applicationID)
	if err != nil {
		return nil, err
	}

	if input.Status == "" {
		input.Status = domain.RequirementNotStarted
	}

	now := time.Now()
	req := &domain.Requirement{
		ID:              uuid.New(),
		ApplicationID:   app.ID,
		RequirementType: strings.TrimSpace(input.RequirementType),
		Status:          input.Status,
		Deadline:        input.Deadline,
		Notes:           input.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if err := s.reqRepo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("%w: create requirement: %w", ErrInternal, err)
	}

	s.publisher.PublishApplicationChanged(userID, app.ID, ChangeRequirementAdded)
	return req, nil
}

type UpdateRequirementInput struct {
	Status domain.RequirementStatus
	Notes  *string
}

func (s *ApplicationService) UpdateRequirement(ctx context.Context, userID, applicationID, requirementID uuid.UUID, input UpdateRequirementInput) (*domain.Requirement, error) {
	app, err := s.Get(ctx, userID, applicationID)
	if err != nil {
		return nil, err
	}

	req, err := s.reqRepo.GetByID(ctx, requirementID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequirementNotFound
		}
		return nil, fmt.Errorf("%w: get requirement: %w", ErrInternal, err)
	}
	if req.ApplicationID != app.ID {
		return nil, ErrRequirementNotFound
	}

	req.Status = input.Status
	if input.Notes != nil {
		req.Notes = input.Notes
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	req.UpdatedAt = time.Now()
	if err := s.reqRepo.Update(ctx, req); err != nil {
		return nil, fmt.Errorf("%w: update requirement: %w", ErrInternal, err)
	}

	s.publisher.PublishApplicationChanged(userID, app.ID, ChangeRequirementUpdated)
	return req, nil
}

// DeadlinesForMonth returns every application and requirement deadline that
// falls in the given month of loc, ordered by date.
func (s *ApplicationService) DeadlinesForMonth(ctx context.Context, userID uuid.UUID, year int, month time.Month, loc *time.Location) ([]domain.Deadline, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: month out of range", ErrInvalidInput)
	}

	apps, err := s.appRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list applications: %w", ErrInternal, err)
	}

	deadlines := make([]domain.Deadline, 0)
	for _, d := range domain.CollectDeadlines(apps) {
		local := d.Date.In(loc)
		if local.Year() == year && local.Month() == month {
			deadlines = append(deadlines, d)
		}
	}
	domain.SortDeadlines(deadlines)
	return deadlines, nil
}
