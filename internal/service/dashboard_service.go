package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dom/college-tracker/internal/domain"
	"github.com/dom/college-tracker/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// isoLayout matches JavaScript's Date.prototype.toISOString.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatISO renders t in UTC with millisecond precision.
func FormatISO(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

type DashboardStudent struct {
	ID              string  `json:"id"`
	FirstName       string  `json:"first_name"`
	ProfileImageURL *string `json:"profile_image_url,omitempty"`
}

type DashboardApplication struct {
	ID             string `json:"id"`
	UniversityName string `json:"universityName"`
	Program        string `json:"program"`
	Status         string `json:"status"`
	Deadline       string `json:"deadline"`
	CreatedAt      string `json:"createdAt"`
}

type DashboardStats struct {
	Total             int `json:"total"`
	Submitted         int `json:"submitted"`
	InProgress        int `json:"inProgress"`
	UpcomingDeadlines int `json:"upcomingDeadlines"`
}

type DashboardDeadline struct {
	ID             string `json:"id"`
	UniversityName string `json:"universityName"`
	Type           string `json:"type"`
	Date           string `json:"date"`
	Status         string `json:"status"`
}

type StatusCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type DashboardPayload struct {
	Student            DashboardStudent       `json:"student"`
	Applications       []DashboardApplication `json:"applications"`
	Stats              DashboardStats         `json:"stats"`
	UpcomingDeadlines  []DashboardDeadline    `json:"upcomingDeadlines"`
	StatusDistribution []StatusCount          `json:"statusDistribution"`
}

type DashboardService struct {
	userRepo   repository.UserRepository
	appRepo    repository.ApplicationRepository
	windowDays int
	limit      int
	now        func() time.Time
}

func NewDashboardService(userRepo repository.UserRepository, appRepo repository.ApplicationRepository, windowDays, limit int) *DashboardService {
	return &DashboardService{
		userRepo:   userRepo,
		appRepo:    appRepo,
		windowDays: windowDays,
		limit:      limit,
		now:        time.Now,
	}
}

// WithClock replaces the wall clock used to decide "today".
func (s *DashboardService) WithClock(now func() time.Time) *DashboardService {
	s.now = now
	return s
}

// Build loads the student and their applications and aggregates them. No
// partial payload is returned on failure.
func (s *DashboardService) Build(ctx context.Context, userID uuid.UUID) (*DashboardPayload, error) {
	student, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("%w: load student: %w", ErrInternal, err)
	}

	apps, err := s.appRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: load applications: %w", ErrInternal, err)
	}

	return Aggregate(student, apps, s.now(), s.windowDays, s.limit), nil
}

// Aggregate computes the dashboard for apps, which must already be ordered
// by deadline. Upcoming deadlines fall in [today, today+windowDays] at UTC
// day granularity, sorted by date and truncated to limit; the
// upcoming stat counts the truncated list. Statuses outside the five known
// buckets are left out of the distribution.
func Aggregate(student *domain.User, apps []*domain.Application, now time.Time, windowDays, limit int) *DashboardPayload {
	payload := &DashboardPayload{
		Student: DashboardStudent{
			ID:              student.ID.String(),
			FirstName:       student.FirstName,
			ProfileImageURL: student.ProfileImageURL,
		},
		Applications:      make([]DashboardApplication, 0, len(apps)),
		UpcomingDeadlines: []DashboardDeadline{},
	}

	distribution := make([]StatusCount, len(domain.AllApplicationStatuses))
	bucket := make(map[domain.ApplicationStatus]int, len(domain.AllApplicationStatuses))
	for i, status := range domain.AllApplicationStatuses {
		distribution[i] = StatusCount{Name: string(status)}
		bucket[status] = i
	}

	for _, app := range apps {
		payload.Stats.Total++
		if app.Status.IsSubmitted() {
			payload.Stats.Submitted++
		}
		if app.Status == domain.StatusInProgress {
			payload.Stats.InProgress++
		}
		if i, ok := bucket[app.Status]; ok {
			distribution[i].Value++
		}

		payload.Applications = append(payload.Applications, DashboardApplication{
			ID:             app.ID.String(),
			UniversityName: app.UniversityName(),
			Program:        app.Program,
			Status:         string(app.Status),
			Deadline:       FormatISO(app.Deadline),
			CreatedAt:      FormatISO(app.CreatedAt),
		})
	}
	payload.StatusDistribution = distribution

	for _, d := range UpcomingDeadlines(domain.CollectDeadlines(apps), now, windowDays, limit) {
		payload.UpcomingDeadlines = append(payload.UpcomingDeadlines, DashboardDeadline{
			ID:             d.ID.String(),
			UniversityName: d.UniversityName,
			Type:           d.Type,
			Date:           FormatISO(d.Date),
			Status:         d.Status,
		})
	}
	payload.Stats.UpcomingDeadlines = len(payload.UpcomingDeadlines)

	return payload
}

// UpcomingDeadlines filters candidates to the inclusive day window starting
// today, sorts them by date and keeps at most limit entries. Days are counted
// in UTC, the zone date-only deadlines are stored in, whatever zone now is in.
func UpcomingDeadlines(candidates []domain.Deadline, now time.Time, windowDays, limit int) []domain.Deadline {
	today := domain.StartOfDay(now.UTC())
	last := today.AddDate(0, 0, windowDays)

	upcoming := make([]domain.Deadline, 0, len(candidates))
	for _, d := range candidates {
		day := domain.StartOfDay(d.Date.UTC())
		if day.Before(today) || day.After(last) {
			continue
		}
		upcoming = append(upcoming, d)
	}

	domain.SortDeadlines(upcoming)
	if limit >= 0 && len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}
	return upcoming
}
