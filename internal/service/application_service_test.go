package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dom/college-tracker/internal/domain"
	"github.com/dom/college-tracker/internal/repository/postgres"
	"github.com/dom/college-tracker/internal/service"
	"github.com/dom/college-tracker/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publishedChange struct {
	userID        uuid.UUID
	applicationID uuid.UUID
	change        string
}

type recordingPublisher struct {
	mu      sync.Mutex
	changes []publishedChange
}

func (p *recordingPublisher) PublishApplicationChanged(userID, applicationID uuid.UUID, change string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, publishedChange{userID, applicationID, change})
}

func (p *recordingPublisher) last() publishedChange {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.changes[len(p.changes)-1]
}

func newApplicationService(t *testing.T) (*service.ApplicationService, *testutil.TestDB, *recordingPublisher) {
	t.Helper()
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	publisher := &recordingPublisher{}
	return service.NewApplicationService(repos.Application, repos.University, repos.Requirement, publisher), testDB, publisher
}

func TestApplicationService_Create(t *testing.T) {
	svc, testDB, publisher := newApplicationService(t)
	ctx := context.Background()

	student, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	university := testutil.NewUniversityBuilder().WithName("Brown University").Build(t, testDB.DB)
	deadline := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		input   service.CreateApplicationInput
		wantErr error
	}{
		{
			name: "defaults type and status",
			input: service.CreateApplicationInput{
				UniversityID: university.ID,
				Program:      "Economics",
				Deadline:     deadline,
			},
		},
		{
			name: "submitted on creation",
			input: service.CreateApplicationInput{
				UniversityID:    university.ID,
				Program:         "History",
				ApplicationType: domain.ApplicationTypeEarlyDecision,
				Status:          domain.StatusSubmitted,
				Deadline:        deadline,
			},
		},
		{
			name: "decided is not a starting status",
			input: service.CreateApplicationInput{
				UniversityID: university.ID,
				Program:      "History",
				Status:       domain.StatusDecided,
				Deadline:     deadline,
			},
			wantErr: service.ErrInvalidInput,
		},
		{
			name: "program required",
			input: service.CreateApplicationInput{
				UniversityID: university.ID,
				Program:      "  ",
				Deadline:     deadline,
			},
			wantErr: service.ErrInvalidInput,
		},
		{
			name: "unknown university",
			input: service.CreateApplicationInput{
				UniversityID: uuid.New(),
				Program:      "Physics",
				Deadline:     deadline,
			},
			wantErr: service.ErrUniversityNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, err := svc.Create(ctx, student.ID, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, student.ID, app.UserID)
			assert.Equal(t, "Brown University", app.UniversityName())
			assert.True(t, app.ApplicationType.IsValid())
			assert.True(t, app.Status.IsValid())

			last := publisher.last()
			assert.Equal(t, app.ID, last.applicationID)
			assert.Equal(t, service.ChangeApplicationCreated, last.change)
		})
	}
}

func TestApplicationService_ListAndGet(t *testing.T) {
	svc, testDB, _ := newApplicationService(t)
	ctx := context.Background()

	student, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	submitted := testutil.NewApplicationBuilder().WithUser(student).WithStatus(domain.StatusSubmitted).Build(t, testDB.DB)
	testutil.NewApplicationBuilder().WithUser(student).WithStatus(domain.StatusInProgress).Build(t, testDB.DB)
	foreign := testutil.NewApplicationBuilder().WithUser(other).Build(t, testDB.DB)

	tests := []struct {
		name    string
		status  string
		want    int
		wantErr error
	}{
		{name: "no filter", status: "", want: 2},
		{name: "all", status: "all", want: 2},
		{name: "submitted only", status: "submitted", want: 1},
		{name: "nothing decided", status: "decided", want: 0},
		{name: "invalid status", status: "lost", wantErr: service.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apps, err := svc.List(ctx, student.ID, tt.status)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, apps, tt.want)
		})
	}

	t.Run("get own application", func(t *testing.T) {
		app, err := svc.Get(ctx, student.ID, submitted.ID)
		require.NoError(t, err)
		assert.Equal(t, submitted.ID, app.ID)
	})

	t.Run("another student's application is not found", func(t *testing.T) {
		_, err := svc.Get(ctx, student.ID, foreign.ID)
		assert.ErrorIs(t, err, service.ErrApplicationNotFound)
	})
}

func TestApplicationService_UpdateStatus(t *testing.T) {
	svc, testDB, publisher := newApplicationService(t)
	ctx := context.Background()

	student, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	app := testutil.NewApplicationBuilder().WithUser(student).WithStatus(domain.StatusSubmitted).Build(t, testDB.DB)

	accepted := domain.DecisionAccepted

	tests := []struct {
		name    string
		input   service.UpdateStatusInput
		wantErr error
	}{
		{
			name:  "move to under review",
			input: service.UpdateStatusInput{Status: domain.StatusUnderReview},
		},
		{
			name:    "decided without a decision",
			input:   service.UpdateStatusInput{Status: domain.StatusDecided},
			wantErr: domain.ErrDecisionRequired,
		},
		{
			name:    "decision on an undecided application",
			input:   service.UpdateStatusInput{Status: domain.StatusSubmitted, DecisionType: &accepted},
			wantErr: domain.ErrDecisionNotAllowed,
		},
		{
			name:  "decided with decision gets a decision date",
			input: service.UpdateStatusInput{Status: domain.StatusDecided, DecisionType: &accepted},
		},
		{
			name:    "unknown status",
			input:   service.UpdateStatusInput{Status: "lost"},
			wantErr: service.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated, err := svc.UpdateStatus(ctx, student.ID, app.ID, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input.Status, updated.Status)
			if updated.Status == domain.StatusDecided {
				assert.NotNil(t, updated.DecisionDate)
			}
			assert.Equal(t, service.ChangeStatusUpdated, publisher.last().change)
		})
	}

	t.Run("another student cannot update", func(t *testing.T) {
		intruder, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
		_, err := svc.UpdateStatus(ctx, intruder.ID, app.ID, service.UpdateStatusInput{Status: domain.StatusInProgress})
		assert.ErrorIs(t, err, service.ErrApplicationNotFound)
	})
}

func TestApplicationService_Requirements(t *testing.T) {
	svc, testDB, publisher := newApplicationService(t)
	ctx := context.Background()

	student, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	app := testutil.NewApplicationBuilder().WithUser(student).Build(t, testDB.DB)
	otherApp := testutil.NewApplicationBuilder().WithUser(student).Build(t, testDB.DB)

	due := time.Now().AddDate(0, 0, 3)
	req, err := svc.AddRequirement(ctx, student.ID, app.ID, service.AddRequirementInput{
		RequirementType: "essay",
		Deadline:        &due,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RequirementNotStarted, req.Status)
	assert.Equal(t, service.ChangeRequirementAdded, publisher.last().change)

	_, err = svc.AddRequirement(ctx, student.ID, app.ID, service.AddRequirementInput{})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	notes := "draft two done"
	updated, err := svc.UpdateRequirement(ctx, student.ID, app.ID, req.ID, service.UpdateRequirementInput{
		Status: domain.RequirementCompleted,
		Notes:  &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RequirementCompleted, updated.Status)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, notes, *updated.Notes)

	_, err = svc.UpdateRequirement(ctx, student.ID, otherApp.ID, req.ID, service.UpdateRequirementInput{Status: domain.RequirementCompleted})
	assert.ErrorIs(t, err, service.ErrRequirementNotFound, "requirement belongs to a different application")

	_, err = svc.UpdateRequirement(ctx, student.ID, app.ID, req.ID, service.UpdateRequirementInput{Status: "done"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	got, err := svc.Get(ctx, student.ID, app.ID)
	require.NoError(t, err)
	require.Len(t, got.Requirements, 1)
	assert.Equal(t, domain.RequirementCompleted, got.Requirements[0].Status)
}

func TestApplicationService_DeadlinesForMonth(t *testing.T) {
	svc, testDB, _ := newApplicationService(t)
	ctx := context.Background()

	student, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	essayDue := time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC)
	testutil.NewApplicationBuilder().WithUser(student).
		WithDeadline(time.Date(2026, 11, 15, 0, 0, 0, 0, time.UTC)).
		WithRequirement("essay", domain.RequirementInProgress, &essayDue).
		Build(t, testDB.DB)
	testutil.NewApplicationBuilder().WithUser(student).
		WithDeadline(time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)).
		Build(t, testDB.DB)

	deadlines, err := svc.DeadlinesForMonth(ctx, student.ID, 2026, time.November, time.UTC)
	require.NoError(t, err)
	require.Len(t, deadlines, 2)
	assert.Equal(t, "essay", deadlines[0].Type)
	assert.Equal(t, string(domain.ApplicationTypeRegularDecision), deadlines[1].Type)

	_, err = svc.DeadlinesForMonth(ctx, student.ID, 2026, time.Month(13), time.UTC)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}
