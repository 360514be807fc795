package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/dom/college-tracker/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	email     string
	password  string
	firstName string
	lastName  string
	role      domain.UserRole
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		email:     fmt.Sprintf("student_%s@example.com", uuid.New().String()[:8]),
		password:  "testpassword123",
		firstName: "Test",
		lastName:  "Student",
		role:      domain.UserRoleStudent,
	}
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

func (b *UserBuilder) WithName(first, last string) *UserBuilder {
	b.firstName = first
	b.lastName = last
	return b
}

func (b *UserBuilder) WithRole(role domain.UserRole) *UserBuilder {
	b.role = role
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	// MinCost keeps fixture setup fast; verification works with any cost.
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        b.email,
		PasswordHash: string(hashedPassword),
		FirstName:    b.firstName,
		LastName:     b.lastName,
		Role:         b.role,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// AuthResponse matches the API login/register response
type AuthResponse struct {
	Token string `json:"token"`
	User  struct {
		ID        string `json:"id"`
		Email     string `json:"email"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Role      string `json:"role"`
	} `json:"user"`
}

// BuildAndAuthenticate creates the user in the database, logs in through the
// API and returns the user and bearer token
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	user, password := b.Build(t, ts.DB.DB)

	body, _ := json.Marshal(map[string]string{
		"email":    user.Email,
		"password": password,
	})

	resp, err := http.Post(ts.APIURL("/auth/login"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to log in: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	return user, authResp.Token
}

// UniversityBuilder creates test universities
type UniversityBuilder struct {
	name              string
	country           string
	state             *string
	city              string
	ranking           *int
	acceptanceRate    *float64
	applicationSystem string
	majors            []string
}

// NewUniversityBuilder creates a new UniversityBuilder with default values
func NewUniversityBuilder() *UniversityBuilder {
	return &UniversityBuilder{
		name:              fmt.Sprintf("Test University %s", uuid.New().String()[:8]),
		country:           "USA",
		city:              "Springfield",
		applicationSystem: "Common App",
		majors:            []string{"Computer Science"},
	}
}

func (b *UniversityBuilder) WithName(name string) *UniversityBuilder {
	b.name = name
	return b
}

func (b *UniversityBuilder) WithLocation(country, state, city string) *UniversityBuilder {
	b.country = country
	b.city = city
	if state == "" {
		b.state = nil
	} else {
		b.state = &state
	}
	return b
}

func (b *UniversityBuilder) WithRanking(ranking int) *UniversityBuilder {
	b.ranking = &ranking
	return b
}

func (b *UniversityBuilder) WithAcceptanceRate(rate float64) *UniversityBuilder {
	b.acceptanceRate = &rate
	return b
}

func (b *UniversityBuilder) WithApplicationSystem(system string) *UniversityBuilder {
	b.applicationSystem = system
	return b
}

func (b *UniversityBuilder) WithMajors(majors ...string) *UniversityBuilder {
	b.majors = majors
	return b
}

// Build creates the university in the database
func (b *UniversityBuilder) Build(t *testing.T, db *gorm.DB) *domain.University {
	t.Helper()

	university := &domain.University{
		ID:                uuid.New(),
		Name:              b.name,
		Country:           b.country,
		State:             b.state,
		City:              b.city,
		Ranking:           b.ranking,
		AcceptanceRate:    b.acceptanceRate,
		ApplicationSystem: b.applicationSystem,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	university.SetMajors(b.majors)

	if err := db.Create(university).Error; err != nil {
		t.Fatalf("failed to create university: %v", err)
	}

	return university
}

// ApplicationBuilder creates test applications
type ApplicationBuilder struct {
	user            *domain.User
	university      *domain.University
	program         string
	applicationType domain.ApplicationType
	status          domain.ApplicationStatus
	deadline        time.Time
	decision        *domain.DecisionType
	requirements    []*domain.Requirement
}

// NewApplicationBuilder creates a new ApplicationBuilder with default values
func NewApplicationBuilder() *ApplicationBuilder {
	return &ApplicationBuilder{
		program:         "Computer Science",
		applicationType: domain.ApplicationTypeRegularDecision,
		status:          domain.StatusNotStarted,
		deadline:        time.Now().AddDate(0, 1, 0),
	}
}

func (b *ApplicationBuilder) WithUser(user *domain.User) *ApplicationBuilder {
	b.user = user
	return b
}

func (b *ApplicationBuilder) WithUniversity(university *domain.University) *ApplicationBuilder {
	b.university = university
	return b
}

func (b *ApplicationBuilder) WithProgram(program string) *ApplicationBuilder {
	b.program = program
	return b
}

func (b *ApplicationBuilder) WithType(applicationType domain.ApplicationType) *ApplicationBuilder {
	b.applicationType = applicationType
	return b
}

func (b *ApplicationBuilder) WithStatus(status domain.ApplicationStatus) *ApplicationBuilder {
	b.status = status
	return b
}

func (b *ApplicationBuilder) WithDeadline(deadline time.Time) *ApplicationBuilder {
	b.deadline = deadline
	return b
}

// WithDecision marks the application decided with the given outcome.
func (b *ApplicationBuilder) WithDecision(decision domain.DecisionType) *ApplicationBuilder {
	b.status = domain.StatusDecided
	b.decision = &decision
	return b
}

// WithRequirement adds a requirement; deadline may be nil.
func (b *ApplicationBuilder) WithRequirement(requirementType string, status domain.RequirementStatus, deadline *time.Time) *ApplicationBuilder {
	b.requirements = append(b.requirements, &domain.Requirement{
		RequirementType: requirementType,
		Status:          status,
		Deadline:        deadline,
	})
	return b
}

// Build creates the application and its requirements in the database
func (b *ApplicationBuilder) Build(t *testing.T, db *gorm.DB) *domain.Application {
	t.Helper()

	if b.user == nil {
		user, _ := NewUserBuilder().Build(t, db)
		b.user = user
	}
	if b.university == nil {
		b.university = NewUniversityBuilder().Build(t, db)
	}

	now := time.Now()
	app := &domain.Application{
		ID:              uuid.New(),
		UserID:          b.user.ID,
		UniversityID:    b.university.ID,
		Program:         b.program,
		ApplicationType: b.applicationType,
		Status:          b.status,
		Deadline:        b.deadline,
		DecisionType:    b.decision,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if b.decision != nil {
		app.DecisionDate = &now
	}

	if err := db.Omit("User", "University", "Requirements").Create(app).Error; err != nil {
		t.Fatalf("failed to create application: %v", err)
	}

	for _, req := range b.requirements {
		req.ID = uuid.New()
		req.ApplicationID = app.ID
		req.CreatedAt = now
		req.UpdatedAt = now
		if err := db.Create(req).Error; err != nil {
			t.Fatalf("failed to create requirement: %v", err)
		}
	}

	app.University = b.university
	app.Requirements = b.requirements
	return app
}

// CreateAuthenticatedRequest creates an HTTP request with auth token
func CreateAuthenticatedRequest(t *testing.T, method, url string, body interface{}, token string) *http.Request {
	t.Helper()

	var bodyReader *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	} else {
		bodyReader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}
