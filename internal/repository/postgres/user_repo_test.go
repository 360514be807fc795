package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/dom/college-tracker/internal/domain"
	"github.com/dom/college-tracker/internal/repository/postgres"
	"github.com/dom/college-tracker/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepository_Create(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	newUser := func(email string) *domain.User {
		return &domain.User{
			ID:           uuid.New(),
			Email:        email,
			PasswordHash: "hashedpassword",
			FirstName:    "Ada",
			LastName:     "Lovelace",
			Role:         domain.UserRoleStudent,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}
	}

	tests := []struct {
		name    string
		user    *domain.User
		wantErr error
	}{
		{
			name: "successful creation",
			user: newUser("ada@example.com"),
		},
		{
			name:    "duplicate email",
			user:    newUser("ada@example.com"),
			wantErr: gorm.ErrDuplicatedKey,
		},
		{
			name: "email differing only in case is a different account",
			user: newUser("Ada@Example.com"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.user)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestUserRepository_GetByID(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().
		WithEmail("getbyid@example.com").
		Build(t, testDB.DB)

	tests := []struct {
		name    string
		id      uuid.UUID
		wantErr error
	}{
		{
			name: "existing user",
			id:   user.ID,
		},
		{
			name:    "non-existent user",
			id:      uuid.New(),
			wantErr: gorm.ErrRecordNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.GetByID(ctx, tt.id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, user.Email, got.Email)
			assert.Equal(t, domain.UserRoleStudent, got.Role)
		})
	}
}

func TestUserRepository_GetByEmail(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().
		WithEmail("exact@example.com").
		Build(t, testDB.DB)

	tests := []struct {
		name    string
		email   string
		wantErr error
	}{
		{
			name:  "exact match",
			email: "exact@example.com",
		},
		{
			name:    "different case does not match",
			email:   "EXACT@example.com",
			wantErr: gorm.ErrRecordNotFound,
		},
		{
			name:    "unknown email",
			email:   "nobody@example.com",
			wantErr: gorm.ErrRecordNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.GetByEmail(ctx, tt.email)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, user.ID, got.ID)
		})
	}
}

func TestUserRepository_Update(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	image := "https://cdn.example.com/avatar.png"
	user.FirstName = "Grace"
	user.ProfileImageURL = &image
	require.NoError(t, repo.Update(ctx, user))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Grace", got.FirstName)
	require.NotNil(t, got.ProfileImageURL)
	assert.Equal(t, image, *got.ProfileImageURL)
}
