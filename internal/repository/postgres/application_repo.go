package postgres

import (
	"context"

	"github.com/dom/college-tracker/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type applicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *applicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(ctx context.Context, app *domain.Application) error {
	return r.db.WithContext(ctx).Omit("University", "User").Create(app).Error
}

func (r *applicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Application, error) {
	var app domain.Application
	err := r.db.WithContext(ctx).
		Preload("University").
		Preload("Requirements", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&app, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Application, error) {
	var apps []*domain.Application
	err := r.db.WithContext(ctx).
		Preload("University").
		Preload("Requirements", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("user_id = ?", userID).
		Order("deadline ASC").
		Order("created_at ASC").
		Find(&apps).Error
	if err != nil {
		return nil, err
	}
	return apps, nil
}

// Update saves the application's own columns; relations are left untouched.
func (r *applicationRepository) Update(ctx context.Context, app *domain.Application) error {
	return r.db.WithContext(ctx).
		Omit("User", "University", "Requirements").
		Save(app).Error
}
