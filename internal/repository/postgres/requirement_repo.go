package postgres

import (
	"context"

	"github.com/dom/college-tracker/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type requirementRepository struct {
	db *gorm.DB
}

func NewRequirementRepository(db *gorm.DB) *requirementRepository {
	return &requirementRepository{db: db}
}

func (r *requirementRepository) Create(ctx context.Context, req *domain.Requirement) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *requirementRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Requirement, error) {
	var req domain.Requirement
	err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requirementRepository) Update(ctx context.Context, req *domain.Requirement) error {
	return r.db.WithContext(ctx).Save(req).Error
}
