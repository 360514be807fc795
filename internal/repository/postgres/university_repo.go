package postgres

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/dom/college-tracker/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultSearchLimit = 50

// likeEscaper makes user text match literally inside an ILIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type universityRepository struct {
	db *gorm.DB
}

func NewUniversityRepository(db *gorm.DB) *universityRepository {
	return &universityRepository{db: db}
}

func (r *universityRepository) UpsertMany(ctx context.Context, universities []*domain.University) error {
	if len(universities) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		UpdateAll: true,
	}).Create(universities).Error
}

func (r *universityRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.University, error) {
	var university domain.University
	err := r.db.WithContext(ctx).First(&university, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &university, nil
}

func (r *universityRepository) Search(ctx context.Context, filter domain.UniversityFilter) ([]*domain.University, error) {
	query := r.db.WithContext(ctx).Model(&domain.University{})

	if filter.Query != "" {
		pattern := "%" + likeEscaper.Replace(filter.Query) + "%"
		query = query.Where(`name ILIKE ? ESCAPE '\' OR city ILIKE ? ESCAPE '\'`, pattern, pattern)
	}
	if len(filter.Countries) > 0 {
		query = query.Where("country IN ?", filter.Countries)
	}
	if len(filter.States) > 0 {
		query = query.Where("state IN ?", filter.States)
	}
	if len(filter.ApplicationSystems) > 0 {
		query = query.Where("application_system IN ?", filter.ApplicationSystems)
	}
	if len(filter.Majors) > 0 {
		// jsonb containment per major, any of them may match
		majors := r.db.Where("majors_offered @> ?", jsonArray(filter.Majors[0]))
		for _, major := range filter.Majors[1:] {
			majors = majors.Or("majors_offered @> ?", jsonArray(major))
		}
		query = query.Where(majors)
	}
	if filter.MinAcceptance != nil {
		query = query.Where("acceptance_rate >= ?", *filter.MinAcceptance)
	}
	if filter.MaxAcceptance != nil {
		query = query.Where("acceptance_rate <= ?", *filter.MaxAcceptance)
	}
	if filter.MinRanking != nil {
		query = query.Where("ranking >= ?", *filter.MinRanking)
	}
	if filter.MaxRanking != nil {
		query = query.Where("ranking <= ?", *filter.MaxRanking)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	var universities []*domain.University
	err := query.
		Order("ranking ASC NULLS LAST").
		Order("name ASC").
		Limit(limit).
		Find(&universities).Error
	if err != nil {
		return nil, err
	}
	return universities, nil
}

func (r *universityRepository) FilterOptions(ctx context.Context) (*domain.UniversityFilterOptions, error) {
	db := r.db.WithContext(ctx)
	opts := &domain.UniversityFilterOptions{
		Countries:          []string{},
		States:             []string{},
		Majors:             []string{},
		ApplicationSystems: []string{},
	}

	if err := db.Model(&domain.University{}).
		Distinct("country").
		Order("country").
		Pluck("country", &opts.Countries).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&domain.University{}).
		Where("state IS NOT NULL AND state <> ''").
		Distinct("state").
		Order("state").
		Pluck("state", &opts.States).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&domain.University{}).
		Where("application_system <> ''").
		Distinct("application_system").
		Order("application_system").
		Pluck("application_system", &opts.ApplicationSystems).Error; err != nil {
		return nil, err
	}

	if err := db.Raw(`SELECT DISTINCT major FROM (
		SELECT jsonb_array_elements_text(majors_offered) AS major
		FROM universities
		WHERE jsonb_typeof(majors_offered) = 'array'
	) m ORDER BY major`).Scan(&opts.Majors).Error; err != nil {
		return nil, err
	}

	return opts, nil
}

func jsonArray(value string) string {
	data, _ := json.Marshal([]string{value})
	return string(data)
}
