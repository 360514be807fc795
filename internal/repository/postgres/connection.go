package postgres

import (
	"github.com/dom/college-tracker/internal/domain"
	"github.com/dom/college-tracker/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models lists every table owned by the tracker, in dependency order.
var Models = []interface{}{
	&domain.User{},
	&domain.University{},
	&domain.Application{},
	&domain.Requirement{},
}

func NewConnection(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Info),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate auto-migrates all tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models...)
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		User:        NewUserRepository(db),
		University:  NewUniversityRepository(db),
		Application: NewApplicationRepository(db),
		Requirement: NewRequirementRepository(db),
	}
}
