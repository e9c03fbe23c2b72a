package repository

import (
	"context"
	"errors"

	"github.com/krakosik/demoday/internal/model"
	"gorm.io/gorm"
)

type startup struct {
	db *gorm.DB
}

func newStartupRepository(db *gorm.DB) StartupRepository {
	return &startup{
		db: db,
	}
}

func (s *startup) List(ctx context.Context) ([]model.Startup, error) {
	var startups []model.Startup
	result := s.db.WithContext(ctx).Order("name ASC, id ASC").Find(&startups)
	if result.Error != nil {
		return nil, persistenceError("list startups", result.Error)
	}

	return startups, nil
}

func (s *startup) GetByID(ctx context.Context, id string) (model.Startup, error) {
	var startup model.Startup
	result := s.db.WithContext(ctx).Where("id = ?", id).First(&startup)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return model.Startup{}, notFoundError("startup", id)
		}
		return model.Startup{}, persistenceError("get startup", result.Error)
	}

	return startup, nil
}

func (s *startup) Create(ctx context.Context, startup model.Startup) (model.Startup, error) {
	if startup.ID == "" {
		return model.Startup{}, persistenceError("create startup", errEmptyID)
	}
	result := s.db.WithContext(ctx).Create(&startup)
	if result.Error != nil {
		return model.Startup{}, persistenceError("create startup", result.Error)
	}

	return startup, nil
}

func (s *startup) Update(ctx context.Context, startup model.Startup) (model.Startup, error) {
	result := s.db.WithContext(ctx).Model(&model.Startup{}).
		Where("id = ?", startup.ID).
		Select("name", "website", "founder_linkedin", "deck_url", "updated_at").
		Updates(&startup)
	if result.Error != nil {
		return model.Startup{}, persistenceError("update startup", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.Startup{}, notFoundError("startup", startup.ID)
	}

	return s.GetByID(ctx, startup.ID)
}

func (s *startup) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Startup{})
	if result.Error != nil {
		return persistenceError("delete startup", result.Error)
	}
	if result.RowsAffected == 0 {
		return notFoundError("startup", id)
	}

	return nil
}
