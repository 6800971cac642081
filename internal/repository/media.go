package repository

import (
	"context"
	"errors"

	"github.com/Treobytes-Dev/treo-cms-api/internal/models"

	"gorm.io/gorm"
)

// MediaRepository defines the interface for uploaded media metadata
type MediaRepository interface {
	Create(ctx context.Context, media *models.Media) error
	GetByID(ctx context.Context, id uint) (*models.Media, error)
	List(ctx context.Context) ([]models.Media, error)
	Delete(ctx context.Context, id uint) error
}

type mediaRepository struct {
	db *gorm.DB
}

// NewMediaRepository creates a new media repository
func NewMediaRepository(db *gorm.DB) MediaRepository {
	return &mediaRepository{db: db}
}

func (r *mediaRepository) Create(ctx context.Context, media *models.Media) error {
	if err := r.db.WithContext(ctx).Create(media).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *mediaRepository) GetByID(ctx context.Context, id uint) (*models.Media, error) {
	var media models.Media
	if err := r.db.WithContext(ctx).First(&media, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Media", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &media, nil
}

func (r *mediaRepository) List(ctx context.Context) ([]models.Media, error) {
	var media []models.Media
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&media).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return media, nil
}

func (r *mediaRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Media{}, id)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Media", id)
	}
	return nil
}
