package repository

import (
	"context"
	"errors"

	"github.com/Treobytes-Dev/treo-cms-api/internal/cache"
	"github.com/Treobytes-Dev/treo-cms-api/internal/models"

	"gorm.io/gorm"
)

// PageRepository defines the interface for static page data operations
type PageRepository interface {
	Create(ctx context.Context, page *models.Page) error
	GetByID(ctx context.Context, id uint) (*models.Page, error)
	GetBySlug(ctx context.Context, slug string) (*models.Page, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	ListSummaries(ctx context.Context) ([]models.PageSummary, error)
	Update(ctx context.Context, page *models.Page) error
	Delete(ctx context.Context, id uint) error
}

type pageRepository struct {
	db *gorm.DB
}

// NewPageRepository creates a new page repository
func NewPageRepository(db *gorm.DB) PageRepository {
	return &pageRepository{db: db}
}

func (r *pageRepository) Create(ctx context.Context, page *models.Page) error {
	if err := r.db.WithContext(ctx).Create(page).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Page already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *pageRepository) GetByID(ctx context.Context, id uint) (*models.Page, error) {
	var page models.Page
	if err := r.db.WithContext(ctx).
		Preload("FeaturedImage").
		First(&page, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Page", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &page, nil
}

// GetBySlug reads through the cache. Pages change rarely so they carry the
// longest TTL in the inventory.
func (r *pageRepository) GetBySlug(ctx context.Context, slug string) (*models.Page, error) {
	var page models.Page
	err := cache.Aside(ctx, cache.PageSlugKey(slug), &page, cache.PageTTL, func() error {
		if err := r.db.WithContext(ctx).
			Preload("FeaturedImage").
			Where("slug = ?", slug).
			First(&page).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Page", slug)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *pageRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Page{}).
		Where("slug = ?", slug).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *pageRepository) ListSummaries(ctx context.Context) ([]models.PageSummary, error) {
	var summaries []models.PageSummary
	if err := r.db.WithContext(ctx).
		Model(&models.Page{}).
		Select("id", "name", "title", "slug", "placeholder").
		Order("placeholder ASC").
		Find(&summaries).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return summaries, nil
}

func (r *pageRepository) Update(ctx context.Context, page *models.Page) error {
	if err := r.db.WithContext(ctx).Save(page).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Page already exists")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidatePage(ctx, page.Slug)
	return nil
}

func (r *pageRepository) Delete(ctx context.Context, id uint) error {
	var page models.Page
	if err := r.db.WithContext(ctx).First(&page, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Page", id)
		}
		return models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Delete(&page).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePage(ctx, page.Slug)
	return nil
}
