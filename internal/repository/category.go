package repository

import (
	"context"
	"errors"

	"github.com/Treobytes-Dev/treo-cms-api/internal/cache"
	"github.com/Treobytes-Dev/treo-cms-api/internal/models"

	"gorm.io/gorm"
)

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Search(ctx context.Context, query string) ([]models.Category, error)
	ResolveByNames(ctx context.Context, names []string) ([]models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, slug string) error
	Count(ctx context.Context) (int64, error)
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Category already exists")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateCategories(ctx)
	return nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Category", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &category, nil
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Category", slug)
		}
		return nil, models.NewInternalError(err)
	}
	return &category, nil
}

// List returns every category, cached as a single entry since the set is
// small and changes rarely.
func (r *categoryRepository) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := cache.Aside(ctx, cache.CategoriesKey(), &categories, cache.CategoriesTTL, func() error {
		if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&categories).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) Search(ctx context.Context, query string) ([]models.Category, error) {
	var categories []models.Category
	pattern := "%" + query + "%"
	if err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE LOWER(?) OR LOWER(slug) LIKE LOWER(?)", pattern, pattern).
		Order("name ASC").
		Find(&categories).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return categories, nil
}

// ResolveByNames fetches all categories matching the given names in one
// query. Names with no matching category are silently dropped; callers that
// need strict resolution should compare lengths.
func (r *categoryRepository) ResolveByNames(ctx context.Context, names []string) ([]models.Category, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var categories []models.Category
	if err := r.db.WithContext(ctx).
		Where("name IN ?", names).
		Find(&categories).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return categories, nil
}

func (r *categoryRepository) Update(ctx context.Context, category *models.Category) error {
	if err := r.db.WithContext(ctx).Save(category).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Category already exists")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateCategories(ctx)
	return nil
}

// Delete removes the category and clears its post join rows.
func (r *categoryRepository) Delete(ctx context.Context, slug string) error {
	category, err := r.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Model(category).Association("Posts").Clear(); err != nil {
		return models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Delete(category).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateCategories(ctx)
	return nil
}

func (r *categoryRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Category{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
