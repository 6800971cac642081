package repository

import (
	"context"
	"errors"

	"github.com/Treobytes-Dev/treo-cms-api/internal/cache"
	"github.com/Treobytes-Dev/treo-cms-api/internal/models"

	"gorm.io/gorm"
)

// PostsPerPage is the fixed page size for paginated post listings.
const PostsPerPage = 6

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	ListPage(ctx context.Context, page int) ([]models.Post, error)
	ListByAuthor(ctx context.Context, userID uint) ([]models.Post, error)
	ListByCategory(ctx context.Context, categoryID uint, limit int) ([]models.Post, error)
	ListSummaries(ctx context.Context) ([]models.PostSummary, error)
	Update(ctx context.Context, post *models.Post, categories []models.Category) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// withRelations preloads the summaries joined into post responses: author
// name, category name+slug, and the featured image URL.
func (r *postRepository) withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name")
		}).
		Preload("Categories", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "slug")
		}).
		Preload("FeaturedImage")
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Title is taken")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.withRelations(r.db.WithContext(ctx)).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

// GetBySlug reads through the cache, like pages. The single-post endpoint is
// the hottest read in the API.
func (r *postRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	err := cache.Aside(ctx, cache.PostSlugKey(slug), &post, cache.PostTTL, func() error {
		if err := r.withRelations(r.db.WithContext(ctx)).
			Where("slug = ?", slug).
			First(&post).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", slug)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("slug = ?", slug).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *postRepository) ListPage(ctx context.Context, page int) ([]models.Post, error) {
	if page < 1 {
		page = 1
	}

	var posts []models.Post
	if err := r.withRelations(r.db.WithContext(ctx)).
		Order("created_at DESC").
		Offset((page - 1) * PostsPerPage).
		Limit(PostsPerPage).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ListByAuthor(ctx context.Context, userID uint) ([]models.Post, error) {
	var posts []models.Post
	if err := r.withRelations(r.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ListByCategory(ctx context.Context, categoryID uint, limit int) ([]models.Post, error) {
	var posts []models.Post
	if err := r.withRelations(r.db.WithContext(ctx)).
		Joins("JOIN post_categories ON post_categories.post_id = posts.id").
		Where("post_categories.category_id = ?", categoryID).
		Order("posts.created_at DESC").
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ListSummaries(ctx context.Context) ([]models.PostSummary, error) {
	var summaries []models.PostSummary
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select("id", "title", "slug").
		Find(&summaries).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return summaries, nil
}

// Update saves the post and replaces its category association set.
func (r *postRepository) Update(ctx context.Context, post *models.Post, categories []models.Category) error {
	// A rename leaves the cached entry under the old slug.
	var prev models.Post
	if err := r.db.WithContext(ctx).Select("slug").First(&prev, post.ID).Error; err == nil && prev.Slug != post.Slug {
		cache.InvalidatePost(ctx, prev.Slug)
	}

	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Title is taken")
		}
		return models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Model(post).Association("Categories").Replace(categories); err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.Slug)
	return nil
}

// Delete removes the post and clears its category join rows so the join
// table cannot dangle. Comments are left in place (no cascade).
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Post", id)
		}
		return models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Model(&post).Association("Categories").Clear(); err != nil {
		return models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Delete(&post).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.Slug)
	return nil
}

func (r *postRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
