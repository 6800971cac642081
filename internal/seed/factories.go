// Package seed provides helpers to create demo data for the CMS database.
// These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/Treobytes-Dev/treo-cms-api/internal/models"
	"github.com/Treobytes-Dev/treo-cms-api/internal/slugify"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	rand *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:   db,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser constructs and persists a sample user. All seeded accounts share
// the password "password123". Optional override functions may modify the
// generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{
		Name:     gofakeit.Name(),
		Email:    gofakeit.Email(),
		Password: string(hashedPassword),
		Role:     models.RoleSubscriber,
		Website:  gofakeit.URL(),
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("seed user: %w", err)
	}
	return user, nil
}

// CreateCategory persists a category with a slug derived from its name.
func (f *Factory) CreateCategory(name string) (*models.Category, error) {
	category := &models.Category{
		Name: name,
		Slug: slugify.Make(name),
	}
	if err := f.db.Create(category).Error; err != nil {
		return nil, fmt.Errorf("seed category: %w", err)
	}
	return category, nil
}

// CreatePost persists a post authored by the given user, attached to the
// given categories, with a created_at spread over the past 90 days so
// paginated listings look lived-in.
func (f *Factory) CreatePost(user *models.User, categories []models.Category, overrides ...func(*models.Post)) (*models.Post, error) {
	title := gofakeit.Sentence(5)
	post := &models.Post{
		Title:      title,
		Slug:       slugify.Make(title),
		Content:    gofakeit.Paragraph(2, 4, 8, "\n\n"),
		UserID:     user.ID,
		Categories: categories,
	}

	daysBack := f.rand.Intn(90)
	hoursBack := f.rand.Intn(24)
	post.CreatedAt = time.Now().
		Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

	for _, override := range overrides {
		override(post)
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, fmt.Errorf("seed post: %w", err)
	}
	return post, nil
}

// CreateComment persists a comment by the given user on the given post.
func (f *Factory) CreateComment(user *models.User, post *models.Post) (*models.Comment, error) {
	comment := &models.Comment{
		Content: gofakeit.Sentence(12),
		UserID:  user.ID,
		PostID:  post.ID,
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, fmt.Errorf("seed comment: %w", err)
	}
	return comment, nil
}

// CreatePage persists a static page keyed by a slug derived from its name.
func (f *Factory) CreatePage(name string, placeholder int) (*models.Page, error) {
	page := &models.Page{
		Name:        name,
		Title:       gofakeit.Sentence(4),
		Slug:        slugify.Make(name),
		Content:     gofakeit.Paragraph(3, 4, 10, "\n\n"),
		Placeholder: placeholder,
	}
	if err := f.db.Create(page).Error; err != nil {
		return nil, fmt.Errorf("seed page: %w", err)
	}
	return page, nil
}
