package seed

import (
	"fmt"
	"log"

	"github.com/Treobytes-Dev/treo-cms-api/internal/models"

	"gorm.io/gorm"
)

// defaultCategories are the starter set every fresh demo database gets.
var defaultCategories = []string{
	"News", "Tutorials", "Opinion", "Releases", "Community",
}

// defaultPages mirror the site layout slots the frontend renders.
var defaultPages = []string{"Home", "About", "Contact"}

// Seeder orchestrates demo data creation.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder bound to the given database.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db)}
}

// ClearAll wipes every seeded table. Join rows go first so foreign keys
// never dangle mid-wipe.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing database...")
	if err := s.db.Exec("DELETE FROM post_categories").Error; err != nil {
		return fmt.Errorf("clear post_categories: %w", err)
	}
	for _, model := range []interface{}{
		&models.Comment{}, &models.Post{}, &models.Category{},
		&models.Page{}, &models.Media{}, &models.User{},
	} {
		if err := s.db.Unscoped().Where("1 = 1").Delete(model).Error; err != nil {
			return fmt.Errorf("clear table: %w", err)
		}
	}
	return nil
}

// Run populates the database with numUsers accounts (the first is promoted
// to admin, the second to author), the default categories and pages, and
// numPosts posts with a few comments each.
func (s *Seeder) Run(numUsers, numPosts int) error {
	users := make([]*models.User, 0, numUsers)
	for i := 0; i < numUsers; i++ {
		i := i
		user, err := s.factory.CreateUser(func(u *models.User) {
			switch i {
			case 0:
				u.Role = models.RoleAdmin
				u.Email = "admin@example.com"
			case 1:
				u.Role = models.RoleAuthor
			}
		})
		if err != nil {
			return err
		}
		users = append(users, user)
	}
	log.Printf("Seeded %d users", len(users))

	categories := make([]models.Category, 0, len(defaultCategories))
	for _, name := range defaultCategories {
		category, err := s.factory.CreateCategory(name)
		if err != nil {
			return err
		}
		categories = append(categories, *category)
	}
	log.Printf("Seeded %d categories", len(categories))

	for i, name := range defaultPages {
		if _, err := s.factory.CreatePage(name, i); err != nil {
			return err
		}
	}
	log.Printf("Seeded %d pages", len(defaultPages))

	authors := users
	if len(users) > 2 {
		// Only the admin and the author write posts.
		authors = users[:2]
	}
	for i := 0; i < numPosts; i++ {
		author := authors[i%len(authors)]
		ci := s.factory.rand.Intn(len(categories))
		cats := categories[ci : ci+1]
		post, err := s.factory.CreatePost(author, cats, func(p *models.Post) {
			// Slugs must stay unique across the seeded set.
			p.Slug = fmt.Sprintf("%s-%d", p.Slug, i)
		})
		if err != nil {
			return err
		}

		numComments := s.factory.rand.Intn(4)
		for j := 0; j < numComments; j++ {
			commenter := users[s.factory.rand.Intn(len(users))]
			if _, err := s.factory.CreateComment(commenter, post); err != nil {
				return err
			}
		}
	}
	log.Printf("Seeded %d posts", numPosts)

	return nil
}
