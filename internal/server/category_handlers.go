package server

import (
	"github.com/Treobytes-Dev/treo-cms-api/internal/models"
	"github.com/Treobytes-Dev/treo-cms-api/internal/slugify"

	"github.com/gofiber/fiber/v2"
)

// CreateCategory handles POST /api/category (admin)
func (s *Server) CreateCategory(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Name == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Name is required"))
	}

	category := &models.Category{
		Name: req.Name,
		Slug: slugify.Make(req.Name),
	}
	// Concurrent creates race to the unique slug index; the loser gets the
	// conflict instead of a duplicate row.
	if err := s.categoryRepo.Create(c.Context(), category); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(category)
}

// GetCategories handles GET /api/categories
func (s *Server) GetCategories(c *fiber.Ctx) error {
	categories, err := s.categoryRepo.List(c.Context())
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(categories)
}

// UpdateCategory handles PUT /api/category/:slug (admin)
func (s *Server) UpdateCategory(c *fiber.Ctx) error {
	slug := c.Params("slug")

	category, err := s.categoryRepo.GetBySlug(c.Context(), slug)
	if err != nil {
		return respondErr(c, err)
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Name == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Name is required"))
	}

	category.Name = req.Name
	category.Slug = slugify.Make(req.Name)
	if err := s.categoryRepo.Update(c.Context(), category); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(category)
}

// DeleteCategory handles DELETE /api/category/:slug (admin)
func (s *Server) DeleteCategory(c *fiber.Ctx) error {
	slug := c.Params("slug")

	if err := s.categoryRepo.Delete(c.Context(), slug); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

// GetPostsByCategory handles GET /api/posts-by-category/:slug
func (s *Server) GetPostsByCategory(c *fiber.Ctx) error {
	slug := c.Params("slug")

	category, err := s.categoryRepo.GetBySlug(c.Context(), slug)
	if err != nil {
		return respondErr(c, err)
	}

	posts, err := s.postRepo.ListByCategory(c.Context(), category.ID, postsByCategoryLimit)
	if err != nil {
		return respondErr(c, err)
	}

	return c.JSON(fiber.Map{
		"posts":    posts,
		"category": category,
	})
}

// SearchCategory handles GET /api/search-category/:query
func (s *Server) SearchCategory(c *fiber.Ctx) error {
	query := c.Params("query")

	categories, err := s.categoryRepo.Search(c.Context(), query)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(categories)
}
