package server

import (
	"fmt"

	"github.com/Treobytes-Dev/treo-cms-api/internal/models"
	"github.com/Treobytes-Dev/treo-cms-api/internal/slugify"
	"github.com/Treobytes-Dev/treo-cms-api/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// CreatePage handles POST /api/create-page (admin)
func (s *Server) CreatePage(c *fiber.Ctx) error {
	var req struct {
		Name            string `json:"name"`
		Title           string `json:"title"`
		Content         string `json:"content"`
		Placeholder     int    `json:"placeholder"`
		FeaturedImageID *uint  `json:"featured_image_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Name == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Name is required"))
	}

	slug := slugify.Make(req.Name)
	taken, err := s.pageRepo.ExistsBySlug(c.Context(), slug)
	if err != nil {
		return respondErr(c, err)
	}
	if taken {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewConflictError("This page name is taken"))
	}

	page := &models.Page{
		Name:            req.Name,
		Title:           req.Title,
		Slug:            slug,
		Content:         req.Content,
		Placeholder:     req.Placeholder,
		FeaturedImageID: req.FeaturedImageID,
	}
	if err := s.pageRepo.Create(c.Context(), page); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(page)
}

// EditPage handles POST /api/edit-page/:pageId (admin)
func (s *Server) EditPage(c *fiber.Ctx) error {
	pageID, err := s.parseID(c, "pageId")
	if err != nil {
		return nil
	}

	page, err := s.pageRepo.GetByID(c.Context(), pageID)
	if err != nil {
		return respondErr(c, err)
	}

	var req struct {
		Name            string `json:"name"`
		Title           string `json:"title"`
		Content         string `json:"content"`
		Placeholder     *int   `json:"placeholder"`
		FeaturedImageID *uint  `json:"featured_image_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	name := fallback(req.Name, page.Name)
	slug := slugify.Make(name)
	if slug != page.Slug {
		taken, tErr := s.pageRepo.ExistsBySlug(c.Context(), slug)
		if tErr != nil {
			return respondErr(c, tErr)
		}
		if taken {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewConflictError("This page name is taken"))
		}
	}

	page.Name = name
	page.Slug = slug
	page.Title = fallback(req.Title, page.Title)
	page.Content = fallback(req.Content, page.Content)
	if req.Placeholder != nil {
		page.Placeholder = *req.Placeholder
	}
	if req.FeaturedImageID != nil {
		page.FeaturedImageID = req.FeaturedImageID
	}

	if err := s.pageRepo.Update(c.Context(), page); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(page)
}

// GetPage handles GET /api/page/:slug
func (s *Server) GetPage(c *fiber.Ctx) error {
	slug := c.Params("slug")

	page, err := s.pageRepo.GetBySlug(c.Context(), slug)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(page)
}

// GetAllPageSummaries handles GET /api/pages-all
func (s *Server) GetAllPageSummaries(c *fiber.Ctx) error {
	summaries, err := s.pageRepo.ListSummaries(c.Context())
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(summaries)
}

// DeletePage handles DELETE /api/page/:pageId (admin)
func (s *Server) DeletePage(c *fiber.Ctx) error {
	pageID, err := s.parseID(c, "pageId")
	if err != nil {
		return nil
	}

	if err := s.pageRepo.Delete(c.Context(), pageID); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

// Contact handles POST /api/contact. The response is always 200; ok reports
// whether the email went out, matching what the contact form renders.
func (s *Server) Contact(c *fiber.Ctx) error {
	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Message string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Name == "" || req.Message == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Name and message are required"))
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	if s.mail == nil || s.config.MailContactTo == "" {
		return c.JSON(fiber.Map{"ok": false})
	}

	html := fmt.Sprintf(
		"<h3>Contact form message</h3><p>From: %s (%s)</p><p>%s</p>",
		req.Name, req.Email, req.Message)
	if err := s.mail.Send(c.UserContext(), []string{s.config.MailContactTo},
		"New contact form message", html); err != nil {
		return c.JSON(fiber.Map{"ok": false})
	}
	return c.JSON(fiber.Map{"ok": true})
}
