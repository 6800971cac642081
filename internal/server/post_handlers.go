package server

import (
	"github.com/Treobytes-Dev/treo-cms-api/internal/models"
	"github.com/Treobytes-Dev/treo-cms-api/internal/slugify"

	"github.com/gofiber/fiber/v2"
)

// postsByCategoryLimit caps the category listing endpoint.
const postsByCategoryLimit = 20

// CreatePost handles POST /api/create-post
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Title           string   `json:"title"`
		Content         string   `json:"content"`
		Categories      []string `json:"categories"`
		FeaturedImageID *uint    `json:"featured_image_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Title == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Title is required"))
	}

	slug := slugify.Make(req.Title)
	taken, err := s.postRepo.ExistsBySlug(c.Context(), slug)
	if err != nil {
		return respondErr(c, err)
	}
	if taken {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewConflictError("Title is taken"))
	}

	// One batch query resolves every named category; unknown names simply
	// resolve to no association.
	categories, err := s.categoryRepo.ResolveByNames(c.Context(), req.Categories)
	if err != nil {
		return respondErr(c, err)
	}

	post := &models.Post{
		Title:           req.Title,
		Slug:            slug,
		Content:         req.Content,
		UserID:          actingUserID(c),
		Categories:      categories,
		FeaturedImageID: req.FeaturedImageID,
	}
	if err := s.postRepo.Create(c.Context(), post); err != nil {
		return respondErr(c, err)
	}

	created, err := s.postRepo.GetByID(c.Context(), post.ID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(created)
}

// GetPosts handles GET /api/posts/:page
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page, _ := c.ParamsInt("page", 1)

	posts, err := s.postRepo.ListPage(c.Context(), page)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/post/:slug
func (s *Server) GetPost(c *fiber.Ctx) error {
	slug := c.Params("slug")

	post, err := s.postRepo.GetBySlug(c.Context(), slug)
	if err != nil {
		return respondErr(c, err)
	}

	comments, err := s.commentRepo.ListByPost(c.Context(), post.ID)
	if err != nil {
		return respondErr(c, err)
	}

	return c.JSON(fiber.Map{
		"post":     post,
		"comments": comments,
	})
}

// EditPost handles PUT /api/edit-post/:postId
func (s *Server) EditPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	post, err := s.postRepo.GetByID(c.Context(), postID)
	if err != nil {
		return respondErr(c, err)
	}
	if ok, authErr := s.canManagePost(c, post); authErr != nil {
		return respondErr(c, models.NewInternalError(authErr))
	} else if !ok {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You are not allowed to update this post"))
	}

	var req struct {
		Title           string    `json:"title"`
		Content         string    `json:"content"`
		Categories      *[]string `json:"categories"`
		FeaturedImageID *uint     `json:"featured_image_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	title := fallback(req.Title, post.Title)
	slug := slugify.Make(title)
	if slug != post.Slug {
		taken, tErr := s.postRepo.ExistsBySlug(c.Context(), slug)
		if tErr != nil {
			return respondErr(c, tErr)
		}
		if taken {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewConflictError("Title is taken"))
		}
	}

	// An absent categories key keeps the current set; a present list, empty
	// included, replaces it.
	categories := post.Categories
	if req.Categories != nil {
		categories, err = s.categoryRepo.ResolveByNames(c.Context(), *req.Categories)
		if err != nil {
			return respondErr(c, err)
		}
	}

	post.Title = title
	post.Slug = slug
	post.Content = fallback(req.Content, post.Content)
	if req.FeaturedImageID != nil {
		post.FeaturedImageID = req.FeaturedImageID
	}

	if err := s.postRepo.Update(c.Context(), post, categories); err != nil {
		return respondErr(c, err)
	}

	updated, err := s.postRepo.GetByID(c.Context(), post.ID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(updated)
}

// DeletePost handles DELETE /api/post/:postId
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	post, err := s.postRepo.GetByID(c.Context(), postID)
	if err != nil {
		return respondErr(c, err)
	}
	if ok, authErr := s.canManagePost(c, post); authErr != nil {
		return respondErr(c, models.NewInternalError(authErr))
	} else if !ok {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You are not allowed to delete this post"))
	}

	if err := s.postRepo.Delete(c.Context(), postID); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

// GetPostsByAuthor handles GET /api/posts-by-author
func (s *Server) GetPostsByAuthor(c *fiber.Ctx) error {
	posts, err := s.postRepo.ListByAuthor(c.Context(), actingUserID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(posts)
}

// GetPostCount handles GET /api/post-count
func (s *Server) GetPostCount(c *fiber.Ctx) error {
	count, err := s.postRepo.Count(c.Context())
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(count)
}

// GetAllPostSummaries handles GET /api/posts-all
func (s *Server) GetAllPostSummaries(c *fiber.Ctx) error {
	summaries, err := s.postRepo.ListSummaries(c.Context())
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(summaries)
}

// GetNumbers handles GET /api/numbers, the dashboard totals endpoint.
func (s *Server) GetNumbers(c *fiber.Ctx) error {
	posts, err := s.postRepo.Count(c.Context())
	if err != nil {
		return respondErr(c, err)
	}
	users, err := s.userRepo.Count(c.Context())
	if err != nil {
		return respondErr(c, err)
	}
	comments, err := s.commentRepo.Count(c.Context())
	if err != nil {
		return respondErr(c, err)
	}
	categories, err := s.categoryRepo.Count(c.Context())
	if err != nil {
		return respondErr(c, err)
	}

	return c.JSON(fiber.Map{
		"posts":      posts,
		"users":      users,
		"comments":   comments,
		"categories": categories,
	})
}

// canManagePost reports whether the acting user may edit or delete the post:
// the author themselves, or an admin.
func (s *Server) canManagePost(c *fiber.Ctx, post *models.Post) (bool, error) {
	userID := actingUserID(c)
	if post.UserID == userID {
		return true, nil
	}
	role, err := s.roleByUserID(c.Context(), userID)
	if err != nil {
		return false, err
	}
	return role == models.RoleAdmin, nil
}
