package server

import (
	"github.com/Treobytes-Dev/treo-cms-api/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CreateComment handles POST /api/comment/:postId
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Content == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Content is required"))
	}

	// The parent must exist; comments never attach to ghosts.
	if _, err := s.postRepo.GetByID(c.Context(), postID); err != nil {
		return respondErr(c, err)
	}

	comment := &models.Comment{
		Content: req.Content,
		UserID:  actingUserID(c),
		PostID:  postID,
	}
	if err := s.commentRepo.Create(c.Context(), comment); err != nil {
		return respondErr(c, err)
	}

	created, err := s.commentRepo.GetByID(c.Context(), comment.ID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(created)
}

// GetComments handles GET /api/comments/:page
func (s *Server) GetComments(c *fiber.Ctx) error {
	page, _ := c.ParamsInt("page", 1)

	comments, err := s.commentRepo.ListPage(c.Context(), page)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(comments)
}

// GetUserComments handles GET /api/user-comments
func (s *Server) GetUserComments(c *fiber.Ctx) error {
	comments, err := s.commentRepo.ListByUser(c.Context(), actingUserID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(comments)
}

// GetCommentCount handles GET /api/comment-count
func (s *Server) GetCommentCount(c *fiber.Ctx) error {
	count, err := s.commentRepo.Count(c.Context())
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(count)
}

// UpdateComment handles PUT /api/comment/:commentId
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	comment, err := s.commentRepo.GetByID(c.Context(), commentID)
	if err != nil {
		return respondErr(c, err)
	}
	if ok, authErr := s.canManageComment(c, comment); authErr != nil {
		return respondErr(c, models.NewInternalError(authErr))
	} else if !ok {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You are not allowed to update this comment"))
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment.Content = fallback(req.Content, comment.Content)
	if err := s.commentRepo.Update(c.Context(), comment); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/comment/:commentId
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	comment, err := s.commentRepo.GetByID(c.Context(), commentID)
	if err != nil {
		return respondErr(c, err)
	}
	if ok, authErr := s.canManageComment(c, comment); authErr != nil {
		return respondErr(c, models.NewInternalError(authErr))
	} else if !ok {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You are not allowed to delete this comment"))
	}

	if err := s.commentRepo.Delete(c.Context(), commentID); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

// canManageComment reports whether the acting user may edit or delete the
// comment: its author, or an admin.
func (s *Server) canManageComment(c *fiber.Ctx, comment *models.Comment) (bool, error) {
	userID := actingUserID(c)
	if comment.UserID == userID {
		return true, nil
	}
	role, err := s.roleByUserID(c.Context(), userID)
	if err != nil {
		return false, err
	}
	return role == models.RoleAdmin, nil
}
