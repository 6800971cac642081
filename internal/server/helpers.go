// Package server contains the HTTP handlers for the CMS API endpoints.
package server

import (
	"errors"

	"github.com/Treobytes-Dev/treo-cms-api/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+param))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// actingUserID reads the authenticated user's ID stored by AuthRequired.
func actingUserID(c *fiber.Ctx) uint {
	return c.Locals("userID").(uint)
}

// statusFor maps an AppError code to its HTTP status. Unknown errors land on
// 500 so handlers never leak an unmapped failure as a success.
func statusFor(err error) int {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case "VALIDATION_ERROR", "CONFLICT":
		return fiber.StatusBadRequest
	case "UNAUTHORIZED":
		return fiber.StatusUnauthorized
	case "FORBIDDEN":
		return fiber.StatusForbidden
	case "NOT_FOUND":
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// respondErr writes err with the status derived from its code.
func respondErr(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, statusFor(err), err)
}

// fallback returns val unless it is empty, in which case prev is kept. Update
// endpoints accept partial bodies and preserve the previous record's fields.
func fallback(val, prev string) string {
	if val == "" {
		return prev
	}
	return val
}
