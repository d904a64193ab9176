package utils

import (
	"github.com/gofiber/fiber/v2"
	"github.com/projecthub/backend/pkg/apperr"
)

func Success(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

// Fail translates a kinded error into the envelope with its fixed status
// code. Internal causes are masked behind the fallback message.
func Fail(c *fiber.Ctx, err error, fallback string) error {
	return Error(c, StatusForKind(apperr.KindOf(err)), apperr.MessageOf(err, fallback))
}

func StatusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindConflict:
		return fiber.StatusConflict
	case apperr.KindForbidden:
		return fiber.StatusForbidden
	case apperr.KindUnauthenticated:
		return fiber.StatusUnauthorized
	case apperr.KindInvalidArgument:
		return fiber.StatusBadRequest
	case apperr.KindUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func Paginated(c *fiber.Ctx, data interface{}, page, limit int, total int64) error {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    data,
		"pagination": fiber.Map{
			"page":       page,
			"limit":      limit,
			"total":      total,
			"totalPages": totalPages,
		},
	})
}
