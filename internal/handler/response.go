package handler

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/simonesiega/studyWS/internal/apperr"
)

func dataResponse(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// ErrorHandler is the single point where error kinds become HTTP statuses
// and the uniform error envelope. Internal detail is logged, never sent.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"success": false,
			"error": fiber.Map{
				"code":    apperr.CodeForStatus(fiberErr.Code),
				"message": fiberErr.Message,
			},
		})
	}

	appErr := apperr.From(err)
	if appErr.Kind == apperr.KindInternal {
		log.Printf("[%s] %s - internal error: %v", c.Method(), c.Path(), err)
	}

	return c.Status(appErr.HTTPStatus()).JSON(fiber.Map{
		"success": false,
		"error": fiber.Map{
			"code":    appErr.Code(),
			"message": appErr.Message,
		},
	})
}
