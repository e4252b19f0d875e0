package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pgokul695/Winterthon/internal/questiongen"
)

// Success writes a 200 envelope around data.
func Success(c *fiber.Ctx, message string, data any) error {
	return SuccessWithCode(c, fiber.StatusOK, message, data)
}

// SuccessWithCode writes an envelope with a custom status code.
func SuccessWithCode(c *fiber.Ctx, code int, message string, data any) error {
	return c.Status(code).JSON(fiber.Map{
		"code":    code,
		"status":  "success",
		"message": message,
		"data":    data,
	})
}

// Error writes an error envelope.
func Error(c *fiber.Ctx, code int, message string) error {
	return c.Status(code).JSON(fiber.Map{
		"code":    code,
		"status":  "error",
		"message": message,
	})
}

// ErrorWithDetails writes an error envelope with per-field details.
func ErrorWithDetails(c *fiber.Ctx, code int, message string, errors any) error {
	return c.Status(code).JSON(fiber.Map{
		"code":    code,
		"status":  "error",
		"message": message,
		"errors":  errors,
	})
}

// ValidationError reports a rejected batch request as a 400.
func ValidationError(c *fiber.Ctx, err *questiongen.InvalidRequestError) error {
	return ErrorWithDetails(c, fiber.StatusBadRequest, "invalid request", err.Fields)
}
