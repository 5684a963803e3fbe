package handlers

import (
	"errors"
	"strconv"
	"strings"

	"pitwall/internal/types"
	"pitwall/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

var statusBySentinel = []struct {
	err    error
	status int
}{
	{types.ErrValidation, fiber.StatusBadRequest},
	{types.ErrInvalidOperation, fiber.StatusBadRequest},
	{types.ErrUnauthenticated, fiber.StatusUnauthorized},
	{types.ErrForbidden, fiber.StatusForbidden},
	{types.ErrNotFound, fiber.StatusNotFound},
	{types.ErrConflict, fiber.StatusConflict},
}

// writeError maps err onto a status and JSON body. Anything unclassified is a
// 500 carrying fallback instead of the internal message.
func writeError(c *fiber.Ctx, log logger.Logger, err error, fallback string) error {
	var fieldErrors *types.FieldErrors
	if errors.As(err, &fieldErrors) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": fieldErrors.Error(),
			"errors":  fieldErrors.Fields,
		})
	}

	for _, candidate := range statusBySentinel {
		if errors.Is(err, candidate.err) {
			return c.Status(candidate.status).JSON(fiber.Map{
				"message": publicMessage(err, candidate.err),
			})
		}
	}

	log.Er(fallback, err, "path", c.Path(), "method", c.Method())
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": fallback,
	})
}

// publicMessage drops the "sentinel: " prefix added by ErrorWithType
func publicMessage(err, sentinel error) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
	if msg == "" {
		return sentinel.Error()
	}
	return msg
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": message})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": "Authentication required",
	})
}

// intParam parses a positive integer path parameter
func intParam(c *fiber.Ctx, name string) (int, bool) {
	value, err := strconv.Atoi(c.Params(name))
	if err != nil || value <= 0 {
		return 0, false
	}
	return value, true
}
