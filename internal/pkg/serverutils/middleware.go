package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"heystack-be/internal/pkg/logger"
)

const (
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = "request_id"
)

// ErrorHandlerMiddleware turns errors returned by handlers into ErrorResponse
// JSON. Validation errors become 400, fiber errors keep their code, anything
// else is a 500.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var ve *ValidationError
		if errors.As(err, &ve) {
			res := ErrorResponse(fiber.StatusBadRequest, "Validation failed")
			res.Errors = ve.Fields
			return ctx.Status(fiber.StatusBadRequest).JSON(res)
		}

		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}

		if code >= fiber.StatusInternalServerError {
			log.Error(logger.ModuleHTTP, "Request failed", map[string]interface{}{
				"path":       ctx.Path(),
				"method":     ctx.Method(),
				"request_id": RequestID(ctx),
				"error":      err.Error(),
			})
		}

		return ctx.Status(code).JSON(ErrorResponse(code, err.Error()))
	}
}

// RequestIDMiddleware reuses the caller's X-Request-ID or issues a new one
func RequestIDMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id := ctx.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		ctx.Locals(RequestIDKey, id)
		ctx.Set(RequestIDHeader, id)
		return ctx.Next()
	}
}

func RequestID(ctx *fiber.Ctx) string {
	id, _ := ctx.Locals(RequestIDKey).(string)
	return id
}
