package serverutils

import (
	"errors"

	"site-assistant-be/internal/apperror"
	"site-assistant-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// NewErrorHandler maps application errors onto HTTP statuses for the
// non-streaming endpoints. Streaming endpoints never reach this: the
// orchestrator converts faults into protocol events instead.
func NewErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			status := statusForKind(appErr.Kind)
			if status >= 500 {
				log.Error("http", "request failed", map[string]interface{}{
					"path":  ctx.Path(),
					"error": appErr.Error(),
				})
				return ctx.Status(status).JSON(ErrorResponse(status, "internal server error"))
			}
			return ctx.Status(status).JSON(ErrorResponse(status, appErr.Message))
		}

		log.Error("http", "unhandled error", map[string]interface{}{
			"path":  ctx.Path(),
			"error": err.Error(),
		})
		return ctx.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse(fiber.StatusInternalServerError, "internal server error"))
	}
}

func statusForKind(kind apperror.Kind) int {
	switch kind {
	case apperror.KindRateLimit:
		return fiber.StatusTooManyRequests
	case apperror.KindRetrieval, apperror.KindIngestion:
		return fiber.StatusUnprocessableEntity
	case apperror.KindStorage, apperror.KindDatabase, apperror.KindEmbedding, apperror.KindConfiguration:
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusInternalServerError
	}
}
