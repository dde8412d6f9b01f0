package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"admissions-be/internal/apperror"
)

// ErrorHandlerMiddleware converts domain errors returned by controllers into
// the response envelope, mapping the error taxonomy onto HTTP statuses.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		status := fiber.StatusInternalServerError
		message := "Internal server error"

		var authErr *apperror.AuthorizationError
		var valErr *apperror.ValidationError
		var cfgErr *apperror.MissingConfigurationError
		var conflictErr *apperror.ConflictError
		var notFoundErr *apperror.NotFoundError
		var timeoutErr *apperror.TimeoutError
		var execErr *apperror.ExecutionFailure
		var persistErr *apperror.PersistenceError
		var fiberErr *fiber.Error

		switch {
		case errors.As(err, &authErr):
			status = fiber.StatusForbidden
			message = authErr.Error()
		case errors.As(err, &valErr):
			status = fiber.StatusBadRequest
			message = valErr.Error()
		case errors.As(err, &cfgErr):
			status = fiber.StatusUnprocessableEntity
			message = cfgErr.Error()
		case errors.As(err, &conflictErr):
			status = fiber.StatusConflict
			message = conflictErr.Error()
		case errors.As(err, &notFoundErr):
			status = fiber.StatusNotFound
			message = notFoundErr.Error()
		case errors.As(err, &timeoutErr):
			status = fiber.StatusGatewayTimeout
			message = timeoutErr.Error()
		case errors.As(err, &execErr):
			status = fiber.StatusBadGateway
			message = execErr.Error()
		case errors.As(err, &persistErr):
			status = fiber.StatusInternalServerError
			message = "A storage error occurred"
		case errors.As(err, &fiberErr):
			status = fiberErr.Code
			message = fiberErr.Message
		}

		return ctx.Status(status).JSON(ErrorResponse(message))
	}
}
