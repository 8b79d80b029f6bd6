package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/goserg/rolegate/internal/auth/service"
)

const (
	msgInternal       = "internal server error"
	msgBadBody        = "invalid request body"
	msgNotImplemented = "not implemented"
	msgUnauthorized   = "invalid or missing credentials"
	msgForbidden      = "access denied"
)

type messageResponse struct {
	Message string `json:"message"`
}

// apiError is returned by handlers and rendered by Server.errorHandler.
// Message is sent to the client, cause is only logged.
type apiError struct {
	Code    int
	Message string
	cause   error
}

func newAPIError(code int, message string, cause error) *apiError {
	return &apiError{Code: code, Message: message, cause: cause}
}

func (e *apiError) Error() string {
	if e.cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.cause.Error()
}

func (e *apiError) Unwrap() error {
	return e.cause
}

// serviceError converts an auth service error into an apiError.
// storeMessage is the client-facing message for persistence failures.
func serviceError(err error, storeMessage string) *apiError {
	var validationErr *service.ValidationError
	var storeErr *service.StoreError
	switch {
	case errors.As(err, &validationErr):
		return newAPIError(fiber.StatusBadRequest, validationErr.Reason, err)
	case errors.Is(err, service.ErrInvalidCredentials):
		return newAPIError(fiber.StatusUnauthorized, service.ErrInvalidCredentials.Error(), err)
	case errors.As(err, &storeErr):
		return newAPIError(fiber.StatusInternalServerError, storeMessage, err)
	default:
		return newAPIError(fiber.StatusInternalServerError, msgInternal, err)
	}
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var apiErr *apiError
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &apiErr):
		if apiErr.Code >= fiber.StatusInternalServerError {
			s.log.WithError(err).WithField("path", c.Path()).Error("request failed")
		}
		return c.Status(apiErr.Code).JSON(messageResponse{Message: apiErr.Message})
	case errors.As(err, &fiberErr):
		return c.Status(fiberErr.Code).JSON(messageResponse{Message: fiberErr.Message})
	default:
		s.log.WithError(err).WithField("path", c.Path()).Error("unhandled error")
		return c.Status(fiber.StatusInternalServerError).JSON(messageResponse{Message: msgInternal})
	}
}
