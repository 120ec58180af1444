package httpserver

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/and161185/contact-keeper/internal/convert"
	"github.com/and161185/contact-keeper/internal/errs"
)

const msgServerError = "Server error"

// statusFor maps an error to an HTTP status and a client-facing message.
func statusFor(err error) (int, string) {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code, fe.Message
	case errors.Is(err, errs.ErrAlreadyExists):
		return fiber.StatusBadRequest, "User with this email already exists"
	case errors.Is(err, errs.ErrUserNotFound):
		return fiber.StatusBadRequest, "User not found"
	case errors.Is(err, errs.ErrWrongPassword):
		return fiber.StatusBadRequest, "Wrong password"
	case errors.Is(err, errs.ErrInvalidCredentials):
		return fiber.StatusBadRequest, "Invalid credentials"
	case errors.Is(err, errs.ErrBadRequest):
		return fiber.StatusBadRequest, "Bad request"
	case errors.Is(err, errs.ErrUnauthorized), errors.Is(err, errs.ErrInvalidToken):
		return fiber.StatusUnauthorized, msgInvalidToken
	case errors.Is(err, errs.ErrNotFound):
		return fiber.StatusNotFound, "Contact not found"
	default:
		return fiber.StatusInternalServerError, msgServerError
	}
}

// errorHandler renders every failure as {msg} and logs server-side errors.
func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code, msg := statusFor(err)
		if code >= fiber.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}
		return c.Status(code).JSON(convert.Message{Msg: msg})
	}
}
