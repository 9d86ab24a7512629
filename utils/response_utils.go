package utils

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"fitvod/api-gateway/internal/apperrors"
)

// ErrorBody is the uniform error payload:
// {"error": {"code": "...", "message": "...", "details": {...}}}.
type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// RespondWithError sends the uniform error envelope.
func RespondWithError(c *fiber.Ctx, statusCode int, code apperrors.Code, message string, details map[string]string) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"error": ErrorBody{Code: string(code), Message: message, Details: details},
	})
}

// RespondWithJSON sends a JSON success envelope {"data": ...}.
func RespondWithJSON(c *fiber.Ctx, statusCode int, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{"data": data})
}

// RespondWithAppError maps a typed error from the core onto the HTTP status
// table and the uniform envelope. Unexpected errors collapse into a generic
// 500 so backend detail never leaks to the client.
func RespondWithAppError(c *fiber.Ctx, err error) error {
	var ae *apperrors.AppError
	if !errors.As(err, &ae) {
		return RespondWithError(c, fiber.StatusInternalServerError, apperrors.CodeInternal, "An unexpected error occurred", nil)
	}
	return RespondWithError(c, StatusForCode(ae.Code), ae.Code, ae.Message, ae.Details)
}

// StatusForCode is the fixed error-code to HTTP-status table.
func StatusForCode(code apperrors.Code) int {
	switch code {
	case apperrors.CodeValidation, apperrors.CodeInvalidInput:
		return fiber.StatusBadRequest
	case apperrors.CodeUnauthorized:
		return fiber.StatusUnauthorized
	case apperrors.CodeForbidden, apperrors.CodeAccessDenied, apperrors.CodePremiumRequired:
		return fiber.StatusForbidden
	case apperrors.CodeNotFound:
		return fiber.StatusNotFound
	case apperrors.CodeConflict:
		return fiber.StatusConflict
	}
	// NETWORK_ERROR, TIMEOUT, INVALID_URL and anything unclassified are
	// server-side failures from the client's point of view.
	return fiber.StatusInternalServerError
}

// FormatValidationErrors flattens validator/v10 errors into the per-field
// details map of the uniform envelope.
func FormatValidationErrors(err error) map[string]string {
	details := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			msg := fmt.Sprintf("failed on the '%s' rule", fe.Tag())
			if fe.Param() != "" {
				msg = fmt.Sprintf("%s (%s)", msg, fe.Param())
			}
			details[fe.Field()] = msg
		}
	}
	return details
}
