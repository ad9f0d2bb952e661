package errors

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidEmail       = errors.New("It must be a valid email address.")
	ErrInvalidPhone       = errors.New("It must be a valid phone number.")
	ErrUserExists         = errors.New("User already exists. Please select Login authentication type.")
	ErrSignUpRoleMissing  = errors.New("Sign Up Role not configured.")
	ErrSignUpRoleNotFound = errors.New("Sign Up Role not found.")
	ErrUserNotRegistered  = errors.New("User doesn't exist. Please Sign up First.")
	ErrUserNotFound       = errors.New("User not found")
	ErrInvalidOTP         = errors.New("Invalid or expired OTP.")
	ErrDeliveryFailed     = errors.New("Failed to deliver OTP.")
)

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func respond(c *fiber.Ctx, code int, message string) error {
	return c.Status(code).JSON(ErrorResponse{Code: code, Message: message})
}

var badRequest = []error{
	ErrInvalidEmail,
	ErrInvalidPhone,
	ErrUserExists,
	ErrSignUpRoleMissing,
	ErrSignUpRoleNotFound,
	ErrInvalidOTP,
}

func HandleServiceError(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return respond(c, http.StatusBadRequest, validationMessage(verrs))
	}
	for _, sentinel := range badRequest {
		if errors.Is(err, sentinel) {
			return respond(c, http.StatusBadRequest, sentinel.Error())
		}
	}

	switch {
	case errors.Is(err, ErrUserNotRegistered):
		return respond(c, http.StatusNotFound, ErrUserNotRegistered.Error())
	case errors.Is(err, ErrUserNotFound):
		return respond(c, http.StatusNotFound, ErrUserNotFound.Error())
	case errors.Is(err, ErrDeliveryFailed):
		return respond(c, http.StatusBadGateway, ErrDeliveryFailed.Error())
	default:
		return respond(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

func HandleValidationError(c *fiber.Ctx, message string) error {
	return respond(c, http.StatusBadRequest, message)
}

func validationMessage(verrs validator.ValidationErrors) string {
	for _, fe := range verrs {
		switch fe.Tag() {
		case "email":
			return ErrInvalidEmail.Error()
		case "e164":
			return ErrInvalidPhone.Error()
		}
	}
	return "Invalid request: " + verrs.Error()
}
