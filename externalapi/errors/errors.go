package errors

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var (
	ErrInvalidURL         = errors.New("Invalid Url entered")
	ErrInvalidContentType = errors.New("Invalid Content Type")
	ErrInvalidBody        = errors.New("Request body could not be encoded")
	ErrUpstream           = errors.New("External API call failed")
)

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func respond(c *fiber.Ctx, code int, message string) error {
	return c.Status(code).JSON(ErrorResponse{Code: code, Message: message})
}

func HandleServiceError(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return respond(c, http.StatusBadRequest, "Invalid request: "+verrs.Error())
	case errors.Is(err, ErrInvalidURL):
		return respond(c, http.StatusBadRequest, ErrInvalidURL.Error())
	case errors.Is(err, ErrInvalidBody):
		return respond(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrUpstream):
		return respond(c, http.StatusBadGateway, ErrUpstream.Error())
	default:
		return respond(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

func HandleValidationError(c *fiber.Ctx, message string) error {
	return respond(c, http.StatusBadRequest, message)
}
