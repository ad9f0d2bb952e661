package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/drapcode/exchange-engine/otp/errors"
	"github.com/drapcode/exchange-engine/otp/models"
	"github.com/drapcode/exchange-engine/otp/services"
)

type OTPHandler struct {
	service services.Service
}

func NewOTPHandler(service services.Service) *OTPHandler {
	return &OTPHandler{service: service}
}

// GenerateEmail sends a login or sign-up code by email.
// Endpoint: POST /projects/:projectId/otp/email
func (h *OTPHandler) GenerateEmail(c *fiber.Ctx) error {
	var req models.GenerateEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.HandleValidationError(c, "Invalid request body")
	}
	resp, err := h.service.GenerateEmailOTP(c.UserContext(), c.Params("projectId"), req)
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.Status(http.StatusOK).JSON(resp)
}

// GenerateSms sends a login or sign-up code by text message.
// Endpoint: POST /projects/:projectId/otp/sms
func (h *OTPHandler) GenerateSms(c *fiber.Ctx) error {
	var req models.GenerateSMSRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.HandleValidationError(c, "Invalid request body")
	}
	resp, err := h.service.GenerateSmsOTP(c.UserContext(), c.Params("projectId"), req)
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.Status(http.StatusOK).JSON(resp)
}

// VerifyEmail exchanges an email code for a login token.
// Endpoint: POST /projects/:projectId/otp/email/verify
func (h *OTPHandler) VerifyEmail(c *fiber.Ctx) error {
	var req models.VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.HandleValidationError(c, "Invalid request body")
	}
	resp, err := h.service.VerifyEmailOTP(c.UserContext(), c.Params("projectId"), req)
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"code": http.StatusOK, "message": "OTP Verified Successfully", "data": resp})
}

// VerifySms exchanges a text message code for a login token.
// Endpoint: POST /projects/:projectId/otp/sms/verify
func (h *OTPHandler) VerifySms(c *fiber.Ctx) error {
	var req models.VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.HandleValidationError(c, "Invalid request body")
	}
	resp, err := h.service.VerifySmsOTP(c.UserContext(), c.Params("projectId"), req)
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"code": http.StatusOK, "message": "OTP Verified Successfully", "data": resp})
}
