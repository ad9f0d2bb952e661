package otp

import (
	"github.com/gofiber/fiber/v2"

	"github.com/drapcode/exchange-engine/internal/middleware/ratelimit"
	platformconfig "github.com/drapcode/exchange-engine/internal/platform/config"
	"github.com/drapcode/exchange-engine/otp/handlers"
)

type Handlers struct {
	OTPHandler *handlers.OTPHandler
}

// RegisterRoutes wires the OTP endpoints behind per-IP rate limits.
func RegisterRoutes(app *fiber.App, handlers *Handlers, cfg *platformconfig.Config) {
	generateLimit := ratelimit.New(ratelimit.FromSettings("OTP generation", cfg.RateLimits.OTPGenerate))
	verifyLimit := ratelimit.New(ratelimit.FromSettings("OTP verification", cfg.RateLimits.OTPVerify))

	group := app.Group("/projects/:projectId/otp")

	group.Post("/email", generateLimit, handlers.OTPHandler.GenerateEmail)
	group.Post("/sms", generateLimit, handlers.OTPHandler.GenerateSms)
	group.Post("/email/verify", verifyLimit, handlers.OTPHandler.VerifyEmail)
	group.Post("/sms/verify", verifyLimit, handlers.OTPHandler.VerifySms)
}
