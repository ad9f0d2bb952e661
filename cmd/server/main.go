package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/drapcode/exchange-engine/externalapi"
	externalHandlers "github.com/drapcode/exchange-engine/externalapi/handlers"
	externalServices "github.com/drapcode/exchange-engine/externalapi/services"
	"github.com/drapcode/exchange-engine/finder"
	finderHandlers "github.com/drapcode/exchange-engine/finder/handlers"
	finderServices "github.com/drapcode/exchange-engine/finder/services"
	"github.com/drapcode/exchange-engine/internal/auth/tokens"
	"github.com/drapcode/exchange-engine/internal/middleware/requestid"
	platform "github.com/drapcode/exchange-engine/internal/platform"
	platformconfig "github.com/drapcode/exchange-engine/internal/platform/config"
	"github.com/drapcode/exchange-engine/otp"
	otpHandlers "github.com/drapcode/exchange-engine/otp/handlers"
	otpServices "github.com/drapcode/exchange-engine/otp/services"
	usersRepository "github.com/drapcode/exchange-engine/users/repository"
)

func main() {
	cfg, err := platformconfig.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load platform config: %v", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			log.Printf("[ErrorHandler] Path: %s, Error: %v, Code: %d", c.Path(), err, code)

			// If response already set by handler, don't override it
			if len(c.Response().Body()) > 0 {
				return nil
			}

			return c.Status(code).JSON(fiber.Map{
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.WebDomain,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Timezone, X-Date-Format, X-Request-ID",
		AllowMethods:     "GET, POST, PUT, DELETE, PATCH, OPTIONS",
	}))

	ctx := context.Background()
	baseService, err := platform.NewBaseService(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create base service: %v", err)
	}

	verifier, err := tokens.NewVerifier(cfg.JWT.PublicKey)
	if err != nil {
		log.Fatalf("Failed to create token verifier: %v", err)
	}

	usersRepo := usersRepository.NewMongoRepository(baseService.Mongo, usersRepository.Collections{
		Users:        cfg.OTP.UserCollection,
		Tenants:      cfg.OTP.TenantCollection,
		UserSettings: cfg.OTP.SettingCollection,
		Roles:        cfg.OTP.RoleCollection,
	})

	finderService := finderServices.NewService(finderServices.Dependencies{
		Collections: baseService.Collections,
		Users:       usersRepo,
		Auth:        finderServices.NewAuthenticator(verifier, usersRepo),
		Executor:    finderServices.NewExecutor(baseService.Mongo),
	}, finderServices.Config{
		MaxNestingDepth: cfg.Query.MaxNestingDepth,
		NestedTimeout:   cfg.Query.NestedTimeout,
		DefaultMax:      cfg.Query.DefaultMax,
	})
	finder.RegisterRoutes(app, &finder.Handlers{
		FinderHandler: finderHandlers.NewFinderHandler(finderService),
	})

	otpService := otpServices.NewService(usersRepo, baseService.Email, baseService.SMS, otpServices.Config{
		Length:          cfg.OTP.Length,
		Expiry:          cfg.OTP.Expiry,
		DefaultRole:     cfg.OTP.DefaultRole,
		TokenExpiry:     cfg.OTP.TokenExpiry,
		EmailFrom:       cfg.Email.SMTPEmail,
		EmailSubject:    cfg.OTP.EmailSubject,
		MessageTemplate: cfg.OTP.MessageTemplate,
		PrivateKey:      cfg.JWT.PrivateKey,
		KeyID:           cfg.JWT.KeyID,
	})
	otp.RegisterRoutes(app, &otp.Handlers{
		OTPHandler: otpHandlers.NewOTPHandler(otpService),
	}, cfg)

	externalService := externalServices.NewService(cfg.External.Timeout)
	externalapi.RegisterRoutes(app, &externalapi.Handlers{
		ExternalHandler: externalHandlers.NewExternalHandler(externalService),
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		hctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()
		health := baseService.Health(hctx)
		if health.Error != "" {
			return c.Status(fiber.StatusServiceUnavailable).JSON(health)
		}
		return c.JSON(health)
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down exchange engine")
		if err := app.Shutdown(); err != nil {
			log.Printf("Server shutdown: %v", err)
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Starting exchange engine (finder + otp + external api) on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Printf("Server stopped: %v", err)
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	baseService.Close(closeCtx)
}
