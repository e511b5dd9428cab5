package main

import (
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/slotbook/slot-booking-service/config"
	"github.com/slotbook/slot-booking-service/internal/dto"
	"github.com/slotbook/slot-booking-service/internal/handler"
	"github.com/slotbook/slot-booking-service/internal/middleware"
	"github.com/slotbook/slot-booking-service/internal/repository"
	"github.com/slotbook/slot-booking-service/internal/service"
	"github.com/slotbook/slot-booking-service/pkg/database"
	"github.com/slotbook/slot-booking-service/pkg/logger"
	"github.com/slotbook/slot-booking-service/pkg/rabbitmq"
	"golang.org/x/time/rate"
)

func main() {
	cfg := config.Load()
	zl := logger.New(cfg.Env, cfg.LogLevel)

	db := database.NewPostgresDB(cfg.DSN())

	// RabbitMQ is optional: without a broker the services simply skip
	// publishing lifecycle events.
	var publisher *rabbitmq.Publisher
	if cfg.RabbitURL != "" {
		var err error
		publisher, err = rabbitmq.NewPublisher(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	slotRepo := repository.NewSlotRepository(db)
	bookingRepo := repository.NewBookingRepository(db)

	// Services
	userSvc := service.NewUserService(userRepo)
	slotSvc := service.NewSlotService(slotRepo, bookingRepo, publisher)
	bookingSvc := service.NewBookingService(bookingRepo, slotRepo, publisher)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.Validator = dto.NewValidator()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			zl.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Msg("request")
			return nil
		},
	}))
	e.Use(echoMw.Recover())
	e.Use(echoMw.RateLimiterWithConfig(echoMw.RateLimiterConfig{
		Store: echoMw.NewRateLimiterMemoryStoreWithConfig(echoMw.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(cfg.RateLimit),
			Burst:     cfg.RateLimitBurst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			if id := c.Request().Header.Get("X-User-Id"); id != "" {
				return id, nil
			}
			return c.RealIP(), nil
		},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": "slot-booking-service"})
	})

	auth := middleware.Auth(userRepo)
	handler.NewUserHandler(userSvc).RegisterRoutes(e)
	handler.NewSlotHandler(slotSvc).RegisterRoutes(e, auth)
	handler.NewBookingHandler(bookingSvc).RegisterRoutes(e, auth)

	zl.Info().Str("port", cfg.ServerPort).Msg("slot booking service starting")
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
