package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Abraxas-365/authcore/pkg/asyncx"
	"github.com/Abraxas-365/authcore/pkg/config"
	"github.com/Abraxas-365/authcore/pkg/errx"
	"github.com/Abraxas-365/authcore/pkg/kernel"
	"github.com/Abraxas-365/authcore/pkg/logx"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// 1. Logger
	logx.SetDefaultLogger(logx.NewLogger(logx.LoadFromEnv()))
	logx.Info("🚀 Starting authcore...")

	// 2. Configuration
	cfg, err := config.Load()
	if err != nil {
		logx.Fatalf("Invalid configuration: %v", err)
	}

	// 3. Dependency container
	container := NewContainer(context.Background(), cfg)
	defer container.Cleanup()

	// 4. Fiber app
	app := fiber.New(fiber.Config{
		AppName:               "authcore",
		DisableStartupMessage: true,
		ErrorHandler:          globalErrorHandler,
		BodyLimit:             cfg.Server.BodyLimit,
		ReadTimeout:           cfg.Server.ReadTimeout,
		IdleTimeout:           120 * time.Second,
	})

	// 5. Global middleware
	app.Use(recover.New(recover.Config{
		EnableStackTrace: cfg.Server.DevMode,
	}))

	app.Use(requestid.New(requestid.Config{
		Header:    fiber.HeaderXRequestID,
		Generator: kernel.NewRequestID,
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.Server.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Refresh-Token, CSRF-Token, X-Request-ID",
		AllowMethods:  "GET, POST, HEAD, OPTIONS",
		ExposeHeaders: "X-Request-ID",
	}))

	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path} | ${ip} | ${reqHeader:X-Request-ID}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Local",
	}))

	// 6. Health
	app.Get("/health", healthCheckHandler(container))

	// 7. Routes
	container.AuthHandlers.RegisterRoutes(app)
	logx.Info("✓ Auth routes registered")

	container.AccountHandlers.RegisterRoutes(app)
	logx.Info("✓ Account routes registered")

	if cfg.Server.PublicDir != "" {
		app.Static("/", cfg.Server.PublicDir)
		logx.Infof("✓ Serving public dir %s", cfg.Server.PublicDir)
	}

	// 8. 404
	app.Use(notFoundHandler)

	// 9. Serve
	startServer(app, cfg.Server.Port)
}

// healthCheckHandler reports the database and Redis reachability.
func healthCheckHandler(container *Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		health := fiber.Map{
			"status":  "healthy",
			"service": "authcore",
		}

		names := []string{"db", "redis"}
		results := asyncx.AllSettled(ctx,
			func(ctx context.Context) (struct{}, error) {
				return struct{}{}, container.DB.PingContext(ctx)
			},
			func(ctx context.Context) (struct{}, error) {
				return struct{}{}, container.Redis.Ping(ctx).Err()
			},
		)
		for i, r := range results {
			if r.OK() {
				health[names[i]] = "healthy"
				continue
			}
			health[names[i]] = "unhealthy"
			health[names[i]+"_error"] = r.Err.Error()
			health["status"] = "degraded"
		}

		status := fiber.StatusOK
		if health["status"] == "degraded" {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(health)
	}
}

func notFoundHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error":      "Route not found",
		"code":       "NOT_FOUND",
		"path":       c.Path(),
		"method":     c.Method(),
		"request_id": c.Get(fiber.HeaderXRequestID),
	})
}

// globalErrorHandler turns errors that escape a handler into the standard
// error body.
func globalErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(errx.HTTPErrorResponse{
			Error:     fe.Message,
			Code:      "FIBER_ERROR",
			Status:    fe.Code,
			RequestID: c.Get(fiber.HeaderXRequestID),
		})
	}

	logx.WithFields(logx.Fields{
		"path":       c.Path(),
		"method":     c.Method(),
		"ip":         c.IP(),
		"request_id": c.Get(fiber.HeaderXRequestID),
	}).WithError(err).Error("Request error")

	return errx.Respond(c, err)
}

// startServer listens in the background and blocks until a shutdown signal.
func startServer(app *fiber.App, port string) {
	go func() {
		logx.Infof("🚀 Server listening on port %s", port)
		logx.Infof("💚 Health Check: http://localhost:%s/health", port)

		if err := app.Listen(":" + port); err != nil {
			logx.Fatalf("Server error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	logx.Infof("🛑 Received signal: %v", sig)

	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		logx.Errorf("Server forced to shutdown: %v", err)
	}
	logx.Info("✅ Server exited")
}
