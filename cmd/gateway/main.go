package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"fitit-backend/internal/common/config"
	"fitit-backend/internal/common/middleware"
	"fitit-backend/internal/gateway/handlers"
	"fitit-backend/internal/gateway/proxy"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// ============================================================
// API Gateway
// ============================================================

func main() {
	cfg := config.Load()

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		BodyLimit:    cfg.BodyLimit(),
		AppName:      "API Gateway",
	})

	processorURL := getEnv("PROCESSOR_URL", "http://localhost:3001")

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS())

	// ============================================================
	// Health Check Routes
	// ============================================================

	app.Get("/health/live", handlers.LivenessProbe)
	app.Get("/health/ready", handlers.ReadinessProbe(processorURL))
	app.Get("/health/startup", handlers.StartupProbe)

	// ============================================================
	// Docs Routes
	// ============================================================

	app.Get("/docs", handlers.SwaggerUI)
	app.Get("/docs/openapi.yaml", handlers.SwaggerSpec)

	// ============================================================
	// API Routes
	// ============================================================

	api := app.Group("/api/v1")

	api.Get("/", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Floor Plan API v1",
			"status":  "ok",
		})
	})

	// ============================================================
	// Processor Routes (Proxy)
	// ============================================================

	processor := proxy.New(processorURL)

	api.Post("/process", processor.To("/process"))
	api.Post("/upload", processor.To("/upload"))

	api.Get("/jobs", processor.To("/jobs"))
	api.Get("/jobs/:id", func(c fiber.Ctx) error {
		return processor.Relay(c, "/jobs/"+c.Params("id"))
	})

	api.Get("/models/:id", func(c fiber.Ctx) error {
		return processor.Relay(c, "/models/"+c.Params("id"))
	})
	api.Get("/models/:id/preview", func(c fiber.Ctx) error {
		return processor.Relay(c, "/models/"+c.Params("id")+"/preview")
	})

	api.Get("/files", processor.To("/files"))
	api.Get("/storage/stats", processor.To("/storage/stats"))

	api.Get("/layer-mappings", processor.To("/layer-mappings"))
	api.Get("/layer-mappings/export", processor.To("/layer-mappings/export"))
	api.Post("/layer-mappings/import", processor.To("/layer-mappings/import"))
	api.Put("/layer-mappings/:layer", func(c fiber.Ctx) error {
		return processor.Relay(c, "/layer-mappings/"+c.Params("layer"))
	})
	api.Delete("/layer-mappings/:layer", func(c fiber.Ctx) error {
		return processor.Relay(c, "/layer-mappings/"+c.Params("layer"))
	})
	api.Delete("/layer-mappings", processor.To("/layer-mappings"))

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting API Gateway on %s (env: %s)", addr, cfg.Environment)
	log.Printf("Proxying /api/v1 to %s", processorURL)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}
