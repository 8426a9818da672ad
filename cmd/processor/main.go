package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"fitit-backend/internal/common/config"
	"fitit-backend/internal/common/middleware"
	"fitit-backend/internal/events"
	"fitit-backend/internal/processor/handlers"
	"fitit-backend/internal/processor/layers"
	"fitit-backend/internal/processor/mapper"
	"fitit-backend/internal/processor/repository"
	"fitit-backend/internal/processor/service"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// ============================================================
// Processor Service
// ============================================================

func main() {
	cfg := config.Load()
	if os.Getenv("PORT") == "" {
		cfg.Port = "3001"
	}

	dbPath := getenv("PROCESSOR_DB_PATH", "data/db/processor.db")
	db, err := repository.OpenSQLite(dbPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	repo := repository.New(db)
	if err := repo.Init(context.Background(), "migrations/001_init_processor.sql"); err != nil {
		log.Fatalf("init db: %v", err)
	}

	defaults, err := service.LoadDefaults(getenv("PROCESSING_DEFAULTS", "config/processing.yaml"))
	if err != nil {
		log.Printf("[PROCESSOR] Defaults file unavailable, using built-ins: %v", err)
		defaults = service.BuiltinDefaults()
	}

	mappings := layers.NewFileStore(getenv("LAYER_MAPPINGS_PATH", "data/layer_mappings.json"))
	processor := mapper.NewProcessor(defaults.Geometry, mappings)
	storage := service.NewFileStorage(getenv("STORAGE_ROOT", "data/storage"))

	publisher := events.NewPublisher(getenv("KAFKA_BOOTSTRAP_SERVERS", ""), getenv("KAFKA_TOPIC", "processor.jobs"))
	defer publisher.Close()

	manager := service.NewJobManager(repo, storage, processor, publisher)
	h := handlers.NewProcessorHandler(repo, storage, manager, processor, mappings, defaults)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		BodyLimit:    cfg.BodyLimit(),
		AppName:      "Processor Service",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger())

	// ============================================================
	// Health Check Routes
	// ============================================================

	app.Get("/health/live", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})

	app.Get("/health/ready", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ready"})
	})

	// ============================================================
	// Processing Routes
	// ============================================================

	app.Post("/process", h.Process)
	app.Post("/upload", h.Upload)
	app.Get("/jobs", h.ListJobs)
	app.Get("/jobs/:id", h.GetJob)
	app.Get("/models/:id", h.GetModel)
	app.Get("/models/:id/preview", h.GetPreview)
	app.Get("/files", h.ListFiles)
	app.Get("/storage/stats", h.StorageStats)

	// ============================================================
	// Layer Mapping Routes
	// ============================================================

	app.Get("/layer-mappings", h.GetMappings)
	app.Get("/layer-mappings/export", h.ExportMappings)
	app.Post("/layer-mappings/import", h.ImportMappings)
	app.Put("/layer-mappings/:layer", h.UpdateMapping)
	app.Delete("/layer-mappings/:layer", h.DeleteMapping)
	app.Delete("/layer-mappings", h.ResetMappings)

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting Processor Service on %s (env: %s)", addr, cfg.Environment)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func getenv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}
