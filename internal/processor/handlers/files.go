package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Files and storage
// ============================================================

// ListFiles returns all registered uploads, newest first.
func (h *ProcessorHandler) ListFiles(c fiber.Ctx) error {
	files, err := h.repo.ListFiles(context.Background())
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{
		"files": files,
		"count": len(files),
	})
}

// StorageStats reports upload and model counts plus disk usage.
func (h *ProcessorHandler) StorageStats(c fiber.Ctx) error {
	stats, err := h.storage.Stats()
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(stats)
}
