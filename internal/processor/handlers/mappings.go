package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"fitit-backend/internal/processor/layers"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Layer mappings
// ============================================================

// GetMappings returns the effective mapping table including user
// overrides.
func (h *ProcessorHandler) GetMappings(c fiber.Ctx) error {
	cfg, err := h.mappings.Load()
	if err != nil {
		log.Printf("[MAPPINGS] Load error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load mappings"})
	}
	return c.JSON(cfg)
}

// ExportMappings serves the config as a downloadable JSON document.
func (h *ProcessorHandler) ExportMappings(c fiber.Ctx) error {
	cfg, err := h.mappings.Load()
	if err != nil {
		log.Printf("[MAPPINGS] Load error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load mappings"})
	}

	data, err := layers.Export(cfg)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to export mappings"})
	}

	c.Set("Content-Disposition", `attachment; filename="layer_mappings.json"`)
	c.Type("json")
	return c.Send(data)
}

// UpdateMapping stores a per-layer override.
func (h *ProcessorHandler) UpdateMapping(c fiber.Ctx) error {
	// Params alias fasthttp's reusable request buffer; the name is
	// stored as a map key that outlives this request, so copy it.
	layerName := strings.Clone(c.Params("layer"))
	if layerName == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "layer name required"})
	}

	var entry layers.Entry
	if err := json.Unmarshal(c.Body(), &entry); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}
	if entry.Type == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "mapping type required"})
	}

	cfg, err := layers.UpdateOverride(h.mappings, layerName, entry)
	if err != nil {
		log.Printf("[MAPPINGS] Update error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save mapping"})
	}

	log.Printf("[MAPPINGS] Override set: %s -> %s", layerName, entry.Type)
	return c.JSON(cfg)
}

// DeleteMapping removes a per-layer override, the built-in table
// takes over again for that layer.
func (h *ProcessorHandler) DeleteMapping(c fiber.Ctx) error {
	layerName := c.Params("layer")
	if layerName == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "layer name required"})
	}

	cfg, err := layers.RemoveOverride(h.mappings, layerName)
	if err != nil {
		log.Printf("[MAPPINGS] Delete error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save mappings"})
	}

	log.Printf("[MAPPINGS] Override removed: %s", layerName)
	return c.JSON(cfg)
}

// ResetMappings restores the built-in table and drops all overrides.
func (h *ProcessorHandler) ResetMappings(c fiber.Ctx) error {
	cfg, err := layers.Reset(h.mappings)
	if err != nil {
		log.Printf("[MAPPINGS] Reset error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to reset mappings"})
	}

	log.Printf("[MAPPINGS] Reset to defaults")
	return c.JSON(cfg)
}

// ImportMappings replaces the stored config with an uploaded one.
// Missing sections fall back to the defaults.
func (h *ProcessorHandler) ImportMappings(c fiber.Ctx) error {
	if len(c.Body()) == 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "empty body"})
	}

	cfg, err := layers.Import(c.Body())
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := h.mappings.Save(cfg); err != nil {
		log.Printf("[MAPPINGS] Import error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save mappings"})
	}

	log.Printf("[MAPPINGS] Imported, %d layers, %d overrides", len(cfg.Mappings), len(cfg.UserOverrides))
	return c.JSON(cfg)
}
