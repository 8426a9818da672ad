package handlers

import (
	"io"
	"log"
	"net/http"
	"strings"

	"fitit-backend/internal/processor/layers"
	"fitit-backend/internal/processor/mapper"
	"fitit-backend/internal/processor/parser"
	"fitit-backend/internal/processor/repository"
	"fitit-backend/internal/processor/service"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Processor Handler
// ============================================================

type ProcessorHandler struct {
	repo      *repository.Repository
	storage   *service.FileStorage
	manager   *service.JobManager
	processor *mapper.Processor
	mappings  layers.Store
	defaults  *service.ProcessingDefaults
}

func NewProcessorHandler(repo *repository.Repository, storage *service.FileStorage, manager *service.JobManager, processor *mapper.Processor, mappings layers.Store, defaults *service.ProcessingDefaults) *ProcessorHandler {
	return &ProcessorHandler{
		repo:      repo,
		storage:   storage,
		manager:   manager,
		processor: processor,
		mappings:  mappings,
		defaults:  defaults,
	}
}

// Process interprets an entity stream synchronously and returns the
// building model without persisting anything. Accepts either a raw
// JSON body or a multipart upload under "file".
func (h *ProcessorHandler) Process(c fiber.Ctx) error {
	log.Printf("[PROCESSOR] Process request")
	log.Printf("[PROCESSOR] Content-Type: %s", c.Get("Content-Type"))
	log.Printf("[PROCESSOR] Content-Length: %d", len(c.Body()))

	data, errResp := h.documentBody(c)
	if data == nil {
		return errResp
	}

	entities, params, err := parser.ParseDocument(data)
	if err != nil {
		log.Printf("[PROCESSOR] Parse error: %v", err)
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if params == nil {
		fallback := h.defaults.Parameters
		params = &fallback
	}

	model := h.processor.Process(entities, params)
	log.Printf("[PROCESSOR] Processed %d entities into %d elements", len(entities), model.Stats.ElementCount)
	return c.JSON(model)
}

// documentBody extracts the entity document from the request, either
// the multipart "file" part or the raw body. Returns nil with the
// error response already written when there is nothing to parse.
func (h *ProcessorHandler) documentBody(c fiber.Ctx) ([]byte, error) {
	if strings.HasPrefix(c.Get("Content-Type"), "multipart/form-data") {
		file, err := c.FormFile("file")
		if err != nil {
			return nil, c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "file required in multipart/form-data"})
		}
		f, err := file.Open()
		if err != nil {
			return nil, c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to open file"})
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return nil, c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read file"})
		}
		return data, nil
	}

	if len(c.Body()) == 0 {
		return nil, c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "empty body"})
	}
	return c.Body(), nil
}
