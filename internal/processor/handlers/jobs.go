package handlers

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"fitit-backend/internal/processor/models"
	"fitit-backend/internal/processor/repository"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// ============================================================
// Upload and jobs
// ============================================================

// Upload stores the plan file, registers it and queues an
// asynchronous processing job. Responds 202 with the queued job.
func (h *ProcessorHandler) Upload(c fiber.Ctx) error {
	log.Printf("[PROCESSOR] Upload request")

	file, err := c.FormFile("file")
	if err != nil {
		log.Printf("[PROCESSOR] FormFile error: %v", err)
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "file required in multipart/form-data",
		})
	}

	log.Printf("[PROCESSOR] File received: %s, size: %d", file.Filename, file.Size)

	f, err := file.Open()
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to open file"})
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read file"})
	}

	record := &models.FileRecord{
		ID:        uuid.New().String(),
		Filename:  file.Filename,
		SizeBytes: int64(len(data)),
		SHA256:    fmt.Sprintf("%x", sha256.Sum256(data)),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	path, err := h.storage.SaveUpload(record.ID, file.Filename, data)
	if err != nil {
		log.Printf("[PROCESSOR] Save error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to store file"})
	}
	record.Path = path

	if err := h.repo.CreateFile(context.Background(), record); err != nil {
		log.Printf("[PROCESSOR] CreateFile error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to register file"})
	}

	job, err := h.manager.Submit(context.Background(), record, data, nil)
	if err != nil {
		log.Printf("[PROCESSOR] Submit error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to queue job"})
	}

	return c.Status(http.StatusAccepted).JSON(fiber.Map{
		"file": record,
		"job":  job,
	})
}

// GetJob returns the current state of one job.
func (h *ProcessorHandler) GetJob(c fiber.Ctx) error {
	id := c.Params("id")

	job, err := h.repo.GetJob(context.Background(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "job not found"})
		}
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(job)
}

// ListJobs returns recent jobs, newest first.
func (h *ProcessorHandler) ListJobs(c fiber.Ctx) error {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	jobs, err := h.repo.ListJobs(context.Background(), limit)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

// GetModel serves the stored building model for a completed job.
func (h *ProcessorHandler) GetModel(c fiber.Ctx) error {
	job, errResp := h.completedJob(c)
	if job == nil {
		return errResp
	}

	c.Set("Content-Type", "application/json")
	return c.SendFile(h.storage.ModelPath(job.ID))
}

// GetPreview serves the SVG plan preview for a completed job.
func (h *ProcessorHandler) GetPreview(c fiber.Ctx) error {
	job, errResp := h.completedJob(c)
	if job == nil {
		return errResp
	}

	path := h.storage.PreviewPath(job.ID)
	if _, err := os.Stat(path); err != nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "preview not available"})
	}

	c.Set("Content-Type", "image/svg+xml")
	return c.SendFile(path)
}

// completedJob loads the job from the path parameter and rejects
// anything not finished yet. Returns a nil job with the response
// already written on rejection.
func (h *ProcessorHandler) completedJob(c fiber.Ctx) (*models.Job, error) {
	id := c.Params("id")

	job, err := h.repo.GetJob(context.Background(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "job not found"})
		}
		return nil, c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if job.Status != models.JobCompleted {
		return nil, c.Status(http.StatusConflict).JSON(fiber.Map{
			"error":  "job not completed",
			"status": job.Status,
		})
	}
	return job, nil
}
