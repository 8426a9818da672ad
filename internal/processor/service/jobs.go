package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"fitit-backend/internal/events"
	"fitit-backend/internal/processor/mapper"
	"fitit-backend/internal/processor/models"
	"fitit-backend/internal/processor/parser"
	"fitit-backend/internal/processor/repository"
)

// ============================================================
// Job manager
// ============================================================

// JobManager drives asynchronous plan processing. Submit records a
// queued job and returns immediately, a background goroutine runs
// the pipeline and moves the job through its lifecycle. Every state
// transition is persisted and published as an event.
type JobManager struct {
	repo      *repository.Repository
	storage   *FileStorage
	processor *mapper.Processor
	renderer  *mapper.Renderer
	events    events.Publisher
}

func NewJobManager(repo *repository.Repository, storage *FileStorage, processor *mapper.Processor, publisher events.Publisher) *JobManager {
	return &JobManager{
		repo:      repo,
		storage:   storage,
		processor: processor,
		renderer:  mapper.NewRenderer(),
		events:    publisher,
	}
}

// Submit registers a queued job for an uploaded file and starts
// processing in the background.
func (m *JobManager) Submit(ctx context.Context, file *models.FileRecord, data []byte, params *models.AgentParameters) (*models.Job, error) {
	now := timestamp()
	job := &models.Job{
		ID:        uuid.New().String(),
		FileID:    file.ID,
		Status:    models.JobQueued,
		Stage:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.repo.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	m.publish(job)

	// The goroutine owns job from here on, hand the caller a copy.
	snapshot := *job
	go m.run(job, data, params)
	return &snapshot, nil
}

// run executes the pipeline for one job. It owns its own context,
// the HTTP request that queued the job has long since returned.
func (m *JobManager) run(job *models.Job, data []byte, params *models.AgentParameters) {
	ctx := context.Background()

	m.advance(ctx, job, models.JobProcessing, "parse", 10)

	entities, docParams, err := parser.ParseDocument(data)
	if err != nil {
		m.fail(ctx, job, fmt.Errorf("parse entities: %w", err))
		return
	}
	if params == nil {
		params = docParams
	}

	m.advance(ctx, job, models.JobProcessing, "interpret", 40)
	model := m.processor.Process(entities, params)

	m.advance(ctx, job, models.JobProcessing, "persist", 80)

	payload, err := json.MarshalIndent(model, "", "  ")
	if err != nil {
		m.fail(ctx, job, fmt.Errorf("marshal model: %w", err))
		return
	}
	modelPath, err := m.storage.SaveModel(job.ID, payload)
	if err != nil {
		m.fail(ctx, job, err)
		return
	}

	// Preview failures do not fail the job, the model itself is intact.
	if svg, err := m.renderer.RenderPlan(model); err != nil {
		log.Printf("[JOBS] Preview render failed for job %s: %v", job.ID, err)
	} else if _, err := m.storage.SavePreview(job.ID, svg); err != nil {
		log.Printf("[JOBS] Preview write failed for job %s: %v", job.ID, err)
	}

	job.ModelPath = modelPath
	job.ElementCount = model.Stats.ElementCount
	m.advance(ctx, job, models.JobCompleted, "done", 100)
	log.Printf("[JOBS] Job %s completed, %d elements", job.ID, job.ElementCount)
}

func (m *JobManager) advance(ctx context.Context, job *models.Job, status, stage string, progress int) {
	job.Status = status
	job.Stage = stage
	job.Progress = progress
	job.UpdatedAt = timestamp()
	if err := m.repo.UpdateJob(ctx, job); err != nil {
		log.Printf("[JOBS] Update failed for job %s: %v", job.ID, err)
	}
	m.publish(job)
}

func (m *JobManager) fail(ctx context.Context, job *models.Job, cause error) {
	log.Printf("[JOBS] Job %s failed: %v", job.ID, cause)
	job.Status = models.JobFailed
	job.Error = cause.Error()
	job.UpdatedAt = timestamp()
	if err := m.repo.UpdateJob(ctx, job); err != nil {
		log.Printf("[JOBS] Update failed for job %s: %v", job.ID, err)
	}
	m.publish(job)
}

func (m *JobManager) publish(job *models.Job) {
	evt := events.JobEvent{
		JobID:        job.ID,
		FileID:       job.FileID,
		Status:       job.Status,
		Stage:        job.Stage,
		Progress:     job.Progress,
		ElementCount: job.ElementCount,
		Error:        job.Error,
		EmittedAt:    timestamp(),
	}
	if err := m.events.PublishJobEvent(evt); err != nil {
		log.Printf("[JOBS] Event publish failed for job %s: %v", job.ID, err)
	}
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
