package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"fitit-backend/internal/events"
	"fitit-backend/internal/processor/geometry"
	"fitit-backend/internal/processor/layers"
	"fitit-backend/internal/processor/mapper"
	"fitit-backend/internal/processor/models"
	"fitit-backend/internal/processor/repository"
)

func newTestManager(t *testing.T) (*JobManager, *repository.Repository) {
	t.Helper()
	db, err := repository.OpenSQLite(filepath.Join(t.TempDir(), "processor.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := repository.New(db)
	if err := repo.Init(context.Background(), "../../../migrations/001_init_processor.sql"); err != nil {
		t.Fatalf("Init: %v", err)
	}

	storage := NewFileStorage(t.TempDir())
	processor := mapper.NewProcessor(geometry.DefaultOptions(), layers.NewMemoryStore())
	return NewJobManager(repo, storage, processor, events.LogPublisher{}), repo
}

func submitAndWait(t *testing.T, manager *JobManager, repo *repository.Repository, payload []byte) *models.Job {
	t.Helper()
	ctx := context.Background()

	file := &models.FileRecord{
		ID:        "f1",
		Filename:  "plan.json",
		Path:      "/tmp/plan.json",
		SizeBytes: int64(len(payload)),
		CreatedAt: "2026-08-25T10:00:00Z",
	}
	if err := repo.CreateFile(ctx, file); err != nil {
		t.Fatalf("CreateFile: %v", err)
	}

	job, err := manager.Submit(ctx, file, payload, nil)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if job.Status != models.JobQueued {
		t.Fatalf("expected queued job, got %q", job.Status)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		got, err := repo.GetJob(ctx, job.ID)
		if err != nil {
			t.Fatalf("GetJob: %v", err)
		}
		if got.Status == models.JobCompleted || got.Status == models.JobFailed {
			return got
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job did not finish in time")
	return nil
}

func TestJobManager_SubmitProcessesUpload(t *testing.T) {
	manager, repo := newTestManager(t)

	payload := []byte(`[
		{"type": "LINE", "layer": "WALL", "start": {"x": 0, "y": 0}, "end": {"x": 5000, "y": 0}},
		{"type": "LINE", "layer": "WALL", "start": {"x": 5000, "y": 0}, "end": {"x": 5000, "y": 4000}}
	]`)

	job := submitAndWait(t, manager, repo, payload)
	if job.Status != models.JobCompleted {
		t.Fatalf("expected completed job, got %q (error %q)", job.Status, job.Error)
	}
	if job.Progress != 100 {
		t.Errorf("expected progress 100, got %d", job.Progress)
	}
	if job.ElementCount != 2 {
		t.Errorf("expected 2 elements, got %d", job.ElementCount)
	}
	if job.ModelPath == "" {
		t.Fatal("expected model path on completed job")
	}
	if _, err := os.Stat(job.ModelPath); err != nil {
		t.Errorf("model file missing: %v", err)
	}
	preview := manager.storage.PreviewPath(job.ID)
	if _, err := os.Stat(preview); err != nil {
		t.Errorf("preview file missing: %v", err)
	}
}

func TestJobManager_SubmitBadPayloadFails(t *testing.T) {
	manager, repo := newTestManager(t)

	job := submitAndWait(t, manager, repo, []byte(`{not json`))
	if job.Status != models.JobFailed {
		t.Fatalf("expected failed job, got %q", job.Status)
	}
	if job.Error == "" {
		t.Error("expected error message on failed job")
	}
	if job.ModelPath != "" {
		t.Errorf("failed job should have no model path, got %q", job.ModelPath)
	}
}

func TestJobManager_EnvelopeParametersApply(t *testing.T) {
	manager, repo := newTestManager(t)

	payload := []byte(`{
		"entities": [
			{"type": "LINE", "layer": "WALL", "start": {"x": 0, "y": 0}, "end": {"x": 5000, "y": 0}}
		],
		"parameters": {"wallHeight": 2.5}
	}`)

	job := submitAndWait(t, manager, repo, payload)
	if job.Status != models.JobCompleted {
		t.Fatalf("expected completed job, got %q (error %q)", job.Status, job.Error)
	}

	data, err := manager.storage.ReadModel(job.ID)
	if err != nil {
		t.Fatalf("ReadModel: %v", err)
	}
	var model models.BuildingModel
	if err := json.Unmarshal(data, &model); err != nil {
		t.Fatalf("unmarshal stored model: %v", err)
	}
	if len(model.Elements) != 1 {
		t.Fatalf("expected 1 element, got %d", len(model.Elements))
	}
	ext := model.Elements[0].Extrusion
	if ext == nil {
		t.Fatal("expected wall extrusion")
	}
	// Wall extrusion height follows the envelope parameter.
	if ext.Dimensions[1] != 2.5 {
		t.Errorf("expected wall height 2.5 from envelope, got %v", ext.Dimensions[1])
	}
}
