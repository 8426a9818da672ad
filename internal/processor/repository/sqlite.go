package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fitit-backend/internal/processor/models"
)

// ============================================================
// SQLite Repository
// ============================================================

// ErrNotFound is returned for lookups that match no row.
var ErrNotFound = errors.New("not found")

type Repository struct {
	db *sql.DB
}

func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Init applies the schema migration.
func (r *Repository) Init(ctx context.Context, migrationsPath string) error {
	data, err := os.ReadFile(migrationsPath)
	if err != nil {
		return fmt.Errorf("read migration: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, string(data)); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	return nil
}

// ============================================================
// Files
// ============================================================

func (r *Repository) CreateFile(ctx context.Context, file *models.FileRecord) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO files (id, filename, path, size_bytes, sha256, created_at)
        VALUES (?, ?, ?, ?, ?, ?)
    `, file.ID, file.Filename, file.Path, file.SizeBytes, file.SHA256, file.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert file: %w", err)
	}
	return nil
}

func (r *Repository) GetFile(ctx context.Context, id string) (*models.FileRecord, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, filename, path, size_bytes, sha256, created_at
        FROM files
        WHERE id = ?
    `, id)

	var f models.FileRecord
	if err := row.Scan(&f.ID, &f.Filename, &f.Path, &f.SizeBytes, &f.SHA256, &f.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *Repository) ListFiles(ctx context.Context) ([]models.FileRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, filename, path, size_bytes, sha256, created_at
        FROM files
        ORDER BY created_at DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files := []models.FileRecord{}
	for rows.Next() {
		var f models.FileRecord
		if err := rows.Scan(&f.ID, &f.Filename, &f.Path, &f.SizeBytes, &f.SHA256, &f.CreatedAt); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// ============================================================
// Jobs
// ============================================================

func (r *Repository) CreateJob(ctx context.Context, job *models.Job) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO jobs (id, file_id, status, stage, progress, error, model_path, element_count, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `, job.ID, job.FileID, job.Status, job.Stage, job.Progress, job.Error, job.ModelPath, job.ElementCount, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (r *Repository) UpdateJob(ctx context.Context, job *models.Job) error {
	res, err := r.db.ExecContext(ctx, `
        UPDATE jobs
        SET status = ?, stage = ?, progress = ?, error = ?, model_path = ?, element_count = ?, updated_at = ?
        WHERE id = ?
    `, job.Status, job.Stage, job.Progress, job.Error, job.ModelPath, job.ElementCount, job.UpdatedAt, job.ID)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) GetJob(ctx context.Context, id string) (*models.Job, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, file_id, status, stage, progress, error, model_path, element_count, created_at, updated_at
        FROM jobs
        WHERE id = ?
    `, id)

	var j models.Job
	if err := row.Scan(&j.ID, &j.FileID, &j.Status, &j.Stage, &j.Progress, &j.Error, &j.ModelPath, &j.ElementCount, &j.CreatedAt, &j.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &j, nil
}

func (r *Repository) ListJobs(ctx context.Context, limit int) ([]models.Job, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, file_id, status, stage, progress, error, model_path, element_count, created_at, updated_at
        FROM jobs
        ORDER BY created_at DESC
        LIMIT ?
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []models.Job{}
	for rows.Next() {
		var j models.Job
		if err := rows.Scan(&j.ID, &j.FileID, &j.Status, &j.Stage, &j.Progress, &j.Error, &j.ModelPath, &j.ElementCount, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// ============================================================
// Connection
// ============================================================

// OpenSQLite opens the database at the given path, creating parent
// directories as needed. Single connection, the driver serializes
// writers anyway.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
