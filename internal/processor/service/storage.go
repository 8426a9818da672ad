package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"fitit-backend/internal/processor/models"
)

// ============================================================
// File storage
// ============================================================

// FileStorage keeps uploaded plans and generated models on disk
// under a single root:
//
//	<root>/uploads/<fileID>.json
//	<root>/models/<jobID>.json
//	<root>/models/<jobID>.svg
type FileStorage struct {
	root string
}

func NewFileStorage(root string) *FileStorage {
	return &FileStorage{root: root}
}

// ============================================================
// Paths
// ============================================================

func (s *FileStorage) Root() string {
	return s.root
}

func (s *FileStorage) UploadsDir() string {
	return filepath.Join(s.root, "uploads")
}

func (s *FileStorage) ModelsDir() string {
	return filepath.Join(s.root, "models")
}

// UploadPath keeps the original extension so re-downloads open
// with the right tooling. Extensionless names get .json.
func (s *FileStorage) UploadPath(fileID, filename string) string {
	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".json"
	}
	return filepath.Join(s.UploadsDir(), fileID+ext)
}

func (s *FileStorage) ModelPath(jobID string) string {
	return filepath.Join(s.ModelsDir(), jobID+".json")
}

func (s *FileStorage) PreviewPath(jobID string) string {
	return filepath.Join(s.ModelsDir(), jobID+".svg")
}

// ============================================================
// Directories
// ============================================================

func (s *FileStorage) EnsureDirs() error {
	if err := os.MkdirAll(s.UploadsDir(), 0o755); err != nil {
		return fmt.Errorf("mkdir uploads dir: %w", err)
	}
	if err := os.MkdirAll(s.ModelsDir(), 0o755); err != nil {
		return fmt.Errorf("mkdir models dir: %w", err)
	}
	return nil
}

// ============================================================
// Writes
// ============================================================

// SaveUpload persists the raw entity stream and returns the stored path.
func (s *FileStorage) SaveUpload(fileID, filename string, data []byte) (string, error) {
	if err := s.EnsureDirs(); err != nil {
		return "", err
	}
	path := s.UploadPath(fileID, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return path, nil
}

// SaveModel persists a processed building model and returns the stored path.
func (s *FileStorage) SaveModel(jobID string, data []byte) (string, error) {
	if err := s.EnsureDirs(); err != nil {
		return "", err
	}
	path := s.ModelPath(jobID)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write model: %w", err)
	}
	return path, nil
}

// SavePreview persists the SVG plan preview next to the model.
func (s *FileStorage) SavePreview(jobID, svg string) (string, error) {
	if err := s.EnsureDirs(); err != nil {
		return "", err
	}
	path := s.PreviewPath(jobID)
	if err := os.WriteFile(path, []byte(svg), 0o644); err != nil {
		return "", fmt.Errorf("write preview: %w", err)
	}
	return path, nil
}

// ============================================================
// Reads
// ============================================================

func (s *FileStorage) ReadUpload(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return data, nil
}

func (s *FileStorage) ReadModel(jobID string) ([]byte, error) {
	data, err := os.ReadFile(s.ModelPath(jobID))
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	return data, nil
}

func (s *FileStorage) ReadPreview(jobID string) ([]byte, error) {
	data, err := os.ReadFile(s.PreviewPath(jobID))
	if err != nil {
		return nil, fmt.Errorf("read preview: %w", err)
	}
	return data, nil
}

// ============================================================
// Stats
// ============================================================

// Stats walks both storage trees and reports counts and total size.
// Missing directories count as empty, the service may not have
// received a single upload yet.
func (s *FileStorage) Stats() (*models.StorageStats, error) {
	stats := &models.StorageStats{}

	uploads, totalUploads, err := countDir(s.UploadsDir(), "")
	if err != nil {
		return nil, err
	}
	stats.FileCount = uploads

	modelFiles, totalModels, err := countDir(s.ModelsDir(), ".json")
	if err != nil {
		return nil, err
	}
	stats.ModelCount = modelFiles

	stats.TotalBytes = totalUploads + totalModels
	stats.TotalSize = humanize.Bytes(uint64(stats.TotalBytes))
	return stats, nil
}

// countDir counts regular files in dir, optionally filtered by
// extension, and sums the size of everything it sees.
func countDir(dir, ext string) (count int, bytes int64, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, 0, nil
		}
		return 0, 0, fmt.Errorf("read storage dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		bytes += info.Size()
		if ext != "" && !strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			continue
		}
		count++
	}
	return count, bytes, nil
}
