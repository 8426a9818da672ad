package models

// ============================================================
// Storage records
// ============================================================

type FileRecord struct {
	ID        string `json:"id"`
	Filename  string `json:"filename"`
	Path      string `json:"path"`
	SizeBytes int64  `json:"sizeBytes"`
	SHA256    string `json:"sha256"`
	CreatedAt string `json:"createdAt"`
}

// Job statuses, in lifecycle order.
const (
	JobQueued     = "queued"
	JobProcessing = "processing"
	JobCompleted  = "completed"
	JobFailed     = "failed"
)

type Job struct {
	ID           string `json:"id"`
	FileID       string `json:"fileId"`
	Status       string `json:"status"`
	Stage        string `json:"stage,omitempty"`
	Progress     int    `json:"progress"`
	Error        string `json:"error,omitempty"`
	ModelPath    string `json:"modelPath,omitempty"`
	ElementCount int    `json:"elementCount"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

type StorageStats struct {
	FileCount  int    `json:"fileCount"`
	ModelCount int    `json:"modelCount"`
	TotalBytes int64  `json:"totalBytes"`
	TotalSize  string `json:"totalSize"`
}
