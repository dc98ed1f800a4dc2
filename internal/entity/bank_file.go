package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/bankfiles/constants"
)

// BankFile is an ingested fixed-width file, keyed by its content hash.
type BankFile struct {
	ID          uuid.UUID      `json:"id"`
	SourcePath  string         `json:"source_path"`
	Filename    string         `json:"filename"`
	FileExt     string         `json:"file_ext"`
	FileSize    int64          `json:"file_size"`
	ContentHash string         `json:"content_hash"`
	Kind        constants.Kind `json:"kind"`
	LineCount   int            `json:"line_count"`
	UploadedAt  time.Time      `json:"uploaded_at"`
}

// RenderJob tracks one slip render of a batch.
type RenderJob struct {
	ID           uuid.UUID           `json:"id"`
	TemplateID   uuid.UUID           `json:"template_id"`
	RecordID     uuid.UUID           `json:"record_id"`
	Status       constants.JobStatus `json:"status"`
	OutputPath   string              `json:"output_path,omitempty"`
	ErrorMessage string              `json:"error_message,omitempty"`
	StartedAt    time.Time           `json:"started_at"`
	FinishedAt   time.Time           `json:"finished_at,omitempty"`
}
