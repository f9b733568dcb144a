package models

import (
	"time"

	"github.com/google/uuid"
)

// UploadType tags the purpose of a forwarded file.
type UploadType string

const (
	UploadTypeResume       UploadType = "resume"
	UploadTypeRequirements UploadType = "requirements"
	UploadTypeLayout       UploadType = "layoutTemplate"
)

// Upload records a file that was forwarded to the external storage service.
// Rows are immutable once written.
type Upload struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	FileType   string     `json:"file_type"` // MIME type as declared by the client
	UploadType UploadType `json:"upload_type"`
	URL        string     `json:"url"`
	UserID     *uuid.UUID `json:"user_id,omitempty"` // Nullable UUID
	CreatedAt  time.Time  `json:"created_at"`
}
