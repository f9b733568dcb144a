package uploader

import (
	"context"

	"github.com/google/uuid"

	"hirepath/api-gateway/internal/store"
	"hirepath/api-gateway/models"
)

// Storage is the slice of the storage client the uploader needs.
type Storage interface {
	Upload(ctx context.Context, name, mimeType string, content []byte, bucket models.UploadType) (string, error)
}

// File is an in-memory file to forward.
type File struct {
	Name     string
	MimeType string
	Content  []byte
}

// Result is the handle returned for a successful forward: the Uploads row id,
// the external URL and the original bytes (kept so callers can base64 them
// into pipeline events without re-fetching).
type Result struct {
	UploadID uuid.UUID
	URL      string
	Content  []byte
}

// Uploader forwards files to the external storage service and records each
// successful forward as an Uploads row. No idempotency: every call creates a
// new row.
type Uploader struct {
	storage Storage
	uploads store.UploadStore
}

func New(storage Storage, uploads store.UploadStore) *Uploader {
	return &Uploader{storage: storage, uploads: uploads}
}

// Upload forwards the file and persists its record. ownerID may be nil for
// recruiter-side files that belong to the job rather than a user.
func (u *Uploader) Upload(ctx context.Context, file File, bucket models.UploadType, ownerID *uuid.UUID) (Result, error) {
	url, err := u.storage.Upload(ctx, file.Name, file.MimeType, file.Content, bucket)
	if err != nil {
		return Result{}, err
	}

	record, err := u.uploads.Create(ctx, store.NewUpload{
		Name:       file.Name,
		FileType:   file.MimeType,
		UploadType: bucket,
		URL:        url,
		UserID:     ownerID,
	})
	if err != nil {
		return Result{}, err
	}

	return Result{UploadID: record.ID, URL: url, Content: file.Content}, nil
}
