package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"hirepath/api-gateway/models"
)

type postgresUploadStore struct {
	db *sql.DB
}

func scanUpload(row rowScanner) (models.Upload, error) {
	var up models.Upload
	var userID uuid.NullUUID

	err := row.Scan(&up.ID, &up.Name, &up.FileType, &up.UploadType, &up.URL,
		&userID, &up.CreatedAt)
	if err != nil {
		return models.Upload{}, err
	}
	if userID.Valid {
		up.UserID = &userID.UUID
	}
	return up, nil
}

func (s *postgresUploadStore) Create(ctx context.Context, in NewUpload) (models.Upload, error) {
	var userID uuid.NullUUID
	if in.UserID != nil {
		userID = uuid.NullUUID{UUID: *in.UserID, Valid: true}
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO uploads (name, file_type, upload_type, url, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, file_type, upload_type, url, user_id, created_at`,
		in.Name, in.FileType, string(in.UploadType), in.URL, userID)

	return scanUpload(row)
}

func (s *postgresUploadStore) GetByID(ctx context.Context, id uuid.UUID) (models.Upload, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, file_type, upload_type, url, user_id, created_at
		FROM uploads WHERE id = $1`, id)

	up, err := scanUpload(row)
	if err == sql.ErrNoRows {
		return models.Upload{}, ErrNotFound
	}
	return up, err
}

func (s *postgresUploadStore) ListByUserAndType(ctx context.Context, userID uuid.UUID, t models.UploadType) ([]models.Upload, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, file_type, upload_type, url, user_id, created_at
		FROM uploads
		WHERE user_id = $1 AND upload_type = $2
		ORDER BY created_at DESC`, userID, string(t))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	uploads := []models.Upload{}
	for rows.Next() {
		up, err := scanUpload(rows)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, up)
	}
	return uploads, rows.Err()
}
