package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"hirepath/api-gateway/models"
)

type postgresUserStore struct {
	db *sql.DB
}

func (s *postgresUserStore) GetProfile(ctx context.Context, userID uuid.UUID) (models.Profile, error) {
	var profile models.Profile
	var image sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, image FROM users WHERE id = $1`, userID).
		Scan(&profile.User.ID, &profile.User.Email, &profile.User.Name, &image)
	if err == sql.ErrNoRows {
		return models.Profile{}, ErrNotFound
	}
	if err != nil {
		return models.Profile{}, err
	}
	if image.Valid {
		profile.User.Image = &image.String
	}

	// Recruiter profile is optional reference data owned by the auth server.
	var rec models.Recruiter
	err = s.db.QueryRowContext(ctx, `
		SELECT id, name, organization, phone, address, position
		FROM recruiters WHERE user_id = $1`, userID).
		Scan(&rec.ID, &rec.Name, &rec.Organization, &rec.Phone, &rec.Address, &rec.Position)
	if err == nil {
		profile.User.Recruiter = &rec
	} else if err != sql.ErrNoRows {
		return models.Profile{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.status, a.layout_score, a.content_score,
			j.id, j.title, j.company, j.status
		FROM applications a
		JOIN job_openings j ON j.id = a.job_opening_id
		WHERE a.user_id = $1
		ORDER BY a.created_at DESC`, userID)
	if err != nil {
		return models.Profile{}, err
	}
	defer rows.Close()

	profile.Applications = []models.ProfileApplication{}
	for rows.Next() {
		var app models.ProfileApplication
		err := rows.Scan(&app.ID, &app.Status, &app.LayoutScore, &app.ContentScore,
			&app.JobOpening.ID, &app.JobOpening.Title, &app.JobOpening.Company,
			&app.JobOpening.Status)
		if err != nil {
			return models.Profile{}, err
		}
		profile.Applications = append(profile.Applications, app)
	}
	return profile, rows.Err()
}
