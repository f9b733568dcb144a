package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"hirepath/api-gateway/models"
)

type postgresApplicationStore struct {
	db *sql.DB
}

func (s *postgresApplicationStore) Create(ctx context.Context, in NewApplication) (models.Application, error) {
	var app models.Application
	var skillGap, parsedResume []byte

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO applications (job_opening_id, user_id, resume_id)
		VALUES ($1, $2, $3)
		RETURNING id, job_opening_id, user_id, resume_id, status,
			layout_score, content_score, skill_gap, parsed_resume, created_at`,
		in.JobOpeningID, in.UserID, in.ResumeID).
		Scan(&app.ID, &app.JobOpeningID, &app.UserID, &app.ResumeID, &app.Status,
			&app.LayoutScore, &app.ContentScore, &skillGap, &parsedResume, &app.CreatedAt)
	if err != nil {
		// 23505 is Postgres unique_violation; the constraint is the
		// authoritative one-application-per-candidate-per-job guard.
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return models.Application{}, ErrDuplicateApplication
		}
		return models.Application{}, err
	}

	if len(skillGap) > 0 {
		app.SkillGap = json.RawMessage(skillGap)
	}
	if len(parsedResume) > 0 {
		app.ParsedResume = json.RawMessage(parsedResume)
	}
	return app, nil
}

func (s *postgresApplicationStore) Exists(ctx context.Context, jobID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM applications WHERE job_opening_id = $1 AND user_id = $2
		)`, jobID, userID).Scan(&exists)
	return exists, err
}

const applicationDetailQuery = `
	SELECT a.id, a.job_opening_id, a.user_id, a.resume_id, a.status,
		a.layout_score, a.content_score, a.skill_gap, a.parsed_resume, a.created_at,
		r.id, r.url,
		j.id, j.title, j.company, j.status,
		u.id, u.name, u.email, u.image
	FROM applications a
	JOIN uploads r ON r.id = a.resume_id
	JOIN job_openings j ON j.id = a.job_opening_id
	JOIN users u ON u.id = a.user_id
	WHERE j.recruiter_id = $1`

func scanApplicationDetail(row rowScanner) (models.ApplicationDetail, error) {
	var (
		d            models.ApplicationDetail
		skillGap     []byte
		parsedResume []byte
		image        sql.NullString
	)

	err := row.Scan(&d.ID, &d.JobOpeningID, &d.UserID, &d.ResumeID, &d.Status,
		&d.LayoutScore, &d.ContentScore, &skillGap, &parsedResume, &d.CreatedAt,
		&d.Resume.ID, &d.Resume.URL,
		&d.JobOpening.ID, &d.JobOpening.Title, &d.JobOpening.Company, &d.JobOpening.Status,
		&d.User.ID, &d.User.Name, &d.User.Email, &image)
	if err != nil {
		return models.ApplicationDetail{}, err
	}

	if len(skillGap) > 0 {
		d.SkillGap = json.RawMessage(skillGap)
	}
	if len(parsedResume) > 0 {
		d.ParsedResume = json.RawMessage(parsedResume)
	}
	if image.Valid {
		d.User.Image = &image.String
	}
	return d, nil
}

func (s *postgresApplicationStore) GetForRecruiter(ctx context.Context, id, recruiterID uuid.UUID) (models.ApplicationDetail, error) {
	row := s.db.QueryRowContext(ctx, applicationDetailQuery+` AND a.id = $2`, recruiterID, id)

	detail, err := scanApplicationDetail(row)
	if err == sql.ErrNoRows {
		return models.ApplicationDetail{}, ErrNotFound
	}
	return detail, err
}

func (s *postgresApplicationStore) ListForRecruiter(ctx context.Context, recruiterID uuid.UUID) ([]models.ApplicationDetail, error) {
	rows, err := s.db.QueryContext(ctx, applicationDetailQuery+` ORDER BY a.created_at DESC`, recruiterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := []models.ApplicationDetail{}
	for rows.Next() {
		detail, err := scanApplicationDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	return details, rows.Err()
}

func (s *postgresApplicationStore) ApplySkillGap(ctx context.Context, id uuid.UUID, result SkillGapResult) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE applications
		SET parsed_resume = $1, layout_score = $2, content_score = $3, skill_gap = $4
		WHERE id = $5`,
		[]byte(result.ParsedResume), result.LayoutScore, result.ContentScore,
		[]byte(result.SkillGap), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ShortlistTopN runs the one-time promotion inside a single transaction so
// two concurrent shortlist calls cannot both pass the "still pending" check.
func (s *postgresApplicationStore) ShortlistTopN(ctx context.Context, jobID uuid.UUID, n int) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	// Lock the parent job row first. At READ COMMITTED the EXISTS check below
	// takes no locks of its own, so without this a second transaction can pass
	// the check before the first commits and re-accept the same rows. With the
	// job row locked the second transaction waits here and then sees the
	// committed 'accepted' rows.
	var lockedID uuid.UUID
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM job_openings WHERE id = $1 FOR UPDATE`, jobID).Scan(&lockedID)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}

	var nonPending bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM applications
			WHERE job_opening_id = $1 AND status <> 'pending'
		)`, jobID).Scan(&nonPending)
	if err != nil {
		return 0, err
	}
	if nonPending {
		return 0, ErrAlreadyShortlisted
	}

	// Combined score descending, insertion order as the tiebreak.
	rows, err := tx.QueryContext(ctx, `
		SELECT id FROM applications
		WHERE job_opening_id = $1
		ORDER BY content_score + layout_score DESC, created_at ASC, id ASC
		LIMIT $2
		FOR UPDATE`, jobID, n)
	if err != nil {
		return 0, err
	}

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	rows.Close()

	if len(ids) == 0 {
		return 0, ErrNoApplications
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE applications SET status = 'accepted' WHERE id = ANY($1)`,
		pq.Array(ids))
	if err != nil {
		return 0, err
	}
	updated, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if updated == 0 {
		return 0, fmt.Errorf("shortlist updated no rows for job %s", jobID)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int(updated), nil
}
