package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"hirepath/api-gateway/models"
)

// jobPageSize is the number of jobs per page in the public listing.
const jobPageSize = 28

const jobColumns = `id, title, company, location, type, description, contact, address,
	deadline, start_date, end_date, status, recruiter_id, requirements_file_id,
	layout_file_id, parsed_requirements, created_at, updated_at`

type postgresJobStore struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (models.JobOpening, error) {
	var (
		job       models.JobOpening
		location  sql.NullString
		deadline  sql.NullTime
		startDate sql.NullTime
		endDate   sql.NullTime
		reqFileID uuid.NullUUID
		parsed    []byte
	)

	err := row.Scan(&job.ID, &job.Title, &job.Company, &location, &job.Type,
		&job.Description, &job.Contact, &job.Address, &deadline, &startDate,
		&endDate, &job.Status, &job.RecruiterID, &reqFileID, &job.LayoutFileID,
		&parsed, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return models.JobOpening{}, err
	}

	if location.Valid {
		job.Location = &location.String
	}
	if deadline.Valid {
		job.Deadline = &deadline.Time
	}
	if startDate.Valid {
		job.StartDate = &startDate.Time
	}
	if endDate.Valid {
		job.EndDate = &endDate.Time
	}
	if reqFileID.Valid {
		job.RequirementsFileID = &reqFileID.UUID
	}
	if len(parsed) > 0 {
		job.ParsedRequirements = json.RawMessage(parsed)
	}

	return job, nil
}

func (s *postgresJobStore) Create(ctx context.Context, in NewJobOpening) (models.JobOpening, error) {
	var reqFileID uuid.NullUUID
	if in.RequirementsFileID != nil {
		reqFileID = uuid.NullUUID{UUID: *in.RequirementsFileID, Valid: true}
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO job_openings
			(title, company, location, type, description, contact, address,
			 deadline, start_date, end_date, recruiter_id, requirements_file_id, layout_file_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+jobColumns,
		in.Title, in.Company, nullString(in.Location), string(in.Type),
		in.Description, in.Contact, in.Address, nullTime(in.Deadline),
		nullTime(in.StartDate), nullTime(in.EndDate), in.RecruiterID, reqFileID,
		in.LayoutFileID)

	return scanJob(row)
}

func (s *postgresJobStore) GetByID(ctx context.Context, id uuid.UUID) (models.JobOpening, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM job_openings WHERE id = $1`, id)

	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return models.JobOpening{}, ErrNotFound
	}
	return job, err
}

func (s *postgresJobStore) GetOwned(ctx context.Context, id, recruiterID uuid.UUID) (models.JobOpening, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM job_openings WHERE id = $1 AND recruiter_id = $2`,
		id, recruiterID)

	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return models.JobOpening{}, ErrNotFound
	}
	return job, err
}

func (s *postgresJobStore) ListOpen(ctx context.Context, filter JobFilter) (JobPage, error) {
	where := []string{"status = 'open'"}
	args := []interface{}{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d OR company ILIKE $%d)", n, n, n))
	}
	if filter.Location != "" {
		args = append(args, "%"+filter.Location+"%")
		where = append(where, fmt.Sprintf("location ILIKE $%d", len(args)))
	}
	if len(filter.Types) > 0 {
		types := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			types[i] = string(t)
		}
		args = append(args, pq.Array(types))
		where = append(where, fmt.Sprintf("type = ANY($%d)", len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM job_openings WHERE `+whereClause, args...).Scan(&total)
	if err != nil {
		return JobPage{}, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * jobPageSize

	args = append(args, jobPageSize, offset)
	query := fmt.Sprintf(`SELECT %s FROM job_openings WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		jobColumns, whereClause, len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return JobPage{}, err
	}
	defer rows.Close()

	jobs := []models.JobOpening{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return JobPage{}, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return JobPage{}, err
	}

	return JobPage{
		Jobs:        jobs,
		TotalJobs:   total,
		TotalPages:  (total + jobPageSize - 1) / jobPageSize,
		CurrentPage: page,
	}, nil
}

func (s *postgresJobStore) ListByRecruiter(ctx context.Context, recruiterID uuid.UUID) ([]models.JobWithApplicantCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT j.id, j.title, j.company, j.location, j.type, j.description,
			j.contact, j.address, j.deadline, j.start_date, j.end_date, j.status,
			j.recruiter_id, j.requirements_file_id, j.layout_file_id,
			j.parsed_requirements, j.created_at, j.updated_at,
			COUNT(a.id) AS applicant_count
		FROM job_openings j
		LEFT JOIN applications a ON a.job_opening_id = j.id
		WHERE j.recruiter_id = $1
		GROUP BY j.id
		ORDER BY j.created_at DESC`, recruiterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []models.JobWithApplicantCount{}
	for rows.Next() {
		var (
			job       models.JobOpening
			location  sql.NullString
			deadline  sql.NullTime
			startDate sql.NullTime
			endDate   sql.NullTime
			reqFileID uuid.NullUUID
			parsed    []byte
			count     int
		)
		err := rows.Scan(&job.ID, &job.Title, &job.Company, &location, &job.Type,
			&job.Description, &job.Contact, &job.Address, &deadline, &startDate,
			&endDate, &job.Status, &job.RecruiterID, &reqFileID, &job.LayoutFileID,
			&parsed, &job.CreatedAt, &job.UpdatedAt, &count)
		if err != nil {
			return nil, err
		}
		if location.Valid {
			job.Location = &location.String
		}
		if deadline.Valid {
			job.Deadline = &deadline.Time
		}
		if startDate.Valid {
			job.StartDate = &startDate.Time
		}
		if endDate.Valid {
			job.EndDate = &endDate.Time
		}
		if reqFileID.Valid {
			job.RequirementsFileID = &reqFileID.UUID
		}
		if len(parsed) > 0 {
			job.ParsedRequirements = json.RawMessage(parsed)
		}
		jobs = append(jobs, models.JobWithApplicantCount{JobOpening: job, ApplicantCount: count})
	}
	return jobs, rows.Err()
}

func (s *postgresJobStore) UpdateStatus(ctx context.Context, id, recruiterID uuid.UUID, status models.JobStatus) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE job_openings SET status = $1, updated_at = now()
		WHERE id = $2 AND recruiter_id = $3`,
		string(status), id, recruiterID)
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

func (s *postgresJobStore) UpdateFields(ctx context.Context, id, recruiterID uuid.UUID, upd JobUpdate) (models.JobOpening, error) {
	set := []string{}
	args := []interface{}{}

	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.Title != nil {
		add("title", *upd.Title)
	}
	if upd.Company != nil {
		add("company", *upd.Company)
	}
	if upd.Location != nil {
		add("location", *upd.Location)
	}
	if upd.Type != nil {
		add("type", string(*upd.Type))
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.Contact != nil {
		add("contact", *upd.Contact)
	}
	if upd.Address != nil {
		add("address", *upd.Address)
	}
	if upd.Deadline != nil {
		add("deadline", *upd.Deadline)
	}
	if upd.StartDate != nil {
		add("start_date", *upd.StartDate)
	}
	if upd.EndDate != nil {
		add("end_date", *upd.EndDate)
	}

	set = append(set, "updated_at = now()")

	args = append(args, id, recruiterID)
	query := fmt.Sprintf(`UPDATE job_openings SET %s WHERE id = $%d AND recruiter_id = $%d RETURNING %s`,
		strings.Join(set, ", "), len(args)-1, len(args), jobColumns)

	job, err := scanJob(s.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return models.JobOpening{}, ErrNotFound
	}
	return job, err
}

func (s *postgresJobStore) SetParsedRequirements(ctx context.Context, id uuid.UUID, parsed json.RawMessage) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE job_openings SET parsed_requirements = $1, updated_at = now()
		WHERE id = $2`,
		[]byte(parsed), id)
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

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
