package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"hirepath/api-gateway/models"
)

// Sentinel errors returned by the repositories. Handlers map these to HTTP
// status codes.
var (
	ErrNotFound             = errors.New("record not found")
	ErrDuplicateApplication = errors.New("candidate already applied for this job")
	ErrAlreadyShortlisted   = errors.New("shortlisting was already performed for this job")
	ErrNoApplications       = errors.New("no applications to shortlist")
)

// JobFilter narrows the public job listing. Zero values mean "no filter".
type JobFilter struct {
	Search   string
	Location string
	Types    []models.JobType
	Page     int // 1-based
}

// JobPage is one page of the public job listing.
type JobPage struct {
	Jobs        []models.JobOpening
	TotalJobs   int
	TotalPages  int
	CurrentPage int
}

// NewJobOpening carries the fields for a job insert. Uploads must already
// exist; the store only records their ids.
type NewJobOpening struct {
	Title              string
	Company            string
	Location           *string
	Type               models.JobType
	Description        string
	Contact            string
	Address            string
	Deadline           *time.Time
	StartDate          *time.Time
	EndDate            *time.Time
	RecruiterID        uuid.UUID
	RequirementsFileID *uuid.UUID
	LayoutFileID       uuid.UUID
}

// JobUpdate carries a partial update of a job's mutable fields. Nil pointers
// leave the column untouched.
type JobUpdate struct {
	Title       *string
	Company     *string
	Location    *string
	Type        *models.JobType
	Description *string
	Contact     *string
	Address     *string
	Deadline    *time.Time
	StartDate   *time.Time
	EndDate     *time.Time
}

// JobStore is the repository for job openings. Every recruiter-scoped method
// filters by recruiter id so ownership is enforced at the data layer.
type JobStore interface {
	Create(ctx context.Context, in NewJobOpening) (models.JobOpening, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.JobOpening, error)
	GetOwned(ctx context.Context, id, recruiterID uuid.UUID) (models.JobOpening, error)
	ListOpen(ctx context.Context, filter JobFilter) (JobPage, error)
	ListByRecruiter(ctx context.Context, recruiterID uuid.UUID) ([]models.JobWithApplicantCount, error)
	UpdateStatus(ctx context.Context, id, recruiterID uuid.UUID, status models.JobStatus) error
	UpdateFields(ctx context.Context, id, recruiterID uuid.UUID, upd JobUpdate) (models.JobOpening, error)
	SetParsedRequirements(ctx context.Context, id uuid.UUID, parsed json.RawMessage) error
}

// NewApplication carries the fields for an application insert. Status and
// scores take their defaults (pending, 0.0).
type NewApplication struct {
	JobOpeningID uuid.UUID
	UserID       uuid.UUID
	ResumeID     uuid.UUID
}

// SkillGapResult is the pipeline's scoring payload for one application.
type SkillGapResult struct {
	ParsedResume json.RawMessage
	LayoutScore  float64
	ContentScore float64
	SkillGap     json.RawMessage
}

// ApplicationStore is the repository for applications.
type ApplicationStore interface {
	// Create inserts a pending application and returns
	// ErrDuplicateApplication when the (job, candidate) pair already exists.
	Create(ctx context.Context, in NewApplication) (models.Application, error)
	Exists(ctx context.Context, jobID, userID uuid.UUID) (bool, error)
	GetForRecruiter(ctx context.Context, id, recruiterID uuid.UUID) (models.ApplicationDetail, error)
	ListForRecruiter(ctx context.Context, recruiterID uuid.UUID) ([]models.ApplicationDetail, error)
	// ApplySkillGap overwrites the pipeline-owned columns, last write wins.
	ApplySkillGap(ctx context.Context, id uuid.UUID, result SkillGapResult) error
	// ShortlistTopN promotes the top n applications of a job (ranked by
	// content_score + layout_score descending, insertion order as tiebreak)
	// to "accepted" in one transaction. It returns ErrAlreadyShortlisted
	// when any application already left "pending" and ErrNoApplications
	// when the job has none.
	ShortlistTopN(ctx context.Context, jobID uuid.UUID, n int) (int, error)
}

// NewUpload carries the fields for an upload record insert.
type NewUpload struct {
	Name       string
	FileType   string
	UploadType models.UploadType
	URL        string
	UserID     *uuid.UUID
}

// UploadStore is the repository for upload records.
type UploadStore interface {
	Create(ctx context.Context, in NewUpload) (models.Upload, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.Upload, error)
	ListByUserAndType(ctx context.Context, userID uuid.UUID, t models.UploadType) ([]models.Upload, error)
}

// UserStore reads the identity reference data mirrored from the auth server.
type UserStore interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (models.Profile, error)
}
