package lifecycle

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"hirepath/api-gateway/internal/store"
	"hirepath/api-gateway/internal/uploader"
	"hirepath/api-gateway/models"
)

// Validation and precondition errors surfaced to handlers. Each failed
// precheck of an operation gets its own error so responses can say exactly
// what was wrong.
var (
	ErrLayoutFileRequired    = errors.New("a layout reference file is required")
	ErrResumeNotFound        = errors.New("resume upload not found")
	ErrResumeNotOwned        = errors.New("resume upload does not belong to this candidate")
	ErrNotAResume            = errors.New("upload is not tagged as a resume")
	ErrJobNotFound           = errors.New("job opening not found")
	ErrJobNotOpen            = errors.New("job opening is not accepting applications")
	ErrInvalidShortlistCount = errors.New("shortlist count must be positive")
)

// Emitter hands event envelopes to the pipeline queue.
type Emitter interface {
	Emit(ctx context.Context, event models.Event) (int64, error)
}

// Fetcher retrieves previously uploaded blobs by URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FileUploader forwards files to storage and records them.
type FileUploader interface {
	Upload(ctx context.Context, file uploader.File, bucket models.UploadType, ownerID *uuid.UUID) (uploader.Result, error)
}

// Service governs job-opening and application state transitions and
// orchestrates the upload → event → pending-score flow.
type Service struct {
	jobs         store.JobStore
	applications store.ApplicationStore
	uploads      store.UploadStore
	uploader     FileUploader
	fetcher      Fetcher
	emitter      Emitter
	log          *logrus.Logger
}

func NewService(jobs store.JobStore, applications store.ApplicationStore, uploads store.UploadStore,
	up FileUploader, fetcher Fetcher, emitter Emitter, log *logrus.Logger) *Service {
	return &Service{
		jobs:         jobs,
		applications: applications,
		uploads:      uploads,
		uploader:     up,
		fetcher:      fetcher,
		emitter:      emitter,
		log:          log,
	}
}

// JobFields are the recruiter-supplied attributes of a new job opening.
type JobFields struct {
	Title       string
	Company     string
	Location    *string
	Type        models.JobType
	Description string
	Contact     string
	Address     string
	Deadline    *time.Time
	StartDate   *time.Time
	EndDate     *time.Time
}

// CreateJobInput bundles everything CreateJobOpening needs. LayoutFile is
// mandatory, RequirementsFile optional.
type CreateJobInput struct {
	RecruiterID      uuid.UUID
	SessionToken     string
	Fields           JobFields
	LayoutFile       *uploader.File
	RequirementsFile *uploader.File
}

// CreateJobOpening uploads the given files (concurrently when both are
// present), inserts the job row, and, when a requirements file was supplied,
// emits a requirements_ready event so the pipeline can parse structured
// requirements out of band. Any upload failure aborts the whole operation
// with no job row; an emit failure after the insert is logged only.
func (s *Service) CreateJobOpening(ctx context.Context, in CreateJobInput) (models.JobOpening, error) {
	if in.LayoutFile == nil {
		return models.JobOpening{}, ErrLayoutFileRequired
	}

	var layoutRes, reqRes uploader.Result

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := s.uploader.Upload(gctx, *in.LayoutFile, models.UploadTypeLayout, nil)
		if err == nil {
			layoutRes = res
		}
		return err
	})
	if in.RequirementsFile != nil {
		g.Go(func() error {
			res, err := s.uploader.Upload(gctx, *in.RequirementsFile, models.UploadTypeRequirements, nil)
			if err == nil {
				reqRes = res
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return models.JobOpening{}, err
	}

	newJob := store.NewJobOpening{
		Title:        in.Fields.Title,
		Company:      in.Fields.Company,
		Location:     in.Fields.Location,
		Type:         in.Fields.Type,
		Description:  in.Fields.Description,
		Contact:      in.Fields.Contact,
		Address:      in.Fields.Address,
		Deadline:     in.Fields.Deadline,
		StartDate:    in.Fields.StartDate,
		EndDate:      in.Fields.EndDate,
		RecruiterID:  in.RecruiterID,
		LayoutFileID: layoutRes.UploadID,
	}
	if in.RequirementsFile != nil {
		newJob.RequirementsFileID = &reqRes.UploadID
	}

	job, err := s.jobs.Create(ctx, newJob)
	if err != nil {
		return models.JobOpening{}, err
	}

	if in.RequirementsFile != nil {
		encoded := base64.StdEncoding.EncodeToString(reqRes.Content)
		event := models.NewEvent(models.EventTypeRequirementsReady,
			models.EventSession{
				SessionID: in.SessionToken,
				JobID:     job.ID.String(),
			},
			map[string]interface{}{
				"job_id":      job.ID.String(),
				"title":       job.Title,
				"description": job.Description,
			},
			&encoded)

		if _, err := s.emitter.Emit(ctx, event); err != nil {
			s.log.WithFields(logrus.Fields{
				"job_id": job.ID,
				"error":  err.Error(),
			}).Warn("Failed to emit requirements_ready event; job was still created")
		}
	}

	return job, nil
}

// SubmitApplicationInput bundles everything SubmitApplication needs. The
// resume must already have been uploaded through the resume endpoint.
type SubmitApplicationInput struct {
	CandidateID  uuid.UUID
	SessionToken string
	JobID        uuid.UUID
	ResumeID     uuid.UUID
}

// SubmitApplication creates a pending application after the ordered
// prechecks, then hands the scoring work to the pipeline. A failure to build
// or emit the skill_gap_request event leaves the committed application in
// place; scoring can be retried out of band.
func (s *Service) SubmitApplication(ctx context.Context, in SubmitApplicationInput) (models.Application, error) {
	resume, err := s.uploads.GetByID(ctx, in.ResumeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Application{}, ErrResumeNotFound
		}
		return models.Application{}, err
	}
	if resume.UserID == nil || *resume.UserID != in.CandidateID {
		return models.Application{}, ErrResumeNotOwned
	}
	if resume.UploadType != models.UploadTypeResume {
		return models.Application{}, ErrNotAResume
	}

	job, err := s.jobs.GetByID(ctx, in.JobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Application{}, ErrJobNotFound
		}
		return models.Application{}, err
	}
	if job.Status != models.JobStatusOpen {
		return models.Application{}, ErrJobNotOpen
	}

	// Fast-path duplicate rejection; the unique constraint in the store is
	// the guard that holds under concurrent submissions.
	exists, err := s.applications.Exists(ctx, in.JobID, in.CandidateID)
	if err != nil {
		return models.Application{}, err
	}
	if exists {
		return models.Application{}, store.ErrDuplicateApplication
	}

	app, err := s.applications.Create(ctx, store.NewApplication{
		JobOpeningID: in.JobID,
		UserID:       in.CandidateID,
		ResumeID:     in.ResumeID,
	})
	if err != nil {
		return models.Application{}, err
	}

	s.emitSkillGapRequest(ctx, in.SessionToken, job, app, resume)

	return app, nil
}

// emitSkillGapRequest gathers the resume and layout blobs and queues the
// scoring request. Best effort: every failure is logged and swallowed.
func (s *Service) emitSkillGapRequest(ctx context.Context, sessionToken string, job models.JobOpening, app models.Application, resume models.Upload) {
	logEntry := s.log.WithFields(logrus.Fields{
		"application_id": app.ID,
		"job_id":         job.ID,
	})

	resumeBytes, err := s.fetcher.Fetch(ctx, resume.URL)
	if err != nil {
		logEntry.WithField("error", err.Error()).Warn("Failed to fetch resume blob; skipping skill_gap_request event")
		return
	}

	layout, err := s.uploads.GetByID(ctx, job.LayoutFileID)
	if err != nil {
		logEntry.WithField("error", err.Error()).Warn("Failed to load layout reference record; skipping skill_gap_request event")
		return
	}
	layoutBytes, err := s.fetcher.Fetch(ctx, layout.URL)
	if err != nil {
		logEntry.WithField("error", err.Error()).Warn("Failed to fetch layout reference blob; skipping skill_gap_request event")
		return
	}

	data := map[string]interface{}{
		"job_id":           job.ID.String(),
		"application_id":   app.ID.String(),
		"layout_reference": base64.StdEncoding.EncodeToString(layoutBytes),
	}
	if len(job.ParsedRequirements) > 0 {
		data["parsed_requirements"] = json.RawMessage(job.ParsedRequirements)
	}

	encodedResume := base64.StdEncoding.EncodeToString(resumeBytes)
	event := models.NewEvent(models.EventTypeSkillGapRequest,
		models.EventSession{
			SessionID:     sessionToken,
			JobID:         job.ID.String(),
			ApplicationID: app.ID.String(),
		},
		data,
		&encodedResume)

	if _, err := s.emitter.Emit(ctx, event); err != nil {
		logEntry.WithField("error", err.Error()).Warn("Failed to emit skill_gap_request event; application was still created")
	}
}

// ApplyRequirementsResult deposits the pipeline's parsed requirements on a
// job. Last write wins, no merge.
func (s *Service) ApplyRequirementsResult(ctx context.Context, jobID uuid.UUID, processed json.RawMessage) error {
	return s.jobs.SetParsedRequirements(ctx, jobID, processed)
}

// ApplySkillGapResult deposits the pipeline's scores on an application.
// Last write wins; repeating the callback simply overwrites.
func (s *Service) ApplySkillGapResult(ctx context.Context, applicationID uuid.UUID, result store.SkillGapResult) error {
	return s.applications.ApplySkillGap(ctx, applicationID, result)
}

// ShortlistCandidates promotes the top count applications of one of the
// recruiter's jobs to "accepted". One-time per job: any application already
// off "pending" makes the whole call fail with ErrAlreadyShortlisted.
// Applications outside the top set stay "pending".
func (s *Service) ShortlistCandidates(ctx context.Context, recruiterID, jobID uuid.UUID, count int) (int, error) {
	if count <= 0 {
		return 0, ErrInvalidShortlistCount
	}

	if _, err := s.jobs.GetOwned(ctx, jobID, recruiterID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, ErrJobNotFound
		}
		return 0, err
	}

	return s.applications.ShortlistTopN(ctx, jobID, count)
}
