package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"hirepath/api-gateway/internal/authclient"
	"hirepath/api-gateway/internal/lifecycle"
	"hirepath/api-gateway/internal/store"
	"hirepath/api-gateway/internal/uploader"
	"hirepath/api-gateway/middleware"
	"hirepath/api-gateway/models"
	"hirepath/api-gateway/utils"
)

// CreateJobRequest is the multipart form of POST /recruiter/create. The
// files travel in separate form fields: layoutFile (required) and
// requiremetsFile (optional; the field name keeps the spelling the frontend
// already sends).
type CreateJobRequest struct {
	Title       string `form:"title" validate:"required"`
	Company     string `form:"company" validate:"required"`
	Location    string `form:"location"`
	Type        string `form:"type" validate:"required,oneof=fullTime partTime contract internship freelance temporary volunteer remote onSite hybrid"`
	Description string `form:"description" validate:"required"`
	Contact     string `form:"contact" validate:"required,email"`
	Address     string `form:"address"`
	Deadline    string `form:"deadline"`
	StartDate   string `form:"startDate"`
	EndDate     string `form:"endDate"`
}

// CreateJob creates a job opening from a multipart form, forwarding the
// layout reference (and optional requirements document) to storage first.
func (h *Handler) CreateJob(c *fiber.Ctx) error {
	session, recruiter, errResp := h.recruiterFromCtx(c)
	if errResp != nil {
		return errResp
	}

	req := new(CreateJobRequest)
	if err := c.BodyParser(req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Cannot parse job form")
	}
	if err := h.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid request data",
			"errors":  utils.FormatValidationErrors(err),
		})
	}

	layoutFile, err := readFormFile(c, "layoutFile")
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest,
			"The file field 'layoutFile' is required")
	}

	var requirementsFile *uploader.File
	if file, err := readFormFile(c, "requiremetsFile"); err == nil {
		requirementsFile = file
	}

	fields := lifecycle.JobFields{
		Title:       utils.SanitizeInput(req.Title),
		Company:     utils.SanitizeInput(req.Company),
		Type:        models.JobType(req.Type),
		Description: req.Description,
		Contact:     utils.SanitizeInput(req.Contact),
		Address:     utils.SanitizeInput(req.Address),
	}
	if req.Location != "" {
		location := utils.SanitizeInput(req.Location)
		fields.Location = &location
	}

	for _, date := range []struct {
		raw  string
		dest **time.Time
		name string
	}{
		{req.Deadline, &fields.Deadline, "deadline"},
		{req.StartDate, &fields.StartDate, "startDate"},
		{req.EndDate, &fields.EndDate, "endDate"},
	} {
		if date.raw == "" {
			continue
		}
		parsed, err := parseDate(date.raw)
		if err != nil {
			return utils.RespondWithError(c, fiber.StatusBadRequest,
				"'"+date.name+"' must be an RFC 3339 timestamp or YYYY-MM-DD date")
		}
		*date.dest = parsed
	}

	job, err := h.Lifecycle.CreateJobOpening(c.Context(), lifecycle.CreateJobInput{
		RecruiterID:      recruiter.ID,
		SessionToken:     session.Token,
		Fields:           fields,
		LayoutFile:       layoutFile,
		RequirementsFile: requirementsFile,
	})
	if err != nil {
		if errors.Is(err, lifecycle.ErrLayoutFileRequired) {
			return utils.RespondWithError(c, fiber.StatusBadRequest,
				"The file field 'layoutFile' is required")
		}
		h.Logger.WithField("error", err.Error()).Error("Failed to create job")
		return respondUploadFailure(c, err, h.errDetails(err))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": "Job created successfully",
		"job":     job,
	})
}

// RecruiterJobs lists the recruiter's own jobs with applicant counts.
func (h *Handler) RecruiterJobs(c *fiber.Ctx) error {
	_, recruiter, errResp := h.recruiterFromCtx(c)
	if errResp != nil {
		return errResp
	}

	jobs, err := h.Jobs.ListByRecruiter(c.Context(), recruiter.ID)
	if err != nil {
		h.Logger.WithField("error", err.Error()).Error("Failed to list recruiter jobs")
		return utils.RespondWithErrorDetails(c, fiber.StatusInternalServerError,
			"An error occurred while fetching recruiter jobs", h.errDetails(err))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": "Recruiter jobs fetched successfully",
		"jobs":    jobs,
	})
}

// UpdateJobStatusRequest is the body of PUT /recruiter/update-job-status.
type UpdateJobStatusRequest struct {
	JobID  string `json:"jobId" validate:"required"`
	Status string `json:"status" validate:"required,oneof=open closed draft"`
}

// UpdateJobStatus sets a job's status. Any enumerated status may be set; only
// the owning recruiter's jobs match.
func (h *Handler) UpdateJobStatus(c *fiber.Ctx) error {
	_, recruiter, errResp := h.recruiterFromCtx(c)
	if errResp != nil {
		return errResp
	}

	req := new(UpdateJobStatusRequest)
	if err := c.BodyParser(req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Cannot parse request body")
	}
	if err := h.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Job ID and a valid status are required.",
			"errors":  utils.FormatValidationErrors(err),
		})
	}

	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "'jobId' must be a valid UUID")
	}

	err = h.Jobs.UpdateStatus(c.Context(), jobID, recruiter.ID, models.JobStatus(req.Status))
	if err == store.ErrNotFound {
		return utils.RespondWithError(c, fiber.StatusNotFound, "Job not found")
	}
	if err != nil {
		h.Logger.WithField("error", err.Error()).Error("Failed to update job status")
		return utils.RespondWithErrorDetails(c, fiber.StatusInternalServerError,
			"Failed to update job status", h.errDetails(err))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": "status updated successfully",
	})
}

// UpdateJobRequest is the body of PUT /recruiter/update-job. Absent fields
// stay untouched.
type UpdateJobRequest struct {
	JobID       string  `json:"jobId" validate:"required"`
	Title       *string `json:"title,omitempty"`
	Company     *string `json:"company,omitempty"`
	Location    *string `json:"location,omitempty"`
	Type        *string `json:"type,omitempty"`
	Description *string `json:"description,omitempty"`
	Contact     *string `json:"contact,omitempty"`
	Address     *string `json:"address,omitempty"`
	Deadline    *string `json:"deadline,omitempty"`
	StartDate   *string `json:"startDate,omitempty"`
	EndDate     *string `json:"endDate,omitempty"`
}

// UpdateJob partially updates a job's fields for the owning recruiter.
func (h *Handler) UpdateJob(c *fiber.Ctx) error {
	_, recruiter, errResp := h.recruiterFromCtx(c)
	if errResp != nil {
		return errResp
	}

	req := new(UpdateJobRequest)
	if err := c.BodyParser(req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Cannot parse request body")
	}
	if err := h.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Job ID is required.",
			"errors":  utils.FormatValidationErrors(err),
		})
	}

	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "'jobId' must be a valid UUID")
	}

	upd := store.JobUpdate{
		Title:       req.Title,
		Company:     req.Company,
		Location:    req.Location,
		Description: req.Description,
		Contact:     req.Contact,
		Address:     req.Address,
	}

	if req.Type != nil {
		jobType := models.JobType(*req.Type)
		if !jobType.Valid() {
			return utils.RespondWithError(c, fiber.StatusBadRequest,
				"unknown job type '"+*req.Type+"'")
		}
		upd.Type = &jobType
	}

	for _, date := range []struct {
		raw  *string
		dest **time.Time
		name string
	}{
		{req.Deadline, &upd.Deadline, "deadline"},
		{req.StartDate, &upd.StartDate, "startDate"},
		{req.EndDate, &upd.EndDate, "endDate"},
	} {
		if date.raw == nil {
			continue
		}
		parsed, err := parseDate(*date.raw)
		if err != nil {
			return utils.RespondWithError(c, fiber.StatusBadRequest,
				"'"+date.name+"' must be an RFC 3339 timestamp or YYYY-MM-DD date")
		}
		*date.dest = parsed
	}

	job, err := h.Jobs.UpdateFields(c.Context(), jobID, recruiter.ID, upd)
	if err == store.ErrNotFound {
		return utils.RespondWithError(c, fiber.StatusNotFound, "Job not found")
	}
	if err != nil {
		h.Logger.WithField("error", err.Error()).Error("Failed to update job")
		return utils.RespondWithErrorDetails(c, fiber.StatusInternalServerError,
			"Failed to update job", h.errDetails(err))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": "Job updated successfully",
		"job":     job,
	})
}

// RecruiterApplications lists all applications across the recruiter's jobs.
func (h *Handler) RecruiterApplications(c *fiber.Ctx) error {
	_, recruiter, errResp := h.recruiterFromCtx(c)
	if errResp != nil {
		return errResp
	}

	applications, err := h.Applications.ListForRecruiter(c.Context(), recruiter.ID)
	if err != nil {
		h.Logger.WithField("error", err.Error()).Error("Failed to list applications")
		return utils.RespondWithErrorDetails(c, fiber.StatusInternalServerError,
			"Failed to fetch applications", h.errDetails(err))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": "Applications fetched successfully",
		"data":    applications,
	})
}

// ApplicationByID returns one application, restricted to the recruiter's jobs.
func (h *Handler) ApplicationByID(c *fiber.Ctx) error {
	_, recruiter, errResp := h.recruiterFromCtx(c)
	if errResp != nil {
		return errResp
	}

	appID, err := uuid.Parse(c.Query("id"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "'id' must be a valid UUID")
	}

	application, err := h.Applications.GetForRecruiter(c.Context(), appID, recruiter.ID)
	if err == store.ErrNotFound {
		return utils.RespondWithError(c, fiber.StatusNotFound, "Application not found")
	}
	if err != nil {
		h.Logger.WithField("error", err.Error()).Error("Failed to fetch application")
		return utils.RespondWithErrorDetails(c, fiber.StatusInternalServerError,
			"Failed to fetch application", h.errDetails(err))
	}

	return utils.RespondWithJSON(c, fiber.StatusOK, application)
}

// JobByID returns one of the recruiter's own jobs.
func (h *Handler) JobByID(c *fiber.Ctx) error {
	_, recruiter, errResp := h.recruiterFromCtx(c)
	if errResp != nil {
		return errResp
	}

	jobID, err := uuid.Parse(c.Query("id"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "'id' must be a valid UUID")
	}

	job, err := h.Jobs.GetOwned(c.Context(), jobID, recruiter.ID)
	if err == store.ErrNotFound {
		return utils.RespondWithError(c, fiber.StatusNotFound, "Job not found")
	}
	if err != nil {
		h.Logger.WithField("error", err.Error()).Error("Failed to fetch job")
		return utils.RespondWithErrorDetails(c, fiber.StatusInternalServerError,
			"Failed to fetch job", h.errDetails(err))
	}

	return utils.RespondWithJSON(c, fiber.StatusOK, job)
}

// ShortlistRequest is the body of POST /recruiter/shortlist-candidates.
type ShortlistRequest struct {
	JobID          string `json:"jobId" validate:"required"`
	ShortlistCount int    `json:"shortlistCount"`
}

// ShortlistCandidates runs the one-time top-N promotion for a job.
func (h *Handler) ShortlistCandidates(c *fiber.Ctx) error {
	_, recruiter, errResp := h.recruiterFromCtx(c)
	if errResp != nil {
		return errResp
	}

	req := new(ShortlistRequest)
	if err := c.BodyParser(req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Cannot parse request body")
	}
	if err := h.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Job ID is required.",
			"errors":  utils.FormatValidationErrors(err),
		})
	}

	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "'jobId' must be a valid UUID")
	}

	accepted, err := h.Lifecycle.ShortlistCandidates(c.Context(), recruiter.ID, jobID, req.ShortlistCount)
	if err != nil {
		switch {
		case errors.Is(err, lifecycle.ErrInvalidShortlistCount):
			return utils.RespondWithError(c, fiber.StatusBadRequest, "'shortlistCount' must be positive")
		case errors.Is(err, lifecycle.ErrJobNotFound):
			return utils.RespondWithError(c, fiber.StatusNotFound, "Job not found")
		case errors.Is(err, store.ErrAlreadyShortlisted):
			return utils.RespondWithError(c, fiber.StatusConflict,
				"Candidates were already shortlisted for this job")
		case errors.Is(err, store.ErrNoApplications):
			return utils.RespondWithError(c, fiber.StatusBadRequest,
				"This job has no applications to shortlist")
		}
		h.Logger.WithField("error", err.Error()).Error("Failed to shortlist candidates")
		return utils.RespondWithErrorDetails(c, fiber.StatusInternalServerError,
			"Failed to shortlist candidates", h.errDetails(err))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": "Candidates shortlisted successfully",
		"data": fiber.Map{
			"acceptedCount": accepted,
		},
	})
}

// recruiterFromCtx pulls the recruiter profile out of the session. The
// recruiter middleware already gates these routes; this also covers handlers
// exercised directly in tests.
func (h *Handler) recruiterFromCtx(c *fiber.Ctx) (authclient.SessionResult, *models.Recruiter, error) {
	session, ok := middleware.SessionFromCtx(c)
	if !ok {
		return authclient.SessionResult{}, nil, utils.RespondWithError(c, fiber.StatusUnauthorized,
			"You must be logged in to access this resource.")
	}
	if session.User.Recruiter == nil {
		return authclient.SessionResult{}, nil, utils.RespondWithError(c, fiber.StatusForbidden,
			"You do not have permission to access this resource.")
	}
	return session, session.User.Recruiter, nil
}

// parseDate accepts RFC 3339 timestamps or bare YYYY-MM-DD dates.
func parseDate(raw string) (*time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
