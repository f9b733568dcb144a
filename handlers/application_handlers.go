package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"hirepath/api-gateway/internal/lifecycle"
	"hirepath/api-gateway/internal/store"
	"hirepath/api-gateway/middleware"
	"hirepath/api-gateway/utils"
)

// ApplyRequest is the body of POST /apply. The resume must already have been
// registered through the resume upload endpoint.
type ApplyRequest struct {
	JobID    string `json:"jobId" validate:"required"`
	ResumeID string `json:"resumeId" validate:"required"`
}

// Apply submits a candidate's application for a job.
func (h *Handler) Apply(c *fiber.Ctx) error {
	session, ok := middleware.SessionFromCtx(c)
	if !ok {
		return utils.RespondWithError(c, fiber.StatusUnauthorized,
			"You must be logged in to apply for a job.")
	}

	req := new(ApplyRequest)
	if err := c.BodyParser(req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Cannot parse request body")
	}
	if err := h.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid request data",
			"errors":  utils.FormatValidationErrors(err),
		})
	}

	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "'jobId' must be a valid UUID")
	}
	resumeID, err := uuid.Parse(req.ResumeID)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "'resumeId' must be a valid UUID")
	}

	app, err := h.Lifecycle.SubmitApplication(c.Context(), lifecycle.SubmitApplicationInput{
		CandidateID:  session.User.ID,
		SessionToken: session.Token,
		JobID:        jobID,
		ResumeID:     resumeID,
	})
	if err != nil {
		switch {
		case errors.Is(err, lifecycle.ErrResumeNotFound):
			return utils.RespondWithError(c, fiber.StatusBadRequest, "Resume upload not found")
		case errors.Is(err, lifecycle.ErrResumeNotOwned):
			return utils.RespondWithError(c, fiber.StatusForbidden, "Resume does not belong to you")
		case errors.Is(err, lifecycle.ErrNotAResume):
			return utils.RespondWithError(c, fiber.StatusBadRequest, "Referenced upload is not a resume")
		case errors.Is(err, lifecycle.ErrJobNotFound):
			return utils.RespondWithError(c, fiber.StatusNotFound, "Job not found")
		case errors.Is(err, lifecycle.ErrJobNotOpen):
			return utils.RespondWithError(c, fiber.StatusBadRequest, "This job is not accepting applications")
		case errors.Is(err, store.ErrDuplicateApplication):
			return utils.RespondWithError(c, fiber.StatusConflict, "You have already applied for this job.")
		}
		h.Logger.WithField("error", err.Error()).Error("Failed to submit application")
		return utils.RespondWithErrorDetails(c, fiber.StatusInternalServerError,
			"Failed to submit application", h.errDetails(err))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": "Application submitted successfully",
		"data": fiber.Map{
			"applicationId": app.ID,
		},
	})
}
