package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"hirepath/api-gateway/internal/store"
	"hirepath/api-gateway/utils"
)

// RequirementsResultRequest is the pipeline's callback body after parsing a
// job's requirements document.
type RequirementsResultRequest struct {
	Session struct {
		JobID string `json:"job_id"`
	} `json:"session"`
	Result struct {
		ProcessedResult json.RawMessage `json:"processed_result"`
	} `json:"result"`
}

// RequirementsResult deposits the parsed requirements on a job opening.
// Last write wins. The route is recruiter-gated upstream.
func (h *Handler) RequirementsResult(c *fiber.Ctx) error {
	req := new(RequirementsResultRequest)
	if err := c.BodyParser(req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Cannot parse request body")
	}

	jobID, err := uuid.Parse(req.Session.JobID)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "'session.job_id' must be a valid UUID")
	}
	if len(req.Result.ProcessedResult) == 0 {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "'result.processed_result' is required")
	}

	err = h.Lifecycle.ApplyRequirementsResult(c.Context(), jobID, req.Result.ProcessedResult)
	if err == store.ErrNotFound {
		return utils.RespondWithError(c, fiber.StatusNotFound, "Job not found")
	}
	if err != nil {
		h.Logger.WithField("error", err.Error()).Error("Failed to apply requirements result")
		return utils.RespondWithErrorDetails(c, fiber.StatusInternalServerError,
			"Failed to update job opening", h.errDetails(err))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": "Requirements received successfully",
	})
}

// SkillGapResultRequest is the pipeline's callback body after scoring one
// resume against a job.
type SkillGapResultRequest struct {
	Session struct {
		ApplicationID string `json:"application_id"`
	} `json:"session"`
	Result struct {
		ParsedResume json.RawMessage `json:"parsed_resume"`
		LayoutScore  float64         `json:"layout_score"`
		ContentScore float64         `json:"content_score"`
		SkillGap     json.RawMessage `json:"skill_gap"`
	} `json:"result"`
}

// SkillGapResult deposits the scoring outcome on an application. Repeat
// callbacks overwrite; the route is machine-to-machine and carries no
// session.
func (h *Handler) SkillGapResult(c *fiber.Ctx) error {
	req := new(SkillGapResultRequest)
	if err := c.BodyParser(req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Cannot parse request body")
	}

	applicationID, err := uuid.Parse(req.Session.ApplicationID)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "'session.application_id' must be a valid UUID")
	}

	err = h.Lifecycle.ApplySkillGapResult(c.Context(), applicationID, store.SkillGapResult{
		ParsedResume: req.Result.ParsedResume,
		LayoutScore:  req.Result.LayoutScore,
		ContentScore: req.Result.ContentScore,
		SkillGap:     req.Result.SkillGap,
	})
	if err == store.ErrNotFound {
		return utils.RespondWithError(c, fiber.StatusNotFound, "Application not found")
	}
	if err != nil {
		h.Logger.WithField("error", err.Error()).Error("Failed to apply skill gap result")
		return utils.RespondWithErrorDetails(c, fiber.StatusInternalServerError,
			"Failed to update application", h.errDetails(err))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": "Skill gap updated successfully",
	})
}
