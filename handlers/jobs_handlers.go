package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"hirepath/api-gateway/internal/store"
	"hirepath/api-gateway/models"
	"hirepath/api-gateway/utils"
)

// Ping is the liveness probe.
func Ping(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "pong",
	})
}

// ListJobs handles the public paginated job search. Only open jobs are
// visible; search matches title, description and company case-insensitively.
func (h *Handler) ListJobs(c *fiber.Ctx) error {
	filter := store.JobFilter{
		Search:   utils.SanitizeInput(c.Query("search")),
		Location: utils.SanitizeInput(c.Query("location")),
		Page:     1,
	}

	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return utils.RespondWithError(c, fiber.StatusBadRequest, "'page' must be a positive integer")
		}
		filter.Page = page
	}

	if raw := c.Query("jobTypes"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			jobType := models.JobType(strings.TrimSpace(part))
			if !jobType.Valid() {
				return utils.RespondWithError(c, fiber.StatusBadRequest,
					"unknown job type '"+string(jobType)+"'")
			}
			filter.Types = append(filter.Types, jobType)
		}
	}

	page, err := h.Jobs.ListOpen(c.Context(), filter)
	if err != nil {
		h.Logger.WithField("error", err.Error()).Error("Failed to list jobs")
		return utils.RespondWithErrorDetails(c, fiber.StatusInternalServerError,
			"An error occurred while fetching jobs", h.errDetails(err))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"jobs":        page.Jobs,
		"totalJobs":   page.TotalJobs,
		"totalPages":  page.TotalPages,
		"currentPage": page.CurrentPage,
	})
}

// JobDetails returns a single job's public summary.
func (h *Handler) JobDetails(c *fiber.Ctx) error {
	rawID := c.Query("id")
	if rawID == "" {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Job ID is required")
	}

	jobID, err := uuid.Parse(rawID)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Job ID must be a valid UUID")
	}

	job, err := h.Jobs.GetByID(c.Context(), jobID)
	if err == store.ErrNotFound {
		return utils.RespondWithError(c, fiber.StatusNotFound, "Job not found")
	}
	if err != nil {
		h.Logger.WithField("error", err.Error()).Error("Failed to fetch job details")
		return utils.RespondWithErrorDetails(c, fiber.StatusInternalServerError,
			"An error occurred while fetching the job", h.errDetails(err))
	}

	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{
		"id":          job.ID,
		"title":       job.Title,
		"company":     job.Company,
		"location":    job.Location,
		"type":        job.Type,
		"description": job.Description,
		"address":     job.Address,
		"status":      job.Status,
	})
}
