package handlers

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"hirepath/api-gateway/internal/store"
	"hirepath/api-gateway/internal/uploader"
	"hirepath/api-gateway/middleware"
	"hirepath/api-gateway/models"
	"hirepath/api-gateway/utils"
)

// Profile returns the signed-in candidate's identity plus their application
// history with the pipeline scores.
func (h *Handler) Profile(c *fiber.Ctx) error {
	session, ok := middleware.SessionFromCtx(c)
	if !ok {
		return utils.RespondWithError(c, fiber.StatusUnauthorized,
			"You must be logged in to access this resource.")
	}

	profile, err := h.Users.GetProfile(c.Context(), session.User.ID)
	if err == store.ErrNotFound {
		return utils.RespondWithError(c, fiber.StatusNotFound, "User not found")
	}
	if err != nil {
		h.Logger.WithField("error", err.Error()).Error("Failed to load profile")
		return utils.RespondWithErrorDetails(c, fiber.StatusInternalServerError,
			"Failed to load profile", h.errDetails(err))
	}

	return utils.RespondWithJSON(c, fiber.StatusOK, profile)
}

// ResumeList returns the candidate's registered resume uploads, newest first.
func (h *Handler) ResumeList(c *fiber.Ctx) error {
	session, ok := middleware.SessionFromCtx(c)
	if !ok {
		return utils.RespondWithError(c, fiber.StatusUnauthorized,
			"You must be logged in to access this resource.")
	}

	resumes, err := h.Uploads.ListByUserAndType(c.Context(), session.User.ID, models.UploadTypeResume)
	if err != nil {
		h.Logger.WithField("error", err.Error()).Error("Failed to list resumes")
		return utils.RespondWithErrorDetails(c, fiber.StatusInternalServerError,
			"Failed to list resumes", h.errDetails(err))
	}

	return utils.RespondWithJSON(c, fiber.StatusOK, resumes)
}

// UploadResume forwards a candidate's resume file to storage and registers
// it so later applications can reference it by id.
func (h *Handler) UploadResume(c *fiber.Ctx) error {
	session, ok := middleware.SessionFromCtx(c)
	if !ok {
		return utils.RespondWithError(c, fiber.StatusUnauthorized,
			"You must be logged in to upload a resume.")
	}

	file, err := readFormFile(c, "resumeFile")
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest,
			"The file field 'resumeFile' is required")
	}

	userID := session.User.ID
	result, err := h.Uploader.Upload(c.Context(), *file, models.UploadTypeResume, &userID)
	if err != nil {
		h.Logger.WithField("error", err.Error()).Error("Failed to forward resume upload")
		return respondUploadFailure(c, err, h.errDetails(err))
	}

	return utils.RespondWithJSON(c, fiber.StatusCreated, fiber.Map{
		"resumeId": result.UploadID,
		"url":      result.URL,
	})
}

// readFormFile pulls one multipart file into memory. Returns an error when
// the field is absent or unreadable.
func readFormFile(c *fiber.Ctx, field string) (*uploader.File, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, err
	}

	fileHandle, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer fileHandle.Close()

	content, err := io.ReadAll(fileHandle)
	if err != nil {
		return nil, err
	}

	return &uploader.File{
		Name:     header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Content:  content,
	}, nil
}
