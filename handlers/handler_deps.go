package handlers

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"hirepath/api-gateway/internal/lifecycle"
	"hirepath/api-gateway/internal/storageclient"
	"hirepath/api-gateway/internal/store"
	"hirepath/api-gateway/models"
	"hirepath/api-gateway/utils"
)

// LifecycleService defines the state-transition operations handlers expect
// from the lifecycle manager. This allows for decoupling and easier testing.
// The concrete implementation is provided by the lifecycle package.
type LifecycleService interface {
	CreateJobOpening(ctx context.Context, in lifecycle.CreateJobInput) (models.JobOpening, error)
	SubmitApplication(ctx context.Context, in lifecycle.SubmitApplicationInput) (models.Application, error)
	ApplyRequirementsResult(ctx context.Context, jobID uuid.UUID, processed json.RawMessage) error
	ApplySkillGapResult(ctx context.Context, applicationID uuid.UUID, result store.SkillGapResult) error
	ShortlistCandidates(ctx context.Context, recruiterID, jobID uuid.UUID, count int) (int, error)
}

// Handler holds shared dependencies for handlers.
type Handler struct {
	Lifecycle    LifecycleService
	Jobs         store.JobStore
	Applications store.ApplicationStore
	Uploads      store.UploadStore
	Users        store.UserStore
	Uploader     lifecycle.FileUploader
	Logger       *logrus.Logger
	Validate     *validator.Validate
	DevMode      bool
}

// NewHandler creates a Handler with the given dependencies.
func NewHandler(lc LifecycleService, stores *store.Stores, up lifecycle.FileUploader,
	logger *logrus.Logger, devMode bool) *Handler {
	return &Handler{
		Lifecycle:    lc,
		Jobs:         stores.Jobs,
		Applications: stores.Applications,
		Uploads:      stores.Uploads,
		Users:        stores.Users,
		Uploader:     up,
		Logger:       logger,
		Validate:     validator.New(),
		DevMode:      devMode,
	}
}

// errDetails returns the driver-level error text in development and nothing
// in production, per the error handling policy.
func (h *Handler) errDetails(err error) string {
	if h.DevMode && err != nil {
		return err.Error()
	}
	return ""
}

// respondUploadFailure passes a storage-service failure through with the
// upstream status and body as diagnostics. Other errors become a plain 500.
func respondUploadFailure(c *fiber.Ctx, err error, details string) error {
	var failure *storageclient.UploadFailure
	if errors.As(err, &failure) {
		return utils.RespondWithErrorDetails(c, failure.StatusCode,
			"Failed to upload file", failure.Body)
	}
	return utils.RespondWithErrorDetails(c, fiber.StatusInternalServerError,
		"Failed to upload file", details)
}
