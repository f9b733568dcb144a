package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ApplicationStatus enumerates the states of a candidate's application.
// "pending" is the only state before explicit recruiter action; "accepted"
// and "rejected" are terminal.
type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusAccepted ApplicationStatus = "accepted"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// Application represents a candidate's bid for one job opening, carrying the
// scores deposited by the ML pipeline.
type Application struct {
	ID           uuid.UUID         `json:"id"`
	JobOpeningID uuid.UUID         `json:"job_opening_id"`
	UserID       uuid.UUID         `json:"user_id"`
	ResumeID     uuid.UUID         `json:"resume_id"`
	Status       ApplicationStatus `json:"status"`
	LayoutScore  float64           `json:"layout_score"`
	ContentScore float64           `json:"content_score"`
	SkillGap     json.RawMessage   `json:"skill_gap,omitempty"`     // Nullable JSONB
	ParsedResume json.RawMessage   `json:"parsed_resume,omitempty"` // Nullable JSONB
	CreatedAt    time.Time         `json:"created_at"`
}

// ApplicationDetail is an Application joined with summaries of its resume,
// job opening and applicant, used by the recruiter inspection endpoints.
type ApplicationDetail struct {
	Application
	Resume     UploadSummary `json:"resume"`
	JobOpening JobSummary    `json:"job_opening"`
	User       UserSummary   `json:"user"`
}

// JobSummary is the subset of JobOpening embedded in application listings.
type JobSummary struct {
	ID      uuid.UUID `json:"id"`
	Title   string    `json:"title"`
	Company string    `json:"company"`
	Status  JobStatus `json:"status"`
}

// UploadSummary is the subset of Upload embedded in application listings.
type UploadSummary struct {
	ID  uuid.UUID `json:"id"`
	URL string    `json:"url"`
}

// UserSummary is the subset of User embedded in application listings.
type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Image *string   `json:"image,omitempty"`
}
