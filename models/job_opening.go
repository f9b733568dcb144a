package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JobType enumerates the employment types a job opening can be posted with.
type JobType string

const (
	JobTypeFullTime   JobType = "fullTime"
	JobTypePartTime   JobType = "partTime"
	JobTypeContract   JobType = "contract"
	JobTypeInternship JobType = "internship"
	JobTypeFreelance  JobType = "freelance"
	JobTypeTemporary  JobType = "temporary"
	JobTypeVolunteer  JobType = "volunteer"
	JobTypeRemote     JobType = "remote"
	JobTypeOnSite     JobType = "onSite"
	JobTypeHybrid     JobType = "hybrid"
)

// Valid reports whether t is one of the enumerated job types.
func (t JobType) Valid() bool {
	switch t {
	case JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship,
		JobTypeFreelance, JobTypeTemporary, JobTypeVolunteer, JobTypeRemote,
		JobTypeOnSite, JobTypeHybrid:
		return true
	}
	return false
}

// JobStatus enumerates the lifecycle states of a job opening. Only "open"
// jobs are visible to candidates.
type JobStatus string

const (
	JobStatusOpen   JobStatus = "open"
	JobStatusClosed JobStatus = "closed"
	JobStatusDraft  JobStatus = "draft"
)

// Valid reports whether s is one of the enumerated job statuses.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusOpen, JobStatusClosed, JobStatusDraft:
		return true
	}
	return false
}

// JobOpening represents the structure of a job opening in the database.
type JobOpening struct {
	ID                 uuid.UUID       `json:"id"`
	Title              string          `json:"title"`
	Company            string          `json:"company"`
	Location           *string         `json:"location,omitempty"` // Nullable TEXT
	Type               JobType         `json:"type"`
	Description        string          `json:"description"`
	Contact            string          `json:"contact"`
	Address            string          `json:"address"`
	Deadline           *time.Time      `json:"deadline,omitempty"`   // Nullable TIMESTAMPTZ
	StartDate          *time.Time      `json:"start_date,omitempty"` // Nullable TIMESTAMPTZ
	EndDate            *time.Time      `json:"end_date,omitempty"`   // Nullable TIMESTAMPTZ
	Status             JobStatus       `json:"status"`
	RecruiterID        uuid.UUID       `json:"recruiter_id"`
	RequirementsFileID *uuid.UUID      `json:"requirements_file_id,omitempty"` // Nullable UUID
	LayoutFileID       uuid.UUID       `json:"layout_file_id"`
	ParsedRequirements json.RawMessage `json:"parsed_requirements,omitempty"` // Nullable JSONB, written by the pipeline
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// JobWithApplicantCount is a JobOpening joined with the number of
// applications it has received, used by the recruiter dashboard listing.
type JobWithApplicantCount struct {
	JobOpening
	ApplicantCount int `json:"applicant_count"`
}
