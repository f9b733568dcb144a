package models

import "github.com/google/uuid"

// User is the identity record owned by the external auth server. This core
// treats it as read-only reference data.
type User struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Image     *string    `json:"image,omitempty"`
	Recruiter *Recruiter `json:"recruiter,omitempty"` // nil for plain candidates
}

// Recruiter is the recruiter profile optionally attached to a User.
type Recruiter struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Organization string    `json:"organization"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	Position     string    `json:"position"`
}

// Profile is the candidate self-service view: the user plus their
// applications with the jobs they target and the pipeline scores.
type Profile struct {
	User         User                 `json:"user"`
	Applications []ProfileApplication `json:"applications"`
}

// ProfileApplication is one row of a candidate's application history.
type ProfileApplication struct {
	ID           uuid.UUID         `json:"id"`
	JobOpening   JobSummary        `json:"job_opening"`
	Status       ApplicationStatus `json:"status"`
	LayoutScore  float64           `json:"layout_score"`
	ContentScore float64           `json:"content_score"`
}
