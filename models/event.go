package models

import "time"

// Event types understood by the ML pipeline.
const (
	EventTypeRequirementsReady = "requirements_ready"
	EventTypeSkillGapRequest   = "skill_gap_request"
)

// EventSession correlates a queued event with the job, application and
// session that produced it.
type EventSession struct {
	SessionID     string `json:"session_id"`
	JobID         string `json:"job_id,omitempty"`
	ApplicationID string `json:"application_id,omitempty"`
}

// Event is the envelope pushed onto the pipeline queue. It is never
// persisted in the relational store.
type Event struct {
	Type      string                 `json:"type"`
	Timestamp string                 `json:"timestamp"` // ISO-8601
	Session   EventSession           `json:"session"`
	Data      map[string]interface{} `json:"data"`
	File      *string                `json:"file"` // base64 blob or null
}

// NewEvent stamps an envelope with the current UTC time.
func NewEvent(eventType string, session EventSession, data map[string]interface{}, file *string) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Session:   session,
		Data:      data,
		File:      file,
	}
}
