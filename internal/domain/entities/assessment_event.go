package entities

import "time"

// AssessmentEventType identifies what happened to an assessment.
type AssessmentEventType string

const (
	EventClarificationRequested AssessmentEventType = "clarification.requested"
	EventWorkupCompleted        AssessmentEventType = "workup.completed"
	EventIntakeUpdated          AssessmentEventType = "intake.updated"
)

// AssessmentEvent is the payload published on the event bus when an
// assessment's intake or workup state changes.
type AssessmentEvent struct {
	ID           string              `json:"id"`
	AssessmentID string              `json:"assessment_id"`
	EventType    AssessmentEventType `json:"event_type"`
	Payload      map[string]any      `json:"payload,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
}
