package entities

import "time"

// AssessmentStatus is the review state of an assessment.
type AssessmentStatus string

const (
	AssessmentStatusInProgress     AssessmentStatus = "in_progress"
	AssessmentStatusNeedsMoreData  AssessmentStatus = "needs_more_data"
	AssessmentStatusReadyForReview AssessmentStatus = "ready_for_review"
)

// IsValid checks if the status is one of the defined constants.
func (s AssessmentStatus) IsValid() bool {
	switch s {
	case AssessmentStatusInProgress, AssessmentStatusNeedsMoreData, AssessmentStatusReadyForReview:
		return true
	}
	return false
}

// Assessment represents one patient health assessment run through a funnel.
type Assessment struct {
	ID         string           `json:"id" db:"id"`
	PatientID  string           `json:"patient_id" db:"patient_id"`
	FunnelSlug string           `json:"funnel_slug" db:"funnel_slug"`
	Status     AssessmentStatus `json:"status" db:"status"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at" db:"updated_at"`
}
