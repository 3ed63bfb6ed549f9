package entities

import "time"

// EvidencePack is a versioned snapshot of one assessment's collected answers,
// assembled by the evidence pack builder and consumed as opaque input by the
// workup engine.
type EvidencePack struct {
	AssessmentID       string         `json:"assessment_id"`
	FunnelSlug         string         `json:"funnel_slug"`
	PDFTemplateVersion string         `json:"pdf_template_version"`
	RulesetVersion     string         `json:"ruleset_version"`
	SectionsData       map[string]any `json:"sections_data"`
}

// WorkupResult is the deterministic verdict of a sufficiency check. A new
// evidence pack yields a new result; results are never mutated.
type WorkupResult struct {
	ID                string    `json:"id" db:"id"`
	AssessmentID      string    `json:"assessment_id" db:"assessment_id"`
	IsSufficient      bool      `json:"is_sufficient" db:"is_sufficient"`
	MissingDataFields []string  `json:"missing_data_fields" db:"missing_data_fields"`
	FollowUpQuestions []string  `json:"follow_up_questions" db:"follow_up_questions"`
	EvidencePackHash  string    `json:"evidence_pack_hash" db:"evidence_pack_hash"`
	RulesetVersion    string    `json:"ruleset_version" db:"ruleset_version"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// Status maps the verdict onto the assessment status literal persisted by the
// surrounding application.
func (r *WorkupResult) Status() AssessmentStatus {
	if r.IsSufficient {
		return AssessmentStatusReadyForReview
	}
	return AssessmentStatusNeedsMoreData
}
