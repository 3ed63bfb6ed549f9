package entities

import "time"

// EntityType categorizes a canonical clinical entity.
type EntityType string

const (
	EntityTypeSymptom    EntityType = "symptom"
	EntityTypeMedication EntityType = "medication"
	EntityTypeDuration   EntityType = "duration"
	EntityTypeIntensity  EntityType = "intensity"
	EntityTypeOther      EntityType = "other"
)

// DetectedLanguage is the language classification of a patient utterance.
type DetectedLanguage string

const (
	LanguageGerman  DetectedLanguage = "de"
	LanguageEnglish DetectedLanguage = "en"
	LanguageMixed   DetectedLanguage = "mixed"
	LanguageUnknown DetectedLanguage = "unknown"
)

// NoMedicationCanonical is the sentinel canonical name recorded when a patient
// states they take no medication.
const NoMedicationCanonical = "no_medication"

// CanonicalEntity is a normalized clinical concept a free-text phrase mapped to.
// Immutable once logged on a turn.
type CanonicalEntity struct {
	EntityType    EntityType `json:"entity_type"`
	CanonicalName string     `json:"canonical_name"`
	SourcePhrase  string     `json:"source_phrase"`
	Confidence    float64    `json:"confidence"`
}

// NormalizationTurn is one normalization event appended to the intake record's
// bounded turn log. Never edited after creation.
type NormalizationTurn struct {
	TurnID                string            `json:"turn_id"`
	Source                string            `json:"source"`
	DetectedLanguage      DetectedLanguage  `json:"detected_language"`
	OriginalPhrase        string            `json:"original_phrase"`
	MappedEntities        []CanonicalEntity `json:"mapped_entities"`
	AmbiguityScore        float64           `json:"ambiguity_score"`
	ClarificationRequired bool              `json:"clarification_required"`
	ClarificationPrompt   string            `json:"clarification_prompt,omitempty"`
	CreatedAt             time.Time         `json:"created_at"`
}

// PendingClarification is an open disambiguation question for the patient.
// Entries are only appended by the normalizer; resolution happens in the
// surrounding workflow by saving a new record state.
type PendingClarification struct {
	TurnID         string    `json:"turn_id"`
	Prompt         string    `json:"prompt"`
	AmbiguityScore float64   `json:"ambiguity_score"`
	CreatedAt      time.Time `json:"created_at"`
}

// HistoryOfPresentIllness holds the temporal-course fields of the complaint.
type HistoryOfPresentIllness struct {
	Onset     string `json:"onset,omitempty"`
	Duration  string `json:"duration,omitempty"`
	Course    string `json:"course,omitempty"`
	Trigger   string `json:"trigger,omitempty"`
	Frequency string `json:"frequency,omitempty"`
}

// MedicationEntry is one structured medication the patient reported.
type MedicationEntry struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage,omitempty"`
	Frequency string `json:"frequency,omitempty"`
}

// SafetyRuleHit records a triggered safety rule with its clinician-facing
// short reason.
type SafetyRuleHit struct {
	RuleID      string `json:"rule_id"`
	ShortReason string `json:"short_reason"`
}

// IntakeRecord is the structured intake value owned by one assessment. The
// normalization pipeline treats it as immutable: operations return an updated
// copy rather than mutating in place.
type IntakeRecord struct {
	AssessmentID          string                  `json:"assessment_id" db:"assessment_id"`
	FunnelSlug            string                  `json:"funnel_slug" db:"funnel_slug"`
	ChiefComplaint        string                  `json:"chief_complaint,omitempty"`
	History               HistoryOfPresentIllness `json:"history_of_present_illness"`
	Medications           []MedicationEntry       `json:"medications,omitempty"`
	MedicationList        []string                `json:"medication_list,omitempty"`
	RedFlags              []string                `json:"red_flags,omitempty"`
	TriggeredSafetyRules  []SafetyRuleHit         `json:"triggered_safety_rules,omitempty"`
	Psychosocial          string                  `json:"psychosocial,omitempty"`
	Turns                 []NormalizationTurn     `json:"turns,omitempty"`
	PendingClarifications []PendingClarification  `json:"pending_clarifications,omitempty"`
	LastUpdatedAt         time.Time               `json:"last_updated_at"`
}

// Clone returns a deep copy of the record so callers can derive a new state
// without touching the original.
func (r IntakeRecord) Clone() IntakeRecord {
	out := r
	out.Medications = append([]MedicationEntry(nil), r.Medications...)
	out.MedicationList = append([]string(nil), r.MedicationList...)
	out.RedFlags = append([]string(nil), r.RedFlags...)
	out.TriggeredSafetyRules = append([]SafetyRuleHit(nil), r.TriggeredSafetyRules...)
	out.Turns = append([]NormalizationTurn(nil), r.Turns...)
	out.PendingClarifications = append([]PendingClarification(nil), r.PendingClarifications...)
	return out
}

// LatestTurn returns the most recent normalization turn, or nil when the log
// is empty.
func (r *IntakeRecord) LatestTurn() *NormalizationTurn {
	if r == nil || len(r.Turns) == 0 {
		return nil
	}
	return &r.Turns[len(r.Turns)-1]
}
