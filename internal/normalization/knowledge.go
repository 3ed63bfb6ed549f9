package normalization

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/avenahealth/clinical-intake/internal/domain/entities"
)

// EntityCandidate is one row of the static clinical vocabulary: a canonical
// entity with the alias phrases that map to it and a fixed confidence score.
type EntityCandidate struct {
	Type       entities.EntityType `json:"type"`
	Canonical  string              `json:"canonical"`
	Aliases    []string            `json:"aliases"`
	Confidence float64             `json:"confidence"`
}

// KnowledgeBase is the immutable lookup data the normalizer runs on. It is
// injected at construction so deployments and tests can swap vocabularies
// without touching control flow.
type KnowledgeBase struct {
	Candidates     []EntityCandidate `json:"candidates"`
	GermanMarkers  []string          `json:"german_markers"`
	EnglishMarkers []string          `json:"english_markers"`
}

// Validate checks the knowledge base for rows the normalizer cannot use.
func (kb KnowledgeBase) Validate() error {
	for i, c := range kb.Candidates {
		if c.Canonical == "" {
			return fmt.Errorf("candidate at index %d: missing canonical name", i)
		}
		if len(c.Aliases) == 0 {
			return fmt.Errorf("candidate %q: no aliases", c.Canonical)
		}
		if c.Confidence < 0 || c.Confidence > 1 {
			return fmt.Errorf("candidate %q: confidence %v outside [0,1]", c.Canonical, c.Confidence)
		}
	}
	if len(kb.GermanMarkers) == 0 || len(kb.EnglishMarkers) == 0 {
		return fmt.Errorf("marker vocabularies must not be empty")
	}
	return nil
}

// LoadKnowledgeBase reads a knowledge base from a JSON file.
func LoadKnowledgeBase(path string) (KnowledgeBase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return KnowledgeBase{}, fmt.Errorf("failed to read knowledge base file: %w", err)
	}

	var kb KnowledgeBase
	if err := json.Unmarshal(data, &kb); err != nil {
		return KnowledgeBase{}, fmt.Errorf("failed to parse knowledge base: %w", err)
	}
	if err := kb.Validate(); err != nil {
		return KnowledgeBase{}, fmt.Errorf("invalid knowledge base: %w", err)
	}
	return kb, nil
}

// DefaultKnowledgeBase returns the built-in bilingual clinical vocabulary.
func DefaultKnowledgeBase() KnowledgeBase {
	return KnowledgeBase{
		Candidates: []EntityCandidate{
			{Type: entities.EntityTypeSymptom, Canonical: "chest_pain", Confidence: 0.9,
				Aliases: []string{"brustschmerz", "chest pain", "druck auf der brust", "brustkorbschmerz"}},
			{Type: entities.EntityTypeSymptom, Canonical: "headache", Confidence: 0.9,
				Aliases: []string{"kopfschmerz", "headache", "migrane", "migraine"}},
			{Type: entities.EntityTypeSymptom, Canonical: "abdominal_pain", Confidence: 0.85,
				Aliases: []string{"bauchschmerz", "stomach ache", "belly pain", "magenschmerz"}},
			{Type: entities.EntityTypeSymptom, Canonical: "shortness_of_breath", Confidence: 0.9,
				Aliases: []string{"atemnot", "luftnot", "short of breath", "kurzatmig"}},
			{Type: entities.EntityTypeSymptom, Canonical: "dizziness", Confidence: 0.85,
				Aliases: []string{"schwindel", "dizzy", "dizziness"}},
			{Type: entities.EntityTypeSymptom, Canonical: "nausea", Confidence: 0.85,
				Aliases: []string{"ubelkeit", "nausea", "erbrechen", "vomiting"}},
			{Type: entities.EntityTypeSymptom, Canonical: "fever", Confidence: 0.9,
				Aliases: []string{"fieber", "fever", "erhohte temperatur"}},
			{Type: entities.EntityTypeSymptom, Canonical: "back_pain", Confidence: 0.85,
				Aliases: []string{"ruckenschmerz", "back pain", "kreuzschmerz"}},

			{Type: entities.EntityTypeMedication, Canonical: "ibuprofen", Confidence: 0.95,
				Aliases: []string{"ibuprofen", "ibu 400", "ibu 600"}},
			{Type: entities.EntityTypeMedication, Canonical: "paracetamol", Confidence: 0.95,
				Aliases: []string{"paracetamol", "acetaminophen"}},
			{Type: entities.EntityTypeMedication, Canonical: "aspirin", Confidence: 0.95,
				Aliases: []string{"aspirin", "ass 100"}},
			{Type: entities.EntityTypeMedication, Canonical: "metformin", Confidence: 0.95,
				Aliases: []string{"metformin"}},
			{Type: entities.EntityTypeMedication, Canonical: entities.NoMedicationCanonical, Confidence: 0.9,
				Aliases: []string{"keine medikamente", "keine tabletten", "nehme nichts", "no medication", "no meds"}},

			{Type: entities.EntityTypeDuration, Canonical: "acute_hours", Confidence: 0.8,
				Aliases: []string{"seit heute", "seit ein paar stunden", "since today", "for a few hours"}},
			{Type: entities.EntityTypeDuration, Canonical: "acute_days", Confidence: 0.8,
				Aliases: []string{"seit gestern", "seit ein paar tagen", "since yesterday", "for a few days"}},
			{Type: entities.EntityTypeDuration, Canonical: "chronic_weeks", Confidence: 0.75,
				Aliases: []string{"seit wochen", "seit monaten", "for weeks", "for months"}},

			{Type: entities.EntityTypeIntensity, Canonical: "high_intensity", Confidence: 0.8,
				Aliases: []string{"stark", "sehr stark", "heftig", "severe", "unertraglich"}},
			{Type: entities.EntityTypeIntensity, Canonical: "low_intensity", Confidence: 0.75,
				Aliases: []string{"leicht", "mild", "ertraglich", "slight"}},
		},
		GermanMarkers: []string{
			"ich", "habe", "seit", "heute", "gestern", "nicht", "keine", "und",
			"mir", "schmerzen", "nehme", "bin", "wieder", "sehr",
		},
		EnglishMarkers: []string{
			"i", "have", "my", "the", "pain", "since", "today", "taking",
			"not", "and", "feel", "very",
		},
	}
}
