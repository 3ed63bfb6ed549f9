// Package intake assembles evidence packs from persisted assessment state.
package intake

import (
	"context"
	"fmt"

	"github.com/avenahealth/clinical-intake/internal/domain/entities"
	"github.com/avenahealth/clinical-intake/internal/domain/providers"
	"github.com/avenahealth/clinical-intake/internal/domain/repositories"
)

// RulesetVersioner resolves the active ruleset identifier for a funnel.
type RulesetVersioner interface {
	RulesetVersion(funnelSlug string) string
}

// EvidencePackAdapter implements EvidencePackProvider by projecting the stored
// intake record into the sections the workup engine evaluates. Absent fields
// are omitted rather than written as empty values, so presence predicates see
// them as missing.
type EvidencePackAdapter struct {
	assessments        repositories.AssessmentRepository
	records            repositories.IntakeRecordRepository
	versioner          RulesetVersioner
	pdfTemplateVersion string
}

// NewEvidencePackAdapter creates a new evidence pack adapter
func NewEvidencePackAdapter(
	assessments repositories.AssessmentRepository,
	records repositories.IntakeRecordRepository,
	versioner RulesetVersioner,
	pdfTemplateVersion string,
) providers.EvidencePackProvider {
	return &EvidencePackAdapter{
		assessments:        assessments,
		records:            records,
		versioner:          versioner,
		pdfTemplateVersion: pdfTemplateVersion,
	}
}

// Build assembles the evidence pack for one assessment
func (a *EvidencePackAdapter) Build(ctx context.Context, assessmentID string) (*entities.EvidencePack, error) {
	assessment, err := a.assessments.GetByID(ctx, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assessment: %w", err)
	}

	record, err := a.records.GetByAssessment(ctx, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load intake record: %w", err)
	}

	return &entities.EvidencePack{
		AssessmentID:       assessmentID,
		FunnelSlug:         assessment.FunnelSlug,
		PDFTemplateVersion: a.pdfTemplateVersion,
		RulesetVersion:     a.versioner.RulesetVersion(assessment.FunnelSlug),
		SectionsData:       buildSections(record),
	}, nil
}

func buildSections(record *entities.IntakeRecord) map[string]any {
	sections := map[string]any{}
	if record == nil {
		return sections
	}

	if record.ChiefComplaint != "" {
		sections["chief_complaint"] = record.ChiefComplaint
	}

	history := map[string]any{}
	for key, value := range map[string]string{
		"onset":     record.History.Onset,
		"duration":  record.History.Duration,
		"course":    record.History.Course,
		"trigger":   record.History.Trigger,
		"frequency": record.History.Frequency,
	} {
		if value != "" {
			history[key] = value
		}
	}
	sections["history_of_present_illness"] = history

	if len(record.Medications) > 0 {
		medication := make([]any, 0, len(record.Medications))
		for _, entry := range record.Medications {
			medication = append(medication, map[string]any{
				"name":      entry.Name,
				"dosage":    entry.Dosage,
				"frequency": entry.Frequency,
			})
		}
		sections["medication"] = medication
	} else if len(record.MedicationList) > 0 {
		medication := make([]any, 0, len(record.MedicationList))
		for _, item := range record.MedicationList {
			medication = append(medication, item)
		}
		sections["medication"] = medication
	}

	if len(record.RedFlags) > 0 {
		flags := make([]any, 0, len(record.RedFlags))
		for _, flag := range record.RedFlags {
			flags = append(flags, flag)
		}
		sections["red_flags"] = flags
	}

	if record.Psychosocial != "" {
		sections["psychosocial"] = record.Psychosocial
	}

	return sections
}
