// Package visitprep projects structured intake data into a clinician-readable
// visit preparation brief. It is a stateless projection over fields the
// normalization pipeline already produced.
package visitprep

import (
	"fmt"
	"strings"

	"github.com/avenahealth/clinical-intake/internal/domain/entities"
)

// negativeMedicationTokens are filtered out of the plain medication list
// fallback, matched case-insensitively after trimming.
var negativeMedicationTokens = map[string]struct{}{
	"keine":             {},
	"keine medikamente": {},
	"keine tabletten":   {},
	"nichts":            {},
	"no medication":     {},
	"no meds":           {},
	"none":              {},
	"nein":              {},
	"no":                {},
	"-":                 {},
}

// courseLabel pairs a fixed German label with its history field accessor.
type courseLabel struct {
	label string
	value func(entities.HistoryOfPresentIllness) string
}

var courseLabels = []courseLabel{
	{"Beginn", func(h entities.HistoryOfPresentIllness) string { return h.Onset }},
	{"Dauer", func(h entities.HistoryOfPresentIllness) string { return h.Duration }},
	{"Verlauf", func(h entities.HistoryOfPresentIllness) string { return h.Course }},
	{"Auslöser", func(h entities.HistoryOfPresentIllness) string { return h.Trigger }},
	{"Häufigkeit", func(h entities.HistoryOfPresentIllness) string { return h.Frequency }},
}

// Summarize builds the visit preparation brief. A nil record yields an
// all-empty summary, never an error.
func Summarize(record *entities.IntakeRecord) entities.VisitPreparationSummary {
	summary := entities.VisitPreparationSummary{
		Course:     make([]string, 0),
		RedFlags:   make([]string, 0),
		Medication: make([]string, 0),
	}
	if record == nil {
		return summary
	}

	if cc := strings.TrimSpace(record.ChiefComplaint); cc != "" {
		summary.ChiefComplaint = &cc
	}

	summary.Course = courseFragments(record.History)
	summary.RedFlags = redFlagUnion(record.RedFlags, record.TriggeredSafetyRules)
	summary.Medication = medicationLines(record.Medications, record.MedicationList)

	return summary
}

// courseFragments renders each present history field with its fixed German
// label; absent fields are skipped entirely.
func courseFragments(history entities.HistoryOfPresentIllness) []string {
	fragments := make([]string, 0, len(courseLabels))
	for _, cl := range courseLabels {
		if v := strings.TrimSpace(cl.value(history)); v != "" {
			fragments = append(fragments, fmt.Sprintf("%s: %s", cl.label, v))
		}
	}
	return fragments
}

// redFlagUnion merges listed red flags and triggered safety-rule reasons,
// duplicate-free in first-seen order.
func redFlagUnion(listed []string, hits []entities.SafetyRuleHit) []string {
	union := make([]string, 0, len(listed)+len(hits))
	seen := make(map[string]struct{})

	add := func(flag string) {
		flag = strings.TrimSpace(flag)
		if flag == "" {
			return
		}
		if _, dup := seen[flag]; dup {
			return
		}
		seen[flag] = struct{}{}
		union = append(union, flag)
	}

	for _, flag := range listed {
		add(flag)
	}
	for _, hit := range hits {
		add(hit.ShortReason)
	}
	return union
}

// medicationLines prefers structured entries; entries without a name are
// ignored and the parenthetical is omitted when both dosage and frequency are
// absent. Without structured entries it falls back to the plain list with
// no-medication sentinels filtered out.
func medicationLines(structured []entities.MedicationEntry, plain []string) []string {
	lines := make([]string, 0, len(structured))
	for _, entry := range structured {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			continue
		}
		dosage := strings.TrimSpace(entry.Dosage)
		frequency := strings.TrimSpace(entry.Frequency)

		switch {
		case dosage != "" && frequency != "":
			lines = append(lines, fmt.Sprintf("%s (%s, %s)", name, dosage, frequency))
		case dosage != "":
			lines = append(lines, fmt.Sprintf("%s (%s)", name, dosage))
		case frequency != "":
			lines = append(lines, fmt.Sprintf("%s (%s)", name, frequency))
		default:
			lines = append(lines, name)
		}
	}
	if len(lines) > 0 {
		return lines
	}

	for _, item := range plain {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		if _, negative := negativeMedicationTokens[strings.ToLower(trimmed)]; negative {
			continue
		}
		lines = append(lines, trimmed)
	}
	return lines
}
