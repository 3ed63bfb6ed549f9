// Package workup decides whether the collected intake data of an assessment is
// clinically sufficient. The decision is purely rule-based: a versioned table
// of required-field rules is evaluated against an evidence pack, and every
// verdict carries a content hash of its input so identical evidence never
// produces divergent results.
package workup

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	apperrors "github.com/avenahealth/clinical-intake/pkg/errors"
)

// Presence predicates a field rule may reference.
const (
	PredicatePresent        = "present"
	PredicateNonEmptyString = "non_empty_string"
	PredicateNonEmptyList   = "non_empty_list"
)

// DefaultRulesetSlug is the funnel slug used when no dedicated ruleset exists.
const DefaultRulesetSlug = "general"

// FieldRule requires one evidence pack field to satisfy a presence predicate.
// Field is the key reported back when the rule fails; Path is the dotted
// lookup path into the pack's sections data and defaults to Field when empty.
type FieldRule struct {
	Field             string   `json:"field"`
	Path              string   `json:"path,omitempty"`
	Predicate         string   `json:"predicate"`
	FollowUpQuestions []string `json:"follow_up_questions"`
}

// Ruleset is the versioned rule table for one funnel. Rules are evaluated in
// declaration order, which fixes the order of reported missing fields.
type Ruleset struct {
	Version string      `json:"version"`
	Rules   []FieldRule `json:"rules"`
}

// Validate rejects rulesets the engine cannot evaluate. A rule referencing an
// unknown predicate is a configuration defect and must never reach runtime.
func (rs Ruleset) Validate() error {
	if strings.TrimSpace(rs.Version) == "" {
		return apperrors.NewConfigurationError("ruleset has no version identifier")
	}
	for i, rule := range rs.Rules {
		if strings.TrimSpace(rule.Field) == "" {
			return apperrors.NewConfigurationError(fmt.Sprintf("ruleset %s: rule at index %d has no field", rs.Version, i))
		}
		switch rule.Predicate {
		case PredicatePresent, PredicateNonEmptyString, PredicateNonEmptyList:
		default:
			return apperrors.NewConfigurationError(fmt.Sprintf("ruleset %s: field %q references unknown predicate %q", rs.Version, rule.Field, rule.Predicate))
		}
	}
	return nil
}

// lookupPath resolves the rule's dotted path against the sections data.
// A missing segment means the field is absent, never an error.
func (r FieldRule) lookupPath(sections map[string]any) (any, bool) {
	path := r.Path
	if path == "" {
		path = r.Field
	}

	var current any = sections
	for _, segment := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// evaluate applies the rule's predicate. An absent field always fails.
func (r FieldRule) evaluate(sections map[string]any) bool {
	value, ok := r.lookupPath(sections)
	if !ok || value == nil {
		return false
	}

	switch r.Predicate {
	case PredicateNonEmptyString:
		s, ok := value.(string)
		return ok && strings.TrimSpace(s) != ""
	case PredicateNonEmptyList:
		list, ok := value.([]any)
		return ok && len(list) > 0
	default: // PredicatePresent, guaranteed by Validate
		return true
	}
}

// LoadRulesets reads per-funnel rulesets from a JSON file keyed by funnel slug.
func LoadRulesets(path string) (map[string]Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ruleset file: %w", err)
	}

	var rulesets map[string]Ruleset
	if err := json.Unmarshal(data, &rulesets); err != nil {
		return nil, fmt.Errorf("failed to parse ruleset file: %w", err)
	}
	for slug, rs := range rulesets {
		if err := rs.Validate(); err != nil {
			return nil, fmt.Errorf("funnel %q: %w", slug, err)
		}
	}
	return rulesets, nil
}

// DefaultRulesets returns the built-in rule tables per funnel.
func DefaultRulesets() map[string]Ruleset {
	return map[string]Ruleset{
		"chest-pain": {
			Version: "chest-pain-v2",
			Rules: []FieldRule{
				{
					Field:             "chief_complaint",
					Predicate:         PredicateNonEmptyString,
					FollowUpQuestions: []string{"Was ist Ihre Hauptbeschwerde?"},
				},
				{
					Field:             "onset",
					Path:              "history_of_present_illness.onset",
					Predicate:         PredicateNonEmptyString,
					FollowUpQuestions: []string{"Seit wann haben Sie die Beschwerden?"},
				},
				{
					Field:             "duration",
					Path:              "history_of_present_illness.duration",
					Predicate:         PredicateNonEmptyString,
					FollowUpQuestions: []string{"Wie lange halten die Beschwerden jeweils an?"},
				},
				{
					Field:             "course",
					Path:              "history_of_present_illness.course",
					Predicate:         PredicateNonEmptyString,
					FollowUpQuestions: []string{"Wie haben sich die Beschwerden seitdem entwickelt?"},
				},
				{
					Field:             "medication",
					Predicate:         PredicateNonEmptyList,
					FollowUpQuestions: []string{"Nehmen Sie aktuell Medikamente ein?"},
				},
			},
		},
		DefaultRulesetSlug: {
			Version: "general-intake-v1",
			Rules: []FieldRule{
				{
					Field:             "chief_complaint",
					Predicate:         PredicateNonEmptyString,
					FollowUpQuestions: []string{"Was ist Ihre Hauptbeschwerde?"},
				},
				{
					Field:             "onset",
					Path:              "history_of_present_illness.onset",
					Predicate:         PredicateNonEmptyString,
					FollowUpQuestions: []string{"Seit wann haben Sie die Beschwerden?"},
				},
			},
		},
	}
}
