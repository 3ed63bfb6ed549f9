// Package normalization maps free-text patient utterances onto canonical
// clinical entities. It is deterministic and stateless: every call takes the
// current intake record and returns an updated copy, so concurrent request
// handlers can share one Normalizer without synchronization.
package normalization

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/avenahealth/clinical-intake/internal/domain/entities"
	"github.com/avenahealth/clinical-intake/pkg/textmatch"
)

const (
	// MaxTurns bounds the normalization turn log; the oldest turn is evicted.
	MaxTurns = 50

	// MaxPendingClarifications bounds the pending clarification log.
	MaxPendingClarifications = 20

	// ClarificationThreshold is the ambiguity score at or above which a
	// clarification question is required.
	ClarificationThreshold = 0.55

	// TurnSourcePatient marks turns originating from patient utterances.
	TurnSourcePatient = "patient"
)

// Normalizer maps utterances against an immutable knowledge base.
type Normalizer struct {
	candidates []foldedCandidate
	german     map[string]struct{}
	english    map[string]struct{}
}

type foldedCandidate struct {
	entityType entities.EntityType
	canonical  string
	aliases    []string
	confidence float64
}

// NewNormalizer builds a normalizer from the given knowledge base. Aliases and
// markers are folded once here so matching stays cheap per call.
func NewNormalizer(kb KnowledgeBase) *Normalizer {
	n := &Normalizer{
		candidates: make([]foldedCandidate, 0, len(kb.Candidates)),
		german:     make(map[string]struct{}, len(kb.GermanMarkers)),
		english:    make(map[string]struct{}, len(kb.EnglishMarkers)),
	}

	for _, c := range kb.Candidates {
		fc := foldedCandidate{
			entityType: c.Type,
			canonical:  c.Canonical,
			confidence: c.Confidence,
			aliases:    make([]string, 0, len(c.Aliases)),
		}
		for _, alias := range c.Aliases {
			fc.aliases = append(fc.aliases, textmatch.FoldTrim(alias))
		}
		n.candidates = append(n.candidates, fc)
	}

	for _, m := range kb.GermanMarkers {
		n.german[textmatch.FoldTrim(m)] = struct{}{}
	}
	for _, m := range kb.EnglishMarkers {
		n.english[textmatch.FoldTrim(m)] = struct{}{}
	}

	return n
}

// Normalize processes one patient utterance against the record's intake state.
// It returns the updated record copy, the appended turn, and the clarification
// prompt when one is required. A blank phrase returns the input unchanged and
// no turn. The input record is never mutated.
func (n *Normalizer) Normalize(record entities.IntakeRecord, turnID, phrase string, now time.Time) (entities.IntakeRecord, *entities.NormalizationTurn, string) {
	if strings.TrimSpace(phrase) == "" {
		return record, nil, ""
	}

	folded := textmatch.Fold(phrase)
	language := n.detectLanguage(folded)
	mapped := n.mapEntities(folded)
	ambiguity := ambiguityScore(mapped)

	clarificationRequired := len(mapped) == 0 || ambiguity >= ClarificationThreshold
	prompt := ""
	if clarificationRequired {
		prompt = clarificationPrompt(phrase, language)
	}

	turn := entities.NormalizationTurn{
		TurnID:                turnID,
		Source:                TurnSourcePatient,
		DetectedLanguage:      language,
		OriginalPhrase:        phrase,
		MappedEntities:        mapped,
		AmbiguityScore:        ambiguity,
		ClarificationRequired: clarificationRequired,
		ClarificationPrompt:   prompt,
		CreatedAt:             now,
	}

	updated := record.Clone()
	updated.Turns = appendCapped(updated.Turns, turn, MaxTurns)
	if prompt != "" {
		updated.PendingClarifications = appendCapped(updated.PendingClarifications, entities.PendingClarification{
			TurnID:         turnID,
			Prompt:         prompt,
			AmbiguityScore: ambiguity,
			CreatedAt:      now,
		}, MaxPendingClarifications)
	}
	updated.LastUpdatedAt = now

	return updated, &turn, prompt
}

// detectLanguage classifies the folded phrase by marker vocabulary hits.
func (n *Normalizer) detectLanguage(folded string) entities.DetectedLanguage {
	german, english := false, false
	for _, word := range strings.Fields(folded) {
		word = strings.Trim(word, ".,!?;:\"'()")
		if _, ok := n.german[word]; ok {
			german = true
		}
		if _, ok := n.english[word]; ok {
			english = true
		}
	}

	switch {
	case german && english:
		return entities.LanguageMixed
	case german:
		return entities.LanguageGerman
	case english:
		return entities.LanguageEnglish
	default:
		return entities.LanguageUnknown
	}
}

// mapEntities tests every alias as a substring of the folded phrase. Each hit
// yields one entity carrying the matched alias as source phrase; exact
// duplicates (type + canonical + source) are dropped.
func (n *Normalizer) mapEntities(folded string) []entities.CanonicalEntity {
	var mapped []entities.CanonicalEntity
	seen := make(map[string]struct{})

	for _, c := range n.candidates {
		for _, alias := range c.aliases {
			if alias == "" || !strings.Contains(folded, alias) {
				continue
			}
			key := string(c.entityType) + "|" + c.canonical + "|" + alias
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			mapped = append(mapped, entities.CanonicalEntity{
				EntityType:    c.entityType,
				CanonicalName: c.canonical,
				SourcePhrase:  alias,
				Confidence:    c.confidence,
			})
		}
	}

	return mapped
}

// ambiguityScore is 1 minus the mean confidence, rounded to 2 decimals,
// and maximal (1.0) when nothing matched.
func ambiguityScore(mapped []entities.CanonicalEntity) float64 {
	if len(mapped) == 0 {
		return 1.0
	}

	sum := 0.0
	for _, e := range mapped {
		sum += e.Confidence
	}
	mean := sum / float64(len(mapped))
	return math.Round((1-mean)*100) / 100
}

// clarificationPrompt quotes the original phrase verbatim and asks the patient
// to disambiguate among symptom, medication and temporal course.
func clarificationPrompt(phrase string, language entities.DetectedLanguage) string {
	if language == entities.LanguageEnglish {
		return fmt.Sprintf("I did not fully understand %q. Did you mean a symptom, a medication, or the time course of your complaint?", phrase)
	}
	return fmt.Sprintf("Ich habe %q nicht eindeutig verstanden. Meinten Sie ein Symptom, ein Medikament oder den zeitlichen Verlauf Ihrer Beschwerden?", phrase)
}

// appendCapped appends item and truncates the log to its newest max entries.
func appendCapped[T any](log []T, item T, max int) []T {
	out := make([]T, len(log), len(log)+1)
	copy(out, log)
	out = append(out, item)
	if len(out) > max {
		out = out[len(out)-max:]
	}
	return out
}
