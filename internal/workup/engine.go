package workup

import (
	"fmt"

	"github.com/avenahealth/clinical-intake/internal/domain/entities"
	"github.com/avenahealth/clinical-intake/pkg/canonical"
	apperrors "github.com/avenahealth/clinical-intake/pkg/errors"
)

// Engine evaluates evidence packs against per-funnel rulesets. It is immutable
// after construction and safe for concurrent use.
type Engine struct {
	rulesets map[string]Ruleset
}

// NewEngine validates every ruleset and requires a ruleset under
// DefaultRulesetSlug so unknown funnels always resolve.
func NewEngine(rulesets map[string]Ruleset) (*Engine, error) {
	if _, ok := rulesets[DefaultRulesetSlug]; !ok {
		return nil, apperrors.NewConfigurationError(fmt.Sprintf("no ruleset registered for default slug %q", DefaultRulesetSlug))
	}
	for slug, rs := range rulesets {
		if err := rs.Validate(); err != nil {
			return nil, fmt.Errorf("funnel %q: %w", slug, err)
		}
	}

	copied := make(map[string]Ruleset, len(rulesets))
	for slug, rs := range rulesets {
		copied[slug] = rs
	}
	return &Engine{rulesets: copied}, nil
}

// NewDefaultEngine builds an engine on the built-in rulesets.
func NewDefaultEngine() *Engine {
	engine, err := NewEngine(DefaultRulesets())
	if err != nil {
		// Built-in rulesets are covered by tests; this cannot happen at runtime.
		panic(err)
	}
	return engine
}

// RulesetVersion resolves the ruleset identifier for a funnel slug, falling
// back to the default ruleset's version for unknown funnels.
func (e *Engine) RulesetVersion(funnelSlug string) string {
	return e.resolve(funnelSlug).Version
}

func (e *Engine) resolve(funnelSlug string) Ruleset {
	if rs, ok := e.rulesets[funnelSlug]; ok {
		return rs
	}
	return e.rulesets[DefaultRulesetSlug]
}

// Check evaluates the pack against the ruleset of its funnel. Every failed
// rule contributes its field key and follow-up questions in declaration order.
// The only error path is an evidence pack the canonical hasher cannot
// serialize; absent fields are an expected verdict, not an error.
func (e *Engine) Check(pack entities.EvidencePack) (entities.WorkupResult, error) {
	ruleset := e.resolve(pack.FunnelSlug)

	missing := make([]string, 0)
	questions := make([]string, 0)
	for _, rule := range ruleset.Rules {
		if rule.evaluate(pack.SectionsData) {
			continue
		}
		missing = append(missing, rule.Field)
		questions = append(questions, rule.FollowUpQuestions...)
	}

	hash, err := canonical.Hash(pack)
	if err != nil {
		return entities.WorkupResult{}, fmt.Errorf("failed to hash evidence pack: %w", err)
	}

	return entities.WorkupResult{
		AssessmentID:      pack.AssessmentID,
		IsSufficient:      len(missing) == 0,
		MissingDataFields: missing,
		FollowUpQuestions: questions,
		EvidencePackHash:  hash,
		RulesetVersion:    ruleset.Version,
	}, nil
}
