package evaluation

import "fmt"

// GuardrailConfig sets the release thresholds a vocabulary change must clear.
type GuardrailConfig struct {
	MinAvgPrecision      float64
	MinAvgRecall         float64
	MinLanguageAccuracy  float64
	MaxClarificationRate float64
}

// DefaultGuardrailConfig returns the thresholds applied when none are set.
func DefaultGuardrailConfig() GuardrailConfig {
	return GuardrailConfig{
		MinAvgPrecision:      0.80,
		MinAvgRecall:         0.75,
		MinLanguageAccuracy:  0.90,
		MaxClarificationRate: 0.40,
	}
}

type Guardrails struct {
	config GuardrailConfig
}

func NewGuardrails(config GuardrailConfig) *Guardrails {
	zero := GuardrailConfig{}
	if config == zero {
		config = DefaultGuardrailConfig()
	}
	return &Guardrails{config: config}
}

// Check returns one violation message per threshold the summary misses; an
// empty slice means the run passes.
func (g *Guardrails) Check(summary *EvalSummary) []string {
	var violations []string
	if summary.AvgPrecision < g.config.MinAvgPrecision {
		violations = append(violations, fmt.Sprintf("avg precision %.3f below minimum %.3f", summary.AvgPrecision, g.config.MinAvgPrecision))
	}
	if summary.AvgRecall < g.config.MinAvgRecall {
		violations = append(violations, fmt.Sprintf("avg recall %.3f below minimum %.3f", summary.AvgRecall, g.config.MinAvgRecall))
	}
	if summary.LanguageAccuracy < g.config.MinLanguageAccuracy {
		violations = append(violations, fmt.Sprintf("language accuracy %.3f below minimum %.3f", summary.LanguageAccuracy, g.config.MinLanguageAccuracy))
	}
	if summary.ClarificationRate > g.config.MaxClarificationRate {
		violations = append(violations, fmt.Sprintf("clarification rate %.3f above maximum %.3f", summary.ClarificationRate, g.config.MaxClarificationRate))
	}
	return violations
}
