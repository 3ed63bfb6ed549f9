package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	tsclient "github.com/avenahealth/clinical-intake/internal/infrastructure/clients/typesense"
	"github.com/avenahealth/clinical-intake/internal/normalization"
	apperrors "github.com/avenahealth/clinical-intake/pkg/errors"
	"github.com/avenahealth/clinical-intake/pkg/textmatch"
)

// VocabularySuggestion is one autocomplete hit from the clinical vocabulary.
type VocabularySuggestion struct {
	CanonicalName string   `json:"canonical_name"`
	EntityType    string   `json:"entity_type"`
	Aliases       []string `json:"aliases"`
	Confidence    float64  `json:"confidence"`
}

// VocabularyAdapter serves patient-facing symptom autocomplete from a
// Typesense index of the canonical clinical entity table.
type VocabularyAdapter struct {
	client *tsclient.Client
}

// NewVocabularyAdapter creates a new vocabulary search adapter
func NewVocabularyAdapter(client *tsclient.Client) *VocabularyAdapter {
	return &VocabularyAdapter{client: client}
}

// IndexKnowledgeBase upserts every entity candidate into the vocabulary
// collection. Re-indexing the same knowledge base is idempotent.
func (a *VocabularyAdapter) IndexKnowledgeBase(ctx context.Context, kb normalization.KnowledgeBase) error {
	for _, document := range buildVocabularyDocuments(kb) {
		if err := a.client.IndexEntity(ctx, document); err != nil {
			return fmt.Errorf("failed to index vocabulary entry %v: %w", document["id"], err)
		}
	}
	return nil
}

// Suggest returns vocabulary entries whose aliases or canonical name match the
// patient's partial input.
func (a *VocabularyAdapter) Suggest(ctx context.Context, prefix string, limit int) ([]VocabularySuggestion, error) {
	if strings.TrimSpace(prefix) == "" {
		return []VocabularySuggestion{}, nil
	}
	if limit <= 0 {
		limit = 10
	}

	searchParams := &api.SearchCollectionParams{
		Q:       pointer.String(textmatch.FoldTrim(prefix)),
		QueryBy: pointer.String("aliases,canonical_name"),
		PerPage: pointer.Int(limit),
	}

	result, err := a.client.Client().Collection(tsclient.VocabularyCollection).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to search vocabulary", err)
	}

	suggestions := []VocabularySuggestion{}
	if result.Hits == nil {
		return suggestions, nil
	}
	for _, hit := range *result.Hits {
		doc := *hit.Document

		suggestion := VocabularySuggestion{}
		if v, ok := doc["canonical_name"].(string); ok {
			suggestion.CanonicalName = v
		}
		if v, ok := doc["entity_type"].(string); ok {
			suggestion.EntityType = v
		}
		if v, ok := doc["confidence"].(float64); ok {
			suggestion.Confidence = v
		}
		if raw, ok := doc["aliases"].([]interface{}); ok {
			for _, item := range raw {
				if alias, ok := item.(string); ok {
					suggestion.Aliases = append(suggestion.Aliases, alias)
				}
			}
		}

		suggestions = append(suggestions, suggestion)
	}

	return suggestions, nil
}

// buildVocabularyDocuments flattens the knowledge base into Typesense
// documents, one per entity candidate, keyed by type and canonical name.
func buildVocabularyDocuments(kb normalization.KnowledgeBase) []map[string]interface{} {
	documents := make([]map[string]interface{}, 0, len(kb.Candidates))
	for _, c := range kb.Candidates {
		aliases := make([]string, 0, len(c.Aliases))
		for _, alias := range c.Aliases {
			folded := textmatch.FoldTrim(alias)
			if folded != "" {
				aliases = append(aliases, folded)
			}
		}

		documents = append(documents, map[string]interface{}{
			"id":             fmt.Sprintf("%s-%s", c.Type, c.Canonical),
			"canonical_name": c.Canonical,
			"entity_type":    string(c.Type),
			"aliases":        aliases,
			"confidence":     c.Confidence,
		})
	}
	return documents
}
