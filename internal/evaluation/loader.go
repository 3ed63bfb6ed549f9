package evaluation

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/avenahealth/clinical-intake/internal/domain/entities"
)

// LoadGoldenUtterances reads and parses a golden utterance set from a JSON file.
func LoadGoldenUtterances(path string) ([]GoldenUtterance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read golden utterances file: %w", err)
	}

	var utterances []GoldenUtterance
	if err := json.Unmarshal(data, &utterances); err != nil {
		return nil, fmt.Errorf("failed to parse golden utterances: %w", err)
	}

	return utterances, nil
}

var validDifficulties = map[string]bool{
	"easy":   true,
	"medium": true,
	"hard":   true,
}

var validLanguages = map[entities.DetectedLanguage]bool{
	entities.LanguageGerman:  true,
	entities.LanguageEnglish: true,
	entities.LanguageMixed:   true,
	entities.LanguageUnknown: true,
}

// ValidateGoldenUtterances checks that all utterances have required fields and
// valid label values.
func ValidateGoldenUtterances(utterances []GoldenUtterance) error {
	seen := make(map[string]struct{}, len(utterances))

	for i, u := range utterances {
		if u.ID == "" {
			return fmt.Errorf("utterance at index %d: missing id", i)
		}
		if _, dup := seen[u.ID]; dup {
			return fmt.Errorf("utterance at index %d: duplicate id %q", i, u.ID)
		}
		seen[u.ID] = struct{}{}

		if u.Phrase == "" {
			return fmt.Errorf("utterance %q: missing phrase", u.ID)
		}
		if !validLanguages[u.ExpectedLanguage] {
			return fmt.Errorf("utterance %q: invalid expected language %q", u.ID, u.ExpectedLanguage)
		}
		if !validDifficulties[u.Difficulty] {
			return fmt.Errorf("utterance %q: invalid difficulty %q (must be easy/medium/hard)", u.ID, u.Difficulty)
		}
	}

	return nil
}
