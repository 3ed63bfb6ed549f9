package evaluation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avenahealth/clinical-intake/internal/domain/entities"
)

func validUtterance(id string) GoldenUtterance {
	return GoldenUtterance{
		ID:                 id,
		Phrase:             "Ich habe Brustschmerzen",
		ExpectedLanguage:   entities.LanguageGerman,
		ExpectedCanonicals: []string{"chest_pain"},
		Difficulty:         "easy",
	}
}

func TestValidateGoldenUtterances(t *testing.T) {
	assert.NoError(t, ValidateGoldenUtterances([]GoldenUtterance{validUtterance("g1"), validUtterance("g2")}))

	missingID := validUtterance("")
	assert.Error(t, ValidateGoldenUtterances([]GoldenUtterance{missingID}))

	assert.Error(t, ValidateGoldenUtterances([]GoldenUtterance{validUtterance("g1"), validUtterance("g1")}))

	badLanguage := validUtterance("g1")
	badLanguage.ExpectedLanguage = "fr"
	assert.Error(t, ValidateGoldenUtterances([]GoldenUtterance{badLanguage}))

	badDifficulty := validUtterance("g1")
	badDifficulty.Difficulty = "impossible"
	assert.Error(t, ValidateGoldenUtterances([]GoldenUtterance{badDifficulty}))
}

func TestLoadGoldenUtterances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "golden.json")
	payload := `[{"id":"g1","phrase":"Ich habe Fieber","expected_language":"de","expected_canonicals":["fever"],"difficulty":"easy"}]`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	utterances, err := LoadGoldenUtterances(path)
	require.NoError(t, err)
	require.Len(t, utterances, 1)
	assert.Equal(t, "g1", utterances[0].ID)
	assert.Equal(t, entities.LanguageGerman, utterances[0].ExpectedLanguage)
	assert.Equal(t, []string{"fever"}, utterances[0].ExpectedCanonicals)

	_, err = LoadGoldenUtterances(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
