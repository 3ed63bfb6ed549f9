package textmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Brustschmerzen", "brustschmerzen"},
		{"Übelkeit", "ubelkeit"},
		{"weiß nicht", "weiss nicht"},
		{"Migräne", "migrane"},
		{"chest pain", "chest pain"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Fold(tt.in), "Fold(%q)", tt.in)
	}
}

func TestWithinDistance(t *testing.T) {
	negatives := []string{"nein", "no", "none", "nope", "nee"}

	assert.True(t, WithinDistance("nein", negatives, 1))
	assert.True(t, WithinDistance("nien", negatives, 1))
	assert.True(t, WithinDistance("non", negatives, 1))
	assert.False(t, WithinDistance("ja", negatives, 1))
	assert.False(t, WithinDistance("never", negatives, 1))
}

func TestTrimTrailingPunctuation(t *testing.T) {
	assert.Equal(t, "nein", TrimTrailingPunctuation("nein."))
	assert.Equal(t, "nein", TrimTrailingPunctuation("nein!? "))
	assert.Equal(t, "", TrimTrailingPunctuation("?!"))
}
