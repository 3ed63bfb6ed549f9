package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrecision(t *testing.T) {
	assert.Equal(t, 1.0, Precision(nil, nil))
	assert.Equal(t, 0.0, Precision([]string{"chest_pain"}, nil))
	assert.Equal(t, 0.0, Precision(nil, []string{"chest_pain"}))
	assert.Equal(t, 1.0, Precision([]string{"chest_pain"}, []string{"chest_pain"}))
	assert.Equal(t, 0.5, Precision([]string{"chest_pain"}, []string{"chest_pain", "fever"}))
}

func TestRecall(t *testing.T) {
	assert.Equal(t, 1.0, Recall(nil, nil))
	assert.Equal(t, 1.0, Recall(nil, []string{"chest_pain"}))
	assert.Equal(t, 0.0, Recall([]string{"chest_pain"}, nil))
	assert.Equal(t, 0.5, Recall([]string{"chest_pain", "fever"}, []string{"fever"}))
	assert.Equal(t, 1.0, Recall([]string{"chest_pain"}, []string{"chest_pain", "fever"}))
}
