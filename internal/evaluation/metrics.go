package evaluation

// Precision computes the fraction of mapped canonicals that were expected.
// Returns 1.0 when nothing was mapped and nothing was expected, 0.0 when
// something was mapped against an empty expectation.
func Precision(expected, mapped []string) float64 {
	if len(mapped) == 0 {
		if len(expected) == 0 {
			return 1.0
		}
		return 0.0
	}

	expectedSet := make(map[string]struct{}, len(expected))
	for _, e := range expected {
		expectedSet[e] = struct{}{}
	}

	hits := 0
	for _, m := range mapped {
		if _, ok := expectedSet[m]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(mapped))
}

// Recall computes the fraction of expected canonicals that were mapped.
// Returns 1.0 when nothing was expected.
func Recall(expected, mapped []string) float64 {
	if len(expected) == 0 {
		return 1.0
	}

	mappedSet := make(map[string]struct{}, len(mapped))
	for _, m := range mapped {
		mappedSet[m] = struct{}{}
	}

	hits := 0
	for _, e := range expected {
		if _, ok := mappedSet[e]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(expected))
}
