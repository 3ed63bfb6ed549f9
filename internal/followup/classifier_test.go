package followup

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avenahealth/clinical-intake/internal/domain/entities"
)

func TestClassify_MedicationQuestionNegativeAnswer(t *testing.T) {
	got := Classify([]string{"q1"}, "Nehmen Sie Medikamente?", "nein", nil)
	assert.Equal(t, entities.AnswerAnswered, got)
}

func TestClassify_MedicationQuestionFuzzyNegative(t *testing.T) {
	// One dropped letter still reads as a negation
	got := Classify([]string{"q1"}, "Nehmen Sie Medikamente?", "nei", nil)
	assert.Equal(t, entities.AnswerAnswered, got)
}

func TestClassify_MedicationQuestionBareAffirmative(t *testing.T) {
	got := Classify([]string{"q1"}, "Nehmen Sie Medikamente?", "ja", nil)
	assert.Equal(t, entities.AnswerPartial, got)
}

func TestClassify_MedicationQuestionNamedSubstance(t *testing.T) {
	got := Classify([]string{"q1"}, "Nehmen Sie Medikamente?", "Ibuprofen 400 bei Bedarf", nil)
	assert.Equal(t, entities.AnswerAnswered, got)
}

func TestClassify_MedicationQuestionNoMedicationPhrase(t *testing.T) {
	got := Classify([]string{"q1"}, "Nehmen Sie Medikamente?", "Ich nehme keine Medikamente", nil)
	assert.Equal(t, entities.AnswerAnswered, got)
}

func TestClassify_ContradictionNegationPlusSubstance(t *testing.T) {
	got := Classify([]string{"q1"}, "Nehmen Sie Medikamente?", "Nein, nur Ibuprofen", nil)
	assert.Equal(t, entities.AnswerContradiction, got)
}

func TestClassify_ContradictionRegardlessOfContext(t *testing.T) {
	// Contradiction precedence: even under a non-medication question the
	// combined negation + substance signal wins.
	got := Classify([]string{"q1"}, "Seit wann haben Sie die Beschwerden?", "nein aber ich nehme Aspirin", nil)
	assert.Equal(t, entities.AnswerContradiction, got)
}

func TestClassify_ContradictionViaNormalizationTurn(t *testing.T) {
	turn := &entities.NormalizationTurn{
		MappedEntities: []entities.CanonicalEntity{
			{EntityType: entities.EntityTypeMedication, CanonicalName: entities.NoMedicationCanonical, SourcePhrase: "keine medikamente", Confidence: 0.9},
			{EntityType: entities.EntityTypeMedication, CanonicalName: "ibuprofen", SourcePhrase: "ibuprofen", Confidence: 0.95},
		},
	}

	got := Classify([]string{"q1"}, "Nehmen Sie Medikamente?", "steht doch oben beschrieben alles", turn)
	assert.Equal(t, entities.AnswerContradiction, got)
}

func TestClassify_PriorContextReferenceIsAnswered(t *testing.T) {
	got := Classify([]string{"q1"}, "Seit wann haben Sie die Beschwerden?", "Das habe ich bereits gesagt", nil)
	assert.Equal(t, entities.AnswerAnswered, got)

	got = Classify([]string{"q1"}, "When did the pain start?", "I already mentioned that above", nil)
	assert.Equal(t, entities.AnswerAnswered, got)
}

func TestClassify_FillerAnswersAreUnclear(t *testing.T) {
	for _, answer := range []string{"?", "ok", "hmm", "weiß nicht", "keine Ahnung", "unbekannt", "x"} {
		got := Classify([]string{"q1"}, "Seit wann haben Sie die Beschwerden?", answer, nil)
		assert.Equal(t, entities.AnswerUnclear, got, "answer %q", answer)
	}
}

func TestClassify_GenericShortAnswerIsPartial(t *testing.T) {
	got := Classify([]string{"q1"}, "Wie ist der Verlauf?", "gut", nil)
	assert.Equal(t, entities.AnswerPartial, got)
}

func TestClassify_GenericSubstantiveAnswerIsAnswered(t *testing.T) {
	got := Classify([]string{"q1"}, "Wie ist der Verlauf?", "Die Schmerzen sind seit gestern deutlich schlimmer geworden", nil)
	assert.Equal(t, entities.AnswerAnswered, got)
}

func TestClassify_MedicationQuestionVagueAnswer(t *testing.T) {
	// Long enough to be partial, but names nothing
	got := Classify([]string{"q1"}, "Nehmen Sie Medikamente?", "das eine von meinem Hausarzt", nil)
	assert.Equal(t, entities.AnswerPartial, got)
}

func TestClassify_Deterministic(t *testing.T) {
	args := func() entities.FollowupAnswerClassification {
		return Classify([]string{"q1", "q2"}, "Nehmen Sie Medikamente?", "Nein, nur Ibuprofen.", nil)
	}

	first := args()
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, args())
	}
}

func TestInferContext(t *testing.T) {
	tests := []struct {
		ids      []string
		text     string
		expected QuestionContext
	}{
		{[]string{"q1"}, "Nehmen Sie Medikamente?", ContextMedication},
		{[]string{"q1"}, "Seit wann haben Sie die Beschwerden?", ContextOnset},
		{[]string{"q1"}, "Wie lange halten die Schmerzen an?", ContextDuration},
		{[]string{"q1"}, "Wie ist der Verlauf?", ContextCourse},
		{[]string{"q1"}, "Haben Sie aktuell viel Stress?", ContextPsychosocial},
		{[]string{"q1"}, "Was ist Ihre Hauptbeschwerde?", ContextChiefComplaint},
		{[]string{"q1"}, "Haben Sie sonst noch etwas?", ContextGeneric},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, InferContext(tt.ids, tt.text), "question %q", tt.text)
	}
}
