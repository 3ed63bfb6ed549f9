// Package followup classifies patient replies to follow-up questions into
// semantic outcome categories. Classification is a pure function of its
// arguments: identical input always yields the identical category.
package followup

import (
	"regexp"
	"strings"

	"github.com/avenahealth/clinical-intake/internal/domain/entities"
	"github.com/avenahealth/clinical-intake/pkg/textmatch"
)

// QuestionContext is the inferred semantic topic of a follow-up question.
type QuestionContext string

const (
	ContextMedication     QuestionContext = "medication"
	ContextOnset          QuestionContext = "onset"
	ContextDuration       QuestionContext = "duration"
	ContextCourse         QuestionContext = "course"
	ContextPsychosocial   QuestionContext = "psychosocial"
	ContextChiefComplaint QuestionContext = "chief_complaint"
	ContextGeneric        QuestionContext = "generic"
)

// negativeShortForms are the canonical negation tokens, fuzzy-matched within
// edit distance 1.
var negativeShortForms = []string{"nein", "no", "none", "nope", "nee"}

// negationShape gates fuzzy candidates: 2-6 lowercase letters starting ne/no.
var negationShape = regexp.MustCompile(`^(ne|no)[a-z]{0,4}$`)

// fillerAnswers are non-answers rejected as unclear.
var fillerAnswers = map[string]struct{}{
	"?": {}, "??": {}, "???": {},
	"ok": {}, "okay": {}, "hm": {}, "hmm": {}, "aha": {},
	"weiss nicht": {}, "keine ahnung": {}, "unbekannt": {},
	"k.a.": {}, "ka": {}, "idk": {}, "dunno": {},
}

// affirmativeShortForms acknowledge a question without carrying detail.
var affirmativeShortForms = map[string]struct{}{
	"ja": {}, "jep": {}, "jo": {}, "klar": {}, "genau": {},
	"yes": {}, "yep": {}, "yeah": {}, "sure": {},
}

// noMedicationPhrases state that no medication is taken.
var noMedicationPhrases = []string{
	"keine medikamente", "keine tabletten", "nehme nichts", "nehme keine",
	"no medication", "no meds", "not taking anything", "nichts",
}

// medicationVocabulary carries a medication-positive signal: named substances
// plus generic medication words.
var medicationVocabulary = []string{
	"ibuprofen", "paracetamol", "acetaminophen", "aspirin", "ass 100",
	"metformin", "insulin", "ramipril", "antibiotika", "antibiotic",
	"tablette", "tabletten", "medikament", "medication", "pille", "pill",
	"tropfen", "spray",
}

// priorContextPhrases assert the information was already provided.
var priorContextPhrases = []string{
	"bereits gesagt", "schon gesagt", "bereits erwahnt", "schon erwahnt",
	"bereits angegeben", "schon angegeben", "wie gesagt", "siehe oben",
	"already mentioned", "already said", "already told", "as i said",
}

// contextKeywords infer the question context; first match wins.
var contextKeywords = []struct {
	context  QuestionContext
	keywords []string
}{
	{ContextMedication, []string{"medikament", "medication", "tablette", "arznei", "pill", "med"}},
	{ContextOnset, []string{"seit wann", "wann begonnen", "wann hat", "onset", "when did", "started"}},
	{ContextDuration, []string{"wie lange", "dauer", "duration", "how long"}},
	{ContextCourse, []string{"verlauf", "entwickelt", "schlimmer", "besser", "course", "progress", "worse"}},
	{ContextPsychosocial, []string{"stress", "belastung", "stimmung", "schlaf", "psych", "mood", "sleep"}},
	{ContextChiefComplaint, []string{"hauptbeschwerde", "beschwerden fuhren", "chief complaint", "main complaint", "what brings"}},
}

// Classify maps the patient's reply to a follow-up question onto an outcome
// category. The optional normalization turn contributes its mapped canonicals
// to contradiction and medication detection.
func Classify(askedQuestionIDs []string, askedQuestionText, answerText string, turn *entities.NormalizationTurn) entities.FollowupAnswerClassification {
	folded := strings.Join(strings.Fields(textmatch.Fold(answerText)), " ")
	short := textmatch.TrimTrailingPunctuation(folded)

	if isNonAnswer(short) {
		return entities.AnswerUnclear
	}

	context := InferContext(askedQuestionIDs, askedQuestionText)

	// Contradiction detection takes precedence over every other rule.
	if isContradiction(folded, short, turn) {
		return entities.AnswerContradiction
	}

	// A reference to earlier answers asserts completeness, not refusal.
	if len(askedQuestionIDs) > 0 && containsAny(folded, priorContextPhrases) {
		return entities.AnswerAnswered
	}

	if context == ContextMedication {
		return classifyMedicationAnswer(folded, short, turn)
	}

	return classifyGenericAnswer(short)
}

// InferContext derives the question context from keyword matches over the
// asked question identifiers and text. Defaults to generic.
func InferContext(askedQuestionIDs []string, askedQuestionText string) QuestionContext {
	haystack := textmatch.Fold(strings.Join(askedQuestionIDs, " ") + " " + askedQuestionText)

	for _, ck := range contextKeywords {
		if containsAny(haystack, ck.keywords) {
			return ck.context
		}
	}
	return ContextGeneric
}

func isNonAnswer(short string) bool {
	if len([]rune(short)) < 2 {
		return true
	}
	_, filler := fillerAnswers[short]
	return filler
}

func isContradiction(folded, short string, turn *entities.NormalizationTurn) bool {
	negative := hasNegationSignal(folded, short)
	positive := hasMedicationSignal(folded)
	if negative && positive {
		return true
	}
	return turnHasMedicationContradiction(turn)
}

// hasMedicationSignal checks for named substances or generic medication
// vocabulary. No-medication phrases are blanked out first so that "keine
// medikamente" does not count as a positive signal.
func hasMedicationSignal(folded string) bool {
	cleaned := folded
	for _, p := range noMedicationPhrases {
		cleaned = strings.ReplaceAll(cleaned, p, " ")
	}
	return containsAny(cleaned, medicationVocabulary)
}

// hasNegationSignal checks each word for an exact or fuzzy negative short
// form, plus the fixed "no medication" phrases.
func hasNegationSignal(folded, short string) bool {
	if containsAny(folded, noMedicationPhrases) {
		return true
	}
	for _, word := range strings.Fields(short) {
		word = strings.Trim(word, ".,!?;:\"'()")
		if isFuzzyNegative(word) {
			return true
		}
	}
	return false
}

// isFuzzyNegative accepts a word only if it roughly has the shape of a
// negation token and sits within edit distance 1 of a canonical negative form.
func isFuzzyNegative(word string) bool {
	if !negationShape.MatchString(word) {
		return false
	}
	return textmatch.WithinDistance(word, negativeShortForms, 1)
}

func turnHasMedicationContradiction(turn *entities.NormalizationTurn) bool {
	if turn == nil {
		return false
	}
	noneReported, concrete := false, false
	for _, e := range turn.MappedEntities {
		if e.EntityType != entities.EntityTypeMedication {
			continue
		}
		if e.CanonicalName == entities.NoMedicationCanonical {
			noneReported = true
		} else {
			concrete = true
		}
	}
	return noneReported && concrete
}

func turnHasMedicationSignal(turn *entities.NormalizationTurn) bool {
	if turn == nil {
		return false
	}
	for _, e := range turn.MappedEntities {
		if e.EntityType == entities.EntityTypeMedication {
			return true
		}
	}
	return false
}

func classifyMedicationAnswer(folded, short string, turn *entities.NormalizationTurn) entities.FollowupAnswerClassification {
	// "nein" and close variants fully answer a medication question.
	if isFuzzyNegative(short) {
		return entities.AnswerAnswered
	}

	// A bare "ja" acknowledges the question but names nothing.
	if _, ok := affirmativeShortForms[short]; ok {
		return entities.AnswerPartial
	}

	if hasMedicationSignal(folded) || containsAny(folded, noMedicationPhrases) || turnHasMedicationSignal(turn) {
		return entities.AnswerAnswered
	}

	if len([]rune(short)) >= 6 {
		return entities.AnswerPartial
	}
	return entities.AnswerUnclear
}

func classifyGenericAnswer(short string) entities.FollowupAnswerClassification {
	if _, ok := affirmativeShortForms[short]; ok {
		return entities.AnswerPartial
	}
	if isFuzzyNegative(short) {
		return entities.AnswerPartial
	}
	if len([]rune(short)) < 6 {
		return entities.AnswerPartial
	}
	return entities.AnswerAnswered
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
