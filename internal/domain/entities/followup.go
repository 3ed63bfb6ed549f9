package entities

// FollowupAnswerClassification is the semantic outcome category of a patient's
// reply to a follow-up question.
type FollowupAnswerClassification string

const (
	AnswerAnswered      FollowupAnswerClassification = "answered"
	AnswerPartial       FollowupAnswerClassification = "partial"
	AnswerUnclear       FollowupAnswerClassification = "unclear"
	AnswerContradiction FollowupAnswerClassification = "contradiction"
)

