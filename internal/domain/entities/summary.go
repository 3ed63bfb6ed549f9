package entities

// VisitPreparationSummary is the clinician-facing brief projected from the
// structured intake data. A pure projection: no new inference.
type VisitPreparationSummary struct {
	ChiefComplaint *string  `json:"chief_complaint"`
	Course         []string `json:"course"`
	RedFlags       []string `json:"red_flags"`
	Medication     []string `json:"medication"`
}
