package model

// DecisionSurface collects what a decision owner must still judge after the
// analysis: the conditions that would change the assessment, the unknowns
// that dominate it, and the areas where no framework can substitute for
// judgment.
type DecisionSurface struct {
	DecisionQuestion           string   `json:"decision_question,omitempty"`
	Options                    []string `json:"options,omitempty"`
	AssessmentChangeConditions []string `json:"assessment_change_conditions"`
	DominantUnknowns           []string `json:"dominant_unknowns"`
	JudgmentRequiredAreas      []string `json:"judgment_required_areas"`
	TradeoffAxes               []string `json:"tradeoff_axes,omitempty"`
	BlockedJudgments           []string `json:"blocked_judgments,omitempty"`
}
