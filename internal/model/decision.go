package model

import "fmt"

// DecisionType classifies what kind of decision the analysis serves
type DecisionType string

const (
	DecisionExplore    DecisionType = "explore"     // Understand the space before options exist
	DecisionCompare    DecisionType = "compare"     // Choose between named options
	DecisionStressTest DecisionType = "stress_test" // Probe a tentative choice for fragility
)

func (d DecisionType) Valid() bool {
	switch d {
	case DecisionExplore, DecisionCompare, DecisionStressTest:
		return true
	}
	return false
}

// DecisionFocus pins an analysis to a concrete decision: the question being
// decided, its type, and the options on the table. A nil focus means the run
// is exploratory.
type DecisionFocus struct {
	DecisionQuestion string       `json:"decision_question"`
	DecisionType     DecisionType `json:"decision_type"`
	Options          []string     `json:"options"`
}

// NewDecisionFocus builds a DecisionFocus. The options must contain at least
// two distinct entries; a one-option "decision" is not a decision.
func NewDecisionFocus(question string, decisionType DecisionType, options []string) (*DecisionFocus, error) {
	if question == "" {
		return nil, fmt.Errorf("decision focus requires a decision question")
	}
	if !decisionType.Valid() {
		return nil, fmt.Errorf("invalid decision type: %q", decisionType)
	}
	seen := make(map[string]struct{}, len(options))
	for _, opt := range options {
		seen[opt] = struct{}{}
	}
	if len(seen) < 2 {
		return nil, fmt.Errorf("decision focus requires at least 2 distinct options, got %d", len(seen))
	}
	return &DecisionFocus{
		DecisionQuestion: question,
		DecisionType:     decisionType,
		Options:          append([]string(nil), options...),
	}, nil
}
