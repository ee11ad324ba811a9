package model

import "time"

// ExecutionStatus is the terminal state of one framework run
type ExecutionStatus string

const (
	StatusSuccessful   ExecutionStatus = "successful"
	StatusInsufficient ExecutionStatus = "insufficient" // Ran, but produced no usable claims
	StatusFailed       ExecutionStatus = "failed"       // Call/parse/bind chain error
)

// FrameworkResult is the outcome of running a single framework against a
// problem context. Sufficiency validation produces a new value; results are
// never mutated in place.
type FrameworkResult struct {
	FrameworkName   string            `json:"framework_name"`
	ExecutionStatus ExecutionStatus   `json:"execution_status"`
	ExecutionReason string            `json:"execution_reason,omitempty"` // Set when not successful
	Claims          []AnalyticalClaim `json:"claims"`
	Result          any               `json:"result,omitempty"` // Framework-typed payload
}

// DecisionBindingStatus says whether the run had a usable decision context
type DecisionBindingStatus string

const (
	BindingPresent   DecisionBindingStatus = "decision_context_present"
	BindingAmbiguous DecisionBindingStatus = "genuinely_ambiguous"
)

// CoverageStatus grades how completely a dimension was covered
type CoverageStatus string

const (
	CoverageComplete      CoverageStatus = "complete"
	CoveragePartial       CoverageStatus = "partial"
	CoverageNotApplicable CoverageStatus = "not_applicable"
)

// SufficiencyStatus is the overall analysis verdict
type SufficiencyStatus string

const (
	SufficiencyProduced    SufficiencyStatus = "decision_relevant_reasoning_produced"
	SufficiencyConstrained SufficiencyStatus = "decision_relevant_but_constrained"
	SufficiencyExploratory SufficiencyStatus = "exploratory_pre_decision"
)

// AnalysisSufficiencySummary states what the analysis managed to bind to the
// decision. It reports, it does not judge option quality.
type AnalysisSufficiencySummary struct {
	DecisionBinding   DecisionBindingStatus `json:"decision_binding"`
	OptionCoverage    CoverageStatus        `json:"option_coverage"`
	FrameworkCoverage CoverageStatus        `json:"framework_coverage"`
	OverallStatus     SufficiencyStatus     `json:"overall_status"`
}

// AnalysisResult is the complete record of one analysis run
type AnalysisResult struct {
	ID               string                      `json:"id"`
	CreatedAt        time.Time                   `json:"created_at"`
	ProblemContext   *ProblemContext             `json:"problem_context"`
	FrameworkResults []FrameworkResult           `json:"framework_results"`
	Sufficiency      *AnalysisSufficiencySummary `json:"sufficiency,omitempty"`
	GeneratedReport  string                      `json:"generated_report,omitempty"` // Markdown
}

// ResultFor returns the result for the named framework, or nil.
func (r *AnalysisResult) ResultFor(name string) *FrameworkResult {
	for i := range r.FrameworkResults {
		if r.FrameworkResults[i].FrameworkName == name {
			return &r.FrameworkResults[i]
		}
	}
	return nil
}

// SurvivingClaims returns every claim that passed validation, in framework
// order.
func (r *AnalysisResult) SurvivingClaims() []AnalyticalClaim {
	var claims []AnalyticalClaim
	for _, fr := range r.FrameworkResults {
		claims = append(claims, fr.Claims...)
	}
	return claims
}
