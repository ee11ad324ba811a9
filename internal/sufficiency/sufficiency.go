// Package sufficiency computes the cross-framework analysis verdict: what
// the run managed to bind to the decision, not how good the options are.
// The summary is recomputed from scratch on every call.
package sufficiency

import "github.com/ppiankov/krisis/internal/model"

// Aggregate computes the sufficiency summary from the problem context and
// the terminal framework results. Results are expected to have passed
// through validate.Sufficiency already; only their surviving claims count.
func Aggregate(pctx *model.ProblemContext, results []model.FrameworkResult) model.AnalysisSufficiencySummary {
	summary := model.AnalysisSufficiencySummary{
		DecisionBinding:   decisionBinding(pctx),
		OptionCoverage:    optionCoverage(pctx, results),
		FrameworkCoverage: frameworkCoverage(results),
	}
	summary.OverallStatus = overall(summary)
	return summary
}

func decisionBinding(pctx *model.ProblemContext) model.DecisionBindingStatus {
	if pctx != nil && pctx.DecisionFocus != nil && len(pctx.DecisionFocus.Options) >= 2 {
		return model.BindingPresent
	}
	return model.BindingAmbiguous
}

// optionCoverage checks that every focus option is named by at least one
// surviving claim. Comparative claims count; the "all" sentinel does not
// stand in for a named option.
func optionCoverage(pctx *model.ProblemContext, results []model.FrameworkResult) model.CoverageStatus {
	if pctx == nil || pctx.DecisionFocus == nil {
		return model.CoverageNotApplicable
	}
	covered := make(map[string]bool)
	for _, res := range results {
		for _, c := range res.Claims {
			for _, opt := range c.ApplicableOptions {
				covered[opt] = true
			}
		}
	}
	for _, opt := range pctx.DecisionFocus.Options {
		if !covered[opt] {
			return model.CoveragePartial
		}
	}
	return model.CoverageComplete
}

func frameworkCoverage(results []model.FrameworkResult) model.CoverageStatus {
	for _, res := range results {
		if res.ExecutionStatus != model.StatusSuccessful {
			return model.CoveragePartial
		}
	}
	return model.CoverageComplete
}

// overall derives the verdict: an ambiguous decision binding makes the run
// exploratory regardless of coverage; any partial coverage constrains it.
func overall(s model.AnalysisSufficiencySummary) model.SufficiencyStatus {
	if s.DecisionBinding == model.BindingAmbiguous {
		return model.SufficiencyExploratory
	}
	if s.OptionCoverage == model.CoveragePartial || s.FrameworkCoverage == model.CoveragePartial {
		return model.SufficiencyConstrained
	}
	return model.SufficiencyProduced
}
