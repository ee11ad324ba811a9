package validate

import "github.com/ppiankov/krisis/internal/model"

// InsufficientReason is the execution reason recorded when a framework ran
// but produced no claims that survive validation.
const InsufficientReason = "no valid claims affecting the decision space."

// Sufficiency resolves a framework result to its terminal status. A result
// the call/parse/bind chain already failed passes through unchanged; an
// otherwise-successful run keeps only its validated claims and is
// downgraded to insufficient when none survive. The input value is never
// modified.
func Sufficiency(res model.FrameworkResult, focus *model.DecisionFocus) model.FrameworkResult {
	if res.ExecutionStatus == model.StatusFailed {
		return res
	}
	var options []string
	if focus != nil {
		options = focus.Options
	}
	validated := Claims(res.Claims, options)
	res.Claims = validated
	if len(validated) == 0 {
		res.ExecutionStatus = model.StatusInsufficient
		res.ExecutionReason = InsufficientReason
		return res
	}
	res.ExecutionStatus = model.StatusSuccessful
	res.ExecutionReason = ""
	return res
}
