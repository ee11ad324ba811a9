// Package validate holds the pure checks between a framework run and its
// terminal status: the claim shape rules and the per-framework sufficiency
// evaluation. Nothing here performs I/O or mutates its inputs.
package validate

import (
	"fmt"

	"github.com/ppiankov/krisis/internal/model"
)

// Claims filters a claim list down to the claims whose shape is internally
// consistent. It is a pure filter: survivors pass through unchanged and in
// input order, rejects are dropped silently, and it never fails. Callers
// needing audit visibility log rejects before calling (see RejectReason).
//
// The rules check shape only:
//   - option_specific claims name exactly one option
//   - comparative claims name at least two
//   - system_level claims carry exactly the ["all"] sentinel
//
// Option-name membership against validOptions is not enforced; the
// parameter exists for callers that audit against the run's option set.
func Claims(claims []model.AnalyticalClaim, validOptions []string) []model.AnalyticalClaim {
	out := make([]model.AnalyticalClaim, 0, len(claims))
	for _, c := range claims {
		if RejectReason(c) == "" {
			out = append(out, c)
		}
	}
	return out
}

// RejectReason explains why a claim would be rejected, or returns "" for a
// claim that passes. Exposed so callers can log rejects before filtering.
func RejectReason(c model.AnalyticalClaim) string {
	switch c.ClaimType {
	case model.ClaimOptionSpecific:
		if len(c.ApplicableOptions) != 1 {
			return fmt.Sprintf("option_specific claim must name exactly 1 option, names %d", len(c.ApplicableOptions))
		}
	case model.ClaimComparative:
		if len(c.ApplicableOptions) < 2 {
			return fmt.Sprintf("comparative claim must name at least 2 options, names %d", len(c.ApplicableOptions))
		}
	case model.ClaimSystemLevel:
		if len(c.ApplicableOptions) != 1 || c.ApplicableOptions[0] != model.AllOptions {
			return fmt.Sprintf("system_level claim must use the [%q] sentinel", model.AllOptions)
		}
	}
	return ""
}
