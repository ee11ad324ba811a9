package framework

import (
	"fmt"
	"strings"

	"github.com/ppiankov/krisis/internal/model"
)

// tagClaims stamps the producing framework on the payload's claims and fills
// the schema default for an omitted claim type. Everything else passes
// through as the model asserted it; downstream validation sees the claims
// unedited.
func tagClaims(claims []model.AnalyticalClaim, frameworkName string) []model.AnalyticalClaim {
	if len(claims) == 0 {
		return nil
	}
	out := make([]model.AnalyticalClaim, len(claims))
	for i, c := range claims {
		c.Framework = frameworkName
		if c.ClaimType == "" {
			c.ClaimType = model.ClaimSystemLevel
		}
		out[i] = c
	}
	return out
}

// validateClaims enforces the fields every bound claim must carry: a
// non-blank statement plus recognized source and confidence values.
func validateClaims(field string, claims []model.AnalyticalClaim) error {
	for i, c := range claims {
		if strings.TrimSpace(c.Statement) == "" {
			return fmt.Errorf("%s[%d]: statement is required", field, i)
		}
		if !c.Source.Valid() {
			return fmt.Errorf("%s[%d]: source must be one of input, assumption, inference, derived; got %q", field, i, c.Source)
		}
		if !c.Confidence.Valid() {
			return fmt.Errorf("%s[%d]: confidence must be one of low, medium, high; got %q", field, i, c.Confidence)
		}
	}
	return nil
}
