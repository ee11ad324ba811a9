package model

// AllOptions is the sentinel option list entry for claims that apply to the
// whole decision space rather than to named options.
const AllOptions = "all"

// AnalyticalClaim is a single defensible assertion produced by a framework
// run. Claims are the unit the validation and sufficiency stages operate on.
type AnalyticalClaim struct {
	Statement         string          `json:"statement"`                    // The assertion itself
	Source            ClaimSource     `json:"source"`                       // Where the claim came from
	Confidence        ConfidenceLevel `json:"confidence"`                   // Model-reported confidence
	Framework         string          `json:"framework,omitempty"`          // Producing framework name
	ClaimType         ClaimType       `json:"claim_type"`                   // Scope of the claim
	ApplicableOptions []string        `json:"applicable_options,omitempty"` // Options the claim binds to
}

// ClaimSource identifies where a claim's content originated
type ClaimSource string

const (
	SourceInput      ClaimSource = "input"      // Stated directly in the provided material
	SourceAssumption ClaimSource = "assumption" // Declared or surfaced assumption
	SourceInference  ClaimSource = "inference"  // Reasoned from the material
	SourceDerived    ClaimSource = "derived"    // Computed from other claims
)

func (s ClaimSource) Valid() bool {
	switch s {
	case SourceInput, SourceAssumption, SourceInference, SourceDerived:
		return true
	}
	return false
}

// ClaimType describes how a claim binds to the decision's options
type ClaimType string

const (
	ClaimOptionSpecific ClaimType = "option_specific" // Binds exactly one option
	ClaimComparative    ClaimType = "comparative"     // Relates two or more options
	ClaimSystemLevel    ClaimType = "system_level"    // Applies to the whole decision space
)

func (t ClaimType) Valid() bool {
	switch t {
	case ClaimOptionSpecific, ClaimComparative, ClaimSystemLevel:
		return true
	}
	return false
}

// ConfidenceLevel is the model-reported confidence attached to a claim
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

func (c ConfidenceLevel) Valid() bool {
	switch c {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		return true
	}
	return false
}
