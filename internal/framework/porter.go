package framework

import (
	"fmt"
	"strings"

	"github.com/ppiankov/krisis/internal/model"
	"github.com/ppiankov/krisis/internal/parse"
	"github.com/ppiankov/krisis/internal/schema"
)

// PorterAnalysis is the typed five-forces payload.
type PorterAnalysis struct {
	DecisionQuestion      string                  `json:"decision_question"`
	OptionsAnalyzed       []string                `json:"options_analyzed"`
	ThreatOfNewEntrants   ForceAnalysis           `json:"threat_of_new_entrants"`
	SupplierPower         ForceAnalysis           `json:"supplier_power"`
	BuyerPower            ForceAnalysis           `json:"buyer_power"`
	Substitutes           ForceAnalysis           `json:"substitutes"`
	Rivalry               ForceAnalysis           `json:"rivalry"`
	StructuralAsymmetries []StructuralAsymmetry   `json:"structural_asymmetries"`
	OptionAwareClaims     []model.AnalyticalClaim `json:"option_aware_claims"`
	SharedObservations    []string                `json:"shared_observations,omitempty"`
}

// ForceAnalysis is one of the five forces, analyzed per option.
type ForceAnalysis struct {
	Name                string        `json:"name"`
	RelevanceToDecision string        `json:"relevance_to_decision"` // high, medium, low
	RelevanceRationale  string        `json:"relevance_rationale"`
	EffectByOption      []ForceEffect `json:"effect_by_option"`
	SharedAssumptions   []string      `json:"shared_assumptions,omitempty"`
	SharedUnknowns      []string      `json:"shared_unknowns,omitempty"`
}

// ForceEffect is a force's bearing on a single option.
type ForceEffect struct {
	OptionName     string   `json:"option_name"`
	Description    string   `json:"description"`
	KeyAssumptions []string `json:"key_assumptions,omitempty"`
	KeyUnknowns    []string `json:"key_unknowns,omitempty"`
}

// StructuralAsymmetry is a force that bears harder on one option than on
// the others.
type StructuralAsymmetry struct {
	ForceName       string `json:"force_name"`
	Description     string `json:"description"`
	StrongerImpactOn string `json:"stronger_impact_on"`
	Rationale       string `json:"rationale"`
	KeyAssumption   string `json:"key_assumption"`
}

// porterTable covers every level of the porter payload: the wrapper, the
// force objects, the per-option effects, the asymmetries, and the claim
// fields.
var porterTable = schema.Table{
	Schema: PorterName,
	Fields: []schema.Field{
		{Name: "decision_question", Alias: "DecisionQuestion", Required: true},
		{Name: "options_analyzed", Alias: "OptionsAnalyzed", Required: true},
		{Name: "threat_of_new_entrants", Alias: "ThreatOfNewEntrants", Required: true},
		{Name: "supplier_power", Alias: "SupplierPower", Required: true},
		{Name: "buyer_power", Alias: "BuyerPower", Required: true},
		{Name: "substitutes", Alias: "Substitutes", Required: true},
		{Name: "rivalry", Alias: "Rivalry", Required: true},
		{Name: "structural_asymmetries", Alias: "StructuralAsymmetries", Required: true},
		{Name: "option_aware_claims", Alias: "OptionAwareClaims", Required: true},
		{Name: "shared_observations", Alias: "SharedObservations"},

		{Name: "name", Alias: "Name"},
		{Name: "relevance_to_decision", Alias: "RelevanceToDecision"},
		{Name: "relevance_rationale", Alias: "RelevanceRationale"},
		{Name: "effect_by_option", Alias: "EffectByOption"},
		{Name: "shared_assumptions", Alias: "SharedAssumptions"},
		{Name: "shared_unknowns", Alias: "SharedUnknowns"},

		{Name: "option_name", Alias: "OptionName"},
		{Name: "description", Alias: "Description"},
		{Name: "key_assumptions", Alias: "KeyAssumptions"},
		{Name: "key_unknowns", Alias: "KeyUnknowns"},

		{Name: "force_name", Alias: "ForceName"},
		{Name: "stronger_impact_on", Alias: "StrongerImpactOn"},
		{Name: "rationale", Alias: "Rationale"},
		{Name: "key_assumption", Alias: "KeyAssumption"},

		{Name: "statement", Alias: "Statement"},
		{Name: "source", Alias: "Source"},
		{Name: "confidence", Alias: "Confidence"},
		{Name: "claim_type", Alias: "ClaimType"},
		{Name: "applicable_options", Alias: "ApplicableOptions"},
	},
}

// Validate enforces the payload shape the binder cannot express: nested
// required fields and the relevance enum.
func (p *PorterAnalysis) Validate() error {
	if len(p.OptionsAnalyzed) == 0 {
		return fmt.Errorf("options_analyzed must not be empty")
	}
	for _, f := range p.forces() {
		if err := f.force.validate(); err != nil {
			return fmt.Errorf("%s: %w", f.key, err)
		}
	}
	for i, a := range p.StructuralAsymmetries {
		if a.ForceName == "" || a.Description == "" || a.StrongerImpactOn == "" || a.Rationale == "" || a.KeyAssumption == "" {
			return fmt.Errorf("structural_asymmetries[%d]: force_name, description, stronger_impact_on, rationale, and key_assumption are required", i)
		}
	}
	return validateClaims("option_aware_claims", p.OptionAwareClaims)
}

type namedForce struct {
	key   string
	force *ForceAnalysis
}

// forces returns the five forces in their fixed reporting order.
func (p *PorterAnalysis) forces() []namedForce {
	return []namedForce{
		{"threat_of_new_entrants", &p.ThreatOfNewEntrants},
		{"supplier_power", &p.SupplierPower},
		{"buyer_power", &p.BuyerPower},
		{"substitutes", &p.Substitutes},
		{"rivalry", &p.Rivalry},
	}
}

func (f *ForceAnalysis) validate() error {
	if f.Name == "" {
		return fmt.Errorf("name is required")
	}
	switch f.RelevanceToDecision {
	case "high", "medium", "low":
	default:
		return fmt.Errorf("relevance_to_decision must be one of high, medium, low; got %q", f.RelevanceToDecision)
	}
	if f.RelevanceRationale == "" {
		return fmt.Errorf("relevance_rationale is required")
	}
	if f.EffectByOption == nil {
		return fmt.Errorf("effect_by_option is required")
	}
	for i, e := range f.EffectByOption {
		if e.OptionName == "" || e.Description == "" {
			return fmt.Errorf("effect_by_option[%d]: option_name and description are required", i)
		}
	}
	return nil
}

// AnalyticalClaims returns the model's option-aware claims, tagged with the
// framework name. Claims pass to validation exactly as the model stated
// them; a run whose model asserted nothing contributes nothing.
func (p *PorterAnalysis) AnalyticalClaims() []model.AnalyticalClaim {
	return tagClaims(p.OptionAwareClaims, PorterName)
}

// porter applies the five-forces lens to the operating environment.
type porter struct{}

// NewPorter creates the five-forces framework.
func NewPorter() Framework { return porter{} }

func (porter) Name() string        { return PorterName }
func (porter) Lens() string        { return "structural_attractiveness" }
func (porter) RequiresFocus() bool { return true }

func (porter) Description() string {
	return "Assesses structural attractiveness of the target system's operating environment"
}

func (porter) Prompts(pctx *model.ProblemContext) (string, string) {
	context := pctx.PromptContext()
	vars := map[string]string{
		"context":             context,
		"target_system_title": targetSystemTitle(context),
	}
	if pctx.DecisionFocus == nil {
		return systemPrompt, renderPrompt(porterExploratoryPrompt, vars)
	}
	focus := pctx.DecisionFocus
	vars["decision_question"] = focus.DecisionQuestion
	vars["decision_type"] = string(focus.DecisionType)
	vars["options"] = strings.Join(focus.Options, ", ")
	return systemPrompt, renderPrompt(porterPrompt, vars)
}

func (porter) Bind(m parse.Mapping) (Payload, error) {
	return schema.Bind[PorterAnalysis](porterTable, m)
}
