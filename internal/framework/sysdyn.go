package framework

import (
	"fmt"

	"github.com/ppiankov/krisis/internal/model"
	"github.com/ppiankov/krisis/internal/parse"
	"github.com/ppiankov/krisis/internal/schema"
)

// SystemsDynamicsAnalysis is the typed payload of the qualitative systems
// dynamics lens.
type SystemsDynamicsAnalysis struct {
	SystemOverview   string                  `json:"system_overview"`
	KeyComponents    []string                `json:"key_components,omitempty"`
	ReinforcingLoops []string                `json:"reinforcing_loops,omitempty"`
	BalancingLoops   []string                `json:"balancing_loops,omitempty"`
	Bottlenecks      []string                `json:"bottlenecks,omitempty"`
	Fragilities      []string                `json:"fragilities,omitempty"`
	Assumptions      []string                `json:"assumptions,omitempty"`
	Unknowns         []string                `json:"unknowns,omitempty"`
	Claims           []model.AnalyticalClaim `json:"claims,omitempty"`
}

// sysdynTable includes the dotted FeedbackLoops aliases some responses emit
// literally; the nested-map spelling is flattened before binding.
var sysdynTable = schema.Table{
	Schema: SystemsDynamicsName,
	Fields: []schema.Field{
		{Name: "system_overview", Alias: "SystemOverview", Required: true},
		{Name: "key_components", Alias: "KeyComponents"},
		{Name: "reinforcing_loops", Alias: "FeedbackLoops.Reinforcing"},
		{Name: "balancing_loops", Alias: "FeedbackLoops.Balancing"},
		{Name: "bottlenecks", Alias: "Bottlenecks"},
		{Name: "fragilities", Alias: "Fragilities"},
		{Name: "assumptions", Alias: "Assumptions"},
		{Name: "unknowns", Alias: "Unknowns"},
		{Name: "claims", Alias: "Claims"},

		{Name: "statement", Alias: "Statement"},
		{Name: "source", Alias: "Source"},
		{Name: "confidence", Alias: "Confidence"},
		{Name: "claim_type", Alias: "ClaimType"},
		{Name: "applicable_options", Alias: "ApplicableOptions"},
	},
}

func (s *SystemsDynamicsAnalysis) Validate() error {
	if s.SystemOverview == "" {
		return fmt.Errorf("system_overview is required")
	}
	return validateClaims("claims", s.Claims)
}

// AnalyticalClaims returns the claims the model attached to the payload,
// tagged with the framework name. Fragilities and assumptions stay
// descriptive payload fields; only what the model asserted as a claim
// reaches validation.
func (s *SystemsDynamicsAnalysis) AnalyticalClaims() []model.AnalyticalClaim {
	return tagClaims(s.Claims, SystemsDynamicsName)
}

// systemsDynamics applies the feedback-loop lens to the target system.
type systemsDynamics struct{}

// NewSystemsDynamics creates the systems dynamics framework.
func NewSystemsDynamics() Framework { return systemsDynamics{} }

func (systemsDynamics) Name() string        { return SystemsDynamicsName }
func (systemsDynamics) Lens() string        { return "systemic_fragility" }
func (systemsDynamics) RequiresFocus() bool { return false }

func (systemsDynamics) Description() string {
	return "Maps feedback loops, dependencies, and fragility of the target system"
}

func (systemsDynamics) Prompts(pctx *model.ProblemContext) (string, string) {
	context := pctx.PromptContext()
	vars := map[string]string{
		"context":             context,
		"target_system_title": targetSystemTitle(context),
	}
	return systemPrompt, renderPrompt(systemsDynamicsPrompt, vars)
}

func (systemsDynamics) Bind(m parse.Mapping) (Payload, error) {
	return schema.Bind[SystemsDynamicsAnalysis](sysdynTable, flattenFeedbackLoops(m))
}

// flattenFeedbackLoops lifts a nested FeedbackLoops mapping into the flat
// reinforcing/balancing keys the schema binds. The literal dotted spelling
// is already covered by the alias table.
func flattenFeedbackLoops(m parse.Mapping) parse.Mapping {
	nested, ok := m["FeedbackLoops"].(map[string]any)
	if !ok {
		return m
	}
	out := make(parse.Mapping, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	delete(out, "FeedbackLoops")
	for key, val := range nested {
		switch key {
		case "Reinforcing", "reinforcing":
			out["reinforcing_loops"] = val
		case "Balancing", "balancing":
			out["balancing_loops"] = val
		}
	}
	return out
}
