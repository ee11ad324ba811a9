package framework

import (
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/krisis/internal/model"
	"github.com/ppiankov/krisis/internal/parse"
	"github.com/ppiankov/krisis/internal/schema"
)

const sysdynResponse = "```json\n" + `{
	"SystemOverview": "Orders flow through a single regional warehouse into last-mile delivery.",
	"KeyComponents": ["Order intake", "Regional warehouse", "Last-mile fleet"],
	"FeedbackLoops": {
		"Reinforcing": ["Faster delivery attracts more orders, funding more fleet capacity."],
		"Balancing": ["Warehouse congestion slows dispatch, suppressing new orders."]
	},
	"Bottlenecks": ["Single regional warehouse"],
	"Fragilities": ["One warehouse serves all regions"],
	"Assumptions": ["Demand keeps its seasonal shape"],
	"Unknowns": ["Lease renewal terms"],
	"Claims": [
		{"statement": "The warehouse is a single point of failure.", "source": "inference", "confidence": "high", "claim_type": "system_level", "applicable_options": ["all"]},
		{"statement": "Fleet capacity scales with order volume.", "source": "assumption", "confidence": "medium"}
	]
}` + "\n```"

func bindSysdyn(t *testing.T, raw string) *SystemsDynamicsAnalysis {
	t.Helper()

	m, err := parse.Extract(raw)
	if err != nil {
		t.Fatalf("Expected the response to parse, got error: %v", err)
	}

	payload, err := NewSystemsDynamics().Bind(parse.Normalize(m))
	if err != nil {
		t.Fatalf("Expected the response to bind, got error: %v", err)
	}

	analysis, ok := payload.(*SystemsDynamicsAnalysis)
	if !ok {
		t.Fatalf("Expected a *SystemsDynamicsAnalysis payload, got %T", payload)
	}
	return analysis
}

func TestSystemsDynamics_BindNestedFeedbackLoops(t *testing.T) {
	analysis := bindSysdyn(t, sysdynResponse)

	if len(analysis.ReinforcingLoops) != 1 {
		t.Fatalf("Expected 1 reinforcing loop, got %d", len(analysis.ReinforcingLoops))
	}
	if len(analysis.BalancingLoops) != 1 {
		t.Fatalf("Expected 1 balancing loop, got %d", len(analysis.BalancingLoops))
	}
	if !strings.Contains(analysis.ReinforcingLoops[0], "attracts more orders") {
		t.Errorf("Unexpected reinforcing loop: %q", analysis.ReinforcingLoops[0])
	}
}

func TestSystemsDynamics_BindDottedLoopKeys(t *testing.T) {
	raw := "```json\n" + `{
		"SystemOverview": "A two-sided marketplace.",
		"FeedbackLoops.Reinforcing": ["More sellers attract more buyers."],
		"FeedbackLoops.Balancing": ["Fee increases push sellers away."]
	}` + "\n```"

	analysis := bindSysdyn(t, raw)

	if len(analysis.ReinforcingLoops) != 1 || len(analysis.BalancingLoops) != 1 {
		t.Errorf("Expected the dotted aliases to bind, got %+v", analysis)
	}
}

func TestSystemsDynamics_BindMissingOverview(t *testing.T) {
	raw := "```json\n" + `{"KeyComponents": ["a", "b"]}` + "\n```"

	m, err := parse.Extract(raw)
	if err != nil {
		t.Fatalf("Expected the response to parse, got error: %v", err)
	}

	_, err = NewSystemsDynamics().Bind(parse.Normalize(m))
	if err == nil {
		t.Fatal("Expected a binding error for the missing overview")
	}

	var berr *schema.BindingError
	if !errors.As(err, &berr) {
		t.Fatalf("Expected a *schema.BindingError, got %T", err)
	}
	if len(berr.Missing) != 1 || berr.Missing[0] != "system_overview" {
		t.Errorf("Expected system_overview to be reported missing, got %v", berr.Missing)
	}
}

func TestSystemsDynamicsAnalysis_AnalyticalClaims(t *testing.T) {
	analysis := bindSysdyn(t, sysdynResponse)

	claims := analysis.AnalyticalClaims()

	if len(claims) != 2 {
		t.Fatalf("Expected the model's 2 claims, got %d", len(claims))
	}

	first := claims[0]
	if first.Statement != "The warehouse is a single point of failure." {
		t.Errorf("Unexpected first claim: %q", first.Statement)
	}
	if first.Source != model.SourceInference || first.Confidence != model.ConfidenceHigh {
		t.Errorf("Expected the stated source and confidence to be kept, got %+v", first)
	}
	if len(first.ApplicableOptions) != 1 || first.ApplicableOptions[0] != model.AllOptions {
		t.Errorf("Expected the all-options sentinel to be kept, got %v", first.ApplicableOptions)
	}

	second := claims[1]
	if second.ClaimType != model.ClaimSystemLevel {
		t.Errorf("Expected an untyped claim to default to system_level, got %s", second.ClaimType)
	}

	for i, c := range claims {
		if c.Framework != SystemsDynamicsName {
			t.Errorf("Claim %d: expected the framework tag, got %q", i, c.Framework)
		}
	}
}

func TestSystemsDynamics_PromptsIgnoreFocus(t *testing.T) {
	pctx := &model.ProblemContext{
		RawContent: "Warehouse network description",
		DecisionFocus: &model.DecisionFocus{
			DecisionQuestion: "Add a second warehouse?",
			DecisionType:     model.DecisionCompare,
			Options:          []string{"Add", "Defer"},
		},
	}

	_, user := NewSystemsDynamics().Prompts(pctx)

	if !strings.Contains(user, "Warehouse network description") {
		t.Error("Expected the context in the user prompt")
	}
	if strings.Contains(user, "{target_system_title}") {
		t.Error("Expected placeholders to be substituted")
	}
}

func TestRegistry_GetByNameAndAlias(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name string
		want string
	}{
		{"porter", PorterName},
		{"porter_five_forces", PorterName},
		{"PORTER_FIVE_FORCES", PorterName},
		{"systems_dynamics", SystemsDynamicsName},
		{"sysdyn", SystemsDynamicsName},
		{" porter ", PorterName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := r.Get(tt.name)
			if !ok {
				t.Fatalf("Expected %q to resolve", tt.name)
			}
			if f.Name() != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, f.Name())
			}
		})
	}

	if _, ok := r.Get("swot"); ok {
		t.Error("Expected an unknown framework not to resolve")
	}
}

func TestRegistry_ListOrder(t *testing.T) {
	r := NewRegistry()

	list := r.List()
	if len(list) != 2 {
		t.Fatalf("Expected 2 built-in frameworks, got %d", len(list))
	}
	if list[0].Name() != PorterName || list[1].Name() != SystemsDynamicsName {
		t.Errorf("Expected registration order to be preserved, got %s, %s", list[0].Name(), list[1].Name())
	}
}
