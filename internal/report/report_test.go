package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/krisis/internal/framework"
	"github.com/ppiankov/krisis/internal/model"
)

func sampleForce(name, relevance string, unknowns ...string) framework.ForceAnalysis {
	return framework.ForceAnalysis{
		Name:                name,
		RelevanceToDecision: relevance,
		RelevanceRationale:  "Structural position drives exposure.",
		EffectByOption: []framework.ForceEffect{
			{
				OptionName:     "enter the European market",
				Description:    "Higher exposure under this option.",
				KeyAssumptions: []string{"Incumbents defend share"},
			},
		},
		SharedUnknowns: unknowns,
	}
}

func samplePorter() *framework.PorterAnalysis {
	return &framework.PorterAnalysis{
		DecisionQuestion:    "Should we enter the European market or focus on domestic growth?",
		OptionsAnalyzed:     []string{"enter the European market", "focus on domestic growth"},
		ThreatOfNewEntrants: sampleForce("Threat of New Entrants", "medium"),
		SupplierPower:       sampleForce("Supplier Power", "low"),
		BuyerPower:          sampleForce("Buyer Power", "medium", "Churn sensitivity to pricing"),
		Substitutes:         sampleForce("Substitutes", "low"),
		Rivalry:             sampleForce("Rivalry", "high", "Incumbent response speed", "Churn sensitivity to pricing"),
		StructuralAsymmetries: []framework.StructuralAsymmetry{
			{
				ForceName:        "Rivalry",
				Description:      "Rivalry is denser in the European market.",
				StrongerImpactOn: "enter the European market",
				Rationale:        "Entrenched incumbents compete on price.",
				KeyAssumption:    "Incumbents do not exit",
			},
		},
		OptionAwareClaims: []model.AnalyticalClaim{
			{
				Statement:         "European entry faces denser incumbent rivalry.",
				Source:            model.SourceInference,
				Confidence:        model.ConfidenceMedium,
				ClaimType:         model.ClaimOptionSpecific,
				ApplicableOptions: []string{"enter the European market"},
			},
		},
		SharedObservations: []string{"Both options depend on supplier concentration staying stable."},
	}
}

func sampleSystems() *framework.SystemsDynamicsAnalysis {
	return &framework.SystemsDynamicsAnalysis{
		SystemOverview:   "A two-sided delivery marketplace with strong network effects.",
		KeyComponents:    []string{"Courier supply", "Merchant demand"},
		ReinforcingLoops: []string{"More couriers shorten delivery times, attracting more merchants"},
		BalancingLoops:   []string{"Courier churn rises as utilization drops"},
		Bottlenecks:      []string{"Courier onboarding throughput"},
		Fragilities:      []string{"Dependence on a single payment processor"},
		Assumptions:      []string{"Courier supply remains price-elastic"},
		Unknowns:         []string{"Regulatory response to gig classification"},
		Claims: []model.AnalyticalClaim{
			{
				Statement:         "Network effects amplify any courier supply shock.",
				Source:            model.SourceInference,
				Confidence:        model.ConfidenceMedium,
				ClaimType:         model.ClaimSystemLevel,
				ApplicableOptions: []string{model.AllOptions},
			},
		},
	}
}

func focusedResult() *model.AnalysisResult {
	porter := samplePorter()
	systems := sampleSystems()
	focus, err := model.NewDecisionFocus(
		"Should we enter the European market or focus on domestic growth?",
		model.DecisionCompare,
		[]string{"enter the European market", "focus on domestic growth"},
	)
	if err != nil {
		panic(err)
	}
	return &model.AnalysisResult{
		ID:        "run-1234",
		CreatedAt: time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC),
		ProblemContext: &model.ProblemContext{
			Title:            "Market Entry",
			ProblemStatement: "Decide the expansion path for next year.",
			Objectives:       []string{"Grow revenue 30%"},
			DecisionFocus:    focus,
			RawContent:       "Full planning brief text.",
		},
		FrameworkResults: []model.FrameworkResult{
			{
				FrameworkName:   framework.PorterName,
				ExecutionStatus: model.StatusSuccessful,
				Claims:          porter.AnalyticalClaims(),
				Result:          porter,
			},
			{
				FrameworkName:   framework.SystemsDynamicsName,
				ExecutionStatus: model.StatusSuccessful,
				Claims:          systems.AnalyticalClaims(),
				Result:          systems,
			},
		},
		Sufficiency: &model.AnalysisSufficiencySummary{
			DecisionBinding:   model.BindingPresent,
			OptionCoverage:    model.CoverageComplete,
			FrameworkCoverage: model.CoverageComplete,
			OverallStatus:     model.SufficiencyProduced,
		},
	}
}

func exploratoryResult() *model.AnalysisResult {
	systems := sampleSystems()
	return &model.AnalysisResult{
		ID:        "run-5678",
		CreatedAt: time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC),
		ProblemContext: &model.ProblemContext{
			Title:            "Untitled Analysis",
			ProblemStatement: "Problem context provided for analysis",
			ProvidedMaterials: []model.ProvidedMaterial{
				{MaterialType: "text", Content: strings.Repeat("Descriptive market notes. ", 10), Source: "direct_input"},
			},
		},
		FrameworkResults: []model.FrameworkResult{
			{
				FrameworkName:   framework.SystemsDynamicsName,
				ExecutionStatus: model.StatusSuccessful,
				Claims:          systems.AnalyticalClaims(),
				Result:          systems,
			},
		},
		Sufficiency: &model.AnalysisSufficiencySummary{
			DecisionBinding:   model.BindingAmbiguous,
			OptionCoverage:    model.CoverageNotApplicable,
			FrameworkCoverage: model.CoverageComplete,
			OverallStatus:     model.SufficiencyExploratory,
		},
	}
}

func TestGenerator_Markdown_FullRun(t *testing.T) {
	md := NewGenerator(true).Markdown(focusedResult())

	if !strings.HasPrefix(md, "# Analytical Report: Reasoned Artifact") {
		t.Errorf("Expected report title at start, got %q", md[:60])
	}
	for _, want := range []string{
		"**Analysis ID:** run-1234",
		"**Generated:** 2025-06-01 12:30:00",
		"This is a **reasoned artifact**, not a recommendation.",
		"**Title:** Market Entry",
		"**Problem Statement:** Decide the expansion path for next year.",
		"## Key Analytical Claims",
		"- **New Entrant Threat: medium relevance to decision**",
		"  - Source: inference | Confidence: medium | Framework: porter_five_forces",
		"### Pressure: New Entrant Threat",
		"### Pressure: Competitive Intensity",
		"**Relevance to Decision:** high",
		"**Effect by Option:**",
		"  - Key Assumptions: Incumbents defend share",
		"### Shared Observations",
		"### Structural Asymmetries",
		"- Stronger Impact On: enter the European market",
		"### Option-Aware Claims",
		"- **European entry faces denser incumbent rivalry.**",
		"## Systemic Risks (Target System)",
		"### Target System Overview",
		"### System Fragilities",
		"- Dependence on a single payment processor",
		"## Unknowns & Sensitivities",
		"- [Operating Environment] Incumbent response speed",
		"- [Target System] Regulatory response to gig classification",
		"### Points of Agreement",
		"### Resolution Required",
		"## Decision Surface",
		"- Operating environment relevance would change if: Competitive Intensity dynamics shift",
		"- How to navigate Competitive Intensity relevance",
		"- How to address fragility: Dependence on a single payment processor",
		"- Rivalry impact asymmetry",
		"## Analysis Sufficiency Summary",
		"**Decision Context:** decision_context_present",
		"  - Options: enter the European market, focus on domestic growth",
		"**Overall Status:** decision_relevant_reasoning_produced",
		"## System Limitations",
		"- No external validation: Analysis is based solely on provided Problem Context Materials",
		"*This report was generated by krisis*",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Expected report to contain %q", want)
		}
	}

	// The same unknown raised by two forces appears once.
	if got := strings.Count(md, "- [Operating Environment] Churn sensitivity to pricing"); got != 1 {
		t.Errorf("Expected deduplicated unknown to appear once, got %d", got)
	}
	if !strings.Contains(md, "**Total unknowns identified: 3**") {
		t.Errorf("Expected 3 unknowns after dedupe")
	}
	if strings.Contains(md, "Pre-Decision Observations") {
		t.Errorf("Focused run must not include pre-decision observations")
	}
	if strings.Contains(md, "*Note: This analysis is") {
		t.Errorf("Produced status must not carry a sufficiency note")
	}
}

func TestGenerator_Markdown_ExploratoryRun(t *testing.T) {
	md := NewGenerator(true).Markdown(exploratoryResult())

	for _, want := range []string{
		"## Pre-Decision Observations (Non-Analytical)",
		"*The following are pre-decision considerations, NOT analytical claims*",
		"- Problem context materials were provided and reviewed",
		"- This input appears to be descriptive or exploratory rather than decision-focused",
		"  - Multiple alternatives being considered (≥2 distinct options)",
		"- Context materials contain descriptive information that may inform future analysis",
		"*Operating Environment analysis incomplete - Systems Dynamics analysis only*",
		"*Note: This analysis is exploratory. The input was descriptive rather than decision-focused.",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Expected exploratory report to contain %q", want)
		}
	}
	if strings.Contains(md, "## Key Analytical Claims") {
		t.Errorf("Exploratory report must not list analytical claims")
	}
	if strings.Contains(md, "**Title:** Untitled Analysis") {
		t.Errorf("Default title must not render")
	}
}

func TestGenerator_Markdown_FailedFrameworkLeavesGap(t *testing.T) {
	result := focusedResult()
	result.FrameworkResults[0] = model.FrameworkResult{
		FrameworkName:   framework.PorterName,
		ExecutionStatus: model.StatusFailed,
		ExecutionReason: "analysis failed after 2 attempts: no strategy extracted a mapping",
	}
	result.Sufficiency.FrameworkCoverage = model.CoveragePartial
	result.Sufficiency.OverallStatus = model.SufficiencyConstrained

	md := NewGenerator(true).Markdown(result)

	for _, want := range []string{
		"## Structural Pressures (Operating Environment)\n\n*No claims surfaced under current inputs.*",
		"*Operating Environment analysis incomplete - Systems Dynamics analysis only*",
		"### Blocked Judgments",
		"- porter_five_forces did not complete: analysis failed after 2 attempts",
		"*Note: This analysis is constrained. See Decision Surface for limitations and areas requiring judgment.*",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Expected report to contain %q", want)
		}
	}
	if strings.Contains(md, "### Points of Agreement") {
		t.Errorf("Comparison structure requires both frameworks")
	}
}

func TestGenerator_Markdown_NoFooter(t *testing.T) {
	md := NewGenerator(false).Markdown(focusedResult())
	if strings.Contains(md, "*This report was generated by krisis*") {
		t.Errorf("Expected footer to be omitted")
	}
}

func TestGenerator_Markdown_CapsReportedClaims(t *testing.T) {
	systems := &framework.SystemsDynamicsAnalysis{SystemOverview: "Overview."}
	for i := 0; i < 12; i++ {
		systems.Fragilities = append(systems.Fragilities, "fragility "+string(rune('a'+i)))
	}
	result := exploratoryResult()
	result.Sufficiency.DecisionBinding = model.BindingPresent
	result.Sufficiency.OverallStatus = model.SufficiencyProduced
	result.FrameworkResults = []model.FrameworkResult{
		{
			FrameworkName:   framework.SystemsDynamicsName,
			ExecutionStatus: model.StatusSuccessful,
			Claims:          systems.AnalyticalClaims(),
			Result:          systems,
		},
	}

	md := NewGenerator(false).Markdown(result)

	if !strings.Contains(md, "- **System fragility: fragility j**") {
		t.Errorf("Expected tenth claim to render")
	}
	if strings.Contains(md, "- **System fragility: fragility k**") {
		t.Errorf("Expected eleventh claim to be dropped")
	}
}

func TestGenerator_Markdown_ContextPreviewTruncated(t *testing.T) {
	result := exploratoryResult()
	result.ProblemContext.ProvidedMaterials = nil
	result.ProblemContext.RawContent = strings.Repeat("x", 350)

	md := NewGenerator(false).Markdown(result)

	if !strings.Contains(md, "**Content Preview:** "+strings.Repeat("x", 300)+"...") {
		t.Errorf("Expected raw content preview truncated to 300 characters")
	}
}

func TestKeyClaims_DerivesPresentationSet(t *testing.T) {
	claims := KeyClaims(focusedResult())

	// 5 relevance claims, 1 re-typed option-aware claim, 1 fragility, 1
	// systems assumption. The systems payload's own claims are not part of
	// the presentation set.
	if len(claims) != 8 {
		t.Fatalf("Expected 8 derived claims, got %d", len(claims))
	}

	if claims[0].Statement != "New Entrant Threat: medium relevance to decision" {
		t.Errorf("Unexpected first claim: %q", claims[0].Statement)
	}
	if claims[0].Source != model.SourceInference || claims[0].Confidence != model.ConfidenceMedium {
		t.Errorf("Expected an inference claim at medium confidence, got %+v", claims[0])
	}
	if claims[0].Framework != framework.PorterName {
		t.Errorf("Expected the porter framework tag, got %q", claims[0].Framework)
	}

	optionAware := claims[5]
	if optionAware.Statement != "European entry faces denser incumbent rivalry." {
		t.Errorf("Expected the option-aware claim after the relevance claims, got %q", optionAware.Statement)
	}
	if optionAware.ClaimType != model.ClaimOptionSpecific {
		t.Errorf("Expected option_specific, got %s", optionAware.ClaimType)
	}

	if claims[6].Statement != "System fragility: Dependence on a single payment processor" {
		t.Errorf("Unexpected fragility claim: %q", claims[6].Statement)
	}
	if claims[7].Source != model.SourceAssumption || claims[7].Confidence != model.ConfidenceLow {
		t.Errorf("Expected a low-confidence assumption claim, got %+v", claims[7])
	}
	if claims[7].Framework != framework.SystemsDynamicsName {
		t.Errorf("Expected the systems framework tag, got %q", claims[7].Framework)
	}
}

func TestKeyClaims_SkipsMissingPayloads(t *testing.T) {
	result := focusedResult()
	result.FrameworkResults = result.FrameworkResults[1:]

	claims := KeyClaims(result)

	if len(claims) != 2 {
		t.Fatalf("Expected only the systems-derived claims, got %d", len(claims))
	}
	if claims[0].Statement != "System fragility: Dependence on a single payment processor" {
		t.Errorf("Unexpected first claim: %q", claims[0].Statement)
	}
}

func TestRetypeByOptions(t *testing.T) {
	tests := []struct {
		desc     string
		options  []string
		wantType model.ClaimType
		wantOpts []string
	}{
		{"no options becomes system level", nil, model.ClaimSystemLevel, []string{model.AllOptions}},
		{"one option becomes option specific", []string{"A"}, model.ClaimOptionSpecific, []string{"A"}},
		{"two options become comparative", []string{"A", "B"}, model.ClaimComparative, []string{"A", "B"}},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			in := model.AnalyticalClaim{
				Statement:         "s",
				Source:            model.SourceInference,
				Confidence:        model.ConfidenceMedium,
				ClaimType:         model.ClaimComparative,
				ApplicableOptions: tt.options,
			}
			got := retypeByOptions(in, framework.PorterName)

			if got.ClaimType != tt.wantType {
				t.Errorf("Expected claim type %s, got %s", tt.wantType, got.ClaimType)
			}
			if len(got.ApplicableOptions) != len(tt.wantOpts) {
				t.Errorf("Expected options %v, got %v", tt.wantOpts, got.ApplicableOptions)
			}
			if got.Framework != framework.PorterName {
				t.Errorf("Expected the framework tag, got %q", got.Framework)
			}
		})
	}
}

func TestUnknowns_LabelsAndDedupes(t *testing.T) {
	unknowns := Unknowns(focusedResult())

	want := []string{
		"[Operating Environment] Churn sensitivity to pricing",
		"[Operating Environment] Incumbent response speed",
		"[Target System] Regulatory response to gig classification",
	}
	if len(unknowns) != len(want) {
		t.Fatalf("Expected %d unknowns, got %d: %v", len(want), len(unknowns), unknowns)
	}
	for i, u := range want {
		if unknowns[i] != u {
			t.Errorf("Unknown %d: expected %q, got %q", i, u, unknowns[i])
		}
	}
}

func TestSurface_Defaults(t *testing.T) {
	result := &model.AnalysisResult{ID: "empty"}
	surface := Surface(result)

	if len(surface.AssessmentChangeConditions) != 1 || surface.AssessmentChangeConditions[0] != "New information about target system or operating environment" {
		t.Errorf("Unexpected default change conditions: %v", surface.AssessmentChangeConditions)
	}
	if len(surface.JudgmentRequiredAreas) != 2 {
		t.Errorf("Expected 2 default judgment areas, got %v", surface.JudgmentRequiredAreas)
	}
	if len(surface.TradeoffAxes) != 2 {
		t.Errorf("Expected 2 default trade-off axes, got %v", surface.TradeoffAxes)
	}
	if len(surface.DominantUnknowns) != 0 {
		t.Errorf("Expected no dominant unknowns, got %v", surface.DominantUnknowns)
	}
}

func TestSurface_CapsDominantUnknowns(t *testing.T) {
	systems := sampleSystems()
	systems.Unknowns = []string{"u1", "u2", "u3", "u4", "u5", "u6", "u1"}
	result := &model.AnalysisResult{
		FrameworkResults: []model.FrameworkResult{
			{
				FrameworkName:   framework.SystemsDynamicsName,
				ExecutionStatus: model.StatusSuccessful,
				Result:          systems,
			},
		},
	}

	surface := Surface(result)

	if len(surface.DominantUnknowns) != 5 {
		t.Fatalf("Expected 5 dominant unknowns, got %d", len(surface.DominantUnknowns))
	}
	if surface.DominantUnknowns[0] != "u1" || surface.DominantUnknowns[4] != "u5" {
		t.Errorf("Expected first five unique unknowns in order, got %v", surface.DominantUnknowns)
	}
}

func TestGenerator_RenderJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "result.json")
	result := focusedResult()

	if err := NewGenerator(true).RenderJSON(result, path); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	var decoded model.AnalysisResult
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Expected valid JSON, got %v", err)
	}
	if decoded.ID != result.ID {
		t.Errorf("Expected ID %q, got %q", result.ID, decoded.ID)
	}
	if len(decoded.FrameworkResults) != 2 {
		t.Errorf("Expected 2 framework results, got %d", len(decoded.FrameworkResults))
	}
}

func TestGenerator_RenderMarkdown_PrefersAttachedReport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.md")
	result := focusedResult()
	result.GeneratedReport = "# Stored Report\n"

	if err := NewGenerator(true).RenderMarkdown(result, path); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if string(data) != "# Stored Report\n" {
		t.Errorf("Expected attached report to be written verbatim, got %q", string(data))
	}
}

func TestGenerator_RenderSummary(t *testing.T) {
	result := focusedResult()
	result.FrameworkResults[1] = model.FrameworkResult{
		FrameworkName:   framework.SystemsDynamicsName,
		ExecutionStatus: model.StatusFailed,
		ExecutionReason: "analysis failed after 2 attempts: timeout",
	}

	var buf bytes.Buffer
	NewGenerator(true).RenderSummary(result, &buf)
	out := buf.String()

	for _, want := range []string{
		"Analysis Complete",
		"Analysis ID:  run-1234",
		"✓ porter_five_forces",
		"✗ systems_dynamics",
		"analysis failed after 2 attempts: timeout",
		"Status:       decision_relevant_reasoning_produced",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected summary to contain %q, got:\n%s", want, out)
		}
	}
}
