// Package report renders an analysis result as a reasoned artifact: a
// structured markdown document that lays out claims, pressures, fragilities,
// unknowns, and the judgment left to the decision owner. The report never
// ranks options and never recommends.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/krisis/internal/framework"
	"github.com/ppiankov/krisis/internal/model"
)

const (
	// maxReportedClaims caps the Key Analytical Claims section.
	maxReportedClaims = 10

	// maxDominantUnknowns caps the Dominant Unknowns list on the decision
	// surface.
	maxDominantUnknowns = 5

	// previewLimit bounds the raw-content preview in the context summary.
	previewLimit = 300
)

// Generator renders analysis results to markdown and JSON.
type Generator struct {
	includeFooter bool
}

// NewGenerator creates a report generator.
func NewGenerator(includeFooter bool) *Generator {
	return &Generator{includeFooter: includeFooter}
}

// Markdown renders the complete report. An exploratory run (ambiguous
// decision binding) gets pre-decision observations in place of analytical
// claims; everything else renders the same sections with labeled gaps where
// a framework did not complete.
func (g *Generator) Markdown(result *model.AnalysisResult) string {
	porter := porterPayload(result)
	systems := systemsPayload(result)
	surface := Surface(result)

	sections := []string{
		headerSection(result),
		disclaimerSection,
		contextSummary(result.ProblemContext),
	}
	if isExploratory(result) {
		sections = append(sections, preDecisionSection(result.ProblemContext))
	} else {
		sections = append(sections, claimsSection(KeyClaims(result)))
	}
	sections = append(sections,
		structuralPressures(porter),
		systemicRisks(systems),
		unknownsSection(collectUnknowns(porter, systems)),
		agreementSection(porter != nil, systems != nil),
		surfaceSection(surface),
	)
	if result.Sufficiency != nil {
		sections = append(sections, sufficiencySection(result.Sufficiency, surface))
	}
	sections = append(sections, limitationsSection())
	if g.includeFooter {
		sections = append(sections, footerSection)
	}
	return strings.Join(sections, "\n\n---\n\n") + "\n"
}

// RenderJSON writes the analysis record as indented JSON.
func (g *Generator) RenderJSON(result *model.AnalysisResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderMarkdown writes the markdown report. A report already attached to
// the result is written as-is so stored records render identically.
func (g *Generator) RenderMarkdown(result *model.AnalysisResult, path string) error {
	report := result.GeneratedReport
	if report == "" {
		report = g.Markdown(result)
	}
	if err := os.WriteFile(path, []byte(report), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderSummary writes a short console summary of the run.
func (g *Generator) RenderSummary(result *model.AnalysisResult, w io.Writer) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "  Analysis Complete\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Analysis ID:  %s\n", result.ID)
	for _, fr := range result.FrameworkResults {
		mark := "✓"
		detail := fmt.Sprintf("%d claims", len(fr.Claims))
		switch fr.ExecutionStatus {
		case model.StatusFailed:
			mark = "✗"
			detail = fr.ExecutionReason
		case model.StatusInsufficient:
			mark = "○"
			detail = fr.ExecutionReason
		}
		fmt.Fprintf(w, "  %s %-22s %s\n", mark, fr.FrameworkName, detail)
	}
	if result.Sufficiency != nil {
		fmt.Fprintf(w, "\n")
		fmt.Fprintf(w, "  Status:       %s\n", result.Sufficiency.OverallStatus)
	}
	fmt.Fprintf(w, "\n")
}

// Surface computes the decision surface: the conditions under which the
// assessment would change, the unknowns that dominate it, and the areas
// where judgment cannot be delegated to a framework.
func Surface(result *model.AnalysisResult) model.DecisionSurface {
	var surface model.DecisionSurface
	if pctx := result.ProblemContext; pctx != nil && pctx.DecisionFocus != nil {
		surface.DecisionQuestion = pctx.DecisionFocus.DecisionQuestion
		surface.Options = pctx.DecisionFocus.Options
	}

	var dominant []string
	if p := porterPayload(result); p != nil {
		var highRelevance []string
		for _, lf := range labeledForces(p) {
			if lf.force.RelevanceToDecision == "high" {
				highRelevance = append(highRelevance, lf.short)
				surface.JudgmentRequiredAreas = append(surface.JudgmentRequiredAreas,
					fmt.Sprintf("How to navigate %s relevance", lf.short))
			}
			dominant = append(dominant, lf.force.SharedUnknowns...)
		}
		if len(highRelevance) > 0 {
			surface.AssessmentChangeConditions = append(surface.AssessmentChangeConditions,
				fmt.Sprintf("Operating environment relevance would change if: %s dynamics shift", strings.Join(highRelevance, ", ")))
		}
		for _, a := range p.StructuralAsymmetries {
			surface.TradeoffAxes = append(surface.TradeoffAxes, fmt.Sprintf("%s impact asymmetry", a.ForceName))
		}
	}
	if s := systemsPayload(result); s != nil {
		fragilities := s.Fragilities
		if len(fragilities) > 3 {
			fragilities = fragilities[:3]
		}
		for _, f := range fragilities {
			surface.JudgmentRequiredAreas = append(surface.JudgmentRequiredAreas, "How to address fragility: "+f)
		}
		dominant = append(dominant, s.Unknowns...)
		if len(s.Bottlenecks) > 0 {
			surface.AssessmentChangeConditions = append(surface.AssessmentChangeConditions,
				"System performance would change if bottlenecks are resolved")
		}
	}

	// A framework that never bound leaves an explicit gap on the surface.
	for _, fr := range result.FrameworkResults {
		if fr.ExecutionStatus == model.StatusFailed {
			surface.BlockedJudgments = append(surface.BlockedJudgments,
				fmt.Sprintf("%s did not complete: %s", fr.FrameworkName, fr.ExecutionReason))
		}
	}

	if len(surface.JudgmentRequiredAreas) == 0 {
		surface.JudgmentRequiredAreas = []string{
			"Overall assessment of problem context validity",
			"Weighting of competing factors across frameworks",
		}
	}
	if len(surface.AssessmentChangeConditions) == 0 {
		surface.AssessmentChangeConditions = []string{
			"New information about target system or operating environment",
		}
	}
	if len(surface.TradeoffAxes) == 0 {
		surface.TradeoffAxes = []string{
			"Information completeness vs analysis timeliness",
			"Systemic risks vs operational constraints",
		}
	}

	dominant = dedupe(dominant)
	if len(dominant) > maxDominantUnknowns {
		dominant = dominant[:maxDominantUnknowns]
	}
	surface.DominantUnknowns = dominant
	return surface
}

// isExploratory reports whether the run never bound a decision context.
func isExploratory(result *model.AnalysisResult) bool {
	return result.Sufficiency != nil && result.Sufficiency.DecisionBinding == model.BindingAmbiguous
}

// porterPayload returns the bound five-forces payload, or nil when the run
// failed before binding.
func porterPayload(result *model.AnalysisResult) *framework.PorterAnalysis {
	fr := result.ResultFor(framework.PorterName)
	if fr == nil {
		return nil
	}
	p, ok := fr.Result.(*framework.PorterAnalysis)
	if !ok {
		return nil
	}
	return p
}

// systemsPayload returns the bound systems dynamics payload, or nil.
func systemsPayload(result *model.AnalysisResult) *framework.SystemsDynamicsAnalysis {
	fr := result.ResultFor(framework.SystemsDynamicsName)
	if fr == nil {
		return nil
	}
	s, ok := fr.Result.(*framework.SystemsDynamicsAnalysis)
	if !ok {
		return nil
	}
	return s
}

// labeledForce pairs a force with its report labels. Section labels carry
// the "Pressure:" prefix; short names appear in decision-surface text.
type labeledForce struct {
	section string
	short   string
	force   *framework.ForceAnalysis
}

func labeledForces(p *framework.PorterAnalysis) []labeledForce {
	return []labeledForce{
		{"Pressure: New Entrant Threat", "New Entrant Threat", &p.ThreatOfNewEntrants},
		{"Pressure: Supplier Power", "Supplier Power", &p.SupplierPower},
		{"Pressure: Buyer Power", "Buyer Power", &p.BuyerPower},
		{"Pressure: Substitution Threat", "Substitution Threat", &p.Substitutes},
		{"Pressure: Competitive Intensity", "Competitive Intensity", &p.Rivalry},
	}
}

func headerSection(result *model.AnalysisResult) string {
	return strings.Join([]string{
		"# Analytical Report: Reasoned Artifact",
		"",
		fmt.Sprintf("**Analysis ID:** %s", result.ID),
		fmt.Sprintf("**Generated:** %s", result.CreatedAt.Format("2006-01-02 15:04:05")),
	}, "\n")
}

const disclaimerSection = `**⚠️ CRITICAL DISCLAIMER ⚠️**

This is a **reasoned artifact**, not a recommendation. This system does NOT:
- Output decisions
- Rank options
- Optimize objectives
- Make recommendations

The Decision Owner retains full responsibility for all judgments and decisions.`

const footerSection = `*This report was generated by krisis*

*This system is a reasoning scaffold, not an oracle. Framework disagreement is a valid and expected outcome.*`

func contextSummary(pctx *model.ProblemContext) string {
	lines := []string{"## Context Summary", ""}
	if pctx == nil {
		lines = append(lines, "No problem context recorded.")
		return section(lines)
	}
	if pctx.Title != "" && pctx.Title != "Untitled Analysis" {
		lines = append(lines, fmt.Sprintf("**Title:** %s", pctx.Title), "")
	}
	lines = append(lines, fmt.Sprintf("**Problem Statement:** %s", pctx.ProblemStatement), "")
	lines = appendBullets(lines, "**Objectives:**", pctx.Objectives)
	lines = appendBullets(lines, "**Constraints:**", pctx.Constraints)
	lines = appendBullets(lines, "**Declared Assumptions:**", pctx.DeclaredAssumptions)
	if len(pctx.ProvidedMaterials) > 0 {
		lines = append(lines, fmt.Sprintf("**Problem Context Materials:** %d provided", len(pctx.ProvidedMaterials)))
		for i, m := range pctx.ProvidedMaterials {
			source := m.Source
			if source == "" {
				source = fmt.Sprintf("Material %d", i+1)
			}
			lines = append(lines, fmt.Sprintf("  - %s (%s)", source, m.MaterialType))
		}
	} else if pctx.RawContent != "" {
		lines = append(lines, fmt.Sprintf("**Content Preview:** %s", truncate(pctx.RawContent, previewLimit)))
	}
	return section(lines)
}

func claimsSection(claims []model.AnalyticalClaim) string {
	lines := []string{"## Key Analytical Claims", ""}
	if len(claims) == 0 {
		lines = append(lines, "No explicit claims extracted from analysis.")
		return section(lines)
	}
	if len(claims) > maxReportedClaims {
		claims = claims[:maxReportedClaims]
	}
	for _, c := range claims {
		lines = append(lines, fmt.Sprintf("- **%s**", c.Statement))
		lines = append(lines, fmt.Sprintf("  - Source: %s | Confidence: %s | Framework: %s", c.Source, c.Confidence, c.Framework))
	}
	return section(lines)
}

func preDecisionSection(pctx *model.ProblemContext) string {
	lines := []string{
		"## Pre-Decision Observations (Non-Analytical)",
		"",
		"*The following are pre-decision considerations, NOT analytical claims*",
		"",
	}
	for _, obs := range preDecisionObservations(pctx) {
		lines = append(lines, "- "+obs)
	}
	return section(lines)
}

// preDecisionObservations states what the input would need before a
// decision-focused analysis can bind. Observations carry no framework
// attribution and no confidence.
func preDecisionObservations(pctx *model.ProblemContext) []string {
	var obs []string
	hasMaterials := pctx != nil && len(pctx.ProvidedMaterials) > 0
	if hasMaterials {
		obs = append(obs, "Problem context materials were provided and reviewed")
	}
	obs = append(obs,
		"This input appears to be descriptive or exploratory rather than decision-focused",
		"To proceed with decision-focused analysis, the input should describe:",
		"  - A choice to be made (choose, decide, select, etc.)",
		"  - Multiple alternatives being considered (≥2 distinct options)",
		"  - A decision owner or context (who is making this decision)",
	)
	if hasMaterials {
		for _, m := range pctx.ProvidedMaterials {
			if len(m.Content) > 100 {
				obs = append(obs, "Context materials contain descriptive information that may inform future analysis")
				break
			}
		}
	}
	return obs
}

func structuralPressures(p *framework.PorterAnalysis) string {
	lines := []string{"## Structural Pressures (Operating Environment)", ""}
	if p == nil {
		lines = append(lines, "*No claims surfaced under current inputs.*")
		return section(lines)
	}
	lines = append(lines, "*Analysis of the target system's operating environment using structural pressure framework*", "")
	if p.DecisionQuestion != "" {
		lines = append(lines, fmt.Sprintf("**Decision Question:** %s", p.DecisionQuestion), "")
	}
	lines = appendBullets(lines, "**Options Analyzed:**", p.OptionsAnalyzed)
	for _, lf := range labeledForces(p) {
		lines = append(lines, forceLines(lf.section, lf.force)...)
	}
	lines = appendBullets(lines, "### Shared Observations", p.SharedObservations)
	if len(p.StructuralAsymmetries) > 0 {
		lines = append(lines, "### Structural Asymmetries")
		for _, a := range p.StructuralAsymmetries {
			lines = append(lines, fmt.Sprintf("**%s**", a.ForceName))
			lines = append(lines, "- Description: "+a.Description)
			lines = append(lines, "- Stronger Impact On: "+a.StrongerImpactOn)
			lines = append(lines, "- Rationale: "+a.Rationale)
			if a.KeyAssumption != "" {
				lines = append(lines, "- Key Assumption: "+a.KeyAssumption)
			}
			lines = append(lines, "")
		}
	}
	if len(p.OptionAwareClaims) > 0 {
		lines = append(lines, "### Option-Aware Claims")
		for _, c := range p.OptionAwareClaims {
			lines = append(lines, fmt.Sprintf("- **%s**", c.Statement))
			if c.Source != "" {
				lines = append(lines, "  - Source: "+string(c.Source))
			}
			if c.Confidence != "" {
				lines = append(lines, "  - Confidence: "+string(c.Confidence))
			}
		}
	}
	return section(lines)
}

func forceLines(label string, f *framework.ForceAnalysis) []string {
	lines := []string{
		fmt.Sprintf("### %s", label),
		fmt.Sprintf("**Relevance to Decision:** %s", f.RelevanceToDecision),
		"",
		fmt.Sprintf("**Relevance Rationale:** %s", f.RelevanceRationale),
		"",
	}
	lines = appendBullets(lines, "**Shared Assumptions:**", f.SharedAssumptions)
	lines = appendBullets(lines, "**Shared Unknowns:**", f.SharedUnknowns)
	if len(f.EffectByOption) > 0 {
		lines = append(lines, "**Effect by Option:**")
		for _, e := range f.EffectByOption {
			lines = append(lines, fmt.Sprintf("- **%s**: %s", e.OptionName, e.Description))
			if len(e.KeyAssumptions) > 0 {
				lines = append(lines, "  - Key Assumptions: "+strings.Join(e.KeyAssumptions, ", "))
			}
			if len(e.KeyUnknowns) > 0 {
				lines = append(lines, "  - Key Unknowns: "+strings.Join(e.KeyUnknowns, ", "))
			}
		}
		lines = append(lines, "")
	}
	return lines
}

func systemicRisks(s *framework.SystemsDynamicsAnalysis) string {
	lines := []string{"## Systemic Risks (Target System)", ""}
	if s == nil {
		lines = append(lines, "*No claims surfaced under current inputs.*")
		return section(lines)
	}
	lines = append(lines, "*Analysis of the target system's internal dynamics, feedback loops, and fragilities*", "")
	lines = append(lines, "### Target System Overview", s.SystemOverview, "")
	lines = appendBullets(lines, "### Key System Components", s.KeyComponents)
	lines = appendBullets(lines, "### Reinforcing Dynamics (Growth Drivers)", s.ReinforcingLoops)
	lines = appendBullets(lines, "### Balancing Dynamics (Constraints)", s.BalancingLoops)
	lines = appendBullets(lines, "### System Bottlenecks", s.Bottlenecks)
	lines = appendBullets(lines, "### System Fragilities", s.Fragilities)
	lines = appendBullets(lines, "### Key Assumptions", s.Assumptions)
	return section(lines)
}

// KeyClaims derives the claim set the report presents: a relevance claim per
// force, the assumptions each framework surfaced, system fragilities, and
// the model's option-aware claims re-typed by how many options they name.
// The set is presentational; validated claims live on the framework results.
func KeyClaims(result *model.AnalysisResult) []model.AnalyticalClaim {
	return collectKeyClaims(porterPayload(result), systemsPayload(result))
}

func collectKeyClaims(p *framework.PorterAnalysis, s *framework.SystemsDynamicsAnalysis) []model.AnalyticalClaim {
	var claims []model.AnalyticalClaim
	if p != nil {
		for _, lf := range labeledForces(p) {
			claims = append(claims, model.AnalyticalClaim{
				Statement:         fmt.Sprintf("%s: %s relevance to decision", lf.short, lf.force.RelevanceToDecision),
				Source:            model.SourceInference,
				Confidence:        model.ConfidenceMedium,
				Framework:         framework.PorterName,
				ClaimType:         model.ClaimSystemLevel,
				ApplicableOptions: []string{model.AllOptions},
			})
			for _, assumption := range lf.force.SharedAssumptions {
				claims = append(claims, model.AnalyticalClaim{
					Statement:         assumption,
					Source:            model.SourceAssumption,
					Confidence:        model.ConfidenceLow,
					Framework:         framework.PorterName,
					ClaimType:         model.ClaimSystemLevel,
					ApplicableOptions: []string{model.AllOptions},
				})
			}
		}
		for _, c := range p.OptionAwareClaims {
			claims = append(claims, retypeByOptions(c, framework.PorterName))
		}
	}
	if s != nil {
		for _, fragility := range s.Fragilities {
			claims = append(claims, model.AnalyticalClaim{
				Statement:         "System fragility: " + fragility,
				Source:            model.SourceInference,
				Confidence:        model.ConfidenceMedium,
				Framework:         framework.SystemsDynamicsName,
				ClaimType:         model.ClaimSystemLevel,
				ApplicableOptions: []string{model.AllOptions},
			})
		}
		for _, assumption := range s.Assumptions {
			claims = append(claims, model.AnalyticalClaim{
				Statement:         assumption,
				Source:            model.SourceAssumption,
				Confidence:        model.ConfidenceLow,
				Framework:         framework.SystemsDynamicsName,
				ClaimType:         model.ClaimSystemLevel,
				ApplicableOptions: []string{model.AllOptions},
			})
		}
	}
	return claims
}

// retypeByOptions makes a model-emitted claim internally consistent for
// presentation: the claim type follows from how many options the claim
// names, whatever the model said it was.
func retypeByOptions(c model.AnalyticalClaim, frameworkName string) model.AnalyticalClaim {
	c.Framework = frameworkName
	switch len(c.ApplicableOptions) {
	case 0:
		c.ClaimType = model.ClaimSystemLevel
		c.ApplicableOptions = []string{model.AllOptions}
	case 1:
		c.ClaimType = model.ClaimOptionSpecific
	default:
		c.ClaimType = model.ClaimComparative
	}
	return c
}

// Unknowns collects every distinct unknown the frameworks surfaced, in
// framework order, labeled by which side of the analysis raised it.
func Unknowns(result *model.AnalysisResult) []string {
	return collectUnknowns(porterPayload(result), systemsPayload(result))
}

// collectUnknowns gathers every surfaced unknown, labeled by which side of
// the analysis raised it. Order is preserved; duplicates are dropped.
func collectUnknowns(p *framework.PorterAnalysis, s *framework.SystemsDynamicsAnalysis) []string {
	var unknowns []string
	if p != nil {
		for _, lf := range labeledForces(p) {
			for _, u := range lf.force.SharedUnknowns {
				unknowns = append(unknowns, "[Operating Environment] "+u)
			}
		}
	}
	if s != nil {
		for _, u := range s.Unknowns {
			unknowns = append(unknowns, "[Target System] "+u)
		}
	}
	return dedupe(unknowns)
}

func unknownsSection(unknowns []string) string {
	lines := []string{"## Unknowns & Sensitivities", ""}
	if len(unknowns) == 0 {
		lines = append(lines, "No critical unknowns identified.")
		return section(lines)
	}
	lines = append(lines, fmt.Sprintf("**Total unknowns identified: %d**", len(unknowns)), "")
	for _, u := range unknowns {
		lines = append(lines, "- "+u)
	}
	return section(lines)
}

func agreementSection(porterComplete, systemsComplete bool) string {
	lines := []string{
		"## Framework Agreement & Tension",
		"",
		"*Note: Framework disagreement is a valid and expected system outcome. Lack of consensus between frameworks does not indicate failure.*",
		"",
	}
	switch {
	case !porterComplete && !systemsComplete:
		lines = append(lines, "*Both framework analyses incomplete - no comparison possible*")
		return section(lines)
	case !porterComplete:
		lines = append(lines, "*Operating Environment analysis incomplete - Systems Dynamics analysis only*")
		return section(lines)
	case !systemsComplete:
		lines = append(lines, "*Target System analysis incomplete - Operating Environment analysis only*")
		return section(lines)
	}
	lines = append(lines,
		"### Points of Agreement",
		"[Decision Owner to identify where Operating Environment and Target System analyses converge]",
		"",
		"### Points of Tension",
		"[Decision Owner to identify where analyses conflict or highlight different aspects]",
		"*Example: High competitive pressure (Operating Environment) vs. strong reinforcing growth loops (Target System)*",
		"",
		"### Complementary Insights",
		"[Decision Owner to note how frameworks provide different but compatible perspectives]",
		"",
		"### Resolution Required",
		"The Decision Owner must resolve tensions through:",
		"- Additional information gathering",
		"- Explicit judgment calls on which factors to weight more heavily",
		"- Acceptance of irreducible uncertainty",
	)
	return section(lines)
}

func surfaceSection(surface model.DecisionSurface) string {
	lines := []string{
		"## Decision Surface",
		"",
		"*Where judgment is explicitly required*",
		"",
		"### What Would Need to Change?",
	}
	for _, c := range surface.AssessmentChangeConditions {
		lines = append(lines, "- "+c)
	}
	lines = append(lines, "", "### Dominant Unknowns")
	for _, u := range surface.DominantUnknowns {
		lines = append(lines, "- "+u)
	}
	lines = append(lines, "", "### Where Judgment is Required")
	for _, a := range surface.JudgmentRequiredAreas {
		lines = append(lines, "- "+a)
	}
	if len(surface.TradeoffAxes) > 0 {
		lines = append(lines, "", "### Trade-off Axes")
		for _, a := range surface.TradeoffAxes {
			lines = append(lines, "- "+a)
		}
	}
	if len(surface.BlockedJudgments) > 0 {
		lines = append(lines, "", "### Blocked Judgments")
		for _, b := range surface.BlockedJudgments {
			lines = append(lines, "- "+b)
		}
	}
	return section(lines)
}

func sufficiencySection(s *model.AnalysisSufficiencySummary, surface model.DecisionSurface) string {
	lines := []string{
		"## Analysis Sufficiency Summary",
		"",
		"*Descriptive summary of analysis completeness*",
		"",
		fmt.Sprintf("**Decision Context:** %s", s.DecisionBinding),
	}
	if surface.DecisionQuestion != "" {
		lines = append(lines, "  - Decision Question: "+surface.DecisionQuestion)
	}
	if len(surface.Options) > 0 {
		lines = append(lines, "  - Options: "+strings.Join(surface.Options, ", "))
	}
	lines = append(lines, "",
		fmt.Sprintf("**Option Coverage:** %s", s.OptionCoverage),
		fmt.Sprintf("**Framework Coverage:** %s", s.FrameworkCoverage),
		fmt.Sprintf("**Overall Status:** %s", s.OverallStatus),
	)
	switch s.OverallStatus {
	case model.SufficiencyExploratory:
		lines = append(lines, "", "*Note: This analysis is exploratory. The input was descriptive rather than decision-focused. To proceed with decision analysis, provide a choice context with multiple alternatives.*")
	case model.SufficiencyConstrained:
		lines = append(lines, "", "*Note: This analysis is constrained. See Decision Surface for limitations and areas requiring judgment.*")
	}
	return section(lines)
}

// systemLimitations are fixed: they state what the system never does, not
// what this run happened to miss.
var systemLimitations = []string{
	"No external validation: Analysis is based solely on provided Problem Context Materials",
	"No learning: This analysis does not improve from past outcomes",
	"No ground truth: Framework outputs are not validated against external reality",
	"No domain authority: The system claims no special expertise beyond provided materials",
	"Framework disagreement: Different frameworks may produce conflicting assessments",
	"Assumption-dependent: All inferences rest on explicitly stated and unstated assumptions",
}

func limitationsSection() string {
	lines := []string{
		"## System Limitations",
		"",
		"This analysis is subject to the following explicit limitations:",
		"",
	}
	for _, l := range systemLimitations {
		lines = append(lines, "- "+l)
	}
	return section(lines)
}

// appendBullets adds a heading and one bullet per item; empty lists add
// nothing.
func appendBullets(lines []string, heading string, items []string) []string {
	if len(items) == 0 {
		return lines
	}
	lines = append(lines, heading)
	for _, item := range items {
		lines = append(lines, "- "+item)
	}
	return append(lines, "")
}

// section joins lines, dropping trailing blanks so section separators stay
// uniform.
func section(lines []string) string {
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	var out []string
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}

// truncate cuts s at a rune boundary at or below limit bytes.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
