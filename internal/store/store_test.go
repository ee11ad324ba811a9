package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/ppiankov/krisis/internal/framework"
	"github.com/ppiankov/krisis/internal/model"
)

func storedResult(id string, createdAt time.Time) *model.AnalysisResult {
	porter := &framework.PorterAnalysis{
		DecisionQuestion: "Should we enter the European market or focus on domestic growth?",
		OptionsAnalyzed:  []string{"enter the European market", "focus on domestic growth"},
		ThreatOfNewEntrants: framework.ForceAnalysis{
			Name:                "Threat of New Entrants",
			RelevanceToDecision: "medium",
			RelevanceRationale:  "Capital requirements gate entry.",
			EffectByOption: []framework.ForceEffect{
				{OptionName: "enter the European market", Description: "New entrant risk is higher."},
			},
		},
		SupplierPower: framework.ForceAnalysis{Name: "Supplier Power", RelevanceToDecision: "low", RelevanceRationale: "Fragmented suppliers.", EffectByOption: []framework.ForceEffect{}},
		BuyerPower:    framework.ForceAnalysis{Name: "Buyer Power", RelevanceToDecision: "low", RelevanceRationale: "Diffuse buyers.", EffectByOption: []framework.ForceEffect{}},
		Substitutes:   framework.ForceAnalysis{Name: "Substitutes", RelevanceToDecision: "low", RelevanceRationale: "Few substitutes.", EffectByOption: []framework.ForceEffect{}},
		Rivalry:       framework.ForceAnalysis{Name: "Rivalry", RelevanceToDecision: "high", RelevanceRationale: "Dense incumbents.", EffectByOption: []framework.ForceEffect{}},
		OptionAwareClaims: []model.AnalyticalClaim{
			{
				Statement:         "European entry faces denser incumbent rivalry.",
				Source:            model.SourceInference,
				Confidence:        model.ConfidenceMedium,
				ClaimType:         model.ClaimOptionSpecific,
				ApplicableOptions: []string{"enter the European market"},
			},
		},
	}
	systems := &framework.SystemsDynamicsAnalysis{
		SystemOverview: "A two-sided delivery marketplace.",
		Fragilities:    []string{"Dependence on a single payment processor"},
	}
	focus, err := model.NewDecisionFocus(
		"Should we enter the European market or focus on domestic growth?",
		model.DecisionCompare,
		[]string{"enter the European market", "focus on domestic growth"},
	)
	if err != nil {
		panic(err)
	}
	return &model.AnalysisResult{
		ID:        id,
		CreatedAt: createdAt,
		ProblemContext: &model.ProblemContext{
			Title:            "Market Entry",
			ProblemStatement: "Decide the expansion path.",
			DecisionFocus:    focus,
			RawContent:       "Planning brief.",
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
		GeneratedReport: "# Analytical Report: Reasoned Artifact\n",
	}
}

func TestStore_SaveAndLoad_RoundTrip(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	original := storedResult("run-1", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	path, err := s.Save(original)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if filepath.Base(path) != "analysis_run-1.json" {
		t.Errorf("Unexpected file name %q", filepath.Base(path))
	}

	loaded, err := s.Load("run-1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if diff := cmp.Diff(original, loaded); diff != "" {
		t.Errorf("Round trip mismatch (-saved +loaded):\n%s", diff)
	}
}

func TestStore_Load_RetypesPayloads(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := s.Save(storedResult("run-2", time.Now().UTC())); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	loaded, err := s.Load("run-2")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	porter, ok := loaded.FrameworkResults[0].Result.(*framework.PorterAnalysis)
	if !ok {
		t.Fatalf("Expected *framework.PorterAnalysis, got %T", loaded.FrameworkResults[0].Result)
	}
	if porter.Rivalry.RelevanceToDecision != "high" {
		t.Errorf("Expected rivalry relevance high, got %q", porter.Rivalry.RelevanceToDecision)
	}
	if _, ok := loaded.FrameworkResults[1].Result.(*framework.SystemsDynamicsAnalysis); !ok {
		t.Fatalf("Expected *framework.SystemsDynamicsAnalysis, got %T", loaded.FrameworkResults[1].Result)
	}
}

func TestStore_Load_NotFound(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	_, err = s.Load("missing")
	if err == nil {
		t.Fatal("Expected error for missing analysis")
	}
	if !strings.Contains(err.Error(), "analysis missing not found") {
		t.Errorf("Unexpected error message: %v", err)
	}
}

func TestStore_Save_RequiresID(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	_, err = s.Save(&model.AnalysisResult{})
	if err == nil {
		t.Fatal("Expected error for missing ID")
	}
}

func TestStore_List_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := s.Save(storedResult("b-run", time.Now().UTC())); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := s.Save(storedResult("a-run", time.Now().UTC())); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "analysis_tmp.json.bak"), []byte("x"), 0644); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	ids, err := s.List()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(ids) != 2 || ids[0] != "a-run" || ids[1] != "b-run" {
		t.Errorf("Expected [a-run b-run], got %v", ids)
	}
}

func TestStore_Summaries_NewestFirstAndSkipsCorrupt(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	older := storedResult("older", time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC))
	newer := storedResult("newer", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	if _, err := s.Save(older); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := s.Save(newer); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "analysis_corrupt.json"), []byte("{not json"), 0644); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	summaries, err := s.Summaries()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("Expected 2 summaries, got %d", len(summaries))
	}
	if summaries[0].ID != "newer" || summaries[1].ID != "older" {
		t.Errorf("Expected newest first, got %v then %v", summaries[0].ID, summaries[1].ID)
	}
	if summaries[0].Title != "Market Entry" {
		t.Errorf("Expected title from context, got %q", summaries[0].Title)
	}
	if summaries[0].Status != string(model.SufficiencyProduced) {
		t.Errorf("Expected status %q, got %q", model.SufficiencyProduced, summaries[0].Status)
	}
	if summaries[0].Frameworks != 2 {
		t.Errorf("Expected 2 frameworks, got %d", summaries[0].Frameworks)
	}
}
