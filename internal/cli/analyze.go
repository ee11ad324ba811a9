package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/krisis/internal/framework"
	"github.com/ppiankov/krisis/internal/ingest"
	"github.com/ppiankov/krisis/internal/model"
	"github.com/ppiankov/krisis/internal/pipeline"
	"github.com/ppiankov/krisis/internal/report"
	"github.com/ppiankov/krisis/internal/store"
)

var (
	inputText        string
	inputFile        string
	inputURL         string
	title            string
	problemStatement string
	outputPath       string
	outJSON          string
	decisionQuestion string
	decisionType     string
	optionsCSV       string
	frameworkNames   []string
	timeout          time.Duration
	noCache          bool
	noFooter         bool
	noSave           bool
	llmProvider      string
	llmModel         string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run analytical frameworks on problem context material",
	Long: `Analyze runs the configured analytical frameworks over problem context
material supplied as inline text, a local file, or a URL:
- Ingest and structure the problem context
- Resolve the decision focus (explicit flags, or inferred from the input)
- Run each framework through the inference provider
- Validate claims and aggregate analysis sufficiency
- Generate a reasoned artifact (markdown report plus a stored JSON record)

This produces a reasoned artifact, not a recommendation.
Framework disagreement is a valid and expected outcome.

Example:
  krisis analyze --file context.txt
  krisis analyze --text "..." --decision-question "Enter the EU market?" --options "Enter now,Wait 12 months"
  krisis analyze --url https://example.com/briefing --title "Market Briefing"`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Input flags (exactly one required)
	analyzeCmd.Flags().StringVarP(&inputText, "text", "t", "", "problem context material as a text string")
	analyzeCmd.Flags().StringVarP(&inputFile, "file", "f", "", "path to a file containing problem context material")
	analyzeCmd.Flags().StringVarP(&inputURL, "url", "u", "", "URL of a page containing problem context material")

	// Context flags
	analyzeCmd.Flags().StringVar(&title, "title", "", "title or identifier for this problem context")
	analyzeCmd.Flags().StringVar(&problemStatement, "problem-statement", "", "clear statement of the problem being analyzed")

	// Decision focus flags
	analyzeCmd.Flags().StringVar(&decisionQuestion, "decision-question", "", "the specific decision question being analyzed (required for decision-bound frameworks)")
	analyzeCmd.Flags().StringVar(&decisionType, "decision-type", "", "type of decision: explore, compare, or stress_test")
	analyzeCmd.Flags().StringVar(&optionsCSV, "options", "", "comma-separated list of options under consideration (e.g., 'Option A,Option B,Option C')")

	// Output flags
	analyzeCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output path for report (default: report_<id>.md)")
	analyzeCmd.Flags().StringVar(&outJSON, "json", "", "output path for the raw analysis JSON (optional)")
	analyzeCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	analyzeCmd.Flags().BoolVar(&noSave, "no-save", false, "skip persisting the analysis record to storage")

	// Analysis flags
	analyzeCmd.Flags().StringSliceVar(&frameworkNames, "frameworks", nil, "frameworks to run (default: config analysis.frameworks)")
	analyzeCmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "overall analysis timeout")
	analyzeCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable response cache (force fresh completions)")

	// LLM flags
	analyzeCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openrouter, openai, anthropic, ollama, gemini)")
	analyzeCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (default: provider default)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	sources := 0
	for _, s := range []string{inputText, inputFile, inputURL} {
		if s != "" {
			sources++
		}
	}
	if sources == 0 {
		return fmt.Errorf("must provide one of --text, --file, or --url")
	}
	if sources > 1 {
		return fmt.Errorf("cannot use more than one of --text, --file, and --url")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Build configuration from config sources, then flags
	cfg := loadConfig()
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}

	focus, err := buildFocus(decisionQuestion, decisionType, optionsCSV)
	if err != nil {
		return err
	}
	if focus != nil {
		fmt.Fprintf(os.Stderr, "🎯 Decision Focus: %s\n", focus.DecisionQuestion)
		fmt.Fprintf(os.Stderr, "   Options: %s\n", strings.Join(focus.Options, ", "))
	} else if decisionQuestion != "" || optionsCSV != "" {
		fmt.Fprintln(os.Stderr, "⚠️  Note: Decision focus requires both --decision-question and --options")
		fmt.Fprintln(os.Stderr, "   If not provided, the focus is inferred from your input.")
	}

	// Ingest context
	ing := ingest.New(cfg.HTTP)
	opts := ingest.Options{
		Title:            title,
		ProblemStatement: problemStatement,
		Focus:            focus,
	}

	var pctx model.ProblemContext
	switch {
	case inputText != "":
		fmt.Fprintln(os.Stderr, "📄 Ingesting Problem Context Material (text)...")
		pctx = ing.FromText(inputText, opts)
	case inputFile != "":
		fmt.Fprintf(os.Stderr, "📄 Ingesting Problem Context Material (file): %s\n", inputFile)
		pctx, err = ing.FromFile(inputFile, opts)
	default:
		fmt.Fprintf(os.Stderr, "📄 Ingesting Problem Context Material (url): %s\n", inputURL)
		pctx, err = ing.FromURL(ctx, inputURL, opts)
	}
	if err != nil {
		return fmt.Errorf("ingest context: %w", err)
	}
	fmt.Fprintln(os.Stderr, "✓ Problem Context ingested successfully")

	if err := resolveProvider(cfg); err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(ctx, cfg, logger)
	if err != nil {
		return err
	}

	requested := frameworkNames
	if len(requested) == 0 {
		requested = cfg.Analysis.Frameworks
	}
	registry := framework.NewRegistry()
	fmt.Fprintf(os.Stderr, "\n🔍 Running analytical frameworks...\n")
	for _, name := range requested {
		if fw, ok := registry.Get(name); ok {
			fmt.Fprintf(os.Stderr, "   - %s (%s)\n", fw.Name(), fw.Lens())
		} else {
			fmt.Fprintf(os.Stderr, "   - %s (unknown)\n", name)
		}
	}
	fmt.Fprintln(os.Stderr)

	result, err := p.Analyze(ctx, &pctx, frameworkNames)
	if err != nil {
		return fmt.Errorf("analysis: %w", err)
	}

	for _, fr := range result.FrameworkResults {
		switch fr.ExecutionStatus {
		case model.StatusSuccessful:
			fmt.Fprintf(os.Stderr, "✓ %s analysis complete\n", fr.FrameworkName)
		case model.StatusInsufficient:
			fmt.Fprintf(os.Stderr, "⚠ %s analysis insufficient: %s\n", fr.FrameworkName, fr.ExecutionReason)
		default:
			fmt.Fprintf(os.Stderr, "⚠ %s analysis failed: %s\n", fr.FrameworkName, fr.ExecutionReason)
		}
	}

	// Generate report
	fmt.Fprintf(os.Stderr, "\n📝 Generating reasoned artifact...\n")
	gen := report.NewGenerator(cfg.Output.IncludeFooter)
	result.GeneratedReport = gen.Markdown(result)

	reportPath := outputPath
	if reportPath == "" {
		reportPath = fmt.Sprintf("report_%s.md", result.ID)
	}
	if err := gen.RenderMarkdown(result, reportPath); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ Report saved to: %s\n", reportPath)

	if outJSON != "" {
		if err := gen.RenderJSON(result, outJSON); err != nil {
			return fmt.Errorf("write JSON: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Analysis JSON saved to: %s\n", outJSON)
	}

	// Persist analysis
	var dataPath string
	if !noSave {
		st, err := store.New(cfg.Storage.Dir)
		if err != nil {
			return err
		}
		dataPath, err = st.Save(result)
		if err != nil {
			return fmt.Errorf("persist analysis: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Analysis data saved to: %s\n", dataPath)
	}

	printAnalysisSummary(result, reportPath, dataPath)
	printDisclaimer()

	return nil
}

// buildFocus assembles an explicit decision focus from the analyze flags.
// The focus is an optional hint; partial flags leave it nil and the pipeline
// infers the focus from the input instead.
func buildFocus(question, decisionType, optionsCSV string) (*model.DecisionFocus, error) {
	if question == "" || optionsCSV == "" {
		return nil, nil
	}

	dt := model.DecisionType(decisionType)
	if decisionType == "" {
		dt = model.DecisionExplore
	}

	return model.NewDecisionFocus(question, dt, splitOptions(optionsCSV))
}

// splitOptions splits a comma-separated option list, trimming whitespace and
// dropping empty entries.
func splitOptions(csv string) []string {
	parts := strings.Split(csv, ",")
	options := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			options = append(options, trimmed)
		}
	}
	return options
}

func printAnalysisSummary(result *model.AnalysisResult, reportPath, dataPath string) {
	fmt.Printf("\n📊 Analysis Summary:\n")
	fmt.Printf("   ID: %s\n", result.ID)
	fmt.Printf("   Title: %s\n", result.ProblemContext.Title)

	for _, fr := range result.FrameworkResults {
		status := "✗ Failed"
		switch fr.ExecutionStatus {
		case model.StatusSuccessful:
			status = "✓ Complete"
		case model.StatusInsufficient:
			status = "○ Insufficient"
		}
		fmt.Printf("   %s: %s\n", fr.FrameworkName, status)
	}
	if result.Sufficiency != nil {
		fmt.Printf("   Overall: %s\n", result.Sufficiency.OverallStatus)
	}

	fmt.Printf("\n📋 Report Contents:\n")
	fmt.Printf("   - Context Summary\n")
	fmt.Printf("   - Key Analytical Claims: %d extracted\n", len(report.KeyClaims(result)))
	fmt.Printf("   - Structural Pressures (Operating Environment)\n")
	fmt.Printf("   - Systemic Risks (Target System)\n")
	fmt.Printf("   - Unknowns & Sensitivities: %d identified\n", len(report.Unknowns(result)))
	fmt.Printf("   - Decision Surface\n")
	fmt.Printf("   - Framework Agreement & Tension\n")
	fmt.Printf("   - System Limitations\n")

	fmt.Printf("\n📁 Output Files:\n")
	fmt.Printf("   Report: %s\n", reportPath)
	if dataPath != "" {
		fmt.Printf("   Data: %s\n", dataPath)
	}
}

func printDisclaimer() {
	line := strings.Repeat("=", 60)
	fmt.Println("\n" + line)
	fmt.Println("⚠️  IMPORTANT DISCLAIMER")
	fmt.Println(line)
	fmt.Println("This is a reasoned artifact, NOT a recommendation.")
	fmt.Println("This system does NOT output decisions, rank options,")
	fmt.Println("optimize objectives, or make recommendations.")
	fmt.Println("The Decision Owner retains full responsibility.")
	fmt.Println(line)
}
