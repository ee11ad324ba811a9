package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/krisis/internal/ingest"
	"github.com/ppiankov/krisis/internal/model"
	"github.com/ppiankov/krisis/internal/pipeline"
	"github.com/ppiankov/krisis/internal/report"
	"github.com/ppiankov/krisis/internal/store"
	"github.com/ppiankov/krisis/internal/worker"
)

var (
	batchWorkers int
	reportDir    string
	batchTimeout time.Duration
	// noCache, noFooter, noSave, llmProvider, llmModel are defined in
	// analyze.go and shared here
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <inputs-file>",
	Short: "Analyze multiple context inputs from a file in parallel",
	Long: `Batch processes multiple problem contexts concurrently:
- Read inputs from a file (one per line; file paths or URLs)
- Fan whole analyses out across a configurable worker pool
- Each analysis runs its frameworks sequentially, as a single run would
- Generate an individual report and JSON record per input

Lines starting with # and duplicate lines are skipped.

Example:
  krisis batch contexts.txt
  krisis batch contexts.txt --workers 8 --output-dir ./krisis-reports
  krisis batch contexts.txt --no-save --timeout 1h`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "number of concurrent workers (default: config batch.workers)")
	batchCmd.Flags().StringVar(&reportDir, "output-dir", "./krisis-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")

	// Shared with the analyze command
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable response cache (force fresh completions)")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	batchCmd.Flags().BoolVar(&noSave, "no-save", false, "skip persisting analysis records to storage")
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openrouter, openai, anthropic, ollama, gemini)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (default: provider default)")

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	inputsFile := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
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
	if batchWorkers > 0 {
		cfg.Batch.Workers = batchWorkers
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Krisis Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", inputsFile)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Batch.Workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", reportDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	if err := resolveProvider(cfg); err != nil {
		return err
	}
	if cfg.LLM.Provider != "" {
		fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n\n", cfg.LLM.Provider, cfg.LLM.Model)
	}

	if err := os.MkdirAll(reportDir, 0755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	p, err := pipeline.NewPipeline(ctx, cfg, logger)
	if err != nil {
		return err
	}

	analyzer := &batchAnalyzer{
		pipeline: p,
		ingestor: ingest.New(cfg.HTTP),
		gen:      report.NewGenerator(cfg.Output.IncludeFooter),
	}
	if !noSave {
		analyzer.store, err = store.New(cfg.Storage.Dir)
		if err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stderr, "⚙️  Reading inputs from file...\n")
	inputs, err := worker.ReadInputs(inputsFile)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "✓ Loaded %d inputs\n", len(inputs))
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "⚙️  Processing inputs with %d workers...\n", cfg.Batch.Workers)
	fmt.Fprintf(os.Stderr, "\n")

	outcomes := worker.NewBatch(analyzer, cfg.Batch.Workers).Run(ctx, inputs)

	succeeded, failed := 0, 0
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", outcome.Input, outcome.Err)
			continue
		}

		succeeded++

		slug := sanitizeFilename(outcome.Result.ProblemContext.Title)
		if slug == "" {
			slug = outcome.Result.ID
		}
		jsonPath := filepath.Join(reportDir, slug+".json")
		mdPath := filepath.Join(reportDir, slug+".md")

		if err := analyzer.gen.RenderJSON(outcome.Result, jsonPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", outcome.Input, err)
			continue
		}
		if err := analyzer.gen.RenderMarkdown(outcome.Result, mdPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", outcome.Input, err)
			continue
		}

		status := "exploratory"
		if outcome.Result.Sufficiency != nil {
			status = string(outcome.Result.Sufficiency.OverallStatus)
		}
		fmt.Fprintf(os.Stderr, "✓ %s (%s)\n", outcome.Result.ProblemContext.Title, status)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Analysis Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Inputs:     %d\n", len(outcomes))
	fmt.Fprintf(os.Stderr, "  Succeeded:  %d\n", succeeded)
	fmt.Fprintf(os.Stderr, "  Failed:     %d\n", failed)
	fmt.Fprintf(os.Stderr, "  Reports in: %s\n", reportDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

// batchAnalyzer runs one complete analysis per batch input. Inputs starting
// with http:// or https:// are fetched; everything else is read as a file
// path. Artifacts are attached to the result; the caller renders them.
type batchAnalyzer struct {
	pipeline *pipeline.Pipeline
	ingestor *ingest.Ingestor
	gen      *report.Generator
	store    *store.Store // nil when saving is disabled
}

func (a *batchAnalyzer) AnalyzeInput(ctx context.Context, input string) (*model.AnalysisResult, error) {
	var (
		pctx model.ProblemContext
		err  error
	)
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		pctx, err = a.ingestor.FromURL(ctx, input, ingest.Options{})
	} else {
		pctx, err = a.ingestor.FromFile(input, ingest.Options{})
	}
	if err != nil {
		return nil, err
	}

	result, err := a.pipeline.Analyze(ctx, &pctx, nil)
	if err != nil {
		return nil, err
	}
	result.GeneratedReport = a.gen.Markdown(result)

	if a.store != nil {
		if _, err := a.store.Save(result); err != nil {
			return nil, fmt.Errorf("persist analysis: %w", err)
		}
	}

	return result, nil
}

// sanitizeFilename makes a context title safe to use as a file name.
func sanitizeFilename(s string) string {
	mapped := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		case ' ':
			return '-'
		}
		return r
	}, strings.TrimSpace(s))

	if len(mapped) > 100 {
		mapped = mapped[:100]
	}
	return mapped
}
