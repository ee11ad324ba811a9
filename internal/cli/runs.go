package cli

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/ppiankov/krisis/internal/framework"
	"github.com/ppiankov/krisis/internal/model"
	"github.com/ppiankov/krisis/internal/store"
)

var (
	runsStorageDir string
	showReport     bool
)

// runsCmd represents the runs command
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect stored analyses",
	Long: `Inspect the analysis records persisted by previous runs.

Records live as one JSON file per analysis under the storage directory
(config storage.dir, default: krisis-storage).`,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored analyses",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}

		summaries, err := st.Summaries()
		if err != nil {
			return err
		}
		if len(summaries) == 0 {
			fmt.Println("No analyses found in storage.")
			return nil
		}

		fmt.Printf("Found %d analysis(es):\n\n", len(summaries))
		for _, s := range summaries {
			label := s.Title
			if label == "" {
				label = shortID(s.ID)
			}
			fmt.Printf("  - %s | %s\n", s.ID, label)
		}
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <analysis-id>",
	Short: "Show details of a specific analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}

		result, err := st.Load(args[0])
		if err != nil {
			return err
		}

		if showReport {
			if result.GeneratedReport == "" {
				return fmt.Errorf("analysis %s has no stored report", result.ID)
			}
			fmt.Print(result.GeneratedReport)
			return nil
		}

		printAnalysisDetail(result)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)

	runsCmd.PersistentFlags().StringVar(&runsStorageDir, "storage-dir", "", "storage directory (default: config storage.dir)")
	runsShowCmd.Flags().BoolVar(&showReport, "report", false, "print the stored markdown report instead of the record summary")
}

func openStore() (*store.Store, error) {
	dir := runsStorageDir
	if dir == "" {
		dir = loadConfig().Storage.Dir
	}
	return store.New(dir)
}

func printAnalysisDetail(result *model.AnalysisResult) {
	fmt.Printf("Analysis ID: %s\n", result.ID)
	fmt.Printf("Created: %s\n", result.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Title: %s\n", result.ProblemContext.Title)
	fmt.Printf("Problem Statement: %s\n", result.ProblemContext.ProblemStatement)

	fmt.Printf("\nFramework Results:\n")
	for _, fr := range result.FrameworkResults {
		status := "✗"
		if fr.ExecutionStatus == model.StatusSuccessful {
			status = "✓"
		}
		fmt.Printf("   %s %s\n", status, fr.FrameworkName)
	}

	fmt.Printf("\nProblem Context Materials: %d provided\n", len(result.ProblemContext.ProvidedMaterials))

	if fr := result.ResultFor(framework.PorterName); fr != nil {
		if p, ok := fr.Result.(*framework.PorterAnalysis); ok && len(p.SharedObservations) > 0 {
			fmt.Printf("\nOperating Environment Analysis (Porter):\n")
			fmt.Printf("   Overall: %s...\n", preview(strings.Join(p.SharedObservations, " "), 100))
		}
	}
	if fr := result.ResultFor(framework.SystemsDynamicsName); fr != nil {
		if s, ok := fr.Result.(*framework.SystemsDynamicsAnalysis); ok && s.SystemOverview != "" {
			fmt.Printf("\nTarget System Analysis (Systems Dynamics):\n")
			fmt.Printf("   System Overview: %s...\n", preview(s.SystemOverview, 100))
		}
	}

	if result.Sufficiency != nil {
		fmt.Printf("\nSufficiency:\n")
		fmt.Printf("   Decision Binding: %s\n", result.Sufficiency.DecisionBinding)
		fmt.Printf("   Option Coverage: %s\n", result.Sufficiency.OptionCoverage)
		fmt.Printf("   Framework Coverage: %s\n", result.Sufficiency.FrameworkCoverage)
		fmt.Printf("   Overall: %s\n", result.Sufficiency.OverallStatus)
	}
}

// shortID returns the first 8 characters of an analysis ID for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// preview truncates a string to at most limit bytes on a rune boundary.
func preview(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
