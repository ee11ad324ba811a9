package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/krisis/internal/framework"
)

// frameworksCmd represents the frameworks command
var frameworksCmd = &cobra.Command{
	Use:   "frameworks",
	Short: "List available analytical frameworks",
	Long: `List the analytical frameworks an analysis can run, with the lens each
one applies and what it needs as input.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		registry := framework.NewRegistry()

		fmt.Println("Available Analytical Frameworks:")
		fmt.Println()
		for _, fw := range registry.List() {
			fmt.Printf("  📐 %s\n", fw.Name())
			fmt.Printf("     Analytical Lens: %s\n", fw.Lens())
			fmt.Printf("     Description: %s\n", fw.Description())
			if fw.RequiresFocus() {
				fmt.Printf("     Input Requirements: decision question, decision type, options\n")
			}
			fmt.Println()
		}
	},
}

func init() {
	rootCmd.AddCommand(frameworksCmd)
}
