package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/datamend/datamend-cli/internal/quality"
	"github.com/datamend/datamend-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	scoreJSON    bool
	scoreMissing bool
)

var scoreCmd = &cobra.Command{
	Use:   "score <file>",
	Short: "Assess the quality of a CSV/TSV/JSON dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, _, err := readDataset(args[0])
		if err != nil {
			return err
		}
		rep := quality.Score(ds)
		if scoreJSON {
			b, err := utils.PrettyJSON(rep)
			if err != nil {
				return err
			}
			os.Stdout.Write(b)
			fmt.Println()
			return nil
		}

		fmt.Printf("\nOverall score: %.1f/100 (%s)\n", rep.Overall, rep.Grade)
		fmt.Printf("  Completeness: %.1f\n", rep.Completeness)
		fmt.Printf("  Consistency:  %.1f\n", rep.Consistency)
		fmt.Printf("  Uniqueness:   %.1f\n", rep.Uniqueness)
		fmt.Printf("  Validity:     %.1f\n", rep.Validity)

		if len(rep.Issues) > 0 {
			fmt.Println("\nIssues:")
			for _, is := range rep.Issues {
				fmt.Printf("  [%s] %s\n", is.Severity, is.Description)
			}
		}
		if len(rep.Recommendations) > 0 {
			fmt.Println("\nRecommendations:")
			for _, r := range rep.Recommendations {
				fmt.Printf("  - %s\n", r)
			}
		}

		if scoreMissing {
			mr := quality.AnalyzeMissing(ds)
			fmt.Printf("\nMissing cells: %d (%.1f%%) across %d columns\n",
				mr.TotalMissing, mr.MissingPercentage, mr.ColumnsWithMissing)
			names := make([]string, 0, len(mr.MissingByColumn))
			for name := range mr.MissingByColumn {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Printf("  %s: %d\n", name, mr.MissingByColumn[name])
			}
		}
		return nil
	},
}

func init() {
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "emit the full report as JSON")
	scoreCmd.Flags().BoolVar(&scoreMissing, "missing", false, "include a per-column missing-value breakdown")
	rootCmd.AddCommand(scoreCmd)
}
