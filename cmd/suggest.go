package cmd

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/datamend/datamend-cli/internal/ops"
	"github.com/datamend/datamend-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	suggestJSON     bool
	suggestFix      bool
	suggestOutput   string
	suggestPatterns string
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <file>",
	Short: "Suggest cleaning steps for a dataset, optionally applying the automatic ones",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, _, err := readDataset(args[0])
		if err != nil {
			return err
		}
		if suggestPatterns != "" {
			rep, err := ops.AnalyzePatterns(ds, suggestPatterns)
			if err != nil {
				return err
			}
			if suggestJSON {
				b, err := utils.PrettyJSON(rep)
				if err != nil {
					return err
				}
				os.Stdout.Write(b)
				fmt.Println()
				return nil
			}
			fmt.Printf("\nPatterns in %s (%d values, %d unique, consistency %.1f):\n",
				suggestPatterns, rep.TotalValues, rep.UniqueValues, rep.ConsistencyScore)
			names := make([]string, 0, len(rep.Matches))
			for name := range rep.Matches {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				m := rep.Matches[name]
				fmt.Printf("  %s: %d (%.1f%%)\n", name, m.Count, m.Percentage)
			}
			for _, issue := range rep.Issues {
				fmt.Printf("  ⚠ %s\n", issue)
			}
			return nil
		}

		sugs := ops.SmartSuggestions(ds)
		if suggestJSON {
			b, err := utils.PrettyJSON(sugs)
			if err != nil {
				return err
			}
			os.Stdout.Write(b)
			fmt.Println()
			return nil
		}

		if len(sugs) == 0 {
			fmt.Println("✓ No cleaning suggestions, the dataset looks good")
			return nil
		}
		for _, s := range sugs {
			fmt.Printf("  [%s] %s (%s): %s\n", s.Priority, s.Type, s.Column, s.Issue)
			fmt.Printf("        %s\n", s.Advice)
		}

		if !suggestFix {
			return nil
		}
		applied := 0
		for _, s := range sugs {
			out, err := ops.ApplySuggestion(ds, s)
			// Skip what has no automatic fix, or what an earlier fix
			// already removed.
			if errors.Is(err, ops.ErrInvalidParameter) || errors.Is(err, ops.ErrUnknownColumn) {
				continue
			}
			if err != nil {
				return err
			}
			ds = out
			applied++
			fmt.Printf("✓ Applied %s to %s\n", s.Action, s.Column)
		}
		if applied == 0 {
			fmt.Println("⚠ No suggestion has an automatic fix")
			return nil
		}
		return writeDataset(ds, args[0], suggestOutput)
	},
}

func init() {
	suggestCmd.Flags().BoolVar(&suggestJSON, "json", false, "emit suggestions as JSON")
	suggestCmd.Flags().BoolVar(&suggestFix, "fix", false, "apply every suggestion that has an automatic fix")
	suggestCmd.Flags().StringVarP(&suggestOutput, "output", "o", "", "output path with --fix (default <file>_cleaned.<ext>)")
	suggestCmd.Flags().StringVar(&suggestPatterns, "patterns", "", "analyze value shapes in this text column instead")
	rootCmd.AddCommand(suggestCmd)
}
