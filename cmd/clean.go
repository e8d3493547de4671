package cmd

import (
	"fmt"

	"github.com/datamend/datamend-cli/internal/ops"
	"github.com/spf13/cobra"
)

var (
	cleanOutput      string
	cleanAuto        bool
	cleanColumns     []string
	cleanDropCols    []string
	cleanDropMissing float64
	cleanLowercase   bool
	cleanStripSpec   bool
	cleanStripDigits bool
	cleanFillNA      string
)

var cleanCmd = &cobra.Command{
	Use:   "clean <file>",
	Short: "Clean a dataset: auto-clean, text normalization, column drops",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, _, err := readDataset(args[0])
		if err != nil {
			return err
		}

		if cleanAuto {
			out, log := ops.AutoClean(ds, ops.NameBasedTimestampClassifier)
			ds = out
			for _, line := range log {
				fmt.Println("  " + line)
			}
		}

		if len(cleanDropCols) > 0 {
			ds = ops.DropColumns(ds, cleanDropCols)
			fmt.Printf("  Dropped columns: %v\n", cleanDropCols)
		}

		if cmd.Flags().Changed("drop-missing-above") || cleanAuto {
			threshold := cleanDropMissing
			if !cmd.Flags().Changed("drop-missing-above") && cfg != nil {
				threshold = cfg.AutoCleanMissingPct
			}
			out, dropped := ops.DropHighMissing(ds, threshold)
			ds = out
			if len(dropped) > 0 {
				fmt.Printf("  Dropped high-missing columns: %v\n", dropped)
			}
		}

		if cleanLowercase || cleanStripSpec || cleanStripDigits || len(cleanColumns) > 0 {
			opts := ops.TextCleanOptions{
				CollapseWhitespace: true,
				TrimSpace:          true,
				Lowercase:          cleanLowercase,
				StripSpecial:       cleanStripSpec,
				StripDigits:        cleanStripDigits,
			}
			out, err := ops.NormalizeText(ds, cleanColumns, opts)
			if err != nil {
				return err
			}
			ds = out
			fmt.Println("  Normalized text columns")
		}

		if cleanFillNA != "" {
			ds = ops.FillAll(ds, cleanFillNA)
			fmt.Printf("  Filled missing cells with %q\n", cleanFillNA)
		}

		return writeDataset(ds, args[0], cleanOutput)
	},
}

func init() {
	cleanCmd.Flags().StringVarP(&cleanOutput, "output", "o", "", "output path (default <file>_cleaned.<ext>)")
	cleanCmd.Flags().BoolVar(&cleanAuto, "auto", false, "run the automatic cleaning recipe first")
	cleanCmd.Flags().StringSliceVar(&cleanColumns, "columns", nil, "text columns to normalize (default all text columns)")
	cleanCmd.Flags().StringSliceVar(&cleanDropCols, "drop", nil, "columns to drop")
	cleanCmd.Flags().Float64Var(&cleanDropMissing, "drop-missing-above", 0.95, "drop columns with a missing fraction above this threshold")
	cleanCmd.Flags().BoolVar(&cleanLowercase, "lowercase", false, "lowercase text values")
	cleanCmd.Flags().BoolVar(&cleanStripSpec, "strip-special", false, "remove special characters from text values")
	cleanCmd.Flags().BoolVar(&cleanStripDigits, "strip-digits", false, "remove digits from text values")
	cleanCmd.Flags().StringVar(&cleanFillNA, "fill-na", "", "fill every missing cell with this value")
	rootCmd.AddCommand(cleanCmd)
}
