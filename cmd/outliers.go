package cmd

import (
	"fmt"

	"github.com/datamend/datamend-cli/internal/ops"
	"github.com/spf13/cobra"
)

var (
	outOutput        string
	outColumn        string
	outMethod        string
	outThreshold     float64
	outContamination float64
	outAction        string
	outMLColumns     []string
)

var outliersCmd = &cobra.Command{
	Use:   "outliers <file>",
	Short: "Detect, remove, or winsorize outliers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, _, err := readDataset(args[0])
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("contamination") && cfg != nil {
			outContamination = cfg.DefaultContamination
		}

		if outMethod == "ml" {
			out, info, err := ops.DetectAnomalies(ds, outContamination, outMLColumns)
			if err != nil {
				return err
			}
			fmt.Printf("  Flagged %d rows as anomalies (%.1f%%) using %v\n",
				info.TotalAnomalies, info.Percentage, info.AnalyzedColumns)
			return writeDataset(out, args[0], outOutput)
		}

		if outColumn == "" {
			return fmt.Errorf("--column is required for method %s", outMethod)
		}

		if outAction == "winsorize" {
			out, capped, err := ops.Winsorize(ds, outColumn)
			if err != nil {
				return err
			}
			fmt.Printf("  Capped %d values in %s\n", capped, outColumn)
			return writeDataset(out, args[0], outOutput)
		}

		threshold := outThreshold
		if threshold == 0 && cfg != nil {
			switch outMethod {
			case "iqr":
				threshold = cfg.DefaultIQRMultiplier
			case "zscore":
				threshold = cfg.DefaultZThreshold
			}
		}
		opts := ops.OutlierOptions{Threshold: threshold, Contamination: outContamination}
		mask, err := ops.DetectOutliers(ds, outColumn, ops.OutlierMethod(outMethod), opts)
		if err != nil {
			return err
		}
		n := 0
		for _, flagged := range mask {
			if flagged {
				n++
			}
		}
		fmt.Printf("  %d outliers in %s (%s)\n", n, outColumn, outMethod)

		switch outAction {
		case "detect":
			for i, flagged := range mask {
				if flagged {
					fmt.Printf("    row %d\n", i)
				}
			}
			return nil
		case "remove":
			out, removed, err := ops.FilterOutliers(ds, mask)
			if err != nil {
				return err
			}
			fmt.Printf("  Removed %d rows\n", removed)
			return writeDataset(out, args[0], outOutput)
		default:
			return fmt.Errorf("unsupported --action: %s (use detect|remove|winsorize)", outAction)
		}
	},
}

func init() {
	outliersCmd.Flags().StringVarP(&outOutput, "output", "o", "", "output path (default <file>_cleaned.<ext>)")
	outliersCmd.Flags().StringVarP(&outColumn, "column", "c", "", "numeric column to inspect")
	outliersCmd.Flags().StringVarP(&outMethod, "method", "m", "iqr", "iqr|zscore|isolation_forest|ml")
	outliersCmd.Flags().Float64Var(&outThreshold, "threshold", 0, "IQR multiplier or z-score cutoff (method defaults apply)")
	outliersCmd.Flags().Float64Var(&outContamination, "contamination", 0.1, "expected outlier fraction for forest methods")
	outliersCmd.Flags().StringVar(&outAction, "action", "detect", "detect|remove|winsorize")
	outliersCmd.Flags().StringSliceVar(&outMLColumns, "features", nil, "numeric feature columns for --method ml (default all numeric)")
	rootCmd.AddCommand(outliersCmd)
}
