package cmd

import (
	"fmt"

	"github.com/datamend/datamend-cli/internal/ops"
	"github.com/spf13/cobra"
)

var (
	imputeOutput    string
	imputeColumn    string
	imputeMethod    string
	imputeConstant  string
	imputeOrder     int
	imputeInterp    string
	imputeNeighbors int
)

var imputeCmd = &cobra.Command{
	Use:   "impute <file>",
	Short: "Fill missing values in a column",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if imputeColumn == "" {
			return fmt.Errorf("--column is required")
		}
		ds, _, err := readDataset(args[0])
		if err != nil {
			return err
		}

		method := ops.ImputeMethod(imputeMethod)
		if method == ops.ImputeKNN {
			out, affected, err := ops.KNNImpute(ds, imputeColumn, imputeNeighbors)
			if err != nil {
				return err
			}
			fmt.Printf("  KNN-imputed columns: %v\n", affected)
			return writeDataset(out, args[0], imputeOutput)
		}

		opts := ops.ImputeOptions{
			Constant:      imputeConstant,
			Interpolation: imputeInterp,
			Order:         imputeOrder,
		}
		out, err := ops.Impute(ds, imputeColumn, method, opts)
		if err != nil {
			return err
		}
		fmt.Printf("  Imputed %s using %s\n", imputeColumn, imputeMethod)
		return writeDataset(out, args[0], imputeOutput)
	},
}

func init() {
	imputeCmd.Flags().StringVarP(&imputeOutput, "output", "o", "", "output path (default <file>_cleaned.<ext>)")
	imputeCmd.Flags().StringVarP(&imputeColumn, "column", "c", "", "column to impute (required)")
	imputeCmd.Flags().StringVarP(&imputeMethod, "method", "m", "mean", "mean|median|mode|ffill|bfill|constant|interpolate|knn")
	imputeCmd.Flags().StringVar(&imputeConstant, "value", "", "fill value for --method constant")
	imputeCmd.Flags().StringVar(&imputeInterp, "interpolation", "linear", "linear|polynomial|spline for --method interpolate")
	imputeCmd.Flags().IntVar(&imputeOrder, "order", 2, "polynomial/spline order for --method interpolate")
	imputeCmd.Flags().IntVar(&imputeNeighbors, "neighbors", 5, "neighbor count for --method knn")
	rootCmd.AddCommand(imputeCmd)
}
