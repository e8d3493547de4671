package cmd

import (
	"fmt"

	"github.com/datamend/datamend-cli/internal/ops"
	"github.com/spf13/cobra"
)

var (
	convertOutput    string
	convertColumn    string
	convertTo        string
	convertTransform string
)

var convertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Convert a column's type or apply a numeric transformation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if convertColumn == "" {
			return fmt.Errorf("--column is required")
		}
		if (convertTo == "") == (convertTransform == "") {
			return fmt.Errorf("specify exactly one of --to or --transform")
		}
		ds, _, err := readDataset(args[0])
		if err != nil {
			return err
		}

		if convertTo != "" {
			out, rep, err := ops.Convert(ds, convertColumn, ops.Target(convertTo))
			if err != nil {
				return err
			}
			fmt.Printf("  Converted %s to %s (%d values, %d became missing)\n",
				convertColumn, convertTo, rep.Converted, rep.Coerced)
			return writeDataset(out, args[0], convertOutput)
		}

		out, err := ops.TransformColumn(ds, convertColumn, convertTransform)
		if err != nil {
			return err
		}
		fmt.Printf("  Applied %s to %s\n", convertTransform, convertColumn)
		return writeDataset(out, args[0], convertOutput)
	},
}

func init() {
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "output path (default <file>_cleaned.<ext>)")
	convertCmd.Flags().StringVarP(&convertColumn, "column", "c", "", "column to convert (required)")
	convertCmd.Flags().StringVar(&convertTo, "to", "", "target type: integer|float|text|timestamp|boolean|categorical")
	convertCmd.Flags().StringVar(&convertTransform, "transform", "", "numeric transformation: log|sqrt|square")
	rootCmd.AddCommand(convertCmd)
}
