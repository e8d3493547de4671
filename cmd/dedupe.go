package cmd

import (
	"fmt"

	"github.com/datamend/datamend-cli/internal/ops"
	"github.com/spf13/cobra"
)

var (
	dedupeOutput string
	dedupeSubset []string
	dedupeKeep   string
)

var dedupeCmd = &cobra.Command{
	Use:   "dedupe <file>",
	Short: "Remove duplicate rows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, _, err := readDataset(args[0])
		if err != nil {
			return err
		}
		out, removed, err := ops.RemoveDuplicates(ds, dedupeSubset, ops.Keep(dedupeKeep))
		if err != nil {
			return err
		}
		fmt.Printf("  Removed %d duplicate rows\n", removed)
		return writeDataset(out, args[0], dedupeOutput)
	},
}

func init() {
	dedupeCmd.Flags().StringVarP(&dedupeOutput, "output", "o", "", "output path (default <file>_cleaned.<ext>)")
	dedupeCmd.Flags().StringSliceVar(&dedupeSubset, "subset", nil, "columns to compare (default all)")
	dedupeCmd.Flags().StringVar(&dedupeKeep, "keep", "first", "which duplicate to keep: first|last")
	rootCmd.AddCommand(dedupeCmd)
}
