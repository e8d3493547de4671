package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/datamend/datamend-cli/internal/ops"
	"github.com/spf13/cobra"
)

var (
	encodeOutput    string
	encodeType      string
	encodeColumns   []string
	encodeDropFirst bool
	encodeMapping   []string
)

var encodeCmd = &cobra.Command{
	Use:   "encode <file>",
	Short: "Encode categorical columns (label, one-hot, ordinal)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(encodeColumns) == 0 {
			return fmt.Errorf("--columns is required")
		}
		ds, _, err := readDataset(args[0])
		if err != nil {
			return err
		}

		switch encodeType {
		case "label":
			for _, col := range encodeColumns {
				out, mapping, err := ops.LabelEncode(ds, col)
				if err != nil {
					return err
				}
				ds = out
				fmt.Printf("  %s: %d classes %v\n", col, len(mapping.Classes), mapping.Classes)
			}
		case "onehot":
			out, err := ops.OneHotEncode(ds, encodeColumns, encodeDropFirst)
			if err != nil {
				return err
			}
			ds = out
			fmt.Printf("  One-hot encoded %v\n", encodeColumns)
		case "ordinal":
			mapping, err := parseOrdinalMapping(encodeMapping)
			if err != nil {
				return err
			}
			for _, col := range encodeColumns {
				out, unmapped, err := ops.OrdinalEncode(ds, col, mapping)
				if err != nil {
					return err
				}
				ds = out
				if unmapped > 0 {
					fmt.Printf("  ⚠ %s: %d values had no mapping and became missing\n", col, unmapped)
				}
			}
		default:
			return fmt.Errorf("unsupported --type: %s (use label|onehot|ordinal)", encodeType)
		}

		return writeDataset(ds, args[0], encodeOutput)
	},
}

// parseOrdinalMapping turns ["low=0","high=2"] into {"low":0,"high":2}.
func parseOrdinalMapping(pairs []string) (map[string]int, error) {
	m := make(map[string]int, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --map entry %q (want value=rank)", pair)
		}
		rank, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("invalid rank in --map entry %q: %w", pair, err)
		}
		m[strings.TrimSpace(k)] = rank
	}
	return m, nil
}

func init() {
	encodeCmd.Flags().StringVarP(&encodeOutput, "output", "o", "", "output path (default <file>_cleaned.<ext>)")
	encodeCmd.Flags().StringVarP(&encodeType, "type", "t", "label", "label|onehot|ordinal")
	encodeCmd.Flags().StringSliceVarP(&encodeColumns, "columns", "c", nil, "columns to encode (required)")
	encodeCmd.Flags().BoolVar(&encodeDropFirst, "drop-first", true, "drop the first indicator column in one-hot encoding")
	encodeCmd.Flags().StringSliceVar(&encodeMapping, "map", nil, "ordinal mapping entries value=rank (repeatable)")
	rootCmd.AddCommand(encodeCmd)
}
