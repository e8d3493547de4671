package cmd

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/datamend/datamend-cli/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	batchTemplate string
	batchSuffix   string
	batchNoWrite  bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <file>...",
	Short: "Apply a cleaning template to many files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tmpl, err := resolveTemplate(batchTemplate)
		if err != nil {
			return err
		}
		suffix := batchSuffix
		if batchNoWrite {
			suffix = ""
		}
		bp := pipeline.NewBatchProcessor(logger)
		results := bp.ProcessFiles(args, tmpl, suffix)

		ok := 0
		for _, r := range results {
			if r.Status == "success" {
				ok++
				fmt.Printf("✓ %s: %d×%d → %d×%d\n", r.Filename,
					r.RowsBefore, r.ColsBefore, r.RowsAfter, r.ColsAfter)
				if r.OutputPath != "" {
					fmt.Printf("    wrote %s\n", r.OutputPath)
				}
			} else {
				fmt.Printf("✗ %s\n", r.Filename)
			}
			for _, e := range r.Errors {
				fmt.Printf("    ⚠ %s\n", e)
			}
		}
		fmt.Printf("\n%d of %d files processed\n", ok, len(results))
		if ok == 0 {
			return fmt.Errorf("no files processed successfully")
		}
		return nil
	},
}

// resolveTemplate loads a template from a YAML file path, falling back
// to the predefined templates by name.
func resolveTemplate(ref string) (*pipeline.Template, error) {
	predefined := pipeline.PredefinedTemplates()
	if t, ok := predefined[ref]; ok {
		return t, nil
	}
	t, err := pipeline.LoadTemplate(ref)
	if err == nil {
		return t, nil
	}
	if cfg != nil && cfg.TemplatesDir != "" {
		if t, tryErr := pipeline.LoadTemplate(filepath.Join(cfg.TemplatesDir, ref+".yaml")); tryErr == nil {
			return t, nil
		}
	}
	names := make([]string, 0, len(predefined))
	for name := range predefined {
		names = append(names, name)
	}
	sort.Strings(names)
	return nil, fmt.Errorf("template %q is neither a predefined name %v nor a readable file: %w", ref, names, err)
}

func init() {
	batchCmd.Flags().StringVarP(&batchTemplate, "template", "t", "standard", "predefined template name or YAML template file")
	batchCmd.Flags().StringVar(&batchSuffix, "suffix", "_cleaned", "suffix for output filenames")
	batchCmd.Flags().BoolVar(&batchNoWrite, "dry-run", false, "process without writing output files")
	rootCmd.AddCommand(batchCmd)
}
