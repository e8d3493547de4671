package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/datamend/datamend-cli/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	plNewDesc     string
	plAddName     string
	plAddParams   []string
	plRunOutput   string
	plRunJSON     bool
	plDupName     string
	plShowHistory bool
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Create, edit, and run reusable cleaning pipelines",
}

func openStore() (*pipeline.Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	return pipeline.NewStore(cfg.PipelinesDir)
}

// resolvePipeline finds a pipeline by id, then by name, then among the
// predefined templates.
func resolvePipeline(st *pipeline.Store, ref string) (*pipeline.Pipeline, error) {
	if p, err := st.Load(ref); err == nil {
		return p, nil
	}
	all, err := st.LoadAll()
	if err != nil {
		return nil, err
	}
	for _, p := range all {
		if p.Name == ref {
			return p, nil
		}
	}
	if p, ok := pipeline.NewManager().Predefined()[ref]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("no pipeline with id or name %q", ref)
}

var plNewCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Create an empty pipeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		p := pipeline.NewPipeline(args[0], plNewDesc)
		if err := st.Save(p); err != nil {
			return err
		}
		fmt.Printf("✓ Created pipeline %s (%s)\n", p.Name, p.ID)
		return nil
	},
}

var plListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved and predefined pipelines",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		all, err := st.LoadAll()
		if err != nil {
			return err
		}
		m := pipeline.NewManager()
		for _, p := range all {
			m.Add(p)
		}
		if len(all) == 0 {
			fmt.Println("(no saved pipelines)")
		}
		for _, s := range m.List() {
			fmt.Printf("- %s: %s (%d steps) %s\n", s.ID, s.Name, s.StepCount, s.Description)
		}
		fmt.Println("\nPredefined:")
		for name, p := range pipeline.NewManager().Predefined() {
			fmt.Printf("- %s: %s (%d steps)\n", name, p.Description, len(p.Steps))
		}
		return nil
	},
}

var plShowCmd = &cobra.Command{
	Use:   "show <id|name>",
	Short: "Show a pipeline's steps",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		p, err := resolvePipeline(st, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s)\n%s\n", p.Name, p.ID, p.Description)
		for i, s := range p.Steps {
			fmt.Printf("%2d. [%s] %s (%s)", i+1, s.Op, s.Name, s.ID)
			if len(s.Parameters) > 0 {
				b, _ := json.Marshal(s.Parameters)
				fmt.Printf(" %s", b)
			}
			fmt.Println()
		}
		if plShowHistory {
			fmt.Printf("\nExecution history (%d runs):\n", len(p.History))
			for _, r := range p.History {
				fmt.Printf("- %s: %d/%d steps succeeded, %d×%d → %d×%d\n",
					r.StartTime.Format("2006-01-02 15:04:05"),
					r.SuccessfulSteps, r.TotalSteps,
					r.InputShape.Rows, r.InputShape.Cols,
					r.OutputShape.Rows, r.OutputShape.Cols)
			}
		}
		return nil
	},
}

var plAddStepCmd = &cobra.Command{
	Use:   "add-step <id|name> <operation>",
	Short: "Append a step to a pipeline",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		op := pipeline.OpKind(args[1])
		known := false
		for _, k := range pipeline.KnownOps() {
			if k == op {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("unknown operation %q (see: %v)", args[1], pipeline.KnownOps())
		}
		st, err := openStore()
		if err != nil {
			return err
		}
		p, err := resolvePipeline(st, args[0])
		if err != nil {
			return err
		}
		params, err := parseParams(plAddParams)
		if err != nil {
			return err
		}
		name := plAddName
		if name == "" {
			name = string(op)
		}
		s := p.AddStep(name, op, params)
		if err := st.Save(p); err != nil {
			return err
		}
		fmt.Printf("✓ Added step %s (%s) to %s\n", s.Name, s.ID, p.Name)
		return nil
	},
}

var plRmStepCmd = &cobra.Command{
	Use:   "rm-step <id|name> <step-id>",
	Short: "Remove a step from a pipeline",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		p, err := resolvePipeline(st, args[0])
		if err != nil {
			return err
		}
		if !p.RemoveStep(args[1]) {
			return fmt.Errorf("no step with id %q in %s", args[1], p.Name)
		}
		if err := st.Save(p); err != nil {
			return err
		}
		fmt.Printf("✓ Removed step %s from %s\n", args[1], p.Name)
		return nil
	},
}

var plReorderCmd = &cobra.Command{
	Use:   "reorder <id|name> <step-id>...",
	Short: "Reorder a pipeline's steps",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		p, err := resolvePipeline(st, args[0])
		if err != nil {
			return err
		}
		p.ReorderSteps(args[1:])
		if err := st.Save(p); err != nil {
			return err
		}
		fmt.Printf("✓ Reordered %s\n", p.Name)
		return nil
	},
}

var plRunCmd = &cobra.Command{
	Use:   "run <id|name> <file>",
	Short: "Run a pipeline on a dataset",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		p, err := resolvePipeline(st, args[0])
		if err != nil {
			return err
		}
		ds, _, err := readDataset(args[1])
		if err != nil {
			return err
		}
		out, rep := p.Execute(ds)
		// Persist only pipelines that live in the store; a predefined
		// run should not create a file.
		if _, loadErr := st.Load(p.ID); loadErr == nil {
			if err := st.Save(p); err != nil {
				return err
			}
		}
		printReport(rep, plRunJSON)
		return writeDataset(out, args[1], plRunOutput)
	},
}

func printReport(rep *pipeline.Report, asJSON bool) {
	if asJSON {
		b, err := json.MarshalIndent(rep, "", "  ")
		if err == nil {
			fmt.Println(string(b))
		}
		return
	}
	fmt.Printf("\n%s: %d/%d steps succeeded in %.2fs\n",
		rep.PipelineName, rep.SuccessfulSteps, rep.TotalSteps, rep.DurationSeconds)
	for _, l := range rep.Log {
		mark := "✓"
		if l.Status != "success" {
			mark = "✗"
		}
		fmt.Printf("  %s %s: %s\n", mark, l.Step, l.Result)
	}
	fmt.Printf("Shape: %d×%d → %d×%d\n",
		rep.InputShape.Rows, rep.InputShape.Cols,
		rep.OutputShape.Rows, rep.OutputShape.Cols)
}

var plDuplicateCmd = &cobra.Command{
	Use:   "duplicate <id|name>",
	Short: "Copy a pipeline under a new name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		p, err := resolvePipeline(st, args[0])
		if err != nil {
			return err
		}
		name := plDupName
		if name == "" {
			name = p.Name + " (Copy)"
		}
		m := pipeline.NewManager()
		m.Add(p)
		dup, err := m.Duplicate(p.ID, name)
		if err != nil {
			return err
		}
		if err := st.Save(dup); err != nil {
			return err
		}
		fmt.Printf("✓ Duplicated %s as %s (%s)\n", p.Name, dup.Name, dup.ID)
		return nil
	},
}

var plDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved pipeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		if err := st.Delete(args[0]); err != nil {
			return err
		}
		fmt.Printf("✓ Deleted pipeline %s\n", args[0])
		return nil
	},
}

var plExportCmd = &cobra.Command{
	Use:   "export <id|name> <path>",
	Short: "Export a pipeline definition to a JSON file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		p, err := resolvePipeline(st, args[0])
		if err != nil {
			return err
		}
		if err := pipeline.SaveFile(p, args[1]); err != nil {
			return err
		}
		fmt.Printf("✓ Exported %s to %s\n", p.Name, args[1])
		return nil
	},
}

var plImportCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Import a pipeline definition from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		p, err := pipeline.LoadFile(args[0])
		if err != nil {
			return err
		}
		if err := st.Save(p); err != nil {
			return err
		}
		fmt.Printf("✓ Imported %s (%s)\n", p.Name, p.ID)
		return nil
	},
}

// parseParams turns ["method=median", "threshold=2.5"] into step
// parameters. Values parse as JSON when possible, so booleans, numbers,
// arrays, and objects come through typed; anything else stays a string.
// A comma-separated value becomes a string list.
func parseParams(pairs []string) (pipeline.Params, error) {
	params := pipeline.Params{}
	for _, pair := range pairs {
		k, raw, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --param entry %q (want key=value)", pair)
		}
		k = strings.TrimSpace(k)
		raw = strings.TrimSpace(raw)
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err == nil {
			params[k] = v
			continue
		}
		if strings.Contains(raw, ",") {
			parts := strings.Split(raw, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			params[k] = parts
			continue
		}
		params[k] = raw
	}
	return params, nil
}

func init() {
	plNewCmd.Flags().StringVar(&plNewDesc, "description", "", "pipeline description")
	plShowCmd.Flags().BoolVar(&plShowHistory, "history", false, "include execution history")
	plAddStepCmd.Flags().StringVar(&plAddName, "name", "", "step name (default operation name)")
	plAddStepCmd.Flags().StringSliceVar(&plAddParams, "param", nil, "step parameter key=value (repeatable)")
	plRunCmd.Flags().StringVarP(&plRunOutput, "output", "o", "", "output path (default <file>_cleaned.<ext>)")
	plRunCmd.Flags().BoolVar(&plRunJSON, "json", false, "emit the execution report as JSON")
	plDuplicateCmd.Flags().StringVar(&plDupName, "name", "", "name for the copy (default \"<name> (Copy)\")")

	pipelineCmd.AddCommand(plNewCmd, plListCmd, plShowCmd, plAddStepCmd,
		plRmStepCmd, plReorderCmd, plRunCmd, plDuplicateCmd, plDeleteCmd,
		plExportCmd, plImportCmd)
	rootCmd.AddCommand(pipelineCmd)
}
