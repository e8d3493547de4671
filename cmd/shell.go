package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/datamend/datamend-cli/internal/ops"
	"github.com/datamend/datamend-cli/internal/session"
	"github.com/spf13/cobra"
)

var shellCmd = &cobra.Command{
	Use:   "shell <file>",
	Short: "Clean a dataset interactively, with undo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, info, err := readDataset(args[0])
		if err != nil {
			return err
		}
		capacity := 50
		if cfg != nil && cfg.HistoryCapacity > 0 {
			capacity = cfg.HistoryCapacity
		}
		sess := session.New(capacity)
		sess.Load(ds, info)

		fmt.Println("Type help for commands, quit to exit.")
		sc := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("datamend> ")
			if !sc.Scan() {
				fmt.Println()
				break
			}
			out, done, err := runShellLine(sess, args[0], sc.Text())
			if err != nil {
				fmt.Printf("✗ %v\n", err)
				continue
			}
			fmt.Print(out)
			if done {
				break
			}
		}
		return sc.Err()
	},
}

const shellHelp = `  score                 quality report for the working dataset
  suggest               cleaning suggestions
  dedupe [first|last]   remove duplicate rows
  drop <column>...      drop columns
  fillna <value>        fill every missing cell
  impute <column> [m]   fill a column (mean, median, mode, ffill, bfill)
  undo                  revert the last change
  history               list undoable changes
  reset                 restore the dataset as loaded
  save [path]           write the working dataset
  quit                  exit
`

// runShellLine executes one shell command against the session and
// returns the text to print plus whether the shell should exit.
func runShellLine(sess *session.Session, sourcePath, line string) (string, bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", false, nil
	}
	ds := sess.Current()
	var b strings.Builder

	switch cmd, args := fields[0], fields[1:]; cmd {
	case "help":
		return shellHelp, false, nil

	case "quit", "exit":
		return "", true, nil

	case "score":
		rep := sess.Score()
		fmt.Fprintf(&b, "Overall score: %.1f/100 (%s)\n", rep.Overall, rep.Grade)
		for _, is := range rep.Issues {
			fmt.Fprintf(&b, "  [%s] %s\n", is.Severity, is.Description)
		}

	case "suggest":
		sugs := ops.SmartSuggestions(ds)
		if len(sugs) == 0 {
			return "✓ No cleaning suggestions\n", false, nil
		}
		for _, s := range sugs {
			fmt.Fprintf(&b, "  [%s] %s (%s): %s\n", s.Priority, s.Type, s.Column, s.Issue)
		}

	case "dedupe":
		keep := ops.KeepFirst
		if len(args) > 0 && args[0] == "last" {
			keep = ops.KeepLast
		}
		out, removed, err := ops.RemoveDuplicates(ds, nil, keep)
		if err != nil {
			return "", false, err
		}
		sess.Apply("dedupe", out)
		fmt.Fprintf(&b, "✓ Removed %d duplicate rows\n", removed)

	case "drop":
		if len(args) == 0 {
			return "", false, fmt.Errorf("drop needs at least one column")
		}
		sess.Apply("drop "+strings.Join(args, " "), ops.DropColumns(ds, args))
		fmt.Fprintf(&b, "✓ Dropped %v\n", args)

	case "fillna":
		if len(args) != 1 {
			return "", false, fmt.Errorf("fillna needs one value")
		}
		sess.Apply("fillna", ops.FillAll(ds, args[0]))
		fmt.Fprintf(&b, "✓ Filled missing cells with %q\n", args[0])

	case "impute":
		if len(args) == 0 {
			return "", false, fmt.Errorf("impute needs a column")
		}
		method := ops.ImputeMean
		if len(args) > 1 {
			method = ops.ImputeMethod(args[1])
		}
		out, err := ops.Impute(ds, args[0], method, ops.ImputeOptions{})
		if err != nil {
			return "", false, err
		}
		sess.Apply("impute "+args[0], out)
		fmt.Fprintf(&b, "✓ Imputed %s (%s)\n", args[0], method)

	case "undo":
		if _, err := sess.Undo(); err != nil {
			return "", false, err
		}
		fmt.Fprintf(&b, "✓ Undid the last change, %d rows × %d columns\n",
			sess.Current().Rows(), sess.Current().Cols())

	case "history":
		entries := sess.History.Entries()
		if len(entries) == 0 {
			return "  nothing to undo\n", false, nil
		}
		for _, e := range entries {
			fmt.Fprintf(&b, "  %s  %s\n", e.Timestamp.Format("15:04:05"), e.Operation)
		}

	case "reset":
		sess.Reset()
		fmt.Fprintf(&b, "✓ Restored the dataset as loaded\n")

	case "save":
		path := ""
		if len(args) > 0 {
			path = args[0]
		}
		if err := writeDataset(sess.Current(), sourcePath, path); err != nil {
			return "", false, err
		}

	default:
		return "", false, fmt.Errorf("unknown command %q, try help", cmd)
	}
	return b.String(), false, nil
}

func init() {
	rootCmd.AddCommand(shellCmd)
}
