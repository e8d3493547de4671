package pipeline

import (
	"go.uber.org/zap"

	"github.com/datamend/datamend-cli/internal/loader"
)

// FileResult is the per-file outcome of a batch run.
type FileResult struct {
	Filename    string   `json:"filename"`
	Status      string   `json:"status"` // success | error
	Operations  []string `json:"operations,omitempty"`
	Errors      []string `json:"errors,omitempty"`
	RowsBefore  int      `json:"rows_before"`
	ColsBefore  int      `json:"columns_before"`
	RowsAfter   int      `json:"rows_after"`
	ColsAfter   int      `json:"columns_after"`
	OutputPath  string   `json:"output_path,omitempty"`
}

// BatchProcessor applies one fixed template across many files. Files
// that fail to load or process report their error and the batch
// continues.
type BatchProcessor struct {
	log *zap.Logger
}

// NewBatchProcessor wires a processor with a logger; a nil logger is
// replaced by a no-op one.
func NewBatchProcessor(log *zap.Logger) *BatchProcessor {
	if log == nil {
		log = zap.NewNop()
	}
	return &BatchProcessor{log: log}
}

// ProcessFiles loads each file, applies the template, and optionally
// writes the cleaned dataset next to the input with the given suffix
// (no export when suffix is empty).
func (b *BatchProcessor) ProcessFiles(paths []string, tmpl *Template, outSuffix string) []FileResult {
	results := make([]FileResult, 0, len(paths))
	for _, path := range paths {
		res := FileResult{Filename: path}
		ds, info, err := loader.ReadFile(path)
		if err != nil {
			res.Status = "error"
			res.Errors = append(res.Errors, err.Error())
			b.log.Warn("batch file failed to load", zap.String("file", path), zap.Error(err))
			results = append(results, res)
			continue
		}
		res.RowsBefore, res.ColsBefore = info.Rows, info.Cols

		if tmpl != nil {
			cleaned, log := tmpl.Apply(ds)
			ds = cleaned
			res.Operations = log
		}
		res.RowsAfter, res.ColsAfter = ds.Rows(), ds.Cols()
		res.Status = "success"

		if outSuffix != "" {
			out := outputPath(path, outSuffix)
			if err := loader.WriteCSV(ds, out); err != nil {
				res.Status = "error"
				res.Errors = append(res.Errors, err.Error())
			} else {
				res.OutputPath = out
			}
		}
		b.log.Info("batch file processed",
			zap.String("file", path),
			zap.String("status", res.Status),
			zap.Int("rows_before", res.RowsBefore),
			zap.Int("rows_after", res.RowsAfter),
			zap.Int("operations", len(res.Operations)),
		)
		results = append(results, res)
	}
	return results
}

func outputPath(path, suffix string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			return path[:i] + suffix + ".csv"
		}
		if path[i] == '/' || path[i] == '\\' {
			break
		}
	}
	return path + suffix + ".csv"
}
