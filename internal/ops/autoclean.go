package ops

import (
	"fmt"
	"strings"

	"github.com/datamend/datamend-cli/internal/dataset"
)

// autoCleanMissingThreshold drops columns that are almost entirely
// absent during the automated recipe.
const autoCleanMissingThreshold = 0.95

// ColumnClassifierFunc decides whether a column should get a best-
// effort timestamp conversion during AutoClean.
type ColumnClassifierFunc func(col dataset.Column) bool

// NameBasedTimestampClassifier matches columns whose name contains
// "date" or "time". Known to misfire on names like "Update_Frequency";
// callers can swap in a smarter classifier.
func NameBasedTimestampClassifier(col dataset.Column) bool {
	name := strings.ToLower(col.Name)
	return strings.Contains(name, "date") || strings.Contains(name, "time")
}

// AutoClean runs the fixed recipe: remove duplicate rows, drop columns
// over 95% missing, normalize whitespace in text columns, and attempt
// timestamp parsing on classifier-matched columns. It returns the
// descriptions of the steps that actually changed something.
func AutoClean(ds *dataset.Dataset, classify ColumnClassifierFunc) (*dataset.Dataset, []string) {
	if classify == nil {
		classify = NameBasedTimestampClassifier
	}
	var log []string
	out := ds.Clone()

	deduped, removed, err := RemoveDuplicates(out, nil, KeepFirst)
	if err == nil && removed > 0 {
		out = deduped
		log = append(log, fmt.Sprintf("Removed %d duplicate rows", removed))
	}

	dropped, names := DropHighMissing(out, autoCleanMissingThreshold)
	if len(names) > 0 {
		out = dropped
		log = append(log, fmt.Sprintf("Removed %d columns with >95%% missing values", len(names)))
	}

	textCols := out.TextColumns()
	if len(textCols) > 0 {
		normalized, err := NormalizeText(out, textCols, TextCleanOptions{CollapseWhitespace: true, TrimSpace: true})
		if err == nil && !normalized.Equal(out) {
			out = normalized
			log = append(log, fmt.Sprintf("Cleaned %d text columns (whitespace normalization)", len(textCols)))
		}
	}

	for _, c := range out.Columns() {
		if c.Type == dataset.KindTime || !classify(c) {
			continue
		}
		converted, rep, err := Convert(out, c.Name, TargetTimestamp)
		// Best effort: commit only when something actually parsed.
		if err != nil || rep.Converted == 0 {
			continue
		}
		out = converted
		log = append(log, fmt.Sprintf("Converted %s to timestamp", c.Name))
	}
	return out, log
}
