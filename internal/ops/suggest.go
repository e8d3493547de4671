package ops

import (
	"fmt"
	"sort"
	"strings"

	"github.com/datamend/datamend-cli/internal/dataset"
	"github.com/datamend/datamend-cli/internal/stats"
)

// Priority ranks a suggestion.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// SuggestedAction names the fix a suggestion calls for. Only a subset
// has an automatic fix; see ApplySuggestion.
type SuggestedAction string

const (
	ActionDropColumnOrImpute    SuggestedAction = "drop_column_or_impute"
	ActionAdvancedImpute        SuggestedAction = "advanced_impute"
	ActionSimpleImpute          SuggestedAction = "simple_impute"
	ActionRemoveDuplicates      SuggestedAction = "remove_duplicates"
	ActionEncodeHighCardinality SuggestedAction = "encode_high_cardinality"
	ActionDropColumn            SuggestedAction = "drop_column"
	ActionInvestigateOrDrop     SuggestedAction = "investigate_or_drop"
	ActionHandleOutliers        SuggestedAction = "handle_outliers"
	ActionStandardizeCase       SuggestedAction = "standardize_case"
	ActionStripWhitespace       SuggestedAction = "strip_whitespace"
)

// Suggestion is one recommended cleaning step. Column is "All" when
// the suggestion applies to the whole dataset.
type Suggestion struct {
	Priority Priority        `json:"priority"`
	Type     string          `json:"type"`
	Column   string          `json:"column"`
	Issue    string          `json:"issue"`
	Advice   string          `json:"suggestion"`
	Action   SuggestedAction `json:"action"`
}

// SmartSuggestions analyzes a dataset and returns prioritized cleaning
// suggestions: missing values, duplicate rows, high-cardinality and
// constant columns, IQR outliers, and text formatting problems.
// Suggestions are sorted High before Medium before Low, stable within
// a priority.
func SmartSuggestions(ds *dataset.Dataset) []Suggestion {
	var out []Suggestion
	if ds == nil || ds.Rows() == 0 {
		return out
	}
	rows := ds.Rows()

	for _, col := range ds.Columns() {
		missing := col.MissingCount()
		if missing == 0 {
			continue
		}
		pct := float64(missing) / float64(rows) * 100
		switch {
		case pct > 50:
			out = append(out, Suggestion{
				Priority: PriorityHigh,
				Type:     "Missing Values",
				Column:   col.Name,
				Issue:    fmt.Sprintf("%.1f%% missing values", pct),
				Advice:   fmt.Sprintf("Consider dropping column %s or using advanced imputation", col.Name),
				Action:   ActionDropColumnOrImpute,
			})
		case pct > 20:
			out = append(out, Suggestion{
				Priority: PriorityMedium,
				Type:     "Missing Values",
				Column:   col.Name,
				Issue:    fmt.Sprintf("%.1f%% missing values", pct),
				Advice:   fmt.Sprintf("Use KNN or iterative imputation for %s", col.Name),
				Action:   ActionAdvancedImpute,
			})
		default:
			out = append(out, Suggestion{
				Priority: PriorityLow,
				Type:     "Missing Values",
				Column:   col.Name,
				Issue:    fmt.Sprintf("%.1f%% missing values", pct),
				Advice:   fmt.Sprintf("Use mean/median imputation for %s", col.Name),
				Action:   ActionSimpleImpute,
			})
		}
	}

	if dups := duplicateRows(ds); dups > 0 {
		prio := PriorityMedium
		if float64(dups) > float64(rows)*0.05 {
			prio = PriorityHigh
		}
		out = append(out, Suggestion{
			Priority: prio,
			Type:     "Duplicates",
			Column:   "All",
			Issue:    fmt.Sprintf("%d duplicate rows found", dups),
			Advice:   "Remove duplicate rows",
			Action:   ActionRemoveDuplicates,
		})
	}

	for _, col := range ds.Columns() {
		if !isTextual(col) {
			continue
		}
		unique, _, _ := valueCounts(col)
		if float64(unique) > float64(rows)*0.5 {
			out = append(out, Suggestion{
				Priority: PriorityMedium,
				Type:     "High Cardinality",
				Column:   col.Name,
				Issue:    fmt.Sprintf("%d unique values (%.1f%% of rows)", unique, float64(unique)/float64(rows)*100),
				Advice:   fmt.Sprintf("Consider feature hashing or target encoding for %s", col.Name),
				Action:   ActionEncodeHighCardinality,
			})
		}
	}

	for _, col := range ds.Columns() {
		unique, top, total := valueCounts(col)
		switch {
		case unique == 1:
			out = append(out, Suggestion{
				Priority: PriorityHigh,
				Type:     "Constant Column",
				Column:   col.Name,
				Issue:    "Column has only one unique value",
				Advice:   fmt.Sprintf("Consider dropping %s as it provides no information", col.Name),
				Action:   ActionDropColumn,
			})
		case unique > 1 && unique < 3 && rows > 100 && float64(top)/float64(total) > 0.95:
			out = append(out, Suggestion{
				Priority: PriorityMedium,
				Type:     "Near-Constant Column",
				Column:   col.Name,
				Issue:    "95%+ of values are the same",
				Advice:   fmt.Sprintf("Consider dropping %s or investigating rare values", col.Name),
				Action:   ActionInvestigateOrDrop,
			})
		}
	}

	for _, name := range ds.NumericColumns() {
		col, _ := ds.Column(name)
		vals, _ := col.Floats()
		if len(vals) == 0 {
			continue
		}
		lo, hi := stats.IQRBounds(vals, 1.5)
		outliers := 0
		for _, v := range vals {
			if v < lo || v > hi {
				outliers++
			}
		}
		pct := float64(outliers) / float64(rows) * 100
		if outliers > 0 && pct > 5 {
			out = append(out, Suggestion{
				Priority: PriorityMedium,
				Type:     "Outliers",
				Column:   name,
				Issue:    fmt.Sprintf("%d potential outliers (%.1f%%)", outliers, pct),
				Advice:   fmt.Sprintf("Review and handle outliers in %s using IQR or Isolation Forest", name),
				Action:   ActionHandleOutliers,
			})
		}
	}

	for _, col := range ds.Columns() {
		if col.Type != dataset.KindText {
			continue
		}
		exact := map[string]bool{}
		folded := map[string]bool{}
		trimmed := map[string]bool{}
		for _, v := range col.Values {
			s, ok := v.Text()
			if !ok {
				continue
			}
			exact[s] = true
			folded[strings.ToLower(s)] = true
			trimmed[strings.TrimSpace(s)] = true
		}
		if len(folded) < len(exact) {
			out = append(out, Suggestion{
				Priority: PriorityLow,
				Type:     "Text Formatting",
				Column:   col.Name,
				Issue:    "Mixed case variations detected",
				Advice:   fmt.Sprintf("Standardize text case in %s", col.Name),
				Action:   ActionStandardizeCase,
			})
		}
		if len(trimmed) < len(exact) {
			out = append(out, Suggestion{
				Priority: PriorityLow,
				Type:     "Text Formatting",
				Column:   col.Name,
				Issue:    "Leading/trailing whitespace detected",
				Advice:   fmt.Sprintf("Strip whitespace from %s", col.Name),
				Action:   ActionStripWhitespace,
			})
		}
	}

	rank := map[Priority]int{PriorityHigh: 0, PriorityMedium: 1, PriorityLow: 2}
	sort.SliceStable(out, func(i, j int) bool { return rank[out[i].Priority] < rank[out[j].Priority] })
	return out
}

// ApplySuggestion runs the automatic fix for a suggestion. Actions
// without an automatic fix (advanced imputation, outlier review,
// encoding choices) return ErrInvalidParameter; the caller decides.
func ApplySuggestion(ds *dataset.Dataset, s Suggestion) (*dataset.Dataset, error) {
	switch s.Action {
	case ActionDropColumn:
		if s.Column == "" || s.Column == "All" {
			return nil, fmt.Errorf("%w: drop_column needs a column", ErrInvalidParameter)
		}
		if _, err := columnOf(ds, s.Column); err != nil {
			return nil, err
		}
		return ds.WithoutColumns(s.Column), nil
	case ActionRemoveDuplicates:
		out, _, err := RemoveDuplicates(ds, nil, KeepFirst)
		return out, err
	case ActionSimpleImpute:
		col, err := columnOf(ds, s.Column)
		if err != nil {
			return nil, err
		}
		if col.Type == dataset.KindNumeric {
			return Impute(ds, s.Column, ImputeMedian, ImputeOptions{})
		}
		return Impute(ds, s.Column, ImputeMode, ImputeOptions{})
	case ActionStripWhitespace:
		return NormalizeText(ds, []string{s.Column}, TextCleanOptions{TrimSpace: true})
	case ActionStandardizeCase:
		return NormalizeText(ds, []string{s.Column}, TextCleanOptions{Lowercase: true})
	}
	return nil, fmt.Errorf("%w: no automatic fix for action %q", ErrInvalidParameter, s.Action)
}

func isTextual(col dataset.Column) bool {
	return col.Type == dataset.KindText || col.Type == dataset.KindCategorical
}

// valueCounts returns the distinct non-missing value count, the count
// of the most frequent value, and the non-missing total.
func valueCounts(col dataset.Column) (unique, top, total int) {
	counts := map[string]int{}
	for _, v := range col.Values {
		if v.IsMissing() {
			continue
		}
		counts[v.Key()]++
		total++
	}
	for _, n := range counts {
		if n > top {
			top = n
		}
	}
	return len(counts), top, total
}

func duplicateRows(ds *dataset.Dataset) int {
	seen := map[string]bool{}
	dups := 0
	for i := 0; i < ds.Rows(); i++ {
		key := ds.RowKey(i, nil)
		if seen[key] {
			dups++
		}
		seen[key] = true
	}
	return dups
}
