// Package quality turns a dataset snapshot into comparable health
// metrics: four sub-scores, a weighted overall score with a grade, a
// list of detected issues, and recommendations derived from them.
package quality

import (
	"fmt"
	"math"
	"strconv"

	"github.com/datamend/datamend-cli/internal/dataset"
	"github.com/datamend/datamend-cli/internal/stats"
)

// Sub-score weights for the overall score.
const (
	weightCompleteness = 0.4
	weightConsistency  = 0.3
	weightUniqueness   = 0.2
	weightValidity     = 0.1
)

type IssueType string

const (
	IssueMissingValues IssueType = "missing_values"
	IssueDuplicates    IssueType = "duplicates"
	IssueInconsistency IssueType = "inconsistency"
	IssueOutliers      IssueType = "outliers"
)

type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Issue is one detected data-quality problem.
type Issue struct {
	Type        IssueType `json:"type"`
	Severity    Severity  `json:"severity"`
	Columns     []string  `json:"columns,omitempty"`
	Count       int       `json:"count"`
	Description string    `json:"description"`
}

// Report is a fresh quality assessment of one dataset snapshot.
type Report struct {
	Overall         float64  `json:"overall_score"`
	Completeness    float64  `json:"completeness_score"`
	Consistency     float64  `json:"consistency_score"`
	Uniqueness      float64  `json:"uniqueness_score"`
	Validity        float64  `json:"validity_score"`
	Grade           string   `json:"grade"`
	Issues          []Issue  `json:"issues"`
	Recommendations []string `json:"recommendations"`
}

// Score assesses a dataset. It never fails: an empty dataset yields a
// zero score with a single instructive recommendation.
func Score(ds *dataset.Dataset) *Report {
	if ds == nil || ds.Rows() == 0 || ds.Cols() == 0 {
		return &Report{
			Grade:           gradeFor(0),
			Recommendations: []string{"Load a dataset with at least one row and one column to assess its quality."},
		}
	}

	rep := &Report{
		Completeness: completeness(ds),
		Consistency:  consistency(ds),
		Uniqueness:   uniqueness(ds),
		Validity:     validity(ds),
	}
	rep.Overall = round1(rep.Completeness*weightCompleteness +
		rep.Consistency*weightConsistency +
		rep.Uniqueness*weightUniqueness +
		rep.Validity*weightValidity)
	rep.Grade = gradeFor(rep.Overall)
	rep.Issues = detectIssues(ds)
	rep.Recommendations = recommend(rep.Issues)
	return rep
}

func round1(x float64) float64 { return math.Round(x*10) / 10 }

func gradeFor(score float64) string {
	switch {
	case score >= 90:
		return "Excellent"
	case score >= 80:
		return "Very Good"
	case score >= 70:
		return "Good"
	case score >= 60:
		return "Fair"
	default:
		return "Needs Improvement"
	}
}

func completeness(ds *dataset.Dataset) float64 {
	total := ds.Rows() * ds.Cols()
	if total == 0 {
		return 0
	}
	missing := ds.MissingCells()
	return float64(total-missing) / float64(total) * 100
}

// consistency averages per-column scores: non-text columns score 100,
// a text column loses 5 points per underlying value type beyond the
// first found among its non-missing values.
func consistency(ds *dataset.Dataset) float64 {
	cols := ds.Columns()
	if len(cols) == 0 {
		return 100
	}
	sum := 0.0
	for _, c := range cols {
		score := 100.0
		if c.Type == dataset.KindText {
			kinds := textValueKinds(c)
			if kinds > 1 {
				score = math.Max(0, 100-5*float64(kinds-1))
			}
		}
		sum += score
	}
	return sum / float64(len(cols))
}

// textValueKinds counts the distinct underlying kinds (numeric-looking,
// boolean-looking, timestamp-looking, free text) in a text column.
func textValueKinds(c dataset.Column) int {
	var num, b, tm, txt bool
	for _, v := range c.Values {
		s, ok := v.Text()
		if !ok {
			continue
		}
		switch {
		case parsesFloat(s):
			num = true
		case parsesBool(s):
			b = true
		case parsesTime(s):
			tm = true
		default:
			txt = true
		}
	}
	n := 0
	for _, present := range []bool{num, b, tm, txt} {
		if present {
			n++
		}
	}
	return n
}

func parsesFloat(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func parsesBool(s string) bool {
	_, ok := dataset.ParseBool(s)
	return ok
}

func parsesTime(s string) bool {
	_, ok := dataset.ParseTime(s)
	return ok
}

func duplicateRowCount(ds *dataset.Dataset) int {
	seen := make(map[string]struct{}, ds.Rows())
	dups := 0
	for i := 0; i < ds.Rows(); i++ {
		key := ds.RowKey(i, nil)
		if _, ok := seen[key]; ok {
			dups++
			continue
		}
		seen[key] = struct{}{}
	}
	return dups
}

func uniqueness(ds *dataset.Dataset) float64 {
	rows := ds.Rows()
	if rows == 0 {
		return 100
	}
	return float64(rows-duplicateRowCount(ds)) / float64(rows) * 100
}

func validity(ds *dataset.Dataset) float64 {
	numeric := ds.NumericColumns()
	if len(numeric) == 0 {
		return 100
	}
	totalOutliers := 0
	for _, name := range numeric {
		col, _ := ds.Column(name)
		totalOutliers += iqrOutlierCount(col)
	}
	totalValues := ds.Rows() * len(numeric)
	return float64(totalValues-totalOutliers) / float64(totalValues) * 100
}

func iqrOutlierCount(c dataset.Column) int {
	vals, _ := c.Floats()
	if len(vals) == 0 {
		return 0
	}
	lower, upper := stats.IQRBounds(vals, 1.5)
	n := 0
	for _, v := range vals {
		if v < lower || v > upper {
			n++
		}
	}
	return n
}

func detectIssues(ds *dataset.Dataset) []Issue {
	var issues []Issue
	rows := ds.Rows()

	for _, c := range ds.Columns() {
		missing := c.MissingCount()
		if rows == 0 || missing == 0 {
			continue
		}
		frac := float64(missing) / float64(rows)
		if frac <= 0.2 {
			continue
		}
		sev := SeverityMedium
		if frac > 0.5 {
			sev = SeverityHigh
		}
		issues = append(issues, Issue{
			Type:        IssueMissingValues,
			Severity:    sev,
			Columns:     []string{c.Name},
			Count:       missing,
			Description: fmt.Sprintf("Column %q is %.1f%% missing (%d of %d values)", c.Name, frac*100, missing, rows),
		})
	}

	if dups := duplicateRowCount(ds); dups > 0 {
		sev := SeverityMedium
		if rows > 0 && float64(dups)/float64(rows) > 0.1 {
			sev = SeverityHigh
		}
		issues = append(issues, Issue{
			Type:        IssueDuplicates,
			Severity:    sev,
			Count:       dups,
			Description: fmt.Sprintf("%d duplicate rows detected", dups),
		})
	}

	for _, c := range ds.Columns() {
		if c.Type != dataset.KindText {
			continue
		}
		if kinds := textValueKinds(c); kinds > 1 {
			issues = append(issues, Issue{
				Type:        IssueInconsistency,
				Severity:    SeverityMedium,
				Columns:     []string{c.Name},
				Count:       kinds,
				Description: fmt.Sprintf("Column %q mixes %d underlying value types", c.Name, kinds),
			})
		}
	}

	for _, name := range ds.NumericColumns() {
		col, _ := ds.Column(name)
		if n := iqrOutlierCount(col); n > 0 {
			issues = append(issues, Issue{
				Type:        IssueOutliers,
				Severity:    SeverityLow,
				Columns:     []string{name},
				Count:       n,
				Description: fmt.Sprintf("Column %q has %d IQR outliers", name, n),
			})
		}
	}
	return issues
}

var recommendationText = map[IssueType]string{
	IssueMissingValues: "Address missing values. Consider imputation or column removal strategies.",
	IssueDuplicates:    "Remove duplicate records to improve data uniqueness.",
	IssueInconsistency: "Improve data consistency by standardizing text formats and converting mixed-type columns.",
	IssueOutliers:      "Review outliers in numeric columns. Decide whether they are valid data points or errors.",
}

// recommend produces one recommendation per issue category, in first-
// occurrence order.
func recommend(issues []Issue) []string {
	if len(issues) == 0 {
		return []string{"Data quality looks excellent. Consider advanced analytics or machine learning applications."}
	}
	seen := map[IssueType]struct{}{}
	var recs []string
	for _, is := range issues {
		if _, ok := seen[is.Type]; ok {
			continue
		}
		seen[is.Type] = struct{}{}
		recs = append(recs, recommendationText[is.Type])
	}
	return recs
}

// MissingReport is a detailed view of absent cells.
type MissingReport struct {
	TotalMissing       int            `json:"total_missing"`
	MissingPercentage  float64        `json:"missing_percentage"`
	ColumnsWithMissing int            `json:"columns_with_missing"`
	MissingByColumn    map[string]int `json:"missing_by_column"`
}

// AnalyzeMissing breaks missing-cell counts down per column.
func AnalyzeMissing(ds *dataset.Dataset) *MissingReport {
	rep := &MissingReport{MissingByColumn: map[string]int{}}
	total := ds.Rows() * ds.Cols()
	for _, c := range ds.Columns() {
		if n := c.MissingCount(); n > 0 {
			rep.MissingByColumn[c.Name] = n
			rep.ColumnsWithMissing++
			rep.TotalMissing += n
		}
	}
	if total > 0 {
		rep.MissingPercentage = float64(rep.TotalMissing) / float64(total) * 100
	}
	return rep
}
