package ops

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/datamend/datamend-cli/internal/dataset"
)

// Recognized value shapes, checked against every non-missing cell.
var textPatterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{"email", regexp.MustCompile(`^[\w.-]+@[\w.-]+\.\w+$`)},
	{"phone", regexp.MustCompile(`^[+\d]?[\d\s()-]{7,}$`)},
	{"url", regexp.MustCompile(`^https?://[\w.-]+\.\w+`)},
	{"date", regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$|^\d{2}/\d{2}/\d{4}$`)},
	{"numeric", regexp.MustCompile(`^\d+\.?\d*$`)},
	{"alphanumeric", regexp.MustCompile(`^[a-zA-Z0-9]+$`)},
}

var reMultiSpace = regexp.MustCompile(`\s{2,}`)

// PatternMatch counts the values of one recognized shape.
type PatternMatch struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// PatternReport describes the value shapes of a text column.
type PatternReport struct {
	Matches          map[string]PatternMatch `json:"pattern_matches"`
	ConsistencyScore float64                 `json:"pattern_consistency_score"`
	TotalValues      int                     `json:"total_values"`
	UniqueValues     int                     `json:"unique_values"`
	Issues           []string                `json:"issues"`
}

// AnalyzePatterns inspects a text column for recognizable value shapes
// and formatting problems. The consistency score reflects how tightly
// value lengths cluster: 100 when every value has the same length.
func AnalyzePatterns(ds *dataset.Dataset, column string) (*PatternReport, error) {
	col, err := columnOf(ds, column)
	if err != nil {
		return nil, err
	}
	if col.Type != dataset.KindText && col.Type != dataset.KindCategorical {
		return nil, fmt.Errorf("%w: column %q is not text", ErrInvalidParameter, column)
	}

	rep := &PatternReport{Matches: map[string]PatternMatch{}}
	lengths := map[int]bool{}
	unique := map[string]bool{}
	counts := make([]int, len(textPatterns))
	var whitespace, multiSpace, nonASCII bool

	for _, v := range col.Values {
		s, ok := v.Text()
		if !ok {
			continue
		}
		rep.TotalValues++
		unique[s] = true
		lengths[len(s)] = true
		for i, p := range textPatterns {
			if p.re.MatchString(s) {
				counts[i]++
			}
		}
		if s != strings.TrimSpace(s) {
			whitespace = true
		}
		if reMultiSpace.MatchString(s) {
			multiSpace = true
		}
		for _, r := range s {
			if r > unicode.MaxASCII {
				nonASCII = true
				break
			}
		}
	}

	rep.UniqueValues = len(unique)
	if rep.TotalValues > 0 {
		for i, p := range textPatterns {
			if counts[i] > 0 {
				rep.Matches[p.name] = PatternMatch{
					Count:      counts[i],
					Percentage: float64(counts[i]) / float64(rep.TotalValues) * 100,
				}
			}
		}
		rep.ConsistencyScore = 100 - float64(len(lengths))/float64(rep.TotalValues)*100
	}
	if whitespace {
		rep.Issues = append(rep.Issues, "Leading/trailing whitespace detected")
	}
	if multiSpace {
		rep.Issues = append(rep.Issues, "Multiple consecutive spaces detected")
	}
	if nonASCII {
		rep.Issues = append(rep.Issues, "Non-ASCII characters detected")
	}
	return rep, nil
}
