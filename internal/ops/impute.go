package ops

import (
	"fmt"
	"math"
	"sort"

	"github.com/datamend/datamend-cli/internal/dataset"
	"github.com/datamend/datamend-cli/internal/stats"
)

// ImputeMethod names a missing-value strategy.
type ImputeMethod string

const (
	ImputeMean         ImputeMethod = "mean"
	ImputeMedian       ImputeMethod = "median"
	ImputeMode         ImputeMethod = "mode"
	ImputeForwardFill  ImputeMethod = "ffill"
	ImputeBackwardFill ImputeMethod = "bfill"
	ImputeConstant     ImputeMethod = "constant"
	ImputeInterpolate  ImputeMethod = "interpolate"
	ImputeKNN          ImputeMethod = "knn"
)

// ImputeOptions carries method-specific parameters. Irrelevant fields
// are ignored.
type ImputeOptions struct {
	Constant      string // literal for ImputeConstant, coerced to the column type
	Interpolation string // linear | polynomial | spline
	Order         int    // polynomial/spline degree, default 2
	Neighbors     int    // kNN neighbor count; must be positive
}

// Impute fills missing values in one column. ImputeKNN additionally
// imputes every numeric column as a side effect of the joint distance
// model; callers surfacing results to users should say so.
func Impute(ds *dataset.Dataset, column string, method ImputeMethod, opts ImputeOptions) (*dataset.Dataset, error) {
	switch method {
	case ImputeMean, ImputeMedian:
		return imputeCenter(ds, column, method)
	case ImputeMode:
		return imputeMode(ds, column)
	case ImputeForwardFill:
		return imputeFill(ds, column, false)
	case ImputeBackwardFill:
		return imputeFill(ds, column, true)
	case ImputeConstant:
		return imputeConstant(ds, column, opts.Constant)
	case ImputeInterpolate:
		return imputeInterpolate(ds, column, opts)
	case ImputeKNN:
		out, _, err := KNNImpute(ds, column, opts.Neighbors)
		return out, err
	}
	return nil, fmt.Errorf("%w: imputation method %q", ErrUnknownMethod, method)
}

func imputeCenter(ds *dataset.Dataset, column string, method ImputeMethod) (*dataset.Dataset, error) {
	col, err := numericColumnOf(ds, column)
	if err != nil {
		return nil, err
	}
	vals, _ := col.Floats()
	if len(vals) == 0 {
		return ds.Clone(), nil
	}
	center := stats.Mean(vals)
	if method == ImputeMedian {
		center = stats.Median(vals)
	}
	return fillMissing(ds, col, dataset.Num(center)), nil
}

// imputeMode fills with the most frequent value; ties go to the
// smallest tied value, numerically for numbers and lexically for text.
func imputeMode(ds *dataset.Dataset, column string) (*dataset.Dataset, error) {
	col, err := columnOf(ds, column)
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	byKey := map[string]dataset.Value{}
	for _, v := range col.Values {
		if v.IsMissing() {
			continue
		}
		k := v.Key()
		counts[k]++
		if _, ok := byKey[k]; !ok {
			byKey[k] = v
		}
	}
	if len(counts) == 0 {
		return ds.Clone(), nil
	}
	best := ""
	for k := range counts {
		if best == "" || counts[k] > counts[best] ||
			(counts[k] == counts[best] && lessValue(byKey[k], byKey[best])) {
			best = k
		}
	}
	return fillMissing(ds, col, byKey[best]), nil
}

func lessValue(a, b dataset.Value) bool {
	if af, ok := a.Float(); ok {
		if bf, bok := b.Float(); bok {
			return af < bf
		}
	}
	if at, ok := a.TimeVal(); ok {
		if bt, bok := b.TimeVal(); bok {
			return at.Before(bt)
		}
	}
	return a.Display() < b.Display()
}

func imputeFill(ds *dataset.Dataset, column string, backward bool) (*dataset.Dataset, error) {
	col, err := columnOf(ds, column)
	if err != nil {
		return nil, err
	}
	vals := make([]dataset.Value, len(col.Values))
	copy(vals, col.Values)
	if backward {
		carry := dataset.Missing()
		for i := len(vals) - 1; i >= 0; i-- {
			if vals[i].IsMissing() {
				vals[i] = carry
			} else {
				carry = vals[i]
			}
		}
	} else {
		carry := dataset.Missing()
		for i := range vals {
			if vals[i].IsMissing() {
				vals[i] = carry
			} else {
				carry = vals[i]
			}
		}
	}
	return ds.WithColumn(dataset.Column{Name: col.Name, Type: col.Type, Values: vals}), nil
}

func imputeConstant(ds *dataset.Dataset, column, literal string) (*dataset.Dataset, error) {
	col, err := columnOf(ds, column)
	if err != nil {
		return nil, err
	}
	fill := dataset.Coerce(dataset.Str(literal), col.Type)
	if fill.IsMissing() {
		return nil, fmt.Errorf("%w: constant %q is not valid for %s column %q", ErrInvalidParameter, literal, col.Type, column)
	}
	return fillMissing(ds, col, fill), nil
}

func fillMissing(ds *dataset.Dataset, col dataset.Column, fill dataset.Value) *dataset.Dataset {
	vals := make([]dataset.Value, len(col.Values))
	for i, v := range col.Values {
		if v.IsMissing() {
			vals[i] = fill
		} else {
			vals[i] = v
		}
	}
	return ds.WithColumn(dataset.Column{Name: col.Name, Type: col.Type, Values: vals})
}

func imputeInterpolate(ds *dataset.Dataset, column string, opts ImputeOptions) (*dataset.Dataset, error) {
	col, err := numericColumnOf(ds, column)
	if err != nil {
		return nil, err
	}
	switch opts.Interpolation {
	case "", "linear", "polynomial", "spline":
	default:
		return nil, fmt.Errorf("%w: interpolation %q", ErrUnknownMethod, opts.Interpolation)
	}
	valid, rows := col.Floats()
	if len(valid) == 0 {
		return ds.Clone(), nil
	}

	vals := make([]dataset.Value, len(col.Values))
	copy(vals, col.Values)

	if opts.Interpolation == "polynomial" || opts.Interpolation == "spline" {
		order := opts.Order
		if order <= 0 {
			order = 2
		}
		if order >= len(valid) {
			order = len(valid) - 1
		}
		if order < 1 {
			order = 1
		}
		xs := make([]float64, len(rows))
		for i, r := range rows {
			xs[i] = float64(r)
		}
		coef := polyfit(xs, valid, order)
		for i := range vals {
			if vals[i].IsMissing() {
				vals[i] = dataset.Num(polyval(coef, float64(i)))
			}
		}
		return ds.WithColumn(dataset.Column{Name: col.Name, Type: col.Type, Values: vals}), nil
	}

	// Linear between the surrounding valid rows; the ends take the
	// nearest valid value.
	for i := range vals {
		if !vals[i].IsMissing() {
			continue
		}
		j := sort.SearchInts(rows, i)
		switch {
		case j == 0:
			vals[i] = dataset.Num(valid[0])
		case j == len(rows):
			vals[i] = dataset.Num(valid[len(valid)-1])
		default:
			lo, hi := rows[j-1], rows[j]
			w := float64(i-lo) / float64(hi-lo)
			vals[i] = dataset.Num(valid[j-1]*(1-w) + valid[j]*w)
		}
	}
	return ds.WithColumn(dataset.Column{Name: col.Name, Type: col.Type, Values: vals}), nil
}

// polyfit solves the least-squares polynomial of the given degree via
// the normal equations; degrees here stay tiny.
func polyfit(xs, ys []float64, degree int) []float64 {
	n := degree + 1
	a := make([][]float64, n)
	b := make([]float64, n)
	for i := range a {
		a[i] = make([]float64, n)
	}
	for k, x := range xs {
		powers := make([]float64, 2*n-1)
		p := 1.0
		for i := range powers {
			powers[i] = p
			p *= x
		}
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				a[i][j] += powers[i+j]
			}
			b[i] += powers[i] * ys[k]
		}
	}
	return solveGauss(a, b)
}

func solveGauss(a [][]float64, b []float64) []float64 {
	n := len(b)
	for i := 0; i < n; i++ {
		pivot := i
		for r := i + 1; r < n; r++ {
			if math.Abs(a[r][i]) > math.Abs(a[pivot][i]) {
				pivot = r
			}
		}
		a[i], a[pivot] = a[pivot], a[i]
		b[i], b[pivot] = b[pivot], b[i]
		if a[i][i] == 0 {
			continue
		}
		for r := i + 1; r < n; r++ {
			f := a[r][i] / a[i][i]
			for c := i; c < n; c++ {
				a[r][c] -= f * a[i][c]
			}
			b[r] -= f * b[i]
		}
	}
	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := b[i]
		for c := i + 1; c < n; c++ {
			sum -= a[i][c] * x[c]
		}
		if a[i][i] != 0 {
			x[i] = sum / a[i][i]
		}
	}
	return x
}

func polyval(coef []float64, x float64) float64 {
	r, p := 0.0, 1.0
	for _, c := range coef {
		r += c * p
		p *= x
	}
	return r
}

// KNNImpute fills missing cells in every numeric column using the mean
// of the k nearest rows, with distance measured over all numeric
// columns after mean-imputing them as distance features. The target
// column must be numeric; the returned names list every column that
// was actually modified.
func KNNImpute(ds *dataset.Dataset, column string, neighbors int) (*dataset.Dataset, []string, error) {
	if _, err := numericColumnOf(ds, column); err != nil {
		return nil, nil, err
	}
	if neighbors <= 0 {
		return nil, nil, fmt.Errorf("%w: neighbor count must be positive", ErrInvalidParameter)
	}

	numeric := ds.NumericColumns()
	rows := ds.Rows()

	// Distance features: each numeric column mean-imputed.
	features := make([][]float64, len(numeric))
	present := make([][]bool, len(numeric))
	for j, name := range numeric {
		col, _ := ds.Column(name)
		vals, _ := col.Floats()
		mean := stats.Mean(vals)
		features[j] = make([]float64, rows)
		present[j] = make([]bool, rows)
		for i, v := range col.Values {
			if f, ok := v.Float(); ok {
				features[j][i] = f
				present[j][i] = true
			} else {
				features[j][i] = mean
			}
		}
	}

	dist := func(a, b int) float64 {
		sum := 0.0
		for j := range features {
			d := features[j][a] - features[j][b]
			sum += d * d
		}
		return sum
	}

	out := ds.Clone()
	var affected []string
	for j, name := range numeric {
		col, _ := out.Column(name)
		changed := false
		vals := make([]dataset.Value, len(col.Values))
		copy(vals, col.Values)
		for i := range vals {
			if !vals[i].IsMissing() {
				continue
			}
			type cand struct {
				d float64
				v float64
			}
			var cands []cand
			for r := 0; r < rows; r++ {
				if r == i || !present[j][r] {
					continue
				}
				cands = append(cands, cand{d: dist(i, r), v: features[j][r]})
			}
			if len(cands) == 0 {
				continue
			}
			sort.Slice(cands, func(a, b int) bool { return cands[a].d < cands[b].d })
			k := neighbors
			if k > len(cands) {
				k = len(cands)
			}
			sum := 0.0
			for _, c := range cands[:k] {
				sum += c.v
			}
			vals[i] = dataset.Num(sum / float64(k))
			changed = true
		}
		if changed {
			out = out.WithColumn(dataset.Column{Name: name, Type: dataset.KindNumeric, Values: vals})
			affected = append(affected, name)
		}
	}
	return out, affected, nil
}
