package ops

import (
	"fmt"
	"math"

	"github.com/datamend/datamend-cli/internal/dataset"
	"github.com/datamend/datamend-cli/internal/stats"
)

// OutlierMethod names an outlier detection strategy.
type OutlierMethod string

const (
	OutlierIQR    OutlierMethod = "iqr"
	OutlierZScore OutlierMethod = "zscore"
	OutlierForest OutlierMethod = "isolation_forest"
)

// OutlierOptions tunes detection. Fields irrelevant to the chosen
// method are ignored.
type OutlierOptions struct {
	Threshold     float64 // IQR multiplier (default 1.5) or z-score cutoff (default 3.0)
	Contamination float64 // expected anomaly fraction for the forest (default 0.1)
}

// DetectOutliers returns a per-row mask for one numeric column.
// Missing cells are never outliers.
func DetectOutliers(ds *dataset.Dataset, column string, method OutlierMethod, opts OutlierOptions) ([]bool, error) {
	col, err := numericColumnOf(ds, column)
	if err != nil {
		return nil, err
	}
	switch method {
	case OutlierIQR, OutlierZScore, OutlierForest:
	default:
		return nil, fmt.Errorf("%w: outlier method %q", ErrUnknownMethod, method)
	}

	mask := make([]bool, ds.Rows())
	vals, rows := col.Floats()
	if len(vals) == 0 {
		return mask, nil
	}

	switch method {
	case OutlierIQR:
		k := opts.Threshold
		if k <= 0 {
			k = 1.5
		}
		lower, upper := stats.IQRBounds(vals, k)
		for i, v := range vals {
			if v < lower || v > upper {
				mask[rows[i]] = true
			}
		}
	case OutlierZScore:
		t := opts.Threshold
		if t <= 0 {
			t = 3.0
		}
		mean := stats.Mean(vals)
		std := stats.Std(vals)
		if std == 0 {
			return mask, nil
		}
		for i, v := range vals {
			if math.Abs(v-mean)/std > t {
				mask[rows[i]] = true
			}
		}
	case OutlierForest:
		contamination := opts.Contamination
		if contamination == 0 {
			contamination = 0.1
		}
		if contamination <= 0 || contamination > 0.5 {
			return nil, fmt.Errorf("%w: contamination must be in (0, 0.5]", ErrInvalidParameter)
		}
		// The forest trains on the column with missing cells
		// median-imputed, so every row gets a score.
		median := stats.Median(vals)
		feature := make([]float64, ds.Rows())
		for i := range feature {
			feature[i] = median
		}
		for i, r := range rows {
			feature[r] = vals[i]
		}
		flags := isolationForestDetect([][]float64{feature}, contamination)
		copy(mask, flags)
	}
	return mask, nil
}

// FilterOutliers drops the rows flagged by the mask.
func FilterOutliers(ds *dataset.Dataset, mask []bool) (*dataset.Dataset, int, error) {
	if len(mask) != ds.Rows() {
		return nil, 0, fmt.Errorf("%w: mask length %d does not match %d rows", ErrInvalidParameter, len(mask), ds.Rows())
	}
	keep := make([]bool, len(mask))
	removed := 0
	for i, m := range mask {
		keep[i] = !m
		if m {
			removed++
		}
	}
	return ds.SelectRows(keep), removed, nil
}

// Winsorize clips a numeric column at its 1st and 99th percentile
// boundaries, returning the number of values clipped.
func Winsorize(ds *dataset.Dataset, column string) (*dataset.Dataset, int, error) {
	col, err := numericColumnOf(ds, column)
	if err != nil {
		return nil, 0, err
	}
	vals, _ := col.Floats()
	if len(vals) == 0 {
		return ds.Clone(), 0, nil
	}
	lo := stats.Quantile(vals, 0.01)
	hi := stats.Quantile(vals, 0.99)
	clipped := 0
	next := make([]dataset.Value, len(col.Values))
	for i, v := range col.Values {
		f, ok := v.Float()
		if !ok {
			next[i] = v
			continue
		}
		switch {
		case f < lo:
			next[i] = dataset.Num(lo)
			clipped++
		case f > hi:
			next[i] = dataset.Num(hi)
			clipped++
		default:
			next[i] = v
		}
	}
	return ds.WithColumn(dataset.Column{Name: column, Type: dataset.KindNumeric, Values: next}), clipped, nil
}

// AnomalyInfo summarizes a multivariate anomaly detection pass.
type AnomalyInfo struct {
	TotalAnomalies  int      `json:"total_anomalies"`
	Percentage      float64  `json:"anomaly_percentage"`
	AnalyzedColumns []string `json:"analyzed_columns"`
	Contamination   float64  `json:"contamination"`
}

// DetectAnomalies runs the isolation forest jointly over the selected
// numeric columns (all of them when columns is nil), appending an
// anomaly_label column (-1 anomalous, 1 normal) and an anomaly_score
// column to the result.
func DetectAnomalies(ds *dataset.Dataset, contamination float64, columns []string) (*dataset.Dataset, *AnomalyInfo, error) {
	if contamination == 0 {
		contamination = 0.1
	}
	if contamination <= 0 || contamination > 0.5 {
		return nil, nil, fmt.Errorf("%w: contamination must be in (0, 0.5]", ErrInvalidParameter)
	}
	numeric := ds.NumericColumns()
	if len(columns) > 0 {
		allowed := make(map[string]struct{}, len(numeric))
		for _, n := range numeric {
			allowed[n] = struct{}{}
		}
		var filtered []string
		for _, n := range columns {
			if _, ok := allowed[n]; ok {
				filtered = append(filtered, n)
			}
		}
		numeric = filtered
	}
	if len(numeric) == 0 {
		return nil, nil, fmt.Errorf("%w: no numeric columns to analyze", ErrInvalidParameter)
	}

	rows := ds.Rows()
	features := make([][]float64, len(numeric))
	for j, name := range numeric {
		col, _ := ds.Column(name)
		vals, valRows := col.Floats()
		mean := stats.Mean(vals)
		features[j] = make([]float64, rows)
		for i := range features[j] {
			features[j][i] = mean
		}
		for i, r := range valRows {
			features[j][r] = vals[i]
		}
	}

	scores := isolationForestScores(features)
	threshold := stats.Quantile(scores, 1-contamination)
	degenerate := scoresAllEqual(scores)
	labels := make([]dataset.Value, rows)
	scoreVals := make([]dataset.Value, rows)
	anomalies := 0
	for i, s := range scores {
		scoreVals[i] = dataset.Num(s)
		if !degenerate && s >= threshold {
			labels[i] = dataset.Num(-1)
			anomalies++
		} else {
			labels[i] = dataset.Num(1)
		}
	}

	out := ds.
		WithColumn(dataset.Column{Name: "anomaly_label", Type: dataset.KindNumeric, Values: labels}).
		WithColumn(dataset.Column{Name: "anomaly_score", Type: dataset.KindNumeric, Values: scoreVals})
	info := &AnomalyInfo{
		TotalAnomalies:  anomalies,
		AnalyzedColumns: numeric,
		Contamination:   contamination,
	}
	if rows > 0 {
		info.Percentage = float64(anomalies) / float64(rows) * 100
	}
	return out, info, nil
}
