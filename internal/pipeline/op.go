package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/datamend/datamend-cli/internal/dataset"
	"github.com/datamend/datamend-cli/internal/ops"
)

// OpKind names a pipeline operation. The set is closed: adding an
// operation means adding a constant and a handler, and unknown names
// surface as ErrUnknownOperation instead of silently falling through.
type OpKind string

const (
	OpRemoveDuplicates OpKind = "remove_duplicates"
	OpDropColumns      OpKind = "drop_columns"
	OpDropHighMissing  OpKind = "drop_high_missing"
	OpCleanText        OpKind = "clean_text"
	OpConvertType      OpKind = "convert_type"
	OpImpute           OpKind = "impute"
	OpEncode           OpKind = "encode"
	OpDetectOutliers   OpKind = "detect_outliers"
	OpRemoveOutliers   OpKind = "remove_outliers"
	OpWinsorize        OpKind = "winsorize"
	OpAnomalyDetection OpKind = "ml_anomaly_detection"
	OpAutoClean        OpKind = "auto_clean"
	OpFilterRows       OpKind = "filter_rows"
	OpTransformColumn  OpKind = "transform_column"
	OpRenameColumns    OpKind = "rename_columns"
	OpFillNA           OpKind = "fill_na"
)

// ErrUnknownOperation reports an operation name outside the closed set.
var ErrUnknownOperation = errors.New("unknown operation")

// Params carries a step's arguments. Values survive JSON and YAML
// round-trips, so the getters accept the numeric types both decoders
// produce.
type Params map[string]any

func (p Params) str(key, def string) string {
	if v, ok := p[key].(string); ok && v != "" {
		return v
	}
	return def
}

func (p Params) float(key string, def float64) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return def
}

func (p Params) intval(key string, def int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

func (p Params) boolean(key string, def bool) bool {
	if v, ok := p[key].(bool); ok {
		return v
	}
	return def
}

func (p Params) strings(key string) []string {
	switch v := p[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func (p Params) intMap(key string) map[string]int {
	out := map[string]int{}
	collect := func(k string, v any) {
		switch n := v.(type) {
		case int:
			out[k] = n
		case int64:
			out[k] = int(n)
		case float64:
			out[k] = int(n)
		}
	}
	switch v := p[key].(type) {
	case map[string]int:
		return v
	case map[string]any:
		for k, e := range v {
			collect(k, e)
		}
	}
	return out
}

func (p Params) stringMap(key string) map[string]string {
	switch v := p[key].(type) {
	case map[string]string:
		return v
	case map[string]any:
		out := map[string]string{}
		for k, e := range v {
			if s, ok := e.(string); ok {
				out[k] = s
			}
		}
		return out
	}
	return nil
}

func (p Params) requiredColumn() (string, error) {
	col := p.str("column", "")
	if col == "" {
		return "", fmt.Errorf("%w: missing required parameter \"column\"", ops.ErrInvalidParameter)
	}
	return col, nil
}

type handlerFunc func(ds *dataset.Dataset, p Params) (*dataset.Dataset, string, error)

// handlers is the exhaustive dispatch table over the closed OpKind set.
var handlers = map[OpKind]handlerFunc{
	OpRemoveDuplicates: applyRemoveDuplicates,
	OpDropColumns:      applyDropColumns,
	OpDropHighMissing:  applyDropHighMissing,
	OpCleanText:        applyCleanText,
	OpConvertType:      applyConvertType,
	OpImpute:           applyImpute,
	OpEncode:           applyEncode,
	OpDetectOutliers:   applyDetectOutliers,
	OpRemoveOutliers:   applyRemoveOutliers,
	OpWinsorize:        applyWinsorize,
	OpAnomalyDetection: applyAnomalyDetection,
	OpAutoClean:        applyAutoClean,
	OpFilterRows:       applyFilterRows,
	OpTransformColumn:  applyTransformColumn,
	OpRenameColumns:    applyRenameColumns,
	OpFillNA:           applyFillNA,
}

// KnownOps lists the closed operation set in stable order.
func KnownOps() []OpKind {
	return []OpKind{
		OpRemoveDuplicates, OpDropColumns, OpDropHighMissing, OpCleanText,
		OpConvertType, OpImpute, OpEncode, OpDetectOutliers, OpRemoveOutliers,
		OpWinsorize, OpAnomalyDetection, OpAutoClean, OpFilterRows,
		OpTransformColumn, OpRenameColumns, OpFillNA,
	}
}

// ApplyOp runs one operation against a dataset, returning the result
// and a human-readable outcome summary. Both the pipeline executor and
// the batch processor dispatch through here so the two call paths
// cannot diverge.
func ApplyOp(ds *dataset.Dataset, op OpKind, p Params) (*dataset.Dataset, string, error) {
	h, ok := handlers[op]
	if !ok {
		return nil, "", fmt.Errorf("%w: %q", ErrUnknownOperation, op)
	}
	return h(ds, p)
}

func applyRemoveDuplicates(ds *dataset.Dataset, p Params) (*dataset.Dataset, string, error) {
	out, removed, err := ops.RemoveDuplicates(ds, p.strings("subset"), ops.Keep(p.str("keep", string(ops.KeepFirst))))
	if err != nil {
		return nil, "", err
	}
	return out, fmt.Sprintf("Removed %d duplicates", removed), nil
}

// applyDropColumns is strict about names: inside a pipeline a missing
// column is a misconfigured step that should show up in the report,
// unlike the library call that tolerates stale lists.
func applyDropColumns(ds *dataset.Dataset, p Params) (*dataset.Dataset, string, error) {
	columns := p.strings("columns")
	if len(columns) == 0 {
		return nil, "", fmt.Errorf("%w: missing required parameter \"columns\"", ops.ErrInvalidParameter)
	}
	for _, name := range columns {
		if !ds.HasColumn(name) {
			return nil, "", fmt.Errorf("%w: %q", ops.ErrUnknownColumn, name)
		}
	}
	return ops.DropColumns(ds, columns), fmt.Sprintf("Dropped %d columns", len(columns)), nil
}

func applyDropHighMissing(ds *dataset.Dataset, p Params) (*dataset.Dataset, string, error) {
	threshold := p.float("threshold", 0.5)
	out, dropped := ops.DropHighMissing(ds, threshold)
	return out, fmt.Sprintf("Dropped %d columns with >%.0f%% missing values", len(dropped), threshold*100), nil
}

func applyCleanText(ds *dataset.Dataset, p Params) (*dataset.Dataset, string, error) {
	columns := p.strings("columns")
	if len(columns) == 0 {
		columns = ds.TextColumns()
	}
	opts := ops.TextCleanOptions{
		CollapseWhitespace: p.boolean("collapse_whitespace", true),
		Lowercase:          p.boolean("lowercase", false),
		StripSpecial:       p.boolean("strip_special", false),
		StripDigits:        p.boolean("strip_digits", false),
		TrimSpace:          p.boolean("trim", true),
	}
	out, err := ops.NormalizeText(ds, columns, opts)
	if err != nil {
		return nil, "", err
	}
	return out, fmt.Sprintf("Cleaned %d text columns", len(columns)), nil
}

func applyConvertType(ds *dataset.Dataset, p Params) (*dataset.Dataset, string, error) {
	column, err := p.requiredColumn()
	if err != nil {
		return nil, "", err
	}
	target := ops.Target(p.str("target", string(ops.TargetText)))
	out, rep, err := ops.Convert(ds, column, target)
	if err != nil {
		return nil, "", err
	}
	return out, fmt.Sprintf("Converted %s to %s (%d coerced to missing)", column, target, rep.Coerced), nil
}

func applyImpute(ds *dataset.Dataset, p Params) (*dataset.Dataset, string, error) {
	column, err := p.requiredColumn()
	if err != nil {
		return nil, "", err
	}
	method := ops.ImputeMethod(p.str("method", string(ops.ImputeMean)))
	opts := ops.ImputeOptions{
		Constant:      p.str("value", ""),
		Interpolation: p.str("interpolation", "linear"),
		Order:         p.intval("order", 2),
		Neighbors:     p.intval("n_neighbors", 5),
	}
	if method == ops.ImputeKNN {
		out, affected, err := ops.KNNImpute(ds, column, opts.Neighbors)
		if err != nil {
			return nil, "", err
		}
		return out, fmt.Sprintf("Imputed %s using knn (all numeric columns affected: %s)", column, strings.Join(affected, ", ")), nil
	}
	out, err := ops.Impute(ds, column, method, opts)
	if err != nil {
		return nil, "", err
	}
	return out, fmt.Sprintf("Imputed %s using %s", column, method), nil
}

func applyEncode(ds *dataset.Dataset, p Params) (*dataset.Dataset, string, error) {
	encoding := p.str("type", "label")
	switch encoding {
	case "label":
		column, err := p.requiredColumn()
		if err != nil {
			return nil, "", err
		}
		out, mapping, err := ops.LabelEncode(ds, column)
		if err != nil {
			return nil, "", err
		}
		return out, fmt.Sprintf("Label encoded %s (%d classes)", column, len(mapping.Classes)), nil
	case "onehot":
		columns := p.strings("columns")
		if len(columns) == 0 {
			column, err := p.requiredColumn()
			if err != nil {
				return nil, "", err
			}
			columns = []string{column}
		}
		out, err := ops.OneHotEncode(ds, columns, p.boolean("drop_first", true))
		if err != nil {
			return nil, "", err
		}
		return out, fmt.Sprintf("One-hot encoded %s", strings.Join(columns, ", ")), nil
	case "ordinal":
		column, err := p.requiredColumn()
		if err != nil {
			return nil, "", err
		}
		out, unmapped, err := ops.OrdinalEncode(ds, column, p.intMap("mapping"))
		if err != nil {
			return nil, "", err
		}
		return out, fmt.Sprintf("Ordinal encoded %s (%d unmapped values became missing)", column, unmapped), nil
	}
	return nil, "", fmt.Errorf("%w: encoding type %q", ops.ErrUnknownMethod, encoding)
}

func outlierArgs(p Params) (ops.OutlierMethod, ops.OutlierOptions) {
	return ops.OutlierMethod(p.str("method", string(ops.OutlierIQR))), ops.OutlierOptions{
		Threshold:     p.float("threshold", 0),
		Contamination: p.float("contamination", 0),
	}
}

func applyDetectOutliers(ds *dataset.Dataset, p Params) (*dataset.Dataset, string, error) {
	column, err := p.requiredColumn()
	if err != nil {
		return nil, "", err
	}
	method, opts := outlierArgs(p)
	mask, err := ops.DetectOutliers(ds, column, method, opts)
	if err != nil {
		return nil, "", err
	}
	count := 0
	for _, m := range mask {
		if m {
			count++
		}
	}
	return ds, fmt.Sprintf("Detected %d outliers in %s", count, column), nil
}

func applyRemoveOutliers(ds *dataset.Dataset, p Params) (*dataset.Dataset, string, error) {
	column, err := p.requiredColumn()
	if err != nil {
		return nil, "", err
	}
	method, opts := outlierArgs(p)
	mask, err := ops.DetectOutliers(ds, column, method, opts)
	if err != nil {
		return nil, "", err
	}
	out, removed, err := ops.FilterOutliers(ds, mask)
	if err != nil {
		return nil, "", err
	}
	return out, fmt.Sprintf("Removed %d outliers from %s", removed, column), nil
}

func applyWinsorize(ds *dataset.Dataset, p Params) (*dataset.Dataset, string, error) {
	column, err := p.requiredColumn()
	if err != nil {
		return nil, "", err
	}
	out, clipped, err := ops.Winsorize(ds, column)
	if err != nil {
		return nil, "", err
	}
	return out, fmt.Sprintf("Winsorized %d values in %s", clipped, column), nil
}

func applyAnomalyDetection(ds *dataset.Dataset, p Params) (*dataset.Dataset, string, error) {
	out, info, err := ops.DetectAnomalies(ds, p.float("contamination", 0.1), p.strings("columns"))
	if err != nil {
		return nil, "", err
	}
	return out, fmt.Sprintf("Detected %d anomalies", info.TotalAnomalies), nil
}

func applyAutoClean(ds *dataset.Dataset, p Params) (*dataset.Dataset, string, error) {
	out, log := ops.AutoClean(ds, nil)
	return out, fmt.Sprintf("Applied %d auto-clean operations", len(log)), nil
}

func applyFilterRows(ds *dataset.Dataset, p Params) (*dataset.Dataset, string, error) {
	column, err := p.requiredColumn()
	if err != nil {
		return nil, "", err
	}
	out, removed, err := ops.FilterRows(ds, column, p.str("operator", "=="), p.str("value", ""))
	if err != nil {
		return nil, "", err
	}
	return out, fmt.Sprintf("Filtered %d rows", removed), nil
}

func applyTransformColumn(ds *dataset.Dataset, p Params) (*dataset.Dataset, string, error) {
	column, err := p.requiredColumn()
	if err != nil {
		return nil, "", err
	}
	transformation := p.str("transformation", "log")
	out, err := ops.TransformColumn(ds, column, transformation)
	if err != nil {
		return nil, "", err
	}
	return out, fmt.Sprintf("Applied %s to %s", transformation, column), nil
}

func applyRenameColumns(ds *dataset.Dataset, p Params) (*dataset.Dataset, string, error) {
	mapping := p.stringMap("mapping")
	if len(mapping) == 0 {
		return nil, "", fmt.Errorf("%w: missing required parameter \"mapping\"", ops.ErrInvalidParameter)
	}
	out, err := ops.RenameColumns(ds, mapping)
	if err != nil {
		return nil, "", err
	}
	return out, fmt.Sprintf("Renamed %d columns", len(mapping)), nil
}

func applyFillNA(ds *dataset.Dataset, p Params) (*dataset.Dataset, string, error) {
	value := p.str("value", "0")
	return ops.FillAll(ds, value), fmt.Sprintf("Filled missing values with %s", value), nil
}
