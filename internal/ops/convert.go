package ops

import (
	"fmt"
	"math"

	"github.com/datamend/datamend-cli/internal/dataset"
)

// Target names a type-conversion destination.
type Target string

const (
	TargetInteger     Target = "integer"
	TargetFloat       Target = "float"
	TargetText        Target = "text"
	TargetTimestamp   Target = "timestamp"
	TargetBoolean     Target = "boolean"
	TargetCategorical Target = "categorical"
)

// ConvertReport counts the outcome of a conversion. Because Convert is
// pure, calling it and discarding the dataset serves as a preview.
type ConvertReport struct {
	Converted int `json:"converted"`
	Coerced   int `json:"coerced_to_missing"`
}

// Convert changes a column to the target type. Values that cannot be
// represented become missing, never an error.
func Convert(ds *dataset.Dataset, column string, target Target) (*dataset.Dataset, *ConvertReport, error) {
	col, err := columnOf(ds, column)
	if err != nil {
		return nil, nil, err
	}
	kind, err := kindForTarget(target)
	if err != nil {
		return nil, nil, err
	}

	rep := &ConvertReport{}
	vals := make([]dataset.Value, len(col.Values))
	for i, v := range col.Values {
		if v.IsMissing() {
			vals[i] = v
			continue
		}
		out := dataset.Coerce(v, kind)
		if target == TargetInteger {
			if f, ok := out.Float(); ok {
				out = dataset.Num(math.Trunc(f))
			}
		}
		if out.IsMissing() {
			rep.Coerced++
		} else {
			rep.Converted++
		}
		vals[i] = out
	}
	out := ds.WithColumn(dataset.Column{Name: column, Type: kind, Values: vals})
	return out, rep, nil
}

func kindForTarget(t Target) (dataset.Kind, error) {
	switch t {
	case TargetInteger, TargetFloat:
		return dataset.KindNumeric, nil
	case TargetText:
		return dataset.KindText, nil
	case TargetTimestamp:
		return dataset.KindTime, nil
	case TargetBoolean:
		return dataset.KindBool, nil
	case TargetCategorical:
		return dataset.KindCategorical, nil
	}
	return "", fmt.Errorf("%w: conversion target %q", ErrUnknownMethod, t)
}

// TransformColumn applies a numeric transformation in place of the
// column. Domain violations (log of x <= -1, sqrt of negatives)
// become missing.
func TransformColumn(ds *dataset.Dataset, column, transformation string) (*dataset.Dataset, error) {
	col, err := numericColumnOf(ds, column)
	if err != nil {
		return nil, err
	}
	var fn func(float64) float64
	switch transformation {
	case "log":
		fn = math.Log1p
	case "sqrt":
		fn = math.Sqrt
	case "square":
		fn = func(f float64) float64 { return f * f }
	default:
		return nil, fmt.Errorf("%w: transformation %q", ErrUnknownMethod, transformation)
	}
	vals := make([]dataset.Value, len(col.Values))
	for i, v := range col.Values {
		f, ok := v.Float()
		if !ok {
			vals[i] = v
			continue
		}
		r := fn(f)
		if math.IsNaN(r) || math.IsInf(r, 0) {
			vals[i] = dataset.Missing()
		} else {
			vals[i] = dataset.Num(r)
		}
	}
	return ds.WithColumn(dataset.Column{Name: column, Type: dataset.KindNumeric, Values: vals}), nil
}
