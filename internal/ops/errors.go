package ops

import (
	"errors"
	"fmt"

	"github.com/datamend/datamend-cli/internal/dataset"
)

// Invalid-request sentinels. Data-level anomalies (unparsable values,
// missing cells, ties) never surface as errors; only structurally
// invalid requests do.
var (
	ErrUnknownColumn    = errors.New("column not found")
	ErrUnknownMethod    = errors.New("unknown method")
	ErrInvalidParameter = errors.New("invalid parameter")
)

func columnOf(ds *dataset.Dataset, name string) (dataset.Column, error) {
	col, ok := ds.Column(name)
	if !ok {
		return dataset.Column{}, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	return col, nil
}

func numericColumnOf(ds *dataset.Dataset, name string) (dataset.Column, error) {
	col, err := columnOf(ds, name)
	if err != nil {
		return dataset.Column{}, err
	}
	if col.Type != dataset.KindNumeric {
		return dataset.Column{}, fmt.Errorf("%w: column %q is not numeric", ErrInvalidParameter, name)
	}
	return col, nil
}
