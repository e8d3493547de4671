package dataset

import (
	"strconv"
	"strings"
	"time"
)

// Kind is the declared scalar type of a column.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindText        Kind = "text"
	KindBool        Kind = "boolean"
	KindTime        Kind = "timestamp"
	KindCategorical Kind = "categorical"
)

// Value is one cell. The zero value is a missing cell.
type Value struct {
	kind  Kind
	num   float64
	str   string
	b     bool
	t     time.Time
	valid bool
}

// Missing returns an absent cell.
func Missing() Value { return Value{} }

// Num returns a numeric cell.
func Num(f float64) Value { return Value{kind: KindNumeric, num: f, valid: true} }

// Str returns a text cell.
func Str(s string) Value { return Value{kind: KindText, str: s, valid: true} }

// Bool returns a boolean cell.
func Bool(b bool) Value { return Value{kind: KindBool, b: b, valid: true} }

// Time returns a timestamp cell.
func Time(t time.Time) Value { return Value{kind: KindTime, t: t, valid: true} }

// Cat returns a categorical cell.
func Cat(s string) Value { return Value{kind: KindCategorical, str: s, valid: true} }

// IsMissing reports whether the cell is absent.
func (v Value) IsMissing() bool { return !v.valid }

// Kind returns the cell's kind; missing cells have an empty kind.
func (v Value) Kind() Kind {
	if !v.valid {
		return ""
	}
	return v.kind
}

// Float returns the numeric payload.
func (v Value) Float() (float64, bool) {
	if !v.valid || v.kind != KindNumeric {
		return 0, false
	}
	return v.num, true
}

// Text returns the string payload of a text or categorical cell.
func (v Value) Text() (string, bool) {
	if !v.valid || (v.kind != KindText && v.kind != KindCategorical) {
		return "", false
	}
	return v.str, true
}

// BoolVal returns the boolean payload.
func (v Value) BoolVal() (bool, bool) {
	if !v.valid || v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// TimeVal returns the timestamp payload.
func (v Value) TimeVal() (time.Time, bool) {
	if !v.valid || v.kind != KindTime {
		return time.Time{}, false
	}
	return v.t, true
}

// Equal reports value equality, treating two missing cells as equal.
func (v Value) Equal(o Value) bool {
	if !v.valid || !o.valid {
		return v.valid == o.valid
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumeric:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	case KindTime:
		return v.t.Equal(o.t)
	default:
		return v.str == o.str
	}
}

// Key renders a canonical token used for row-duplicate detection and
// distinct-value bookkeeping.
func (v Value) Key() string {
	if !v.valid {
		return "\x00"
	}
	switch v.kind {
	case KindNumeric:
		return "n:" + strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindBool:
		if v.b {
			return "b:1"
		}
		return "b:0"
	case KindTime:
		return "t:" + v.t.Format(time.RFC3339Nano)
	default:
		return "s:" + v.str
	}
}

// Display renders the cell for export and log messages. Missing cells
// render empty.
func (v Value) Display() string {
	if !v.valid {
		return ""
	}
	switch v.kind {
	case KindNumeric:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindTime:
		return v.t.Format(time.RFC3339)
	default:
		return v.str
	}
}

var timeLayouts = []string{
	time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
}

// ParseTime attempts the layouts accepted across the loader and the
// conversion operations.
func ParseTime(s string) (time.Time, bool) {
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseBool accepts the usual spellings of booleans.
func ParseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "y", "1":
		return true, true
	case "false", "f", "no", "n", "0":
		return false, true
	}
	return false, false
}

// Coerce converts a cell to the target kind. Cells that cannot be
// represented in the target kind become missing, never an error.
func Coerce(v Value, target Kind) Value {
	if !v.valid {
		return Missing()
	}
	if v.kind == target {
		return v
	}
	switch target {
	case KindNumeric:
		switch v.kind {
		case KindBool:
			if v.b {
				return Num(1)
			}
			return Num(0)
		case KindText, KindCategorical:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64); err == nil {
				return Num(f)
			}
		case KindTime:
			return Num(float64(v.t.Unix()))
		}
		return Missing()
	case KindText:
		return Str(v.Display())
	case KindCategorical:
		return Cat(v.Display())
	case KindBool:
		switch v.kind {
		case KindNumeric:
			return Bool(v.num != 0)
		case KindText, KindCategorical:
			if b, ok := ParseBool(v.str); ok {
				return Bool(b)
			}
		}
		return Missing()
	case KindTime:
		if s, ok := v.Text(); ok {
			if t, ok := ParseTime(strings.TrimSpace(s)); ok {
				return Time(t)
			}
		}
		return Missing()
	}
	return Missing()
}
