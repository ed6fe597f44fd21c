package dataset

import (
	"strconv"
	"strings"
	"time"
)

// ValueKind identifies the concrete representation held by a Value.
type ValueKind int

const (
	// KindMissing marks an absent cell.
	KindMissing ValueKind = iota
	// KindString holds raw or categorical/text data.
	KindString
	// KindNumber holds a float64.
	KindNumber
	// KindBool holds a boolean.
	KindBool
	// KindTime holds a parsed timestamp.
	KindTime
)

// Value is a tagged variant cell. Cells arrive from the loader as strings
// (or missing) and are coerced to their column's inferred type after
// profiling. All conversions between kinds go through explicit methods;
// there is no implicit coercion.
type Value struct {
	kind ValueKind
	num  float64
	str  string
	b    bool
	ts   time.Time
}

// Missing returns the missing cell value.
func Missing() Value { return Value{kind: KindMissing} }

// String returns a string-kind value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number returns a numeric value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Time returns a datetime value.
func Time(t time.Time) Value { return Value{kind: KindTime, ts: t} }

// Kind returns the value's kind tag.
func (v Value) Kind() ValueKind { return v.kind }

// IsMissing reports whether the cell is absent.
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// AsFloat converts the value to a float64. String values are parsed;
// the second return is false when no numeric interpretation exists.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// AsBool converts the value to a boolean using the recognized token set.
func (v Value) AsBool() (bool, bool) {
	switch v.kind {
	case KindBool:
		return v.b, true
	case KindString:
		return ParseBoolToken(v.str)
	case KindNumber:
		if v.num == 1 {
			return true, true
		}
		if v.num == 0 {
			return false, true
		}
	}
	return false, false
}

// AsTime converts the value to a timestamp using the datetime pattern list.
func (v Value) AsTime() (time.Time, bool) {
	switch v.kind {
	case KindTime:
		return v.ts, true
	case KindString:
		return ParseDatetime(v.str)
	}
	return time.Time{}, false
}

// AsString renders the value for display and export. Missing cells render
// as the empty string.
func (v Value) AsString() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindTime:
		return v.ts.Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}

// Equal reports whether two cells compare identical for deduplication.
// Missing cells compare equal to each other.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindMissing:
		return true
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	case KindTime:
		return v.ts.Equal(o.ts)
	}
	return false
}

// Coerce converts the value to the native kind of the target column type.
// The second return is false when the value has no representation in the
// target type; the value is returned unchanged in that case.
func (v Value) Coerce(target ColumnType) (Value, bool) {
	if v.kind == KindMissing {
		return v, true
	}
	switch target {
	case TypeNumeric:
		if f, ok := v.AsFloat(); ok {
			return Number(f), true
		}
	case TypeBoolean:
		if b, ok := v.AsBool(); ok {
			return Bool(b), true
		}
	case TypeDatetime:
		if t, ok := v.AsTime(); ok {
			return Time(t), true
		}
	case TypeCategorical, TypeText:
		return String(v.AsString()), true
	}
	return v, false
}

// boolTokens maps the recognized boolean spellings (lowercased).
var boolTokens = map[string]bool{
	"true": true, "false": false,
	"t": true, "f": false,
	"yes": true, "no": false,
	"y": true, "n": false,
	"1": true, "0": false,
}

// ParseBoolToken parses the recognized boolean spellings, case-insensitive.
func ParseBoolToken(s string) (bool, bool) {
	b, ok := boolTokens[strings.ToLower(strings.TrimSpace(s))]
	return b, ok
}

// DatetimePatterns is the fixed, ordered list of layouts tried when
// classifying and parsing datetime cells. The order is part of the
// pipeline's deterministic behavior; do not reorder casually.
var DatetimePatterns = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"01/02/2006",
	"02/01/2006",
	"2006/01/02",
	"Jan 2, 2006",
}

// ParseDatetime tries each layout in DatetimePatterns in order.
func ParseDatetime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range DatetimePatterns {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// missingTokens are cell spellings treated as absent data at load time,
// mirroring the usual NA conventions of spreadsheet exports.
var missingTokens = map[string]struct{}{
	"": {}, "na": {}, "n/a": {}, "null": {}, "nan": {}, "none": {},
}

// IsMissingToken reports whether a raw cell string denotes a missing value.
func IsMissingToken(s string) bool {
	_, ok := missingTokens[strings.ToLower(strings.TrimSpace(s))]
	return ok
}
