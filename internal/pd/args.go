package pd

import (
	"math"
	"slices"
	"strconv"
)

// Object arguments are either strings or numbers. Numbers may arrive as
// float64 or as any Go integer type, depending on the decoder.

// CloneArgs copies an argument list.
func CloneArgs(args []any) []any {
	if args == nil {
		return nil
	}
	return append([]any(nil), args...)
}

// ArgNumber returns the numeric value of a number argument.
func ArgNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// FormatArg renders an argument the way it appears in a patch: integral
// numbers without a decimal point, other numbers in their shortest form.
func FormatArg(v any) string {
	switch a := v.(type) {
	case nil:
		return ""
	case string:
		return a
	}
	if f, ok := ArgNumber(v); ok {
		if f == math.Trunc(f) && math.Abs(f) < 1e21 {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return ""
}

// ParseNumber interprets an argument as a number, accepting numeric strings.
func ParseNumber(v any) (float64, bool) {
	if f, ok := ArgNumber(v); ok {
		return f, true
	}
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(s, 64)
		if err == nil {
			return f, true
		}
	}
	return 0, false
}

// SortIDs orders ids numerically when both sides are integers and
// lexically otherwise, so "2" sorts before "10".
func SortIDs(ids []string) {
	slices.SortFunc(ids, CompareIDs)
}

// CompareIDs is the ordering used by SortIDs.
func CompareIDs(a, b string) int {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	switch {
	case aErr == nil && bErr == nil:
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
		return 0
	case aErr == nil:
		return -1
	case bErr == nil:
		return 1
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
