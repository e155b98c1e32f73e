package utils

import (
	"fmt"
	"sort"
	"strconv"
)

// IsEmpty reports whether a query value counts as absent: nil, an empty
// string, or an empty slice. Absent values must never reach encoded URLs or
// cache keys.
func IsEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	default:
		return false
	}
}

// Stringify converts a scalar query value to its canonical URL form.
// Floats that carry no fractional part render without a decimal point so the
// same logical value always produces the same parameter text.
func Stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// NormalizeValue canonicalizes a query value for consistent serialization.
// Scalars become their canonical string form; slices become sorted string
// slices (tag-selection order is not semantically meaningful, so keys are
// order-insensitive).
func NormalizeValue(value any) any {
	switch v := value.(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		sort.Strings(out)
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, Stringify(item))
		}
		sort.Strings(out)
		return out
	default:
		return Stringify(v)
	}
}

// SortedKeys returns the keys of a string-keyed map in ascending order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
