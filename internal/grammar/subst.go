package grammar

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Apply rewrites every string leaf of a tree, replacing bound %name% tokens
// with the permutation's values. Unbound tokens are left verbatim for later
// stages, and {name} tokens are never touched; they belong to the target
// engine. Non-string leaves pass through unchanged and container shape is
// preserved. The input tree is not mutated.
func Apply(v any, binding map[string]any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[k] = Apply(child, binding)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = Apply(child, binding)
		}
		return out
	case string:
		return replaceTokens(val, binding)
	default:
		return v
	}
}

// replaceTokens substitutes %name% for every bound name. Names are replaced
// in sorted order so output is deterministic regardless of map iteration.
func replaceTokens(s string, binding map[string]any) string {
	if !strings.Contains(s, "%") {
		return s
	}
	for _, name := range sortedNames(binding) {
		s = strings.ReplaceAll(s, "%"+name+"%", FormatScalar(binding[name]))
	}
	return s
}

// sortedNames returns binding keys in lexical order.
func sortedNames(binding map[string]any) []string {
	names := make([]string, 0, len(binding))
	for name := range binding {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FormatScalar renders a bound value in its literal form: numbers without
// exponent notation, booleans as true/false.
func FormatScalar(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case json.Number:
		return val.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// isNumericOrBool reports whether a bound value renders unquoted in JSON.
func isNumericOrBool(v any) bool {
	switch v.(type) {
	case bool, int, int64, uint64, float64, float32, json.Number:
		return true
	default:
		return false
	}
}
