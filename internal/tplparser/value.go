package tplparser

import "strconv"

// Context holds the variables visible to a render. Values must be one of
// string, int, bool, nil, []any or map[string]any (recursively).
type Context map[string]any

type kind string

const (
	kindNone     kind = "none"
	kindBool     kind = "bool"
	kindInt      kind = "int"
	kindString   kind = "string"
	kindSequence kind = "sequence"
	kindMapping  kind = "mapping"
	kindInvalid  kind = "unsupported"
)

func kindOf(v any) kind {
	switch v.(type) {
	case nil:
		return kindNone
	case bool:
		return kindBool
	case int:
		return kindInt
	case string:
		return kindString
	case []any:
		return kindSequence
	case map[string]any:
		return kindMapping
	default:
		return kindInvalid
	}
}

func truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case int:
		return v != 0
	case string:
		return v != ""
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}

// toText converts a value for {{ }} output. Only strings and ints render.
func toText(v any) (string, bool) {
	switch v := v.(type) {
	case string:
		return v, true
	case int:
		return strconv.Itoa(v), true
	default:
		return "", false
	}
}

func loopValue(i, n int) map[string]any {
	return map[string]any{
		"index0": i,
		"index":  i + 1,
		"first":  i == 0,
		"last":   i == n-1,
		"length": n,
	}
}
