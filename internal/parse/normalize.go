package parse

import (
	"regexp"
	"strings"
)

var (
	snakeBoundary1 = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	snakeBoundary2 = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// toSnake rewrites PascalCase/camelCase to snake_case. Acronym runs keep a
// single boundary (HTTPServer -> http_server).
func toSnake(key string) string {
	s := snakeBoundary1.ReplaceAllString(key, "${1}_${2}")
	s = snakeBoundary2.ReplaceAllString(s, "${1}_${2}")
	return strings.ToLower(s)
}

// Normalize rewrites keys to snake_case one mapping level below the top.
// Top-level keys are schema aliases and pass through verbatim. A
// mapping-valued entry has its own keys rewritten and its values left
// untouched; a list-valued entry has each mapping element treated as a
// fresh top level. Pure and idempotent: the input is never modified.
func Normalize(m Mapping) Mapping {
	out := make(Mapping, len(m))
	for key, value := range m {
		switch v := value.(type) {
		case map[string]any:
			inner := make(map[string]any, len(v))
			for k, val := range v {
				inner[toSnake(k)] = val
			}
			out[key] = inner
		case []any:
			items := make([]any, len(v))
			for i, item := range v {
				if elem, ok := item.(map[string]any); ok {
					items[i] = Normalize(elem)
				} else {
					items[i] = item
				}
			}
			out[key] = items
		default:
			out[key] = value
		}
	}
	return out
}
