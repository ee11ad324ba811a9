// Package schema reconciles parsed model output with typed framework
// payloads. Every schema declares an explicit alias table; binding consults
// the table directly instead of discovering field names reflectively.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ppiankov/krisis/internal/parse"
)

// Field declares one bindable field: the canonical snake_case name the Go
// struct uses, the PascalCase alias the model emits, and whether a bind may
// proceed without it.
type Field struct {
	Name     string // Canonical snake_case key
	Alias    string // Model-facing alias; empty when none exists
	Required bool
}

// Table is the alias table for one schema, covering every level of its
// payload. Alias keys are rewritten wherever they appear; unknown keys pass
// through untouched so extra model output is tolerated.
type Table struct {
	Schema string
	Fields []Field
}

// BindingError reports a failed bind: required fields missing after
// canonicalization, or a decoded payload failing its value checks.
type BindingError struct {
	Schema  string
	Missing []string // Required fields absent from the mapping
	Err     error    // Decode or validation failure
}

func (e *BindingError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("bind %s: missing required fields: %s", e.Schema, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("bind %s: %v", e.Schema, e.Err)
}

func (e *BindingError) Unwrap() error { return e.Err }

// Validator lets a bound payload check its own value constraints. Bind
// invokes it when the target implements it and wraps any failure in a
// BindingError.
type Validator interface {
	Validate() error
}

// Bind canonicalizes the mapping against the table, checks the required
// top-level fields, and decodes the result into T through a JSON round
// trip. Nested requiredness and enum constraints belong to T's Validate.
func Bind[T any](t Table, m parse.Mapping) (*T, error) {
	canon := t.Canonicalize(m)
	if missing := t.missingRequired(canon); len(missing) > 0 {
		return nil, &BindingError{Schema: t.Schema, Missing: missing}
	}
	raw, err := json.Marshal(canon)
	if err != nil {
		return nil, &BindingError{Schema: t.Schema, Err: fmt.Errorf("encode mapping: %w", err)}
	}
	out := new(T)
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, &BindingError{Schema: t.Schema, Err: fmt.Errorf("decode: %w", err)}
	}
	if v, ok := any(out).(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, &BindingError{Schema: t.Schema, Err: err}
		}
	}
	return out, nil
}

// Canonicalize rewrites alias keys to their canonical names at every
// mapping level, including mappings inside lists. The input is not
// modified.
func (t Table) Canonicalize(m parse.Mapping) parse.Mapping {
	out, _ := canonicalizeValue(map[string]any(m), t.renames()).(map[string]any)
	return out
}

func (t Table) renames() map[string]string {
	renames := make(map[string]string, len(t.Fields))
	for _, f := range t.Fields {
		if f.Alias != "" {
			renames[f.Alias] = f.Name
		}
	}
	return renames
}

func (t Table) missingRequired(m parse.Mapping) []string {
	var missing []string
	for _, f := range t.Fields {
		if !f.Required {
			continue
		}
		if v, ok := m[f.Name]; !ok || v == nil {
			missing = append(missing, f.Name)
		}
	}
	return missing
}

func canonicalizeValue(v any, renames map[string]string) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			key := k
			if canonical, ok := renames[k]; ok {
				key = canonical
			}
			out[key] = canonicalizeValue(inner, renames)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = canonicalizeValue(item, renames)
		}
		return out
	default:
		return v
	}
}
