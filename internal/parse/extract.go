package parse

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Mapping is the parsed form of a model response: a key/value tree whose
// top-level keys carry the schema aliases the binder resolves.
type Mapping = map[string]any

// ParseError reports that every extraction strategy failed. It carries the
// last strategy tried and that strategy's underlying error.
type ParseError struct {
	Strategy string // Name of the last strategy attempted
	Err      error  // Its underlying error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("no parse strategy produced a mapping (last tried %s): %v", e.Strategy, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// strategy is one way of recovering a mapping from raw model output.
type strategy struct {
	name    string
	attempt func(string) (Mapping, error)
}

// strategies are tried in order. JSON forms come strictly before YAML forms;
// models asked for JSON occasionally emit YAML, never the other way around.
var strategies = []strategy{
	{"fenced-json", parseFencedJSON},
	{"brace-scan", parseBraceJSON},
	{"clean-yaml", parseCleanYAML},
	{"indent-yaml", parseIndentYAML},
}

// Extract recovers a structured mapping from raw model output. Each strategy
// is attempted in order and the first success wins; when all fail the result
// is a ParseError wrapping the last failure.
func Extract(raw string) (Mapping, error) {
	var (
		lastName = strategies[0].name
		lastErr  error
	)
	for _, s := range strategies {
		m, err := s.attempt(raw)
		if err == nil {
			return m, nil
		}
		lastName = s.name
		lastErr = err
	}
	return nil, &ParseError{Strategy: lastName, Err: lastErr}
}

var fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

// parseFencedJSON scans every fenced code block and returns the first one
// that parses as a JSON object. Blocks holding valid but non-object JSON
// fall through to the next candidate.
func parseFencedJSON(raw string) (Mapping, error) {
	matches := fencedBlockRe.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return nil, fmt.Errorf("no fenced code blocks")
	}
	for _, m := range matches {
		var out Mapping
		if err := json.Unmarshal([]byte(strings.TrimSpace(m[1])), &out); err == nil && out != nil {
			return out, nil
		}
	}
	return nil, fmt.Errorf("no fenced block holds a JSON object")
}

// parseBraceJSON recovers a JSON object embedded in prose. Starting at each
// "{" in turn, it tracks brace depth to the matching "}" and tries a strict
// parse of that substring.
func parseBraceJSON(raw string) (Mapping, error) {
	for start := strings.IndexByte(raw, '{'); start != -1; start = indexByteFrom(raw, '{', start+1) {
		depth := 0
	scan:
		for i := start; i < len(raw); i++ {
			switch raw[i] {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					var out Mapping
					if err := json.Unmarshal([]byte(raw[start:i+1]), &out); err == nil && out != nil {
						return out, nil
					}
					break scan
				}
			}
		}
	}
	return nil, fmt.Errorf("no brace-matched JSON object")
}

func indexByteFrom(s string, c byte, from int) int {
	if from >= len(s) {
		return -1
	}
	i := strings.IndexByte(s[from:], c)
	if i == -1 {
		return -1
	}
	return from + i
}
