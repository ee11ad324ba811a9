package parse

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var boldRe = regexp.MustCompile(`\*\*([^*]+)\*\*`)

// stripMarkdown drops fence lines and removes **bold** markers outside
// fences. Fence content is preserved verbatim.
func stripMarkdown(raw string) string {
	lines := strings.Split(raw, "\n")
	cleaned := make([]string, 0, len(lines))
	inFence := false
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			cleaned = append(cleaned, line)
			continue
		}
		cleaned = append(cleaned, boldRe.ReplaceAllString(line, "$1"))
	}
	return strings.Join(cleaned, "\n")
}

// parseCleanYAML strips markdown decoration and hands the rest to a
// standards-compliant YAML parse. Succeeds only when the document is a
// mapping.
func parseCleanYAML(raw string) (Mapping, error) {
	var out map[string]any
	if err := yaml.Unmarshal([]byte(stripMarkdown(raw)), &out); err != nil {
		return nil, fmt.Errorf("yaml parse: %w", err)
	}
	if out == nil {
		return nil, fmt.Errorf("yaml document is not a mapping")
	}
	return out, nil
}

// parseIndentYAML handles the loose, indentation-only shape some models emit
// when asked for YAML and strict parsing has already failed: top-level
// "key: value" pairs and "key:" section headers at zero indentation, nested
// "key: value" pairs one level in, and "- item" lists one level deeper.
// Blank lines and "#" comments are tolerated anywhere.
func parseIndentYAML(raw string) (Mapping, error) {
	lines := strings.Split(raw, "\n")
	out := Mapping{}
	i := 0
	for i < len(lines) {
		stripped := strings.TrimSpace(lines[i])
		if stripped == "" || strings.HasPrefix(stripped, "#") {
			i++
			continue
		}
		key, value, ok := splitKeyValue(stripped)
		if indentOf(lines[i]) > 0 || !ok {
			i++
			continue
		}
		if value != "" {
			out[key] = value
			i++
			continue
		}
		section, next := parseSection(lines, i+1)
		out[key] = section
		i = next
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no key/value structure found")
	}
	return out, nil
}

// parseSection consumes the indented block under a bare "key:" header and
// returns the next unconsumed line index. The block ends at the first
// non-blank line back at zero indentation.
func parseSection(lines []string, start int) (map[string]any, int) {
	section := map[string]any{}
	j := start
	for j < len(lines) {
		stripped := strings.TrimSpace(lines[j])
		if stripped == "" || strings.HasPrefix(stripped, "#") {
			j++
			continue
		}
		indent := indentOf(lines[j])
		if indent <= 0 {
			break
		}
		// Stray list items with no owning key are skipped, as are lines
		// with no colon at all.
		if strings.HasPrefix(stripped, "-") {
			j++
			continue
		}
		key, value, ok := splitKeyValue(stripped)
		if !ok {
			j++
			continue
		}
		if value != "" {
			section[key] = value
			j++
			continue
		}
		items, next := parseList(lines, j+1, indent)
		section[key] = items
		j = next
	}
	return section, j
}

// parseList collects the "- item" lines under a list key. An item keeps the
// list open whatever its indentation; the list ends at the first non-item
// line back at or left of the owning key's indentation.
func parseList(lines []string, start, keyIndent int) ([]any, int) {
	items := []any{}
	k := start
	for k < len(lines) {
		stripped := strings.TrimSpace(lines[k])
		if stripped == "" || strings.HasPrefix(stripped, "#") {
			k++
			continue
		}
		if !strings.HasPrefix(stripped, "-") {
			if indentOf(lines[k]) <= keyIndent {
				break
			}
			k++
			continue
		}
		if item := strings.TrimSpace(stripped[1:]); item != "" {
			items = append(items, item)
		}
		k++
	}
	return items, k
}

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

func splitKeyValue(stripped string) (key, value string, ok bool) {
	idx := strings.Index(stripped, ":")
	if idx == -1 {
		return "", "", false
	}
	return strings.TrimSpace(stripped[:idx]), strings.TrimSpace(stripped[idx+1:]), true
}
