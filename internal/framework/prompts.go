package framework

import (
	_ "embed"
	"strings"
)

// Prompt templates ship inside the binary; frameworks never read the
// filesystem at run time.
var (
	//go:embed prompts/system.txt
	systemPrompt string

	//go:embed prompts/porter.txt
	porterPrompt string

	//go:embed prompts/porter_exploratory.txt
	porterExploratoryPrompt string

	//go:embed prompts/systems_dynamics.txt
	systemsDynamicsPrompt string
)

// renderPrompt substitutes {name} placeholders with their values. Unknown
// placeholders are left in place so a template drift shows up in the
// rendered prompt instead of vanishing.
func renderPrompt(tmpl string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

// targetSystemTitle derives a short label for the analyzed system from the
// first context line, capped at 50 characters.
func targetSystemTitle(context string) string {
	line := strings.TrimSpace(context)
	if idx := strings.IndexByte(line, '\n'); idx != -1 {
		line = strings.TrimSpace(line[:idx])
	}
	if line == "" {
		return "Target System"
	}
	if runes := []rune(line); len(runes) > 50 {
		return string(runes[:50])
	}
	return line
}
