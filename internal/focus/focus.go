// Package focus derives a decision focus from problem context material when
// the caller did not supply one explicitly. Derivation is conservative: when
// the text does not clearly name a question and at least two alternatives,
// the extraction reports insufficient and the run proceeds exploratory.
package focus

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/krisis/internal/model"
)

// Status reports how the decision focus was obtained.
type Status string

const (
	StatusExplicit     Status = "explicit"     // Supplied by the caller
	StatusDerived      Status = "derived"      // Inferred from the material
	StatusInsufficient Status = "insufficient" // No confident derivation possible
)

// minContextLength guards against deriving a focus from trivial input.
const minContextLength = 100

// maxDerivedOptions caps how many candidate options a derivation keeps.
const maxDerivedOptions = 5

// Extract returns the context's decision focus, deriving one from the
// material when none was supplied. An invalid explicit focus is an error;
// a failed derivation is not, it just leaves the focus nil.
func Extract(pctx *model.ProblemContext) (Status, *model.DecisionFocus, error) {
	if pctx.DecisionFocus != nil {
		if err := validateExplicit(pctx.DecisionFocus); err != nil {
			return StatusInsufficient, nil, err
		}
		return StatusExplicit, pctx.DecisionFocus, nil
	}

	derived := derive(pctx)
	if derived == nil {
		return StatusInsufficient, nil, nil
	}
	return StatusDerived, derived, nil
}

func validateExplicit(focus *model.DecisionFocus) error {
	if strings.TrimSpace(focus.DecisionQuestion) == "" {
		return fmt.Errorf("decision focus requires a decision question")
	}
	seen := make(map[string]struct{}, len(focus.Options))
	for _, opt := range focus.Options {
		seen[opt] = struct{}{}
	}
	if len(seen) < 2 {
		return fmt.Errorf("decision focus requires at least 2 distinct options, got %d", len(seen))
	}
	return nil
}

func derive(pctx *model.ProblemContext) *model.DecisionFocus {
	text := collectText(pctx)
	if len(text) < minContextLength {
		return nil
	}

	question := deriveQuestion(text, pctx)
	if question == "" {
		return nil
	}

	options := deriveOptions(question, text)
	if len(options) < 2 {
		return nil
	}

	focus, err := model.NewDecisionFocus(question, inferType(question, options), options)
	if err != nil {
		return nil
	}
	return focus
}

// collectText gathers every text surface a derivation may draw from.
func collectText(pctx *model.ProblemContext) string {
	var parts []string
	for _, material := range pctx.ProvidedMaterials {
		parts = append(parts, material.Content)
	}
	if pctx.ProblemStatement != "" {
		parts = append(parts, pctx.ProblemStatement)
	}
	parts = append(parts, pctx.Objectives...)
	return strings.Join(parts, " ")
}

var decisionMarkers = []string{"should we", "should i", "decide", "choose", "select", "which option"}

// deriveQuestion looks for an interrogative sentence carrying a decision
// marker, then falls back to a decision-flavored problem statement.
func deriveQuestion(text string, pctx *model.ProblemContext) string {
	for _, sentence := range splitSentences(text) {
		if !strings.HasSuffix(sentence, "?") {
			continue
		}
		lower := strings.ToLower(sentence)
		for _, marker := range decisionMarkers {
			if strings.Contains(lower, marker) {
				return sentence
			}
		}
	}

	stmt := strings.TrimSpace(pctx.ProblemStatement)
	lower := strings.ToLower(stmt)
	for _, marker := range []string{"should", "decide", "choose", "select"} {
		if strings.Contains(lower, marker) {
			if !strings.HasSuffix(stmt, "?") {
				stmt += "?"
			}
			return stmt
		}
	}

	return ""
}

var (
	labeledOptionRe = regexp.MustCompile(`(?mi)^\s*(?:option|choice|alternative|path)\s+\w+\s*[:.]\s*([^\n]{5,})`)
	numberedItemRe  = regexp.MustCompile(`(?m)^\s*\d+[.)]\s+([^.?!\n]{5,})`)
)

// deriveOptions collects candidate options, preferring labeled and numbered
// lists over contrasts embedded in the question itself.
func deriveOptions(question, text string) []string {
	seen := make(map[string]bool)
	var options []string
	add := func(opt string) {
		opt = strings.TrimSpace(strings.Trim(opt, " .,;:"))
		if len(opt) <= 3 || seen[strings.ToLower(opt)] {
			return
		}
		seen[strings.ToLower(opt)] = true
		options = append(options, opt)
	}

	for _, match := range labeledOptionRe.FindAllStringSubmatch(text, -1) {
		add(match[1])
	}
	for _, match := range numberedItemRe.FindAllStringSubmatch(text, -1) {
		add(match[1])
	}

	if len(options) < 2 {
		for _, opt := range splitContrast(question) {
			add(opt)
		}
	}

	if len(options) > maxDerivedOptions {
		options = options[:maxDerivedOptions]
	}
	return options
}

// splitContrast splits "should we X or Y?" style questions into their
// contrasted alternatives.
func splitContrast(question string) []string {
	q := strings.TrimSuffix(strings.TrimSpace(question), "?")
	lower := strings.ToLower(q)

	sep := ""
	for _, candidate := range []string{" versus ", " vs. ", " vs ", " or "} {
		if strings.Contains(lower, candidate) {
			sep = candidate
			break
		}
	}
	if sep == "" {
		return nil
	}

	idx := strings.Index(lower, sep)
	left := strings.TrimSpace(q[:idx])
	right := strings.TrimSpace(q[idx+len(sep):])

	// Drop the interrogative lead-in from the left alternative
	for _, lead := range []string{"should we ", "should i ", "do we ", "whether to "} {
		if i := strings.Index(strings.ToLower(left), lead); i >= 0 {
			left = strings.TrimSpace(left[i+len(lead):])
			break
		}
	}

	if left == "" || right == "" {
		return nil
	}
	return []string{left, right}
}

// inferType classifies the decision from the question's phrasing, then from
// the option count.
func inferType(question string, options []string) model.DecisionType {
	lower := strings.ToLower(question)

	for _, marker := range []string{"stress test", "scenario", "what if", "assuming"} {
		if strings.Contains(lower, marker) {
			return model.DecisionStressTest
		}
	}
	for _, marker := range []string{" vs ", " vs. ", "versus", "compare", "between"} {
		if strings.Contains(lower, marker) {
			return model.DecisionCompare
		}
	}

	if len(options) <= 3 {
		return model.DecisionCompare
	}
	return model.DecisionExplore
}

// splitSentences breaks text on sentence terminators, keeping the terminator
// attached so interrogatives stay recognizable.
func splitSentences(text string) []string {
	text = strings.ReplaceAll(text, "\n", " ")

	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)

		if r == '.' || r == '!' || r == '?' {
			// Look ahead to avoid splitting on abbreviations
			if i+1 >= len(text) || text[i+1] == ' ' || text[i+1] == '\t' {
				sentence := strings.TrimSpace(current.String())
				if len(sentence) >= 10 {
					sentences = append(sentences, sentence)
				}
				current.Reset()
			}
		}
	}

	if trailing := strings.TrimSpace(current.String()); len(trailing) >= 10 {
		sentences = append(sentences, trailing)
	}

	return sentences
}
