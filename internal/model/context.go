package model

// ProvidedMaterial is one piece of source material attached to a problem
// context
type ProvidedMaterial struct {
	MaterialType string `json:"material_type"`    // document, notes, data, url
	Content      string `json:"content"`          // The material text
	Source       string `json:"source,omitempty"` // File path or URL it came from
}

// ProblemContext is the decision situation an analysis runs against. It is
// owned by a single run; frameworks read it and never write it.
type ProblemContext struct {
	Title               string             `json:"title"`
	ProblemStatement    string             `json:"problem_statement"`
	Objectives          []string           `json:"objectives,omitempty"`
	Constraints         []string           `json:"constraints,omitempty"`
	ProvidedMaterials   []ProvidedMaterial `json:"provided_materials,omitempty"`
	DeclaredAssumptions []string           `json:"declared_assumptions,omitempty"`
	DecisionFocus       *DecisionFocus     `json:"decision_focus,omitempty"`
	RawContent          string             `json:"raw_content,omitempty"`        // Ingested text as received
	StructuredContent   string             `json:"structured_content,omitempty"` // Sectioned prompt context
}

// PromptContext returns the text frameworks receive as their context block.
func (p *ProblemContext) PromptContext() string {
	if p.StructuredContent != "" {
		return p.StructuredContent
	}
	return p.RawContent
}

// Options returns the focus option set, or nil for an exploratory run.
func (p *ProblemContext) Options() []string {
	if p.DecisionFocus == nil {
		return nil
	}
	return p.DecisionFocus.Options
}
