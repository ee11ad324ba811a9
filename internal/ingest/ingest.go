package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/krisis/internal/model"
	"github.com/ppiankov/krisis/internal/util"
)

const (
	defaultTitle            = "Untitled Analysis"
	defaultProblemStatement = "Problem context provided for analysis"
)

// Ingestor builds problem contexts from inline text, local files, and URLs.
type Ingestor struct {
	fetcher       *Fetcher
	robots        *util.RobotsGate
	respectRobots bool
}

// New creates an Ingestor with the given HTTP configuration.
func New(cfg model.HTTPConfig) *Ingestor {
	return &Ingestor{
		fetcher:       NewFetcher(cfg.Timeout, cfg.UserAgent, cfg.MaxBodySize, cfg.HTTPProxy, cfg.HTTPSProxy),
		robots:        util.NewRobotsGate(cfg.UserAgent, cfg.Timeout),
		respectRobots: cfg.RespectRobots,
	}
}

// Options carries the caller-supplied context fields that accompany a material.
type Options struct {
	Title               string
	ProblemStatement    string
	Objectives          []string
	Constraints         []string
	DeclaredAssumptions []string
	Focus               *model.DecisionFocus
}

func (o Options) titleOr(fallback string) string {
	if o.Title != "" {
		return o.Title
	}
	if fallback != "" {
		return fallback
	}
	return defaultTitle
}

func (o Options) problemStatement() string {
	if o.ProblemStatement != "" {
		return o.ProblemStatement
	}
	return defaultProblemStatement
}

func (o Options) context(title string, material model.ProvidedMaterial) model.ProblemContext {
	return model.ProblemContext{
		Title:               title,
		ProblemStatement:    o.problemStatement(),
		Objectives:          o.Objectives,
		Constraints:         o.Constraints,
		ProvidedMaterials:   []model.ProvidedMaterial{material},
		DeclaredAssumptions: o.DeclaredAssumptions,
		DecisionFocus:       o.Focus,
		RawContent:          material.Content,
	}
}

// FromText ingests inline text as the problem context material.
func (ing *Ingestor) FromText(text string, opts Options) model.ProblemContext {
	material := model.ProvidedMaterial{
		MaterialType: "text",
		Content:      text,
		Source:       "direct_input",
	}
	return Structure(opts.context(opts.titleOr(""), material))
}

// FromFile ingests a local file as the problem context material. The title
// defaults to the file name without its extension.
func (ing *Ingestor) FromFile(path string, opts Options) (model.ProblemContext, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.ProblemContext{}, fmt.Errorf("file not found: %s", path)
		}
		return model.ProblemContext{}, fmt.Errorf("read file: %w", err)
	}

	material := model.ProvidedMaterial{
		MaterialType: "document",
		Content:      string(data),
		Source:       path,
	}
	return Structure(opts.context(opts.titleOr(fileStem(path)), material)), nil
}

// FromURL fetches a web page, reduces it to visible text, and ingests the
// text as the problem context material. The title defaults to a de-slugged
// form of the final URL's last path segment.
func (ing *Ingestor) FromURL(ctx context.Context, rawURL string, opts Options) (model.ProblemContext, error) {
	if ing.respectRobots {
		allowed, err := ing.robots.Allowed(ctx, rawURL)
		if err != nil {
			return model.ProblemContext{}, fmt.Errorf("robots check: %w", err)
		}
		if !allowed {
			return model.ProblemContext{}, fmt.Errorf("robots.txt disallows fetching %s", rawURL)
		}
	}

	result, err := ing.fetcher.FetchWithRetry(ctx, rawURL)
	if err != nil {
		return model.ProblemContext{}, fmt.Errorf("fetch material: %w", err)
	}

	text, err := visibleText(result.HTML)
	if err != nil {
		return model.ProblemContext{}, fmt.Errorf("parse html: %w", err)
	}

	material := model.ProvidedMaterial{
		MaterialType: "web_page",
		Content:      text,
		Source:       result.FinalURL,
	}
	return Structure(opts.context(opts.titleOr(result.Subject), material)), nil
}

// Structure renders the context fields and materials into the sectioned
// layout the framework prompts consume. Contexts without materials fall back
// to their raw content unchanged.
func Structure(pctx model.ProblemContext) model.ProblemContext {
	if len(pctx.ProvidedMaterials) == 0 {
		pctx.StructuredContent = pctx.RawContent
		return pctx
	}

	parts := []string{fmt.Sprintf("PROBLEM STATEMENT: %s", pctx.ProblemStatement)}

	if len(pctx.Objectives) > 0 {
		parts = append(parts, "OBJECTIVES: "+strings.Join(pctx.Objectives, ", "))
	}
	if len(pctx.Constraints) > 0 {
		parts = append(parts, "CONSTRAINTS: "+strings.Join(pctx.Constraints, ", "))
	}
	if len(pctx.DeclaredAssumptions) > 0 {
		parts = append(parts, "DECLARED ASSUMPTIONS: "+strings.Join(pctx.DeclaredAssumptions, ", "))
	}

	for i, material := range pctx.ProvidedMaterials {
		parts = append(parts, fmt.Sprintf("\nPROVIDED MATERIAL [%d] (%s):", i+1, material.MaterialType))
		parts = append(parts, material.Content)
	}

	pctx.StructuredContent = strings.Join(parts, "\n\n")
	return pctx
}

// fileStem strips the directory and extension from a file path.
func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
