// Package pipeline orchestrates one analysis run end to end: decision focus
// resolution, the per-framework inference loop (prompt, model call, parse,
// bind) with bounded retries, claim validation, and sufficiency aggregation.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/krisis/internal/cache"
	"github.com/ppiankov/krisis/internal/focus"
	"github.com/ppiankov/krisis/internal/framework"
	"github.com/ppiankov/krisis/internal/llm"
	"github.com/ppiankov/krisis/internal/model"
	"github.com/ppiankov/krisis/internal/parse"
	"github.com/ppiankov/krisis/internal/sufficiency"
	"github.com/ppiankov/krisis/internal/validate"
	"github.com/ppiankov/krisis/internal/worker"
)

// Pipeline orchestrates the complete analysis process
type Pipeline struct {
	provider llm.Provider
	registry *framework.Registry
	cache    *cache.ResponseCache // nil disables response caching
	limiter  *worker.Limiter
	logger   *zap.Logger
	config   *model.Config
}

// NewPipeline creates a pipeline with the given configuration. It fails when
// no inference provider is configured; analysis cannot run offline.
func NewPipeline(ctx context.Context, cfg *model.Config, logger *zap.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	provider, err := llm.NewProvider(ctx, llm.ConfigFrom(cfg))
	if err != nil {
		return nil, fmt.Errorf("initialize LLM provider: %w", err)
	}
	if provider == nil {
		return nil, fmt.Errorf("no LLM provider configured: set llm.provider or an API key environment variable")
	}

	var responseCache *cache.ResponseCache
	if cfg.Cache.Enabled {
		responseCache = cache.New(cfg.Cache.Dir, cfg.Cache.TTL)
	}

	return &Pipeline{
		provider: provider,
		registry: framework.NewRegistry(),
		cache:    responseCache,
		limiter:  worker.NewLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst),
		logger:   logger,
		config:   cfg,
	}, nil
}

// Analyze runs the requested frameworks sequentially against the context and
// aggregates their outcomes into one analysis record. Framework failures are
// recorded, not propagated; the only errors returned here are an unusable
// explicit decision focus or a canceled context.
func (p *Pipeline) Analyze(ctx context.Context, pctx *model.ProblemContext, frameworks []string) (*model.AnalysisResult, error) {
	if len(frameworks) == 0 {
		frameworks = p.config.Analysis.Frameworks
	}

	status, resolved, err := focus.Extract(pctx)
	if err != nil {
		return nil, fmt.Errorf("decision focus: %w", err)
	}
	if status == focus.StatusDerived {
		pctx.DecisionFocus = resolved
		p.logger.Info("decision focus derived from context",
			zap.String("question", resolved.DecisionQuestion),
			zap.Strings("options", resolved.Options))
	}

	results := make([]model.FrameworkResult, 0, len(frameworks))
	for _, name := range frameworks {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		results = append(results, p.RunFramework(ctx, name, pctx))
	}

	summary := sufficiency.Aggregate(pctx, results)

	result := &model.AnalysisResult{
		ID:               uuid.NewString(),
		CreatedAt:        time.Now().UTC(),
		ProblemContext:   pctx,
		FrameworkResults: results,
		Sufficiency:      &summary,
	}

	p.logger.Info("analysis complete",
		zap.String("analysis_id", result.ID),
		zap.Int("surviving_claims", len(result.SurvivingClaims())),
		zap.String("overall_status", string(summary.OverallStatus)))

	return result, nil
}

// RunFramework executes a single framework against the context and resolves
// its terminal status. Every outcome, including failure, is a value; this
// method does not return errors.
func (p *Pipeline) RunFramework(ctx context.Context, name string, pctx *model.ProblemContext) model.FrameworkResult {
	fw, ok := p.registry.Get(name)
	if !ok {
		return model.FrameworkResult{
			FrameworkName:   name,
			ExecutionStatus: model.StatusFailed,
			ExecutionReason: fmt.Sprintf("unknown framework: %s", name),
		}
	}

	if fw.RequiresFocus() && pctx.DecisionFocus == nil {
		return model.FrameworkResult{
			FrameworkName:   fw.Name(),
			ExecutionStatus: model.StatusFailed,
			ExecutionReason: fmt.Sprintf("framework %q requires a decision focus: provide a decision question, decision type, and options", fw.Name()),
		}
	}

	res, err := p.runWithRetries(ctx, fw, pctx)
	if err != nil {
		return model.FrameworkResult{
			FrameworkName:   fw.Name(),
			ExecutionStatus: model.StatusFailed,
			ExecutionReason: err.Error(),
		}
	}

	p.auditRejects(fw.Name(), res.Claims)

	final := validate.Sufficiency(res, pctx.DecisionFocus)
	if final.ExecutionStatus == model.StatusInsufficient {
		p.logger.Info("framework downgraded to insufficient",
			zap.String("framework", fw.Name()),
			zap.String("reason", final.ExecutionReason))
	}
	return final
}

// runWithRetries drives the call/extract/bind chain. Any stage failing
// triggers a fresh model call; the chain never retries a stage in isolation.
func (p *Pipeline) runWithRetries(ctx context.Context, fw framework.Framework, pctx *model.ProblemContext) (model.FrameworkResult, error) {
	system, user := fw.Prompts(pctx)
	attempts := p.config.Analysis.MaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			break
		}

		// A cached response that already failed to parse would fail again,
		// so retries go straight to the provider.
		content, err := p.complete(ctx, system, user, attempt == 1)
		if err != nil {
			lastErr = err
			p.logAttempt(fw.Name(), attempt, err)
			continue
		}

		mapping, err := parse.Extract(content)
		if err != nil {
			lastErr = err
			p.logAttempt(fw.Name(), attempt, err)
			continue
		}

		payload, err := fw.Bind(parse.Normalize(mapping))
		if err != nil {
			lastErr = err
			p.logAttempt(fw.Name(), attempt, err)
			continue
		}

		return model.FrameworkResult{
			FrameworkName:   fw.Name(),
			ExecutionStatus: model.StatusSuccessful,
			Claims:          payload.AnalyticalClaims(),
			Result:          payload,
		}, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil && lastErr == nil {
		lastErr = ctxErr
	}
	return model.FrameworkResult{}, fmt.Errorf("analysis failed after %d attempts: %v", attempts, lastErr)
}

// complete resolves one prompt pair to response text, consulting the cache
// and the per-provider rate limiter around the actual call.
func (p *Pipeline) complete(ctx context.Context, system, user string, useCache bool) (string, error) {
	if useCache && p.cache != nil {
		if resp, ok := p.cache.Get(p.provider.Name(), p.config.LLM.Model, system, user); ok {
			return resp.Content, nil
		}
	}

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx, p.provider.Name()); err != nil {
			return "", err
		}
	}

	resp, err := p.provider.Complete(ctx, llm.CompletionRequest{System: system, User: user})
	if err != nil {
		return "", err
	}

	if p.cache != nil {
		if err := p.cache.Set(p.provider.Name(), p.config.LLM.Model, system, user, resp); err != nil {
			p.logger.Warn("cache write failed", zap.Error(err))
		}
	}

	return resp.Content, nil
}

// auditRejects logs each claim the validator is about to drop; the drop
// itself is silent by contract.
func (p *Pipeline) auditRejects(frameworkName string, claims []model.AnalyticalClaim) {
	for _, c := range claims {
		if reason := validate.RejectReason(c); reason != "" {
			p.logger.Warn("claim rejected",
				zap.String("framework", frameworkName),
				zap.String("claim_type", string(c.ClaimType)),
				zap.String("reason", reason))
		}
	}
}

func (p *Pipeline) logAttempt(frameworkName string, attempt int, err error) {
	p.logger.Warn("framework attempt failed",
		zap.String("framework", frameworkName),
		zap.Int("attempt", attempt),
		zap.Error(err))
}
