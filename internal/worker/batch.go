// Package worker fans whole analyses out across a bounded set of
// goroutines for batch mode, and spaces provider calls with per-provider
// rate limits. Each analysis stays internally sequential; concurrency
// lives here.
package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/ppiankov/krisis/internal/model"
)

// Analyzer runs one full analysis for a single batch input, a file path or
// a URL.
type Analyzer interface {
	AnalyzeInput(ctx context.Context, input string) (*model.AnalysisResult, error)
}

// Outcome ties one batch input to what its analysis produced.
type Outcome struct {
	Input  string
	Result *model.AnalysisResult
	Err    error
}

// Batch runs analyses for a list of inputs with bounded concurrency.
type Batch struct {
	analyzer Analyzer
	workers  int
}

// NewBatch creates a batch runner over the analyzer.
func NewBatch(analyzer Analyzer, workers int) *Batch {
	if workers <= 0 {
		workers = 1
	}
	return &Batch{analyzer: analyzer, workers: workers}
}

// Run analyzes every input and returns one outcome per input, in input
// order regardless of completion order. A canceled context marks the
// remaining inputs with the context's error instead of running them.
func (b *Batch) Run(ctx context.Context, inputs []string) []Outcome {
	outcomes := make([]Outcome, len(inputs))
	if len(inputs) == 0 {
		return outcomes
	}

	workers := b.workers
	if workers > len(inputs) {
		workers = len(inputs)
	}

	indexes := make(chan int, len(inputs))
	for i := range inputs {
		indexes <- i
	}
	close(indexes)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Each index is claimed by exactly one worker, so the
			// per-index writes below never race.
			for i := range indexes {
				if err := ctx.Err(); err != nil {
					outcomes[i] = Outcome{Input: inputs[i], Err: err}
					continue
				}
				result, err := b.analyzer.AnalyzeInput(ctx, inputs[i])
				outcomes[i] = Outcome{Input: inputs[i], Result: result, Err: err}
			}
		}()
	}
	wg.Wait()

	return outcomes
}

// ReadInputs loads batch inputs from a file, one per line. Blank lines,
// lines starting with #, and duplicates are dropped; order is preserved.
func ReadInputs(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open inputs file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var inputs []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || seen[line] {
			continue
		}
		seen[line] = true
		inputs = append(inputs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan inputs file: %w", err)
	}

	return inputs, nil
}
