// Package lint runs the load, extract, check and report pipeline.
package lint

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/lintdoc/internal/document"
	"github.com/dgallion1/lintdoc/internal/loader"
	"github.com/dgallion1/lintdoc/internal/report"
	"github.com/dgallion1/lintdoc/internal/rules"
)

// Linter lints documents with a fixed rule set. It is safe for concurrent
// use: each run loads its own Document and rules share no state.
type Linter struct {
	loader  *loader.Loader
	checker *rules.Checker
	log     *slog.Logger
	stats   *Stats
}

// New builds a Linter keeping latency stats for statsWindow (an hour when
// zero). A nil logger discards output.
func New(l *loader.Loader, c *rules.Checker, log *slog.Logger, statsWindow time.Duration) *Linter {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Linter{
		loader:  l,
		checker: c,
		log:     log,
		stats:   NewStats(statsWindow),
	}
}

// Rules returns the registered rules in evaluation order.
func (l *Linter) Rules() []rules.Rule {
	return l.checker.Rules()
}

// Stats returns latency aggregates for recent runs.
func (l *Linter) Stats() StatsSnapshot {
	return l.stats.Snapshot()
}

// StatsWindow is how far back Stats looks.
func (l *Linter) StatsWindow() time.Duration {
	return l.stats.maxAge
}

// LintFile lints the document at path. The error is a *loader.IOError or
// *loader.FormatError when the document cannot be loaded.
func (l *Linter) LintFile(path string) (*report.Report, error) {
	return l.run(path, func() (*document.Document, error) {
		return l.loader.Load(path)
	})
}

// LintReader lints a document read from r; name selects the format.
func (l *Linter) LintReader(r io.Reader, name string) (*report.Report, error) {
	return l.run(name, func() (*document.Document, error) {
		return l.loader.LoadReader(r, name)
	})
}

func (l *Linter) run(source string, load func() (*document.Document, error)) (*report.Report, error) {
	start := time.Now()
	log := l.log.With("source", source)

	doc, err := load()
	if err != nil {
		l.stats.Record(time.Since(start), true)
		log.Warn("load failed", "kind", report.Kind(err), "error", err)
		return nil, err
	}
	log.Debug("document loaded", "sections", doc.Len(), "tables", len(doc.Tables()))

	results := l.checker.Check(doc)
	rep := report.New(source, doc, results)
	l.stats.Record(time.Since(start), false)

	for _, res := range results {
		if res.Verdict != rules.Pass {
			log.Debug("rule result", "rule", res.Rule, "verdict", res.Verdict, "message", res.Message)
		}
	}
	log.Info("lint complete",
		"passed", rep.Summary.Passed,
		"warnings", rep.Summary.Warnings,
		"failed", rep.Summary.Failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return rep, nil
}

// Input is one document in a batch.
type Input struct {
	Name string
	Data io.Reader
}

// Outcome is the result for one batch input. Exactly one of Report and Err
// is set.
type Outcome struct {
	Name   string
	Report *report.Report
	Err    error
}

// LintBatch lints inputs with at most workers running at once. Outcomes are
// returned in input order. Inputs not yet started when ctx is cancelled get
// ctx.Err().
func (l *Linter) LintBatch(ctx context.Context, inputs []Input, workers int) []Outcome {
	if workers < 1 {
		workers = 1
	}
	out := make([]Outcome, len(inputs))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, in := range inputs {
		out[i].Name = in.Name
		if err := ctx.Err(); err != nil {
			out[i].Err = err
			continue
		}
		select {
		case <-ctx.Done():
			out[i].Err = ctx.Err()
			continue
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			out[i].Report, out[i].Err = l.LintReader(in.Data, in.Name)
		}()
	}
	wg.Wait()
	return out
}
