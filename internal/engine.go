package internal

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/gnolang/noreturn/internal/document"
	"github.com/gnolang/noreturn/internal/eval"
	"github.com/gnolang/noreturn/internal/expr"
	"github.com/gnolang/noreturn/internal/passes"
)

// Options configures an Engine.
type Options struct {
	// Parallel processes the components of a document concurrently.
	Parallel bool
	// Verify checks every rewrite with the evaluator.
	Verify bool
	// Strict turns structural problems in the output into errors.
	Strict bool
	// MaxVerifyInputs caps the number of bool properties enumerated.
	MaxVerifyInputs int
	// CacheDir enables the report cache when set.
	CacheDir string
}

// Engine lowers documents.
type Engine struct {
	logger   *zap.Logger
	opts     Options
	namer    *passes.Namer
	verifier *eval.Verifier
	cache    *Cache

	watcher    *fsnotify.Watcher
	watchDirs  []string
	isWatching atomic.Bool
	onReport   func(*Report, error)
}

// NewEngine creates a new engine. The logger may be nil.
func NewEngine(logger *zap.Logger, opts Options) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := eval.DefaultConfig()
	if opts.MaxVerifyInputs > 0 {
		cfg.MaxInputs = opts.MaxVerifyInputs
	}
	e := &Engine{
		logger:   logger,
		opts:     opts,
		namer:    passes.NewNamer(),
		verifier: eval.NewVerifier(cfg),
	}
	if opts.CacheDir != "" {
		cache, err := NewCache(opts.CacheDir)
		if err != nil {
			return nil, err
		}
		e.cache = cache
	}
	return e, nil
}

// AddCacheDependency invalidates cached reports whenever file changes. It is
// a no-op without a cache.
func (e *Engine) AddCacheDependency(file string) error {
	if e.cache == nil {
		return nil
	}
	return e.cache.AddDependency(file)
}

// Run lowers the document stored in filename. Reports of unchanged files
// are served from the cache when one is configured.
func (e *Engine) Run(filename string) (*Report, error) {
	if e.cache != nil {
		if report, ok := e.cache.Get(filename); ok {
			e.logger.Debug("cache hit", zap.String("file", filename))
			return report, nil
		}
	}

	source, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", filename, err)
	}
	report, err := e.RunSource(filename, source)
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		if err := e.cache.Set(filename, report); err != nil {
			e.logger.Warn("failed to cache report", zap.String("file", filename), zap.Error(err))
		}
	}
	return report, nil
}

// RunSource lowers a document given as YAML source. name is used in the
// report and in error messages.
func (e *Engine) RunSource(name string, source []byte) (*Report, error) {
	doc, err := document.Load(bytes.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	report, err := e.Lower(context.Background(), doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	report.Filename = name
	return report, nil
}

// Lower removes the return statements of doc in place and reports what was
// rewritten. doc is left untouched when an error is returned.
func (e *Engine) Lower(ctx context.Context, doc *document.Document) (*Report, error) {
	work := doc.Clone()
	changes, err := passes.RemoveReturn(ctx, work, passes.Options{
		Logger:        e.logger,
		Namer:         e.namer,
		Parallel:      e.opts.Parallel,
		KeepOriginals: true,
	})
	if err != nil {
		e.logger.Error("failed to remove return statements", zap.String("document", doc.Name), zap.Error(err))
		return nil, err
	}

	report := &Report{Document: doc.Name}
	components := make(map[string]*document.Component)
	for _, c := range work.Components() {
		report.Bindings += len(c.Bindings)
		components[c.Name] = c
	}

	var transformations []eval.Transformation
	for _, change := range changes {
		rw := newRewrite(change)
		c := components[change.Component]
		b, _ := c.Binding(change.Binding)
		rw.After = b.Expr.String()

		if err := expr.Validate(b.Expr); err != nil {
			if e.opts.Strict {
				return nil, fmt.Errorf("component %s, binding %s: invalid output: %w", c.Name, b.Name, err)
			}
			rw.Problems = append(rw.Problems, err.Error())
			e.logger.Warn("invalid output", zap.String("component", c.Name), zap.String("binding", b.Name), zap.Error(err))
		}

		report.Rewrites = append(report.Rewrites, rw)
		transformations = append(transformations, eval.Transformation{
			Component:  change.Component,
			Binding:    change.Binding,
			Original:   change.Original,
			Rewritten:  b.Expr,
			ReturnType: change.ReturnType,
			Properties: c.Properties,
		})
	}

	if e.opts.Verify && len(transformations) > 0 {
		batch := e.verifier.BatchVerify(transformations)
		for i, res := range batch.Results {
			rw := &report.Rewrites[i]
			rw.Verification = res.Report.Result.String()
			rw.Reason = res.Report.Reason.String()
			rw.Detail = res.Report.Detail
		}
		e.logger.Info("verified rewrites", zap.String("document", doc.Name), zap.String("summary", batch.Summary()))
	}

	var buf bytes.Buffer
	if err := document.Encode(&buf, work); err != nil {
		return nil, err
	}
	report.Output = buf.Bytes()
	*doc = *work

	e.logger.Info("lowered document",
		zap.String("document", doc.Name),
		zap.Int("bindings", report.Bindings),
		zap.Int("rewritten", len(report.Rewrites)),
	)
	return report, nil
}
