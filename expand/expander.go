package expand

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ontokit/vskit/metrics"
	"github.com/ontokit/vskit/registry"
	"github.com/ontokit/vskit/render"
	"github.com/ontokit/vskit/schema"
)

// Options configures one expansion run.
type Options struct {
	// Template overrides every enum's pv_formula when non-empty.
	Template string

	// Timeout bounds each backend call.
	Timeout time.Duration

	Logger *slog.Logger
}

// Result is one successfully expanded enum.
type Result struct {
	Enum    string
	Records []render.Record
}

// Failure is one enum whose evaluation failed at the backend level.
type Failure struct {
	Enum string
	Err  error
}

// Report is the outcome of a batch expansion. Spec-level errors never
// appear here: they abort the batch before any backend call. Backend
// failures are per-enum; sibling enums still complete.
type Report struct {
	// RunID identifies the expansion run in logs and published payloads.
	RunID string

	Expanded []Result
	Failed   []Failure
}

// Expander expands named enums of one spec document against a resolver
// registry. The document and registry are read-only for the run.
type Expander struct {
	Document *schema.Document
	Registry *registry.Registry
	Options  Options
}

// New creates an expander.
func New(doc *schema.Document, reg *registry.Registry, opts Options) *Expander {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Expander{Document: doc, Registry: reg, Options: opts}
}

// Expand expands a single named enum. Spec-level and backend-level
// errors are both returned directly.
func (x *Expander) Expand(ctx context.Context, name string) (*Result, error) {
	tree, err := Resolve(x.Document, name)
	if err != nil {
		return nil, err
	}
	return x.evaluate(ctx, name, tree)
}

// ExpandAll expands the named enums as a batch. All names are resolved
// before any backend call, so cyclic definitions and dangling references
// fail the whole batch fast, with zero backend traffic. Backend-level
// failures are isolated per enum and collected in the report.
func (x *Expander) ExpandAll(ctx context.Context, names []string) (*Report, error) {
	trees := make(map[string]Expr, len(names))
	for _, name := range names {
		tree, err := Resolve(x.Document, name)
		if err != nil {
			return nil, err
		}
		trees[name] = tree
	}

	report := &Report{RunID: uuid.NewString()}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, name := range names {
		name := name
		wg.Add(1)
		// Plain WaitGroup rather than errgroup: one enum failing or being
		// cancelled must not affect its siblings.
		go func() {
			defer wg.Done()
			res, err := x.evaluate(ctx, name, trees[name])
			metrics.ObserveExpansion(err)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed = append(report.Failed, Failure{Enum: name, Err: err})
				return
			}
			report.Expanded = append(report.Expanded, *res)
		}()
	}
	wg.Wait()

	sort.Slice(report.Expanded, func(i, j int) bool { return report.Expanded[i].Enum < report.Expanded[j].Enum })
	sort.Slice(report.Failed, func(i, j int) bool { return report.Failed[i].Enum < report.Failed[j].Enum })

	x.Options.Logger.Info("expansion run complete",
		slog.String("run_id", report.RunID),
		slog.Int("expanded", len(report.Expanded)),
		slog.Int("failed", len(report.Failed)))

	return report, nil
}

// evaluate runs one resolved tree through the evaluator and renderer.
func (x *Expander) evaluate(ctx context.Context, name string, tree Expr) (*Result, error) {
	ev := &Evaluator{
		Registry: x.Registry,
		Timeout:  x.Options.Timeout,
		Logger:   x.Options.Logger,
	}
	values, err := ev.Eval(ctx, name, tree)
	if err != nil {
		return nil, err
	}

	inputs := make([]render.Input, 0, len(values))
	for _, v := range values {
		inputs = append(inputs, render.Input{Node: v.Node, Prerendered: v.Prerendered})
	}

	spec := x.Document.Enums[name]
	opts := render.Options{
		Formula:  render.Formula(spec.Formula()),
		Template: x.Options.Template,
	}
	return &Result{Enum: name, Records: render.Apply(inputs, opts)}, nil
}
