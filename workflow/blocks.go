package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

// sequence runs nodes in order, feeding each the previous output. It stops
// after a step that sets Stop.
func sequence(ctx context.Context, nodes []Node, in *StepInput) ([]*StepOutput, error) {
	var outs []*StepOutput
	for _, n := range nodes {
		out, err := runNode(ctx, n, in)
		if err != nil {
			return outs, err
		}
		outs = append(outs, out)
		if out.Stop {
			break
		}
		in = in.next(out)
	}
	return outs, nil
}

// succeeded reports whether every output succeeded.
func succeeded(outs []*StepOutput) bool {
	for _, o := range outs {
		if !o.Success {
			return false
		}
	}
	return true
}

// group folds nested outputs into one.
func group(name string, outs []*StepOutput) *StepOutput {
	g := &StepOutput{StepName: name, Success: succeeded(outs), Steps: outs}
	if len(outs) > 0 {
		last := outs[len(outs)-1]
		g.Content = last.Content
		g.Stop = last.Stop
	}
	return g
}

// ParallelBlock runs its steps concurrently.
type ParallelBlock struct {
	name  string
	nodes []Node
}

// Parallel runs nodes concurrently with the same input. The contents are
// joined in declaration order. Every failure is reported.
func Parallel(name string, nodes ...Node) *ParallelBlock {
	return &ParallelBlock{name: name, nodes: nodes}
}

func (p *ParallelBlock) Name() string { return p.name }

func (p *ParallelBlock) Run(ctx context.Context, in *StepInput) (*StepOutput, error) {
	outs := make([]*StepOutput, len(p.nodes))
	errs := make([]error, len(p.nodes))

	var g errgroup.Group
	for i, n := range p.nodes {
		g.Go(func() error {
			out, err := runNode(ctx, n, in)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", n.Name(), err)
				return nil
			}
			outs[i] = out
			return nil
		})
	}
	g.Wait()

	var merr *multierror.Error
	for _, err := range errs {
		if err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	if err := merr.ErrorOrNil(); err != nil {
		return nil, err
	}

	res := &StepOutput{StepName: p.name, Success: succeeded(outs), Steps: outs}
	var parts []string
	for _, o := range outs {
		if o.Content != "" {
			parts = append(parts, fmt.Sprintf("## %s\n%s", o.StepName, o.Content))
		}
		res.Stop = res.Stop || o.Stop
	}
	res.Content = strings.Join(parts, "\n\n")
	return res, nil
}

// ConditionBlock runs its steps only when an evaluator agrees.
type ConditionBlock struct {
	name      string
	evaluator func(*StepInput) bool
	nodes     []Node
}

// Condition runs nodes in sequence when evaluator returns true. Otherwise
// the block is skipped and the previous content passes through.
func Condition(name string, evaluator func(*StepInput) bool, nodes ...Node) *ConditionBlock {
	return &ConditionBlock{name: name, evaluator: evaluator, nodes: nodes}
}

func (c *ConditionBlock) Name() string { return c.name }

func (c *ConditionBlock) Run(ctx context.Context, in *StepInput) (*StepOutput, error) {
	if !c.evaluator(in) {
		return &StepOutput{StepName: c.name, Content: in.PreviousStepContent, Success: true}, nil
	}
	outs, err := sequence(ctx, c.nodes, in)
	if err != nil {
		return nil, err
	}
	return group(c.name, outs), nil
}

// LoopBlock repeats its steps.
type LoopBlock struct {
	name          string
	nodes         []Node
	until         func([]*StepOutput) bool
	maxIterations int
}

// DefaultMaxIterations bounds a [Loop] without an explicit limit.
const DefaultMaxIterations = 3

// Loop runs nodes in sequence until returns true for an iteration's outputs
// or maxIterations is reached. until may be nil.
func Loop(name string, until func([]*StepOutput) bool, maxIterations int, nodes ...Node) *LoopBlock {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	return &LoopBlock{name: name, nodes: nodes, until: until, maxIterations: maxIterations}
}

func (l *LoopBlock) Name() string { return l.name }

func (l *LoopBlock) Run(ctx context.Context, in *StepInput) (*StepOutput, error) {
	var all []*StepOutput
	for i := 0; i < l.maxIterations; i++ {
		outs, err := sequence(ctx, l.nodes, in)
		if err != nil {
			return nil, err
		}
		all = append(all, outs...)
		if len(outs) > 0 {
			last := outs[len(outs)-1]
			if last.Stop {
				break
			}
			in = in.next(last)
		}
		if l.until != nil && l.until(outs) {
			break
		}
	}
	return group(l.name, all), nil
}

// RouterBlock picks which steps run.
type RouterBlock struct {
	name     string
	selector func(*StepInput) []Node
}

// Router runs, in sequence, the nodes selector picks for the input.
func Router(name string, selector func(*StepInput) []Node) *RouterBlock {
	return &RouterBlock{name: name, selector: selector}
}

func (r *RouterBlock) Name() string { return r.name }

func (r *RouterBlock) Run(ctx context.Context, in *StepInput) (*StepOutput, error) {
	outs, err := sequence(ctx, r.selector(in), in)
	if err != nil {
		return nil, err
	}
	return group(r.name, outs), nil
}
