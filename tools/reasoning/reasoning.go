// Package reasoning provides the think and analyze tools, a scratchpad the
// model uses to plan and check its work step by step.
package reasoning

import (
	"context"
	"fmt"
	"strings"
	"sync"

	af "github.com/agentcookbook/gemini-agents/agentframework"
)

// Step is one entry of the scratchpad.
type Step struct {
	Kind       string  `json:"kind"`
	Title      string  `json:"title"`
	Thought    string  `json:"thought,omitempty"`
	Action     string  `json:"action,omitempty"`
	Result     string  `json:"result,omitempty"`
	Analysis   string  `json:"analysis,omitempty"`
	NextAction string  `json:"next_action,omitempty"`
	Confidence float64 `json:"confidence"`
}

const instructions = `You have access to the think and analyze tools. Use think as a scratchpad to break down a problem and plan before acting. After a tool call or a step of work, use analyze to evaluate the result and choose next_action: continue, validate or final_answer.`

// Tools keeps one scratchpad per run.
type Tools struct {
	mu    sync.Mutex
	steps map[string][]Step
}

// New creates the reasoning tools.
func New() *Tools {
	return &Tools{steps: make(map[string][]Step)}
}

type thinkArgs struct {
	Title      string  `json:"title" jsonschema:"description=A concise title for this step,required"`
	Thought    string  `json:"thought" jsonschema:"description=Your detailed thought for this step,required"`
	Action     string  `json:"action,omitempty" jsonschema:"description=What you will do next"`
	Confidence float64 `json:"confidence,omitempty" jsonschema:"description=Confidence in this step from 0 to 1,minimum=0,maximum=1"`
}

type analyzeArgs struct {
	Title      string  `json:"title" jsonschema:"description=A concise title for this analysis,required"`
	Result     string  `json:"result" jsonschema:"description=The outcome being analyzed,required"`
	Analysis   string  `json:"analysis" jsonschema:"description=Your analysis of the result,required"`
	NextAction string  `json:"next_action,omitempty" jsonschema:"description=What to do next,enum=continue|validate|final_answer"`
	Confidence float64 `json:"confidence,omitempty" jsonschema:"description=Confidence in this analysis from 0 to 1,minimum=0,maximum=1"`
}

// Toolkit returns think and analyze with their usage instructions.
func (t *Tools) Toolkit() *af.Toolkit {
	k := af.NewToolkit("reasoning",
		af.NewTypedTool("think", "Think through a problem step by step before acting.",
			func(ctx context.Context, a thinkArgs) (any, error) {
				return t.record(ctx, Step{Kind: "think", Title: a.Title, Thought: a.Thought, Action: a.Action, Confidence: confidence(a.Confidence)}), nil
			}),
		af.NewTypedTool("analyze", "Analyze the result of a step and decide what to do next.",
			func(ctx context.Context, a analyzeArgs) (any, error) {
				next := a.NextAction
				if next == "" {
					next = "continue"
				}
				return t.record(ctx, Step{Kind: "analyze", Title: a.Title, Result: a.Result, Analysis: a.Analysis, NextAction: next, Confidence: confidence(a.Confidence)}), nil
			}),
	)
	k.Instructions = instructions
	return k
}

// Steps returns the scratchpad of a run.
func (t *Tools) Steps(runID string) []Step {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Step(nil), t.steps[runID]...)
}

// Reset drops the scratchpad of a run.
func (t *Tools) Reset(runID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.steps, runID)
}

// record appends s and returns the scratchpad so far as text.
func (t *Tools) record(ctx context.Context, s Step) string {
	var runID string
	if rc := af.RunContextFrom(ctx); rc != nil {
		runID = rc.RunID
	}
	t.mu.Lock()
	t.steps[runID] = append(t.steps[runID], s)
	steps := append([]Step(nil), t.steps[runID]...)
	t.mu.Unlock()

	var b strings.Builder
	for i, st := range steps {
		fmt.Fprintf(&b, "Step %d (%s): %s\n", i+1, st.Kind, st.Title)
		switch st.Kind {
		case "think":
			fmt.Fprintf(&b, "Reasoning: %s\n", st.Thought)
			if st.Action != "" {
				fmt.Fprintf(&b, "Action: %s\n", st.Action)
			}
		case "analyze":
			fmt.Fprintf(&b, "Result: %s\nAnalysis: %s\nNext action: %s\n", st.Result, st.Analysis, st.NextAction)
		}
		fmt.Fprintf(&b, "Confidence: %.2f\n\n", st.Confidence)
	}
	return strings.TrimSpace(b.String())
}

func confidence(c float64) float64 {
	switch {
	case c <= 0:
		return 0.8
	case c > 1:
		return 1
	}
	return c
}
