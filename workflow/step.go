package workflow

import (
	"context"
	"fmt"
	"strings"

	af "github.com/agentcookbook/gemini-agents/agentframework"
)

// StepInput is what a step receives.
type StepInput struct {
	// Input is the text the workflow was run with.
	Input string
	// Media holds the attachments of the workflow input.
	Media af.Contents
	// PreviousStepContent is the content of the step that ran last.
	PreviousStepContent string
	// Session carries state shared by every step of the run.
	Session *af.Session

	outputs []*StepOutput
}

// StepContent returns the content of an earlier step by name. Steps nested
// in Parallel, Condition, Loop and Router blocks are found too.
func (in *StepInput) StepContent(name string) string {
	var find func([]*StepOutput) (string, bool)
	find = func(outs []*StepOutput) (string, bool) {
		for i := len(outs) - 1; i >= 0; i-- {
			if outs[i].StepName == name {
				return outs[i].Content, true
			}
			if c, ok := find(outs[i].Steps); ok {
				return c, true
			}
		}
		return "", false
	}
	c, _ := find(in.outputs)
	return c
}

// AllPreviousContent joins the content of every earlier top-level step.
func (in *StepInput) AllPreviousContent() string {
	var parts []string
	for _, o := range in.outputs {
		if o.Content != "" {
			parts = append(parts, fmt.Sprintf("=== %s ===\n%s", o.StepName, o.Content))
		}
	}
	return strings.Join(parts, "\n\n")
}

// Outputs returns the outputs of the earlier top-level steps.
func (in *StepInput) Outputs() []*StepOutput {
	return append([]*StepOutput(nil), in.outputs...)
}

// next returns the input for the step after out.
func (in *StepInput) next(out *StepOutput) *StepInput {
	n := *in
	n.outputs = append(append([]*StepOutput(nil), in.outputs...), out)
	n.PreviousStepContent = out.Content
	return &n
}

// message builds the prompt an agent or team step runs with.
func (in *StepInput) message() af.Message {
	text := in.Input
	if in.PreviousStepContent != "" {
		text += "\n\nOutput of the previous step:\n" + in.PreviousStepContent
	}
	return af.NewUserMessage(text, in.Media...)
}

// StepOutput is what a step produces.
type StepOutput struct {
	StepName string
	Content  string
	// Stop ends the workflow after this step.
	Stop bool
	// Success reports whether the step did its job. An executor output
	// that neither stops nor carries an Error counts as successful; a step
	// that stops the workflow sets Success itself.
	Success bool
	Error   error
	// Steps holds the outputs of nested steps.
	Steps []*StepOutput
	// Response is set when the step ran an agent or team.
	Response *af.AgentResponse
}

// Node is anything that can run as a workflow step.
type Node interface {
	Name() string
	Run(ctx context.Context, in *StepInput) (*StepOutput, error)
}

// Executor is a step implemented by a function.
type Executor func(ctx context.Context, in *StepInput) (*StepOutput, error)

// Step runs an agent, a team or an [Executor].
type Step struct {
	name     string
	runner   af.Runner
	executor Executor
}

// NewStep runs r with the workflow input and the previous step's content.
func NewStep(name string, r af.Runner) *Step {
	return &Step{name: name, runner: r}
}

// NewExecutorStep runs fn.
func NewExecutorStep(name string, fn Executor) *Step {
	return &Step{name: name, executor: fn}
}

func (s *Step) Name() string { return s.name }

func (s *Step) Run(ctx context.Context, in *StepInput) (*StepOutput, error) {
	if s.executor != nil {
		out, err := s.executor(ctx, in)
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = &StepOutput{}
		}
		out.StepName = s.name
		if out.Error != nil {
			out.Success = false
		} else if !out.Stop {
			out.Success = true
		}
		return out, nil
	}

	var opts []af.RunOption
	if rc := af.RunContextFrom(ctx); rc != nil {
		opts = rc.Forward()
	}
	msgs := []af.Message{in.message()}

	var resp *af.AgentResponse
	var err error
	if streaming(ctx) {
		resp, err = s.stream(ctx, msgs, opts)
	} else {
		resp, err = s.runner.Run(ctx, msgs, opts...)
	}
	if err != nil {
		return nil, err
	}
	return &StepOutput{StepName: s.name, Content: resp.Text(), Success: true, Response: resp}, nil
}

// stream runs the step's agent or team with RunStream, forwarding every
// update to the workflow's stream.
func (s *Step) stream(ctx context.Context, msgs []af.Message, opts []af.RunOption) (*af.AgentResponse, error) {
	stream, err := s.runner.RunStream(ctx, msgs, opts...)
	if err != nil {
		return nil, err
	}
	defer stream.Close()
	for u, err := range stream.Updates(ctx) {
		if err != nil {
			return nil, err
		}
		if err := emitUpdate(ctx, u); err != nil {
			return nil, err
		}
	}
	return stream.FinalResponse(ctx)
}
