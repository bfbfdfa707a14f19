// Package workflow runs agents, teams and functions as a pipeline of steps.
//
//	wf := workflow.New(
//	    workflow.WithName("Research Pipeline"),
//	    workflow.WithSteps(
//	        workflow.Parallel("research", workflow.NewStep("web", webAgent), workflow.NewStep("deep", deepAgent)),
//	        workflow.NewStep("analysis", analyst),
//	    ),
//	)
//	resp, err := wf.Run(ctx, []af.Message{af.NewUserMessage("AI chips")})
//
// Each step sees the workflow input, the previous step's content and the
// session shared by the run. A step whose output sets Stop ends the run.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	af "github.com/agentcookbook/gemini-agents/agentframework"
	"github.com/agentcookbook/gemini-agents/storage"
)

var tracer = otel.Tracer("github.com/agentcookbook/gemini-agents/workflow")

// Workflow events, emitted on streaming runs next to the agents' own
// content updates.
const (
	EventStepStarted       af.UpdateEvent = "StepStarted"
	EventStepCompleted     af.UpdateEvent = "StepCompleted"
	EventWorkflowCompleted af.UpdateEvent = "WorkflowCompleted"
)

// Workflow is a named pipeline of steps. It implements
// [agentframework.Runner].
type Workflow struct {
	id          string
	name        string
	description string
	steps       []Node
	db          *storage.DB
}

var _ af.Runner = (*Workflow)(nil)

// Option configures a [Workflow].
type Option func(*Workflow)

func WithID(id string) Option         { return func(w *Workflow) { w.id = id } }
func WithName(name string) Option     { return func(w *Workflow) { w.name = name } }
func WithDescription(d string) Option { return func(w *Workflow) { w.description = d } }
func WithSteps(steps ...Node) Option  { return func(w *Workflow) { w.steps = append(w.steps, steps...) } }

// WithDB persists each run to workflow_runs and its session to
// agent_sessions.
func WithDB(db *storage.DB) Option { return func(w *Workflow) { w.db = db } }

// New creates a workflow.
func New(opts ...Option) *Workflow {
	w := &Workflow{}
	for _, o := range opts {
		o(w)
	}
	if w.id == "" {
		w.id = uuid.NewString()
	}
	return w
}

func (w *Workflow) ID() string          { return w.id }
func (w *Workflow) Name() string        { return w.name }
func (w *Workflow) Description() string { return w.description }

// Steps returns the top-level steps.
func (w *Workflow) Steps() []Node { return w.steps }

// Run executes the steps and returns the content of the last one as the
// response. Outputs of every step are in Extra["step_outputs"].
func (w *Workflow) Run(ctx context.Context, messages []af.Message, opts ...af.RunOption) (*af.AgentResponse, error) {
	return w.execute(ctx, messages, opts, nil)
}

// RunStream executes the steps, emitting step events and the content
// updates of the agents and teams it runs.
func (w *Workflow) RunStream(ctx context.Context, messages []af.Message, opts ...af.RunOption) (*af.AgentResponseStream, error) {
	return af.StreamAgentResponse(ctx, func(ctx context.Context, emit func(af.AgentResponseUpdate) error) (*af.AgentResponse, error) {
		return w.execute(ctx, messages, opts, emit)
	}), nil
}

func (w *Workflow) execute(ctx context.Context, messages []af.Message, opts []af.RunOption, emit func(af.AgentResponseUpdate) error) (*af.AgentResponse, error) {
	ctx, span := tracer.Start(ctx, "workflow.Run")
	defer span.End()

	cfg := af.ResolveRunOptions(opts...)
	session, _ := cfg.SessionFor()
	rc := &af.RunContext{
		RunID:     uuid.NewString(),
		SessionID: session.ID(),
		UserID:    session.UserID(),
		AgentID:   w.id,
		AgentName: w.name,
		Session:   session,
	}
	ctx = af.WithRunContext(ctx, rc)
	if emit != nil {
		ctx = withEmitter(ctx, emit)
	}
	span.SetAttributes(
		attribute.String("workflow.id", w.id),
		attribute.String("workflow.run_id", rc.RunID),
		attribute.String("session.id", rc.SessionID),
	)

	started := time.Now()
	in := &StepInput{
		Input:   af.LastUserText(messages),
		Media:   af.CollectMedia(messages),
		Session: session,
	}
	record := &storage.WorkflowRun{
		ID:         rc.RunID,
		WorkflowID: w.id,
		SessionID:  rc.SessionID,
		Input:      in.Input,
		Status:     storage.StatusRunning,
	}
	w.save(ctx, record)

	slog.DebugContext(ctx, "workflow run", "workflow_id", w.id, "run_id", rc.RunID, "steps", len(w.steps))
	outs, err := sequence(ctx, w.steps, in)
	record.StepOutputs = records(outs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		record.Status = storage.StatusError
		w.save(ctx, record)
		return nil, fmt.Errorf("%w: workflow %s: %w", af.ErrExecution, w.name, err)
	}

	resp := &af.AgentResponse{
		RunID:     rc.RunID,
		SessionID: rc.SessionID,
		AgentID:   w.id,
		AgentName: w.name,
		Extra:     map[string]any{"step_outputs": outs},
	}
	if len(outs) > 0 {
		content := outs[len(outs)-1].Content
		msg := af.NewAssistantMessage(content)
		msg.AuthorName = w.name
		resp.Messages = []af.Message{msg}
	}
	for _, r := range responses(outs) {
		resp.MemberResponses = append(resp.MemberResponses, r)
		resp.Usage = resp.Usage.Add(r.Usage)
	}
	resp.Metrics = af.RunMetrics{Usage: resp.Usage, Duration: time.Since(started)}

	record.Content = resp.Text()
	record.Status = storage.StatusCompleted
	w.save(ctx, record)
	if w.db != nil {
		h := storage.History(w.db, 0, storage.WithSessionType(storage.SessionWorkflow))
		if err := h.Record(ctx, rc, messages, resp); err != nil {
			slog.WarnContext(ctx, "recording workflow session failed", "workflow_id", w.id, "error", err)
		}
	}

	if err := emitUpdate(ctx, af.AgentResponseUpdate{
		Event:      EventWorkflowCompleted,
		Role:       af.RoleAssistant,
		AgentID:    w.id,
		AuthorName: w.name,
		RunID:      rc.RunID,
		Contents:   af.Contents{&af.TextContent{Text: resp.Text()}},
	}); err != nil {
		return nil, err
	}
	return resp, nil
}

func (w *Workflow) save(ctx context.Context, run *storage.WorkflowRun) {
	if w.db == nil {
		return
	}
	if err := w.db.WorkflowRuns().Save(ctx, run); err != nil {
		slog.WarnContext(ctx, "saving workflow run failed", "workflow_id", w.id, "error", err)
	}
}

// runNode runs n and reports it on streaming runs.
func runNode(ctx context.Context, n Node, in *StepInput) (*StepOutput, error) {
	ctx, span := tracer.Start(ctx, "workflow.step "+n.Name())
	defer span.End()

	if err := emitUpdate(ctx, af.AgentResponseUpdate{Event: EventStepStarted, AuthorName: n.Name()}); err != nil {
		return nil, err
	}
	out, err := n.Run(ctx, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if out.StepName == "" {
		out.StepName = n.Name()
	}
	span.SetAttributes(attribute.Bool("workflow.step.stop", out.Stop))

	if err := emitUpdate(ctx, af.AgentResponseUpdate{
		Event:      EventStepCompleted,
		Role:       af.RoleAssistant,
		AuthorName: out.StepName,
		Contents:   af.Contents{&af.TextContent{Text: out.Content}},
		Member:     out.Response,
	}); err != nil {
		return nil, err
	}
	return out, nil
}

func records(outs []*StepOutput) []storage.StepRecord {
	var recs []storage.StepRecord
	for _, o := range outs {
		r := storage.StepRecord{Name: o.StepName, Content: o.Content, Success: o.Success, Stopped: o.Stop}
		if o.Error != nil {
			r.Error = o.Error.Error()
		}
		recs = append(recs, r)
		recs = append(recs, records(o.Steps)...)
	}
	return recs
}

func responses(outs []*StepOutput) []*af.AgentResponse {
	var rs []*af.AgentResponse
	for _, o := range outs {
		if o.Response != nil {
			rs = append(rs, o.Response)
		}
		rs = append(rs, responses(o.Steps)...)
	}
	return rs
}

type emitterKey struct{}

func withEmitter(ctx context.Context, emit func(af.AgentResponseUpdate) error) context.Context {
	return context.WithValue(ctx, emitterKey{}, emit)
}

func streaming(ctx context.Context) bool {
	emit, _ := ctx.Value(emitterKey{}).(func(af.AgentResponseUpdate) error)
	return emit != nil
}

func emitUpdate(ctx context.Context, u af.AgentResponseUpdate) error {
	emit, _ := ctx.Value(emitterKey{}).(func(af.AgentResponseUpdate) error)
	if emit == nil {
		return nil
	}
	return emit(u)
}
