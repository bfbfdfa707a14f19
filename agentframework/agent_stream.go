package agentframework

import (
	"context"
	"fmt"
)

// RunStream sends messages to the agent and returns a streaming response.
// Text, thoughts and tool calls are forwarded as they arrive; tool results
// are emitted as EventToolResult updates between model turns. The merged
// response, with the same post-run processing as [Agent.Run], is available
// from FinalResponse once the stream is drained.
//
// Agent middleware does not wrap streaming runs.
func (a *Agent) RunStream(ctx context.Context, messages []Message, opts ...RunOption) (*AgentResponseStream, error) {
	cfg := ResolveRunOptions(opts...)
	req := &AgentRequest{
		Messages:  messages,
		Session:   cfg.Session,
		Options:   cfg.Options,
		AgentID:   a.id,
		AgentName: a.name,
	}
	runCtx, st, err := a.prepareRun(ctx, req, cfg)
	if err != nil {
		return nil, err
	}

	return StreamAgentResponse(runCtx, func(ctx context.Context, emit func(AgentResponseUpdate) error) (*AgentResponse, error) {
		return a.streamLoop(ctx, st, emit)
	}), nil
}

func (a *Agent) streamLoop(ctx context.Context, st *runState, emit func(AgentResponseUpdate) error) (*AgentResponse, error) {
	runner := newToolRunner(st.opts.Tools, a.invocationConfig, a.functionMiddleware)
	messages := st.messages
	var produced []Message
	var usage UsageDetails

	for iteration := 0; iteration < runner.config.MaxIterations; iteration++ {
		chatResp, err := a.streamTurn(ctx, st, messages, emit)
		if err != nil {
			return nil, err
		}
		usage = usage.Add(chatResp.Usage)
		produced = append(produced, chatResp.Messages...)

		calls := extractFunctionCalls(chatResp.Messages)
		if len(calls) == 0 || len(st.opts.Tools) == 0 {
			chatResp.Messages = produced
			chatResp.Usage = usage
			return a.finishRun(ctx, st, chatResp), nil
		}

		results, handoff, err := runner.run(ctx, calls)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrExecution, err)
		}
		if handoff {
			chatResp.Messages = produced
			chatResp.Usage = usage
			return a.finishRun(ctx, st, chatResp), nil
		}
		for _, m := range results {
			if err := emit(AgentResponseUpdate{
				Event:      EventToolResult,
				Contents:   m.Contents,
				Role:       RoleTool,
				AgentID:    a.id,
				AuthorName: a.name,
				RunID:      st.rc.RunID,
			}); err != nil {
				return nil, err
			}
		}

		messages = append(messages, chatResp.Messages...)
		messages = append(messages, results...)
		produced = append(produced, results...)
	}

	return nil, fmt.Errorf("%w: max iterations reached (%d)", ErrExecution, runner.config.MaxIterations)
}

// streamTurn performs one streamed model call, forwarding every chunk.
func (a *Agent) streamTurn(ctx context.Context, st *runState, messages []Message, emit func(AgentResponseUpdate) error) (*ChatResponse, error) {
	stream, err := a.client.StreamResponse(ctx, messages, st.opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecution, err)
	}
	defer stream.Close()

	var updates []ChatResponseUpdate
	for u, err := range stream.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrExecution, err)
		}
		updates = append(updates, u)
		if len(u.Contents) == 0 {
			continue
		}
		if err := emit(AgentResponseUpdate{
			Contents:   u.Contents,
			Role:       RoleAssistant,
			AgentID:    a.id,
			AuthorName: a.name,
			RunID:      st.rc.RunID,
			ResponseID: u.ResponseID,
			Usage:      u.Usage,
			Raw:        u.Raw,
		}); err != nil {
			return nil, err
		}
	}
	return ChatResponseFromUpdates(updates), nil
}
