package agentframework

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// InvocationConfig controls the function invocation loop behavior.
type InvocationConfig struct {
	// MaxIterations is the maximum number of LLM round-trips for tool calling.
	// Default: 40.
	MaxIterations int

	// MaxConsecutiveErrors is the maximum number of consecutive tool errors
	// before aborting. Default: 3.
	MaxConsecutiveErrors int

	// TerminateOnUnknown aborts if the model calls an unknown tool.
	TerminateOnUnknown bool

	// IncludeDetailedErrors includes full error text in tool results sent
	// back to the model. When false, a generic error message is used.
	IncludeDetailedErrors bool
}

// DefaultInvocationConfig returns the default configuration.
func DefaultInvocationConfig() InvocationConfig {
	return InvocationConfig{
		MaxIterations:        40,
		MaxConsecutiveErrors: 3,
	}
}

func (c InvocationConfig) withDefaults() InvocationConfig {
	if c.MaxIterations <= 0 {
		c.MaxIterations = 40
	}
	if c.MaxConsecutiveErrors <= 0 {
		c.MaxConsecutiveErrors = 3
	}
	return c
}

// toolRunner resolves and invokes the function calls of one run. It keeps
// the per-run invocation counts and the consecutive error streak, so the
// synchronous and streaming loops share the same limits.
type toolRunner struct {
	tools             map[string]Tool
	config            InvocationConfig
	middleware        []FunctionMiddleware
	calls             map[string]int
	consecutiveErrors int
	invoked           int
}

func newToolRunner(tools []Tool, config InvocationConfig, mws []FunctionMiddleware) *toolRunner {
	m := make(map[string]Tool, len(tools))
	for _, t := range tools {
		m[t.Name()] = t
	}
	return &toolRunner{
		tools:      m,
		config:     config.withDefaults(),
		middleware: mws,
		calls:      make(map[string]int),
	}
}

// run executes calls and returns the tool messages to send back. handoff is
// true when a declaration-only tool was called and the caller must answer it.
func (r *toolRunner) run(ctx context.Context, calls []*FunctionCallContent) (results []Message, handoff bool, err error) {
	for _, call := range calls {
		tool, ok := r.tools[call.Name]
		if !ok {
			if r.config.TerminateOnUnknown {
				return nil, false, fmt.Errorf("%w: unknown tool %q", ErrToolExecution, call.Name)
			}
			slog.WarnContext(ctx, "unknown tool called", "tool", call.Name)
			results = append(results, NewToolMessage(call, "error: unknown tool"))
			r.consecutiveErrors++
			continue
		}

		if tool.DeclarationOnly() {
			return nil, true, nil
		}

		if limit := tool.MaxInvocations(); limit > 0 && r.calls[call.Name] >= limit {
			slog.WarnContext(ctx, "tool invocation limit reached", "tool", call.Name, "limit", limit)
			results = append(results, NewToolMessage(call,
				fmt.Sprintf("error: tool %s cannot be called more than %d times in this run", call.Name, limit)))
			continue
		}
		r.calls[call.Name]++
		r.invoked++

		result, invokeErr := invokeToolWithMiddleware(ctx, tool, json.RawMessage(call.Arguments), r.middleware)
		if invokeErr != nil {
			r.consecutiveErrors++
			slog.WarnContext(ctx, "tool invocation error",
				"tool", call.Name,
				"error", invokeErr,
				"consecutive_errors", r.consecutiveErrors,
			)
			if r.consecutiveErrors >= r.config.MaxConsecutiveErrors {
				return nil, false, fmt.Errorf("%w: max consecutive errors reached (%d): %w",
					ErrToolExecution, r.consecutiveErrors, invokeErr)
			}
			errMsg := "error invoking tool"
			if r.config.IncludeDetailedErrors {
				errMsg = invokeErr.Error()
			}
			results = append(results, NewToolMessage(call, errMsg))
			continue
		}

		r.consecutiveErrors = 0
		results = append(results, NewToolMessage(call, result))
	}
	return results, false, nil
}

// invokeFunctions runs the tool-calling loop: extract function_call content
// from the response, invoke matched tools, append results, and re-call the LLM.
//
// The returned ChatResponse holds every message produced during the loop
// (tool calls, tool results and the final answer) and the summed usage.
func invokeFunctions(
	ctx context.Context,
	chat ChatHandler,
	messages []Message,
	opts *ChatOptions,
	config InvocationConfig,
	fnMiddleware []FunctionMiddleware,
) (*ChatResponse, error) {
	runner := newToolRunner(opts.Tools, config, fnMiddleware)
	var produced []Message
	var usage UsageDetails

	for iteration := 0; iteration < runner.config.MaxIterations; iteration++ {
		resp, err := chat(ctx, messages, opts)
		if err != nil {
			return nil, err
		}
		usage = usage.Add(resp.Usage)
		produced = append(produced, resp.Messages...)

		calls := extractFunctionCalls(resp.Messages)
		if len(calls) == 0 {
			resp.Messages = produced
			resp.Usage = usage
			return resp, nil
		}

		results, handoff, err := runner.run(ctx, calls)
		if err != nil {
			return nil, err
		}
		if handoff {
			resp.Messages = produced
			resp.Usage = usage
			return resp, nil
		}

		messages = append(messages, resp.Messages...)
		messages = append(messages, results...)
		produced = append(produced, results...)
	}

	return nil, fmt.Errorf("%w: max iterations reached (%d)", ErrExecution, runner.config.MaxIterations)
}

// extractFunctionCalls finds all FunctionCallContent in the given messages.
func extractFunctionCalls(msgs []Message) []*FunctionCallContent {
	var calls []*FunctionCallContent
	for _, msg := range msgs {
		for _, c := range msg.Contents {
			if fc, ok := c.(*FunctionCallContent); ok {
				calls = append(calls, fc)
			}
		}
	}
	return calls
}

// invokeToolWithMiddleware runs the tool through the function middleware chain.
func invokeToolWithMiddleware(ctx context.Context, tool Tool, args json.RawMessage, mws []FunctionMiddleware) (any, error) {
	var handler FunctionHandler = func(ctx context.Context, t Tool, a json.RawMessage) (any, error) {
		return t.Invoke(ctx, a)
	}
	final := chain(handler, mws)
	return final(ctx, tool, args)
}
