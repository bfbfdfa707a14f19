package agentframework

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/agentcookbook/gemini-agents/agentframework"

// LoggingMiddleware returns an [AgentMiddleware] that logs agent runs using slog.
func LoggingMiddleware(logger *slog.Logger) AgentMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next AgentHandler) AgentHandler {
		return func(ctx context.Context, req *AgentRequest) (*AgentResponse, error) {
			start := time.Now()
			logger.InfoContext(ctx, "agent run started",
				"agent", req.AgentName,
				"message_count", len(req.Messages),
			)

			resp, err := next(ctx, req)

			duration := time.Since(start)
			if err != nil {
				logger.ErrorContext(ctx, "agent run failed",
					"agent", req.AgentName,
					"duration", duration,
					"error", err,
				)
				return nil, err
			}

			logger.InfoContext(ctx, "agent run completed",
				"agent", req.AgentName,
				"run_id", resp.RunID,
				"duration", duration,
				"response_messages", len(resp.Messages),
				"input_tokens", resp.Usage.InputTokens,
				"output_tokens", resp.Usage.OutputTokens,
			)
			return resp, nil
		}
	}
}

// TracingMiddleware returns an [AgentMiddleware] that wraps each run in an
// "invoke_agent" span carrying gen_ai attributes. A nil tracer uses the
// global provider.
func TracingMiddleware(tracer trace.Tracer) AgentMiddleware {
	if tracer == nil {
		tracer = otel.Tracer(instrumentationName)
	}
	return func(next AgentHandler) AgentHandler {
		return func(ctx context.Context, req *AgentRequest) (*AgentResponse, error) {
			ctx, span := tracer.Start(ctx, "invoke_agent "+req.AgentName,
				trace.WithSpanKind(trace.SpanKindInternal),
				trace.WithAttributes(
					attribute.String("gen_ai.operation.name", "invoke_agent"),
					attribute.String("gen_ai.agent.id", req.AgentID),
					attribute.String("gen_ai.agent.name", req.AgentName),
				),
			)
			defer span.End()

			resp, err := next(ctx, req)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return nil, err
			}
			span.SetAttributes(
				attribute.String("gen_ai.conversation.id", resp.SessionID),
				attribute.Int("gen_ai.usage.input_tokens", resp.Usage.InputTokens),
				attribute.Int("gen_ai.usage.output_tokens", resp.Usage.OutputTokens),
			)
			return resp, nil
		}
	}
}

// ToolTracingMiddleware returns a [FunctionMiddleware] that records an
// "execute_tool" span per invocation.
func ToolTracingMiddleware(tracer trace.Tracer) FunctionMiddleware {
	if tracer == nil {
		tracer = otel.Tracer(instrumentationName)
	}
	return func(next FunctionHandler) FunctionHandler {
		return func(ctx context.Context, tool Tool, args json.RawMessage) (any, error) {
			ctx, span := tracer.Start(ctx, "execute_tool "+tool.Name(),
				trace.WithAttributes(
					attribute.String("gen_ai.operation.name", "execute_tool"),
					attribute.String("gen_ai.tool.name", tool.Name()),
				),
			)
			defer span.End()

			result, err := next(ctx, tool, args)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			return result, err
		}
	}
}
