package observability

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	af "github.com/agentcookbook/gemini-agents/agentframework"
)

const namespace = "gemini_agents"

var (
	AgentRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "agent",
			Name:      "runs_total",
			Help:      "Total number of agent, team and workflow runs",
		},
		[]string{"agent", "status"},
	)

	AgentRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "agent",
			Name:      "run_duration_seconds",
			Help:      "Agent run duration in seconds",
			Buckets:   []float64{.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"agent"},
	)

	TokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "tokens_total",
			Help:      "Tokens used by agent runs",
		},
		[]string{"agent", "type"}, // type: input/output/cached/reasoning
	)

	ToolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tool",
			Name:      "calls_total",
			Help:      "Total number of tool invocations",
		},
		[]string{"tool", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "path"},
	)
)

// RecordRun counts a finished run of the named agent.
func RecordRun(agent string, resp *af.AgentResponse, elapsed time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
		if errors.Is(err, context.Canceled) {
			status = "canceled"
		}
	}
	AgentRunsTotal.WithLabelValues(agent, status).Inc()
	AgentRunDuration.WithLabelValues(agent).Observe(elapsed.Seconds())
	if resp == nil {
		return
	}
	u := resp.Usage
	for typ, n := range map[string]int{
		"input":     u.InputTokens,
		"output":    u.OutputTokens,
		"cached":    u.CachedTokens,
		"reasoning": u.ReasoningTokens,
	} {
		if n > 0 {
			TokensTotal.WithLabelValues(agent, typ).Add(float64(n))
		}
	}
}

// AgentMetricsMiddleware records every non-streaming run of an agent.
func AgentMetricsMiddleware() af.AgentMiddleware {
	return func(next af.AgentHandler) af.AgentHandler {
		return func(ctx context.Context, req *af.AgentRequest) (*af.AgentResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			RecordRun(req.AgentName, resp, time.Since(start), err)
			return resp, err
		}
	}
}

// ToolMetricsMiddleware counts tool invocations.
func ToolMetricsMiddleware() af.FunctionMiddleware {
	return func(next af.FunctionHandler) af.FunctionHandler {
		return func(ctx context.Context, tool af.Tool, args json.RawMessage) (any, error) {
			res, err := next(ctx, tool, args)
			status := "success"
			if err != nil {
				status = "error"
			}
			ToolCallsTotal.WithLabelValues(tool.Name(), status).Inc()
			return res, err
		}
	}
}

// GinMetrics records HTTP request counts and latencies.
func GinMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}
		method := c.Request.Method

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
