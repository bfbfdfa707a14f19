package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"

	af "github.com/agentcookbook/gemini-agents/agentframework"
	"github.com/agentcookbook/gemini-agents/observability"
)

func init() {
	color.NoColor = true
	gin.SetMode(gin.TestMode)
}

func TestConsoleHandler(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(observability.NewConsoleHandler(&buf, slog.LevelInfo))

	log.Debug("hidden")
	log.With("agent", "finance").WithGroup("run").Info("completed", "tokens", 42)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug record logged at info level: %q", out)
	}
	if !strings.Contains(out, "INFO  completed") {
		t.Errorf("missing level and message: %q", out)
	}
	if !strings.Contains(out, "agent=finance") || !strings.Contains(out, "run.tokens=42") {
		t.Errorf("missing attributes: %q", out)
	}
}

func TestInitTracingDisabled(t *testing.T) {
	shutdown, err := observability.InitTracing(context.Background(), observability.TracingConfig{ServiceName: "test"})
	if err != nil {
		t.Fatal(err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestRecordRun(t *testing.T) {
	resp := &af.AgentResponse{Usage: af.UsageDetails{InputTokens: 10, OutputTokens: 5}}
	before := testutil.ToFloat64(observability.TokensTotal.WithLabelValues("record-test", "input"))

	observability.RecordRun("record-test", resp, time.Second, nil)
	observability.RecordRun("record-test", nil, time.Second, errors.New("boom"))
	observability.RecordRun("record-test", nil, time.Second, context.Canceled)

	if got := testutil.ToFloat64(observability.TokensTotal.WithLabelValues("record-test", "input")) - before; got != 10 {
		t.Errorf("input tokens = %v, want 10", got)
	}
	for _, status := range []string{"success", "error", "canceled"} {
		if got := testutil.ToFloat64(observability.AgentRunsTotal.WithLabelValues("record-test", status)); got != 1 {
			t.Errorf("runs{status=%s} = %v, want 1", status, got)
		}
	}
}

func TestToolMetricsMiddleware(t *testing.T) {
	tool := af.NewTypedTool("metrics_ping", "ping", func(ctx context.Context, args struct{}) (any, error) {
		return "ok", nil
	})
	h := observability.ToolMetricsMiddleware()(func(ctx context.Context, tool af.Tool, args json.RawMessage) (any, error) {
		return tool.Invoke(ctx, args)
	})
	if _, err := h(context.Background(), tool, json.RawMessage(`{}`)); err != nil {
		t.Fatal(err)
	}
	if got := testutil.ToFloat64(observability.ToolCallsTotal.WithLabelValues("metrics_ping", "success")); got != 1 {
		t.Errorf("tool calls = %v, want 1", got)
	}
}

func TestGinMetrics(t *testing.T) {
	r := gin.New()
	r.Use(observability.GinMetrics())
	r.GET("/ping/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping/1", nil))

	if got := testutil.ToFloat64(observability.HTTPRequestsTotal.WithLabelValues("GET", "/ping/:id", "204")); got != 1 {
		t.Errorf("requests = %v, want 1", got)
	}
}
