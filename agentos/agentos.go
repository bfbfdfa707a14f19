// Package agentos serves agents, teams and workflows over HTTP.
//
//	os := agentos.New(
//	    agentos.WithConfig(cfg),
//	    agentos.WithAgents(basic, finance),
//	    agentos.WithTeams(contentTeam),
//	    agentos.WithDB(db),
//	)
//	err := os.Serve(ctx)
//
// Runs are started with POST /agents/:id/runs (and the team and workflow
// equivalents). Streaming runs use server-sent events.
package agentos

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	af "github.com/agentcookbook/gemini-agents/agentframework"
	"github.com/agentcookbook/gemini-agents/observability"
	"github.com/agentcookbook/gemini-agents/storage"
)

// Kind is the type of component served.
type Kind string

const (
	KindAgent    Kind = "agent"
	KindTeam     Kind = "team"
	KindWorkflow Kind = "workflow"
)

// AgentOS aggregates runners behind a gin engine.
type AgentOS struct {
	cfg       *Config
	agents    []af.Runner
	teams     []af.Runner
	workflows []af.Runner
	db        *storage.DB
	logger    *slog.Logger
	started   time.Time
	engine    *gin.Engine
}

// Option configures an [AgentOS].
type Option func(*AgentOS)

// WithConfig sets the server configuration. Defaults come from [LoadConfig]
// without a file.
func WithConfig(cfg *Config) Option {
	return func(o *AgentOS) { o.cfg = cfg }
}

// WithID overrides the configured OS id.
func WithID(id string) Option {
	return func(o *AgentOS) { o.cfg.ID = id }
}

// WithAgents serves agents under /agents.
func WithAgents(agents ...af.Runner) Option {
	return func(o *AgentOS) { o.agents = append(o.agents, agents...) }
}

// WithTeams serves teams under /teams.
func WithTeams(teams ...af.Runner) Option {
	return func(o *AgentOS) { o.teams = append(o.teams, teams...) }
}

// WithWorkflows serves workflows under /workflows.
func WithWorkflows(workflows ...af.Runner) Option {
	return func(o *AgentOS) { o.workflows = append(o.workflows, workflows...) }
}

// WithDB enables the session and memory endpoints.
func WithDB(db *storage.DB) Option {
	return func(o *AgentOS) { o.db = db }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *AgentOS) { o.logger = l }
}

// New builds the OS and its routes.
func New(opts ...Option) *AgentOS {
	o := &AgentOS{started: time.Now()}
	// Options may refer to cfg, so start from the defaults.
	def, err := LoadConfig("")
	if err != nil {
		def = &Config{ID: "agent-os", Port: DefaultPort}
	}
	o.cfg = def
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.cfg.Port == 0 {
		o.cfg.Port = DefaultPort
	}
	o.engine = o.newRouter()
	return o
}

// Handler returns the HTTP handler serving the API.
func (o *AgentOS) Handler() http.Handler { return o.engine }

// Config returns the effective configuration.
func (o *AgentOS) Config() *Config { return o.cfg }

// Addr is the listen address.
func (o *AgentOS) Addr() string { return net.JoinHostPort("", strconv.Itoa(o.cfg.Port)) }

// Serve listens on the configured port until ctx is done or the process
// receives SIGINT or SIGTERM, then shuts down gracefully. Tracing is
// initialized when enabled.
func (o *AgentOS) Serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName: o.cfg.ID,
		Endpoint:    o.cfg.Tracing.Endpoint,
		SampleRate:  o.cfg.Tracing.SampleRate,
		Enabled:     o.cfg.Tracing.Enabled,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			o.logger.Error("failed to shutdown tracer", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:              o.Addr(),
		Handler:           o.engine,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		o.logger.Info("agent os starting", "id", o.cfg.ID, "addr", fmt.Sprintf("http://localhost:%d", o.cfg.Port),
			"agents", len(o.agents), "teams", len(o.teams), "workflows", len(o.workflows))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	o.logger.Info("shutting down agent os")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("agent os forced to shutdown: %w", err)
	}
	return nil
}

func (o *AgentOS) lookup(kind Kind, id string) af.Runner {
	for _, r := range o.runners(kind) {
		if r.ID() == id {
			return r
		}
	}
	return nil
}

func (o *AgentOS) runners(kind Kind) []af.Runner {
	switch kind {
	case KindTeam:
		return o.teams
	case KindWorkflow:
		return o.workflows
	default:
		return o.agents
	}
}
