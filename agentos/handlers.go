package agentos

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	af "github.com/agentcookbook/gemini-agents/agentframework"
	"github.com/agentcookbook/gemini-agents/observability"
	"github.com/agentcookbook/gemini-agents/storage"
	"github.com/agentcookbook/gemini-agents/team"
	"github.com/agentcookbook/gemini-agents/workflow"
)

// SSE event names.
const (
	EventRunStarted     = "RunStarted"
	EventRunContent     = "RunContent"
	EventToolCall       = "ToolCallCompleted"
	EventMemberResponse = "MemberResponse"
	EventRunCompleted   = "RunCompleted"
	EventRunError       = "RunError"
)

// ComponentInfo describes a served agent, team or workflow.
type ComponentInfo struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Type        Kind            `json:"type"`
	Model       string          `json:"model,omitempty"`
	Tools       []string        `json:"tools,omitempty"`
	Members     []ComponentInfo `json:"members,omitempty"`
	Steps       []string        `json:"steps,omitempty"`
}

// RunRequest is the body of POST /{kind}s/:id/runs, as JSON or form.
type RunRequest struct {
	Message   string `json:"message" form:"message" binding:"required"`
	Stream    *bool  `json:"stream" form:"stream"`
	SessionID string `json:"session_id" form:"session_id"`
	UserID    string `json:"user_id" form:"user_id"`
}

// RunResponse is returned by non-streaming runs and carried by the
// RunCompleted event.
type RunResponse struct {
	RunID           string         `json:"run_id"`
	SessionID       string         `json:"session_id"`
	ComponentID     string         `json:"component_id"`
	Content         string         `json:"content"`
	Metrics         af.RunMetrics  `json:"metrics"`
	MemberResponses []RunResponse  `json:"member_responses,omitempty"`
	Extra           map[string]any `json:"extra,omitempty"`
}

func newRunResponse(componentID, sessionID string, resp *af.AgentResponse) RunResponse {
	out := RunResponse{
		RunID:       resp.RunID,
		SessionID:   sessionID,
		ComponentID: componentID,
		Content:     resp.Text(),
		Metrics:     resp.Metrics,
	}
	if out.Metrics.Usage == (af.UsageDetails{}) {
		out.Metrics.Usage = resp.Usage
	}
	for _, m := range resp.MemberResponses {
		id := m.AgentID
		if id == "" {
			id = m.AgentName
		}
		out.MemberResponses = append(out.MemberResponses, newRunResponse(id, sessionID, m))
	}
	return out
}

func describe(kind Kind, r af.Runner) ComponentInfo {
	info := ComponentInfo{ID: r.ID(), Name: r.Name(), Description: r.Description(), Type: kind}
	switch v := r.(type) {
	case *af.Agent:
		info.Model = v.ModelID()
		for _, t := range v.Tools() {
			info.Tools = append(info.Tools, t.Name())
		}
	case *team.Team:
		info.Model = v.Leader().ModelID()
		for _, m := range v.Members() {
			info.Members = append(info.Members, describe(KindAgent, m))
		}
	case *workflow.Workflow:
		for _, s := range v.Steps() {
			info.Steps = append(info.Steps, s.Name())
		}
	}
	return info
}

func (o *AgentOS) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "instantiated_at": o.started.UTC().Format(time.RFC3339)})
}

func (o *AgentOS) config(c *gin.Context) {
	list := func(kind Kind) []ComponentInfo {
		out := make([]ComponentInfo, 0, len(o.runners(kind)))
		for _, r := range o.runners(kind) {
			out = append(out, describe(kind, r))
		}
		return out
	}
	body := gin.H{
		"os_id":       o.cfg.ID,
		"name":        o.cfg.Name,
		"description": o.cfg.Description,
		"agents":      list(KindAgent),
		"teams":       list(KindTeam),
		"workflows":   list(KindWorkflow),
		"tracing":     o.cfg.Tracing.Enabled,
	}
	if o.db != nil {
		body["database"] = o.db.Dialect()
	}
	c.JSON(http.StatusOK, body)
}

func (o *AgentOS) listComponents(kind Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		out := make([]ComponentInfo, 0, len(o.runners(kind)))
		for _, r := range o.runners(kind) {
			out = append(out, describe(kind, r))
		}
		c.JSON(http.StatusOK, out)
	}
}

func (o *AgentOS) getComponent(kind Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		r := o.lookup(kind, c.Param("id"))
		if r == nil {
			notFound(c, kind, c.Param("id"))
			return
		}
		c.JSON(http.StatusOK, describe(kind, r))
	}
}

func (o *AgentOS) createRun(kind Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		r := o.lookup(kind, c.Param("id"))
		if r == nil {
			notFound(c, kind, c.Param("id"))
			return
		}
		var req RunRequest
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}
		if req.SessionID == "" {
			req.SessionID = uuid.NewString()
		}
		opts := []af.RunOption{af.WithSessionID(req.SessionID)}
		if req.UserID != "" {
			opts = append(opts, af.WithUserID(req.UserID))
		}
		msgs := []af.Message{af.NewUserMessage(req.Message)}

		// Form posts stream unless told otherwise, JSON posts do not.
		stream := c.ContentType() != gin.MIMEJSON
		if req.Stream != nil {
			stream = *req.Stream
		}
		if stream {
			o.streamRun(c, r, msgs, opts, req.SessionID)
			return
		}

		start := time.Now()
		resp, err := r.Run(c.Request.Context(), msgs, opts...)
		observability.RecordRun(r.Name(), resp, time.Since(start), err)
		if err != nil {
			o.logger.WarnContext(c.Request.Context(), "run failed", "component", r.ID(), "error", err)
			c.JSON(statusFor(err), gin.H{"detail": err.Error()})
			return
		}
		c.JSON(http.StatusOK, newRunResponse(r.ID(), req.SessionID, resp))
	}
}

func (o *AgentOS) streamRun(c *gin.Context, r af.Runner, msgs []af.Message, opts []af.RunOption, sessionID string) {
	ctx := c.Request.Context()
	start := time.Now()
	stream, err := r.RunStream(ctx, msgs, opts...)
	if err != nil {
		observability.RecordRun(r.Name(), nil, time.Since(start), err)
		c.JSON(statusFor(err), gin.H{"detail": err.Error()})
		return
	}
	defer stream.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	send(c, EventRunStarted, gin.H{"component_id": r.ID(), "session_id": sessionID})

	for {
		u, ok, err := stream.Next(ctx)
		if err != nil {
			observability.RecordRun(r.Name(), nil, time.Since(start), err)
			if !errors.Is(err, context.Canceled) {
				send(c, EventRunError, gin.H{"content": err.Error()})
			}
			return
		}
		if !ok {
			break
		}
		switch u.Event {
		case af.EventMemberResponse:
			if u.Member != nil {
				send(c, EventMemberResponse, newRunResponse(u.Member.AgentID, sessionID, u.Member))
			}
		case af.EventToolResult:
			send(c, EventToolCall, gin.H{"agent_id": u.AgentID, "run_id": u.RunID})
		default:
			if text := u.Text(); text != "" {
				send(c, EventRunContent, gin.H{
					"content":  text,
					"agent_id": u.AgentID,
					"run_id":   u.RunID,
					"event":    string(u.Event),
				})
			}
		}
	}

	resp, err := stream.FinalResponse(ctx)
	observability.RecordRun(r.Name(), resp, time.Since(start), err)
	if err != nil {
		send(c, EventRunError, gin.H{"content": err.Error()})
		return
	}
	send(c, EventRunCompleted, newRunResponse(r.ID(), sessionID, resp))
}

// send writes one server-sent event and flushes it. Client disconnects
// surface as a canceled request context.
func send(c *gin.Context, event string, data any) {
	c.SSEvent(event, data)
	c.Writer.Flush()
}

func (o *AgentOS) listSessions(c *gin.Context) {
	if !o.requireDB(c) {
		return
	}
	f := storage.SessionFilter{
		Type:        storage.SessionType(c.Query("type")),
		ComponentID: c.Query("component_id"),
		UserID:      c.Query("user_id"),
	}
	if l := c.Query("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "limit must be a non-negative integer"})
			return
		}
		f.Limit = n
	}
	out, err := o.db.Sessions().List(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (o *AgentOS) getSession(c *gin.Context) {
	if !o.requireDB(c) {
		return
	}
	s, err := o.db.Sessions().Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		storageError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (o *AgentOS) listSessionRuns(c *gin.Context) {
	if !o.requireDB(c) {
		return
	}
	ctx := c.Request.Context()
	s, err := o.db.Sessions().Get(ctx, c.Param("id"))
	if err != nil {
		storageError(c, err)
		return
	}
	if s.SessionType == storage.SessionWorkflow {
		runs, err := o.db.WorkflowRuns().List(ctx, s.ComponentID, s.ID)
		if err != nil {
			storageError(c, err)
			return
		}
		c.JSON(http.StatusOK, runs)
		return
	}
	runs, err := o.db.Runs().ListBySession(ctx, s.ID)
	if err != nil {
		storageError(c, err)
		return
	}
	c.JSON(http.StatusOK, runs)
}

func (o *AgentOS) deleteSession(c *gin.Context) {
	if !o.requireDB(c) {
		return
	}
	if err := o.db.Sessions().Delete(c.Request.Context(), c.Param("id")); err != nil {
		storageError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (o *AgentOS) listMemories(c *gin.Context) {
	if !o.requireDB(c) {
		return
	}
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "user_id is required"})
		return
	}
	out, err := o.db.Memories().List(c.Request.Context(), userID)
	if err != nil {
		storageError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (o *AgentOS) requireDB(c *gin.Context) bool {
	if o.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "no database configured"})
		return false
	}
	return true
}

func notFound(c *gin.Context, kind Kind, id string) {
	c.JSON(http.StatusNotFound, gin.H{"detail": string(kind) + " not found: " + id})
}

func storageError(c *gin.Context, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
}

// statusFor maps a run error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, af.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, af.ErrMissingCredential), errors.Is(err, af.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, af.ErrInvalidRequest), errors.Is(err, af.ErrModelNotFound):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
