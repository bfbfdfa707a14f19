// Package team coordinates several agents under a leader model. The leader
// sees the team roster and hands work to members through the
// delegate_task_to_member tool, then writes the final answer.
package team

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"

	af "github.com/agentcookbook/gemini-agents/agentframework"
)

// DelegateToolName is the leader's delegation tool.
const DelegateToolName = "delegate_task_to_member"

// Team is a leader agent plus its members. It implements
// [agentframework.Runner].
type Team struct {
	id          string
	name        string
	description string
	members     []af.Runner
	showMembers bool
	leader      *af.Agent
}

var _ af.Runner = (*Team)(nil)

type config struct {
	id, name, description string
	members               []af.Runner
	instructions          []string
	showMembers           bool
	agentOpts             []af.AgentOption
}

// Option configures a [Team].
type Option func(*config)

// WithID sets the team ID. It defaults to a slug of the name.
func WithID(id string) Option { return func(c *config) { c.id = id } }

// WithName sets the team name.
func WithName(name string) Option { return func(c *config) { c.name = name } }

// WithDescription sets the team description shown to the leader.
func WithDescription(d string) Option { return func(c *config) { c.description = d } }

// WithMembers adds members. A member with a Role method has its role listed
// in the roster.
func WithMembers(members ...af.Runner) Option {
	return func(c *config) { c.members = append(c.members, members...) }
}

// WithInstructions adds leader instructions.
func WithInstructions(lines ...string) Option {
	return func(c *config) { c.instructions = append(c.instructions, lines...) }
}

// WithShowMemberResponses marks member responses for display.
func WithShowMemberResponses() Option { return func(c *config) { c.showMembers = true } }

// WithMarkdown asks the leader to format its answer as markdown.
func WithMarkdown() Option {
	return func(c *config) { c.agentOpts = append(c.agentOpts, af.WithMarkdown()) }
}

// WithDatetimeContext adds the current time to the leader's instructions.
func WithDatetimeContext() Option {
	return func(c *config) { c.agentOpts = append(c.agentOpts, af.WithDatetimeContext()) }
}

// WithContextProvider attaches providers (history, memory, knowledge) to
// the leader.
func WithContextProvider(ps ...af.ContextProvider) Option {
	return func(c *config) { c.agentOpts = append(c.agentOpts, af.WithContextProvider(ps...)) }
}

// WithAgentOptions passes options straight to the leader agent.
func WithAgentOptions(opts ...af.AgentOption) Option {
	return func(c *config) { c.agentOpts = append(c.agentOpts, opts...) }
}

// New creates a team led by a model reached through client.
func New(client af.ChatClient, opts ...Option) *Team {
	cfg := &config{}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.id == "" {
		cfg.id = slug(cfg.name)
	}
	if cfg.id == "" {
		cfg.id = uuid.NewString()
	}

	t := &Team{
		id:          cfg.id,
		name:        cfg.name,
		description: cfg.description,
		members:     cfg.members,
		showMembers: cfg.showMembers,
	}

	leaderOpts := []af.AgentOption{
		af.WithID(t.id),
		af.WithName(t.name),
		af.WithInstructions(t.roster()),
		af.WithInstructions(cfg.instructions...),
		af.WithTools(t.delegateTool()),
	}
	if cfg.description != "" {
		leaderOpts = append(leaderOpts, af.WithDescription(cfg.description))
	}
	t.leader = af.NewAgent(client, append(leaderOpts, cfg.agentOpts...)...)
	return t
}

func (t *Team) ID() string          { return t.id }
func (t *Team) Name() string        { return t.name }
func (t *Team) Description() string { return t.description }

// Members returns the team members.
func (t *Team) Members() []af.Runner { return t.members }

// ShowMemberResponses reports whether member responses should be displayed
// with the team's answer.
func (t *Team) ShowMemberResponses() bool { return t.showMembers }

// Leader returns the leader agent.
func (t *Team) Leader() *af.Agent { return t.leader }

// Run lets the leader answer messages, delegating to members as it sees
// fit. The response carries every member response in MemberResponses.
func (t *Team) Run(ctx context.Context, messages []af.Message, opts ...af.RunOption) (*af.AgentResponse, error) {
	st := &runState{media: af.CollectMedia(messages)}
	resp, err := t.leader.Run(withState(ctx, st), messages, opts...)
	if err != nil {
		return nil, err
	}
	resp.MemberResponses = st.responses()
	return resp, nil
}

// RunStream streams the leader's answer. Each member response is emitted as
// an EventMemberResponse update as soon as the member finishes.
func (t *Team) RunStream(ctx context.Context, messages []af.Message, opts ...af.RunOption) (*af.AgentResponseStream, error) {
	return af.StreamAgentResponse(ctx, func(ctx context.Context, emit func(af.AgentResponseUpdate) error) (*af.AgentResponse, error) {
		st := &runState{media: af.CollectMedia(messages), emit: emit}
		stream, err := t.leader.RunStream(withState(ctx, st), messages, opts...)
		if err != nil {
			return nil, err
		}
		defer stream.Close()
		for u, err := range stream.Updates(ctx) {
			if err != nil {
				return nil, err
			}
			if err := emit(u); err != nil {
				return nil, err
			}
		}
		resp, err := stream.FinalResponse(ctx)
		if err != nil {
			return nil, err
		}
		resp.MemberResponses = st.responses()
		return resp, nil
	}), nil
}

// roster lists the members for the leader.
func (t *Team) roster() string {
	var b strings.Builder
	b.WriteString("You are the leader of a team. Delegate tasks to the members below with the ")
	b.WriteString(DelegateToolName)
	b.WriteString(" tool, then combine their work into the final answer.\n<team_members>\n")
	for _, m := range t.members {
		fmt.Fprintf(&b, "- Member ID: %s\n  Name: %s\n", m.ID(), m.Name())
		if r, ok := m.(interface{ Role() string }); ok && r.Role() != "" {
			fmt.Fprintf(&b, "  Role: %s\n", r.Role())
		}
		if d := m.Description(); d != "" {
			fmt.Fprintf(&b, "  Description: %s\n", d)
		}
	}
	b.WriteString("</team_members>")
	return b.String()
}

// member finds a member by ID, name or name slug.
func (t *Team) member(ref string) (af.Runner, bool) {
	for _, m := range t.members {
		if m.ID() == ref || strings.EqualFold(m.Name(), ref) || slug(m.Name()) == slug(ref) {
			return m, true
		}
	}
	return nil, false
}

type delegateArgs struct {
	MemberID       string `json:"member_id" jsonschema:"description=ID of the member to delegate to,required"`
	Task           string `json:"task" jsonschema:"description=A clear description of the task,required"`
	ExpectedOutput string `json:"expected_output,omitempty" jsonschema:"description=What the member should return"`
}

func (t *Team) delegateTool() af.Tool {
	return af.NewTypedTool(DelegateToolName,
		"Delegate a task to a team member and return the member's response.",
		func(ctx context.Context, a delegateArgs) (any, error) {
			m, ok := t.member(a.MemberID)
			if !ok {
				return fmt.Sprintf("Member %q not found. Use one of the listed member IDs.", a.MemberID), nil
			}
			st := stateFrom(ctx)

			task := a.Task
			if a.ExpectedOutput != "" {
				task += "\n\nExpected output: " + a.ExpectedOutput
			}
			var media af.Contents
			if st != nil {
				media = st.media
			}

			var opts []af.RunOption
			if rc := af.RunContextFrom(ctx); rc != nil {
				opts = rc.Forward()
			}
			resp, err := m.Run(ctx, []af.Message{af.NewUserMessage(task, media...)}, opts...)
			if err != nil {
				return nil, fmt.Errorf("member %s: %w", m.Name(), err)
			}
			if resp.AgentName == "" {
				resp.AgentName = m.Name()
			}
			if st != nil {
				if err := st.add(resp); err != nil {
					return nil, err
				}
			}
			return resp.Text(), nil
		})
}

// runState collects member responses for one team run.
type runState struct {
	media af.Contents
	emit  func(af.AgentResponseUpdate) error

	mu      sync.Mutex
	members []*af.AgentResponse
}

func (s *runState) add(resp *af.AgentResponse) error {
	s.mu.Lock()
	s.members = append(s.members, resp)
	s.mu.Unlock()
	if s.emit == nil {
		return nil
	}
	return s.emit(af.AgentResponseUpdate{
		Event:      af.EventMemberResponse,
		Role:       af.RoleAssistant,
		AgentID:    resp.AgentID,
		AuthorName: resp.AgentName,
		RunID:      resp.RunID,
		Member:     resp,
	})
}

func (s *runState) responses() []*af.AgentResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*af.AgentResponse(nil), s.members...)
}

type stateKey struct{}

func withState(ctx context.Context, s *runState) context.Context {
	return context.WithValue(ctx, stateKey{}, s)
}

func stateFrom(ctx context.Context) *runState {
	s, _ := ctx.Value(stateKey{}).(*runState)
	return s
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slug(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
}
