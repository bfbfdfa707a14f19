package team_test

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	af "github.com/agentcookbook/gemini-agents/agentframework"
	"github.com/agentcookbook/gemini-agents/team"
)

type mockClient struct {
	responseFn func(ctx context.Context, msgs []af.Message, opts *af.ChatOptions) (*af.ChatResponse, error)
}

func (m *mockClient) Response(ctx context.Context, msgs []af.Message, opts *af.ChatOptions) (*af.ChatResponse, error) {
	return m.responseFn(ctx, msgs, opts)
}

func (m *mockClient) StreamResponse(ctx context.Context, msgs []af.Message, opts *af.ChatOptions) (*af.ResponseStream[af.ChatResponseUpdate], error) {
	return af.NewResponseStream(ctx, func(ctx context.Context, ch chan<- af.ChatResponseUpdate) error {
		resp, err := m.responseFn(ctx, msgs, opts)
		if err != nil {
			return err
		}
		for _, msg := range resp.Messages {
			ch <- af.ChatResponseUpdate{Role: msg.Role, Contents: msg.Contents}
		}
		ch <- af.ChatResponseUpdate{FinishReason: af.FinishReasonStop}
		return nil
	}), nil
}

func call(id, name string, args any) *af.ChatResponse {
	raw, _ := json.Marshal(args)
	return &af.ChatResponse{Messages: []af.Message{{
		Role:     af.RoleAssistant,
		Contents: af.Contents{&af.FunctionCallContent{CallID: id, Name: name, Arguments: string(raw)}},
	}}}
}

func text(s string) *af.ChatResponse {
	return &af.ChatResponse{Messages: []af.Message{af.NewAssistantMessage(s)}}
}

// leaderScript delegates once to member and then answers.
func leaderScript(member string) *mockClient {
	var mu sync.Mutex
	turns := map[string]int{}
	return &mockClient{responseFn: func(_ context.Context, msgs []af.Message, opts *af.ChatOptions) (*af.ChatResponse, error) {
		key := af.LastUserText(msgs)
		mu.Lock()
		turns[key]++
		n := turns[key]
		mu.Unlock()
		if n == 1 {
			return call("d1", team.DelegateToolName, map[string]string{
				"member_id": member, "task": "Write a haiku about Go", "expected_output": "three lines",
			}), nil
		}
		last := msgs[len(msgs)-1]
		for _, c := range last.Contents {
			if fr, ok := c.(*af.FunctionResultContent); ok {
				return text("Final: " + fr.Result.(string)), nil
			}
		}
		return text("no result"), nil
	}}
}

type recordingMember struct {
	mu    sync.Mutex
	msgs  []af.Message
	agent *af.Agent
}

func newWriter() *recordingMember {
	r := &recordingMember{}
	client := &mockClient{responseFn: func(_ context.Context, msgs []af.Message, _ *af.ChatOptions) (*af.ChatResponse, error) {
		r.mu.Lock()
		r.msgs = append(r.msgs, msgs...)
		r.mu.Unlock()
		return text("gophers run in lines"), nil
	}}
	r.agent = af.NewAgent(client, af.WithID("writer"), af.WithName("Writer"), af.WithRole("Writes drafts"))
	return r
}

func TestTeamRunDelegates(t *testing.T) {
	writer := newWriter()
	tm := team.New(leaderScript("writer"),
		team.WithName("Content Team"),
		team.WithMembers(writer.agent),
		team.WithShowMemberResponses(),
	)
	if tm.ID() != "content-team" {
		t.Errorf("ID = %q", tm.ID())
	}
	if !strings.Contains(tm.Leader().Instructions(), "Member ID: writer") || !strings.Contains(tm.Leader().Instructions(), "Role: Writes drafts") {
		t.Errorf("roster missing: %q", tm.Leader().Instructions())
	}

	img := &af.DataContent{Data: []byte("png"), MediaType: "image/png"}
	resp, err := tm.Run(context.Background(), []af.Message{af.NewUserMessage("Make a poem", img)})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Text() != "Final: gophers run in lines" {
		t.Errorf("text = %q", resp.Text())
	}
	if len(resp.MemberResponses) != 1 || resp.MemberResponses[0].AgentName != "Writer" {
		t.Fatalf("members = %+v", resp.MemberResponses)
	}

	var task af.Message
	for _, m := range writer.msgs {
		if m.Role == af.RoleUser {
			task = m
		}
	}
	if !strings.Contains(task.Text(), "Expected output: three lines") {
		t.Errorf("task = %q", task.Text())
	}
	if len(task.Media()) != 1 {
		t.Errorf("media not forwarded: %d", len(task.Media()))
	}
}

func TestTeamUnknownMember(t *testing.T) {
	tm := team.New(leaderScript("ghost"), team.WithName("T"), team.WithMembers(newWriter().agent))
	resp, err := tm.Run(context.Background(), []af.Message{af.NewUserMessage("hi")})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resp.Text(), "not found") || len(resp.MemberResponses) != 0 {
		t.Errorf("resp = %q members=%d", resp.Text(), len(resp.MemberResponses))
	}
}

func TestTeamRunStreamEmitsMembers(t *testing.T) {
	tm := team.New(leaderScript("Writer"), team.WithName("Content Team"), team.WithMembers(newWriter().agent))
	stream, err := tm.RunStream(context.Background(), []af.Message{af.NewUserMessage("Make a poem")})
	if err != nil {
		t.Fatal(err)
	}
	defer stream.Close()

	var events []af.UpdateEvent
	var textAfterMember strings.Builder
	seenMember := false
	for {
		u, ok, err := stream.Next(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			break
		}
		events = append(events, u.Event)
		if u.Event == af.EventMemberResponse {
			seenMember = true
			if u.Member == nil || u.Member.Text() != "gophers run in lines" {
				t.Errorf("member update = %+v", u)
			}
		}
		if seenMember && u.Event == af.EventRunContent {
			textAfterMember.WriteString(u.Text())
		}
	}
	if !seenMember {
		t.Fatalf("no member event in %v", events)
	}
	if textAfterMember.String() != "Final: gophers run in lines" {
		t.Errorf("text after member = %q", textAfterMember.String())
	}
	resp, err := stream.FinalResponse(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.MemberResponses) != 1 {
		t.Errorf("members = %d", len(resp.MemberResponses))
	}
}

// sessionMarker reads one session value before a run and writes another
// after it.
type sessionMarker struct {
	af.NoOpContextProvider
	seen      any
	sessionID string
	userID    string
}

func (p *sessionMarker) Invoking(ctx context.Context, _ []af.Message) (*af.InvocationContext, error) {
	if rc := af.RunContextFrom(ctx); rc != nil {
		p.seen, _ = rc.Session.Get("audience")
		p.sessionID, p.userID = rc.SessionID, rc.UserID
	}
	return &af.InvocationContext{}, nil
}

func (p *sessionMarker) Invoked(ctx context.Context, _ []af.Message, _ *af.AgentResponse) error {
	af.RunContextFrom(ctx).Session.Set("drafted_by", "writer")
	return nil
}

func TestTeamMemberSharesLeaderSession(t *testing.T) {
	marker := &sessionMarker{}
	var memberSaw []af.Message
	client := &mockClient{responseFn: func(_ context.Context, msgs []af.Message, _ *af.ChatOptions) (*af.ChatResponse, error) {
		memberSaw = append(memberSaw, msgs...)
		return text("gophers run in lines"), nil
	}}
	writer := af.NewAgent(client, af.WithID("writer"), af.WithName("Writer"), af.WithContextProvider(marker))
	tm := team.New(leaderScript("writer"), team.WithName("Content Team"), team.WithMembers(writer))

	store := af.NewInMemoryStore()
	if err := store.AddMessages(context.Background(), []af.Message{af.NewUserMessage("an earlier leader turn")}); err != nil {
		t.Fatal(err)
	}
	session := af.NewSession(
		af.WithSessionKey("s1"),
		af.WithSessionStore(store),
		af.WithSessionState(map[string]any{"audience": "kids"}),
	)
	if _, err := tm.Run(context.Background(), []af.Message{af.NewUserMessage("Make a poem")},
		af.WithSession(session), af.WithUserID("u1")); err != nil {
		t.Fatal(err)
	}

	if marker.seen != "kids" || marker.sessionID != "s1" || marker.userID != "u1" {
		t.Errorf("member saw audience=%v session=%q user=%q", marker.seen, marker.sessionID, marker.userID)
	}
	if v, _ := session.Get("drafted_by"); v != "writer" {
		t.Errorf("member state write lost: %v", v)
	}
	for _, m := range memberSaw {
		if strings.Contains(m.Text(), "earlier leader turn") {
			t.Error("leader history replayed into the member run")
		}
	}
	msgs, _ := store.ListMessages(context.Background())
	for _, m := range msgs {
		if strings.Contains(m.Text(), "Write a haiku") {
			t.Error("member turn written to the leader's store")
		}
	}
}
