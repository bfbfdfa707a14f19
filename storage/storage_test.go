package storage_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	af "github.com/agentcookbook/gemini-agents/agentframework"
	"github.com/agentcookbook/gemini-agents/storage"
)

func openTestDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpen_AppliesMigrationsOnce(t *testing.T) {
	db := openTestDB(t)
	for _, table := range []string{"agent_sessions", "agent_runs", "user_memories", "knowledge_contents", "workflow_runs", "vector_documents"} {
		if !db.Gorm(context.Background()).Migrator().HasTable(table) {
			t.Errorf("table %s missing", table)
		}
	}
	n, err := db.Migrate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("second migrate applied %d", n)
	}
	if db.Dialect() != "sqlite3" {
		t.Errorf("dialect = %q", db.Dialect())
	}
}

func TestSessions(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := db.Sessions()

	if err := repo.Upsert(ctx, &storage.Session{ID: "s1", ComponentID: "recipe", UserID: "foodie@example.com"}); err != nil {
		t.Fatal(err)
	}
	if err := repo.Upsert(ctx, &storage.Session{ID: "s1", ComponentID: "recipe", UserID: "foodie@example.com", State: map[string]any{"turn": 2.0}}); err != nil {
		t.Fatal(err)
	}
	if err := repo.Upsert(ctx, &storage.Session{ID: "s2", SessionType: storage.SessionTeam, ComponentID: "content-team"}); err != nil {
		t.Fatal(err)
	}

	got, err := repo.Get(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if got.SessionType != storage.SessionAgent || got.State["turn"] != 2.0 {
		t.Errorf("session = %+v", got)
	}

	teams, err := repo.List(ctx, storage.SessionFilter{Type: storage.SessionTeam})
	if err != nil {
		t.Fatal(err)
	}
	if len(teams) != 1 || teams[0].ID != "s2" {
		t.Errorf("team sessions = %+v", teams)
	}

	if err := db.Runs().Create(ctx, &storage.Run{ID: "r1", SessionID: "s1"}); err != nil {
		t.Fatal(err)
	}
	if err := repo.Delete(ctx, "s1"); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Get(ctx, "s1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Get after delete = %v", err)
	}
	runs, _ := db.Runs().ListBySession(ctx, "s1")
	if len(runs) != 0 {
		t.Errorf("runs survived session delete: %d", len(runs))
	}
	if err := repo.Delete(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Delete missing = %v", err)
	}
}

func TestRuns_Recent(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	for _, id := range []string{"r1", "r2", "r3", "r4"} {
		if err := db.Runs().Create(ctx, &storage.Run{ID: id, SessionID: "s1", Input: id}); err != nil {
			t.Fatal(err)
		}
	}
	if err := db.Runs().Create(ctx, &storage.Run{ID: "failed", SessionID: "s1", Status: storage.StatusError}); err != nil {
		t.Fatal(err)
	}

	runs, err := db.Runs().Recent(ctx, "s1", "", 3)
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, r := range runs {
		ids = append(ids, r.ID)
	}
	if len(ids) != 3 || ids[0] != "r2" || ids[2] != "r4" {
		t.Errorf("recent = %v", ids)
	}

	if err := db.Runs().Create(ctx, &storage.Run{ID: "member", SessionID: "s1", ComponentID: "writer"}); err != nil {
		t.Fatal(err)
	}
	runs, err = db.Runs().Recent(ctx, "s1", "writer", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].ID != "member" {
		t.Errorf("recent for writer = %+v", runs)
	}
}

func TestMemories(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := db.Memories()

	m, err := repo.Add(ctx, "student@example.com", "Prefers visual explanations", []string{"learning_style"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Add(ctx, "other@example.com", "Likes jazz", nil); err != nil {
		t.Fatal(err)
	}

	if err := repo.Update(ctx, "student@example.com", m.ID, "Prefers diagrams", []string{"learning_style", "visual"}); err != nil {
		t.Fatal(err)
	}
	if err := repo.Update(ctx, "other@example.com", m.ID, "hijack", nil); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("cross-user update = %v", err)
	}

	list, err := repo.List(ctx, "student@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Memory != "Prefers diagrams" || len(list[0].Topics) != 2 {
		t.Errorf("memories = %+v", list)
	}

	all, _ := repo.List(ctx, "")
	if len(all) != 2 {
		t.Errorf("all memories = %d", len(all))
	}

	if err := repo.Delete(ctx, "student@example.com", m.ID); err != nil {
		t.Fatal(err)
	}
	if err := repo.Delete(ctx, "student@example.com", m.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second delete = %v", err)
	}
}

func TestContents_FindByHash(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := db.Contents()

	c := &storage.Content{ID: "c1", Knowledge: "recipes", Name: "Thai", ContentHash: "abc", Status: storage.ContentProcessing}
	if err := repo.Save(ctx, c); err != nil {
		t.Fatal(err)
	}
	c.Status, c.ChunkCount = storage.ContentCompleted, 12
	if err := repo.Save(ctx, c); err != nil {
		t.Fatal(err)
	}

	got, err := repo.FindByHash(ctx, "recipes", "abc")
	if err != nil {
		t.Fatal(err)
	}
	if got.ChunkCount != 12 || got.Status != storage.ContentCompleted {
		t.Errorf("content = %+v", got)
	}
	if _, err := repo.FindByHash(ctx, "other", "abc"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("other knowledge = %v", err)
	}
}

func TestWorkflowRuns(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := db.WorkflowRuns()

	run := &storage.WorkflowRun{ID: "w1", WorkflowID: "research", SessionID: "s1", Input: "AI agents", Status: storage.StatusRunning}
	if err := repo.Save(ctx, run); err != nil {
		t.Fatal(err)
	}
	run.StepOutputs = []storage.StepRecord{{Name: "analysis", Content: "ok", Success: true}}
	run.Status = storage.StatusCompleted
	if err := repo.Save(ctx, run); err != nil {
		t.Fatal(err)
	}

	got, err := repo.Get(ctx, "w1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != storage.StatusCompleted || len(got.StepOutputs) != 1 || got.StepOutputs[0].Name != "analysis" {
		t.Errorf("run = %+v", got)
	}
	list, _ := repo.List(ctx, "research", "")
	if len(list) != 1 {
		t.Errorf("list = %d", len(list))
	}
}

// echoClient answers with a fixed text and records what it was sent.
type echoClient struct {
	reply string
	seen  [][]af.Message
}

func (c *echoClient) Response(_ context.Context, msgs []af.Message, _ *af.ChatOptions) (*af.ChatResponse, error) {
	c.seen = append(c.seen, msgs)
	return &af.ChatResponse{
		Messages:     []af.Message{af.NewAssistantMessage(c.reply)},
		FinishReason: af.FinishReasonStop,
	}, nil
}

func (c *echoClient) StreamResponse(ctx context.Context, msgs []af.Message, opts *af.ChatOptions) (*af.ResponseStream[af.ChatResponseUpdate], error) {
	return nil, errors.New("not implemented")
}

func TestHistory_ReplaysRecentRuns(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	client := &echoClient{reply: "Tom Kha Gai is a coconut soup."}
	agent := af.NewAgent(client,
		af.WithID("recipe-assistant"),
		af.WithContextProvider(storage.History(db, 3)),
	)

	opts := []af.RunOption{af.WithSessionID("session_1"), af.WithUserID("foodie@example.com")}
	if _, err := agent.Run(ctx, []af.Message{af.NewUserMessage("How do I make Tom Kha Gai?")}, opts...); err != nil {
		t.Fatal(err)
	}
	if _, err := agent.Run(ctx, []af.Message{af.NewUserMessage("What about a vegetarian version?")}, opts...); err != nil {
		t.Fatal(err)
	}

	second := client.seen[1]
	var texts []string
	for _, m := range second {
		if m.Role != af.RoleSystem {
			texts = append(texts, m.Text())
		}
	}
	if len(texts) != 3 || texts[0] != "How do I make Tom Kha Gai?" || texts[1] != "Tom Kha Gai is a coconut soup." {
		t.Errorf("second request = %q", texts)
	}

	sess, err := db.Sessions().Get(ctx, "session_1")
	if err != nil {
		t.Fatal(err)
	}
	if sess.ComponentID != "recipe-assistant" || sess.UserID != "foodie@example.com" {
		t.Errorf("session = %+v", sess)
	}
	runs, _ := db.Runs().ListBySession(ctx, "session_1")
	if len(runs) != 2 || runs[1].Input != "What about a vegetarian version?" {
		t.Errorf("runs = %+v", runs)
	}

	// Another session starts clean.
	if _, err := agent.Run(ctx, []af.Message{af.NewUserMessage("hi")}, af.WithSessionID("session_2")); err != nil {
		t.Fatal(err)
	}
	if n := len(client.seen[2]); n > 2 {
		t.Errorf("session_2 saw %d messages", n)
	}
}

func TestHistory_ScopedToAgent(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	leaderClient := &echoClient{reply: "leader answer"}
	memberClient := &echoClient{reply: "member answer"}
	leader := af.NewAgent(leaderClient, af.WithID("content-team"), af.WithContextProvider(storage.History(db, 3)))
	member := af.NewAgent(memberClient, af.WithID("writer"), af.WithContextProvider(storage.History(db, 3)))

	opts := []af.RunOption{af.WithSessionID("shared")}
	if _, err := leader.Run(ctx, []af.Message{af.NewUserMessage("leader question")}, opts...); err != nil {
		t.Fatal(err)
	}
	if _, err := member.Run(ctx, []af.Message{af.NewUserMessage("member task")}, opts...); err != nil {
		t.Fatal(err)
	}
	for _, m := range memberClient.seen[0] {
		if m.Text() == "leader question" || m.Text() == "leader answer" {
			t.Errorf("member replayed the leader's run: %q", m.Text())
		}
	}

	if _, err := leader.Run(ctx, []af.Message{af.NewUserMessage("follow up")}, opts...); err != nil {
		t.Fatal(err)
	}
	var texts []string
	for _, m := range leaderClient.seen[1] {
		texts = append(texts, m.Text())
	}
	if got := strings.Join(texts, "|"); got != "leader question|leader answer|follow up" {
		t.Errorf("leader second request = %q", got)
	}
}
