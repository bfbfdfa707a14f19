package cookbook_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	af "github.com/agentcookbook/gemini-agents/agentframework"
	"github.com/agentcookbook/gemini-agents/config"
	"github.com/agentcookbook/gemini-agents/samples/gemini/cookbook"
	"github.com/agentcookbook/gemini-agents/storage"
	"github.com/agentcookbook/gemini-agents/workflow"
)

func settings(t *testing.T, extra map[string]string) *config.Settings {
	t.Helper()
	vars := map[string]string{
		"GOOGLE_API_KEY": "test-key",
		"WORKSPACE_DIR":  t.TempDir(),
	}
	for k, v := range extra {
		vars[k] = v
	}
	s, err := config.LoadFrom(vars)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func toolNames(a *af.Agent) []string {
	var names []string
	for _, tool := range a.Tools() {
		names = append(names, tool.Name())
	}
	return names
}

func TestQualityGate(t *testing.T) {
	out, err := cookbook.QualityGate(context.Background(), &workflow.StepInput{PreviousStepContent: "too thin"})
	if err != nil {
		t.Fatal(err)
	}
	if !out.Stop || out.Success {
		t.Errorf("short analysis: stop=%v success=%v", out.Stop, out.Success)
	}
	if !strings.Contains(out.Content, "Quality gate failed") {
		t.Errorf("content = %q", out.Content)
	}

	long := strings.Repeat("a", cookbook.MinAnalysisLength)
	out, err = cookbook.QualityGate(context.Background(), &workflow.StepInput{PreviousStepContent: long})
	if err != nil {
		t.Fatal(err)
	}
	if out.Stop || !out.Success || out.Content != long {
		t.Errorf("long analysis: stop=%v success=%v", out.Stop, out.Success)
	}
}

func TestNeedsFactCheck(t *testing.T) {
	tests := []struct {
		content string
		want    bool
	}{
		{"A recent Study found improvements", true},
		{"Revenue grew 40% last year", true},
		{"Valued at 2 Billion dollars", true},
		{"According to the team, launch is next week", true},
		{"Agents are getting better at planning", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := cookbook.NeedsFactCheck(&workflow.StepInput{PreviousStepContent: tt.content}); got != tt.want {
			t.Errorf("NeedsFactCheck(%q) = %v, want %v", tt.content, got, tt.want)
		}
	}
}

func TestAgentsHaveStableIDs(t *testing.T) {
	s := settings(t, nil)
	agents := map[string]*af.Agent{
		"chat-assistant":  cookbook.ChatAgent(s),
		"finance-agent":   cookbook.FinanceAgent(s),
		"movie-critic":    cookbook.MovieCritic(s),
		"news-agent":      cookbook.NewsAgent(s),
		"image-generator": cookbook.ImageGenerator(s),
		"tts-agent":       cookbook.TTSAgent(s),
		"music-analyst":   cookbook.MusicAnalyst(s),
	}
	for id, a := range agents {
		if a.ID() != id {
			t.Errorf("ID() = %q, want %q", a.ID(), id)
		}
	}
}

func TestModels(t *testing.T) {
	s := settings(t, map[string]string{"GEMINI_MODEL": "gemini-custom-flash"})
	if got := cookbook.ChatAgent(s).ModelID(); got != "gemini-custom-flash" {
		t.Errorf("flash agent model = %q", got)
	}
	if got := cookbook.MovieCritic(s).ModelID(); got != cookbook.ProModel {
		t.Errorf("pro agent model = %q", got)
	}
	if got := cookbook.TTSAgent(s).ModelID(); got != cookbook.TTSModel {
		t.Errorf("tts agent model = %q", got)
	}
}

func TestTools(t *testing.T) {
	s := settings(t, nil)
	if names := toolNames(cookbook.FinanceAgent(s)); len(names) == 0 || names[0] != "web_search" {
		t.Errorf("finance tools = %v", names)
	}
	if names := toolNames(cookbook.ChatAgent(s)); len(names) != 0 {
		t.Errorf("chat tools = %v", names)
	}
}

func TestContentTeamAndPipeline(t *testing.T) {
	s := settings(t, nil)
	ct := cookbook.ContentTeam(s, nil)
	if ct.ID() != "content-team" || len(ct.Members()) != 3 {
		t.Errorf("content team id=%q members=%d", ct.ID(), len(ct.Members()))
	}
	if !ct.ShowMemberResponses() {
		t.Error("content team hides member responses")
	}

	wf := cookbook.ResearchPipeline(s, nil)
	if wf.ID() != cookbook.ResearchPipelineID {
		t.Errorf("pipeline id = %q", wf.ID())
	}
	var names []string
	for _, n := range wf.Steps() {
		names = append(names, n.Name())
	}
	if got := strings.Join(names, ","); got != "Research,analysis,quality_gate,report,fact_check_gate" {
		t.Errorf("steps = %s", got)
	}
}

func TestKnowledgeAgents(t *testing.T) {
	ctx := context.Background()
	s := settings(t, nil)
	db, err := storage.Open(ctx, filepath.Join(s.WorkspaceDir, "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	kb, err := cookbook.RecipeKnowledge(ctx, s, db)
	if err != nil {
		t.Fatal(err)
	}
	if kb.Name() != "Recipe Knowledge" {
		t.Errorf("knowledge name = %q", kb.Name())
	}
	if a := cookbook.RecipeAssistant(s, db, kb); a.ID() != "recipe-assistant" {
		t.Errorf("recipe id = %q", a.ID())
	}

	tutor, err := cookbook.PersonalTutor(ctx, s, db)
	if err != nil {
		t.Fatal(err)
	}
	if names := toolNames(tutor.Agent); len(names) == 0 {
		t.Error("tutor has no reasoning tools")
	}
	if tutor.Learning == nil {
		t.Error("tutor has no learning store")
	}
}
