package reasoning_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	af "github.com/agentcookbook/gemini-agents/agentframework"
	"github.com/agentcookbook/gemini-agents/tools/reasoning"
)

func TestScratchpadPerRun(t *testing.T) {
	rt := reasoning.New()
	k := rt.Toolkit()
	if k.Instructions == "" {
		t.Error("toolkit has no instructions")
	}
	think, analyze := k.Tools[0], k.Tools[1]

	run1 := af.WithRunContext(context.Background(), &af.RunContext{RunID: "r1"})
	run2 := af.WithRunContext(context.Background(), &af.RunContext{RunID: "r2"})

	if _, err := think.Invoke(run1, json.RawMessage(`{"title":"Plan","thought":"Split fractions into slices","confidence":0.9}`)); err != nil {
		t.Fatal(err)
	}
	out, err := analyze.Invoke(run1, json.RawMessage(`{"title":"Check","result":"3/4","analysis":"Matches the diagram"}`))
	if err != nil {
		t.Fatal(err)
	}
	text := out.(string)
	if !strings.Contains(text, "Step 1 (think): Plan") || !strings.Contains(text, "Next action: continue") {
		t.Errorf("scratchpad = %q", text)
	}
	if _, err := think.Invoke(run2, json.RawMessage(`{"title":"Other","thought":"x"}`)); err != nil {
		t.Fatal(err)
	}

	steps := rt.Steps("r1")
	if len(steps) != 2 || steps[1].Kind != "analyze" || steps[0].Confidence != 0.9 || steps[1].Confidence != 0.8 {
		t.Errorf("r1 steps = %+v", steps)
	}
	if len(rt.Steps("r2")) != 1 {
		t.Errorf("r2 steps = %+v", rt.Steps("r2"))
	}
	rt.Reset("r1")
	if len(rt.Steps("r1")) != 0 {
		t.Error("reset kept steps")
	}
}

func TestAnalyzeSchemaHasEnum(t *testing.T) {
	var schema struct {
		Properties map[string]struct {
			Enum []string `json:"enum"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(reasoning.New().Toolkit().Tools[1].Parameters(), &schema); err != nil {
		t.Fatal(err)
	}
	if got := schema.Properties["next_action"].Enum; len(got) != 3 || got[2] != "final_answer" {
		t.Errorf("enum = %v", got)
	}
}
