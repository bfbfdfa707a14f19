package agentframework_test

import (
	"context"
	"encoding/json"
	"testing"

	af "github.com/agentcookbook/gemini-agents/agentframework"
)

func TestMergeChatOptions_NilBase(t *testing.T) {
	temp := 0.7
	override := &af.ChatOptions{Temperature: &temp, ModelID: "gemini-3-flash-preview"}
	merged := af.MergeChatOptions(nil, override)

	if merged.ModelID != "gemini-3-flash-preview" {
		t.Errorf("ModelID = %q", merged.ModelID)
	}
	if merged.Temperature == nil || *merged.Temperature != 0.7 {
		t.Errorf("Temperature = %v", merged.Temperature)
	}
}

func TestMergeChatOptions_NilOverride(t *testing.T) {
	base := &af.ChatOptions{ModelID: "gemini-2.5-flash"}
	merged := af.MergeChatOptions(base, nil)

	if merged.ModelID != "gemini-2.5-flash" {
		t.Errorf("ModelID = %q", merged.ModelID)
	}
	if merged == base {
		t.Error("merge should return a copy")
	}
}

func TestMergeChatOptions_BothNil(t *testing.T) {
	if merged := af.MergeChatOptions(nil, nil); merged == nil {
		t.Fatal("expected non-nil result")
	}
}

func TestMergeChatOptions_OverrideWins(t *testing.T) {
	baseTemp := 0.5
	overTemp := 0.9
	base := &af.ChatOptions{
		ModelID:     "base-model",
		Temperature: &baseTemp,
		User:        "user1",
	}
	override := &af.ChatOptions{
		ModelID:        "override-model",
		Temperature:    &overTemp,
		ResponseFormat: &af.ResponseFormat{Name: "MovieReview"},
	}
	merged := af.MergeChatOptions(base, override)

	if merged.ModelID != "override-model" {
		t.Errorf("ModelID = %q, want override-model", merged.ModelID)
	}
	if *merged.Temperature != 0.9 {
		t.Errorf("Temperature = %f, want 0.9", *merged.Temperature)
	}
	if merged.User != "user1" {
		t.Errorf("User = %q, want user1 (preserved from base)", merged.User)
	}
	if merged.ResponseFormat == nil || merged.ResponseFormat.Name != "MovieReview" {
		t.Errorf("ResponseFormat = %+v", merged.ResponseFormat)
	}
}

func TestMergeChatOptions_InstructionsConcatenate(t *testing.T) {
	base := &af.ChatOptions{Instructions: "Be helpful"}
	override := &af.ChatOptions{Instructions: "Be concise"}
	merged := af.MergeChatOptions(base, override)

	if expected := "Be helpful\nBe concise"; merged.Instructions != expected {
		t.Errorf("Instructions = %q, want %q", merged.Instructions, expected)
	}
}

func TestMergeChatOptions_ToolsByName(t *testing.T) {
	mk := func(name, desc string) af.Tool {
		return af.NewTool(name, desc, nil, func(ctx context.Context, _ json.RawMessage) (any, error) { return nil, nil })
	}
	base := &af.ChatOptions{Tools: []af.Tool{mk("a", "old"), mk("b", "b")}}
	override := &af.ChatOptions{Tools: []af.Tool{mk("a", "new"), mk("c", "c")}}
	merged := af.MergeChatOptions(base, override)

	if len(merged.Tools) != 3 {
		t.Fatalf("tools = %d, want 3", len(merged.Tools))
	}
	want := []string{"a", "b", "c"}
	for i, w := range want {
		if merged.Tools[i].Name() != w {
			t.Errorf("tools[%d] = %q, want %q", i, merged.Tools[i].Name(), w)
		}
	}
	if merged.Tools[0].Description() != "new" {
		t.Errorf("override should replace same-named tool")
	}
}

func TestMergeChatOptions_MetadataMerge(t *testing.T) {
	base := &af.ChatOptions{
		Metadata: map[string]string{"a": "1", "b": "2"},
	}
	override := &af.ChatOptions{
		Metadata: map[string]string{"b": "override", "c": "3"},
	}
	merged := af.MergeChatOptions(base, override)

	if merged.Metadata["a"] != "1" || merged.Metadata["b"] != "override" || merged.Metadata["c"] != "3" {
		t.Errorf("metadata = %v", merged.Metadata)
	}
	if base.Metadata["b"] != "2" {
		t.Error("base metadata must not be mutated")
	}
}

func TestToolChoiceFunction(t *testing.T) {
	tc := af.ToolChoiceFunction("get_weather")
	if tc != af.ToolChoice("function:get_weather") {
		t.Errorf("ToolChoiceFunction = %q", tc)
	}
	if tc.FunctionName() != "get_weather" {
		t.Errorf("FunctionName = %q", tc.FunctionName())
	}
	if af.ToolChoiceAuto.FunctionName() != "" {
		t.Error("auto has no function name")
	}
}
