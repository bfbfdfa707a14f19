package agentframework_test

import (
	"testing"

	af "github.com/agentcookbook/gemini-agents/agentframework"
)

func TestNewUserMessage_WithMedia(t *testing.T) {
	img := &af.URIContent{URI: "https://agno-public.s3.amazonaws.com/images/krakow_mariacki.jpg", MediaType: "image/jpeg"}
	m := af.NewUserMessage("Tell me about this image", img)
	if m.Role != af.RoleUser {
		t.Errorf("role = %q, want %q", m.Role, af.RoleUser)
	}
	if m.Text() != "Tell me about this image" {
		t.Errorf("text = %q", m.Text())
	}
	media := m.Media()
	if len(media) != 1 || media[0] != img {
		t.Errorf("media = %v", media)
	}
}

func TestNewToolMessage(t *testing.T) {
	call := &af.FunctionCallContent{CallID: "call-1", Name: "think"}
	m := af.NewToolMessage(call, "result")
	if m.Role != af.RoleTool {
		t.Errorf("role = %q", m.Role)
	}
	fr, ok := m.Contents[0].(*af.FunctionResultContent)
	if !ok {
		t.Fatalf("type = %T", m.Contents[0])
	}
	if fr.CallID != "call-1" || fr.Name != "think" {
		t.Errorf("result = %+v", fr)
	}
}

func TestMessageText_MultipleContents(t *testing.T) {
	m := af.Message{
		Role: af.RoleAssistant,
		Contents: af.Contents{
			&af.TextContent{Text: "Hello "},
			&af.TextReasoningContent{Text: "hidden"},
			&af.FunctionCallContent{Name: "fn"},
			&af.TextContent{Text: "World"},
		},
	}
	if got := m.Text(); got != "Hello World" {
		t.Errorf("text = %q, want %q", got, "Hello World")
	}
}

func TestNormalizeMessages(t *testing.T) {
	msgs := af.NormalizeMessages(
		"hello",
		af.NewAssistantMessage("hi"),
		[]af.Message{af.NewSystemMessage("sys")},
	)
	if len(msgs) != 3 {
		t.Fatalf("len = %d, want 3", len(msgs))
	}
	roles := []af.Role{af.RoleUser, af.RoleAssistant, af.RoleSystem}
	for i, r := range roles {
		if msgs[i].Role != r {
			t.Errorf("[%d].Role = %q, want %q", i, msgs[i].Role, r)
		}
	}
}

func TestPrependInstructions(t *testing.T) {
	msgs := []af.Message{af.NewUserMessage("hi")}

	result := af.PrependInstructions(msgs, "Be helpful")
	if len(result) != 2 {
		t.Fatalf("len = %d, want 2", len(result))
	}
	if result[0].Role != af.RoleSystem || result[0].Text() != "Be helpful" {
		t.Errorf("[0] = %+v", result[0])
	}

	if got := af.PrependInstructions(msgs, ""); len(got) != 1 {
		t.Errorf("empty instructions should not add message, got len=%d", len(got))
	}

	withSys := []af.Message{af.NewSystemMessage("existing"), af.NewUserMessage("hi")}
	if got := af.PrependInstructions(withSys, "new"); len(got) != 2 {
		t.Errorf("should not add duplicate system message, got len=%d", len(got))
	}
}

func TestLastUserTextAndCollectMedia(t *testing.T) {
	pdf := &af.URIContent{URI: "https://agno-public.s3.amazonaws.com/recipes/ThaiRecipes.pdf", MediaType: "application/pdf"}
	msgs := []af.Message{
		af.NewUserMessage("first", pdf),
		af.NewAssistantMessage("answer"),
		af.NewUserMessage("second"),
	}
	if got := af.LastUserText(msgs); got != "second" {
		t.Errorf("LastUserText = %q", got)
	}
	media := af.CollectMedia(msgs)
	if len(media) != 1 || media[0] != pdf {
		t.Errorf("CollectMedia = %v", media)
	}
}
