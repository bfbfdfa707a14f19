package agentframework_test

import (
	"context"
	"errors"
	"testing"

	af "github.com/agentcookbook/gemini-agents/agentframework"
)

func TestResponseStream_Collect(t *testing.T) {
	stream := af.NewResponseStream(context.Background(), func(ctx context.Context, ch chan<- int) error {
		for i := 1; i <= 3; i++ {
			ch <- i
		}
		return nil
	})
	defer stream.Close()

	items, err := stream.Collect(context.Background())
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("len = %d, want 3", len(items))
	}
	for i, v := range items {
		if v != i+1 {
			t.Errorf("[%d] = %d, want %d", i, v, i+1)
		}
	}
}

func TestResponseStream_Next(t *testing.T) {
	stream := af.NewResponseStream(context.Background(), func(ctx context.Context, ch chan<- string) error {
		ch <- "a"
		ch <- "b"
		return nil
	})
	defer stream.Close()

	ctx := context.Background()

	v1, ok, err := stream.Next(ctx)
	if err != nil || !ok || v1 != "a" {
		t.Errorf("next1: val=%q ok=%v err=%v", v1, ok, err)
	}

	v2, ok, err := stream.Next(ctx)
	if err != nil || !ok || v2 != "b" {
		t.Errorf("next2: val=%q ok=%v err=%v", v2, ok, err)
	}

	_, ok, err = stream.Next(ctx)
	if ok {
		t.Error("expected stream to be exhausted")
	}
	if err != nil {
		t.Errorf("unexpected error after exhaustion: %v", err)
	}
}

func TestResponseStream_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	stream := af.NewResponseStream(ctx, func(ctx context.Context, ch chan<- int) error {
		for {
			select {
			case ch <- 42:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	v, ok, err := stream.Next(ctx)
	if err != nil || !ok || v != 42 {
		t.Fatalf("first next: val=%d ok=%v err=%v", v, ok, err)
	}

	cancel()
	stream.Close()
}

func TestResponseStream_ProducerError(t *testing.T) {
	expectedErr := af.ErrService

	stream := af.NewResponseStream(context.Background(), func(ctx context.Context, ch chan<- int) error {
		ch <- 1
		return expectedErr
	})
	defer stream.Close()

	ctx := context.Background()
	_, _, _ = stream.Next(ctx)

	_, ok, err := stream.Next(ctx)
	if ok {
		t.Error("expected stream to be exhausted after error")
	}
	if err == nil {
		t.Fatal("expected error from producer")
	}
}

func TestChatResponseFromUpdates(t *testing.T) {
	updates := []af.ChatResponseUpdate{
		{
			Role:       af.RoleAssistant,
			ResponseID: "resp-1",
			Contents:   af.Contents{&af.TextContent{Text: "Hello, "}},
		},
		{
			Contents: af.Contents{&af.TextContent{Text: "world!"}},
		},
		{
			FinishReason: af.FinishReasonStop,
			Usage:        af.UsageDetails{InputTokens: 5, OutputTokens: 3, TotalTokens: 8},
		},
	}

	resp := af.ChatResponseFromUpdates(updates)

	if resp.ResponseID != "resp-1" {
		t.Errorf("ResponseID = %q", resp.ResponseID)
	}
	if resp.FinishReason != af.FinishReasonStop {
		t.Errorf("FinishReason = %q", resp.FinishReason)
	}
	if resp.Usage.TotalTokens != 8 {
		t.Errorf("TotalTokens = %d", resp.Usage.TotalTokens)
	}
	if len(resp.Messages) != 1 {
		t.Fatalf("messages len = %d", len(resp.Messages))
	}
	if resp.Text() != "Hello, world!" {
		t.Errorf("text = %q, want %q", resp.Text(), "Hello, world!")
	}
}

func TestResponseStream_AllStopsEarly(t *testing.T) {
	ctx := context.Background()
	stream := af.NewResponseStream(ctx, func(ctx context.Context, ch chan<- int) error {
		for i := 1; ; i++ {
			select {
			case ch <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})
	defer stream.Close()

	var got []int
	for v, err := range stream.All(ctx) {
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, v)
		if v == 3 {
			break
		}
	}
	if len(got) != 3 || got[2] != 3 {
		t.Errorf("got %v", got)
	}
}

func TestResponseStream_AllYieldsError(t *testing.T) {
	ctx := context.Background()
	stream := af.NewResponseStream(ctx, func(ctx context.Context, ch chan<- string) error {
		ch <- "partial"
		return af.ErrRateLimited
	})
	defer stream.Close()

	var vals []string
	var last error
	for v, err := range stream.All(ctx) {
		if err != nil {
			last = err
			continue
		}
		vals = append(vals, v)
	}
	if len(vals) != 1 || !errors.Is(last, af.ErrRateLimited) {
		t.Errorf("vals = %v, err = %v", vals, last)
	}
}

func TestChatResponseFromUpdates_ThoughtsAndExtra(t *testing.T) {
	updates := []af.ChatResponseUpdate{
		{Role: af.RoleAssistant, Contents: af.Contents{&af.TextReasoningContent{Text: "Let me "}}},
		{Contents: af.Contents{&af.TextReasoningContent{Text: "think.", Signature: "sig"}}},
		{Contents: af.Contents{&af.TextContent{Text: "Answer"}}},
		{Extra: map[string]any{"grounding_metadata": "meta"}},
	}

	resp := af.ChatResponseFromUpdates(updates)
	contents := resp.Messages[0].Contents
	if len(contents) != 2 {
		t.Fatalf("contents = %d, want 2", len(contents))
	}
	rc, ok := contents[0].(*af.TextReasoningContent)
	if !ok || rc.Text != "Let me think." || rc.Signature != "sig" {
		t.Errorf("reasoning = %+v", contents[0])
	}
	if resp.Text() != "Answer" {
		t.Errorf("text = %q", resp.Text())
	}
	if resp.Extra["grounding_metadata"] != "meta" {
		t.Errorf("Extra = %v", resp.Extra)
	}
}

func TestStreamAgentResponse_FinalResponse(t *testing.T) {
	ctx := context.Background()
	want := &af.AgentResponse{RunID: "run-1", Messages: []af.Message{af.NewAssistantMessage("final")}}
	stream := af.StreamAgentResponse(ctx, func(ctx context.Context, emit func(af.AgentResponseUpdate) error) (*af.AgentResponse, error) {
		if err := emit(af.AgentResponseUpdate{Contents: af.Contents{&af.TextContent{Text: "fi"}}}); err != nil {
			return nil, err
		}
		if err := emit(af.AgentResponseUpdate{Event: af.EventMemberResponse, Member: &af.AgentResponse{AgentName: "Writer"}}); err != nil {
			return nil, err
		}
		return want, nil
	})
	defer stream.Close()

	u, ok, err := stream.Next(ctx)
	if err != nil || !ok || u.Text() != "fi" {
		t.Fatalf("first update = %+v, %v, %v", u, ok, err)
	}
	got, err := stream.FinalResponse(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("FinalResponse = %+v, want producer result", got)
	}
}

func TestAgentResponseFromUpdates_MemberResponses(t *testing.T) {
	resp := af.AgentResponseFromUpdates([]af.AgentResponseUpdate{
		{Event: af.EventMemberResponse, Member: &af.AgentResponse{AgentName: "Editor"}},
		{RunID: "r", Contents: af.Contents{&af.TextContent{Text: "Leader "}}},
		{Contents: af.Contents{&af.TextContent{Text: "answer"}}},
	})
	if resp.Text() != "Leader answer" || resp.RunID != "r" {
		t.Errorf("resp = %q / %q", resp.Text(), resp.RunID)
	}
	if len(resp.MemberResponses) != 1 || resp.MemberResponses[0].AgentName != "Editor" {
		t.Errorf("MemberResponses = %v", resp.MemberResponses)
	}
}
