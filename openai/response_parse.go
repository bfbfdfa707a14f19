package openai

import (
	"cmp"
	"slices"

	goopenai "github.com/sashabaranov/go-openai"

	af "github.com/agentcookbook/gemini-agents/agentframework"
)

// parseChatResponse converts a go-openai response into framework types.
func parseChatResponse(raw *goopenai.ChatCompletionResponse) *af.ChatResponse {
	resp := &af.ChatResponse{
		ResponseID: raw.ID,
		ModelID:    raw.Model,
		Usage:      parseUsage(&raw.Usage),
		Raw:        raw,
	}

	if len(raw.Choices) > 0 {
		c := raw.Choices[0]
		resp.FinishReason = mapFinishReason(c.FinishReason)

		msg := af.Message{Role: af.RoleAssistant}
		if c.Message.Content != "" {
			msg.Contents = append(msg.Contents, &af.TextContent{Text: c.Message.Content})
		}
		for _, tc := range c.Message.ToolCalls {
			msg.Contents = append(msg.Contents, &af.FunctionCallContent{
				CallID:    tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			})
		}
		resp.Messages = []af.Message{msg}
	}

	return resp
}

func parseUsage(u *goopenai.Usage) af.UsageDetails {
	if u == nil {
		return af.UsageDetails{}
	}
	usage := af.UsageDetails{
		InputTokens:  u.PromptTokens,
		OutputTokens: u.CompletionTokens,
		TotalTokens:  u.TotalTokens,
	}
	if u.PromptTokensDetails != nil {
		usage.CachedTokens = u.PromptTokensDetails.CachedTokens
	}
	if u.CompletionTokensDetails != nil {
		usage.ReasoningTokens = u.CompletionTokensDetails.ReasoningTokens
	}
	return usage
}

// toolCallAccumulator joins streamed tool call fragments by index. Providers
// send the id and name once and the arguments in pieces.
type toolCallAccumulator struct {
	calls map[int]*af.FunctionCallContent
}

func (a *toolCallAccumulator) add(deltas []goopenai.ToolCall) {
	if a.calls == nil {
		a.calls = make(map[int]*af.FunctionCallContent)
	}
	for i, tc := range deltas {
		idx := i
		if tc.Index != nil {
			idx = *tc.Index
		}
		call, ok := a.calls[idx]
		if !ok {
			call = &af.FunctionCallContent{}
			a.calls[idx] = call
		}
		if tc.ID != "" {
			call.CallID = tc.ID
		}
		if tc.Function.Name != "" {
			call.Name = tc.Function.Name
		}
		call.Arguments += tc.Function.Arguments
	}
}

// flush returns the accumulated calls in index order and resets.
func (a *toolCallAccumulator) flush() af.Contents {
	if len(a.calls) == 0 {
		return nil
	}
	idxs := make([]int, 0, len(a.calls))
	for i := range a.calls {
		idxs = append(idxs, i)
	}
	slices.SortFunc(idxs, cmp.Compare)
	out := make(af.Contents, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, a.calls[i])
	}
	a.calls = nil
	return out
}

// parseChunk converts a streaming chunk into a ChatResponseUpdate. Tool call
// fragments are held in acc and emitted with the finishing chunk.
func parseChunk(chunk *goopenai.ChatCompletionStreamResponse, acc *toolCallAccumulator) *af.ChatResponseUpdate {
	update := &af.ChatResponseUpdate{
		ResponseID: chunk.ID,
		ModelID:    chunk.Model,
		Role:       af.RoleAssistant,
		Usage:      parseUsage(chunk.Usage),
		Raw:        chunk,
	}

	if len(chunk.Choices) > 0 {
		c := chunk.Choices[0]
		if c.Delta.Content != "" {
			update.Contents = append(update.Contents, &af.TextContent{Text: c.Delta.Content})
		}
		acc.add(c.Delta.ToolCalls)
		if c.FinishReason != "" {
			update.FinishReason = mapFinishReason(c.FinishReason)
			update.Contents = append(update.Contents, acc.flush()...)
		}
	}

	return update
}

func mapFinishReason(r goopenai.FinishReason) af.FinishReason {
	switch r {
	case goopenai.FinishReasonStop:
		return af.FinishReasonStop
	case goopenai.FinishReasonLength:
		return af.FinishReasonLength
	case goopenai.FinishReasonToolCalls, goopenai.FinishReasonFunctionCall:
		return af.FinishReasonToolCalls
	case goopenai.FinishReasonContentFilter:
		return af.FinishReasonContentFilter
	default:
		return af.FinishReason(r)
	}
}
