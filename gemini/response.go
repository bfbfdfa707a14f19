package gemini

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	af "github.com/agentcookbook/gemini-agents/agentframework"
)

// parsedCandidate is the framework view of one response or stream chunk.
type parsedCandidate struct {
	contents     af.Contents
	finishReason af.FinishReason
	blocked      string
	usage        af.UsageDetails
	extra        map[string]any
}

func parseCandidate(raw *generateContentResponse) *parsedCandidate {
	p := &parsedCandidate{usage: parseUsage(raw.UsageMetadata)}
	if raw.PromptFeedback != nil && raw.PromptFeedback.BlockReason != "" {
		p.blocked = raw.PromptFeedback.BlockReason
		p.finishReason = af.FinishReasonContentFilter
	}
	if len(raw.Candidates) == 0 {
		return p
	}

	cand := &raw.Candidates[0]
	hasCalls := false
	if cand.Content != nil {
		for _, pt := range cand.Content.Parts {
			if c := parsePart(pt); c != nil {
				if _, ok := c.(*af.FunctionCallContent); ok {
					hasCalls = true
				}
				p.contents = append(p.contents, c)
			}
		}
	}

	if gm := cand.GroundingMetadata; gm != nil {
		p.contents = append(p.contents, citations(gm)...)
		p.setExtra("grounding_metadata", gm)
		if len(gm.WebSearchQueries) > 0 {
			p.setExtra("web_search_queries", gm.WebSearchQueries)
		}
	}
	if cand.URLContextMetadata != nil {
		p.setExtra("url_context_metadata", cand.URLContextMetadata)
	}

	switch cand.FinishReason {
	case "":
	case "STOP":
		p.finishReason = af.FinishReasonStop
	case "MAX_TOKENS":
		p.finishReason = af.FinishReasonLength
	case "SAFETY", "RECITATION", "BLOCKLIST", "PROHIBITED_CONTENT", "SPII", "IMAGE_SAFETY":
		p.finishReason = af.FinishReasonContentFilter
		p.blocked = cand.FinishReason
	default:
		p.finishReason = af.FinishReason(cand.FinishReason)
	}
	if hasCalls && p.finishReason == af.FinishReasonStop {
		p.finishReason = af.FinishReasonToolCalls
	}
	return p
}

func (p *parsedCandidate) setExtra(key string, v any) {
	if p.extra == nil {
		p.extra = make(map[string]any)
	}
	p.extra[key] = v
}

// filterError reports a blocked prompt or a safety stop without content.
func (p *parsedCandidate) filterError() error {
	if p.blocked == "" || len(p.contents) > 0 {
		return nil
	}
	return &af.ServiceError{
		StatusCode: 200,
		Message:    fmt.Sprintf("response blocked: %s", p.blocked),
		Code:       p.blocked,
		Err:        af.ErrContentFilter,
	}
}

func parsePart(pt part) af.Content {
	switch {
	case pt.FunctionCall != nil:
		args := "{}"
		if len(pt.FunctionCall.Args) > 0 {
			args = string(pt.FunctionCall.Args)
		}
		id := pt.FunctionCall.ID
		if id == "" {
			id = "call_" + uuid.NewString()
		}
		return &af.FunctionCallContent{
			CallID:    id,
			Name:      pt.FunctionCall.Name,
			Arguments: args,
			Signature: pt.ThoughtSignature,
		}
	case pt.InlineData != nil:
		return &af.DataContent{Data: pt.InlineData.Data, MediaType: pt.InlineData.MimeType}
	case pt.FileData != nil:
		return &af.URIContent{URI: pt.FileData.FileURI, MediaType: pt.FileData.MimeType}
	case pt.Thought:
		return &af.TextReasoningContent{Text: pt.Text, Signature: pt.ThoughtSignature}
	case pt.Text != "":
		return &af.TextContent{Text: pt.Text}
	}
	return nil
}

func citations(gm *GroundingMetadata) af.Contents {
	var out af.Contents
	for _, ch := range gm.GroundingChunks {
		switch {
		case ch.Web != nil:
			out = append(out, &af.CitationContent{URI: ch.Web.URI, Title: ch.Web.Title})
		case ch.RetrievedContext != nil:
			out = append(out, &af.CitationContent{
				URI:   ch.RetrievedContext.URI,
				Title: ch.RetrievedContext.Title,
				Text:  ch.RetrievedContext.Text,
			})
		}
	}
	return out
}

func parseUsage(u *usageMetadata) af.UsageDetails {
	if u == nil {
		return af.UsageDetails{}
	}
	return af.UsageDetails{
		InputTokens:     u.PromptTokenCount,
		OutputTokens:    u.CandidatesTokenCount + u.ThoughtsTokenCount,
		TotalTokens:     u.TotalTokenCount,
		CachedTokens:    u.CachedContentTokenCount,
		ReasoningTokens: u.ThoughtsTokenCount,
	}
}

func parseChatResponse(raw *generateContentResponse) (*af.ChatResponse, error) {
	p := parseCandidate(raw)
	if err := p.filterError(); err != nil {
		return nil, err
	}
	resp := &af.ChatResponse{
		ResponseID:   raw.ResponseID,
		ModelID:      raw.ModelVersion,
		FinishReason: p.finishReason,
		Usage:        p.usage,
		Extra:        p.extra,
		Raw:          raw,
	}
	if len(p.contents) > 0 {
		resp.Messages = []af.Message{{Role: af.RoleAssistant, Contents: p.contents}}
	}
	return resp, nil
}

func parseChunk(raw *generateContentResponse) (*af.ChatResponseUpdate, error) {
	p := parseCandidate(raw)
	if err := p.filterError(); err != nil {
		return nil, err
	}
	return &af.ChatResponseUpdate{
		Contents:     p.contents,
		Role:         af.RoleAssistant,
		ResponseID:   raw.ResponseID,
		ModelID:      raw.ModelVersion,
		FinishReason: p.finishReason,
		Usage:        p.usage,
		Extra:        p.extra,
		Raw:          raw,
	}, nil
}

func unmarshalResponse(body []byte) (*generateContentResponse, error) {
	var raw generateContentResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	return &raw, nil
}
