package agentframework

import (
	"maps"
	"strings"
)

// ChatResponse is the complete (non-streaming) response from a [ChatClient].
type ChatResponse struct {
	Messages     []Message
	ResponseID   string
	ModelID      string
	CreatedAt    string
	FinishReason FinishReason
	Usage        UsageDetails
	Extra        map[string]any
	Raw          any
}

// Text returns the concatenated text of all messages in this response.
func (r *ChatResponse) Text() string {
	var b strings.Builder
	for i := range r.Messages {
		b.WriteString(r.Messages[i].Text())
	}
	return b.String()
}

// ChatResponseUpdate is a single chunk received during streaming from a [ChatClient].
type ChatResponseUpdate struct {
	Contents     Contents
	Role         Role
	ResponseID   string
	ModelID      string
	FinishReason FinishReason
	Usage        UsageDetails
	Extra        map[string]any
	Raw          any
}

// Text returns the concatenated text of all [TextContent] items in this update.
func (u *ChatResponseUpdate) Text() string {
	return contentsText(u.Contents)
}

// UpdateEvent classifies an [AgentResponseUpdate]. The zero value is plain
// run content.
type UpdateEvent string

const (
	EventRunContent     UpdateEvent = ""
	EventToolResult     UpdateEvent = "ToolCallCompleted"
	EventMemberResponse UpdateEvent = "MemberResponse"
)

// AgentResponse is the complete response from an [Agent], team or workflow run.
type AgentResponse struct {
	Messages   []Message
	ResponseID string
	RunID      string
	SessionID  string
	AgentID    string
	AgentName  string
	Usage      UsageDetails
	Metrics    RunMetrics

	// Value holds the decoded structured output when the runner has an output
	// schema. See [DecodeOutput].
	Value any

	// MemberResponses holds the responses of delegated team members.
	MemberResponses []*AgentResponse

	Extra map[string]any
	Raw   any
}

// Text returns the concatenated text of the assistant messages in this response.
func (r *AgentResponse) Text() string {
	var b strings.Builder
	for i := range r.Messages {
		if r.Messages[i].Role == RoleTool {
			continue
		}
		b.WriteString(r.Messages[i].Text())
	}
	return b.String()
}

// Reasoning returns the concatenated model thoughts.
func (r *AgentResponse) Reasoning() string {
	var b strings.Builder
	for _, m := range r.Messages {
		for _, c := range m.Contents {
			if rc, ok := c.(*TextReasoningContent); ok {
				b.WriteString(rc.Text)
			}
		}
	}
	return b.String()
}

// Images returns the generated images.
func (r *AgentResponse) Images() []*DataContent {
	return r.dataWithPrefix("image/")
}

// Audio returns the generated audio clips.
func (r *AgentResponse) Audio() []*DataContent {
	return r.dataWithPrefix("audio/")
}

func (r *AgentResponse) dataWithPrefix(prefix string) []*DataContent {
	var out []*DataContent
	for _, m := range r.Messages {
		if m.Role == RoleTool {
			continue
		}
		for _, c := range m.Contents {
			if dc, ok := c.(*DataContent); ok && strings.HasPrefix(dc.MediaType, prefix) {
				out = append(out, dc)
			}
		}
	}
	return out
}

// Citations returns the sources the answer was grounded on, without duplicates.
func (r *AgentResponse) Citations() []*CitationContent {
	var out []*CitationContent
	seen := map[string]bool{}
	for _, m := range r.Messages {
		for _, c := range m.Contents {
			cc, ok := c.(*CitationContent)
			if !ok {
				continue
			}
			key := cc.URI + "\x00" + cc.Title + "\x00" + cc.Text
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, cc)
		}
	}
	return out
}

// ToolCalls returns the function calls the model made during the run.
func (r *AgentResponse) ToolCalls() []*FunctionCallContent {
	return extractFunctionCalls(r.Messages)
}

// ToolResults returns the results of the invoked tools.
func (r *AgentResponse) ToolResults() []*FunctionResultContent {
	var out []*FunctionResultContent
	for _, m := range r.Messages {
		for _, c := range m.Contents {
			if fr, ok := c.(*FunctionResultContent); ok {
				out = append(out, fr)
			}
		}
	}
	return out
}

// AgentResponseUpdate is a single streaming chunk from an [Agent], team or
// workflow run.
type AgentResponseUpdate struct {
	Event      UpdateEvent
	Contents   Contents
	Role       Role
	AgentID    string
	AuthorName string
	RunID      string
	ResponseID string
	Usage      UsageDetails
	// Member is set on EventMemberResponse updates.
	Member *AgentResponse
	Raw    any
}

// Text returns the concatenated text of all [TextContent] items in this update.
func (u *AgentResponseUpdate) Text() string {
	return contentsText(u.Contents)
}

func contentsText(cs Contents) string {
	var b strings.Builder
	for _, c := range cs {
		if tc, ok := c.(*TextContent); ok {
			b.WriteString(tc.Text)
		}
	}
	return b.String()
}

// ChatResponseFromUpdates builds a complete [ChatResponse] by merging
// a sequence of streaming updates.
func ChatResponseFromUpdates(updates []ChatResponseUpdate) *ChatResponse {
	resp := &ChatResponse{}
	var allContents Contents
	for _, u := range updates {
		allContents = append(allContents, u.Contents...)
		if u.ResponseID != "" {
			resp.ResponseID = u.ResponseID
		}
		if u.ModelID != "" {
			resp.ModelID = u.ModelID
		}
		if u.FinishReason != "" {
			resp.FinishReason = u.FinishReason
		}
		if u.Usage.TotalTokens > 0 {
			resp.Usage = u.Usage
		}
		if len(u.Extra) > 0 {
			if resp.Extra == nil {
				resp.Extra = make(map[string]any, len(u.Extra))
			}
			maps.Copy(resp.Extra, u.Extra)
		}
	}

	merged := mergeContentDeltas(allContents)
	if len(merged) > 0 {
		role := RoleAssistant
		if len(updates) > 0 && updates[0].Role != "" {
			role = updates[0].Role
		}
		resp.Messages = []Message{{Role: role, Contents: merged}}
	}
	return resp
}

// mergeContentDeltas consolidates sequential TextContent runs and sequential
// TextReasoningContent runs into single items, and passes other content through.
func mergeContentDeltas(cs Contents) Contents {
	if len(cs) == 0 {
		return nil
	}
	var merged Contents
	var textBuf, thoughtBuf strings.Builder
	var signature string
	flushText := func() {
		if textBuf.Len() > 0 {
			merged = append(merged, &TextContent{Text: textBuf.String()})
			textBuf.Reset()
		}
	}
	flushThought := func() {
		if thoughtBuf.Len() > 0 || signature != "" {
			merged = append(merged, &TextReasoningContent{Text: thoughtBuf.String(), Signature: signature})
			thoughtBuf.Reset()
			signature = ""
		}
	}
	for _, c := range cs {
		switch v := c.(type) {
		case *TextContent:
			flushThought()
			textBuf.WriteString(v.Text)
		case *TextReasoningContent:
			flushText()
			thoughtBuf.WriteString(v.Text)
			if v.Signature != "" {
				signature = v.Signature
			}
		default:
			flushText()
			flushThought()
			merged = append(merged, c)
		}
	}
	flushThought()
	flushText()
	return merged
}

// AgentResponseFromUpdates builds a complete [AgentResponse] by merging
// a sequence of streaming updates. Member responses are collected separately.
func AgentResponseFromUpdates(updates []AgentResponseUpdate) *AgentResponse {
	resp := &AgentResponse{}
	var allContents Contents
	for _, u := range updates {
		if u.Event == EventMemberResponse {
			if u.Member != nil {
				resp.MemberResponses = append(resp.MemberResponses, u.Member)
			}
			continue
		}
		allContents = append(allContents, u.Contents...)
		if u.AgentID != "" {
			resp.AgentID = u.AgentID
		}
		if u.RunID != "" {
			resp.RunID = u.RunID
		}
		if u.ResponseID != "" {
			resp.ResponseID = u.ResponseID
		}
		if u.Usage.TotalTokens > 0 {
			resp.Usage = u.Usage
		}
	}

	merged := mergeContentDeltas(allContents)
	if len(merged) > 0 {
		resp.Messages = []Message{{Role: RoleAssistant, Contents: merged}}
	}
	return resp
}
