package openai

import (
	"encoding/json"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	af "github.com/agentcookbook/gemini-agents/agentframework"
)

// emptyParameters is sent for tools without declared parameters.
var emptyParameters = jsonschema.Definition{
	Type:       jsonschema.Object,
	Properties: map[string]jsonschema.Definition{},
}

// buildRequest converts framework types into a go-openai request.
func buildRequest(messages []af.Message, opts *af.ChatOptions, defaultModel string) goopenai.ChatCompletionRequest {
	req := goopenai.ChatCompletionRequest{Model: defaultModel}
	if opts != nil {
		if opts.ModelID != "" {
			req.Model = opts.ModelID
		}
		if opts.Temperature != nil {
			req.Temperature = float32(*opts.Temperature)
		}
		if opts.TopP != nil {
			req.TopP = float32(*opts.TopP)
		}
		if opts.MaxTokens != nil {
			req.MaxCompletionTokens = *opts.MaxTokens
		}
		if opts.FrequencyPenalty != nil {
			req.FrequencyPenalty = float32(*opts.FrequencyPenalty)
		}
		if opts.PresencePenalty != nil {
			req.PresencePenalty = float32(*opts.PresencePenalty)
		}
		req.Stop = opts.Stop
		req.Seed = opts.Seed
		req.User = opts.User
		req.Metadata = opts.Metadata

		if rf := opts.ResponseFormat; rf != nil {
			name := rf.Name
			if name == "" {
				name = "response"
			}
			req.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
				Type: goopenai.ChatCompletionResponseFormatTypeJSONSchema,
				JSONSchema: &goopenai.ChatCompletionResponseFormatJSONSchema{
					Name:   name,
					Schema: json.RawMessage(rf.Schema),
					Strict: rf.Strict,
				},
			}
		}

		for _, t := range opts.Tools {
			var params any = emptyParameters
			if p := t.Parameters(); len(p) > 0 {
				params = json.RawMessage(p)
			}
			req.Tools = append(req.Tools, goopenai.Tool{
				Type: goopenai.ToolTypeFunction,
				Function: &goopenai.FunctionDefinition{
					Name:        t.Name(),
					Description: t.Description(),
					Parameters:  params,
				},
			})
		}
		if len(req.Tools) > 0 {
			req.ToolChoice = convertToolChoice(opts.ToolChoice)
		}
	}

	req.Messages = convertMessages(messages, opts)
	return req
}

// convertMessages translates framework Messages into chat messages. Options
// instructions become a leading system message when none is present.
func convertMessages(messages []af.Message, opts *af.ChatOptions) []goopenai.ChatCompletionMessage {
	result := make([]goopenai.ChatCompletionMessage, 0, len(messages)+1)
	hasSystem := false

	for _, msg := range messages {
		cm := goopenai.ChatCompletionMessage{
			Role: string(msg.Role),
			Name: msg.AuthorName,
		}

		switch msg.Role {
		case af.RoleTool:
			// One chat message per function result.
			for _, c := range msg.Contents {
				if fr, ok := c.(*af.FunctionResultContent); ok {
					result = append(result, goopenai.ChatCompletionMessage{
						Role:       goopenai.ChatMessageRoleTool,
						ToolCallID: fr.CallID,
						Content:    marshalResult(fr.Result),
					})
				}
			}
			continue

		case af.RoleAssistant:
			var text strings.Builder
			for _, c := range msg.Contents {
				switch v := c.(type) {
				case *af.TextContent:
					text.WriteString(v.Text)
				case *af.FunctionCallContent:
					cm.ToolCalls = append(cm.ToolCalls, goopenai.ToolCall{
						ID:   v.CallID,
						Type: goopenai.ToolTypeFunction,
						Function: goopenai.FunctionCall{
							Name:      v.Name,
							Arguments: v.Arguments,
						},
					})
				}
			}
			cm.Content = text.String()

		default:
			if msg.Role == af.RoleSystem {
				hasSystem = true
			}
			parts := convertContentParts(msg.Contents)
			if len(parts) == 1 && parts[0].Type == goopenai.ChatMessagePartTypeText {
				cm.Content = parts[0].Text
			} else if len(parts) > 0 {
				cm.MultiContent = parts
			}
		}

		result = append(result, cm)
	}

	if !hasSystem && opts != nil && opts.Instructions != "" {
		sys := goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleSystem, Content: opts.Instructions}
		result = append([]goopenai.ChatCompletionMessage{sys}, result...)
	}
	return result
}

// convertContentParts converts framework Content items into chat content
// parts. Images travel as data URIs or URLs; other media is not supported
// by the chat completions endpoint and is dropped.
func convertContentParts(contents af.Contents) []goopenai.ChatMessagePart {
	var parts []goopenai.ChatMessagePart
	for _, c := range contents {
		switch v := c.(type) {
		case *af.TextContent:
			parts = append(parts, goopenai.ChatMessagePart{Type: goopenai.ChatMessagePartTypeText, Text: v.Text})
		case *af.DataContent:
			if strings.HasPrefix(v.MediaType, "image/") {
				parts = append(parts, goopenai.ChatMessagePart{
					Type:     goopenai.ChatMessagePartTypeImageURL,
					ImageURL: &goopenai.ChatMessageImageURL{URL: v.DataURI()},
				})
			}
		case *af.URIContent:
			if v.MediaType == "" || strings.HasPrefix(v.MediaType, "image/") {
				parts = append(parts, goopenai.ChatMessagePart{
					Type:     goopenai.ChatMessagePartTypeImageURL,
					ImageURL: &goopenai.ChatMessageImageURL{URL: v.URI},
				})
			}
		}
	}
	return parts
}

func convertToolChoice(tc af.ToolChoice) any {
	switch tc {
	case "":
		return nil
	case af.ToolChoiceAuto, af.ToolChoiceRequired, af.ToolChoiceNone:
		return string(tc)
	}
	if name := tc.FunctionName(); name != "" {
		return goopenai.ToolChoice{
			Type:     goopenai.ToolTypeFunction,
			Function: goopenai.ToolFunction{Name: name},
		}
	}
	return string(tc)
}

func marshalResult(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "error: " + err.Error()
	}
	return string(b)
}
