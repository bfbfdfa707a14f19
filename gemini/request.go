package gemini

import (
	"encoding/json"
	"reflect"
	"slices"
	"strings"

	af "github.com/agentcookbook/gemini-agents/agentframework"
)

// DefaultModel is used when neither the client nor the request names a model.
const DefaultModel = "gemini-3-flash-preview"

// buildRequest converts framework messages and options to a generateContent
// request and resolves the model to call.
func (c *Client) buildRequest(messages []af.Message, opts *af.ChatOptions) (*generateContentRequest, string) {
	if opts == nil {
		opts = &af.ChatOptions{}
	}
	cfg := c.cfg

	model := c.model
	if opts.ModelID != "" {
		model = opts.ModelID
	}
	if model == "" {
		model = DefaultModel
	}

	req := &generateContentRequest{}
	var system []string
	for i := range messages {
		m := &messages[i]
		if m.Role == af.RoleSystem {
			if t := m.Text(); t != "" {
				system = append(system, t)
			}
			continue
		}
		req.Contents = appendContent(req.Contents, convertMessage(m))
	}
	if len(system) == 0 && opts.Instructions != "" {
		system = append(system, opts.Instructions)
	}

	imageOutput := slices.Contains(cfg.modalities, "IMAGE")
	if len(system) > 0 {
		instructions := strings.Join(system, "\n")
		if imageOutput {
			foldInstructions(req.Contents, instructions)
		} else {
			req.SystemInstruction = &content{Parts: []part{{Text: instructions}}}
		}
	}

	req.Tools = buildTools(opts.Tools, cfg, model)
	if len(opts.Tools) > 0 {
		req.ToolConfig = buildToolConfig(opts.ToolChoice)
	}
	req.GenerationConfig = buildGenerationConfig(opts, cfg)

	cached := cfg.cachedContent
	if v, ok := opts.Extra["cached_content"].(string); ok && v != "" {
		cached = v
	}
	if cached != "" {
		// Requests against a cache may not carry their own system
		// instruction, tools or tool config.
		req.CachedContent = cached
		req.SystemInstruction = nil
		req.Tools = nil
		req.ToolConfig = nil
	}
	return req, model
}

// appendContent merges consecutive turns of the same role; the API expects
// all function responses of a turn in a single content.
func appendContent(contents []content, c *content) []content {
	if c == nil || len(c.Parts) == 0 {
		return contents
	}
	if n := len(contents); n > 0 && contents[n-1].Role == c.Role {
		contents[n-1].Parts = append(contents[n-1].Parts, c.Parts...)
		return contents
	}
	return append(contents, *c)
}

// foldInstructions prepends instructions to the first user turn.
func foldInstructions(contents []content, instructions string) {
	for i := range contents {
		if contents[i].Role == "user" {
			contents[i].Parts = append([]part{{Text: instructions}}, contents[i].Parts...)
			return
		}
	}
}

func convertMessage(m *af.Message) *content {
	role := "user"
	if m.Role == af.RoleAssistant {
		role = "model"
	}
	c := &content{Role: role}
	for _, item := range m.Contents {
		switch v := item.(type) {
		case *af.TextContent:
			if v.Text != "" {
				c.Parts = append(c.Parts, part{Text: v.Text})
			}
		case *af.DataContent:
			c.Parts = append(c.Parts, part{InlineData: &blob{MimeType: v.MediaType, Data: v.Data}})
		case *af.URIContent:
			c.Parts = append(c.Parts, part{FileData: &fileData{MimeType: v.MediaType, FileURI: v.URI}})
		case *af.HostedFileContent:
			uri := v.URI
			if uri == "" {
				uri = v.FileID
			}
			c.Parts = append(c.Parts, part{FileData: &fileData{MimeType: v.MediaType, FileURI: uri}})
		case *af.FunctionCallContent:
			args := json.RawMessage(v.Arguments)
			if len(args) == 0 || !json.Valid(args) {
				args = json.RawMessage(`{}`)
			}
			c.Parts = append(c.Parts, part{
				FunctionCall:     &functionCall{Name: v.Name, Args: args},
				ThoughtSignature: v.Signature,
			})
		case *af.FunctionResultContent:
			c.Parts = append(c.Parts, part{FunctionResponse: &functionResponse{
				Name:     v.Name,
				Response: map[string]any{"result": v.Result},
			}})
		}
	}
	return c
}

func buildTools(tools []af.Tool, cfg *clientConfig, model string) []tool {
	var out []tool
	if len(tools) > 0 {
		decls := make([]functionDeclaration, 0, len(tools))
		for _, t := range tools {
			decls = append(decls, functionDeclaration{
				Name:                 t.Name(),
				Description:          t.Description(),
				ParametersJSONSchema: t.Parameters(),
			})
		}
		out = append(out, tool{FunctionDeclarations: decls})
	}
	if cfg.search {
		out = append(out, tool{GoogleSearch: &struct{}{}})
	}
	if cfg.grounding != nil {
		if strings.HasPrefix(model, "gemini-1") {
			out = append(out, tool{GoogleSearchRetrieval: &googleSearchRetrieval{
				DynamicRetrievalConfig: dynamicRetrievalConfig{
					Mode:             "MODE_DYNAMIC",
					DynamicThreshold: *cfg.grounding,
				},
			}})
		} else if !cfg.search {
			out = append(out, tool{GoogleSearch: &struct{}{}})
		}
	}
	if cfg.urlContext {
		out = append(out, tool{URLContext: &struct{}{}})
	}
	if len(cfg.fileSearch) > 0 {
		out = append(out, tool{FileSearch: &fileSearch{FileSearchStoreNames: cfg.fileSearch}})
	}
	return out
}

func buildToolConfig(choice af.ToolChoice) *toolConfig {
	fc := &functionCallingConfig{Mode: "AUTO"}
	switch {
	case choice == af.ToolChoiceRequired:
		fc.Mode = "ANY"
	case choice == af.ToolChoiceNone:
		fc.Mode = "NONE"
	case choice.FunctionName() != "":
		fc.Mode = "ANY"
		fc.AllowedFunctionNames = []string{choice.FunctionName()}
	}
	return &toolConfig{FunctionCallingConfig: fc}
}

func buildGenerationConfig(opts *af.ChatOptions, cfg *clientConfig) *generationConfig {
	gc := &generationConfig{
		Temperature:        opts.Temperature,
		TopP:               opts.TopP,
		MaxOutputTokens:    opts.MaxTokens,
		StopSequences:      opts.Stop,
		Seed:               opts.Seed,
		PresencePenalty:    opts.PresencePenalty,
		FrequencyPenalty:   opts.FrequencyPenalty,
		ResponseModalities: cfg.modalities,
	}
	if rf := opts.ResponseFormat; rf != nil {
		gc.ResponseMimeType = "application/json"
		gc.ResponseJSONSchema = rf.Schema
	}
	if cfg.voice != "" {
		gc.SpeechConfig = &speechConfig{}
		gc.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName = cfg.voice
	}
	if cfg.thinkingBudget != nil || cfg.includeThoughts {
		gc.ThinkingConfig = &thinkingConfig{
			ThinkingBudget:  cfg.thinkingBudget,
			IncludeThoughts: cfg.includeThoughts,
		}
	}
	if reflect.ValueOf(*gc).IsZero() {
		return nil
	}
	return gc
}
