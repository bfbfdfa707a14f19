package agentframework

import (
	"encoding/json"
	"maps"
)

// ToolChoice controls how the model selects tools.
type ToolChoice string

const (
	ToolChoiceAuto     ToolChoice = "auto"
	ToolChoiceRequired ToolChoice = "required"
	ToolChoiceNone     ToolChoice = "none"
)

// ToolChoiceFunction returns a ToolChoice that forces the model to call
// the named function.
func ToolChoiceFunction(name string) ToolChoice {
	return ToolChoice("function:" + name)
}

// FunctionName returns the forced function name, or "" when the choice is
// not of the form produced by [ToolChoiceFunction].
func (c ToolChoice) FunctionName() string {
	const prefix = "function:"
	if len(c) > len(prefix) && string(c[:len(prefix)]) == prefix {
		return string(c[len(prefix):])
	}
	return ""
}

// ResponseFormat asks the model for JSON output matching Schema.
type ResponseFormat struct {
	Name   string
	Schema json.RawMessage
	Strict bool
}

// ChatOptions configures a single chat completion request.
// Pointer fields use nil to represent "unset" (use provider default).
type ChatOptions struct {
	ModelID          string
	Temperature      *float64
	TopP             *float64
	MaxTokens        *int
	Stop             []string
	Seed             *int
	FrequencyPenalty *float64
	PresencePenalty  *float64
	Tools            []Tool
	ToolChoice       ToolChoice
	ResponseFormat   *ResponseFormat
	Metadata         map[string]string
	User             string
	Instructions     string

	// Extra holds provider-specific options not covered by standard fields.
	Extra map[string]any
}

// MergeChatOptions produces a new ChatOptions by overlaying override values
// onto base. Nil or zero-value fields in override do not overwrite base.
// Tools are merged by name (override replaces same-named tools).
// Metadata is merged (override keys win). Instructions are concatenated.
func MergeChatOptions(base, override *ChatOptions) *ChatOptions {
	if base == nil {
		if override == nil {
			return &ChatOptions{}
		}
		cp := *override
		return &cp
	}
	if override == nil {
		cp := *base
		return &cp
	}

	merged := *base

	if override.ModelID != "" {
		merged.ModelID = override.ModelID
	}
	if override.Temperature != nil {
		merged.Temperature = override.Temperature
	}
	if override.TopP != nil {
		merged.TopP = override.TopP
	}
	if override.MaxTokens != nil {
		merged.MaxTokens = override.MaxTokens
	}
	if len(override.Stop) > 0 {
		merged.Stop = override.Stop
	}
	if override.Seed != nil {
		merged.Seed = override.Seed
	}
	if override.FrequencyPenalty != nil {
		merged.FrequencyPenalty = override.FrequencyPenalty
	}
	if override.PresencePenalty != nil {
		merged.PresencePenalty = override.PresencePenalty
	}
	if override.ToolChoice != "" {
		merged.ToolChoice = override.ToolChoice
	}
	if override.ResponseFormat != nil {
		merged.ResponseFormat = override.ResponseFormat
	}
	if override.User != "" {
		merged.User = override.User
	}

	merged.Instructions = joinInstructions(merged.Instructions, override.Instructions)
	merged.Tools = mergeTools(merged.Tools, override.Tools)

	if len(override.Metadata) > 0 {
		m := make(map[string]string, len(merged.Metadata)+len(override.Metadata))
		maps.Copy(m, merged.Metadata)
		maps.Copy(m, override.Metadata)
		merged.Metadata = m
	}
	if len(override.Extra) > 0 {
		m := make(map[string]any, len(merged.Extra)+len(override.Extra))
		maps.Copy(m, merged.Extra)
		maps.Copy(m, override.Extra)
		merged.Extra = m
	}

	return &merged
}

// mergeTools keeps base order and lets same-named tools in extra replace
// their base counterpart. New tools are appended.
func mergeTools(base, extra []Tool) []Tool {
	if len(extra) == 0 {
		return base
	}
	byName := make(map[string]Tool, len(base)+len(extra))
	for _, t := range base {
		byName[t.Name()] = t
	}
	for _, t := range extra {
		byName[t.Name()] = t
	}
	tools := make([]Tool, 0, len(byName))
	seen := make(map[string]bool, len(byName))
	for _, t := range base {
		if seen[t.Name()] {
			continue
		}
		tools = append(tools, byName[t.Name()])
		seen[t.Name()] = true
	}
	for _, t := range extra {
		if !seen[t.Name()] {
			tools = append(tools, t)
			seen[t.Name()] = true
		}
	}
	return tools
}

func joinInstructions(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += "\n"
		}
		out += p
	}
	return out
}
