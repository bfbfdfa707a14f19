package agentframework

import "time"

// UsageDetails holds token consumption statistics for a model response.
type UsageDetails struct {
	InputTokens     int `json:"inputTokenCount,omitempty"`
	OutputTokens    int `json:"outputTokenCount,omitempty"`
	TotalTokens     int `json:"totalTokenCount,omitempty"`
	CachedTokens    int `json:"cachedTokenCount,omitempty"`
	ReasoningTokens int `json:"reasoningTokenCount,omitempty"`
}

// Add returns the sum of u and o.
func (u UsageDetails) Add(o UsageDetails) UsageDetails {
	return UsageDetails{
		InputTokens:     u.InputTokens + o.InputTokens,
		OutputTokens:    u.OutputTokens + o.OutputTokens,
		TotalTokens:     u.TotalTokens + o.TotalTokens,
		CachedTokens:    u.CachedTokens + o.CachedTokens,
		ReasoningTokens: u.ReasoningTokens + o.ReasoningTokens,
	}
}

// RunMetrics summarizes one agent, team or workflow run.
type RunMetrics struct {
	Usage      UsageDetails  `json:"usage"`
	Duration   time.Duration `json:"duration"`
	ModelCalls int           `json:"modelCalls,omitempty"`
	ToolCalls  int           `json:"toolCalls,omitempty"`
}
