package agentframework

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeOutput returns the structured output of resp as a T. It uses the
// value decoded by the runner when present and parses the response text
// otherwise.
func DecodeOutput[T any](resp *AgentResponse) (T, error) {
	var zero T
	if resp == nil {
		return zero, fmt.Errorf("%w: nil response", ErrInvalidResponse)
	}
	switch v := resp.Value.(type) {
	case T:
		return v, nil
	case *T:
		if v != nil {
			return *v, nil
		}
	}
	return decodeJSON[T](resp.Text())
}

// RunTyped runs r and decodes its structured output.
func RunTyped[T any](ctx context.Context, r Runner, messages []Message, opts ...RunOption) (T, *AgentResponse, error) {
	var zero T
	resp, err := r.Run(ctx, messages, opts...)
	if err != nil {
		return zero, nil, err
	}
	v, err := DecodeOutput[T](resp)
	if err != nil {
		return zero, resp, err
	}
	return v, resp, nil
}

func decodeJSON[T any](text string) (T, error) {
	var v T
	raw := extractJSON(text)
	if raw == "" {
		return v, fmt.Errorf("%w: no JSON object in response", ErrInvalidResponse)
	}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return v, fmt.Errorf("%w: decode structured output: %w", ErrInvalidResponse, err)
	}
	return v, nil
}

// extractJSON strips markdown fences and surrounding prose from a model answer.
func extractJSON(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	if json.Valid([]byte(s)) {
		return s
	}
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return ""
	}
	closer := byte('}')
	if s[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(s, closer)
	if end <= start {
		return ""
	}
	return s[start : end+1]
}
