package gemini_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	af "github.com/agentcookbook/gemini-agents/agentframework"
	"github.com/agentcookbook/gemini-agents/gemini"
)

// mockTransportFunc is a RoundTripper that delegates to a function.
type mockTransportFunc func(*http.Request) (*http.Response, error)

func (f mockTransportFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newMockHTTPClient(fn func(*http.Request) (*http.Response, error)) *http.Client {
	return &http.Client{Transport: mockTransportFunc(fn)}
}

func jsonResponse(status int, body any) *http.Response {
	b, _ := json.Marshal(body)
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(b)),
	}
}

func sseResponse(chunks ...map[string]any) *http.Response {
	var buf bytes.Buffer
	for _, c := range chunks {
		b, _ := json.Marshal(c)
		buf.WriteString("data: ")
		buf.Write(b)
		buf.WriteString("\r\n\r\n")
	}
	return &http.Response{
		StatusCode: 200,
		Header:     http.Header{"Content-Type": []string{"text/event-stream"}},
		Body:       io.NopCloser(&buf),
	}
}

func readBody(t *testing.T, req *http.Request) map[string]any {
	t.Helper()
	body, _ := io.ReadAll(req.Body)
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		t.Fatalf("request body: %v (%s)", err, body)
	}
	return m
}

func textCandidate(text string) map[string]any {
	return map[string]any{
		"content":      map[string]any{"role": "model", "parts": []map[string]any{{"text": text}}},
		"finishReason": "STOP",
	}
}

func TestClient_Response_Basic(t *testing.T) {
	apiResp := map[string]any{
		"candidates": []map[string]any{textCandidate("Hello from Gemini")},
		"usageMetadata": map[string]any{
			"promptTokenCount":        10,
			"candidatesTokenCount":    8,
			"thoughtsTokenCount":      4,
			"cachedContentTokenCount": 2,
			"totalTokenCount":         22,
		},
		"modelVersion": "gemini-3-flash-preview",
		"responseId":   "resp-123",
	}

	httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		if req.Method != "POST" {
			t.Errorf("method = %q", req.Method)
		}
		if req.URL.Path != "/v1beta/models/gemini-3-flash-preview:generateContent" {
			t.Errorf("path = %q", req.URL.Path)
		}
		if req.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("api key = %q", req.Header.Get("x-goog-api-key"))
		}

		body := readBody(t, req)
		sys := body["systemInstruction"].(map[string]any)["parts"].([]any)[0].(map[string]any)
		if sys["text"] != "You are a helpful assistant." {
			t.Errorf("systemInstruction = %v", sys)
		}
		contents := body["contents"].([]any)
		if len(contents) != 1 || contents[0].(map[string]any)["role"] != "user" {
			t.Errorf("contents = %v", contents)
		}
		return jsonResponse(200, apiResp), nil
	})

	client := gemini.New("test-key", gemini.WithHTTPClient(httpClient))
	resp, err := client.Response(context.Background(), []af.Message{
		af.NewSystemMessage("You are a helpful assistant."),
		af.NewUserMessage("hi"),
	}, nil)
	if err != nil {
		t.Fatalf("Response: %v", err)
	}

	if resp.ResponseID != "resp-123" || resp.ModelID != "gemini-3-flash-preview" {
		t.Errorf("ResponseID = %q, ModelID = %q", resp.ResponseID, resp.ModelID)
	}
	if resp.FinishReason != af.FinishReasonStop {
		t.Errorf("FinishReason = %q", resp.FinishReason)
	}
	if resp.Text() != "Hello from Gemini" {
		t.Errorf("Text = %q", resp.Text())
	}
	u := resp.Usage
	if u.InputTokens != 10 || u.OutputTokens != 12 || u.TotalTokens != 22 || u.CachedTokens != 2 || u.ReasoningTokens != 4 {
		t.Errorf("Usage = %+v", u)
	}
}

func TestClient_Response_ToolCalls(t *testing.T) {
	apiResp := map[string]any{
		"candidates": []map[string]any{{
			"content": map[string]any{"role": "model", "parts": []map[string]any{{
				"functionCall":     map[string]any{"name": "get_weather", "args": map[string]any{"city": "Paris"}},
				"thoughtSignature": "c2ln",
			}}},
			"finishReason": "STOP",
		}},
	}

	httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		body := readBody(t, req)
		tools := body["tools"].([]any)
		decls := tools[0].(map[string]any)["functionDeclarations"].([]any)
		decl := decls[0].(map[string]any)
		if decl["name"] != "get_weather" {
			t.Errorf("declaration = %v", decl)
		}
		if _, ok := decl["parametersJsonSchema"].(map[string]any); !ok {
			t.Errorf("parametersJsonSchema missing: %v", decl)
		}
		fc := body["toolConfig"].(map[string]any)["functionCallingConfig"].(map[string]any)
		if fc["mode"] != "ANY" {
			t.Errorf("mode = %v", fc["mode"])
		}
		if names := fc["allowedFunctionNames"].([]any); names[0] != "get_weather" {
			t.Errorf("allowed = %v", names)
		}
		return jsonResponse(200, apiResp), nil
	})

	weather := af.NewTool("get_weather", "Get weather", json.RawMessage(`{"type":"object","properties":{"city":{"type":"string"}}}`),
		func(ctx context.Context, args json.RawMessage) (any, error) { return "sunny", nil })

	client := gemini.New("test-key", gemini.WithHTTPClient(httpClient))
	resp, err := client.Response(context.Background(), []af.Message{af.NewUserMessage("weather?")}, &af.ChatOptions{
		Tools:      []af.Tool{weather},
		ToolChoice: af.ToolChoiceFunction("get_weather"),
	})
	if err != nil {
		t.Fatalf("Response: %v", err)
	}
	if resp.FinishReason != af.FinishReasonToolCalls {
		t.Errorf("FinishReason = %q", resp.FinishReason)
	}

	fc, ok := resp.Messages[0].Contents[0].(*af.FunctionCallContent)
	if !ok {
		t.Fatalf("content = %T", resp.Messages[0].Contents[0])
	}
	if fc.Name != "get_weather" || fc.Arguments != `{"city":"Paris"}` {
		t.Errorf("call = %+v", fc)
	}
	if !strings.HasPrefix(fc.CallID, "call_") {
		t.Errorf("CallID = %q", fc.CallID)
	}
	if fc.Signature != "c2ln" {
		t.Errorf("Signature = %q", fc.Signature)
	}
}

func TestClient_Response_ToolRoundTrip(t *testing.T) {
	httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		body := readBody(t, req)
		contents := body["contents"].([]any)
		if len(contents) != 3 {
			t.Fatalf("contents = %d, want 3", len(contents))
		}

		model := contents[1].(map[string]any)
		if model["role"] != "model" {
			t.Errorf("role = %v", model["role"])
		}
		call := model["parts"].([]any)[0].(map[string]any)
		if call["thoughtSignature"] != "sig" {
			t.Errorf("signature not echoed: %v", call)
		}

		// Both function results travel in one user turn.
		results := contents[2].(map[string]any)["parts"].([]any)
		if len(results) != 2 {
			t.Fatalf("function responses = %d, want 2", len(results))
		}
		fr := results[0].(map[string]any)["functionResponse"].(map[string]any)
		if fr["name"] != "lookup" || fr["response"].(map[string]any)["result"] != "42" {
			t.Errorf("functionResponse = %v", fr)
		}
		return jsonResponse(200, map[string]any{"candidates": []map[string]any{textCandidate("done")}}), nil
	})

	c1 := &af.FunctionCallContent{CallID: "c1", Name: "lookup", Arguments: `{"q":"a"}`, Signature: "sig"}
	c2 := &af.FunctionCallContent{CallID: "c2", Name: "lookup", Arguments: `{"q":"b"}`}
	msgs := []af.Message{
		af.NewUserMessage("look things up"),
		{Role: af.RoleAssistant, Contents: af.Contents{c1, c2}},
		af.NewToolMessage(c1, "42"),
		af.NewToolMessage(c2, "43"),
	}

	client := gemini.New("test-key", gemini.WithHTTPClient(httpClient))
	if _, err := client.Response(context.Background(), msgs, nil); err != nil {
		t.Fatalf("Response: %v", err)
	}
}

func TestClient_Response_NativeToolsAndConfig(t *testing.T) {
	httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		if !strings.Contains(req.URL.Path, "models/gemini-2.5-pro:generateContent") {
			t.Errorf("path = %q", req.URL.Path)
		}
		body := readBody(t, req)
		tools := body["tools"].([]any)
		if len(tools) != 3 {
			t.Fatalf("tools = %v", tools)
		}
		if _, ok := tools[0].(map[string]any)["googleSearch"]; !ok {
			t.Errorf("tools[0] = %v", tools[0])
		}
		if _, ok := tools[1].(map[string]any)["urlContext"]; !ok {
			t.Errorf("tools[1] = %v", tools[1])
		}
		fs := tools[2].(map[string]any)["fileSearch"].(map[string]any)
		if fs["fileSearchStoreNames"].([]any)[0] != "fileSearchStores/abc" {
			t.Errorf("fileSearch = %v", fs)
		}

		gc := body["generationConfig"].(map[string]any)
		tc := gc["thinkingConfig"].(map[string]any)
		if tc["thinkingBudget"] != 1280.0 || tc["includeThoughts"] != true {
			t.Errorf("thinkingConfig = %v", tc)
		}
		if gc["temperature"] != 0.2 {
			t.Errorf("temperature = %v", gc["temperature"])
		}
		if gc["responseMimeType"] != "application/json" {
			t.Errorf("responseMimeType = %v", gc["responseMimeType"])
		}
		if _, ok := gc["responseJsonSchema"].(map[string]any); !ok {
			t.Errorf("responseJsonSchema = %v", gc["responseJsonSchema"])
		}
		return jsonResponse(200, map[string]any{"candidates": []map[string]any{textCandidate(`{"ok":true}`)}}), nil
	})

	client := gemini.New("test-key",
		gemini.WithHTTPClient(httpClient),
		gemini.WithModel("gemini-2.5-pro"),
		gemini.WithSearch(),
		gemini.WithURLContext(),
		gemini.WithFileSearchStores("fileSearchStores/abc"),
		gemini.WithThinking(1280, true),
	)
	temp := 0.2
	_, err := client.Response(context.Background(), []af.Message{af.NewUserMessage("x")}, &af.ChatOptions{
		Temperature:    &temp,
		ResponseFormat: &af.ResponseFormat{Name: "Out", Schema: json.RawMessage(`{"type":"object"}`)},
	})
	if err != nil {
		t.Fatalf("Response: %v", err)
	}
}

func TestClient_Response_ImageModalityFoldsInstructions(t *testing.T) {
	pixel := []byte{0x89, 'P', 'N', 'G'}
	httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		body := readBody(t, req)
		if _, ok := body["systemInstruction"]; ok {
			t.Error("systemInstruction must not be sent to image models")
		}
		parts := body["contents"].([]any)[0].(map[string]any)["parts"].([]any)
		if parts[0].(map[string]any)["text"] != "Draw in watercolor." || parts[1].(map[string]any)["text"] != "a cat" {
			t.Errorf("parts = %v", parts)
		}
		mods := body["generationConfig"].(map[string]any)["responseModalities"].([]any)
		if len(mods) != 2 || mods[1] != "IMAGE" {
			t.Errorf("modalities = %v", mods)
		}
		return jsonResponse(200, map[string]any{"candidates": []map[string]any{{
			"content": map[string]any{"role": "model", "parts": []map[string]any{
				{"text": "Here you go"},
				{"inlineData": map[string]any{"mimeType": "image/png", "data": pixel}},
			}},
			"finishReason": "STOP",
		}}}), nil
	})

	client := gemini.New("test-key",
		gemini.WithHTTPClient(httpClient),
		gemini.WithModel("gemini-2.5-flash-image"),
		gemini.WithResponseModalities("TEXT", "IMAGE"),
	)
	resp, err := client.Response(context.Background(), []af.Message{
		af.NewSystemMessage("Draw in watercolor."),
		af.NewUserMessage("a cat"),
	}, nil)
	if err != nil {
		t.Fatalf("Response: %v", err)
	}
	img, ok := resp.Messages[0].Contents[1].(*af.DataContent)
	if !ok || img.MediaType != "image/png" || !bytes.Equal(img.Data, pixel) {
		t.Errorf("image = %+v", resp.Messages[0].Contents[1])
	}
}

func TestClient_Response_MediaParts(t *testing.T) {
	httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		body := readBody(t, req)
		parts := body["contents"].([]any)[0].(map[string]any)["parts"].([]any)
		if len(parts) != 3 {
			t.Fatalf("parts = %v", parts)
		}
		inline := parts[1].(map[string]any)["inlineData"].(map[string]any)
		if inline["mimeType"] != "audio/mpeg" || inline["data"] != "AQID" {
			t.Errorf("inlineData = %v", inline)
		}
		file := parts[2].(map[string]any)["fileData"].(map[string]any)
		if file["fileUri"] != "https://www.youtube.com/watch?v=x" {
			t.Errorf("fileData = %v", file)
		}
		return jsonResponse(200, map[string]any{"candidates": []map[string]any{textCandidate("ok")}}), nil
	})

	client := gemini.New("test-key", gemini.WithHTTPClient(httpClient))
	msg := af.NewUserMessage("describe",
		&af.DataContent{Data: []byte{1, 2, 3}, MediaType: "audio/mpeg"},
		&af.URIContent{URI: "https://www.youtube.com/watch?v=x", MediaType: "video/mp4"},
	)
	if _, err := client.Response(context.Background(), []af.Message{msg}, nil); err != nil {
		t.Fatalf("Response: %v", err)
	}
}

func TestClient_Response_Grounding(t *testing.T) {
	apiResp := map[string]any{
		"candidates": []map[string]any{{
			"content":      map[string]any{"role": "model", "parts": []map[string]any{{"text": "The tallest building is..."}}},
			"finishReason": "STOP",
			"groundingMetadata": map[string]any{
				"webSearchQueries": []string{"tallest building"},
				"groundingChunks": []map[string]any{
					{"web": map[string]any{"uri": "https://a.example", "title": "a.example"}},
					{"retrievedContext": map[string]any{"uri": "doc.pdf", "title": "doc", "text": "passage"}},
				},
			},
		}},
	}
	httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, apiResp), nil
	})

	client := gemini.New("test-key", gemini.WithHTTPClient(httpClient), gemini.WithGrounding(0.7))
	resp, err := client.Response(context.Background(), []af.Message{af.NewUserMessage("q")}, nil)
	if err != nil {
		t.Fatalf("Response: %v", err)
	}

	var cites []*af.CitationContent
	for _, c := range resp.Messages[0].Contents {
		if cc, ok := c.(*af.CitationContent); ok {
			cites = append(cites, cc)
		}
	}
	if len(cites) != 2 || cites[0].URI != "https://a.example" || cites[1].Text != "passage" {
		t.Errorf("citations = %+v", cites)
	}
	gm, ok := resp.Extra["grounding_metadata"].(*gemini.GroundingMetadata)
	if !ok || gm.WebSearchQueries[0] != "tallest building" {
		t.Errorf("grounding_metadata = %v", resp.Extra["grounding_metadata"])
	}
}

func TestClient_Response_Thoughts(t *testing.T) {
	apiResp := map[string]any{"candidates": []map[string]any{{
		"content": map[string]any{"role": "model", "parts": []map[string]any{
			{"text": "Consider the boat capacity.", "thought": true},
			{"text": "Answer: 11 crossings."},
		}},
		"finishReason": "STOP",
	}}}
	httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, apiResp), nil
	})

	client := gemini.New("test-key", gemini.WithHTTPClient(httpClient))
	resp, err := client.Response(context.Background(), []af.Message{af.NewUserMessage("puzzle")}, nil)
	if err != nil {
		t.Fatalf("Response: %v", err)
	}
	if r, ok := resp.Messages[0].Contents[0].(*af.TextReasoningContent); !ok || r.Text != "Consider the boat capacity." {
		t.Errorf("reasoning = %+v", resp.Messages[0].Contents[0])
	}
	if resp.Text() != "Answer: 11 crossings." {
		t.Errorf("Text = %q", resp.Text())
	}
}

func TestClient_Response_CachedContentDropsInstructions(t *testing.T) {
	httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		body := readBody(t, req)
		if body["cachedContent"] != "cachedContents/xyz" {
			t.Errorf("cachedContent = %v", body["cachedContent"])
		}
		if _, ok := body["systemInstruction"]; ok {
			t.Error("systemInstruction sent with cached content")
		}
		return jsonResponse(200, map[string]any{"candidates": []map[string]any{textCandidate("ok")}}), nil
	})

	client := gemini.New("test-key", gemini.WithHTTPClient(httpClient)).WithCache("cachedContents/xyz")
	_, err := client.Response(context.Background(), []af.Message{
		af.NewSystemMessage("ignored"),
		af.NewUserMessage("summarize"),
	}, nil)
	if err != nil {
		t.Fatalf("Response: %v", err)
	}
}

func TestClient_Response_Blocked(t *testing.T) {
	httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, map[string]any{"promptFeedback": map[string]any{"blockReason": "SAFETY"}}), nil
	})

	client := gemini.New("test-key", gemini.WithHTTPClient(httpClient))
	_, err := client.Response(context.Background(), []af.Message{af.NewUserMessage("x")}, nil)
	if !errors.Is(err, af.ErrContentFilter) {
		t.Errorf("err = %v, want ErrContentFilter", err)
	}
}

func TestClient_Response_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    map[string]any
		wantErr error
	}{
		{"bad request", 400, map[string]any{"error": map[string]any{"code": 400, "message": "bad", "status": "INVALID_ARGUMENT"}}, af.ErrInvalidRequest},
		{"invalid key", 400, map[string]any{"error": map[string]any{"code": 400, "message": "API key not valid", "status": "INVALID_ARGUMENT",
			"details": []map[string]any{{"@type": "type.googleapis.com/google.rpc.ErrorInfo", "reason": "API_KEY_INVALID"}}}}, af.ErrAuth},
		{"forbidden", 403, map[string]any{"error": map[string]any{"code": 403, "message": "denied", "status": "PERMISSION_DENIED"}}, af.ErrAuth},
		{"unknown model", 404, map[string]any{"error": map[string]any{"code": 404, "message": "models/nope is not found", "status": "NOT_FOUND"}}, af.ErrModelNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
				calls++
				return jsonResponse(tt.status, tt.body), nil
			})
			client := gemini.New("test-key", gemini.WithHTTPClient(httpClient))
			_, err := client.Response(context.Background(), []af.Message{af.NewUserMessage("x")}, nil)

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			var svcErr *af.ServiceError
			if !errors.As(err, &svcErr) || svcErr.StatusCode != tt.status {
				t.Errorf("ServiceError = %+v", svcErr)
			}
			if calls != 1 {
				t.Errorf("calls = %d, client errors must not be retried", calls)
			}
		})
	}
}

func TestClient_Response_RetriesRateLimit(t *testing.T) {
	calls := 0
	httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		calls++
		if calls == 1 {
			resp := jsonResponse(429, map[string]any{"error": map[string]any{"code": 429, "message": "quota", "status": "RESOURCE_EXHAUSTED"}})
			resp.Header.Set("Retry-After", "0")
			return resp, nil
		}
		// The request body must be replayed on retry.
		body := readBody(t, req)
		if len(body["contents"].([]any)) != 1 {
			t.Errorf("retry body = %v", body)
		}
		return jsonResponse(200, map[string]any{"candidates": []map[string]any{textCandidate("ok")}}), nil
	})

	client := gemini.New("test-key", gemini.WithHTTPClient(httpClient), gemini.WithRetry(2))
	resp, err := client.Response(context.Background(), []af.Message{af.NewUserMessage("x")}, nil)
	if err != nil {
		t.Fatalf("Response: %v", err)
	}
	if calls != 2 || resp.Text() != "ok" {
		t.Errorf("calls = %d, text = %q", calls, resp.Text())
	}
}

func TestClient_Response_RateLimitExhausted(t *testing.T) {
	httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(429, map[string]any{"error": map[string]any{"code": 429, "message": "quota", "status": "RESOURCE_EXHAUSTED",
			"details": []map[string]any{{"@type": "type.googleapis.com/google.rpc.RetryInfo", "retryDelay": "7s"}}}}), nil
	})

	client := gemini.New("test-key", gemini.WithHTTPClient(httpClient), gemini.WithRetry(1))
	_, err := client.Response(context.Background(), []af.Message{af.NewUserMessage("x")}, nil)
	if !errors.Is(err, af.ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
	var svcErr *af.ServiceError
	if errors.As(err, &svcErr) && svcErr.RetryAfter != 7 {
		t.Errorf("RetryAfter = %d", svcErr.RetryAfter)
	}
}

func TestClient_MissingAPIKey(t *testing.T) {
	client := gemini.New("")
	_, err := client.Response(context.Background(), []af.Message{af.NewUserMessage("x")}, nil)
	if !errors.Is(err, af.ErrMissingCredential) {
		t.Errorf("err = %v, want ErrMissingCredential", err)
	}
}

func TestClient_StreamResponse(t *testing.T) {
	httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		if !strings.HasSuffix(req.URL.Path, ":streamGenerateContent") || req.URL.Query().Get("alt") != "sse" {
			t.Errorf("url = %s", req.URL)
		}
		return sseResponse(
			map[string]any{"candidates": []map[string]any{{"content": map[string]any{"role": "model", "parts": []map[string]any{{"text": "Hello"}}}}}},
			map[string]any{"candidates": []map[string]any{{"content": map[string]any{"role": "model", "parts": []map[string]any{{"text": " world"}}}}}},
			map[string]any{
				"candidates":    []map[string]any{{"content": map[string]any{"role": "model", "parts": []map[string]any{{"text": "!"}}}, "finishReason": "STOP"}},
				"usageMetadata": map[string]any{"promptTokenCount": 3, "candidatesTokenCount": 3, "totalTokenCount": 6},
			},
		), nil
	})

	client := gemini.New("test-key", gemini.WithHTTPClient(httpClient))
	stream, err := client.StreamResponse(context.Background(), []af.Message{af.NewUserMessage("hi")}, nil)
	if err != nil {
		t.Fatalf("StreamResponse: %v", err)
	}

	updates, err := stream.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(updates) != 3 {
		t.Fatalf("updates = %d, want 3", len(updates))
	}

	resp := af.ChatResponseFromUpdates(updates)
	if resp.Text() != "Hello world!" {
		t.Errorf("Text = %q", resp.Text())
	}
	if resp.Usage.TotalTokens != 6 || resp.FinishReason != af.FinishReasonStop {
		t.Errorf("Usage = %+v, FinishReason = %q", resp.Usage, resp.FinishReason)
	}
}

func TestClient_StreamResponse_SkipsMalformedChunks(t *testing.T) {
	httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		body := "data: {not json}\n\n" +
			`data: {"candidates":[{"content":{"role":"model","parts":[{"text":"ok"}]}}]}` + "\n\n"
		return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader(body))}, nil
	})

	client := gemini.New("test-key", gemini.WithHTTPClient(httpClient))
	stream, err := client.StreamResponse(context.Background(), []af.Message{af.NewUserMessage("hi")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	updates, err := stream.Collect(context.Background())
	if err != nil || len(updates) != 1 || updates[0].Text() != "ok" {
		t.Errorf("updates = %+v, err = %v", updates, err)
	}
}

func TestClient_WithAgent(t *testing.T) {
	calls := 0
	httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		calls++
		if calls == 1 {
			return jsonResponse(200, map[string]any{"candidates": []map[string]any{{
				"content": map[string]any{"role": "model", "parts": []map[string]any{{
					"functionCall": map[string]any{"name": "add", "args": map[string]any{"a": 2, "b": 3}},
				}}},
				"finishReason": "STOP",
			}}}), nil
		}
		body := readBody(t, req)
		contents := body["contents"].([]any)
		last := contents[len(contents)-1].(map[string]any)["parts"].([]any)[0].(map[string]any)
		if fr := last["functionResponse"].(map[string]any); fr["response"].(map[string]any)["result"] != 5.0 {
			t.Errorf("functionResponse = %v", fr)
		}
		return jsonResponse(200, map[string]any{"candidates": []map[string]any{textCandidate("2 + 3 = 5")}}), nil
	})

	type addArgs struct {
		A int `json:"a"`
		B int `json:"b"`
	}
	add := af.NewTypedTool("add", "Add two numbers", func(ctx context.Context, a addArgs) (any, error) {
		return a.A + a.B, nil
	})

	agent := af.NewAgent(gemini.New("test-key", gemini.WithHTTPClient(httpClient)),
		af.WithName("Calculator"),
		af.WithTools(add),
	)
	resp, err := agent.Run(context.Background(), []af.Message{af.NewUserMessage("2+3?")})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if resp.Text() != "2 + 3 = 5" || calls != 2 {
		t.Errorf("Text = %q, calls = %d", resp.Text(), calls)
	}
}
