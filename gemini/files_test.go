package gemini_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	af "github.com/agentcookbook/gemini-agents/agentframework"
	"github.com/agentcookbook/gemini-agents/gemini"
)

func TestClient_UploadFile_Resumable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "imdb.csv")
	if err := os.WriteFile(path, []byte("title,rating\nHeat,8.3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	step := 0
	httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		step++
		switch step {
		case 1:
			if req.URL.Path != "/upload/v1beta/files" {
				t.Errorf("start path = %q", req.URL.Path)
			}
			if req.Header.Get("X-Goog-Upload-Command") != "start" || req.Header.Get("X-Goog-Upload-Protocol") != "resumable" {
				t.Errorf("start headers = %v", req.Header)
			}
			if req.Header.Get("X-Goog-Upload-Header-Content-Type") != "text/csv" {
				t.Errorf("content type = %q", req.Header.Get("X-Goog-Upload-Header-Content-Type"))
			}
			body := readBody(t, req)
			if f := body["file"].(map[string]any); f["displayName"] != "IMDB" {
				t.Errorf("metadata = %v", body)
			}
			resp := jsonResponse(200, map[string]any{})
			resp.Header.Set("X-Goog-Upload-URL", "https://upload.example/session/1")
			return resp, nil
		case 2:
			if req.URL.String() != "https://upload.example/session/1" {
				t.Errorf("upload url = %s", req.URL)
			}
			if req.Header.Get("X-Goog-Upload-Command") != "upload, finalize" || req.Header.Get("X-Goog-Upload-Offset") != "0" {
				t.Errorf("upload headers = %v", req.Header)
			}
			data, _ := io.ReadAll(req.Body)
			if !strings.HasPrefix(string(data), "title,rating") {
				t.Errorf("uploaded = %q", data)
			}
			return jsonResponse(200, map[string]any{"file": map[string]any{
				"name": "files/abc", "uri": "https://generativelanguage.googleapis.com/v1beta/files/abc",
				"mimeType": "text/csv", "state": "ACTIVE",
			}}), nil
		}
		t.Fatalf("unexpected request %d: %s", step, req.URL)
		return nil, nil
	})

	client := gemini.New("test-key", gemini.WithHTTPClient(httpClient))
	f, err := client.UploadFile(context.Background(), path, &gemini.UploadOptions{DisplayName: "IMDB"})
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if f.Name != "files/abc" || f.State != gemini.FileStateActive {
		t.Errorf("file = %+v", f)
	}
	hc := f.Content()
	if hc.URI != f.URI || hc.MediaType != "text/csv" {
		t.Errorf("content = %+v", hc)
	}
}

func TestClient_WaitForFile(t *testing.T) {
	polls := 0
	httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/v1beta/files/vid" {
			t.Errorf("path = %q", req.URL.Path)
		}
		polls++
		state := "PROCESSING"
		if polls == 3 {
			state = "ACTIVE"
		}
		return jsonResponse(200, map[string]any{"name": "files/vid", "state": state}), nil
	})

	client := gemini.New("test-key", gemini.WithHTTPClient(httpClient))
	f, err := client.WaitForFile(context.Background(), "vid", time.Millisecond)
	if err != nil {
		t.Fatalf("WaitForFile: %v", err)
	}
	if polls != 3 || f.State != gemini.FileStateActive {
		t.Errorf("polls = %d, state = %q", polls, f.State)
	}
}

func TestClient_GetOrUploadFile_Existing(t *testing.T) {
	httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		if req.Method != http.MethodGet {
			t.Errorf("unexpected %s %s", req.Method, req.URL)
		}
		return jsonResponse(200, map[string]any{"name": "files/a11", "state": "ACTIVE"}), nil
	})

	client := gemini.New("test-key", gemini.WithHTTPClient(httpClient))
	f, err := client.GetOrUploadFile(context.Background(), "files/a11", "does-not-matter.txt")
	if err != nil || f.Name != "files/a11" {
		t.Errorf("file = %+v, err = %v", f, err)
	}
}

func TestClient_CreateCache(t *testing.T) {
	httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/v1beta/cachedContents" {
			t.Errorf("path = %q", req.URL.Path)
		}
		body := readBody(t, req)
		if body["model"] != "models/gemini-2.5-flash" || body["ttl"] != "300s" {
			t.Errorf("body = %v", body)
		}
		parts := body["contents"].([]any)[0].(map[string]any)["parts"].([]any)
		if fd := parts[0].(map[string]any)["fileData"].(map[string]any); fd["fileUri"] != "https://files/a11" {
			t.Errorf("fileData = %v", fd)
		}
		return jsonResponse(200, map[string]any{
			"name":          "cachedContents/c1",
			"usageMetadata": map[string]any{"totalTokenCount": 321},
		}), nil
	})

	client := gemini.New("test-key", gemini.WithHTTPClient(httpClient))
	cache, err := client.CreateCache(context.Background(), gemini.CacheConfig{
		Model:             "gemini-2.5-flash",
		SystemInstruction: "You are an expert on this transcript.",
		Contents: []af.Message{{Role: af.RoleUser, Contents: af.Contents{
			&af.HostedFileContent{FileID: "files/a11", URI: "https://files/a11", MediaType: "text/plain"},
		}}},
		TTL: 5 * time.Minute,
	})
	if err != nil {
		t.Fatalf("CreateCache: %v", err)
	}
	if cache.Name != "cachedContents/c1" || cache.UsageMetadata.TotalTokenCount != 321 {
		t.Errorf("cache = %+v", cache)
	}
}

func TestClient_FileSearchStoreLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manual.txt")
	if err := os.WriteFile(path, []byte("press the red button"), 0o644); err != nil {
		t.Fatal(err)
	}

	var seen []string
	httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		seen = append(seen, req.Method+" "+req.URL.Path)
		switch {
		case req.URL.Path == "/v1beta/fileSearchStores" && req.Method == http.MethodPost:
			return jsonResponse(200, map[string]any{"name": "fileSearchStores/s1", "displayName": "manuals"}), nil
		case req.URL.Path == "/upload/v1beta/fileSearchStores/s1:uploadToFileSearchStore":
			resp := jsonResponse(200, map[string]any{})
			resp.Header.Set("X-Goog-Upload-URL", "https://upload.example/s1")
			return resp, nil
		case req.URL.Host == "upload.example":
			return jsonResponse(200, map[string]any{"name": "fileSearchStores/s1/upload/operations/op1", "done": false}), nil
		case req.URL.Path == "/v1beta/fileSearchStores/s1/upload/operations/op1":
			return jsonResponse(200, map[string]any{"name": "fileSearchStores/s1/upload/operations/op1", "done": true}), nil
		case req.Method == http.MethodDelete:
			if req.URL.Query().Get("force") != "true" {
				t.Errorf("force = %q", req.URL.Query().Get("force"))
			}
			return jsonResponse(200, map[string]any{}), nil
		}
		t.Errorf("unexpected %s %s", req.Method, req.URL)
		return jsonResponse(404, map[string]any{}), nil
	})

	ctx := context.Background()
	client := gemini.New("test-key", gemini.WithHTTPClient(httpClient))
	store, err := client.CreateFileSearchStore(ctx, "manuals")
	if err != nil {
		t.Fatalf("CreateFileSearchStore: %v", err)
	}
	op, err := client.UploadToFileSearchStore(ctx, path, store.Name, "")
	if err != nil {
		t.Fatalf("UploadToFileSearchStore: %v", err)
	}
	if op, err = client.WaitForOperation(ctx, op, time.Millisecond); err != nil || !op.Done {
		t.Fatalf("WaitForOperation: %+v, %v", op, err)
	}
	if err := client.DeleteFileSearchStore(ctx, store.Name, true); err != nil {
		t.Fatalf("DeleteFileSearchStore: %v", err)
	}
	if len(seen) != 5 {
		t.Errorf("requests = %v", seen)
	}
}

func TestClient_WaitForOperation_Error(t *testing.T) {
	client := gemini.New("test-key")
	op := &gemini.Operation{Name: "operations/x", Done: true, Error: &gemini.OperationError{Code: 3, Message: "unsupported file"}}
	if _, err := client.WaitForOperation(context.Background(), op, 0); !errors.Is(err, af.ErrService) {
		t.Errorf("err = %v", err)
	}
}

func TestEmbedder(t *testing.T) {
	httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		body := readBody(t, req)
		switch {
		case strings.HasSuffix(req.URL.Path, "models/gemini-embedding-001:embedContent"):
			if body["outputDimensionality"] != 1536.0 || body["taskType"] != "RETRIEVAL_QUERY" {
				t.Errorf("body = %v", body)
			}
			return jsonResponse(200, map[string]any{"embedding": map[string]any{"values": []float32{0.1, 0.2}}}), nil
		case strings.HasSuffix(req.URL.Path, ":batchEmbedContents"):
			if reqs := body["requests"].([]any); len(reqs) != 2 {
				t.Errorf("requests = %v", reqs)
			}
			return jsonResponse(200, map[string]any{"embeddings": []map[string]any{
				{"values": []float32{1, 0}}, {"values": []float32{0, 1}},
			}}), nil
		}
		t.Errorf("unexpected path %s", req.URL.Path)
		return nil, nil
	})

	emb := gemini.New("test-key", gemini.WithHTTPClient(httpClient)).NewEmbedder(gemini.WithTaskType(gemini.TaskRetrievalQuery))
	if emb.Dimensions() != gemini.DefaultEmbeddingDimensions {
		t.Errorf("Dimensions = %d", emb.Dimensions())
	}

	vec, err := emb.Embed(context.Background(), "pad thai")
	if err != nil || len(vec) != 2 {
		t.Fatalf("Embed = %v, %v", vec, err)
	}
	vecs, err := emb.EmbedBatch(context.Background(), []string{"a", "b"})
	if err != nil || len(vecs) != 2 || vecs[1][1] != 1 {
		t.Fatalf("EmbedBatch = %v, %v", vecs, err)
	}
}
