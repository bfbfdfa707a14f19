package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	af "github.com/agentcookbook/gemini-agents/agentframework"
	"github.com/agentcookbook/gemini-agents/media"
)

// FileSearchStore is a managed retrieval index. Name has the form
// "fileSearchStores/{id}".
type FileSearchStore struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	CreateTime  string `json:"createTime,omitempty"`
}

// Operation is a long-running operation, e.g. document import.
type Operation struct {
	Name     string          `json:"name"`
	Done     bool            `json:"done"`
	Error    *OperationError `json:"error,omitempty"`
	Response json.RawMessage `json:"response,omitempty"`
}

// OperationError is the failure status of an [Operation].
type OperationError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// CreateFileSearchStore creates an empty store.
func (c *Client) CreateFileSearchStore(ctx context.Context, displayName string) (*FileSearchStore, error) {
	resp, err := c.tp.do(ctx, &apiRequest{
		method: http.MethodPost,
		path:   "fileSearchStores",
		body:   map[string]string{"displayName": displayName},
	})
	if err != nil {
		return nil, err
	}
	var out FileSearchStore
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadToFileSearchStore uploads a local file into store. The returned
// operation completes once the document is chunked and indexed.
func (c *Client) UploadToFileSearchStore(ctx context.Context, path, store, displayName string) (*Operation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if displayName == "" {
		displayName = filepath.Base(path)
	}
	var op Operation
	err = c.resumableUpload(ctx,
		resourceName("fileSearchStores", store)+":uploadToFileSearchStore",
		map[string]string{"displayName": displayName},
		data, media.Detect(data, path), &op)
	if err != nil {
		return nil, err
	}
	return &op, nil
}

// GetOperation returns the current state of a long-running operation.
func (c *Client) GetOperation(ctx context.Context, name string) (*Operation, error) {
	resp, err := c.tp.do(ctx, &apiRequest{method: http.MethodGet, path: name})
	if err != nil {
		return nil, err
	}
	var op Operation
	if err := decode(resp, &op); err != nil {
		return nil, err
	}
	return &op, nil
}

// WaitForOperation polls op until it is done.
func (c *Client) WaitForOperation(ctx context.Context, op *Operation, interval time.Duration) (*Operation, error) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	for !op.Done {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
		next, err := c.GetOperation(ctx, op.Name)
		if err != nil {
			return nil, err
		}
		op = next
	}
	if op.Error != nil {
		return op, fmt.Errorf("%w: operation %s: %s", af.ErrService, op.Name, op.Error.Message)
	}
	return op, nil
}

// DeleteFileSearchStore removes a store. With force, documents inside it are
// deleted too.
func (c *Client) DeleteFileSearchStore(ctx context.Context, name string, force bool) error {
	r := &apiRequest{method: http.MethodDelete, path: resourceName("fileSearchStores", name)}
	if force {
		r.query = url.Values{"force": {"true"}}
	}
	resp, err := c.tp.do(ctx, r)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
