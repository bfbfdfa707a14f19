package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	af "github.com/agentcookbook/gemini-agents/agentframework"
	"github.com/agentcookbook/gemini-agents/media"
)

// File states reported by the Files API.
const (
	FileStateProcessing = "PROCESSING"
	FileStateActive     = "ACTIVE"
	FileStateFailed     = "FAILED"
)

// File is an uploaded file resource. Name has the form "files/{id}".
type File struct {
	Name           string `json:"name"`
	DisplayName    string `json:"displayName,omitempty"`
	MimeType       string `json:"mimeType,omitempty"`
	SizeBytes      string `json:"sizeBytes,omitempty"`
	CreateTime     string `json:"createTime,omitempty"`
	ExpirationTime string `json:"expirationTime,omitempty"`
	URI            string `json:"uri,omitempty"`
	State          string `json:"state,omitempty"`
}

// Content returns the file as message content referencing its URI.
func (f *File) Content() *af.HostedFileContent {
	return &af.HostedFileContent{FileID: f.Name, URI: f.URI, MediaType: f.MimeType}
}

// UploadOptions configures [Client.UploadFile].
type UploadOptions struct {
	// Name requests a specific resource name, e.g. "files/transcript".
	Name        string
	DisplayName string
	// MimeType defaults to the sniffed type of the file.
	MimeType string
}

// UploadFile uploads a local file through the resumable upload protocol.
func (c *Client) UploadFile(ctx context.Context, path string, opts *UploadOptions) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if opts == nil {
		opts = &UploadOptions{}
	}
	mimeType := opts.MimeType
	if mimeType == "" {
		mimeType = media.Detect(data, path)
	}
	meta := map[string]any{}
	file := map[string]string{}
	if opts.Name != "" {
		file["name"] = opts.Name
	}
	if opts.DisplayName != "" {
		file["displayName"] = opts.DisplayName
	}
	if len(file) > 0 {
		meta["file"] = file
	}

	var out struct {
		File File `json:"file"`
	}
	if err := c.resumableUpload(ctx, "files", meta, data, mimeType, &out); err != nil {
		return nil, err
	}
	return &out.File, nil
}

// resumableUpload starts an upload session for path and sends data in a
// single upload-and-finalize request. The final response is decoded into out.
func (c *Client) resumableUpload(ctx context.Context, path string, meta any, data []byte, mimeType string, out any) error {
	start, err := c.tp.do(ctx, &apiRequest{
		method: http.MethodPost,
		path:   path,
		body:   meta,
		upload: true,
		headers: map[string]string{
			"X-Goog-Upload-Protocol":              "resumable",
			"X-Goog-Upload-Command":               "start",
			"X-Goog-Upload-Header-Content-Length": strconv.Itoa(len(data)),
			"X-Goog-Upload-Header-Content-Type":   mimeType,
		},
	})
	if err != nil {
		return err
	}
	start.Body.Close()

	uploadURL := start.Header.Get("X-Goog-Upload-URL")
	if uploadURL == "" {
		return fmt.Errorf("%w: upload session url missing", af.ErrInvalidResponse)
	}

	resp, err := c.tp.do(ctx, &apiRequest{
		method: http.MethodPost,
		path:   uploadURL,
		raw:    data,
		headers: map[string]string{
			"X-Goog-Upload-Offset":  "0",
			"X-Goog-Upload-Command": "upload, finalize",
		},
	})
	if err != nil {
		return err
	}
	return decode(resp, out)
}

// GetFile returns the metadata of an uploaded file. It accepts "files/{id}"
// or the bare id.
func (c *Client) GetFile(ctx context.Context, name string) (*File, error) {
	resp, err := c.tp.do(ctx, &apiRequest{method: http.MethodGet, path: resourceName("files", name)})
	if err != nil {
		return nil, err
	}
	var f File
	if err := decode(resp, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// ListFiles returns the files uploaded with this API key.
func (c *Client) ListFiles(ctx context.Context) ([]File, error) {
	var files []File
	token := ""
	for {
		q := url.Values{"pageSize": {"100"}}
		if token != "" {
			q.Set("pageToken", token)
		}
		resp, err := c.tp.do(ctx, &apiRequest{method: http.MethodGet, path: "files", query: q})
		if err != nil {
			return nil, err
		}
		var page struct {
			Files         []File `json:"files"`
			NextPageToken string `json:"nextPageToken"`
		}
		if err := decode(resp, &page); err != nil {
			return nil, err
		}
		files = append(files, page.Files...)
		if page.NextPageToken == "" {
			return files, nil
		}
		token = page.NextPageToken
	}
}

// DeleteFile removes an uploaded file.
func (c *Client) DeleteFile(ctx context.Context, name string) error {
	resp, err := c.tp.do(ctx, &apiRequest{method: http.MethodDelete, path: resourceName("files", name)})
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// WaitForFile polls until the file leaves the PROCESSING state.
func (c *Client) WaitForFile(ctx context.Context, name string, interval time.Duration) (*File, error) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	for {
		f, err := c.GetFile(ctx, name)
		if err != nil {
			return nil, err
		}
		switch f.State {
		case FileStateActive, "":
			return f, nil
		case FileStateFailed:
			return f, fmt.Errorf("%w: file %s processing failed", af.ErrService, f.Name)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}
}

// GetOrUploadFile returns the file named name when it already exists and
// uploads path under that name otherwise.
func (c *Client) GetOrUploadFile(ctx context.Context, name, path string) (*File, error) {
	f, err := c.GetFile(ctx, name)
	if err == nil {
		return f, nil
	}
	var svcErr *af.ServiceError
	if !errors.As(err, &svcErr) || (svcErr.StatusCode != http.StatusNotFound && svcErr.StatusCode != http.StatusForbidden) {
		return nil, err
	}
	f, err = c.UploadFile(ctx, path, &UploadOptions{Name: resourceName("files", name), DisplayName: filepath.Base(path)})
	if err != nil {
		return nil, err
	}
	return c.WaitForFile(ctx, f.Name, 0)
}

// resourceName prefixes id with collection unless it is already qualified.
func resourceName(collection, id string) string {
	if strings.HasPrefix(id, collection+"/") {
		return id
	}
	return collection + "/" + id
}
