package gemini

import (
	"context"
	"fmt"
	"net/http"

	af "github.com/agentcookbook/gemini-agents/agentframework"
)

// Embedding defaults.
const (
	DefaultEmbeddingModel      = "gemini-embedding-001"
	DefaultEmbeddingDimensions = 1536
)

// Task types accepted by the embedding models.
const (
	TaskRetrievalDocument  = "RETRIEVAL_DOCUMENT"
	TaskRetrievalQuery     = "RETRIEVAL_QUERY"
	TaskSemanticSimilarity = "SEMANTIC_SIMILARITY"
)

// Embedder turns text into vectors with the Gemini embedding models.
type Embedder struct {
	tp         transport
	model      string
	dimensions int
	taskType   string
}

// EmbedderOption configures an [Embedder].
type EmbedderOption func(*Embedder)

// WithEmbeddingModel overrides the embedding model.
func WithEmbeddingModel(model string) EmbedderOption {
	return func(e *Embedder) { e.model = model }
}

// WithDimensions sets the output dimensionality.
func WithDimensions(n int) EmbedderOption {
	return func(e *Embedder) { e.dimensions = n }
}

// WithTaskType sets the task type sent with every request.
func WithTaskType(task string) EmbedderOption {
	return func(e *Embedder) { e.taskType = task }
}

// NewEmbedder creates an Embedder that shares the client's transport.
func (c *Client) NewEmbedder(opts ...EmbedderOption) *Embedder {
	e := &Embedder{
		tp:         c.tp,
		model:      DefaultEmbeddingModel,
		dimensions: DefaultEmbeddingDimensions,
		taskType:   TaskRetrievalDocument,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Dimensions returns the vector size produced by Embed.
func (e *Embedder) Dimensions() int { return e.dimensions }

// Model returns the embedding model id.
func (e *Embedder) Model() string { return e.model }

type embedRequest struct {
	Model                string  `json:"model,omitempty"`
	Content              content `json:"content"`
	TaskType             string  `json:"taskType,omitempty"`
	OutputDimensionality int     `json:"outputDimensionality,omitempty"`
}

type embedding struct {
	Values []float32 `json:"values"`
}

func (e *Embedder) request(text string) embedRequest {
	return embedRequest{
		Model:                modelPath(e.model),
		Content:              content{Parts: []part{{Text: text}}},
		TaskType:             e.taskType,
		OutputDimensionality: e.dimensions,
	}
}

// Embed returns the embedding of a single text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.tp.do(ctx, &apiRequest{
		method: http.MethodPost,
		path:   modelPath(e.model) + ":embedContent",
		body:   e.request(text),
	})
	if err != nil {
		return nil, err
	}
	var out struct {
		Embedding embedding `json:"embedding"`
	}
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return out.Embedding.Values, nil
}

// EmbedBatch embeds texts in one batchEmbedContents call. The result keeps
// the input order.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	reqs := make([]embedRequest, len(texts))
	for i, t := range texts {
		reqs[i] = e.request(t)
	}
	resp, err := e.tp.do(ctx, &apiRequest{
		method: http.MethodPost,
		path:   modelPath(e.model) + ":batchEmbedContents",
		body:   map[string]any{"requests": reqs},
	})
	if err != nil {
		return nil, err
	}
	var out struct {
		Embeddings []embedding `json:"embeddings"`
	}
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	if len(out.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts", af.ErrInvalidResponse, len(out.Embeddings), len(texts))
	}
	vecs := make([][]float32, len(texts))
	for i, emb := range out.Embeddings {
		vecs[i] = emb.Values
	}
	return vecs, nil
}
