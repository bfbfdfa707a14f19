package knowledge

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
)

// Chunker splits a document into pieces small enough to embed.
type Chunker interface {
	Chunk(text string) ([]string, error)
}

// Default chunk sizes, in characters.
const (
	DefaultChunkSize    = 5000
	DefaultChunkOverlap = 0
)

// FixedSizeChunker splits on paragraph breaks first, then lines, then
// words, so that no chunk exceeds Size characters. Consecutive chunks share
// up to Overlap characters.
type FixedSizeChunker struct {
	Size    int
	Overlap int
}

func (c FixedSizeChunker) Chunk(text string) ([]string, error) {
	size := c.Size
	if size <= 0 {
		size = DefaultChunkSize
	}
	overlap := c.Overlap
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(size),
		textsplitter.WithChunkOverlap(overlap),
		textsplitter.WithSeparators([]string{"\n\n", "\n", " ", ""}),
	)
	parts, err := splitter.SplitText(strings.ReplaceAll(text, "\r\n", "\n"))
	if err != nil {
		return nil, fmt.Errorf("chunking: %w", err)
	}
	var chunks []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			chunks = append(chunks, p)
		}
	}
	return chunks, nil
}
