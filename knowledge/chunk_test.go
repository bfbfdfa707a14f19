package knowledge_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/agentcookbook/gemini-agents/knowledge"
)

func TestFixedSizeChunker(t *testing.T) {
	tests := []struct {
		name    string
		chunker knowledge.FixedSizeChunker
		text    string
		want    []string
	}{
		{
			name:    "small text is one chunk",
			chunker: knowledge.FixedSizeChunker{Size: 100},
			text:    "one\n\ntwo",
			want:    []string{"one\n\ntwo"},
		},
		{
			name:    "paragraphs split when they do not fit together",
			chunker: knowledge.FixedSizeChunker{Size: 10},
			text:    "aaaaaaaa\n\nbbbbbbbb",
			want:    []string{"aaaaaaaa", "bbbbbbbb"},
		},
		{
			name:    "crlf is normalized",
			chunker: knowledge.FixedSizeChunker{Size: 100},
			text:    "one\r\ntwo",
			want:    []string{"one\ntwo"},
		},
		{
			name:    "blank text",
			chunker: knowledge.FixedSizeChunker{Size: 10},
			text:    " \n\n \n",
			want:    nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.chunker.Chunk(tt.text)
			if err != nil {
				t.Fatalf("Chunk: %v", err)
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
				t.Errorf("Chunk = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFixedSizeChunkerRespectsSize(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor sit amet. ", 40) + "\n\n" + strings.Repeat("x", 300)
	c := knowledge.FixedSizeChunker{Size: 64, Overlap: 8}
	chunks, err := c.Chunk(text)
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want several", len(chunks))
	}
	for i, chunk := range chunks {
		if n := utf8.RuneCountInString(chunk); n > 64 {
			t.Errorf("chunk %d has %d runes", i, n)
		}
	}
	joined := strings.Join(chunks, " ")
	for _, word := range []string{"lorem", "amet.", strings.Repeat("x", 64)} {
		if !strings.Contains(joined, word) {
			t.Errorf("chunks lost %q", word)
		}
	}
}

func TestFixedSizeChunkerDefaults(t *testing.T) {
	text := strings.Repeat("word ", 200)
	chunks, err := knowledge.FixedSizeChunker{}.Chunk(text)
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}
	if len(chunks) != 1 || chunks[0] != strings.TrimSpace(text) {
		t.Errorf("default size should keep %d chars in one chunk, got %d chunks", len(text), len(chunks))
	}
}
