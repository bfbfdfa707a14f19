// Package media builds the image, audio, video and document inputs of a
// prompt and saves what the model generates.
package media

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	af "github.com/agentcookbook/gemini-agents/agentframework"
)

// Detect sniffs the media type of data. Content that only sniffs as plain
// text or opaque bytes falls back to the extension of name, which tells
// markdown from text and keeps formats the sniffer does not know.
func Detect(data []byte, name string) string {
	m := mimetype.Detect(data)
	if m.Is("application/octet-stream") || m.Is("text/plain") {
		if name != "" {
			if t := TypeByPath(name); t != "application/octet-stream" {
				return t
			}
		}
	}
	t, _, _ := strings.Cut(m.String(), ";")
	return t
}

// TypeByPath guesses the media type from an extension alone. It serves
// references the model fetches itself, where there are no bytes to sniff.
func TypeByPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv":
		return "text/csv"
	case ".md":
		return "text/markdown"
	case ".txt":
		return "text/plain"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".mp4":
		return "video/mp4"
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		if i := strings.Index(t, ";"); i > 0 {
			return t[:i]
		}
		return t
	}
	return "application/octet-stream"
}

// FromBytes wraps raw bytes. An audio or video format such as "mp3" or
// "mp4" is accepted in place of a full media type; an empty one is sniffed.
func FromBytes(data []byte, mediaType string) *af.DataContent {
	if mediaType == "" {
		mediaType = Detect(data, "")
	}
	return &af.DataContent{Data: data, MediaType: normalizeType(mediaType)}
}

// FromFile reads a local file. mediaType defaults to the sniffed type of
// its content.
func FromFile(path, mediaType string) (*af.DataContent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if mediaType == "" {
		mediaType = Detect(data, path)
	}
	return &af.DataContent{Data: data, MediaType: normalizeType(mediaType), Name: filepath.Base(path)}, nil
}

// URL references remote media the model fetches itself, such as a YouTube
// video or an uploaded file.
func URL(uri, mediaType string) *af.URIContent {
	if mediaType == "" {
		mediaType = TypeByPath(uri)
	}
	return &af.URIContent{URI: uri, MediaType: normalizeType(mediaType)}
}

// YouTube references a YouTube video.
func YouTube(uri string) *af.URIContent {
	return &af.URIContent{URI: uri, MediaType: "video/mp4"}
}

// normalizeType expands bare formats.
func normalizeType(t string) string {
	switch strings.ToLower(t) {
	case "mp3":
		return "audio/mpeg"
	case "wav":
		return "audio/wav"
	case "mp4":
		return "video/mp4"
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "pdf":
		return "application/pdf"
	case "csv":
		return "text/csv"
	}
	return t
}
