package agentframework

import "encoding/base64"

// ContentType identifies the kind of content within a message.
type ContentType string

const (
	ContentTypeText           ContentType = "text"
	ContentTypeTextReasoning  ContentType = "reasoning"
	ContentTypeData           ContentType = "data"
	ContentTypeURI            ContentType = "uri"
	ContentTypeHostedFile     ContentType = "hostedFile"
	ContentTypeError          ContentType = "error"
	ContentTypeFunctionCall   ContentType = "functionCall"
	ContentTypeFunctionResult ContentType = "functionResult"
	ContentTypeUsage          ContentType = "usage"
	ContentTypeCitation       ContentType = "citation"
)

// Content is a sealed interface representing a piece of content within a [Message].
// Use a type switch to inspect the underlying type.
type Content interface {
	// Type returns the discriminator for this content item.
	Type() ContentType

	sealed()
}

type base struct{}

func (base) sealed() {}

// TextContent holds plain text.
type TextContent struct {
	base
	Text string
}

func (c *TextContent) Type() ContentType { return ContentTypeText }

// TextReasoningContent holds model thoughts. Signature is an opaque token some
// providers require to be echoed back on the next turn.
type TextReasoningContent struct {
	base
	Text      string
	Signature string
}

func (c *TextReasoningContent) Type() ContentType { return ContentTypeTextReasoning }

// DataContent holds inline binary data such as an image, an audio clip, a video,
// a PDF or a CSV file.
type DataContent struct {
	base
	Data      []byte
	MediaType string
	// Name is an optional file name used when the data is saved or uploaded.
	Name string
}

func (c *DataContent) Type() ContentType { return ContentTypeData }

// DataURI returns the content encoded as a base64 data URI.
func (c *DataContent) DataURI() string {
	return "data:" + c.MediaType + ";base64," + base64.StdEncoding.EncodeToString(c.Data)
}

// URIContent references remote content by URL (a web image, a PDF, a YouTube video).
type URIContent struct {
	base
	URI       string
	MediaType string
}

func (c *URIContent) Type() ContentType { return ContentTypeURI }

// HostedFileContent references a file uploaded to the model provider.
type HostedFileContent struct {
	base
	FileID    string
	URI       string
	MediaType string
}

func (c *HostedFileContent) Type() ContentType { return ContentTypeHostedFile }

// ErrorContent represents an error returned as message content.
type ErrorContent struct {
	base
	Message   string
	ErrorCode string
	Details   any
}

func (c *ErrorContent) Type() ContentType { return ContentTypeError }

// FunctionCallContent is a tool call requested by the model.
type FunctionCallContent struct {
	base
	CallID    string
	Name      string
	Arguments string // JSON-encoded arguments
	Signature string
}

func (c *FunctionCallContent) Type() ContentType { return ContentTypeFunctionCall }

// FunctionResultContent is the result of a tool call.
type FunctionResultContent struct {
	base
	CallID string
	Name   string
	Result any
}

func (c *FunctionResultContent) Type() ContentType { return ContentTypeFunctionResult }

// UsageContent carries token usage information.
type UsageContent struct {
	base
	Usage UsageDetails
}

func (c *UsageContent) Type() ContentType { return ContentTypeUsage }

// CitationContent is a source the model grounded its answer on.
type CitationContent struct {
	base
	URI   string
	Title string
	// Text is the retrieved passage, when the source is a document store.
	Text string
}

func (c *CitationContent) Type() ContentType { return ContentTypeCitation }
