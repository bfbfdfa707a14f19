package agentframework

import (
	"encoding/json"
	"fmt"
)

// The JSON form of a Content is an object carrying a "$type" discriminator
// next to the type's own fields. It is what session stores persist.

type textJSON struct {
	Type      string `json:"$type"`
	Text      string `json:"text,omitempty"`
	Signature string `json:"signature,omitempty"`
}

type dataJSON struct {
	Type      string `json:"$type"`
	Data      []byte `json:"data,omitempty"`
	URI       string `json:"uri,omitempty"`
	FileID    string `json:"fileId,omitempty"`
	MediaType string `json:"mediaType,omitempty"`
	Name      string `json:"name,omitempty"`
}

type errorJSON struct {
	Type      string `json:"$type"`
	Message   string `json:"message,omitempty"`
	ErrorCode string `json:"errorCode,omitempty"`
	Details   any    `json:"details,omitempty"`
}

type callJSON struct {
	Type      string          `json:"$type"`
	CallID    string          `json:"callId,omitempty"`
	Name      string          `json:"name,omitempty"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
	Signature string          `json:"signature,omitempty"`
	Result    any             `json:"result,omitempty"`
}

type usageJSON struct {
	Type  string       `json:"$type"`
	Usage UsageDetails `json:"usage"`
}

type citationJSON struct {
	Type  string `json:"$type"`
	URI   string `json:"uri,omitempty"`
	Title string `json:"title,omitempty"`
	Text  string `json:"text,omitempty"`
}

// MarshalContentJSON marshals a single Content value into its JSON envelope.
func MarshalContentJSON(c Content) ([]byte, error) {
	t := string(c.Type())
	switch v := c.(type) {
	case *TextContent:
		return json.Marshal(textJSON{Type: t, Text: v.Text})
	case *TextReasoningContent:
		return json.Marshal(textJSON{Type: t, Text: v.Text, Signature: v.Signature})
	case *DataContent:
		return json.Marshal(dataJSON{Type: t, Data: v.Data, MediaType: v.MediaType, Name: v.Name})
	case *URIContent:
		return json.Marshal(dataJSON{Type: t, URI: v.URI, MediaType: v.MediaType})
	case *HostedFileContent:
		return json.Marshal(dataJSON{Type: t, FileID: v.FileID, URI: v.URI, MediaType: v.MediaType})
	case *ErrorContent:
		return json.Marshal(errorJSON{Type: t, Message: v.Message, ErrorCode: v.ErrorCode, Details: v.Details})
	case *FunctionCallContent:
		var args json.RawMessage
		if v.Arguments != "" {
			args = json.RawMessage(v.Arguments)
		}
		return json.Marshal(callJSON{Type: t, CallID: v.CallID, Name: v.Name, Arguments: args, Signature: v.Signature})
	case *FunctionResultContent:
		return json.Marshal(callJSON{Type: t, CallID: v.CallID, Name: v.Name, Result: v.Result})
	case *UsageContent:
		return json.Marshal(usageJSON{Type: t, Usage: v.Usage})
	case *CitationContent:
		return json.Marshal(citationJSON{Type: t, URI: v.URI, Title: v.Title, Text: v.Text})
	default:
		return nil, fmt.Errorf("unknown content type: %T", c)
	}
}

// UnmarshalContentJSON unmarshals a single Content value from its JSON envelope.
func UnmarshalContentJSON(data []byte) (Content, error) {
	var env struct {
		Type string `json:"$type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal content envelope: %w", err)
	}

	switch ContentType(env.Type) {
	case ContentTypeText, ContentTypeTextReasoning:
		var v textJSON
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		if ContentType(env.Type) == ContentTypeText {
			return &TextContent{Text: v.Text}, nil
		}
		return &TextReasoningContent{Text: v.Text, Signature: v.Signature}, nil

	case ContentTypeData, ContentTypeURI, ContentTypeHostedFile:
		var v dataJSON
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		switch ContentType(env.Type) {
		case ContentTypeData:
			return &DataContent{Data: v.Data, MediaType: v.MediaType, Name: v.Name}, nil
		case ContentTypeURI:
			return &URIContent{URI: v.URI, MediaType: v.MediaType}, nil
		default:
			return &HostedFileContent{FileID: v.FileID, URI: v.URI, MediaType: v.MediaType}, nil
		}

	case ContentTypeError:
		var v errorJSON
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return &ErrorContent{Message: v.Message, ErrorCode: v.ErrorCode, Details: v.Details}, nil

	case ContentTypeFunctionCall:
		var v callJSON
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return &FunctionCallContent{CallID: v.CallID, Name: v.Name, Arguments: string(v.Arguments), Signature: v.Signature}, nil

	case ContentTypeFunctionResult:
		var v callJSON
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return &FunctionResultContent{CallID: v.CallID, Name: v.Name, Result: v.Result}, nil

	case ContentTypeUsage:
		var v usageJSON
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return &UsageContent{Usage: v.Usage}, nil

	case ContentTypeCitation:
		var v citationJSON
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return &CitationContent{URI: v.URI, Title: v.Title, Text: v.Text}, nil

	default:
		return nil, fmt.Errorf("unknown content $type: %q", env.Type)
	}
}

// Contents is a typed slice enabling JSON marshal/unmarshal of polymorphic Content arrays.
type Contents []Content

// MarshalJSON serializes each Content item using its $type discriminator.
func (cs Contents) MarshalJSON() ([]byte, error) {
	items := make([]json.RawMessage, len(cs))
	for i, c := range cs {
		b, err := MarshalContentJSON(c)
		if err != nil {
			return nil, fmt.Errorf("marshal content[%d]: %w", i, err)
		}
		items[i] = b
	}
	return json.Marshal(items)
}

// UnmarshalJSON deserializes a JSON array of Content items using the $type discriminator.
func (cs *Contents) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	result := make([]Content, len(raw))
	for i, r := range raw {
		c, err := UnmarshalContentJSON(r)
		if err != nil {
			return fmt.Errorf("unmarshal content[%d]: %w", i, err)
		}
		result[i] = c
	}
	*cs = result
	return nil
}
