package agentframework

import (
	"context"
	"encoding/json"
)

// Tool defines a callable function that can be exposed to an LLM.
type Tool interface {
	// Name returns the function name as exposed to the model.
	Name() string

	// Description returns a human-readable description for the model.
	Description() string

	// Parameters returns the JSON Schema describing the function's input.
	Parameters() json.RawMessage

	// Invoke calls the function with the given JSON arguments.
	Invoke(ctx context.Context, args json.RawMessage) (any, error)

	// DeclarationOnly returns true if the tool should not be auto-invoked.
	DeclarationOnly() bool

	// MaxInvocations is the per-run call limit, or 0 for no limit.
	MaxInvocations() int
}

// FunctionTool is a concrete [Tool] backed by a Go function.
type FunctionTool struct {
	name            string
	description     string
	parameters      json.RawMessage
	fn              func(ctx context.Context, args json.RawMessage) (any, error)
	declarationOnly bool
	maxInvocations  int
}

// ToolOption configures a [FunctionTool].
type ToolOption func(*FunctionTool)

// WithDeclarationOnly marks the tool as declaration-only (returned to caller, not auto-invoked).
func WithDeclarationOnly() ToolOption {
	return func(t *FunctionTool) { t.declarationOnly = true }
}

// WithMaxInvocations limits how many times this tool can be called per run.
func WithMaxInvocations(n int) ToolOption {
	return func(t *FunctionTool) { t.maxInvocations = n }
}

// NewTool creates a [FunctionTool] with raw JSON schema and handler.
func NewTool(name, description string, parameters json.RawMessage, fn func(ctx context.Context, args json.RawMessage) (any, error), opts ...ToolOption) *FunctionTool {
	if len(parameters) == 0 {
		parameters = json.RawMessage(`{"type":"object","properties":{}}`)
	}
	t := &FunctionTool{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewTypedTool creates a [FunctionTool] that automatically generates JSON Schema
// from the Args type parameter and handles JSON deserialization.
//
// The Args type should be a struct with json tags. Use the `jsonschema` struct tag
// for additional schema metadata:
//
//	type ManageFileArgs struct {
//	    Filename  string `json:"filename"  jsonschema:"description=File to operate on,required"`
//	    Operation string `json:"operation" jsonschema:"enum=create|read|update|delete,default=read"`
//	}
func NewTypedTool[Args any](name, description string, fn func(ctx context.Context, args Args) (any, error), opts ...ToolOption) *FunctionTool {
	schema := GenerateSchema[Args]()

	wrapped := func(ctx context.Context, raw json.RawMessage) (any, error) {
		var args Args
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, &ToolError{
					ToolName: name,
					Message:  "invalid arguments: " + err.Error(),
					Err:      ErrToolExecution,
				}
			}
		}
		return fn(ctx, args)
	}

	return NewTool(name, description, schema, wrapped, opts...)
}

func (t *FunctionTool) Name() string                { return t.name }
func (t *FunctionTool) Description() string         { return t.description }
func (t *FunctionTool) Parameters() json.RawMessage { return t.parameters }
func (t *FunctionTool) DeclarationOnly() bool       { return t.declarationOnly }
func (t *FunctionTool) MaxInvocations() int         { return t.maxInvocations }

// Invoke calls the tool's backing function.
func (t *FunctionTool) Invoke(ctx context.Context, args json.RawMessage) (any, error) {
	if t.fn == nil {
		return nil, &ToolError{
			ToolName: t.name,
			Message:  "tool is declaration-only and cannot be invoked",
			Err:      ErrToolExecution,
		}
	}
	return t.fn(ctx, args)
}

// Toolkit is a named group of tools that are attached to an agent together.
type Toolkit struct {
	Name         string
	Instructions string
	Tools        []Tool
}

// NewToolkit creates a [Toolkit].
func NewToolkit(name string, tools ...Tool) *Toolkit {
	return &Toolkit{Name: name, Tools: tools}
}

// Include returns a copy of the toolkit restricted to the named tools.
func (k *Toolkit) Include(names ...string) *Toolkit {
	keep := make(map[string]bool, len(names))
	for _, n := range names {
		keep[n] = true
	}
	out := &Toolkit{Name: k.Name, Instructions: k.Instructions}
	for _, t := range k.Tools {
		if keep[t.Name()] {
			out.Tools = append(out.Tools, t)
		}
	}
	return out
}

// GenerateSchema builds a JSON Schema from a Go struct type using reflection.
// Supports struct tags: json (field name) and jsonschema (description,
// required, enum, default, minimum, maximum).
func GenerateSchema[T any]() json.RawMessage {
	var zero T
	return generateSchemaFromType(zero)
}
