package main

import (
	"context"
	"encoding/json"
	"slices"
	"testing"
)

func TestManageFileSchema(t *testing.T) {
	tool := FileOperations().Tools[0]
	var schema struct {
		Properties map[string]struct {
			Enum    []string `json:"enum"`
			Default string   `json:"default"`
		} `json:"properties"`
		Required []string `json:"required"`
	}
	if err := json.Unmarshal(tool.Parameters(), &schema); err != nil {
		t.Fatal(err)
	}
	op := schema.Properties["operation"]
	if !slices.Equal(op.Enum, operations) || op.Default != "read" {
		t.Errorf("operation = %+v", op)
	}
	if p := schema.Properties["priority"]; !slices.Equal(p.Enum, priorities) || p.Default != "medium" {
		t.Errorf("priority = %+v", p)
	}
	if !slices.Equal(schema.Required, []string{"filename"}) {
		t.Errorf("required = %v", schema.Required)
	}
}

func TestManageFile(t *testing.T) {
	ctx := context.Background()
	got, err := FileOperations().Tools[0].Invoke(ctx, json.RawMessage(`{"filename":"report.txt","operation":"create","priority":"high"}`))
	if err != nil {
		t.Fatal(err)
	}
	if got != "Performed 'create' on 'report.txt' with high priority" {
		t.Errorf("got %v", got)
	}

	got, err = FileOperations().Tools[0].Invoke(ctx, json.RawMessage(`{"filename":"notes.md"}`))
	if err != nil {
		t.Fatal(err)
	}
	if got != "Performed 'read' on 'notes.md' with medium priority" {
		t.Errorf("defaults: got %v", got)
	}

	if _, err := FileOperations().Tools[0].Invoke(ctx, json.RawMessage(`{"filename":"x","operation":"archive"}`)); err == nil {
		t.Error("expected error for unknown operation")
	}
}

func TestControlService(t *testing.T) {
	got, err := ControlService().Invoke(context.Background(), json.RawMessage(`{"action":"stop","service_name":"web"}`))
	if err != nil {
		t.Fatal(err)
	}
	if got != "Service 'web' has been stopped" {
		t.Errorf("got %v", got)
	}
}
