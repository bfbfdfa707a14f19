package agentframework_test

import (
	"encoding/json"
	"testing"

	af "github.com/agentcookbook/gemini-agents/agentframework"
)

type manageFileArgs struct {
	Filename  string `json:"filename"  jsonschema:"description=Name of the file,required"`
	Operation string `json:"operation" jsonschema:"description=What to do,enum=create|read|update|delete,default=read"`
	Priority  string `json:"priority"  jsonschema:"enum=low|medium|high,default=medium"`
}

func TestGenerateSchema_LiteralParameters(t *testing.T) {
	schema := af.GenerateSchema[manageFileArgs]()

	var parsed map[string]any
	if err := json.Unmarshal(schema, &parsed); err != nil {
		t.Fatalf("unmarshal schema: %v", err)
	}

	if parsed["type"] != "object" {
		t.Errorf("type = %v, want object", parsed["type"])
	}

	props, ok := parsed["properties"].(map[string]any)
	if !ok {
		t.Fatalf("properties not a map: %T", parsed["properties"])
	}

	file := props["filename"].(map[string]any)
	if file["type"] != "string" || file["description"] != "Name of the file" {
		t.Errorf("filename = %v", file)
	}

	op := props["operation"].(map[string]any)
	enumVals, ok := op["enum"].([]any)
	if !ok || len(enumVals) != 4 {
		t.Fatalf("operation enum = %v", op["enum"])
	}
	if op["default"] != "read" {
		t.Errorf("operation default = %v", op["default"])
	}

	required, ok := parsed["required"].([]any)
	if !ok || len(required) != 1 || required[0] != "filename" {
		t.Errorf("required = %v", parsed["required"])
	}
}

type scoredArgs struct {
	Rating     float64 `json:"rating"      jsonschema:"minimum=0,maximum=10"`
	MaxResults int     `json:"max_results" jsonschema:"default=5"`
}

func TestGenerateSchema_NumericTags(t *testing.T) {
	var parsed map[string]any
	if err := json.Unmarshal(af.GenerateSchema[scoredArgs](), &parsed); err != nil {
		t.Fatal(err)
	}
	props := parsed["properties"].(map[string]any)

	rating := props["rating"].(map[string]any)
	if rating["minimum"] != 0.0 || rating["maximum"] != 10.0 {
		t.Errorf("rating = %v", rating)
	}
	maxResults := props["max_results"].(map[string]any)
	if maxResults["default"] != 5.0 {
		t.Errorf("max_results default = %v (%T)", maxResults["default"], maxResults["default"])
	}
}

type nestedArgs struct {
	Items  []string       `json:"items"`
	Tags   map[string]int `json:"tags"`
	Count  int            `json:"count"`
	Flag   bool           `json:"flag"`
	Score  float64        `json:"score"`
	Review struct {
		Verdict string `json:"verdict"`
	} `json:"review"`
	Skip string `json:"-"`
}

func TestGenerateSchema_TypeMapping(t *testing.T) {
	var parsed map[string]any
	if err := json.Unmarshal(af.GenerateSchema[nestedArgs](), &parsed); err != nil {
		t.Fatal(err)
	}

	props := parsed["properties"].(map[string]any)

	items := props["items"].(map[string]any)
	if items["type"] != "array" {
		t.Errorf("items type = %v", items["type"])
	}
	if inner := items["items"].(map[string]any); inner["type"] != "string" {
		t.Errorf("items inner type = %v", inner["type"])
	}

	checks := map[string]string{
		"tags":   "object",
		"count":  "integer",
		"flag":   "boolean",
		"score":  "number",
		"review": "object",
	}
	for name, want := range checks {
		p := props[name].(map[string]any)
		if p["type"] != want {
			t.Errorf("%s type = %v, want %s", name, p["type"], want)
		}
	}

	review := props["review"].(map[string]any)
	if _, ok := review["properties"].(map[string]any)["verdict"]; !ok {
		t.Error("nested struct properties missing")
	}
	if _, ok := props["Skip"]; ok {
		t.Error(`json:"-" field should be skipped`)
	}
}
