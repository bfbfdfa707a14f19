// Command 13_pdf_input summarizes a PDF cookbook, read natively by the
// model.
package main

import (
	"context"
	"os"

	"github.com/agentcookbook/gemini-agents/console"
	"github.com/agentcookbook/gemini-agents/media"
	"github.com/agentcookbook/gemini-agents/samples/gemini/cookbook"
)

func main() {
	s, err := cookbook.Setup()
	if err != nil {
		cookbook.Exit(err)
	}
	ctx := context.Background()
	doc, err := media.Fetch(ctx, cookbook.PDFURL, "application/pdf")
	if err != nil {
		cookbook.Exit(err)
	}
	_, err = console.PrintResponse(ctx, os.Stdout, cookbook.DocumentReader(s),
		"Summarize the contents of this document and suggest a recipe from it.",
		console.WithStream(), console.WithMedia(doc))
	if err != nil {
		cookbook.Exit(err)
	}
}
