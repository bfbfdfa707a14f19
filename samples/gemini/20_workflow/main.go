// Command 20_workflow runs the research pipeline: parallel research,
// analysis, a quality gate, the report and a conditional fact check.
package main

import (
	"context"
	"os"

	"github.com/agentcookbook/gemini-agents/console"
	"github.com/agentcookbook/gemini-agents/samples/gemini/cookbook"
)

func main() {
	s, err := cookbook.Setup()
	if err != nil {
		cookbook.Exit(err)
	}
	ctx := context.Background()
	db, err := cookbook.OpenDB(ctx, s)
	if err != nil {
		cookbook.Exit(err)
	}
	defer db.Close()

	_, err = console.PrintResponse(ctx, os.Stdout, cookbook.ResearchPipeline(s, db),
		"Latest developments in AI agents and autonomous systems",
		console.WithStream(), console.WithMemberResponses())
	if err != nil {
		cookbook.Exit(err)
	}
}
