// Command 19_team has a content team write, edit and fact-check a blog
// post, showing each member's contribution.
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

	_, err = console.PrintResponse(ctx, os.Stdout, cookbook.ContentTeam(s, db),
		"Write a blog post about the health benefits of Mediterranean diet",
		console.WithStream(), console.WithMemberResponses())
	if err != nil {
		cookbook.Exit(err)
	}
}
