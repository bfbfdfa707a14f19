// Command 04_search answers from Gemini's native Google Search.
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
	_, err = console.PrintResponse(context.Background(), os.Stdout, cookbook.NewsAgent(s),
		"What are the latest developments in AI this week?",
		console.WithStream())
	if err != nil {
		cookbook.Exit(err)
	}
}
