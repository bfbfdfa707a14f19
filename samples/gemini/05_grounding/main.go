// Command 05_grounding answers with search grounding and prints the citations
// the model attached.
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
	_, err = console.PrintResponse(context.Background(), os.Stdout, cookbook.FactAgent(s),
		"Who won the most recent Nobel Prize in Physics, and for what discovery?",
		console.WithStream(), console.WithCitations())
	if err != nil {
		cookbook.Exit(err)
	}
}
