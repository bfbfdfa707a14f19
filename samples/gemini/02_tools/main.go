// Command 02_tools gives an agent a web search toolkit and shows the tool
// calls it makes.
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
	_, err = console.PrintResponse(context.Background(), os.Stdout, cookbook.FinanceAgent(s),
		"Compare the latest funding rounds in AI startups this month",
		console.WithStream(), console.WithToolCalls())
	if err != nil {
		cookbook.Exit(err)
	}
}
