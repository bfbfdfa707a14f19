// Command 07_thinking solves a logic puzzle with a thinking budget and
// prints the model's thoughts before the answer.
package main

import (
	"context"
	"os"

	"github.com/agentcookbook/gemini-agents/console"
	"github.com/agentcookbook/gemini-agents/samples/gemini/cookbook"
)

const task = "Three missionaries and three cannibals need to cross a river. " +
	"They have a boat that can carry up to two people at a time. " +
	"If, at any time, the cannibals outnumber the missionaries on either " +
	"side of the river, the cannibals will eat the missionaries. " +
	"How can all six people get across the river safely? " +
	"Provide a step-by-step solution and show the solution as an ascii diagram."

func main() {
	s, err := cookbook.Setup()
	if err != nil {
		cookbook.Exit(err)
	}
	resp, err := console.PrintResponse(context.Background(), os.Stdout, cookbook.ThinkingAgent(s), task,
		console.WithStream(), console.WithReasoning())
	if err != nil {
		cookbook.Exit(err)
	}
	console.PrintMetrics(os.Stdout, resp)
}
