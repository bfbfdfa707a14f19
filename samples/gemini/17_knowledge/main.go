// Command 17_knowledge loads a Thai cookbook into a hybrid-search knowledge
// base and holds a two-turn conversation about it in one session.
//
// Vectors live in the agent database unless MILVUS_ADDRESS is set.
package main

import (
	"context"
	"fmt"
	"os"

	af "github.com/agentcookbook/gemini-agents/agentframework"
	"github.com/agentcookbook/gemini-agents/config"
	"github.com/agentcookbook/gemini-agents/console"
	"github.com/agentcookbook/gemini-agents/knowledge"
	"github.com/agentcookbook/gemini-agents/samples/gemini/cookbook"
)

const (
	userID    = "foodie@example.com"
	sessionID = "session_1"
)

func main() {
	s, err := cookbook.Setup()
	if err != nil {
		cookbook.Exit(err)
	}
	if err := run(context.Background(), s); err != nil {
		cookbook.Exit(err)
	}
}

func run(ctx context.Context, s *config.Settings) error {
	db, err := cookbook.OpenDB(ctx, s)
	if err != nil {
		return err
	}
	defer db.Close()

	kb, err := cookbook.RecipeKnowledge(ctx, s, db)
	if err != nil {
		return err
	}
	fmt.Println("Loading recipe knowledge...")
	res, err := kb.Insert(ctx, knowledge.Source{Name: "thai-recipes", Text: cookbook.ThaiRecipes})
	if err != nil {
		return err
	}
	if res.Skipped {
		fmt.Println("Recipes already loaded.")
	}

	assistant := cookbook.RecipeAssistant(s, db, kb)
	opts := []console.Option{
		console.WithStream(),
		console.WithToolCalls(),
		console.WithRunOptions(af.WithUserID(userID), af.WithSessionID(sessionID)),
	}

	fmt.Println("\n--- Session 1: First question ---")
	if _, err := console.PrintResponse(ctx, os.Stdout, assistant, "What Thai dishes can I make with chicken and coconut milk?", opts...); err != nil {
		return err
	}
	fmt.Println("\n--- Session 1: Follow-up ---")
	_, err = console.PrintResponse(ctx, os.Stdout, assistant, "How about a vegetarian option from the same cookbook?", opts...)
	return err
}
