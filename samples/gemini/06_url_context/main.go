// Command 06_url_context lets the model read two recipe pages and compare
// them.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/agentcookbook/gemini-agents/console"
	"github.com/agentcookbook/gemini-agents/samples/gemini/cookbook"
)

const (
	recipeA = "https://www.foodnetwork.com/recipes/ina-garten/perfect-roast-chicken-recipe-1940592"
	recipeB = "https://www.allrecipes.com/recipe/83557/juicy-roasted-chicken/"
)

func main() {
	s, err := cookbook.Setup()
	if err != nil {
		cookbook.Exit(err)
	}
	prompt := fmt.Sprintf("Compare the ingredients and cooking times from the recipes at %s and %s", recipeA, recipeB)
	_, err = console.PrintResponse(context.Background(), os.Stdout, cookbook.URLContextAgent(s), prompt,
		console.WithStream(), console.WithCitations())
	if err != nil {
		cookbook.Exit(err)
	}
}
