// Command 03_structured_output asks for a movie review as typed JSON.
package main

import (
	"context"
	"fmt"

	af "github.com/agentcookbook/gemini-agents/agentframework"
	"github.com/agentcookbook/gemini-agents/samples/gemini/cookbook"
)

func main() {
	s, err := cookbook.Setup()
	if err != nil {
		cookbook.Exit(err)
	}
	review, _, err := af.RunTyped[cookbook.MovieReview](context.Background(), cookbook.MovieCritic(s),
		[]af.Message{af.NewUserMessage("Review the movie Inception")})
	if err != nil {
		cookbook.Exit(err)
	}

	fmt.Printf("Title: %s (%d)\n", review.Title, review.Year)
	fmt.Printf("Rating: %.1f/10\n", review.Rating)
	fmt.Printf("Genre: %s\n", review.Genre)
	fmt.Println("\nPros:")
	for _, p := range review.Pros {
		fmt.Printf("  - %s\n", p)
	}
	fmt.Println("\nCons:")
	for _, c := range review.Cons {
		fmt.Printf("  - %s\n", c)
	}
	fmt.Printf("\nVerdict: %s\n", review.Verdict)
}
