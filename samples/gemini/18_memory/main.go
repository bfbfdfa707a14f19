// Command 18_memory runs a tutor that learns a student's preferences in one
// session and applies them in the next.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	af "github.com/agentcookbook/gemini-agents/agentframework"
	"github.com/agentcookbook/gemini-agents/config"
	"github.com/agentcookbook/gemini-agents/console"
	"github.com/agentcookbook/gemini-agents/memory"
	"github.com/agentcookbook/gemini-agents/samples/gemini/cookbook"
)

const userID = "student@example.com"

func main() {
	s, err := cookbook.Setup()
	if err != nil {
		cookbook.Exit(err)
	}
	if err := run(context.Background(), s); err != nil {
		cookbook.Exit(err)
	}
}

func banner(title string) {
	rule := strings.Repeat("=", 60)
	fmt.Printf("\n%s\n%s\n%s\n", rule, title, rule)
}

func run(ctx context.Context, s *config.Settings) error {
	db, err := cookbook.OpenDB(ctx, s)
	if err != nil {
		return err
	}
	defer db.Close()

	tutor, err := cookbook.PersonalTutor(ctx, s, db)
	if err != nil {
		return err
	}
	session := func(id string) console.Option {
		return console.WithRunOptions(af.WithUserID(userID), af.WithSessionID(id))
	}

	banner("SESSION 1: Teaching the agent your preferences")
	_, err = console.PrintResponse(ctx, os.Stdout, tutor.Agent,
		"I'm learning Spanish. I'm at an intermediate level and I prefer learning through conversations rather than grammar drills. "+
			"Can you help me practice ordering food at a restaurant?",
		console.WithStream(), console.WithToolCalls(), session("session_1"))
	if err != nil {
		return err
	}

	fmt.Println("\n--- Learned Knowledge ---")
	if err := memory.PrintLearnings(ctx, os.Stdout, tutor.Learning, "student preferences"); err != nil {
		return err
	}

	banner("SESSION 2: New task, agent applies learned preferences")
	_, err = console.PrintResponse(ctx, os.Stdout, tutor.Agent,
		"Can you help me practice asking for directions?",
		console.WithStream(), console.WithToolCalls(), session("session_2"))
	return err
}
