// Command game_concept_pitch draws concept art for a game idea, writes a
// structured pitch and has a review board assess it.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	af "github.com/agentcookbook/gemini-agents/agentframework"
	"github.com/agentcookbook/gemini-agents/config"
	"github.com/agentcookbook/gemini-agents/console"
	"github.com/agentcookbook/gemini-agents/media"
	"github.com/agentcookbook/gemini-agents/samples/gemini/cookbook"
)

const gameIdea = "A cozy underwater exploration game where you play as a marine biologist " +
	"discovering and cataloging bioluminescent deep-sea creatures. " +
	"The core loop is diving, photographing creatures, and building " +
	"a living encyclopedia that other players can browse."

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
	fmt.Println("Generating concept art...")
	art, err := cookbook.ConceptArtist(s).Run(ctx, []af.Message{af.NewUserMessage(
		"Create concept art for this game: " + gameIdea + " " +
			"Show a diver exploring a bioluminescent underwater cave with glowing creatures.")})
	if err != nil {
		return err
	}
	for i, img := range art.Images() {
		path, err := s.Path(fmt.Sprintf("game_concept_%d.png", i))
		if err != nil {
			return err
		}
		if err := media.SaveImage(img, path); err != nil {
			return err
		}
		fmt.Printf("Saved concept art to %s\n", path)
	}

	fmt.Println("\nWriting game pitch...")
	pitch, _, err := af.RunTyped[cookbook.GamePitch](ctx, cookbook.PitchWriter(s),
		[]af.Message{af.NewUserMessage("Create a structured game pitch for: " + gameIdea)})
	if err != nil {
		return err
	}
	fmt.Printf("Title: %s\n", pitch.Title)
	fmt.Printf("Tagline: %s\n", pitch.Tagline)
	fmt.Printf("Genre: %s\n", pitch.Genre)
	fmt.Printf("Core Mechanic: %s\n", pitch.CoreMechanic)
	fmt.Printf("\nElevator Pitch: %s\n", pitch.ElevatorPitch)

	fmt.Println("\nRunning review board...")
	_, err = console.PrintResponse(ctx, os.Stdout, cookbook.ReviewBoard(s), reviewPrompt(pitch),
		console.WithStream(), console.WithMemberResponses())
	return err
}

func reviewPrompt(p cookbook.GamePitch) string {
	var b strings.Builder
	b.WriteString("Review this game pitch:\n\n")
	fmt.Fprintf(&b, "Title: %s\n", p.Title)
	fmt.Fprintf(&b, "Genre: %s\n", p.Genre)
	fmt.Fprintf(&b, "Platforms: %s\n", strings.Join(p.Platform, ", "))
	fmt.Fprintf(&b, "Target Audience: %s\n", p.TargetAudience)
	fmt.Fprintf(&b, "Core Mechanic: %s\n", p.CoreMechanic)
	fmt.Fprintf(&b, "Setting: %s\n", p.Setting)
	fmt.Fprintf(&b, "USPs: %s\n", strings.Join(p.UniqueSellingPoints, ", "))
	fmt.Fprintf(&b, "Comparable Titles: %s\n", strings.Join(p.ComparableTitles, ", "))
	fmt.Fprintf(&b, "Monetization: %s\n", p.Monetization)
	fmt.Fprintf(&b, "Elevator Pitch: %s", p.ElevatorPitch)
	return b.String()
}
