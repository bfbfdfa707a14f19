// Command music_asset_brief analyzes a track and its artwork and prints a
// structured brief for A&R and marketing.
package main

import (
	"context"
	"fmt"
	"strings"

	af "github.com/agentcookbook/gemini-agents/agentframework"
	"github.com/agentcookbook/gemini-agents/media"
	"github.com/agentcookbook/gemini-agents/samples/gemini/cookbook"
)

// Replace with your own track and artwork.
const (
	audioURL   = cookbook.AudioURL
	artworkURL = cookbook.ImageURL
)

func main() {
	s, err := cookbook.Setup()
	if err != nil {
		cookbook.Exit(err)
	}
	ctx := context.Background()

	fmt.Println("Downloading audio sample...")
	audio, err := media.Fetch(ctx, audioURL, "mp3")
	if err != nil {
		cookbook.Exit(err)
	}
	artwork, err := media.Fetch(ctx, artworkURL, "")
	if err != nil {
		cookbook.Exit(err)
	}

	fmt.Println("Analyzing track and artwork...")
	brief, _, err := af.RunTyped[cookbook.TrackBrief](ctx, cookbook.MusicAnalyst(s), []af.Message{af.NewUserMessage(
		"Analyze this music track and album artwork. Research the artist and produce a comprehensive asset brief.",
		audio, artwork)})
	if err != nil {
		cookbook.Exit(err)
	}

	fmt.Printf("Track: %s by %s\n", brief.TrackName, brief.Artist)
	fmt.Printf("Genre: %s | Mood: %s | Tempo: %s\n", brief.Genre, brief.Mood, brief.TempoEstimate)
	fmt.Printf("Visual Style: %s\n", brief.VisualStyle)
	fmt.Printf("Target Audience: %s\n", brief.TargetAudience)
	fmt.Println("\nMarketing Angles:")
	for _, a := range brief.MarketingAngles {
		fmt.Printf("  - %s\n", a)
	}
	fmt.Printf("\nComparable Artists: %s\n", strings.Join(brief.ComparableArtists, ", "))
	fmt.Printf("\nSummary: %s\n", brief.Summary)
}
