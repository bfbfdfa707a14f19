// Command film_scene_breakdown has a production team compare a video clip
// with a script PDF and produce a scene breakdown.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/agentcookbook/gemini-agents/console"
	"github.com/agentcookbook/gemini-agents/media"
	"github.com/agentcookbook/gemini-agents/samples/gemini/cookbook"
)

// Replace with your own clip and script.
const (
	videoURL  = cookbook.VideoURL
	scriptURL = cookbook.PDFURL
)

func main() {
	s, err := cookbook.Setup()
	if err != nil {
		cookbook.Exit(err)
	}
	ctx := context.Background()

	fmt.Println("Downloading video sample...")
	video, err := media.Fetch(ctx, videoURL, "mp4")
	if err != nil {
		cookbook.Exit(err)
	}
	script, err := media.Fetch(ctx, scriptURL, "application/pdf")
	if err != nil {
		cookbook.Exit(err)
	}

	fmt.Println("Running production team analysis...")
	_, err = console.PrintResponse(ctx, os.Stdout, cookbook.ProductionTeam(s),
		"Analyze this video clip and compare it against the provided document. "+
			"Produce a scene breakdown with visual analysis, script notes, and a continuity report.",
		console.WithStream(), console.WithMemberResponses(), console.WithMedia(video, script))
	if err != nil {
		cookbook.Exit(err)
	}
}
