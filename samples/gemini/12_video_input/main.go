// Command 12_video_input describes a video sent as bytes, then a YouTube
// video passed by URL.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/agentcookbook/gemini-agents/console"
	"github.com/agentcookbook/gemini-agents/media"
	"github.com/agentcookbook/gemini-agents/samples/gemini/cookbook"
)

func main() {
	s, err := cookbook.Setup()
	if err != nil {
		cookbook.Exit(err)
	}
	ctx := context.Background()
	analyst := cookbook.VideoAnalyst(s)

	fmt.Println("--- Analyzing video from bytes ---")
	video, err := media.Fetch(ctx, cookbook.VideoURL, "mp4")
	if err != nil {
		cookbook.Exit(err)
	}
	if _, err := console.PrintResponse(ctx, os.Stdout, analyst, "Describe and summarize this video.",
		console.WithStream(), console.WithMedia(video)); err != nil {
		cookbook.Exit(err)
	}

	fmt.Println("\n--- Analyzing YouTube video ---")
	if _, err := console.PrintResponse(ctx, os.Stdout, analyst, "Tell me about this video.",
		console.WithStream(), console.WithMedia(media.YouTube(cookbook.YouTubeURL))); err != nil {
		cookbook.Exit(err)
	}
}
