// Command 10_audio_input transcribes and summarizes a downloaded mp3.
package main

import (
	"context"
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
	audio, err := media.Fetch(ctx, cookbook.AudioURL, "mp3")
	if err != nil {
		cookbook.Exit(err)
	}
	_, err = console.PrintResponse(ctx, os.Stdout, cookbook.AudioAnalyst(s),
		"Transcribe and summarize this audio.",
		console.WithStream(), console.WithMedia(audio))
	if err != nil {
		cookbook.Exit(err)
	}
}
