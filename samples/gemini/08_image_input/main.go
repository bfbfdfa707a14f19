// Command 08_image_input describes an image downloaded from a URL and searches for
// news about it.
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
	img, err := media.Fetch(ctx, cookbook.ImageURL, "image/jpeg")
	if err != nil {
		cookbook.Exit(err)
	}
	_, err = console.PrintResponse(ctx, os.Stdout, cookbook.ImageAnalyst(s),
		"Tell me about this image and give me the latest news about it.",
		console.WithStream(),
		console.WithMedia(img),
		console.WithCitations())
	if err != nil {
		cookbook.Exit(err)
	}
}
