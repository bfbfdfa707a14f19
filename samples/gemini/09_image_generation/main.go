// Command 09_image_generation generates an image, then edits it, saving
// both into the workspace.
package main

import (
	"context"
	"fmt"

	af "github.com/agentcookbook/gemini-agents/agentframework"
	"github.com/agentcookbook/gemini-agents/config"
	"github.com/agentcookbook/gemini-agents/media"
	"github.com/agentcookbook/gemini-agents/samples/gemini/cookbook"
)

func main() {
	s, err := cookbook.Setup()
	if err != nil {
		cookbook.Exit(err)
	}
	ctx := context.Background()
	gen := cookbook.ImageGenerator(s)

	fmt.Println("Generating an image...")
	resp, err := gen.Run(ctx, []af.Message{af.NewUserMessage("Make me an image of a cat sitting in a tree.")})
	if err != nil {
		cookbook.Exit(err)
	}
	saved, err := save(s, resp, "generated")
	if err != nil {
		cookbook.Exit(err)
	}
	if len(saved) == 0 {
		fmt.Println("No images found in response")
		return
	}

	fmt.Println("\nEditing the generated image...")
	img, err := media.FromFile(saved[0], "")
	if err != nil {
		cookbook.Exit(err)
	}
	resp, err = gen.Run(ctx, []af.Message{af.NewUserMessage("Add a rainbow in the sky of this image.", img)})
	if err != nil {
		cookbook.Exit(err)
	}
	edited, err := save(s, resp, "edited")
	if err != nil {
		cookbook.Exit(err)
	}
	if len(edited) == 0 {
		fmt.Println("No edited images found in response")
	}
}

// save writes every image of resp as prefix_i.png and returns the paths.
func save(s *config.Settings, resp *af.AgentResponse, prefix string) ([]string, error) {
	var paths []string
	for i, img := range resp.Images() {
		path, err := s.Path(fmt.Sprintf("%s_%d.png", prefix, i))
		if err != nil {
			return paths, err
		}
		if err := media.SaveImage(img, path); err != nil {
			return paths, err
		}
		fmt.Printf("Saved %s image to %s\n", prefix, path)
		paths = append(paths, path)
	}
	return paths, nil
}
