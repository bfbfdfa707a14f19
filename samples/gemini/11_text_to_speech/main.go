// Command 11_text_to_speech speaks a sentence with the Kore voice and saves
// it as greeting.wav.
package main

import (
	"context"
	"fmt"

	af "github.com/agentcookbook/gemini-agents/agentframework"
	"github.com/agentcookbook/gemini-agents/media"
	"github.com/agentcookbook/gemini-agents/samples/gemini/cookbook"
)

func main() {
	s, err := cookbook.Setup()
	if err != nil {
		cookbook.Exit(err)
	}
	resp, err := cookbook.TTSAgent(s).Run(context.Background(),
		[]af.Message{af.NewUserMessage("Say cheerfully: Have a wonderful day!")})
	if err != nil {
		cookbook.Exit(err)
	}
	audio := resp.Audio()
	if len(audio) == 0 {
		fmt.Println("No audio in response")
		return
	}
	path, err := s.Path("greeting.wav")
	if err != nil {
		cookbook.Exit(err)
	}
	if err := media.SaveAudio(audio[0], path); err != nil {
		cookbook.Exit(err)
	}
	fmt.Printf("Audio saved to %s\n", path)
}
