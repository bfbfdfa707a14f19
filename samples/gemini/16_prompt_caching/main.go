// Command 16_prompt_caching caches a large transcript server-side and asks
// two questions against it, printing the token metrics of each run.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	af "github.com/agentcookbook/gemini-agents/agentframework"
	"github.com/agentcookbook/gemini-agents/config"
	"github.com/agentcookbook/gemini-agents/console"
	"github.com/agentcookbook/gemini-agents/gemini"
	"github.com/agentcookbook/gemini-agents/media"
	"github.com/agentcookbook/gemini-agents/samples/gemini/cookbook"
)

const (
	transcriptURL = "https://storage.googleapis.com/generativeai-downloads/data/a11.txt"
	remoteName    = "files/a11"
	cacheTTL      = 300 * time.Second
)

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
	path, err := s.Path("a11.txt")
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		fmt.Println("Downloading transcript...")
	}
	if _, err := media.DownloadFile(ctx, transcriptURL, path); err != nil {
		return err
	}

	client := cookbook.Gemini(s, cookbook.FlashModel)
	file, err := client.GetOrUploadFile(ctx, remoteName, path)
	if err != nil {
		return err
	}
	fmt.Printf("Transcript ready: %s\n", file.URI)

	fmt.Println("\nCreating cache (5 min TTL)...")
	cache, err := client.CreateCache(ctx, gemini.CacheConfig{
		SystemInstruction: "You are an expert at analyzing transcripts.",
		Contents:          []af.Message{af.NewUserMessage("", file.Content())},
		TTL:               cacheTTL,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Cache created: %s\n", cache.Name)
	defer func() {
		if err := client.DeleteCache(context.WithoutCancel(ctx), cache.Name); err != nil {
			slog.Warn("delete cache", "cache", cache.Name, "error", err)
		}
	}()

	analyst := cookbook.TranscriptAnalyst(s, cache.Name)
	for _, q := range []string{
		"Find a lighthearted moment from this transcript",
		"What was the most tense moment during the mission?",
	} {
		resp, err := console.PrintResponse(ctx, os.Stdout, analyst, q)
		if err != nil {
			return err
		}
		console.PrintMetrics(os.Stdout, resp)
	}
	return nil
}
