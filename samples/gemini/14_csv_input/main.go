// Command 14_csv_input downloads the IMDB dataset, uploads it through the
// Files API and asks for an analysis.
package main

import (
	"context"
	"os"

	"github.com/agentcookbook/gemini-agents/console"
	"github.com/agentcookbook/gemini-agents/gemini"
	"github.com/agentcookbook/gemini-agents/media"
	"github.com/agentcookbook/gemini-agents/samples/gemini/cookbook"
)

func main() {
	s, err := cookbook.Setup()
	if err != nil {
		cookbook.Exit(err)
	}
	ctx := context.Background()

	path, err := s.Path("IMDB-Movie-Data.csv")
	if err != nil {
		cookbook.Exit(err)
	}
	if _, err := media.DownloadFile(ctx, cookbook.CSVURL, path); err != nil {
		cookbook.Exit(err)
	}

	client := cookbook.Gemini(s, cookbook.FlashModel)
	f, err := client.UploadFile(ctx, path, &gemini.UploadOptions{MimeType: "text/csv"})
	if err != nil {
		cookbook.Exit(err)
	}
	if f, err = client.WaitForFile(ctx, f.Name, 0); err != nil {
		cookbook.Exit(err)
	}

	_, err = console.PrintResponse(ctx, os.Stdout, cookbook.DataAnalyst(s),
		"Analyze the top 10 highest-grossing movies in this dataset. Which genres perform best at the box office?",
		console.WithStream(), console.WithMedia(f.Content()))
	if err != nil {
		cookbook.Exit(err)
	}
}
