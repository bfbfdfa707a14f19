// Command 15_file_search indexes a document in a managed File Search store,
// queries it and deletes the store.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	af "github.com/agentcookbook/gemini-agents/agentframework"
	"github.com/agentcookbook/gemini-agents/config"
	"github.com/agentcookbook/gemini-agents/gemini"
	"github.com/agentcookbook/gemini-agents/samples/gemini/cookbook"
)

const guidelines = `Company Safety Guidelines

1. All employees must wear safety equipment in the warehouse.
2. Fire exits must remain clear at all times.
3. Report any safety hazards to your supervisor immediately.
4. First aid kits are located on every floor near the elevators.
5. Emergency drills are conducted quarterly.
6. Remote workers should ensure their home office meets ergonomic standards.
7. All incidents, no matter how minor, must be documented within 24 hours.
8. Visitors must be accompanied by an employee at all times.
`

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
	doc, err := s.Path("company_guidelines.txt")
	if err != nil {
		return err
	}
	if err := os.WriteFile(doc, []byte(guidelines), 0o644); err != nil {
		return err
	}

	client := cookbook.Gemini(s, cookbook.ProModel)

	fmt.Println("Creating File Search store...")
	store, err := client.CreateFileSearchStore(ctx, "Guidelines Store")
	if err != nil {
		return err
	}
	fmt.Printf("Created store: %s\n", store.Name)
	defer func() {
		fmt.Println("\nCleaning up store...")
		if err := client.DeleteFileSearchStore(context.WithoutCancel(ctx), store.Name, true); err != nil {
			slog.Error("delete file search store", "store", store.Name, "error", err)
			return
		}
		fmt.Println("Done.")
	}()

	fmt.Println("\nUploading document...")
	op, err := client.UploadToFileSearchStore(ctx, doc, store.Name, "Company Safety Guidelines")
	if err != nil {
		return err
	}
	fmt.Println("Waiting for upload to complete...")
	if _, err := client.WaitForOperation(ctx, op, 2*time.Second); err != nil {
		return err
	}
	fmt.Println("Upload complete.")

	searcher := af.NewAgent(cookbook.Gemini(s, cookbook.ProModel, gemini.WithFileSearchStores(store.Name)),
		af.WithID("file-search-agent"),
		af.WithName("File Search Agent"),
		af.WithMarkdown(),
	)

	fmt.Println("\nQuerying documents...")
	resp, err := searcher.Run(ctx, []af.Message{af.NewUserMessage("What are the main safety guidelines? What should I do if I see a hazard?")})
	if err != nil {
		return err
	}
	fmt.Println(resp.Text())
	if cites := resp.Citations(); len(cites) > 0 {
		fmt.Printf("\nCitations (%d sources found)\n", len(cites))
	}
	return nil
}
