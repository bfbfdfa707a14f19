// Command 01_basic runs a chat agent in one of four modes: sync, sync with
// streaming, async and async with streaming.
//
//	go run ./samples/gemini/01_basic -mode stream
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/agentcookbook/gemini-agents/console"
	"github.com/agentcookbook/gemini-agents/samples/gemini/cookbook"
)

const prompt = "What are the top 3 things to see in Paris?"

func main() {
	mode := flag.String("mode", "async-stream", "sync, stream, async or async-stream")
	flag.Parse()

	s, err := cookbook.Setup()
	if err != nil {
		cookbook.Exit(err)
	}
	ctx := context.Background()
	chat := cookbook.ChatAgent(s)

	var opts []console.Option
	switch *mode {
	case "sync", "async":
	case "stream", "async-stream":
		opts = append(opts, console.WithStream())
	default:
		fmt.Fprintf(os.Stderr, "unknown mode %q\n", *mode)
		os.Exit(2)
	}

	if *mode == "sync" || *mode == "stream" {
		if _, err := console.PrintResponse(ctx, os.Stdout, chat, prompt, opts...); err != nil {
			cookbook.Exit(err)
		}
		return
	}

	// Async: the run happens on its own goroutine while main waits.
	done := make(chan error, 1)
	go func() {
		_, err := console.PrintResponse(ctx, os.Stdout, chat, prompt, opts...)
		done <- err
	}()
	if err := <-done; err != nil {
		cookbook.Exit(err)
	}
}
