// Command chat is an interactive conversation with a tool-using assistant.
// The session survives restarts: turns are kept in the agent database, or in
// redis when REDIS_URL is set.
//
//	export GOOGLE_API_KEY=...
//	go run ./samples/chat -session trip-planning
//
// The assistant runs on the native Gemini API by default. -provider openai
// reaches Gemini through its OpenAI-compatible endpoint instead, or an Azure
// OpenAI deployment when AZURE_OPENAI_ENDPOINT is set (Entra ID auth when
// AZURE_OPENAI_KEY is empty).
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	af "github.com/agentcookbook/gemini-agents/agentframework"
	"github.com/agentcookbook/gemini-agents/config"
	"github.com/agentcookbook/gemini-agents/console"
	"github.com/agentcookbook/gemini-agents/observability"
	"github.com/agentcookbook/gemini-agents/openai"
	"github.com/agentcookbook/gemini-agents/samples/gemini/cookbook"
	"github.com/agentcookbook/gemini-agents/storage"
	"github.com/agentcookbook/gemini-agents/storage/redisstore"
	"github.com/agentcookbook/gemini-agents/tools/websearch"
)

const azureAPIVersion = "2024-10-21"

func main() {
	provider := flag.String("provider", "gemini", "gemini or openai")
	sessionID := flag.String("session", "chat", "session to resume")
	userID := flag.String("user", "", "user owning the session")
	flag.Parse()

	s, err := cookbook.Setup()
	if err != nil {
		cookbook.Exit(err)
	}
	if err := run(context.Background(), s, *provider, *sessionID, *userID); err != nil {
		cookbook.Exit(err)
	}
}

func run(ctx context.Context, s *config.Settings, provider, sessionID, userID string) error {
	client, err := newChatClient(s, provider)
	if err != nil {
		return err
	}

	opts := []af.AgentOption{
		af.WithID("chat"),
		af.WithName("assistant"),
		af.WithInstructions("You are a helpful assistant. When asked about the weather, use the get_weather tool. " +
			"When asked about the time, use the get_time tool. Search the web for anything recent. Keep responses concise."),
		af.WithTools(weatherTool(), timeTool()),
		af.WithToolkits(websearch.New().Toolkit()),
		af.WithAgentMiddleware(af.LoggingMiddleware(slog.Default()), observability.AgentMetricsMiddleware()),
		af.WithFunctionMiddleware(observability.ToolMetricsMiddleware()),
	}

	if s.RedisURL != "" {
		rdb, err := redisstore.Connect(ctx, s.RedisURL)
		if err != nil {
			return fmt.Errorf("%w: %w", config.ErrMissingDependency, err)
		}
		defer rdb.Close()
		agent := af.NewAgent(client, opts...)
		session := agent.NewSession(
			af.WithSessionStore(redisstore.NewMessageStore(rdb, sessionID)),
			af.WithSessionKey(sessionID),
			af.WithSessionUserID(userID),
		)
		fmt.Printf("Session %q stored in redis\n", sessionID)
		return loop(ctx, agent, af.WithSession(session))
	}

	db, err := cookbook.OpenDB(ctx, s)
	if err != nil {
		return err
	}
	defer db.Close()
	agent := af.NewAgent(client, append(opts, af.WithContextProvider(storage.History(db, 10)))...)
	fmt.Printf("Session %q stored in %s\n", sessionID, db.Dialect())
	return loop(ctx, agent, af.WithSessionID(sessionID), af.WithUserID(userID))
}

func loop(ctx context.Context, agent *af.Agent, runOpts ...af.RunOption) error {
	fmt.Println("Chat with the assistant (type 'quit' to exit, 'stream' prefix for streaming)")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "quit" || input == "exit" {
			return nil
		}

		printOpts := []console.Option{console.WithToolCalls(), console.WithRunOptions(runOpts...)}
		if rest, ok := strings.CutPrefix(input, "stream "); ok {
			input = rest
			printOpts = append(printOpts, console.WithStream())
		}
		resp, err := console.PrintResponse(ctx, os.Stdout, agent, input, printOpts...)
		if err != nil {
			config.Report(os.Stderr, err)
			continue
		}
		if resp.Usage.TotalTokens > 0 {
			fmt.Printf("  [tokens: %d in, %d out]\n", resp.Usage.InputTokens, resp.Usage.OutputTokens)
		}
		fmt.Println()
	}
}

func weatherTool() af.Tool {
	return af.NewTypedTool("get_weather",
		"Get the current weather for a location.",
		func(ctx context.Context, args struct {
			Location string `json:"location" jsonschema:"description=City name or location,required"`
			Unit     string `json:"unit"     jsonschema:"description=Temperature unit,enum=celsius|fahrenheit"`
		}) (any, error) {
			// Simulated weather API
			unit := args.Unit
			if unit == "" {
				unit = "celsius"
			}
			temp := 22
			if unit == "fahrenheit" {
				temp = 72
			}
			return map[string]any{
				"location":    args.Location,
				"temperature": temp,
				"unit":        unit,
				"condition":   "sunny",
			}, nil
		},
	)
}

func timeTool() af.Tool {
	return af.NewTool("get_time",
		"Get the current time.",
		json.RawMessage(`{"type":"object","properties":{}}`),
		func(ctx context.Context, args json.RawMessage) (any, error) {
			return time.Now().Format(time.RFC3339), nil
		},
	)
}

// newChatClient picks the native Gemini client or an OpenAI-compatible one.
func newChatClient(s *config.Settings, provider string) (af.ChatClient, error) {
	switch provider {
	case "gemini":
		return cookbook.Gemini(s, cookbook.FlashModel), nil
	case "openai":
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}

	endpoint := os.Getenv("AZURE_OPENAI_ENDPOINT")
	if endpoint == "" {
		return openai.New(s.GoogleAPIKey,
			openai.WithGeminiCompat(),
			openai.WithModel(s.Model),
		), nil
	}

	deployment := os.Getenv("AZURE_OPENAI_DEPLOYMENT")
	if deployment == "" {
		deployment = "gpt-4o"
	}
	key := os.Getenv("AZURE_OPENAI_KEY")
	if key != "" {
		return openai.New(key,
			openai.WithAzure(endpoint, azureAPIVersion),
			openai.WithModel(deployment),
		), nil
	}
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: azure credential: %w", af.ErrMissingCredential, err)
	}
	return openai.New("",
		openai.WithAzure(endpoint, azureAPIVersion),
		openai.WithModel(deployment),
		openai.WithAzureCredential(cred),
	), nil
}
