// Package agentframework provides the agent runtime used by the cookbook
// programs: a composable Agent with tool calling, structured output, context
// providers, middleware pipelines, sessions and streaming.
//
// # Quick Start
//
// Create a ChatClient (e.g., from the gemini package) and build an Agent:
//
//	client := gemini.New(os.Getenv("GOOGLE_API_KEY"), gemini.WithModel("gemini-3-flash-preview"))
//
//	agent := agentframework.NewAgent(client,
//	    agentframework.WithName("Chat Assistant"),
//	    agentframework.WithMarkdown(),
//	)
//
//	resp, err := agent.Run(ctx, []agentframework.Message{
//	    agentframework.NewUserMessage("What are the top 3 things to see in Paris?"),
//	})
//
// # Architecture
//
//   - [Agent]: composes a client with tools, middleware and sessions.
//   - [Runner]: what agents, teams and workflows have in common.
//   - [ChatClient]: interface for LLM backends (implemented by provider packages).
//   - [Tool] and [Toolkit]: callable functions exposed to the model.
//   - [Content]: sealed interface for message parts (text, thoughts, media,
//     function calls, citations).
//   - [ContextProvider]: injects instructions, messages and tools per run.
//   - [ResponseStream]: generic pull-based iterator for streaming responses.
//   - Middleware: three levels (Agent, Chat, Function) for cross-cutting concerns.
//
// # Tools
//
// Use [NewTypedTool] for type-safe tools with automatic JSON Schema generation.
// Enum tags constrain a parameter to a fixed set of literals:
//
//	type RestartArgs struct {
//	    Action      string `json:"action"       jsonschema:"enum=start|stop|restart,required"`
//	    ServiceName string `json:"service_name" jsonschema:"description=Service to control,required"`
//	}
//
//	tool := agentframework.NewTypedTool("standalone_tool", "Control a service",
//	    func(ctx context.Context, args RestartArgs) (any, error) {
//	        return args.Action + " " + args.ServiceName, nil
//	    },
//	)
//
// # Structured output
//
//	critic := agentframework.NewAgent(client, agentframework.WithOutputSchema[MovieReview]())
//	review, _, err := agentframework.RunTyped[MovieReview](ctx, critic, msgs)
//
// # Sessions
//
//	session := agent.NewSession()
//	resp1, _ := agent.Run(ctx, msgs1, agentframework.WithSession(session))
//	resp2, _ := agent.Run(ctx, msgs2, agentframework.WithSession(session))
package agentframework
