package knowledge

import (
	"context"
	"fmt"
	"strings"

	af "github.com/agentcookbook/gemini-agents/agentframework"
)

// SearchToolName is the name of the tool returned by [Knowledge.SearchTool].
const SearchToolName = "search_knowledge_base"

type searchArgs struct {
	Query string `json:"query" jsonschema:"description=The search query,required"`
}

// Reference is a search result as the model sees it.
type Reference struct {
	Name    string  `json:"name,omitempty"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// SearchTool lets an agent search the knowledge base.
func (k *Knowledge) SearchTool() af.Tool {
	return af.NewTypedTool(SearchToolName,
		"Search the "+k.name+" knowledge base for information relevant to a query.",
		func(ctx context.Context, args searchArgs) (any, error) {
			docs, err := k.Search(ctx, args.Query, 0)
			if err != nil {
				return nil, err
			}
			if len(docs) == 0 {
				return "No documents found.", nil
			}
			refs := make([]Reference, len(docs))
			for i, d := range docs {
				refs[i] = Reference{Name: d.Name, Content: d.Content, Score: d.Score}
			}
			return refs, nil
		})
}

// Provider gives an agent the search tool (agentic retrieval).
func (k *Knowledge) Provider() af.ContextProvider {
	return &toolProvider{k: k}
}

type toolProvider struct {
	af.NoOpContextProvider
	k *Knowledge
}

func (p *toolProvider) Invoking(_ context.Context, _ []af.Message) (*af.InvocationContext, error) {
	return &af.InvocationContext{
		Instructions: fmt.Sprintf("You have access to the %q knowledge base. Use the %s tool to look up information before answering, and base your answer on what it returns.", p.k.name, SearchToolName),
		Tools:        []af.Tool{p.k.SearchTool()},
	}, nil
}

// ReferencesProvider searches with the latest user message before each run
// and adds the results to the instructions.
func (k *Knowledge) ReferencesProvider(limit int) af.ContextProvider {
	return &referencesProvider{k: k, limit: limit}
}

type referencesProvider struct {
	af.NoOpContextProvider
	k     *Knowledge
	limit int
}

func (p *referencesProvider) Invoking(ctx context.Context, messages []af.Message) (*af.InvocationContext, error) {
	query := af.LastUserText(messages)
	if query == "" {
		return nil, nil
	}
	docs, err := p.k.Search(ctx, query, p.limit)
	if err != nil || len(docs) == 0 {
		return nil, err
	}
	var b strings.Builder
	b.WriteString("Use the following references from the knowledge base if they help answer the user.\n<references>\n")
	for _, d := range docs {
		fmt.Fprintf(&b, "<reference name=%q>\n%s\n</reference>\n", d.Name, d.Content)
	}
	b.WriteString("</references>")
	return &af.InvocationContext{Instructions: b.String()}, nil
}
