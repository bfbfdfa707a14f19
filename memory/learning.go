package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"

	af "github.com/agentcookbook/gemini-agents/agentframework"
	"github.com/agentcookbook/gemini-agents/knowledge"
)

// LearningMode controls when learnings are saved.
type LearningMode string

const (
	// LearningAgentic lets the agent save and search learnings with tools.
	LearningAgentic LearningMode = "agentic"
	// LearningAlways extracts learnings from every run with a model call.
	LearningAlways LearningMode = "always"
	// LearningNever disables learning.
	LearningNever LearningMode = "never"
)

// Learning stores reusable insights in a knowledge base.
type Learning struct {
	kb        *knowledge.Knowledge
	mode      LearningMode
	extractor af.ChatClient
	limit     int
}

// LearningOption configures a [Learning].
type LearningOption func(*Learning)

// WithMode sets the learning mode. The default is [LearningAgentic].
func WithMode(m LearningMode) LearningOption {
	return func(l *Learning) { l.mode = m }
}

// WithExtractor sets the model used in [LearningAlways] mode.
func WithExtractor(c af.ChatClient) LearningOption {
	return func(l *Learning) { l.extractor = c }
}

// WithLearningLimit sets how many learnings a search returns.
func WithLearningLimit(n int) LearningOption {
	return func(l *Learning) { l.limit = n }
}

// NewLearning stores learnings in kb.
func NewLearning(kb *knowledge.Knowledge, opts ...LearningOption) *Learning {
	l := &Learning{kb: kb, mode: LearningAgentic, limit: 5}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Mode returns the learning mode.
func (l *Learning) Mode() LearningMode { return l.mode }

// Insight is one saved learning.
type Insight struct {
	Title    string `json:"title" jsonschema:"description=Short title of the learning,required"`
	Learning string `json:"learning" jsonschema:"description=The insight itself,required"`
}

// Save stores an insight.
func (l *Learning) Save(ctx context.Context, in Insight) error {
	meta := map[string]any{"title": in.Title}
	if u := af.UserIDFrom(ctx); u != "" {
		meta["user_id"] = u
	}
	_, err := l.kb.Insert(ctx, knowledge.Source{
		Name: in.Title,
		Text: in.Title + "\n\n" + in.Learning,
		Meta: meta,
	})
	return err
}

// Search returns the insights most relevant to query.
func (l *Learning) Search(ctx context.Context, query string) ([]Insight, error) {
	docs, err := l.kb.Search(ctx, query, l.limit)
	if err != nil {
		return nil, err
	}
	out := make([]Insight, 0, len(docs))
	for _, d := range docs {
		text := strings.TrimPrefix(d.Content, d.Name+"\n\n")
		out = append(out, Insight{Title: d.Name, Learning: text})
	}
	return out, nil
}

type searchLearningsArgs struct {
	Query string `json:"query" jsonschema:"description=What to look for,required"`
}

// Tools returns save_learning and search_learnings.
func (l *Learning) Tools() []af.Tool {
	return []af.Tool{
		af.NewTypedTool("save_learning",
			"Save an insight worth remembering for future conversations with any user.",
			func(ctx context.Context, in Insight) (any, error) {
				if err := l.Save(ctx, in); err != nil {
					return nil, err
				}
				return "Learning saved: " + in.Title, nil
			}),
		af.NewTypedTool("search_learnings",
			"Search previously saved insights.",
			func(ctx context.Context, a searchLearningsArgs) (any, error) {
				found, err := l.Search(ctx, a.Query)
				if err != nil {
					return nil, err
				}
				if len(found) == 0 {
					return "No learnings found.", nil
				}
				return found, nil
			}),
	}
}

// Provider wires the learning mode into an agent.
func (l *Learning) Provider() af.ContextProvider {
	return &learningProvider{l: l}
}

type learningProvider struct {
	af.NoOpContextProvider
	l *Learning
}

func (p *learningProvider) Invoking(ctx context.Context, messages []af.Message) (*af.InvocationContext, error) {
	switch p.l.mode {
	case LearningAgentic:
		return &af.InvocationContext{
			Instructions: "Before answering, use search_learnings to recall relevant insights. When you discover something that would help future conversations, save it with save_learning.",
			Tools:        p.l.Tools(),
		}, nil
	case LearningAlways:
		query := af.LastUserText(messages)
		if query == "" {
			return nil, nil
		}
		found, err := p.l.Search(ctx, query)
		if err != nil || len(found) == 0 {
			return nil, err
		}
		var b strings.Builder
		b.WriteString("Insights learned from earlier conversations:\n")
		for _, in := range found {
			fmt.Fprintf(&b, "- %s: %s\n", in.Title, in.Learning)
		}
		return &af.InvocationContext{Instructions: strings.TrimRight(b.String(), "\n")}, nil
	}
	return nil, nil
}

const extractPrompt = `Extract reusable insights from the conversation below: lessons that would help answer future questions from any user. Skip personal details about this user. Return an empty list when there is nothing new.`

type extraction struct {
	Learnings []Insight `json:"learnings"`
}

func (p *learningProvider) Invoked(ctx context.Context, request []af.Message, resp *af.AgentResponse) error {
	if p.l.mode != LearningAlways || p.l.extractor == nil || resp == nil {
		return nil
	}
	var convo strings.Builder
	for _, m := range request {
		if t := m.Text(); t != "" {
			fmt.Fprintf(&convo, "%s: %s\n", m.Role, t)
		}
	}
	fmt.Fprintf(&convo, "assistant: %s\n", resp.Text())

	out, err := p.l.extractor.Response(ctx, []af.Message{
		af.NewSystemMessage(extractPrompt),
		af.NewUserMessage(convo.String()),
	}, &af.ChatOptions{
		ResponseFormat: &af.ResponseFormat{Name: "learnings", Schema: af.GenerateSchema[extraction]()},
	})
	if err != nil {
		// Best effort.
		slog.WarnContext(ctx, "learning extraction failed", "error", err)
		return nil
	}
	var ex extraction
	if err := json.Unmarshal([]byte(out.Text()), &ex); err != nil {
		slog.WarnContext(ctx, "learning extraction returned invalid JSON", "error", err)
		return nil
	}
	for _, in := range ex.Learnings {
		if in.Learning == "" {
			continue
		}
		if err := p.l.Save(ctx, in); err != nil {
			return err
		}
	}
	return nil
}

// PrintLearnings writes the insights relevant to query to w.
func PrintLearnings(ctx context.Context, w io.Writer, l *Learning, query string) error {
	found, err := l.Search(ctx, query)
	if err != nil {
		return err
	}
	title := color.New(color.FgCyan, color.Bold)
	title.Fprintf(w, "Learnings for %q (%d)\n", query, len(found))
	if len(found) == 0 {
		fmt.Fprintln(w, "  none yet")
		return nil
	}
	bullet := color.New(color.FgGreen)
	for _, in := range found {
		bullet.Fprintf(w, "  • %s\n", in.Title)
		fmt.Fprintf(w, "    %s\n", strings.ReplaceAll(in.Learning, "\n", "\n    "))
	}
	return nil
}
