// Package console prints agent, team and workflow runs to a terminal.
package console

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	af "github.com/agentcookbook/gemini-agents/agentframework"
)

var (
	heading   = color.New(color.FgCyan, color.Bold)
	dim       = color.New(color.Faint)
	toolColor = color.New(color.FgYellow)
	member    = color.New(color.FgMagenta, color.Bold)
	errColor  = color.New(color.FgRed)
)

type printConfig struct {
	stream    bool
	reasoning bool
	toolCalls bool
	members   bool
	citations bool
	media     []af.Content
	runOpts   []af.RunOption
}

// Option configures [PrintResponse].
type Option func(*printConfig)

// WithStream prints the response as it is produced.
func WithStream() Option {
	return func(c *printConfig) { c.stream = true }
}

// WithReasoning prints the model's thoughts.
func WithReasoning() Option {
	return func(c *printConfig) { c.reasoning = true }
}

// WithToolCalls prints the tools the model called.
func WithToolCalls() Option {
	return func(c *printConfig) { c.toolCalls = true }
}

// WithMemberResponses prints the answers of delegated team members and
// workflow steps.
func WithMemberResponses() Option {
	return func(c *printConfig) { c.members = true }
}

// WithCitations prints grounding sources.
func WithCitations() Option {
	return func(c *printConfig) { c.citations = true }
}

// WithMedia attaches images, audio, video or files to the prompt.
func WithMedia(media ...af.Content) Option {
	return func(c *printConfig) { c.media = append(c.media, media...) }
}

// WithRunOptions forwards options (session, user) to the run.
func WithRunOptions(opts ...af.RunOption) Option {
	return func(c *printConfig) { c.runOpts = append(c.runOpts, opts...) }
}

// PrintResponse sends prompt to runner and prints the exchange to w.
func PrintResponse(ctx context.Context, w io.Writer, runner af.Runner, prompt string, opts ...Option) (*af.AgentResponse, error) {
	cfg := &printConfig{}
	for _, o := range opts {
		o(cfg)
	}
	msg := af.NewUserMessage(prompt, cfg.media...)

	section(w, "Message")
	fmt.Fprintln(w, prompt)
	for _, m := range cfg.media {
		fmt.Fprintln(w, dim.Sprintf("[attached %s]", describe(m)))
	}
	fmt.Fprintln(w)

	start := time.Now()
	var (
		resp *af.AgentResponse
		err  error
	)
	if cfg.stream {
		resp, err = printStream(ctx, w, runner, msg, cfg, start)
	} else {
		resp, err = runner.Run(ctx, []af.Message{msg}, cfg.runOpts...)
		if err == nil {
			printResponse(w, resp, cfg, time.Since(start))
		}
	}
	if err != nil {
		fmt.Fprintln(w, errColor.Sprintf("Error: %v", err))
		return nil, err
	}
	if cfg.citations {
		printCitations(w, resp)
	}
	return resp, nil
}

func printResponse(w io.Writer, resp *af.AgentResponse, cfg *printConfig, elapsed time.Duration) {
	if cfg.reasoning {
		if r := resp.Reasoning(); r != "" {
			section(w, "Reasoning")
			fmt.Fprintln(w, dim.Sprint(strings.TrimSpace(r)))
			fmt.Fprintln(w)
		}
	}
	if cfg.toolCalls {
		if calls := resp.ToolCalls(); len(calls) > 0 {
			section(w, "Tool Calls")
			for _, c := range calls {
				printToolCall(w, c)
			}
			fmt.Fprintln(w)
		}
	}
	if cfg.members {
		for _, m := range resp.MemberResponses {
			printMember(w, m)
		}
	}
	section(w, fmt.Sprintf("Response (%.1fs)", elapsed.Seconds()))
	fmt.Fprintln(w, resp.Text())
	for _, d := range resp.Images() {
		fmt.Fprintln(w, dim.Sprintf("[image %s, %d bytes]", d.MediaType, len(d.Data)))
	}
	for _, d := range resp.Audio() {
		fmt.Fprintln(w, dim.Sprintf("[audio %s, %d bytes]", d.MediaType, len(d.Data)))
	}
	fmt.Fprintln(w)
}

func printStream(ctx context.Context, w io.Writer, runner af.Runner, msg af.Message, cfg *printConfig, start time.Time) (*af.AgentResponse, error) {
	stream, err := runner.RunStream(ctx, []af.Message{msg}, cfg.runOpts...)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	inText, inThought := false, false
	for u, err := range stream.Updates(ctx) {
		if err != nil {
			return nil, err
		}
		switch u.Event {
		case af.EventMemberResponse:
			if cfg.members && u.Member != nil {
				fmt.Fprintln(w)
				printMember(w, u.Member)
				inText, inThought = false, false
			}
			continue
		case af.EventToolResult:
			continue
		}
		for _, c := range u.Contents {
			switch v := c.(type) {
			case *af.TextReasoningContent:
				if !cfg.reasoning || v.Text == "" {
					continue
				}
				if !inThought {
					section(w, "Reasoning")
					inThought = true
				}
				fmt.Fprint(w, dim.Sprint(v.Text))
			case *af.FunctionCallContent:
				if !cfg.toolCalls {
					continue
				}
				if inText || inThought {
					fmt.Fprintln(w)
				}
				printToolCall(w, v)
				inText, inThought = false, false
			case *af.TextContent:
				if !inText {
					if inThought {
						fmt.Fprintln(w)
						fmt.Fprintln(w)
						inThought = false
					}
					section(w, "Response")
					inText = true
				}
				fmt.Fprint(w, v.Text)
			}
		}
	}
	resp, err := stream.FinalResponse(ctx)
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, dim.Sprintf("(%.1fs)", time.Since(start).Seconds()))
	fmt.Fprintln(w)
	return resp, nil
}

func printToolCall(w io.Writer, c *af.FunctionCallContent) {
	fmt.Fprintln(w, toolColor.Sprintf("• %s(%s)", c.Name, strings.TrimSpace(c.Arguments)))
}

func printMember(w io.Writer, resp *af.AgentResponse) {
	name := resp.AgentName
	if name == "" {
		name = resp.AgentID
	}
	fmt.Fprintln(w, member.Sprintf("┃ %s", name))
	fmt.Fprintln(w, strings.TrimSpace(resp.Text()))
	fmt.Fprintln(w)
}

func printCitations(w io.Writer, resp *af.AgentResponse) {
	cites := resp.Citations()
	if len(cites) == 0 {
		return
	}
	section(w, "Citations")
	for i, c := range cites {
		label := c.Title
		if label == "" {
			label = c.URI
		}
		switch {
		case c.URI != "" && label != c.URI:
			fmt.Fprintf(w, "%d. %s - %s\n", i+1, label, c.URI)
		case label != "":
			fmt.Fprintf(w, "%d. %s\n", i+1, label)
		default:
			fmt.Fprintf(w, "%d. %s\n", i+1, truncate(c.Text, 120))
		}
	}
	fmt.Fprintln(w)
}

// PrintMetrics prints token usage and timing of a run.
func PrintMetrics(w io.Writer, resp *af.AgentResponse) {
	if resp == nil {
		return
	}
	u := resp.Usage
	section(w, "Metrics")
	fmt.Fprintf(w, "input tokens:     %d\n", u.InputTokens)
	fmt.Fprintf(w, "output tokens:    %d\n", u.OutputTokens)
	fmt.Fprintf(w, "total tokens:     %d\n", u.TotalTokens)
	if u.CachedTokens > 0 {
		fmt.Fprintf(w, "cached tokens:    %d\n", u.CachedTokens)
	}
	if u.ReasoningTokens > 0 {
		fmt.Fprintf(w, "reasoning tokens: %d\n", u.ReasoningTokens)
	}
	if d := resp.Metrics.Duration; d > 0 {
		fmt.Fprintf(w, "duration:         %s\n", d.Round(time.Millisecond))
	}
	fmt.Fprintln(w)
}

func section(w io.Writer, title string) {
	fmt.Fprintln(w, heading.Sprintf("┃ %s", title))
}

func describe(c af.Content) string {
	switch v := c.(type) {
	case *af.DataContent:
		return fmt.Sprintf("%s, %d bytes", v.MediaType, len(v.Data))
	case *af.URIContent:
		return v.URI
	case *af.HostedFileContent:
		return v.FileID
	default:
		return string(c.Type())
	}
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
