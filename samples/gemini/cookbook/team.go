package cookbook

import (
	af "github.com/agentcookbook/gemini-agents/agentframework"
	"github.com/agentcookbook/gemini-agents/config"
	"github.com/agentcookbook/gemini-agents/gemini"
	"github.com/agentcookbook/gemini-agents/storage"
	"github.com/agentcookbook/gemini-agents/team"
	"github.com/agentcookbook/gemini-agents/tools/websearch"
)

const writerInstructions = `You are a professional content writer. Write engaging, well-structured blog posts.

## Workflow
1. Research the topic using web search
2. Write a compelling draft with clear structure
3. Include an introduction, body sections, and conclusion

## Rules
- Use clear, accessible language
- Include relevant facts and statistics
- Structure with headers and bullet points where appropriate
- No emojis`

const editorInstructions = `You are a senior editor. Review content for quality and suggest improvements.

## Review Checklist
- Clarity: Is the message clear and easy to follow?
- Structure: Is the content well-organized?
- Grammar: Are there any grammatical errors?
- Tone: Is the tone consistent and appropriate?
- Engagement: Will readers find this interesting?

## Rules
- Be specific about what needs improvement
- Suggest concrete rewrites, not vague feedback
- Acknowledge what works well
- No emojis`

const factCheckerInstructions = `You are a fact-checker. Verify claims made in the content.

## Workflow
1. Identify all factual claims in the content
2. Search for evidence supporting or contradicting each claim
3. Flag any unverified or incorrect claims
4. Provide corrections with sources

## Rules
- Check every statistical claim and date
- Provide sources for corrections
- Rate confidence: Verified / Unverified / Incorrect
- No emojis`

const contentTeamInstructions = `You lead a content creation team with a Writer, Editor, and Fact-Checker.

## Process
1. Send the topic to the Writer to create a draft
2. Send the draft to the Editor for review
3. If the Editor finds issues, send back to the Writer to revise
4. Send the final draft to the Fact-Checker to verify claims
5. Synthesize into a final, polished blog post

## Output Format
Provide the final blog post followed by:
- **Editorial Notes**: Key improvements made during editing
- **Fact-Check Summary**: Verification status of key claims`

// ContentTeam is led by the pro model and delegates to a writer, an editor
// and a fact-checker. Runs are stored as team sessions when db is not nil.
func ContentTeam(s *config.Settings, db *storage.DB) *team.Team {
	writer := agent(Gemini(s, FlashModel), "writer", "Writer",
		af.WithRole("Write engaging blog post drafts"),
		af.WithInstructions(writerInstructions),
		af.WithToolkits(websearch.New().Toolkit()),
		af.WithDatetimeContext(),
	)
	editor := agent(Gemini(s, FlashModel), "editor", "Editor",
		af.WithRole("Review and improve content for clarity and quality"),
		af.WithInstructions(editorInstructions),
		af.WithDatetimeContext(),
	)
	checker := agent(Gemini(s, FlashModel, gemini.WithSearch()), "fact-checker", "Fact Checker",
		af.WithRole("Verify factual claims using web search"),
		af.WithInstructions(factCheckerInstructions),
		af.WithDatetimeContext(),
	)

	opts := []team.Option{
		team.WithID("content-team"),
		team.WithName("Content Team"),
		team.WithDescription("Writes, edits and fact-checks blog posts"),
		team.WithMembers(writer, editor, checker),
		team.WithInstructions(contentTeamInstructions),
		team.WithShowMemberResponses(),
		team.WithDatetimeContext(),
		team.WithMarkdown(),
	}
	if db != nil {
		opts = append(opts, team.WithContextProvider(storage.History(db, 0, storage.WithSessionType(storage.SessionTeam))))
	}
	return team.New(Gemini(s, ProModel), opts...)
}
