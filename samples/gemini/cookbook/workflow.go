package cookbook

import (
	"context"
	"strings"

	af "github.com/agentcookbook/gemini-agents/agentframework"
	"github.com/agentcookbook/gemini-agents/config"
	"github.com/agentcookbook/gemini-agents/gemini"
	"github.com/agentcookbook/gemini-agents/storage"
	"github.com/agentcookbook/gemini-agents/tools/websearch"
	"github.com/agentcookbook/gemini-agents/workflow"
)

// ResearchPipelineID is the id of [ResearchPipeline].
const ResearchPipelineID = "gemini-research-pipeline"

// MinAnalysisLength is the shortest analysis [QualityGate] lets through.
const MinAnalysisLength = 200

// QualityGate stops the workflow when the previous step produced less than
// [MinAnalysisLength] characters.
func QualityGate(_ context.Context, in *workflow.StepInput) (*workflow.StepOutput, error) {
	if len(in.PreviousStepContent) < MinAnalysisLength {
		return &workflow.StepOutput{
			Content: "Quality gate failed: analysis too short. Stopping pipeline.",
			Stop:    true,
			Success: false,
		}, nil
	}
	return &workflow.StepOutput{Content: in.PreviousStepContent, Success: true}, nil
}

var factIndicators = []string{"study", "research", "percent", "%", "million", "billion", "according"}

// NeedsFactCheck reports whether the previous step makes factual claims
// worth checking.
func NeedsFactCheck(in *workflow.StepInput) bool {
	content := strings.ToLower(in.PreviousStepContent)
	for _, ind := range factIndicators {
		if strings.Contains(content, ind) {
			return true
		}
	}
	return false
}

// ResearchPipeline runs two researchers in parallel, then analysis, a
// quality gate, the report and a conditional fact check. Runs are saved to
// db when it is not nil.
func ResearchPipeline(s *config.Settings, db *storage.DB) *workflow.Workflow {
	webResearcher := agent(Gemini(s, FlashModel, gemini.WithSearch()), "web-researcher", "Web Researcher",
		af.WithInstructions(`You are a web researcher. Search for the latest information on the given topic.

## Rules
- Find recent, credible sources
- Include key facts, statistics, and expert opinions
- Cite your sources
- No emojis`),
		af.WithDatetimeContext(),
	)
	deepResearcher := agent(Gemini(s, FlashModel), "deep-researcher", "Deep Researcher",
		af.WithToolkits(websearch.New().Toolkit()),
		af.WithInstructions(`You are a deep researcher. Search extensively for background context,
historical data, and expert analysis on the given topic.

## Rules
- Go beyond surface-level information
- Find contrasting viewpoints
- Include historical context and trends
- No emojis`),
		af.WithDatetimeContext(),
	)
	analyst := agent(Gemini(s, ProModel), "analyst", "Analyst",
		af.WithInstructions(`You are a senior analyst. Synthesize research from multiple sources
into a clear, structured analysis.

## Rules
- Identify key themes and patterns across sources
- Highlight areas of agreement and disagreement
- Draw evidence-based conclusions
- Structure with clear sections and headers
- No emojis`),
	)
	reportWriter := agent(Gemini(s, ProModel), "report-writer", "Report Writer",
		af.WithInstructions(`You are a report writer. Transform analysis into a polished,
publication-ready report.

## Rules
- Write a compelling introduction that hooks the reader
- Use clear, accessible language
- Include an executive summary at the top
- End with key takeaways and future outlook
- No emojis`),
	)
	factChecker := agent(Gemini(s, FlashModel, gemini.WithSearch()), "report-fact-checker", "Fact Checker",
		af.WithInstructions(`You are a fact-checker. Verify the factual claims in the report.

## Rules
- Check every statistic, date, and named claim
- Search for primary sources
- Flag anything unverified as [UNVERIFIED]
- Provide the corrected report with a verification summary at the end
- No emojis`),
	)

	opts := []workflow.Option{
		workflow.WithID(ResearchPipelineID),
		workflow.WithName("Research Pipeline"),
		workflow.WithDescription("Research-to-publication pipeline: parallel research, analysis, quality gate, writing, and conditional fact-checking."),
		workflow.WithSteps(
			workflow.Parallel("Research",
				workflow.NewStep("web_research", webResearcher),
				workflow.NewStep("deep_research", deepResearcher),
			),
			workflow.NewStep("analysis", analyst),
			workflow.NewExecutorStep("quality_gate", QualityGate),
			workflow.NewStep("report", reportWriter),
			workflow.Condition("fact_check_gate", NeedsFactCheck,
				workflow.NewStep("fact_check", factChecker),
			),
		),
	}
	if db != nil {
		opts = append(opts, workflow.WithDB(db))
	}
	return workflow.New(opts...)
}
