package cookbook

import (
	af "github.com/agentcookbook/gemini-agents/agentframework"
	"github.com/agentcookbook/gemini-agents/config"
	"github.com/agentcookbook/gemini-agents/gemini"
	"github.com/agentcookbook/gemini-agents/tools/websearch"
)

// ChatAgent is the basic flash chat assistant.
func ChatAgent(s *config.Settings) *af.Agent {
	return agent(Gemini(s, FlashModel), "chat-assistant", "Chat Assistant", af.WithMarkdown())
}

const financeInstructions = `You are a finance research agent. You find and analyze current financial news.

1. Search the web for the requested financial information
2. Analyze and compare findings
3. Present a clear, structured summary

- Always cite your sources
- Use tables for comparisons
- Include dates for all data points`

// FinanceAgent searches the web for financial news.
func FinanceAgent(s *config.Settings) *af.Agent {
	return agent(Gemini(s, FlashModel), "finance-agent", "Finance Agent",
		af.WithDescription("Finds and analyzes current financial news"),
		af.WithInstructions(financeInstructions),
		af.WithToolkits(websearch.New().Toolkit()),
		af.WithDatetimeContext(),
		af.WithMarkdown(),
	)
}

// MovieReview is the structured answer of [MovieCritic].
type MovieReview struct {
	Title   string   `json:"title" jsonschema:"description=Movie title,required"`
	Year    int      `json:"year" jsonschema:"description=Release year,required"`
	Rating  float64  `json:"rating" jsonschema:"description=Rating out of 10,minimum=0,maximum=10,required"`
	Genre   string   `json:"genre" jsonschema:"description=Primary genre,required"`
	Pros    []string `json:"pros" jsonschema:"description=What works well,required"`
	Cons    []string `json:"cons" jsonschema:"description=What could be better,required"`
	Verdict string   `json:"verdict" jsonschema:"description=One-sentence final verdict,required"`
}

// MovieCritic answers with a [MovieReview].
func MovieCritic(s *config.Settings) *af.Agent {
	return agent(Gemini(s, ProModel), "movie-critic", "Movie Critic",
		af.WithDescription("Reviews movies as structured JSON"),
		af.WithInstructions("You are a professional movie critic. Provide balanced, thoughtful reviews."),
		af.WithOutputSchema[MovieReview](),
	)
}

const newsInstructions = `You are a news analyst. Summarize the latest developments clearly and concisely.

- Lead with the most important story
- Include dates for all events
- Cite sources when possible
- Use bullet points for multiple items`

// NewsAgent uses Gemini's native Google Search.
func NewsAgent(s *config.Settings) *af.Agent {
	return agent(Gemini(s, FlashModel, gemini.WithSearch()), "news-agent", "News Agent",
		af.WithDescription("Summarizes the latest news with native search"),
		af.WithInstructions(newsInstructions),
		af.WithDatetimeContext(),
		af.WithMarkdown(),
	)
}

const factInstructions = `You are a fact-checking assistant. Answer with verifiable facts only.

- Ground every claim in a source
- Say so when sources disagree
- Keep answers short and precise`

// FactAgent answers with search grounding and citations.
func FactAgent(s *config.Settings) *af.Agent {
	return agent(Gemini(s, FlashModel, gemini.WithGrounding(0.7)), "fact-agent", "Fact Agent",
		af.WithDescription("Answers with grounded, cited facts"),
		af.WithInstructions(factInstructions),
		af.WithDatetimeContext(),
		af.WithMarkdown(),
	)
}

const urlInstructions = `You are a comparison expert. Analyze content from URLs and provide
clear, structured comparisons.

- Read all provided URLs thoroughly
- Use tables for side-by-side comparisons
- Highlight key differences and similarities
- Be specific, cite details from each source`

// URLContextAgent reads the pages linked in the prompt.
func URLContextAgent(s *config.Settings) *af.Agent {
	return agent(Gemini(s, ProModel, gemini.WithURLContext()), "url-context-agent", "URL Context Agent",
		af.WithDescription("Reads and compares web pages"),
		af.WithInstructions(urlInstructions),
		af.WithMarkdown(),
	)
}

// ThinkingAgent reasons with a thinking budget and shows its thoughts.
func ThinkingAgent(s *config.Settings) *af.Agent {
	return agent(Gemini(s, ProModel, gemini.WithThinking(1280, true)), "thinking-agent", "Thinking Agent",
		af.WithMarkdown(),
	)
}

const imageInstructions = `You are an image analysis expert. Describe what you see in detail
and provide relevant context.

- Describe the main subject first, then details
- Note any text visible in the image
- Provide historical or cultural context when relevant`

// ImageAnalyst describes images, with search for context.
func ImageAnalyst(s *config.Settings) *af.Agent {
	return agent(Gemini(s, FlashModel, gemini.WithSearch()), "image-analyst", "Image Analyst",
		af.WithDescription("Describes images and finds related news"),
		af.WithInstructions(imageInstructions),
		af.WithMarkdown(),
	)
}

// ImageGenerator creates and edits images. Image models take no system
// instructions, so guidance belongs in the prompt.
func ImageGenerator(s *config.Settings) *af.Agent {
	return agent(Gemini(s, ImageModel, gemini.WithResponseModalities("TEXT", "IMAGE")), "image-generator", "Image Generator")
}

const audioInstructions = `You are an audio analysis expert. Transcribe and summarize audio content clearly.

- Provide a complete transcription when asked
- Note speaker changes if multiple speakers
- Summarize key points after transcription`

// AudioAnalyst transcribes and summarizes audio.
func AudioAnalyst(s *config.Settings) *af.Agent {
	return agent(Gemini(s, FlashModel), "audio-analyst", "Audio Analyst",
		af.WithInstructions(audioInstructions),
		af.WithMarkdown(),
	)
}

// TTSAgent speaks its answer with the Kore voice.
func TTSAgent(s *config.Settings) *af.Agent {
	return agent(Gemini(s, TTSModel, gemini.WithResponseModalities("AUDIO"), gemini.WithVoice("Kore")), "tts-agent", "TTS Agent")
}

const videoInstructions = `You are a video analysis expert. Describe the key scenes and provide
a clear summary.

- Describe scenes chronologically
- Note any text, logos, or titles that appear
- Identify the overall theme or message
- Mention audio elements when relevant`

// VideoAnalyst describes videos from bytes or YouTube links.
func VideoAnalyst(s *config.Settings) *af.Agent {
	return agent(Gemini(s, FlashModel), "video-analyst", "Video Analyst",
		af.WithInstructions(videoInstructions),
		af.WithMarkdown(),
	)
}

const documentInstructions = `You are a document analysis expert. Read documents thoroughly
and provide clear summaries.

- Summarize the main points first
- Note any tables or structured data
- Highlight actionable information`

// DocumentReader reads PDFs natively.
func DocumentReader(s *config.Settings) *af.Agent {
	return agent(Gemini(s, FlashModel), "document-reader", "Document Reader",
		af.WithDescription("Reads and summarizes PDF documents"),
		af.WithInstructions(documentInstructions),
		af.WithMarkdown(),
	)
}

const dataInstructions = `You are a data analyst. Analyze datasets and provide clear insights
with tables and summaries.

- Start with an overview of the dataset (rows, columns, types)
- Use tables for comparisons and rankings
- Highlight interesting patterns or outliers
- Be specific with numbers`

// DataAnalyst analyzes CSV files.
func DataAnalyst(s *config.Settings) *af.Agent {
	return agent(Gemini(s, FlashModel), "data-analyst", "Data Analyst",
		af.WithInstructions(dataInstructions),
		af.WithMarkdown(),
	)
}

// TranscriptAnalyst answers against a cached transcript. cache is the name
// returned by [gemini.Client.CreateCache].
func TranscriptAnalyst(s *config.Settings, cache string) *af.Agent {
	return agent(Gemini(s, FlashModel, gemini.WithCachedContent(cache)), "transcript-analyst", "Transcript Analyst")
}
