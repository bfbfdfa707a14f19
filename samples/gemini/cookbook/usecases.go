package cookbook

import (
	af "github.com/agentcookbook/gemini-agents/agentframework"
	"github.com/agentcookbook/gemini-agents/config"
	"github.com/agentcookbook/gemini-agents/gemini"
	"github.com/agentcookbook/gemini-agents/team"
	"github.com/agentcookbook/gemini-agents/tools/websearch"
)

// ProductionTeam breaks a film clip down against its script.
func ProductionTeam(s *config.Settings) *team.Team {
	videoAnalyst := agent(Gemini(s, FlashModel), "film-video-analyst", "Video Analyst",
		af.WithRole("Analyze video clips for visual content, pacing, and mood"),
		af.WithInstructions(`You are a film analysis expert. Watch video clips and provide detailed breakdowns.

## Analysis Areas
- Shot types (wide, close-up, tracking, etc.)
- Scene transitions and pacing
- Lighting, color grading, and visual mood
- Character actions and expressions
- Any text, titles, or graphics on screen

## Rules
- Use professional film terminology
- Describe chronologically
- Note timestamps for key moments
- No emojis`),
		af.WithMarkdown(),
	)
	scriptReader := agent(Gemini(s, FlashModel), "script-reader", "Script Reader",
		af.WithRole("Read film scripts and extract relevant dialogue and directions"),
		af.WithInstructions(`You are a script supervisor. Read scripts and extract relevant information.

## Extract
- Scene headings (INT/EXT, location, time of day)
- Character dialogue
- Stage directions and action lines
- Camera directions if specified

## Rules
- Maintain script formatting conventions
- Note page numbers for reference
- Flag any ambiguous directions
- No emojis`),
		af.WithMarkdown(),
	)
	continuityEditor := agent(Gemini(s, FlashModel), "continuity-editor", "Continuity Editor",
		af.WithRole("Check consistency between script and footage"),
		af.WithInstructions(`You are a continuity editor. Compare the script to the footage and flag issues.

## Check For
- Does the footage match the script's described action?
- Are dialogue lines delivered as written?
- Are props, costumes, and set dressing consistent?
- Does the lighting match the script's time-of-day?

## Rules
- Be specific about discrepancies
- Rate severity: Minor / Notable / Critical
- Suggest solutions for any issues found
- No emojis`),
		af.WithMarkdown(),
	)
	return team.New(Gemini(s, ProModel),
		team.WithID("production-team"),
		team.WithName("Production Team"),
		team.WithMembers(videoAnalyst, scriptReader, continuityEditor),
		team.WithInstructions(`You lead a film production team with a Video Analyst, Script Reader,
and Continuity Editor.

## Process
1. Send the video clip to the Video Analyst for visual breakdown
2. Send the script PDF to the Script Reader for dialogue and direction extraction
3. Send both analyses to the Continuity Editor for consistency check
4. Synthesize into a final scene breakdown

## Output Format
Provide a scene breakdown with:
- **Visual Summary**: Key shots and visual elements
- **Script Notes**: Relevant dialogue and directions
- **Continuity Report**: Any discrepancies found
- **Production Notes**: Recommendations for the edit`),
		team.WithShowMemberResponses(),
		team.WithMarkdown(),
	)
}

// GamePitch is the structured pitch written by [PitchWriter].
type GamePitch struct {
	Title               string   `json:"title" jsonschema:"description=Game title,required"`
	Tagline             string   `json:"tagline" jsonschema:"description=One-line hook (max 15 words),required"`
	Genre               string   `json:"genre" jsonschema:"description=Primary genre such as action RPG or puzzle platformer,required"`
	Platform            []string `json:"platform" jsonschema:"description=Target platforms,required"`
	TargetAudience      string   `json:"target_audience" jsonschema:"description=Target demographic,required"`
	CoreMechanic        string   `json:"core_mechanic" jsonschema:"description=The one thing that makes the game fun,required"`
	Setting             string   `json:"setting" jsonschema:"description=World and setting description (2-3 sentences),required"`
	UniqueSellingPoints []string `json:"unique_selling_points" jsonschema:"description=3-5 unique selling points,required"`
	ComparableTitles    []string `json:"comparable_titles" jsonschema:"description=2-3 comparable games,required"`
	Monetization        string   `json:"monetization" jsonschema:"description=Monetization strategy,required"`
	ElevatorPitch       string   `json:"elevator_pitch" jsonschema:"description=Full elevator pitch (one paragraph),required"`
}

// ConceptArtist draws concept art. It runs on the image model, the only
// one that returns image parts.
func ConceptArtist(s *config.Settings) *af.Agent {
	return agent(Gemini(s, ImageModel, gemini.WithResponseModalities("TEXT", "IMAGE")), "concept-artist", "Concept Artist")
}

// PitchWriter answers with a [GamePitch].
func PitchWriter(s *config.Settings) *af.Agent {
	return agent(Gemini(s, ProModel), "pitch-writer", "Pitch Writer",
		af.WithRole("Write structured game concept pitches"),
		af.WithInstructions(`You are a game design consultant. Create compelling, structured game pitches.

## Rules
- Be specific about mechanics, not vague
- Comparable titles should be recent (last 3 years)
- Monetization must be realistic for the genre
- The tagline should make someone want to hear more
- No emojis`),
		af.WithOutputSchema[GamePitch](),
		af.WithDatetimeContext(),
	)
}

// ReviewBoard reviews a pitch for market viability and creative quality.
func ReviewBoard(s *config.Settings) *team.Team {
	marketAnalyst := agent(Gemini(s, FlashModel, gemini.WithSearch()), "market-analyst", "Market Analyst",
		af.WithRole("Evaluate market viability and competitive landscape"),
		af.WithInstructions(`You analyze game market trends. Evaluate pitches for market viability.

## Evaluate
- Is there market demand for this genre?
- How crowded is the competitive space?
- Is the monetization realistic?
- What's the risk/reward profile?

## Rules
- Use recent market data
- Be honest about risks
- Suggest specific improvements
- No emojis`),
		af.WithDatetimeContext(),
	)
	creativeDirector := agent(Gemini(s, FlashModel), "creative-director", "Creative Director",
		af.WithRole("Evaluate creative vision and player experience"),
		af.WithInstructions(`You evaluate game concepts for creative quality and player appeal.

## Evaluate
- Is the core mechanic fun and original?
- Does the setting support the gameplay?
- Will the target audience connect with this?
- What's the "wow factor"?

## Rules
- Focus on player experience
- Suggest improvements, not just criticism
- Consider accessibility
- No emojis`),
	)
	return team.New(Gemini(s, ProModel),
		team.WithID("review-board"),
		team.WithName("Review Board"),
		team.WithMembers(marketAnalyst, creativeDirector),
		team.WithInstructions(`You chair a game pitch review board with a Market Analyst and Creative Director.

## Process
1. Send the pitch to the Market Analyst for viability assessment
2. Send the pitch to the Creative Director for creative evaluation
3. Synthesize into a final review with:
   - **Market Assessment**: Viability and competitive analysis
   - **Creative Review**: Strengths and areas for improvement
   - **Final Verdict**: Go / Revise / Pass with reasoning`),
		team.WithShowMemberResponses(),
		team.WithMarkdown(),
	)
}

// TrackBrief is the structured answer of [MusicAnalyst].
type TrackBrief struct {
	TrackName         string   `json:"track_name" jsonschema:"description=Name of the track,required"`
	Artist            string   `json:"artist" jsonschema:"description=Artist or band name,required"`
	Genre             string   `json:"genre" jsonschema:"description=Primary genre,required"`
	Mood              string   `json:"mood" jsonschema:"description=Overall mood such as energetic or melancholic,required"`
	TempoEstimate     string   `json:"tempo_estimate" jsonschema:"description=Estimated tempo,enum=slow|mid|fast,required"`
	VisualStyle       string   `json:"visual_style" jsonschema:"description=Visual style of the artwork,required"`
	TargetAudience    string   `json:"target_audience" jsonschema:"description=Suggested target audience,required"`
	MarketingAngles   []string `json:"marketing_angles" jsonschema:"description=3-5 marketing angles,required"`
	ComparableArtists []string `json:"comparable_artists" jsonschema:"description=2-3 comparable artists,required"`
	Summary           string   `json:"summary" jsonschema:"description=One-paragraph executive summary,required"`
}

const musicInstructions = `You are a music industry analyst. You analyze tracks, artwork, and market
context to produce comprehensive asset briefs for A&R and marketing teams.

## Workflow
1. If audio is provided, analyze the track: genre, mood, tempo, production style
2. If an image is provided, analyze the artwork: visual style, themes, color palette
3. Search the web for the artist and current market context
4. Produce a structured brief combining all insights

## Rules
- Be specific about genre (not just "pop", say "synth-pop" or "indie pop")
- Name comparable artists that are currently relevant
- Marketing angles should be actionable
- No emojis`

// MusicAnalyst answers with a [TrackBrief].
func MusicAnalyst(s *config.Settings) *af.Agent {
	return agent(Gemini(s, FlashModel), "music-analyst", "Music Analyst",
		af.WithInstructions(musicInstructions),
		af.WithToolkits(websearch.New().Toolkit()),
		af.WithOutputSchema[TrackBrief](),
		af.WithDatetimeContext(),
	)
}
