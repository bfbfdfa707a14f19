package cookbook

import (
	"context"

	af "github.com/agentcookbook/gemini-agents/agentframework"
	"github.com/agentcookbook/gemini-agents/config"
	"github.com/agentcookbook/gemini-agents/knowledge"
	"github.com/agentcookbook/gemini-agents/memory"
	"github.com/agentcookbook/gemini-agents/storage"
	"github.com/agentcookbook/gemini-agents/tools/reasoning"
	"github.com/agentcookbook/gemini-agents/vectordb"
)

// ThaiRecipes is the text loaded into the recipe knowledge base.
const ThaiRecipes = `## Thai Recipe Collection

### Tom Kha Gai (Chicken Coconut Soup)
Ingredients: chicken breast, coconut milk, galangal, lemongrass, kaffir lime leaves,
fish sauce, lime juice, mushrooms, chili. Creamy and aromatic, balances sour and savory.

### Green Curry (Gaeng Keow Wan)
Ingredients: green curry paste, coconut milk, chicken or tofu, Thai basil, bamboo shoots,
eggplant, fish sauce, palm sugar. Rich and fragrant with a moderate heat level.

### Pad Thai
Ingredients: rice noodles, shrimp or chicken, eggs, bean sprouts, peanuts, lime,
tamarind paste, fish sauce, sugar. The classic Thai stir-fried noodle dish.

### Som Tum (Green Papaya Salad)
Ingredients: green papaya, cherry tomatoes, green beans, peanuts, dried shrimp,
garlic, chili, lime juice, fish sauce, palm sugar. Refreshing and spicy.

### Massaman Curry
Ingredients: massaman curry paste, coconut milk, beef or chicken, potatoes, onions,
peanuts, tamarind, cinnamon, cardamom. A mild, rich curry with Indian influences.

### Mango Sticky Rice (Khao Niew Mamuang)
Ingredients: glutinous rice, ripe mango, coconut milk, sugar, salt.
A beloved Thai dessert, sweet and creamy.
`

// newKnowledge opens a hybrid-search knowledge base over collection.
func newKnowledge(ctx context.Context, s *config.Settings, db *storage.DB, name, collection string) (*knowledge.Knowledge, error) {
	emb := Embedder(ctx, s)
	vdb, err := VectorStore(ctx, s, db, collection, emb.Dimensions())
	if err != nil {
		return nil, err
	}
	return knowledge.New(name, vdb, emb,
		knowledge.WithContentsDB(db.Contents()),
		knowledge.WithSearchType(vectordb.SearchHybrid),
	), nil
}

// RecipeKnowledge opens the "thai-recipes" knowledge base.
func RecipeKnowledge(ctx context.Context, s *config.Settings, db *storage.DB) (*knowledge.Knowledge, error) {
	return newKnowledge(ctx, s, db, "Recipe Knowledge", "thai-recipes")
}

const recipeInstructions = `You are a recipe assistant with access to a Thai cookbook.

## Workflow
1. Search your knowledge base for relevant recipes
2. Answer the user's question based on what you find
3. Suggest variations or substitutions when appropriate

## Rules
- Always search knowledge before answering
- Mention specific recipe names from the cookbook
- Suggest ingredient substitutions for dietary restrictions`

// RecipeAssistant searches kb before answering and replays the last three
// runs of the session.
func RecipeAssistant(s *config.Settings, db *storage.DB, kb *knowledge.Knowledge) *af.Agent {
	return agent(Gemini(s, FlashModel), "recipe-assistant", "Recipe Assistant",
		af.WithDescription("Answers questions from a Thai cookbook"),
		af.WithInstructions(recipeInstructions),
		af.WithContextProvider(kb.Provider(), storage.History(db, 3)),
		af.WithDatetimeContext(),
		af.WithMarkdown(),
	)
}

const tutorInstructions = `You are a personal language tutor that adapts to each student.

## Workflow
1. Check your learnings and memory for this user's preferences and level
2. Tailor your response to their skill level and learning style
3. Save any new insights about the student for future sessions

## Rules
- Adapt difficulty to the student's level
- Follow the student's preferred learning style
- Track progress and build on previous lessons
- Provide corrections gently with explanations`

// Tutor bundles the tutor agent with its learning store so programs can
// print what it learned.
type Tutor struct {
	Agent    *af.Agent
	Learning *memory.Learning
}

// PersonalTutor builds a tutor with a think tool, static teaching
// materials, agentic learnings, user memories and session history.
func PersonalTutor(ctx context.Context, s *config.Settings, db *storage.DB) (*Tutor, error) {
	docs, err := newKnowledge(ctx, s, db, "Tutor Knowledge", "tutor-materials")
	if err != nil {
		return nil, err
	}
	learned, err := newKnowledge(ctx, s, db, "Tutor Learnings", "tutor-learnings")
	if err != nil {
		return nil, err
	}
	client := Gemini(s, FlashModel)
	learning := memory.NewLearning(learned,
		memory.WithMode(memory.LearningAgentic),
		memory.WithExtractor(client),
	)
	a := agent(client, "personal-tutor", "Personal Tutor",
		af.WithDescription("A language tutor that adapts to each student"),
		af.WithInstructions(tutorInstructions),
		af.WithToolkits(reasoning.New().Toolkit()),
		af.WithContextProvider(
			docs.Provider(),
			learning.Provider(),
			memory.NewManager(db.Memories()).Provider(),
			storage.History(db, 3),
		),
		af.WithDatetimeContext(),
		af.WithMarkdown(),
	)
	return &Tutor{Agent: a, Learning: learning}, nil
}
