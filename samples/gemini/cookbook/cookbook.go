// Package cookbook builds the agents, teams and workflows of the Gemini
// cookbook programs. The programs under samples/gemini print their output,
// and 21_agent_os serves them all over HTTP.
package cookbook

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	af "github.com/agentcookbook/gemini-agents/agentframework"
	"github.com/agentcookbook/gemini-agents/config"
	"github.com/agentcookbook/gemini-agents/gemini"
	"github.com/agentcookbook/gemini-agents/observability"
	"github.com/agentcookbook/gemini-agents/storage"
	"github.com/agentcookbook/gemini-agents/storage/redisstore"
	"github.com/agentcookbook/gemini-agents/vectordb"
	"github.com/agentcookbook/gemini-agents/vectordb/milvus"
	"github.com/agentcookbook/gemini-agents/vectordb/sqlvec"
)

// Model ids used by the programs.
const (
	FlashModel = "gemini-3-flash-preview"
	ProModel   = "gemini-3.1-pro-preview"
	ImageModel = "gemini-3.1-flash-image-preview"
	TTSModel   = "gemini-2.5-flash-preview-tts"
)

// Sample media shared by several programs.
const (
	ImageURL   = "https://agno-public.s3.amazonaws.com/images/krakow_mariacki.jpg"
	AudioURL   = "https://agno-public.s3.amazonaws.com/demo/sample-audio.mp3"
	VideoURL   = "https://agno-public.s3.amazonaws.com/demo/sample_seaview.mp4"
	YouTubeURL = "https://www.youtube.com/watch?v=XinoY2LDdA0"
	PDFURL     = "https://agno-public.s3.amazonaws.com/recipes/ThaiRecipes.pdf"
	CSVURL     = "https://agno-public.s3.amazonaws.com/demo_data/IMDB-Movie-Data.csv"
)

// Setup loads the settings and installs the console logger. Programs call
// it first and exit through [Exit] on failure.
func Setup() (*config.Settings, error) {
	s, err := config.Load()
	if err != nil {
		observability.SetupLogging(os.Getenv("DEBUG") != "")
		return nil, err
	}
	observability.SetupLogging(s.Debug)
	return s, nil
}

// Exit reports err with its remedy and exits with status 1.
func Exit(err error) {
	config.Report(os.Stderr, err)
	os.Exit(1)
}

// Gemini returns a client for model. The flash model follows GEMINI_MODEL.
func Gemini(s *config.Settings, model string, opts ...gemini.Option) *gemini.Client {
	if model == FlashModel && s.Model != "" {
		model = s.Model
	}
	base := []gemini.Option{gemini.WithModel(model)}
	if s.BaseURL != "" {
		base = append(base, gemini.WithBaseURL(s.BaseURL))
	}
	return gemini.New(s.GoogleAPIKey, append(base, opts...)...)
}

// OpenDB opens the shared agent database (sqlite by default, postgres when
// DATABASE_URL says so).
func OpenDB(ctx context.Context, s *config.Settings) (*storage.DB, error) {
	return storage.Open(ctx, s.DatabaseURL)
}

// Embedder returns the Gemini embedder, cached in redis when REDIS_URL is
// set.
func Embedder(ctx context.Context, s *config.Settings) vectordb.Embedder {
	var emb vectordb.Embedder = Gemini(s, FlashModel).NewEmbedder()
	if s.RedisURL == "" {
		return emb
	}
	rdb, err := redisstore.Connect(ctx, s.RedisURL)
	if err != nil {
		slog.WarnContext(ctx, "embedding cache disabled", "error", err)
		return emb
	}
	return redisstore.NewCachedEmbedder(emb, rdb, 24*time.Hour)
}

// VectorStore returns the collection in milvus when MILVUS_ADDRESS is set,
// and in the agent database otherwise.
func VectorStore(ctx context.Context, s *config.Settings, db *storage.DB, collection string, dimensions int) (vectordb.VectorDB, error) {
	if s.MilvusAddress == "" {
		return sqlvec.New(db, collection), nil
	}
	c, err := milvus.Connect(ctx, s.MilvusAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrMissingDependency, err)
	}
	return milvus.New(c, collection, dimensions), nil
}

// agent builds an agent with a stable id. Tool calls are counted in the
// Prometheus registry.
func agent(client af.ChatClient, id, name string, opts ...af.AgentOption) *af.Agent {
	base := []af.AgentOption{
		af.WithID(id),
		af.WithName(name),
		af.WithFunctionMiddleware(observability.ToolMetricsMiddleware()),
	}
	return af.NewAgent(client, append(base, opts...)...)
}
