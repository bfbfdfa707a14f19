// Command 21_agent_os serves the cookbook's agents, team and workflow over
// HTTP on port 7777.
//
//	go run ./samples/gemini/21_agent_os -config samples/gemini/21_agent_os/agentos.yaml
//	curl -X POST localhost:7777/agents/chat-assistant/runs -F message="Hi"
package main

import (
	"context"
	"flag"

	"github.com/agentcookbook/gemini-agents/agentos"
	"github.com/agentcookbook/gemini-agents/config"
	"github.com/agentcookbook/gemini-agents/samples/gemini/cookbook"
)

func main() {
	cfgPath := flag.String("config", "", "optional agentos YAML file")
	flag.Parse()

	s, err := cookbook.Setup()
	if err != nil {
		cookbook.Exit(err)
	}
	if err := run(context.Background(), s, *cfgPath); err != nil {
		cookbook.Exit(err)
	}
}

func run(ctx context.Context, s *config.Settings, cfgPath string) error {
	cfg, err := agentos.LoadConfig(cfgPath)
	if err != nil {
		return err
	}
	cfg.ID = "gemini-agent-os"
	if cfg.Name == "" {
		cfg.Name = "Gemini Agent OS"
	}
	if cfg.Port == agentos.DefaultPort {
		cfg.Port = s.AgentOSPort
	}
	cfg.Tracing.Enabled = true
	if s.OTLPEndpoint != "" {
		cfg.Tracing.Endpoint = s.OTLPEndpoint
	}

	db, err := cookbook.OpenDB(ctx, s)
	if err != nil {
		return err
	}
	defer db.Close()

	kb, err := cookbook.RecipeKnowledge(ctx, s, db)
	if err != nil {
		return err
	}
	tutor, err := cookbook.PersonalTutor(ctx, s, db)
	if err != nil {
		return err
	}

	server := agentos.New(
		agentos.WithConfig(cfg),
		agentos.WithDB(db),
		agentos.WithAgents(
			cookbook.ChatAgent(s),
			cookbook.FinanceAgent(s),
			cookbook.MovieCritic(s),
			cookbook.NewsAgent(s),
			cookbook.URLContextAgent(s),
			cookbook.ImageAnalyst(s),
			cookbook.DocumentReader(s),
			cookbook.RecipeAssistant(s, db, kb),
			tutor.Agent,
		),
		agentos.WithTeams(cookbook.ContentTeam(s, db)),
		agentos.WithWorkflows(cookbook.ResearchPipeline(s, db)),
	)
	return server.Serve(ctx)
}
