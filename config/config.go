// Package config loads the settings shared by the cookbook programs and maps
// failures to the remedies documented for them.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"

	af "github.com/agentcookbook/gemini-agents/agentframework"
)

// Settings is read from the environment, after an optional .env file.
type Settings struct {
	GoogleAPIKey  string `env:"GOOGLE_API_KEY"`
	BaseURL       string `env:"GEMINI_BASE_URL"`
	Model         string `env:"GEMINI_MODEL" envDefault:"gemini-3-flash-preview"`
	WorkspaceDir  string `env:"WORKSPACE_DIR" envDefault:"workspace"`
	DatabaseURL   string `env:"DATABASE_URL"`
	RedisURL      string `env:"REDIS_URL"`
	MilvusAddress string `env:"MILVUS_ADDRESS"`
	OTLPEndpoint  string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	AgentOSPort   int    `env:"AGENT_OS_PORT" envDefault:"7777"`
	Debug         bool   `env:"DEBUG"`
}

// ErrMissingDependency reports an optional backend or asset a program needs
// that is not installed or reachable.
var ErrMissingDependency = errors.New("missing dependency")

// Load reads .env (if present) and parses [Settings] from the process
// environment. A missing GOOGLE_API_KEY yields an error wrapping
// [af.ErrMissingCredential].
func Load() (*Settings, error) {
	_ = godotenv.Load()
	return parse(env.Options{})
}

// LoadFrom parses settings from the given variables only.
func LoadFrom(vars map[string]string) (*Settings, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Settings, error) {
	var s Settings
	if err := env.ParseWithOptions(&s, opts); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	if s.GoogleAPIKey == "" {
		return nil, fmt.Errorf("%w: GOOGLE_API_KEY is not set", af.ErrMissingCredential)
	}
	if s.DatabaseURL == "" {
		s.DatabaseURL = filepath.Join(s.WorkspaceDir, "gemini_agents.db")
	}
	return &s, nil
}

// Path returns name inside the workspace directory, creating the directory.
func (s *Settings) Path(name string) (string, error) {
	if err := os.MkdirAll(s.WorkspaceDir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(s.WorkspaceDir, name), nil
}
