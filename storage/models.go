package storage

import (
	"time"

	af "github.com/agentcookbook/gemini-agents/agentframework"
)

// SessionType tells which kind of component owns a session.
type SessionType string

const (
	SessionAgent    SessionType = "agent"
	SessionTeam     SessionType = "team"
	SessionWorkflow SessionType = "workflow"
)

// Run status values.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusError     = "error"
)

// Session is a row of agent_sessions.
type Session struct {
	ID          string         `gorm:"primaryKey" json:"session_id"`
	SessionType SessionType    `json:"session_type"`
	ComponentID string         `json:"component_id"`
	UserID      string         `json:"user_id,omitempty"`
	State       map[string]any `gorm:"column:session_state;serializer:json" json:"session_state,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (Session) TableName() string { return "agent_sessions" }

// Run is a row of agent_runs: one completed agent or team run.
type Run struct {
	ID          string        `gorm:"primaryKey" json:"run_id"`
	SessionID   string        `json:"session_id"`
	ComponentID string        `json:"component_id"`
	UserID      string        `json:"user_id,omitempty"`
	Input       string        `json:"input"`
	Content     string        `json:"content"`
	Messages    []af.Message  `gorm:"serializer:json" json:"messages,omitempty"`
	Metrics     af.RunMetrics `gorm:"serializer:json" json:"metrics"`
	Status      string        `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
}

func (Run) TableName() string { return "agent_runs" }

// Memory is a fact remembered about a user.
type Memory struct {
	ID        string    `gorm:"primaryKey" json:"memory_id"`
	UserID    string    `json:"user_id"`
	Memory    string    `json:"memory"`
	Topics    []string  `gorm:"serializer:json" json:"topics,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Memory) TableName() string { return "user_memories" }

// Content records a source inserted into a knowledge base.
type Content struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	Knowledge   string    `json:"knowledge"`
	Name        string    `json:"name"`
	ContentHash string    `json:"content_hash"`
	Source      string    `json:"source"`
	Status      string    `json:"status"`
	ChunkCount  int       `json:"chunk_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Content) TableName() string { return "knowledge_contents" }

// StepRecord is the persisted outcome of one workflow step.
type StepRecord struct {
	Name    string `json:"step_name"`
	Content string `json:"content,omitempty"`
	Success bool   `json:"success"`
	Stopped bool   `json:"stop,omitempty"`
	Error   string `json:"error,omitempty"`
}

// WorkflowRun is a row of workflow_runs.
type WorkflowRun struct {
	ID          string       `gorm:"primaryKey" json:"run_id"`
	WorkflowID  string       `json:"workflow_id"`
	SessionID   string       `json:"session_id"`
	Input       string       `json:"input"`
	Content     string       `json:"content"`
	StepOutputs []StepRecord `gorm:"serializer:json" json:"step_outputs,omitempty"`
	Status      string       `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (WorkflowRun) TableName() string { return "workflow_runs" }
