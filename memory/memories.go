package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	af "github.com/agentcookbook/gemini-agents/agentframework"
	"github.com/agentcookbook/gemini-agents/storage"
)

// ErrNoUser is returned by memory tools when the run has no user ID.
var ErrNoUser = errors.New("memory: run has no user id")

// Manager manages the memories of the current run's user.
type Manager struct {
	repo *storage.MemoryRepository
}

// NewManager creates a Manager backed by repo.
func NewManager(repo *storage.MemoryRepository) *Manager {
	return &Manager{repo: repo}
}

// Memories returns the memories of userID.
func (m *Manager) Memories(ctx context.Context, userID string) ([]storage.Memory, error) {
	return m.repo.List(ctx, userID)
}

type addArgs struct {
	Memory string   `json:"memory" jsonschema:"description=The fact to remember about the user,required"`
	Topics []string `json:"topics,omitempty" jsonschema:"description=Short topic labels"`
}

type updateArgs struct {
	MemoryID string   `json:"memory_id" jsonschema:"description=ID of the memory to replace,required"`
	Memory   string   `json:"memory" jsonschema:"description=The updated fact,required"`
	Topics   []string `json:"topics,omitempty" jsonschema:"description=Short topic labels"`
}

type deleteArgs struct {
	MemoryID string `json:"memory_id" jsonschema:"description=ID of the memory to delete,required"`
}

// Tools returns add_memory, update_memory, delete_memory and list_memories.
// Each acts on the user of the run that calls it.
func (m *Manager) Tools() []af.Tool {
	return []af.Tool{
		af.NewTypedTool("add_memory", "Remember a new fact about the user.",
			func(ctx context.Context, a addArgs) (any, error) {
				user, err := userOf(ctx)
				if err != nil {
					return nil, err
				}
				mem, err := m.repo.Add(ctx, user, a.Memory, a.Topics)
				if err != nil {
					return nil, err
				}
				slog.DebugContext(ctx, "memory added", "user_id", user, "memory_id", mem.ID)
				return map[string]string{"memory_id": mem.ID, "status": "added"}, nil
			}),
		af.NewTypedTool("update_memory", "Replace an existing memory about the user.",
			func(ctx context.Context, a updateArgs) (any, error) {
				user, err := userOf(ctx)
				if err != nil {
					return nil, err
				}
				if err := m.repo.Update(ctx, user, a.MemoryID, a.Memory, a.Topics); err != nil {
					return nil, err
				}
				return map[string]string{"memory_id": a.MemoryID, "status": "updated"}, nil
			}),
		af.NewTypedTool("delete_memory", "Forget a memory about the user.",
			func(ctx context.Context, a deleteArgs) (any, error) {
				user, err := userOf(ctx)
				if err != nil {
					return nil, err
				}
				if err := m.repo.Delete(ctx, user, a.MemoryID); err != nil {
					return nil, err
				}
				return map[string]string{"memory_id": a.MemoryID, "status": "deleted"}, nil
			}),
		af.NewTypedTool("list_memories", "List everything remembered about the user.",
			func(ctx context.Context, _ struct{}) (any, error) {
				user, err := userOf(ctx)
				if err != nil {
					return nil, err
				}
				return m.repo.List(ctx, user)
			}),
	}
}

func userOf(ctx context.Context) (string, error) {
	if u := af.UserIDFrom(ctx); u != "" {
		return u, nil
	}
	return "", ErrNoUser
}

// Provider adds the memory tools and the user's current memories to each
// run. Runs without a user ID are left alone.
func (m *Manager) Provider() af.ContextProvider {
	return &memoryProvider{m: m}
}

type memoryProvider struct {
	af.NoOpContextProvider
	m *Manager
}

func (p *memoryProvider) Invoking(ctx context.Context, _ []af.Message) (*af.InvocationContext, error) {
	user := af.UserIDFrom(ctx)
	if user == "" {
		return nil, nil
	}
	mems, err := p.m.repo.List(ctx, user)
	if err != nil {
		return nil, err
	}
	return &af.InvocationContext{
		Instructions: memoryInstructions(mems),
		Tools:        p.m.Tools(),
	}, nil
}

func memoryInstructions(mems []storage.Memory) string {
	var b strings.Builder
	b.WriteString("You can remember facts about the user with the memory tools. ")
	b.WriteString("Add a memory when the user shares a lasting preference or detail, update it when it changes and delete it when asked to forget.")
	if len(mems) == 0 {
		return b.String()
	}
	b.WriteString("\n<memories_from_previous_interactions>\n")
	for _, m := range mems {
		fmt.Fprintf(&b, "- [%s] %s\n", m.ID, m.Memory)
	}
	b.WriteString("</memories_from_previous_interactions>")
	return b.String()
}
