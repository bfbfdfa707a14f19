// Package memory gives agents two kinds of long-term memory.
//
// User memories are short facts about a user ("prefers visual examples")
// kept in storage and managed by the agent itself through tools:
//
//	mem := memory.NewManager(db.Memories())
//	agent := af.NewAgent(client, af.WithContextProvider(mem.Provider()))
//
// Learnings are insights that apply beyond one user. A [Learning] stores
// them in a knowledge base and either lets the agent save them (agentic
// mode) or extracts them after every run (always mode).
package memory
