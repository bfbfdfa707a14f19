// Package storage persists agent sessions, runs, user memories, knowledge
// contents and workflow runs with gorm.
//
// sqlite (github.com/glebarez/sqlite, no cgo) is the default; a postgres
// DSN switches to gorm.io/driver/postgres. The schema is embedded and
// applied with github.com/rubenv/sql-migrate when the database is opened:
//
//	db, err := storage.Open(ctx, "workspace/gemini_agents.db")
//	agent := af.NewAgent(client, af.WithContextProvider(storage.History(db, 3)))
package storage
