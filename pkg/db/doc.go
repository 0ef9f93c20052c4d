// Package db opens the PostgreSQL pool and runs SQL migrations.
//
//	pool, err := db.Open(ctx, db.Config{URL: os.Getenv("DATABASE_URL")}, log)
//	m, err := db.NewMigrator(pool, os.DirFS("database/migrations"))
//	applied, err := m.Up(ctx)
//
// The pool also backs the queue; Transaction wraps a unit of work.
package db
