package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS todos (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	content TEXT,
	done INTEGER NOT NULL DEFAULT 0,
	priority INTEGER,
	creation_date INTEGER NOT NULL,
	due_date INTEGER,
	finish_date INTEGER
)`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS todos (
	id BIGSERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	content TEXT,
	done INTEGER NOT NULL DEFAULT 0,
	priority BIGINT,
	creation_date BIGINT NOT NULL,
	due_date BIGINT,
	finish_date BIGINT
)`

// EnsureSchema creates the todos table if it does not exist yet.
func EnsureSchema(ctx context.Context, db *gorm.DB) error {
	ddl := sqliteSchema
	if db.Dialector.Name() == "postgres" {
		ddl = postgresSchema
	}
	if err := db.WithContext(ctx).Exec(ddl).Error; err != nil {
		return fmt.Errorf("create todos table: %w", err)
	}
	return nil
}

// SeedExample inserts a single example todo when the table is empty. It
// reports whether a row was inserted.
func SeedExample(ctx context.Context, db *gorm.DB, now time.Time) (bool, error) {
	var n int64
	if err := db.WithContext(ctx).Raw("SELECT COUNT(*) FROM todos").Row().Scan(&n); err != nil {
		return false, fmt.Errorf("count todos: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	err := db.WithContext(ctx).Exec(
		"INSERT INTO todos (title, content, creation_date) VALUES (?, ?, ?)",
		"Example Todo", "Some content", now.Unix(),
	).Error
	if err != nil {
		return false, fmt.Errorf("seed example todo: %w", err)
	}
	return true, nil
}
