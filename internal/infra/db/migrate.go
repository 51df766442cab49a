package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Dates are stored as YYYY-MM-DD and comment timestamps as RFC 3339 text so
// both dialects compare and order them lexically.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
    id       INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT NOT NULL UNIQUE,
    password TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS articles (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    date            TEXT NOT NULL,
    title           TEXT NOT NULL,
    first_para      TEXT NOT NULL DEFAULT '',
    hyperlink       TEXT NOT NULL DEFAULT '',
    image_hyperlink TEXT NOT NULL DEFAULT ''
)`,
	`CREATE TABLE IF NOT EXISTS tags (
    id   INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE
)`,
	`CREATE TABLE IF NOT EXISTS article_tags (
    article_id INTEGER NOT NULL REFERENCES articles(id),
    tag_id     INTEGER NOT NULL REFERENCES tags(id),
    PRIMARY KEY (article_id, tag_id)
)`,
	`CREATE TABLE IF NOT EXISTS comments (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id    INTEGER NOT NULL REFERENCES users(id),
    article_id INTEGER NOT NULL REFERENCES articles(id),
    comment    TEXT NOT NULL,
    timestamp  TEXT NOT NULL
)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
    id       BIGSERIAL PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    password TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS articles (
    id              BIGSERIAL PRIMARY KEY,
    date            TEXT NOT NULL,
    title           TEXT NOT NULL,
    first_para      TEXT NOT NULL DEFAULT '',
    hyperlink       TEXT NOT NULL DEFAULT '',
    image_hyperlink TEXT NOT NULL DEFAULT ''
)`,
	`CREATE TABLE IF NOT EXISTS tags (
    id   BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
)`,
	`CREATE TABLE IF NOT EXISTS article_tags (
    article_id BIGINT NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
    tag_id     BIGINT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
    PRIMARY KEY (article_id, tag_id)
)`,
	`CREATE TABLE IF NOT EXISTS comments (
    id         BIGSERIAL PRIMARY KEY,
    user_id    BIGINT NOT NULL REFERENCES users(id),
    article_id BIGINT NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
    comment    TEXT NOT NULL,
    timestamp  TEXT NOT NULL
)`,
}

var indexes = []string{
	// date browsing and first/last lookups
	`CREATE INDEX IF NOT EXISTS idx_articles_date ON articles(date, id)`,
	`CREATE INDEX IF NOT EXISTS idx_article_tags_tag_id ON article_tags(tag_id)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_article_id ON comments(article_id)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_user_id ON comments(user_id)`,
}

// Migrate creates the schema for dialect. It is idempotent.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	schema := sqliteSchema
	if dialect == DialectPostgres {
		schema = postgresSchema
	}

	for _, stmt := range append(schema[:len(schema):len(schema)], indexes...) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("Migrate: ExecContext: %w", err)
		}
	}
	return nil
}

// MigrateDown drops every table created by Migrate.
// Use with caution: this deletes all stored news data.
func MigrateDown(ctx context.Context, db *sql.DB) error {
	dropStatements := []string{
		`DROP TABLE IF EXISTS comments`,
		`DROP TABLE IF EXISTS article_tags`,
		`DROP TABLE IF EXISTS tags`,
		`DROP TABLE IF EXISTS articles`,
		`DROP TABLE IF EXISTS users`,
	}

	for _, stmt := range dropStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("MigrateDown: ExecContext: %w", err)
		}
	}
	return nil
}
