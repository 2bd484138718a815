package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// issues.project_id is a weak reference to projects.id on purpose: no
// foreign key, so deleting a project leaves linked issues dangling.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS issues (
        id           TEXT PRIMARY KEY,
        issue_text   TEXT NOT NULL DEFAULT '',
        issue_image  TEXT NOT NULL DEFAULT '',
        category     TEXT NOT NULL DEFAULT '',
        neighborhood TEXT NOT NULL DEFAULT '',
        status       TEXT NOT NULL DEFAULT 'open',
        reported_by  TEXT NOT NULL DEFAULT '',
        project_id   TEXT,
        comments     JSONB NOT NULL DEFAULT '[]',
        likes        INT NOT NULL DEFAULT 0,
        created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        modified_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE INDEX IF NOT EXISTS idx_issues_modified_at ON issues (modified_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_issues_project_id ON issues (project_id)`,
	`CREATE TABLE IF NOT EXISTS projects (
        id             TEXT PRIMARY KEY,
        title          TEXT NOT NULL,
        neighborhoods  JSONB NOT NULL DEFAULT '[]',
        status         TEXT NOT NULL DEFAULT 'planned',
        est_completion TEXT NOT NULL DEFAULT '',
        image_url      TEXT NOT NULL DEFAULT '',
        created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        modified_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE INDEX IF NOT EXISTS idx_projects_modified_at ON projects (modified_at DESC)`,
}

// EnsureSchema creates the tables on startup if they do not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}
