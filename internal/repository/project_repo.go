package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"routeradar/internal/model"
)

var projectColumns = map[string]string{
	"title":         "title",
	"neighborhoods": "neighborhoods",
	"status":        "status",
	"estCompletion": "est_completion",
	"imageUrl":      "image_url",
}

type ProjectRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProjectRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{db: db, logger: logger}
}

// List returns all projects sorted by modified_at descending. The corpus is
// small so the listing is unpaginated.
func (r *ProjectRepository) List(ctx context.Context) ([]model.Project, error) {
	sql := `
        SELECT id, title, neighborhoods, status, est_completion, image_url,
               created_at, modified_at
        FROM projects
        ORDER BY modified_at DESC
    `
	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		r.logger.Error("Failed to list projects", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	projects := []model.Project{}

	for rows.Next() {
		var p model.Project
		var neighborhoods []byte

		err := rows.Scan(
			&p.ID,
			&p.Title,
			&neighborhoods,
			&p.Status,
			&p.EstCompletion,
			&p.ImageURL,
			&p.CreatedAt,
			&p.ModifiedAt,
		)
		if err != nil {
			return nil, err
		}

		if err := json.Unmarshal(neighborhoods, &p.Neighborhoods); err != nil {
			return nil, fmt.Errorf("failed to decode neighborhoods for project %s: %w", p.ID, err)
		}

		projects = append(projects, p)
	}

	return projects, rows.Err()
}

// Insert persists the project and returns its id.
func (r *ProjectRepository) Insert(ctx context.Context, p *model.Project) (string, error) {
	r.logger.Debug("Inserting project", zap.String("title", p.Title))

	neighborhoods, err := json.Marshal(p.Neighborhoods)
	if err != nil {
		return "", err
	}

	sql := `
        INSERT INTO projects (id, title, neighborhoods, status, est_completion,
                              image_url, created_at, modified_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id
    `
	var id string
	err = r.db.QueryRow(ctx, sql,
		p.ID,
		p.Title,
		neighborhoods,
		p.Status,
		p.EstCompletion,
		p.ImageURL,
		p.CreatedAt,
		p.ModifiedAt,
	).Scan(&id)

	if err != nil {
		r.logger.Error("Failed to insert project", zap.Error(err))
		return "", err
	}

	return id, nil
}

// Update merges the patch and refreshes modified_at with application time,
// matching the clock inserts use. ErrNotFound on zero affected rows.
func (r *ProjectRepository) Update(ctx context.Context, id string, patch map[string]any) error {
	set := "modified_at = $2"
	args := []any{id, time.Now().UTC()}

	for field, value := range patch {
		col, ok := projectColumns[field]
		if !ok {
			return fmt.Errorf("unknown project field %q", field)
		}
		if col == "neighborhoods" {
			encoded, err := json.Marshal(value)
			if err != nil {
				return err
			}
			value = encoded
		}
		args = append(args, value)
		set += fmt.Sprintf(", %s = $%d", col, len(args))
	}

	tag, err := r.db.Exec(ctx, "UPDATE projects SET "+set+" WHERE id = $1", args...)
	if err != nil {
		r.logger.Error("Failed to update project", zap.String("id", id), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the project. Linked issues are left untouched: their
// project_id dangles and readers treat them as unlinked.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM projects WHERE id = $1", id)
	if err != nil {
		r.logger.Error("Failed to delete project", zap.String("id", id), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of stored projects.
func (r *ProjectRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM projects").Scan(&n); err != nil {
		r.logger.Error("Failed to count projects", zap.Error(err))
		return 0, err
	}
	return n, nil
}
