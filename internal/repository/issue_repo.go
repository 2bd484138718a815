package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"routeradar/internal/model"
	"routeradar/internal/query"
)

// issueColumns maps patch field names to their columns. Anything else in a
// patch is rejected before it reaches SQL.
var issueColumns = map[string]string{
	"issueText":    "issue_text",
	"issueImage":   "issue_image",
	"category":     "category",
	"neighborhood": "neighborhood",
	"status":       "status",
	"reportedBy":   "reported_by",
	"projectId":    "project_id",
	"comments":     "comments",
	"likes":        "likes",
}

type IssueRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewIssueRepository(db *pgxpool.Pool, logger *zap.Logger) *IssueRepository {
	return &IssueRepository{db: db, logger: logger}
}

// List applies the filter predicate, sorts by modified_at descending and
// paginates. Returns an empty slice, never nil, when nothing matches.
func (r *IssueRepository) List(ctx context.Context, f query.IssueFilter) ([]model.Issue, error) {
	where, args := f.Where()

	sql := fmt.Sprintf(`
        SELECT id, issue_text, issue_image, category, neighborhood, status,
               reported_by, project_id, comments, likes, created_at, modified_at
        FROM issues
        %s
        ORDER BY modified_at DESC
        LIMIT $%d OFFSET $%d
    `, where, len(args)+1, len(args)+2)
	args = append(args, f.PageSize, f.Offset())

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		r.logger.Error("Failed to list issues", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	issues := []model.Issue{}

	for rows.Next() {
		var i model.Issue
		var comments []byte

		err := rows.Scan(
			&i.ID,
			&i.IssueText,
			&i.IssueImage,
			&i.Category,
			&i.Neighborhood,
			&i.Status,
			&i.ReportedBy,
			&i.ProjectID,
			&comments,
			&i.Likes,
			&i.CreatedAt,
			&i.ModifiedAt,
		)
		if err != nil {
			return nil, err
		}

		if err := json.Unmarshal(comments, &i.Comments); err != nil {
			return nil, fmt.Errorf("failed to decode comments for issue %s: %w", i.ID, err)
		}

		issues = append(issues, i)
	}

	return issues, rows.Err()
}

// Insert persists the issue and returns its id.
func (r *IssueRepository) Insert(ctx context.Context, i *model.Issue) (string, error) {
	r.logger.Debug("Inserting issue",
		zap.String("category", i.Category),
		zap.String("neighborhood", i.Neighborhood),
	)

	comments, err := json.Marshal(i.Comments)
	if err != nil {
		return "", err
	}

	sql := `
        INSERT INTO issues (id, issue_text, issue_image, category, neighborhood,
                            status, reported_by, project_id, comments, likes,
                            created_at, modified_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING id
    `
	var id string
	err = r.db.QueryRow(ctx, sql,
		i.ID,
		i.IssueText,
		i.IssueImage,
		i.Category,
		i.Neighborhood,
		i.Status,
		i.ReportedBy,
		i.ProjectID,
		comments,
		i.Likes,
		i.CreatedAt,
		i.ModifiedAt,
	).Scan(&id)

	if err != nil {
		r.logger.Error("Failed to insert issue", zap.Error(err))
		return "", err
	}

	return id, nil
}

// Update merges the patch into the stored row and refreshes modified_at.
// The refresh binds application time, the same clock inserts use, so the
// modified_at sort order is immune to app/db clock skew.
// Zero affected rows means the id does not exist and yields ErrNotFound.
func (r *IssueRepository) Update(ctx context.Context, id string, patch map[string]any) error {
	set := "modified_at = $2"
	args := []any{id, time.Now().UTC()}

	for field, value := range patch {
		col, ok := issueColumns[field]
		if !ok {
			return fmt.Errorf("unknown issue field %q", field)
		}
		if col == "comments" {
			encoded, err := json.Marshal(value)
			if err != nil {
				return err
			}
			value = encoded
		}
		args = append(args, value)
		set += fmt.Sprintf(", %s = $%d", col, len(args))
	}

	tag, err := r.db.Exec(ctx, "UPDATE issues SET "+set+" WHERE id = $1", args...)
	if err != nil {
		r.logger.Error("Failed to update issue", zap.String("id", id), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the issue. ErrNotFound when the id does not exist.
func (r *IssueRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM issues WHERE id = $1", id)
	if err != nil {
		r.logger.Error("Failed to delete issue", zap.String("id", id), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByProject returns linked-issue counts for the given project ids in a
// single grouped pass. Ids with no linked issues are absent from the map.
func (r *IssueRepository) CountByProject(ctx context.Context, projectIDs []string) (map[string]int, error) {
	counts := map[string]int{}
	if len(projectIDs) == 0 {
		return counts, nil
	}

	sql := `
        SELECT project_id, COUNT(*)
        FROM issues
        WHERE project_id = ANY($1)
        GROUP BY project_id
    `
	rows, err := r.db.Query(ctx, sql, projectIDs)
	if err != nil {
		r.logger.Error("Failed to count issues by project", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var projectID string
		var n int
		if err := rows.Scan(&projectID, &n); err != nil {
			return nil, err
		}
		counts[projectID] = n
	}

	return counts, rows.Err()
}

// CountByCategory returns issue counts grouped by category over the whole
// collection.
func (r *IssueRepository) CountByCategory(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.Query(ctx, "SELECT category, COUNT(*) FROM issues GROUP BY category")
	if err != nil {
		r.logger.Error("Failed to count issues by category", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, err
		}
		counts[category] = n
	}

	return counts, rows.Err()
}
