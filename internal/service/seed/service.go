// Package seed performs the one-time population of the projects collection
// from the bundled dataset. Seeding is idempotent: a non-empty collection is
// left untouched.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"routeradar/internal/model"
	"routeradar/internal/mq"
)

// ErrInvalidDataset rejects a dataset file that is not a JSON array.
var ErrInvalidDataset = errors.New("seed dataset must be a JSON array")

var legacyIDPattern = regexp.MustCompile(`^[a-fA-F0-9]{24}$`)

type Store interface {
	Count(ctx context.Context) (int, error)
	Insert(ctx context.Context, p *model.Project) (string, error)
}

type Publisher interface {
	Publish(routingKey string, payload any) error
}

type Service struct {
	store     Store
	publisher Publisher
	logger    *zap.Logger
	dataPath  string
}

func NewService(store Store, publisher Publisher, logger *zap.Logger, dataPath string) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
		logger:    logger,
		dataPath:  dataPath,
	}
}

// Result reports what the seed call did.
type Result struct {
	Seeded bool   `json:"seeded"`
	Count  int    `json:"count"`
	Reason string `json:"reason"`
}

// record tolerates the heterogeneous legacy field names found in the
// bundled dataset alongside the canonical ones.
type record struct {
	ID                      string   `json:"_id"`
	Title                   string   `json:"title"`
	ProjectText             string   `json:"projectText"`
	Neighborhoods           []string `json:"neighborhoods"`
	Neighborhood            string   `json:"neighborhood"`
	Status                  string   `json:"status"`
	StatusLegacy            string   `json:"Status"`
	EstCompletion           string   `json:"estCompletion"`
	EstimatedCompletionDate string   `json:"estimatedCompletionDate"`
	ImageURL                string   `json:"imageUrl"`
	ProjectPicture          string   `json:"projectPicture"`
	CreatedAt               string   `json:"createdAt"`
	ModifiedAt              string   `json:"modifiedAt"`
	LastUpdated             string   `json:"lastUpdated"`
}

// Seed populates the projects collection from the bundled dataset if and
// only if it is currently empty. Rows are inserted independently: one bad
// row does not fail the batch.
func (s *Service) Seed(ctx context.Context) (Result, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return Result{}, err
	}

	if count > 0 {
		s.logger.Info("Seed skipped, projects already present", zap.Int("count", count))
		return Result{
			Seeded: false,
			Count:  count,
			Reason: "projects collection already has records",
		}, nil
	}

	raw, err := os.ReadFile(s.dataPath)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read seed dataset: %w", err)
	}

	var records []record
	if err := json.Unmarshal(raw, &records); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidDataset, err)
	}

	inserted := 0
	for _, rec := range records {
		p := rec.normalize()
		if _, err := s.store.Insert(ctx, &p); err != nil {
			s.logger.Warn("Skipping seed row",
				zap.String("id", p.ID),
				zap.String("title", p.Title),
				zap.Error(err),
			)
			continue
		}
		inserted++
	}

	s.logger.Info("Seeded projects", zap.Int("inserted", inserted))

	if s.publisher != nil {
		if err := s.publisher.Publish(mq.RouteProjectsSeeded, mq.SeedEventPayload{
			Count:      inserted,
			OccurredAt: time.Now().UTC(),
		}); err != nil {
			s.logger.Warn("Failed to publish seed event", zap.Error(err))
		}
	}

	return Result{
		Seeded: true,
		Count:  inserted,
		Reason: "projects collection was empty",
	}, nil
}

func (r record) normalize() model.Project {
	now := time.Now().UTC()

	p := model.Project{
		ID:            r.ID,
		Title:         firstNonEmpty(r.Title, r.ProjectText),
		Neighborhoods: r.Neighborhoods,
		Status:        NormalizeStatus(firstNonEmpty(r.Status, r.StatusLegacy)),
		EstCompletion: firstNonEmpty(r.EstCompletion, r.EstimatedCompletionDate),
		ImageURL:      firstNonEmpty(r.ImageURL, r.ProjectPicture),
		CreatedAt:     parseTime(r.CreatedAt, now),
		ModifiedAt:    parseTime(firstNonEmpty(r.LastUpdated, r.ModifiedAt), now),
	}

	// Legacy datasets carried 24-hex document ids worth preserving so
	// existing projectId references keep resolving.
	if !legacyIDPattern.MatchString(p.ID) {
		p.ID = uuid.NewString()
	}

	if p.Neighborhoods == nil {
		p.Neighborhoods = []string{}
		if r.Neighborhood != "" {
			p.Neighborhoods = []string{r.Neighborhood}
		}
	}

	return p
}

// NormalizeStatus maps free-form legacy status text onto the canonical enum,
// defaulting to planned for anything unrecognized.
func NormalizeStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "planned":
		return model.ProjectStatusPlanned
	case "in progress", "in_progress":
		return model.ProjectStatusInProgress
	case "completed":
		return model.ProjectStatusCompleted
	default:
		return model.ProjectStatusPlanned
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func parseTime(s string, fallback time.Time) time.Time {
	if s == "" {
		return fallback
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fallback
	}
	return t
}
