package project

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"routeradar/internal/model"
	"routeradar/internal/mq"
)

var (
	// ErrTitleRequired rejects a project without a title.
	ErrTitleRequired = errors.New("title is required")

	// ErrInvalidPatch marks a patch rejected before it reaches storage.
	ErrInvalidPatch = errors.New("invalid patch")
)

type Store interface {
	List(ctx context.Context) ([]model.Project, error)
	Insert(ctx context.Context, p *model.Project) (string, error)
	Update(ctx context.Context, id string, patch map[string]any) error
	Delete(ctx context.Context, id string) error
}

// IssueCounter is the slice of the issue store the link aggregation needs.
type IssueCounter interface {
	CountByProject(ctx context.Context, projectIDs []string) (map[string]int, error)
}

type Publisher interface {
	Publish(routingKey string, payload any) error
}

type Service struct {
	store     Store
	issues    IssueCounter
	publisher Publisher
	logger    *zap.Logger
}

func NewService(store Store, issues IssueCounter, publisher Publisher, logger *zap.Logger) *Service {
	return &Service{
		store:     store,
		issues:    issues,
		publisher: publisher,
		logger:    logger,
	}
}

// List returns all projects, most recently modified first, each enriched
// with its linked-issue count. The counts come from one grouped query over
// the issues collection, never from a stored counter, so they are always a
// read-time projection.
func (s *Service) List(ctx context.Context) ([]model.Project, error) {
	projects, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}

	counts, err := s.issues.CountByProject(ctx, ids)
	if err != nil {
		return nil, err
	}

	for i := range projects {
		projects[i].LinkedIssues = counts[projects[i].ID]
	}

	return projects, nil
}

// Create persists a new project and returns its id.
func (s *Service) Create(ctx context.Context, p *model.Project) (string, error) {
	if p.Title == "" {
		return "", ErrTitleRequired
	}

	now := time.Now().UTC()
	p.ID = uuid.NewString()
	if p.Neighborhoods == nil {
		p.Neighborhoods = []string{}
	}
	if p.Status == "" {
		p.Status = model.ProjectStatusPlanned
	}
	p.CreatedAt = now
	p.ModifiedAt = now

	id, err := s.store.Insert(ctx, p)
	if err != nil {
		return "", err
	}

	s.publish(mq.RouteProjectCreated, mq.ProjectEventPayload{
		ProjectID:  id,
		Title:      p.Title,
		OccurredAt: now,
	})

	return id, nil
}

// Update merges a partial patch. Fields absent from the patch are untouched;
// an explicit JSON null clears the field back to its empty value. Title is
// the exception: it can be replaced but never cleared.
func (s *Service) Update(ctx context.Context, id string, patch map[string]any) error {
	clean, err := cleanPatch(patch)
	if err != nil {
		return err
	}

	if err := s.store.Update(ctx, id, clean); err != nil {
		return err
	}

	s.publish(mq.RouteProjectUpdated, mq.ProjectEventPayload{
		ProjectID:  id,
		OccurredAt: time.Now().UTC(),
	})

	return nil
}

// Delete removes the project. Issues linked to it are deliberately left
// alone; their dangling projectId renders as unlinked.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.publish(mq.RouteProjectDeleted, mq.ProjectEventPayload{
		ProjectID:  id,
		OccurredAt: time.Now().UTC(),
	})

	return nil
}

func cleanPatch(patch map[string]any) (map[string]any, error) {
	clean := make(map[string]any, len(patch))

	for field, value := range patch {
		switch field {
		case "title":
			str, ok := value.(string)
			if !ok || str == "" {
				return nil, fmt.Errorf("%w: title must be a non-empty string", ErrInvalidPatch)
			}
			clean[field] = str
		case "neighborhoods":
			if value == nil {
				clean[field] = []string{}
				continue
			}
			list, ok := value.([]any)
			if !ok {
				return nil, fmt.Errorf("%w: neighborhoods must be an array", ErrInvalidPatch)
			}
			neighborhoods := make([]string, 0, len(list))
			for _, n := range list {
				str, ok := n.(string)
				if !ok {
					return nil, fmt.Errorf("%w: neighborhoods must be strings", ErrInvalidPatch)
				}
				neighborhoods = append(neighborhoods, str)
			}
			clean[field] = neighborhoods
		case "status":
			if value == nil {
				clean[field] = model.ProjectStatusPlanned
				continue
			}
			str, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("%w: status must be a string", ErrInvalidPatch)
			}
			clean[field] = str
		case "estCompletion", "imageUrl":
			if value == nil {
				clean[field] = ""
				continue
			}
			str, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s must be a string", ErrInvalidPatch, field)
			}
			clean[field] = str
		default:
			return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidPatch, field)
		}
	}

	return clean, nil
}

func (s *Service) publish(routingKey string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(routingKey, payload); err != nil {
		s.logger.Warn("Failed to publish event",
			zap.String("routing_key", routingKey),
			zap.Error(err),
		)
	}
}
