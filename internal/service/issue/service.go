package issue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"routeradar/internal/model"
	"routeradar/internal/mq"
	"routeradar/internal/query"
)

// ErrInvalidPatch marks a patch rejected before it reaches storage.
var ErrInvalidPatch = errors.New("invalid patch")

// patchFields are the issue fields a client may touch through PUT.
var patchFields = map[string]bool{
	"issueText":    true,
	"issueImage":   true,
	"category":     true,
	"neighborhood": true,
	"status":       true,
	"reportedBy":   true,
	"projectId":    true,
	"comments":     true,
	"likes":        true,
}

type Store interface {
	List(ctx context.Context, f query.IssueFilter) ([]model.Issue, error)
	Insert(ctx context.Context, i *model.Issue) (string, error)
	Update(ctx context.Context, id string, patch map[string]any) error
	Delete(ctx context.Context, id string) error
}

type Publisher interface {
	Publish(routingKey string, payload any) error
}

type Service struct {
	store     Store
	publisher Publisher
	logger    *zap.Logger
}

func NewService(store Store, publisher Publisher, logger *zap.Logger) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

// List applies the filter and returns one page of issues, most recently
// modified first.
func (s *Service) List(ctx context.Context, f query.IssueFilter) ([]model.Issue, error) {
	return s.store.List(ctx, f)
}

// Create persists a new issue and returns its id. Status, timestamps,
// comments and likes are server-authoritative: whatever the client sent for
// those fields is discarded. ProjectID is normalized to string-or-null.
func (s *Service) Create(ctx context.Context, in *model.Issue) (string, error) {
	now := time.Now().UTC()

	in.ID = uuid.NewString()
	in.Status = "open"
	in.Comments = []string{}
	in.Likes = 0
	in.CreatedAt = now
	in.ModifiedAt = now
	in.ProjectID = normalizeProjectID(in.ProjectID)

	id, err := s.store.Insert(ctx, in)
	if err != nil {
		return "", err
	}

	s.publish(mq.RouteIssueCreated, mq.IssueEventPayload{
		IssueID:      id,
		Category:     in.Category,
		Neighborhood: in.Neighborhood,
		ProjectID:    derefProjectID(in.ProjectID),
		OccurredAt:   now,
	})

	return id, nil
}

// Update merges a partial patch into the issue. modified_at is refreshed on
// every successful update as a store side effect. Linking and unlinking are
// not separate primitives: a patch carrying projectId is exactly that
// transition and is published as issue.linked / issue.unlinked.
func (s *Service) Update(ctx context.Context, id string, patch map[string]any) error {
	clean, err := cleanPatch(patch)
	if err != nil {
		return err
	}

	if err := s.store.Update(ctx, id, clean); err != nil {
		return err
	}

	route := mq.RouteIssueUpdated
	payload := mq.IssueEventPayload{IssueID: id, OccurredAt: time.Now().UTC()}
	if v, ok := clean["projectId"]; ok {
		if pid, isString := v.(*string); isString && pid != nil {
			route = mq.RouteIssueLinked
			payload.ProjectID = *pid
		} else {
			route = mq.RouteIssueUnlinked
		}
	}
	s.publish(route, payload)

	return nil
}

// Delete removes the issue by id.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.publish(mq.RouteIssueDeleted, mq.IssueEventPayload{
		IssueID:    id,
		OccurredAt: time.Now().UTC(),
	})

	return nil
}

// cleanPatch drops nothing silently: unknown fields and mistyped values are
// rejected so a typoed field name cannot be mistaken for a successful update.
func cleanPatch(patch map[string]any) (map[string]any, error) {
	clean := make(map[string]any, len(patch))

	for field, value := range patch {
		if !patchFields[field] {
			return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidPatch, field)
		}

		switch field {
		case "projectId":
			switch v := value.(type) {
			case nil:
				clean[field] = (*string)(nil)
			case string:
				clean[field] = normalizeProjectID(&v)
			default:
				return nil, fmt.Errorf("%w: projectId must be a string or null", ErrInvalidPatch)
			}
		case "likes":
			n, ok := value.(float64)
			if !ok || n != float64(int(n)) {
				return nil, fmt.Errorf("%w: likes must be an integer", ErrInvalidPatch)
			}
			clean[field] = int(n)
		case "comments":
			list, ok := value.([]any)
			if !ok {
				return nil, fmt.Errorf("%w: comments must be an array", ErrInvalidPatch)
			}
			comments := make([]string, 0, len(list))
			for _, c := range list {
				str, ok := c.(string)
				if !ok {
					return nil, fmt.Errorf("%w: comments must be strings", ErrInvalidPatch)
				}
				comments = append(comments, str)
			}
			clean[field] = comments
		default:
			str, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s must be a string", ErrInvalidPatch, field)
			}
			clean[field] = str
		}
	}

	return clean, nil
}

// normalizeProjectID collapses the empty string to null so "unlinked" has a
// single storage representation.
func normalizeProjectID(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	return id
}

func derefProjectID(id *string) string {
	if id == nil {
		return ""
	}
	return *id
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
