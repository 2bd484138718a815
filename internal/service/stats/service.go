// Package stats serves aggregate issue counts through a dedicated endpoint
// instead of having callers page through the whole collection with an
// oversized pageSize.
package stats

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	categoriesCacheKey = "stats:categories"
	cacheTTL           = 30 * time.Second
)

type IssueCounter interface {
	CountByCategory(ctx context.Context) (map[string]int, error)
}

type Service struct {
	issues IssueCounter
	cache  *redis.Client
	logger *zap.Logger
}

func NewService(issues IssueCounter, cache *redis.Client, logger *zap.Logger) *Service {
	return &Service{
		issues: issues,
		cache:  cache,
		logger: logger,
	}
}

// Categories returns issue counts per category, served from a short-lived
// redis cache when available. A cache outage degrades to hitting the store
// directly. Linked-issue counts are never cached here or anywhere else.
func (s *Service) Categories(ctx context.Context) (map[string]int, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, categoriesCacheKey).Bytes()
		if err == nil {
			counts := map[string]int{}
			if err := json.Unmarshal(cached, &counts); err == nil {
				return counts, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn("Stats cache read failed", zap.Error(err))
		}
	}

	counts, err := s.issues.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		encoded, err := json.Marshal(counts)
		if err == nil {
			if err := s.cache.Set(ctx, categoriesCacheKey, encoded, cacheTTL).Err(); err != nil {
				s.logger.Warn("Stats cache write failed", zap.Error(err))
			}
		}
	}

	return counts, nil
}
