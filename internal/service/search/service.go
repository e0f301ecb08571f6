package search

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/clinic-directory/internal/config"
	"github.com/jwalitptl/clinic-directory/internal/model"
	"github.com/jwalitptl/clinic-directory/internal/repository"
	"github.com/jwalitptl/clinic-directory/pkg/metrics"
)

const (
	defaultMinQueryLen = 2
	defaultLimit       = 8
	defaultMaxLimit    = 20
	defaultCacheTTL    = 30 * time.Second
)

type SearchServicer interface {
	Search(ctx context.Context, query string, limit int) ([]*model.SearchResult, error)
	MinQueryLen() int
}

type Service struct {
	repo    repository.SearchRepository
	cfg     config.SearchConfig
	cache   *cache.Cache
	metrics *metrics.Metrics
}

func NewService(repo repository.SearchRepository, cfg config.SearchConfig, m *metrics.Metrics) *Service {
	if cfg.MinQueryLen <= 0 {
		cfg.MinQueryLen = defaultMinQueryLen
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = defaultMaxLimit
	}
	if cfg.DefaultLimit <= 0 || cfg.DefaultLimit > cfg.MaxLimit {
		cfg.DefaultLimit = defaultLimit
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	return &Service{
		repo:    repo,
		cfg:     cfg,
		cache:   cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		metrics: m,
	}
}

func (s *Service) MinQueryLen() int {
	return s.cfg.MinQueryLen
}

// Search runs the remote full-text procedure. Queries shorter than the
// minimum length return no results without reaching the database.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]*model.SearchResult, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < s.cfg.MinQueryLen {
		return []*model.SearchResult{}, nil
	}
	limit = s.clamp(limit)

	key := fmt.Sprintf("%d|%s", limit, strings.ToLower(query))
	if cached, ok := s.cache.Get(key); ok {
		s.observeCache("hit")
		return cached.([]*model.SearchResult), nil
	}
	s.observeCache("miss")

	start := time.Now()
	results, err := s.repo.Search(ctx, query, limit)
	if s.metrics != nil {
		s.metrics.SearchLatency.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []*model.SearchResult{}
	}

	s.cache.SetDefault(key, results)
	return results, nil
}

func (s *Service) clamp(limit int) int {
	if limit <= 0 {
		return s.cfg.DefaultLimit
	}
	if limit > s.cfg.MaxLimit {
		return s.cfg.MaxLimit
	}
	return limit
}

func (s *Service) observeCache(result string) {
	if s.metrics != nil {
		s.metrics.SearchCache.WithLabelValues(result).Inc()
	}
}
