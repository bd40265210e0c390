package topic

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/live627/elkarte.net/internal/providers/redis"
	"go.uber.org/zap"
)

const listCacheTTL = 5 * time.Minute

type Service interface {
	GetTopicsByBoard(ctx context.Context, boardID uint64, page, limit int) ([]*TopicSummary, int64, error)
	InvalidateTopicsCache(ctx context.Context, boardIDs ...uint64)
}

type service struct {
	repo        Repository
	cache       redis.Cache
	logger      *zap.SugaredLogger
	cachePrefix string
}

func NewService(repo Repository, cache redis.Cache, logger *zap.Logger) Service {
	return &service{
		repo:        repo,
		cache:       cache,
		logger:      logger.Sugar(),
		cachePrefix: "topics:board",
	}
}

func (s *service) GetTopicsByBoard(ctx context.Context, boardID uint64, page, limit int) ([]*TopicSummary, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	cacheKey := fmt.Sprintf("%s:%d:page:%d:limit:%d", s.cachePrefix, boardID, page, limit)
	var result struct {
		Topics []*TopicSummary `json:"topics"`
		Total  int64           `json:"total"`
	}
	if cached, ok := s.cache.GetData(ctx, cacheKey); ok {
		if json.Unmarshal([]byte(cached), &result) == nil {
			return result.Topics, result.Total, nil
		}
	}

	topics, total, err := s.repo.GetTopicsByBoard(boardID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get topics: %w", err)
	}

	if len(topics) > 0 {
		result.Topics = topics
		result.Total = total
		if data, err := json.Marshal(result); err == nil {
			s.cache.PutData(ctx, cacheKey, string(data), listCacheTTL)
		}
	}
	return topics, total, nil
}

func (s *service) InvalidateTopicsCache(ctx context.Context, boardIDs ...uint64) {
	for _, boardID := range boardIDs {
		pattern := fmt.Sprintf("%s:%d:page:*", s.cachePrefix, boardID)
		if n := s.cache.DeletePattern(ctx, pattern); n > 0 {
			s.logger.Debugw("Topic list cache invalidated", "board_id", boardID, "deleted_keys", n)
		}
	}
}
