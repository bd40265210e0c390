package message

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/live627/elkarte.net/internal/providers/redis"
	"go.uber.org/zap"
)

const cacheTTL = 5 * time.Minute

type Service interface {
	GetMessagesByTopic(ctx context.Context, topicID uint64, page int, limit int) ([]*Message, int64, error)
	GetMessageByID(ctx context.Context, id uint64) (*Message, error)
	InvalidateMessagesCache(ctx context.Context, topicIDs ...uint64)
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
		cachePrefix: "messages:topic",
	}
}

func (s *service) GetMessagesByTopic(ctx context.Context, topicID uint64, page int, limit int) ([]*Message, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	cacheKey := fmt.Sprintf("%s:%d:page:%d:limit:%d", s.cachePrefix, topicID, page, limit)
	var result struct {
		Messages []*Message `json:"messages"`
		Total    int64      `json:"total"`
	}

	if cached, ok := s.cache.GetData(ctx, cacheKey); ok {
		if json.Unmarshal([]byte(cached), &result) == nil {
			return result.Messages, result.Total, nil
		}
	}

	messages, total, err := s.repo.GetMessagesByTopic(topicID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get messages: %w", err)
	}

	if len(messages) > 0 {
		result.Messages = messages
		result.Total = total
		data, _ := json.Marshal(result)
		s.cache.PutData(ctx, cacheKey, string(data), cacheTTL)
	}

	return messages, total, nil
}

func (s *service) GetMessageByID(ctx context.Context, id uint64) (*Message, error) {
	cacheKey := fmt.Sprintf("%s:message:%d", s.cachePrefix, id)
	if cached, ok := s.cache.GetData(ctx, cacheKey); ok {
		var message Message
		if json.Unmarshal([]byte(cached), &message) == nil {
			return &message, nil
		}
	}

	message, err := s.repo.GetMessageByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	if message == nil {
		return nil, nil
	}

	data, _ := json.Marshal(message)
	s.cache.PutData(ctx, cacheKey, string(data), cacheTTL)

	return message, nil
}

// InvalidateMessagesCache drops cached pages of the given topics and every
// cached single message, whose topic may have changed.
func (s *service) InvalidateMessagesCache(ctx context.Context, topicIDs ...uint64) {
	deleted := 0
	for _, topicID := range topicIDs {
		deleted += s.cache.DeletePattern(ctx, fmt.Sprintf("%s:%d:page:*", s.cachePrefix, topicID))
	}
	deleted += s.cache.DeletePattern(ctx, s.cachePrefix+":message:*")

	if deleted > 0 {
		s.logger.Debugw("Message cache invalidated", "topic_ids", topicIDs, "deleted_keys", deleted)
	}
}
