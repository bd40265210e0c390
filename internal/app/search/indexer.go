package search

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Indexer is implemented by search backends that need to learn about merges.
type Indexer interface {
	TopicMerge(ctx context.Context, targetTopic uint64, topics []uint64, affectedMsgs []uint64, override *SubjectOverride) error
}

type CustomIndexer struct {
	repo Repository
}

func NewCustomIndexer(repo Repository) *CustomIndexer {
	return &CustomIndexer{repo: repo}
}

// TopicMerge expects affectedMsgs in ascending order.
func (c *CustomIndexer) TopicMerge(_ context.Context, targetTopic uint64, topics []uint64, affectedMsgs []uint64, override *SubjectOverride) error {
	subject := ""
	if override != nil {
		subject = override.Prefix + override.Subject
	}
	if err := c.repo.ReassignMessages(topics, targetTopic, affectedMsgs, subject); err != nil {
		return fmt.Errorf("failed to update search index: %w", err)
	}
	return nil
}

// FindSearchAPI returns the configured backend, or nil when the backend keeps
// no per-message state.
func FindSearchAPI(name string, db *gorm.DB) Indexer {
	switch strings.ToLower(name) {
	case "custom":
		return NewCustomIndexer(NewRepository(db))
	default:
		return nil
	}
}
