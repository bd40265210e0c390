package errorlog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/live627/elkarte.net/internal/providers/minio"
	"go.uber.org/zap"
)

const ArchivePrefix = "errorlog"

var errNoStore = errors.New("object storage is not configured")

// ObjectStore receives error log archives.
type ObjectStore interface {
	PutObject(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.StoredObject, error)
	GeneratePresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

type Service interface {
	List(ctx context.Context, opts ListOptions) (*ListResponse, error)
	Delete(ctx context.Context, req DeleteRequest) (int64, error)
	Archive(ctx context.Context, prune bool) (*ArchiveResult, error)
}

type service struct {
	repo   Repository
	store  ObjectStore
	logger *zap.SugaredLogger
	now    func() time.Time
}

// NewService accepts a nil store; Archive then fails.
func NewService(repo Repository, store ObjectStore, logger *zap.Logger) Service {
	return &service{
		repo:   repo,
		store:  store,
		logger: logger.Sugar(),
		now:    time.Now,
	}
}

func (s *service) List(_ context.Context, opts ListOptions) (*ListResponse, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 || opts.Limit > 100 {
		opts.Limit = 20
	}

	records, total, err := s.repo.List(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list errors: %w", err)
	}
	counts, err := s.repo.CountByCategory()
	if err != nil {
		return nil, fmt.Errorf("failed to count errors: %w", err)
	}

	return &ListResponse{
		Errors:     records,
		Categories: counts,
		Pagination: Pagination{
			Page:       opts.Page,
			Limit:      opts.Limit,
			Total:      total,
			TotalPages: (total + int64(opts.Limit) - 1) / int64(opts.Limit),
		},
	}, nil
}

func (s *service) Delete(_ context.Context, req DeleteRequest) (int64, error) {
	var (
		n   int64
		err error
	)
	if req.All {
		n, err = s.repo.DeleteAll()
	} else {
		n, err = s.repo.Delete(req.IDs)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to delete errors: %w", err)
	}
	s.logger.Infow("Error log entries removed", "count", n, "all", req.All)
	return n, nil
}

// Archive uploads the whole log as newline delimited JSON. With prune the
// uploaded records are deleted afterwards.
func (s *service) Archive(ctx context.Context, prune bool) (*ArchiveResult, error) {
	if s.store == nil {
		return nil, errNoStore
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	count := 0
	maxID, err := s.repo.Each(500, func(records []*Record) error {
		for _, rec := range records {
			if err := enc.Encode(rec); err != nil {
				return err
			}
		}
		count += len(records)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read error log: %w", err)
	}

	result := &ArchiveResult{Records: count}
	if count == 0 {
		return result, nil
	}

	name := minio.GenerateObjectName(ArchivePrefix, ".ndjson", s.now())
	stored, err := s.store.PutObject(ctx, name, bytes.NewReader(buf.Bytes()), int64(buf.Len()), "application/x-ndjson")
	if err != nil {
		return nil, fmt.Errorf("failed to upload error log archive: %w", err)
	}
	result.ObjectName = stored.ObjectName

	if url, err := s.store.GeneratePresignedURL(ctx, stored.ObjectName, time.Hour); err == nil {
		result.URL = url
	} else {
		s.logger.Warnw("Failed to presign archive URL", "error", err, "object", stored.ObjectName)
	}

	if prune {
		result.Pruned, err = s.repo.DeleteUpTo(maxID)
		if err != nil {
			return nil, fmt.Errorf("failed to prune archived errors: %w", err)
		}
	}

	s.logger.Infow("Error log archived", "object", stored.ObjectName, "records", count, "pruned", result.Pruned)
	return result, nil
}
