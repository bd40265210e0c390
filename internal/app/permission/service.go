package permission

import (
	"fmt"

	"github.com/live627/elkarte.net/internal/request"
)

type Service interface {
	BoardsAllowedTo(rc *request.Context, permission string) ([]uint64, error)
	AllowedTo(rc *request.Context, permission string, boards []uint64) (bool, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// BoardsAllowedTo lists the boards on which the actor holds permission.
// [0] means every board. Results are kept in the request's ModCache.
func (s *service) BoardsAllowedTo(rc *request.Context, permission string) ([]uint64, error) {
	if rc.Member.IsAdmin {
		return []uint64{0}, nil
	}
	if cached, ok := rc.ModCache[permission]; ok {
		return cached, nil
	}

	ids, err := s.repo.BoardsForGroup(rc.Member.GroupID, permission)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s boards: %w", permission, err)
	}
	if Contains(ids, 0) {
		ids = []uint64{0}
	}
	if ids == nil {
		ids = []uint64{}
	}

	if rc.ModCache == nil {
		rc.ModCache = make(map[string][]uint64)
	}
	rc.ModCache[permission] = ids
	return ids, nil
}

// AllowedTo reports whether the actor holds permission on every board given.
func (s *service) AllowedTo(rc *request.Context, permission string, boards []uint64) (bool, error) {
	allowed, err := s.BoardsAllowedTo(rc, permission)
	if err != nil {
		return false, err
	}
	if IsAll(allowed) {
		return true, nil
	}
	if len(boards) == 0 {
		return len(allowed) > 0, nil
	}
	for _, b := range boards {
		if !Contains(allowed, b) {
			return false, nil
		}
	}
	return true, nil
}

func IsAll(boards []uint64) bool {
	return len(boards) == 1 && boards[0] == 0
}

func Contains(ids []uint64, id uint64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
