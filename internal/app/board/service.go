package board

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var ErrBoardNotFound = errors.New("board not found")

type Service interface {
	Index() ([]*CategoryStats, error)
	GetStats(id uint64) (*Stats, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Index groups the boards under their categories in display order and
// sums each category. Redirection boards hold no posts and are left out.
func (s *service) Index() ([]*CategoryStats, error) {
	categories, err := s.repo.GetCategories()
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	boards, err := s.repo.GetBoards()
	if err != nil {
		return nil, fmt.Errorf("failed to get boards: %w", err)
	}

	byID := make(map[uint64]*CategoryStats, len(categories))
	out := make([]*CategoryStats, 0, len(categories))
	for _, c := range categories {
		cs := &CategoryStats{ID: c.ID, Name: c.Name, Boards: []*Stats{}}
		byID[c.ID] = cs
		out = append(out, cs)
	}

	for _, b := range boards {
		cs, ok := byID[b.CategoryID]
		if !ok || b.Redirect != "" {
			continue
		}
		cs.Boards = append(cs.Boards, statsOf(b))
		cs.NumTopics += b.NumTopics
		cs.NumPosts += b.NumPosts
	}
	return out, nil
}

func (s *service) GetStats(id uint64) (*Stats, error) {
	b, err := s.repo.GetBoardByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBoardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get board: %w", err)
	}
	return statsOf(b), nil
}

func statsOf(b *Board) *Stats {
	return &Stats{
		ID:               b.ID,
		Name:             b.Name,
		NumTopics:        b.NumTopics,
		NumPosts:         b.NumPosts,
		UnapprovedTopics: b.UnapprovedTopics,
		UnapprovedPosts:  b.UnapprovedPosts,
		LastMsgID:        b.LastMsgID,
	}
}
