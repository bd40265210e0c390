package board

import (
	"gorm.io/gorm"
)

type Repository interface {
	GetCategories() ([]*Category, error)
	GetBoards() ([]*Board, error)
	GetBoardByID(id uint64) (*Board, error)
	GetBoardList(opts ListOptions) ([]*ListItem, error)
	FetchBoardsInfo(ids []uint64, visible []uint64) (map[uint64]*Board, error)
	DecrementBoard(tx *gorm.DB, id uint64, t Totals) error
	UpdateLastMessages(tx *gorm.DB, ids []uint64) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetCategories() ([]*Category, error) {
	var categories []*Category
	err := r.db.Order("position ASC, id ASC").Find(&categories).Error
	return categories, err
}

func (r *repository) GetBoards() ([]*Board, error) {
	var boards []*Board
	err := r.db.Order("id ASC").Find(&boards).Error
	return boards, err
}

func (r *repository) GetBoardByID(id uint64) (*Board, error) {
	var b Board
	if err := r.db.First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) GetBoardList(opts ListOptions) ([]*ListItem, error) {
	var items []*ListItem
	query := r.db.Table("boards").
		Select("boards.id, boards.name, boards.category_id, categories.name AS category_name").
		Joins("JOIN categories ON categories.id = boards.category_id")

	if len(opts.IncludedBoards) > 0 {
		query = query.Where("boards.id IN ?", opts.IncludedBoards)
	}
	if opts.NotRedirection {
		query = query.Where("boards.redirect = ?", "")
	}

	err := query.Order("categories.position ASC, boards.id ASC").Scan(&items).Error
	return items, err
}

// FetchBoardsInfo loads the given boards, keeping only those in visible.
// A visible list of [0] means every board.
func (r *repository) FetchBoardsInfo(ids []uint64, visible []uint64) (map[uint64]*Board, error) {
	out := make(map[uint64]*Board, len(ids))
	if len(ids) == 0 || len(visible) == 0 {
		return out, nil
	}

	query := r.db.Where("id IN ?", ids)
	if !(len(visible) == 1 && visible[0] == 0) {
		query = query.Where("id IN ?", visible)
	}

	var boards []*Board
	if err := query.Order("id ASC").Find(&boards).Error; err != nil {
		return nil, err
	}
	for _, b := range boards {
		out[b.ID] = b
	}
	return out, nil
}

// DecrementBoard subtracts t from the board counters. Negative values in t
// add to them.
func (r *repository) DecrementBoard(tx *gorm.DB, id uint64, t Totals) error {
	if t == (Totals{}) {
		return nil
	}
	return tx.Model(&Board{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"num_posts":         gorm.Expr("num_posts - ?", t.NumPosts),
			"num_topics":        gorm.Expr("num_topics - ?", t.NumTopics),
			"unapproved_posts":  gorm.Expr("unapproved_posts - ?", t.UnapprovedPosts),
			"unapproved_topics": gorm.Expr("unapproved_topics - ?", t.UnapprovedTopics),
		}).Error
}

// UpdateLastMessages points each board at its newest approved message.
func (r *repository) UpdateLastMessages(tx *gorm.DB, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	return tx.Exec(`
		UPDATE boards SET last_msg_id = COALESCE((
			SELECT MAX(messages.id) FROM messages
			WHERE messages.board_id = boards.id AND messages.approved = ?
		), 0)
		WHERE id IN ?
	`, true, ids).Error
}
