package board

import "time"

type Category struct {
	ID       uint64 `json:"id" gorm:"primaryKey"`
	Name     string `json:"name" gorm:"not null"`
	Position int    `json:"position" gorm:"not null;default:0"`
}

func (Category) TableName() string {
	return "categories"
}

type Board struct {
	ID               uint64    `json:"id" gorm:"primaryKey"`
	CategoryID       uint64    `json:"category_id" gorm:"not null;index"`
	Slug             string    `json:"slug" gorm:"unique;not null"`
	Name             string    `json:"name" gorm:"not null"`
	Description      *string   `json:"description,omitempty"`
	Redirect         string    `json:"redirect,omitempty" gorm:"not null;default:''"`
	NumTopics        int       `json:"num_topics" gorm:"not null;default:0"`
	NumPosts         int       `json:"num_posts" gorm:"not null;default:0"`
	UnapprovedTopics int       `json:"unapproved_topics" gorm:"not null;default:0"`
	UnapprovedPosts  int       `json:"unapproved_posts" gorm:"not null;default:0"`
	LastMsgID        uint64    `json:"last_msg_id" gorm:"not null;default:0"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (Board) TableName() string {
	return "boards"
}

// Totals is a per-board delta of the aggregate counters.
type Totals struct {
	NumPosts         int
	NumTopics        int
	UnapprovedPosts  int
	UnapprovedTopics int
}

type ListItem struct {
	ID           uint64 `json:"id"`
	Name         string `json:"name"`
	CategoryID   uint64 `json:"category_id"`
	CategoryName string `json:"category_name"`
}

type ListOptions struct {
	// IncludedBoards limits the list; empty means every board.
	IncludedBoards []uint64
	NotRedirection bool
}

// Stats is the public view of the counters a merge keeps in step.
type Stats struct {
	ID               uint64 `json:"id"`
	Name             string `json:"name"`
	NumTopics        int    `json:"num_topics"`
	NumPosts         int    `json:"num_posts"`
	UnapprovedTopics int    `json:"unapproved_topics"`
	UnapprovedPosts  int    `json:"unapproved_posts"`
	LastMsgID        uint64 `json:"last_msg_id"`
}

type CategoryStats struct {
	ID        uint64   `json:"id"`
	Name      string   `json:"name"`
	NumTopics int      `json:"num_topics"`
	NumPosts  int      `json:"num_posts"`
	Boards    []*Stats `json:"boards"`
}

type IndexResponse struct {
	Categories []*CategoryStats `json:"categories"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
