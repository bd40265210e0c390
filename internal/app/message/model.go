package message

import "time"

type Message struct {
	ID         uint64    `json:"id" gorm:"primaryKey"`
	TopicID    uint64    `json:"topic_id" gorm:"not null;index"`
	BoardID    uint64    `json:"board_id" gorm:"not null;index"`
	MemberID   uint64    `json:"member_id" gorm:"not null;default:0;index"`
	PosterName string    `json:"poster_name" gorm:"not null;default:''"`
	Subject    string    `json:"subject" gorm:"not null;default:''"`
	Body       string    `json:"body" gorm:"type:text;not null;default:''"`
	PosterTime int64     `json:"poster_time" gorm:"not null;default:0"`
	Approved   bool      `json:"approved" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Message) TableName() string {
	return "messages"
}

// ApprovalBucket aggregates the messages of a set of topics sharing one
// approval state.
type ApprovalBucket struct {
	Approved     bool
	FirstMsg     uint64
	LastMsg      uint64
	MessageCount int
}

type MessageListResponse struct {
	Messages   []*Message `json:"messages"`
	Pagination Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

type MessageResponse struct {
	Message *Message `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
