package topic

import "time"

// Topic keeps its subject on the first message.
type Topic struct {
	ID              uint64    `json:"id" gorm:"primaryKey"`
	BoardID         uint64    `json:"board_id" gorm:"not null;index"`
	PollID          uint64    `json:"poll_id" gorm:"not null;default:0"`
	FirstMsgID      uint64    `json:"first_msg_id" gorm:"not null;default:0"`
	LastMsgID       uint64    `json:"last_msg_id" gorm:"not null;default:0"`
	MemberStartedID uint64    `json:"member_started_id" gorm:"not null;default:0"`
	MemberUpdatedID uint64    `json:"member_updated_id" gorm:"not null;default:0"`
	NumReplies      int       `json:"num_replies" gorm:"not null;default:0"`
	NumViews        int       `json:"num_views" gorm:"not null;default:0"`
	UnapprovedPosts int       `json:"unapproved_posts" gorm:"not null;default:0"`
	IsSticky        bool      `json:"is_sticky" gorm:"not null"`
	Approved        bool      `json:"approved" gorm:"not null"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Topic) TableName() string {
	return "topics"
}

type TopicInfo struct {
	ID         uint64
	BoardID    uint64
	PollID     uint64
	FirstMsgID uint64
	LastMsgID  uint64
	Approved   bool
	Subject    string
}

// MergeableTopic is a row of the "pick a topic to merge with" list.
type MergeableTopic struct {
	ID              uint64 `json:"id"`
	Subject         string `json:"subject"`
	MemberStartedID uint64 `json:"member_started_id"`
	PosterName      string `json:"poster_name"`
	PosterTime      int64  `json:"poster_time"`
	IsSticky        bool   `json:"is_sticky"`
	Approved        bool   `json:"approved"`
}

// MergeCandidate is a topic about to be merged, with its first and last
// message metadata.
type MergeCandidate struct {
	ID              uint64
	BoardID         uint64
	PollID          uint64
	NumViews        int
	IsSticky        bool
	Approved        bool
	NumReplies      int
	UnapprovedPosts int
	FirstMsgID      uint64
	Subject         string
	TimeStarted     int64
	MemberStartedID uint64
	NameStarted     string
	TimeUpdated     int64
	MemberUpdatedID uint64
	NameUpdated     string
}

// MergedTopic holds the recomputed columns of the surviving topic.
type MergedTopic struct {
	BoardID         uint64
	MemberStartedID uint64
	MemberUpdatedID uint64
	FirstMsgID      uint64
	LastMsgID       uint64
	PollID          uint64
	NumReplies      int
	UnapprovedPosts int
	NumViews        int
	IsSticky        bool
	Approved        bool
}

type TopicSummary struct {
	ID         uint64 `json:"id"`
	BoardID    uint64 `json:"board_id"`
	Subject    string `json:"subject"`
	PosterName string `json:"poster_name"`
	NumReplies int    `json:"num_replies"`
	NumViews   int    `json:"num_views"`
	IsSticky   bool   `json:"is_sticky"`
	Approved   bool   `json:"approved"`
	LastMsgID  uint64 `json:"last_msg_id"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
