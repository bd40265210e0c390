package poll

import "time"

type Poll struct {
	ID        uint64    `json:"id" gorm:"primaryKey"`
	Question  string    `json:"question" gorm:"not null"`
	MemberID  uint64    `json:"member_id" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
}

func (Poll) TableName() string {
	return "polls"
}

type PollChoice struct {
	PollID   uint64 `json:"poll_id" gorm:"primaryKey;autoIncrement:false"`
	ChoiceID int    `json:"choice_id" gorm:"primaryKey;autoIncrement:false"`
	Label    string `json:"label" gorm:"not null"`
	Votes    int    `json:"votes" gorm:"not null;default:0"`
}

func (PollChoice) TableName() string {
	return "poll_choices"
}

type LogPoll struct {
	PollID   uint64 `gorm:"primaryKey;autoIncrement:false"`
	MemberID uint64 `gorm:"primaryKey;autoIncrement:false"`
	ChoiceID int    `gorm:"primaryKey;autoIncrement:false"`
}

func (LogPoll) TableName() string {
	return "log_polls"
}

// Summary identifies a poll by the topic that carries it.
type Summary struct {
	PollID   uint64
	TopicID  uint64
	Subject  string
	Question string
}
