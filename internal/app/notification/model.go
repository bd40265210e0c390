package notification

// LogNotify is a member's subscription to a topic or a board. Exactly one of
// TopicID and BoardID is set.
type LogNotify struct {
	MemberID uint64 `json:"member_id" gorm:"primaryKey;autoIncrement:false"`
	TopicID  uint64 `json:"topic_id" gorm:"primaryKey;autoIncrement:false"`
	BoardID  uint64 `json:"board_id" gorm:"primaryKey;autoIncrement:false"`
	Sent     bool   `json:"sent" gorm:"not null"`
}

func (LogNotify) TableName() string {
	return "log_notify"
}

type subscriber struct {
	MemberID uint64
	Sent     int
}

// Payload is pushed to each subscriber.
type Payload struct {
	Type    string `json:"type"`
	TopicID uint64 `json:"topic_id"`
	ActorID uint64 `json:"actor_id"`
	Actor   string `json:"actor"`
}
