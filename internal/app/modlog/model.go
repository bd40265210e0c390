package modlog

// Action is one moderation log row.
type Action struct {
	ID       uint64 `json:"id" gorm:"primaryKey"`
	Action   string `json:"action" gorm:"size:30;not null;index"`
	MemberID uint64 `json:"member_id" gorm:"not null;default:0"`
	IP       string `json:"ip" gorm:"size:64;not null;default:''"`
	LogTime  int64  `json:"log_time" gorm:"not null;index"`
	BoardID  uint64 `json:"board_id" gorm:"not null;default:0"`
	TopicID  uint64 `json:"topic_id" gorm:"not null;default:0"`
	Extra    string `json:"extra" gorm:"type:text;not null;default:'{}'"`
}

func (Action) TableName() string {
	return "log_actions"
}
