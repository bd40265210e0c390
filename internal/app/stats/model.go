package stats

const (
	TotalTopics = "totalTopics"
	MaxMsgID    = "maxMsgID"
)

// Setting is a forum wide key/value pair.
type Setting struct {
	Variable string `gorm:"primaryKey;size:255"`
	Value    string `gorm:"type:text;not null;default:''"`
}

func (Setting) TableName() string {
	return "settings"
}
