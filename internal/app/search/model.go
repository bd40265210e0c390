package search

// SubjectWord indexes one lowercase word of a topic subject.
type SubjectWord struct {
	Word    string `gorm:"primaryKey;size:64"`
	TopicID uint64 `gorm:"primaryKey;autoIncrement:false;index"`
}

func (SubjectWord) TableName() string {
	return "log_search_subjects"
}

// Message is the row kept by the custom full text index.
type Message struct {
	MessageID uint64 `gorm:"primaryKey;autoIncrement:false"`
	TopicID   uint64 `gorm:"not null;index"`
	Subject   string `gorm:"not null;default:''"`
}

func (Message) TableName() string {
	return "search_messages"
}

// SubjectOverride is set when the merge rewrote every reply subject as
// Prefix + Subject.
type SubjectOverride struct {
	Prefix  string
	Subject string
}
