package search

import (
	"strings"
	"unicode"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	UpdateSubject(tx *gorm.DB, topicID uint64, subject string) error
	DeleteTopicSubjects(tx *gorm.DB, topicIDs []uint64) error
	ReassignMessages(topicIDs []uint64, targetTopic uint64, msgIDs []uint64, subject string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// SubjectWords splits a subject into the distinct lowercase words stored in
// the subject index.
func SubjectWords(subject string) []string {
	fields := strings.FieldsFunc(strings.ToLower(subject), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	seen := make(map[string]struct{}, len(fields))
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) > 64 {
			f = f[:64]
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		words = append(words, f)
	}
	return words
}

// UpdateSubject replaces the indexed words of a topic.
func (r *repository) UpdateSubject(tx *gorm.DB, topicID uint64, subject string) error {
	if err := tx.Where("topic_id = ?", topicID).Delete(&SubjectWord{}).Error; err != nil {
		return err
	}
	words := SubjectWords(subject)
	if len(words) == 0 {
		return nil
	}
	rows := make([]SubjectWord, 0, len(words))
	for _, w := range words {
		rows = append(rows, SubjectWord{Word: w, TopicID: topicID})
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

func (r *repository) DeleteTopicSubjects(tx *gorm.DB, topicIDs []uint64) error {
	if len(topicIDs) == 0 {
		return nil
	}
	return tx.Where("topic_id IN ?", topicIDs).Delete(&SubjectWord{}).Error
}

// ReassignMessages points indexed messages at the target topic. A non-empty
// subject is written to every message except the first.
func (r *repository) ReassignMessages(topicIDs []uint64, targetTopic uint64, msgIDs []uint64, subject string) error {
	if len(msgIDs) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&Message{}).
			Where("message_id IN ?", msgIDs).
			Update("topic_id", targetTopic).Error
		if err != nil {
			return err
		}
		if subject == "" {
			return nil
		}
		return tx.Model(&Message{}).
			Where("message_id IN ? AND message_id != ?", msgIDs, msgIDs[0]).
			Update("subject", subject).Error
	})
}
