package message

import (
	"errors"

	"gorm.io/gorm"
)

type Repository interface {
	GetMessagesByTopic(topicID uint64, page int, limit int) ([]*Message, int64, error)
	GetMessageByID(id uint64) (*Message, error)
	ApprovalBuckets(topicIDs []uint64) ([]ApprovalBucket, error)
	MembersOf(firstMsg, lastMsg uint64) (started uint64, updated uint64, err error)
	MessagesInTopics(topicIDs []uint64) ([]uint64, error)
	Reassign(tx *gorm.DB, topicIDs []uint64, targetTopic, targetBoard uint64, subject string) error
	SetSubject(tx *gorm.DB, msgID uint64, subject string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetMessagesByTopic(topicID uint64, page int, limit int) ([]*Message, int64, error) {
	var messages []*Message
	var total int64
	offset := (page - 1) * limit

	if err := r.db.Model(&Message{}).Where("topic_id = ?", topicID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.
		Where("topic_id = ?", topicID).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, 0, err
	}

	return messages, total, nil
}

func (r *repository) GetMessageByID(id uint64) (*Message, error) {
	var message Message
	err := r.db.First(&message, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// ApprovalBuckets returns the approved bucket first.
func (r *repository) ApprovalBuckets(topicIDs []uint64) ([]ApprovalBucket, error) {
	var buckets []ApprovalBucket
	err := r.db.Model(&Message{}).
		Select("approved, MIN(id) AS first_msg, MAX(id) AS last_msg, COUNT(*) AS message_count").
		Where("topic_id IN ?", topicIDs).
		Group("approved").
		Order("approved DESC").
		Scan(&buckets).Error
	return buckets, err
}

// MembersOf returns the authors of the first and last message. When both ids
// name the same message the author is returned twice.
func (r *repository) MembersOf(firstMsg, lastMsg uint64) (uint64, uint64, error) {
	var rows []Message
	err := r.db.Select("id, member_id").
		Where("id IN ?", []uint64{firstMsg, lastMsg}).
		Order("id").
		Limit(2).
		Find(&rows).Error
	if err != nil {
		return 0, 0, err
	}

	switch len(rows) {
	case 0:
		return 0, 0, nil
	case 1:
		return rows[0].MemberID, rows[0].MemberID, nil
	default:
		return rows[0].MemberID, rows[1].MemberID, nil
	}
}

func (r *repository) MessagesInTopics(topicIDs []uint64) ([]uint64, error) {
	ids := []uint64{}
	if len(topicIDs) == 0 {
		return ids, nil
	}
	err := r.db.Model(&Message{}).
		Where("topic_id IN ?", topicIDs).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

// Reassign moves every message of the given topics to the target topic and
// board. A non-empty subject overwrites the subject of all of them.
func (r *repository) Reassign(tx *gorm.DB, topicIDs []uint64, targetTopic, targetBoard uint64, subject string) error {
	updates := map[string]interface{}{
		"topic_id": targetTopic,
		"board_id": targetBoard,
	}
	if subject != "" {
		updates["subject"] = subject
	}
	return tx.Model(&Message{}).
		Where("topic_id IN ?", topicIDs).
		Updates(updates).Error
}

func (r *repository) SetSubject(tx *gorm.DB, msgID uint64, subject string) error {
	return tx.Model(&Message{}).
		Where("id = ?", msgID).
		Update("subject", subject).Error
}
