package notification

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	CarryForward(tx *gorm.DB, fromTopics, removedTopics []uint64, targetTopic uint64) error
	PendingSubscribers(topicID, exclude uint64) ([]uint64, error)
	MarkSent(topicID uint64, memberIDs []uint64) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// CarryForward subscribes everyone watching one of fromTopics to the target
// topic, keeping the "already sent" flag if any of their rows had it, and
// then drops every subscription of removedTopics.
func (r *repository) CarryForward(tx *gorm.DB, fromTopics, removedTopics []uint64, targetTopic uint64) error {
	if len(fromTopics) > 0 {
		var subs []subscriber
		err := tx.Model(&LogNotify{}).
			Select("member_id, MAX(CASE WHEN sent THEN 1 ELSE 0 END) AS sent").
			Where("topic_id IN ?", fromTopics).
			Group("member_id").
			Scan(&subs).Error
		if err != nil {
			return err
		}

		if len(subs) > 0 {
			rows := make([]LogNotify, 0, len(subs))
			for _, s := range subs {
				rows = append(rows, LogNotify{MemberID: s.MemberID, TopicID: targetTopic, Sent: s.Sent > 0})
			}
			err = tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "member_id"}, {Name: "topic_id"}, {Name: "board_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"sent"}),
			}).Create(&rows).Error
			if err != nil {
				return err
			}
		}
	}

	if len(removedTopics) == 0 {
		return nil
	}
	return tx.Where("topic_id IN ?", removedTopics).Delete(&LogNotify{}).Error
}

func (r *repository) PendingSubscribers(topicID, exclude uint64) ([]uint64, error) {
	ids := []uint64{}
	err := r.db.Model(&LogNotify{}).
		Where("topic_id = ? AND sent = ? AND member_id != ?", topicID, false, exclude).
		Order("member_id").
		Pluck("member_id", &ids).Error
	return ids, err
}

func (r *repository) MarkSent(topicID uint64, memberIDs []uint64) error {
	if len(memberIDs) == 0 {
		return nil
	}
	return r.db.Model(&LogNotify{}).
		Where("topic_id = ? AND member_id IN ?", topicID, memberIDs).
		Update("sent", true).Error
}
