package topic

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	CountTopicsByBoard(boardID uint64, onlyApproved bool) (int64, error)
	GetTopicInfo(id uint64) (*TopicInfo, error)
	MergeableTopics(boardID, exclude uint64, onlyApproved bool, start, limit int) ([]*MergeableTopic, error)
	GetMergeCandidates(ids []uint64) ([]*MergeCandidate, error)
	GetTopicsByBoard(boardID uint64, page, limit int) ([]*TopicSummary, int64, error)
	UpdateMergedTopic(tx *gorm.DB, id uint64, m MergedTopic) error
	DeleteTopics(tx *gorm.DB, ids []uint64) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CountTopicsByBoard(boardID uint64, onlyApproved bool) (int64, error) {
	var count int64
	query := r.db.Model(&Topic{}).Where("board_id = ?", boardID)
	if onlyApproved {
		query = query.Where("approved = ?", true)
	}
	err := query.Count(&count).Error
	return count, err
}

// GetTopicInfo returns nil without error when the topic does not exist.
func (r *repository) GetTopicInfo(id uint64) (*TopicInfo, error) {
	var info TopicInfo
	err := r.db.Table("topics").
		Select(`
			topics.id,
			topics.board_id,
			topics.poll_id,
			topics.first_msg_id,
			topics.last_msg_id,
			topics.approved,
			messages.subject
		`).
		Joins("JOIN messages ON messages.id = topics.first_msg_id").
		Where("topics.id = ?", id).
		Take(&info).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (r *repository) MergeableTopics(boardID, exclude uint64, onlyApproved bool, start, limit int) ([]*MergeableTopic, error) {
	var topics []*MergeableTopic
	query := r.db.Table("topics").
		Select(`
			topics.id,
			messages.subject,
			topics.member_started_id,
			COALESCE(NULLIF(members.real_name, ''), messages.poster_name) AS poster_name,
			messages.poster_time,
			topics.is_sticky,
			topics.approved
		`).
		Joins("JOIN messages ON messages.id = topics.first_msg_id").
		Joins("LEFT JOIN members ON members.id = topics.member_started_id").
		Where("topics.board_id = ? AND topics.id != ?", boardID, exclude)

	if onlyApproved {
		query = query.Where("topics.approved = ?", true)
	}

	err := query.
		Order("topics.is_sticky DESC, topics.last_msg_id DESC").
		Offset(start).
		Limit(limit).
		Scan(&topics).Error
	return topics, err
}

func (r *repository) GetMergeCandidates(ids []uint64) ([]*MergeCandidate, error) {
	var rows []*MergeCandidate
	if len(ids) == 0 {
		return rows, nil
	}
	err := r.db.Raw(`
		SELECT
			t.id, t.board_id, t.poll_id, t.num_views, t.is_sticky, t.approved,
			t.num_replies, t.unapproved_posts, t.first_msg_id,
			m1.subject,
			m1.poster_time AS time_started,
			COALESCE(mem1.id, 0) AS member_started_id,
			COALESCE(NULLIF(mem1.real_name, ''), m1.poster_name) AS name_started,
			m2.poster_time AS time_updated,
			COALESCE(mem2.id, 0) AS member_updated_id,
			COALESCE(NULLIF(mem2.real_name, ''), m2.poster_name) AS name_updated
		FROM topics AS t
			JOIN messages AS m1 ON m1.id = t.first_msg_id
			JOIN messages AS m2 ON m2.id = t.last_msg_id
			LEFT JOIN members AS mem1 ON mem1.id = m1.member_id
			LEFT JOIN members AS mem2 ON mem2.id = m2.member_id
		WHERE t.id IN ?
		ORDER BY t.first_msg_id
		LIMIT ?
	`, ids, len(ids)).Scan(&rows).Error
	return rows, err
}

func (r *repository) GetTopicsByBoard(boardID uint64, page, limit int) ([]*TopicSummary, int64, error) {
	var topics []*TopicSummary

	var total int64
	if err := r.db.Model(&Topic{}).Where("board_id = ?", boardID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := r.db.Table("topics").
		Select(`
			topics.id,
			topics.board_id,
			messages.subject,
			messages.poster_name,
			topics.num_replies,
			topics.num_views,
			topics.is_sticky,
			topics.approved,
			topics.last_msg_id
		`).
		Joins("JOIN messages ON messages.id = topics.first_msg_id").
		Where("topics.board_id = ?", boardID).
		Order("topics.is_sticky DESC, topics.last_msg_id DESC").
		Offset(offset).
		Limit(limit).
		Scan(&topics).Error
	if err != nil {
		return nil, 0, err
	}

	return topics, total, nil
}

func (r *repository) UpdateMergedTopic(tx *gorm.DB, id uint64, m MergedTopic) error {
	return tx.Model(&Topic{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"board_id":          m.BoardID,
			"member_started_id": m.MemberStartedID,
			"member_updated_id": m.MemberUpdatedID,
			"first_msg_id":      m.FirstMsgID,
			"last_msg_id":       m.LastMsgID,
			"poll_id":           m.PollID,
			"num_replies":       m.NumReplies,
			"unapproved_posts":  m.UnapprovedPosts,
			"num_views":         m.NumViews,
			"is_sticky":         m.IsSticky,
			"approved":          m.Approved,
			"updated_at":        time.Now().UTC(),
		}).Error
}

func (r *repository) DeleteTopics(tx *gorm.DB, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	return tx.Where("id IN ?", ids).Delete(&Topic{}).Error
}
