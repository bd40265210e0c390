package modlog

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/live627/elkarte.net/internal/request"
	"gorm.io/gorm"
)

type Repository interface {
	LogAction(tx *gorm.DB, rc *request.Context, action string, topicID, boardID uint64, extra map[string]interface{}) (*Action, error)
	ListByTopic(topicID uint64) ([]*Action, error)
}

type repository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db, now: time.Now}
}

func (r *repository) LogAction(tx *gorm.DB, rc *request.Context, action string, topicID, boardID uint64, extra map[string]interface{}) (*Action, error) {
	if extra == nil {
		extra = map[string]interface{}{}
	}
	extra["topic"] = topicID
	extra["board"] = boardID
	data, err := json.Marshal(extra)
	if err != nil {
		return nil, fmt.Errorf("failed to encode log extra: %w", err)
	}

	row := &Action{
		Action:   action,
		MemberID: rc.Member.ID,
		IP:       rc.IP,
		LogTime:  r.now().Unix(),
		BoardID:  boardID,
		TopicID:  topicID,
		Extra:    string(data),
	}
	if err := tx.Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *repository) ListByTopic(topicID uint64) ([]*Action, error) {
	var rows []*Action
	err := r.db.Where("topic_id = ?", topicID).Order("id DESC").Find(&rows).Error
	return rows, err
}
