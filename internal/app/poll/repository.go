package poll

import "gorm.io/gorm"

type Repository interface {
	Summaries(pollIDs []uint64) ([]*Summary, error)
	RemovePolls(tx *gorm.DB, pollIDs []uint64) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Summaries(pollIDs []uint64) ([]*Summary, error) {
	var rows []*Summary
	if len(pollIDs) == 0 {
		return rows, nil
	}
	err := r.db.Table("polls AS p").
		Select("t.id AS topic_id, t.poll_id, m.subject, p.question").
		Joins("JOIN topics AS t ON t.poll_id = p.id").
		Joins("JOIN messages AS m ON m.id = t.first_msg_id").
		Where("p.id IN ?", pollIDs).
		Order("t.id").
		Limit(len(pollIDs)).
		Scan(&rows).Error
	return rows, err
}

// RemovePolls deletes the polls with their votes and choices and detaches
// them from their topics.
func (r *repository) RemovePolls(tx *gorm.DB, pollIDs []uint64) error {
	if len(pollIDs) == 0 {
		return nil
	}
	if err := tx.Where("poll_id IN ?", pollIDs).Delete(&LogPoll{}).Error; err != nil {
		return err
	}
	if err := tx.Where("poll_id IN ?", pollIDs).Delete(&PollChoice{}).Error; err != nil {
		return err
	}
	if err := tx.Where("id IN ?", pollIDs).Delete(&Poll{}).Error; err != nil {
		return err
	}
	return tx.Table("topics").
		Where("poll_id IN ?", pollIDs).
		Update("poll_id", 0).Error
}
