package stats

import (
	"errors"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	UpdateTopics(tx *gorm.DB) (int64, error)
	UpdateMaxMsgID(tx *gorm.DB) (uint64, error)
	Get(variable string) (string, bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// UpdateTopics recounts approved topics into totalTopics.
func (r *repository) UpdateTopics(tx *gorm.DB) (int64, error) {
	var total int64
	if err := tx.Table("topics").Where("approved = ?", true).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, r.put(tx, TotalTopics, strconv.FormatInt(total, 10))
}

func (r *repository) UpdateMaxMsgID(tx *gorm.DB) (uint64, error) {
	var max uint64
	if err := tx.Table("messages").Select("COALESCE(MAX(id), 0)").Scan(&max).Error; err != nil {
		return 0, err
	}
	return max, r.put(tx, MaxMsgID, strconv.FormatUint(max, 10))
}

func (r *repository) Get(variable string) (string, bool, error) {
	var s Setting
	err := r.db.Where("variable = ?", variable).Take(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return s.Value, true, nil
}

func (r *repository) put(tx *gorm.DB, variable, value string) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "variable"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&Setting{Variable: variable, Value: value}).Error
}
