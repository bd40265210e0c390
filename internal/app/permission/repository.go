package permission

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	BoardsForGroup(groupID uint64, permission string) ([]uint64, error)
	Grant(groupID, boardID uint64, permission string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) BoardsForGroup(groupID uint64, permission string) ([]uint64, error) {
	var ids []uint64
	err := r.db.Model(&BoardPermission{}).
		Where("group_id = ? AND permission = ?", groupID, permission).
		Order("board_id ASC").
		Pluck("board_id", &ids).Error
	return ids, err
}

func (r *repository) Grant(groupID, boardID uint64, permission string) error {
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&BoardPermission{GroupID: groupID, BoardID: boardID, Permission: permission}).Error
}
