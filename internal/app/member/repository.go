package member

import (
	"errors"

	"gorm.io/gorm"
)

type Repository interface {
	GetMemberByID(id uint64) (*Member, error)
	GetMemberByName(name string) (*Member, error)
	GetMembersByIDs(ids []uint64) (map[uint64]*Member, error)
	CreateMember(m *Member) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetMemberByID(id uint64) (*Member, error) {
	var m Member
	err := r.db.Where("id = ?", id).First(&m).Error
	return &m, err
}

// GetMemberByName returns nil without error when no member has the name.
func (r *repository) GetMemberByName(name string) (*Member, error) {
	var m Member
	err := r.db.Where("member_name = ?", name).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repository) GetMembersByIDs(ids []uint64) (map[uint64]*Member, error) {
	out := make(map[uint64]*Member, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var members []*Member
	if err := r.db.Where("id IN ?", ids).Find(&members).Error; err != nil {
		return nil, err
	}
	for _, m := range members {
		out[m.ID] = m
	}
	return out, nil
}

func (r *repository) CreateMember(m *Member) error {
	return r.db.Create(m).Error
}
