package member

import "time"

// Membergroups. Guests carry no group.
const (
	GroupGuest     uint64 = 0
	GroupAdmin     uint64 = 1
	GroupModerator uint64 = 2
	GroupMember    uint64 = 4
)

type Member struct {
	ID         uint64    `json:"id" gorm:"primaryKey"`
	MemberName string    `json:"member_name" gorm:"uniqueIndex;not null"`
	RealName   string    `json:"real_name" gorm:"not null"`
	Email      string    `json:"email" gorm:"not null;default:''"`
	GroupID    uint64    `json:"group_id" gorm:"not null;default:4"`
	Language   string    `json:"language" gorm:"not null;default:''"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Member) TableName() string {
	return "members"
}

func (m *Member) IsAdmin() bool {
	return m.GroupID == GroupAdmin
}

// DisplayName prefers the real name, as shown next to posts.
func (m *Member) DisplayName() string {
	if m.RealName != "" {
		return m.RealName
	}
	return m.MemberName
}
