package session

import "time"

type Session struct {
	ID         uint64    `gorm:"primaryKey"`
	SessionKey string    `gorm:"unique;not null"`
	Token      string    `gorm:"not null"`
	StartedAt  time.Time `gorm:"not null"`
	EndedAt    *time.Time
	UserAgent  *string `gorm:"type:text"`
	IP         string  `gorm:"not null;default:''"`
	MemberID   uint64  `gorm:"not null;index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Session) TableName() string {
	return "sessions"
}

type StartRequest struct {
	MemberName string `json:"member_name" binding:"required"`
}

type SessionResponse struct {
	MemberID   uint64    `json:"member_id"`
	MemberName string    `json:"member_name"`
	IsAdmin    bool      `json:"is_admin"`
	SessionKey string    `json:"session_key"`
	Token      string    `json:"token"`
	StartedAt  time.Time `json:"started_at"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
