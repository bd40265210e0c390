package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/live627/elkarte.net/internal/app/member"
	"github.com/live627/elkarte.net/internal/providers/redis"
	"github.com/live627/elkarte.net/internal/request"
)

var (
	// ErrVerifyFailed is returned when a form's session token does not match.
	ErrVerifyFailed   = errors.New("session verification failed")
	ErrMemberNotFound = errors.New("member not found")
)

const memberCacheTTL = 5 * time.Minute

type Service interface {
	CreateSession(memberID uint64, userAgent, ip string) (*Session, error)
	StartSession(memberName, userAgent, ip string) (*Session, *member.Member, error)
	GetSessionByKey(sessionKey string) (*Session, error)
	UpdateSessionEndedAt(sessionID uint64) error
	ResolveMember(ctx context.Context, sessionKey string) (*request.Member, *request.SessionInfo, error)
	CheckSession(rc *request.Context, token string) error
}

type service struct {
	repo       Repository
	memberRepo member.Repository
	cache      redis.Cache
}

func NewService(repo Repository, memberRepo member.Repository, cache redis.Cache) Service {
	return &service{repo: repo, memberRepo: memberRepo, cache: cache}
}

func (s *service) CreateSession(memberID uint64, userAgent, ip string) (*Session, error) {
	sessionKey, err := generateKey(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session key: %w", err)
	}
	token, err := generateKey(16)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	session := &Session{
		SessionKey: sessionKey,
		Token:      token,
		UserAgent:  &userAgent,
		IP:         ip,
		MemberID:   memberID,
		StartedAt:  time.Now().UTC(),
	}

	if err := s.repo.CreateSession(session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// StartSession opens a session for the member with the given login name.
func (s *service) StartSession(memberName, userAgent, ip string) (*Session, *member.Member, error) {
	m, err := s.memberRepo.GetMemberByName(memberName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get member: %w", err)
	}
	if m == nil {
		return nil, nil, ErrMemberNotFound
	}

	sess, err := s.CreateSession(m.ID, userAgent, ip)
	if err != nil {
		return nil, nil, err
	}
	return sess, m, nil
}

func (s *service) GetSessionByKey(sessionKey string) (*Session, error) {
	return s.repo.GetSessionByKey(sessionKey)
}

func (s *service) UpdateSessionEndedAt(sessionID uint64) error {
	sess, err := s.repo.GetSessionByID(sessionID)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateSessionEndedAt(sessionID); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.DeletePattern(context.Background(), cacheKey(sess.SessionKey))
	}
	return nil
}

type resolved struct {
	Member  request.Member      `json:"member"`
	Session request.SessionInfo `json:"session"`
}

func (s *service) ResolveMember(ctx context.Context, sessionKey string) (*request.Member, *request.SessionInfo, error) {
	if sessionKey == "" {
		return nil, nil, fmt.Errorf("session_key is required")
	}

	key := cacheKey(sessionKey)
	if s.cache != nil {
		if cached, ok := s.cache.GetData(ctx, key); ok {
			var r resolved
			if json.Unmarshal([]byte(cached), &r) == nil {
				return &r.Member, &r.Session, nil
			}
		}
	}

	sess, err := s.repo.GetSessionByKey(sessionKey)
	if err != nil {
		return nil, nil, fmt.Errorf("session not found: %w", err)
	}

	m, err := s.memberRepo.GetMemberByID(sess.MemberID)
	if err != nil {
		return nil, nil, fmt.Errorf("member not found: %w", err)
	}

	r := resolved{
		Member: request.Member{
			ID:       m.ID,
			Name:     m.DisplayName(),
			GroupID:  m.GroupID,
			Language: m.Language,
			IsAdmin:  m.IsAdmin(),
		},
		Session: request.SessionInfo{ID: sess.ID, Key: sess.SessionKey, Token: sess.Token},
	}

	if s.cache != nil {
		if data, err := json.Marshal(r); err == nil {
			s.cache.PutData(ctx, key, string(data), memberCacheTTL)
		}
	}

	return &r.Member, &r.Session, nil
}

// CheckSession verifies the token submitted with a state-changing request.
func (s *service) CheckSession(rc *request.Context, token string) error {
	if rc.Session.ID == 0 || rc.Session.Token == "" || token == "" {
		return ErrVerifyFailed
	}
	if subtle.ConstantTimeCompare([]byte(rc.Session.Token), []byte(token)) != 1 {
		return ErrVerifyFailed
	}
	return nil
}

func cacheKey(sessionKey string) string {
	return fmt.Sprintf("member:session:%s", sessionKey)
}

func generateKey(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
