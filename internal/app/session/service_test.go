package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/live627/elkarte.net/internal/app/member"
	"github.com/live627/elkarte.net/internal/providers/redis"
	"github.com/live627/elkarte.net/internal/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (Service, *member.Member) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "sessions.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&member.Member{}, &Session{}))

	memberRepo := member.NewRepository(db)
	m := &member.Member{MemberName: "mod", RealName: "Moderator", GroupID: member.GroupModerator, Language: "german"}
	require.NoError(t, memberRepo.CreateMember(m))

	return NewService(NewRepository(db), memberRepo, redis.NewMemoryCache()), m
}

func TestResolveMember(t *testing.T) {
	svc, m := setupService(t)
	ctx := context.Background()

	sess, err := svc.CreateSession(m.ID, "test-agent", "127.0.0.1")
	require.NoError(t, err)
	assert.Len(t, sess.SessionKey, 64)
	assert.Len(t, sess.Token, 32)

	got, info, err := svc.ResolveMember(ctx, sess.SessionKey)
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)
	assert.Equal(t, "Moderator", got.Name)
	assert.Equal(t, "german", got.Language)
	assert.False(t, got.IsAdmin)
	assert.Equal(t, sess.Token, info.Token)

	// served from cache the second time
	again, _, err := svc.ResolveMember(ctx, sess.SessionKey)
	require.NoError(t, err)
	assert.Equal(t, *got, *again)

	require.NoError(t, svc.UpdateSessionEndedAt(sess.ID))
	_, _, err = svc.ResolveMember(ctx, sess.SessionKey)
	assert.Error(t, err)

	_, _, err = svc.ResolveMember(ctx, "")
	assert.Error(t, err)
}

func TestCheckSession(t *testing.T) {
	svc, _ := setupService(t)

	rc := &request.Context{Session: request.SessionInfo{ID: 1, Key: "k", Token: "abc"}}
	assert.NoError(t, svc.CheckSession(rc, "abc"))
	assert.True(t, errors.Is(svc.CheckSession(rc, "abd"), ErrVerifyFailed))
	assert.True(t, errors.Is(svc.CheckSession(rc, ""), ErrVerifyFailed))
	assert.True(t, errors.Is(svc.CheckSession(&request.Context{}, "abc"), ErrVerifyFailed))
}
