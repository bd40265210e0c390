package permission

import (
	"path/filepath"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/live627/elkarte.net/internal/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (Service, Repository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "perms.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&BoardPermission{}))
	repo := NewRepository(db)
	return NewService(repo), repo
}

func TestBoardsAllowedTo(t *testing.T) {
	svc, repo := setupService(t)
	require.NoError(t, repo.Grant(2, 0, MergeAny))
	require.NoError(t, repo.Grant(4, 1, MergeAny))
	require.NoError(t, repo.Grant(4, 3, MergeAny))
	require.NoError(t, repo.Grant(4, 3, MergeAny))

	admin := &request.Context{Member: request.Member{ID: 1, IsAdmin: true}}
	boards, err := svc.BoardsAllowedTo(admin, MergeAny)
	require.NoError(t, err)
	assert.Equal(t, []uint64{0}, boards)

	mod := &request.Context{Member: request.Member{ID: 2, GroupID: 2}}
	boards, err = svc.BoardsAllowedTo(mod, MergeAny)
	require.NoError(t, err)
	assert.Equal(t, []uint64{0}, boards)

	member := &request.Context{Member: request.Member{ID: 3, GroupID: 4}}
	boards, err = svc.BoardsAllowedTo(member, MergeAny)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 3}, boards)
	assert.Equal(t, []uint64{1, 3}, member.ModCache[MergeAny])

	guest := &request.Context{}
	boards, err = svc.BoardsAllowedTo(guest, MergeAny)
	require.NoError(t, err)
	assert.Empty(t, boards)
}

func TestAllowedToNeedsEveryBoard(t *testing.T) {
	svc, repo := setupService(t)
	require.NoError(t, repo.Grant(4, 1, MergeAny))
	require.NoError(t, repo.Grant(4, 3, MergeAny))

	rc := &request.Context{Member: request.Member{ID: 3, GroupID: 4}}

	ok, err := svc.AllowedTo(rc, MergeAny, []uint64{1, 3})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.AllowedTo(rc, MergeAny, []uint64{1, 2})
	require.NoError(t, err)
	assert.False(t, ok)
}
