package modlog

import (
	"encoding/json"
	"path/filepath"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/live627/elkarte.net/internal/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestLogAction(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "modlog.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Action{}))

	repo := NewRepository(db)
	rc := &request.Context{Member: request.Member{ID: 3}, IP: "10.0.0.1"}

	row, err := repo.LogAction(db, rc, "merge", 7, 2, nil)
	require.NoError(t, err)
	assert.NotZero(t, row.ID)
	assert.NotZero(t, row.LogTime)

	rows, err := repo.ListByTopic(7)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "merge", rows[0].Action)
	assert.Equal(t, uint64(3), rows[0].MemberID)
	assert.Equal(t, "10.0.0.1", rows[0].IP)

	var extra map[string]uint64
	require.NoError(t, json.Unmarshal([]byte(rows[0].Extra), &extra))
	assert.Equal(t, map[string]uint64{"topic": 7, "board": 2}, extra)
}
