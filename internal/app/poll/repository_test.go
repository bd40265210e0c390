package poll

import (
	"path/filepath"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testTopic struct {
	ID         uint64 `gorm:"primaryKey"`
	PollID     uint64
	FirstMsgID uint64
}

func (testTopic) TableName() string { return "topics" }

type testMessage struct {
	ID      uint64 `gorm:"primaryKey"`
	Subject string
}

func (testMessage) TableName() string { return "messages" }

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "polls.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Poll{}, &PollChoice{}, &LogPoll{}, &testTopic{}, &testMessage{}))

	require.NoError(t, db.Create(&[]Poll{{ID: 1, Question: "Tabs?"}, {ID: 2, Question: "Spaces?"}}).Error)
	require.NoError(t, db.Create(&[]PollChoice{
		{PollID: 1, ChoiceID: 1, Label: "yes"},
		{PollID: 2, ChoiceID: 1, Label: "no"},
	}).Error)
	require.NoError(t, db.Create(&[]LogPoll{{PollID: 1, MemberID: 3, ChoiceID: 1}, {PollID: 2, MemberID: 3, ChoiceID: 1}}).Error)
	require.NoError(t, db.Create(&[]testMessage{{ID: 1, Subject: "A"}, {ID: 2, Subject: "B"}}).Error)
	require.NoError(t, db.Create(&[]testTopic{{ID: 5, PollID: 1, FirstMsgID: 1}, {ID: 6, PollID: 2, FirstMsgID: 2}}).Error)
	return db
}

func TestSummaries(t *testing.T) {
	repo := NewRepository(setupDB(t))

	rows, err := repo.Summaries([]uint64{1, 2})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, uint64(5), rows[0].TopicID)
	assert.Equal(t, "A", rows[0].Subject)
	assert.Equal(t, "Tabs?", rows[0].Question)

	rows, err = repo.Summaries(nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRemovePolls(t *testing.T) {
	db := setupDB(t)
	repo := NewRepository(db)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return repo.RemovePolls(tx, []uint64{2})
	}))

	var polls, choices, votes int64
	require.NoError(t, db.Model(&Poll{}).Count(&polls).Error)
	require.NoError(t, db.Model(&PollChoice{}).Count(&choices).Error)
	require.NoError(t, db.Model(&LogPoll{}).Count(&votes).Error)
	assert.Equal(t, int64(1), polls)
	assert.Equal(t, int64(1), choices)
	assert.Equal(t, int64(1), votes)

	var topic testTopic
	require.NoError(t, db.First(&topic, 6).Error)
	assert.Zero(t, topic.PollID)
}
