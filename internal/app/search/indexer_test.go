package search

import (
	"context"
	"path/filepath"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "search.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&SubjectWord{}, &Message{}))
	return db
}

func TestSubjectWords(t *testing.T) {
	assert.Equal(t, []string{"hello", "world", "42"}, SubjectWords("Hello, World! hello 42"))
	assert.Empty(t, SubjectWords(" -- "))
}

func TestUpdateSubjectReplacesWords(t *testing.T) {
	db := setupDB(t)
	repo := NewRepository(db)

	require.NoError(t, db.Create(&[]SubjectWord{{Word: "old", TopicID: 1}, {Word: "gone", TopicID: 2}}).Error)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		if err := repo.DeleteTopicSubjects(tx, []uint64{2}); err != nil {
			return err
		}
		return repo.UpdateSubject(tx, 1, "New Subject")
	}))

	var words []string
	require.NoError(t, db.Model(&SubjectWord{}).Order("word").Pluck("word", &words).Error)
	assert.Equal(t, []string{"new", "subject"}, words)
}

func TestCustomIndexerTopicMerge(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Create(&[]Message{
		{MessageID: 1, TopicID: 1, Subject: "A"},
		{MessageID: 2, TopicID: 2, Subject: "B"},
		{MessageID: 3, TopicID: 2, Subject: "Re: B"},
	}).Error)

	idx := FindSearchAPI("custom", db)
	require.NotNil(t, idx)

	err := idx.TopicMerge(context.Background(), 1, []uint64{1, 2}, []uint64{1, 2, 3}, &SubjectOverride{Prefix: "Re: ", Subject: "A"})
	require.NoError(t, err)

	var rows []Message
	require.NoError(t, db.Order("message_id").Find(&rows).Error)
	for _, r := range rows {
		assert.Equal(t, uint64(1), r.TopicID)
	}
	assert.Equal(t, "A", rows[0].Subject)
	assert.Equal(t, "Re: A", rows[2].Subject)

	assert.Nil(t, FindSearchAPI("fulltext", db))
}
