package notification

import (
	"path/filepath"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/live627/elkarte.net/internal/request"
	"github.com/live627/elkarte.net/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "notify.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&LogNotify{}))
	return db
}

func TestCarryForward(t *testing.T) {
	db := setupDB(t)
	repo := NewRepository(db)

	require.NoError(t, db.Create(&[]LogNotify{
		{MemberID: 1, TopicID: 10, Sent: false},
		{MemberID: 1, TopicID: 11, Sent: true},
		{MemberID: 2, TopicID: 11, Sent: false},
		{MemberID: 3, TopicID: 12, Sent: false},
		{MemberID: 4, BoardID: 1},
	}).Error)

	// Topic 12 is merged away but its subscribers were not selected.
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return repo.CarryForward(tx, []uint64{10, 11}, []uint64{11, 12}, 10)
	}))

	var rows []LogNotify
	require.NoError(t, db.Where("topic_id != 0").Order("member_id").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, LogNotify{MemberID: 1, TopicID: 10, Sent: true}, rows[0])
	assert.Equal(t, LogNotify{MemberID: 2, TopicID: 10, Sent: false}, rows[1])

	var boardRows int64
	require.NoError(t, db.Model(&LogNotify{}).Where("board_id = ?", 1).Count(&boardRows).Error)
	assert.Equal(t, int64(1), boardRows)
}

func TestSendNotificationsSkipsActorAndSent(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Create(&[]LogNotify{
		{MemberID: 1, TopicID: 10},
		{MemberID: 2, TopicID: 10},
		{MemberID: 3, TopicID: 10, Sent: true},
	}).Error)

	bus := utils.NewEventBus()
	svc := NewService(NewRepository(db), bus, zap.NewNop())

	rc := &request.Context{Member: request.Member{ID: 1, Name: "mod"}}
	n, err := svc.SendNotifications(rc, 10, "merge")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	select {
	case ev := <-bus.SubscribeCh():
		assert.Equal(t, utils.EventNotification, ev.Event)
		assert.Equal(t, []uint64{2}, ev.Recipients)
		assert.Equal(t, Payload{Type: "merge", TopicID: 10, ActorID: 1, Actor: "mod"}, ev.Data)
	default:
		t.Fatal("no event published")
	}

	n, err = svc.SendNotifications(rc, 10, "merge")
	require.NoError(t, err)
	assert.Zero(t, n)
}
