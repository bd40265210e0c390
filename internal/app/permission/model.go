package permission

// Permission names checked by the forum.
const (
	MergeAny     = "merge_any"
	ApprovePosts = "approve_posts"
	ViewBoard    = "view_board"
	AdminForum   = "admin_forum"
)

// BoardPermission grants Permission to a membergroup on one board. BoardID 0
// grants it on every board.
type BoardPermission struct {
	GroupID    uint64 `gorm:"primaryKey;autoIncrement:false"`
	BoardID    uint64 `gorm:"primaryKey;autoIncrement:false"`
	Permission string `gorm:"primaryKey;type:varchar(40)"`
}

func (BoardPermission) TableName() string {
	return "board_permissions"
}
