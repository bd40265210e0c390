package merge

import (
	"github.com/live627/elkarte.net/internal/app/board"
	"github.com/live627/elkarte.net/internal/app/topic"
)

// SubAction is a step of the merge workflow.
type SubAction int

const (
	SubActionIndex SubAction = iota
	SubActionOptions
	SubActionExecute
	SubActionDone
)

// ParseSubAction maps the sa parameter to a step. Unknown values select the
// index.
func ParseSubAction(sa string) SubAction {
	switch sa {
	case "options":
		return SubActionOptions
	case "execute":
		return SubActionExecute
	case "done":
		return SubActionDone
	default:
		return SubActionIndex
	}
}

func (a SubAction) String() string {
	switch a {
	case SubActionOptions:
		return "options"
	case SubActionExecute:
		return "execute"
	case SubActionDone:
		return "done"
	default:
		return "index"
	}
}

type IndexParams struct {
	From        uint64
	HasFrom     bool
	TargetBoard uint64
	HasTarget   bool
	Start       int
}

type ExecuteParams struct {
	From          uint64
	To            uint64
	Topics        []uint64
	Notifications []uint64

	// Board is the target board picked on the options screen.
	Board uint64
	// Poll is the surviving poll; -1 keeps none.
	Poll int64
	// Subject is the topic whose subject the merged topic takes.
	Subject          uint64
	CustomSubject    string
	HasCustomSubject bool
	EnforceSubject   string

	Token string
}

type BoardOption struct {
	ID       uint64
	Name     string
	Category string
	Selected bool
}

type PageLink struct {
	Number  int
	URL     string
	Current bool
}

type IndexView struct {
	OriginTopic   uint64
	OriginSubject string
	CurrentBoard  uint64
	TargetBoard   uint64
	Boards        []BoardOption
	Topics        []*topic.MergeableTopic
	Pages         []PageLink
	Start         int
	Token         string
}

type TopicOption struct {
	ID          uint64
	BoardID     uint64
	Subject     string
	StartedID   uint64
	StartedName string
	TimeStarted int64
	UpdatedID   uint64
	UpdatedName string
	TimeUpdated int64
	Selected    bool
}

type PollOption struct {
	ID       uint64
	TopicID  uint64
	Question string
	Subject  string
	Selected bool
}

type OptionsView struct {
	Topics []TopicOption
	Boards []BoardOption
	Polls  []PollOption
	Token  string
}

type DoneView struct {
	TargetTopic int
	TargetBoard int
}

// Result describes a completed merge.
type Result struct {
	TargetTopic  uint64
	TargetBoard  uint64
	Subject      string
	Merged       []uint64
	DeletedPolls []uint64
	RedirectURL  string
}

// Bounds is the message range and counts of the merged topic.
type Bounds struct {
	FirstMsg      uint64
	LastMsg       uint64
	NumReplies    int
	NumUnapproved int
	Approved      bool
}

// mergeSet is the validated input shared by the options and execute steps.
type mergeSet struct {
	topics      []uint64
	rows        []*topic.MergeCandidate
	byID        map[uint64]*topic.MergeCandidate
	boardTotals map[uint64]*board.Totals
	boards      []uint64
	polls       []uint64
	firstTopic  uint64
	numViews    int
	isSticky    bool
	boardsInfo  map[uint64]*board.Board
}
