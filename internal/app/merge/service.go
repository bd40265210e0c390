package merge

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/live627/elkarte.net/internal/app/board"
	"github.com/live627/elkarte.net/internal/app/errorlog"
	"github.com/live627/elkarte.net/internal/app/message"
	"github.com/live627/elkarte.net/internal/app/modlog"
	"github.com/live627/elkarte.net/internal/app/notification"
	"github.com/live627/elkarte.net/internal/app/permission"
	"github.com/live627/elkarte.net/internal/app/poll"
	"github.com/live627/elkarte.net/internal/app/search"
	"github.com/live627/elkarte.net/internal/app/stats"
	"github.com/live627/elkarte.net/internal/app/topic"
	"github.com/live627/elkarte.net/internal/config"
	"github.com/live627/elkarte.net/internal/lang"
	"github.com/live627/elkarte.net/internal/providers/redis"
	"github.com/live627/elkarte.net/internal/request"
	"github.com/live627/elkarte.net/internal/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	responsePrefixKey = "response_prefix"
	responsePrefixTTL = 600 * time.Second
)

type Service interface {
	Index(rc *request.Context, p IndexParams) (*IndexView, error)
	Options(rc *request.Context, p ExecuteParams) (*OptionsView, error)
	Execute(rc *request.Context, p ExecuteParams) (*Result, error)
}

// SessionChecker verifies the session token of a form submission.
type SessionChecker interface {
	CheckSession(rc *request.Context, token string) error
}

type Repositories struct {
	Topics        topic.Repository
	Messages      message.Repository
	Boards        board.Repository
	Polls         poll.Repository
	Notifications notification.Repository
	Search        search.Repository
	Stats         stats.Repository
	ModLog        modlog.Repository
}

type service struct {
	dbConn      *gorm.DB
	repos       Repositories
	permissions permission.Service
	sessions    SessionChecker
	notifier    notification.Service
	indexer     search.Indexer
	topicSvc    topic.Service
	messageSvc  message.Service
	eventBus    notification.Publisher
	cache       redis.Cache
	bundle      *lang.Bundle
	cfg         *config.Config
	logger      *zap.SugaredLogger
}

func NewService(
	dbConn *gorm.DB,
	repos Repositories,
	permissions permission.Service,
	sessions SessionChecker,
	notifier notification.Service,
	indexer search.Indexer,
	topicSvc topic.Service,
	messageSvc message.Service,
	eventBus notification.Publisher,
	cache redis.Cache,
	bundle *lang.Bundle,
	cfg *config.Config,
	logger *zap.Logger,
) Service {
	return &service{
		dbConn:      dbConn,
		repos:       repos,
		permissions: permissions,
		sessions:    sessions,
		notifier:    notifier,
		indexer:     indexer,
		topicSvc:    topicSvc,
		messageSvc:  messageSvc,
		eventBus:    eventBus,
		cache:       cache,
		bundle:      bundle,
		cfg:         cfg,
		logger:      logger.Sugar(),
	}
}

// onlyApproved reports whether the actor sees approved topics only on
// boardID.
func (s *service) onlyApproved(rc *request.Context, boardID uint64) (bool, error) {
	if !s.cfg.PostModeration {
		return false, nil
	}
	canApprove, err := s.permissions.BoardsAllowedTo(rc, permission.ApprovePosts)
	if err != nil {
		return false, err
	}
	return !permission.IsAll(canApprove) && !permission.Contains(canApprove, boardID), nil
}

func (s *service) Index(rc *request.Context, p IndexParams) (*IndexView, error) {
	if !p.HasFrom {
		return nil, errorlog.NewLangError("no_access", "")
	}

	target := rc.Board
	if p.HasTarget {
		target = p.TargetBoard
	}

	onlyApproved, err := s.onlyApproved(rc, target)
	if err != nil {
		return nil, fmt.Errorf("failed to check approval permission: %w", err)
	}

	count, err := s.repos.Topics.CountTopicsByBoard(target, onlyApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to count topics: %w", err)
	}

	perPage := s.cfg.DefaultMaxTopics
	baseURL := fmt.Sprintf("%s?action=mergetopics;from=%d;targetboard=%d;board=%d.%s",
		s.cfg.ScriptURL, p.From, target, rc.Board, startPlaceholder)
	pages, start := BuildPageIndex(baseURL, p.Start, int(count), perPage)

	origin, err := s.repos.Topics.GetTopicInfo(p.From)
	if err != nil {
		return nil, fmt.Errorf("failed to get topic info: %w", err)
	}
	if origin == nil || origin.BoardID != rc.Board || (onlyApproved && !origin.Approved) {
		return nil, errorlog.NewLangError("no_board", errorlog.CategoryGeneral)
	}

	mergeBoards, err := s.permissions.BoardsAllowedTo(rc, permission.MergeAny)
	if err != nil {
		return nil, fmt.Errorf("failed to check merge permission: %w", err)
	}
	if len(mergeBoards) == 0 {
		return nil, errorlog.NewLangError("cannot_merge_any", errorlog.CategoryUser)
	}

	opts := board.ListOptions{NotRedirection: true}
	if !permission.IsAll(mergeBoards) {
		opts.IncludedBoards = mergeBoards
	}
	boardList, err := s.repos.Boards.GetBoardList(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get board list: %w", err)
	}

	topics, err := s.repos.Topics.MergeableTopics(target, p.From, onlyApproved, start, perPage)
	if err != nil {
		return nil, fmt.Errorf("failed to get mergeable topics: %w", err)
	}

	if len(topics) == 0 && len(boardList) <= 1 {
		return nil, errorlog.NewLangError("merge_need_more_topics", errorlog.CategoryGeneral)
	}

	view := &IndexView{
		OriginTopic:   p.From,
		OriginSubject: origin.Subject,
		CurrentBoard:  rc.Board,
		TargetBoard:   target,
		Topics:        topics,
		Pages:         pages,
		Start:         start,
		Token:         rc.Session.Token,
	}
	for _, b := range boardList {
		view.Boards = append(view.Boards, BoardOption{
			ID:       b.ID,
			Name:     b.Name,
			Category: b.CategoryName,
			Selected: b.ID == target,
		})
	}
	return view, nil
}

// load validates the topics of a merge request and collects what the
// options and execute steps share.
func (s *service) load(rc *request.Context, p ExecuteParams) (*mergeSet, error) {
	if err := s.sessions.CheckSession(rc, p.Token); err != nil {
		return nil, errorlog.NewLangError("session_verify_fail", errorlog.CategoryUser)
	}

	requested := p.Topics
	if len(requested) == 0 && p.From != 0 && p.To != 0 {
		requested = []uint64{p.From, p.To}
	}
	topics := NormalizeTopics(requested)
	if len(topics) < 2 {
		return nil, errorlog.NewLangError("merge_need_more_topics", errorlog.CategoryGeneral)
	}

	rows, err := s.repos.Topics.GetMergeCandidates(topics)
	if err != nil {
		return nil, fmt.Errorf("failed to get merge candidates: %w", err)
	}
	if len(rows) < 2 {
		return nil, errorlog.NewLangError("no_topic_id", errorlog.CategoryGeneral)
	}

	var canApprove []uint64
	if s.cfg.PostModeration {
		canApprove, err = s.permissions.BoardsAllowedTo(rc, permission.ApprovePosts)
		if err != nil {
			return nil, fmt.Errorf("failed to check approval permission: %w", err)
		}
	}

	set := &mergeSet{
		byID:        make(map[uint64]*topic.MergeCandidate, len(rows)),
		boardTotals: make(map[uint64]*board.Totals),
	}
	var skipped []uint64
	for _, row := range rows {
		if _, ok := set.boardTotals[row.BoardID]; !ok {
			set.boardTotals[row.BoardID] = &board.Totals{}
		}

		if s.cfg.PostModeration && !row.Approved &&
			!permission.IsAll(canApprove) && !permission.Contains(canApprove, row.BoardID) {
			skipped = append(skipped, row.ID)
			continue
		}

		totals := set.boardTotals[row.BoardID]
		if row.Approved {
			totals.NumTopics++
			totals.NumPosts += row.NumReplies + 1
		} else {
			totals.UnapprovedTopics++
			totals.NumPosts += row.NumReplies
		}
		totals.UnapprovedPosts += row.UnapprovedPosts

		set.rows = append(set.rows, row)
		set.byID[row.ID] = row
		set.numViews += row.NumViews
		set.isSticky = set.isSticky || row.IsSticky
		if !contains(set.boards, row.BoardID) {
			set.boards = append(set.boards, row.BoardID)
		}
		if row.PollID > 0 && !contains(set.polls, row.PollID) {
			set.polls = append(set.polls, row.PollID)
		}
	}

	set.topics = make([]uint64, 0, len(set.rows))
	for _, id := range without(topics, skipped...) {
		if _, ok := set.byID[id]; ok {
			set.topics = append(set.topics, id)
		}
	}
	switch len(set.topics) {
	case 0:
		return nil, errorlog.NewLangError("no_topic_id", errorlog.CategoryGeneral)
	case 1:
		return nil, errorlog.NewLangError("merge_need_more_topics", errorlog.CategoryGeneral)
	}
	set.firstTopic = minID(set.topics)

	allowed, err := s.permissions.AllowedTo(rc, permission.MergeAny, set.boards)
	if err != nil {
		return nil, fmt.Errorf("failed to check merge permission: %w", err)
	}
	if !allowed {
		return nil, errorlog.NewLangError("cannot_merge_any", "")
	}

	mergeBoards, err := s.permissions.BoardsAllowedTo(rc, permission.MergeAny)
	if err != nil {
		return nil, fmt.Errorf("failed to check merge permission: %w", err)
	}
	if len(mergeBoards) == 0 {
		return nil, errorlog.NewLangError("cannot_merge_any", errorlog.CategoryUser)
	}

	query := append([]uint64{}, set.boards...)
	if !permission.IsAll(mergeBoards) {
		for _, id := range mergeBoards {
			if !contains(query, id) {
				query = append(query, id)
			}
		}
	}
	visible, err := s.permissions.BoardsAllowedTo(rc, permission.ViewBoard)
	if err != nil {
		return nil, fmt.Errorf("failed to check board visibility: %w", err)
	}
	set.boardsInfo, err = s.repos.Boards.FetchBoardsInfo(query, visible)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch boards info: %w", err)
	}
	for _, id := range set.boards {
		if _, ok := set.boardsInfo[id]; !ok {
			return nil, errorlog.NewLangError("no_board", errorlog.CategoryGeneral)
		}
	}

	return set, nil
}

func (s *service) Options(rc *request.Context, p ExecuteParams) (*OptionsView, error) {
	set, err := s.load(rc, p)
	if err != nil {
		return nil, err
	}

	view := &OptionsView{Token: rc.Session.Token}

	if len(set.polls) > 1 {
		summaries, err := s.repos.Polls.Summaries(set.polls)
		if err != nil {
			return nil, fmt.Errorf("failed to get poll summaries: %w", err)
		}
		for _, ps := range summaries {
			view.Polls = append(view.Polls, PollOption{
				ID:       ps.PollID,
				TopicID:  ps.TopicID,
				Question: ps.Question,
				Subject:  ps.Subject,
				Selected: ps.TopicID == set.firstTopic,
			})
		}
	}

	if len(set.boards) > 1 {
		selected := set.byID[set.firstTopic].BoardID
		for _, id := range sortedKeys(set.boardsInfo) {
			b := set.boardsInfo[id]
			view.Boards = append(view.Boards, BoardOption{
				ID:       b.ID,
				Name:     b.Name,
				Selected: b.ID == selected,
			})
		}
	}

	for _, row := range set.rows {
		view.Topics = append(view.Topics, TopicOption{
			ID:          row.ID,
			BoardID:     row.BoardID,
			Subject:     row.Subject,
			StartedID:   row.MemberStartedID,
			StartedName: row.NameStarted,
			TimeStarted: row.TimeStarted,
			UpdatedID:   row.MemberUpdatedID,
			UpdatedName: row.NameUpdated,
			TimeUpdated: row.TimeUpdated,
			Selected:    row.ID == set.firstTopic,
		})
	}
	return view, nil
}

func (s *service) Execute(rc *request.Context, p ExecuteParams) (*Result, error) {
	set, err := s.load(rc, p)
	if err != nil {
		return nil, err
	}

	targetBoard := set.boards[0]
	if len(set.boards) > 1 {
		targetBoard = p.Board
	}
	if !contains(set.boards, targetBoard) {
		return nil, errorlog.NewLangError("no_board", errorlog.CategoryGeneral)
	}

	var targetPoll uint64
	switch {
	case len(set.polls) > 1:
		if p.Poll > 0 {
			targetPoll = uint64(p.Poll)
		}
	case len(set.polls) == 1:
		targetPoll = set.polls[0]
	}
	if targetPoll > 0 && !contains(set.polls, targetPoll) {
		return nil, errorlog.NewLangError("no_access", "")
	}
	deletedPolls := without(set.polls, targetPoll)

	subject := ResolveSubject(p, set)

	buckets, err := s.repos.Messages.ApprovalBuckets(set.topics)
	if err != nil {
		return nil, fmt.Errorf("failed to get message bounds: %w", err)
	}
	bounds := ComputeBounds(buckets)

	// The surviving topic is counted back on the target board.
	if _, ok := set.boardTotals[targetBoard]; !ok {
		set.boardTotals[targetBoard] = &board.Totals{}
	}
	totals := set.boardTotals[targetBoard]
	if bounds.Approved {
		totals.NumTopics--
		totals.NumPosts -= bounds.NumReplies + 1
	} else {
		totals.UnapprovedTopics--
		totals.NumPosts -= bounds.NumReplies
	}
	totals.UnapprovedPosts -= bounds.NumUnapproved

	memberStarted, memberUpdated, err := s.repos.Messages.MembersOf(bounds.FirstMsg, bounds.LastMsg)
	if err != nil {
		return nil, fmt.Errorf("failed to get topic members: %w", err)
	}

	affected, err := s.repos.Messages.MessagesInTopics(set.topics)
	if err != nil {
		return nil, fmt.Errorf("failed to list merged messages: %w", err)
	}

	survivor := minID(set.topics)
	removed := without(set.topics, survivor)

	var enforced string
	prefix := s.responsePrefix(rc)
	if EscapeSpecialChars(strings.TrimSpace(p.EnforceSubject)) != "" {
		enforced = prefix + subject
	}
	notifications := intersect(set.topics, p.Notifications)

	err = s.dbConn.Transaction(func(tx *gorm.DB) error {
		if err := s.repos.Messages.Reassign(tx, set.topics, survivor, targetBoard, enforced); err != nil {
			return fmt.Errorf("failed to move messages: %w", err)
		}
		if err := s.repos.Messages.SetSubject(tx, bounds.FirstMsg, subject); err != nil {
			return fmt.Errorf("failed to set first message subject: %w", err)
		}
		if err := s.repos.Notifications.CarryForward(tx, notifications, removed, survivor); err != nil {
			return fmt.Errorf("failed to merge notifications: %w", err)
		}
		if err := s.repos.Topics.DeleteTopics(tx, removed); err != nil {
			return fmt.Errorf("failed to delete merged topics: %w", err)
		}
		if err := s.repos.Search.DeleteTopicSubjects(tx, removed); err != nil {
			return fmt.Errorf("failed to delete subject index: %w", err)
		}

		merged := topic.MergedTopic{
			BoardID:         targetBoard,
			MemberStartedID: memberStarted,
			MemberUpdatedID: memberUpdated,
			FirstMsgID:      bounds.FirstMsg,
			LastMsgID:       bounds.LastMsg,
			PollID:          targetPoll,
			NumReplies:      bounds.NumReplies,
			UnapprovedPosts: bounds.NumUnapproved,
			NumViews:        set.numViews,
			IsSticky:        set.isSticky,
			Approved:        bounds.Approved,
		}
		if err := s.repos.Topics.UpdateMergedTopic(tx, survivor, merged); err != nil {
			return fmt.Errorf("failed to update merged topic: %w", err)
		}

		if err := s.repos.Polls.RemovePolls(tx, deletedPolls); err != nil {
			return fmt.Errorf("failed to remove polls: %w", err)
		}

		for _, id := range sortedKeys(set.boardTotals) {
			if err := s.repos.Boards.DecrementBoard(tx, id, *set.boardTotals[id]); err != nil {
				return fmt.Errorf("failed to update board %d: %w", id, err)
			}
		}

		if _, err := s.repos.Stats.UpdateTopics(tx); err != nil {
			return fmt.Errorf("failed to update topic stats: %w", err)
		}
		if err := s.repos.Search.UpdateSubject(tx, survivor, subject); err != nil {
			return fmt.Errorf("failed to index subject: %w", err)
		}
		if err := s.repos.Boards.UpdateLastMessages(tx, set.boards); err != nil {
			return fmt.Errorf("failed to update last messages: %w", err)
		}

		extra := map[string]interface{}{"merged": removed}
		if _, err := s.repos.ModLog.LogAction(tx, rc, "merge", survivor, targetBoard, extra); err != nil {
			return fmt.Errorf("failed to log merge: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterMerge(rc, survivor, targetBoard, set, affected, enforced != "", prefix, subject)

	return &Result{
		TargetTopic:  survivor,
		TargetBoard:  targetBoard,
		Subject:      subject,
		Merged:       set.topics,
		DeletedPolls: deletedPolls,
		RedirectURL: fmt.Sprintf("%s?action=mergetopics;sa=done;to=%d;targetboard=%d",
			s.cfg.ScriptURL, survivor, targetBoard),
	}, nil
}

// afterMerge runs the steps that must not undo a committed merge.
func (s *service) afterMerge(rc *request.Context, survivor, targetBoard uint64, set *mergeSet, affected []uint64, enforced bool, prefix, subject string) {
	ctx := rc.Ctx()

	if s.notifier != nil {
		if _, err := s.notifier.SendNotifications(rc, survivor, "merge"); err != nil {
			s.logger.Warnw("Failed to send merge notifications", "topic_id", survivor, "error", err)
		}
	}

	if s.indexer != nil {
		var override *search.SubjectOverride
		if enforced {
			override = &search.SubjectOverride{Prefix: prefix, Subject: subject}
		}
		if err := s.indexer.TopicMerge(ctx, survivor, set.topics, affected, override); err != nil {
			s.logger.Warnw("Failed to update search index", "topic_id", survivor, "error", err)
		}
	}

	if s.eventBus != nil {
		payload := map[string]interface{}{
			"topic_id": survivor,
			"board_id": targetBoard,
			"merged":   set.topics,
		}
		if !s.eventBus.Publish(utils.EventTopicMerged, payload) {
			s.logger.Warnw("Event bus full, dropped merge event", "topic_id", survivor)
		}
	}

	if s.topicSvc != nil {
		s.topicSvc.InvalidateTopicsCache(ctx, set.boards...)
	}
	if s.messageSvc != nil {
		s.messageSvc.InvalidateMessagesCache(ctx, set.topics...)
	}

	s.logger.Infow("Topics merged",
		"topic_id", survivor,
		"board_id", targetBoard,
		"merged", set.topics,
		"member_id", rc.Member.ID,
	)
}

// responsePrefix is the reply prefix of the forum default language.
func (s *service) responsePrefix(rc *request.Context) string {
	ctx := rc.Ctx()
	if s.cache != nil {
		if prefix, ok := s.cache.GetData(ctx, responsePrefixKey); ok {
			return prefix
		}
	}
	prefix := s.bundle.Get(s.cfg.DefaultLanguage, responsePrefixKey)
	if s.cache != nil {
		s.cache.PutData(ctx, responsePrefixKey, prefix, responsePrefixTTL)
	}
	return prefix
}

// AsLangError unwraps the language error a merge step failed with.
func AsLangError(err error) (*errorlog.LangError, bool) {
	var le *errorlog.LangError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}
