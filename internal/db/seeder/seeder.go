package seeder

import (
	"fmt"
	"time"

	"github.com/live627/elkarte.net/internal/app/board"
	"github.com/live627/elkarte.net/internal/app/member"
	"github.com/live627/elkarte.net/internal/app/message"
	"github.com/live627/elkarte.net/internal/app/permission"
	"github.com/live627/elkarte.net/internal/app/session"
	"github.com/live627/elkarte.net/internal/app/stats"
	"github.com/live627/elkarte.net/internal/app/topic"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Seeder struct {
	db         *gorm.DB
	sessionSvc session.Service
	statsRepo  stats.Repository
	logger     *zap.Logger
}

func NewSeeder(db *gorm.DB, sessionSvc session.Service, statsRepo stats.Repository, logger *zap.Logger) *Seeder {
	return &Seeder{
		db:         db,
		sessionSvc: sessionSvc,
		statsRepo:  statsRepo,
		logger:     logger,
	}
}

func (s *Seeder) Seed() error {
	s.logger.Info("Running database seeders...")

	if err := s.seedBoards(); err != nil {
		return err
	}
	if err := s.seedMembers(); err != nil {
		return err
	}
	if err := s.seedPermissions(); err != nil {
		return err
	}
	if err := s.seedWelcomeTopic(); err != nil {
		return err
	}
	if err := s.seedStats(); err != nil {
		return err
	}

	s.logger.Info("Database seeders completed successfully")
	return nil
}

func (s *Seeder) seedBoards() error {
	var count int64
	s.db.Model(&board.Board{}).Count(&count)
	if count > 0 {
		s.logger.Info("Boards already exist, skipping seed")
		return nil
	}

	category := board.Category{Name: "General Category"}
	if err := s.db.Create(&category).Error; err != nil {
		return fmt.Errorf("failed to seed category: %w", err)
	}

	boards := []board.Board{
		{CategoryID: category.ID, Slug: "general", Name: "General Discussion", Description: ptr("Feel free to talk about anything")},
		{CategoryID: category.ID, Slug: "support", Name: "Support", Description: ptr("Questions and answers")},
		{CategoryID: category.ID, Slug: "offtopic", Name: "Off-topic", Description: ptr("Everything else")},
		{CategoryID: category.ID, Slug: "site", Name: "Project Site", Redirect: "https://www.elkarte.net"},
	}

	if err := s.db.Create(&boards).Error; err != nil {
		return fmt.Errorf("failed to seed boards: %w", err)
	}

	s.logger.Info("Seeded boards", zap.Int("count", len(boards)))
	return nil
}

func (s *Seeder) seedMembers() error {
	var count int64
	s.db.Model(&member.Member{}).Count(&count)
	if count > 0 {
		s.logger.Info("Members already exist, skipping seed")
		return nil
	}

	members := []member.Member{
		{MemberName: "admin", RealName: "Administrator", GroupID: member.GroupAdmin},
		{MemberName: "moderator", RealName: "Global Moderator", GroupID: member.GroupModerator},
		{MemberName: "member", RealName: "Regular Member", GroupID: member.GroupMember},
	}
	if err := s.db.Create(&members).Error; err != nil {
		return fmt.Errorf("failed to seed members: %w", err)
	}

	for _, m := range members {
		sess, err := s.sessionSvc.CreateSession(m.ID, "seeder", "127.0.0.1")
		if err != nil {
			return fmt.Errorf("failed to create session for %s: %w", m.MemberName, err)
		}
		s.logger.Info("Seeded member",
			zap.String("member", m.MemberName),
			zap.String("session_key", sess.SessionKey),
		)
	}
	return nil
}

func (s *Seeder) seedPermissions() error {
	var count int64
	s.db.Model(&permission.BoardPermission{}).Count(&count)
	if count > 0 {
		return nil
	}

	grants := []permission.BoardPermission{
		{GroupID: member.GroupGuest, BoardID: 0, Permission: permission.ViewBoard},
		{GroupID: member.GroupMember, BoardID: 0, Permission: permission.ViewBoard},
		{GroupID: member.GroupModerator, BoardID: 0, Permission: permission.ViewBoard},
		{GroupID: member.GroupModerator, BoardID: 0, Permission: permission.MergeAny},
		{GroupID: member.GroupModerator, BoardID: 0, Permission: permission.ApprovePosts},
	}
	if err := s.db.Create(&grants).Error; err != nil {
		return fmt.Errorf("failed to seed permissions: %w", err)
	}

	s.logger.Info("Seeded permissions", zap.Int("count", len(grants)))
	return nil
}

func (s *Seeder) seedWelcomeTopic() error {
	var count int64
	s.db.Model(&topic.Topic{}).Count(&count)
	if count > 0 {
		return nil
	}

	var general board.Board
	if err := s.db.Where("slug = ?", "general").First(&general).Error; err != nil {
		return fmt.Errorf("failed to find general board: %w", err)
	}
	var admin member.Member
	if err := s.db.Where("member_name = ?", "admin").First(&admin).Error; err != nil {
		return fmt.Errorf("failed to find admin: %w", err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		t := topic.Topic{
			BoardID:         general.ID,
			MemberStartedID: admin.ID,
			MemberUpdatedID: admin.ID,
			Approved:        true,
		}
		if err := tx.Create(&t).Error; err != nil {
			return fmt.Errorf("failed to seed topic: %w", err)
		}

		msg := message.Message{
			TopicID:    t.ID,
			BoardID:    general.ID,
			MemberID:   admin.ID,
			PosterName: admin.RealName,
			Subject:    "Welcome to ElkArte!",
			Body:       "Welcome to your new forum.",
			PosterTime: time.Now().Unix(),
			Approved:   true,
		}
		if err := tx.Create(&msg).Error; err != nil {
			return fmt.Errorf("failed to seed message: %w", err)
		}

		if err := tx.Model(&t).Updates(map[string]interface{}{
			"first_msg_id": msg.ID,
			"last_msg_id":  msg.ID,
		}).Error; err != nil {
			return fmt.Errorf("failed to link topic messages: %w", err)
		}

		return tx.Model(&general).Updates(map[string]interface{}{
			"num_topics":  gorm.Expr("num_topics + 1"),
			"num_posts":   gorm.Expr("num_posts + 1"),
			"last_msg_id": msg.ID,
		}).Error
	})
}

func (s *Seeder) seedStats() error {
	topics, err := s.statsRepo.UpdateTopics(s.db)
	if err != nil {
		return fmt.Errorf("failed to update topic stats: %w", err)
	}
	maxMsg, err := s.statsRepo.UpdateMaxMsgID(s.db)
	if err != nil {
		return fmt.Errorf("failed to update max message id: %w", err)
	}
	s.logger.Info("Statistics updated", zap.Int64("topics", topics), zap.Uint64("max_msg_id", maxMsg))
	return nil
}

func ptr(s string) *string {
	return &s
}
