package app

import (
	"context"

	"github.com/live627/elkarte.net/internal/app/board"
	"github.com/live627/elkarte.net/internal/app/errorlog"
	"github.com/live627/elkarte.net/internal/app/health"
	"github.com/live627/elkarte.net/internal/app/member"
	"github.com/live627/elkarte.net/internal/app/merge"
	"github.com/live627/elkarte.net/internal/app/message"
	"github.com/live627/elkarte.net/internal/app/modlog"
	"github.com/live627/elkarte.net/internal/app/notification"
	"github.com/live627/elkarte.net/internal/app/permission"
	"github.com/live627/elkarte.net/internal/app/poll"
	"github.com/live627/elkarte.net/internal/app/search"
	"github.com/live627/elkarte.net/internal/app/session"
	"github.com/live627/elkarte.net/internal/app/stats"
	"github.com/live627/elkarte.net/internal/app/topic"
	"github.com/live627/elkarte.net/internal/config"
	"github.com/live627/elkarte.net/internal/db"
	"github.com/live627/elkarte.net/internal/gateways/websocket"
	"github.com/live627/elkarte.net/internal/lang"
	"github.com/live627/elkarte.net/internal/middleware"
	"github.com/live627/elkarte.net/internal/providers/mail"
	"github.com/live627/elkarte.net/internal/providers/minio"
	"github.com/live627/elkarte.net/internal/providers/redis"
	"github.com/live627/elkarte.net/internal/request"
	"github.com/live627/elkarte.net/internal/router"
	"github.com/live627/elkarte.net/internal/theme"
	"github.com/live627/elkarte.net/internal/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Application struct {
	Router *router.Router
	DB     *gorm.DB
	Hub    *websocket.Hub
	Redis  *redis.RedisProvider
	// Minio is nil when object storage could not be reached at startup.
	Minio *minio.MinioProvider
}

func Bootstrap(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Application, error) {
	dbConn, err := db.Connect(cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(dbConn, logger); err != nil {
		return nil, err
	}

	bundle, err := lang.Load(cfg.DefaultLanguage)
	if err != nil {
		return nil, err
	}
	renderer, err := theme.New(bundle)
	if err != nil {
		return nil, err
	}

	redisProvider := redis.NewRedisProvider(cfg.RedisURL, logger, cfg.RedisTTL)

	var archiveStore errorlog.ObjectStore
	minioProvider, err := minio.NewMinioProvider(ctx, cfg, logger)
	if err != nil {
		logger.Warn("Failed to initialize MinIO provider, error log archiving disabled", zap.Error(err))
		minioProvider = nil
	} else {
		archiveStore = minioProvider
	}

	eventBus := utils.NewEventBus()
	mailer := mail.NewSMTPSender(cfg, logger)

	memberRepo := member.NewRepository(dbConn)
	sessionRepo := session.NewRepository(dbConn)
	boardRepo := board.NewRepository(dbConn)
	topicRepo := topic.NewRepository(dbConn)
	messageRepo := message.NewRepository(dbConn)
	pollRepo := poll.NewRepository(dbConn)
	notificationRepo := notification.NewRepository(dbConn)
	permissionRepo := permission.NewRepository(dbConn)
	searchRepo := search.NewRepository(dbConn)
	statsRepo := stats.NewRepository(dbConn)
	modlogRepo := modlog.NewRepository(dbConn)
	errorRepo := errorlog.NewRepository(dbConn)

	sessionService := session.NewService(sessionRepo, memberRepo, redisProvider)
	permissionService := permission.NewService(permissionRepo)
	notificationService := notification.NewService(notificationRepo, eventBus, logger)
	boardService := board.NewService(boardRepo)
	topicService := topic.NewService(topicRepo, redisProvider, logger)
	messageService := message.NewService(messageRepo, redisProvider, logger)
	errorService := errorlog.NewService(errorRepo, archiveStore, logger)

	reporter := errorlog.NewReporter(errorRepo, cfg, bundle, renderer, logger)
	reporter.OnOutputError(func(rc *request.Context, message, category string, level errorlog.Level, file string, line int) {
		logger.Warn("Runtime error reported",
			zap.String("message", message),
			zap.String("category", category),
			zap.String("level", level.String()),
			zap.String("file", file),
			zap.Int("line", line),
			zap.Uint64("member_id", rc.Member.ID),
		)
	})

	mergeService := merge.NewService(
		dbConn,
		merge.Repositories{
			Topics:        topicRepo,
			Messages:      messageRepo,
			Boards:        boardRepo,
			Polls:         pollRepo,
			Notifications: notificationRepo,
			Search:        searchRepo,
			Stats:         statsRepo,
			ModLog:        modlogRepo,
		},
		permissionService,
		sessionService,
		notificationService,
		search.FindSearchAPI(cfg.SearchAPI, dbConn),
		topicService,
		messageService,
		eventBus,
		redisProvider,
		bundle,
		cfg,
		logger,
	)

	hub := websocket.NewHub(eventBus.SubscribeCh(), sessionService, logger)

	checker := &utils.HealthChecker{
		DB:    dbConn,
		Redis: redisProvider,
	}
	dbErrorPage := errorlog.NewDBErrorPage(cfg, redisProvider, mailer, logger)

	r := router.NewRouter(cfg, logger, sessionService, reporter,
		middleware.MaintenanceGate(cfg),
		middleware.LoadAvgGate(cfg, middleware.ReadLoadAvg),
		middleware.DatabaseGate(checker, dbErrorPage),
	)

	r.RegisterMergeActions(merge.NewHandler(mergeService, renderer, reporter, bundle))
	r.RegisterHealthRoutes(health.NewHandler(health.NewService(checker)))
	r.RegisterWebSocketRoutes(hub)
	r.RegisterBoardRoutes(board.NewHandler(boardService))
	r.RegisterSessionRoutes(session.NewHandler(sessionService, memberRepo))
	r.RegisterTopicRoutes(topic.NewHandler(topicService))
	r.RegisterMessageRoutes(message.NewHandler(messageService))
	r.RegisterErrorLogRoutes(errorlog.NewHandler(errorService))

	return &Application{
		Router: r,
		DB:     dbConn,
		Hub:    hub,
		Redis:  redisProvider,
		Minio:  minioProvider,
	}, nil
}
