package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"anoa.com/bragboard/internal/config"
	"anoa.com/bragboard/internal/jobs"
	"anoa.com/bragboard/internal/middleware"
	adminHttp "anoa.com/bragboard/internal/modules/admin/delivery/http"
	adminRepo "anoa.com/bragboard/internal/modules/admin/repository"
	adminService "anoa.com/bragboard/internal/modules/admin/service"
	attachmentHttp "anoa.com/bragboard/internal/modules/attachment/delivery/http"
	attachmentService "anoa.com/bragboard/internal/modules/attachment/service"
	commentHttp "anoa.com/bragboard/internal/modules/comment/delivery/http"
	commentRepo "anoa.com/bragboard/internal/modules/comment/repository"
	commentService "anoa.com/bragboard/internal/modules/comment/service"
	feedHttp "anoa.com/bragboard/internal/modules/feed/delivery/http"
	feedService "anoa.com/bragboard/internal/modules/feed/service"
	leaderboardHttp "anoa.com/bragboard/internal/modules/leaderboard/delivery/http"
	leaderboardRepo "anoa.com/bragboard/internal/modules/leaderboard/repository"
	leaderboardService "anoa.com/bragboard/internal/modules/leaderboard/service"
	ledgerRepo "anoa.com/bragboard/internal/modules/ledger/repository"
	ledgerService "anoa.com/bragboard/internal/modules/ledger/service"
	notiHttp "anoa.com/bragboard/internal/modules/notification/delivery/http"
	notifRepo "anoa.com/bragboard/internal/modules/notification/repository"
	notifService "anoa.com/bragboard/internal/modules/notification/service"
	profileHttp "anoa.com/bragboard/internal/modules/profile/delivery/http"
	profileService "anoa.com/bragboard/internal/modules/profile/service"
	reactionHttp "anoa.com/bragboard/internal/modules/reaction/delivery/http"
	reactionRepo "anoa.com/bragboard/internal/modules/reaction/repository"
	reactionService "anoa.com/bragboard/internal/modules/reaction/service"
	reportHttp "anoa.com/bragboard/internal/modules/report/delivery/http"
	reportRepo "anoa.com/bragboard/internal/modules/report/repository"
	reportService "anoa.com/bragboard/internal/modules/report/service"
	searchHttp "anoa.com/bragboard/internal/modules/search/delivery/http"
	searchService "anoa.com/bragboard/internal/modules/search/service"
	shoutoutHttp "anoa.com/bragboard/internal/modules/shoutout/delivery/http"
	shoutoutRepo "anoa.com/bragboard/internal/modules/shoutout/repository"
	shoutoutService "anoa.com/bragboard/internal/modules/shoutout/service"
	userHttp "anoa.com/bragboard/internal/modules/user/delivery/http"
	userRepo "anoa.com/bragboard/internal/modules/user/repository"
	userService "anoa.com/bragboard/internal/modules/user/service"
	"anoa.com/bragboard/pkg/apperror"
	"anoa.com/bragboard/pkg/logger"
	"anoa.com/bragboard/pkg/ratelimiter"
	"anoa.com/bragboard/pkg/response"
	"anoa.com/bragboard/pkg/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the external clients the server runs against. Redis, Meili and
// Images may be nil; the features that need them are then disabled.
type Deps struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Meili  meilisearch.ServiceManager
	Images storage.ImageStorage
}

type Server struct {
	engine    *gin.Engine
	scheduler *jobs.Scheduler
	logger    *zap.Logger
}

func NewServer(cfg *config.Config, deps Deps, log *zap.Logger) (*Server, error) {
	db := deps.DB
	origins := splitOrigins(cfg.AllowedOrigins)
	limiter := ratelimiter.New(deps.Redis)

	// Ledger first: every store appends to it inside its own transaction.
	lRepo := ledgerRepo.NewLedgerRepository(db)
	ledgerSvc := ledgerService.NewLedgerService(lRepo, log)

	usersRepo := userRepo.NewUserRepository(db)

	var searchSvc searchService.SearchService
	if deps.Meili != nil {
		searchSvc = searchService.NewSearchService(deps.Meili, usersRepo, log)
	}

	google := userService.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL, cfg.GoogleAllowedDomain)
	authSvc := userService.NewAuthService(usersRepo, cfg.JWTSecret, cfg.JWTTTL, searchSvc, google, log)
	userSvc := userService.NewUserService(usersRepo)
	authHandler := userHttp.NewAuthHandler(authSvc, cfg.FrontendURL)
	userHandler := userHttp.NewUserHandler(userSvc)

	shoutoutsRepo := shoutoutRepo.NewShoutoutRepository(db, lRepo)
	shoutoutSvc := shoutoutService.NewShoutoutService(
		shoutoutsRepo,
		usersRepo,
		ledgerSvc,
		limiter,
		shoutoutService.RateLimits{Global: cfg.RateLimitGlobal, Post: cfg.RateLimitPost},
		searchSvc,
		deps.Images,
		log,
	)
	shoutoutHandler := shoutoutHttp.NewShoutoutHandler(shoutoutSvc)

	reactionSvc := reactionService.NewReactionService(reactionRepo.NewReactionRepository(db, lRepo), ledgerSvc, log)
	reactionHandler := reactionHttp.NewReactionHandler(reactionSvc)

	commentsRepo := commentRepo.NewCommentRepository(db, lRepo)
	commentSvc := commentService.NewCommentService(commentsRepo, ledgerSvc, limiter, commentService.Options{
		MaxLength: cfg.CommentMaxLength,
		Cooldown:  cfg.RateLimitComment,
	}, log)
	commentHandler := commentHttp.NewCommentHandler(commentSvc)

	feedSvc := feedService.NewFeedService(shoutoutsRepo, reactionSvc, commentSvc, cfg.FeedTimezone)
	feedHandler := feedHttp.NewFeedHandler(feedSvc)

	leaderboardSvc := leaderboardService.NewLeaderboardService(leaderboardRepo.NewLeaderboardRepository(db), ledgerSvc, cfg.Weights, log)
	leaderboardHandler := leaderboardHttp.NewLeaderboardHandler(leaderboardSvc)
	profileHandler := profileHttp.NewProfileHandler(profileService.NewProfileService(usersRepo, leaderboardSvc, deps.Images, log))

	reportSvc := reportService.NewReportService(reportRepo.NewReportRepository(db), shoutoutsRepo, commentsRepo, shoutoutSvc, commentSvc, log)
	reportHandler := reportHttp.NewReportHandler(reportSvc)

	notificationSvc := notifService.NewNotificationService(notifRepo.NewNotificationRepository(db), deps.Redis, log)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, deps.Redis, origins, log)
	ledgerSvc.Subscribe(notificationSvc)

	attachmentHandler := attachmentHttp.NewAttachmentHandler(attachmentService.NewAttachmentService(deps.Images, log))
	adminHandler := adminHttp.NewAdminHandler(adminService.NewAdminService(adminRepo.NewAdminRepository(db)))

	scheduler := jobs.NewScheduler(cfg.JobTimeout, log)
	if err := scheduler.Register(notifService.NewCleanupJob(notificationSvc, cfg.NotificationCleanupCron, cfg.NotificationRetention)); err != nil {
		return nil, fmt.Errorf("invalid NOTIFICATION_CLEANUP_CRON: %w", err)
	}

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	setupCORS(router, origins)

	router.Use(gin.Recovery())
	router.Use(logger.GinLogger(log, "/health", "/metrics"))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authMiddleware := middleware.NewAuthMiddleware(usersRepo, cfg.JWTSecret)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/google", authHandler.GoogleLogin)
		auth.GET("/google/callback", authHandler.GoogleCallback)
	}

	api.GET("/notifications/ws", authMiddleware.RequireAuthWS(), notificationHandler.Stream)

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.GET("/users", userHandler.List)
		protected.GET("/users/me", userHandler.Me)
		protected.GET("/users/departments", userHandler.Departments)
		protected.PUT("/users/me", profileHandler.UpdateProfile)
		protected.GET("/users/:id", profileHandler.GetProfile)

		protected.POST("/posts", shoutoutHandler.Create)
		protected.GET("/posts", feedHandler.List)
		protected.GET("/posts/:id", shoutoutHandler.Get)
		protected.PUT("/posts/:id", shoutoutHandler.Update)
		protected.DELETE("/posts/:id", shoutoutHandler.Delete)

		protected.POST("/posts/:id/react", reactionHandler.React)
		protected.DELETE("/posts/:id/react", reactionHandler.Unreact)
		protected.GET("/posts/:id/reactions", reactionHandler.GetReactions)

		protected.POST("/posts/:id/comments", commentHandler.Create)
		protected.GET("/posts/:id/comments", commentHandler.List)
		protected.DELETE("/comments/:id", commentHandler.Delete)

		protected.GET("/leaderboard/global", leaderboardHandler.Global)
		protected.GET("/leaderboard/department", leaderboardHandler.Department)
		protected.GET("/leaderboard/me", leaderboardHandler.Me)

		protected.POST("/reports", reportHandler.Create)

		protected.GET("/notifications", notificationHandler.List)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)

		protected.POST("/upload", attachmentHandler.UploadAttachment)
		if searchSvc != nil {
			protected.GET("/search/token", searchHttp.NewSearchHandler(searchSvc).Token)
		} else {
			protected.GET("/search/token", func(c *gin.Context) {
				response.ResponseError(c, fmt.Errorf("%w: search is not configured", apperror.ErrUnavailable))
			})
		}

		adminGroup := protected.Group("")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.GET("/reports", reportHandler.ListPending)
			adminGroup.DELETE("/reports/:id", reportHandler.Dismiss)
			adminGroup.POST("/reports/:id/delete-content", reportHandler.DeleteContent)
			adminGroup.GET("/admin/stats", adminHandler.Stats)
			adminGroup.PUT("/users/:id/role", adminHandler.UpdateRole)
		}
	}

	return &Server{
		engine:    router,
		scheduler: scheduler,
		logger:    log.Named("server"),
	}, nil
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves addr until ctx is cancelled, then drains requests and
// scheduled jobs for at most shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.scheduler.Start()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server started", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.scheduler.Stop(shutdownCtx)
	return srv.Shutdown(shutdownCtx)
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return origins
}

func setupCORS(router *gin.Engine, origins []string) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
