package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cryptoseven_backend/internal/config"
	"cryptoseven_backend/internal/controller"
	"cryptoseven_backend/internal/repository"
	"cryptoseven_backend/internal/service"
	"cryptoseven_backend/pkg/database"
	"cryptoseven_backend/pkg/logger"
	"cryptoseven_backend/pkg/monitoring"
	"cryptoseven_backend/pkg/security"
	"cryptoseven_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user        *repository.UserRepository
	checkin     *repository.CheckinRepository
	course      *repository.CourseRepository
	module      *repository.ModuleRepository
	progress    *repository.ProgressRepository
	quiz        *repository.QuizRepository
	ctf         *repository.CTFRepository
	leaderboard *repository.LeaderboardRepository
	forum       *repository.ForumRepository
	referral    *repository.ReferralRepository
}

type services struct {
	storage     *service.StorageService
	auth        *service.AuthService
	user        *service.UserService
	course      *service.CourseService
	quiz        *service.QuizService
	ctf         *service.CTFService
	leaderboard *service.LeaderboardService
	forum       *service.ForumService
	referral    *service.ReferralService
}

type controllers struct {
	auth        *controller.AuthController
	user        *controller.UserController
	course      *controller.CourseController
	quiz        *controller.QuizController
	ctf         *controller.CTFController
	leaderboard *controller.LeaderboardController
	forum       *controller.ForumController
	referral    *controller.ReferralController
	upload      *controller.UploadController
	health      *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig 配置热更新入口：只替换运行期可安全变更的部分，
// 端口、数据库连接这类需要重启的配置不动
func (a *App) ApplyConfig(cfg *config.Config) {
	a.Config.Course = cfg.Course
	a.Config.Referral = cfg.Referral
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
	logger.Log.Info("配置热更新完成",
		zap.Float64("completion_buffer_minutes", cfg.Course.CompletionBufferMinutes))
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:        repository.NewUserRepository(db),
		checkin:     repository.NewCheckinRepository(db),
		course:      repository.NewCourseRepository(db),
		module:      repository.NewModuleRepository(db),
		progress:    repository.NewProgressRepository(db),
		quiz:        repository.NewQuizRepository(db),
		ctf:         repository.NewCTFRepository(db),
		leaderboard: repository.NewLeaderboardRepository(db),
		forum:       repository.NewForumRepository(db),
		referral:    repository.NewReferralRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, repos.checkin, repos.referral, cfg)
	s.user = service.NewUserService(repos.user, repos.checkin)
	s.leaderboard = service.NewLeaderboardService(repos.leaderboard, repos.user, repos.ctf, rdb)
	s.course = service.NewCourseService(repos.course, repos.module, repos.progress, repos.user, s.leaderboard, cfg)
	s.quiz = service.NewQuizService(repos.quiz, repos.user, s.leaderboard)
	s.ctf = service.NewCTFService(repos.ctf, repos.user, repos.leaderboard, s.leaderboard)
	s.forum = service.NewForumService(repos.forum, repos.user, rdb)
	s.referral = service.NewReferralService(repos.referral, repos.user, s.leaderboard, cfg)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:        controller.NewAuthController(s.auth),
		user:        controller.NewUserController(s.user, s.storage),
		course:      controller.NewCourseController(s.course),
		quiz:        controller.NewQuizController(s.quiz),
		ctf:         controller.NewCTFController(s.ctf),
		leaderboard: controller.NewLeaderboardController(s.leaderboard),
		forum:       controller.NewForumController(s.forum),
		referral:    controller.NewReferralController(s.referral),
		upload:      controller.NewUploadController(s.storage),
		health:      controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks 周期任务：赛事状态推进 + 排行榜缓存对账
func (a *App) startBackgroundTasks(s *services) {
	go func() {
		ticker := time.NewTicker(time.Minute)
		for range ticker.C {
			if err := s.ctf.SyncEventStatuses(); err != nil {
				logger.Log.Error("赛事状态推进失败", zap.Error(err))
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		for range ticker.C {
			if err := s.leaderboard.Rebuild(); err != nil {
				logger.Log.Error("排行榜对账失败", zap.Error(err))
			}
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("cryptoseven-platform", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
			}
		}()
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	// 启动时先做一轮榜单预热
	if err := services.leaderboard.Rebuild(); err != nil {
		logger.Log.Warn("排行榜预热失败", zap.Error(err))
	}

	app.startBackgroundTasks(services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
