package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gamify_toolkit/internal/controller"
	"gamify_toolkit/internal/middleware"
	"gamify_toolkit/internal/model"
	"gamify_toolkit/internal/repository"
	"gamify_toolkit/internal/router"
	"gamify_toolkit/internal/service"
	"gamify_toolkit/internal/task"
	"gamify_toolkit/pkg/database"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func main() {
	// 1. 初始化数据库
	db := initDatabase()

	// 2. 初始化依赖
	deps := initDependencies(db)

	// 3. 启动定时任务
	taskManager := initTasks(deps)
	defer taskManager.Stop()

	// 4. 初始化路由
	r := gin.Default()
	router.InitRoutes(r,
		deps.Controllers.Storefront,
		deps.Controllers.Layout,
		deps.Controllers.Game,
		deps.Controllers.Settings,
		deps.Controllers.Stats,
	)

	// 5. 启动服务
	startServer(r)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *Controllers
}

// Repositories 仓库集合
type Repositories struct {
	Layout    repository.InputLayoutRepository
	Game      repository.GameRepository
	Settings  repository.AppSettingsRepository
	Analytics repository.GameAnalyticsRepository
}

// Services 服务集合
type Services struct {
	Layout   *service.LayoutService
	Game     *service.GameService
	Settings *service.SettingsService
	Tracking *service.TrackingService
	Stats    *service.StatsService
	Storage  service.StorageProvider
}

// Controllers 控制器集合
type Controllers struct {
	Storefront *controller.StorefrontController
	Layout     *controller.LayoutController
	Game       *controller.GameController
	Settings   *controller.SettingsController
	Stats      *controller.StatsController
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
// game_analytics 是分区表，走 SQL 建表；其余模型 AutoMigrate
func initDatabase() *gorm.DB {
	dsn := getEnv("DATABASE_URL",
		"host=localhost user=postgres password=postgres dbname=gamify port=5432 sslmode=disable")

	db := database.InitDB(dsn)

	if err := database.QuickInit(db, []interface{}{
		&model.InputLayout{},
		&model.Game{},
		&model.AppSettings{},
	}, model.DefaultUniqueIndexSQL); err != nil {
		log.Fatalf("数据库初始化失败: %v", err)
	}

	return db
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB) *Dependencies {
	// -------- 会话配置 --------
	if secret := getEnv("SESSION_SECRET", ""); secret != "" {
		cfg := middleware.DefaultJWTConfig()
		cfg.SecretKey = secret
		middleware.SetJWTConfig(cfg)
	}

	// -------- Repo 层 --------
	repos := &Repositories{
		Layout:    repository.NewInputLayoutRepository(db),
		Game:      repository.NewGameRepository(db),
		Settings:  repository.NewAppSettingsRepository(db),
		Analytics: repository.NewGameAnalyticsRepository(db),
	}

	// -------- 存储服务 --------
	storage := initStorage()

	// -------- 业务服务 --------
	services := &Services{
		Layout:   service.NewLayoutService(repos.Layout),
		Game:     service.NewGameService(repos.Game),
		Settings: service.NewSettingsService(repos.Settings),
		Storage:  storage,
	}
	services.Tracking = service.NewTrackingService(services.Settings, repos.Analytics)
	services.Stats = service.NewStatsService(repos.Game, repos.Analytics)

	// -------- Controller 层 --------
	controllers := &Controllers{
		Storefront: controller.NewStorefrontController(services.Layout, services.Tracking),
		Layout:     controller.NewLayoutController(services.Layout),
		Game:       controller.NewGameController(services.Game, storage),
		Settings:   controller.NewSettingsController(services.Settings),
		Stats:      controller.NewStatsController(services.Stats),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
	}
}

// initStorage 初始化缩略图存储
func initStorage() service.StorageProvider {
	storage, err := service.NewStorageProvider(&service.StorageConfig{
		Provider:  getEnv("STORAGE_PROVIDER", "local"),
		Bucket:    getEnv("AWS_BUCKET", ""),
		Region:    getEnv("AWS_REGION", ""),
		AccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		Endpoint:  getEnv("S3_ENDPOINT", ""),
		CDNDomain: getEnv("AWS_CDN_DOMAIN", ""),
		BasePath:  getEnv("STORAGE_BASE_PATH", "gamify"),
		BaseURL:   getEnv("STORAGE_BASE_URL", ""),
	})
	if err != nil {
		log.Fatalf("存储服务初始化失败: %v", err)
	}
	return storage
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务
func initTasks(deps *Dependencies) *task.TaskManager {
	// 业务任务：统计快照 + 嵌入巡检
	tm := task.NewTaskManager(&task.TaskManagerDeps{
		GameRepo:      deps.Repos.Game,
		AnalyticsRepo: deps.Repos.Analytics,
		GameService:   deps.Services.Game,
	}, nil)
	tm.Start()

	// 基础设施任务：分区维护
	if init := database.Global(); init != nil {
		partitionTask := database.NewPartitionTask(init.GetManager())
		partitionTask.Start()
	}

	log.Println("定时任务已启动")
	return tm
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine) {
	port := getEnv("SERVER_PORT", "8080")

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 优雅关闭，最多等待 30 秒
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}

// ==================== 工具函数 ====================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
