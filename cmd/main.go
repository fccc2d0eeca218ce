package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "itam/docs"
	"itam/pkg/assets"
	"itam/pkg/auth"
	"itam/pkg/cache"
	"itam/pkg/catalog"
	"itam/pkg/config"
	"itam/pkg/db"
	"itam/pkg/employees"
	"itam/pkg/events"
	"itam/pkg/logger"
	"itam/pkg/notify"
	"itam/pkg/repairs"
	"itam/pkg/sendemail"
	"itam/pkg/summary"
	"itam/pkg/warranty"
)

// @title           IT Asset Management API
// @version         1.0
// @description     REST backend for the internal IT asset tracker - assets, assignments, repairs and reports

// @BasePath  /

// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load(os.Getenv("ITAM_CONFIG"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	appLog := logger.New(cfg.Log)

	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.Database, appLog)
	if err != nil {
		appLog.WithError(err).Fatal("Database connection failed")
	}
	defer pool.Close()

	cacheClient, err := cache.New(ctx, cfg.Redis)
	if err != nil {
		appLog.WithError(err).Fatal("Redis connection failed")
	}
	defer cacheClient.Close()
	if cacheClient == nil {
		appLog.Info("Redis not configured, catalog caching disabled")
	}

	emailService := sendemail.NewEmailService(cfg.Mail, appLog)

	tokens := auth.NewTokenManager(cfg.JWT)
	authRepo := auth.NewPostgresAuthRepository(pool)
	authService := auth.NewAuthService(authRepo, tokens, logger.Component(appLog, "auth"))
	authHandler := auth.NewAuthHandler(authService, !cfg.IsDebug(), cfg.JWT.RefreshTokenExpire)
	requireAuth := auth.RequireAuth(authService)

	hub := events.NewHub(logger.Component(appLog, "events"))
	eventsHandler := events.NewEventHandler(hub, authService, logger.Component(appLog, "events"))

	employeesRepo := employees.NewPostgresEmployeeRepository(pool)
	employeesService := employees.NewEmployeeService(employeesRepo, logger.Component(appLog, "employees"))
	employeesHandler := employees.NewEmployeeHandler(employeesService)

	notifier := notify.NewService(employeesRepo, emailService, logger.Component(appLog, "notify"))

	catalogRepo := catalog.NewPostgresCatalogRepository(pool)
	catalogService := catalog.NewCatalogService(catalogRepo, cacheClient, logger.Component(appLog, "catalog"))
	catalogHandler := catalog.NewCatalogHandler(catalogService)

	assetsRepo := assets.NewPostgresAssetRepository(pool)
	assetsService := assets.NewAssetService(assetsRepo, hub, notifier, logger.Component(appLog, "assets"))
	storage, err := assets.NewLocalStorage(cfg.Uploads.Dir)
	if err != nil {
		appLog.WithError(err).Fatal("Upload storage setup failed")
	}
	assetsHandler := assets.NewAssetHandler(assetsService, storage)

	repairsRepo := repairs.NewPostgresRepairRepository(pool)
	repairsService := repairs.NewRepairService(repairsRepo, hub, logger.Component(appLog, "repairs"))
	repairsHandler := repairs.NewRepairHandler(repairsService)

	summaryRepo := summary.NewPostgresSummaryRepository(pool)
	summaryService := summary.NewSummaryService(summaryRepo, logger.Component(appLog, "summary"))
	summaryHandler := summary.NewSummaryHandler(summaryService)

	warrantyRepo := warranty.NewPostgresWarrantyRepository(pool)
	watcher := warranty.NewWatcher(warrantyRepo, notifier, cfg.Warranty, logger.Component(appLog, "warranty"))
	if err := watcher.Start(); err != nil {
		appLog.WithError(err).Fatal("Warranty watcher failed to start")
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.MaxMultipartMemory = cfg.Uploads.MaxSizeMB << 20

	// The refresh token travels as a cookie, which rules out wildcard
	// origins; credentials only work against an explicit origin list.
	allowCreds := true
	for _, origin := range cfg.CORS.AllowOrigins {
		if origin == "*" {
			allowCreds = false
		}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: allowCreds,
		MaxAge:           12 * time.Hour,
	}))

	authHandler.RegisterRoutes(router)
	employeesHandler.RegisterRoutes(router, requireAuth)
	catalogHandler.RegisterRoutes(router, requireAuth)
	assetsHandler.RegisterRoutes(router, requireAuth)
	repairsHandler.RegisterRoutes(router, requireAuth)
	summaryHandler.RegisterRoutes(router, requireAuth)
	eventsHandler.RegisterRoutes(router)

	router.Static("/uploads", cfg.Uploads.Dir)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	go func() {
		appLog.WithField("addr", srv.Addr).Info("Server listening")
		var serveErr error
		if cfg.Server.CertFile != "" && cfg.Server.KeyFile != "" {
			serveErr = srv.ListenAndServeTLS(cfg.Server.CertFile, cfg.Server.KeyFile)
		} else {
			serveErr = srv.ListenAndServe()
		}
		if serveErr != nil && serveErr != http.ErrServerClosed {
			appLog.WithError(serveErr).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	watcher.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.WithError(err).Fatal("Server forced to shutdown")
	}

	appLog.Info("Server exiting")
}
