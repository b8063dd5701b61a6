package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/kost-management/internal/config"
	"github.com/iliyamo/kost-management/internal/database"
	"github.com/iliyamo/kost-management/internal/handler"
	"github.com/iliyamo/kost-management/internal/middleware"
	"github.com/iliyamo/kost-management/internal/queue"
	"github.com/iliyamo/kost-management/internal/repository"
	"github.com/iliyamo/kost-management/internal/router"
	"github.com/iliyamo/kost-management/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments use the environment
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(ctx, db); err != nil {
		cancel()
		log.Fatalf("migrate: %v", err)
	}
	cancel()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	reports := repository.NewPaymentReportRepo(db)
	history := repository.NewHistoryRepo(db)
	sensors := repository.NewSensorRepo(db)

	// The admin account is seeded, never registered through the API.
	seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := users.EnsureAdmin(seedCtx, cfg.AdminEmail, cfg.AdminPassword, cfg.BcryptCost); err != nil {
		seedCancel()
		log.Fatalf("seed admin: %v", err)
	}
	seedCancel()

	payments := service.NewPaymentService(reports, history)
	revenue := service.NewRevenueService(reports)

	e := echo.New()
	e.HideBanner = true

	// Redis-backed limiter and cache degrade to pass-throughs when Redis
	// is unreachable.
	rdb := config.NewRedisClient()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	var cacheMw echo.MiddlewareFunc
	if rdb != nil {
		cacheMw = middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	}

	authH := handler.NewAuthHandler(cfg, users, tokens)
	reportH := handler.NewPaymentReportHandler(payments, reports, cfg.UploadDir)
	revenueH := handler.NewRevenueHandler(revenue)
	historyH := handler.NewHistoryHandler(history)
	monitorH := handler.NewMonitoringHandler(sensors)
	userH := handler.NewUserHandler(users)

	router.RegisterRoutes(e, cfg.UploadDir)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterReports(e, reportH, revenueH, cfg.JWTSecret, cacheMw)
	router.RegisterDashboard(e, historyH, monitorH, userH, cfg.JWTSecret, cacheMw)

	consumer := &queue.SensorConsumer{Sensors: sensors, Users: users, History: history}
	go consumer.Start()

	notifier := service.NewExpiryNotifier(users, history)
	go notifier.Start(context.Background(), 12*time.Hour)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
