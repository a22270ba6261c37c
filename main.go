package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"biblio-backend/internal/lending/books"
	"biblio-backend/internal/lending/loans"
	"biblio-backend/internal/lending/users"
	"biblio-backend/internal/platform/auth"
	"biblio-backend/internal/platform/cache"
	"biblio-backend/internal/platform/db"
)

func main() {
	// 設定読み込み
	cfg, err := db.LoadConfig("config/config.yaml")
	if err != nil {
		panic(err)
	}

	if cfg.Mode != "dev" && cfg.Mode != "release" {
		fmt.Println("Usage: set mode to dev or release in config/config.yaml")
		return
	}

	logger, err := newLogger(cfg.Mode)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("starting", zap.String("mode", cfg.Mode), zap.String("version", cfg.Version))

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}
	defer conn.Close()
	logger.Info("connected to DB", zap.String("dbname", cfg.DB.DBName))

	// キャッシュ。Redis未設定ならインメモリで動かす（ローカル用）
	var cs cache.Store
	if cfg.Redis.Host != "" {
		addr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
		cs, err = cache.NewRedis(addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal("redis connect failed", zap.Error(err))
		}
		logger.Info("connected to redis", zap.String("addr", addr))
	} else {
		cs = cache.NewMemory()
		logger.Warn("redis not configured, using in-memory cache")
	}
	defer cs.Close()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if cfg.Mode == "dev" {
		// CORS（開発中のみ必要）
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Location"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))
	}

	// ヘルス
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	usersSvc := users.NewService(conn, cs, logger)
	booksSvc := books.NewService(conn, cs, logger)
	loansSvc := loans.NewService(conn, cs, logger)
	authSvc := auth.NewService(conn, []byte(cfg.Auth.Secret))

	// /api/v1
	api := r.Group("/api/v1")
	auth.RegisterRoutes(api, authSvc)
	users.RegisterRoutes(api, usersSvc)
	books.RegisterRoutes(api, booksSvc)
	loans.RegisterRoutes(api, loansSvc)

	// 登録系は司書トークン必須
	admin := api.Group("", auth.RequireAuth([]byte(cfg.Auth.Secret)))
	users.RegisterAdminRoutes(admin, usersSvc)
	books.RegisterAdminRoutes(admin, booksSvc)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	logger.Info("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("shutdown failed", zap.Error(err))
	}
}

func newLogger(mode string) (*zap.Logger, error) {
	if mode == "dev" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
