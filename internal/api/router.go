// Package api 組裝 HTTP 路由與中間件。
package api

import (
	"time"

	"recipe-planner/internal/api/handlers/health"
	shoppingHandler "recipe-planner/internal/api/handlers/shopping"
	"recipe-planner/internal/api/middleware"
	"recipe-planner/internal/core/shopping"
	"recipe-planner/internal/infrastructure/config"
	"recipe-planner/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRouter 設置路由；cacheStats 為 nil 時健康檢查不回報快取
func SetupRouter(cfg *config.Config, service *shopping.Service, cacheStats health.StatsProvider) *gin.Engine {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New()) // 自動生成請求 ID
	router.Use(middleware.Logger())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))

	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	if cfg.Server.WriteTimeout > 0 {
		router.Use(middleware.Timeout(cfg.Server.WriteTimeout))
	}

	// 健康檢查路由
	healthHandler := health.NewHandler(cfg.App.Version, service, cacheStats)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	// API 路由組
	api := router.Group("/api/v1")
	api.Use(middleware.Deduplication(cfg.DedupWindow))
	{
		h := shoppingHandler.NewHandler(service)

		listGroup := api.Group("/shopping-list")
		{
			listGroup.POST("", h.HandleCombine)
			listGroup.GET("", h.HandleForRange)
			listGroup.GET("/history", h.HandleHistory)
		}

		api.POST("/recipes", h.HandleAddRecipe)
		api.POST("/schedule", h.HandleSchedule)

		ingredientGroup := api.Group("/ingredients")
		{
			ingredientGroup.POST("/parse", h.HandleParse)
			ingredientGroup.POST("/classify", h.HandleClassify)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Bool("cache_stats", cacheStats != nil),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
		zap.Duration("dedup_window", cfg.DedupWindow),
	)
	return router
}
