package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipe-planner/internal/api"
	"recipe-planner/internal/core/cache"
	"recipe-planner/internal/core/shopping"
	"recipe-planner/internal/core/shopping/category"
	"recipe-planner/internal/core/shopping/naming"
	"recipe-planner/internal/infrastructure/config"
	"recipe-planner/internal/infrastructure/store"
	"recipe-planner/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定（包含可選的 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("env", cfg.App.Env),
		zap.String("database", cfg.Database.Driver),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.String("cache_backend", cfg.Cache.Backend),
	)

	ctx := context.Background()

	// 分類字典與索引
	dict, err := category.LoadDictionary(ctx, category.Source{
		Path:    cfg.Category.DictionaryPath,
		URL:     cfg.Category.DictionaryURL,
		Timeout: cfg.Category.FetchTimeout,
	})
	if err != nil {
		common.LogFatal("Failed to load category dictionary", zap.Error(err))
	}
	index := category.BuildIndex(dict, category.WithTokenFold(naming.SingularizeWord))

	// 儲存層
	st, err := store.Open(cfg.Database)
	if err != nil {
		common.LogFatal("Failed to open store", zap.Error(err))
	}
	if closer, ok := st.(io.Closer); ok {
		defer closer.Close()
	}

	// 初始化快取，停用時為 nil
	cacheBackend, err := cache.New(ctx, &cfg.Cache)
	if err != nil {
		common.LogFatal("Failed to initialize cache", zap.Error(err))
	}

	opts := []shopping.ServiceOption{shopping.WithMaxSpanDays(cfg.Shopping.MaxSpanDays)}
	if cacheBackend != nil {
		defer cacheBackend.Close()
		opts = append(opts, shopping.WithCache(cacheBackend))
	}
	service := shopping.NewService(shopping.NewEngine(index), st, opts...)

	// 設置路由
	var stats interface{ Stats() map[string]interface{} }
	if cacheBackend != nil {
		stats = cacheBackend
	}
	router := api.SetupRouter(cfg, service, stats)

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("addr", srv.Addr),
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("categories", len(index.Categories())),
			zap.Int("phrases", index.Size()),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	// 設置關閉超時
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
		return
	}

	common.LogInfo("Server exited")
}
