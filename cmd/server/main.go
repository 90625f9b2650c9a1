// YuePai 月度排班引擎服务
// 主程序入口

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yuepai/yuepai/internal/config"
	"github.com/yuepai/yuepai/internal/database"
	"github.com/yuepai/yuepai/internal/handler"
	"github.com/yuepai/yuepai/internal/metrics"
	"github.com/yuepai/yuepai/internal/middleware"
	"github.com/yuepai/yuepai/internal/repository"
	"github.com/yuepai/yuepai/pkg/logger"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logFormat := "json"
	if cfg.IsDevelopment() {
		logFormat = "console"
	}
	logger.Init(logger.Config{
		Level:  cfg.App.LogLevel,
		Format: logFormat,
	})

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Str("env", cfg.App.Env).
		Msg("YuePai 排班引擎启动中")

	// 数据库可选：连接失败时降级为无状态模式，排班API仍可用，
	// 但花名册与结果落库不可用
	var (
		db           *database.DB
		planRepo     *repository.PlanRepository
		catalogRepo  *repository.CatalogRepository
		orgRepo      *repository.OrganizationRepository
		employeeRepo *repository.EmployeeRepository
	)
	db, err = database.New(&cfg.Database)
	if err != nil {
		logger.Warn().Err(err).Msg("数据库连接失败，以无状态模式运行")
		db = nil
	} else {
		defer db.Close()
		planRepo = repository.NewPlanRepository(db)
		catalogRepo = repository.NewCatalogRepository(db)
		orgRepo = repository.NewOrganizationRepository(db)
		employeeRepo = repository.NewEmployeeRepository(db)
	}

	planHandler := handler.NewPlanHandler(cfg.Planner.Timeout, planRepo, catalogRepo, orgRepo, employeeRepo)
	validateHandler := handler.NewValidateHandler()
	statsHandler := handler.NewStatsHandler(planRepo, employeeRepo)
	rulesHandler := handler.NewRulesHandler()

	mux := http.NewServeMux()

	// ========================================
	// 系统端点
	// ========================================

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		dbStatus := "disabled"
		if db != nil {
			dbStatus = "ok"
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Health(ctx); err != nil {
				status = "degraded"
				dbStatus = "down"
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"%s","service":"yuepai","database":"%s"}`, status, dbStatus)
	})

	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"version":"%s","build_time":"%s","git_commit":"%s"}`, Version, BuildTime, GitCommit)
	})

	// ========================================
	// API v1 端点
	// ========================================

	mux.HandleFunc("/api/v1/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"message": "YuePai 月度排班引擎 API v1",
			"endpoints": {
				"plan": {
					"create": "POST /api/v1/plan",
					"get": "GET /api/v1/plan?org_id=&year=&month="
				},
				"validate": "POST /api/v1/plan/validate",
				"rules": {
					"library": "GET /api/v1/rules/library",
					"presets": "GET /api/v1/rules/presets"
				},
				"stats": "GET /api/v1/stats?org_id=&year=&month="
			}
		}`))
	})

	// 月度排班 API
	mux.HandleFunc("/api/v1/plan", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			planHandler.Create(w, r)
		default:
			planHandler.Get(w, r)
		}
	})

	// 计划审核 API
	mux.HandleFunc("/api/v1/plan/validate", validateHandler.Validate)

	// 规则目录 API
	mux.HandleFunc("/api/v1/rules/library", rulesHandler.Library)
	mux.HandleFunc("/api/v1/rules/presets", rulesHandler.Presets)

	// 统计分析 API
	mux.HandleFunc("/api/v1/stats", statsHandler.Get)

	// ========================================
	// 监控端点
	// ========================================

	if cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
	}

	// 中间件执行顺序：requestID -> 安全头 -> 认证 -> 日志 -> handler
	root := middleware.Chain(mux,
		middleware.Recovery,
		middleware.RequestID,
		middleware.SecurityHeaders,
		middleware.APIKey(cfg.API.Key, []string{"/health", "/version", cfg.Metrics.Path}),
		middleware.Logging,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      root,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info().
			Int("port", cfg.App.Port).
			Str("version", Version).
			Str("url", fmt.Sprintf("http://localhost:%d", cfg.App.Port)).
			Msg("服务器启动")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("服务器启动失败")
			os.Exit(1)
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("服务器关闭失败")
		os.Exit(1)
	}

	logger.Info().Msg("服务器已关闭")
}
