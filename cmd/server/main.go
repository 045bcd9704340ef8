// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"interview-copilot-go/internal/analyzer"
	"interview-copilot-go/internal/config"
	"interview-copilot-go/internal/formatter"
	"interview-copilot-go/internal/handler"
	"interview-copilot-go/internal/middleware"
	"interview-copilot-go/internal/prompt"
	"interview-copilot-go/internal/repository"
	"interview-copilot-go/internal/service"
	"interview-copilot-go/pkg/database"
	"interview-copilot-go/pkg/kafka"
	"interview-copilot-go/pkg/llm"
	"interview-copilot-go/pkg/log"
	"interview-copilot-go/pkg/realtime"
	"interview-copilot-go/pkg/token"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化存储与分析事件生产者。
	// 未配置 Redis 地址时退化为进程内存储，方便本地开发。
	var sessionRepo repository.SessionRepository
	if cfg.Redis.Addr != "" {
		database.InitRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		sessionRepo = repository.NewSessionRepository(database.RDB, cfg.Chat.HistoryCap)
	} else {
		log.Warnf("未配置 Redis，使用进程内会话存储")
		sessionRepo = repository.NewMemorySessionRepository(cfg.Chat.HistoryCap)
	}
	kafka.InitProducer(cfg.Kafka)
	defer kafka.Close()

	// 4. 初始化管线组件 (依赖注入)
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.WSTokenExpireMinutes)
	llmClient := llm.NewClient(cfg.LLM)
	hub := realtime.NewHub()
	classifier := analyzer.NewClassifier()
	detector := analyzer.NewFollowUpDetector()
	composer := prompt.NewComposer()
	structurer := formatter.NewStructurer()

	chatService := service.NewChatService(
		sessionRepo, llmClient, classifier, detector, composer, structurer,
		hub, analyzer.DefaultCorrection, cfg.Chat.ContextWindow,
	)
	sessionService := service.NewSessionService(sessionRepo)

	if cfg.LLM.APIKey == "" {
		log.Warnf("未配置补全服务凭证，所有回答将来自本地模拟回复")
	}

	// 5. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// 6. 注册路由
	chatHandler := handler.NewChatHandler(chatService, jwtManager, hub)
	sessionHandler := handler.NewSessionHandler(sessionService)

	apiV1 := r.Group("/api/v1")
	{
		chat := apiV1.Group("/chat")
		{
			chat.POST("", chatHandler.Chat)
			chat.GET("/ws-token", chatHandler.GetWSToken)
		}

		apiV1.POST("/context", sessionHandler.SetContext)

		sessions := apiV1.Group("/sessions")
		{
			sessions.GET("/:sessionId/history", sessionHandler.GetHistory)
			sessions.DELETE("/:sessionId", sessionHandler.ClearSession)
		}
	}

	// WebSocket 订阅路由（实时下发通道）
	r.GET("/chat/ws/:token", chatHandler.Subscribe)

	// 7. 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	log.Info("服务已优雅关闭")
}
