package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"allowance/internal/config"
	"allowance/internal/handler"
	"allowance/internal/infrastructure/cache"
	"allowance/internal/infrastructure/database"
	"allowance/internal/infrastructure/mq"
	"allowance/internal/job"
	"allowance/pkg/idgen"
	"allowance/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "配置文件路径")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	zl, err := logger.Init(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer logger.Sync()

	if err := idgen.Init(cfg.Business.WorkerID); err != nil {
		zl.Fatal("初始化 ID 生成器失败", zap.Error(err))
	}

	db, err := database.InitMySQL(&cfg.MySQL)
	if err != nil {
		zl.Fatal("初始化 MySQL 失败", zap.Error(err))
	}

	redisClient, err := cache.InitRedis(&cfg.Redis)
	if err != nil {
		zl.Fatal("初始化 Redis 失败", zap.Error(err))
	}
	defer redisClient.Close()

	producer, err := mq.InitKafka(&cfg.Kafka)
	if err != nil {
		zl.Fatal("初始化 Kafka 失败", zap.Error(err))
	}
	defer producer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	outboxSender := job.NewOutboxSender(db, producer, cfg)
	go outboxSender.Start(ctx)

	auditJob := job.NewLedgerAuditJob(db, cfg)
	go auditJob.Start(ctx)

	router := handler.SetupRouter(db, redisClient, cfg)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		zl.Info("服务启动", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("服务启动失败", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("正在关闭服务...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zl.Error("服务关闭异常", zap.Error(err))
	}

	zl.Info("服务已关闭")
}
