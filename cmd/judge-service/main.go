package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"codearena/internal/common/cache"
	"codearena/internal/common/db"
	commonmw "codearena/internal/common/http/middleware"
	"codearena/internal/common/mq"
	"codearena/internal/common/storage"
	"codearena/internal/judge/controller"
	"codearena/internal/judge/problemstore"
	"codearena/internal/judge/repository"
	"codearena/internal/judge/sandbox"
	sandboxcfg "codearena/internal/judge/sandbox/config"
	"codearena/internal/judge/sandbox/engine"
	"codearena/internal/judge/sandbox/runner"
	"codearena/internal/judge/service"
	"codearena/internal/judge/template"
	"codearena/pkg/utils/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultConfigPath = "configs/judge-service.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to config file")
	flag.Parse()

	appCfg, err := loadAppConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load app config failed: %v\n", err)
		return
	}

	if err := logger.Init(appCfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	mysqlDB, err := db.OpenMySQL(&appCfg.Database)
	if err != nil {
		logger.Error(context.Background(), "init database failed", zap.Error(err))
		return
	}
	defer func() {
		_ = mysqlDB.Close()
	}()
	problems := problemstore.NewMySQLStore(mysqlDB)

	redisCache, err := cache.NewRedisCacheWithConfig(&appCfg.Redis)
	if err != nil {
		logger.Error(context.Background(), "init redis failed", zap.Error(err))
		return
	}
	defer func() {
		_ = redisCache.Close()
	}()

	objStorage, err := storage.NewMinIOStorage(appCfg.MinIO)
	if err != nil {
		logger.Error(context.Background(), "init minio failed", zap.Error(err))
		return
	}

	mqClient, err := mq.NewKafkaQueue(appCfg.Kafka.toMQConfig())
	if err != nil {
		logger.Error(context.Background(), "init kafka failed", zap.Error(err))
		return
	}
	defer func() {
		_ = mqClient.Close()
	}()

	statusRepo := repository.NewStatusRepository(redisCache, appCfg.Status.TTL)
	statusPublisher := repository.NewMQStatusEventPublisher(mqClient, appCfg.Status.FinalTopic)

	langRepo := sandboxcfg.NewDefaultRepository(appCfg.Language.Languages)
	eng, err := engine.NewEngine(appCfg.Sandbox.toEngineConfig())
	if err != nil {
		logger.Error(context.Background(), "init sandbox engine failed", zap.Error(err))
		return
	}
	worker := sandbox.NewWorker(runner.NewRunner(eng), langRepo)

	judgeSvc, err := service.NewService(service.Config{
		Evaluator:       worker,
		StatusRepo:      statusRepo,
		Problems:        problems,
		Storage:         objStorage,
		Publisher:       statusPublisher,
		Queue:           mqClient,
		RetryTopic:      appCfg.Kafka.RetryTopic,
		DeadLetterTopic: appCfg.Kafka.DeadLetter,
		SourceBucket:    appCfg.Source.Bucket,
		WorkRoot:        appCfg.Judge.WorkRoot,
		MaxSourceBytes:  appCfg.Source.MaxBytes,
		WorkerTimeout:   appCfg.Worker.Timeout,
		ProblemTimeout:  appCfg.Problem.Timeout,
		StorageTimeout:  appCfg.Source.Timeout,
		StatusTimeout:   appCfg.Status.Timeout,
		SpecCacheTTL:    appCfg.Problem.SpecCacheTTL,
		WorkerPoolSize:  appCfg.Worker.PoolSize,
		PoolWait:        appCfg.Worker.PoolWait,
		PoolRetryMax:    appCfg.Kafka.PoolRetryMax,
		PoolRetryBase:   appCfg.Kafka.PoolRetryBase,
		PoolRetryMaxD:   appCfg.Kafka.PoolRetryMaxD,
	})
	if err != nil {
		logger.Error(context.Background(), "init judge service failed", zap.Error(err))
		return
	}
	worker.SetStatusReporter(judgeSvc)

	subOpts := &mq.SubscribeOptions{
		ConsumerGroup:   appCfg.Kafka.ConsumerGroup,
		Concurrency:     appCfg.Kafka.Concurrency,
		MaxRetries:      appCfg.Kafka.MaxRetries,
		RetryDelay:      appCfg.Kafka.RetryDelay,
		DeadLetterTopic: appCfg.Kafka.DeadLetter,
	}
	if err := mqClient.SubscribeWithOptions(context.Background(), appCfg.Kafka.Topic, judgeSvc.HandleMessage, subOpts); err != nil {
		logger.Error(context.Background(), "subscribe kafka failed", zap.Error(err))
		return
	}
	// Requeued pool-full messages come back on the retry topic.
	if err := mqClient.SubscribeWithOptions(context.Background(), appCfg.Kafka.RetryTopic, judgeSvc.HandleMessage, subOpts); err != nil {
		logger.Error(context.Background(), "subscribe kafka retry topic failed", zap.Error(err))
		return
	}
	if err := mqClient.Start(); err != nil {
		logger.Error(context.Background(), "start kafka consumer failed", zap.Error(err))
		return
	}

	httpServer := buildHTTPServer(appCfg, statusRepo, problems)
	listener, err := net.Listen("tcp", appCfg.Server.Addr)
	if err != nil {
		logger.Error(context.Background(), "init http listener failed", zap.Error(err))
		return
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(context.Background(), "judge http server started", zap.String("addr", appCfg.Server.Addr))
		errCh <- httpServer.Serve(listener)
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(context.Background(), "http server stopped", zap.Error(err))
		}
	case <-shutdownCtx.Done():
		logger.Info(context.Background(), "shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error(context.Background(), "http server shutdown failed", zap.Error(err))
	}
	_ = mqClient.Stop()
}

func buildHTTPServer(cfg *AppConfig, statusRepo *repository.StatusRepository, problems problemstore.Store) *http.Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(commonmw.TraceContext())
	router.Use(commonmw.RequestLogger())

	api := router.Group("/api/v1/judge")
	controller.NewJudgeController(statusRepo).RegisterRoutes(api)
	controller.NewTemplateController(problems, template.New()).RegisterRoutes(api)
	controller.NewStreamController(statusRepo, cfg.Status.StreamPollInterval, cfg.Status.StreamMaxDuration).RegisterRoutes(api)

	return &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
}
