// File: aeromed/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aeromed/config"
	"aeromed/database"
	deliveryRepo "aeromed/database/repository/delivery"
	"aeromed/handlers"
	"aeromed/routes"
	"aeromed/services/assistant"
	"aeromed/services/gateway"
	"aeromed/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	config.LoadConfig()
	utils.InitializeLogger()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitSessionCache()
	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetCacheClient(), utils.GetSessionCacheClient()},
		database.MongoClient,
	)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	// repositories.
	delivRepo := deliveryRepo.NewMongoDeliveryRepo()

	// services.
	backend := gateway.NewClient(config.AppConfig.BackendURL, utils.GetCacheClient(), logger)
	executor := assistant.NewToolExecutor(backend, logger)
	modelClient := assistant.NewRetryingModelClient(
		config.AppConfig.ModelMaxRetries,
		time.Duration(config.AppConfig.ModelRetryBaseMS)*time.Millisecond,
		logger,
	)
	stateStore := assistant.NewRedisStateStore(
		utils.GetSessionCacheClient(),
		time.Duration(config.AppConfig.SessionTTLMin)*time.Minute,
	)
	sessions := assistant.NewGeminiSessionFactory(
		config.AppConfig.GeminiAPIKey,
		config.AppConfig.GeminiModel,
		config.AppConfig.ModelMaxTokens,
	)

	assistantService := &assistant.DefaultAssistantService{
		Sessions:     sessions,
		Loop:         assistant.NewLoop(modelClient, executor, logger),
		States:       stateStore,
		DeliveryRepo: delivRepo,
		Logger:       logger,
	}

	handlers.AssistantService = assistantService
	handlers.DeliveryRepository = delivRepo
	handlers.DroneGateway = backend

	routes.RegisterRoutes(router)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "3000"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
