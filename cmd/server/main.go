package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/catalina-labs/usuarios-api/internal/api"
	"github.com/catalina-labs/usuarios-api/internal/app/service"
	"github.com/catalina-labs/usuarios-api/internal/domain/repository"
	"github.com/catalina-labs/usuarios-api/internal/platform/cache"
	"github.com/catalina-labs/usuarios-api/internal/platform/config"
	"github.com/catalina-labs/usuarios-api/internal/platform/database"
)

func main() {
	// 1. Load Configuration
	config.Load()
	fmt.Println("Configuration loaded.")

	// 2. Initialize Database
	database.Connect()
	defer database.Close()
	fmt.Println("Database connected.")

	// 3. Initialize Redis
	cache.ConnectRedis()
	defer cache.CloseRedis()
	fmt.Println("Redis connected.")

	// 4. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	attemptStore := repository.NewRedisAttemptStore(cache.RDB)

	// 5. Initialize Services
	cfg := config.AppConfig
	sessionService := service.NewSessionService(userRepo, cfg.TokenLengthBytes)
	throttleService := service.NewThrottleService(
		attemptStore, cfg.MaxLoginAttempts, time.Duration(cfg.LoginWindowSeconds)*time.Second)
	authService := service.NewAuthService(
		userRepo, sessionService, throttleService, cfg.BcryptCost, cfg.PasswordMinLength)
	userService := service.NewUserService(userRepo, cfg.BcryptCost, cfg.PasswordMinLength)
	statsService := service.NewStatsService(userRepo)

	// 6. Initialize Router & HTTP Server
	router := api.NewRouter(authService, sessionService, userService, statsService, attemptStore)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 7. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", cfg.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped gracefully.")
}
