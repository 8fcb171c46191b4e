package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"associados_api/internal/api"
	"associados_api/internal/api/middleware"
	"associados_api/internal/app/service"
	"associados_api/internal/common/security"
	"associados_api/internal/domain/repository"
	"associados_api/internal/platform/cache"
	"associados_api/internal/platform/config"
	"associados_api/internal/platform/database"
)

func main() {
	// 1. Load Configuration
	config.Load()
	log.Println("Configuration loaded.")

	// 2. Initialize JWT
	security.InitJWT()
	log.Println("JWT initialized.")

	// 3. Initialize Database
	database.Connect()
	defer database.Close()

	// 4. Initialize Redis (token blacklist)
	cache.ConnectRedis()
	defer cache.CloseRedis()

	// 5. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	associateRepo := repository.NewPgAssociateRepository(database.DB)
	blacklist := repository.NewRedisTokenBlacklist(cache.RDB)

	// 6. Initialize Services
	authService := service.NewAuthService(userRepo, blacklist)
	associateService := service.NewAssociateService(associateRepo)

	// 7. Initialize Router & HTTP Server
	authenticator := middleware.NewAuthenticator(blacklist)
	router := api.NewRouter(authService, associateService, authenticator)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 8. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()

	<-stop

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped gracefully.")
}
