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

	"github.com/qnachat/qnachat/internal/api"
	"github.com/qnachat/qnachat/internal/auth"
	"github.com/qnachat/qnachat/internal/config"
	"github.com/qnachat/qnachat/internal/core"
	"github.com/qnachat/qnachat/internal/storage"
	"github.com/qnachat/qnachat/internal/store"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup logging
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if cfg.LogLevel == "DEBUG" {
		log.Println("Service starting in DEBUG mode")
	}

	// Initialize key-value storage
	var kv storage.Store
	switch cfg.StorageBackend {
	case "sqlite":
		kv, err = storage.NewSQLiteStore(cfg.DatabaseURL)
	case "file":
		kv, err = storage.NewFileStore(cfg.DataDir)
	}
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer kv.Close()

	// Load the QnA answer table (once, immutable afterwards)
	qnaService, err := core.NewQnAService(cfg.QnAPath)
	if err != nil {
		log.Fatalf("Failed to load QnA table: %v", err)
	}
	log.Printf("QnA table loaded with %d entries", qnaService.Len())

	// Initialize stores and services
	userStore := store.NewUserStore(kv)
	sessionStore := store.NewSessionStore(kv)
	conversationStore := store.NewConversationStore(kv)

	authService := core.NewAuthService(userStore, sessionStore)
	chatService := core.NewChatService(conversationStore, qnaService)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret)

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(authService, chatService, jwtManager)
	router := api.NewRouter(apiHandler)

	// Start HTTP server
	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		log.Printf("Starting server on %s. Press Ctrl+C to quit.", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", serverAddr, err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give active connections time to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting gracefully")
}
