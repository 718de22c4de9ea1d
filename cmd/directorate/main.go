package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/veydran/directorate/internal/database"
	"github.com/veydran/directorate/internal/logging"
	"github.com/veydran/directorate/internal/push"
	"github.com/veydran/directorate/internal/server"
)

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	godotenv.Load()

	logger := logging.Setup(os.Getenv("DIRECTORATE_LOG_LEVEL"), os.Getenv("DIRECTORATE_LOG_FORMAT"))

	if len(os.Args) > 1 && os.Args[1] == "generate-vapid" {
		pub, priv, err := push.GenerateVAPIDKeys()
		if err != nil {
			logger.Error("generate VAPID keys", "error", err)
			os.Exit(1)
		}
		fmt.Printf("DIRECTORATE_VAPID_PUBLIC_KEY=%s\nDIRECTORATE_VAPID_PRIVATE_KEY=%s\n", pub, priv)
		return
	}

	port := os.Getenv("DIRECTORATE_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("DIRECTORATE_DB_PATH")
	if dbPath == "" {
		dbPath = "directorate.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("open database", "path", dbPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	pushCfg := push.Config{
		VAPIDPublicKey:  os.Getenv("DIRECTORATE_VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("DIRECTORATE_VAPID_PRIVATE_KEY"),
	}

	srv := server.New(db, pushCfg, logger)

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go srv.Hub().Run(hubCtx)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("directorate listening", "port", port, "db", dbPath)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
