package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/halcyon-labs/dermatrack/internal/api"
	"github.com/halcyon-labs/dermatrack/internal/classifier"
	"github.com/halcyon-labs/dermatrack/internal/db"
	"github.com/halcyon-labs/dermatrack/internal/monitor"
	"github.com/halcyon-labs/dermatrack/internal/security"
	"github.com/halcyon-labs/dermatrack/internal/storage"
	"github.com/joho/godotenv"
)

const secretAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("loading .env failed: %v", err)
	}

	secretKey := getEnv("SECRET_KEY", "")
	if secretKey == "" {
		generated, err := security.RandomString(48, secretAlphabet)
		if err != nil {
			log.Fatalf("secret key generation failed: %v", err)
		}
		secretKey = generated
		log.Print("SECRET_KEY not set, generated an ephemeral one; sessions will not survive restarts")
	}

	dbPath := getEnv("DB_PATH", filepath.Join("data", "dermatrack.db"))
	port := getEnv("PORT", "8080")
	classifierEndpoint := getEnv("CLASSIFIER_URL", "http://localhost:8000/detect")
	cookieSecure := strings.EqualFold(getEnv("COOKIE_SECURE", "false"), "true")

	database, err := db.OpenSQLite(dbPath)
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}

	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelBoot()

	gate := monitor.NewGate(database)
	if err := gate.Initialize(bootCtx); err != nil {
		log.Fatalf("storage gate init failed: %v", err)
	}

	blobs, err := storage.NewS3Store(bootCtx,
		getEnv("AWS_REGION", "us-east-1"),
		getEnv("S3_BUCKET", "dermatrack-images"),
		getEnv("S3_BASE_URL", ""),
	)
	if err != nil {
		log.Fatalf("blob store init failed: %v", err)
	}

	repositories := db.NewRepositories(database)
	coordinator := monitor.NewCoordinator(gate, repositories, blobs)
	defer coordinator.Close()

	handler := api.NewHandler(database, secretKey, cookieSecure, classifier.NewClient(classifierEndpoint), blobs, coordinator)

	app := fiber.New(fiber.Config{
		AppName:               "DermaTrack",
		BodyLimit:             12 << 20,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	api.RegisterRoutes(app, handler)

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		coordinator.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("server shutdown failed: %v", err)
		}
	}()

	log.Printf("DermaTrack listening on http://0.0.0.0:%s (db: %s, classifier: %s)", port, dbPath, classifierEndpoint)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
