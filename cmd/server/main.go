package main

import (
	"context"
	"log"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/lost2found/backend/internal/router"
	"github.com/lost2found/backend/pkg/config"
	"github.com/lost2found/backend/pkg/firebase"
	"github.com/lost2found/backend/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Initialize database connections
	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// Initialize Firebase (auth + Firestore)
	ctx := context.Background()
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}
	defer firebaseApp.Close()

	emailPort, err := strconv.Atoi(cfg.EmailPort)
	if err != nil {
		emailPort = 587
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, router.Deps{
		Postgres:     db.Postgres,
		Mongo:        db.Mongo,
		Redis:        db.Redis,
		Firestore:    firebaseApp.Firestore,
		FirebaseAuth: firebaseApp.AuthClient,
		Config:       cfg,
		Log:          logger,
		EmailPort:    emailPort,
	})

	// Validator
	e.Validator = validators.NewValidator()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
