package router

import (
	"log"

	"cloud.google.com/go/firestore"
	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"github.com/lost2found/backend/internal/handlers"
	"github.com/lost2found/backend/internal/mailer"
	"github.com/lost2found/backend/internal/matching"
	"github.com/lost2found/backend/internal/middleware"
	"github.com/lost2found/backend/internal/models"
	"github.com/lost2found/backend/internal/repositories"
	"github.com/lost2found/backend/internal/store"
	"github.com/lost2found/backend/internal/throttle"
	"github.com/lost2found/backend/internal/workflow"
	"github.com/lost2found/backend/pkg/config"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// Deps bundles the external connections the routes are built on
type Deps struct {
	Postgres     *gorm.DB
	Mongo        *mongo.Client
	Redis        *redis.Client
	Firestore    *firestore.Client
	FirebaseAuth *auth.Client
	Config       *config.Config
	Log          *logrus.Logger
	EmailPort    int
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Deps) {
	// AutoMigrate PostgreSQL models
	if err := deps.Postgres.AutoMigrate(&models.User{}); err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Core wiring ---
	documentStore := store.NewFirestoreStore(deps.Firestore)
	executor := workflow.NewExecutor(documentStore, deps.Log)

	userRepo := repositories.NewPostgresUserRepository(deps.Postgres)
	itemRepo := repositories.NewItemRepository(documentStore)
	notificationRepo := repositories.NewNotificationRepository(documentStore)
	matchRepo := repositories.NewMongoMatchRepository(deps.Mongo.Database("lost2found"))

	mail := mailer.New(deps.Config.EmailHost, deps.EmailPort, deps.Config.EmailUser, deps.Config.EmailPass, deps.Log)
	throttlePolicy := throttle.New(deps.Redis, documentStore, deps.Log)
	claimService := workflow.NewService(documentStore, executor, userRepo, mail, throttlePolicy, deps.Log)

	aiClient := matching.NewClient(deps.Config.AIServiceURL)
	pipeline := matching.NewPipeline(documentStore, aiClient, matchRepo, executor, deps.Log)

	// --- Unprotected routes ---
	authGroup := e.Group("/api/auth")
	authHandler := handlers.NewAuthHandler(userRepo, deps.FirebaseAuth)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	itemHandler := handlers.NewItemHandler(itemRepo, claimService, throttlePolicy, deps.Config.FrontendURL)
	publicAPI := e.Group("/api")
	itemHandler.RegisterPublicItemRoutes(publicAPI)
	log.Println("Public item routes configured.")

	// --- Protected routes (require Firebase ID token or local JWT) ---
	api := e.Group("/api")
	api.Use(middleware.FirebaseAuthMiddleware(deps.FirebaseAuth))
	log.Println("Auth middleware applied to /api group.")

	itemHandler.RegisterItemRoutes(api)
	log.Println("Item routes configured.")

	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	aiHandler := handlers.NewAIHandler(pipeline, matchRepo)
	aiHandler.RegisterAIRoutes(api)
	log.Println("AI matching routes configured.")

	userHandler := handlers.NewUserHandler(userRepo)
	userHandler.RegisterProfileRoutes(api)
	log.Println("User profile routes configured.")

	log.Println("All routes configured.")
}
