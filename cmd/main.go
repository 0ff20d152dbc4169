package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"crm-service/internal/auth"
	"crm-service/internal/cache"
	"crm-service/internal/config"
	"crm-service/internal/events"
	"crm-service/internal/handlers"
	"crm-service/internal/middleware"
	"crm-service/internal/models"
	"crm-service/internal/repository"
	"crm-service/internal/seeders"
	"crm-service/internal/services"
)

// @title CRM Service API
// @version 1.0.0
// @description Multi-tenant CRM backend with role-based access control

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8095
// @BasePath /api

// @securityDefinitions.bearer BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)
	logger.SetLevel(logrus.InfoLevel)

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using system environment variables")
	}

	cfg := config.Load()
	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET must be set")
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database:", err)
	}

	// Run database migrations
	logger.Info("Running database migrations...")
	if err := db.AutoMigrate(
		&models.Organization{},
		&models.Permission{},
		&models.Role{},
		&models.User{},
		&models.PipelineStage{},
		&models.Customer{},
		&models.Interaction{},
		&models.InternalNote{},
		&models.Task{},
		&models.Event{},
		&models.File{},
	); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Database migrations completed")

	// Seed the permission catalog and built-in roles
	if err := seeders.SeedPermissions(db); err != nil {
		logger.Fatalf("Failed to seed permissions: %v", err)
	}
	if err := seeders.SeedGlobalRoles(db); err != nil {
		logger.Fatalf("Failed to seed global roles: %v", err)
	}

	// Permission cache degrades to no-op when Redis is unavailable
	permCache := cache.NewPermissionCache(cfg.RedisHost, cfg.RedisPort, cfg.RedisPass, cfg.RedisDB, 300)
	defer permCache.Close()

	// Event publisher is optional - the service works without NATS
	var publisher *events.Publisher
	if cfg.NATSURL != "" {
		publisher, err = events.NewPublisher(cfg.NATSURL, logger)
		if err != nil {
			logger.Warnf("Failed to initialize event publisher: %v. Events will not be published.", err)
			publisher = nil
		} else {
			logger.Info("Event publisher initialized")
			defer publisher.Close()
		}
	} else {
		logger.Info("NATS_URL not configured, event publishing disabled")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	pipelineRepo := repository.NewPipelineRepository(db)

	// Initialize services
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour)
	authService := services.NewAuthService(userRepo, roleRepo, issuer, logger)
	roleService := services.NewRoleService(roleRepo, userRepo, permCache, logger)
	pipelineService := services.NewPipelineService(pipelineRepo, logger)
	customerService := services.NewCustomerService(customerRepo, userRepo, pipelineService, publisher, logger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	roleHandler := handlers.NewRoleHandler(roleService)
	customerHandler := handlers.NewCustomerHandler(customerService)
	interactionHandler := handlers.NewInteractionHandler(customerService)
	pipelineHandler := handlers.NewPipelineHandler(pipelineService)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())

	// Health check endpoints (no auth required)
	router.GET("/health", handlers.HealthCheck)
	router.GET("/ready", handlers.ReadinessCheck(db))

	api := router.Group("/api/v1")

	// Public auth endpoints
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	// Protected routes
	protected := api.Group("")
	protected.Use(middleware.BearerAuth(issuer, roleRepo, permCache, logger))
	{
		protected.GET("/auth/me", authHandler.Me)

		protected.GET("/users", authHandler.ListUsers)
		protected.POST("/users", authHandler.CreateUser)

		protected.GET("/roles", roleHandler.ListRoles)
		protected.GET("/roles/permissions", roleHandler.ListPermissions)

		// Role mutations additionally need the manage:roles permission.
		manageRoles := middleware.RequirePermission("manage:roles")
		protected.POST("/roles", manageRoles, roleHandler.CreateRole)
		protected.POST("/roles/reassign", manageRoles, roleHandler.ReassignRole)
		protected.PUT("/roles/:id", manageRoles, roleHandler.UpdateRole)
		protected.DELETE("/roles/:id", manageRoles, roleHandler.DeleteRole)

		protected.GET("/customers", customerHandler.ListCustomers)
		protected.POST("/customers", customerHandler.CreateCustomer)
		protected.GET("/customers/stats", customerHandler.Stats)
		protected.GET("/customers/:id", customerHandler.GetCustomer)
		protected.PUT("/customers/:id", customerHandler.UpdateCustomer)
		protected.DELETE("/customers/:id", customerHandler.DeleteCustomer)
		protected.PATCH("/customers/:id/status", customerHandler.UpdateStatus)
		protected.POST("/customers/:id/handlers", customerHandler.AssignHandler)
		protected.DELETE("/customers/:id/handlers", customerHandler.UnassignHandler)

		protected.GET("/interactions", interactionHandler.ListInteractions)
		protected.POST("/interactions", interactionHandler.CreateInteraction)
		protected.DELETE("/interactions/:id", interactionHandler.DeleteInteraction)

		protected.GET("/pipeline/stages", pipelineHandler.ListStages)
		protected.POST("/pipeline/stages", pipelineHandler.CreateStage)
		protected.PUT("/pipeline/stages/reorder", pipelineHandler.ReorderStages)
		protected.PUT("/pipeline/stages/:id", pipelineHandler.UpdateStage)
		protected.DELETE("/pipeline/stages/:id", pipelineHandler.DeleteStage)
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Infof("CRM service starting on port %s", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	<-quit
	logger.Info("Shutting down server...")
	logger.Info("Server shutdown complete")
}
