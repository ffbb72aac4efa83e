package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"projecthub/docs"
	"projecthub/internal/auth"
	"projecthub/internal/config"
	"projecthub/internal/database"
	"projecthub/internal/handler"
	"projecthub/internal/middleware"
	"projecthub/internal/repository"
	"projecthub/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
	Config *config.Config
}

func Init(cfg *config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := handler.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("❌ failed to register validators: %w", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(cfg, db); err != nil {
		return nil, fmt.Errorf("❌ failed to migrate DB: %w", err)
	}

	var rdb *redis.Client
	if cfg.RedisAddress != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("❌ failed to connect to Redis: %w", err)
		}
		log.Println("✅ Connected to Redis")
	} else {
		log.Println("⚠️  REDIS_ADDRESS not set, issue creation is not rate limited")
	}

	gin.SetMode(cfg.GinMode)

	return &Server{
		Engine: NewRouter(cfg, db, rdb),
		DB:     db,
		Redis:  rdb,
		Config: cfg,
	}, nil
}

// NewRouter wires repositories, services and handlers onto a gin engine.
// A nil rdb disables the issue creation rate limit. handler.RegisterValidators
// must have succeeded first.
func NewRouter(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry())

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	projectTaskRepo := repository.NewProjectTaskRepository(db)
	independentTaskRepo := repository.NewIndependentTaskRepository(db)

	issueService := service.NewIssueService(repository.NewStore(db))

	// Initialize handlers
	userHandler := handler.NewUserHandler(userRepo, tokens)
	projectHandler := handler.NewProjectHandler(projectRepo)
	projectTaskHandler := handler.NewProjectTaskHandler(projectTaskRepo, projectRepo)
	independentTaskHandler := handler.NewIndependentTaskHandler(independentTaskRepo)
	issueHandler := handler.NewIssueHandler(issueService)

	// Public routes
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.InstanceName(docs.SwaggerInfo.InstanceName())))
	r.POST("/register", userHandler.Register)
	r.POST("/login", userHandler.Login)

	createIssue := []gin.HandlerFunc{issueHandler.Create}
	if rdb != nil {
		limiter := middleware.IssueRateLimiter(rdb, "issue-create", cfg.IssueCreateLimit, cfg.IssueCreateWindow)
		createIssue = append([]gin.HandlerFunc{limiter}, createIssue...)
	}

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(tokens))
	{
		// User routes
		authorized.GET("/users", userHandler.List)
		authorized.GET("/users/me", userHandler.Me)

		// Project routes
		authorized.POST("/projects", projectHandler.Create)
		authorized.GET("/projects", projectHandler.GetAll)
		authorized.GET("/projects/:id", projectHandler.GetByID)
		authorized.POST("/projects/:id/tasks", projectTaskHandler.Create)
		authorized.GET("/projects/:id/tasks", projectTaskHandler.GetByProject)
		authorized.GET("/project-tasks/:id", projectTaskHandler.GetByID)

		// Independent task routes
		authorized.POST("/independent-tasks", independentTaskHandler.Create)
		authorized.GET("/independent-tasks", independentTaskHandler.GetAll)
		authorized.GET("/independent-tasks/:id", independentTaskHandler.GetByID)

		// Issue routes
		authorized.POST("/issues", createIssue...)
		authorized.GET("/issues", issueHandler.List)
		authorized.GET("/issues/search", issueHandler.Search)
		authorized.GET("/issues/report", issueHandler.Report)
		authorized.GET("/issues/:id", issueHandler.GetByID)
		authorized.PUT("/issues/:id", issueHandler.Update)
		authorized.PATCH("/issues/:id", issueHandler.Update)
		authorized.DELETE("/issues/:id", issueHandler.Delete)
	}
	return r
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		log.Printf("🚀 Server running on port %s\n", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %s", err)
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			log.Printf("⚠️  Redis close: %v", err)
		}
	}
	if sqlDB, err := s.DB.DB(); err == nil {
		sqlDB.Close()
	}

	log.Println("✅ Server exited properly")
}
