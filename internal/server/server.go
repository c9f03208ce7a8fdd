package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskdesk/docs"
	"taskdesk/internal/auth"
	"taskdesk/internal/config"
	"taskdesk/internal/handler"
	"taskdesk/internal/middleware"
	"taskdesk/internal/repository"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Server struct {
	Engine   *gin.Engine
	Provider repository.Provider
	Config   *config.Config
}

func Init(cfg *config.Config) (*Server, error) {
	provider, err := OpenProvider(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	return &Server{
		Engine:   NewRouter(cfg, provider),
		Provider: provider,
		Config:   cfg,
	}, nil
}

// NewRouter registers every route against provider.
func NewRouter(cfg *config.Config, provider repository.Provider) *gin.Engine {
	r := gin.Default()

	docs.SwaggerInfo.Host = "localhost:" + cfg.ServerPort
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Initialize handlers
	taskHandler := handler.NewTaskHandler(provider, cfg.Now)
	statsHandler := handler.NewStatsHandler(provider, cfg.Now)
	healthHandler := handler.NewHealthHandler(provider, cfg.Backend, cfg.BackendTimeout)

	r.GET("/health", healthHandler.Check)

	// Session scoped routes
	scoped := r.Group("/")
	scoped.Use(middleware.Session(auth.NewSigner(cfg.SessionSecret, cfg.SessionTTL)))
	{
		// Task routes
		scoped.POST("/tasks", taskHandler.Create)
		scoped.GET("/tasks", taskHandler.List)
		scoped.DELETE("/tasks", taskHandler.DeleteAll)
		scoped.POST("/tasks/clear-completed", taskHandler.ClearCompleted)
		scoped.GET("/tasks/:id", taskHandler.GetByID)
		scoped.PUT("/tasks/:id", taskHandler.Update)
		scoped.DELETE("/tasks/:id", taskHandler.Delete)
		scoped.POST("/tasks/:id/toggle", taskHandler.Toggle)
		scoped.PATCH("/tasks/:id/status", taskHandler.SetStatus)

		// Stats routes
		scoped.GET("/stats", statsHandler.Get)
	}
	return r
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		log.Printf("🚀 Server running on port %s (backend: %s)\n", s.Config.ServerPort, s.Config.Backend)
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
	if err := s.Provider.Close(); err != nil {
		log.Printf("⚠️  Failed to close %s backend: %v", s.Config.Backend, err)
	}

	log.Println("✅ Server exited properly")
}
