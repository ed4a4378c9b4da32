package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"preorder/internal/api/handlers"
	"preorder/internal/api/middleware"
	"preorder/internal/config"
	"preorder/internal/database"
	"preorder/internal/logger"
	"preorder/internal/pipeline"
	"preorder/internal/store"

	"github.com/gin-gonic/gin"
)

type Server struct {
	config *config.Config
	logger *logger.Logger
	db     *database.Database
	router *gin.Engine
	server *http.Server
}

func New(cfg *config.Config, logger *logger.Logger, db *database.Database) *Server {
	// Set Gin mode
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())

	// The API shares the pipeline wiring so runs triggered over HTTP behave
	// exactly like cmd/sync runs.
	st := store.New(db, cfg)
	pipe := pipeline.New(cfg, st, logger)

	offerHandler := handlers.NewOfferHandler(db.DB, cfg, logger)
	variantHandler := handlers.NewVariantHandler(db.DB, cfg, logger)
	runHandler := handlers.NewRunHandler(pipe, logger)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Routes
	v1 := router.Group("/api/v1")
	{
		// Offers
		offers := v1.Group("/offers")
		{
			offers.GET("", offerHandler.List)
			offers.GET("/batch", offerHandler.ListBatch)
			offers.GET("/:id", offerHandler.Get)
		}

		// Variants
		variants := v1.Group("/variants")
		{
			variants.GET("", variantHandler.List)
		}

		// Sync runs
		sync := v1.Group("/sync")
		{
			sync.GET("/steps", runHandler.ListSteps)
			sync.POST("/runs", runHandler.Trigger)
		}
	}

	return &Server{
		config: cfg,
		logger: logger,
		db:     db,
		router: router,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server on " + addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	return s.server.Shutdown(ctx)
}
