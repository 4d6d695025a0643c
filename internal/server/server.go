package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"contrapunto/internal/config"
	"contrapunto/internal/handler"
	compHandler "contrapunto/internal/handler/composition"
	"contrapunto/internal/pkg/cache"
	"contrapunto/internal/pkg/jwt"
	"contrapunto/internal/pkg/mongodb"
	"contrapunto/internal/pkg/storage"
	"contrapunto/internal/pkg/storage/local"
	"contrapunto/internal/pkg/storagefactory"
	"contrapunto/internal/pkg/workflow"
	compRepo "contrapunto/internal/repository/composition"
	"contrapunto/internal/server/middleware"
	compService "contrapunto/internal/service/composition"
)

// Server is the HTTP server.
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	mongo  *mongodb.Client
	redis  *cache.RedisCache
	svc    *compService.Service
	clips  storage.Storage
}

// New wires the collaborators and builds the server. MongoDB, Redis and clip
// storage are optional and missing ones only disable their feature; the
// workflow backend is required.
func New(cfg *config.Config) (*Server, error) {
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	flow, err := workflow.NewClient(&workflow.Config{
		BaseURL:         cfg.Workflow.BaseURL,
		ScriptTimeout:   cfg.Workflow.ScriptTimeout,
		GenerateTimeout: cfg.Workflow.GenerateTimeout,
		MergeTimeout:    cfg.Workflow.MergeTimeout,
		PublishTimeout:  cfg.Workflow.PublishTimeout,
	})
	if err != nil {
		return nil, err
	}

	var mongoClient *mongodb.Client
	if cfg.Mongo.URI != "" {
		client, err := mongodb.New(&cfg.Mongo)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to MongoDB, continuing without persistence")
		} else {
			mongoClient = client
			log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

			if err := mongodb.EnsureIndexes(mongoClient.Database()); err != nil {
				log.Warn().Err(err).Msg("failed to ensure indexes")
			}
		}
	}

	var redisCache *cache.RedisCache
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without the script cache")
		} else {
			redisCache = rc
			log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")
		}
	}

	var clips storage.Storage
	if cfg.Storage.Type != "" {
		st, err := storagefactory.NewStorage(context.Background(), &cfg.Storage)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize clip storage, video uploads disabled")
		} else {
			clips = st
			log.Info().Str("type", cfg.Storage.Type).Msg("initialized clip storage")
		}
	}

	var repository compRepo.Repository
	if mongoClient != nil {
		repository = compRepo.NewRepo(mongoClient.Database())
	}

	svc := compService.NewService(flow, compService.Options{
		Repository:        repository,
		ClipStorage:       clips,
		Cache:             redisCache,
		RequireBackground: cfg.Workflow.RequireBackground,
		MaxClipSize:       cfg.Workflow.MaxClipSize,
	})

	srv := &Server{
		cfg:    cfg,
		engine: engine,
		mongo:  mongoClient,
		redis:  redisCache,
		svc:    svc,
		clips:  clips,
	}

	srv.setupRoutes()

	return srv, nil
}

func (s *Server) setupRoutes() {
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger())
	s.engine.Use(middleware.CORS())

	healthHandler := handler.NewHealthHandler()
	s.engine.GET("/health", healthHandler.Health)
	s.engine.GET("/ready", healthHandler.Ready)

	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Local clip storage is served straight from disk; OSS serves its own URLs.
	if ls, ok := s.clips.(*local.LocalStorage); ok {
		s.engine.Static("/clips", ls.BasePath())
	}

	jwtSecret := s.cfg.Auth.JWTSecret
	if jwtSecret == "" {
		jwtSecret = "default-secret-key-change-in-production"
		log.Warn().Msg("JWT secret not configured, using default (NOT SECURE for production)")
	}
	jwtUtil := jwt.NewJWT(jwtSecret)

	compHdl := compHandler.NewHandler(s.svc)

	v1 := s.engine.Group("/api/v1")
	v1.Use(middleware.Auth(jwtUtil))
	{
		v1.POST("/compositions", compHdl.CreateComposition)
		v1.GET("/compositions", compHdl.ListCompositions)
		v1.GET("/compositions/:composition_id", compHdl.GetComposition)
		v1.DELETE("/compositions/:composition_id", compHdl.DeleteComposition)

		v1.POST("/compositions/:composition_id/units", compHdl.AddUnit)
		v1.PATCH("/compositions/:composition_id/units/:index", compHdl.UpdateUnit)
		v1.DELETE("/compositions/:composition_id/units/:index", compHdl.RemoveUnit)
		v1.POST("/compositions/:composition_id/units/:index/clip", compHdl.UploadClip)

		v1.POST("/compositions/:composition_id/units/:index/generate", compHdl.GenerateUnit)
		v1.POST("/compositions/:composition_id/merge", compHdl.MergeComposition)
		v1.POST("/compositions/:composition_id/publish", compHdl.PublishComposition)
		v1.POST("/compositions/:composition_id/script", compHdl.ImportScript)
	}
}

// Run starts the server and blocks until the context is cancelled or the
// listener fails.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")

		if s.mongo != nil {
			if err := s.mongo.Close(context.Background()); err != nil {
				log.Error().Err(err).Msg("failed to close MongoDB connection")
			}
		}
		if s.redis != nil {
			if err := s.redis.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close Redis connection")
			}
		}

		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

// Engine exposes the gin engine for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
