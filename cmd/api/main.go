package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/waymarker/waymarker-backend/internal/build"
	"github.com/waymarker/waymarker-backend/internal/config"
	"github.com/waymarker/waymarker-backend/internal/database"
	"github.com/waymarker/waymarker-backend/internal/domain"
	"github.com/waymarker/waymarker-backend/internal/events"
	"github.com/waymarker/waymarker-backend/internal/handler"
	"github.com/waymarker/waymarker-backend/internal/middleware"
	"github.com/waymarker/waymarker-backend/internal/render"
	"github.com/waymarker/waymarker-backend/internal/repository"
	"github.com/waymarker/waymarker-backend/internal/routes"
	"github.com/waymarker/waymarker-backend/internal/service"
	pkgcache "github.com/waymarker/waymarker-backend/pkg/cache"
	pkglogger "github.com/waymarker/waymarker-backend/pkg/logger"
	pkgredis "github.com/waymarker/waymarker-backend/pkg/redis"
	pkgstorage "github.com/waymarker/waymarker-backend/pkg/storage"
)

// @title Waymarker Build Engine API
// @version 1.0
// @description Incremental build engine for a personal content archive
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func main() {
	dotenvFiles := config.LoadDotEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)
	logg := pkglogger.GetLogger()
	logg.Info().Str("env", env).Strs("env_files", dotenvFiles).Msg("starting")

	cfg, err := config.Load(configPath(env))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	contentRepo := repository.NewContentRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	generationRepo := repository.NewGenerationRepository(db)
	edgeRepo := repository.NewEdgeRepository(db)
	exclusionRepo := repository.NewTagExclusionRepository(db)

	stamper := domain.NewVersionStamper()
	seedStamper(stamper, contentRepo, snapshotRepo, generationRepo, logg)

	bus := events.NewBus(*logg)

	// Redis is optional; without it bracket resolution just skips the cache.
	var cacheSvc pkgcache.Service
	if cfg.Redis.Enabled {
		redisClient, err := pkgredis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize)
		if err != nil {
			logg.Warn().Err(err).Msg("redis unavailable, resolve cache disabled")
		} else {
			cacheSvc = pkgcache.New(redisClient)
			service.SubscribeResolveCacheInvalidation(bus, cacheSvc)
		}
	}

	store, err := render.NewFileStore(cfg.Build.OutputDir)
	if err != nil {
		log.Fatalf("Failed to open artifact store: %v", err)
	}
	renderer := render.NewHTMLRenderer(cfg.Site.Name)

	var remote *pkgstorage.S3Client
	if cfg.S3.Enabled {
		remote, err = pkgstorage.NewS3Client(pkgstorage.S3Config{
			Endpoint:        cfg.S3.Endpoint,
			Region:          cfg.S3.Region,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Bucket:          cfg.S3.Bucket,
			BasePath:        cfg.S3.BasePath,
		})
		if err != nil {
			log.Fatalf("Failed to configure object storage: %v", err)
		}
	}

	orchestrator := build.NewOrchestrator(
		contentRepo, snapshotRepo, generationRepo, edgeRepo, exclusionRepo,
		renderer, store, stamper, bus, *logg,
		build.Options{Workers: cfg.Build.Workers, Remote: remote},
	)

	contentSvc := service.NewContentService(contentRepo, snapshotRepo, edgeRepo, stamper, bus)
	tagSvc := service.NewTagService(exclusionRepo)
	resolveSvc := service.NewResolveService(contentRepo, cacheSvc)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())
	if len(cfg.CORS.AllowedOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins
		corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "X-API-Key", "X-Request-ID")
		router.Use(cors.New(corsConfig))
	}

	routes.Setup(
		router,
		handler.NewContentHandler(contentSvc),
		handler.NewBuildHandler(orchestrator, generationRepo),
		handler.NewTagHandler(tagSvc),
		handler.NewResolveHandler(resolveSvc),
		cfg,
	)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	logg.Info().Str("addr", addr).Msg("listening")
	if err := router.Run(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func configPath(env string) string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

// seedStamper replays the highest version ever issued so stamps stay
// monotonic across restarts. A failed read only narrows the seed; the
// stamper still never goes backwards within a process.
func seedStamper(
	stamper *domain.VersionStamper,
	content repository.ContentRepository,
	snapshots repository.SnapshotRepository,
	generations repository.GenerationRepository,
	logg *zerolog.Logger,
) {
	if v, err := content.MaxContentVersion(); err != nil {
		logg.Warn().Err(err).Msg("stamper seed: live max version unavailable")
	} else {
		stamper.Observe(v)
	}
	if v, err := snapshots.MaxContentVersion(); err != nil {
		logg.Warn().Err(err).Msg("stamper seed: snapshot max version unavailable")
	} else {
		stamper.Observe(v)
	}
	if run, err := generations.Latest(); err != nil {
		logg.Warn().Err(err).Msg("stamper seed: latest generation run unavailable")
	} else if run != nil {
		stamper.Observe(run.GenerationVersion)
	}
}
