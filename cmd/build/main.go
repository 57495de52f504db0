package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/waymarker/waymarker-backend/internal/build"
	"github.com/waymarker/waymarker-backend/internal/config"
	"github.com/waymarker/waymarker-backend/internal/database"
	"github.com/waymarker/waymarker-backend/internal/domain"
	"github.com/waymarker/waymarker-backend/internal/events"
	"github.com/waymarker/waymarker-backend/internal/render"
	"github.com/waymarker/waymarker-backend/internal/repository"
	pkglogger "github.com/waymarker/waymarker-backend/pkg/logger"
	pkgstorage "github.com/waymarker/waymarker-backend/pkg/storage"
)

// Standalone build runner for cron jobs and local use. Runs one pass and
// exits non-zero when the run fails or any item could not be rendered.
func main() {
	scopeFlag := flag.String("scope", "changed", "build scope: full or changed")
	flag.Parse()

	config.LoadDotEnv()
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)
	logg := pkglogger.GetLogger()

	cfg, err := config.Load(configPath(env))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	scope := domain.BuildScope(*scopeFlag)
	if !scope.Valid() {
		log.Fatalf("Unknown scope %q, want full or changed", *scopeFlag)
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
	if v, err := contentRepo.MaxContentVersion(); err != nil {
		logg.Warn().Err(err).Msg("stamper seed: live max version unavailable")
	} else {
		stamper.Observe(v)
	}
	if v, err := snapshotRepo.MaxContentVersion(); err != nil {
		logg.Warn().Err(err).Msg("stamper seed: snapshot max version unavailable")
	} else {
		stamper.Observe(v)
	}
	if run, err := generationRepo.Latest(); err != nil {
		logg.Warn().Err(err).Msg("stamper seed: latest generation run unavailable")
	} else if run != nil {
		stamper.Observe(run.GenerationVersion)
	}

	store, err := render.NewFileStore(cfg.Build.OutputDir)
	if err != nil {
		log.Fatalf("Failed to open artifact store: %v", err)
	}

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
		render.NewHTMLRenderer(cfg.Site.Name), store, stamper,
		events.NewBus(*logg), *logg,
		build.Options{Workers: cfg.Build.Workers, Remote: remote},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := orchestrator.Run(ctx, scope)
	if err != nil {
		log.Fatalf("Build failed: %v", err)
	}
	fmt.Printf("generation %s: rendered %d, removed %d, failures %d\n",
		report.GenerationVersion, len(report.RenderedPaths), len(report.RemovedPaths), len(report.Failures))
	for _, f := range report.Failures {
		fmt.Printf("  failed %s: %s\n", f.Path, f.Reason)
	}
	if len(report.Failures) > 0 {
		os.Exit(1)
	}
}

func configPath(env string) string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}
