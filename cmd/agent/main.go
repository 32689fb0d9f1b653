package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bryanwahyu/screenguard/internal/application"
	"github.com/bryanwahyu/screenguard/internal/application/pipeline"
	"github.com/bryanwahyu/screenguard/internal/application/retention"
	appscans "github.com/bryanwahyu/screenguard/internal/application/scans"
	"github.com/bryanwahyu/screenguard/internal/config"
	openaicls "github.com/bryanwahyu/screenguard/internal/infra/classifier/openai"
	"github.com/bryanwahyu/screenguard/internal/infra/classifier/pipelex"
	mysqlp "github.com/bryanwahyu/screenguard/internal/infra/db/mysql"
	postgresp "github.com/bryanwahyu/screenguard/internal/infra/db/postgres"
	sqlitep "github.com/bryanwahyu/screenguard/internal/infra/db/sqlite"
	"github.com/bryanwahyu/screenguard/internal/infra/httpserver"
	"github.com/bryanwahyu/screenguard/internal/infra/storage"
	"github.com/bryanwahyu/screenguard/internal/infra/watcher"
	domain "github.com/bryanwahyu/screenguard/internal/domain/scans"
	"github.com/bryanwahyu/screenguard/internal/middleware"
)

func main() {
	// path config.yaml (CONFIG_PATH overrides inside Load)
	path := "config.yaml"

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// connect database per configured driver
	var db *sql.DB
	var repo domain.Repository
	switch cfg.Database.Driver {
	case "mysql":
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		repo = mysqlp.NewScanRepository(db)
	case "postgres":
		db, err = postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		repo = postgresp.NewScanRepository(db)
	default:
		db, err = sqlitep.Connect(ctx, cfg.Database.Path)
		if err != nil {
			log.Fatalf("sqlite connect error: %v", err)
		}
		repo = sqlitep.NewScanRepository(db)
	}
	defer db.Close()

	// upload chain: minio primary, imgur backup; an empty chain just degrades
	// every file to the locally served URL
	var backends []domain.Uploader
	if cfg.Minio.Endpoint != "" {
		store, err := storage.NewMinio(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
		backends = append(backends, store)
	}
	if cfg.Imgur.ClientID != "" {
		backends = append(backends, storage.NewImgur(cfg.Imgur.ClientID))
	}
	uploads := storage.NewChain(backends...)

	// classifier per configured mode
	var classifier domain.Classifier
	switch cfg.Classifier.Mode {
	case "openai":
		classifier = openaicls.NewClient(cfg.Classifier.OpenAI.APIKey, cfg.Classifier.OpenAI.Model)
	default:
		workDir := cfg.Classifier.WorkDir
		if workDir == "" {
			workDir = os.TempDir()
		}
		classifier = pipelex.NewRunner(cfg.Classifier.Command, workDir, cfg.ClassifierTimeout())
	}

	rules, err := cfg.RulesText()
	if err != nil {
		log.Fatalf("rules load error: %v", err)
	}

	clock := application.SystemClock{}
	svc := &appscans.Service{Repo: repo, Clock: clock}

	orch := pipeline.New(pipeline.Config{
		RulesText:    rules,
		UploadDir:    cfg.Uploads.Dir,
		LocalBaseURL: cfg.Server.PublicHost,
		QuietPeriod:  cfg.QuietPeriod(),
	}, svc, uploads, classifier, clock)

	scheduler := &retention.Scheduler{
		Repo:     repo,
		Clock:    clock,
		Interval: cfg.SweepInterval(),
	}
	go scheduler.Run(ctx)

	// watch screenshot dirs when configured; API-only mode otherwise
	if len(cfg.Watcher.Dirs) > 0 {
		w, err := watcher.New(cfg.Watcher.Dirs)
		if err != nil {
			log.Fatalf("watcher init error: %v", err)
		}
		go w.Run(ctx)
		go orch.Run(ctx, w.Events)
	} else {
		log.Println("no watcher dirs configured, running API only")
	}

	// health checks: database plus every watched dir
	checkers := map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
	}
	for _, d := range cfg.Watcher.Dirs {
		checkers["dir:"+d] = &middleware.DirHealthChecker{Path: d}
	}

	handler := httpserver.NewRouter(svc, scheduler, cfg.Uploads.Dir, checkers)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")

	// let in-flight pipeline runs finish before the process exits
	orch.Wait()

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
