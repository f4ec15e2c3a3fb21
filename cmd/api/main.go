package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/uema/repositorio/internal/auth"
	"github.com/uema/repositorio/internal/config"
	"github.com/uema/repositorio/internal/db"
	internalhttp "github.com/uema/repositorio/internal/http"
	"github.com/uema/repositorio/internal/metrics"
	"github.com/uema/repositorio/internal/repo"
	"github.com/uema/repositorio/internal/service"
	"github.com/uema/repositorio/internal/storage"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api encerrada com erro")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx := context.Background()

	if err := db.Migrate(cfg.DBDSN); err != nil {
		return fmt.Errorf("migrações: %w", err)
	}

	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer pool.Close()

	deps := internalhttp.Deps{Config: cfg}

	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis parse: %w", err)
		}
		redisClient := redis.NewClient(redisOpts)
		defer redisClient.Close()
		deps.Redis = redisClient
	}

	files, err := newStore(cfg.Storage)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewCollector(registry)

	repository := repo.New(pool)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTTL)
	userService := service.NewUserService(repository)

	if created, err := userService.SeedAdmin(ctx, cfg.Admin); err != nil {
		return fmt.Errorf("admin inicial: %w", err)
	} else if !created && !cfg.Admin.Enabled() {
		log.Warn().Msg("ADMIN_EMAIL/ADMIN_PASSWORD ausentes; nenhum administrador criado")
	}

	deps.DB = repository
	deps.JWT = jwtManager
	deps.Auth = service.NewAuthService(repository, jwtManager, recorder)
	deps.Users = userService
	deps.Documents = service.NewDocumentService(repository, files, recorder)
	deps.Approvals = service.NewApprovalService(repository, recorder)
	deps.Metrics = recorder
	deps.Gatherer = registry

	handler, err := internalhttp.NewRouter(deps)
	if err != nil {
		return fmt.Errorf("router: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("storage", cfg.Storage.Provider).Msgf("API ouvindo em :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("encerrando...")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newStore(cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.Provider {
	case "local":
		return storage.NewLocalStore(cfg.UploadDir)
	case "s3":
		return storage.NewS3Store(storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	case "noop":
		log.Warn().Msg("STORAGE_PROVIDER=noop: envios de documentos serão recusados")
		return storage.NoopStore{}, nil
	}
	return nil, fmt.Errorf("provedor %s não suportado", cfg.Provider)
}
