package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/zenGate-Global/pwa-studio/contracts"
	storeshandler "github.com/zenGate-Global/pwa-studio/domains/stores/be/handler"
	"github.com/zenGate-Global/pwa-studio/domains/stores/be/publishing"
	"github.com/zenGate-Global/pwa-studio/domains/stores/be/remotestore"
	storesservice "github.com/zenGate-Global/pwa-studio/domains/stores/be/service"
	platformlogging "github.com/zenGate-Global/pwa-studio/platform/go/logging"
	platformmiddleware "github.com/zenGate-Global/pwa-studio/platform/go/middleware"
)

type config struct {
	Port            string        `env:"PORT" envDefault:"3000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"90s"` // must exceed PUBLISH_TIMEOUT
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	MaxBodyBytes    int64         `env:"MAX_BODY_BYTES" envDefault:"20971520"` // 20 MiB
}

func main() {
	ctx := context.Background()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := platformlogging.NewLogger(platformlogging.Config{
		Component: "api-server",
		Level:     cfg.LogLevel,
	})
	if err != nil {
		log.Fatalf("init zap logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	storeCfg, err := remotestore.LoadConfig()
	if err != nil {
		logger.Fatal("load remote store config", zap.Error(err))
	}
	svcCfg, err := storesservice.LoadConfig()
	if err != nil {
		logger.Fatal("load stores config", zap.Error(err))
	}

	connector, closeConnector, err := remotestore.NewConnector(ctx, storeCfg, logger)
	if err != nil {
		logger.Fatal("init remote store", zap.String("backend", storeCfg.Backend), zap.Error(err))
	}
	defer closeConnector()

	publisher := publishing.New(connector, svcCfg.PublishingOptions(), logger.Named("publisher"))
	storesService, err := storesservice.New(publisher, storeCfg.Credentials(), svcCfg, logger)
	if err != nil {
		logger.Fatal("init stores service", zap.Error(err))
	}
	storesHTTPHandler := storeshandler.New(storesService, logger)

	spec, err := contracts.LoadStores()
	if err != nil {
		logger.Fatal("load stores contract", zap.Error(err))
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newRouter(cfg, logger, spec, storesHTTPHandler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	go func() {
		logger.Info("starting api server",
			zap.String("port", cfg.Port),
			zap.String("store_backend", storeCfg.Backend),
			zap.String("site_domain", svcCfg.SiteDomain),
		)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server listen failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newRouter(cfg config, logger *zap.Logger, spec *openapi3.T, stores *storeshandler.Handler) http.Handler {
	rootRouter := chi.NewRouter()

	rootRouter.Use(
		chimw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		chimw.Timeout(cfg.RequestTimeout),
		chimw.RequestSize(cfg.MaxBodyBytes),
		platformmiddleware.DefaultCORS(),
	)

	rootRouter.Use(platformlogging.RequestLogger(logger))
	rootRouter.Use(platformmiddleware.RequestTrace)

	rootRouter.Get("/", stores.Status)
	rootRouter.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	rootRouter.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// ---- Swagger UI + OpenAPI JSON (public) ----
	registerDocsRoutes(rootRouter, logger, spec)

	rootRouter.Group(func(r chi.Router) {
		r.Use(platformmiddleware.SpecValidator(spec))
		stores.Routes(r)
	})

	return rootRouter
}
