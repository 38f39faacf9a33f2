package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"docsai/docs"
	"docsai/internal/completion"
	"docsai/internal/config"
	handlers "docsai/internal/http/handler"
	"docsai/internal/http/middleware"
	"docsai/internal/logger"
	"docsai/internal/otel"
	"docsai/internal/repository"
	"docsai/internal/service"
)

// @title docsai API
// @version 1.0
// @BasePath /
func main() {
	cfg := config.Load()

	log := logger.New(logger.Options{
		FilePath:   cfg.LogFilePath,
		Production: cfg.IsProduction(),
	})
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.Fatal("tracing_init_failed", zap.Error(err))
	}

	store, closeStore, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal("storage_init_failed", zap.Error(err))
	}

	docRepo := repository.NewDocumentBlob(store, cfg.Storage.Key, log.Named("repository"))
	docSvc := service.NewDocumentService(docRepo, log.Named("documents"))
	gateway := completion.NewOpenAI(cfg.OpenAI, log)
	sessions := service.NewSessionRegistry(docSvc, gateway, cfg.Session.TTL, log.Named("sessions"))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatal("metrics_init_failed", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(log.Named("http")),
	})

	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log.Named("http")))
	app.Use(promMiddleware.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, handlers.Dependencies{
		Storage:   store,
		Documents: docSvc,
		Sessions:  sessions,
		Gateway:   gateway,
		Logger:    log.Named("events"),
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		<-ctx.Done()
		log.Info("shutting_down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error("http_shutdown_failed", zap.Error(err))
		}
	}()

	addr := ":" + cfg.Port
	log.Info("server_starting", zap.String("addr", addr), zap.String("storage_backend", cfg.Storage.Backend))
	if err := app.Listen(addr); err != nil {
		log.Error("server_failed", zap.Error(err))
	}

	if err := closeStore(); err != nil {
		log.Error("storage_close_failed", zap.Error(err))
	}
	tctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(tctx); err != nil {
		log.Error("tracing_shutdown_failed", zap.Error(err))
	}
}
