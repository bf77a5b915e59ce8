package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/automatik-diagnostic/internal/config"
	"github.com/xavierca1/automatik-diagnostic/internal/infra/database"
	"github.com/xavierca1/automatik-diagnostic/internal/infra/http/handlers"
	"github.com/xavierca1/automatik-diagnostic/internal/infra/http/middleware"
	"github.com/xavierca1/automatik-diagnostic/internal/infra/integration/automatik"
	"github.com/xavierca1/automatik-diagnostic/internal/infra/integration/mautic"
	"github.com/xavierca1/automatik-diagnostic/internal/infra/logger"
	"github.com/xavierca1/automatik-diagnostic/internal/infra/mail"
	"github.com/xavierca1/automatik-diagnostic/internal/infra/queue"
	"github.com/xavierca1/automatik-diagnostic/internal/infra/realtime"
	"github.com/xavierca1/automatik-diagnostic/internal/infra/worker"
	"github.com/xavierca1/automatik-diagnostic/internal/usecase"
	"github.com/xavierca1/automatik-diagnostic/internal/watcher"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("development", "info")
		bootLog.Fatal().Err(err).Msg("❌ Configuração inválida")
	}

	log := logger.New(cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDBConnection(ctx, cfg.Database.URL, database.PoolConfig{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Falha ao conectar no banco")
	}
	defer db.Close()

	if cfg.Database.Migrate {
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("❌ Falha ao aplicar migrations")
		}
	}

	// 1. Repositório e tempo real
	diagnosticRepo := database.NewDiagnosticRepository(db)

	hub := realtime.NewHub(log)

	listener, err := realtime.NewPgListener(cfg.Database.URL, hub, diagnosticRepo, log)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Falha ao escutar notificações do Postgres")
	}
	go func() {
		if err := listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("❌ Listener do Postgres encerrado")
		}
	}()

	// 2. Integrações
	analysisClient := automatik.NewClient(cfg.Integrations.AnalysisWebhookURL, cfg.Integrations.Timeout)
	mauticClient := mautic.NewClient(cfg.Integrations.MauticFormURL, cfg.Integrations.Timeout)

	var dispatcher usecase.AnalysisDispatcher = analysisClient
	var rabbitState handlers.ConnectionState
	if cfg.QueueEnabled() {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.Queue.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("❌ Falha ao conectar no RabbitMQ")
		}
		defer rabbitMQ.Close()

		dispatcher = queue.NewProducer(rabbitMQ.Ch)
		rabbitState = rabbitMQ.Conn

		analysisWorker := queue.NewWorker(rabbitMQ.Ch, analysisClient, log)
		go func() {
			if err := analysisWorker.Start(ctx, queue.QueueName); err != nil {
				log.Error().Err(err).Msg("❌ Worker de análise encerrado")
			}
		}()
	} else {
		log.Warn().Msg("⚠️ Fila desativada, pedidos de análise vão direto para o webhook")
	}

	var mailer usecase.ReportMailer
	if cfg.MailEnabled() {
		mailer = mail.NewEmailSender(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Password, cfg.Mail.From)
	}

	// 3. UseCases
	startUC := usecase.NewStartDiagnosticUseCase(diagnosticRepo, dispatcher, log)
	deliverUC := usecase.NewDeliverResultUseCase(diagnosticRepo, hub, mailer, log)
	resultWatcher := watcher.New(hub, diagnosticRepo, cfg.Watch.Timeout, cfg.Watch.Tick, log)

	// 4. Handlers
	proxyHandler := handlers.NewProxyHandler(mauticClient, log)
	diagnosticHandler := handlers.NewDiagnosticHandler(startUC, diagnosticRepo, resultWatcher, log)
	webhookHandler := handlers.NewWebhookHandler(deliverUC, log)
	healthHandler := handlers.NewHealthHandler(db, rabbitState, map[string]string{
		"mautic":           cfg.Integrations.MauticFormURL,
		"analysis_webhook": cfg.Integrations.AnalysisWebhookURL,
	}, version)
	limiter := handlers.NewRateLimiter(cfg.Watch.RateLimitPerMinute, 0)

	// 5. Workers
	staleWorker := worker.NewStaleDiagnosticWorker(diagnosticRepo, cfg.Watch.StaleAfter, log)
	go staleWorker.Start(ctx)

	// 6. Router
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.Origins(),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
	}))

	r.HandleFunc("/proxy", proxyHandler.Handle)
	r.With(limiter.Middleware).Post("/diagnostics", diagnosticHandler.Start)
	r.Get("/diagnostics/{id}", diagnosticHandler.Get)
	r.Get("/diagnostics/{id}/events", diagnosticHandler.Events)
	r.HandleFunc("/webhook/results", webhookHandler.Handle)
	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Watch.Timeout + 30*time.Second,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Str("env", cfg.Env).Msg("🔥 Servidor de diagnóstico rodando")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("❌ Servidor encerrado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("🛑 Encerrando servidor")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("❌ Falha no shutdown")
	}
}
