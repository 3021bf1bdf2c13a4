package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/xavierca1/imob-crm/internal/config"
	"github.com/xavierca1/imob-crm/internal/entity"
	"github.com/xavierca1/imob-crm/internal/infra/cache"
	"github.com/xavierca1/imob-crm/internal/infra/database"
	"github.com/xavierca1/imob-crm/internal/infra/http/handlers"
	"github.com/xavierca1/imob-crm/internal/infra/http/middleware"
	"github.com/xavierca1/imob-crm/internal/infra/integration/whatsapp"
	"github.com/xavierca1/imob-crm/internal/infra/mail"
	"github.com/xavierca1/imob-crm/internal/infra/queue"
	"github.com/xavierca1/imob-crm/internal/infra/worker"
	"github.com/xavierca1/imob-crm/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Configuração inválida: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDBConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Falha ao conectar no Postgres: %v", err)
	}
	defer db.Close()

	// 1. Repositórios
	leadRepo := database.NewLeadRepository(db)
	timelineRepo := database.NewTimelineRepository(db)
	taskRepo := database.NewTaskRepository(db)
	templateRepo := database.NewTemplateRepository(db)

	var propertyRepo entity.PropertyRepositoryInterface = database.NewPropertyRepository(db)
	var cachePinger handlers.Pinger
	if cfg.RedisAddr != "" {
		redisClient := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.MatchCacheTTL)
		defer redisClient.Close()
		propertyRepo = cache.NewCachedPropertyRepository(propertyRepo, redisClient)
		cachePinger = redisClient
		log.Printf("🧠 Cache de comparáveis no Redis (TTL %s)", cfg.MatchCacheTTL)
	}

	// 2. Canal de WhatsApp: fila quando há RabbitMQ, envio direto quando não há
	waClient := whatsapp.NewClient(cfg.WhatsAppToken, cfg.WhatsAppPhoneID, cfg.WhatsAppBaseURL)
	var channel usecase.MessagingChannel = waClient
	var broker *queue.RabbitMQ
	if cfg.RabbitMQURL != "" {
		broker, err = queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		defer broker.Close()

		channel = queue.NewProducer(broker.Ch)
		go func() {
			if err := queue.NewWorker(broker.Ch, waClient).Start(ctx, queue.QueueName); err != nil {
				log.Printf("❌ Worker do WhatsApp parou: %v", err)
			}
		}()
	}

	var notifier usecase.LeadNotifier
	if cfg.MailEnabled() {
		notifier = mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.MailFrom, cfg.LeadAlertTo)
	}

	// 3. Serviços do funil
	metrics := middleware.PipelineMetrics{}
	timeline := usecase.NewTimelineService(timelineRepo)
	registry := usecase.NewStoreRegistry(leadRepo, timeline, metrics)
	matcher := usecase.NewSmartMatchService(propertyRepo, metrics)
	messaging := usecase.NewMessagingService(channel, timeline, metrics)

	captureUC := usecase.NewCaptureLeadUseCase(leadRepo, propertyRepo, timeline, notifier)
	detailUC := usecase.NewLeadDetailUseCase(registry, propertyRepo, taskRepo, templateRepo, timeline, matcher, messaging)

	// 4. Workers
	go worker.NewTaskReminderWorker(taskRepo, timeline, cfg.TaskSweepInterval).Start(ctx)
	go registry.StartJanitor(ctx, cfg.StoreIdleTTL/2, cfg.StoreIdleTTL)

	// 5. Handlers
	health := handlers.NewHealthHandler(db, nil, cachePinger)
	if broker != nil {
		health.RabbitMQ = broker
	}

	router := handlers.Router{
		Leads:       handlers.NewLeadHandler(captureUC),
		Pipeline:    handlers.NewPipelineHandler(registry),
		Detail:      handlers.NewDetailHandler(detailUC, templateRepo),
		Health:      health,
		CORSOrigins: cfg.CORSOrigins,
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("🔥 CRM Imobiliário rodando na porta %s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("❌ Servidor caiu: %v", err)
	}
	log.Println("👋 Servidor encerrado")
}
