package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/marklangat/waleads-backend/internal/config"
	"github.com/marklangat/waleads-backend/internal/db"
	"github.com/marklangat/waleads-backend/internal/dispatch"
	"github.com/marklangat/waleads-backend/internal/gateway"
	"github.com/marklangat/waleads-backend/internal/genai"
	"github.com/marklangat/waleads-backend/internal/handler"
	"github.com/marklangat/waleads-backend/internal/logger"
	"github.com/marklangat/waleads-backend/internal/notifier"
	"github.com/marklangat/waleads-backend/internal/queue"
	"github.com/marklangat/waleads-backend/internal/repository"
	"github.com/marklangat/waleads-backend/internal/service"
	"github.com/marklangat/waleads-backend/internal/worker"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, relying on OS environment")
	}

	cfg, err := config.Load(os.Getenv("WALEADS_CONFIG"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(cfg.Logging)

	conn, err := db.Connect(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer conn.Close()

	// Repositories
	itemRepo := &repository.ItemRepository{DB: conn}
	policyRepo := &repository.PolicyRepository{DB: conn}
	accountRepo := &repository.AccountRepository{DB: conn}
	convRepo := &repository.ConversationRepository{DB: conn}
	campaignRepo := &repository.CampaignRepository{DB: conn}
	followupRepo := &repository.FollowupRepository{DB: conn}
	lease := &repository.TickLease{DB: conn}

	// External collaborators
	gw := gateway.NewClient(cfg.Gateway)
	gen := genai.NewClient(cfg.GenAI)

	alerts, err := notifier.New(cfg.Telegram, logger.For("notifier"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start telegram notifier")
	}
	if alerts != nil {
		defer alerts.Close()
	}

	// Campaign intake over the broker
	var broker queue.Queue
	if cfg.AMQP.URL != "" {
		amqpQueue, err := queue.NewAMQPQueue(cfg.AMQP.URL, logger.For("queue"))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to broker")
		}
		defer amqpQueue.Close()
		broker = amqpQueue
	} else {
		log.Warn().Msg("no broker configured, using in-memory queue")
		broker = queue.NewInMemoryQueue(logger.For("queue"))
	}

	enqueueSvc := &service.EnqueueService{
		Campaigns: campaignRepo,
		Items:     itemRepo,
		Queue:     broker,
		Topic:     cfg.AMQP.IntakeQueue,
		Log:       logger.For("enqueue"),
	}
	if err := enqueueSvc.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start intake consumer")
	}

	newPipeline := func(v dispatch.Variant) *dispatch.Pipeline {
		plog := logger.For("dispatch").With().Str("kind", v.Kind).Logger()
		return &dispatch.Pipeline{
			Variant:       v,
			Items:         itemRepo,
			Policies:      policyRepo,
			Accounts:      accountRepo,
			Conversations: convRepo,
			Executor:      &dispatch.Executor{Gateway: gw, Timeout: cfg.Gateway.Timeout},
			Committer: &dispatch.Committer{
				Items:         itemRepo,
				Conversations: convRepo,
				Followups:     followupRepo,
				Alerter:       alerterOrNil(alerts),
				Log:           plog,
			},
			Lease: lease,
			Log:   plog,
		}
	}

	runner := worker.NewRunner(logger.For("worker"))
	runner.Register("campaign", cfg.Workers.CampaignInterval, newPipeline(worker.CampaignVariant()))
	runner.Register("reactivation", cfg.Workers.ReactivationInterval, newPipeline(worker.ReactivationVariant()))
	runner.Register("followup", cfg.Workers.FollowupInterval, newPipeline(worker.FollowupVariant(gen, followupRepo, convRepo)))
	runner.Start()
	defer runner.Stop()

	// Ops HTTP surface
	campaignHandler := &handler.CampaignHandler{Enqueue: enqueueSvc, Items: itemRepo}
	r := chi.NewRouter()
	campaignHandler.Routes(r)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("ops server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ops server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("ops server shutdown failed")
	}
}

// alerterOrNil keeps the committer's optional alerter a true nil when
// telegram alerts are disabled (a typed nil pointer would not compare equal
// to nil through the interface).
func alerterOrNil(n *notifier.TelegramNotifier) dispatch.FailureAlerter {
	if n == nil {
		return nil
	}
	return n
}
