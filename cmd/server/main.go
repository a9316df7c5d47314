package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"siloshare/internal/config"
	"siloshare/internal/infra"
	"siloshare/internal/repository"
	"siloshare/internal/router"
	"siloshare/internal/service"
	"siloshare/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if err := infra.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// Composition root for the async side: dispatcher, worker pool and the
	// background crons that drive contract retries and calendar transitions.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stripeClient := infra.NewStripeClient(cfg.StripeAPIURL, cfg.StripeAPIKey)
	docusignClient := infra.NewDocusignClient(cfg.DocusignBaseURL, cfg.DocusignAccountID, cfg.DocusignToken)
	mailer := infra.NewMailer(cfg)

	// One breaker per provider — a Stripe outage must not block DocuSign.
	stripeCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	docusignCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())

	dispatcher := worker.NewDispatcher(rdb)

	usuarioRepo := repository.NewUsuarioRepository(db)
	siloRepo := repository.NewSiloRepository(db)
	reservaRepo := repository.NewReservaRepository(db)
	historicoRepo := repository.NewHistoricoRepository(db)
	contratoRepo := repository.NewContratoRepository(db)

	workerHandlers := &worker.WorkerHandlers{
		Pagamento: worker.NewPagamentoWorker(stripeClient, stripeCB, reservaRepo, usuarioRepo, rdb),
		Contrato:  worker.NewContratoWorker(docusignClient, docusignCB, reservaRepo, siloRepo, usuarioRepo, contratoRepo, dispatcher, cfg.ContratoStoragePath),
		Email:     worker.NewEmailWorker(mailer, reservaRepo, siloRepo, usuarioRepo, contratoRepo),
	}
	worker.StartWorkerPool(ctx, rdb, workerHandlers, cfg.WorkerPoolSize)

	worker.StartRetryCron(ctx, worker.RetryCronConfig{
		ContratoRepo: contratoRepo,
		ReservaRepo:  reservaRepo,
		SiloRepo:     siloRepo,
		UsuarioRepo:  usuarioRepo,
		Docusign:     docusignClient,
		CB:           docusignCB,
		RDB:          rdb,
	})

	// The agenda cron drives calendar transitions through the same service
	// path as user requests, so audit entries and guards apply.
	reservaSvc := service.NewReservaService(reservaRepo, siloRepo, historicoRepo, dispatcher)
	worker.StartAgendaCron(ctx, worker.AgendaCronConfig{
		ReservaRepo: reservaRepo,
		Servico:     reservaSvc,
	})

	r := router.New(cfg, db, rdb, dispatcher)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("SiloShare backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
