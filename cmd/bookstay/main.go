package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookstay/internal/app/events"
	availabilityapp "bookstay/internal/app/services/availability"
	reservationapp "bookstay/internal/app/services/reservation"
	"bookstay/internal/domain/accommodation"
	domainavailability "bookstay/internal/domain/availability"
	domainreservation "bookstay/internal/domain/reservation"
	"bookstay/internal/infra/broker/kafka"
	"bookstay/internal/infra/config"
	mongodb "bookstay/internal/infra/db/mongo"
	ginserver "bookstay/internal/infra/http/gin"
	"bookstay/internal/infra/obs"
	"bookstay/internal/infra/storage/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	stores, ready, err := buildStores(cfg)
	if err != nil {
		logger.Error("storage init failed", "error", err, "mode", cfg.StorageMode)
		os.Exit(1)
	}
	logger.Info("storage ready", "mode", cfg.StorageMode)

	publisher, closeProducer, err := buildPublisher(cfg, logger)
	if err != nil {
		logger.Error("kafka producer init failed", "error", err)
		os.Exit(1)
	}
	defer closeProducer()

	availabilitySvc := &availabilityapp.Service{
		Accommodations: stores.accommodations,
		Intervals:      stores.intervals,
		Logger:         logger,
	}
	reservationSvc := &reservationapp.Service{
		Accommodations: stores.accommodations,
		Intervals:      stores.intervals,
		Reservations:   stores.reservations,
		Events:         publisher,
		Logger:         logger,
	}

	if len(cfg.KafkaBrokers) > 0 {
		consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroup, nil, kafka.HandlerAdapter{
			Handler: events.Handler{
				Availability: availabilitySvc,
				Reservations: reservationSvc,
				Logger:       logger,
			},
		})
		if err != nil {
			logger.Error("kafka consumer init failed", "error", err)
			os.Exit(1)
		}
		defer consumer.Close()
		go func() {
			topics := []string{events.TopicAccommodationCreated, events.TopicUsernameUpdated, events.TopicUserDeleted}
			if err := consumer.Run(ctx, topics); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("kafka consumer stopped", "error", err)
			}
		}()
		logger.Info("kafka consumer running", "group", cfg.KafkaGroup)
	} else {
		logger.Warn("KAFKA_BROKERS not set, event bus disabled")
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Ready: ready}, ginserver.Handlers{
		Availability:   ginserver.AvailabilityHandler{Service: availabilitySvc},
		Reservation:    ginserver.ReservationHandler{Service: reservationSvc},
		UserMiddleware: ginserver.UserMiddleware{Logger: logger}.Handle,
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type stores struct {
	accommodations accommodation.Repository
	intervals      domainavailability.Repository
	reservations   domainreservation.Repository
}

func buildStores(cfg config.Config) (stores, func() error, error) {
	if cfg.StorageMode == "mongo" {
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB, cfg.MongoTimeout)
		if err != nil {
			return stores{}, nil, err
		}
		ready := func() error {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoTimeout)
			defer cancel()
			return client.Ping(ctx)
		}
		return stores{
			accommodations: mongodb.NewAccommodationRepository(client.DB),
			intervals:      mongodb.NewAvailabilityRepository(client.DB),
			reservations:   mongodb.NewReservationRepository(client.DB),
		}, ready, nil
	}
	accommodations := memory.NewAccommodationRepository()
	return stores{
		accommodations: accommodations,
		intervals:      memory.NewIntervalRepository(accommodations),
		reservations:   memory.NewReservationRepository(),
	}, func() error { return nil }, nil
}

func buildPublisher(cfg config.Config, logger *slog.Logger) (events.Publisher, func(), error) {
	if len(cfg.KafkaBrokers) == 0 {
		return nopPublisher{logger: logger}, func() {}, nil
	}
	producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
	if err != nil {
		return nil, nil, err
	}
	return &kafka.EventPublisher{Producer: producer}, func() {
		if err := producer.Close(); err != nil {
			logger.Error("kafka producer close failed", "error", err)
		}
	}, nil
}

// nopPublisher drops outbound notifications when the bus is disabled.
type nopPublisher struct {
	logger *slog.Logger
}

func (p nopPublisher) PublishUserDeleted(ctx context.Context, username string) error {
	if p.logger != nil {
		p.logger.Warn("dropping user-deleted notification, event bus disabled", "username", username)
	}
	return nil
}
