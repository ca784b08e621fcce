package microservices

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/calinga/care-booking-system/config"
	"github.com/calinga/care-booking-system/internal/adapter/http/server"
	repo "github.com/calinga/care-booking-system/internal/adapter/postgres"
	brokers "github.com/calinga/care-booking-system/internal/adapter/rabbit"
	"github.com/calinga/care-booking-system/internal/domain/types"
	"github.com/calinga/care-booking-system/internal/service/auth"
	"github.com/calinga/care-booking-system/internal/service/booking"
	"github.com/calinga/care-booking-system/pkg/logger"
	"github.com/calinga/care-booking-system/pkg/postgres"
	"github.com/calinga/care-booking-system/pkg/rabbit"
	"github.com/calinga/care-booking-system/pkg/trm"
)

// BookingMicroservice owns the booking lifecycle API and its
// infrastructure connections.
type BookingMicroservice struct {
	postgresDB *postgres.PostgreDB
	rabbitMQ   *rabbit.RabbitMQ
	httpServer *server.API
	cfg        config.Config
	log        logger.Logger
}

func NewBooking(ctx context.Context, cfg config.Config, log logger.Logger) (*BookingMicroservice, error) {
	postgresDB, err := postgres.New(ctx, cfg.Database)
	if err != nil {
		log.Error(ctx, "Failed to setup database", err)
		return nil, err
	}

	rabbitMQ, err := rabbit.New(ctx, cfg.RabbitMQ.GetDSN(), log)
	if err != nil {
		log.Error(ctx, "Failed to setup rabbitmq", err)
		postgresDB.Pool.Close()
		return nil, err
	}

	serviceName := string(types.BookingService)

	broker := brokers.NewBookingBroker(rabbitMQ, serviceName, log)
	if err := broker.Setup(ctx); err != nil {
		log.Error(ctx, "Failed to declare rabbitmq topology", err)
		postgresDB.Pool.Close()
		return nil, err
	}

	txManager := trm.New(postgresDB.Pool)

	bookingRepo := repo.NewBookingRepo(postgresDB.Pool, serviceName)
	profileRepo := repo.NewProfileRepo(postgresDB.Pool)
	notificationRepo := repo.NewNotificationRepo(postgresDB.Pool)
	userRepo := repo.NewUserRepo(postgresDB.Pool)

	bookingService := booking.NewBookingService(
		bookingRepo,
		profileRepo,
		notificationRepo,
		broker,
		log,
		txManager,
		booking.Config{
			MinLeadTime: cfg.Booking.MinLeadTime,
			MinDuration: cfg.Booking.MinDuration,
		},
	)

	tokenService := auth.NewTokenService(cfg.Auth.JWTSecret, userRepo, log)

	httpServer, err := server.New(cfg, bookingService, nil, nil, tokenService, nil, log)
	if err != nil {
		log.Error(ctx, "Failed to setup http server", err)
		postgresDB.Pool.Close()
		return nil, err
	}

	return &BookingMicroservice{
		postgresDB: postgresDB,
		rabbitMQ:   rabbitMQ,
		httpServer: httpServer,
		cfg:        cfg,
		log:        log,
	}, nil
}

func (s *BookingMicroservice) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	s.httpServer.Run(ctx, errCh)
	defer func() {
		s.close(ctx)
		s.log.Info(ctx, "booking service closed")
	}()

	// Waiting signal
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	s.log.Info(ctx, "booking service started")

	select {
	case errRun := <-errCh:
		return errRun
	case sig := <-shutdownCh:
		s.log.Info(ctx, "shutting down application", "signal", sig.String())
		return nil
	}
}

func (s *BookingMicroservice) close(ctx context.Context) {
	if s.httpServer != nil {
		if err := s.httpServer.Stop(ctx); err != nil {
			s.log.Warn(ctx, "Failed to gracefully close http server", "error", err.Error())
		}
	}

	if s.rabbitMQ != nil {
		if err := s.rabbitMQ.Close(ctx); err != nil {
			s.log.Warn(ctx, "Failed to gracefully close rabbitmq connection", "error", err.Error())
		}
	}

	if s.postgresDB != nil && s.postgresDB.Pool != nil {
		s.postgresDB.Pool.Close()
	}
}
