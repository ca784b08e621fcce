package microservices

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/calinga/care-booking-system/config"
	"github.com/calinga/care-booking-system/internal/adapter/http/server"
	wshandler "github.com/calinga/care-booking-system/internal/adapter/http/ws"
	repo "github.com/calinga/care-booking-system/internal/adapter/postgres"
	brokers "github.com/calinga/care-booking-system/internal/adapter/rabbit"
	redisidx "github.com/calinga/care-booking-system/internal/adapter/redis"
	"github.com/calinga/care-booking-system/internal/domain/types"
	"github.com/calinga/care-booking-system/internal/service/auth"
	"github.com/calinga/care-booking-system/internal/service/caregiver"
	"github.com/calinga/care-booking-system/pkg/logger"
	"github.com/calinga/care-booking-system/pkg/postgres"
	"github.com/calinga/care-booking-system/pkg/rabbit"
	ws "github.com/calinga/care-booking-system/pkg/wsHub"
)

// geoIndexKey is the redis sorted set holding caregiver positions.
const geoIndexKey = "geo:caregivers"

// CaregiverMicroservice owns caregiver availability, location ingestion
// and proximity matching.
type CaregiverMicroservice struct {
	postgresDB     *postgres.PostgreDB
	rabbitMQ       *rabbit.RabbitMQ
	geoIndex       *redisidx.GeoIndex
	connHub        *ws.ConnectionHub
	caregiverHub   *wshandler.CaregiverHub
	statusConsumer *brokers.BookingStatusConsumer
	httpServer     *server.API
	cfg            config.Config
	log            logger.Logger
}

func NewCaregiver(ctx context.Context, cfg config.Config, log logger.Logger) (*CaregiverMicroservice, error) {
	postgresDB, err := postgres.New(ctx, cfg.Database)
	if err != nil {
		log.Error(ctx, "Failed to setup database", err)
		return nil, err
	}

	serviceName := string(types.CaregiverAndLocationService)

	rabbitMQ, err := rabbit.New(ctx, cfg.RabbitMQ.GetDSN(), log)
	if err != nil {
		log.Error(ctx, "Failed to setup rabbitmq", err)
		postgresDB.Pool.Close()
		return nil, err
	}

	// Matching survives without redis, the index is only an accelerator.
	var geoIndex *redisidx.GeoIndex
	redisClient, err := redisidx.NewClient(ctx, cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Warn(ctx, "redis unavailable, matching will scan the database", "error", err.Error())
	} else {
		geoIndex = redisidx.NewGeoIndex(redisClient, geoIndexKey)
	}

	locationRepo := repo.NewLocationRepo(postgresDB.Pool, serviceName)
	profileRepo := repo.NewProfileRepo(postgresDB.Pool)
	notificationRepo := repo.NewNotificationRepo(postgresDB.Pool)
	userRepo := repo.NewUserRepo(postgresDB.Pool)

	var index caregiver.GeoIndex
	if geoIndex != nil {
		index = geoIndex
	}

	caregiverService := caregiver.NewCaregiverService(
		locationRepo,
		profileRepo,
		notificationRepo,
		index,
		log,
		caregiver.Config{RadiusMiles: cfg.Matching.DefaultRadiusMiles},
	)

	tokenService := auth.NewTokenService(cfg.Auth.JWTSecret, userRepo, log)
	connHub := ws.NewConnHub(log)
	caregiverHub := wshandler.NewCaregiverHub(connHub, caregiverService, log)
	statusConsumer := brokers.NewBookingStatusConsumer(rabbitMQ, serviceName, log)

	httpServer, err := server.New(cfg, nil, caregiverService, nil, tokenService, caregiverHub, log)
	if err != nil {
		log.Error(ctx, "Failed to setup http server", err)
		postgresDB.Pool.Close()
		return nil, err
	}

	return &CaregiverMicroservice{
		postgresDB:     postgresDB,
		rabbitMQ:       rabbitMQ,
		geoIndex:       geoIndex,
		connHub:        connHub,
		caregiverHub:   caregiverHub,
		statusConsumer: statusConsumer,
		httpServer:     httpServer,
		cfg:            cfg,
		log:            log,
	}, nil
}

func (s *CaregiverMicroservice) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)

	s.httpServer.Run(ctx, errCh)

	// Booking status events fan out to connected caregivers.
	go func() {
		if err := s.statusConsumer.Consume(ctx, s.caregiverHub.PushStatusUpdate); err != nil {
			errCh <- err
		}
	}()

	defer func() {
		s.close(ctx)
		s.log.Info(ctx, "caregiver service closed")
	}()

	// Waiting signal
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	s.log.Info(ctx, "caregiver service started")

	select {
	case errRun := <-errCh:
		return errRun
	case sig := <-shutdownCh:
		s.log.Info(ctx, "shutting down application", "signal", sig.String())
		return nil
	}
}

func (s *CaregiverMicroservice) close(ctx context.Context) {
	if s.httpServer != nil {
		if err := s.httpServer.Stop(ctx); err != nil {
			s.log.Warn(ctx, "Failed to gracefully close http server", "error", err.Error())
		}
	}

	if s.connHub != nil {
		s.connHub.Close()
	}

	if s.rabbitMQ != nil {
		if err := s.rabbitMQ.Close(ctx); err != nil {
			s.log.Warn(ctx, "Failed to gracefully close rabbitmq connection", "error", err.Error())
		}
	}

	if s.geoIndex != nil {
		if err := s.geoIndex.Close(); err != nil {
			s.log.Warn(ctx, "Failed to close redis client", "error", err.Error())
		}
	}

	if s.postgresDB != nil && s.postgresDB.Pool != nil {
		s.postgresDB.Pool.Close()
	}
}
