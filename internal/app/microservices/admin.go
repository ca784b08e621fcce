package microservices

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/calinga/care-booking-system/config"
	"github.com/calinga/care-booking-system/internal/adapter/http/server"
	repo "github.com/calinga/care-booking-system/internal/adapter/postgres"
	"github.com/calinga/care-booking-system/internal/service/admin"
	"github.com/calinga/care-booking-system/internal/service/auth"
	"github.com/calinga/care-booking-system/pkg/logger"
	"github.com/calinga/care-booking-system/pkg/postgres"
)

// AdminMicroservice owns monitoring and oversight.
type AdminMicroservice struct {
	postgresDB *postgres.PostgreDB
	httpServer *server.API
	cfg        config.Config
	log        logger.Logger
}

func NewAdmin(ctx context.Context, cfg config.Config, log logger.Logger) (*AdminMicroservice, error) {
	postgresDB, err := postgres.New(ctx, cfg.Database)
	if err != nil {
		log.Error(ctx, "Failed to setup database", err)
		return nil, err
	}

	adminRepo := repo.NewAdminRepo(postgresDB.Pool)
	userRepo := repo.NewUserRepo(postgresDB.Pool)

	adminService := admin.NewAdminService(adminRepo, log)
	tokenService := auth.NewTokenService(cfg.Auth.JWTSecret, userRepo, log)

	httpServer, err := server.New(cfg, nil, nil, adminService, tokenService, nil, log)
	if err != nil {
		log.Error(ctx, "Failed to setup http server", err)
		postgresDB.Pool.Close()
		return nil, err
	}

	return &AdminMicroservice{
		postgresDB: postgresDB,
		httpServer: httpServer,
		cfg:        cfg,
		log:        log,
	}, nil
}

func (s *AdminMicroservice) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	s.httpServer.Run(ctx, errCh)
	defer func() {
		s.close(ctx)
		s.log.Info(ctx, "admin service closed")
	}()

	// Waiting signal
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	s.log.Info(ctx, "admin service started")

	select {
	case errRun := <-errCh:
		return errRun
	case sig := <-shutdownCh:
		s.log.Info(ctx, "shutting down application", "signal", sig.String())
		return nil
	}
}

func (s *AdminMicroservice) close(ctx context.Context) {
	if s.httpServer != nil {
		if err := s.httpServer.Stop(ctx); err != nil {
			s.log.Warn(ctx, "Failed to gracefully close http server", "error", err.Error())
		}
	}

	if s.postgresDB != nil && s.postgresDB.Pool != nil {
		s.postgresDB.Pool.Close()
	}
}
