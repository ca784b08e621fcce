package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/calinga/care-booking-system/config"
	"github.com/calinga/care-booking-system/internal/adapter/http/handler"
	"github.com/calinga/care-booking-system/internal/adapter/http/middleware"
	wshandler "github.com/calinga/care-booking-system/internal/adapter/http/ws"
	"github.com/calinga/care-booking-system/internal/domain/types"
	"github.com/calinga/care-booking-system/pkg/logger"
	wrap "github.com/calinga/care-booking-system/pkg/logger/wrapper"
)

const serverIPAddress = "%s:%s"

type API struct {
	mode   types.ServiceMode
	mux    *http.ServeMux
	server *http.Server
	routes *handlers // routes/handlers
	m      *middleware.Middleware

	addr string
	cfg  config.Config
	log  logger.Logger
}

type handlers struct {
	booking      *handler.Booking
	caregiver    *handler.Caregiver
	caregiverHub *wshandler.CaregiverHub
	admin        *handler.Admin
	health       *handler.Health
}

func New(
	cfg config.Config,
	bookingService handler.BookingService,
	caregiverService handler.CaregiverService,
	adminService handler.AdminService,
	authService middleware.AuthService,
	caregiverHub *wshandler.CaregiverHub,
	logger logger.Logger,
) (*API, error) {
	var addr string
	handlers := &handlers{}

	if authService == nil {
		return nil, errors.New("auth service is required")
	}

	switch cfg.Mode {
	case types.BookingService:
		addr = fmt.Sprintf(serverIPAddress, "0.0.0.0", cfg.Services.BookingService)
		handlers.booking = handler.NewBooking(bookingService, logger)
	case types.CaregiverAndLocationService:
		addr = fmt.Sprintf(serverIPAddress, "0.0.0.0", cfg.Services.CaregiverLocationService)
		if caregiverHub == nil {
			return nil, errors.New("caregiver hub is required")
		}
		handlers.caregiver = handler.NewCaregiver(caregiverService, logger)
		handlers.caregiverHub = caregiverHub
	case types.AdminService:
		addr = fmt.Sprintf(serverIPAddress, "0.0.0.0", cfg.Services.AdminService)
		handlers.admin = handler.NewAdmin(adminService, logger)
	default:
		return nil, fmt.Errorf("invalid mode: %s", cfg.Mode)
	}

	handlers.health = handler.NewHealth(string(cfg.Mode), logger)

	mid := middleware.NewMiddleware(authService, logger)

	api := &API{
		mode: cfg.Mode,

		mux:    http.NewServeMux(),
		routes: handlers,
		m:      mid,
		addr:   addr,
		cfg:    cfg,
		log:    logger,
	}

	api.server = &http.Server{
		Addr:    api.addr,
		Handler: api.withMiddleware(),
	}

	api.setupRoutes()

	return api, nil
}

func (a *API) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	ctx = wrap.WithAction(ctx, "http_server_stop")

	a.log.Debug(ctx, "shutting down HTTP server...", "address", a.addr)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	a.log.Debug(ctx, "shutting down HTTP server completed")

	return nil
}

func (a *API) Run(ctx context.Context, errCh chan<- error) {
	go func() {
		ctx = wrap.WithAction(ctx, "http_server_start")
		a.log.Info(ctx, "started http server", "address", a.addr, "mode", string(a.mode))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start HTTP server: %w", err)
			return
		}
	}()
}

// withMiddleware applies middlewares to the mux
func (a *API) withMiddleware() http.Handler {
	metrics := a.m.Metrics(string(a.mode))
	return a.m.Recover(a.m.RequestID(metrics(a.m.Logging(a.m.Auth(a.mux)))))
}
